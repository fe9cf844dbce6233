package graphics

import (
	"strings"
	"testing"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/spaghettifunk/solo/engine"
	"github.com/spaghettifunk/solo/engine/renderer/metadata"
	"github.com/spaghettifunk/solo/engine/renderer/null"
	"github.com/spaghettifunk/solo/engine/resources"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newDevice(t *testing.T) (*engine.Device, *null.Backend) {
	t.Helper()
	device, err := engine.CreateDevice(&engine.Setup{Mode: metadata.BackendNull, CanvasWidth: 64, CanvasHeight: 64, LogLevel: "error"})
	require.NoError(t, err)
	t.Cleanup(func() { _ = device.Shutdown() })
	return device, device.Renderer().Backend().(*null.Backend)
}

func TestEffectSourcesPerLanguage(t *testing.T) {
	for kind := range effectFragments {
		vs, fs, err := EffectSources(metadata.BackendOpenGL, kind)
		require.NoError(t, err, kind.String())
		assert.True(t, strings.HasPrefix(strings.TrimSpace(vs), "#version"), kind.String())
		assert.NotEmpty(t, fs)

		vs, fs, err = EffectSources(metadata.BackendVulkan, kind)
		require.NoError(t, err, kind.String())
		assert.Contains(t, vs, "@vertex")
		assert.Contains(t, fs, "@fragment")
	}
	_, _, err := EffectSources(metadata.BackendOpenGL, EffectKind(200))
	assert.Error(t, err)
}

func TestParseEffectKind(t *testing.T) {
	kind, ok := ParseEffectKind("hblur")
	assert.True(t, ok)
	assert.Equal(t, EffectHorizontalBlur, kind)
	_, ok = ParseEffectKind("bloom")
	assert.False(t, ok)
}

func TestPostProcessMaterialParameters(t *testing.T) {
	device, b := newDevice(t)
	source, err := resources.NewTexture2D(device, 320, 180, metadata.TextureFormatRGBA)
	require.NoError(t, err)

	m, err := NewPostProcessMaterial(device, EffectStitch, source)
	require.NoError(t, err)
	assert.Equal(t, int32(1), m.Effect().RefCount())

	res, ok := m.Vector2Parameter(UniformResolution)
	require.True(t, ok)
	assert.Equal(t, mgl32.Vec2{320, 180}, res)
	size, ok := m.FloatParameter(UniformStitchSize)
	require.True(t, ok)
	assert.Equal(t, float32(defaultStitchSize), size)
	tex, ok := m.TextureParameter(UniformMainTexture)
	require.True(t, ok)
	assert.Equal(t, source.Handle(), tex.Handle())
	pattern, ok := m.TextureParameter(UniformStitchTexture)
	require.True(t, ok)
	require.IsType(t, &resources.Texture2D{}, pattern)
	w, h := pattern.(*resources.Texture2D).Size()
	assert.Equal(t, uint32(stitchPatternSize), w)
	assert.Equal(t, uint32(stitchPatternSize), h)

	m.Apply(nil, nil)
	v, ok := b.Uniform(m.Effect().Handle(), UniformStitchTexture)
	require.True(t, ok)
	assert.Equal(t, uint32(1), v.Unit)
	textures := b.Snapshot().Textures
	assert.Equal(t, source.Handle(), textures[0])
	assert.Equal(t, pattern.Handle(), textures[1])

	effect := m.Effect()
	m.Release()
	assert.True(t, effect.Destroyed())
	assert.True(t, pattern.(*resources.Texture2D).Destroyed())
	assert.False(t, source.Destroyed())
}

func TestOnlyStitchCarriesPattern(t *testing.T) {
	device, _ := newDevice(t)
	source, err := resources.NewTexture2D(device, 8, 8, metadata.TextureFormatRGBA)
	require.NoError(t, err)
	m, err := NewPostProcessMaterial(device, EffectGrayscale, source)
	require.NoError(t, err)
	_, ok := m.TextureParameter(UniformStitchTexture)
	assert.False(t, ok)
	m.Release()
}

func TestBlitToScreen(t *testing.T) {
	device, b := newDevice(t)
	source, err := resources.NewTexture2D(device, 16, 16, metadata.TextureFormatRGBA)
	require.NoError(t, err)
	m, err := NewPostProcessMaterial(device, EffectGrayscale, source)
	require.NoError(t, err)
	m.SetFaceCull(metadata.FaceCullCW)
	g := New(device)
	t.Cleanup(g.Destroy)

	b.ResetCalls()
	require.NoError(t, g.Blit(m, nil))

	s := b.Snapshot()
	assert.False(t, s.DepthTest)
	assert.False(t, s.CullEnabled)
	assert.Equal(t, metadata.Viewport{Width: 64, Height: 64}, s.Viewport)
	assert.Equal(t, metadata.FrameBufferHandle(metadata.InvalidHandle), s.FrameBuffer)
	assert.Equal(t, metadata.FaceCullCW, m.State().FaceCull)
	assert.Len(t, b.CallsTo("Draw"), 1)
}

func TestBlitToFrameBuffer(t *testing.T) {
	device, b := newDevice(t)
	source, err := resources.NewTexture2D(device, 16, 16, metadata.TextureFormatRGBA)
	require.NoError(t, err)
	color, err := resources.NewTexture2D(device, 8, 4, metadata.TextureFormatRGBA)
	require.NoError(t, err)
	target, err := resources.NewFrameBuffer(device)
	require.NoError(t, err)
	require.NoError(t, target.SetAttachments(color))
	m, err := NewPostProcessMaterial(device, EffectPassthrough, source)
	require.NoError(t, err)
	g := New(device)

	b.ResetCalls()
	require.NoError(t, g.Blit(m, target))

	binds := b.CallsTo("BindFrameBuffer")
	require.Len(t, binds, 2)
	assert.Equal(t, target.Handle(), binds[0].Args[0])
	assert.Equal(t, metadata.FrameBufferHandle(metadata.InvalidHandle), binds[1].Args[0])
	assert.Equal(t, []interface{}{int32(0), int32(0), uint32(8), uint32(4)}, b.CallsTo("SetViewport")[0].Args)

	live := device.LiveResources()
	g.Destroy()
	assert.Equal(t, live-1, device.LiveResources())
}
