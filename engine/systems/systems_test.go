package systems

import (
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"testing"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/spaghettifunk/solo/engine"
	"github.com/spaghettifunk/solo/engine/assets"
	"github.com/spaghettifunk/solo/engine/renderer/metadata"
	"github.com/spaghettifunk/solo/engine/renderer/null"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const wallMaterial = `
name = "wall"
effect = "lit"
auto_release = true

[state]
face_cull = "cw"

[[parameters]]
name = "shininess"
type = "float"
value = [32.0]

[[parameters]]
name = "albedo"
type = "texture"
texture = "bricks"

[bindings]
mvp = "world_view_projection"
`

func writeAsset(t *testing.T, root, rel, data string) {
	t.Helper()
	p := filepath.Join(root, filepath.FromSlash(rel))
	require.NoError(t, os.MkdirAll(filepath.Dir(p), 0o755))
	require.NoError(t, os.WriteFile(p, []byte(data), 0o644))
}

func writeImage(t *testing.T, root, rel string, size int) {
	t.Helper()
	p := filepath.Join(root, filepath.FromSlash(rel))
	require.NoError(t, os.MkdirAll(filepath.Dir(p), 0o755))
	img := image.NewNRGBA(image.Rect(0, 0, size, size))
	for i := 0; i < size*size; i++ {
		img.Set(i%size, i/size, color.NRGBA{R: 200, G: 100, B: 50, A: 255})
	}
	f, err := os.Create(p)
	require.NoError(t, err)
	defer f.Close()
	require.NoError(t, png.Encode(f, img))
}

type fixture struct {
	device  *engine.Device
	backend *null.Backend
	manager *SystemManager
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	root := t.TempDir()
	writeImage(t, root, "textures/bricks.png", 4)
	for _, suffix := range cubeFaceSuffixes {
		writeImage(t, root, "textures/sky"+suffix+".png", 2)
	}
	writeAsset(t, root, "shaders/lit.vert.glsl", "#version 330 core\nvoid main() { gl_Position = vec4(0.0); }\n")
	writeAsset(t, root, "shaders/lit.frag.glsl", "#version 330 core\nout vec4 c;\nvoid main() { c = vec4(1.0); }\n")
	writeAsset(t, root, "materials/wall.material.toml", wallMaterial)

	device, err := engine.CreateDevice(&engine.Setup{Mode: metadata.BackendNull, CanvasWidth: 64, CanvasHeight: 64, LogLevel: "error"})
	require.NoError(t, err)
	am, err := assets.NewAssetManager(root)
	require.NoError(t, err)
	require.NoError(t, am.Initialize())

	sm, err := NewSystemManager(DefaultSystemManagerConfig, device, am)
	require.NoError(t, err)
	require.NoError(t, sm.Initialize())

	t.Cleanup(func() {
		_ = am.Close()
		_ = device.Shutdown()
	})
	return &fixture{
		device:  device,
		backend: device.Renderer().Backend().(*null.Backend),
		manager: sm,
	}
}

func TestSystemConfigMustBePositive(t *testing.T) {
	_, err := NewTextureSystem(&TextureSystemConfig{}, nil, nil)
	assert.Error(t, err)
	_, err = NewEffectSystem(&EffectSystemConfig{}, nil, nil)
	assert.Error(t, err)
	_, err = NewMaterialSystem(&MaterialSystemConfig{}, nil, nil, nil, nil)
	assert.Error(t, err)
}

func TestTextureSystemCountsReferences(t *testing.T) {
	f := newFixture(t)
	ts := f.manager.Textures()

	a, err := ts.Acquire("bricks", true)
	require.NoError(t, err)
	b, err := ts.Acquire("bricks", true)
	require.NoError(t, err)
	assert.Same(t, a, b)

	count, ok := ts.ReferenceCount("bricks")
	require.True(t, ok)
	assert.Equal(t, uint64(2), count)

	info, ok := f.backend.Texture(a.Handle())
	require.True(t, ok)
	assert.Equal(t, uint32(4), info.Width)
	assert.Len(t, f.backend.CallsTo("Generate2DTextureMipmaps"), 1)

	ts.Release("bricks")
	ts.Release("bricks")
	_, ok = ts.ReferenceCount("bricks")
	assert.False(t, ok)
	_, ok = f.backend.Texture(a.Handle())
	assert.False(t, ok)
}

func TestTextureSystemDefaults(t *testing.T) {
	f := newFixture(t)
	ts := f.manager.Textures()

	def, err := ts.Acquire(metadata.DEFAULT_TEXTURE_NAME, true)
	require.NoError(t, err)
	assert.Same(t, ts.DefaultTexture(), def)
	assert.NotNil(t, ts.DefaultWhiteTexture())
	assert.NotNil(t, ts.DefaultBlackTexture())
	assert.NotNil(t, ts.DefaultNormalTexture())

	ts.Release(metadata.DEFAULT_TEXTURE_NAME)
	assert.False(t, ts.DefaultTexture().Destroyed())

	_, err = ts.Acquire("missing", true)
	assert.ErrorIs(t, err, assets.ErrAssetNotFound)
}

func TestTextureSystemLoadsCubes(t *testing.T) {
	f := newFixture(t)
	cube, err := f.manager.Textures().AcquireCube("sky", false)
	require.NoError(t, err)
	assert.Equal(t, metadata.TextureTypeCube, cube.Type())

	info, ok := f.backend.Texture(cube.Handle())
	require.True(t, ok)
	assert.Equal(t, uint32(2), info.Width)
}

func TestEffectSystemPrefersAssetsThenBuiltins(t *testing.T) {
	f := newFixture(t)
	es := f.manager.Effects()

	lit, err := es.Acquire("lit")
	require.NoError(t, err)
	again, err := es.Acquire("lit")
	require.NoError(t, err)
	assert.Same(t, lit, again)

	blur, err := es.Acquire("hblur")
	require.NoError(t, err)
	assert.NotEqual(t, lit.Handle(), blur.Handle())

	_, err = es.Acquire("nope")
	assert.Error(t, err)

	es.Release("hblur")
	assert.True(t, blur.Destroyed())
}

func TestMaterialSystemBuildsFromDefinition(t *testing.T) {
	f := newFixture(t)
	ms := f.manager.Materials()

	m, err := ms.Acquire("wall")
	require.NoError(t, err)
	assert.Equal(t, "wall", m.Name())
	assert.Equal(t, metadata.FaceCullCW, m.State().FaceCull)
	assert.True(t, m.State().DepthTest)

	v, ok := m.FloatParameter("shininess")
	require.True(t, ok)
	assert.Equal(t, float32(32), v)
	_, ok = m.TextureParameter("albedo")
	assert.True(t, ok)
	s, ok := m.Binding("mvp")
	require.True(t, ok)
	assert.Equal(t, metadata.SemanticsWorldViewProjectionMatrix, s)

	count, _ := f.manager.Effects().ReferenceCount("lit")
	assert.Equal(t, uint64(1), count)

	ms.Release("wall")
	assert.True(t, m.Destroyed())
	_, ok = f.manager.Effects().ReferenceCount("lit")
	assert.False(t, ok)
	_, ok = f.manager.Textures().ReferenceCount("bricks")
	assert.False(t, ok)
}

func TestMaterialSystemDefaultMaterial(t *testing.T) {
	f := newFixture(t)
	ms := f.manager.Materials()

	m := ms.DefaultMaterial()
	require.NotNil(t, m)
	tex, ok := m.TextureParameter("mainTex")
	require.True(t, ok)
	assert.Same(t, f.manager.Textures().DefaultTexture(), tex)

	ms.Release(metadata.DefaultMaterialName)
	assert.False(t, m.Destroyed())
}

func TestMaterialSystemRejectsBadParameters(t *testing.T) {
	f := newFixture(t)
	_, err := f.manager.Materials().AcquireFromConfig(&metadata.MaterialConfig{
		Name:   "broken",
		Effect: "passthrough",
		Parameters: []metadata.MaterialParameterConfig{
			{Name: "tint", Type: "vec3", Value: []float32{1}},
		},
	})
	assert.Error(t, err)
	_, ok := f.manager.Effects().ReferenceCount("passthrough")
	assert.True(t, ok, "the default material still holds passthrough")
	count, _ := f.manager.Effects().ReferenceCount("passthrough")
	assert.Equal(t, uint64(1), count)
}

func TestShutdownReleasesEverything(t *testing.T) {
	f := newFixture(t)
	_, err := f.manager.Materials().Acquire("wall")
	require.NoError(t, err)
	m, err := f.manager.Materials().AcquireFromConfig(&metadata.MaterialConfig{Name: "tinted", Effect: "lit"})
	require.NoError(t, err)
	m.SetVector4Parameter("tint", mgl32.Vec4{1, 0, 0, 1})

	require.NoError(t, f.manager.Shutdown())
	assert.Equal(t, 0, f.device.LiveResources())
	textures, buffers, programs, frameBuffers := f.backend.Live()
	assert.Zero(t, textures+buffers+programs+frameBuffers)
}
