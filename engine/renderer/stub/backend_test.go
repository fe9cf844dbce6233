package stub

import (
	"testing"

	"github.com/spaghettifunk/solo/engine/renderer/metadata"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDynamicUpdateKeepsStorage(t *testing.T) {
	b := New()
	layout := metadata.PositionLayout
	h, err := b.CreateDynamicVertexBuffer(layout, []float32{0, 0, 0, 1, 1, 1, 2, 2, 2}, 3)
	require.NoError(t, err)

	before, ok := b.BufferData(h)
	require.True(t, ok)
	b.UpdateDynamicVertexBuffer(h, layout, 1, []float32{9, 9, 9}, 1)
	after, _ := b.BufferData(h)

	assert.Equal(t, []float32{0, 0, 0, 9, 9, 9, 2, 2, 2}, after)
	assert.Same(t, &before[0], &after[0])
}

func TestCreateVertexBufferZeroFillsMissingData(t *testing.T) {
	b := New()
	h, err := b.CreateVertexBuffer(metadata.PositionTexCoordLayout, nil, 4)
	require.NoError(t, err)
	data, _ := b.BufferData(h)
	assert.Len(t, data, 20)
}

func TestTextureRoundTrip(t *testing.T) {
	b := New()
	pixels := metadata.DefaultTexturePixels{}.Solid(2, 1, 2, 3, 4)
	h, err := b.Create2DTexture(metadata.TextureFormatRGBA, pixels, 2, 2)
	require.NoError(t, err)

	data, ok := b.TextureData(h, 0)
	require.True(t, ok)
	assert.Equal(t, pixels, data)
	assert.Equal(t, uint32(1), b.TextureLevels(h))

	require.NoError(t, b.Generate2DTextureMipmaps(h))
	assert.Equal(t, uint32(2), b.TextureLevels(h))
	require.NoError(t, b.Generate2DTextureMipmaps(h))
	assert.Equal(t, uint32(2), b.TextureLevels(h))

	require.NoError(t, b.Update2DTexture(h, metadata.TextureFormatRed, nil, 8, 4))
	assert.Equal(t, uint32(1), b.TextureLevels(h))
	data, _ = b.TextureData(h, 0)
	assert.Len(t, data, 32)
}

func TestCubeFacesAreIndependent(t *testing.T) {
	b := New()
	h, err := b.CreateCubeTexture(metadata.TextureFormatRed, 2)
	require.NoError(t, err)
	require.NoError(t, b.UpdateCubeTexture(h, metadata.CubeFaceNegativeY, metadata.TextureFormatRed, []byte{1, 2, 3, 4}, 2))

	face, _ := b.TextureData(h, metadata.CubeFaceNegativeY)
	assert.Equal(t, []byte{1, 2, 3, 4}, face)
	other, _ := b.TextureData(h, metadata.CubeFacePositiveX)
	assert.Equal(t, []byte{0, 0, 0, 0}, other)
}

func TestFrameBufferRejectsUnknownTexture(t *testing.T) {
	b := New()
	fb, err := b.CreateFrameBuffer()
	require.NoError(t, err)
	assert.Error(t, b.UpdateFrameBuffer(fb, []metadata.TextureHandle{99}))
}

func TestDrawCountResetsEachFrame(t *testing.T) {
	b := New()
	p, err := b.CreateProgram("vs", "fs")
	require.NoError(t, err)
	g := metadata.Geometry{Parts: []metadata.IndexBufferBinding{{IndexCount: 3}, {IndexCount: 3}}}

	require.NoError(t, b.BeginFrame())
	b.Draw(g, p)
	b.Draw(g, 1234)
	assert.Equal(t, 2, b.DrawCount())
	require.NoError(t, b.BeginFrame())
	assert.Zero(t, b.DrawCount())
}

func TestZeroViewportFollowsTarget(t *testing.T) {
	b := New()
	require.NoError(t, b.Initialize(metadata.BackendConfig{CanvasWidth: 64, CanvasHeight: 48}))
	color, err := b.Create2DTexture(metadata.TextureFormatRGBA, nil, 8, 4)
	require.NoError(t, err)
	fb, err := b.CreateFrameBuffer()
	require.NoError(t, err)
	require.NoError(t, b.UpdateFrameBuffer(fb, []metadata.TextureHandle{color}))

	b.SetViewport(metadata.Viewport{Width: 0, Height: 10})
	assert.Equal(t, metadata.Viewport{Width: 64, Height: 48}, b.Viewport())
	b.BindFrameBuffer(fb)
	assert.Equal(t, metadata.Viewport{Width: 8, Height: 4}, b.Viewport())
	b.DestroyFrameBuffer(fb)
	assert.Equal(t, metadata.Viewport{Width: 64, Height: 48}, b.Viewport())
}
