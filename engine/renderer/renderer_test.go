package renderer_test

import (
	"testing"

	"github.com/spaghettifunk/solo/engine/core"
	"github.com/spaghettifunk/solo/engine/renderer"
	"github.com/spaghettifunk/solo/engine/renderer/metadata"
	"github.com/spaghettifunk/solo/engine/renderer/null"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newRenderer(t *testing.T) (*renderer.Renderer, *null.Backend) {
	t.Helper()
	r, err := renderer.New(metadata.BackendNull, metadata.BackendConfig{CanvasWidth: 64, CanvasHeight: 64})
	require.NoError(t, err)
	return r, r.Backend().(*null.Backend)
}

func TestUnlinkedBackend(t *testing.T) {
	assert.NotContains(t, renderer.Registered(), metadata.BackendVulkan)
	_, err := renderer.New(metadata.BackendVulkan, metadata.BackendConfig{CanvasWidth: 64, CanvasHeight: 64})
	assert.ErrorIs(t, err, core.ErrBackendUnavailable)
}

func TestRegisterTwicePanics(t *testing.T) {
	assert.Panics(t, func() {
		renderer.Register(metadata.BackendNull, func() renderer.Backend { return null.New() })
	})
}

func TestTextureDataIsCheckedBeforeTheBackend(t *testing.T) {
	r, b := newRenderer(t)
	b.ResetCalls()

	_, err := r.Create2DTexture(metadata.TextureFormatRGBA, make([]byte, 3), 2, 2)
	assert.ErrorIs(t, err, core.ErrTextureDataSize)
	_, err = r.Create2DTexture(metadata.TextureFormat(99), nil, 2, 2)
	assert.ErrorIs(t, err, core.ErrUnsupportedFormat)
	_, err = r.CreateCubeTexture(metadata.TextureFormatDepth, 16)
	assert.ErrorIs(t, err, core.ErrUnsupportedFormat)

	assert.Empty(t, b.Calls())
}

func TestVertexDataMustMatchLayout(t *testing.T) {
	r, _ := newRenderer(t)
	_, err := r.CreateVertexBuffer(metadata.PositionLayout, make([]float32, 8), 3)
	assert.ErrorIs(t, err, core.ErrVertexDataSize)

	_, err = r.CreateVertexBuffer(metadata.VertexBufferLayout{}, nil, 3)
	assert.ErrorIs(t, err, core.ErrInvalidLayout)

	h, err := r.CreateDynamicVertexBuffer(metadata.PositionLayout, nil, 3)
	require.NoError(t, err)
	assert.NotEqual(t, metadata.BufferHandle(metadata.InvalidHandle), h)

	_, err = r.CreateIndexBuffer(nil)
	assert.Error(t, err)
}

func TestInvalidCubeFace(t *testing.T) {
	r, _ := newRenderer(t)
	h, err := r.CreateCubeTexture(metadata.TextureFormatRGBA, 4)
	require.NoError(t, err)
	assert.Error(t, r.UpdateCubeTexture(h, metadata.CubeFace(6), metadata.TextureFormatRGBA, nil, 4))
	assert.NoError(t, r.UpdateCubeTexture(h, metadata.CubeFaceNegativeZ, metadata.TextureFormatRGBA, nil, 4))
}

func TestFrameTracking(t *testing.T) {
	r, b := newRenderer(t)
	require.NoError(t, r.BeginFrame())
	assert.True(t, r.InFrame())
	require.NoError(t, r.EndFrame())
	assert.False(t, r.InFrame())
	assert.Equal(t, uint64(1), b.Frames())
}
