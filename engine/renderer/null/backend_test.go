package null

import (
	"testing"

	"github.com/spaghettifunk/solo/engine/core"
	"github.com/spaghettifunk/solo/engine/renderer/metadata"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newBackend(t *testing.T) *Backend {
	t.Helper()
	b := New()
	require.NoError(t, b.Initialize(metadata.BackendConfig{CanvasWidth: 320, CanvasHeight: 200}))
	return b
}

func TestInitializeSetsViewport(t *testing.T) {
	b := newBackend(t)
	w, h := b.CanvasSize()
	assert.Equal(t, uint32(320), w)
	assert.Equal(t, uint32(200), h)
	assert.Equal(t, metadata.Viewport{Width: 320, Height: 200}, b.Snapshot().Viewport)
	assert.Nil(t, b.Window())
}

func TestFaceCullTranslation(t *testing.T) {
	b := newBackend(t)

	b.SetState(metadata.RenderState{FaceCull: metadata.FaceCullCW})
	s := b.Snapshot()
	assert.True(t, s.CullEnabled)
	assert.Equal(t, WindingCW, s.FrontFace)
	assert.Equal(t, CullFaceBack, s.CullFace)

	b.SetState(metadata.RenderState{FaceCull: metadata.FaceCullCCW})
	s = b.Snapshot()
	assert.True(t, s.CullEnabled)
	assert.Equal(t, WindingCCW, s.FrontFace)
	assert.Equal(t, CullFaceBack, s.CullFace)

	b.SetState(metadata.RenderState{FaceCull: metadata.FaceCullAll})
	s = b.Snapshot()
	assert.True(t, s.CullEnabled)
	assert.Equal(t, CullFaceFrontAndBack, s.CullFace)

	b.SetState(metadata.RenderState{FaceCull: metadata.FaceCullNone, DepthTest: true})
	s = b.Snapshot()
	assert.False(t, s.CullEnabled)
	assert.True(t, s.DepthTest)
	assert.False(t, s.DepthWrite)
}

func TestHandlesAreDistinctAndNonZero(t *testing.T) {
	b := newBackend(t)
	t1, err := b.Create2DTexture(metadata.TextureFormatRGBA, nil, 4, 4)
	require.NoError(t, err)
	t2, err := b.CreateCubeTexture(metadata.TextureFormatRGBA, 4)
	require.NoError(t, err)
	p, err := b.CreateProgram("vs", "fs")
	require.NoError(t, err)

	assert.NotEqual(t, metadata.TextureHandle(metadata.InvalidHandle), t1)
	assert.NotEqual(t, t1, t2)
	assert.NotEqual(t, metadata.ProgramHandle(metadata.InvalidHandle), p)

	b.DestroyTexture(t1)
	b.DestroyTexture(t2)
	b.DestroyProgram(p)
	textures, buffers, programs, frameBuffers := b.Live()
	assert.Zero(t, textures+buffers+programs+frameBuffers)
}

func TestEmptySourceFailsCompilation(t *testing.T) {
	b := newBackend(t)
	_, err := b.CreateProgram("vs", "")
	var sce *core.ShaderCompilationError
	require.ErrorAs(t, err, &sce)
	assert.Equal(t, core.ShaderStageFragment, sce.Stage)
}

func TestDestroyingBoundObjectsClearsState(t *testing.T) {
	b := newBackend(t)
	p, _ := b.CreateProgram("vs", "fs")
	fb, _ := b.CreateFrameBuffer()
	b.SetProgram(p)
	b.BindFrameBuffer(fb)

	b.DestroyProgram(p)
	b.DestroyFrameBuffer(fb)
	s := b.Snapshot()
	assert.Equal(t, metadata.ProgramHandle(metadata.InvalidHandle), s.Program)
	assert.Equal(t, metadata.FrameBufferHandle(metadata.InvalidHandle), s.FrameBuffer)
}

func TestDrawRecordsEveryPart(t *testing.T) {
	b := newBackend(t)
	g := metadata.Geometry{
		VertexBuffers: []metadata.VertexBufferBinding{{Handle: 1, VertexCount: 8}},
		Parts:         []metadata.IndexBufferBinding{{Handle: 2, IndexCount: 6}, {Handle: 3, IndexCount: 3}},
	}
	b.ResetCalls()
	b.Draw(g, 1)
	calls := b.CallsTo("DrawPart")
	require.Len(t, calls, 2)
	assert.Equal(t, []interface{}{metadata.ProgramHandle(1), 1, uint32(3)}, calls[1].Args)

	b.ResetCalls()
	g.Parts = nil
	b.Draw(g, 1)
	require.Len(t, b.CallsTo("Draw"), 1)
	assert.Equal(t, uint32(8), b.CallsTo("Draw")[0].Args[1])
}

func TestZeroViewportCoversBoundTarget(t *testing.T) {
	b := newBackend(t)
	color, err := b.Create2DTexture(metadata.TextureFormatRGBA, nil, 32, 16)
	require.NoError(t, err)
	fb, err := b.CreateFrameBuffer()
	require.NoError(t, err)
	require.NoError(t, b.UpdateFrameBuffer(fb, []metadata.TextureHandle{color}))

	b.SetViewport(metadata.Viewport{})
	assert.Equal(t, metadata.Viewport{Width: 320, Height: 200}, b.Snapshot().Viewport)
	b.BindFrameBuffer(fb)
	assert.Equal(t, metadata.Viewport{Width: 32, Height: 16}, b.Snapshot().Viewport)

	empty, err := b.CreateFrameBuffer()
	require.NoError(t, err)
	b.BindFrameBuffer(empty)
	assert.Equal(t, metadata.Viewport{}, b.Snapshot().Viewport)

	b.SetViewport(metadata.Viewport{X: 2, Y: 3, Width: 4, Height: 5})
	assert.Equal(t, metadata.Viewport{X: 2, Y: 3, Width: 4, Height: 5}, b.Snapshot().Viewport)
}

func TestCallLogIsBounded(t *testing.T) {
	b := newBackend(t)
	for i := 0; i < MaxRecordedCalls+10; i++ {
		require.NoError(t, b.BeginFrame())
		require.NoError(t, b.EndFrame())
	}
	calls := b.Calls()
	assert.LessOrEqual(t, len(calls), MaxRecordedCalls)
	assert.Equal(t, "EndFrame", calls[len(calls)-1].Op)
	assert.Equal(t, uint64(MaxRecordedCalls+10), b.Frames())
}
