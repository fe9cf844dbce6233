package renderer

import (
	"fmt"
	"sort"

	"github.com/spaghettifunk/solo/engine/core"
	"github.com/spaghettifunk/solo/engine/renderer/metadata"
)

// Backend is implemented once per graphics API. Every method is called from
// the render thread only, in program order, and must not save or restore GPU
// state it was not asked to change.
type Backend interface {
	Initialize(config metadata.BackendConfig) error
	Shutdown() error
	Resized(width, height uint32)
	// Window is nil for headless backends.
	Window() metadata.Window
	CanvasSize() (uint32, uint32)
	BeginFrame() error
	EndFrame() error

	Create2DTexture(format metadata.TextureFormat, data []byte, width, height uint32) (metadata.TextureHandle, error)
	Update2DTexture(handle metadata.TextureHandle, format metadata.TextureFormat, data []byte, width, height uint32) error
	Generate2DTextureMipmaps(handle metadata.TextureHandle) error
	CreateCubeTexture(format metadata.TextureFormat, dimension uint32) (metadata.TextureHandle, error)
	UpdateCubeTexture(handle metadata.TextureHandle, face metadata.CubeFace, format metadata.TextureFormat, data []byte, dimension uint32) error
	GenerateCubeTextureMipmaps(handle metadata.TextureHandle) error
	SetTextureSampling(handle metadata.TextureHandle, textureType metadata.TextureType, flags metadata.TextureFlags, anisotropy float32)
	BindTexture(unit uint32, textureType metadata.TextureType, handle metadata.TextureHandle)
	DestroyTexture(handle metadata.TextureHandle)

	CreateVertexBuffer(layout metadata.VertexBufferLayout, data []float32, vertexCount uint32) (metadata.BufferHandle, error)
	CreateDynamicVertexBuffer(layout metadata.VertexBufferLayout, data []float32, vertexCount uint32) (metadata.BufferHandle, error)
	UpdateDynamicVertexBuffer(handle metadata.BufferHandle, layout metadata.VertexBufferLayout, vertexOffset uint32, data []float32, vertexCount uint32)
	DestroyVertexBuffer(handle metadata.BufferHandle)
	CreateIndexBuffer(indices []uint16) (metadata.BufferHandle, error)
	DestroyIndexBuffer(handle metadata.BufferHandle)

	CreateProgram(vertexSource, fragmentSource string) (metadata.ProgramHandle, error)
	DestroyProgram(handle metadata.ProgramHandle)
	SetProgram(handle metadata.ProgramHandle)
	SetUniform(handle metadata.ProgramHandle, name string, value metadata.UniformValue)

	CreateFrameBuffer() (metadata.FrameBufferHandle, error)
	UpdateFrameBuffer(handle metadata.FrameBufferHandle, attachments []metadata.TextureHandle) error
	BindFrameBuffer(handle metadata.FrameBufferHandle)
	DestroyFrameBuffer(handle metadata.FrameBufferHandle)

	SetViewport(viewport metadata.Viewport)
	SetState(state metadata.RenderState)
	Clear(color, depth bool, r, g, b, a float32)
	Draw(geometry metadata.Geometry, program metadata.ProgramHandle)
	DrawPart(geometry metadata.Geometry, part int, program metadata.ProgramHandle)
}

// Factory builds an uninitialized backend.
type Factory func() Backend

var factories = map[metadata.BackendMode]Factory{}

// Register makes a backend available to New. Backend packages call it from
// init, so a backend exists in a binary only when its package is imported.
func Register(mode metadata.BackendMode, factory Factory) {
	if factory == nil {
		panic("renderer: Register factory is nil")
	}
	if _, dup := factories[mode]; dup {
		panic(fmt.Sprintf("renderer: Register called twice for %s", mode))
	}
	factories[mode] = factory
}

// Registered lists the backends linked into this binary.
func Registered() []metadata.BackendMode {
	modes := make([]metadata.BackendMode, 0, len(factories))
	for m := range factories {
		modes = append(modes, m)
	}
	sort.Slice(modes, func(i, j int) bool { return modes[i] < modes[j] })
	return modes
}

func newBackend(mode metadata.BackendMode) (Backend, error) {
	factory, ok := factories[mode]
	if !ok {
		return nil, fmt.Errorf("%w: %s (linked: %v)", core.ErrBackendUnavailable, mode, Registered())
	}
	return factory(), nil
}
