package renderer

import (
	"fmt"

	"github.com/spaghettifunk/solo/engine/core"
	"github.com/spaghettifunk/solo/engine/renderer/metadata"
)

// Renderer is the only path from resource objects to the GPU. It keeps no
// list of the resources it creates: their owners destroy them.
type Renderer struct {
	mode    metadata.BackendMode
	backend Backend
	inFrame bool
}

// New creates and initializes the backend registered for mode.
func New(mode metadata.BackendMode, config metadata.BackendConfig) (*Renderer, error) {
	backend, err := newBackend(mode)
	if err != nil {
		core.LogError("%s", err.Error())
		return nil, err
	}
	if err := backend.Initialize(config); err != nil {
		core.LogError("failed to initialize %s backend: %s", mode, err)
		return nil, err
	}
	core.LogInfo("%s renderer backend initialized", mode)
	return &Renderer{
		mode:    mode,
		backend: backend,
	}, nil
}

func (r *Renderer) Mode() metadata.BackendMode {
	return r.mode
}

// Backend exposes the concrete backend, mainly for inspection in tests.
func (r *Renderer) Backend() Backend {
	return r.backend
}

func (r *Renderer) Window() metadata.Window {
	return r.backend.Window()
}

func (r *Renderer) CanvasSize() (uint32, uint32) {
	return r.backend.CanvasSize()
}

func (r *Renderer) Shutdown() error {
	if err := r.backend.Shutdown(); err != nil {
		core.LogError("failed to shut down %s backend: %s", r.mode, err)
		return err
	}
	return nil
}

func (r *Renderer) OnResize(width, height uint32) {
	r.backend.Resized(width, height)
}

func (r *Renderer) BeginFrame() error {
	if err := r.backend.BeginFrame(); err != nil {
		return err
	}
	r.inFrame = true
	return nil
}

func (r *Renderer) EndFrame() error {
	r.inFrame = false
	if err := r.backend.EndFrame(); err != nil {
		core.LogError("EndFrame failed: %s", err)
		return err
	}
	return nil
}

func (r *Renderer) InFrame() bool {
	return r.inFrame
}

func (r *Renderer) Create2DTexture(format metadata.TextureFormat, data []byte, width, height uint32) (metadata.TextureHandle, error) {
	if err := metadata.CheckTextureData(format, data, width, height); err != nil {
		return metadata.InvalidHandle, err
	}
	h, err := r.backend.Create2DTexture(format, data, width, height)
	if err != nil {
		core.LogError("failed to create %dx%d %s texture: %s", width, height, format, err)
		return metadata.InvalidHandle, err
	}
	return h, nil
}

func (r *Renderer) Update2DTexture(handle metadata.TextureHandle, format metadata.TextureFormat, data []byte, width, height uint32) error {
	if err := metadata.CheckTextureData(format, data, width, height); err != nil {
		return err
	}
	return r.backend.Update2DTexture(handle, format, data, width, height)
}

func (r *Renderer) Generate2DTextureMipmaps(handle metadata.TextureHandle) error {
	return r.backend.Generate2DTextureMipmaps(handle)
}

func (r *Renderer) CreateCubeTexture(format metadata.TextureFormat, dimension uint32) (metadata.TextureHandle, error) {
	if err := format.Validate(); err != nil {
		return metadata.InvalidHandle, err
	}
	if format.IsDepth() {
		return metadata.InvalidHandle, &core.UnsupportedFormatError{Format: "cube " + format.String()}
	}
	h, err := r.backend.CreateCubeTexture(format, dimension)
	if err != nil {
		core.LogError("failed to create %d cube %s texture: %s", dimension, format, err)
		return metadata.InvalidHandle, err
	}
	return h, nil
}

func (r *Renderer) UpdateCubeTexture(handle metadata.TextureHandle, face metadata.CubeFace, format metadata.TextureFormat, data []byte, dimension uint32) error {
	if face < metadata.CubeFacePositiveX || face > metadata.CubeFaceNegativeZ {
		return fmt.Errorf("invalid cube face %d", face)
	}
	if err := metadata.CheckTextureData(format, data, dimension, dimension); err != nil {
		return err
	}
	return r.backend.UpdateCubeTexture(handle, face, format, data, dimension)
}

func (r *Renderer) GenerateCubeTextureMipmaps(handle metadata.TextureHandle) error {
	return r.backend.GenerateCubeTextureMipmaps(handle)
}

func (r *Renderer) SetTextureSampling(handle metadata.TextureHandle, textureType metadata.TextureType, flags metadata.TextureFlags, anisotropy float32) {
	r.backend.SetTextureSampling(handle, textureType, flags, anisotropy)
}

func (r *Renderer) BindTexture(unit uint32, textureType metadata.TextureType, handle metadata.TextureHandle) {
	r.backend.BindTexture(unit, textureType, handle)
}

func (r *Renderer) DestroyTexture(handle metadata.TextureHandle) {
	r.backend.DestroyTexture(handle)
}

func (r *Renderer) CreateVertexBuffer(layout metadata.VertexBufferLayout, data []float32, vertexCount uint32) (metadata.BufferHandle, error) {
	if err := checkVertexData(layout, data, vertexCount); err != nil {
		return metadata.InvalidHandle, err
	}
	return r.backend.CreateVertexBuffer(layout, data, vertexCount)
}

func (r *Renderer) CreateDynamicVertexBuffer(layout metadata.VertexBufferLayout, data []float32, vertexCount uint32) (metadata.BufferHandle, error) {
	if err := checkVertexData(layout, data, vertexCount); err != nil {
		return metadata.InvalidHandle, err
	}
	return r.backend.CreateDynamicVertexBuffer(layout, data, vertexCount)
}

// UpdateDynamicVertexBuffer overwrites vertexCount vertices starting at
// vertexOffset. The range must lie inside the buffer; it is not checked here.
func (r *Renderer) UpdateDynamicVertexBuffer(handle metadata.BufferHandle, layout metadata.VertexBufferLayout, vertexOffset uint32, data []float32, vertexCount uint32) {
	r.backend.UpdateDynamicVertexBuffer(handle, layout, vertexOffset, data, vertexCount)
}

func (r *Renderer) DestroyVertexBuffer(handle metadata.BufferHandle) {
	r.backend.DestroyVertexBuffer(handle)
}

func (r *Renderer) CreateIndexBuffer(indices []uint16) (metadata.BufferHandle, error) {
	if len(indices) == 0 {
		return metadata.InvalidHandle, fmt.Errorf("index buffer must not be empty")
	}
	return r.backend.CreateIndexBuffer(indices)
}

func (r *Renderer) DestroyIndexBuffer(handle metadata.BufferHandle) {
	r.backend.DestroyIndexBuffer(handle)
}

func (r *Renderer) CreateProgram(vertexSource, fragmentSource string) (metadata.ProgramHandle, error) {
	h, err := r.backend.CreateProgram(vertexSource, fragmentSource)
	if err != nil {
		core.LogError("failed to create program: %s", err)
		return metadata.InvalidHandle, err
	}
	return h, nil
}

func (r *Renderer) DestroyProgram(handle metadata.ProgramHandle) {
	r.backend.DestroyProgram(handle)
}

func (r *Renderer) SetProgram(handle metadata.ProgramHandle) {
	r.backend.SetProgram(handle)
}

func (r *Renderer) SetUniform(handle metadata.ProgramHandle, name string, value metadata.UniformValue) {
	r.backend.SetUniform(handle, name, value)
}

func (r *Renderer) CreateFrameBuffer() (metadata.FrameBufferHandle, error) {
	return r.backend.CreateFrameBuffer()
}

func (r *Renderer) UpdateFrameBuffer(handle metadata.FrameBufferHandle, attachments []metadata.TextureHandle) error {
	return r.backend.UpdateFrameBuffer(handle, attachments)
}

// BindFrameBuffer makes handle the render target; InvalidHandle selects the
// default (window) frame buffer.
func (r *Renderer) BindFrameBuffer(handle metadata.FrameBufferHandle) {
	r.backend.BindFrameBuffer(handle)
}

func (r *Renderer) DestroyFrameBuffer(handle metadata.FrameBufferHandle) {
	r.backend.DestroyFrameBuffer(handle)
}

func (r *Renderer) SetViewport(viewport metadata.Viewport) {
	r.backend.SetViewport(viewport)
}

func (r *Renderer) SetState(state metadata.RenderState) {
	r.backend.SetState(state)
}

func (r *Renderer) Clear(color, depth bool, red, green, blue, alpha float32) {
	r.backend.Clear(color, depth, red, green, blue, alpha)
}

// Draw renders every part of geometry, or all its vertices when it has no
// index parts.
func (r *Renderer) Draw(geometry metadata.Geometry, program metadata.ProgramHandle) {
	r.backend.Draw(geometry, program)
}

func (r *Renderer) DrawPart(geometry metadata.Geometry, part int, program metadata.ProgramHandle) {
	r.backend.DrawPart(geometry, part, program)
}

func checkVertexData(layout metadata.VertexBufferLayout, data []float32, vertexCount uint32) error {
	if err := layout.Validate(); err != nil {
		return err
	}
	if len(data) == 0 {
		return nil
	}
	if want := int(layout.FloatsPerVertex() * vertexCount); len(data) != want {
		return fmt.Errorf("%w: got %d floats, want %d", core.ErrVertexDataSize, len(data), want)
	}
	return nil
}
