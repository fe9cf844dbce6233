// Package null implements a renderer backend that performs no GPU work. It
// hands out real, distinct handles and records every call together with the
// fixed-function state those calls would leave behind, so tests can assert
// on what a GPU would have been told.
package null

import (
	"fmt"

	"github.com/spaghettifunk/solo/engine/core"
	"github.com/spaghettifunk/solo/engine/renderer"
	"github.com/spaghettifunk/solo/engine/renderer/metadata"
)

func init() {
	renderer.Register(metadata.BackendNull, func() renderer.Backend { return New() })
}

type Winding int

const (
	WindingCCW Winding = iota
	WindingCW
)

type CullFace int

const (
	CullFaceBack CullFace = iota
	CullFaceFrontAndBack
)

// State is the fixed-function state as a GL-style driver would hold it.
type State struct {
	Program     metadata.ProgramHandle
	FrameBuffer metadata.FrameBufferHandle
	Viewport    metadata.Viewport
	DepthTest   bool
	DepthWrite  bool
	CullEnabled bool
	FrontFace   Winding
	CullFace    CullFace
	PolygonMode metadata.PolygonMode
	Textures    map[uint32]metadata.TextureHandle
}

type Call struct {
	Op   string
	Args []interface{}
}

func (c Call) String() string {
	return fmt.Sprintf("%s%v", c.Op, c.Args)
}

type TextureInfo struct {
	Type       metadata.TextureType
	Format     metadata.TextureFormat
	Width      uint32
	Height     uint32
	Flags      metadata.TextureFlags
	Anisotropy float32
}

type bufferInfo struct {
	index       bool
	dynamic     bool
	vertexCount uint32
}

type programInfo struct {
	uniforms map[string]metadata.UniformValue
}

type Backend struct {
	width        uint32
	height       uint32
	textures     *core.Registry[metadata.TextureHandle, *TextureInfo]
	buffers      *core.Registry[metadata.BufferHandle, *bufferInfo]
	programs     *core.Registry[metadata.ProgramHandle, *programInfo]
	frameBuffers *core.Registry[metadata.FrameBufferHandle, []metadata.TextureHandle]
	state        State
	viewport     metadata.Viewport
	calls        []Call
	frames       uint64
}

func New() *Backend {
	return &Backend{
		textures:     core.NewRegistry[metadata.TextureHandle, *TextureInfo](),
		buffers:      core.NewRegistry[metadata.BufferHandle, *bufferInfo](),
		programs:     core.NewRegistry[metadata.ProgramHandle, *programInfo](),
		frameBuffers: core.NewRegistry[metadata.FrameBufferHandle, []metadata.TextureHandle](),
		state: State{
			Textures: map[uint32]metadata.TextureHandle{},
		},
	}
}

// MaxRecordedCalls bounds the call log; older calls are dropped first.
const MaxRecordedCalls = 1 << 14

func (b *Backend) record(op string, args ...interface{}) {
	if len(b.calls) >= MaxRecordedCalls {
		keep := MaxRecordedCalls / 2
		n := copy(b.calls, b.calls[len(b.calls)-keep:])
		clear(b.calls[n:])
		b.calls = b.calls[:n]
	}
	b.calls = append(b.calls, Call{Op: op, Args: args})
}

// Calls returns the recorded calls in order.
func (b *Backend) Calls() []Call {
	return append([]Call(nil), b.calls...)
}

// CallsTo returns the recorded calls named op.
func (b *Backend) CallsTo(op string) []Call {
	var out []Call
	for _, c := range b.calls {
		if c.Op == op {
			out = append(out, c)
		}
	}
	return out
}

func (b *Backend) ResetCalls() {
	b.calls = b.calls[:0]
}

// Snapshot returns a copy of the current fixed-function state.
// Snapshot returns the current state. A zero-size viewport is reported as
// the whole bound target.
func (b *Backend) Snapshot() State {
	s := b.state
	s.Viewport = b.viewport.Resolve(b.targetSize())
	s.Textures = make(map[uint32]metadata.TextureHandle, len(b.state.Textures))
	for k, v := range b.state.Textures {
		s.Textures[k] = v
	}
	return s
}

// Uniform returns the last value pushed to name on program.
func (b *Backend) Uniform(program metadata.ProgramHandle, name string) (metadata.UniformValue, bool) {
	p, ok := b.programs.Get(program)
	if !ok {
		return metadata.UniformValue{}, false
	}
	v, ok := p.uniforms[name]
	return v, ok
}

func (b *Backend) Texture(handle metadata.TextureHandle) (TextureInfo, bool) {
	t, ok := b.textures.Get(handle)
	if !ok {
		return TextureInfo{}, false
	}
	return *t, true
}

func (b *Backend) FrameBufferAttachments(handle metadata.FrameBufferHandle) ([]metadata.TextureHandle, bool) {
	return b.frameBuffers.Get(handle)
}

// Live reports how many objects of each category are still allocated.
func (b *Backend) Live() (textures, buffers, programs, frameBuffers int) {
	return b.textures.Len(), b.buffers.Len(), b.programs.Len(), b.frameBuffers.Len()
}

func (b *Backend) Frames() uint64 {
	return b.frames
}

func (b *Backend) Initialize(config metadata.BackendConfig) error {
	b.width, b.height = config.CanvasWidth, config.CanvasHeight
	b.viewport = metadata.Viewport{Width: b.width, Height: b.height}
	b.record("Initialize", config.CanvasWidth, config.CanvasHeight)
	return nil
}

func (b *Backend) Shutdown() error {
	b.record("Shutdown")
	return nil
}

func (b *Backend) Resized(width, height uint32) {
	b.width, b.height = width, height
	b.record("Resized", width, height)
}

func (b *Backend) Window() metadata.Window {
	return nil
}

func (b *Backend) CanvasSize() (uint32, uint32) {
	return b.width, b.height
}

func (b *Backend) BeginFrame() error {
	b.record("BeginFrame")
	return nil
}

func (b *Backend) EndFrame() error {
	b.frames++
	b.record("EndFrame")
	return nil
}

func (b *Backend) Create2DTexture(format metadata.TextureFormat, data []byte, width, height uint32) (metadata.TextureHandle, error) {
	h := b.textures.Acquire(&TextureInfo{
		Type:   metadata.TextureType2d,
		Format: format,
		Width:  width,
		Height: height,
		Flags:  metadata.DefaultTextureFlags,
	})
	b.record("Create2DTexture", h, format, width, height)
	return h, nil
}

func (b *Backend) Update2DTexture(handle metadata.TextureHandle, format metadata.TextureFormat, data []byte, width, height uint32) error {
	t, ok := b.textures.Get(handle)
	if !ok {
		return fmt.Errorf("null: unknown texture %d", handle)
	}
	t.Format, t.Width, t.Height = format, width, height
	b.record("Update2DTexture", handle, format, width, height)
	return nil
}

func (b *Backend) Generate2DTextureMipmaps(handle metadata.TextureHandle) error {
	b.record("Generate2DTextureMipmaps", handle)
	return nil
}

func (b *Backend) CreateCubeTexture(format metadata.TextureFormat, dimension uint32) (metadata.TextureHandle, error) {
	h := b.textures.Acquire(&TextureInfo{
		Type:   metadata.TextureTypeCube,
		Format: format,
		Width:  dimension,
		Height: dimension,
		Flags:  metadata.DefaultTextureFlags,
	})
	b.record("CreateCubeTexture", h, format, dimension)
	return h, nil
}

func (b *Backend) UpdateCubeTexture(handle metadata.TextureHandle, face metadata.CubeFace, format metadata.TextureFormat, data []byte, dimension uint32) error {
	if _, ok := b.textures.Get(handle); !ok {
		return fmt.Errorf("null: unknown texture %d", handle)
	}
	b.record("UpdateCubeTexture", handle, face, format, dimension)
	return nil
}

func (b *Backend) GenerateCubeTextureMipmaps(handle metadata.TextureHandle) error {
	b.record("GenerateCubeTextureMipmaps", handle)
	return nil
}

func (b *Backend) SetTextureSampling(handle metadata.TextureHandle, textureType metadata.TextureType, flags metadata.TextureFlags, anisotropy float32) {
	if t, ok := b.textures.Get(handle); ok {
		t.Flags, t.Anisotropy = flags, anisotropy
	}
	b.record("SetTextureSampling", handle, flags, anisotropy)
}

func (b *Backend) BindTexture(unit uint32, textureType metadata.TextureType, handle metadata.TextureHandle) {
	b.state.Textures[unit] = handle
	b.record("BindTexture", unit, handle)
}

func (b *Backend) DestroyTexture(handle metadata.TextureHandle) {
	b.textures.Release(handle)
	b.record("DestroyTexture", handle)
}

func (b *Backend) CreateVertexBuffer(layout metadata.VertexBufferLayout, data []float32, vertexCount uint32) (metadata.BufferHandle, error) {
	h := b.buffers.Acquire(&bufferInfo{vertexCount: vertexCount})
	b.record("CreateVertexBuffer", h, vertexCount)
	return h, nil
}

func (b *Backend) CreateDynamicVertexBuffer(layout metadata.VertexBufferLayout, data []float32, vertexCount uint32) (metadata.BufferHandle, error) {
	h := b.buffers.Acquire(&bufferInfo{dynamic: true, vertexCount: vertexCount})
	b.record("CreateDynamicVertexBuffer", h, vertexCount)
	return h, nil
}

func (b *Backend) UpdateDynamicVertexBuffer(handle metadata.BufferHandle, layout metadata.VertexBufferLayout, vertexOffset uint32, data []float32, vertexCount uint32) {
	b.record("UpdateDynamicVertexBuffer", handle, vertexOffset, vertexCount)
}

func (b *Backend) DestroyVertexBuffer(handle metadata.BufferHandle) {
	b.buffers.Release(handle)
	b.record("DestroyVertexBuffer", handle)
}

func (b *Backend) CreateIndexBuffer(indices []uint16) (metadata.BufferHandle, error) {
	h := b.buffers.Acquire(&bufferInfo{index: true})
	b.record("CreateIndexBuffer", h, len(indices))
	return h, nil
}

func (b *Backend) DestroyIndexBuffer(handle metadata.BufferHandle) {
	b.buffers.Release(handle)
	b.record("DestroyIndexBuffer", handle)
}

func (b *Backend) CreateProgram(vertexSource, fragmentSource string) (metadata.ProgramHandle, error) {
	if err := checkSources(vertexSource, fragmentSource); err != nil {
		return metadata.InvalidHandle, err
	}
	h := b.programs.Acquire(&programInfo{uniforms: map[string]metadata.UniformValue{}})
	b.record("CreateProgram", h)
	return h, nil
}

func (b *Backend) DestroyProgram(handle metadata.ProgramHandle) {
	b.programs.Release(handle)
	if b.state.Program == handle {
		b.state.Program = metadata.InvalidHandle
	}
	b.record("DestroyProgram", handle)
}

func (b *Backend) SetProgram(handle metadata.ProgramHandle) {
	b.state.Program = handle
	b.record("SetProgram", handle)
}

func (b *Backend) SetUniform(handle metadata.ProgramHandle, name string, value metadata.UniformValue) {
	if p, ok := b.programs.Get(handle); ok {
		p.uniforms[name] = value
	}
	if value.Type == metadata.ShaderUniformTypeSampler {
		b.state.Textures[value.Unit] = value.Texture
	}
	b.record("SetUniform", handle, name, value.Type)
}

func (b *Backend) CreateFrameBuffer() (metadata.FrameBufferHandle, error) {
	h := b.frameBuffers.Acquire(nil)
	b.record("CreateFrameBuffer", h)
	return h, nil
}

func (b *Backend) UpdateFrameBuffer(handle metadata.FrameBufferHandle, attachments []metadata.TextureHandle) error {
	if err := b.frameBuffers.Replace(handle, append([]metadata.TextureHandle(nil), attachments...)); err != nil {
		return err
	}
	b.record("UpdateFrameBuffer", handle, len(attachments))
	return nil
}

func (b *Backend) BindFrameBuffer(handle metadata.FrameBufferHandle) {
	b.state.FrameBuffer = handle
	b.record("BindFrameBuffer", handle)
}

func (b *Backend) DestroyFrameBuffer(handle metadata.FrameBufferHandle) {
	b.frameBuffers.Release(handle)
	if b.state.FrameBuffer == handle {
		b.state.FrameBuffer = metadata.InvalidHandle
	}
	b.record("DestroyFrameBuffer", handle)
}

// targetSize is the canvas size, or the size of the first attachment of the
// bound frame buffer.
func (b *Backend) targetSize() (uint32, uint32) {
	if b.state.FrameBuffer == metadata.InvalidHandle {
		return b.width, b.height
	}
	attachments, _ := b.frameBuffers.Get(b.state.FrameBuffer)
	if len(attachments) == 0 {
		return 0, 0
	}
	if t, ok := b.textures.Get(attachments[0]); ok {
		return t.Width, t.Height
	}
	return 0, 0
}

func (b *Backend) SetViewport(viewport metadata.Viewport) {
	b.viewport = viewport
	b.record("SetViewport", viewport.X, viewport.Y, viewport.Width, viewport.Height)
}

// SetState translates the render state the way a GL driver would see it.
func (b *Backend) SetState(state metadata.RenderState) {
	b.state.DepthTest = state.DepthTest
	b.state.DepthWrite = state.DepthWrite
	b.state.PolygonMode = state.PolygonMode
	switch state.FaceCull {
	case metadata.FaceCullNone:
		b.state.CullEnabled = false
	case metadata.FaceCullCW:
		b.state.CullEnabled = true
		b.state.FrontFace = WindingCW
		b.state.CullFace = CullFaceBack
	case metadata.FaceCullCCW:
		b.state.CullEnabled = true
		b.state.FrontFace = WindingCCW
		b.state.CullFace = CullFaceBack
	case metadata.FaceCullAll:
		b.state.CullEnabled = true
		b.state.CullFace = CullFaceFrontAndBack
	}
	b.record("SetState", state)
}

func (b *Backend) Clear(color, depth bool, r, g, bl, a float32) {
	b.record("Clear", color, depth, r, g, bl, a)
}

func (b *Backend) Draw(geometry metadata.Geometry, program metadata.ProgramHandle) {
	if len(geometry.Parts) == 0 {
		b.record("Draw", program, geometry.MinVertexCount())
		return
	}
	for i := range geometry.Parts {
		b.DrawPart(geometry, i, program)
	}
}

func (b *Backend) DrawPart(geometry metadata.Geometry, part int, program metadata.ProgramHandle) {
	b.record("DrawPart", program, part, geometry.Parts[part].IndexCount)
}

func checkSources(vertexSource, fragmentSource string) error {
	if vertexSource == "" {
		return &core.ShaderCompilationError{Stage: core.ShaderStageVertex, Log: "empty source"}
	}
	if fragmentSource == "" {
		return &core.ShaderCompilationError{Stage: core.ShaderStageFragment, Log: "empty source"}
	}
	return nil
}
