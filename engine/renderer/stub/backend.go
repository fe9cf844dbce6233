// Package stub implements a headless renderer backend that keeps CPU-side
// copies of everything uploaded to it. It is used when no window or GPU is
// available, for example on build machines.
package stub

import (
	"fmt"
	"math/bits"

	"github.com/spaghettifunk/solo/engine/core"
	"github.com/spaghettifunk/solo/engine/renderer"
	"github.com/spaghettifunk/solo/engine/renderer/metadata"
)

func init() {
	renderer.Register(metadata.BackendStub, func() renderer.Backend { return New() })
}

type texture struct {
	textureType metadata.TextureType
	format      metadata.TextureFormat
	width       uint32
	height      uint32
	levels      uint32
	faces       [][]byte
	flags       metadata.TextureFlags
	anisotropy  float32
}

type buffer struct {
	layout  metadata.VertexBufferLayout
	dynamic bool
	floats  []float32
	indices []uint16
}

type program struct {
	vertexSource   string
	fragmentSource string
	uniforms       map[string]metadata.UniformValue
}

type Backend struct {
	width        uint32
	height       uint32
	textures     *core.Registry[metadata.TextureHandle, *texture]
	buffers      *core.Registry[metadata.BufferHandle, *buffer]
	programs     *core.Registry[metadata.ProgramHandle, *program]
	frameBuffers *core.Registry[metadata.FrameBufferHandle, []metadata.TextureHandle]

	program     metadata.ProgramHandle
	frameBuffer metadata.FrameBufferHandle
	viewport    metadata.Viewport
	state       metadata.RenderState
	draws       int
}

func New() *Backend {
	return &Backend{
		textures:     core.NewRegistry[metadata.TextureHandle, *texture](),
		buffers:      core.NewRegistry[metadata.BufferHandle, *buffer](),
		programs:     core.NewRegistry[metadata.ProgramHandle, *program](),
		frameBuffers: core.NewRegistry[metadata.FrameBufferHandle, []metadata.TextureHandle](),
	}
}

// TextureData returns the stored pixels of a 2D texture or one cube face.
func (b *Backend) TextureData(handle metadata.TextureHandle, face metadata.CubeFace) ([]byte, bool) {
	t, ok := b.textures.Get(handle)
	if !ok || int(face) >= len(t.faces) {
		return nil, false
	}
	return t.faces[face], true
}

// TextureLevels reports the mip levels a texture holds, 1 until mipmaps are generated.
func (b *Backend) TextureLevels(handle metadata.TextureHandle) uint32 {
	if t, ok := b.textures.Get(handle); ok {
		return t.levels
	}
	return 0
}

// BufferData returns the shadow copy of a vertex buffer.
func (b *Backend) BufferData(handle metadata.BufferHandle) ([]float32, bool) {
	buf, ok := b.buffers.Get(handle)
	if !ok {
		return nil, false
	}
	return buf.floats, true
}

func (b *Backend) IndexData(handle metadata.BufferHandle) ([]uint16, bool) {
	buf, ok := b.buffers.Get(handle)
	if !ok {
		return nil, false
	}
	return buf.indices, true
}

func (b *Backend) Uniform(handle metadata.ProgramHandle, name string) (metadata.UniformValue, bool) {
	p, ok := b.programs.Get(handle)
	if !ok {
		return metadata.UniformValue{}, false
	}
	v, ok := p.uniforms[name]
	return v, ok
}

func (b *Backend) Program() metadata.ProgramHandle {
	return b.program
}

func (b *Backend) State() metadata.RenderState {
	return b.state
}

func (b *Backend) BoundFrameBuffer() metadata.FrameBufferHandle {
	return b.frameBuffer
}

// Viewport reports the current viewport, resolving a zero size against the
// bound target.
func (b *Backend) Viewport() metadata.Viewport {
	return b.viewport.Resolve(b.targetSize())
}

func (b *Backend) targetSize() (uint32, uint32) {
	if b.frameBuffer == metadata.InvalidHandle {
		return b.width, b.height
	}
	attachments, _ := b.frameBuffers.Get(b.frameBuffer)
	if len(attachments) == 0 {
		return 0, 0
	}
	if t, ok := b.textures.Get(attachments[0]); ok {
		return t.width, t.height
	}
	return 0, 0
}

func (b *Backend) DrawCount() int {
	return b.draws
}

func (b *Backend) Initialize(config metadata.BackendConfig) error {
	b.width, b.height = config.CanvasWidth, config.CanvasHeight
	b.viewport = metadata.Viewport{Width: b.width, Height: b.height}
	return nil
}

func (b *Backend) Shutdown() error {
	if n := b.textures.Len() + b.buffers.Len() + b.programs.Len() + b.frameBuffers.Len(); n > 0 {
		core.LogWarn("stub backend shut down with %d live objects", n)
	}
	return nil
}

func (b *Backend) Resized(width, height uint32) {
	b.width, b.height = width, height
}

func (b *Backend) Window() metadata.Window {
	return nil
}

func (b *Backend) CanvasSize() (uint32, uint32) {
	return b.width, b.height
}

func (b *Backend) BeginFrame() error {
	b.draws = 0
	return nil
}

func (b *Backend) EndFrame() error {
	return nil
}

func copyPixels(format metadata.TextureFormat, data []byte, width, height uint32) []byte {
	out := make([]byte, width*height*format.BytesPerPixel())
	copy(out, data)
	return out
}

func (b *Backend) Create2DTexture(format metadata.TextureFormat, data []byte, width, height uint32) (metadata.TextureHandle, error) {
	return b.textures.Acquire(&texture{
		textureType: metadata.TextureType2d,
		format:      format,
		width:       width,
		height:      height,
		levels:      1,
		faces:       [][]byte{copyPixels(format, data, width, height)},
		flags:       metadata.DefaultTextureFlags,
	}), nil
}

func (b *Backend) Update2DTexture(handle metadata.TextureHandle, format metadata.TextureFormat, data []byte, width, height uint32) error {
	t, ok := b.textures.Get(handle)
	if !ok {
		return fmt.Errorf("stub: unknown texture %d", handle)
	}
	t.format, t.width, t.height, t.levels = format, width, height, 1
	t.faces[0] = copyPixels(format, data, width, height)
	return nil
}

func mipLevels(width, height uint32) uint32 {
	larger := width
	if height > larger {
		larger = height
	}
	if larger == 0 {
		return 1
	}
	return uint32(bits.Len32(larger))
}

func (b *Backend) Generate2DTextureMipmaps(handle metadata.TextureHandle) error {
	t, ok := b.textures.Get(handle)
	if !ok {
		return fmt.Errorf("stub: unknown texture %d", handle)
	}
	t.levels = mipLevels(t.width, t.height)
	return nil
}

func (b *Backend) CreateCubeTexture(format metadata.TextureFormat, dimension uint32) (metadata.TextureHandle, error) {
	faces := make([][]byte, metadata.CubeFaceCount)
	for i := range faces {
		faces[i] = copyPixels(format, nil, dimension, dimension)
	}
	return b.textures.Acquire(&texture{
		textureType: metadata.TextureTypeCube,
		format:      format,
		width:       dimension,
		height:      dimension,
		levels:      1,
		faces:       faces,
		flags:       metadata.DefaultTextureFlags,
	}), nil
}

func (b *Backend) UpdateCubeTexture(handle metadata.TextureHandle, face metadata.CubeFace, format metadata.TextureFormat, data []byte, dimension uint32) error {
	t, ok := b.textures.Get(handle)
	if !ok || t.textureType != metadata.TextureTypeCube {
		return fmt.Errorf("stub: unknown cube texture %d", handle)
	}
	t.faces[face] = copyPixels(format, data, dimension, dimension)
	return nil
}

func (b *Backend) GenerateCubeTextureMipmaps(handle metadata.TextureHandle) error {
	return b.Generate2DTextureMipmaps(handle)
}

func (b *Backend) SetTextureSampling(handle metadata.TextureHandle, textureType metadata.TextureType, flags metadata.TextureFlags, anisotropy float32) {
	if t, ok := b.textures.Get(handle); ok {
		t.flags, t.anisotropy = flags, anisotropy
	}
}

func (b *Backend) BindTexture(unit uint32, textureType metadata.TextureType, handle metadata.TextureHandle) {}

func (b *Backend) DestroyTexture(handle metadata.TextureHandle) {
	b.textures.Release(handle)
}

func (b *Backend) CreateVertexBuffer(layout metadata.VertexBufferLayout, data []float32, vertexCount uint32) (metadata.BufferHandle, error) {
	floats := make([]float32, layout.FloatsPerVertex()*vertexCount)
	copy(floats, data)
	return b.buffers.Acquire(&buffer{layout: layout, floats: floats}), nil
}

func (b *Backend) CreateDynamicVertexBuffer(layout metadata.VertexBufferLayout, data []float32, vertexCount uint32) (metadata.BufferHandle, error) {
	h, err := b.CreateVertexBuffer(layout, data, vertexCount)
	if err != nil {
		return h, err
	}
	buf, _ := b.buffers.Get(h)
	buf.dynamic = true
	return h, nil
}

// UpdateDynamicVertexBuffer writes into the existing shadow storage without
// reallocating it. Out-of-range updates panic like any slice overrun.
func (b *Backend) UpdateDynamicVertexBuffer(handle metadata.BufferHandle, layout metadata.VertexBufferLayout, vertexOffset uint32, data []float32, vertexCount uint32) {
	buf, ok := b.buffers.Get(handle)
	if !ok {
		core.LogWarn("stub: update of unknown vertex buffer %d", handle)
		return
	}
	per := layout.FloatsPerVertex()
	start := vertexOffset * per
	copy(buf.floats[start:start+vertexCount*per], data)
}

func (b *Backend) DestroyVertexBuffer(handle metadata.BufferHandle) {
	b.buffers.Release(handle)
}

func (b *Backend) CreateIndexBuffer(indices []uint16) (metadata.BufferHandle, error) {
	return b.buffers.Acquire(&buffer{indices: append([]uint16(nil), indices...)}), nil
}

func (b *Backend) DestroyIndexBuffer(handle metadata.BufferHandle) {
	b.buffers.Release(handle)
}

func (b *Backend) CreateProgram(vertexSource, fragmentSource string) (metadata.ProgramHandle, error) {
	if vertexSource == "" {
		return metadata.InvalidHandle, &core.ShaderCompilationError{Stage: core.ShaderStageVertex, Log: "empty source"}
	}
	if fragmentSource == "" {
		return metadata.InvalidHandle, &core.ShaderCompilationError{Stage: core.ShaderStageFragment, Log: "empty source"}
	}
	return b.programs.Acquire(&program{
		vertexSource:   vertexSource,
		fragmentSource: fragmentSource,
		uniforms:       map[string]metadata.UniformValue{},
	}), nil
}

func (b *Backend) DestroyProgram(handle metadata.ProgramHandle) {
	b.programs.Release(handle)
}

func (b *Backend) SetProgram(handle metadata.ProgramHandle) {
	b.program = handle
}

func (b *Backend) SetUniform(handle metadata.ProgramHandle, name string, value metadata.UniformValue) {
	if p, ok := b.programs.Get(handle); ok {
		p.uniforms[name] = value
	}
}

func (b *Backend) CreateFrameBuffer() (metadata.FrameBufferHandle, error) {
	return b.frameBuffers.Acquire(nil), nil
}

func (b *Backend) UpdateFrameBuffer(handle metadata.FrameBufferHandle, attachments []metadata.TextureHandle) error {
	for _, a := range attachments {
		if _, ok := b.textures.Get(a); !ok {
			return fmt.Errorf("stub: frame buffer %d attaches unknown texture %d", handle, a)
		}
	}
	return b.frameBuffers.Replace(handle, append([]metadata.TextureHandle(nil), attachments...))
}

func (b *Backend) BindFrameBuffer(handle metadata.FrameBufferHandle) {
	b.frameBuffer = handle
}

func (b *Backend) DestroyFrameBuffer(handle metadata.FrameBufferHandle) {
	b.frameBuffers.Release(handle)
	if b.frameBuffer == handle {
		b.frameBuffer = metadata.InvalidHandle
	}
}

func (b *Backend) SetViewport(viewport metadata.Viewport) {
	b.viewport = viewport
}

func (b *Backend) SetState(state metadata.RenderState) {
	b.state = state
}

func (b *Backend) Clear(color, depth bool, r, g, bl, a float32) {}

func (b *Backend) Draw(geometry metadata.Geometry, program metadata.ProgramHandle) {
	if len(geometry.Parts) == 0 {
		b.draws++
		return
	}
	for i := range geometry.Parts {
		b.DrawPart(geometry, i, program)
	}
}

func (b *Backend) DrawPart(geometry metadata.Geometry, part int, program metadata.ProgramHandle) {
	if _, ok := b.programs.Get(program); !ok {
		core.LogWarn("stub: draw with unknown program %d", program)
		return
	}
	b.draws++
}
