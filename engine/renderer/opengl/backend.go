// Package opengl implements the renderer backend on OpenGL 3.3 core. It opens
// its own GLFW window; link it into a binary with a blank import.
package opengl

import (
	"fmt"

	"github.com/go-gl/gl/v3.3-core/gl"
	"github.com/spaghettifunk/solo/engine/core"
	"github.com/spaghettifunk/solo/engine/platform"
	"github.com/spaghettifunk/solo/engine/renderer"
	"github.com/spaghettifunk/solo/engine/renderer/metadata"
)

func init() {
	renderer.Register(metadata.BackendOpenGL, func() renderer.Backend { return New() })
}

type Backend struct {
	platform *platform.Platform

	vao               uint32
	enabledAttributes uint32
	maxAnisotropy     float32

	textures     *core.Registry[metadata.TextureHandle, *texture]
	buffers      *core.Registry[metadata.BufferHandle, *buffer]
	programs     *core.Registry[metadata.ProgramHandle, *program]
	frameBuffers *core.Registry[metadata.FrameBufferHandle, *frameBuffer]

	currentProgram     metadata.ProgramHandle
	currentFrameBuffer metadata.FrameBufferHandle
	viewport           metadata.Viewport
	state              metadata.RenderState
}

func New() *Backend {
	return &Backend{
		textures:     core.NewRegistry[metadata.TextureHandle, *texture](),
		buffers:      core.NewRegistry[metadata.BufferHandle, *buffer](),
		programs:     core.NewRegistry[metadata.ProgramHandle, *program](),
		frameBuffers: core.NewRegistry[metadata.FrameBufferHandle, *frameBuffer](),
	}
}

func (b *Backend) Initialize(config metadata.BackendConfig) error {
	p, err := platform.Startup(platform.WindowConfig{
		Title:      config.Title,
		Width:      config.CanvasWidth,
		Height:     config.CanvasHeight,
		Fullscreen: config.Fullscreen,
		VSync:      config.VSync,
		API:        platform.ClientAPIOpenGL,
	})
	if err != nil {
		return err
	}
	b.platform = p

	if err := gl.Init(); err != nil {
		p.Destroy()
		return &core.ContextCreationError{Backend: "opengl", Err: err}
	}
	core.LogInfo("OpenGL %s, %s", gl.GoStr(gl.GetString(gl.VERSION)), gl.GoStr(gl.GetString(gl.RENDERER)))

	gl.GenVertexArrays(1, &b.vao)
	gl.BindVertexArray(b.vao)
	gl.PixelStorei(gl.UNPACK_ALIGNMENT, 1)

	if hasExtension("GL_EXT_texture_filter_anisotropic") || hasExtension("GL_ARB_texture_filter_anisotropic") {
		gl.GetFloatv(maxTextureMaxAnisotropy, &b.maxAnisotropy)
	}

	width, height := p.CanvasSize()
	b.SetViewport(metadata.Viewport{Width: width, Height: height})
	b.SetState(metadata.DefaultRenderState)
	return nil
}

func hasExtension(name string) bool {
	var count int32
	gl.GetIntegerv(gl.NUM_EXTENSIONS, &count)
	for i := int32(0); i < count; i++ {
		if gl.GoStr(gl.GetStringi(gl.EXTENSIONS, uint32(i))) == name {
			return true
		}
	}
	return false
}

// Shutdown frees whatever the resource layer left behind and closes the
// window together with its context.
func (b *Backend) Shutdown() error {
	live := b.textures.Len() + b.buffers.Len() + b.programs.Len() + b.frameBuffers.Len()
	if live > 0 {
		core.LogWarn("opengl backend shut down with %d live objects", live)
	}
	for _, h := range b.frameBuffers.Descending() {
		b.DestroyFrameBuffer(h)
	}
	for _, h := range b.programs.Descending() {
		b.DestroyProgram(h)
	}
	for _, h := range b.buffers.Descending() {
		b.DestroyVertexBuffer(h)
	}
	for _, h := range b.textures.Descending() {
		b.DestroyTexture(h)
	}
	gl.DeleteVertexArrays(1, &b.vao)
	if b.platform != nil {
		b.platform.Destroy()
		b.platform = nil
	}
	return nil
}

func (b *Backend) Resized(width, height uint32) {
	core.LogDebug("opengl canvas resized to %dx%d", width, height)
	if b.currentFrameBuffer == metadata.InvalidHandle {
		b.applyViewport()
	}
}

func (b *Backend) Window() metadata.Window {
	if b.platform == nil {
		return nil
	}
	return b.platform
}

func (b *Backend) CanvasSize() (uint32, uint32) {
	if b.platform == nil {
		return 0, 0
	}
	return b.platform.CanvasSize()
}

func (b *Backend) BeginFrame() error {
	return nil
}

func (b *Backend) EndFrame() error {
	b.platform.SwapBuffers()
	if code := gl.GetError(); code != gl.NO_ERROR {
		return fmt.Errorf("opengl error 0x%x during frame", code)
	}
	return nil
}

// SetViewport keeps a zero-size viewport covering whichever target is bound.
func (b *Backend) SetViewport(viewport metadata.Viewport) {
	b.viewport = viewport
	b.applyViewport()
}

func (b *Backend) applyViewport() {
	vp := b.viewport.Resolve(b.targetSize())
	gl.Viewport(vp.X, vp.Y, int32(vp.Width), int32(vp.Height))
}

func (b *Backend) SetState(state metadata.RenderState) {
	b.state = state
	if state.DepthTest {
		gl.Enable(gl.DEPTH_TEST)
	} else {
		gl.Disable(gl.DEPTH_TEST)
	}
	gl.DepthMask(state.DepthWrite)

	switch state.FaceCull {
	case metadata.FaceCullNone:
		gl.Disable(gl.CULL_FACE)
	case metadata.FaceCullCW:
		gl.Enable(gl.CULL_FACE)
		gl.FrontFace(gl.CW)
		gl.CullFace(gl.BACK)
	case metadata.FaceCullCCW:
		gl.Enable(gl.CULL_FACE)
		gl.FrontFace(gl.CCW)
		gl.CullFace(gl.BACK)
	case metadata.FaceCullAll:
		gl.Enable(gl.CULL_FACE)
		gl.CullFace(gl.FRONT_AND_BACK)
	}

	switch state.PolygonMode {
	case metadata.PolygonModeFill:
		gl.PolygonMode(gl.FRONT_AND_BACK, gl.FILL)
	case metadata.PolygonModeWireframe:
		gl.PolygonMode(gl.FRONT_AND_BACK, gl.LINE)
	case metadata.PolygonModePoints:
		gl.PolygonMode(gl.FRONT_AND_BACK, gl.POINT)
	}
}

func (b *Backend) Clear(color, depth bool, r, g, bl, a float32) {
	var mask uint32
	if color {
		gl.ClearColor(r, g, bl, a)
		mask |= gl.COLOR_BUFFER_BIT
	}
	if depth {
		// Depth clears honour the depth mask.
		gl.DepthMask(true)
		mask |= gl.DEPTH_BUFFER_BIT
	}
	if mask == 0 {
		return
	}
	gl.Clear(mask)
	gl.DepthMask(b.state.DepthWrite)
}
