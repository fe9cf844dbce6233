package platform

import (
	"runtime"

	"github.com/go-gl/glfw/v3.3/glfw"
	"github.com/spaghettifunk/solo/engine/core"
)

func init() {
	// GLFW event handling must run on the main OS thread
	runtime.LockOSThread()
}

// ClientAPI selects what the window is created for.
type ClientAPI int

const (
	// ClientAPIOpenGL creates an OpenGL 3.3 core context and makes it current.
	ClientAPIOpenGL ClientAPI = iota
	// ClientAPINone creates a bare window for Vulkan surfaces.
	ClientAPINone
)

type WindowConfig struct {
	Title      string
	Width      uint32
	Height     uint32
	Fullscreen bool
	VSync      bool
	API        ClientAPI
}

// Platform owns the GLFW window of a windowed backend.
type Platform struct {
	Window *glfw.Window

	width  uint32
	height uint32
}

// Startup initializes GLFW and opens the window. Failures are reported as
// ContextCreationError so callers can tell them apart from resource errors.
func Startup(config WindowConfig) (*Platform, error) {
	backend := "opengl"
	if config.API == ClientAPINone {
		backend = "vulkan"
	}
	if err := glfw.Init(); err != nil {
		core.LogError("failed to initialize glfw: %s", err)
		return nil, &core.ContextCreationError{Backend: backend, Err: err}
	}

	glfw.WindowHint(glfw.Visible, glfw.False)
	glfw.WindowHint(glfw.Resizable, glfw.True)
	switch config.API {
	case ClientAPINone:
		glfw.WindowHint(glfw.ClientAPI, glfw.NoAPI)
	case ClientAPIOpenGL:
		glfw.WindowHint(glfw.ContextVersionMajor, 3)
		glfw.WindowHint(glfw.ContextVersionMinor, 3)
		glfw.WindowHint(glfw.OpenGLProfile, glfw.OpenGLCoreProfile)
		glfw.WindowHint(glfw.OpenGLForwardCompatible, glfw.True)
	}

	var monitor *glfw.Monitor
	if config.Fullscreen {
		monitor = glfw.GetPrimaryMonitor()
	}
	window, err := glfw.CreateWindow(int(config.Width), int(config.Height), config.Title, monitor, nil)
	if err != nil {
		core.LogError("failed to create window: %s", err)
		glfw.Terminate()
		return nil, &core.ContextCreationError{Backend: backend, Err: err}
	}

	p := &Platform{Window: window}
	if config.API == ClientAPIOpenGL {
		window.MakeContextCurrent()
		if config.VSync {
			glfw.SwapInterval(1)
		} else {
			glfw.SwapInterval(0)
		}
	}

	w, h := window.GetFramebufferSize()
	p.width, p.height = uint32(w), uint32(h)
	window.SetFramebufferSizeCallback(p.framebufferSizeCallback)
	window.Show()

	return p, nil
}

func (p *Platform) framebufferSizeCallback(w *glfw.Window, width, height int) {
	p.width, p.height = uint32(width), uint32(height)
}

func (p *Platform) ShouldClose() bool {
	return p.Window.ShouldClose()
}

func (p *Platform) PollEvents() {
	glfw.PollEvents()
}

func (p *Platform) SwapBuffers() {
	p.Window.SwapBuffers()
}

// CanvasSize is the framebuffer size in pixels, which differs from the window
// size on high-DPI displays.
func (p *Platform) CanvasSize() (uint32, uint32) {
	return p.width, p.height
}

func (p *Platform) Destroy() {
	p.Window.Destroy()
	glfw.Terminate()
}

// RequiredInstanceExtensions lists the Vulkan instance extensions GLFW needs
// to create a surface for this window.
func (p *Platform) RequiredInstanceExtensions() []string {
	return p.Window.GetRequiredInstanceExtensions()
}

// GetAbsoluteTime returns the seconds since GLFW was initialized.
func GetAbsoluteTime() float64 {
	return glfw.GetTime()
}
