package engine

import (
	"fmt"

	"github.com/spaghettifunk/solo/engine/core"
	"github.com/spaghettifunk/solo/engine/renderer"
	"github.com/spaghettifunk/solo/engine/renderer/metadata"

	// Headless backends are always available.
	_ "github.com/spaghettifunk/solo/engine/renderer/null"
	_ "github.com/spaghettifunk/solo/engine/renderer/stub"
)

type Stage uint8

const (
	// Device is in an uninitialized state
	DeviceStageUninitialized Stage = iota
	// Device created its renderer and accepts resources
	DeviceStageRunning
	// Device is in the process of shutting down
	DeviceStageShuttingDown
	// Device released its renderer and window
	DeviceStageShutdown
)

// Resource is a GPU-backed object whose lifetime the Device oversees. Objects
// still alive at Shutdown are destroyed before the graphics context goes away.
type Resource interface {
	Name() string
	Destroy()
}

// Device owns the renderer and, for windowed backends, the window. Resource
// objects hold a non-owning reference to it.
type Device struct {
	setup     Setup
	stage     Stage
	renderer  *renderer.Renderer
	resources *core.Registry[uint64, Resource]
	clock     *core.Clock
	metrics   *core.FrameMetrics
	lastTime  float64
	width     uint32
	height    uint32
}

// CreateDevice configures logging and starts the backend named by the setup.
// Asking for a backend whose package is not linked into the binary fails here.
func CreateDevice(setup *Setup) (*Device, error) {
	if setup == nil {
		setup = DefaultSetup()
	}
	if err := setup.Validate(); err != nil {
		return nil, err
	}
	if err := core.ConfigureLogging(core.ParseLogLevel(setup.LogLevel), setup.LogFilePath); err != nil {
		return nil, err
	}

	r, err := renderer.New(setup.Mode, setup.backendConfig())
	if err != nil {
		return nil, fmt.Errorf("failed to create device: %w", err)
	}

	d := &Device{
		setup:     *setup,
		stage:     DeviceStageRunning,
		renderer:  r,
		resources: core.NewRegistry[uint64, Resource](),
		clock:     core.NewClock(),
		metrics:   core.NewFrameMetrics(),
	}
	d.width, d.height = r.CanvasSize()
	d.clock.Start()
	core.LogInfo("device created: %s %dx%d", setup.Mode, d.width, d.height)
	return d, nil
}

func (d *Device) Renderer() *renderer.Renderer {
	return d.renderer
}

func (d *Device) Mode() metadata.BackendMode {
	return d.setup.Mode
}

func (d *Device) Setup() Setup {
	return d.setup
}

func (d *Device) Stage() Stage {
	return d.stage
}

// Window is nil for headless backends.
func (d *Device) Window() metadata.Window {
	return d.renderer.Window()
}

func (d *Device) CanvasSize() (uint32, uint32) {
	return d.renderer.CanvasSize()
}

func (d *Device) Metrics() *core.FrameMetrics {
	return d.metrics
}

// Track registers a live resource and returns the id to pass to Untrack.
func (d *Device) Track(r Resource) (uint64, error) {
	if d.stage != DeviceStageRunning {
		return 0, core.ErrDeviceShutdown
	}
	return d.resources.Acquire(r), nil
}

func (d *Device) Untrack(id uint64) {
	if _, err := d.resources.Release(id); err != nil {
		core.LogDebug("untrack: %s", err)
	}
}

func (d *Device) LiveResources() int {
	return d.resources.Len()
}

// CloseRequested reports whether the user asked to close the window. It is
// always false for headless backends.
func (d *Device) CloseRequested() bool {
	w := d.Window()
	return w != nil && w.ShouldClose()
}

// Update runs one frame: it pumps window events, forwards canvas resizes to
// the renderer, and calls render between BeginFrame and EndFrame.
func (d *Device) Update(render func(deltaTime float64) error) error {
	if d.stage != DeviceStageRunning {
		return core.ErrDeviceShutdown
	}
	if w := d.Window(); w != nil {
		w.PollEvents()
		width, height := w.CanvasSize()
		if width != d.width || height != d.height {
			d.width, d.height = width, height
			core.LogDebug("canvas resize: %d, %d", width, height)
			d.renderer.OnResize(width, height)
		}
		if width == 0 || height == 0 {
			// minimized
			return nil
		}
	}

	d.clock.Update()
	currentTime := d.clock.Elapsed()
	delta := currentTime - d.lastTime
	d.lastTime = currentTime

	if err := d.renderer.BeginFrame(); err != nil {
		if err == core.ErrSwapchainBooting {
			return nil
		}
		return err
	}
	if err := render(delta); err != nil {
		d.renderer.EndFrame()
		return err
	}
	if err := d.renderer.EndFrame(); err != nil {
		return err
	}

	d.clock.Update()
	d.metrics.Update(d.clock.Elapsed() - currentTime)
	return nil
}

// Shutdown destroys every resource still alive, newest first, and then the
// renderer. Calling it twice is a no-op.
func (d *Device) Shutdown() error {
	if d.stage != DeviceStageRunning {
		return nil
	}
	d.stage = DeviceStageShuttingDown
	for _, id := range d.resources.Descending() {
		r, ok := d.resources.Get(id)
		if !ok {
			continue
		}
		core.LogWarn("destroying leaked resource %q at device shutdown", r.Name())
		r.Destroy()
		// Destroy normally untracks; make sure it is gone either way.
		d.resources.Release(id)
	}
	err := d.renderer.Shutdown()
	d.stage = DeviceStageShutdown
	d.clock.Stop()
	core.CloseLogging()
	return err
}
