package engine

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/spaghettifunk/solo/engine/core"
	"github.com/spaghettifunk/solo/engine/renderer/metadata"
	"github.com/spaghettifunk/solo/engine/renderer/null"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recordingResource struct {
	name      string
	device    *Device
	id        uint64
	destroyed *[]string
}

func (r *recordingResource) Name() string { return r.name }

func (r *recordingResource) Destroy() {
	*r.destroyed = append(*r.destroyed, r.name)
	r.device.Untrack(r.id)
}

func newNullDevice(t *testing.T) *Device {
	t.Helper()
	device, err := CreateDevice(&Setup{Mode: metadata.BackendNull, CanvasWidth: 64, CanvasHeight: 48, LogLevel: "error"})
	require.NoError(t, err)
	t.Cleanup(func() { _ = device.Shutdown() })
	return device
}

func TestCreateDevice(t *testing.T) {
	device := newNullDevice(t)
	assert.Equal(t, DeviceStageRunning, device.Stage())
	assert.Equal(t, metadata.BackendNull, device.Mode())
	assert.Nil(t, device.Window())
	assert.False(t, device.CloseRequested())

	w, h := device.CanvasSize()
	assert.Equal(t, uint32(64), w)
	assert.Equal(t, uint32(48), h)
}

func TestCreateDeviceRejectsUnlinkedBackend(t *testing.T) {
	_, err := CreateDevice(&Setup{Mode: metadata.BackendOpenGL, CanvasWidth: 64, CanvasHeight: 64, LogLevel: "error"})
	assert.ErrorIs(t, err, core.ErrBackendUnavailable)

	_, err = CreateDevice(&Setup{Mode: metadata.BackendNull, LogLevel: "error"})
	assert.Error(t, err)
}

func TestShutdownDestroysLeaksNewestFirst(t *testing.T) {
	device := newNullDevice(t)
	var destroyed []string
	for _, name := range []string{"texture", "mesh", "material"} {
		r := &recordingResource{name: name, device: device, destroyed: &destroyed}
		id, err := device.Track(r)
		require.NoError(t, err)
		r.id = id
	}
	assert.Equal(t, 3, device.LiveResources())

	require.NoError(t, device.Shutdown())
	assert.Equal(t, []string{"material", "mesh", "texture"}, destroyed)
	assert.Zero(t, device.LiveResources())
	assert.Equal(t, DeviceStageShutdown, device.Stage())

	require.NoError(t, device.Shutdown())
	_, err := device.Track(&recordingResource{name: "late", device: device, destroyed: &destroyed})
	assert.ErrorIs(t, err, core.ErrDeviceShutdown)
	assert.ErrorIs(t, device.Update(func(float64) error { return nil }), core.ErrDeviceShutdown)
}

func TestUpdateWrapsRenderInFrame(t *testing.T) {
	device := newNullDevice(t)
	b := device.Renderer().Backend().(*null.Backend)
	b.ResetCalls()

	require.NoError(t, device.Update(func(float64) error {
		assert.True(t, device.Renderer().InFrame())
		device.Renderer().Clear(true, false, 0, 0, 0, 1)
		return nil
	}))

	var ops []string
	for _, c := range b.Calls() {
		ops = append(ops, c.Op)
	}
	assert.Equal(t, []string{"BeginFrame", "Clear", "EndFrame"}, ops)
}

func TestUpdateEndsFrameOnRenderError(t *testing.T) {
	device := newNullDevice(t)
	b := device.Renderer().Backend().(*null.Backend)
	boom := errors.New("boom")

	assert.ErrorIs(t, device.Update(func(float64) error { return boom }), boom)
	assert.Equal(t, uint64(1), b.Frames())
	assert.False(t, device.Renderer().InFrame())
}

func TestRunStopsAfterMaxFrames(t *testing.T) {
	device := newNullDevice(t)
	var initialized, shutdown bool
	var updates, renders int
	game := &Game{
		FnInitialize: func(d *Device) error { initialized = d == device; return nil },
		FnUpdate:     func(float64) error { updates++; return nil },
		FnRender:     func(float64) error { renders++; return nil },
		FnShutdown:   func() error { shutdown = true; return nil },
		MaxFrames:    5,
	}

	require.NoError(t, Run(device, game))
	assert.True(t, initialized)
	assert.True(t, shutdown)
	assert.Equal(t, 5, updates)
	assert.Equal(t, 5, renders)
	assert.Equal(t, uint64(5), device.Renderer().Backend().(*null.Backend).Frames())
}

func TestRunStopsWhenStopIsClosed(t *testing.T) {
	device := newNullDevice(t)
	stop := make(chan struct{})
	frames := 0
	game := &Game{
		FnRender: func(float64) error {
			frames++
			if frames == 3 {
				close(stop)
			}
			return nil
		},
		Stop: stop,
	}

	require.NoError(t, Run(device, game))
	assert.Equal(t, 3, frames)
}

func TestRunSurfacesCallbackErrors(t *testing.T) {
	device := newNullDevice(t)
	boom := errors.New("boom")
	shutdown := false

	err := Run(device, &Game{
		FnInitialize: func(*Device) error { return boom },
		FnShutdown:   func() error { shutdown = true; return nil },
	})
	assert.ErrorIs(t, err, boom)
	assert.False(t, shutdown)

	err = Run(device, &Game{
		FnUpdate:  func(float64) error { return boom },
		MaxFrames: 10,
	})
	assert.ErrorIs(t, err, boom)
}

func TestLoadSetup(t *testing.T) {
	path := filepath.Join(t.TempDir(), "solo.toml")
	require.NoError(t, os.WriteFile(path, []byte(`
mode = "stub"
canvas_width = 800
log_level = "warn"
`), 0o644))

	setup, err := LoadSetup(path)
	require.NoError(t, err)
	assert.Equal(t, metadata.BackendStub, setup.Mode)
	assert.Equal(t, uint32(800), setup.CanvasWidth)
	assert.Equal(t, uint32(720), setup.CanvasHeight)
	assert.True(t, setup.VSync)
	assert.Equal(t, "warn", setup.LogLevel)
	assert.Equal(t, "assets", setup.AssetsPath)
}

func TestLoadSetupErrors(t *testing.T) {
	dir := t.TempDir()
	_, err := LoadSetup(filepath.Join(dir, "missing.toml"))
	assert.Error(t, err)

	bad := filepath.Join(dir, "bad.toml")
	require.NoError(t, os.WriteFile(bad, []byte(`mode = "metal"`), 0o644))
	_, err = LoadSetup(bad)
	assert.Error(t, err)

	zero := filepath.Join(dir, "zero.toml")
	require.NoError(t, os.WriteFile(zero, []byte(`canvas_height = 0`), 0o644))
	_, err = LoadSetup(zero)
	assert.Error(t, err)
}
