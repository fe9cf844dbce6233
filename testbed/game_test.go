package testbed

import (
	"testing"

	"github.com/spaghettifunk/solo/engine"
	"github.com/spaghettifunk/solo/engine/renderer/metadata"
	"github.com/spaghettifunk/solo/engine/renderer/null"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newDevice(t *testing.T, assetsPath string) (*engine.Device, *null.Backend) {
	t.Helper()
	device, err := engine.CreateDevice(&engine.Setup{
		Mode:         metadata.BackendNull,
		CanvasWidth:  96,
		CanvasHeight: 54,
		LogLevel:     "error",
		AssetsPath:   assetsPath,
	})
	require.NoError(t, err)
	t.Cleanup(func() { _ = device.Shutdown() })
	return device, device.Renderer().Backend().(*null.Backend)
}

func TestTestbedRunsHeadless(t *testing.T) {
	device, backend := newDevice(t, "../assets")
	game := NewTestGame(nil)
	game.MaxFrames = 3

	require.NoError(t, engine.Run(device, game.Game))
	assert.True(t, game.state.ownsCrate)
	assert.Equal(t, uint64(3), backend.Frames())
	// one cube draw and one blit per frame
	assert.Len(t, backend.CallsTo("DrawPart"), 3)
	assert.Len(t, backend.CallsTo("Draw"), 3)

	assert.Zero(t, device.LiveResources())
	textures, buffers, programs, frameBuffers := backend.Live()
	assert.Zero(t, textures+buffers+programs+frameBuffers)
}

func TestTestbedFallsBackToDefaultMaterial(t *testing.T) {
	device, _ := newDevice(t, t.TempDir())
	game := NewTestGame(nil)
	game.MaxFrames = 1

	require.NoError(t, engine.Run(device, game.Game))
	assert.False(t, game.state.ownsCrate)
	assert.Zero(t, device.LiveResources())
}

func TestTestbedCyclesEffects(t *testing.T) {
	device, _ := newDevice(t, "../assets")
	game := NewTestGame(nil)
	require.NoError(t, game.Initialize(device))

	for i := 1; i <= len(postEffects); i++ {
		require.NoError(t, game.setEffect(i))
	}
	assert.Equal(t, len(postEffects), game.state.effect)

	require.NoError(t, game.Update(effectPeriod))
	assert.Equal(t, len(postEffects)+1, game.state.effect)
	require.NoError(t, game.Shutdown())
	assert.Zero(t, device.LiveResources())
}

func TestTestbedStopsOnSignal(t *testing.T) {
	device, _ := newDevice(t, "../assets")
	stop := make(chan struct{})
	close(stop)
	game := NewTestGame(stop)

	require.NoError(t, engine.Run(device, game.Game))
	assert.Zero(t, device.Renderer().Backend().(*null.Backend).Frames())
}
