package engine

import "github.com/spaghettifunk/solo/engine/core"

// Game is the application plugged into Run.
type Game struct {
	FnInitialize Initialize
	FnUpdate     Update
	FnRender     Render
	FnShutdown   Shutdown
	// MaxFrames stops the loop after that many frames; zero means until the
	// window closes. Headless runs need it to terminate.
	MaxFrames uint64
	// Stop ends the loop once closed.
	Stop <-chan struct{}
}

type Initialize func(device *Device) error
type Update func(deltaTime float64) error
type Render func(deltaTime float64) error
type Shutdown func() error

// Run drives game on device until the window is closed, MaxFrames is
// reached, Stop is closed, or a callback fails. The device is not shut down by Run.
func Run(device *Device, game *Game) error {
	if game.FnInitialize != nil {
		if err := game.FnInitialize(device); err != nil {
			core.LogError("game initialize failed: %s", err)
			return err
		}
	}

	var frames uint64
	for !device.CloseRequested() {
		if game.MaxFrames > 0 && frames >= game.MaxFrames {
			break
		}
		if stopped(game.Stop) {
			core.LogInfo("stop requested after %d frames", frames)
			break
		}
		err := device.Update(func(deltaTime float64) error {
			if game.FnUpdate != nil {
				if err := game.FnUpdate(deltaTime); err != nil {
					return err
				}
			}
			if game.FnRender != nil {
				return game.FnRender(deltaTime)
			}
			return nil
		})
		if err != nil {
			core.LogError("frame %d failed, stopping: %s", frames, err)
			return err
		}
		frames++
	}

	if game.FnShutdown != nil {
		return game.FnShutdown()
	}
	return nil
}

func stopped(stop <-chan struct{}) bool {
	if stop == nil {
		return false
	}
	select {
	case <-stop:
		return true
	default:
		return false
	}
}
