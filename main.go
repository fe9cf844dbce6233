/*
This is an example of application that will use the
engine package to test things out
*/
package main

import (
	"errors"
	"io/fs"
	"sync"

	"github.com/spaghettifunk/solo/engine"
	"github.com/spaghettifunk/solo/engine/core"
	"github.com/spaghettifunk/solo/testbed"
	"github.com/xlab/closer"

	// Windowed backends, selected by the mode key of the setup.
	_ "github.com/spaghettifunk/solo/engine/renderer/opengl"
	_ "github.com/spaghettifunk/solo/engine/renderer/vulkan"
)

const setupPath = "solo.toml"

func main() {
	setup, err := engine.LoadSetup(setupPath)
	if err != nil {
		if !errors.Is(err, fs.ErrNotExist) {
			closer.Fatalln(err)
		}
		core.LogWarn("%s not found, using the default setup", setupPath)
		setup = engine.DefaultSetup()
	}

	device, err := engine.CreateDevice(setup)
	if err != nil {
		closer.Fatalln(err)
	}

	// A signal stops the loop; the device is torn down on this goroutine,
	// which owns the window.
	stop := make(chan struct{})
	done := make(chan struct{})
	var once sync.Once
	closer.Bind(func() {
		once.Do(func() { close(stop) })
		<-done
	})
	defer closer.Close()

	game := testbed.NewTestGame(stop)
	if err := engine.Run(device, game.Game); err != nil {
		core.LogError("testbed stopped: %s", err)
	}
	if err := device.Shutdown(); err != nil {
		core.LogError("device shutdown failed: %s", err)
	}
	close(done)
}
