package resources

import (
	"github.com/spaghettifunk/solo/engine"
	"github.com/spaghettifunk/solo/engine/renderer/metadata"
)

// Effect is a linked vertex + fragment program. It cannot be changed after
// creation; build a new one to pick up edited sources.
type Effect struct {
	resource
	handle metadata.ProgramHandle
}

// NewEffect compiles and links the two stages. A compile or link failure is
// returned as *core.ShaderCompilationError with the backend's log.
func NewEffect(device *engine.Device, vertexSource, fragmentSource string) (*Effect, error) {
	if device == nil {
		return nil, errNilDevice
	}
	handle, err := device.Renderer().CreateProgram(vertexSource, fragmentSource)
	if err != nil {
		return nil, err
	}
	e := &Effect{handle: handle}
	if err := e.track(device, "effect", e); err != nil {
		device.Renderer().DestroyProgram(handle)
		return nil, err
	}
	return e, nil
}

func (e *Effect) Handle() metadata.ProgramHandle {
	return e.handle
}

// Apply makes the program current.
func (e *Effect) Apply() {
	e.renderer().SetProgram(e.handle)
}

func (e *Effect) Release() bool {
	return e.release(e.Destroy)
}

func (e *Effect) Destroy() {
	if !e.finish() {
		return
	}
	e.renderer().DestroyProgram(e.handle)
	e.handle = metadata.InvalidHandle
}
