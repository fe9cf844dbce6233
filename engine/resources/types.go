// Package resources holds the GPU-backed objects scenes are built from:
// textures, meshes, effects, frame buffers and materials. Each object owns
// exactly one set of backend handles and releases them in Destroy.
package resources

import (
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/spaghettifunk/solo/engine"
	"github.com/spaghettifunk/solo/engine/core"
	"github.com/spaghettifunk/solo/engine/renderer"
	"github.com/spaghettifunk/solo/engine/renderer/metadata"
)

// Texture is implemented by Texture2D and CubeTexture.
type Texture interface {
	Name() string
	Handle() metadata.TextureHandle
	Type() metadata.TextureType
	// Bind applies pending sampling state and binds the texture to unit.
	Bind(unit uint32)
	Retain()
	Release() bool
}

// resource carries what every object shares: the device, a debug name, the
// tracking id and the reference count.
type resource struct {
	device    *engine.Device
	name      string
	trackID   uint64
	refs      int32
	destroyed bool
}

var (
	errNilDevice = errors.New("resources: nil device")
	errNilEffect = errors.New("resources: nil effect")
)

// track starts tracking self on device. Constructors call it once the backend
// objects exist and destroy them again if it fails.
func (r *resource) track(device *engine.Device, kind string, self engine.Resource) error {
	r.device = device
	r.name = fmt.Sprintf("%s-%s", kind, uuid.NewString())
	r.refs = 1
	id, err := device.Track(self)
	if err != nil {
		return err
	}
	r.trackID = id
	return nil
}

func (r *resource) renderer() *renderer.Renderer {
	return r.device.Renderer()
}

func (r *resource) Name() string {
	return r.name
}

func (r *resource) SetName(name string) {
	r.name = name
}

func (r *resource) Device() *engine.Device {
	return r.device
}

// Retain adds a reference. Objects start with one.
func (r *resource) Retain() {
	r.refs++
}

func (r *resource) RefCount() int32 {
	return r.refs
}

func (r *resource) Destroyed() bool {
	return r.destroyed
}

// release drops a reference and runs destroy when none remain. It reports
// whether the object was destroyed.
func (r *resource) release(destroy func()) bool {
	if r.destroyed {
		return true
	}
	r.refs--
	if r.refs > 0 {
		return false
	}
	destroy()
	return true
}

// finish marks the object destroyed and stops tracking it. It returns false
// when the object was already destroyed or the backend is gone, in which
// case the caller must not touch its handles.
func (r *resource) finish() bool {
	if r.destroyed {
		return false
	}
	r.destroyed = true
	r.refs = 0
	r.device.Untrack(r.trackID)
	if r.device.Stage() == engine.DeviceStageShutdown {
		core.LogWarn("%s destroyed after its device shut down", r.name)
		return false
	}
	core.LogDebug("destroyed %s", r.name)
	return true
}
