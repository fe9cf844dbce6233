package resources

import (
	"github.com/spaghettifunk/solo/engine"
	"github.com/spaghettifunk/solo/engine/renderer/metadata"
)

// Texture2D is a two-dimensional texture. Its sampling state lives in a
// flags bitmask and reaches the GPU lazily, on the next Bind after a change.
type Texture2D struct {
	resource
	handle            metadata.TextureHandle
	format            metadata.TextureFormat
	width             uint32
	height            uint32
	flags             metadata.TextureFlags
	anisotropy        float32
	appliedFlags      metadata.TextureFlags
	appliedAnisotropy float32
	applied           bool
}

// NewTexture2D allocates an uninitialized width x height texture.
func NewTexture2D(device *engine.Device, width, height uint32, format metadata.TextureFormat) (*Texture2D, error) {
	return NewTexture2DWithData(device, format, nil, width, height)
}

// NewTexture2DWithData allocates a texture and uploads data, which must be
// empty or exactly width*height pixels of format.
func NewTexture2DWithData(device *engine.Device, format metadata.TextureFormat, data []byte, width, height uint32) (*Texture2D, error) {
	if device == nil {
		return nil, errNilDevice
	}
	handle, err := device.Renderer().Create2DTexture(format, data, width, height)
	if err != nil {
		return nil, err
	}
	t := &Texture2D{
		handle:     handle,
		format:     format,
		width:      width,
		height:     height,
		flags:      metadata.DefaultTextureFlags,
		anisotropy: 1,
	}
	if err := t.track(device, "texture2d", t); err != nil {
		device.Renderer().DestroyTexture(handle)
		return nil, err
	}
	return t, nil
}

func (t *Texture2D) Handle() metadata.TextureHandle {
	return t.handle
}

func (t *Texture2D) Type() metadata.TextureType {
	return metadata.TextureType2d
}

func (t *Texture2D) Format() metadata.TextureFormat {
	return t.format
}

func (t *Texture2D) Size() (uint32, uint32) {
	return t.width, t.height
}

// SetData replaces the pixels, keeping format and size.
func (t *Texture2D) SetData(data []byte) error {
	return t.renderer().Update2DTexture(t.handle, t.format, data, t.width, t.height)
}

// Reallocate replaces the storage with a new format and size.
func (t *Texture2D) Reallocate(format metadata.TextureFormat, data []byte, width, height uint32) error {
	if err := t.renderer().Update2DTexture(t.handle, format, data, width, height); err != nil {
		return err
	}
	t.format, t.width, t.height = format, width, height
	return nil
}

func (t *Texture2D) GenerateMipmaps() error {
	return t.renderer().Generate2DTextureMipmaps(t.handle)
}

func (t *Texture2D) Flags() metadata.TextureFlags {
	return t.flags
}

func (t *Texture2D) SetFlags(flags metadata.TextureFlags) {
	t.flags = flags
}

func (t *Texture2D) SetWrapping(wrap metadata.TextureWrap) {
	t.flags = t.flags.WithWrapU(wrap).WithWrapV(wrap)
}

func (t *Texture2D) SetFiltering(min, mag metadata.TextureFilter) {
	t.flags = t.flags.WithMinFilter(min).WithMagFilter(mag)
}

func (t *Texture2D) AnisotropyLevel() float32 {
	return t.anisotropy
}

func (t *Texture2D) SetAnisotropyLevel(level float32) {
	t.anisotropy = level
}

// Bind makes the texture current on unit, re-applying sampling state only
// when it changed since the last bind.
func (t *Texture2D) Bind(unit uint32) {
	r := t.renderer()
	r.BindTexture(unit, metadata.TextureType2d, t.handle)
	if !t.applied || t.flags != t.appliedFlags || t.anisotropy != t.appliedAnisotropy {
		r.SetTextureSampling(t.handle, metadata.TextureType2d, t.flags, t.anisotropy)
		t.appliedFlags, t.appliedAnisotropy, t.applied = t.flags, t.anisotropy, true
	}
}

// Release drops a reference and destroys the texture with the last one.
func (t *Texture2D) Release() bool {
	return t.release(t.Destroy)
}

func (t *Texture2D) Destroy() {
	if !t.finish() {
		return
	}
	t.renderer().DestroyTexture(t.handle)
	t.handle = metadata.InvalidHandle
}
