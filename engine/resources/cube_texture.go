package resources

import (
	"github.com/spaghettifunk/solo/engine"
	"github.com/spaghettifunk/solo/engine/renderer/metadata"
)

// CubeTexture has six square faces of the same dimension.
type CubeTexture struct {
	resource
	handle            metadata.TextureHandle
	format            metadata.TextureFormat
	dimension         uint32
	flags             metadata.TextureFlags
	anisotropy        float32
	appliedFlags      metadata.TextureFlags
	appliedAnisotropy float32
	applied           bool
}

func NewCubeTexture(device *engine.Device, dimension uint32, format metadata.TextureFormat) (*CubeTexture, error) {
	if device == nil {
		return nil, errNilDevice
	}
	handle, err := device.Renderer().CreateCubeTexture(format, dimension)
	if err != nil {
		return nil, err
	}
	t := &CubeTexture{
		handle:     handle,
		format:     format,
		dimension:  dimension,
		flags:      metadata.DefaultTextureFlags.WithWrap(metadata.TextureWrapClamp),
		anisotropy: 1,
	}
	if err := t.track(device, "cubetexture", t); err != nil {
		device.Renderer().DestroyTexture(handle)
		return nil, err
	}
	return t, nil
}

func (t *CubeTexture) Handle() metadata.TextureHandle {
	return t.handle
}

func (t *CubeTexture) Type() metadata.TextureType {
	return metadata.TextureTypeCube
}

func (t *CubeTexture) Format() metadata.TextureFormat {
	return t.format
}

func (t *CubeTexture) Dimension() uint32 {
	return t.dimension
}

func (t *CubeTexture) SetFaceData(face metadata.CubeFace, data []byte) error {
	return t.renderer().UpdateCubeTexture(t.handle, face, t.format, data, t.dimension)
}

func (t *CubeTexture) GenerateMipmaps() error {
	return t.renderer().GenerateCubeTextureMipmaps(t.handle)
}

func (t *CubeTexture) Flags() metadata.TextureFlags {
	return t.flags
}

func (t *CubeTexture) SetFlags(flags metadata.TextureFlags) {
	t.flags = flags
}

// SetWrapping applies wrap on all three axes.
func (t *CubeTexture) SetWrapping(wrap metadata.TextureWrap) {
	t.flags = t.flags.WithWrap(wrap)
}

func (t *CubeTexture) SetFiltering(min, mag metadata.TextureFilter) {
	t.flags = t.flags.WithMinFilter(min).WithMagFilter(mag)
}

func (t *CubeTexture) SetAnisotropyLevel(level float32) {
	t.anisotropy = level
}

func (t *CubeTexture) Bind(unit uint32) {
	r := t.renderer()
	r.BindTexture(unit, metadata.TextureTypeCube, t.handle)
	if !t.applied || t.flags != t.appliedFlags || t.anisotropy != t.appliedAnisotropy {
		r.SetTextureSampling(t.handle, metadata.TextureTypeCube, t.flags, t.anisotropy)
		t.appliedFlags, t.appliedAnisotropy, t.applied = t.flags, t.anisotropy, true
	}
}

func (t *CubeTexture) Release() bool {
	return t.release(t.Destroy)
}

func (t *CubeTexture) Destroy() {
	if !t.finish() {
		return
	}
	t.renderer().DestroyTexture(t.handle)
	t.handle = metadata.InvalidHandle
}
