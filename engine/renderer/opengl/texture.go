package opengl

import (
	"fmt"
	"unsafe"

	"github.com/go-gl/gl/v3.3-core/gl"
	"github.com/spaghettifunk/solo/engine/core"
	"github.com/spaghettifunk/solo/engine/renderer/metadata"
)

// EXT_texture_filter_anisotropic, core only from 4.6.
const (
	textureMaxAnisotropy    = 0x84FE
	maxTextureMaxAnisotropy = 0x84FF
)

type texture struct {
	id     uint32
	target uint32
	format metadata.TextureFormat
	width  uint32
	height uint32
}

type pixelFormat struct {
	internal int32
	format   uint32
	xtype    uint32
}

func glFormat(f metadata.TextureFormat) (pixelFormat, error) {
	switch f {
	case metadata.TextureFormatRed:
		return pixelFormat{gl.R8, gl.RED, gl.UNSIGNED_BYTE}, nil
	case metadata.TextureFormatRGB:
		return pixelFormat{gl.RGB8, gl.RGB, gl.UNSIGNED_BYTE}, nil
	case metadata.TextureFormatRGBA:
		return pixelFormat{gl.RGBA8, gl.RGBA, gl.UNSIGNED_BYTE}, nil
	case metadata.TextureFormatRGBAFloat:
		return pixelFormat{gl.RGBA32F, gl.RGBA, gl.FLOAT}, nil
	case metadata.TextureFormatDepth:
		return pixelFormat{gl.DEPTH_COMPONENT32F, gl.DEPTH_COMPONENT, gl.FLOAT}, nil
	}
	return pixelFormat{}, &core.UnsupportedFormatError{Format: f.String()}
}

func glTarget(t metadata.TextureType) uint32 {
	if t == metadata.TextureTypeCube {
		return gl.TEXTURE_CUBE_MAP
	}
	return gl.TEXTURE_2D
}

func pixels(data []byte) unsafe.Pointer {
	if len(data) == 0 {
		return nil
	}
	return gl.Ptr(&data[0])
}

func (b *Backend) texture(handle metadata.TextureHandle) (*texture, error) {
	t, ok := b.textures.Get(handle)
	if !ok {
		return nil, fmt.Errorf("opengl: unknown texture %d", handle)
	}
	return t, nil
}

func (b *Backend) Create2DTexture(format metadata.TextureFormat, data []byte, width, height uint32) (metadata.TextureHandle, error) {
	pf, err := glFormat(format)
	if err != nil {
		return metadata.InvalidHandle, err
	}
	t := &texture{target: gl.TEXTURE_2D, format: format, width: width, height: height}
	gl.GenTextures(1, &t.id)
	gl.BindTexture(gl.TEXTURE_2D, t.id)
	gl.TexImage2D(gl.TEXTURE_2D, 0, pf.internal, int32(width), int32(height), 0, pf.format, pf.xtype, pixels(data))
	b.applySampling(t, metadata.DefaultTextureFlags, 1)
	gl.BindTexture(gl.TEXTURE_2D, 0)
	return b.textures.Acquire(t), nil
}

func (b *Backend) Update2DTexture(handle metadata.TextureHandle, format metadata.TextureFormat, data []byte, width, height uint32) error {
	t, err := b.texture(handle)
	if err != nil {
		return err
	}
	pf, err := glFormat(format)
	if err != nil {
		return err
	}
	gl.BindTexture(gl.TEXTURE_2D, t.id)
	gl.TexImage2D(gl.TEXTURE_2D, 0, pf.internal, int32(width), int32(height), 0, pf.format, pf.xtype, pixels(data))
	gl.BindTexture(gl.TEXTURE_2D, 0)
	t.format, t.width, t.height = format, width, height
	return nil
}

func (b *Backend) Generate2DTextureMipmaps(handle metadata.TextureHandle) error {
	return b.generateMipmaps(handle)
}

func (b *Backend) generateMipmaps(handle metadata.TextureHandle) error {
	t, err := b.texture(handle)
	if err != nil {
		return err
	}
	gl.BindTexture(t.target, t.id)
	gl.GenerateMipmap(t.target)
	gl.BindTexture(t.target, 0)
	return nil
}

func (b *Backend) CreateCubeTexture(format metadata.TextureFormat, dimension uint32) (metadata.TextureHandle, error) {
	pf, err := glFormat(format)
	if err != nil {
		return metadata.InvalidHandle, err
	}
	t := &texture{target: gl.TEXTURE_CUBE_MAP, format: format, width: dimension, height: dimension}
	gl.GenTextures(1, &t.id)
	gl.BindTexture(gl.TEXTURE_CUBE_MAP, t.id)
	for face := uint32(0); face < metadata.CubeFaceCount; face++ {
		gl.TexImage2D(gl.TEXTURE_CUBE_MAP_POSITIVE_X+face, 0, pf.internal, int32(dimension), int32(dimension), 0, pf.format, pf.xtype, nil)
	}
	b.applySampling(t, metadata.DefaultTextureFlags.WithWrap(metadata.TextureWrapClamp), 1)
	gl.BindTexture(gl.TEXTURE_CUBE_MAP, 0)
	return b.textures.Acquire(t), nil
}

func (b *Backend) UpdateCubeTexture(handle metadata.TextureHandle, face metadata.CubeFace, format metadata.TextureFormat, data []byte, dimension uint32) error {
	t, err := b.texture(handle)
	if err != nil {
		return err
	}
	pf, err := glFormat(format)
	if err != nil {
		return err
	}
	gl.BindTexture(gl.TEXTURE_CUBE_MAP, t.id)
	gl.TexImage2D(gl.TEXTURE_CUBE_MAP_POSITIVE_X+uint32(face), 0, pf.internal, int32(dimension), int32(dimension), 0, pf.format, pf.xtype, pixels(data))
	gl.BindTexture(gl.TEXTURE_CUBE_MAP, 0)
	return nil
}

func (b *Backend) GenerateCubeTextureMipmaps(handle metadata.TextureHandle) error {
	return b.generateMipmaps(handle)
}

var minFilters = map[metadata.TextureFilter]int32{
	metadata.TextureFilterNearest:              gl.NEAREST,
	metadata.TextureFilterLinear:               gl.LINEAR,
	metadata.TextureFilterNearestMipmapNearest: gl.NEAREST_MIPMAP_NEAREST,
	metadata.TextureFilterLinearMipmapNearest:  gl.LINEAR_MIPMAP_NEAREST,
	metadata.TextureFilterNearestMipmapLinear:  gl.NEAREST_MIPMAP_LINEAR,
	metadata.TextureFilterLinearMipmapLinear:   gl.LINEAR_MIPMAP_LINEAR,
}

func glWrap(w metadata.TextureWrap) int32 {
	switch w {
	case metadata.TextureWrapClamp:
		return gl.CLAMP_TO_EDGE
	case metadata.TextureWrapMirror:
		return gl.MIRRORED_REPEAT
	}
	return gl.REPEAT
}

// applySampling expects t to be bound to the active unit.
func (b *Backend) applySampling(t *texture, flags metadata.TextureFlags, anisotropy float32) {
	mag := int32(gl.LINEAR)
	if flags.MagFilter() == metadata.TextureFilterNearest {
		mag = gl.NEAREST
	}
	gl.TexParameteri(t.target, gl.TEXTURE_MIN_FILTER, minFilters[flags.MinFilter()])
	gl.TexParameteri(t.target, gl.TEXTURE_MAG_FILTER, mag)
	gl.TexParameteri(t.target, gl.TEXTURE_WRAP_S, glWrap(flags.WrapU()))
	gl.TexParameteri(t.target, gl.TEXTURE_WRAP_T, glWrap(flags.WrapV()))
	if t.target == gl.TEXTURE_CUBE_MAP {
		gl.TexParameteri(t.target, gl.TEXTURE_WRAP_R, glWrap(flags.WrapW()))
	}
	if b.maxAnisotropy > 0 {
		if anisotropy > b.maxAnisotropy {
			anisotropy = b.maxAnisotropy
		}
		if anisotropy < 1 {
			anisotropy = 1
		}
		gl.TexParameterf(t.target, textureMaxAnisotropy, anisotropy)
	}
}

func (b *Backend) SetTextureSampling(handle metadata.TextureHandle, textureType metadata.TextureType, flags metadata.TextureFlags, anisotropy float32) {
	t, err := b.texture(handle)
	if err != nil {
		core.LogWarn("%s", err)
		return
	}
	gl.BindTexture(t.target, t.id)
	b.applySampling(t, flags, anisotropy)
}

func (b *Backend) BindTexture(unit uint32, textureType metadata.TextureType, handle metadata.TextureHandle) {
	gl.ActiveTexture(gl.TEXTURE0 + unit)
	if handle == metadata.InvalidHandle {
		gl.BindTexture(glTarget(textureType), 0)
		return
	}
	t, err := b.texture(handle)
	if err != nil {
		core.LogWarn("%s", err)
		return
	}
	gl.BindTexture(t.target, t.id)
}

func (b *Backend) DestroyTexture(handle metadata.TextureHandle) {
	t, err := b.textures.Release(handle)
	if err != nil {
		return
	}
	gl.DeleteTextures(1, &t.id)
}
