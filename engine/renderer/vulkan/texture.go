package vulkan

import (
	"fmt"

	vk "github.com/goki/vulkan"
	"github.com/spaghettifunk/solo/engine/core"
	"github.com/spaghettifunk/solo/engine/renderer/metadata"
)

// Every texture lives in ShaderReadOnlyOptimal outside of transfers and
// render passes.
type texture struct {
	textureType metadata.TextureType
	format      metadata.TextureFormat
	image       *VulkanImage
	sampler     vk.Sampler
	flags       metadata.TextureFlags
	anisotropy  float32
	// Levels below 0 hold data only once mipmaps were generated.
	mipmapped bool
	// Bumped whenever the image is recreated, so frame buffers built on the
	// old view know to rebuild.
	generation uint64
}

func vulkanFormat(f metadata.TextureFormat) (vk.Format, error) {
	switch f {
	case metadata.TextureFormatRed:
		return vk.FormatR8Unorm, nil
	case metadata.TextureFormatRGB, metadata.TextureFormatRGBA:
		// Three channel formats are rarely optimal-tiling capable, so RGB is
		// expanded on upload.
		return vk.FormatR8g8b8a8Unorm, nil
	case metadata.TextureFormatRGBAFloat:
		return vk.FormatR32g32b32a32Sfloat, nil
	case metadata.TextureFormatDepth:
		return vk.FormatD32Sfloat, nil
	}
	return vk.FormatUndefined, &core.UnsupportedFormatError{Format: f.String()}
}

// expandRGB pads RGB pixels with an opaque alpha channel.
func expandRGB(data []byte) []byte {
	out := make([]byte, len(data)/3*4)
	for i, j := 0, 0; i+2 < len(data); i, j = i+3, j+4 {
		out[j], out[j+1], out[j+2], out[j+3] = data[i], data[i+1], data[i+2], 0xFF
	}
	return out
}

func uploadBytes(format metadata.TextureFormat, data []byte) []byte {
	if format == metadata.TextureFormatRGB {
		return expandRGB(data)
	}
	return data
}

func (b *Backend) texture(handle metadata.TextureHandle) (*texture, error) {
	t, ok := b.textures.Get(handle)
	if !ok {
		return nil, fmt.Errorf("vulkan: unknown texture %d", handle)
	}
	return t, nil
}

// newImage creates the image of a texture and moves every level to
// ShaderReadOnlyOptimal.
func (b *Backend) newImage(format metadata.TextureFormat, width, height uint32, cube bool) (*VulkanImage, error) {
	vkFormat, err := vulkanFormat(format)
	if err != nil {
		return nil, err
	}
	if width == 0 || height == 0 {
		return nil, fmt.Errorf("%w: %dx%d", core.ErrTextureDataSize, width, height)
	}
	config := imageConfig{
		width:     width,
		height:    height,
		format:    vkFormat,
		cube:      cube,
		mipLevels: mipLevelCount(width, height),
		usage: vk.ImageUsageFlags(vk.ImageUsageSampledBit | vk.ImageUsageTransferDstBit |
			vk.ImageUsageTransferSrcBit),
		aspect: vk.ImageAspectFlags(vk.ImageAspectColorBit),
	}
	if format.IsDepth() {
		config.mipLevels = 1
		config.usage |= vk.ImageUsageFlags(vk.ImageUsageDepthStencilAttachmentBit)
		config.aspect = vk.ImageAspectFlags(vk.ImageAspectDepthBit)
	} else if !cube {
		config.usage |= vk.ImageUsageFlags(vk.ImageUsageColorAttachmentBit)
	}
	image, err := ImageCreate(b.context, config)
	if err != nil {
		return nil, err
	}
	err = b.context.singleUse(func(cmd vk.CommandBuffer) {
		image.Transition(cmd, vk.ImageLayoutUndefined, vk.ImageLayoutShaderReadOnlyOptimal, 0, image.MipLevels)
	})
	if err != nil {
		image.Destroy(b.context)
		return nil, err
	}
	return image, nil
}

// upload copies tightly packed pixels into level 0 of layer.
func (b *Backend) upload(image *VulkanImage, format metadata.TextureFormat, data []byte, layer uint32) error {
	bytes := uploadBytes(format, data)
	staging, err := hostBuffer(b.context, vk.DeviceSize(len(bytes)), vk.BufferUsageFlags(vk.BufferUsageTransferSrcBit))
	if err != nil {
		return err
	}
	defer staging.Destroy(b.context)
	staging.Write(0, bytes)
	return b.context.singleUse(func(cmd vk.CommandBuffer) {
		image.Transition(cmd, vk.ImageLayoutShaderReadOnlyOptimal, vk.ImageLayoutTransferDstOptimal, 0, 1)
		image.CopyFromBuffer(cmd, staging.Handle, layer)
		image.Transition(cmd, vk.ImageLayoutTransferDstOptimal, vk.ImageLayoutShaderReadOnlyOptimal, 0, 1)
	})
}

var vulkanFilters = map[metadata.TextureFilter]vk.Filter{
	metadata.TextureFilterNearest:              vk.FilterNearest,
	metadata.TextureFilterLinear:               vk.FilterLinear,
	metadata.TextureFilterNearestMipmapNearest: vk.FilterNearest,
	metadata.TextureFilterLinearMipmapNearest:  vk.FilterLinear,
	metadata.TextureFilterNearestMipmapLinear:  vk.FilterNearest,
	metadata.TextureFilterLinearMipmapLinear:   vk.FilterLinear,
}

func mipmapMode(f metadata.TextureFilter) vk.SamplerMipmapMode {
	switch f {
	case metadata.TextureFilterNearestMipmapLinear, metadata.TextureFilterLinearMipmapLinear:
		return vk.SamplerMipmapModeLinear
	}
	return vk.SamplerMipmapModeNearest
}

func addressMode(w metadata.TextureWrap) vk.SamplerAddressMode {
	switch w {
	case metadata.TextureWrapClamp:
		return vk.SamplerAddressModeClampToEdge
	case metadata.TextureWrapMirror:
		return vk.SamplerAddressModeMirroredRepeat
	}
	return vk.SamplerAddressModeRepeat
}

// rebuildSampler replaces the sampler of t from its flags. Only generated
// mip levels are sampled.
func (b *Backend) rebuildSampler(t *texture) error {
	minFilter := t.flags.MinFilter()
	maxLod := float32(0)
	if minFilter.UsesMipmaps() && t.mipmapped {
		maxLod = float32(t.image.MipLevels)
	}
	createInfo := vk.SamplerCreateInfo{
		SType:        vk.StructureTypeSamplerCreateInfo,
		MagFilter:    vulkanFilters[t.flags.MagFilter()],
		MinFilter:    vulkanFilters[minFilter],
		MipmapMode:   mipmapMode(minFilter),
		AddressModeU: addressMode(t.flags.WrapU()),
		AddressModeV: addressMode(t.flags.WrapV()),
		AddressModeW: addressMode(t.flags.WrapW()),
		MaxLod:       maxLod,
		BorderColor:  vk.BorderColorFloatOpaqueBlack,
	}
	if b.context.Device.SamplerAnisotropy && t.anisotropy > 1 {
		limit := b.context.Device.Properties.Limits.MaxSamplerAnisotropy
		anisotropy := t.anisotropy
		if anisotropy > limit {
			anisotropy = limit
		}
		createInfo.AnisotropyEnable = vk.True
		createInfo.MaxAnisotropy = anisotropy
	}
	var sampler vk.Sampler
	if res := vk.CreateSampler(b.context.logical(), &createInfo, b.context.Allocator, &sampler); res != vk.Success {
		return resultError("vkCreateSampler", res)
	}
	if t.sampler != vk.NullSampler {
		old := t.sampler
		b.retire(func() { vk.DestroySampler(b.context.logical(), old, b.context.Allocator) })
	}
	t.sampler = sampler
	return nil
}

func (b *Backend) newTexture(textureType metadata.TextureType, format metadata.TextureFormat, width, height uint32, flags metadata.TextureFlags) (*texture, error) {
	image, err := b.newImage(format, width, height, textureType == metadata.TextureTypeCube)
	if err != nil {
		return nil, err
	}
	t := &texture{
		textureType: textureType,
		format:      format,
		image:       image,
		flags:       flags,
		anisotropy:  1,
	}
	if err := b.rebuildSampler(t); err != nil {
		image.Destroy(b.context)
		return nil, err
	}
	return t, nil
}

func (b *Backend) Create2DTexture(format metadata.TextureFormat, data []byte, width, height uint32) (metadata.TextureHandle, error) {
	if err := format.Validate(); err != nil {
		return metadata.InvalidHandle, err
	}
	if len(data) > 0 {
		if err := metadata.CheckTextureData(format, data, width, height); err != nil {
			return metadata.InvalidHandle, err
		}
	}
	t, err := b.newTexture(metadata.TextureType2d, format, width, height, metadata.DefaultTextureFlags)
	if err != nil {
		return metadata.InvalidHandle, err
	}
	if len(data) > 0 {
		if err := b.upload(t.image, format, data, 0); err != nil {
			b.destroyTexture(t)
			return metadata.InvalidHandle, err
		}
	}
	return b.textures.Acquire(t), nil
}

// Update2DTexture recreates the image when the size or format changes and
// then uploads data into level 0.
func (b *Backend) Update2DTexture(handle metadata.TextureHandle, format metadata.TextureFormat, data []byte, width, height uint32) error {
	t, err := b.texture(handle)
	if err != nil {
		return err
	}
	if err := format.Validate(); err != nil {
		return err
	}
	if len(data) > 0 {
		if err := metadata.CheckTextureData(format, data, width, height); err != nil {
			return err
		}
	}
	if format != t.format || width != t.image.Width || height != t.image.Height {
		image, err := b.newImage(format, width, height, false)
		if err != nil {
			return err
		}
		old := t.image
		b.retire(func() { old.Destroy(b.context) })
		t.image = image
		t.format = format
		t.mipmapped = false
		t.generation++
		if err := b.rebuildSampler(t); err != nil {
			return err
		}
	}
	if len(data) == 0 {
		return nil
	}
	b.waitQueueIdle()
	return b.upload(t.image, format, data, 0)
}

func (b *Backend) Generate2DTextureMipmaps(handle metadata.TextureHandle) error {
	return b.generateMipmaps(handle)
}

func (b *Backend) generateMipmaps(handle metadata.TextureHandle) error {
	t, err := b.texture(handle)
	if err != nil {
		return err
	}
	if t.image.MipLevels < 2 {
		return nil
	}
	filter := vk.FilterLinear
	if t.format == metadata.TextureFormatRGBAFloat {
		filter = vk.FilterNearest
	}
	b.waitQueueIdle()
	if err := b.context.singleUse(func(cmd vk.CommandBuffer) {
		t.image.GenerateMipmaps(cmd, filter)
	}); err != nil {
		return err
	}
	t.mipmapped = true
	return b.rebuildSampler(t)
}

func (b *Backend) CreateCubeTexture(format metadata.TextureFormat, dimension uint32) (metadata.TextureHandle, error) {
	if err := format.Validate(); err != nil {
		return metadata.InvalidHandle, err
	}
	if format.IsDepth() {
		return metadata.InvalidHandle, &core.UnsupportedFormatError{Format: "cube " + format.String()}
	}
	t, err := b.newTexture(metadata.TextureTypeCube, format, dimension, dimension,
		metadata.DefaultTextureFlags.WithWrap(metadata.TextureWrapClamp))
	if err != nil {
		return metadata.InvalidHandle, err
	}
	return b.textures.Acquire(t), nil
}

func (b *Backend) UpdateCubeTexture(handle metadata.TextureHandle, face metadata.CubeFace, format metadata.TextureFormat, data []byte, dimension uint32) error {
	t, err := b.texture(handle)
	if err != nil {
		return err
	}
	if t.textureType != metadata.TextureTypeCube {
		return fmt.Errorf("vulkan: texture %d is not a cube texture", handle)
	}
	if face < metadata.CubeFacePositiveX || face > metadata.CubeFaceNegativeZ {
		return fmt.Errorf("vulkan: invalid cube face %d", face)
	}
	if format != t.format || dimension != t.image.Width {
		return fmt.Errorf("%w: face is %s %d, cube is %s %d", core.ErrTextureDataSize, format, dimension, t.format, t.image.Width)
	}
	if len(data) == 0 {
		return nil
	}
	if err := metadata.CheckTextureData(format, data, dimension, dimension); err != nil {
		return err
	}
	b.waitQueueIdle()
	return b.upload(t.image, format, data, uint32(face))
}

func (b *Backend) GenerateCubeTextureMipmaps(handle metadata.TextureHandle) error {
	return b.generateMipmaps(handle)
}

func (b *Backend) SetTextureSampling(handle metadata.TextureHandle, textureType metadata.TextureType, flags metadata.TextureFlags, anisotropy float32) {
	t, err := b.texture(handle)
	if err != nil {
		core.LogWarn("%s", err)
		return
	}
	if t.flags == flags && t.anisotropy == anisotropy {
		return
	}
	t.flags = flags
	t.anisotropy = anisotropy
	if err := b.rebuildSampler(t); err != nil {
		core.LogError("vulkan: %s", err)
	}
}

// BindTexture records the texture of a unit. Descriptor sets pick it up at
// the next draw.
func (b *Backend) BindTexture(unit uint32, textureType metadata.TextureType, handle metadata.TextureHandle) {
	if handle == metadata.InvalidHandle {
		delete(b.boundTextures, unit)
		return
	}
	if _, err := b.texture(handle); err != nil {
		core.LogWarn("%s", err)
		return
	}
	b.boundTextures[unit] = handle
}

// textureForUnit resolves what a sampler reading unit sees, falling back to
// the white default of the right type.
func (b *Backend) textureForUnit(unit uint32, textureType metadata.TextureType) *texture {
	if handle, ok := b.boundTextures[unit]; ok {
		if t, ok := b.textures.Get(handle); ok && t.textureType == textureType {
			return t
		}
	}
	if textureType == metadata.TextureTypeCube {
		return b.defaultCube
	}
	return b.default2D
}

func (b *Backend) DestroyTexture(handle metadata.TextureHandle) {
	t, err := b.textures.Release(handle)
	if err != nil {
		return
	}
	for unit, bound := range b.boundTextures {
		if bound == handle {
			delete(b.boundTextures, unit)
		}
	}
	b.destroyTexture(t)
}

func (b *Backend) destroyTexture(t *texture) {
	image, sampler := t.image, t.sampler
	t.image, t.sampler = nil, vk.NullSampler
	b.retire(func() {
		if sampler != vk.NullSampler {
			vk.DestroySampler(b.context.logical(), sampler, b.context.Allocator)
		}
		if image != nil {
			image.Destroy(b.context)
		}
	})
}

// createDefaultTextures builds the 1x1 white textures unbound samplers read.
func (b *Backend) createDefaultTextures() error {
	white := []byte{0xFF, 0xFF, 0xFF, 0xFF}
	t, err := b.newTexture(metadata.TextureType2d, metadata.TextureFormatRGBA, 1, 1, metadata.DefaultTextureFlags)
	if err != nil {
		return err
	}
	b.default2D = t
	if err := b.upload(t.image, metadata.TextureFormatRGBA, white, 0); err != nil {
		return err
	}
	cube, err := b.newTexture(metadata.TextureTypeCube, metadata.TextureFormatRGBA, 1, 1,
		metadata.DefaultTextureFlags.WithWrap(metadata.TextureWrapClamp))
	if err != nil {
		return err
	}
	b.defaultCube = cube
	for face := uint32(0); face < metadata.CubeFaceCount; face++ {
		if err := b.upload(cube.image, metadata.TextureFormatRGBA, white, face); err != nil {
			return err
		}
	}
	return nil
}
