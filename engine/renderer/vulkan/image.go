package vulkan

import (
	"fmt"

	vk "github.com/goki/vulkan"
)

// VulkanImage is an image with its own memory and a view covering every mip
// level and layer.
type VulkanImage struct {
	Handle    vk.Image
	Memory    vk.DeviceMemory
	View      vk.ImageView
	Format    vk.Format
	Width     uint32
	Height    uint32
	MipLevels uint32
	Layers    uint32
	Aspect    vk.ImageAspectFlags
}

type imageConfig struct {
	width, height uint32
	format        vk.Format
	usage         vk.ImageUsageFlags
	mipLevels     uint32
	cube          bool
	aspect        vk.ImageAspectFlags
}

func ImageCreate(context *VulkanContext, config imageConfig) (*VulkanImage, error) {
	layers := uint32(1)
	var flags vk.ImageCreateFlags
	viewType := vk.ImageViewType2d
	if config.cube {
		layers = 6
		flags = vk.ImageCreateFlags(vk.ImageCreateCubeCompatibleBit)
		viewType = vk.ImageViewTypeCube
	}
	if config.mipLevels == 0 {
		config.mipLevels = 1
	}
	image := &VulkanImage{
		Format:    config.format,
		Width:     config.width,
		Height:    config.height,
		MipLevels: config.mipLevels,
		Layers:    layers,
		Aspect:    config.aspect,
	}

	createInfo := vk.ImageCreateInfo{
		SType:     vk.StructureTypeImageCreateInfo,
		Flags:     flags,
		ImageType: vk.ImageType2d,
		Format:    config.format,
		Extent: vk.Extent3D{
			Width:  config.width,
			Height: config.height,
			Depth:  1,
		},
		MipLevels:     config.mipLevels,
		ArrayLayers:   layers,
		Samples:       vk.SampleCount1Bit,
		Tiling:        vk.ImageTilingOptimal,
		Usage:         config.usage,
		SharingMode:   vk.SharingModeExclusive,
		InitialLayout: vk.ImageLayoutUndefined,
	}
	var handle vk.Image
	if res := vk.CreateImage(context.logical(), &createInfo, context.Allocator, &handle); res != vk.Success {
		return nil, resultError("vkCreateImage", res)
	}
	image.Handle = handle

	var requirements vk.MemoryRequirements
	vk.GetImageMemoryRequirements(context.logical(), handle, &requirements)
	requirements.Deref()
	memoryType := context.FindMemoryIndex(requirements.MemoryTypeBits, vk.MemoryPropertyFlags(vk.MemoryPropertyDeviceLocalBit))
	if memoryType < 0 {
		image.Destroy(context)
		return nil, fmt.Errorf("vulkan: no device local memory type for image")
	}
	allocateInfo := vk.MemoryAllocateInfo{
		SType:           vk.StructureTypeMemoryAllocateInfo,
		AllocationSize:  requirements.Size,
		MemoryTypeIndex: uint32(memoryType),
	}
	var memory vk.DeviceMemory
	if res := vk.AllocateMemory(context.logical(), &allocateInfo, context.Allocator, &memory); res != vk.Success {
		image.Destroy(context)
		return nil, resultError("vkAllocateMemory", res)
	}
	image.Memory = memory
	if res := vk.BindImageMemory(context.logical(), handle, memory, 0); res != vk.Success {
		image.Destroy(context)
		return nil, resultError("vkBindImageMemory", res)
	}

	viewInfo := vk.ImageViewCreateInfo{
		SType:    vk.StructureTypeImageViewCreateInfo,
		Image:    handle,
		ViewType: viewType,
		Format:   config.format,
		SubresourceRange: vk.ImageSubresourceRange{
			AspectMask: config.aspect,
			LevelCount: config.mipLevels,
			LayerCount: layers,
		},
	}
	var view vk.ImageView
	if res := vk.CreateImageView(context.logical(), &viewInfo, context.Allocator, &view); res != vk.Success {
		image.Destroy(context)
		return nil, resultError("vkCreateImageView", res)
	}
	image.View = view
	return image, nil
}

func (vi *VulkanImage) Destroy(context *VulkanContext) {
	if vi.View != vk.NullImageView {
		vk.DestroyImageView(context.logical(), vi.View, context.Allocator)
		vi.View = vk.NullImageView
	}
	if vi.Handle != vk.NullImage {
		vk.DestroyImage(context.logical(), vi.Handle, context.Allocator)
		vi.Handle = vk.NullImage
	}
	if vi.Memory != vk.NullDeviceMemory {
		vk.FreeMemory(context.logical(), vi.Memory, context.Allocator)
		vi.Memory = vk.NullDeviceMemory
	}
}

func (vi *VulkanImage) subresource(baseLevel, levels uint32) vk.ImageSubresourceRange {
	return vk.ImageSubresourceRange{
		AspectMask:   vi.Aspect,
		BaseMipLevel: baseLevel,
		LevelCount:   levels,
		LayerCount:   vi.Layers,
	}
}

// layoutAccess gives the access mask and pipeline stage that go with a
// layout on either side of a barrier.
func layoutAccess(layout vk.ImageLayout) (vk.AccessFlags, vk.PipelineStageFlags) {
	switch layout {
	case vk.ImageLayoutTransferDstOptimal:
		return vk.AccessFlags(vk.AccessTransferWriteBit), vk.PipelineStageFlags(vk.PipelineStageTransferBit)
	case vk.ImageLayoutTransferSrcOptimal:
		return vk.AccessFlags(vk.AccessTransferReadBit), vk.PipelineStageFlags(vk.PipelineStageTransferBit)
	case vk.ImageLayoutShaderReadOnlyOptimal:
		return vk.AccessFlags(vk.AccessShaderReadBit), vk.PipelineStageFlags(vk.PipelineStageFragmentShaderBit)
	case vk.ImageLayoutColorAttachmentOptimal:
		return vk.AccessFlags(vk.AccessColorAttachmentReadBit | vk.AccessColorAttachmentWriteBit),
			vk.PipelineStageFlags(vk.PipelineStageColorAttachmentOutputBit)
	case vk.ImageLayoutDepthStencilAttachmentOptimal:
		return vk.AccessFlags(vk.AccessDepthStencilAttachmentReadBit | vk.AccessDepthStencilAttachmentWriteBit),
			vk.PipelineStageFlags(vk.PipelineStageEarlyFragmentTestsBit | vk.PipelineStageLateFragmentTestsBit)
	}
	return 0, vk.PipelineStageFlags(vk.PipelineStageTopOfPipeBit)
}

// Transition records a layout change of levels [baseLevel, baseLevel+levels)
// on every layer.
func (vi *VulkanImage) Transition(cmd vk.CommandBuffer, from, to vk.ImageLayout, baseLevel, levels uint32) {
	srcAccess, srcStage := layoutAccess(from)
	dstAccess, dstStage := layoutAccess(to)
	barrier := vk.ImageMemoryBarrier{
		SType:               vk.StructureTypeImageMemoryBarrier,
		SrcAccessMask:       srcAccess,
		DstAccessMask:       dstAccess,
		OldLayout:           from,
		NewLayout:           to,
		SrcQueueFamilyIndex: vk.QueueFamilyIgnored,
		DstQueueFamilyIndex: vk.QueueFamilyIgnored,
		Image:               vi.Handle,
		SubresourceRange:    vi.subresource(baseLevel, levels),
	}
	vk.CmdPipelineBarrier(cmd, srcStage, dstStage, 0, 0, nil, 0, nil, 1, []vk.ImageMemoryBarrier{barrier})
}

// CopyFromBuffer records a copy of tightly packed pixels into level 0 of
// one layer. The image must be in TransferDstOptimal.
func (vi *VulkanImage) CopyFromBuffer(cmd vk.CommandBuffer, buffer vk.Buffer, layer uint32) {
	region := vk.BufferImageCopy{
		ImageSubresource: vk.ImageSubresourceLayers{
			AspectMask:     vi.Aspect,
			BaseArrayLayer: layer,
			LayerCount:     1,
		},
		ImageExtent: vk.Extent3D{Width: vi.Width, Height: vi.Height, Depth: 1},
	}
	vk.CmdCopyBufferToImage(cmd, buffer, vi.Handle, vk.ImageLayoutTransferDstOptimal, 1, []vk.BufferImageCopy{region})
}

// GenerateMipmaps fills every level below 0 by successive blits. It expects
// all levels in ShaderReadOnlyOptimal and leaves them there.
func (vi *VulkanImage) GenerateMipmaps(cmd vk.CommandBuffer, filter vk.Filter) {
	vi.Transition(cmd, vk.ImageLayoutShaderReadOnlyOptimal, vk.ImageLayoutTransferDstOptimal, 0, vi.MipLevels)
	width, height := int32(vi.Width), int32(vi.Height)
	for level := uint32(1); level < vi.MipLevels; level++ {
		vi.Transition(cmd, vk.ImageLayoutTransferDstOptimal, vk.ImageLayoutTransferSrcOptimal, level-1, 1)
		nextWidth, nextHeight := max(width/2, 1), max(height/2, 1)
		blit := vk.ImageBlit{
			SrcSubresource: vk.ImageSubresourceLayers{
				AspectMask: vi.Aspect,
				MipLevel:   level - 1,
				LayerCount: vi.Layers,
			},
			SrcOffsets: [2]vk.Offset3D{{}, {X: width, Y: height, Z: 1}},
			DstSubresource: vk.ImageSubresourceLayers{
				AspectMask: vi.Aspect,
				MipLevel:   level,
				LayerCount: vi.Layers,
			},
			DstOffsets: [2]vk.Offset3D{{}, {X: nextWidth, Y: nextHeight, Z: 1}},
		}
		vk.CmdBlitImage(cmd,
			vi.Handle, vk.ImageLayoutTransferSrcOptimal,
			vi.Handle, vk.ImageLayoutTransferDstOptimal,
			1, []vk.ImageBlit{blit}, filter)
		vi.Transition(cmd, vk.ImageLayoutTransferSrcOptimal, vk.ImageLayoutShaderReadOnlyOptimal, level-1, 1)
		width, height = nextWidth, nextHeight
	}
	vi.Transition(cmd, vk.ImageLayoutTransferDstOptimal, vk.ImageLayoutShaderReadOnlyOptimal, vi.MipLevels-1, 1)
}

// mipLevelCount is the length of the full chain down to 1x1.
func mipLevelCount(width, height uint32) uint32 {
	levels := uint32(1)
	for size := max(width, height); size > 1; size /= 2 {
		levels++
	}
	return levels
}
