package vulkan

import (
	vk "github.com/goki/vulkan"
)

// renderpassConfig describes the attachments of a single-subpass render pass.
// Colour attachments go from colorInitial to colorFinal; a depth attachment
// is present when depthFormat is not FormatUndefined.
type renderpassConfig struct {
	colorFormats []vk.Format
	depthFormat  vk.Format
	clear        bool
	colorInitial vk.ImageLayout
	colorFinal   vk.ImageLayout
	depthInitial vk.ImageLayout
	depthFinal   vk.ImageLayout
}

type VulkanRenderpass struct {
	Handle     vk.RenderPass
	R, G, B, A float32
	Depth      float32
	Stencil    uint32

	ColorCount uint32
	HasDepth   bool
}

func RenderpassCreate(context *VulkanContext, config renderpassConfig) (*VulkanRenderpass, error) {
	renderpass := &VulkanRenderpass{
		A:          1,
		Depth:      1,
		ColorCount: uint32(len(config.colorFormats)),
		HasDepth:   config.depthFormat != vk.FormatUndefined,
	}

	loadOp := vk.AttachmentLoadOpLoad
	if config.clear {
		loadOp = vk.AttachmentLoadOpClear
	}

	attachments := make([]vk.AttachmentDescription, 0, len(config.colorFormats)+1)
	colorReferences := make([]vk.AttachmentReference, 0, len(config.colorFormats))
	for i, format := range config.colorFormats {
		attachments = append(attachments, vk.AttachmentDescription{
			Format:         format,
			Samples:        vk.SampleCount1Bit,
			LoadOp:         loadOp,
			StoreOp:        vk.AttachmentStoreOpStore,
			StencilLoadOp:  vk.AttachmentLoadOpDontCare,
			StencilStoreOp: vk.AttachmentStoreOpDontCare,
			InitialLayout:  config.colorInitial,
			FinalLayout:    config.colorFinal,
		})
		colorReferences = append(colorReferences, vk.AttachmentReference{
			Attachment: uint32(i),
			Layout:     vk.ImageLayoutColorAttachmentOptimal,
		})
	}

	subpass := vk.SubpassDescription{
		PipelineBindPoint:    vk.PipelineBindPointGraphics,
		ColorAttachmentCount: uint32(len(colorReferences)),
		PColorAttachments:    colorReferences,
	}

	if renderpass.HasDepth {
		attachments = append(attachments, vk.AttachmentDescription{
			Format:         config.depthFormat,
			Samples:        vk.SampleCount1Bit,
			LoadOp:         loadOp,
			StoreOp:        vk.AttachmentStoreOpStore,
			StencilLoadOp:  vk.AttachmentLoadOpDontCare,
			StencilStoreOp: vk.AttachmentStoreOpDontCare,
			InitialLayout:  config.depthInitial,
			FinalLayout:    config.depthFinal,
		})
		subpass.PDepthStencilAttachment = &vk.AttachmentReference{
			Attachment: uint32(len(attachments) - 1),
			Layout:     vk.ImageLayoutDepthStencilAttachmentOptimal,
		}
	}

	attachmentStages := vk.PipelineStageFlags(vk.PipelineStageColorAttachmentOutputBit |
		vk.PipelineStageEarlyFragmentTestsBit | vk.PipelineStageLateFragmentTestsBit)
	attachmentAccess := vk.AccessFlags(vk.AccessColorAttachmentReadBit | vk.AccessColorAttachmentWriteBit |
		vk.AccessDepthStencilAttachmentReadBit | vk.AccessDepthStencilAttachmentWriteBit)
	// Attachments of one pass are sampled by the next, so writes have to be
	// ordered against fragment shader reads on both sides.
	dependencies := []vk.SubpassDependency{
		{
			SrcSubpass:    vk.SubpassExternal,
			DstSubpass:    0,
			SrcStageMask:  attachmentStages | vk.PipelineStageFlags(vk.PipelineStageFragmentShaderBit),
			SrcAccessMask: vk.AccessFlags(vk.AccessColorAttachmentWriteBit | vk.AccessDepthStencilAttachmentWriteBit),
			DstStageMask:  attachmentStages,
			DstAccessMask: attachmentAccess,
		},
		{
			SrcSubpass:    0,
			DstSubpass:    vk.SubpassExternal,
			SrcStageMask:  attachmentStages,
			SrcAccessMask: vk.AccessFlags(vk.AccessColorAttachmentWriteBit | vk.AccessDepthStencilAttachmentWriteBit),
			DstStageMask:  vk.PipelineStageFlags(vk.PipelineStageFragmentShaderBit),
			DstAccessMask: vk.AccessFlags(vk.AccessShaderReadBit),
		},
	}

	createInfo := vk.RenderPassCreateInfo{
		SType:           vk.StructureTypeRenderPassCreateInfo,
		AttachmentCount: uint32(len(attachments)),
		PAttachments:    attachments,
		SubpassCount:    1,
		PSubpasses:      []vk.SubpassDescription{subpass},
		DependencyCount: uint32(len(dependencies)),
		PDependencies:   dependencies,
	}
	var handle vk.RenderPass
	if res := vk.CreateRenderPass(context.logical(), &createInfo, context.Allocator, &handle); res != vk.Success {
		return nil, resultError("vkCreateRenderPass", res)
	}
	renderpass.Handle = handle
	return renderpass, nil
}

// swapchainRenderpass builds one of the two passes that target the
// swapchain. The clearing pass starts a frame; the loading one resumes it
// after an offscreen pass.
func swapchainRenderpass(context *VulkanContext, clear bool) (*VulkanRenderpass, error) {
	config := renderpassConfig{
		colorFormats: []vk.Format{context.Swapchain.ImageFormat.Format},
		depthFormat:  context.Device.DepthFormat,
		clear:        clear,
		colorInitial: vk.ImageLayoutPresentSrc,
		colorFinal:   vk.ImageLayoutPresentSrc,
		depthInitial: vk.ImageLayoutDepthStencilAttachmentOptimal,
		depthFinal:   vk.ImageLayoutDepthStencilAttachmentOptimal,
	}
	if clear {
		config.colorInitial = vk.ImageLayoutUndefined
		config.depthInitial = vk.ImageLayoutUndefined
	}
	return RenderpassCreate(context, config)
}

func (vr *VulkanRenderpass) Destroy(context *VulkanContext) {
	if vr.Handle != vk.NullRenderPass {
		vk.DestroyRenderPass(context.logical(), vr.Handle, context.Allocator)
		vr.Handle = vk.NullRenderPass
	}
}

func (vr *VulkanRenderpass) Begin(commandBuffer *VulkanCommandBuffer, framebuffer vk.Framebuffer, width, height uint32) {
	count := vr.ColorCount
	if vr.HasDepth {
		count++
	}
	clearValues := make([]vk.ClearValue, count)
	for i := uint32(0); i < vr.ColorCount; i++ {
		clearValues[i].SetColor([]float32{vr.R, vr.G, vr.B, vr.A})
	}
	if vr.HasDepth {
		clearValues[count-1].SetDepthStencil(vr.Depth, vr.Stencil)
	}
	beginInfo := vk.RenderPassBeginInfo{
		SType:       vk.StructureTypeRenderPassBeginInfo,
		RenderPass:  vr.Handle,
		Framebuffer: framebuffer,
		RenderArea: vk.Rect2D{
			Extent: vk.Extent2D{Width: width, Height: height},
		},
		ClearValueCount: count,
		PClearValues:    clearValues,
	}
	vk.CmdBeginRenderPass(commandBuffer.Handle, &beginInfo, vk.SubpassContentsInline)
	commandBuffer.State = CommandBufferStateInRenderPass
}

func (vr *VulkanRenderpass) End(commandBuffer *VulkanCommandBuffer) {
	vk.CmdEndRenderPass(commandBuffer.Handle)
	commandBuffer.State = CommandBufferStateRecording
}
