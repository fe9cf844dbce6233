package vulkan

import (
	"math"

	vk "github.com/goki/vulkan"
	"github.com/spaghettifunk/solo/engine/core"
)

const maxFramesInFlight = 2

type VulkanSwapchain struct {
	ImageFormat       vk.SurfaceFormat
	Extent            vk.Extent2D
	MaxFramesInFlight uint32
	Handle            vk.Swapchain
	Images            []vk.Image
	Views             []vk.ImageView

	DepthAttachment *VulkanImage

	// Framebuffers used for on-screen rendering, one per image.
	Framebuffers []*VulkanFramebuffer
}

type VulkanSwapchainSupportInfo struct {
	Capabilities vk.SurfaceCapabilities
	Formats      []vk.SurfaceFormat
	PresentModes []vk.PresentMode
}

func (vs *VulkanSwapchain) ImageCount() uint32 {
	return uint32(len(vs.Images))
}

// SwapchainCreate builds the swapchain, its views and the shared depth
// image. The extent follows the surface when it reports one.
func SwapchainCreate(context *VulkanContext, width, height uint32, vsync bool) (*VulkanSwapchain, error) {
	support := context.Device.SwapchainSupport
	swapchain := &VulkanSwapchain{MaxFramesInFlight: maxFramesInFlight}

	swapchain.ImageFormat = support.Formats[0]
	for _, format := range support.Formats {
		if format.Format == vk.FormatB8g8r8a8Unorm && format.ColorSpace == vk.ColorSpaceSrgbNonlinear {
			swapchain.ImageFormat = format
			break
		}
	}

	presentMode := vk.PresentModeFifo
	if !vsync {
		for _, mode := range support.PresentModes {
			if mode == vk.PresentModeMailbox {
				presentMode = mode
				break
			}
			if mode == vk.PresentModeImmediate {
				presentMode = mode
			}
		}
	}

	capabilities := support.Capabilities
	extent := vk.Extent2D{Width: width, Height: height}
	if capabilities.CurrentExtent.Width != math.MaxUint32 {
		extent = capabilities.CurrentExtent
	}
	extent.Width = clamp(extent.Width, capabilities.MinImageExtent.Width, capabilities.MaxImageExtent.Width)
	extent.Height = clamp(extent.Height, capabilities.MinImageExtent.Height, capabilities.MaxImageExtent.Height)
	swapchain.Extent = extent

	imageCount := capabilities.MinImageCount + 1
	if capabilities.MaxImageCount > 0 && imageCount > capabilities.MaxImageCount {
		imageCount = capabilities.MaxImageCount
	}

	createInfo := vk.SwapchainCreateInfo{
		SType:            vk.StructureTypeSwapchainCreateInfo,
		Surface:          context.Surface,
		MinImageCount:    imageCount,
		ImageFormat:      swapchain.ImageFormat.Format,
		ImageColorSpace:  swapchain.ImageFormat.ColorSpace,
		ImageExtent:      extent,
		ImageArrayLayers: 1,
		ImageUsage:       vk.ImageUsageFlags(vk.ImageUsageColorAttachmentBit),
		ImageSharingMode: vk.SharingModeExclusive,
		PreTransform:     capabilities.CurrentTransform,
		CompositeAlpha:   vk.CompositeAlphaOpaqueBit,
		PresentMode:      presentMode,
		Clipped:          vk.True,
	}
	if context.Device.GraphicsQueueIndex != context.Device.PresentQueueIndex {
		createInfo.ImageSharingMode = vk.SharingModeConcurrent
		createInfo.QueueFamilyIndexCount = 2
		createInfo.PQueueFamilyIndices = []uint32{
			uint32(context.Device.GraphicsQueueIndex),
			uint32(context.Device.PresentQueueIndex),
		}
	}

	var handle vk.Swapchain
	if res := vk.CreateSwapchain(context.logical(), &createInfo, context.Allocator, &handle); res != vk.Success {
		return nil, resultError("vkCreateSwapchainKHR", res)
	}
	swapchain.Handle = handle
	context.CurrentFrame = 0

	var count uint32
	if res := vk.GetSwapchainImages(context.logical(), handle, &count, nil); res != vk.Success {
		swapchain.Destroy(context)
		return nil, resultError("vkGetSwapchainImagesKHR", res)
	}
	swapchain.Images = make([]vk.Image, count)
	if res := vk.GetSwapchainImages(context.logical(), handle, &count, swapchain.Images); res != vk.Success {
		swapchain.Destroy(context)
		return nil, resultError("vkGetSwapchainImagesKHR", res)
	}

	swapchain.Views = make([]vk.ImageView, count)
	for i, image := range swapchain.Images {
		viewInfo := vk.ImageViewCreateInfo{
			SType:    vk.StructureTypeImageViewCreateInfo,
			Image:    image,
			ViewType: vk.ImageViewType2d,
			Format:   swapchain.ImageFormat.Format,
			SubresourceRange: vk.ImageSubresourceRange{
				AspectMask: vk.ImageAspectFlags(vk.ImageAspectColorBit),
				LevelCount: 1,
				LayerCount: 1,
			},
		}
		if res := vk.CreateImageView(context.logical(), &viewInfo, context.Allocator, &swapchain.Views[i]); res != vk.Success {
			swapchain.Destroy(context)
			return nil, resultError("vkCreateImageView", res)
		}
	}

	depth, err := ImageCreate(context, imageConfig{
		width:  extent.Width,
		height: extent.Height,
		format: context.Device.DepthFormat,
		usage:  vk.ImageUsageFlags(vk.ImageUsageDepthStencilAttachmentBit),
		aspect: vk.ImageAspectFlags(vk.ImageAspectDepthBit),
	})
	if err != nil {
		swapchain.Destroy(context)
		return nil, err
	}
	swapchain.DepthAttachment = depth

	core.LogInfo("Swapchain created: %dx%d, %d images.", extent.Width, extent.Height, count)
	return swapchain, nil
}

// AcquireNextImageIndex reports false when the swapchain is out of date and
// must be recreated before rendering.
func (vs *VulkanSwapchain) AcquireNextImageIndex(context *VulkanContext, timeoutNs uint64, imageAvailable vk.Semaphore) (uint32, bool, error) {
	var index uint32
	res := vk.AcquireNextImage(context.logical(), vs.Handle, timeoutNs, imageAvailable, vk.NullFence, &index)
	switch res {
	case vk.Success, vk.Suboptimal:
		return index, true, nil
	case vk.ErrorOutOfDate:
		return 0, false, nil
	}
	return 0, false, resultError("vkAcquireNextImageKHR", res)
}

// Present hands the image back and advances the frame index. It reports
// false when the swapchain should be recreated.
func (vs *VulkanSwapchain) Present(context *VulkanContext, renderComplete vk.Semaphore, imageIndex uint32) (bool, error) {
	presentInfo := vk.PresentInfo{
		SType:              vk.StructureTypePresentInfo,
		WaitSemaphoreCount: 1,
		PWaitSemaphores:    []vk.Semaphore{renderComplete},
		SwapchainCount:     1,
		PSwapchains:        []vk.Swapchain{vs.Handle},
		PImageIndices:      []uint32{imageIndex},
	}
	res := vk.QueuePresent(context.Device.PresentQueue, &presentInfo)
	context.CurrentFrame = (context.CurrentFrame + 1) % vs.MaxFramesInFlight
	switch res {
	case vk.Success:
		return true, nil
	case vk.ErrorOutOfDate, vk.Suboptimal:
		return false, nil
	}
	return false, resultError("vkQueuePresentKHR", res)
}

// Destroy releases the views, framebuffers and depth image. The images are
// owned by the swapchain itself.
func (vs *VulkanSwapchain) Destroy(context *VulkanContext) {
	for _, fb := range vs.Framebuffers {
		if fb != nil {
			fb.Destroy(context)
		}
	}
	vs.Framebuffers = nil
	if vs.DepthAttachment != nil {
		vs.DepthAttachment.Destroy(context)
		vs.DepthAttachment = nil
	}
	for _, view := range vs.Views {
		if view != vk.NullImageView {
			vk.DestroyImageView(context.logical(), view, context.Allocator)
		}
	}
	vs.Views = nil
	vs.Images = nil
	if vs.Handle != vk.NullSwapchain {
		vk.DestroySwapchain(context.logical(), vs.Handle, context.Allocator)
		vs.Handle = vk.NullSwapchain
	}
}

// RegenerateFramebuffers builds one framebuffer per swapchain image over
// renderpass.
func (vs *VulkanSwapchain) RegenerateFramebuffers(context *VulkanContext, renderpass *VulkanRenderpass) error {
	vs.Framebuffers = make([]*VulkanFramebuffer, len(vs.Views))
	for i, view := range vs.Views {
		fb, err := FramebufferCreate(context, renderpass, vs.Extent.Width, vs.Extent.Height,
			[]vk.ImageView{view, vs.DepthAttachment.View})
		if err != nil {
			return err
		}
		vs.Framebuffers[i] = fb
	}
	return nil
}
