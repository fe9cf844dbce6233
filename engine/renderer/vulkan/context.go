package vulkan

import (
	vk "github.com/goki/vulkan"
)

// VulkanContext holds the instance-level and device-level objects every
// part of the backend shares.
type VulkanContext struct {
	// The framebuffer's current width.
	FramebufferWidth uint32
	// The framebuffer's current height.
	FramebufferHeight uint32
	// Bumped on every resize. The swapchain is rebuilt when it no longer
	// matches FramebufferSizeLastGeneration.
	FramebufferSizeGeneration     uint64
	FramebufferSizeLastGeneration uint64

	Instance  vk.Instance
	Allocator *vk.AllocationCallbacks
	Surface   vk.Surface

	debugCallback vk.DebugReportCallback

	Device *VulkanDevice

	Swapchain *VulkanSwapchain
	// ClearRenderpass starts a frame on the swapchain; LoadRenderpass resumes
	// it after rendering into a frame buffer.
	ClearRenderpass *VulkanRenderpass
	LoadRenderpass  *VulkanRenderpass

	GraphicsCommandBuffers   []*VulkanCommandBuffer
	ImageAvailableSemaphores []vk.Semaphore
	QueueCompleteSemaphores  []vk.Semaphore
	InFlightFences           []*VulkanFence
	// Fences owned by InFlightFences, indexed by swapchain image.
	ImagesInFlight []*VulkanFence

	ImageIndex   uint32
	CurrentFrame uint32

	RecreatingSwapchain bool
}

// FindMemoryIndex returns the first memory type allowed by typeFilter that
// has every property in propertyFlags, or -1.
func (vc *VulkanContext) FindMemoryIndex(typeFilter uint32, propertyFlags vk.MemoryPropertyFlags) int32 {
	memory := vc.Device.Memory
	for i := uint32(0); i < memory.MemoryTypeCount; i++ {
		memory.MemoryTypes[i].Deref()
		if typeFilter&(1<<i) != 0 && memory.MemoryTypes[i].PropertyFlags&propertyFlags == propertyFlags {
			return int32(i)
		}
	}
	return -1
}

func (vc *VulkanContext) logical() vk.Device {
	return vc.Device.LogicalDevice
}
