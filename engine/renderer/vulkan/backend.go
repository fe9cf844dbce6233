// Package vulkan implements the renderer backend on Vulkan. It opens its own
// GLFW window without a client API, compiles WGSL sources to SPIR-V and
// builds pipelines lazily per program, geometry layout, render pass and
// render state. Link it into a binary with a blank import.
package vulkan

import (
	"fmt"
	"math"
	"runtime"
	"unsafe"

	"github.com/go-gl/glfw/v3.3/glfw"
	vk "github.com/goki/vulkan"
	"github.com/spaghettifunk/solo/engine/core"
	"github.com/spaghettifunk/solo/engine/platform"
	"github.com/spaghettifunk/solo/engine/renderer"
	"github.com/spaghettifunk/solo/engine/renderer/metadata"
)

func init() {
	renderer.Register(metadata.BackendVulkan, func() renderer.Backend { return New() })
}

const validationLayer = "VK_LAYER_KHRONOS_validation"

// activePass is the render pass currently open on the frame's command buffer.
type activePass struct {
	renderpass  *VulkanRenderpass
	frameBuffer metadata.FrameBufferHandle
	width       uint32
	height      uint32
}

type Backend struct {
	platform *platform.Platform
	context  *VulkanContext
	config   metadata.BackendConfig
	debug    bool

	textures     *core.Registry[metadata.TextureHandle, *texture]
	buffers      *core.Registry[metadata.BufferHandle, *buffer]
	programs     *core.Registry[metadata.ProgramHandle, *program]
	frameBuffers *core.Registry[metadata.FrameBufferHandle, *frameBuffer]

	frames    []*frameResources
	pipelines *pipelineCache
	retired   retirementQueue
	// Number of frames submitted so far. The frame being recorded is
	// frameNumber+1.
	frameNumber uint64

	default2D     *texture
	defaultCube   *texture
	boundTextures map[uint32]metadata.TextureHandle

	currentProgram     metadata.ProgramHandle
	currentFrameBuffer metadata.FrameBufferHandle
	state              metadata.RenderState
	viewport           metadata.Viewport

	inFrame bool
	pass    activePass
}

func New() *Backend {
	return &Backend{
		context:       &VulkanContext{},
		textures:      core.NewRegistry[metadata.TextureHandle, *texture](),
		buffers:       core.NewRegistry[metadata.BufferHandle, *buffer](),
		programs:      core.NewRegistry[metadata.ProgramHandle, *program](),
		frameBuffers:  core.NewRegistry[metadata.FrameBufferHandle, *frameBuffer](),
		pipelines:     newPipelineCache(),
		boundTextures: map[uint32]metadata.TextureHandle{},
		state:         metadata.DefaultRenderState,
	}
}

func contextError(err error) error {
	return &core.ContextCreationError{Backend: "vulkan", Err: err}
}

func (b *Backend) Initialize(config metadata.BackendConfig) error {
	b.config = config
	b.debug = config.Debug

	p, err := platform.Startup(platform.WindowConfig{
		Title:      config.Title,
		Width:      config.CanvasWidth,
		Height:     config.CanvasHeight,
		Fullscreen: config.Fullscreen,
		VSync:      config.VSync,
		API:        platform.ClientAPINone,
	})
	if err != nil {
		return err
	}
	b.platform = p

	if err := b.initialize(); err != nil {
		core.LogError("vulkan: %s", err)
		b.teardown()
		return contextError(err)
	}
	core.LogInfo("Vulkan renderer initialized successfully.")
	return nil
}

func (b *Backend) initialize() error {
	procAddr := glfw.GetVulkanGetInstanceProcAddress()
	if procAddr == nil {
		return fmt.Errorf("GetInstanceProcAddress is nil")
	}
	vk.SetGetInstanceProcAddr(procAddr)
	if err := vk.Init(); err != nil {
		return err
	}

	ctx := b.context
	ctx.FramebufferWidth, ctx.FramebufferHeight = b.platform.CanvasSize()

	if err := b.createInstance(); err != nil {
		return err
	}

	core.LogDebug("Creating Vulkan surface...")
	surface, err := b.platform.Window.CreateWindowSurface(ctx.Instance, nil)
	if err != nil {
		return fmt.Errorf("surface creation failed: %w", err)
	}
	ctx.Surface = vk.SurfaceFromPointer(surface)
	core.LogDebug("Vulkan surface created.")

	if err := DeviceCreate(ctx); err != nil {
		return err
	}

	sc, err := SwapchainCreate(ctx, ctx.FramebufferWidth, ctx.FramebufferHeight, b.config.VSync)
	if err != nil {
		return err
	}
	ctx.Swapchain = sc
	if err := b.createSwapchainRenderpasses(); err != nil {
		return err
	}
	// The loading pass is compatible with the clearing one, so a single set
	// of framebuffers serves both.
	if err := sc.RegenerateFramebuffers(ctx, ctx.ClearRenderpass); err != nil {
		return err
	}

	ctx.GraphicsCommandBuffers = make([]*VulkanCommandBuffer, sc.MaxFramesInFlight)
	for i := range ctx.GraphicsCommandBuffers {
		cb, err := NewVulkanCommandBuffer(ctx, ctx.Device.GraphicsCommandPool, true)
		if err != nil {
			return err
		}
		ctx.GraphicsCommandBuffers[i] = cb
	}
	core.LogDebug("Vulkan command buffers created.")

	if err := b.createSyncObjects(); err != nil {
		return err
	}

	b.frames = make([]*frameResources, sc.MaxFramesInFlight)
	for i := range b.frames {
		f, err := newFrameResources(ctx)
		if err != nil {
			return err
		}
		b.frames[i] = f
	}

	if err := b.createDefaultTextures(); err != nil {
		return err
	}
	b.SetViewport(metadata.Viewport{Width: ctx.FramebufferWidth, Height: ctx.FramebufferHeight})
	return nil
}

func (b *Backend) createInstance() error {
	ctx := b.context
	appInfo := &vk.ApplicationInfo{
		SType:              vk.StructureTypeApplicationInfo,
		ApiVersion:         uint32(vk.MakeVersion(1, 0, 0)),
		ApplicationVersion: uint32(vk.MakeVersion(1, 0, 0)),
		PApplicationName:   VulkanSafeString(b.config.Title),
		PEngineName:        VulkanSafeString("Solo Engine"),
	}
	createInfo := vk.InstanceCreateInfo{
		SType:            vk.StructureTypeInstanceCreateInfo,
		PApplicationInfo: appInfo,
	}

	extensions := b.platform.RequiredInstanceExtensions()
	if runtime.GOOS == "darwin" {
		extensions = append(extensions,
			"VK_KHR_portability_enumeration",
			"VK_KHR_get_physical_device_properties2",
		)
		// VK_INSTANCE_CREATE_ENUMERATE_PORTABILITY_BIT_KHR
		createInfo.Flags |= 1
	}

	var layers []string
	if b.debug {
		if hasInstanceLayer(validationLayer) {
			layers = append(layers, validationLayer)
			extensions = append(extensions, vk.ExtDebugReportExtensionName)
		} else {
			core.LogWarn("vulkan: %s is not installed, running without validation", validationLayer)
			b.debug = false
		}
	}
	core.LogDebug("Required extensions: %v", extensions)

	createInfo.EnabledExtensionCount = uint32(len(extensions))
	createInfo.PpEnabledExtensionNames = VulkanSafeStrings(extensions)
	createInfo.EnabledLayerCount = uint32(len(layers))
	createInfo.PpEnabledLayerNames = VulkanSafeStrings(layers)

	if res := vk.CreateInstance(&createInfo, ctx.Allocator, &ctx.Instance); res != vk.Success {
		return resultError("vkCreateInstance", res)
	}
	if err := vk.InitInstance(ctx.Instance); err != nil {
		return err
	}
	core.LogInfo("Vulkan Instance created.")

	if b.debug {
		debugCreateInfo := vk.DebugReportCallbackCreateInfo{
			SType:       vk.StructureTypeDebugReportCallbackCreateInfo,
			Flags:       vk.DebugReportFlags(vk.DebugReportErrorBit | vk.DebugReportWarningBit | vk.DebugReportPerformanceWarningBit),
			PfnCallback: debugCallback,
		}
		var callback vk.DebugReportCallback
		if res := vk.CreateDebugReportCallback(ctx.Instance, &debugCreateInfo, ctx.Allocator, &callback); res != vk.Success {
			core.LogWarn("vulkan: debug report callback unavailable: %s", VulkanResultString(res))
		} else {
			ctx.debugCallback = callback
			core.LogDebug("Vulkan debugger created.")
		}
	}
	return nil
}

func hasInstanceLayer(name string) bool {
	var count uint32
	if res := vk.EnumerateInstanceLayerProperties(&count, nil); res != vk.Success || count == 0 {
		return false
	}
	available := make([]vk.LayerProperties, count)
	if res := vk.EnumerateInstanceLayerProperties(&count, available); res != vk.Success {
		return false
	}
	for i := range available {
		available[i].Deref()
		if vk.ToString(available[i].LayerName[:]) == name {
			return true
		}
	}
	return false
}

func (b *Backend) createSwapchainRenderpasses() error {
	ctx := b.context
	clear, err := swapchainRenderpass(ctx, true)
	if err != nil {
		return err
	}
	ctx.ClearRenderpass = clear
	load, err := swapchainRenderpass(ctx, false)
	if err != nil {
		return err
	}
	ctx.LoadRenderpass = load
	return nil
}

func (b *Backend) destroySwapchainRenderpasses() {
	ctx := b.context
	for _, rp := range []*VulkanRenderpass{ctx.ClearRenderpass, ctx.LoadRenderpass} {
		if rp == nil {
			continue
		}
		handle := rp.Handle
		b.pipelines.evict(func(key pipelineKey) bool { return key.renderpass == handle }, func(vp *VulkanPipeline) {
			vp.Destroy(ctx)
		})
		rp.Destroy(ctx)
	}
	ctx.ClearRenderpass, ctx.LoadRenderpass = nil, nil
}

func (b *Backend) createSyncObjects() error {
	ctx := b.context
	count := ctx.Swapchain.MaxFramesInFlight
	ctx.ImageAvailableSemaphores = make([]vk.Semaphore, count)
	ctx.QueueCompleteSemaphores = make([]vk.Semaphore, count)
	ctx.InFlightFences = make([]*VulkanFence, count)

	semaphoreCreateInfo := vk.SemaphoreCreateInfo{SType: vk.StructureTypeSemaphoreCreateInfo}
	for i := uint32(0); i < count; i++ {
		if res := vk.CreateSemaphore(ctx.logical(), &semaphoreCreateInfo, ctx.Allocator, &ctx.ImageAvailableSemaphores[i]); res != vk.Success {
			return resultError("vkCreateSemaphore", res)
		}
		if res := vk.CreateSemaphore(ctx.logical(), &semaphoreCreateInfo, ctx.Allocator, &ctx.QueueCompleteSemaphores[i]); res != vk.Success {
			return resultError("vkCreateSemaphore", res)
		}
		// Signaled, so the first frame does not wait for one never submitted.
		f, err := NewFence(ctx, true)
		if err != nil {
			return err
		}
		ctx.InFlightFences[i] = f
	}
	ctx.ImagesInFlight = make([]*VulkanFence, ctx.Swapchain.ImageCount())
	return nil
}

// Shutdown frees whatever the resource layer left behind, waits for the GPU
// and tears the context down in reverse creation order.
func (b *Backend) Shutdown() error {
	ctx := b.context
	if ctx.Device != nil && ctx.logical() != nil {
		vk.DeviceWaitIdle(ctx.logical())
	}
	live := b.textures.Len() + b.buffers.Len() + b.programs.Len() + b.frameBuffers.Len()
	if live > 0 {
		core.LogWarn("vulkan backend shut down with %d live objects", live)
	}
	b.inFrame = false
	b.pass = activePass{}
	for _, h := range b.frameBuffers.Descending() {
		b.DestroyFrameBuffer(h)
	}
	for _, h := range b.programs.Descending() {
		b.DestroyProgram(h)
	}
	for _, h := range b.buffers.Descending() {
		b.DestroyVertexBuffer(h)
	}
	for _, h := range b.textures.Descending() {
		b.DestroyTexture(h)
	}
	b.teardown()
	return nil
}

// teardown destroys whatever part of the context exists. Initialize uses it
// to unwind a partial start.
func (b *Backend) teardown() {
	ctx := b.context
	if ctx.Device != nil && ctx.logical() != nil {
		vk.DeviceWaitIdle(ctx.logical())

		b.pipelines.evict(func(pipelineKey) bool { return true }, func(vp *VulkanPipeline) { vp.Destroy(ctx) })
		if b.default2D != nil {
			b.destroyTexture(b.default2D)
			b.default2D = nil
		}
		if b.defaultCube != nil {
			b.destroyTexture(b.defaultCube)
			b.defaultCube = nil
		}
		b.retired.flush()
		for _, f := range b.frames {
			if f != nil {
				f.destroy(ctx)
			}
		}
		b.frames = nil

		core.LogDebug("Destroying Vulkan sync objects...")
		for i := range ctx.ImageAvailableSemaphores {
			if ctx.ImageAvailableSemaphores[i] != vk.NullSemaphore {
				vk.DestroySemaphore(ctx.logical(), ctx.ImageAvailableSemaphores[i], ctx.Allocator)
			}
			if ctx.QueueCompleteSemaphores[i] != vk.NullSemaphore {
				vk.DestroySemaphore(ctx.logical(), ctx.QueueCompleteSemaphores[i], ctx.Allocator)
			}
			if ctx.InFlightFences[i] != nil {
				ctx.InFlightFences[i].Destroy(ctx)
			}
		}
		ctx.ImageAvailableSemaphores, ctx.QueueCompleteSemaphores = nil, nil
		ctx.InFlightFences, ctx.ImagesInFlight = nil, nil

		for _, cb := range ctx.GraphicsCommandBuffers {
			if cb != nil {
				cb.Free(ctx, ctx.Device.GraphicsCommandPool)
			}
		}
		ctx.GraphicsCommandBuffers = nil

		if ctx.Swapchain != nil {
			core.LogDebug("Destroying Vulkan swapchain...")
			ctx.Swapchain.Destroy(ctx)
			ctx.Swapchain = nil
		}
		b.destroySwapchainRenderpasses()

		core.LogDebug("Destroying Vulkan device...")
		DeviceDestroy(ctx)
	}
	b.retired.flush()

	if ctx.Instance != nil {
		if ctx.Surface != vk.NullSurface {
			vk.DestroySurface(ctx.Instance, ctx.Surface, ctx.Allocator)
			ctx.Surface = vk.NullSurface
		}
		if ctx.debugCallback != vk.NullDebugReportCallback {
			vk.DestroyDebugReportCallback(ctx.Instance, ctx.debugCallback, ctx.Allocator)
			ctx.debugCallback = vk.NullDebugReportCallback
		}
		core.LogDebug("Destroying Vulkan instance...")
		vk.DestroyInstance(ctx.Instance, ctx.Allocator)
		ctx.Instance = nil
	}
	if b.platform != nil {
		b.platform.Destroy()
		b.platform = nil
	}
}

// Resized only records the size; the swapchain is rebuilt by the next
// BeginFrame.
func (b *Backend) Resized(width, height uint32) {
	b.context.FramebufferWidth = width
	b.context.FramebufferHeight = height
	b.context.FramebufferSizeGeneration++
	core.LogDebug("vulkan canvas resized to %dx%d, generation %d", width, height, b.context.FramebufferSizeGeneration)
}

func (b *Backend) Window() metadata.Window {
	if b.platform == nil {
		return nil
	}
	return b.platform
}

func (b *Backend) CanvasSize() (uint32, uint32) {
	if b.platform == nil {
		return 0, 0
	}
	return b.platform.CanvasSize()
}

// BeginFrame waits for the frame slot, acquires a swapchain image and opens
// the clearing pass on it. It returns core.ErrSwapchainBooting when the
// swapchain had to be rebuilt and the frame must be skipped.
func (b *Backend) BeginFrame() error {
	ctx := b.context
	if ctx.RecreatingSwapchain {
		return core.ErrSwapchainBooting
	}
	if ctx.FramebufferSizeGeneration != ctx.FramebufferSizeLastGeneration {
		if err := b.recreateSwapchain(); err != nil {
			return err
		}
		return core.ErrSwapchainBooting
	}

	fence := ctx.InFlightFences[ctx.CurrentFrame]
	if err := fence.Wait(ctx, math.MaxUint64); err != nil {
		return err
	}
	if b.frameNumber+1 > uint64(maxFramesInFlight) {
		b.retired.collect(b.frameNumber + 1 - uint64(maxFramesInFlight))
	}

	index, ok, err := ctx.Swapchain.AcquireNextImageIndex(ctx, math.MaxUint64, ctx.ImageAvailableSemaphores[ctx.CurrentFrame])
	if err != nil {
		return err
	}
	if !ok {
		if err := b.recreateSwapchain(); err != nil {
			return err
		}
		return core.ErrSwapchainBooting
	}
	ctx.ImageIndex = index

	// An earlier frame slot may still be rendering into this image.
	if previous := ctx.ImagesInFlight[index]; previous != nil && previous != fence {
		if err := previous.Wait(ctx, math.MaxUint64); err != nil {
			return err
		}
	}
	ctx.ImagesInFlight[index] = fence

	b.frames[ctx.CurrentFrame].reset(ctx)

	cb := b.commandBuffer()
	if err := cb.Reset(); err != nil {
		return err
	}
	if err := cb.Begin(false, false, false); err != nil {
		return err
	}

	sc := ctx.Swapchain
	ctx.ClearRenderpass.Begin(cb, sc.Framebuffers[index].Handle, sc.Extent.Width, sc.Extent.Height)
	b.pass = activePass{renderpass: ctx.ClearRenderpass, width: sc.Extent.Width, height: sc.Extent.Height}
	b.inFrame = true

	if b.currentFrameBuffer != metadata.InvalidHandle {
		b.beginTargetPass()
	}
	return nil
}

// EndFrame submits the frame and presents it.
func (b *Backend) EndFrame() error {
	if !b.inFrame {
		return nil
	}
	ctx := b.context
	b.endPass()
	b.inFrame = false

	cb := b.commandBuffer()
	if err := cb.End(); err != nil {
		return err
	}
	fence := ctx.InFlightFences[ctx.CurrentFrame]
	if err := fence.Reset(ctx); err != nil {
		return err
	}

	submitInfo := vk.SubmitInfo{
		SType:                vk.StructureTypeSubmitInfo,
		CommandBufferCount:   1,
		PCommandBuffers:      []vk.CommandBuffer{cb.Handle},
		SignalSemaphoreCount: 1,
		PSignalSemaphores:    []vk.Semaphore{ctx.QueueCompleteSemaphores[ctx.CurrentFrame]},
		WaitSemaphoreCount:   1,
		PWaitSemaphores:      []vk.Semaphore{ctx.ImageAvailableSemaphores[ctx.CurrentFrame]},
		PWaitDstStageMask:    []vk.PipelineStageFlags{vk.PipelineStageFlags(vk.PipelineStageColorAttachmentOutputBit)},
	}
	if res := vk.QueueSubmit(ctx.Device.GraphicsQueue, 1, []vk.SubmitInfo{submitInfo}, fence.Handle); res != vk.Success {
		return resultError("vkQueueSubmit", res)
	}
	cb.UpdateSubmitted()
	b.frameNumber++

	current, err := ctx.Swapchain.Present(ctx, ctx.QueueCompleteSemaphores[ctx.CurrentFrame], ctx.ImageIndex)
	if err != nil {
		return err
	}
	if !current {
		ctx.FramebufferSizeGeneration++
	}
	return nil
}

// recreateSwapchain rebuilds the swapchain for the current canvas size. The
// swapchain passes survive unless the surface format changed.
func (b *Backend) recreateSwapchain() error {
	ctx := b.context
	if ctx.FramebufferWidth == 0 || ctx.FramebufferHeight == 0 {
		core.LogDebug("vulkan: canvas is empty, swapchain left alone")
		return nil
	}
	ctx.RecreatingSwapchain = true
	defer func() { ctx.RecreatingSwapchain = false }()

	vk.DeviceWaitIdle(ctx.logical())
	b.retired.collect(b.frameNumber)

	if err := DeviceQuerySwapchainSupport(ctx.Device.PhysicalDevice, ctx.Surface, &ctx.Device.SwapchainSupport); err != nil {
		return err
	}
	DeviceDetectDepthFormat(ctx.Device)

	format := ctx.Swapchain.ImageFormat.Format
	ctx.Swapchain.Destroy(ctx)
	sc, err := SwapchainCreate(ctx, ctx.FramebufferWidth, ctx.FramebufferHeight, b.config.VSync)
	if err != nil {
		return err
	}
	ctx.Swapchain = sc
	if sc.ImageFormat.Format != format {
		b.destroySwapchainRenderpasses()
		if err := b.createSwapchainRenderpasses(); err != nil {
			return err
		}
	}
	if err := sc.RegenerateFramebuffers(ctx, ctx.ClearRenderpass); err != nil {
		return err
	}
	ctx.ImagesInFlight = make([]*VulkanFence, sc.ImageCount())
	ctx.FramebufferSizeLastGeneration = ctx.FramebufferSizeGeneration
	core.LogDebug("vulkan: swapchain recreated at %dx%d", sc.Extent.Width, sc.Extent.Height)
	return nil
}

func (b *Backend) recording() bool {
	return b.inFrame
}

func (b *Backend) commandBuffer() *VulkanCommandBuffer {
	return b.context.GraphicsCommandBuffers[b.context.CurrentFrame]
}

func (b *Backend) endPass() {
	if b.pass.renderpass == nil {
		return
	}
	b.pass.renderpass.End(b.commandBuffer())
	b.pass = activePass{}
}

// retire defers destroy until no submitted frame can reference the object.
func (b *Backend) retire(destroy func()) {
	b.retired.push(b.frameNumber+1, destroy)
}

// waitQueueIdle drains the graphics queue before a host write to memory the
// GPU may be reading.
func (b *Backend) waitQueueIdle() {
	if res := vk.QueueWaitIdle(b.context.Device.GraphicsQueue); res != vk.Success {
		core.LogError("vulkan: vkQueueWaitIdle failed with %s", VulkanResultString(res))
		return
	}
	b.retired.collect(b.frameNumber)
}

// SetViewport takes the viewport with a lower-left origin. A zero size
// covers the whole target.
func (b *Backend) SetViewport(viewport metadata.Viewport) {
	b.viewport = viewport
}

func (b *Backend) SetState(state metadata.RenderState) {
	b.state = state
}

func (b *Backend) applyViewport(cmd vk.CommandBuffer) {
	vp := b.viewport.Resolve(b.pass.width, b.pass.height)
	y := int32(b.pass.height) - vp.Y - int32(vp.Height)
	vk.CmdSetViewport(cmd, 0, 1, []vk.Viewport{{
		X:        float32(vp.X),
		Y:        float32(y),
		Width:    float32(vp.Width),
		Height:   float32(vp.Height),
		MinDepth: 0,
		MaxDepth: 1,
	}})
	vk.CmdSetScissor(cmd, 0, 1, []vk.Rect2D{{
		Extent: vk.Extent2D{Width: b.pass.width, Height: b.pass.height},
	}})
}

// Clear fills the attachments of the current target. Like glClear it covers
// the whole target regardless of the viewport.
func (b *Backend) Clear(color, depth bool, r, g, bl, a float32) {
	if !b.recording() || b.pass.renderpass == nil {
		core.LogWarn("vulkan: clear outside of a frame")
		return
	}
	rp := b.pass.renderpass
	var attachments []vk.ClearAttachment
	if color {
		for i := uint32(0); i < rp.ColorCount; i++ {
			attachment := vk.ClearAttachment{
				AspectMask:      vk.ImageAspectFlags(vk.ImageAspectColorBit),
				ColorAttachment: i,
			}
			attachment.ClearValue.SetColor([]float32{r, g, bl, a})
			attachments = append(attachments, attachment)
		}
	}
	if depth && rp.HasDepth {
		attachment := vk.ClearAttachment{AspectMask: vk.ImageAspectFlags(vk.ImageAspectDepthBit)}
		attachment.ClearValue.SetDepthStencil(1, 0)
		attachments = append(attachments, attachment)
	}
	if len(attachments) == 0 {
		return
	}
	rect := vk.ClearRect{
		Rect:       vk.Rect2D{Extent: vk.Extent2D{Width: b.pass.width, Height: b.pass.height}},
		LayerCount: 1,
	}
	vk.CmdClearAttachments(b.commandBuffer().Handle, uint32(len(attachments)), attachments, 1, []vk.ClearRect{rect})
}

func debugCallback(flags vk.DebugReportFlags, objectType vk.DebugReportObjectType, object uint64, location uint64, messageCode int32, pLayerPrefix string, pMessage string, pUserData unsafe.Pointer) vk.Bool32 {
	switch {
	case flags&vk.DebugReportFlags(vk.DebugReportErrorBit) != 0:
		core.LogError("vulkan: [%s] code %d: %s", pLayerPrefix, messageCode, pMessage)
	case flags&vk.DebugReportFlags(vk.DebugReportWarningBit) != 0:
		core.LogWarn("vulkan: [%s] code %d: %s", pLayerPrefix, messageCode, pMessage)
	case flags&vk.DebugReportFlags(vk.DebugReportPerformanceWarningBit) != 0:
		core.LogWarn("vulkan: performance [%s] code %d: %s", pLayerPrefix, messageCode, pMessage)
	default:
		core.LogDebug("vulkan: [%s] code %d: %s", pLayerPrefix, messageCode, pMessage)
	}
	return vk.Bool32(vk.False)
}
