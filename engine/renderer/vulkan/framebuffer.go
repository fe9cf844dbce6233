package vulkan

import (
	"fmt"

	vk "github.com/goki/vulkan"
	"github.com/spaghettifunk/solo/engine/core"
	"github.com/spaghettifunk/solo/engine/renderer/metadata"
)

type VulkanFramebuffer struct {
	Handle      vk.Framebuffer
	Attachments []vk.ImageView
	Renderpass  *VulkanRenderpass
	Width       uint32
	Height      uint32
}

func FramebufferCreate(context *VulkanContext, renderpass *VulkanRenderpass, width, height uint32, attachments []vk.ImageView) (*VulkanFramebuffer, error) {
	framebuffer := &VulkanFramebuffer{
		Attachments: append([]vk.ImageView(nil), attachments...),
		Renderpass:  renderpass,
		Width:       width,
		Height:      height,
	}
	createInfo := vk.FramebufferCreateInfo{
		SType:           vk.StructureTypeFramebufferCreateInfo,
		RenderPass:      renderpass.Handle,
		AttachmentCount: uint32(len(framebuffer.Attachments)),
		PAttachments:    framebuffer.Attachments,
		Width:           width,
		Height:          height,
		Layers:          1,
	}
	var handle vk.Framebuffer
	if res := vk.CreateFramebuffer(context.logical(), &createInfo, context.Allocator, &handle); res != vk.Success {
		return nil, resultError("vkCreateFramebuffer", res)
	}
	framebuffer.Handle = handle
	return framebuffer, nil
}

func (vfb *VulkanFramebuffer) Destroy(context *VulkanContext) {
	if vfb.Handle != vk.NullFramebuffer {
		vk.DestroyFramebuffer(context.logical(), vfb.Handle, context.Allocator)
	}
	vfb.Handle = vk.NullFramebuffer
	vfb.Attachments = nil
	vfb.Renderpass = nil
}

// frameBuffer is an offscreen target. Its render pass and framebuffer are
// built from the attachments and rebuilt when any of their images changes.
type frameBuffer struct {
	attachments []metadata.TextureHandle
	generations []uint64
	renderpass  *VulkanRenderpass
	framebuffer *VulkanFramebuffer
}

func (fb *frameBuffer) ready() bool {
	return fb.framebuffer != nil
}

func (b *Backend) CreateFrameBuffer() (metadata.FrameBufferHandle, error) {
	return b.frameBuffers.Acquire(&frameBuffer{}), nil
}

// UpdateFrameBuffer replaces the attachments. Colour attachments keep their
// order; a depth texture may appear anywhere in the list.
func (b *Backend) UpdateFrameBuffer(handle metadata.FrameBufferHandle, attachments []metadata.TextureHandle) error {
	fb, ok := b.frameBuffers.Get(handle)
	if !ok {
		return fmt.Errorf("vulkan: unknown frame buffer %d", handle)
	}
	for _, a := range attachments {
		t, err := b.texture(a)
		if err != nil {
			return err
		}
		if t.textureType != metadata.TextureType2d {
			return fmt.Errorf("%w: texture %d is not a 2D texture", core.ErrAttachmentLayout, a)
		}
	}
	active := b.pass.renderpass != nil && b.pass.frameBuffer == handle
	if active {
		b.endPass()
	}
	b.releaseTarget(fb)
	fb.attachments = append([]metadata.TextureHandle(nil), attachments...)
	var err error
	if len(attachments) > 0 {
		if err = b.buildTarget(fb); err != nil {
			b.releaseTarget(fb)
		}
	}
	if active {
		b.beginTargetPass()
	}
	return err
}

func (b *Backend) releaseTarget(fb *frameBuffer) {
	framebuffer, renderpass := fb.framebuffer, fb.renderpass
	fb.framebuffer, fb.renderpass = nil, nil
	if renderpass != nil {
		b.pipelines.evict(func(key pipelineKey) bool { return key.renderpass == renderpass.Handle }, func(vp *VulkanPipeline) {
			b.retire(func() { vp.Destroy(b.context) })
		})
	}
	b.retire(func() {
		if framebuffer != nil {
			framebuffer.Destroy(b.context)
		}
		if renderpass != nil {
			renderpass.Destroy(b.context)
		}
	})
}

// buildTarget creates a loading render pass over the current images of the
// attachments. Every texture stays in ShaderReadOnlyOptimal between passes.
func (b *Backend) buildTarget(fb *frameBuffer) error {
	config := renderpassConfig{
		depthFormat:  vk.FormatUndefined,
		colorInitial: vk.ImageLayoutShaderReadOnlyOptimal,
		colorFinal:   vk.ImageLayoutShaderReadOnlyOptimal,
		depthInitial: vk.ImageLayoutShaderReadOnlyOptimal,
		depthFinal:   vk.ImageLayoutShaderReadOnlyOptimal,
	}
	var colors []vk.ImageView
	var depth vk.ImageView
	var width, height uint32
	fb.generations = make([]uint64, len(fb.attachments))
	for i, handle := range fb.attachments {
		t, err := b.texture(handle)
		if err != nil {
			return err
		}
		fb.generations[i] = t.generation
		if i == 0 {
			width, height = t.image.Width, t.image.Height
		} else if t.image.Width != width || t.image.Height != height {
			return fmt.Errorf("%w: texture %d is %dx%d, expected %dx%d", core.ErrAttachmentSize, handle, t.image.Width, t.image.Height, width, height)
		}
		if t.format.IsDepth() {
			if config.depthFormat != vk.FormatUndefined {
				return core.ErrAttachmentLayout
			}
			config.depthFormat = t.image.Format
			depth = t.image.View
			continue
		}
		config.colorFormats = append(config.colorFormats, t.image.Format)
		colors = append(colors, t.image.View)
	}
	renderpass, err := RenderpassCreate(b.context, config)
	if err != nil {
		return err
	}
	views := colors
	if depth != vk.NullImageView {
		views = append(views, depth)
	}
	framebuffer, err := FramebufferCreate(b.context, renderpass, width, height, views)
	if err != nil {
		renderpass.Destroy(b.context)
		return err
	}
	fb.renderpass, fb.framebuffer = renderpass, framebuffer
	return nil
}

// stale reports whether an attachment was recreated since the target was
// built.
func (b *Backend) stale(fb *frameBuffer) bool {
	for i, handle := range fb.attachments {
		t, ok := b.textures.Get(handle)
		if !ok || t.generation != fb.generations[i] {
			return true
		}
	}
	return false
}

// BindFrameBuffer switches the render target. Inside a frame this ends the
// current render pass and begins the target's; 0 resumes the swapchain.
func (b *Backend) BindFrameBuffer(handle metadata.FrameBufferHandle) {
	if handle != metadata.InvalidHandle {
		if _, ok := b.frameBuffers.Get(handle); !ok {
			core.LogWarn("vulkan: unknown frame buffer %d", handle)
			return
		}
	}
	b.currentFrameBuffer = handle
	if b.recording() {
		b.beginTargetPass()
	}
}

// beginTargetPass starts the pass of the current frame buffer, or of the
// swapchain when none is bound.
func (b *Backend) beginTargetPass() {
	b.endPass()
	cb := b.commandBuffer()
	if b.currentFrameBuffer == metadata.InvalidHandle {
		swapchain := b.context.Swapchain
		framebuffer := swapchain.Framebuffers[b.context.ImageIndex]
		b.context.LoadRenderpass.Begin(cb, framebuffer.Handle, swapchain.Extent.Width, swapchain.Extent.Height)
		b.pass = activePass{renderpass: b.context.LoadRenderpass, width: swapchain.Extent.Width, height: swapchain.Extent.Height}
		return
	}
	fb, ok := b.frameBuffers.Get(b.currentFrameBuffer)
	if !ok {
		return
	}
	if fb.ready() && b.stale(fb) {
		b.releaseTarget(fb)
		if err := b.buildTarget(fb); err != nil {
			core.LogError("vulkan: rebuilding frame buffer %d: %s", b.currentFrameBuffer, err)
			b.releaseTarget(fb)
		}
	}
	if !fb.ready() {
		core.LogWarn("vulkan: frame buffer %d has no usable attachments", b.currentFrameBuffer)
		return
	}
	fb.renderpass.Begin(cb, fb.framebuffer.Handle, fb.framebuffer.Width, fb.framebuffer.Height)
	b.pass = activePass{
		renderpass:  fb.renderpass,
		frameBuffer: b.currentFrameBuffer,
		width:       fb.framebuffer.Width,
		height:      fb.framebuffer.Height,
	}
}

func (b *Backend) DestroyFrameBuffer(handle metadata.FrameBufferHandle) {
	fb, err := b.frameBuffers.Release(handle)
	if err != nil {
		return
	}
	active := b.pass.renderpass != nil && b.pass.frameBuffer == handle
	if active {
		b.endPass()
	}
	b.releaseTarget(fb)
	if b.currentFrameBuffer == handle {
		b.currentFrameBuffer = metadata.InvalidHandle
		if active {
			b.beginTargetPass()
		}
	}
}
