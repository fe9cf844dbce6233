package opengl

import (
	"fmt"

	"github.com/go-gl/gl/v3.3-core/gl"
	"github.com/spaghettifunk/solo/engine/core"
	"github.com/spaghettifunk/solo/engine/renderer/metadata"
)

type frameBuffer struct {
	id         uint32
	colorCount uint32
	hasDepth   bool
	width      uint32
	height     uint32
}

func (b *Backend) CreateFrameBuffer() (metadata.FrameBufferHandle, error) {
	fb := &frameBuffer{}
	gl.GenFramebuffers(1, &fb.id)
	return b.frameBuffers.Acquire(fb), nil
}

func (b *Backend) glFrameBuffer(handle metadata.FrameBufferHandle) uint32 {
	if fb, ok := b.frameBuffers.Get(handle); ok {
		return fb.id
	}
	return 0
}

// UpdateFrameBuffer detaches the previous attachments and attaches the given
// textures, colour attachments in order and the depth texture, if any, as
// the depth attachment.
func (b *Backend) UpdateFrameBuffer(handle metadata.FrameBufferHandle, attachments []metadata.TextureHandle) error {
	fb, ok := b.frameBuffers.Get(handle)
	if !ok {
		return fmt.Errorf("opengl: unknown frame buffer %d", handle)
	}
	textures := make([]*texture, len(attachments))
	for i, h := range attachments {
		t, err := b.texture(h)
		if err != nil {
			return err
		}
		textures[i] = t
	}

	gl.BindFramebuffer(gl.FRAMEBUFFER, fb.id)
	defer gl.BindFramebuffer(gl.FRAMEBUFFER, b.glFrameBuffer(b.currentFrameBuffer))

	for i := uint32(0); i < fb.colorCount; i++ {
		gl.FramebufferTexture2D(gl.FRAMEBUFFER, gl.COLOR_ATTACHMENT0+i, gl.TEXTURE_2D, 0, 0)
	}
	if fb.hasDepth {
		gl.FramebufferTexture2D(gl.FRAMEBUFFER, gl.DEPTH_ATTACHMENT, gl.TEXTURE_2D, 0, 0)
	}
	fb.colorCount, fb.hasDepth = 0, false
	fb.width, fb.height = 0, 0
	if len(textures) > 0 {
		fb.width, fb.height = textures[0].width, textures[0].height
	}

	var drawBuffers []uint32
	for _, t := range textures {
		if t.format.IsDepth() {
			gl.FramebufferTexture2D(gl.FRAMEBUFFER, gl.DEPTH_ATTACHMENT, gl.TEXTURE_2D, t.id, 0)
			fb.hasDepth = true
			continue
		}
		attachment := gl.COLOR_ATTACHMENT0 + fb.colorCount
		gl.FramebufferTexture2D(gl.FRAMEBUFFER, attachment, gl.TEXTURE_2D, t.id, 0)
		drawBuffers = append(drawBuffers, attachment)
		fb.colorCount++
	}
	if len(drawBuffers) > 0 {
		gl.DrawBuffers(int32(len(drawBuffers)), &drawBuffers[0])
	} else {
		gl.DrawBuffer(gl.NONE)
	}

	if len(textures) == 0 {
		return nil
	}
	if status := gl.CheckFramebufferStatus(gl.FRAMEBUFFER); status != gl.FRAMEBUFFER_COMPLETE {
		err := fmt.Errorf("opengl: frame buffer %d incomplete (0x%x)", handle, status)
		core.LogError("%s", err)
		return err
	}
	return nil
}

func (b *Backend) BindFrameBuffer(handle metadata.FrameBufferHandle) {
	gl.BindFramebuffer(gl.FRAMEBUFFER, b.glFrameBuffer(handle))
	b.currentFrameBuffer = handle
	if b.viewport.Width == 0 || b.viewport.Height == 0 {
		b.applyViewport()
	}
}

// targetSize is the canvas size, or the attachment size of the bound frame
// buffer.
func (b *Backend) targetSize() (uint32, uint32) {
	if b.currentFrameBuffer == metadata.InvalidHandle {
		return b.CanvasSize()
	}
	if fb, ok := b.frameBuffers.Get(b.currentFrameBuffer); ok {
		return fb.width, fb.height
	}
	return 0, 0
}

func (b *Backend) DestroyFrameBuffer(handle metadata.FrameBufferHandle) {
	fb, err := b.frameBuffers.Release(handle)
	if err != nil {
		return
	}
	if b.currentFrameBuffer == handle {
		gl.BindFramebuffer(gl.FRAMEBUFFER, 0)
		b.currentFrameBuffer = metadata.InvalidHandle
	}
	gl.DeleteFramebuffers(1, &fb.id)
}
