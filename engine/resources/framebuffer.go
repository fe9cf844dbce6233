package resources

import (
	"fmt"

	"github.com/spaghettifunk/solo/engine"
	"github.com/spaghettifunk/solo/engine/core"
	"github.com/spaghettifunk/solo/engine/renderer/metadata"
)

// FrameBuffer renders into color textures and at most one depth texture, all
// of the same size. It does not own its attachments.
type FrameBuffer struct {
	resource
	handle      metadata.FrameBufferHandle
	attachments []*Texture2D
	width       uint32
	height      uint32
}

func NewFrameBuffer(device *engine.Device) (*FrameBuffer, error) {
	if device == nil {
		return nil, errNilDevice
	}
	handle, err := device.Renderer().CreateFrameBuffer()
	if err != nil {
		return nil, err
	}
	f := &FrameBuffer{handle: handle}
	if err := f.track(device, "framebuffer", f); err != nil {
		device.Renderer().DestroyFrameBuffer(handle)
		return nil, err
	}
	return f, nil
}

func (f *FrameBuffer) Handle() metadata.FrameBufferHandle {
	return f.handle
}

// SetAttachments replaces every attachment. The textures must share one size
// and include at most one depth texture.
func (f *FrameBuffer) SetAttachments(attachments ...*Texture2D) error {
	var width, height uint32
	depth := 0
	handles := make([]metadata.TextureHandle, len(attachments))
	for i, a := range attachments {
		w, h := a.Size()
		if i == 0 {
			width, height = w, h
		} else if w != width || h != height {
			return fmt.Errorf("%w: %s is %dx%d, expected %dx%d", core.ErrAttachmentSize, a.Name(), w, h, width, height)
		}
		if a.Format().IsDepth() {
			depth++
		}
		handles[i] = a.Handle()
	}
	if depth > 1 {
		return fmt.Errorf("%w: got %d", core.ErrAttachmentLayout, depth)
	}
	if err := f.renderer().UpdateFrameBuffer(f.handle, handles); err != nil {
		core.LogError("failed to update %s: %s", f.name, err)
		return err
	}
	f.attachments = append([]*Texture2D(nil), attachments...)
	f.width, f.height = width, height
	return nil
}

func (f *FrameBuffer) Attachments() []*Texture2D {
	return append([]*Texture2D(nil), f.attachments...)
}

// Size is the common size of the attachments.
func (f *FrameBuffer) Size() (uint32, uint32) {
	return f.width, f.height
}

// Bind makes this frame buffer the render target. The viewport is left alone.
func (f *FrameBuffer) Bind() {
	f.renderer().BindFrameBuffer(f.handle)
}

// Unbind restores the default frame buffer.
func (f *FrameBuffer) Unbind() {
	f.renderer().BindFrameBuffer(metadata.InvalidHandle)
}

func (f *FrameBuffer) Release() bool {
	return f.release(f.Destroy)
}

func (f *FrameBuffer) Destroy() {
	if !f.finish() {
		return
	}
	f.renderer().DestroyFrameBuffer(f.handle)
	f.handle = metadata.InvalidHandle
	f.attachments = nil
}
