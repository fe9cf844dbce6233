package opengl

import (
	"github.com/go-gl/gl/v3.3-core/gl"
	"github.com/spaghettifunk/solo/engine/core"
	"github.com/spaghettifunk/solo/engine/renderer/metadata"
)

type buffer struct {
	id     uint32
	target uint32
	size   int
}

func (b *Backend) createVertexBuffer(layout metadata.VertexBufferLayout, data []float32, vertexCount uint32, usage uint32) (metadata.BufferHandle, error) {
	buf := &buffer{target: gl.ARRAY_BUFFER, size: int(layout.Stride() * vertexCount)}
	gl.GenBuffers(1, &buf.id)
	gl.BindBuffer(gl.ARRAY_BUFFER, buf.id)
	if len(data) > 0 {
		gl.BufferData(gl.ARRAY_BUFFER, buf.size, gl.Ptr(data), usage)
	} else {
		gl.BufferData(gl.ARRAY_BUFFER, buf.size, nil, usage)
	}
	gl.BindBuffer(gl.ARRAY_BUFFER, 0)
	return b.buffers.Acquire(buf), nil
}

func (b *Backend) CreateVertexBuffer(layout metadata.VertexBufferLayout, data []float32, vertexCount uint32) (metadata.BufferHandle, error) {
	return b.createVertexBuffer(layout, data, vertexCount, gl.STATIC_DRAW)
}

func (b *Backend) CreateDynamicVertexBuffer(layout metadata.VertexBufferLayout, data []float32, vertexCount uint32) (metadata.BufferHandle, error) {
	return b.createVertexBuffer(layout, data, vertexCount, gl.DYNAMIC_DRAW)
}

// UpdateDynamicVertexBuffer writes into the existing storage. The range must
// lie inside the buffer.
func (b *Backend) UpdateDynamicVertexBuffer(handle metadata.BufferHandle, layout metadata.VertexBufferLayout, vertexOffset uint32, data []float32, vertexCount uint32) {
	buf, ok := b.buffers.Get(handle)
	if !ok {
		core.LogWarn("opengl: update of unknown vertex buffer %d", handle)
		return
	}
	if vertexCount == 0 || len(data) == 0 {
		return
	}
	stride := int(layout.Stride())
	gl.BindBuffer(gl.ARRAY_BUFFER, buf.id)
	gl.BufferSubData(gl.ARRAY_BUFFER, int(vertexOffset)*stride, int(vertexCount)*stride, gl.Ptr(data))
	gl.BindBuffer(gl.ARRAY_BUFFER, 0)
}

func (b *Backend) DestroyVertexBuffer(handle metadata.BufferHandle) {
	buf, err := b.buffers.Release(handle)
	if err != nil {
		return
	}
	gl.DeleteBuffers(1, &buf.id)
}

// CreateIndexBuffer stores 16-bit indices. The element binding is part of
// the shared vertex array, so it is rebound at every draw.
func (b *Backend) CreateIndexBuffer(indices []uint16) (metadata.BufferHandle, error) {
	buf := &buffer{target: gl.ELEMENT_ARRAY_BUFFER, size: len(indices) * 2}
	gl.GenBuffers(1, &buf.id)
	gl.BindBuffer(gl.ELEMENT_ARRAY_BUFFER, buf.id)
	gl.BufferData(gl.ELEMENT_ARRAY_BUFFER, buf.size, gl.Ptr(indices), gl.STATIC_DRAW)
	return b.buffers.Acquire(buf), nil
}

func (b *Backend) DestroyIndexBuffer(handle metadata.BufferHandle) {
	b.DestroyVertexBuffer(handle)
}

func glPrimitive(p metadata.PrimitiveType) uint32 {
	switch p {
	case metadata.PrimitiveTriangleStrip:
		return gl.TRIANGLE_STRIP
	case metadata.PrimitiveLines:
		return gl.LINES
	case metadata.PrimitivePoints:
		return gl.POINTS
	}
	return gl.TRIANGLES
}

// bindVertexBuffers points the shared vertex array at every buffer of
// geometry. Attribute locations run on across buffers: the slots of the
// second buffer start after the attributes of the first.
func (b *Backend) bindVertexBuffers(geometry metadata.Geometry) bool {
	location := uint32(0)
	for _, vb := range geometry.VertexBuffers {
		buf, ok := b.buffers.Get(vb.Handle)
		if !ok {
			core.LogWarn("opengl: draw with unknown vertex buffer %d", vb.Handle)
			return false
		}
		gl.BindBuffer(gl.ARRAY_BUFFER, buf.id)
		stride := int32(vb.Layout.Stride())
		for i := 0; i < vb.Layout.AttributeCount(); i++ {
			a := vb.Layout.Attribute(i)
			index := location + a.Slot
			gl.EnableVertexAttribArray(index)
			gl.VertexAttribPointerWithOffset(index, int32(a.Components), gl.FLOAT, false, stride, uintptr(vb.Layout.Offset(i)))
		}
		location += uint32(vb.Layout.AttributeCount())
	}
	for i := location; i < b.enabledAttributes; i++ {
		gl.DisableVertexAttribArray(i)
	}
	b.enabledAttributes = location
	return true
}

func (b *Backend) Draw(geometry metadata.Geometry, program metadata.ProgramHandle) {
	if !b.bindVertexBuffers(geometry) {
		return
	}
	mode := glPrimitive(geometry.Primitive)
	if len(geometry.Parts) == 0 {
		gl.DrawArrays(mode, 0, int32(geometry.MinVertexCount()))
		return
	}
	for _, part := range geometry.Parts {
		b.drawIndexed(mode, part)
	}
}

func (b *Backend) DrawPart(geometry metadata.Geometry, part int, program metadata.ProgramHandle) {
	if !b.bindVertexBuffers(geometry) {
		return
	}
	b.drawIndexed(glPrimitive(geometry.Primitive), geometry.Parts[part])
}

func (b *Backend) drawIndexed(mode uint32, part metadata.IndexBufferBinding) {
	buf, ok := b.buffers.Get(part.Handle)
	if !ok {
		core.LogWarn("opengl: draw with unknown index buffer %d", part.Handle)
		return
	}
	gl.BindBuffer(gl.ELEMENT_ARRAY_BUFFER, buf.id)
	gl.DrawElementsWithOffset(mode, int32(part.IndexCount), gl.UNSIGNED_SHORT, 0)
}
