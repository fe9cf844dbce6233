package vulkan

import (
	"fmt"
	"unsafe"

	vk "github.com/goki/vulkan"
	"github.com/spaghettifunk/solo/engine/core"
	"github.com/spaghettifunk/solo/engine/renderer/metadata"
)

// VulkanBuffer is a buffer with its own memory. Host visible buffers stay
// mapped for their whole life.
type VulkanBuffer struct {
	Handle vk.Buffer
	Memory vk.DeviceMemory
	Size   vk.DeviceSize
	Usage  vk.BufferUsageFlags
	Mapped unsafe.Pointer
}

func BufferCreate(context *VulkanContext, size vk.DeviceSize, usage vk.BufferUsageFlags, properties vk.MemoryPropertyFlags) (*VulkanBuffer, error) {
	// Zero sized buffers are invalid; empty meshes still get a handle.
	if size == 0 {
		size = 4
	}
	buffer := &VulkanBuffer{Size: size, Usage: usage}
	createInfo := vk.BufferCreateInfo{
		SType:       vk.StructureTypeBufferCreateInfo,
		Size:        size,
		Usage:       usage,
		SharingMode: vk.SharingModeExclusive,
	}
	var handle vk.Buffer
	if res := vk.CreateBuffer(context.logical(), &createInfo, context.Allocator, &handle); res != vk.Success {
		return nil, resultError("vkCreateBuffer", res)
	}
	buffer.Handle = handle

	var requirements vk.MemoryRequirements
	vk.GetBufferMemoryRequirements(context.logical(), handle, &requirements)
	requirements.Deref()
	memoryType := context.FindMemoryIndex(requirements.MemoryTypeBits, properties)
	if memoryType < 0 {
		buffer.Destroy(context)
		return nil, fmt.Errorf("vulkan: no memory type with properties 0x%x for buffer", uint32(properties))
	}
	allocateInfo := vk.MemoryAllocateInfo{
		SType:           vk.StructureTypeMemoryAllocateInfo,
		AllocationSize:  requirements.Size,
		MemoryTypeIndex: uint32(memoryType),
	}
	var memory vk.DeviceMemory
	if res := vk.AllocateMemory(context.logical(), &allocateInfo, context.Allocator, &memory); res != vk.Success {
		buffer.Destroy(context)
		return nil, resultError("vkAllocateMemory", res)
	}
	buffer.Memory = memory
	if res := vk.BindBufferMemory(context.logical(), handle, memory, 0); res != vk.Success {
		buffer.Destroy(context)
		return nil, resultError("vkBindBufferMemory", res)
	}

	if properties&vk.MemoryPropertyFlags(vk.MemoryPropertyHostVisibleBit) != 0 {
		var mapped unsafe.Pointer
		if res := vk.MapMemory(context.logical(), memory, 0, size, 0, &mapped); res != vk.Success {
			buffer.Destroy(context)
			return nil, resultError("vkMapMemory", res)
		}
		buffer.Mapped = mapped
	}
	return buffer, nil
}

// hostBuffer creates a mapped, coherent buffer.
func hostBuffer(context *VulkanContext, size vk.DeviceSize, usage vk.BufferUsageFlags) (*VulkanBuffer, error) {
	return BufferCreate(context, size, usage,
		vk.MemoryPropertyFlags(vk.MemoryPropertyHostVisibleBit|vk.MemoryPropertyHostCoherentBit))
}

// Write copies data into a mapped buffer at offset.
func (vb *VulkanBuffer) Write(offset vk.DeviceSize, data []byte) {
	if vb.Mapped == nil || len(data) == 0 {
		return
	}
	vk.Memcopy(unsafe.Add(vb.Mapped, uintptr(offset)), data)
}

func (vb *VulkanBuffer) Destroy(context *VulkanContext) {
	if vb.Mapped != nil {
		vk.UnmapMemory(context.logical(), vb.Memory)
		vb.Mapped = nil
	}
	if vb.Handle != vk.NullBuffer {
		vk.DestroyBuffer(context.logical(), vb.Handle, context.Allocator)
		vb.Handle = vk.NullBuffer
	}
	if vb.Memory != vk.NullDeviceMemory {
		vk.FreeMemory(context.logical(), vb.Memory, context.Allocator)
		vb.Memory = vk.NullDeviceMemory
	}
}

// deviceBuffer creates a device local buffer filled with data through a
// staging copy.
func deviceBuffer(context *VulkanContext, data []byte, usage vk.BufferUsageFlags) (*VulkanBuffer, error) {
	size := vk.DeviceSize(len(data))
	buffer, err := BufferCreate(context, size,
		usage|vk.BufferUsageFlags(vk.BufferUsageTransferDstBit),
		vk.MemoryPropertyFlags(vk.MemoryPropertyDeviceLocalBit))
	if err != nil {
		return nil, err
	}
	if len(data) == 0 {
		return buffer, nil
	}
	staging, err := hostBuffer(context, size, vk.BufferUsageFlags(vk.BufferUsageTransferSrcBit))
	if err != nil {
		buffer.Destroy(context)
		return nil, err
	}
	defer staging.Destroy(context)
	staging.Write(0, data)
	err = context.singleUse(func(cmd vk.CommandBuffer) {
		vk.CmdCopyBuffer(cmd, staging.Handle, buffer.Handle, 1, []vk.BufferCopy{{Size: size}})
	})
	if err != nil {
		buffer.Destroy(context)
		return nil, err
	}
	return buffer, nil
}

func floatBytes(data []float32) []byte {
	if len(data) == 0 {
		return nil
	}
	return unsafe.Slice((*byte)(unsafe.Pointer(&data[0])), len(data)*4)
}

func indexBytes(data []uint16) []byte {
	if len(data) == 0 {
		return nil
	}
	return unsafe.Slice((*byte)(unsafe.Pointer(&data[0])), len(data)*2)
}

type buffer struct {
	*VulkanBuffer
	dynamic bool
}

// vertexData trims data to what vertexCount vertices of layout occupy.
func vertexData(layout metadata.VertexBufferLayout, data []float32, vertexCount uint32) ([]byte, error) {
	want := int(layout.FloatsPerVertex() * vertexCount)
	if len(data) == 0 {
		return nil, nil
	}
	if len(data) < want {
		return nil, fmt.Errorf("%w: %d floats for %d vertices of stride %d", core.ErrVertexDataSize, len(data), vertexCount, layout.Stride())
	}
	return floatBytes(data[:want]), nil
}

func (b *Backend) CreateVertexBuffer(layout metadata.VertexBufferLayout, data []float32, vertexCount uint32) (metadata.BufferHandle, error) {
	bytes, err := vertexData(layout, data, vertexCount)
	if err != nil {
		return metadata.InvalidHandle, err
	}
	if bytes == nil {
		bytes = make([]byte, layout.Stride()*vertexCount)
	}
	vb, err := deviceBuffer(b.context, bytes, vk.BufferUsageFlags(vk.BufferUsageVertexBufferBit))
	if err != nil {
		return metadata.InvalidHandle, err
	}
	return b.buffers.Acquire(&buffer{VulkanBuffer: vb}), nil
}

func (b *Backend) CreateDynamicVertexBuffer(layout metadata.VertexBufferLayout, data []float32, vertexCount uint32) (metadata.BufferHandle, error) {
	bytes, err := vertexData(layout, data, vertexCount)
	if err != nil {
		return metadata.InvalidHandle, err
	}
	vb, err := hostBuffer(b.context, vk.DeviceSize(layout.Stride()*vertexCount), vk.BufferUsageFlags(vk.BufferUsageVertexBufferBit))
	if err != nil {
		return metadata.InvalidHandle, err
	}
	vb.Write(0, bytes)
	return b.buffers.Acquire(&buffer{VulkanBuffer: vb, dynamic: true}), nil
}

// UpdateDynamicVertexBuffer writes into the mapped storage once the queue is
// idle, so frames already submitted keep reading the old contents. Draws
// recorded earlier in the current frame see the new ones.
func (b *Backend) UpdateDynamicVertexBuffer(handle metadata.BufferHandle, layout metadata.VertexBufferLayout, vertexOffset uint32, data []float32, vertexCount uint32) {
	buf, ok := b.buffers.Get(handle)
	if !ok {
		core.LogWarn("vulkan: update of unknown vertex buffer %d", handle)
		return
	}
	if !buf.dynamic {
		core.LogWarn("vulkan: vertex buffer %d is not dynamic", handle)
		return
	}
	if vertexCount == 0 || len(data) == 0 {
		return
	}
	bytes, err := vertexData(layout, data, vertexCount)
	if err != nil {
		core.LogWarn("vulkan: %s", err)
		return
	}
	offset := vk.DeviceSize(vertexOffset * layout.Stride())
	if offset+vk.DeviceSize(len(bytes)) > buf.Size {
		core.LogWarn("vulkan: update of vertex buffer %d overruns its %d bytes", handle, buf.Size)
		return
	}
	b.waitQueueIdle()
	buf.Write(offset, bytes)
}

func (b *Backend) DestroyVertexBuffer(handle metadata.BufferHandle) {
	buf, err := b.buffers.Release(handle)
	if err != nil {
		return
	}
	b.retire(func() { buf.Destroy(b.context) })
}

func (b *Backend) CreateIndexBuffer(indices []uint16) (metadata.BufferHandle, error) {
	ib, err := deviceBuffer(b.context, indexBytes(indices), vk.BufferUsageFlags(vk.BufferUsageIndexBufferBit))
	if err != nil {
		return metadata.InvalidHandle, err
	}
	return b.buffers.Acquire(&buffer{VulkanBuffer: ib}), nil
}

func (b *Backend) DestroyIndexBuffer(handle metadata.BufferHandle) {
	b.DestroyVertexBuffer(handle)
}

func (b *Backend) Draw(geometry metadata.Geometry, program metadata.ProgramHandle) {
	cmd, ok := b.prepareDraw(geometry, program)
	if !ok {
		return
	}
	if len(geometry.Parts) == 0 {
		vk.CmdDraw(cmd, geometry.MinVertexCount(), 1, 0, 0)
		return
	}
	for _, part := range geometry.Parts {
		b.drawIndexed(cmd, part)
	}
}

func (b *Backend) DrawPart(geometry metadata.Geometry, part int, program metadata.ProgramHandle) {
	if part < 0 || part >= len(geometry.Parts) {
		core.LogWarn("vulkan: draw of missing part %d", part)
		return
	}
	cmd, ok := b.prepareDraw(geometry, program)
	if !ok {
		return
	}
	b.drawIndexed(cmd, geometry.Parts[part])
}

func (b *Backend) drawIndexed(cmd vk.CommandBuffer, part metadata.IndexBufferBinding) {
	buf, ok := b.buffers.Get(part.Handle)
	if !ok {
		core.LogWarn("vulkan: draw with unknown index buffer %d", part.Handle)
		return
	}
	if part.IndexCount == 0 {
		return
	}
	vk.CmdBindIndexBuffer(cmd, buf.Handle, 0, vk.IndexTypeUint16)
	vk.CmdDrawIndexed(cmd, part.IndexCount, 1, 0, 0, 0)
}

// prepareDraw binds the pipeline, descriptor set and vertex buffers for a
// draw. Attribute locations run on across buffers like in the OpenGL
// backend.
func (b *Backend) prepareDraw(geometry metadata.Geometry, handle metadata.ProgramHandle) (vk.CommandBuffer, bool) {
	if !b.recording() {
		core.LogWarn("vulkan: draw outside of a frame")
		return nil, false
	}
	prog, ok := b.programs.Get(handle)
	if !ok {
		core.LogWarn("vulkan: draw with unknown program %d", handle)
		return nil, false
	}
	vertexBuffers := make([]vk.Buffer, len(geometry.VertexBuffers))
	offsets := make([]vk.DeviceSize, len(geometry.VertexBuffers))
	for i, vb := range geometry.VertexBuffers {
		buf, ok := b.buffers.Get(vb.Handle)
		if !ok {
			core.LogWarn("vulkan: draw with unknown vertex buffer %d", vb.Handle)
			return nil, false
		}
		vertexBuffers[i] = buf.Handle
	}

	pipeline, err := b.pipelines.get(b, prog, geometry)
	if err != nil {
		core.LogError("vulkan: %s", err)
		return nil, false
	}
	cmd := b.commandBuffer().Handle
	vk.CmdBindPipeline(cmd, vk.PipelineBindPointGraphics, pipeline)
	b.applyViewport(cmd)
	if set, ok := b.descriptorSet(prog); ok {
		vk.CmdBindDescriptorSets(cmd, vk.PipelineBindPointGraphics, prog.layout, 0, 1, []vk.DescriptorSet{set}, 0, nil)
	} else if len(prog.bindings) > 0 {
		return nil, false
	}
	if len(vertexBuffers) > 0 {
		vk.CmdBindVertexBuffers(cmd, 0, uint32(len(vertexBuffers)), vertexBuffers, offsets)
	}
	return cmd, true
}
