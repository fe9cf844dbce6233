package vulkan

import (
	vk "github.com/goki/vulkan"
	"github.com/spaghettifunk/solo/engine/core"
)

const (
	maxDescriptorSetsPerFrame = 1024
	uniformRingSize           = 1 << 20
)

/**
 * @brief Per frame-in-flight storage for draw-time bindings. Both the pool
 * and the ring are reset when the frame slot comes around again.
 */
type frameResources struct {
	/** @brief The pool descriptor sets of this frame come from. */
	pool vk.DescriptorPool
	/** @brief Persistently mapped storage for uniform snapshots. */
	uniforms *VulkanBuffer
	/** @brief The next free byte of uniforms. */
	uniformOffset uint32
}

func newFrameResources(context *VulkanContext) (*frameResources, error) {
	sizes := []vk.DescriptorPoolSize{
		{Type: vk.DescriptorTypeUniformBuffer, DescriptorCount: maxDescriptorSetsPerFrame * 4},
		{Type: vk.DescriptorTypeSampledImage, DescriptorCount: maxDescriptorSetsPerFrame * 2},
		{Type: vk.DescriptorTypeSampler, DescriptorCount: maxDescriptorSetsPerFrame * 2},
	}
	var pool vk.DescriptorPool
	res := vk.CreateDescriptorPool(context.logical(), &vk.DescriptorPoolCreateInfo{
		SType:         vk.StructureTypeDescriptorPoolCreateInfo,
		MaxSets:       maxDescriptorSetsPerFrame,
		PoolSizeCount: uint32(len(sizes)),
		PPoolSizes:    sizes,
	}, context.Allocator, &pool)
	if res != vk.Success {
		return nil, resultError("vkCreateDescriptorPool", res)
	}
	uniforms, err := hostBuffer(context, uniformRingSize, vk.BufferUsageFlags(vk.BufferUsageUniformBufferBit))
	if err != nil {
		vk.DestroyDescriptorPool(context.logical(), pool, context.Allocator)
		return nil, err
	}
	return &frameResources{pool: pool, uniforms: uniforms}, nil
}

// reset recycles every set and uniform snapshot of the frame. The frame's
// fence must have signaled.
func (f *frameResources) reset(context *VulkanContext) {
	vk.ResetDescriptorPool(context.logical(), f.pool, 0)
	f.uniformOffset = 0
}

func (f *frameResources) destroy(context *VulkanContext) {
	if f.uniforms != nil {
		f.uniforms.Destroy(context)
		f.uniforms = nil
	}
	if f.pool != vk.NullDescriptorPool {
		vk.DestroyDescriptorPool(context.logical(), f.pool, context.Allocator)
		f.pool = vk.NullDescriptorPool
	}
}

// pushUniform copies data into the ring and returns its offset.
func (f *frameResources) pushUniform(data []byte, alignment uint32) (uint32, bool) {
	offset := alignUp(f.uniformOffset, alignment)
	if uint64(offset)+uint64(len(data)) > uniformRingSize {
		return 0, false
	}
	f.uniforms.Write(vk.DeviceSize(offset), data)
	f.uniformOffset = offset + uint32(len(data))
	return offset, true
}

func descriptorType(kind bindingKind) vk.DescriptorType {
	switch kind {
	case bindingTexture:
		return vk.DescriptorTypeSampledImage
	case bindingSampler:
		return vk.DescriptorTypeSampler
	}
	return vk.DescriptorTypeUniformBuffer
}

func shaderStageFlags(stages stageMask) vk.ShaderStageFlags {
	var flags vk.ShaderStageFlags
	if stages&stageVertex != 0 {
		flags |= vk.ShaderStageFlags(vk.ShaderStageVertexBit)
	}
	if stages&stageFragment != 0 {
		flags |= vk.ShaderStageFlags(vk.ShaderStageFragmentBit)
	}
	return flags
}

// createSetLayout describes every reflected binding of a program.
func createSetLayout(context *VulkanContext, bindings []*shaderBinding) (vk.DescriptorSetLayout, error) {
	layoutBindings := make([]vk.DescriptorSetLayoutBinding, len(bindings))
	for i, b := range bindings {
		layoutBindings[i] = vk.DescriptorSetLayoutBinding{
			Binding:         b.binding,
			DescriptorType:  descriptorType(b.kind),
			DescriptorCount: 1,
			StageFlags:      shaderStageFlags(b.stages),
		}
	}
	var layout vk.DescriptorSetLayout
	res := vk.CreateDescriptorSetLayout(context.logical(), &vk.DescriptorSetLayoutCreateInfo{
		SType:        vk.StructureTypeDescriptorSetLayoutCreateInfo,
		BindingCount: uint32(len(layoutBindings)),
		PBindings:    layoutBindings,
	}, context.Allocator, &layout)
	if res != vk.Success {
		return vk.NullDescriptorSetLayout, resultError("vkCreateDescriptorSetLayout", res)
	}
	return layout, nil
}

// descriptorSet snapshots the program's uniforms and the textures of its
// units into a fresh set from the current frame. It reports false when the
// program has no bindings or the frame ran out of space.
func (b *Backend) descriptorSet(prog *program) (vk.DescriptorSet, bool) {
	if len(prog.bindings) == 0 {
		return vk.NullDescriptorSet, false
	}
	frame := b.frames[b.context.CurrentFrame]
	var set vk.DescriptorSet
	res := vk.AllocateDescriptorSets(b.context.logical(), &vk.DescriptorSetAllocateInfo{
		SType:              vk.StructureTypeDescriptorSetAllocateInfo,
		DescriptorPool:     frame.pool,
		DescriptorSetCount: 1,
		PSetLayouts:        []vk.DescriptorSetLayout{prog.setLayout},
	}, &set)
	if res != vk.Success {
		core.LogError("vulkan: descriptor set allocation failed with %s, draw skipped", VulkanResultString(res))
		return vk.NullDescriptorSet, false
	}

	alignment := uint32(b.context.Device.Properties.Limits.MinUniformBufferOffsetAlignment)
	writes := make([]vk.WriteDescriptorSet, 0, len(prog.bindings))
	for _, binding := range prog.bindings {
		write := vk.WriteDescriptorSet{
			SType:           vk.StructureTypeWriteDescriptorSet,
			DstSet:          set,
			DstBinding:      binding.binding,
			DescriptorCount: 1,
			DescriptorType:  descriptorType(binding.kind),
		}
		switch binding.kind {
		case bindingUniform:
			data := prog.shadows[binding.binding]
			offset, ok := frame.pushUniform(data, alignment)
			if !ok {
				core.LogError("vulkan: uniform storage of the frame exhausted, draw skipped")
				return vk.NullDescriptorSet, false
			}
			write.PBufferInfo = []vk.DescriptorBufferInfo{{
				Buffer: frame.uniforms.Handle,
				Offset: vk.DeviceSize(offset),
				Range:  vk.DeviceSize(len(data)),
			}}
		case bindingTexture:
			t := b.textureForUnit(prog.units[binding.name], binding.textureType)
			write.PImageInfo = []vk.DescriptorImageInfo{{
				ImageView:   t.image.View,
				ImageLayout: vk.ImageLayoutShaderReadOnlyOptimal,
			}}
		case bindingSampler:
			write.PImageInfo = []vk.DescriptorImageInfo{{
				Sampler: b.samplerFor(prog, binding).sampler,
			}}
		}
		writes = append(writes, write)
	}
	vk.UpdateDescriptorSets(b.context.logical(), uint32(len(writes)), writes, 0, nil)
	return set, true
}

// samplerFor picks the texture whose sampler state a sampler binding uses:
// that of its paired texture, or the 2D default.
func (b *Backend) samplerFor(prog *program, sampler *shaderBinding) *texture {
	for _, binding := range prog.bindings {
		if binding.kind == bindingTexture && binding.sampler == int(sampler.binding) {
			return b.textureForUnit(prog.units[binding.name], binding.textureType)
		}
	}
	return b.default2D
}

// retirement is a destruction deferred until the GPU can no longer use
// the object.
type retirement struct {
	frame   uint64
	destroy func()
}

// retirementQueue runs destructions once every frame that might reference
// the object has completed.
type retirementQueue struct {
	pending []retirement
}

func (q *retirementQueue) push(frame uint64, destroy func()) {
	q.pending = append(q.pending, retirement{frame: frame, destroy: destroy})
}

// collect runs every entry queued at or before completed.
func (q *retirementQueue) collect(completed uint64) {
	kept := q.pending[:0]
	for _, r := range q.pending {
		if r.frame <= completed {
			r.destroy()
			continue
		}
		kept = append(kept, r)
	}
	for i := len(kept); i < len(q.pending); i++ {
		q.pending[i] = retirement{}
	}
	q.pending = kept
}

// flush runs everything, for shutdown after the device is idle.
func (q *retirementQueue) flush() {
	for _, r := range q.pending {
		r.destroy()
	}
	q.pending = nil
}

func (q *retirementQueue) Len() int {
	return len(q.pending)
}

