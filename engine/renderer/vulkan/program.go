package vulkan

import (
	vk "github.com/goki/vulkan"
	"github.com/spaghettifunk/solo/engine/core"
	"github.com/spaghettifunk/solo/engine/renderer/metadata"
)

// program is a linked pair of stages with the resources they declare.
// Uniform values live in CPU shadows and are snapshotted at every draw.
type program struct {
	handle    metadata.ProgramHandle
	vertex    *VulkanShaderStage
	fragment  *VulkanShaderStage
	bindings  []*shaderBinding
	setLayout vk.DescriptorSetLayout
	layout    vk.PipelineLayout
	shadows   map[uint32][]byte
	// units maps a texture binding name to the unit it samples.
	units map[string]uint32
}

func reflectStage(source string, stage stageMask, name core.ShaderStage) ([]*shaderBinding, error) {
	if isSPIRV(source) {
		return nil, nil
	}
	bindings, err := reflectWGSL(source, stage)
	if err != nil {
		return nil, &core.ShaderCompilationError{Stage: name, Log: err.Error()}
	}
	return bindings, nil
}

func (b *Backend) CreateProgram(vertexSource, fragmentSource string) (metadata.ProgramHandle, error) {
	vertexCode, err := compileStage(vertexSource, core.ShaderStageVertex)
	if err != nil {
		return metadata.InvalidHandle, err
	}
	fragmentCode, err := compileStage(fragmentSource, core.ShaderStageFragment)
	if err != nil {
		return metadata.InvalidHandle, err
	}
	vertexBindings, err := reflectStage(vertexSource, stageVertex, core.ShaderStageVertex)
	if err != nil {
		return metadata.InvalidHandle, err
	}
	fragmentBindings, err := reflectStage(fragmentSource, stageFragment, core.ShaderStageFragment)
	if err != nil {
		return metadata.InvalidHandle, err
	}
	bindings, err := mergeBindings(vertexBindings, fragmentBindings)
	if err != nil {
		return metadata.InvalidHandle, &core.ShaderCompilationError{Stage: core.ShaderStageLink, Log: err.Error()}
	}

	p := &program{
		bindings: bindings,
		shadows:  map[uint32][]byte{},
		units:    map[string]uint32{},
	}
	for _, binding := range bindings {
		if binding.kind == bindingUniform {
			p.shadows[binding.binding] = make([]byte, binding.size)
		}
	}
	if err := b.buildProgram(p, vertexCode, fragmentCode); err != nil {
		b.destroyProgram(p)
		return metadata.InvalidHandle, err
	}
	p.handle = b.programs.Acquire(p)
	return p.handle, nil
}

func (b *Backend) buildProgram(p *program, vertexCode, fragmentCode []uint32) error {
	var err error
	if p.vertex, err = NewShaderStage(b.context, vertexCode, vk.ShaderStageVertexBit); err != nil {
		return &core.ShaderCompilationError{Stage: core.ShaderStageVertex, Log: err.Error()}
	}
	if p.fragment, err = NewShaderStage(b.context, fragmentCode, vk.ShaderStageFragmentBit); err != nil {
		return &core.ShaderCompilationError{Stage: core.ShaderStageFragment, Log: err.Error()}
	}
	if p.setLayout, err = createSetLayout(b.context, p.bindings); err != nil {
		return err
	}
	res := vk.CreatePipelineLayout(b.context.logical(), &vk.PipelineLayoutCreateInfo{
		SType:          vk.StructureTypePipelineLayoutCreateInfo,
		SetLayoutCount: 1,
		PSetLayouts:    []vk.DescriptorSetLayout{p.setLayout},
	}, b.context.Allocator, &p.layout)
	if res != vk.Success {
		return resultError("vkCreatePipelineLayout", res)
	}
	return nil
}

func (b *Backend) DestroyProgram(handle metadata.ProgramHandle) {
	p, err := b.programs.Release(handle)
	if err != nil {
		return
	}
	if b.currentProgram == handle {
		b.currentProgram = metadata.InvalidHandle
	}
	b.pipelines.evict(func(key pipelineKey) bool { return key.program == handle }, func(vp *VulkanPipeline) {
		b.retire(func() { vp.Destroy(b.context) })
	})
	b.retire(func() { b.destroyProgram(p) })
}

func (b *Backend) destroyProgram(p *program) {
	device := b.context.logical()
	if p.layout != vk.NullPipelineLayout {
		vk.DestroyPipelineLayout(device, p.layout, b.context.Allocator)
		p.layout = vk.NullPipelineLayout
	}
	if p.setLayout != vk.NullDescriptorSetLayout {
		vk.DestroyDescriptorSetLayout(device, p.setLayout, b.context.Allocator)
		p.setLayout = vk.NullDescriptorSetLayout
	}
	if p.fragment != nil {
		p.fragment.Destroy(b.context)
	}
	if p.vertex != nil {
		p.vertex.Destroy(b.context)
	}
}

// SetProgram only records the program. Pipelines are bound per draw, since
// they also depend on the geometry.
func (b *Backend) SetProgram(handle metadata.ProgramHandle) {
	if _, ok := b.programs.Get(handle); !ok && handle != metadata.InvalidHandle {
		core.LogWarn("vulkan: unknown program %d", handle)
		return
	}
	b.currentProgram = handle
}

// SetUniform stores value in the program's shadow copy. Names the program
// does not declare, and values of the wrong type, are ignored.
func (b *Backend) SetUniform(handle metadata.ProgramHandle, name string, value metadata.UniformValue) {
	p, ok := b.programs.Get(handle)
	if !ok {
		core.LogWarn("vulkan: uniform %s on unknown program %d", name, handle)
		return
	}
	if value.Type == metadata.ShaderUniformTypeSampler {
		if _, ok := findTexture(p.bindings, name); ok {
			p.units[name] = value.Unit
		}
		return
	}
	target, ok := resolveUniform(p.bindings, name)
	if !ok {
		return
	}
	if target.member.typ != value.Type {
		core.LogDebug("vulkan: uniform %s is %s, got %s", name, target.member.typ, value.Type)
		return
	}
	shadow := p.shadows[target.binding.binding]
	copy(shadow[target.member.offset:target.member.offset+target.member.size], value.Bytes())
}
