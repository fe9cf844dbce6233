package vulkan

import (
	"fmt"
	"strings"

	vk "github.com/goki/vulkan"
	"github.com/spaghettifunk/solo/engine/core"
	"github.com/spaghettifunk/solo/engine/renderer/metadata"
)

/**
 * @brief Holds a Vulkan pipeline built for one combination of program,
 * render pass, vertex layouts, primitive and render state.
 */
type VulkanPipeline struct {
	/** @brief The internal pipeline handle. */
	Handle vk.Pipeline
}

type VulkanPipelineConfig struct {
	/** @brief The render pass the pipeline draws in. */
	Renderpass *VulkanRenderpass
	/** @brief One binding per vertex buffer. */
	Bindings []vk.VertexInputBindingDescription
	/** @brief Every attribute of every vertex buffer. */
	Attributes []vk.VertexInputAttributeDescription
	/** @brief The program's pipeline layout. */
	Layout vk.PipelineLayout
	/** @brief The vertex and fragment stages. */
	Stages    []vk.PipelineShaderStageCreateInfo
	Topology  vk.PrimitiveTopology
	State     metadata.RenderState
	/** @brief Whether line and point polygon modes are available. */
	FillModeNonSolid bool
}

func vulkanTopology(p metadata.PrimitiveType) vk.PrimitiveTopology {
	switch p {
	case metadata.PrimitiveTriangleStrip:
		return vk.PrimitiveTopologyTriangleStrip
	case metadata.PrimitiveLines:
		return vk.PrimitiveTopologyLineList
	case metadata.PrimitivePoints:
		return vk.PrimitiveTopologyPointList
	}
	return vk.PrimitiveTopologyTriangleList
}

// cullState maps a face cull setting the same way the OpenGL backend does:
// the named winding is the front face and back faces are culled.
func cullState(cull metadata.FaceCull) (vk.CullModeFlags, vk.FrontFace) {
	switch cull {
	case metadata.FaceCullCW:
		return vk.CullModeFlags(vk.CullModeBackBit), vk.FrontFaceClockwise
	case metadata.FaceCullCCW:
		return vk.CullModeFlags(vk.CullModeBackBit), vk.FrontFaceCounterClockwise
	case metadata.FaceCullAll:
		return vk.CullModeFlags(vk.CullModeFrontAndBack), vk.FrontFaceCounterClockwise
	}
	return vk.CullModeFlags(vk.CullModeNone), vk.FrontFaceCounterClockwise
}

func polygonMode(mode metadata.PolygonMode, nonSolid bool) vk.PolygonMode {
	if !nonSolid {
		return vk.PolygonModeFill
	}
	switch mode {
	case metadata.PolygonModeWireframe:
		return vk.PolygonModeLine
	case metadata.PolygonModePoints:
		return vk.PolygonModePoint
	}
	return vk.PolygonModeFill
}

func attributeFormat(components uint32) vk.Format {
	switch components {
	case 1:
		return vk.FormatR32Sfloat
	case 2:
		return vk.FormatR32g32Sfloat
	case 3:
		return vk.FormatR32g32b32Sfloat
	}
	return vk.FormatR32g32b32a32Sfloat
}

// vertexInput describes the buffers of geometry. Buffer i uses binding i;
// attribute locations continue from one buffer to the next.
func vertexInput(geometry metadata.Geometry) ([]vk.VertexInputBindingDescription, []vk.VertexInputAttributeDescription) {
	bindings := make([]vk.VertexInputBindingDescription, len(geometry.VertexBuffers))
	var attributes []vk.VertexInputAttributeDescription
	location := uint32(0)
	for i, vb := range geometry.VertexBuffers {
		bindings[i] = vk.VertexInputBindingDescription{
			Binding:   uint32(i),
			Stride:    vb.Layout.Stride(),
			InputRate: vk.VertexInputRateVertex,
		}
		for a := 0; a < vb.Layout.AttributeCount(); a++ {
			attribute := vb.Layout.Attribute(a)
			attributes = append(attributes, vk.VertexInputAttributeDescription{
				Location: location + attribute.Slot,
				Binding:  uint32(i),
				Format:   attributeFormat(attribute.Components),
				Offset:   vb.Layout.Offset(a),
			})
		}
		location += uint32(vb.Layout.AttributeCount())
	}
	return bindings, attributes
}

func boolean(b bool) vk.Bool32 {
	if b {
		return vk.True
	}
	return vk.False
}

func NewGraphicsPipeline(context *VulkanContext, config *VulkanPipelineConfig) (*VulkanPipeline, error) {
	// Viewport and scissor are set per draw.
	viewportState := vk.PipelineViewportStateCreateInfo{
		SType:         vk.StructureTypePipelineViewportStateCreateInfo,
		ViewportCount: 1,
		ScissorCount:  1,
	}
	dynamicStates := []vk.DynamicState{vk.DynamicStateViewport, vk.DynamicStateScissor}
	dynamicState := vk.PipelineDynamicStateCreateInfo{
		SType:             vk.StructureTypePipelineDynamicStateCreateInfo,
		DynamicStateCount: uint32(len(dynamicStates)),
		PDynamicStates:    dynamicStates,
	}

	cullMode, frontFace := cullState(config.State.FaceCull)
	rasterizer := vk.PipelineRasterizationStateCreateInfo{
		SType:                   vk.StructureTypePipelineRasterizationStateCreateInfo,
		DepthClampEnable:        vk.False,
		RasterizerDiscardEnable: vk.False,
		PolygonMode:             polygonMode(config.State.PolygonMode, config.FillModeNonSolid),
		CullMode:                cullMode,
		FrontFace:               frontFace,
		DepthBiasEnable:         vk.False,
		LineWidth:               1.0,
	}

	multisampling := vk.PipelineMultisampleStateCreateInfo{
		SType:                vk.StructureTypePipelineMultisampleStateCreateInfo,
		RasterizationSamples: vk.SampleCount1Bit,
		MinSampleShading:     1.0,
	}

	depthStencil := vk.PipelineDepthStencilStateCreateInfo{
		SType:            vk.StructureTypePipelineDepthStencilStateCreateInfo,
		DepthTestEnable:  boolean(config.State.DepthTest && config.Renderpass.HasDepth),
		DepthWriteEnable: boolean(config.State.DepthWrite && config.Renderpass.HasDepth),
		DepthCompareOp:   vk.CompareOpLess,
	}

	blendAttachments := make([]vk.PipelineColorBlendAttachmentState, config.Renderpass.ColorCount)
	for i := range blendAttachments {
		blendAttachments[i] = vk.PipelineColorBlendAttachmentState{
			BlendEnable:    vk.False,
			ColorWriteMask: vk.ColorComponentFlags(vk.ColorComponentRBit | vk.ColorComponentGBit | vk.ColorComponentBBit | vk.ColorComponentABit),
		}
	}
	colorBlend := vk.PipelineColorBlendStateCreateInfo{
		SType:           vk.StructureTypePipelineColorBlendStateCreateInfo,
		LogicOpEnable:   vk.False,
		AttachmentCount: uint32(len(blendAttachments)),
		PAttachments:    blendAttachments,
	}

	vertexInputState := vk.PipelineVertexInputStateCreateInfo{
		SType:                           vk.StructureTypePipelineVertexInputStateCreateInfo,
		VertexBindingDescriptionCount:   uint32(len(config.Bindings)),
		PVertexBindingDescriptions:      config.Bindings,
		VertexAttributeDescriptionCount: uint32(len(config.Attributes)),
		PVertexAttributeDescriptions:    config.Attributes,
	}
	inputAssembly := vk.PipelineInputAssemblyStateCreateInfo{
		SType:                  vk.StructureTypePipelineInputAssemblyStateCreateInfo,
		Topology:               config.Topology,
		PrimitiveRestartEnable: vk.False,
	}

	pipelineInfo := vk.GraphicsPipelineCreateInfo{
		SType:               vk.StructureTypeGraphicsPipelineCreateInfo,
		StageCount:          uint32(len(config.Stages)),
		PStages:             config.Stages,
		PVertexInputState:   &vertexInputState,
		PInputAssemblyState: &inputAssembly,
		PViewportState:      &viewportState,
		PRasterizationState: &rasterizer,
		PMultisampleState:   &multisampling,
		PDepthStencilState:  &depthStencil,
		PColorBlendState:    &colorBlend,
		PDynamicState:       &dynamicState,
		Layout:              config.Layout,
		RenderPass:          config.Renderpass.Handle,
		Subpass:             0,
		BasePipelineIndex:   -1,
	}
	pipelines := make([]vk.Pipeline, 1)
	if res := vk.CreateGraphicsPipelines(context.logical(), vk.NullPipelineCache, 1, []vk.GraphicsPipelineCreateInfo{pipelineInfo}, context.Allocator, pipelines); res != vk.Success {
		return nil, resultError("vkCreateGraphicsPipelines", res)
	}
	return &VulkanPipeline{Handle: pipelines[0]}, nil
}

func (vp *VulkanPipeline) Destroy(context *VulkanContext) {
	if vp.Handle != vk.NullPipeline {
		vk.DestroyPipeline(context.logical(), vp.Handle, context.Allocator)
		vp.Handle = vk.NullPipeline
	}
}

type pipelineKey struct {
	program    metadata.ProgramHandle
	renderpass vk.RenderPass
	layouts    string
	primitive  metadata.PrimitiveType
	state      metadata.RenderState
}

func newPipelineKey(program metadata.ProgramHandle, renderpass *VulkanRenderpass, geometry metadata.Geometry, state metadata.RenderState) pipelineKey {
	layouts := make([]string, len(geometry.VertexBuffers))
	for i, vb := range geometry.VertexBuffers {
		layouts[i] = vb.Layout.Key()
	}
	return pipelineKey{
		program:    program,
		renderpass: renderpass.Handle,
		layouts:    strings.Join(layouts, "|"),
		primitive:  geometry.Primitive,
		state:      state,
	}
}

// pipelineCache builds pipelines on first use. Entries die with their
// program or render pass.
type pipelineCache struct {
	entries map[pipelineKey]*VulkanPipeline
}

func newPipelineCache() *pipelineCache {
	return &pipelineCache{entries: map[pipelineKey]*VulkanPipeline{}}
}

func (c *pipelineCache) get(b *Backend, prog *program, geometry metadata.Geometry) (vk.Pipeline, error) {
	renderpass := b.pass.renderpass
	if renderpass == nil {
		return vk.NullPipeline, fmt.Errorf("no active render pass")
	}
	key := newPipelineKey(prog.handle, renderpass, geometry, b.state)
	if p, ok := c.entries[key]; ok {
		return p.Handle, nil
	}
	bindings, attributes := vertexInput(geometry)
	p, err := NewGraphicsPipeline(b.context, &VulkanPipelineConfig{
		Renderpass:       renderpass,
		Bindings:         bindings,
		Attributes:       attributes,
		Layout:           prog.layout,
		Stages:           []vk.PipelineShaderStageCreateInfo{prog.vertex.ShaderStageCreateInfo, prog.fragment.ShaderStageCreateInfo},
		Topology:         vulkanTopology(geometry.Primitive),
		State:            b.state,
		FillModeNonSolid: b.context.Device.FillModeNonSolid,
	})
	if err != nil {
		return vk.NullPipeline, err
	}
	core.LogDebug("vulkan: built pipeline %d for program %d", len(c.entries)+1, prog.handle)
	c.entries[key] = p
	return p.Handle, nil
}

// evict removes the entries match selects and hands them to destroy.
func (c *pipelineCache) evict(match func(pipelineKey) bool, destroy func(*VulkanPipeline)) {
	for key, p := range c.entries {
		if match(key) {
			delete(c.entries, key)
			destroy(p)
		}
	}
}

func (c *pipelineCache) Len() int {
	return len(c.entries)
}
