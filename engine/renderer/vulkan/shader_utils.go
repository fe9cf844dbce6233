package vulkan

import (
	"encoding/binary"

	"github.com/gogpu/naga"
	vk "github.com/goki/vulkan"
	"github.com/spaghettifunk/solo/engine/core"
)

const spirvMagic = 0x07230203

// shaderEntryPoint is the entry function name every stage must use.
const shaderEntryPoint = "main"

// isSPIRV reports whether source is a SPIR-V binary rather than WGSL text.
func isSPIRV(source string) bool {
	return len(source) >= 20 && len(source)%4 == 0 &&
		binary.LittleEndian.Uint32([]byte(source[:4])) == spirvMagic
}

func spirvWords(code []byte) []uint32 {
	words := make([]uint32, len(code)/4)
	for i := range words {
		words[i] = binary.LittleEndian.Uint32(code[i*4:])
	}
	return words
}

// compileStage turns one stage into SPIR-V words. WGSL goes through naga;
// SPIR-V binaries pass through untouched.
func compileStage(source string, stage core.ShaderStage) ([]uint32, error) {
	if isSPIRV(source) {
		return spirvWords([]byte(source)), nil
	}
	code, err := naga.Compile(source)
	if err != nil {
		return nil, &core.ShaderCompilationError{Stage: stage, Log: err.Error()}
	}
	if len(code) == 0 || len(code)%4 != 0 {
		return nil, &core.ShaderCompilationError{Stage: stage, Log: "compiler produced malformed SPIR-V"}
	}
	return spirvWords(code), nil
}

/**
 * @brief Represents a single shader stage.
 */
type VulkanShaderStage struct {
	/** @brief The internal shader module Handle. */
	Handle vk.ShaderModule
	/** @brief The pipeline shader stage creation info. */
	ShaderStageCreateInfo vk.PipelineShaderStageCreateInfo
}

func NewShaderStage(context *VulkanContext, code []uint32, stage vk.ShaderStageFlagBits) (*VulkanShaderStage, error) {
	createInfo := vk.ShaderModuleCreateInfo{
		SType:    vk.StructureTypeShaderModuleCreateInfo,
		CodeSize: uint64(len(code) * 4),
		PCode:    code,
	}
	var module vk.ShaderModule
	if res := vk.CreateShaderModule(context.logical(), &createInfo, context.Allocator, &module); res != vk.Success {
		return nil, resultError("vkCreateShaderModule", res)
	}
	return &VulkanShaderStage{
		Handle: module,
		ShaderStageCreateInfo: vk.PipelineShaderStageCreateInfo{
			SType:  vk.StructureTypePipelineShaderStageCreateInfo,
			Stage:  stage,
			Module: module,
			PName:  VulkanSafeString(shaderEntryPoint),
		},
	}, nil
}

func (s *VulkanShaderStage) Destroy(context *VulkanContext) {
	if s.Handle != vk.NullShaderModule {
		vk.DestroyShaderModule(context.logical(), s.Handle, context.Allocator)
		s.Handle = vk.NullShaderModule
	}
}
