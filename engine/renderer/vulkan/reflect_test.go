package vulkan

import (
	"testing"

	"github.com/spaghettifunk/solo/engine/renderer/metadata"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const litVertexWGSL = `
struct Matrices {
    world: mat4x4<f32>,
    worldView: mat4x4<f32>,
    // padded to 16 bytes
    tint: vec3<f32>,
    strength: f32,
};

@group(0) @binding(0) var<uniform> matrices: Matrices;

@vertex
fn main(@location(0) position: vec3<f32>) -> @builtin(position) vec4<f32> {
    var p: vec4<f32> = matrices.worldView * vec4<f32>(position, 1.0);
    return p;
}
`

const litFragmentWGSL = `
@group(0) @binding(0) var<uniform> matrices: Matrices;
@group(0) @binding(1) var mainTex: texture_2d<f32>;
@group(0) @binding(2) var mainTexSampler: sampler;
@group(0) @binding(3) var<uniform> exposure: f32;
@group(0) @binding(4) var<uniform> resolution: vec2<f32>;
@binding(5) @group(0) var sky: texture_cube<f32>;
@group(0) @binding(6) var skySampler: sampler;

struct Matrices {
    world: mat4x4<f32>,
    worldView: mat4x4<f32>,
    tint: vec3<f32>,
    strength: f32,
};

@fragment
fn main(@location(0) uv: vec2<f32>) -> @location(0) vec4<f32> {
    return textureSample(mainTex, mainTexSampler, uv) * exposure;
}
`

func TestReflectUniformStructLayout(t *testing.T) {
	bindings, err := reflectWGSL(litVertexWGSL, stageVertex)
	require.NoError(t, err)
	require.Len(t, bindings, 1)

	b := bindings[0]
	assert.Equal(t, "matrices", b.name)
	assert.Equal(t, bindingUniform, b.kind)
	assert.Equal(t, uint32(144), b.size)
	require.Len(t, b.members, 4)
	assert.Equal(t, uniformMember{name: "world", offset: 0, size: 64, typ: metadata.ShaderUniformTypeMatrix4}, b.members[0])
	assert.Equal(t, uniformMember{name: "worldView", offset: 64, size: 64, typ: metadata.ShaderUniformTypeMatrix4}, b.members[1])
	assert.Equal(t, uniformMember{name: "tint", offset: 128, size: 12, typ: metadata.ShaderUniformTypeFloat32_3}, b.members[2])
	assert.Equal(t, uniformMember{name: "strength", offset: 140, size: 4, typ: metadata.ShaderUniformTypeFloat32}, b.members[3])
}

func TestReflectResourceKinds(t *testing.T) {
	bindings, err := reflectWGSL(litFragmentWGSL, stageFragment)
	require.NoError(t, err)
	require.Len(t, bindings, 7)

	kinds := make([]bindingKind, len(bindings))
	for i, b := range bindings {
		assert.Equal(t, uint32(i), b.binding)
		kinds[i] = b.kind
	}
	assert.Equal(t, []bindingKind{
		bindingUniform, bindingTexture, bindingSampler, bindingUniform,
		bindingUniform, bindingTexture, bindingSampler,
	}, kinds)
	assert.Equal(t, metadata.TextureType2d, bindings[1].textureType)
	assert.Equal(t, metadata.TextureTypeCube, bindings[5].textureType)
	assert.Equal(t, uint32(16), bindings[3].size)
}

func TestMergeBindingsPairsSamplersAndStages(t *testing.T) {
	vertex, err := reflectWGSL(litVertexWGSL, stageVertex)
	require.NoError(t, err)
	fragment, err := reflectWGSL(litFragmentWGSL, stageFragment)
	require.NoError(t, err)

	merged, err := mergeBindings(vertex, fragment)
	require.NoError(t, err)
	require.Len(t, merged, 7)
	assert.Equal(t, stageVertex|stageFragment, merged[0].stages)
	assert.Equal(t, stageFragment, merged[1].stages)
	assert.Equal(t, 2, merged[1].sampler)
	assert.Equal(t, 6, merged[5].sampler)

	// Merging must not touch the per-stage lists.
	assert.Equal(t, stageVertex, vertex[0].stages)
}

func TestMergeBindingsConflict(t *testing.T) {
	vertex, err := reflectWGSL(`@group(0) @binding(0) var<uniform> scale: f32;`, stageVertex)
	require.NoError(t, err)
	fragment, err := reflectWGSL(`@group(0) @binding(0) var mainTex: texture_2d<f32>;`, stageFragment)
	require.NoError(t, err)

	_, err = mergeBindings(vertex, fragment)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "binding 0")
}

func TestLonePairIgnoresNames(t *testing.T) {
	bindings, err := reflectWGSL(`
@group(0) @binding(0) var image: texture_2d<f32>;
@group(0) @binding(3) var linear: sampler;
`, stageFragment)
	require.NoError(t, err)
	merged, err := mergeBindings(bindings)
	require.NoError(t, err)
	assert.Equal(t, 3, merged[0].sampler)
}

func TestResolveUniform(t *testing.T) {
	vertex, err := reflectWGSL(litVertexWGSL, stageVertex)
	require.NoError(t, err)
	fragment, err := reflectWGSL(litFragmentWGSL, stageFragment)
	require.NoError(t, err)
	merged, err := mergeBindings(vertex, fragment)
	require.NoError(t, err)

	target, ok := resolveUniform(merged, "matrices.worldView")
	require.True(t, ok)
	assert.Equal(t, uint32(64), target.member.offset)

	target, ok = resolveUniform(merged, "strength")
	require.True(t, ok)
	assert.Equal(t, uint32(140), target.member.offset)

	target, ok = resolveUniform(merged, "exposure")
	require.True(t, ok)
	assert.Equal(t, uint32(3), target.binding.binding)
	assert.Equal(t, uint32(0), target.member.offset)

	_, ok = resolveUniform(merged, "missing")
	assert.False(t, ok)
	_, ok = resolveUniform(merged, "mainTex")
	assert.False(t, ok)
}

func TestReflectRejectsOtherGroups(t *testing.T) {
	_, err := reflectWGSL(`@group(1) @binding(0) var<uniform> scale: f32;`, stageVertex)
	assert.Error(t, err)
}

func TestReflectRejectsUnknownUniformType(t *testing.T) {
	_, err := reflectWGSL(`@group(0) @binding(0) var<uniform> counts: vec4<i32>;`, stageVertex)
	assert.Error(t, err)
}

func TestReflectIgnoresCommentedBindings(t *testing.T) {
	bindings, err := reflectWGSL(`
// @group(0) @binding(0) var<uniform> old: f32;
/* @group(0) @binding(1) var<uniform> older: f32; */
@group(0) @binding(2) var<uniform> current: f32;
`, stageVertex)
	require.NoError(t, err)
	require.Len(t, bindings, 1)
	assert.Equal(t, "current", bindings[0].name)
}

func TestCompileStagePassesSPIRVThrough(t *testing.T) {
	words := []byte{
		0x03, 0x02, 0x23, 0x07, 0x00, 0x00, 0x01, 0x00,
		0x00, 0x00, 0x00, 0x00, 0x01, 0x00, 0x00, 0x00,
		0x00, 0x00, 0x00, 0x00,
	}
	code, err := compileStage(string(words), "vertex")
	require.NoError(t, err)
	require.Len(t, code, 5)
	assert.Equal(t, uint32(spirvMagic), code[0])
	assert.Equal(t, uint32(0x00010000), code[1])
}

func TestMipLevelCount(t *testing.T) {
	assert.Equal(t, uint32(1), mipLevelCount(1, 1))
	assert.Equal(t, uint32(9), mipLevelCount(256, 256))
	assert.Equal(t, uint32(9), mipLevelCount(256, 3))
	assert.Equal(t, uint32(3), mipLevelCount(5, 5))
}

func TestExpandRGB(t *testing.T) {
	assert.Equal(t, []byte{1, 2, 3, 0xFF, 4, 5, 6, 0xFF}, expandRGB([]byte{1, 2, 3, 4, 5, 6}))
}
