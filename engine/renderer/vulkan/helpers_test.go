package vulkan

import (
	"testing"

	vk "github.com/goki/vulkan"
	"github.com/spaghettifunk/solo/engine/renderer/metadata"
	"github.com/stretchr/testify/assert"
)

func TestRetirementQueueWaitsForFrame(t *testing.T) {
	var q retirementQueue
	var ran []int
	q.push(1, func() { ran = append(ran, 1) })
	q.push(3, func() { ran = append(ran, 3) })
	q.push(2, func() { ran = append(ran, 2) })

	q.collect(0)
	assert.Empty(t, ran)
	q.collect(2)
	assert.Equal(t, []int{1, 2}, ran)
	assert.Equal(t, 1, q.Len())

	q.flush()
	assert.Equal(t, []int{1, 2, 3}, ran)
	assert.Zero(t, q.Len())
}

func TestVertexInputLocationsRunAcrossBuffers(t *testing.T) {
	normals := metadata.MustVertexBufferLayout(
		metadata.VertexAttribute{Semantic: metadata.VertexAttributeNormal, Slot: 0, Components: 3},
	)
	g := metadata.Geometry{VertexBuffers: []metadata.VertexBufferBinding{
		{Layout: metadata.PositionTexCoordLayout},
		{Layout: normals},
	}}

	bindings, attributes := vertexInput(g)
	assert.Len(t, bindings, 2)
	assert.Equal(t, uint32(20), bindings[0].Stride)
	assert.Equal(t, uint32(12), bindings[1].Stride)

	assert.Len(t, attributes, 3)
	assert.Equal(t, uint32(1), attributes[1].Location)
	assert.Equal(t, vk.FormatR32g32Sfloat, attributes[1].Format)
	assert.Equal(t, uint32(12), attributes[1].Offset)
	assert.Equal(t, uint32(2), attributes[2].Location)
	assert.Equal(t, uint32(1), attributes[2].Binding)
}

func TestCullState(t *testing.T) {
	mode, front := cullState(metadata.FaceCullCW)
	assert.Equal(t, vk.CullModeFlags(vk.CullModeBackBit), mode)
	assert.Equal(t, vk.FrontFaceClockwise, front)

	mode, front = cullState(metadata.FaceCullCCW)
	assert.Equal(t, vk.CullModeFlags(vk.CullModeBackBit), mode)
	assert.Equal(t, vk.FrontFaceCounterClockwise, front)

	mode, _ = cullState(metadata.FaceCullAll)
	assert.Equal(t, vk.CullModeFlags(vk.CullModeFrontAndBack), mode)
	mode, _ = cullState(metadata.FaceCullNone)
	assert.Equal(t, vk.CullModeFlags(vk.CullModeNone), mode)
}

func TestPolygonModeNeedsNonSolidFill(t *testing.T) {
	assert.Equal(t, vk.PolygonModeFill, polygonMode(metadata.PolygonModeWireframe, false))
	assert.Equal(t, vk.PolygonModeLine, polygonMode(metadata.PolygonModeWireframe, true))
	assert.Equal(t, vk.PolygonModePoint, polygonMode(metadata.PolygonModePoints, true))
}

func TestPipelineKeyFollowsLayoutAndState(t *testing.T) {
	pass := &VulkanRenderpass{}
	g := metadata.Geometry{VertexBuffers: []metadata.VertexBufferBinding{{Layout: metadata.PositionTexCoordLayout, VertexCount: 4}}}
	a := newPipelineKey(1, pass, g, metadata.DefaultRenderState)

	g.VertexBuffers[0].VertexCount = 400
	assert.Equal(t, a, newPipelineKey(1, pass, g, metadata.DefaultRenderState))

	wire := metadata.DefaultRenderState
	wire.PolygonMode = metadata.PolygonModeWireframe
	assert.NotEqual(t, a, newPipelineKey(1, pass, g, wire))

	g.VertexBuffers[0].Layout = metadata.PositionLayout
	assert.NotEqual(t, a, newPipelineKey(1, pass, g, metadata.DefaultRenderState))
	assert.NotEqual(t, a, newPipelineKey(2, pass, metadata.Geometry{VertexBuffers: []metadata.VertexBufferBinding{{Layout: metadata.PositionTexCoordLayout}}}, metadata.DefaultRenderState))
}

func TestTextureFormatMapping(t *testing.T) {
	f, err := vulkanFormat(metadata.TextureFormatRGB)
	assert.NoError(t, err)
	assert.Equal(t, vk.FormatR8g8b8a8Unorm, f)
	_, err = vulkanFormat(metadata.TextureFormat(50))
	assert.Error(t, err)

	assert.Equal(t, []byte{1, 2, 3, 0xFF, 4, 5, 6, 0xFF}, uploadBytes(metadata.TextureFormatRGB, []byte{1, 2, 3, 4, 5, 6}))
	assert.Equal(t, []byte{1, 2}, uploadBytes(metadata.TextureFormatRed, []byte{1, 2}))
}

func TestSamplerModes(t *testing.T) {
	assert.Equal(t, vk.SamplerAddressModeClampToEdge, addressMode(metadata.TextureWrapClamp))
	assert.Equal(t, vk.SamplerAddressModeMirroredRepeat, addressMode(metadata.TextureWrapMirror))
	assert.Equal(t, vk.SamplerMipmapModeLinear, mipmapMode(metadata.TextureFilterLinearMipmapLinear))
	assert.Equal(t, vk.SamplerMipmapModeNearest, mipmapMode(metadata.TextureFilterLinear))
}

func TestVertexDataTrimsToCount(t *testing.T) {
	data, err := vertexData(metadata.PositionLayout, make([]float32, 12), 3)
	assert.NoError(t, err)
	assert.Len(t, data, 36)

	data, err = vertexData(metadata.PositionLayout, nil, 3)
	assert.NoError(t, err)
	assert.Nil(t, data)

	_, err = vertexData(metadata.PositionLayout, make([]float32, 2), 3)
	assert.Error(t, err)
}

func TestSizeHelpers(t *testing.T) {
	assert.Equal(t, uint32(256), alignUp(1, 256))
	assert.Equal(t, uint32(512), alignUp(257, 256))
	assert.Equal(t, uint32(64), alignUp(64, 64))
	assert.Equal(t, uint32(7), alignUp(7, 0))

	assert.Equal(t, uint32(2), clamp(1, 2, 4))
	assert.Equal(t, uint32(4), clamp(9, 2, 4))
	assert.Equal(t, uint32(3), clamp(3, 2, 4))

	assert.Equal(t, uint32(9), mipLevelCount(256, 100))
	assert.Equal(t, uint32(1), mipLevelCount(1, 1))
}
