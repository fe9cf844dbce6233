package resources

import (
	"testing"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/spaghettifunk/solo/engine"
	"github.com/spaghettifunk/solo/engine/core"
	"github.com/spaghettifunk/solo/engine/renderer/metadata"
	"github.com/spaghettifunk/solo/engine/renderer/null"
	"github.com/spaghettifunk/solo/engine/renderer/stub"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newDevice(t *testing.T, mode metadata.BackendMode) *engine.Device {
	t.Helper()
	device, err := engine.CreateDevice(&engine.Setup{
		Mode:         mode,
		CanvasWidth:  64,
		CanvasHeight: 64,
		LogLevel:     "error",
	})
	require.NoError(t, err)
	t.Cleanup(func() { _ = device.Shutdown() })
	return device
}

func nullBackend(device *engine.Device) *null.Backend {
	return device.Renderer().Backend().(*null.Backend)
}

func stubBackend(device *engine.Device) *stub.Backend {
	return device.Renderer().Backend().(*stub.Backend)
}

type fixedCamera struct {
	view, projection mgl32.Mat4
	position         mgl32.Vec3
}

func (c fixedCamera) ViewMatrix() mgl32.Mat4       { return c.view }
func (c fixedCamera) ProjectionMatrix() mgl32.Mat4 { return c.projection }
func (c fixedCamera) WorldPosition() mgl32.Vec3    { return c.position }

type fixedTransform mgl32.Mat4

func (t fixedTransform) WorldMatrix() mgl32.Mat4 { return mgl32.Mat4(t) }

func TestTexturesGetDistinctHandles(t *testing.T) {
	device := newDevice(t, metadata.BackendStub)
	pixels := make([]byte, 256*256*4)
	for i := range pixels {
		pixels[i] = byte(i)
	}

	a, err := NewTexture2DWithData(device, metadata.TextureFormatRGBA, pixels, 256, 256)
	require.NoError(t, err)
	b, err := NewTexture2DWithData(device, metadata.TextureFormatRGBA, pixels, 256, 256)
	require.NoError(t, err)

	assert.NotEqual(t, metadata.TextureHandle(metadata.InvalidHandle), a.Handle())
	assert.NotEqual(t, metadata.TextureHandle(metadata.InvalidHandle), b.Handle())
	assert.NotEqual(t, a.Handle(), b.Handle())

	stored, ok := stubBackend(device).TextureData(a.Handle(), 0)
	require.True(t, ok)
	assert.Equal(t, pixels, stored)
}

func TestTextureRejectsBadInput(t *testing.T) {
	device := newDevice(t, metadata.BackendNull)

	_, err := NewTexture2D(device, 4, 4, metadata.TextureFormat(77))
	assert.ErrorIs(t, err, core.ErrUnsupportedFormat)
	_, err = NewTexture2DWithData(device, metadata.TextureFormatRGB, make([]byte, 10), 2, 2)
	assert.ErrorIs(t, err, core.ErrTextureDataSize)
	_, err = NewCubeTexture(device, 4, metadata.TextureFormatDepth)
	assert.ErrorIs(t, err, core.ErrUnsupportedFormat)
	_, err = NewTexture2D(nil, 4, 4, metadata.TextureFormatRGBA)
	assert.Error(t, err)

	assert.Zero(t, device.LiveResources())
}

func TestTextureReallocate(t *testing.T) {
	device := newDevice(t, metadata.BackendNull)
	tex, err := NewTexture2D(device, 16, 8, metadata.TextureFormatRGBA)
	require.NoError(t, err)

	require.NoError(t, tex.Reallocate(metadata.TextureFormatRGBAFloat, nil, 32, 4))
	w, h := tex.Size()
	assert.Equal(t, uint32(32), w)
	assert.Equal(t, uint32(4), h)
	assert.Equal(t, metadata.TextureFormatRGBAFloat, tex.Format())

	info, ok := nullBackend(device).Texture(tex.Handle())
	require.True(t, ok)
	assert.Equal(t, uint32(32), info.Width)
	assert.Equal(t, metadata.TextureFormatRGBAFloat, info.Format)

	assert.Error(t, tex.SetData(make([]byte, 3)))
}

func TestGenerateMipmapsTwice(t *testing.T) {
	device := newDevice(t, metadata.BackendStub)
	tex, err := NewTexture2D(device, 64, 16, metadata.TextureFormatRGBA)
	require.NoError(t, err)

	require.NoError(t, tex.GenerateMipmaps())
	require.NoError(t, tex.GenerateMipmaps())
	assert.Equal(t, uint32(7), stubBackend(device).TextureLevels(tex.Handle()))
}

func TestSamplingStateAppliedLazily(t *testing.T) {
	device := newDevice(t, metadata.BackendNull)
	b := nullBackend(device)
	tex, err := NewTexture2D(device, 4, 4, metadata.TextureFormatRGBA)
	require.NoError(t, err)

	b.ResetCalls()
	tex.SetWrapping(metadata.TextureWrapClamp)
	assert.Empty(t, b.CallsTo("SetTextureSampling"))

	tex.Bind(0)
	tex.Bind(0)
	assert.Len(t, b.CallsTo("SetTextureSampling"), 1)

	tex.SetAnisotropyLevel(8)
	tex.Bind(1)
	assert.Len(t, b.CallsTo("SetTextureSampling"), 2)

	info, _ := b.Texture(tex.Handle())
	assert.Equal(t, metadata.TextureWrapClamp, info.Flags.WrapU())
	assert.Equal(t, float32(8), info.Anisotropy)
	assert.Equal(t, tex.Handle(), b.Snapshot().Textures[1])
}

func TestCubeTextureDefaultsToClamp(t *testing.T) {
	device := newDevice(t, metadata.BackendNull)
	cube, err := NewCubeTexture(device, 8, metadata.TextureFormatRGBA)
	require.NoError(t, err)
	assert.Equal(t, metadata.TextureWrapClamp, cube.Flags().WrapW())
	assert.Equal(t, metadata.TextureTypeCube, cube.Type())
	assert.NoError(t, cube.SetFaceData(metadata.CubeFacePositiveY, make([]byte, 8*8*4)))
}

func TestMeshBuffers(t *testing.T) {
	device := newDevice(t, metadata.BackendStub)
	mesh, err := NewMesh(device)
	require.NoError(t, err)

	static, err := mesh.AddVertexBuffer(metadata.PositionLayout, make([]float32, 9), 3)
	require.NoError(t, err)
	dynamic, err := mesh.AddDynamicVertexBufferFromArray(metadata.PositionLayout, make([]float32, 9), 3)
	require.NoError(t, err)

	assert.ErrorIs(t, mesh.UpdateDynamicVertexBuffer(static, 0, make([]float32, 3), 1), core.ErrNotDynamic)
	assert.ErrorIs(t, mesh.UpdateDynamicVertexBuffer(5, 0, make([]float32, 3), 1), core.ErrNoSuchBuffer)
	require.NoError(t, mesh.UpdateDynamicVertexBuffer(dynamic, 2, []float32{7, 8, 9}, 1))

	data, _ := stubBackend(device).BufferData(mesh.VertexBufferHandle(dynamic))
	assert.Equal(t, []float32{0, 0, 0, 0, 0, 0, 7, 8, 9}, data)

	_, err = mesh.AddVertexBuffer(metadata.PositionLayout, make([]float32, 4), 3)
	assert.ErrorIs(t, err, core.ErrVertexDataSize)
	assert.Equal(t, 2, mesh.VertexBufferCount())
}

func TestMeshParts(t *testing.T) {
	device := newDevice(t, metadata.BackendNull)
	mesh, err := NewMesh(device)
	require.NoError(t, err)

	_, err = mesh.AddPartFromArray([]float64{0, 1, 2})
	require.NoError(t, err)
	_, err = mesh.AddPartFromArray([]float64{0, 70000})
	assert.Error(t, err)
	_, err = mesh.AddPartFromArray([]float64{0.5})
	assert.Error(t, err)
	_, err = mesh.AddPart([]uint16{2, 3, 0})
	require.NoError(t, err)
	assert.Equal(t, 2, mesh.PartCount())

	require.NoError(t, mesh.RemovePart(0))
	assert.Equal(t, 1, mesh.PartCount())
	assert.Equal(t, uint32(3), mesh.Geometry().Parts[0].IndexCount)
	assert.ErrorIs(t, mesh.RemovePart(3), core.ErrNoSuchBuffer)
}

func TestMeshDestroyReleasesHandles(t *testing.T) {
	device := newDevice(t, metadata.BackendNull)
	cube, err := NewCubeMesh(device)
	require.NoError(t, err)
	_, buffers, _, _ := nullBackend(device).Live()
	assert.Equal(t, 2, buffers)

	cube.Destroy()
	_, buffers, _, _ = nullBackend(device).Live()
	assert.Zero(t, buffers)
	assert.True(t, cube.Destroyed())
	cube.Destroy()
}

func TestEffectReportsCompileErrors(t *testing.T) {
	device := newDevice(t, metadata.BackendNull)
	_, err := NewEffect(device, "", "void main() {}")
	var sce *core.ShaderCompilationError
	require.ErrorAs(t, err, &sce)
	assert.Equal(t, core.ShaderStageVertex, sce.Stage)
	assert.Zero(t, device.LiveResources())
}

func TestReferenceCounting(t *testing.T) {
	device := newDevice(t, metadata.BackendNull)
	effect, err := NewEffect(device, "vs", "fs")
	require.NoError(t, err)
	assert.Equal(t, int32(1), effect.RefCount())

	material, err := NewMaterial(device, effect)
	require.NoError(t, err)
	assert.Equal(t, int32(2), effect.RefCount())

	assert.False(t, effect.Release())
	assert.False(t, effect.Destroyed())

	assert.True(t, material.Release())
	assert.True(t, effect.Destroyed())
	assert.Zero(t, device.LiveResources())
}

func TestMaterialParameters(t *testing.T) {
	device := newDevice(t, metadata.BackendNull)
	b := nullBackend(device)
	effect, err := NewEffect(device, "vs", "fs")
	require.NoError(t, err)
	material, err := NewMaterial(device, effect)
	require.NoError(t, err)
	effect.Release()

	material.SetFloatParameter("shininess", 0.3)
	material.SetVector3Parameter("tint", mgl32.Vec3{1, 0.5, 0})
	material.Apply(nil, nil)

	v, ok := b.Uniform(effect.Handle(), "shininess")
	require.True(t, ok)
	assert.Equal(t, float32(0.3), v.Float)
	assert.Equal(t, effect.Handle(), b.Snapshot().Program)

	f, ok := material.FloatParameter("shininess")
	assert.True(t, ok)
	assert.Equal(t, float32(0.3), f)
	_, ok = material.Vector4Parameter("tint")
	assert.False(t, ok)

	material.RemoveParameter("shininess")
	_, ok = material.FloatParameter("shininess")
	assert.False(t, ok)
	vec, ok := material.Vector3Parameter("tint")
	assert.True(t, ok)
	assert.Equal(t, mgl32.Vec3{1, 0.5, 0}, vec)
}

func TestMaterialBindings(t *testing.T) {
	device := newDevice(t, metadata.BackendNull)
	b := nullBackend(device)
	effect, err := NewEffect(device, "vs", "fs")
	require.NoError(t, err)
	material, err := NewMaterial(device, effect)
	require.NoError(t, err)

	camera := fixedCamera{
		view:       mgl32.Translate3D(0, 0, -5),
		projection: mgl32.Perspective(mgl32.DegToRad(60), 1, 0.1, 100),
		position:   mgl32.Vec3{0, 0, 5},
	}
	world := fixedTransform(mgl32.Translate3D(1, 2, 3))

	material.BindParameter("projection", metadata.SemanticsProjectionMatrix)
	material.BindParameter("mvp", metadata.SemanticsWorldViewProjectionMatrix)
	material.BindParameter("eye", metadata.SemanticsCameraWorldPosition)
	semantics, ok := material.Binding("mvp")
	require.True(t, ok)
	assert.Equal(t, metadata.SemanticsWorldViewProjectionMatrix, semantics)

	material.Apply(camera, nil)
	v, ok := b.Uniform(effect.Handle(), "projection")
	require.True(t, ok)
	assert.Equal(t, camera.projection, v.Mat4)
	_, ok = b.Uniform(effect.Handle(), "mvp")
	assert.False(t, ok)

	material.Apply(camera, world)
	v, ok = b.Uniform(effect.Handle(), "mvp")
	require.True(t, ok)
	assert.Equal(t, camera.projection.Mul4(camera.view).Mul4(mgl32.Mat4(world)), v.Mat4)
	v, _ = b.Uniform(effect.Handle(), "eye")
	assert.Equal(t, camera.position, v.Vec3)
}

func TestMaterialTexturesTakeConsecutiveUnits(t *testing.T) {
	device := newDevice(t, metadata.BackendNull)
	b := nullBackend(device)
	effect, err := NewEffect(device, "vs", "fs")
	require.NoError(t, err)
	material, err := NewMaterial(device, effect)
	require.NoError(t, err)
	albedo, err := NewTexture2D(device, 2, 2, metadata.TextureFormatRGBA)
	require.NoError(t, err)
	sky, err := NewCubeTexture(device, 2, metadata.TextureFormatRGBA)
	require.NoError(t, err)

	material.SetTextureParameter("albedo", albedo)
	material.SetFloatParameter("gloss", 1)
	material.SetTextureParameter("sky", sky)
	material.Apply(nil, nil)

	v, _ := b.Uniform(effect.Handle(), "sky")
	assert.Equal(t, uint32(1), v.Unit)
	assert.Equal(t, metadata.TextureTypeCube, v.TextureType)
	textures := b.Snapshot().Textures
	assert.Equal(t, albedo.Handle(), textures[0])
	assert.Equal(t, sky.Handle(), textures[1])
}

func TestMaterialHoldsTextureReferences(t *testing.T) {
	device := newDevice(t, metadata.BackendNull)
	b := nullBackend(device)
	effect, err := NewEffect(device, "vs", "fs")
	require.NoError(t, err)
	material, err := NewMaterial(device, effect)
	require.NoError(t, err)
	effect.Release()
	albedo, err := NewTexture2D(device, 2, 2, metadata.TextureFormatRGBA)
	require.NoError(t, err)

	material.SetTextureParameter("albedo", albedo)
	assert.Equal(t, int32(2), albedo.RefCount())
	material.SetTextureParameter("albedo", albedo)
	assert.Equal(t, int32(2), albedo.RefCount())

	assert.False(t, albedo.Release())
	assert.False(t, albedo.Destroyed())
	material.Apply(nil, nil)
	assert.Equal(t, albedo.Handle(), b.Snapshot().Textures[0])
	_, ok := b.Texture(albedo.Handle())
	assert.True(t, ok)

	detail, err := NewTexture2D(device, 2, 2, metadata.TextureFormatRGBA)
	require.NoError(t, err)
	material.SetTextureParameter("albedo", detail)
	assert.True(t, albedo.Destroyed())
	assert.Equal(t, int32(2), detail.RefCount())

	material.RemoveParameter("albedo")
	assert.Equal(t, int32(1), detail.RefCount())

	material.SetTextureParameter("detail", detail)
	detail.Release()
	assert.True(t, material.Release())
	assert.True(t, detail.Destroyed())
	assert.Zero(t, device.LiveResources())
	textures, _, programs, _ := b.Live()
	assert.Zero(t, textures)
	assert.Zero(t, programs)
}

func TestMaterialRejectsNilEffect(t *testing.T) {
	device := newDevice(t, metadata.BackendNull)
	material, err := NewMaterial(device, nil)
	assert.Error(t, err)
	assert.Nil(t, material)
	assert.Zero(t, device.LiveResources())
	assert.NoError(t, device.Shutdown())
}

func TestMaterialState(t *testing.T) {
	device := newDevice(t, metadata.BackendNull)
	effect, err := NewEffect(device, "vs", "fs")
	require.NoError(t, err)
	material, err := NewMaterial(device, effect)
	require.NoError(t, err)
	assert.Equal(t, metadata.DefaultRenderState, material.State())

	material.SetDepthWrite(false)
	material.SetFaceCull(metadata.FaceCullCW)
	material.SetPolygonMode(metadata.PolygonModeWireframe)
	material.ApplyState()

	s := nullBackend(device).Snapshot()
	assert.True(t, s.DepthTest)
	assert.False(t, s.DepthWrite)
	assert.Equal(t, null.WindingCW, s.FrontFace)
	assert.Equal(t, metadata.PolygonModeWireframe, s.PolygonMode)
}

func TestFrameBufferAttachments(t *testing.T) {
	device := newDevice(t, metadata.BackendNull)
	color, err := NewTexture2D(device, 32, 32, metadata.TextureFormatRGBA)
	require.NoError(t, err)
	small, err := NewTexture2D(device, 16, 16, metadata.TextureFormatRGBA)
	require.NoError(t, err)
	depth, err := NewTexture2D(device, 32, 32, metadata.TextureFormatDepth)
	require.NoError(t, err)
	depth2, err := NewTexture2D(device, 32, 32, metadata.TextureFormatDepth)
	require.NoError(t, err)
	fb, err := NewFrameBuffer(device)
	require.NoError(t, err)

	assert.ErrorIs(t, fb.SetAttachments(color, small), core.ErrAttachmentSize)
	assert.ErrorIs(t, fb.SetAttachments(color, depth, depth2), core.ErrAttachmentLayout)
	assert.Empty(t, fb.Attachments())

	require.NoError(t, fb.SetAttachments(color, depth))
	w, h := fb.Size()
	assert.Equal(t, uint32(32), w)
	assert.Equal(t, uint32(32), h)
	attached, ok := nullBackend(device).FrameBufferAttachments(fb.Handle())
	require.True(t, ok)
	assert.Equal(t, []metadata.TextureHandle{color.Handle(), depth.Handle()}, attached)

	fb.Bind()
	assert.Equal(t, fb.Handle(), nullBackend(device).Snapshot().FrameBuffer)
	fb.Unbind()
	assert.Equal(t, metadata.FrameBufferHandle(metadata.InvalidHandle), nullBackend(device).Snapshot().FrameBuffer)
}

func TestDestroyAfterShutdownLeavesBackendAlone(t *testing.T) {
	device := newDevice(t, metadata.BackendNull)
	tex, err := NewTexture2D(device, 4, 4, metadata.TextureFormatRGBA)
	require.NoError(t, err)
	require.NoError(t, device.Shutdown())

	assert.True(t, tex.Destroyed())
	tex.Destroy()
	assert.True(t, tex.Release())

	_, err = NewTexture2D(device, 4, 4, metadata.TextureFormatRGBA)
	assert.Error(t, err)
}

func TestNullScenarioTextureUploadAndBind(t *testing.T) {
	device := newDevice(t, metadata.BackendNull)
	b := nullBackend(device)
	pixels := metadata.DefaultTexturePixels{}.Solid(256, 10, 20, 30, 255)

	first, err := NewTexture2D(device, 256, 256, metadata.TextureFormatRGBA)
	require.NoError(t, err)
	second, err := NewTexture2D(device, 256, 256, metadata.TextureFormatRGBA)
	require.NoError(t, err)
	require.NoError(t, first.SetData(pixels))
	first.Bind(0)
	second.Bind(1)

	assert.NotEqual(t, metadata.TextureHandle(metadata.InvalidHandle), first.Handle())
	assert.NotEqual(t, first.Handle(), second.Handle())
	w, h := first.Size()
	assert.Equal(t, uint32(256), w)
	assert.Equal(t, uint32(256), h)
	assert.Equal(t, first.Handle(), b.Snapshot().Textures[0])

	require.NoError(t, first.GenerateMipmaps())
	require.NoError(t, first.GenerateMipmaps())
	info, _ := b.Texture(first.Handle())
	assert.Equal(t, uint32(256), info.Width)
}

func TestIdentityProjectionReachesProgram(t *testing.T) {
	device := newDevice(t, metadata.BackendNull)
	effect, err := NewEffect(device, "vs", "fs")
	require.NoError(t, err)
	material, err := NewMaterial(device, effect)
	require.NoError(t, err)

	material.BindParameter("projection", metadata.SemanticsProjectionMatrix)
	material.Apply(fixedCamera{view: mgl32.Ident4(), projection: mgl32.Ident4()}, nil)

	v, ok := nullBackend(device).Uniform(effect.Handle(), "projection")
	require.True(t, ok)
	assert.Equal(t, metadata.ShaderUniformTypeMatrix4, v.Type)
	assert.Equal(t, mgl32.Ident4(), v.Mat4)
}
