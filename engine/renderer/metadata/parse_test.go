package metadata

import (
	"testing"

	"github.com/pelletier/go-toml/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseBackendMode(t *testing.T) {
	for _, m := range []BackendMode{BackendNull, BackendStub, BackendOpenGL, BackendVulkan} {
		parsed, err := ParseBackendMode(m.String())
		require.NoError(t, err)
		assert.Equal(t, m, parsed)
	}
	gl, err := ParseBackendMode("gl")
	require.NoError(t, err)
	assert.Equal(t, BackendOpenGL, gl)

	_, err = ParseBackendMode("metal")
	assert.Error(t, err)
}

func TestShaderUniformTypeFromString(t *testing.T) {
	typ, err := ShaderUniformTypeFromString("vec3")
	require.NoError(t, err)
	assert.Equal(t, ShaderUniformTypeFloat32_3, typ)
	assert.Equal(t, uint32(12), typ.Size())

	_, err = ShaderUniformTypeFromString("mat3")
	assert.Error(t, err)
}

func TestMaterialConfigDecodesEnums(t *testing.T) {
	const doc = `
name = "glass"
effect = "lit"

[state]
depth_write = false
face_cull = "none"
polygon_mode = "wireframe"

[bindings]
mvp = "world_view_projection"
eye = "camera_world_position"
`
	var cfg MaterialConfig
	require.NoError(t, toml.Unmarshal([]byte(doc), &cfg))

	assert.Nil(t, cfg.State.DepthTest)
	require.NotNil(t, cfg.State.DepthWrite)
	assert.False(t, *cfg.State.DepthWrite)
	assert.Equal(t, FaceCullNone, *cfg.State.FaceCull)
	assert.Equal(t, PolygonModeWireframe, *cfg.State.PolygonMode)
	assert.Equal(t, SemanticsWorldViewProjectionMatrix, cfg.Bindings["mvp"])
	assert.Equal(t, SemanticsCameraWorldPosition, cfg.Bindings["eye"])
}

func TestMaterialConfigRejectsUnknownFaceCull(t *testing.T) {
	var cfg MaterialConfig
	err := toml.Unmarshal([]byte("[state]\nface_cull = \"back\"\n"), &cfg)
	assert.Error(t, err)
}

func TestUniformValueBytes(t *testing.T) {
	v := FloatUniform(1)
	assert.Equal(t, []byte{0, 0, 0x80, 0x3f}, v.Bytes())
	assert.Len(t, TextureUniform(3, TextureType2d, 0).Bytes(), 0)
}

func TestViewportResolve(t *testing.T) {
	assert.Equal(t, Viewport{Width: 40, Height: 30}, Viewport{}.Resolve(40, 30))
	assert.Equal(t, Viewport{Width: 40, Height: 30}, Viewport{X: 5, Width: 10}.Resolve(40, 30))
	assert.Equal(t, Viewport{X: 1, Y: 2, Width: 3, Height: 4}, Viewport{X: 1, Y: 2, Width: 3, Height: 4}.Resolve(40, 30))
}
