package loaders

import (
	"testing"

	"github.com/spaghettifunk/solo/engine/renderer/metadata"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const brick = `
name = "brick"
effect = "lit"
auto_release = true

[state]
depth_write = false
face_cull = "none"

[[parameters]]
name = "tint"
type = "vec4"
value = [1.0, 0.5, 0.25, 1.0]

[[parameters]]
name = "albedo"
type = "texture"
texture = "brick_albedo"

[bindings]
worldViewProj = "world_view_projection"
`

func TestParseMaterial(t *testing.T) {
	cfg, err := ParseMaterial([]byte(brick))
	require.NoError(t, err)

	assert.Equal(t, "brick", cfg.Name)
	assert.Equal(t, "lit", cfg.Effect)
	assert.True(t, cfg.AutoRelease)
	assert.Nil(t, cfg.State.DepthTest)
	require.NotNil(t, cfg.State.DepthWrite)
	assert.False(t, *cfg.State.DepthWrite)
	require.NotNil(t, cfg.State.FaceCull)
	assert.Equal(t, metadata.FaceCullNone, *cfg.State.FaceCull)
	require.Len(t, cfg.Parameters, 2)
	assert.Equal(t, []float32{1, 0.5, 0.25, 1}, cfg.Parameters[0].Value)
	assert.Equal(t, "brick_albedo", cfg.Parameters[1].Texture)
	assert.Equal(t, metadata.SemanticsWorldViewProjectionMatrix, cfg.Bindings["worldViewProj"])
}

func TestParseMaterialRejectsBadDefinitions(t *testing.T) {
	cases := map[string]string{
		"missing effect": `name = "a"`,
		"unknown key":    "name = \"a\"\neffect = \"e\"\nshininess = 3.0\n",
		"wrong arity":    "name = \"a\"\neffect = \"e\"\n[[parameters]]\nname = \"p\"\ntype = \"vec3\"\nvalue = [1.0]\n",
		"unknown type":   "name = \"a\"\neffect = \"e\"\n[[parameters]]\nname = \"p\"\ntype = \"vec9\"\nvalue = [1.0]\n",
		"bad semantics":  "name = \"a\"\neffect = \"e\"\n[bindings]\nm = \"model\"\n",
	}
	for name, src := range cases {
		_, err := ParseMaterial([]byte(src))
		assert.Error(t, err, name)
	}
}
