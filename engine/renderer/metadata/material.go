package metadata

import "fmt"

/** @brief The name of the default material. */
const DefaultMaterialName string = "default"

/**
 * @brief Values a Material computes from the camera and the transform at
 * apply time instead of taking them from the caller.
 */
type ParameterSemantics int

const (
	SemanticsWorldMatrix ParameterSemantics = iota
	SemanticsViewMatrix
	SemanticsProjectionMatrix
	SemanticsWorldViewMatrix
	SemanticsViewProjectionMatrix
	SemanticsWorldViewProjectionMatrix
	SemanticsInverseTransposedWorldMatrix
	SemanticsInverseTransposedWorldViewMatrix
	SemanticsCameraWorldPosition
)

var semanticsNames = map[ParameterSemantics]string{
	SemanticsWorldMatrix:                      "world",
	SemanticsViewMatrix:                       "view",
	SemanticsProjectionMatrix:                 "projection",
	SemanticsWorldViewMatrix:                  "world_view",
	SemanticsViewProjectionMatrix:             "view_projection",
	SemanticsWorldViewProjectionMatrix:        "world_view_projection",
	SemanticsInverseTransposedWorldMatrix:     "inverse_transposed_world",
	SemanticsInverseTransposedWorldViewMatrix: "inverse_transposed_world_view",
	SemanticsCameraWorldPosition:              "camera_world_position",
}

func (s ParameterSemantics) String() string {
	if n, ok := semanticsNames[s]; ok {
		return n
	}
	return fmt.Sprintf("ParameterSemantics(%d)", int(s))
}

func (s *ParameterSemantics) UnmarshalText(text []byte) error {
	for k, v := range semanticsNames {
		if v == string(text) {
			*s = k
			return nil
		}
	}
	return fmt.Errorf("unknown parameter semantics %q", text)
}

/**
 * @brief Material definition as stored in a .material.toml asset.
 */
type MaterialConfig struct {
	/** @brief The name of the material. */
	Name string `toml:"name"`
	/** @brief The name of the effect the material renders with. */
	Effect string `toml:"effect"`
	/** @brief Indicates if the material should be automatically released when no references to it remain. */
	AutoRelease bool `toml:"auto_release"`
	/** @brief Fixed-function state. Missing keys keep the defaults. */
	State MaterialStateConfig `toml:"state"`
	/** @brief Parameters pushed to the program. */
	Parameters []MaterialParameterConfig `toml:"parameters"`
	/** @brief Parameters computed from camera and transform. */
	Bindings map[string]ParameterSemantics `toml:"bindings"`
}

type MaterialStateConfig struct {
	DepthTest   *bool        `toml:"depth_test"`
	DepthWrite  *bool        `toml:"depth_write"`
	FaceCull    *FaceCull    `toml:"face_cull"`
	PolygonMode *PolygonMode `toml:"polygon_mode"`
}

/** @brief One named parameter. Value holds the components, Texture a texture name. */
type MaterialParameterConfig struct {
	Name    string    `toml:"name"`
	Type    string    `toml:"type"`
	Value   []float32 `toml:"value"`
	Texture string    `toml:"texture"`
}
