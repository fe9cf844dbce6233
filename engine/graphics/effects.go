package graphics

import (
	"embed"
	"fmt"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/spaghettifunk/solo/engine"
	"github.com/spaghettifunk/solo/engine/renderer/metadata"
	"github.com/spaghettifunk/solo/engine/resources"
)

//go:embed shaders/*
var shaderFS embed.FS

type EffectKind uint8

const (
	EffectPassthrough EffectKind = iota
	EffectGrayscale
	EffectSaturate
	EffectHorizontalBlur
	EffectVerticalBlur
	EffectStitch
)

var effectFragments = map[EffectKind]string{
	EffectPassthrough:    "passthrough",
	EffectGrayscale:      "grayscale",
	EffectSaturate:       "saturate",
	EffectHorizontalBlur: "hblur",
	EffectVerticalBlur:   "vblur",
	EffectStitch:         "stitch",
}

func (k EffectKind) String() string {
	if name, ok := effectFragments[k]; ok {
		return name
	}
	return fmt.Sprintf("EffectKind(%d)", uint8(k))
}

// ParseEffectKind maps a built-in effect name such as "hblur" to its kind.
func ParseEffectKind(name string) (EffectKind, bool) {
	for k, n := range effectFragments {
		if n == name {
			return k, true
		}
	}
	return 0, false
}

// Uniform names shared by every post-process shader.
const (
	UniformMainTexture    = "mainTex"
	UniformLeftSeparator  = "leftSeparator"
	UniformRightSeparator = "rightSeparator"
	UniformResolution     = "resolution"
	UniformSaturation     = "saturation"
	UniformStitchSize     = "stitchSize"
	UniformStitchTexture  = "stitchTex"
)

const (
	defaultSaturation   = 1.5
	defaultStitchSize   = 6
	stitchPatternSize   = 16
	shaderExtensionGLSL = ".glsl"
	shaderExtensionWGSL = ".wgsl"
	postProcessVertex   = "postprocess.vert"
)

// EffectSources returns the vertex and fragment sources of kind in the
// shading language mode consumes.
func EffectSources(mode metadata.BackendMode, kind EffectKind) (string, string, error) {
	fragment, ok := effectFragments[kind]
	if !ok {
		return "", "", fmt.Errorf("unknown post-process effect %s", kind)
	}
	ext := shaderExtensionGLSL
	if mode == metadata.BackendVulkan {
		ext = shaderExtensionWGSL
	}
	vs, err := shaderFS.ReadFile("shaders/" + postProcessVertex + ext)
	if err != nil {
		return "", "", err
	}
	fs, err := shaderFS.ReadFile("shaders/" + fragment + ".frag" + ext)
	if err != nil {
		return "", "", err
	}
	return string(vs), string(fs), nil
}

// NewEffect builds one of the built-in post-process effects for device's
// backend.
func NewEffect(device *engine.Device, kind EffectKind) (*resources.Effect, error) {
	vs, fs, err := EffectSources(device.Mode(), kind)
	if err != nil {
		return nil, err
	}
	effect, err := resources.NewEffect(device, vs, fs)
	if err != nil {
		return nil, err
	}
	effect.SetName("effect-" + kind.String())
	return effect, nil
}

// NewStitchPattern builds the tile the stitch effect lays over every block.
func NewStitchPattern(device *engine.Device) (*resources.Texture2D, error) {
	pixels := metadata.DefaultTexturePixels{}.CrossStitch(stitchPatternSize)
	pattern, err := resources.NewTexture2DWithData(device, metadata.TextureFormatRGBA, pixels, stitchPatternSize, stitchPatternSize)
	if err != nil {
		return nil, err
	}
	pattern.SetName("stitch-pattern")
	pattern.SetFiltering(metadata.TextureFilterNearest, metadata.TextureFilterNearest)
	pattern.SetWrapping(metadata.TextureWrapRepeat)
	return pattern, nil
}

// NewPostProcessMaterial wraps a built-in effect in a material that samples
// source over the whole screen. The material holds the only reference on the
// effect, and for the stitch effect on its pattern texture, which callers may
// swap through UniformStitchTexture.
func NewPostProcessMaterial(device *engine.Device, kind EffectKind, source *resources.Texture2D) (*resources.Material, error) {
	effect, err := NewEffect(device, kind)
	if err != nil {
		return nil, err
	}
	material, err := resources.NewMaterial(device, effect)
	effect.Release()
	if err != nil {
		return nil, err
	}
	width, height := source.Size()
	material.SetTextureParameter(UniformMainTexture, source)
	material.SetFloatParameter(UniformLeftSeparator, 0)
	material.SetFloatParameter(UniformRightSeparator, 1)
	material.SetVector2Parameter(UniformResolution, mgl32.Vec2{float32(width), float32(height)})
	switch kind {
	case EffectSaturate:
		material.SetFloatParameter(UniformSaturation, defaultSaturation)
	case EffectStitch:
		pattern, err := NewStitchPattern(device)
		if err != nil {
			material.Release()
			return nil, err
		}
		material.SetTextureParameter(UniformStitchTexture, pattern)
		pattern.Release()
		material.SetFloatParameter(UniformStitchSize, defaultStitchSize)
	}
	return material, nil
}
