package metadata

import (
	"encoding/binary"
	"fmt"
	"math"

	"github.com/go-gl/mathgl/mgl32"
)

/** @brief Available uniform types. */
type ShaderUniformType uint

const (
	ShaderUniformTypeFloat32 ShaderUniformType = iota
	ShaderUniformTypeFloat32_2
	ShaderUniformTypeFloat32_3
	ShaderUniformTypeFloat32_4
	ShaderUniformTypeMatrix4
	ShaderUniformTypeSampler
)

func (t ShaderUniformType) String() string {
	switch t {
	case ShaderUniformTypeFloat32:
		return "float"
	case ShaderUniformTypeFloat32_2:
		return "vec2"
	case ShaderUniformTypeFloat32_3:
		return "vec3"
	case ShaderUniformTypeFloat32_4:
		return "vec4"
	case ShaderUniformTypeMatrix4:
		return "mat4"
	case ShaderUniformTypeSampler:
		return "texture"
	}
	return fmt.Sprintf("ShaderUniformType(%d)", uint(t))
}

func ShaderUniformTypeFromString(s string) (ShaderUniformType, error) {
	for t := ShaderUniformTypeFloat32; t <= ShaderUniformTypeSampler; t++ {
		if t.String() == s {
			return t, nil
		}
	}
	return 0, fmt.Errorf("string %s is not a valid ShaderUniformType", s)
}

// Size is the number of bytes the value occupies when packed, or 0 for samplers.
func (t ShaderUniformType) Size() uint32 {
	switch t {
	case ShaderUniformTypeFloat32:
		return 4
	case ShaderUniformTypeFloat32_2:
		return 8
	case ShaderUniformTypeFloat32_3:
		return 12
	case ShaderUniformTypeFloat32_4:
		return 16
	case ShaderUniformTypeMatrix4:
		return 64
	}
	return 0
}

/**
 * @brief A typed value pushed to a program uniform. Only the field matching
 * Type is meaningful.
 */
type UniformValue struct {
	Type  ShaderUniformType
	Float float32
	Vec2  mgl32.Vec2
	Vec3  mgl32.Vec3
	Vec4  mgl32.Vec4
	Mat4  mgl32.Mat4
	/** @brief The texture bound for sampler uniforms. */
	Texture     TextureHandle
	TextureType TextureType
	/** @brief The texture unit the sampler reads from. */
	Unit uint32
}

func FloatUniform(v float32) UniformValue {
	return UniformValue{Type: ShaderUniformTypeFloat32, Float: v}
}

func Vec2Uniform(v mgl32.Vec2) UniformValue {
	return UniformValue{Type: ShaderUniformTypeFloat32_2, Vec2: v}
}

func Vec3Uniform(v mgl32.Vec3) UniformValue {
	return UniformValue{Type: ShaderUniformTypeFloat32_3, Vec3: v}
}

func Vec4Uniform(v mgl32.Vec4) UniformValue {
	return UniformValue{Type: ShaderUniformTypeFloat32_4, Vec4: v}
}

func Mat4Uniform(v mgl32.Mat4) UniformValue {
	return UniformValue{Type: ShaderUniformTypeMatrix4, Mat4: v}
}

func TextureUniform(handle TextureHandle, textureType TextureType, unit uint32) UniformValue {
	return UniformValue{Type: ShaderUniformTypeSampler, Texture: handle, TextureType: textureType, Unit: unit}
}

// Floats returns the components of a numeric value in column-major order.
func (v UniformValue) Floats() []float32 {
	switch v.Type {
	case ShaderUniformTypeFloat32:
		return []float32{v.Float}
	case ShaderUniformTypeFloat32_2:
		return v.Vec2[:]
	case ShaderUniformTypeFloat32_3:
		return v.Vec3[:]
	case ShaderUniformTypeFloat32_4:
		return v.Vec4[:]
	case ShaderUniformTypeMatrix4:
		return v.Mat4[:]
	}
	return nil
}

// Bytes packs a numeric value as little-endian float32s.
func (v UniformValue) Bytes() []byte {
	floats := v.Floats()
	out := make([]byte, 4*len(floats))
	for i, f := range floats {
		binary.LittleEndian.PutUint32(out[i*4:], math.Float32bits(f))
	}
	return out
}
