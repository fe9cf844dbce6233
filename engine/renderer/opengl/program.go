package opengl

import (
	"strings"

	"github.com/go-gl/gl/v3.3-core/gl"
	"github.com/spaghettifunk/solo/engine/core"
	"github.com/spaghettifunk/solo/engine/renderer/metadata"
)

type program struct {
	id        uint32
	locations map[string]int32
}

// location caches lookups, including misses, which come back as -1 and make
// the Uniform* calls no-ops.
func (p *program) location(name string) int32 {
	if loc, ok := p.locations[name]; ok {
		return loc
	}
	loc := gl.GetUniformLocation(p.id, gl.Str(name+"\x00"))
	p.locations[name] = loc
	return loc
}

func (b *Backend) CreateProgram(vertexSource, fragmentSource string) (metadata.ProgramHandle, error) {
	id, err := compileProgram(vertexSource, fragmentSource)
	if err != nil {
		return metadata.InvalidHandle, err
	}
	return b.programs.Acquire(&program{id: id, locations: map[string]int32{}}), nil
}

func compileProgram(vertexSrc, fragmentSrc string) (uint32, error) {
	vertexShader, err := compileShader(vertexSrc, gl.VERTEX_SHADER, core.ShaderStageVertex)
	if err != nil {
		return 0, err
	}
	fragmentShader, err := compileShader(fragmentSrc, gl.FRAGMENT_SHADER, core.ShaderStageFragment)
	if err != nil {
		gl.DeleteShader(vertexShader)
		return 0, err
	}

	program := gl.CreateProgram()
	gl.AttachShader(program, vertexShader)
	gl.AttachShader(program, fragmentShader)
	gl.LinkProgram(program)
	gl.DeleteShader(vertexShader)
	gl.DeleteShader(fragmentShader)

	var status int32
	gl.GetProgramiv(program, gl.LINK_STATUS, &status)
	if status == gl.FALSE {
		var logLength int32
		gl.GetProgramiv(program, gl.INFO_LOG_LENGTH, &logLength)

		log := strings.Repeat("\x00", int(logLength+1))
		gl.GetProgramInfoLog(program, logLength, nil, gl.Str(log))
		gl.DeleteProgram(program)

		return 0, &core.ShaderCompilationError{Stage: core.ShaderStageLink, Log: strings.TrimRight(log, "\x00")}
	}
	return program, nil
}

func compileShader(source string, shaderType uint32, stage core.ShaderStage) (uint32, error) {
	shader := gl.CreateShader(shaderType)
	csources, free := gl.Strs(source + "\x00")
	gl.ShaderSource(shader, 1, csources, nil)
	free()
	gl.CompileShader(shader)

	var status int32
	gl.GetShaderiv(shader, gl.COMPILE_STATUS, &status)
	if status == gl.FALSE {
		var logLength int32
		gl.GetShaderiv(shader, gl.INFO_LOG_LENGTH, &logLength)

		log := strings.Repeat("\x00", int(logLength+1))
		gl.GetShaderInfoLog(shader, logLength, nil, gl.Str(log))
		gl.DeleteShader(shader)

		return 0, &core.ShaderCompilationError{Stage: stage, Log: strings.TrimRight(log, "\x00")}
	}
	return shader, nil
}

func (b *Backend) DestroyProgram(handle metadata.ProgramHandle) {
	p, err := b.programs.Release(handle)
	if err != nil {
		return
	}
	if b.currentProgram == handle {
		gl.UseProgram(0)
		b.currentProgram = metadata.InvalidHandle
	}
	gl.DeleteProgram(p.id)
}

func (b *Backend) SetProgram(handle metadata.ProgramHandle) {
	if handle == metadata.InvalidHandle {
		gl.UseProgram(0)
		b.currentProgram = handle
		return
	}
	p, ok := b.programs.Get(handle)
	if !ok {
		core.LogWarn("opengl: unknown program %d", handle)
		return
	}
	gl.UseProgram(p.id)
	b.currentProgram = handle
}

// SetUniform makes the program current before writing, since GL 3.3 has no
// direct state access.
func (b *Backend) SetUniform(handle metadata.ProgramHandle, name string, value metadata.UniformValue) {
	p, ok := b.programs.Get(handle)
	if !ok {
		core.LogWarn("opengl: uniform %s on unknown program %d", name, handle)
		return
	}
	if b.currentProgram != handle {
		gl.UseProgram(p.id)
		b.currentProgram = handle
	}
	loc := p.location(name)
	if loc < 0 {
		return
	}
	switch value.Type {
	case metadata.ShaderUniformTypeFloat32:
		gl.Uniform1f(loc, value.Float)
	case metadata.ShaderUniformTypeFloat32_2:
		gl.Uniform2f(loc, value.Vec2[0], value.Vec2[1])
	case metadata.ShaderUniformTypeFloat32_3:
		gl.Uniform3f(loc, value.Vec3[0], value.Vec3[1], value.Vec3[2])
	case metadata.ShaderUniformTypeFloat32_4:
		gl.Uniform4f(loc, value.Vec4[0], value.Vec4[1], value.Vec4[2], value.Vec4[3])
	case metadata.ShaderUniformTypeMatrix4:
		gl.UniformMatrix4fv(loc, 1, false, &value.Mat4[0])
	case metadata.ShaderUniformTypeSampler:
		gl.Uniform1i(loc, int32(value.Unit))
	}
}
