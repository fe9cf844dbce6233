package resources

import (
	"github.com/go-gl/mathgl/mgl32"
	"github.com/spaghettifunk/solo/engine"
	"github.com/spaghettifunk/solo/engine/renderer/metadata"
)

// Camera supplies the view-dependent inputs of bound parameters.
type Camera interface {
	ViewMatrix() mgl32.Mat4
	ProjectionMatrix() mgl32.Mat4
	WorldPosition() mgl32.Vec3
}

// Transform supplies the object-dependent inputs of bound parameters.
type Transform interface {
	WorldMatrix() mgl32.Mat4
}

type parameter struct {
	name      string
	value     metadata.UniformValue
	texture   Texture
	bound     bool
	semantics metadata.ParameterSemantics
}

// Material pairs a shared Effect with the values its program needs and the
// fixed-function state it renders with. Parameters are pushed in the order
// they were first set. Names the program does not declare are ignored by the
// backend. The material holds a reference on its effect and on every texture
// parameter.
type Material struct {
	resource
	effect *Effect
	params []*parameter
	index  map[string]int
	state  metadata.RenderState
}

// NewMaterial takes a reference on effect for the material's lifetime.
func NewMaterial(device *engine.Device, effect *Effect) (*Material, error) {
	if device == nil {
		return nil, errNilDevice
	}
	if effect == nil {
		return nil, errNilEffect
	}
	m := &Material{
		effect: effect,
		index:  map[string]int{},
		state:  metadata.DefaultRenderState,
	}
	if err := m.track(device, "material", m); err != nil {
		return nil, err
	}
	effect.Retain()
	return m, nil
}

func (m *Material) Effect() *Effect {
	return m.effect
}

func (m *Material) set(p *parameter) {
	if p.texture != nil {
		p.texture.Retain()
	}
	if i, ok := m.index[p.name]; ok {
		m.params[i].drop()
		m.params[i] = p
		return
	}
	m.index[p.name] = len(m.params)
	m.params = append(m.params, p)
}

// drop releases the texture p references, if any.
func (p *parameter) drop() {
	if p.texture != nil {
		p.texture.Release()
		p.texture = nil
	}
}

func (m *Material) get(name string, t metadata.ShaderUniformType) (*parameter, bool) {
	i, ok := m.index[name]
	if !ok {
		return nil, false
	}
	p := m.params[i]
	if p.bound || p.value.Type != t {
		return nil, false
	}
	return p, true
}

func (m *Material) SetFloatParameter(name string, value float32) {
	m.set(&parameter{name: name, value: metadata.FloatUniform(value)})
}

func (m *Material) SetVector2Parameter(name string, value mgl32.Vec2) {
	m.set(&parameter{name: name, value: metadata.Vec2Uniform(value)})
}

func (m *Material) SetVector3Parameter(name string, value mgl32.Vec3) {
	m.set(&parameter{name: name, value: metadata.Vec3Uniform(value)})
}

func (m *Material) SetVector4Parameter(name string, value mgl32.Vec4) {
	m.set(&parameter{name: name, value: metadata.Vec4Uniform(value)})
}

func (m *Material) SetMatrixParameter(name string, value mgl32.Mat4) {
	m.set(&parameter{name: name, value: metadata.Mat4Uniform(value)})
}

// SetTextureParameter takes a reference on texture until the parameter is
// replaced or removed, or the material is destroyed. A nil texture is ignored.
func (m *Material) SetTextureParameter(name string, texture Texture) {
	if texture == nil {
		return
	}
	m.set(&parameter{
		name:    name,
		value:   metadata.UniformValue{Type: metadata.ShaderUniformTypeSampler},
		texture: texture,
	})
}

// BindParameter makes name follow semantics, recomputed on every Apply.
func (m *Material) BindParameter(name string, semantics metadata.ParameterSemantics) {
	m.set(&parameter{name: name, bound: true, semantics: semantics})
}

func (m *Material) RemoveParameter(name string) {
	i, ok := m.index[name]
	if !ok {
		return
	}
	m.params[i].drop()
	m.params = append(m.params[:i], m.params[i+1:]...)
	delete(m.index, name)
	for j := i; j < len(m.params); j++ {
		m.index[m.params[j].name] = j
	}
}

func (m *Material) FloatParameter(name string) (float32, bool) {
	p, ok := m.get(name, metadata.ShaderUniformTypeFloat32)
	if !ok {
		return 0, false
	}
	return p.value.Float, true
}

func (m *Material) Vector2Parameter(name string) (mgl32.Vec2, bool) {
	p, ok := m.get(name, metadata.ShaderUniformTypeFloat32_2)
	if !ok {
		return mgl32.Vec2{}, false
	}
	return p.value.Vec2, true
}

func (m *Material) Vector3Parameter(name string) (mgl32.Vec3, bool) {
	p, ok := m.get(name, metadata.ShaderUniformTypeFloat32_3)
	if !ok {
		return mgl32.Vec3{}, false
	}
	return p.value.Vec3, true
}

func (m *Material) Vector4Parameter(name string) (mgl32.Vec4, bool) {
	p, ok := m.get(name, metadata.ShaderUniformTypeFloat32_4)
	if !ok {
		return mgl32.Vec4{}, false
	}
	return p.value.Vec4, true
}

func (m *Material) MatrixParameter(name string) (mgl32.Mat4, bool) {
	p, ok := m.get(name, metadata.ShaderUniformTypeMatrix4)
	if !ok {
		return mgl32.Mat4{}, false
	}
	return p.value.Mat4, true
}

func (m *Material) TextureParameter(name string) (Texture, bool) {
	p, ok := m.get(name, metadata.ShaderUniformTypeSampler)
	if !ok {
		return nil, false
	}
	return p.texture, true
}

// Binding reports the semantics name is bound to.
func (m *Material) Binding(name string) (metadata.ParameterSemantics, bool) {
	i, ok := m.index[name]
	if !ok || !m.params[i].bound {
		return 0, false
	}
	return m.params[i].semantics, true
}

func (m *Material) State() metadata.RenderState {
	return m.state
}

func (m *Material) SetState(state metadata.RenderState) {
	m.state = state
}

func (m *Material) SetDepthTest(enabled bool) {
	m.state.DepthTest = enabled
}

func (m *Material) SetDepthWrite(enabled bool) {
	m.state.DepthWrite = enabled
}

func (m *Material) SetFaceCull(cull metadata.FaceCull) {
	m.state.FaceCull = cull
}

func (m *Material) SetPolygonMode(mode metadata.PolygonMode) {
	m.state.PolygonMode = mode
}

// Apply activates the effect, resolves bound parameters from camera and
// transform, pushes every parameter and finally applies the render state.
// Either input may be nil; bindings that need it are skipped.
func (m *Material) Apply(camera Camera, transform Transform) {
	m.effect.Apply()
	r := m.renderer()
	program := m.effect.Handle()
	unit := uint32(0)
	for _, p := range m.params {
		switch {
		case p.bound:
			value, ok := resolve(p.semantics, camera, transform)
			if !ok {
				continue
			}
			r.SetUniform(program, p.name, value)
		case p.texture != nil:
			p.texture.Bind(unit)
			r.SetUniform(program, p.name, metadata.TextureUniform(p.texture.Handle(), p.texture.Type(), unit))
			unit++
		default:
			r.SetUniform(program, p.name, p.value)
		}
	}
	m.ApplyState()
}

func (m *Material) ApplyState() {
	m.renderer().SetState(m.state)
}

func resolve(s metadata.ParameterSemantics, camera Camera, transform Transform) (metadata.UniformValue, bool) {
	hasCamera := camera != nil
	hasTransform := transform != nil
	switch s {
	case metadata.SemanticsWorldMatrix:
		if hasTransform {
			return metadata.Mat4Uniform(transform.WorldMatrix()), true
		}
	case metadata.SemanticsInverseTransposedWorldMatrix:
		if hasTransform {
			return metadata.Mat4Uniform(transform.WorldMatrix().Inv().Transpose()), true
		}
	case metadata.SemanticsViewMatrix:
		if hasCamera {
			return metadata.Mat4Uniform(camera.ViewMatrix()), true
		}
	case metadata.SemanticsProjectionMatrix:
		if hasCamera {
			return metadata.Mat4Uniform(camera.ProjectionMatrix()), true
		}
	case metadata.SemanticsViewProjectionMatrix:
		if hasCamera {
			return metadata.Mat4Uniform(camera.ProjectionMatrix().Mul4(camera.ViewMatrix())), true
		}
	case metadata.SemanticsCameraWorldPosition:
		if hasCamera {
			return metadata.Vec3Uniform(camera.WorldPosition()), true
		}
	case metadata.SemanticsWorldViewMatrix:
		if hasCamera && hasTransform {
			return metadata.Mat4Uniform(camera.ViewMatrix().Mul4(transform.WorldMatrix())), true
		}
	case metadata.SemanticsWorldViewProjectionMatrix:
		if hasCamera && hasTransform {
			return metadata.Mat4Uniform(camera.ProjectionMatrix().Mul4(camera.ViewMatrix()).Mul4(transform.WorldMatrix())), true
		}
	case metadata.SemanticsInverseTransposedWorldViewMatrix:
		if hasCamera && hasTransform {
			return metadata.Mat4Uniform(camera.ViewMatrix().Mul4(transform.WorldMatrix()).Inv().Transpose()), true
		}
	}
	return metadata.UniformValue{}, false
}

func (m *Material) Release() bool {
	return m.release(m.Destroy)
}

// Destroy drops the material's references on its effect and textures.
func (m *Material) Destroy() {
	params := m.params
	m.params = nil
	m.index = map[string]int{}
	if !m.finish() {
		return
	}
	for _, p := range params {
		p.drop()
	}
	m.effect.Release()
}
