package components

import "github.com/go-gl/mathgl/mgl32"

// Transform is a node of the parent/child hierarchy: position, rotation and
// scale relative to Parent.
type Transform struct {
	position mgl32.Vec3
	rotation mgl32.Quat
	scale    mgl32.Vec3
	isDirty  bool
	local    mgl32.Mat4
	Parent   *Transform
}

func NewTransform() *Transform {
	return NewTransformFrom(mgl32.Vec3{}, mgl32.QuatIdent(), mgl32.Vec3{1, 1, 1})
}

func NewTransformFrom(position mgl32.Vec3, rotation mgl32.Quat, scale mgl32.Vec3) *Transform {
	t := &Transform{}
	t.SetPositionRotationScale(position, rotation, scale)
	return t
}

func (t *Transform) Position() mgl32.Vec3 {
	return t.position
}

func (t *Transform) Rotation() mgl32.Quat {
	return t.rotation
}

func (t *Transform) Scale() mgl32.Vec3 {
	return t.scale
}

func (t *Transform) SetPosition(position mgl32.Vec3) {
	t.position = position
	t.isDirty = true
}

func (t *Transform) Translate(translation mgl32.Vec3) {
	t.position = t.position.Add(translation)
	t.isDirty = true
}

func (t *Transform) SetRotation(rotation mgl32.Quat) {
	t.rotation = rotation
	t.isDirty = true
}

func (t *Transform) Rotate(rotation mgl32.Quat) {
	t.rotation = t.rotation.Mul(rotation)
	t.isDirty = true
}

func (t *Transform) SetScale(scale mgl32.Vec3) {
	t.scale = scale
	t.isDirty = true
}

func (t *Transform) SetPositionRotationScale(position mgl32.Vec3, rotation mgl32.Quat, scale mgl32.Vec3) {
	t.position = position
	t.rotation = rotation
	t.scale = scale
	t.isDirty = true
}

// LocalMatrix composes translation * rotation * scale.
func (t *Transform) LocalMatrix() mgl32.Mat4 {
	if t == nil {
		return mgl32.Ident4()
	}
	if t.isDirty {
		tr := mgl32.Translate3D(t.position.X(), t.position.Y(), t.position.Z())
		s := mgl32.Scale3D(t.scale.X(), t.scale.Y(), t.scale.Z())
		t.local = tr.Mul4(t.rotation.Mat4()).Mul4(s)
		t.isDirty = false
	}
	return t.local
}

// WorldMatrix applies every parent's transform on top of the local one.
func (t *Transform) WorldMatrix() mgl32.Mat4 {
	if t == nil {
		return mgl32.Ident4()
	}
	l := t.LocalMatrix()
	if t.Parent != nil {
		return t.Parent.WorldMatrix().Mul4(l)
	}
	return l
}

// InverseTransposedWorldMatrix is the normal matrix of the world transform.
func (t *Transform) InverseTransposedWorldMatrix() mgl32.Mat4 {
	return t.WorldMatrix().Inv().Transpose()
}
