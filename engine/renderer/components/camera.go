package components

import (
	"github.com/go-gl/mathgl/mgl32"
)

/** @brief How a camera projects the scene onto the canvas. */
type ProjectionMode int

const (
	ProjectionPerspective ProjectionMode = iota
	ProjectionOrthographic
	// ProjectionCustom uses the matrix given to SetProjectionMatrix as is.
	ProjectionCustom
)

/**
 * @brief Represents a camera that can be used for
 * a variety of things, especially rendering.
 */
type Camera struct {
	/**
	 * @brief The position of this camera.
	 * NOTE: Do not set this directly, use SetPosition() instead
	 * so the view matrix is recalculated when needed.
	 */
	position mgl32.Vec3
	/** @brief The rotation of this camera using Euler angles (pitch, yaw, roll). */
	eulerRotation mgl32.Vec3
	/** @brief Optional transform the camera is attached to. */
	Parent *Transform

	isDirty    bool
	viewMatrix mgl32.Mat4

	mode        ProjectionMode
	fov         float32
	orthoHeight float32
	aspect      float32
	near        float32
	far         float32
	projection  mgl32.Mat4
}

/** @brief The name of the default camera. */
const DEFAULT_CAMERA_NAME string = "default"

func NewCamera() *Camera {
	camera := &Camera{}
	camera.Reset()
	return camera
}

func (c *Camera) Reset() {
	c.eulerRotation = mgl32.Vec3{}
	c.position = mgl32.Vec3{}
	c.isDirty = false
	c.viewMatrix = mgl32.Ident4()
	c.mode = ProjectionPerspective
	c.fov = mgl32.DegToRad(60)
	c.orthoHeight = 2
	c.aspect = 1
	c.near = 0.1
	c.far = 1000
	c.rebuildProjection()
}

func (c *Camera) Position() mgl32.Vec3 {
	return c.position
}

func (c *Camera) SetPosition(position mgl32.Vec3) {
	c.position = position
	c.isDirty = true
}

func (c *Camera) EulerRotation() mgl32.Vec3 {
	return c.eulerRotation
}

func (c *Camera) SetEulerRotation(rotation mgl32.Vec3) {
	c.eulerRotation = rotation
	c.isDirty = true
}

func (c *Camera) rotation() mgl32.Quat {
	return mgl32.AnglesToQuat(c.eulerRotation.X(), c.eulerRotation.Y(), c.eulerRotation.Z(), mgl32.XYZ)
}

func (c *Camera) localMatrix() mgl32.Mat4 {
	return mgl32.Translate3D(c.position.X(), c.position.Y(), c.position.Z()).Mul4(c.rotation().Mat4())
}

// ViewMatrix is the inverse of the camera's world matrix.
func (c *Camera) ViewMatrix() mgl32.Mat4 {
	if c.Parent != nil {
		return c.Parent.WorldMatrix().Mul4(c.localMatrix()).Inv()
	}
	if c.isDirty {
		c.viewMatrix = c.localMatrix().Inv()
		c.isDirty = false
	}
	return c.viewMatrix
}

// WorldPosition is the camera position after parent transforms.
func (c *Camera) WorldPosition() mgl32.Vec3 {
	if c.Parent == nil {
		return c.position
	}
	return c.Parent.WorldMatrix().Mul4x1(c.position.Vec4(1)).Vec3()
}

func (c *Camera) ProjectionMatrix() mgl32.Mat4 {
	return c.projection
}

func (c *Camera) SetPerspective(fovRadians, near, far float32) {
	c.mode, c.fov, c.near, c.far = ProjectionPerspective, fovRadians, near, far
	c.rebuildProjection()
}

// SetOrthographic makes the camera orthographic; height is the visible extent
// along Y in world units.
func (c *Camera) SetOrthographic(height, near, far float32) {
	c.mode, c.orthoHeight, c.near, c.far = ProjectionOrthographic, height, near, far
	c.rebuildProjection()
}

func (c *Camera) SetProjectionMatrix(m mgl32.Mat4) {
	c.mode = ProjectionCustom
	c.projection = m
}

// SetAspectRatio is typically called with the canvas width/height on resize.
func (c *Camera) SetAspectRatio(aspect float32) {
	c.aspect = aspect
	c.rebuildProjection()
}

func (c *Camera) rebuildProjection() {
	switch c.mode {
	case ProjectionPerspective:
		c.projection = mgl32.Perspective(c.fov, c.aspect, c.near, c.far)
	case ProjectionOrthographic:
		halfH := c.orthoHeight / 2
		halfW := halfH * c.aspect
		c.projection = mgl32.Ortho(-halfW, halfW, -halfH, halfH, c.near, c.far)
	}
}

func (c *Camera) Forward() mgl32.Vec3 {
	return c.rotation().Rotate(mgl32.Vec3{0, 0, -1})
}

func (c *Camera) Backward() mgl32.Vec3 {
	return c.Forward().Mul(-1)
}

func (c *Camera) Left() mgl32.Vec3 {
	return c.Right().Mul(-1)
}

func (c *Camera) Right() mgl32.Vec3 {
	return c.rotation().Rotate(mgl32.Vec3{1, 0, 0})
}

func (c *Camera) move(direction mgl32.Vec3, amount float32) {
	c.position = c.position.Add(direction.Mul(amount))
	c.isDirty = true
}

func (c *Camera) MoveForward(amount float32) {
	c.move(c.Forward(), amount)
}

func (c *Camera) MoveBackward(amount float32) {
	c.move(c.Backward(), amount)
}

func (c *Camera) MoveLeft(amount float32) {
	c.move(c.Left(), amount)
}

func (c *Camera) MoveRight(amount float32) {
	c.move(c.Right(), amount)
}

func (c *Camera) MoveUp(amount float32) {
	c.move(mgl32.Vec3{0, 1, 0}, amount)
}

func (c *Camera) MoveDown(amount float32) {
	c.move(mgl32.Vec3{0, -1, 0}, amount)
}

func (c *Camera) Yaw(amount float32) {
	c.eulerRotation[1] += amount
	c.isDirty = true
}

func (c *Camera) Pitch(amount float32) {
	// Clamp to avoid Gimbal lock.
	limit := mgl32.DegToRad(89)
	c.eulerRotation[0] = mgl32.Clamp(c.eulerRotation[0]+amount, -limit, limit)
	c.isDirty = true
}
