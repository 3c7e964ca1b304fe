package components

import (
	"github.com/go-gl/mathgl/mgl32"
	"github.com/spaghettifunk/propengine/engine/math"
)

/**
 * @brief Represents a camera used to build the view and projection
 * matrices of a frame. The view matrix seeds the model-view stack.
 */
type Camera struct {
	/**
	 * @brief The position of this camera.
	 * NOTE: Do not set this directly, use SetPosition() instead
	 * so the view matrix is recalculated when needed.
	 */
	Position mgl32.Vec3
	/**
	 * @brief The rotation of this camera using Euler angles (pitch, yaw, roll) in radians.
	 * NOTE: Do not set this directly, use SetEulerRotation() instead.
	 */
	EulerRotation mgl32.Vec3
	/** @brief Vertical field of view in radians. */
	FOV float32
	/** @brief Near and far clipping planes. */
	Near, Far float32
	/** @brief Internal flag used to determine when the view matrix needs to be rebuilt. */
	IsDirty bool
	/** @brief The cached view matrix. Use GetView(). */
	ViewMatrix mgl32.Mat4
}

/** @brief Pitch limit, 89 degrees, to avoid gimbal lock. */
const cameraPitchLimit = float32(1.55334306)

func NewCamera() *Camera {
	camera := &Camera{}
	camera.Reset()
	return camera
}

func (c *Camera) Reset() {
	c.EulerRotation = mgl32.Vec3{}
	c.Position = mgl32.Vec3{}
	c.FOV = mgl32.DegToRad(45)
	c.Near = 0.1
	c.Far = 1000
	c.IsDirty = false
	c.ViewMatrix = mgl32.Ident4()
}

func (c *Camera) GetPosition() mgl32.Vec3 {
	return c.Position
}

func (c *Camera) SetPosition(position mgl32.Vec3) {
	c.Position = position
	c.IsDirty = true
}

func (c *Camera) GetEulerRotation() mgl32.Vec3 {
	return c.EulerRotation
}

func (c *Camera) SetEulerRotation(rotation mgl32.Vec3) {
	rotation[0] = math.Clamp(rotation[0], -cameraPitchLimit, cameraPitchLimit)
	c.EulerRotation = rotation
	c.IsDirty = true
}

func (c *Camera) GetView() mgl32.Mat4 {
	if c.IsDirty {
		world := mgl32.Translate3D(c.Position.X(), c.Position.Y(), c.Position.Z()).
			Mul4(mgl32.HomogRotate3DY(c.EulerRotation.Y())).
			Mul4(mgl32.HomogRotate3DX(c.EulerRotation.X())).
			Mul4(mgl32.HomogRotate3DZ(c.EulerRotation.Z()))
		c.ViewMatrix = world.Inv()
		c.IsDirty = false
	}
	return c.ViewMatrix
}

// GetProjection builds a perspective projection for the given framebuffer size.
func (c *Camera) GetProjection(width, height uint32) mgl32.Mat4 {
	aspect := float32(1)
	if height != 0 {
		aspect = float32(width) / float32(height)
	}
	return mgl32.Perspective(c.FOV, aspect, c.Near, c.Far)
}

// Forward is the direction the camera looks at, in world space.
func (c *Camera) Forward() mgl32.Vec3 {
	inv := c.GetView().Inv()
	return inv.Mul4x1(mgl32.Vec4{0, 0, -1, 0}).Vec3().Normalize()
}

func (c *Camera) Right() mgl32.Vec3 {
	inv := c.GetView().Inv()
	return inv.Mul4x1(mgl32.Vec4{1, 0, 0, 0}).Vec3().Normalize()
}

func (c *Camera) MoveForward(amount float32) {
	c.Position = c.Position.Add(c.Forward().Mul(amount))
	c.IsDirty = true
}

func (c *Camera) MoveBackward(amount float32) {
	c.MoveForward(-amount)
}

func (c *Camera) MoveRight(amount float32) {
	c.Position = c.Position.Add(c.Right().Mul(amount))
	c.IsDirty = true
}

func (c *Camera) MoveLeft(amount float32) {
	c.MoveRight(-amount)
}

func (c *Camera) MoveUp(amount float32) {
	c.Position = c.Position.Add(mgl32.Vec3{0, amount, 0})
	c.IsDirty = true
}

func (c *Camera) Yaw(amount float32) {
	c.EulerRotation[1] += amount
	c.IsDirty = true
}

func (c *Camera) Pitch(amount float32) {
	c.EulerRotation[0] = math.Clamp(c.EulerRotation[0]+amount, -cameraPitchLimit, cameraPitchLimit)
	c.IsDirty = true
}
