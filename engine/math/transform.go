package math

import "github.com/go-gl/mathgl/mgl32"

// ComposeTRS builds the local transform of an object:
//
//	Translate(position) · RotateX(rx) · RotateY(ry) · RotateZ(rz) · Scale(scale)
//
// rotationDeg holds per-axis angles in degrees. The order is fixed; changing it
// changes how every object in a scene is placed.
func ComposeTRS(position, rotationDeg, scale mgl32.Vec3) mgl32.Mat4 {
	m := mgl32.Translate3D(position.X(), position.Y(), position.Z())
	m = m.Mul4(mgl32.HomogRotate3DX(mgl32.DegToRad(rotationDeg.X())))
	m = m.Mul4(mgl32.HomogRotate3DY(mgl32.DegToRad(rotationDeg.Y())))
	m = m.Mul4(mgl32.HomogRotate3DZ(mgl32.DegToRad(rotationDeg.Z())))
	return m.Mul4(mgl32.Scale3D(scale.X(), scale.Y(), scale.Z()))
}
