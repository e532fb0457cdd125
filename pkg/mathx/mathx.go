// Package mathx holds the small float32 helpers shared by the scene, the
// modules and the renderer. Vector and matrix types come from mgl32.
package mathx

import (
	"github.com/chewxy/math32"
	"github.com/go-gl/mathgl/mgl32"
)

// Clamp limits v to [lo, hi].
func Clamp(v, lo, hi float32) float32 {
	return math32.Max(lo, math32.Min(hi, v))
}

// ClampInt limits v to [lo, hi].
func ClampInt(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

// Radians converts degrees to radians.
func Radians(deg float32) float32 {
	return deg * math32.Pi / 180
}

// Degrees converts radians to degrees.
func Degrees(rad float32) float32 {
	return rad * 180 / math32.Pi
}

// LookDirection derives the unit look vector from Euler rotation in degrees.
// The forward axis (0,0,1) is rotated around X first, then around Y; roll
// does not change the look direction.
func LookDirection(rotation mgl32.Vec3) mgl32.Vec3 {
	sx, cx := math32.Sincos(Radians(rotation.X()))
	sy, cy := math32.Sincos(Radians(rotation.Y()))
	return mgl32.Vec3{sy * cx, -sx, cy * cx}
}

// RotationMatrix composes Rx·Ry·Rz for Euler angles in degrees.
func RotationMatrix(rotation mgl32.Vec3) mgl32.Mat4 {
	return mgl32.HomogRotate3DX(Radians(rotation.X())).
		Mul4(mgl32.HomogRotate3DY(Radians(rotation.Y()))).
		Mul4(mgl32.HomogRotate3DZ(Radians(rotation.Z())))
}

// ViewMatrix returns the world-to-eye transform of a viewer at position with
// the given rotation: Rx·Ry·Rz·T(-position).
func ViewMatrix(position, rotation mgl32.Vec3) mgl32.Mat4 {
	return RotationMatrix(rotation).Mul4(mgl32.Translate3D(-position.X(), -position.Y(), -position.Z()))
}

// ModelMatrix returns the object-to-world transform T(position)·Rx·Ry·Rz.
func ModelMatrix(position, rotation mgl32.Vec3) mgl32.Mat4 {
	return mgl32.Translate3D(position.X(), position.Y(), position.Z()).Mul4(RotationMatrix(rotation))
}

// IsPowerOfTwo reports whether n is a positive power of two.
func IsPowerOfTwo(n int) bool {
	return n > 0 && n&(n-1) == 0
}

// FloorPowerOfTwo returns the largest power of two <= n, or 1 for n < 1.
func FloorPowerOfTwo(n int) int {
	p := 1
	for p*2 <= n {
		p *= 2
	}
	return p
}
