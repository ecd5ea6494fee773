package core

import (
	"math"

	"github.com/go-gl/mathgl/mgl32"
)

// RotationFromEuler builds Rz(yaw) * Ry(pitch) * Rx(roll). Angles in radians.
func RotationFromEuler(yaw, pitch, roll float32) mgl32.Mat3 {
	return mgl32.Rotate3DZ(yaw).Mul3(mgl32.Rotate3DY(pitch)).Mul3(mgl32.Rotate3DX(roll))
}

// Mat3ToEuler is the inverse of RotationFromEuler for orthonormal matrices.
func Mat3ToEuler(m mgl32.Mat3) (yaw, pitch, roll float32) {
	sy := -m.At(2, 0)
	if sy > 1 {
		sy = 1
	} else if sy < -1 {
		sy = -1
	}
	pitch = float32(math.Asin(float64(sy)))

	// gimbal lock: roll folds into yaw
	if math.Abs(float64(sy)) > 0.9999 {
		yaw = float32(math.Atan2(float64(-m.At(0, 1)), float64(m.At(1, 1))))
		return yaw, pitch, 0
	}

	yaw = float32(math.Atan2(float64(m.At(1, 0)), float64(m.At(0, 0))))
	roll = float32(math.Atan2(float64(m.At(2, 1)), float64(m.At(2, 2))))
	return yaw, pitch, roll
}
