package core

import (
	"bytes"
	"encoding/binary"
	"fmt"

	"github.com/go-gl/mathgl/mgl32"
)

// TransformSize is the length of an encoded Transform: nine rotation floats,
// three translation floats and the scale.
const TransformSize = 13 * 4

// Transform is a node's local placement relative to its parent.
// Scale is uniform.
type Transform struct {
	Translation mgl32.Vec3
	Rotation    mgl32.Mat3
	Scale       float32
}

func IdentityTransform() Transform {
	return Transform{
		Translation: mgl32.Vec3{0, 0, 0},
		Rotation:    mgl32.Ident3(),
		Scale:       1,
	}
}

// Mul returns t * o, which applies o first and then t.
func (t Transform) Mul(o Transform) Transform {
	return Transform{
		// T = Tt + Rt * (St * To)
		Translation: t.Translation.Add(t.Rotation.Mul3x1(o.Translation.Mul(t.Scale))),
		Rotation:    t.Rotation.Mul3(o.Rotation),
		Scale:       t.Scale * o.Scale,
	}
}

// Apply maps a point: R * (S * p) + T.
func (t Transform) Apply(p mgl32.Vec3) mgl32.Vec3 {
	return t.Rotation.Mul3x1(p.Mul(t.Scale)).Add(t.Translation)
}

// ApplyDir maps a direction. Translation and scale are ignored.
func (t Transform) ApplyDir(n mgl32.Vec3) mgl32.Vec3 {
	return t.Rotation.Mul3x1(n)
}

func (t Transform) IsIdentity() bool {
	return t == IdentityTransform()
}

func (t Transform) ApproxEqual(o Transform, eps float32) bool {
	return NearVec3(t.Translation, o.Translation, eps) &&
		NearMat3(t.Rotation, o.Rotation, eps) &&
		near(t.Scale, o.Scale, eps)
}

// NearVec3 reports whether every component of a and b differs by at most eps.
func NearVec3(a, b mgl32.Vec3, eps float32) bool {
	for i := range a {
		if !near(a[i], b[i], eps) {
			return false
		}
	}
	return true
}

func NearMat3(a, b mgl32.Mat3, eps float32) bool {
	for i := range a {
		if !near(a[i], b[i], eps) {
			return false
		}
	}
	return true
}

func near(a, b, eps float32) bool {
	return mgl32.Abs(a-b) <= eps
}

// Mat4 builds the affine matrix M = T * R * S.
func (t Transform) Mat4() mgl32.Mat4 {
	translate := mgl32.Translate3D(t.Translation.X(), t.Translation.Y(), t.Translation.Z())
	rotate := t.Rotation.Mat4()
	scale := mgl32.Scale3D(t.Scale, t.Scale, t.Scale)

	return translate.Mul4(rotate).Mul4(scale)
}

// TransformFromMat4 decomposes an affine matrix. Non-uniform scale collapses
// to the mean of the three axis lengths.
func TransformFromMat4(m mgl32.Mat4) Transform {
	cols := [3]mgl32.Vec3{m.Col(0).Vec3(), m.Col(1).Vec3(), m.Col(2).Vec3()}
	var lens [3]float32
	for i, c := range cols {
		lens[i] = c.Len()
		if lens[i] != 0 {
			cols[i] = c.Mul(1 / lens[i])
		}
	}

	return Transform{
		Translation: m.Col(3).Vec3(),
		Rotation:    mgl32.Mat3FromCols(cols[0], cols[1], cols[2]),
		Scale:       (lens[0] + lens[1] + lens[2]) / 3,
	}
}

func (t Transform) String() string {
	yaw, pitch, roll := Mat3ToEuler(t.Rotation)
	return fmt.Sprintf("T(%g, %g, %g) R(%g°, %g°, %g°) S %g",
		t.Translation.X(), t.Translation.Y(), t.Translation.Z(),
		mgl32.RadToDeg(yaw), mgl32.RadToDeg(pitch), mgl32.RadToDeg(roll),
		t.Scale)
}

// MarshalBinary writes rotation rows, translation and scale as big-endian float32.
func (t Transform) MarshalBinary() ([]byte, error) {
	var buf bytes.Buffer
	buf.Grow(TransformSize)

	var values [13]float32
	for row := 0; row < 3; row++ {
		for col := 0; col < 3; col++ {
			values[row*3+col] = t.Rotation.At(row, col)
		}
	}
	copy(values[9:12], t.Translation[:])
	values[12] = t.Scale

	if err := binary.Write(&buf, binary.BigEndian, values); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func (t *Transform) UnmarshalBinary(data []byte) error {
	if len(data) < TransformSize {
		return fmt.Errorf("transform payload too short: %d < %d bytes", len(data), TransformSize)
	}

	var values [13]float32
	if err := binary.Read(bytes.NewReader(data), binary.BigEndian, &values); err != nil {
		return err
	}

	var r mgl32.Mat3
	for row := 0; row < 3; row++ {
		for col := 0; col < 3; col++ {
			r.Set(row, col, values[row*3+col])
		}
	}
	t.Rotation = r
	t.Translation = mgl32.Vec3{values[9], values[10], values[11]}
	t.Scale = values[12]
	return nil
}
