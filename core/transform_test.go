package core

import (
	"math"
	"testing"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const eps = 1e-4

func sampleTransforms() []Transform {
	return []Transform{
		{
			Translation: mgl32.Vec3{10, 0, -2},
			Rotation:    RotationFromEuler(mgl32.DegToRad(90), 0, 0),
			Scale:       2,
		},
		{
			Translation: mgl32.Vec3{-1, 3, 0.5},
			Rotation:    RotationFromEuler(mgl32.DegToRad(15), mgl32.DegToRad(-40), mgl32.DegToRad(70)),
			Scale:       0.5,
		},
		{
			Translation: mgl32.Vec3{0, 7, 0},
			Rotation:    RotationFromEuler(0, mgl32.DegToRad(33), 0),
			Scale:       3,
		},
	}
}

func TestIdentityTransform(t *testing.T) {
	id := IdentityTransform()
	assert.True(t, id.IsIdentity())
	assert.Equal(t, mgl32.Vec3{1, 2, 3}, id.Apply(mgl32.Vec3{1, 2, 3}))

	tr := sampleTransforms()[1]
	assert.True(t, id.Mul(tr).ApproxEqual(tr, eps))
	assert.True(t, tr.Mul(id).ApproxEqual(tr, eps))
}

func TestTransformMul_ComposesChildIntoParent(t *testing.T) {
	parent := Transform{
		Translation: mgl32.Vec3{10, 0, 0},
		Rotation:    mgl32.Rotate3DY(mgl32.DegToRad(90)),
		Scale:       2,
	}
	child := Transform{
		Translation: mgl32.Vec3{5, 0, 0},
		Rotation:    mgl32.Ident3(),
		Scale:       1.5,
	}

	got := parent.Mul(child)

	// RotY(90) * (2 * (5, 0, 0)) = (0, 0, -10)
	assert.True(t, NearVec3(got.Translation, mgl32.Vec3{10, 0, -10}, eps), "got %v", got.Translation)
	assert.InDelta(t, 3.0, got.Scale, eps)
	assert.True(t, NearMat3(got.Rotation, parent.Rotation, eps))
}

func TestTransformMul_MatchesSequentialApply(t *testing.T) {
	ts := sampleTransforms()
	a, b := ts[0], ts[1]
	p := mgl32.Vec3{1, -2, 4}

	want := a.Apply(b.Apply(p))
	got := a.Mul(b).Apply(p)
	assert.True(t, NearVec3(got, want, eps), "want %v got %v", want, got)
}

func TestTransformMul_Associative(t *testing.T) {
	ts := sampleTransforms()
	a, b, c := ts[0], ts[1], ts[2]

	left := a.Mul(b).Mul(c)
	right := a.Mul(b.Mul(c))

	for _, p := range []mgl32.Vec3{{0, 0, 0}, {1, 2, 3}, {-4, 0.25, 9}} {
		l, r := left.Apply(p), right.Apply(p)
		assert.True(t, NearVec3(l, r, 1e-3), "point %v: %v != %v", p, l, r)
	}
}

func TestTransformApplyDir_IgnoresTranslationAndScale(t *testing.T) {
	tr := Transform{
		Translation: mgl32.Vec3{100, 100, 100},
		Rotation:    mgl32.Rotate3DZ(mgl32.DegToRad(90)),
		Scale:       7,
	}
	got := tr.ApplyDir(mgl32.Vec3{1, 0, 0})
	assert.True(t, NearVec3(got, mgl32.Vec3{0, 1, 0}, eps), "got %v", got)
}

func TestTransformMat4_RoundTrip(t *testing.T) {
	for _, tr := range sampleTransforms() {
		m := tr.Mat4()
		p := mgl32.Vec3{2, -1, 0.5}
		viaMat := m.Mul4x1(p.Vec4(1)).Vec3()
		assert.True(t, NearVec3(viaMat, tr.Apply(p), eps))

		back := TransformFromMat4(m)
		assert.True(t, back.ApproxEqual(tr, eps), "want %v got %v", tr, back)
	}
}

func TestTransformBinary_RoundTripIsExact(t *testing.T) {
	for _, tr := range sampleTransforms() {
		data, err := tr.MarshalBinary()
		require.NoError(t, err)
		require.Len(t, data, TransformSize)

		var back Transform
		require.NoError(t, back.UnmarshalBinary(data))
		assert.Equal(t, tr, back)
	}
}

func TestTransformBinary_ShortPayload(t *testing.T) {
	var tr Transform
	assert.Error(t, tr.UnmarshalBinary(make([]byte, TransformSize-1)))
}

func TestEuler_RoundTrip(t *testing.T) {
	cases := [][3]float32{
		{0, 0, 0},
		{30, 20, 10},
		{-120, 45, 170},
		{90, -60, -30},
	}
	for _, c := range cases {
		m := RotationFromEuler(mgl32.DegToRad(c[0]), mgl32.DegToRad(c[1]), mgl32.DegToRad(c[2]))
		yaw, pitch, roll := Mat3ToEuler(m)
		back := RotationFromEuler(yaw, pitch, roll)
		assert.True(t, NearMat3(back, m, eps), "angles %v", c)
	}
}

func TestEuler_GimbalLock(t *testing.T) {
	m := RotationFromEuler(mgl32.DegToRad(40), mgl32.DegToRad(90), mgl32.DegToRad(10))
	yaw, pitch, roll := Mat3ToEuler(m)
	assert.Zero(t, roll)
	assert.InDelta(t, mgl32.DegToRad(90), pitch, 1e-3)
	back := RotationFromEuler(yaw, pitch, roll)
	assert.True(t, NearMat3(back, m, 1e-3))
}

func bitsOf(t Transform) [13]uint32 {
	var out [13]uint32
	for i, v := range t.Rotation {
		out[i] = math.Float32bits(v)
	}
	for i, v := range t.Translation {
		out[9+i] = math.Float32bits(v)
	}
	out[12] = math.Float32bits(t.Scale)
	return out
}

func TestTransformBinary_KeepsNonFiniteValues(t *testing.T) {
	tr := IdentityTransform()
	tr.Translation[0] = float32(math.NaN())
	tr.Translation[2] = float32(math.Inf(-1))
	tr.Scale = float32(math.Inf(1))

	data, err := tr.MarshalBinary()
	require.NoError(t, err)

	var back Transform
	require.NoError(t, back.UnmarshalBinary(data))
	assert.Equal(t, bitsOf(tr), bitsOf(back))
}
