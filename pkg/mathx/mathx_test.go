package mathx

import (
	"testing"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/stretchr/testify/assert"
)

func TestClamp(t *testing.T) {
	assert.Equal(t, float32(0), Clamp(-1, 0, 1))
	assert.Equal(t, float32(1), Clamp(2, 0, 1))
	assert.Equal(t, float32(0.5), Clamp(0.5, 0, 1))
	assert.Equal(t, 8, ClampInt(12, 0, 8))
	assert.Equal(t, 0, ClampInt(-3, 0, 8))
}

func TestRadiansRoundTrip(t *testing.T) {
	assert.InDelta(t, 3.14159265, Radians(180), 1e-5)
	assert.InDelta(t, 179.99, Degrees(Radians(179.99)), 1e-3)
}

func TestLookDirection(t *testing.T) {
	cases := []struct {
		rotation mgl32.Vec3
		want     mgl32.Vec3
	}{
		{mgl32.Vec3{0, 0, 0}, mgl32.Vec3{0, 0, 1}},
		{mgl32.Vec3{90, 0, 0}, mgl32.Vec3{0, -1, 0}},
		{mgl32.Vec3{0, 90, 0}, mgl32.Vec3{1, 0, 0}},
		{mgl32.Vec3{0, 180, 45}, mgl32.Vec3{0, 0, -1}},
	}
	for _, c := range cases {
		got := LookDirection(c.rotation)
		assert.True(t, got.ApproxEqualThreshold(c.want, 1e-5), "rotation %v: got %v want %v", c.rotation, got, c.want)
	}
}

func TestViewInvertsModel(t *testing.T) {
	pos := mgl32.Vec3{1, 2, 3}
	rot := mgl32.Vec3{10, 20, 0}
	model := ModelMatrix(pos, mgl32.Vec3{})
	view := ViewMatrix(pos, rot)

	origin := view.Mul4(model).Mul4x1(mgl32.Vec4{0, 0, 0, 1})
	assert.True(t, origin.Vec3().ApproxEqualThreshold(mgl32.Vec3{}, 1e-5), "viewer position maps to eye origin, got %v", origin)
}

func TestPowerOfTwo(t *testing.T) {
	assert.True(t, IsPowerOfTwo(4096))
	assert.False(t, IsPowerOfTwo(3000))
	assert.False(t, IsPowerOfTwo(0))
	assert.Equal(t, 2048, FloorPowerOfTwo(3000))
	assert.Equal(t, 1, FloorPowerOfTwo(0))
}
