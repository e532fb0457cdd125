package light

import (
	"testing"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/zeusync/lightengine/internal/core/scene"
	"github.com/zeusync/lightengine/pkg/mathx"
)

func TestSpotAngleClamp(t *testing.T) {
	cases := []struct {
		name string
		in   float32
		want float32
	}{
		{"unset", UnsetAngle, mathx.Radians(179.99)},
		{"too wide", 200, mathx.Radians(179.99)},
		{"negative", -5, 0},
		{"in range", 25, mathx.Radians(25)},
		{"zero", 0, 0},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			s := NewSpot(White(1), c.in, 0)
			assert.InDelta(t, c.want, s.Angle(), 1e-6)
			assert.InDelta(t, c.want, s.Params().Angle, 1e-6)
		})
	}
}

func TestSpotTransitionClamp(t *testing.T) {
	assert.Equal(t, float32(1), NewSpot(White(1), 30, 2).Transition())
	assert.Equal(t, float32(0), NewSpot(White(1), 30, -1).Transition())
	assert.Equal(t, float32(0.25), NewSpot(White(1), 30, 0.25).Transition())
}

func TestSetAngleRadiansClamped(t *testing.T) {
	s := NewSpot(White(1), 25, 0)
	s.SetAngle(10)
	assert.InDelta(t, mathx.Radians(179.99), s.Angle(), 1e-6)
	s.SetAngle(-1)
	assert.Zero(t, s.Angle())
}

func TestParams(t *testing.T) {
	red := mgl32.Vec4{1, 0, 0, 400}
	spot := NewSpot(red, 25, 0.5).WithSpecular(false)
	p := spot.Params()
	assert.Equal(t, KindSpot, p.Kind)
	assert.Equal(t, red, p.Color)
	assert.False(t, p.Specular)
	assert.True(t, p.CastsShadow)
	assert.Equal(t, float32(400), spot.Strength())

	dir := NewDirectional(White(0.8)).WithShadow(false)
	assert.Equal(t, KindDirectional, dir.Params().Kind)
	assert.False(t, dir.Params().CastsShadow)

	point := NewPoint(White(2))
	assert.Equal(t, KindPoint, point.Params().Kind)
	point.SetStrength(3)
	assert.Equal(t, float32(3), point.Params().Color.W())
}

func TestLightIsCapabilityLight(t *testing.T) {
	r := scene.NewRegistry()
	spot := NewSpot(White(1), 45, 0)
	e := r.Create(mgl32.Vec3{}, mgl32.Vec3{}).Attach(spot).MustFinalize()

	src, ok := scene.Find[Source](e, scene.CapLight)
	require.True(t, ok)
	assert.Same(t, spot, src)
	assert.Equal(t, "spot", src.Params().Kind.String())
}
