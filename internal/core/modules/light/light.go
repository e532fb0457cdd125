// Package light provides the light source modules. A light shines from its
// entity's position along the entity's look direction.
package light

import (
	"github.com/go-gl/mathgl/mgl32"

	"github.com/zeusync/lightengine/internal/core/scene"
	"github.com/zeusync/lightengine/pkg/mathx"
)

// Kind is the light type code the lighting shader switches on.
type Kind int32

const (
	KindSpot        Kind = 0
	KindDirectional Kind = 1
	KindPoint       Kind = 2
)

func (k Kind) String() string {
	switch k {
	case KindSpot:
		return "spot"
	case KindDirectional:
		return "directional"
	case KindPoint:
		return "point"
	default:
		return "unknown"
	}
}

const (
	// UnsetAngle requests the widest spot cone.
	UnsetAngle = -1
	// MaxAngleDegrees is the widest spot cone.
	MaxAngleDegrees = 179.99
)

// Params is the per-frame light state copied into the render queue.
type Params struct {
	Kind        Kind
	Color       mgl32.Vec4 // rgb plus strength in W
	Specular    bool
	CastsShadow bool
	Angle       float32 // radians from the direction to the cone edge, spot only
	Transition  float32 // spot only
}

// Source is implemented by every light module.
type Source interface {
	scene.Module
	Params() Params
}

type source struct {
	scene.Base
	color       mgl32.Vec4
	specular    bool
	castsShadow bool
}

func newSource(color mgl32.Vec4) source {
	return source{color: color, specular: true, castsShadow: true}
}

func (s *source) Capability() scene.Capability { return scene.CapLight }

func (s *source) Color() mgl32.Vec4     { return s.color }
func (s *source) SetColor(c mgl32.Vec4) { s.color = c }
func (s *source) Strength() float32     { return s.color.W() }
func (s *source) SetStrength(v float32) { s.color[3] = v }
func (s *source) Specular() bool        { return s.specular }
func (s *source) CastsShadow() bool     { return s.castsShadow }

func (s *source) params(k Kind) Params {
	return Params{Kind: k, Color: s.color, Specular: s.specular, CastsShadow: s.castsShadow}
}

// Spot is a cone light. Its angle is measured from the light direction to
// the cone edge, so the cone spans twice the angle.
type Spot struct {
	source
	angle      float32
	transition float32
}

// NewSpot builds a spot light with the edge angle in degrees, clamped to
// [0, 179.99]; UnsetAngle gives 179.99. transition is clamped to [0, 1].
func NewSpot(color mgl32.Vec4, angleDegrees, transition float32) *Spot {
	s := &Spot{source: newSource(color)}
	if angleDegrees == UnsetAngle {
		angleDegrees = MaxAngleDegrees
	}
	s.SetAngleDegrees(angleDegrees)
	s.SetTransition(transition)
	return s
}

// WithSpecular toggles specular highlights.
func (s *Spot) WithSpecular(on bool) *Spot {
	s.specular = on
	return s
}

// WithShadow toggles shadow casting.
func (s *Spot) WithShadow(on bool) *Spot {
	s.castsShadow = on
	return s
}

// Angle returns the angle between the light direction and the cone edge in
// radians.
func (s *Spot) Angle() float32 { return s.angle }

func (s *Spot) SetAngleDegrees(deg float32) {
	s.angle = mathx.Radians(mathx.Clamp(deg, 0, MaxAngleDegrees))
}

// SetAngle sets the edge angle in radians within the same bounds.
func (s *Spot) SetAngle(rad float32) {
	s.angle = mathx.Clamp(rad, 0, mathx.Radians(MaxAngleDegrees))
}

func (s *Spot) Transition() float32 { return s.transition }

func (s *Spot) SetTransition(v float32) {
	s.transition = mathx.Clamp(v, 0, 1)
}

func (s *Spot) Params() Params {
	p := s.params(KindSpot)
	p.Angle = s.angle
	p.Transition = s.transition
	return p
}

// Directional lights the scene with parallel rays along the look direction.
type Directional struct {
	source
}

func NewDirectional(color mgl32.Vec4) *Directional {
	return &Directional{source: newSource(color)}
}

func (d *Directional) WithSpecular(on bool) *Directional {
	d.specular = on
	return d
}

func (d *Directional) WithShadow(on bool) *Directional {
	d.castsShadow = on
	return d
}

func (d *Directional) Params() Params { return d.params(KindDirectional) }

// Point shines in every direction from its position.
type Point struct {
	source
}

func NewPoint(color mgl32.Vec4) *Point {
	return &Point{source: newSource(color)}
}

func (p *Point) WithSpecular(on bool) *Point {
	p.specular = on
	return p
}

func (p *Point) WithShadow(on bool) *Point {
	p.castsShadow = on
	return p
}

func (p *Point) Params() Params { return p.params(KindPoint) }

// White returns a white light color with the given strength.
func White(strength float32) mgl32.Vec4 {
	return mgl32.Vec4{1, 1, 1, strength}
}
