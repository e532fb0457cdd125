// Package movement integrates controller forces into entity motion:
// a = F/m, v = a·dt + v0 with v0 halved every tick, s = v·dt.
package movement

import (
	"github.com/chewxy/math32"
	"github.com/go-gl/mathgl/mgl32"

	"github.com/zeusync/lightengine/internal/core/scene"
	"github.com/zeusync/lightengine/pkg/mathx"
)

const (
	DefaultMass           = 80
	DefaultSprintModifier = 2
	DefaultSneakModifier  = 0.5

	// damping applied to the carried-over speed every tick
	damping = 0.5
	// horizontal force share kept while sneaking
	sneakHorizontal = 0.3
)

// Forces are the strengths of the seven movement directions.
type Forces [7]float32

const (
	Forward = iota
	Backward
	Left
	Right
	Down
	Up
	Jump
)

// Driver is the controller contract. Movement looks it up through the
// CapController capability every tick.
type Driver interface {
	scene.Module
	Forces() Forces
	SprintToggle() bool
	SneakToggle() bool
	// Drive applies this tick's forces through the Move* methods of m.
	Drive(m *Module, t *scene.Tick)
}

type Module struct {
	scene.Base

	Mass           float32
	SprintModifier float32
	SneakModifier  float32

	Speed   mgl32.Vec3
	Moved   mgl32.Vec3
	Applied mgl32.Vec3

	previous  mgl32.Vec3
	forces    Forces
	sprinting bool
	sneaking  bool
}

type Option func(*Module)

func WithMass(mass float32) Option {
	return func(m *Module) {
		if mass > 0 {
			m.Mass = mass
		}
	}
}

func WithModifiers(sprint, sneak float32) Option {
	return func(m *Module) {
		m.SprintModifier = sprint
		m.SneakModifier = sneak
	}
}

func New(opts ...Option) *Module {
	m := &Module{
		Mass:           DefaultMass,
		SprintModifier: DefaultSprintModifier,
		SneakModifier:  DefaultSneakModifier,
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

func (m *Module) Capability() scene.Capability { return scene.CapMovement }

func (m *Module) Init(owner *scene.Entity) {
	if d, ok := scene.Find[Driver](owner, scene.CapController); ok {
		m.forces = d.Forces()
	}
}

func (m *Module) Update(t *scene.Tick) {
	m.Applied = mgl32.Vec3{}
	if t.Paused {
		return
	}
	owner := m.Owner()

	if d, ok := scene.Find[Driver](owner, scene.CapController); ok {
		m.forces = d.Forces()
		if !d.SprintToggle() {
			m.sprinting = false
		}
		if !d.SneakToggle() {
			m.sneaking = false
		}
		d.Drive(m, t)
	}

	m.previous = m.previous.Mul(damping)
	acceleration := m.Applied.Mul(1 / m.Mass)
	m.Speed = acceleration.Mul(t.Delta).Add(m.previous)
	m.Moved = m.Speed.Mul(t.Delta)
	owner.Transform.Position = owner.Transform.Position.Add(m.Moved)
	m.previous = m.Speed

	owner.Transform.DeriveLook()
}

func (m *Module) Sprinting() bool { return m.sprinting }
func (m *Module) Sneaking() bool  { return m.sneaking }

func (m *Module) MoveForward()  { m.apply(mgl32.Vec3{0, 0, -m.forces[Forward]}) }
func (m *Module) MoveBackward() { m.apply(mgl32.Vec3{0, 0, m.forces[Backward]}) }
func (m *Module) MoveLeft()     { m.apply(mgl32.Vec3{m.forces[Left], 0, 0}) }
func (m *Module) MoveRight()    { m.apply(mgl32.Vec3{-m.forces[Right], 0, 0}) }
func (m *Module) MoveDown()     { m.apply(mgl32.Vec3{0, -m.forces[Down], 0}) }
func (m *Module) MoveUp()       { m.apply(mgl32.Vec3{0, m.forces[Up], 0}) }
func (m *Module) Jump()         { m.apply(mgl32.Vec3{0, m.forces[Jump], 0}) }

// Sprint starts sprinting, or flips it when the controller uses toggle mode.
func (m *Module) Sprint() {
	if m.toggles(func(d Driver) bool { return d.SprintToggle() }) {
		m.sprinting = !m.sprinting
	} else {
		m.sprinting = true
	}
	if m.sprinting {
		m.sneaking = false
	}
}

// Sneak starts sneaking, or flips it when the controller uses toggle mode.
func (m *Module) Sneak() {
	if m.toggles(func(d Driver) bool { return d.SneakToggle() }) {
		m.sneaking = !m.sneaking
	} else {
		m.sneaking = true
	}
	if m.sneaking {
		m.sprinting = false
	}
}

func (m *Module) toggles(mode func(Driver) bool) bool {
	d, ok := scene.Find[Driver](m.Owner(), scene.CapController)
	return ok && mode(d)
}

func (m *Module) apply(direction mgl32.Vec3) {
	switch {
	case m.sprinting:
		direction = direction.Mul(m.SprintModifier)
	case m.sneaking:
		direction = direction.Mul(m.SneakModifier)
	}
	m.Applied = m.Applied.Add(m.force(direction))
}

// force turns a direction in entity space into a world-space force using
// the entity's yaw.
func (m *Module) force(direction mgl32.Vec3) mgl32.Vec3 {
	yaw := m.Owner().Transform.Rotation.Y()
	s90, c90 := math32.Sincos(mathx.Radians(yaw - 90))
	s, c := math32.Sincos(mathx.Radians(yaw))

	f := mgl32.Vec3{
		-(direction.X()*s90 + direction.Z()*s),
		direction.Y(),
		direction.X()*c90 + direction.Z()*c,
	}
	if m.sneaking {
		f[0] *= sneakHorizontal
		f[2] *= sneakHorizontal
	}
	return f
}
