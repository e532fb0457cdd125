// Package control provides the input-driven controller module.
package control

import (
	"github.com/zeusync/lightengine/internal/core/input"
	"github.com/zeusync/lightengine/internal/core/modules/movement"
	"github.com/zeusync/lightengine/internal/core/scene"
	"github.com/zeusync/lightengine/pkg/mathx"
)

const (
	DefaultSensitivity = 0.15
	maxPitch           = 90
)

var _ movement.Driver = (*Manual)(nil)

// Manual maps named input events onto the movement module of its entity and
// turns the entity with pointer movement.
type Manual struct {
	scene.Base

	forces       movement.Forces
	CanFly       bool
	Sensitivity  float32
	sprintToggle bool
	sneakToggle  bool
}

type Option func(*Manual)

// WithToggles makes sprint and sneak flip on each trigger instead of being
// held.
func WithToggles(sprint, sneak bool) Option {
	return func(c *Manual) {
		c.sprintToggle = sprint
		c.sneakToggle = sneak
	}
}

func WithSensitivity(s float32) Option {
	return func(c *Manual) { c.Sensitivity = s }
}

func NewManual(forces movement.Forces, canFly bool, opts ...Option) *Manual {
	c := &Manual{forces: forces, CanFly: canFly, Sensitivity: DefaultSensitivity}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

func (c *Manual) Capability() scene.Capability { return scene.CapController }

func (c *Manual) Forces() movement.Forces { return c.forces }
func (c *Manual) SprintToggle() bool      { return c.sprintToggle }
func (c *Manual) SneakToggle() bool       { return c.sneakToggle }

func (c *Manual) Drive(m *movement.Module, t *scene.Tick) {
	in := t.Input

	if c.sprintToggle {
		if in.Triggered(input.Sprint) {
			m.Sprint()
		}
	} else if in.Pressed(input.Sprint) {
		m.Sprint()
	}
	if c.sneakToggle {
		if in.Triggered(input.Sneak) {
			m.Sneak()
		}
	} else if in.Pressed(input.Sneak) {
		m.Sneak()
	}

	if in.Pressed(input.Forward) {
		m.MoveForward()
	}
	if in.Pressed(input.Backward) {
		m.MoveBackward()
	}
	if in.Pressed(input.Left) {
		m.MoveLeft()
	}
	if in.Pressed(input.Right) {
		m.MoveRight()
	}
	if c.CanFly {
		if in.Pressed(input.Up) {
			m.MoveUp()
		}
		if in.Pressed(input.Down) {
			m.MoveDown()
		}
	} else if in.Triggered(input.Jump) {
		m.Jump()
	}
}

// Update applies pointer look: horizontal movement turns yaw, vertical
// movement pitch, limited to straight up and down.
func (c *Manual) Update(t *scene.Tick) {
	if t.Paused {
		return
	}
	dx, dy := t.Input.PointerDelta()
	if dx == 0 && dy == 0 {
		return
	}
	tr := &c.Owner().Transform
	tr.Rotation[0] = mathx.Clamp(tr.Rotation[0]+dy*c.Sensitivity, -maxPitch, maxPitch)
	tr.Rotation[1] += dx * c.Sensitivity
	tr.DeriveLook()
}
