// Package interaction provides player-triggered scripted effects: an input
// event within range of the focus entity starts a Behavior on the owner.
package interaction

import (
	"github.com/zeusync/lightengine/internal/core/observability/log"
	"github.com/zeusync/lightengine/internal/core/scene"
)

// Module starts its behavior when Event fires within Range of the focus. In
// hold mode the behavior is advanced on every tick the event is pressed and
// reset when released; otherwise one trigger runs it to completion.
type Module struct {
	scene.Base

	Name       string
	Event      string
	Range      float32
	Hold       bool
	Repeatable bool

	behavior Behavior
	running  bool
	runs     int
	logger   log.Log
}

type Option func(*Module)

// WithHold advances the behavior only while the event is held.
func WithHold() Option {
	return func(m *Module) { m.Hold = true }
}

// WithRange limits activation to a focus within r units; zero means anywhere.
func WithRange(r float32) Option {
	return func(m *Module) { m.Range = r }
}

// Single allows one activation only.
func Single() Option {
	return func(m *Module) { m.Repeatable = false }
}

func WithLogger(l log.Log) Option {
	return func(m *Module) { m.logger = l }
}

func New(name, event string, b Behavior, opts ...Option) *Module {
	m := &Module{
		Name:       name,
		Event:      event,
		Repeatable: true,
		behavior:   b,
		logger:     log.NewNop(),
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

func (m *Module) Capability() scene.Capability { return scene.CapInteraction }

// Running reports whether a triggered behavior is still in progress.
func (m *Module) Running() bool { return m.running }

// Runs returns how many times the interaction was started.
func (m *Module) Runs() int { return m.runs }

// Cancel stops a running behavior. The entity keeps whatever state the
// behavior already applied.
func (m *Module) Cancel() {
	m.running = false
}

// Destroy cancels the behavior and releases it if it holds resources.
func (m *Module) Destroy() {
	m.Cancel()
	if c, ok := m.behavior.(interface{ Close() }); ok {
		c.Close()
	}
}

func (m *Module) Update(t *scene.Tick) {
	if m.Hold {
		m.updateHold(t)
		return
	}

	if m.running {
		m.advance(t.Delta)
		return
	}
	if t.Paused || !t.Input.Triggered(m.Event) || !m.inRange(t) {
		return
	}
	if !m.Repeatable && m.runs > 0 {
		return
	}
	m.behavior.Reset()
	m.running = true
	m.runs++
	m.logger.Debug("interaction started", log.String("name", m.Name), log.Uint64("entity", uint64(m.OwnerID())))
}

func (m *Module) updateHold(t *scene.Tick) {
	held := !t.Paused && t.Input.Pressed(m.Event) && m.inRange(t)
	if !held {
		m.running = false
		return
	}
	if !m.running {
		if !m.Repeatable && m.runs > 0 {
			return
		}
		m.behavior.Reset()
		m.running = true
		m.runs++
	}
	if m.advance(t.Delta) && m.Repeatable {
		// keep repeating while held
		m.behavior.Reset()
		m.running = true
	}
}

// advance steps the behavior and reports whether it finished cleanly. A
// failing behavior stops without restarting.
func (m *Module) advance(dt float32) bool {
	done, err := m.behavior.Advance(m.Owner(), dt)
	if err != nil {
		m.running = false
		m.logger.Error("interaction aborted",
			log.String("name", m.Name),
			log.Uint64("entity", uint64(m.OwnerID())),
			log.Error(err),
		)
		return false
	}
	if done {
		m.running = false
	}
	return done
}

func (m *Module) inRange(t *scene.Tick) bool {
	if m.Range <= 0 {
		return true
	}
	if !t.HasFocus {
		return false
	}
	return t.Focus.Sub(m.Owner().Transform.Position).Len() <= m.Range
}
