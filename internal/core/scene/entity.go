package scene

import (
	"sync/atomic"

	"github.com/go-gl/mathgl/mgl32"

	"github.com/zeusync/lightengine/pkg/mathx"
)

type EntityID uint64

// Transform is the spatial state of an entity. Rotation is in Euler degrees;
// Look is derived from Rotation by DeriveLook.
type Transform struct {
	Position mgl32.Vec3
	Rotation mgl32.Vec3
	Look     mgl32.Vec3
}

// DeriveLook recomputes the look direction from the rotation.
func (t *Transform) DeriveLook() {
	t.Look = mathx.LookDirection(t.Rotation)
}

// Entity is a positioned object composed of modules. Transform is written by
// the simulation goroutine under the registry's world guard.
type Entity struct {
	id        EntityID
	Transform Transform

	modules []Module
	visible int

	finalized bool
	live      bool
	removed   atomic.Bool
}

func (e *Entity) ID() EntityID { return e.id }

// Module returns the first visible module with capability c.
func (e *Entity) Module(c Capability) (Module, bool) {
	for _, m := range e.modules[:e.visible] {
		if m.Capability() == c {
			return m, true
		}
	}
	return nil, false
}

// Has reports whether a module with capability c is visible.
func (e *Entity) Has(c Capability) bool {
	_, ok := e.Module(c)
	return ok
}

// Modules returns the visible modules in attachment order. The slice must
// not be modified.
func (e *Entity) Modules() []Module {
	return e.modules[:e.visible]
}

// Removed reports whether the entity has been requested for removal.
func (e *Entity) Removed() bool { return e.removed.Load() }

func (e *Entity) update(t *Tick) {
	for _, m := range e.modules {
		if u, ok := m.(Updater); ok {
			u.Update(t)
		}
	}
}

func (e *Entity) destroy() {
	for _, m := range e.modules {
		if d, ok := m.(Destroyer); ok {
			d.Destroy()
		}
	}
}
