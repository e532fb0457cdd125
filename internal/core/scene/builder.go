package scene

import (
	"fmt"

	"github.com/go-gl/mathgl/mgl32"
)

// Builder assembles an entity. Modules are attached in order and initialized
// by Finalize, which then queues the entity for the next safe point.
type Builder struct {
	reg    *Registry
	entity *Entity
	err    error
}

// Create starts a new entity at position with rotation in Euler degrees.
func (r *Registry) Create(position, rotation mgl32.Vec3) *Builder {
	e := &Entity{
		id:        EntityID(r.nextID.Add(1)),
		Transform: Transform{Position: position, Rotation: rotation},
	}
	e.Transform.DeriveLook()
	return &Builder{reg: r, entity: e}
}

// Attach appends m to the entity. Errors are reported by Finalize; the
// offending module is dropped.
func (b *Builder) Attach(m Module) *Builder {
	switch {
	case b.entity.finalized:
		b.err = ErrFinalized
	case m == nil:
		b.err = ErrNilModule
	case m.base().owner != nil:
		b.err = fmt.Errorf("attach %s to entity %d: %w", m.Capability(), b.entity.id, ErrAlreadyAttached)
	default:
		m.base().owner = b.entity
		b.entity.modules = append(b.entity.modules, m)
	}
	return b
}

// Finalize initializes every module in attachment order and requests the
// entity's registration. The entity becomes live at the next FlushAdds.
func (b *Builder) Finalize() (*Entity, error) {
	e := b.entity
	if e.finalized {
		return e, ErrFinalized
	}
	if b.err != nil {
		for _, m := range e.modules {
			m.base().owner = nil
		}
		e.modules = nil
		return nil, b.err
	}

	for i, m := range e.modules {
		e.visible = i
		if in, ok := m.(Initializer); ok {
			in.Init(e)
		}
	}
	e.visible = len(e.modules)
	e.finalized = true

	if b.reg != nil {
		b.reg.RequestAdd(e)
	}
	return e, nil
}

// MustFinalize is Finalize for static scene setup where an error is a bug.
func (b *Builder) MustFinalize() *Entity {
	e, err := b.Finalize()
	if err != nil {
		panic(err)
	}
	return e
}
