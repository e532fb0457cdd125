package scene

// Module is a unit of behavior or data attached to exactly one Entity.
// Implementations embed Base, which records the owner at attach time.
type Module interface {
	Capability() Capability
	Owner() *Entity
	base() *Base
}

// Initializer is implemented by modules that need setup once their entity
// is finalized. During Init only modules attached earlier are visible through
// the owner's lookups.
type Initializer interface {
	Init(owner *Entity)
}

// Updater is implemented by modules that run on every simulation tick.
type Updater interface {
	Update(t *Tick)
}

// Destroyer is implemented by modules that release state when their entity
// leaves the world.
type Destroyer interface {
	Destroy()
}

// Base carries the owner back-reference. The registry owns entities; a
// module only borrows its owner for as long as the entity is live.
type Base struct {
	owner *Entity
}

// Owner returns the entity the module is attached to, or nil for modules that
// live on a GUI screen.
func (b *Base) Owner() *Entity { return b.owner }

// OwnerID returns the owner's ID, zero when unattached.
func (b *Base) OwnerID() EntityID {
	if b.owner == nil {
		return 0
	}
	return b.owner.id
}

func (b *Base) base() *Base { return b }

// Find returns the first visible module of capability c on e as T.
func Find[T Module](e *Entity, c Capability) (T, bool) {
	var zero T
	if e == nil {
		return zero, false
	}
	m, ok := e.Module(c)
	if !ok {
		return zero, false
	}
	t, ok := m.(T)
	return t, ok
}
