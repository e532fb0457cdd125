package scene

import (
	"slices"
	"sync"
	"sync/atomic"

	"github.com/go-gl/mathgl/mgl32"

	"github.com/zeusync/lightengine/internal/core/input"
)

// Registry owns the live entities and GUI screens. Additions and removals
// are deferred: Request* only queue, Flush* apply them at the safe points of
// the simulation tick. The world guard is held for writing by the simulation
// goroutine during flush and update, and for reading by the render goroutine
// while it snapshots the world.
type Registry struct {
	world sync.RWMutex
	live  []*Entity

	pendingMu     sync.Mutex
	pendingAdd    []*Entity
	pendingRemove []*Entity

	screensMu sync.RWMutex
	screens   []Screen
	loading   Screen

	updating atomic.Bool
	nextID   atomic.Uint64
}

func NewRegistry() *Registry {
	return &Registry{
		live: make([]*Entity, 0, 64),
	}
}

// RequestAdd queues e for the next FlushAdds.
func (r *Registry) RequestAdd(e *Entity) {
	r.pendingMu.Lock()
	r.pendingAdd = append(r.pendingAdd, e)
	r.pendingMu.Unlock()
}

// RequestRemove queues e for the next FlushRemovals.
func (r *Registry) RequestRemove(e *Entity) {
	if e == nil || e.removed.Swap(true) {
		return
	}
	r.pendingMu.Lock()
	r.pendingRemove = append(r.pendingRemove, e)
	r.pendingMu.Unlock()
}

// FlushAdds makes every queued entity live, in request order.
func (r *Registry) FlushAdds() error {
	if r.updating.Load() {
		return ErrReentrantFlush
	}

	r.pendingMu.Lock()
	adds := r.pendingAdd
	r.pendingAdd = nil
	r.pendingMu.Unlock()
	if len(adds) == 0 {
		return nil
	}

	r.world.Lock()
	defer r.world.Unlock()
	for _, e := range adds {
		if e.live || e.removed.Load() {
			continue
		}
		e.live = true
		r.live = append(r.live, e)
	}
	return nil
}

// FlushRemovals drops every queued entity from the live list and runs the
// Destroy hooks of their modules.
func (r *Registry) FlushRemovals() error {
	if r.updating.Load() {
		return ErrReentrantFlush
	}

	r.pendingMu.Lock()
	removals := r.pendingRemove
	r.pendingRemove = nil
	r.pendingMu.Unlock()
	if len(removals) == 0 {
		return nil
	}

	r.world.Lock()
	gone := make(map[*Entity]struct{}, len(removals))
	for _, e := range removals {
		gone[e] = struct{}{}
		e.live = false
	}
	r.live = slices.DeleteFunc(r.live, func(e *Entity) bool {
		_, ok := gone[e]
		return ok
	})
	r.world.Unlock()

	for _, e := range removals {
		e.destroy()
	}
	return nil
}

// Update runs one tick over every live entity in insertion order, then over
// the updatable elements of visible screens. Zero values in t are filled
// with the registry, an empty input reader and the current focus.
func (r *Registry) Update(t Tick) {
	if t.Input == nil {
		t.Input = input.None
	}
	t.World = r

	r.world.Lock()
	t.Focus, t.HasFocus = r.focusLocked()
	r.updating.Store(true)
	for _, e := range r.live {
		e.update(&t)
	}
	r.updating.Store(false)
	r.world.Unlock()

	for _, s := range r.Screens() {
		if !s.Visible() {
			continue
		}
		for _, m := range s.Elements() {
			if u, ok := m.(Updater); ok {
				u.Update(&t)
			}
		}
	}
}

// View calls fn with the live entities under the world read guard. fn must
// not retain the slice or call back into Flush*.
func (r *Registry) View(fn func(entities []*Entity)) {
	r.world.RLock()
	defer r.world.RUnlock()
	fn(r.live)
}

// Entities returns a copy of the live list.
func (r *Registry) Entities() []*Entity {
	r.world.RLock()
	defer r.world.RUnlock()
	return slices.Clone(r.live)
}

func (r *Registry) Len() int {
	r.world.RLock()
	defer r.world.RUnlock()
	return len(r.live)
}

// Pending reports the number of queued additions and removals.
func (r *Registry) Pending() (adds, removals int) {
	r.pendingMu.Lock()
	defer r.pendingMu.Unlock()
	return len(r.pendingAdd), len(r.pendingRemove)
}

// Focus returns the position of the first live entity carrying a controller.
func (r *Registry) Focus() (mgl32.Vec3, bool) {
	r.world.RLock()
	defer r.world.RUnlock()
	return r.focusLocked()
}

func (r *Registry) focusLocked() (mgl32.Vec3, bool) {
	for _, e := range r.live {
		if e.Has(CapController) {
			return e.Transform.Position, true
		}
	}
	return mgl32.Vec3{}, false
}

// AddScreen registers a GUI screen. Screens are drawn in registration order.
func (r *Registry) AddScreen(s Screen) {
	r.screensMu.Lock()
	r.screens = append(r.screens, s)
	r.screensMu.Unlock()
}

func (r *Registry) Screens() []Screen {
	r.screensMu.RLock()
	defer r.screensMu.RUnlock()
	return slices.Clone(r.screens)
}

// SetLoadingScreen installs the screen drawn on top of every frame.
func (r *Registry) SetLoadingScreen(s Screen) {
	r.screensMu.Lock()
	r.loading = s
	r.screensMu.Unlock()
}

func (r *Registry) LoadingScreen() Screen {
	r.screensMu.RLock()
	defer r.screensMu.RUnlock()
	return r.loading
}
