// Package input maps raw key state from a surface backend onto named input
// events. Events are either level-triggered (Pressed) or edge-triggered
// (Triggered, true for exactly one simulation tick after the key goes down).
package input

import (
	"sort"
	"sync"
)

// Key names a physical key, e.g. "W", "SPACE", "ESCAPE", "LEFT_SHIFT".
type Key string

// Reader is the view of input state handed to modules on every tick.
type Reader interface {
	Pressed(event string) bool
	Triggered(event string) bool
	PointerDelta() (dx, dy float32)
}

// Source is implemented by surface backends that can report raw key state.
type Source interface {
	KeyDown(key Key) bool
	// CursorDelta returns pointer movement since the previous call.
	CursorDelta() (dx, dy float64)
}

var _ Reader = (*Mapper)(nil)

// Mapper translates raw key state into named events. Sync (or Press/Release)
// is called from the render goroutine, Advance and the Reader methods from
// the simulation goroutine.
type Mapper struct {
	mu       sync.Mutex
	bindings map[string][]Key

	down    map[string]bool
	pending map[string]bool
	current map[string]bool

	pendingDX, pendingDY float32
	dx, dy               float32
}

// NewMapper returns a mapper with no bindings.
func NewMapper() *Mapper {
	return &Mapper{
		bindings: make(map[string][]Key),
		down:     make(map[string]bool),
		pending:  make(map[string]bool),
		current:  make(map[string]bool),
	}
}

// Bind assigns keys to an event, replacing earlier bindings. Any of the keys
// being down makes the event pressed.
func (m *Mapper) Bind(event string, keys ...Key) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.bindings[event] = append([]Key(nil), keys...)
}

// Events returns the bound event names, sorted.
func (m *Mapper) Events() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]string, 0, len(m.bindings))
	for name := range m.bindings {
		out = append(out, name)
	}
	sort.Strings(out)
	return out
}

// Sync samples every binding from src.
func (m *Mapper) Sync(src Source) {
	if src == nil {
		return
	}
	dx, dy := src.CursorDelta()

	m.mu.Lock()
	defer m.mu.Unlock()
	for event, keys := range m.bindings {
		down := false
		for _, k := range keys {
			if src.KeyDown(k) {
				down = true
				break
			}
		}
		m.setLocked(event, down)
	}
	m.pendingDX += float32(dx)
	m.pendingDY += float32(dy)
}

// Press marks an event as held, firing its edge if it was up.
func (m *Mapper) Press(event string) {
	m.mu.Lock()
	m.setLocked(event, true)
	m.mu.Unlock()
}

// Release marks an event as no longer held.
func (m *Mapper) Release(event string) {
	m.mu.Lock()
	m.setLocked(event, false)
	m.mu.Unlock()
}

// MovePointer accumulates pointer movement for the next tick.
func (m *Mapper) MovePointer(dx, dy float32) {
	m.mu.Lock()
	m.pendingDX += dx
	m.pendingDY += dy
	m.mu.Unlock()
}

// Advance publishes pending edges and pointer movement to the next tick.
// Edges that fired since the previous Advance are visible through Triggered
// until the following Advance.
func (m *Mapper) Advance() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.current, m.pending = m.pending, m.current
	clear(m.pending)
	m.dx, m.dy = m.pendingDX, m.pendingDY
	m.pendingDX, m.pendingDY = 0, 0
}

func (m *Mapper) Pressed(event string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.down[event]
}

func (m *Mapper) Triggered(event string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.current[event]
}

func (m *Mapper) PointerDelta() (float32, float32) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.dx, m.dy
}

func (m *Mapper) setLocked(event string, down bool) {
	if down && !m.down[event] {
		m.pending[event] = true
	}
	m.down[event] = down
}

// None is a Reader with nothing pressed.
var None Reader = none{}

type none struct{}

func (none) Pressed(string) bool               { return false }
func (none) Triggered(string) bool             { return false }
func (none) PointerDelta() (float32, float32) { return 0, 0 }
