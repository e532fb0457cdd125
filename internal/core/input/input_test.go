package input

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeSource struct {
	down   map[Key]bool
	dx, dy float64
}

func (f *fakeSource) KeyDown(k Key) bool { return f.down[k] }

func (f *fakeSource) CursorDelta() (float64, float64) {
	dx, dy := f.dx, f.dy
	f.dx, f.dy = 0, 0
	return dx, dy
}

func TestTriggeredLastsOneTick(t *testing.T) {
	m := NewMapper()
	m.Bind("zoom", "Z")
	src := &fakeSource{down: map[Key]bool{"Z": true}}

	m.Sync(src)
	assert.True(t, m.Pressed("zoom"))
	assert.False(t, m.Triggered("zoom"), "edge is published on the next Advance")

	m.Advance()
	assert.True(t, m.Triggered("zoom"))
	assert.True(t, m.Triggered("zoom"), "reading does not consume the edge")

	m.Sync(src)
	m.Advance()
	assert.False(t, m.Triggered("zoom"), "held key does not retrigger")
	assert.True(t, m.Pressed("zoom"))

	src.down["Z"] = false
	m.Sync(src)
	m.Advance()
	assert.False(t, m.Pressed("zoom"))

	src.down["Z"] = true
	m.Sync(src)
	m.Advance()
	assert.True(t, m.Triggered("zoom"))
}

func TestAnyBoundKeyPresses(t *testing.T) {
	m := NewMapper()
	m.Bind("up", "SPACE", "E")
	m.Sync(&fakeSource{down: map[Key]bool{"E": true}})
	assert.True(t, m.Pressed("up"))
}

func TestPointerDeltaAccumulatesPerTick(t *testing.T) {
	m := NewMapper()
	src := &fakeSource{dx: 3, dy: -1}
	m.Sync(src)
	src.dx = 2
	m.Sync(src)
	m.MovePointer(1, 1)
	m.Advance()

	dx, dy := m.PointerDelta()
	assert.Equal(t, float32(6), dx)
	assert.Equal(t, float32(0), dy)

	m.Advance()
	dx, dy = m.PointerDelta()
	assert.Zero(t, dx)
	assert.Zero(t, dy)
}

func TestPressRelease(t *testing.T) {
	m := NewMapper()
	m.Press(PauseGame)
	m.Advance()
	require.True(t, m.Triggered(PauseGame))
	m.Release(PauseGame)
	m.Advance()
	assert.False(t, m.Triggered(PauseGame))
	assert.False(t, m.Pressed(PauseGame))
}

func TestDefaultBindingsOverride(t *testing.T) {
	m := NewMapper()
	DefaultBindings(m, map[string][]Key{Forward: {"UP"}, "zoom": {"Z"}})

	assert.Contains(t, m.Events(), "zoom")
	m.Sync(&fakeSource{down: map[Key]bool{"W": true}})
	assert.False(t, m.Pressed(Forward))
	m.Sync(&fakeSource{down: map[Key]bool{"UP": true}})
	assert.True(t, m.Pressed(Forward))
}

func TestNoneReader(t *testing.T) {
	assert.False(t, None.Pressed(Forward))
	assert.False(t, None.Triggered(Forward))
}
