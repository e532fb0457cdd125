package scene

import (
	"testing"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stub struct {
	Base
	capability Capability
	sawAtInit  map[Capability]bool
	updates    int
	destroyed  bool
	onUpdate   func(t *Tick)
}

func newStub(c Capability) *stub {
	return &stub{capability: c, sawAtInit: make(map[Capability]bool)}
}

func (p *stub) Capability() Capability { return p.capability }

func (p *stub) Init(owner *Entity) {
	for _, c := range []Capability{CapMovement, CapCamera, CapLight, CapRenderable, CapController} {
		p.sawAtInit[c] = owner.Has(c)
	}
}

func (p *stub) Update(t *Tick) {
	p.updates++
	if p.onUpdate != nil {
		p.onUpdate(t)
	}
}

func (p *stub) Destroy() { p.destroyed = true }

func tick(r *Registry) {
	_ = r.FlushAdds()
	r.Update(Tick{Delta: 0.016})
	_ = r.FlushRemovals()
}

func TestInitSeesOnlyEarlierModules(t *testing.T) {
	r := NewRegistry()
	first := newStub(CapMovement)
	second := newStub(CapCamera)
	third := newStub(CapController)

	e, err := r.Create(mgl32.Vec3{}, mgl32.Vec3{}).Attach(first).Attach(second).Attach(third).Finalize()
	require.NoError(t, err)

	assert.False(t, first.sawAtInit[CapMovement], "a module does not see itself during init")
	assert.True(t, second.sawAtInit[CapMovement])
	assert.False(t, second.sawAtInit[CapCamera])
	assert.False(t, second.sawAtInit[CapController])
	assert.True(t, third.sawAtInit[CapCamera])

	assert.Same(t, e, first.Owner())
	assert.Equal(t, e.ID(), second.OwnerID())
	assert.Len(t, e.Modules(), 3)
	assert.True(t, e.Has(CapController))
}

func TestFind(t *testing.T) {
	r := NewRegistry()
	p := newStub(CapLight)
	e := r.Create(mgl32.Vec3{}, mgl32.Vec3{}).Attach(p).MustFinalize()

	got, ok := Find[*stub](e, CapLight)
	require.True(t, ok)
	assert.Same(t, p, got)

	_, ok = Find[*stub](e, CapCamera)
	assert.False(t, ok)
	_, ok = Find[*stub](nil, CapLight)
	assert.False(t, ok)
}

func TestBuilderErrors(t *testing.T) {
	r := NewRegistry()
	p := newStub(CapMovement)
	b := r.Create(mgl32.Vec3{}, mgl32.Vec3{}).Attach(p)
	_, err := b.Finalize()
	require.NoError(t, err)

	_, err = b.Attach(newStub(CapCamera)).Finalize()
	assert.ErrorIs(t, err, ErrFinalized)

	_, err = r.Create(mgl32.Vec3{}, mgl32.Vec3{}).Attach(p).Finalize()
	assert.ErrorIs(t, err, ErrAlreadyAttached)

	_, err = r.Create(mgl32.Vec3{}, mgl32.Vec3{}).Attach(nil).Finalize()
	assert.ErrorIs(t, err, ErrNilModule)
}

func TestFailedFinalizeReleasesModules(t *testing.T) {
	r := NewRegistry()
	cam := newStub(CapCamera)
	_, err := r.Create(mgl32.Vec3{}, mgl32.Vec3{}).Attach(cam).Attach(nil).Finalize()
	require.ErrorIs(t, err, ErrNilModule)
	assert.Zero(t, cam.OwnerID())

	e, err := r.Create(mgl32.Vec3{}, mgl32.Vec3{}).Attach(cam).Finalize()
	require.NoError(t, err)
	assert.Same(t, e, cam.Owner())
	adds, _ := r.Pending()
	assert.Equal(t, 1, adds, "only the retried entity is queued")
}

func TestCreateDerivesLook(t *testing.T) {
	r := NewRegistry()
	e := r.Create(mgl32.Vec3{1, 2, 3}, mgl32.Vec3{0, 90, 0}).MustFinalize()
	assert.InDelta(t, 1, e.Transform.Look.X(), 1e-5)
	assert.InDelta(t, 0, e.Transform.Look.Z(), 1e-5)
}

func TestAddVisibleFromNextTick(t *testing.T) {
	r := NewRegistry()
	var spawned *stub
	spawner := newStub(CapMovement)
	spawner.onUpdate = func(tk *Tick) {
		if spawned != nil {
			return
		}
		spawned = newStub(CapRenderable)
		tk.World.Create(mgl32.Vec3{}, mgl32.Vec3{}).Attach(spawned).MustFinalize()
	}
	r.Create(mgl32.Vec3{}, mgl32.Vec3{}).Attach(spawner).MustFinalize()

	assert.Equal(t, 0, r.Len(), "finalize only queues the entity")

	tick(r)
	require.NotNil(t, spawned)
	assert.Equal(t, 1, r.Len())
	assert.Equal(t, 0, spawned.updates, "entity added during a tick is not updated in that tick")

	tick(r)
	assert.Equal(t, 2, r.Len())
	assert.Equal(t, 1, spawned.updates)
}

func TestRemoveAppliedAfterUpdate(t *testing.T) {
	r := NewRegistry()
	victim := newStub(CapRenderable)
	victimEntity := r.Create(mgl32.Vec3{}, mgl32.Vec3{}).Attach(victim).MustFinalize()
	killer := newStub(CapMovement)
	killer.onUpdate = func(tk *Tick) { tk.World.RequestRemove(victimEntity) }
	r.Create(mgl32.Vec3{}, mgl32.Vec3{}).Attach(killer).MustFinalize()

	tick(r)
	assert.Equal(t, 1, victim.updates, "removal requested mid-tick keeps the entity for the rest of the tick")
	assert.Equal(t, 1, r.Len())
	assert.True(t, victim.destroyed)
	assert.True(t, victimEntity.Removed())

	tick(r)
	assert.Equal(t, 1, victim.updates)
}

func TestRemoveBeforeAdd(t *testing.T) {
	r := NewRegistry()
	p := newStub(CapMovement)
	e := r.Create(mgl32.Vec3{}, mgl32.Vec3{}).Attach(p).MustFinalize()
	r.RequestRemove(e)
	r.RequestRemove(e)

	tick(r)
	assert.Equal(t, 0, r.Len())
	assert.Equal(t, 0, p.updates)
	adds, removals := r.Pending()
	assert.Zero(t, adds)
	assert.Zero(t, removals)
}

func TestReentrantFlushRejected(t *testing.T) {
	r := NewRegistry()
	var addErr, removeErr error
	p := newStub(CapMovement)
	p.onUpdate = func(tk *Tick) {
		addErr = tk.World.FlushAdds()
		removeErr = tk.World.FlushRemovals()
	}
	r.Create(mgl32.Vec3{}, mgl32.Vec3{}).Attach(p).MustFinalize()

	tick(r)
	assert.ErrorIs(t, addErr, ErrReentrantFlush)
	assert.ErrorIs(t, removeErr, ErrReentrantFlush)
}

func TestFocusIsFirstController(t *testing.T) {
	r := NewRegistry()
	r.Create(mgl32.Vec3{9, 9, 9}, mgl32.Vec3{}).Attach(newStub(CapRenderable)).MustFinalize()
	r.Create(mgl32.Vec3{1, 2, 3}, mgl32.Vec3{}).Attach(newStub(CapController)).MustFinalize()

	_, ok := r.Focus()
	assert.False(t, ok)

	var seen mgl32.Vec3
	p := newStub(CapMovement)
	p.onUpdate = func(tk *Tick) { seen = tk.Focus }
	r.Create(mgl32.Vec3{}, mgl32.Vec3{}).Attach(p).MustFinalize()

	tick(r)
	pos, ok := r.Focus()
	require.True(t, ok)
	assert.Equal(t, mgl32.Vec3{1, 2, 3}, pos)
	assert.Equal(t, pos, seen)
}

type fakeScreen struct {
	visible  bool
	elements []Module
}

func (s *fakeScreen) Visible() bool      { return s.visible }
func (s *fakeScreen) Elements() []Module { return s.elements }

func TestVisibleScreenElementsUpdate(t *testing.T) {
	r := NewRegistry()
	shown := newStub(CapGUI)
	hidden := newStub(CapGUI)
	r.AddScreen(&fakeScreen{visible: true, elements: []Module{shown}})
	r.AddScreen(&fakeScreen{visible: false, elements: []Module{hidden}})
	loading := &fakeScreen{}
	r.SetLoadingScreen(loading)

	tick(r)
	assert.Equal(t, 1, shown.updates)
	assert.Equal(t, 0, hidden.updates)
	assert.Len(t, r.Screens(), 2)
	assert.Same(t, loading, r.LoadingScreen())
}

func TestCapabilityString(t *testing.T) {
	assert.Equal(t, "light", CapLight.String())
	assert.Equal(t, "capability(99)", Capability(99).String())
}
