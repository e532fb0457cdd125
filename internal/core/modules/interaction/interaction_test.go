package interaction

import (
	"errors"
	"testing"
	"time"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/zeusync/lightengine/internal/core/input"
	"github.com/zeusync/lightengine/internal/core/scene"
)

func nudge(dx float32) Step {
	return func(e *scene.Entity) error {
		e.Transform.Position[0] += dx
		return nil
	}
}

func TestTimelineRunsPhasesInOrder(t *testing.T) {
	e := &scene.Entity{}
	tl := NewTimeline(
		Repeat(3, 10*time.Millisecond, nudge(1)),
		Wait(20*time.Millisecond),
		Repeat(2, 10*time.Millisecond, nudge(-1)),
	)

	done, err := tl.Advance(e, 0.005)
	require.NoError(t, err)
	assert.False(t, done)
	assert.Equal(t, float32(0), e.Transform.Position.X())

	done, _ = tl.Advance(e, 0.026) // 31ms total: three steps
	assert.False(t, done)
	assert.Equal(t, float32(3), e.Transform.Position.X())

	done, _ = tl.Advance(e, 0.030) // wait consumed, one step back
	assert.False(t, done)
	assert.Equal(t, float32(2), e.Transform.Position.X())

	done, _ = tl.Advance(e, 0.010)
	assert.True(t, done)
	assert.Equal(t, float32(1), e.Transform.Position.X())

	tl.Reset()
	done, _ = tl.Advance(e, 1)
	assert.True(t, done, "a long tick catches up the whole timeline")
	assert.Equal(t, float32(2), e.Transform.Position.X())
}

func TestTimelineStepError(t *testing.T) {
	boom := errors.New("boom")
	tl := NewTimeline(Repeat(5, 0, func(e *scene.Entity) error { return boom }))
	done, err := tl.Advance(&scene.Entity{}, 0)
	assert.True(t, done)
	assert.ErrorIs(t, err, boom)
}

type harness struct {
	reg    *scene.Registry
	in     *input.Mapper
	entity *scene.Entity
	module *Module
}

func newHarness(t *testing.T, b Behavior, opts ...Option) *harness {
	t.Helper()
	r := scene.NewRegistry()
	m := New("test", "use", b, opts...)
	e, err := r.Create(mgl32.Vec3{}, mgl32.Vec3{}).Attach(m).Finalize()
	require.NoError(t, err)
	require.NoError(t, r.FlushAdds())
	return &harness{reg: r, in: input.NewMapper(), entity: e, module: m}
}

func (h *harness) tick(dt float32) {
	h.in.Advance()
	h.reg.Update(scene.Tick{Delta: dt, Input: h.in})
}

func TestTriggerRunsToCompletion(t *testing.T) {
	h := newHarness(t, NewTimeline(Repeat(4, 100*time.Millisecond, nudge(1))))

	h.tick(0.1)
	assert.False(t, h.module.Running())

	h.in.Press("use")
	h.tick(0.1)
	assert.True(t, h.module.Running())
	assert.Equal(t, float32(0), h.entity.Transform.Position.X(), "starts advancing on the next tick")

	h.in.Release("use")
	for i := 0; i < 4; i++ {
		h.tick(0.1)
	}
	assert.False(t, h.module.Running())
	assert.Equal(t, float32(4), h.entity.Transform.Position.X())
	assert.Equal(t, 1, h.module.Runs())
}

func TestRetriggerWhileRunningIgnored(t *testing.T) {
	h := newHarness(t, NewTimeline(Repeat(10, 100*time.Millisecond, nudge(1))))
	h.in.Press("use")
	h.tick(0.1)
	h.in.Release("use")
	h.tick(0.1)
	h.in.Press("use")
	h.tick(0.1)
	assert.Equal(t, 1, h.module.Runs())
}

func TestSingleActivation(t *testing.T) {
	h := newHarness(t, Once(nudge(1)), Single())
	for i := 0; i < 3; i++ {
		h.in.Press("use")
		h.tick(0.1)
		h.tick(0.1)
		h.in.Release("use")
		h.tick(0.1)
	}
	assert.Equal(t, 1, h.module.Runs())
	assert.Equal(t, float32(1), h.entity.Transform.Position.X())
}

func TestFailingBehaviorStopsOnlyItself(t *testing.T) {
	calls := 0
	h := newHarness(t, Once(func(e *scene.Entity) error {
		calls++
		e.Transform.Position[1] = 7
		return errors.New("script error")
	}))
	other := New("other", "use", Once(nudge(1)))
	e2 := h.reg.Create(mgl32.Vec3{}, mgl32.Vec3{}).Attach(other).MustFinalize()
	require.NoError(t, h.reg.FlushAdds())

	h.in.Press("use")
	h.tick(0.1)
	h.tick(0.1)

	assert.Equal(t, 1, calls)
	assert.False(t, h.module.Running())
	assert.Equal(t, float32(7), h.entity.Transform.Position.Y(), "entity keeps applied state")
	assert.Equal(t, float32(1), e2.Transform.Position.X())
}

func TestHoldAdvancesWhilePressed(t *testing.T) {
	h := newHarness(t, Once(nudge(-0.5)), WithHold())

	h.in.Press("use")
	h.tick(0.1)
	h.tick(0.1)
	h.tick(0.1)
	assert.Equal(t, float32(-1.5), h.entity.Transform.Position.X())

	h.in.Release("use")
	h.tick(0.1)
	assert.Equal(t, float32(-1.5), h.entity.Transform.Position.X())
	assert.False(t, h.module.Running())
}

func TestRangeNeedsFocus(t *testing.T) {
	h := newHarness(t, Once(nudge(1)), WithRange(10))
	h.in.Press("use")
	h.tick(0.1)
	assert.Equal(t, 0, h.module.Runs(), "no controlled entity, no focus")

	h.in.Release("use")
	h.tick(0.1)

	h.reg.Create(mgl32.Vec3{0, 0, 20}, mgl32.Vec3{}).Attach(&focus{}).MustFinalize()
	require.NoError(t, h.reg.FlushAdds())
	h.in.Press("use")
	h.tick(0.1)
	assert.Equal(t, 0, h.module.Runs(), "focus out of range")

	h.in.Release("use")
	h.tick(0.1)
	h.entity.Transform.Position = mgl32.Vec3{0, 0, 15}
	h.in.Press("use")
	h.tick(0.1)
	assert.Equal(t, 1, h.module.Runs())
}

func TestPausedIgnoresTrigger(t *testing.T) {
	h := newHarness(t, Once(nudge(1)))
	h.in.Press("use")
	h.in.Advance()
	h.reg.Update(scene.Tick{Delta: 0.1, Input: h.in, Paused: true})
	assert.Equal(t, 0, h.module.Runs())
}

func TestCancelKeepsState(t *testing.T) {
	h := newHarness(t, NewTimeline(Repeat(10, 100*time.Millisecond, nudge(1))))
	h.in.Press("use")
	h.tick(0.1)
	h.tick(0.1)
	h.tick(0.1)
	h.module.Cancel()
	h.tick(0.1)
	assert.False(t, h.module.Running())
	assert.Equal(t, float32(2), h.entity.Transform.Position.X())
}

type focus struct{ scene.Base }

func (*focus) Capability() scene.Capability { return scene.CapController }
