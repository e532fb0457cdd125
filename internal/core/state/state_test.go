package state

import (
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/zeusync/lightengine/internal/core/events/bus"
	"github.com/zeusync/lightengine/internal/core/observability/log"
)

type recorder struct {
	mu     sync.Mutex
	events []string
}

func (r *recorder) handle(e bus.Event) error {
	r.mu.Lock()
	r.events = append(r.events, e.Type())
	r.mu.Unlock()
	return nil
}

func (r *recorder) list() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]string(nil), r.events...)
}

func newController(t *testing.T) (*Controller, *recorder) {
	t.Helper()
	b := bus.New()
	rec := &recorder{}
	for _, typ := range []string{
		bus.EventLoadingStarted, bus.EventLoadingStopped,
		bus.EventGamePaused, bus.EventGameResumed, bus.EventGameStopped,
	} {
		_, err := b.Subscribe(typ, rec.handle)
		require.NoError(t, err)
	}
	return New(context.Background(), b, log.NewNop()), rec
}

type pointer struct{ captured bool }

func (p *pointer) SetPointerCaptured(on bool) { p.captured = on }

func TestSetLoadingFiresOnEdgesOnly(t *testing.T) {
	c, rec := newController(t)

	c.SetLoading(true)
	c.SetLoading(true)
	assert.Equal(t, []string{bus.EventLoadingStarted}, rec.list())
	assert.True(t, c.Loading())

	c.SetLoading(false)
	c.SetLoading(false)
	assert.Equal(t, []string{bus.EventLoadingStarted, bus.EventLoadingStopped}, rec.list())
}

func TestPauseResumeCapturesPointer(t *testing.T) {
	c, rec := newController(t)
	p := &pointer{}
	c.SetSurface(p)
	assert.True(t, p.captured)

	c.Pause()
	c.Pause()
	assert.True(t, c.Paused())
	assert.False(t, p.captured)

	c.Resume()
	assert.False(t, c.Paused())
	assert.True(t, p.captured)
	assert.Equal(t, []string{bus.EventGamePaused, bus.EventGameResumed}, rec.list())
}

func TestStopOnce(t *testing.T) {
	c, rec := newController(t)

	var wg sync.WaitGroup
	for i := 0; i < 4; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			c.Stop()
		}()
	}
	wg.Wait()

	assert.Equal(t, []string{bus.EventGameStopped}, rec.list())
	assert.True(t, c.Stopped())
	assert.ErrorIs(t, c.Context().Err(), context.Canceled)
	assert.ErrorIs(t, c.Bus().Publish(bus.NewEvent("x", "test", nil)), bus.ErrBusClosed)
}

func TestParentCancellation(t *testing.T) {
	parent, cancel := context.WithCancel(context.Background())
	c := New(parent, bus.New(), log.NewNop())
	cancel()
	<-c.Context().Done()
	assert.False(t, c.Stopped())
}
