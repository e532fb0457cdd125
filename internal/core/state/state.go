// Package state holds the engine lifecycle flags and fires the matching bus
// events when they change.
package state

import (
	"context"
	"sync"
	"sync/atomic"

	"github.com/zeusync/lightengine/internal/core/events/bus"
	"github.com/zeusync/lightengine/internal/core/observability/log"
)

const source = "engine"

// PointerCapturer is the part of the surface that grabs the mouse.
type PointerCapturer interface {
	SetPointerCaptured(captured bool)
}

// Controller is shared by both loops. Every transition publishes its event
// only when the flag actually changes.
type Controller struct {
	bus    bus.EventBus
	logger log.Log

	paused  atomic.Bool
	loading atomic.Bool

	surfaceMu sync.RWMutex
	surface   PointerCapturer

	ctx      context.Context
	cancel   context.CancelFunc
	stopOnce sync.Once
	stopped  atomic.Bool
}

// New derives the engine context from parent. Cancelling parent has the same
// effect on the loops as Stop, without the gameStopped event.
func New(parent context.Context, b bus.EventBus, logger log.Log) *Controller {
	ctx, cancel := context.WithCancel(parent)
	return &Controller{
		bus:    b,
		logger: logger.With(log.Component("state")),
		ctx:    ctx,
		cancel: cancel,
	}
}

// Context is cancelled by Stop.
func (c *Controller) Context() context.Context { return c.ctx }

func (c *Controller) Bus() bus.EventBus { return c.bus }

// SetSurface sets the surface whose pointer capture follows pause state.
func (c *Controller) SetSurface(s PointerCapturer) {
	c.surfaceMu.Lock()
	c.surface = s
	c.surfaceMu.Unlock()
	if s != nil {
		s.SetPointerCaptured(!c.Paused())
	}
}

func (c *Controller) Loading() bool { return c.loading.Load() }
func (c *Controller) Paused() bool  { return c.paused.Load() }
func (c *Controller) Stopped() bool { return c.stopped.Load() }

// SetLoading fires loadingStarted or loadingStopped on a change.
func (c *Controller) SetLoading(loading bool) {
	if c.loading.Swap(loading) == loading {
		return
	}
	if loading {
		c.publish(bus.EventLoadingStarted)
	} else {
		c.publish(bus.EventLoadingStopped)
	}
}

// Pause releases the pointer and fires gamePaused.
func (c *Controller) Pause() {
	if !c.paused.CompareAndSwap(false, true) {
		return
	}
	c.capture(false)
	c.publish(bus.EventGamePaused)
}

// Resume captures the pointer and fires gameResumed.
func (c *Controller) Resume() {
	if !c.paused.CompareAndSwap(true, false) {
		return
	}
	c.capture(true)
	c.publish(bus.EventGameResumed)
}

// Stop fires gameStopped, cancels the engine context and closes the bus.
// Only the first call has an effect.
func (c *Controller) Stop() {
	c.stopOnce.Do(func() {
		c.stopped.Store(true)
		c.publish(bus.EventGameStopped)
		c.cancel()
		if err := c.bus.Close(); err != nil {
			c.logger.Warn("close event bus", log.Error(err))
		}
		c.logger.Info("engine stopped")
	})
}

func (c *Controller) capture(on bool) {
	c.surfaceMu.RLock()
	s := c.surface
	c.surfaceMu.RUnlock()
	if s != nil {
		s.SetPointerCaptured(on)
	}
}

func (c *Controller) publish(typ string) {
	c.logger.Debug("lifecycle event", log.String("event", typ))
	if err := c.bus.Publish(bus.NewEvent(typ, source, nil)); err != nil {
		c.logger.Warn("event handler failed", log.String("event", typ), log.Error(err))
	}
}
