package gui

import (
	"errors"
	"fmt"
	"slices"
	"sync"
	"sync/atomic"

	"github.com/zeusync/lightengine/internal/core/events/bus"
	"github.com/zeusync/lightengine/internal/core/scene"
)

var _ scene.Screen = (*Screen)(nil)

// Screen groups elements that are shown and hidden together.
type Screen struct {
	mu       sync.RWMutex
	elements []Element
	visible  atomic.Bool
	subs     []bus.Subscription
}

func NewScreen(visible bool) *Screen {
	s := &Screen{}
	s.visible.Store(visible)
	return s
}

// Add appends elements in draw order.
func (s *Screen) Add(elements ...Element) *Screen {
	s.mu.Lock()
	s.elements = append(s.elements, elements...)
	s.mu.Unlock()
	return s
}

func (s *Screen) Show()         { s.visible.Store(true) }
func (s *Screen) Hide()         { s.visible.Store(false) }
func (s *Screen) Visible() bool { return s.visible.Load() }

// Items returns the elements in draw order.
func (s *Screen) Items() []Element {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return slices.Clone(s.elements)
}

func (s *Screen) Elements() []scene.Module {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]scene.Module, len(s.elements))
	for i, el := range s.elements {
		out[i] = el
	}
	return out
}

// Bind shows the screen on showOn and hides it on hideOn.
func (s *Screen) Bind(b bus.EventBus, showOn, hideOn string) error {
	return s.bind(b, showOn, func(bus.Event) error { s.Show(); return nil },
		hideOn, func(bus.Event) error { s.Hide(); return nil })
}

func (s *Screen) bind(b bus.EventBus, showOn string, show bus.EventHandler, hideOn string, hide bus.EventHandler) error {
	on, err := b.Subscribe(showOn, show)
	if err != nil {
		return fmt.Errorf("bind screen to %s: %w", showOn, err)
	}
	off, err := b.Subscribe(hideOn, hide)
	if err != nil {
		return errors.Join(fmt.Errorf("bind screen to %s: %w", hideOn, err), on.Cancel())
	}
	s.mu.Lock()
	s.subs = append(s.subs, on, off)
	s.mu.Unlock()
	return nil
}

// Unbind cancels the event subscriptions made by Bind.
func (s *Screen) Unbind() {
	s.mu.Lock()
	subs := s.subs
	s.subs = nil
	s.mu.Unlock()
	for _, sub := range subs {
		_ = sub.Cancel()
	}
}
