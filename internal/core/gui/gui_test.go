package gui

import (
	"testing"
	"time"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/zeusync/lightengine/internal/core/events/bus"
	"github.com/zeusync/lightengine/internal/core/input"
	"github.com/zeusync/lightengine/internal/core/scene"
)

func TestScreenFollowsEvents(t *testing.T) {
	b := bus.New()
	menu := NewScreen(false)
	require.NoError(t, menu.Bind(b, bus.EventGamePaused, bus.EventGameResumed))

	require.NoError(t, b.Publish(bus.NewEvent(bus.EventGamePaused, "test", nil)))
	assert.True(t, menu.Visible())
	require.NoError(t, b.Publish(bus.NewEvent(bus.EventGameResumed, "test", nil)))
	assert.False(t, menu.Visible())

	menu.Unbind()
	require.NoError(t, b.Publish(bus.NewEvent(bus.EventGamePaused, "test", nil)))
	assert.False(t, menu.Visible())
}

func TestBindOnClosedBus(t *testing.T) {
	b := bus.New()
	require.NoError(t, b.Close())
	assert.ErrorIs(t, NewScreen(true).Bind(b, "a", "b"), bus.ErrBusClosed)
}

func TestScreenElements(t *testing.T) {
	s := NewScreen(true)
	p := NewPanel(mgl32.Vec2{-1, -1}, mgl32.Vec2{0, 0}, mgl32.Vec4{1, 0, 0, 1})
	s.Add(p)

	els := s.Elements()
	require.Len(t, els, 1)
	assert.Equal(t, scene.CapGUI, els[0].Capability())
	draws := p.Draws(Viewport{Width: 10, Height: 10})
	require.Len(t, draws, 1)
	assert.Equal(t, mgl32.Vec2{0, 0}, draws[0].Quad.Max)
}

type fakePauser struct{ paused bool }

func (f *fakePauser) Paused() bool { return f.paused }
func (f *fakePauser) Pause()       { f.paused = true }
func (f *fakePauser) Resume()      { f.paused = false }

func TestPauseToggle(t *testing.T) {
	state := &fakePauser{}
	toggle := NewPauseToggle(state)
	in := input.NewMapper()

	in.Press(input.PauseGame)
	in.Advance()
	toggle.Update(&scene.Tick{Input: in})
	assert.True(t, state.paused)

	in.Advance()
	toggle.Update(&scene.Tick{Input: in})
	assert.True(t, state.paused, "held key toggles once")

	in.Release(input.PauseGame)
	in.Press(input.PauseGame)
	in.Advance()
	toggle.Update(&scene.Tick{Input: in, Paused: true})
	assert.False(t, state.paused, "toggle works while paused")
}

type fakeMono struct{ on bool }

func (f *fakeMono) Monochrome() bool      { return f.on }
func (f *fakeMono) SetMonochrome(on bool) { f.on = on }

func TestMonochromeToggle(t *testing.T) {
	target := &fakeMono{}
	toggle := NewMonochromeToggle(target)
	in := input.NewMapper()
	in.Press(input.Mono)
	in.Advance()
	toggle.Update(&scene.Tick{Input: in})
	assert.True(t, target.on)
	assert.Empty(t, toggle.Draws(Viewport{}))
}

func TestLoadingScreenFade(t *testing.T) {
	b := bus.New()
	l := NewLoadingScreen("loadingScreen", 100*time.Millisecond)
	require.NoError(t, l.Bind(b))
	assert.True(t, l.Visible())

	require.NoError(t, b.Publish(bus.NewEvent(bus.EventLoadingStopped, "test", nil)))
	assert.True(t, l.Visible(), "fades instead of vanishing")

	l.Advance(50 * time.Millisecond)
	assert.InDelta(t, 0.5, l.Alpha(), 1e-4)
	assert.True(t, l.Visible())

	l.Advance(60 * time.Millisecond)
	assert.False(t, l.Visible())
	assert.Zero(t, l.Alpha())

	require.NoError(t, b.Publish(bus.NewEvent(bus.EventLoadingStarted, "test", nil)))
	assert.True(t, l.Visible())
	assert.Equal(t, float32(1), l.Alpha())
}

func TestLoadingScreenWithoutFade(t *testing.T) {
	l := NewLoadingScreen("bg", 0)
	l.Stop()
	assert.False(t, l.Visible())
}

func TestLoadingBackgroundLayout(t *testing.T) {
	l := NewLoadingScreen("bg", 0)
	items := l.Items()
	require.Len(t, items, 1)
	assert.Len(t, l.Elements(), 1)

	sized := Viewport{
		Width: 800, Height: 600,
		TextureSize: func(name string) (int, int, bool) { return 400, 150, name == "bg" },
	}
	draws := items[0].Draws(sized)
	require.Len(t, draws, 2)
	assert.Equal(t, "bg", draws[1].Texture)
	assert.InDelta(t, 0.5, draws[1].Quad.Max.X(), 1e-6)
	assert.InDelta(t, 0.25, draws[1].Quad.Max.Y(), 1e-6)

	draws = items[0].Draws(Viewport{Width: 800, Height: 600})
	require.Len(t, draws, 1)
	assert.Empty(t, draws[0].Texture, "unknown texture draws a plain quad")
}
