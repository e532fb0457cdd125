package content

import (
	"errors"
	"fmt"
	"time"

	"github.com/go-gl/mathgl/mgl32"

	"github.com/zeusync/lightengine/internal/core/events/bus"
	"github.com/zeusync/lightengine/internal/core/gui"
	"github.com/zeusync/lightengine/internal/core/scene"
)

// Screens are the GUI screens of the demo.
type Screens struct {
	// Always is visible at all times and carries the pause and monochrome
	// toggles.
	Always *gui.Screen
	// InGame is shown while running and hidden while paused.
	InGame *gui.Screen
	// Menu is shown while paused.
	Menu    *gui.Screen
	Loading *gui.LoadingScreen
}

// ScreenDeps are what the toggles act on.
type ScreenDeps struct {
	Bus            bus.EventBus
	State          gui.Pauser
	Renderer       gui.Monochromer
	LoadingTexture string
	LoadingFade    time.Duration
}

// SetupScreens builds the screens, binds them to the engine events and
// registers them on reg.
func SetupScreens(reg *scene.Registry, deps ScreenDeps) (*Screens, error) {
	s := &Screens{
		Always: gui.NewScreen(true).Add(
			gui.NewPauseToggle(deps.State),
			gui.NewMonochromeToggle(deps.Renderer),
		),
		InGame: gui.NewScreen(true).Add(
			// crosshair
			gui.NewPanel(mgl32.Vec2{-0.004, -0.006}, mgl32.Vec2{0.004, 0.006}, mgl32.Vec4{1, 1, 1, 0.8}),
		),
		Menu: gui.NewScreen(false).Add(
			gui.NewPanel(mgl32.Vec2{-1, -1}, mgl32.Vec2{1, 1}, mgl32.Vec4{0, 0, 0, 0.5}),
			gui.NewPanel(mgl32.Vec2{-0.3, -0.2}, mgl32.Vec2{0.3, 0.2}, mgl32.Vec4{0.15, 0.15, 0.2, 0.9}),
		),
		Loading: gui.NewLoadingScreen(deps.LoadingTexture, deps.LoadingFade),
	}

	err := errors.Join(
		s.InGame.Bind(deps.Bus, bus.EventGameResumed, bus.EventGamePaused),
		s.Menu.Bind(deps.Bus, bus.EventGamePaused, bus.EventGameResumed),
		s.Loading.Bind(deps.Bus),
	)
	if err != nil {
		s.Unbind()
		return nil, fmt.Errorf("bind screens: %w", err)
	}

	reg.AddScreen(s.Menu)
	reg.AddScreen(s.InGame)
	reg.AddScreen(s.Always)
	reg.SetLoadingScreen(s.Loading)
	return s, nil
}

func (s *Screens) Unbind() {
	s.InGame.Unbind()
	s.Menu.Unbind()
	s.Loading.Unbind()
}
