// Package gui provides screen-space overlays: screens of elements shown and
// hidden by engine events, the loading screen and the always-on controls.
package gui

import (
	"github.com/go-gl/mathgl/mgl32"

	"github.com/zeusync/lightengine/internal/core/gpu"
	"github.com/zeusync/lightengine/internal/core/input"
	"github.com/zeusync/lightengine/internal/core/scene"
)

// Viewport describes the frame an element lays itself out in.
type Viewport struct {
	Width, Height int
	// TextureSize reports the pixel size of a named texture.
	TextureSize func(name string) (w, h int, ok bool)
}

// Draw is one overlay rectangle, textured when Texture names a known image.
type Draw struct {
	Quad    gpu.Quad
	Texture string
}

// Element is a GUI module. Elements live on screens, not on entities.
type Element interface {
	scene.Module
	Draws(v Viewport) []Draw
}

// Widget is embedded by elements.
type Widget struct {
	scene.Base
}

func (*Widget) Capability() scene.Capability { return scene.CapGUI }

func (*Widget) Draws(Viewport) []Draw { return nil }

// Panel is a flat rectangle in normalized device coordinates.
type Panel struct {
	Widget
	Min, Max mgl32.Vec2
	Color    mgl32.Vec4
	Texture  string
}

func NewPanel(min, max mgl32.Vec2, color mgl32.Vec4) *Panel {
	return &Panel{Min: min, Max: max, Color: color}
}

func (p *Panel) Draws(Viewport) []Draw {
	return []Draw{{Quad: gpu.Quad{Min: p.Min, Max: p.Max, Color: p.Color}, Texture: p.Texture}}
}

// Pauser is the engine state seen by PauseToggle.
type Pauser interface {
	Paused() bool
	Pause()
	Resume()
}

// PauseToggle flips pause on every pauseGame trigger. It draws nothing and
// belongs on an always visible screen.
type PauseToggle struct {
	Widget
	state Pauser
}

func NewPauseToggle(state Pauser) *PauseToggle {
	return &PauseToggle{state: state}
}

func (p *PauseToggle) Update(t *scene.Tick) {
	if !t.Input.Triggered(input.PauseGame) {
		return
	}
	if p.state.Paused() {
		p.state.Resume()
	} else {
		p.state.Pause()
	}
}

// Monochromer is the renderer setting flipped by MonochromeToggle.
type Monochromer interface {
	Monochrome() bool
	SetMonochrome(on bool)
}

// MonochromeToggle flips monochrome rendering on every monochrome trigger.
type MonochromeToggle struct {
	Widget
	target Monochromer
}

func NewMonochromeToggle(target Monochromer) *MonochromeToggle {
	return &MonochromeToggle{target: target}
}

func (m *MonochromeToggle) Update(t *scene.Tick) {
	if t.Input.Triggered(input.Mono) {
		m.target.SetMonochrome(!m.target.Monochrome())
	}
}
