package scene

import (
	"github.com/go-gl/mathgl/mgl32"

	"github.com/zeusync/lightengine/internal/core/input"
)

// Tick is the per-iteration context handed to every Updater.
type Tick struct {
	// Delta is the time since the previous tick in seconds.
	Delta  float32
	Paused bool
	Input  input.Reader
	World  *Registry

	// Focus is the position of the first controlled entity at the start of
	// the tick; HasFocus is false when there is none.
	Focus    mgl32.Vec3
	HasFocus bool
}

// Screen is a group of GUI elements the render loop draws while visible.
type Screen interface {
	Visible() bool
	Elements() []Module
}
