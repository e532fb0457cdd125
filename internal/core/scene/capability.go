package scene

import "fmt"

// Capability is the closed set of module variants. An entity holds at most
// one module per capability that is visible to lookups; later duplicates are
// still updated but Module returns the first.
type Capability uint8

const (
	CapMovement Capability = iota + 1
	CapCamera
	CapLight
	CapRenderable
	CapController
	CapInteraction
	CapGUI
)

func (c Capability) String() string {
	switch c {
	case CapMovement:
		return "movement"
	case CapCamera:
		return "camera"
	case CapLight:
		return "light"
	case CapRenderable:
		return "renderable"
	case CapController:
		return "controller"
	case CapInteraction:
		return "interaction"
	case CapGUI:
		return "gui"
	default:
		return fmt.Sprintf("capability(%d)", uint8(c))
	}
}
