// Package render turns a snapshot of the world into GPU draws: a shadow pass
// per light followed by a lit pass for the camera, then the GUI overlays.
package render

import (
	"github.com/go-gl/mathgl/mgl32"

	"github.com/zeusync/lightengine/internal/core/gui"
	"github.com/zeusync/lightengine/internal/core/modules/camera"
	"github.com/zeusync/lightengine/internal/core/modules/light"
	"github.com/zeusync/lightengine/internal/core/modules/mesh"
	"github.com/zeusync/lightengine/internal/core/scene"
)

type CameraItem struct {
	Entity scene.EntityID
	camera.State
}

type LightItem struct {
	Entity    scene.EntityID
	Position  mgl32.Vec3
	Rotation  mgl32.Vec3
	Direction mgl32.Vec3
	light.Params
}

type MeshItem struct {
	Entity   scene.EntityID
	Position mgl32.Vec3
	Rotation mgl32.Vec3
	Geometry string
	Material mesh.Material
}

// Queue is everything one frame draws. It holds copies, so it stays valid
// after the world guard is released, and is discarded after the frame.
type Queue struct {
	Camera *CameraItem
	Lights []LightItem
	Meshes []MeshItem
	GUI    []gui.Element
}

func NewQueue() *Queue {
	return &Queue{}
}

// Populate snapshots the live entities under the world read guard and
// appends the elements of every visible screen. The first camera wins.
func (q *Queue) Populate(reg *scene.Registry) {
	reg.View(func(entities []*scene.Entity) {
		for _, e := range entities {
			q.addEntity(e)
		}
	})
	for _, s := range reg.Screens() {
		if s.Visible() {
			q.GUI = append(q.GUI, ScreenElements(s)...)
		}
	}
}

func (q *Queue) addEntity(e *scene.Entity) {
	t := e.Transform
	for _, m := range e.Modules() {
		switch m.Capability() {
		case scene.CapCamera:
			c, ok := m.(*camera.Camera)
			if ok && q.Camera == nil {
				q.Camera = &CameraItem{Entity: e.ID(), State: c.Snapshot(t)}
			}
		case scene.CapLight:
			if src, ok := m.(light.Source); ok {
				q.Lights = append(q.Lights, LightItem{
					Entity:    e.ID(),
					Position:  t.Position,
					Rotation:  t.Rotation,
					Direction: t.Look,
					Params:    src.Params(),
				})
			}
		case scene.CapRenderable:
			if r, ok := m.(*mesh.Renderable); ok {
				q.Meshes = append(q.Meshes, MeshItem{
					Entity:   e.ID(),
					Position: t.Position,
					Rotation: t.Rotation,
					Geometry: r.Geometry,
					Material: r.Material,
				})
			}
		default:
		}
	}
}

// ScreenElements returns the drawable elements of s in draw order.
func ScreenElements(s scene.Screen) []gui.Element {
	modules := s.Elements()
	out := make([]gui.Element, 0, len(modules))
	for _, m := range modules {
		if el, ok := m.(gui.Element); ok {
			out = append(out, el)
		}
	}
	return out
}
