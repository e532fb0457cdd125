// Package camera provides the viewpoint module.
package camera

import (
	"github.com/go-gl/mathgl/mgl32"

	"github.com/zeusync/lightengine/internal/core/scene"
	"github.com/zeusync/lightengine/pkg/mathx"
)

// NearPlane is the near clip distance of every camera projection.
const NearPlane = 0.1

// Camera views the scene from its entity. With a non-zero Zoom the eye is
// pulled back along the look direction for a third-person view.
type Camera struct {
	scene.Base
	Zoom float32
}

func New() *Camera { return &Camera{} }

func (c *Camera) Capability() scene.Capability { return scene.CapCamera }

// State is the per-frame camera snapshot copied into the render queue.
type State struct {
	Position mgl32.Vec3
	Rotation mgl32.Vec3
	Look     mgl32.Vec3
	Zoom     float32
}

func (c *Camera) Snapshot(t scene.Transform) State {
	return State{Position: t.Position, Rotation: t.Rotation, Look: t.Look, Zoom: c.Zoom}
}

// Eye returns the viewer position: the entity position offset by -Zoom
// along the look direction with Z mirrored.
func (s State) Eye() mgl32.Vec3 {
	if s.Zoom == 0 {
		return s.Position
	}
	dir := mgl32.Vec3{s.Look.X(), s.Look.Y(), -s.Look.Z()}
	return s.Position.Add(dir.Mul(-s.Zoom))
}

// View returns the world-to-eye transform.
func (s State) View() mgl32.Mat4 {
	return mathx.ViewMatrix(s.Eye(), s.Rotation)
}

// ViewProjection returns perspective(fov, aspect, near, far) · view with the
// vertical field of view in degrees.
func (s State) ViewProjection(fovDegrees, aspect, renderDistance float32) mgl32.Mat4 {
	projection := mgl32.Perspective(mathx.Radians(fovDegrees), aspect, NearPlane, renderDistance)
	return projection.Mul4(s.View())
}
