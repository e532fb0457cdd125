package content

import (
	"time"

	"github.com/go-gl/mathgl/mgl32"

	"github.com/zeusync/lightengine/internal/core/modules/interaction"
	"github.com/zeusync/lightengine/internal/core/modules/light"
	"github.com/zeusync/lightengine/internal/core/scene"
	"github.com/zeusync/lightengine/pkg/mathx"
)

const (
	stepInterval = 10 * time.Millisecond
	pause        = 200 * time.Millisecond

	zoomStep   = 0.083 // degrees of spot edge angle per step
	yawStep    = 0.15
	rollStep   = float32(360) / 700
	moveStep   = 0.05
	sinkOffset = 0.01
)

// Zoom widens the spot cone, narrows it past the start and widens it back.
func Zoom(spot *light.Spot) *interaction.Timeline {
	widen := func(deg float32) interaction.Step {
		return func(*scene.Entity) error {
			spot.SetAngleDegrees(mathx.Degrees(spot.Angle()) + deg)
			return nil
		}
	}
	return interaction.NewTimeline(
		interaction.Repeat(250, stepInterval, widen(zoomStep)),
		interaction.Wait(pause),
		interaction.Repeat(500, stepInterval, widen(-zoomStep)),
		interaction.Wait(pause),
		interaction.Repeat(250, stepInterval, widen(zoomStep)),
	)
}

// Rotate yaws the owner, rolls it a full turn and yaws back.
func Rotate() *interaction.Timeline {
	return interaction.NewTimeline(
		interaction.Repeat(200, stepInterval, turn(mgl32.Vec3{0, yawStep, 0})),
		interaction.Wait(pause),
		interaction.Repeat(700, stepInterval, turn(mgl32.Vec3{0, 0, rollStep})),
		interaction.Wait(pause),
		interaction.Repeat(200, stepInterval, turn(mgl32.Vec3{0, -yawStep, 0})),
	)
}

// Move walks the owner around a square, out and back along Z, ending where it
// started.
func Move() *interaction.Timeline {
	legs := []struct {
		n     int
		delta mgl32.Vec3
	}{
		{200, mgl32.Vec3{moveStep, 0, 0}},
		{200, mgl32.Vec3{0, -moveStep, 0}},
		{200, mgl32.Vec3{-moveStep, 0, 0}},
		{200, mgl32.Vec3{0, moveStep, 0}},
		{200, mgl32.Vec3{0, 0, moveStep}},
		{400, mgl32.Vec3{0, 0, -moveStep}},
		{200, mgl32.Vec3{0, 0, moveStep}},
	}
	phases := make([]interaction.Phase, 0, 2*len(legs))
	for i, leg := range legs {
		if i > 0 {
			phases = append(phases, interaction.Wait(pause))
		}
		phases = append(phases, interaction.Repeat(leg.n, stepInterval, shift(leg.delta)))
	}
	return interaction.NewTimeline(phases...)
}

// Sink lowers the owner a little on every tick it runs; meant for hold mode.
func Sink() interaction.Once {
	return interaction.Once(shift(mgl32.Vec3{0, -sinkOffset, 0}))
}

func shift(delta mgl32.Vec3) interaction.Step {
	return func(e *scene.Entity) error {
		e.Transform.Position = e.Transform.Position.Add(delta)
		return nil
	}
}

func turn(delta mgl32.Vec3) interaction.Step {
	return func(e *scene.Entity) error {
		e.Transform.Rotation = e.Transform.Rotation.Add(delta)
		e.Transform.DeriveLook()
		return nil
	}
}
