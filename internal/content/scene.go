package content

import (
	"errors"
	"fmt"
	"math/rand/v2"
	"strings"

	"github.com/go-gl/mathgl/mgl32"

	"github.com/zeusync/lightengine/internal/core/input"
	"github.com/zeusync/lightengine/internal/core/modules/camera"
	"github.com/zeusync/lightengine/internal/core/modules/control"
	"github.com/zeusync/lightengine/internal/core/modules/interaction"
	"github.com/zeusync/lightengine/internal/core/modules/light"
	"github.com/zeusync/lightengine/internal/core/modules/mesh"
	"github.com/zeusync/lightengine/internal/core/modules/movement"
	"github.com/zeusync/lightengine/internal/core/observability/log"
	"github.com/zeusync/lightengine/internal/core/scene"
	"github.com/zeusync/lightengine/internal/script"
)

var ErrNoScripts = errors.New("scripted object without a script library")

// Interaction events of the demo scene.
const (
	EventZoom   = "zoom"
	EventRotate = "rotate"
	EventMove   = "move"
	EventSink   = "sink"
)

const (
	interactionRange = 20
	colorStrength    = 400
	colorAngle       = 25
	spotTransition   = 0.2
)

// Deps are the collaborators the scene needs beyond the registry.
type Deps struct {
	Scripts *script.Library
	Logger  log.Log
}

// Bindings returns the keys for the scene's interaction events.
func Bindings(opts Options) map[string][]input.Key {
	keys := map[string][]input.Key{
		EventZoom:   {"Z"},
		EventRotate: {"R"},
		EventMove:   {"M"},
		EventSink:   {"N"},
	}
	for _, s := range opts.Scripted {
		if s.Key != "" {
			ev := s.event()
			keys[ev] = append(keys[ev], input.Key(strings.ToUpper(s.Key)))
		}
	}
	return keys
}

// Build queues the demo scene on reg and returns the number of entities
// created. Entities become live at the registry's next FlushAdds.
func Build(reg *scene.Registry, opts Options, deps Deps) (int, error) {
	opts.Normalize()
	if deps.Logger == nil {
		deps.Logger = log.NewNop()
	}
	b := &builder{reg: reg, opts: opts, deps: deps}
	if opts.Seed != 0 {
		b.rng = rand.New(rand.NewPCG(opts.Seed, opts.Seed))
	}

	b.player()
	b.statics()
	b.spotLights()
	b.directionalLights()
	b.colorLights()
	b.props()
	b.scripted()

	if b.err != nil {
		return b.created, b.err
	}
	deps.Logger.Info("scene queued",
		log.Int("entities", b.created),
		log.Int("spot_lights", opts.SpotLights),
		log.Int("directional_lights", opts.DirectionalLights),
		log.Int("color_lights", opts.ColorLights))
	return b.created, nil
}

type builder struct {
	reg  *scene.Registry
	opts Options
	deps Deps
	rng  *rand.Rand

	created int
	err     error
}

func (b *builder) spawn(pos, rot mgl32.Vec3, mods ...scene.Module) {
	if b.err != nil {
		return
	}
	eb := b.reg.Create(pos, rot)
	for _, m := range mods {
		eb.Attach(m)
	}
	if _, err := eb.Finalize(); err != nil {
		b.err = fmt.Errorf("build entity at %v: %w", pos, err)
		return
	}
	b.created++
}

// jitter returns a random integer in [lo, hi], or zero without a seed.
func (b *builder) jitter(lo, hi int) float32 {
	if b.rng == nil {
		return 0
	}
	return float32(lo + b.rng.IntN(hi-lo+1))
}

// alternate spreads the i-th object left and right of a center line.
func alternate(i int, step float32) float32 {
	if i%2 == 0 {
		return step * float32(i)
	}
	return -step * float32(i)
}

func (b *builder) player() {
	forces := movement.Forces{0.5, 0.5, 0.5, 0.5, 0.5, 0.5, 0}
	b.spawn(mgl32.Vec3{0, 5, 0}, mgl32.Vec3{},
		movement.New(),
		mesh.New("sphere"),
		control.NewManual(forces, true),
		camera.New(),
	)
}

func (b *builder) statics() {
	b.spawn(mgl32.Vec3{}, mgl32.Vec3{}, mesh.New("bigPlane", mesh.WithShine(0.2, 8)))
	b.spawn(mgl32.Vec3{0, 10, 60}, mgl32.Vec3{90, 0, 0}, mesh.New("plane"))
	b.spawn(mgl32.Vec3{0, 2.5, -20}, mgl32.Vec3{},
		mesh.New("monkey"),
		interaction.New("sink", EventSink, Sink(), interaction.WithHold(),
			interaction.WithRange(10), interaction.WithLogger(b.deps.Logger)),
	)
}

func (b *builder) spotLights() {
	n := b.opts.SpotLights
	for i := 0; i < n; i++ {
		spot := light.NewSpot(light.White(500/float32(n)), b.opts.SpotAngle, spotTransition).
			WithSpecular(false).
			WithShadow(b.opts.Shadows)
		b.spawn(mgl32.Vec3{15 + alternate(i, 2.5), 30, 10}, mgl32.Vec3{45, 180, 0},
			mesh.New("sphere2", mesh.WithEmissive(1)), spot)
	}
}

func (b *builder) directionalLights() {
	n := b.opts.DirectionalLights
	for i := 0; i < n; i++ {
		sun := light.NewDirectional(light.White(300 / float32(n))).WithShadow(b.opts.Shadows)
		b.spawn(mgl32.Vec3{35 - 35*float32(i), 30, 20 * float32(i)}, mgl32.Vec3{45, 180 + 90*float32(i), 0},
			mesh.New("sphere2", mesh.WithEmissive(1)), sun)
	}
}

var colorPositions = [MaxColorLights]mgl32.Vec3{{0, 20, 40}, {-7.5, 30, 40}, {7.5, 30, 40}}

// colorLights places up to three colored spot lights, each with its own
// interaction. With a seed the light kinds are shuffled across positions.
func (b *builder) colorLights() {
	kinds := []string{EventZoom, EventRotate, EventMove}
	if b.rng != nil {
		b.rng.Shuffle(len(kinds), func(i, j int) { kinds[i], kinds[j] = kinds[j], kinds[i] })
	}
	for i := 0; i < b.opts.ColorLights; i++ {
		var (
			color    mgl32.Vec4
			behavior interaction.Behavior
		)
		spot := light.NewSpot(mgl32.Vec4{}, colorAngle, spotTransition).
			WithSpecular(false).
			WithShadow(b.opts.Shadows)
		switch kinds[i] {
		case EventZoom:
			color = mgl32.Vec4{1, 0, 0, colorStrength}
			behavior = Zoom(spot)
		case EventRotate:
			color = mgl32.Vec4{0, 1, 0, colorStrength}
			behavior = Rotate()
		case EventMove:
			color = mgl32.Vec4{0, 0, 1, colorStrength}
			behavior = Move()
		}
		spot.SetColor(color)
		b.spawn(colorPositions[i], mgl32.Vec3{0, 180, 0},
			mesh.New("sphere2", mesh.WithColor(color.Vec3().Vec4(1)), mesh.WithEmissive(1)),
			spot,
			interaction.New(kinds[i], kinds[i], behavior,
				interaction.WithRange(interactionRange), interaction.WithLogger(b.deps.Logger)),
		)
	}
}

func (b *builder) props() {
	for i := 0; i < b.opts.Spheres; i++ {
		b.spawn(mgl32.Vec3{20 + alternate(i, 2.5), 10 + b.jitter(-1, 1)*5, 30}, mgl32.Vec3{},
			mesh.New("sphere", mesh.WithShine(0.6, 16)))
	}
	for i := 0; i < b.opts.Monkeys; i++ {
		b.spawn(mgl32.Vec3{20 + alternate(i, 5), 2.5, 30 + b.jitter(-2, 5)*5}, mgl32.Vec3{0, 180, 0},
			mesh.New("monkey"))
	}
}

func (b *builder) scripted() {
	for _, s := range b.opts.Scripted {
		if b.deps.Scripts == nil {
			b.err = fmt.Errorf("%s: %w", s.Script, ErrNoScripts)
			return
		}
		geometry := s.Geometry
		if geometry == "" {
			geometry = "cube"
		}
		opts := []interaction.Option{interaction.WithRange(s.Range), interaction.WithLogger(b.deps.Logger)}
		if s.Hold {
			opts = append(opts, interaction.WithHold())
		}
		behavior := script.NewBehavior(b.deps.Scripts, s.Script, b.deps.Logger)
		b.spawn(vec(s.Position), vec(s.Rotation),
			mesh.New(geometry),
			interaction.New(s.Script, s.event(), behavior, opts...),
		)
	}
}
