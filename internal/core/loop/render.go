package loop

import (
	"context"
	"fmt"
	"time"

	"github.com/zeusync/lightengine/internal/core/gpu"
	"github.com/zeusync/lightengine/internal/core/input"
	"github.com/zeusync/lightengine/internal/core/observability/log"
	"github.com/zeusync/lightengine/internal/core/render"
	"github.com/zeusync/lightengine/internal/core/scene"
	"github.com/zeusync/lightengine/internal/core/state"
)

// fader is implemented by screens that animate between frames.
type fader interface {
	Advance(dt time.Duration)
}

// Render owns the surface. It must run on the goroutine that may call into
// the graphics backend, which for GLFW is the locked main thread.
type Render struct {
	open     gpu.Opener
	world    *scene.Registry
	state    *state.Controller
	renderer *render.Renderer
	input    *input.Mapper
	surfaces *SurfaceProvider
	logger   log.Log

	surface gpu.Surface
	clock   *Clock
	fps     RateCounter
	phase   phase
	metrics metrics
}

func NewRender(
	open gpu.Opener,
	world *scene.Registry,
	st *state.Controller,
	renderer *render.Renderer,
	mapper *input.Mapper,
	surfaces *SurfaceProvider,
	logger log.Log,
) *Render {
	return &Render{
		open:     open,
		world:    world,
		state:    st,
		renderer: renderer,
		input:    mapper,
		surfaces: surfaces,
		logger:   logger.With(log.Component("render")),
		clock:    NewClock(),
	}
}

func (r *Render) Phase() Phase     { return r.phase.load() }
func (r *Render) FPS() int         { return r.fps.Rate() }
func (r *Render) Metrics() Metrics { return r.metrics.snapshot() }

// Init opens the surface, installs the shader programs and hands the
// surface to the simulation loop.
func (r *Render) Init() error {
	r.phase.store(PhaseInit)
	surface, err := r.open()
	if err != nil {
		return fmt.Errorf("open surface: %w", err)
	}
	if err := r.renderer.Install(surface.Device()); err != nil {
		surface.Destroy()
		return err
	}
	r.surface = surface
	r.state.SetSurface(surface)
	r.surfaces.Publish(surface)

	w, h := surface.Size()
	r.logger.Info("surface ready", log.Int("width", w), log.Int("height", h))
	return nil
}

// Frame draws one frame. The world is drawn only when not loading; the
// loading screen is drawn on top of every frame while it is visible.
func (r *Render) Frame() error {
	if r.surface == nil {
		return ErrNotInitialized
	}
	started := time.Now()
	dt := r.clock.Delta()

	r.surface.PollEvents()
	if src := r.surface.Input(); src != nil {
		r.input.Sync(src)
	}

	device := r.surface.Device()
	width, height := r.surface.Size()
	device.SetViewport(width, height)
	device.Clear()

	if !r.state.Loading() {
		q := render.NewQueue()
		q.Populate(r.world)
		if err := r.renderer.RenderScene(q, width, height); err != nil {
			return fmt.Errorf("render scene: %w", err)
		}
	}

	if ls := r.world.LoadingScreen(); ls != nil {
		if f, ok := ls.(fader); ok {
			f.Advance(dt)
		}
		if ls.Visible() {
			r.renderer.DrawOverlay(render.ScreenElements(ls), width, height)
		}
	}

	r.surface.Present()
	now := time.Now()
	r.fps.Tick(now)
	r.metrics.record(started, now.Sub(started), r.fps.Rate())
	return nil
}

// Run initializes the loop and draws frames until the surface asks to close
// or ctx is done. Startup failures are returned; the engine is stopped on
// every return path.
func (r *Render) Run(ctx context.Context) error {
	defer r.phase.store(PhaseStopped)
	defer r.state.Stop()

	if err := r.Init(); err != nil {
		r.logger.Error("render startup failed", log.Error(err))
		return err
	}
	defer r.release()

	r.phase.store(PhaseRunning)
	for ctx.Err() == nil && !r.surface.CloseRequested() {
		if err := r.Frame(); err != nil {
			r.phase.store(PhaseStopping)
			return err
		}
	}
	r.phase.store(PhaseStopping)
	r.logger.Info("render stopped", log.Uint64("frames", r.metrics.snapshot().Iterations))
	return nil
}

func (r *Render) release() {
	r.renderer.Release()
	r.surface.Destroy()
}
