// Package engine assembles the world, the two loops and their collaborators
// and runs them until the surface closes or the context is cancelled.
package engine

import (
	"context"
	"errors"
	"fmt"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/zeusync/lightengine/internal/config"
	"github.com/zeusync/lightengine/internal/content"
	"github.com/zeusync/lightengine/internal/core/events/bus"
	"github.com/zeusync/lightengine/internal/core/input"
	"github.com/zeusync/lightengine/internal/core/loop"
	"github.com/zeusync/lightengine/internal/core/observability/log"
	"github.com/zeusync/lightengine/internal/core/render"
	"github.com/zeusync/lightengine/internal/core/scene"
	"github.com/zeusync/lightengine/internal/core/state"
	"github.com/zeusync/lightengine/internal/resource"
	"github.com/zeusync/lightengine/internal/script"
	"github.com/zeusync/lightengine/internal/telemetry"
)

// Telemetry control actions.
const (
	ActionPause      = "pause"
	ActionResume     = "resume"
	ActionMonochrome = "monochrome"
	ActionStop       = "stop"
)

const shutdownTimeout = 2 * time.Second

// Components are the collaborators an Engine is made of.
type Components struct {
	Config     *config.Config
	Logger     log.Log
	Bus        bus.EventBus
	State      *state.Controller
	World      *scene.Registry
	Input      *input.Mapper
	Resources  *resource.Store
	Renderer   *render.Renderer
	Surfaces   *loop.SurfaceProvider
	Simulation *loop.Simulation
	RenderLoop *loop.Render
	Scripts    *script.Library
	Telemetry  *telemetry.Hub
	Scene      content.Options
}

type Engine struct {
	Components
	logger  log.Log
	screens *content.Screens
}

// New sets up the GUI screens and the telemetry actions. The scene itself is
// loaded by Run behind the loading screen.
func New(c Components) (*Engine, error) {
	e := &Engine{
		Components: c,
		logger:     c.Logger.With(log.Component("engine")),
	}

	screens, err := content.SetupScreens(c.World, content.ScreenDeps{
		Bus:            c.Bus,
		State:          c.State,
		Renderer:       c.Renderer,
		LoadingTexture: c.Config.Loading.Texture,
		LoadingFade:    c.Config.Loading.FadeOut,
	})
	if err != nil {
		return nil, err
	}
	e.screens = screens

	c.Telemetry.Handle(ActionPause, func(telemetry.ControlMessage) error { c.State.Pause(); return nil })
	c.Telemetry.Handle(ActionResume, func(telemetry.ControlMessage) error { c.State.Resume(); return nil })
	c.Telemetry.Handle(ActionStop, func(telemetry.ControlMessage) error { c.State.Stop(); return nil })
	c.Telemetry.Handle(ActionMonochrome, func(msg telemetry.ControlMessage) error {
		c.Renderer.SetMonochrome(msg.Value)
		return nil
	})
	return e, nil
}

// Run shows the loading screen, loads the scene in the background, runs the
// simulation loop on its own goroutine and the render loop on the calling
// one. It must be called from the main OS thread when the surface requires
// it. Run returns once both loops have exited.
func (e *Engine) Run() error {
	ctx := e.State.Context()
	e.State.SetLoading(true)
	if err := e.Bus.Publish(bus.NewEvent(bus.EventInitialized, "engine", nil)); err != nil {
		e.logger.Warn("initialized handlers failed", log.Error(err))
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error { return e.Simulation.Run(gctx) })
	g.Go(func() error { return e.load() })
	if e.Config.Scripts.Watch && e.Config.Scripts.Dir != "" {
		g.Go(func() error { return e.watchScripts(gctx) })
	}
	if e.Config.Telemetry.Enabled {
		if err := e.Telemetry.Start(e.Config.Telemetry.ListenAddr); err != nil {
			e.logger.Warn("telemetry disabled", log.Error(err))
		} else {
			g.Go(func() error { return e.Telemetry.Stream(gctx, e.Config.Telemetry.Interval, e.Snapshot) })
		}
	}

	renderErr := e.RenderLoop.Run(gctx)
	e.State.Stop()
	waitErr := g.Wait()
	e.shutdown()

	sim, frames := e.Simulation.Metrics(), e.RenderLoop.Metrics()
	e.logger.Info("engine finished",
		log.Uint64("ticks", sim.Iterations),
		log.Uint64("frames", frames.Iterations),
		log.Duration("avg_tick", sim.AverageTime),
		log.Duration("avg_frame", frames.AverageTime))

	if err := errors.Join(renderErr, waitErr); err != nil {
		return fmt.Errorf("engine: %w", err)
	}
	return nil
}

// load builds the scene and ends the loading phase. The scene is flushed into
// the live list first so the first frame after loading sizes the shadow maps
// to the whole scene. The simulation neither flushes nor updates while
// loading, so the flush cannot race a tick.
func (e *Engine) load() error {
	start := time.Now()
	n, err := content.Build(e.World, e.Scene, content.Deps{Scripts: e.Scripts, Logger: e.Logger})
	if err == nil {
		err = e.World.FlushAdds()
	}
	if err != nil {
		e.State.Stop()
		return fmt.Errorf("load scene: %w", err)
	}
	e.State.SetLoading(false)
	e.logger.Info("scene loaded", log.Int("entities", n), log.Duration("took", time.Since(start)))
	return nil
}

// watchScripts reloads scripts until ctx is done. Watcher failures disable
// hot reload but keep the engine running.
func (e *Engine) watchScripts(ctx context.Context) error {
	if err := e.Scripts.Watch(ctx, e.Config.Scripts.Dir); err != nil {
		e.logger.Warn("script hot reload disabled", log.Error(err))
	}
	return nil
}

// Snapshot collects the current statistics for telemetry.
func (e *Engine) Snapshot() telemetry.Snapshot {
	stats := e.Renderer.Stats()
	return telemetry.Snapshot{
		Time:       time.Now(),
		TPS:        e.Simulation.TPS(),
		FPS:        e.RenderLoop.FPS(),
		Entities:   e.World.Len(),
		Lights:     stats.Lights,
		Meshes:     stats.Meshes,
		ShadowMaps: stats.ShadowMaps,
		Paused:     e.State.Paused(),
		Loading:    e.State.Loading(),
		Monochrome: e.Renderer.Monochrome(),
	}
}

// Close releases everything Run would have; for engines that never ran.
func (e *Engine) Close() {
	e.State.Stop()
	e.shutdown()
}

func (e *Engine) shutdown() {
	e.screens.Unbind()
	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := e.Telemetry.Stop(ctx); err != nil {
		e.logger.Warn("telemetry shutdown", log.Error(err))
	}
}
