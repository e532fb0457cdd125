package loop

import (
	"context"
	"errors"
	"fmt"
	"runtime"
	"time"

	"github.com/zeusync/lightengine/internal/core/input"
	"github.com/zeusync/lightengine/internal/core/observability/log"
	"github.com/zeusync/lightengine/internal/core/scene"
	"github.com/zeusync/lightengine/internal/core/state"
)

type SimulationConfig struct {
	// TickRate limits ticks per second; zero runs unthrottled.
	TickRate       int
	SurfaceTimeout time.Duration
}

// Simulation advances the world once per tick. While the engine is loading
// the world is left untouched.
type Simulation struct {
	world    *scene.Registry
	state    *state.Controller
	input    *input.Mapper
	surfaces *SurfaceProvider
	cfg      SimulationConfig
	logger   log.Log

	clock   *Clock
	tps     RateCounter
	phase   phase
	metrics metrics
}

func NewSimulation(
	world *scene.Registry,
	st *state.Controller,
	mapper *input.Mapper,
	surfaces *SurfaceProvider,
	cfg SimulationConfig,
	logger log.Log,
) *Simulation {
	return &Simulation{
		world:    world,
		state:    st,
		input:    mapper,
		surfaces: surfaces,
		cfg:      cfg,
		logger:   logger.With(log.Component("simulation")),
		clock:    NewClock(),
	}
}

func (s *Simulation) Phase() Phase     { return s.phase.load() }
func (s *Simulation) TPS() int         { return s.tps.Rate() }
func (s *Simulation) Metrics() Metrics { return s.metrics.snapshot() }

// Step runs one tick: pending additions become live, every entity updates,
// then pending removals are applied.
func (s *Simulation) Step() error {
	started := time.Now()
	dt := s.clock.Delta()
	s.input.Advance()

	if !s.state.Loading() {
		if err := s.world.FlushAdds(); err != nil {
			return fmt.Errorf("flush additions: %w", err)
		}
		s.world.Update(scene.Tick{
			Delta:  float32(dt.Seconds()),
			Paused: s.state.Paused(),
			Input:  s.input,
		})
		if err := s.world.FlushRemovals(); err != nil {
			return fmt.Errorf("flush removals: %w", err)
		}
	}

	now := time.Now()
	s.tps.Tick(now)
	s.metrics.record(started, now.Sub(started), s.tps.Rate())
	return nil
}

// Run waits for the render surface, then ticks until the surface asks to
// close or ctx is done. It always stops the engine on return.
func (s *Simulation) Run(ctx context.Context) error {
	defer s.phase.store(PhaseStopped)
	defer s.state.Stop()

	s.phase.store(PhaseWaitingForSurface)
	surface, err := s.surfaces.Wait(ctx, s.cfg.SurfaceTimeout)
	if err != nil {
		if errors.Is(err, context.Canceled) {
			return nil
		}
		s.logger.Error("no render surface", log.Error(err), log.Duration("timeout", s.cfg.SurfaceTimeout))
		return fmt.Errorf("simulation: %w", err)
	}

	s.phase.store(PhaseRunning)
	s.logger.Info("simulation started", log.Int("tick_rate", s.cfg.TickRate))

	var pace <-chan time.Time
	if s.cfg.TickRate > 0 {
		ticker := time.NewTicker(time.Second / time.Duration(s.cfg.TickRate))
		defer ticker.Stop()
		pace = ticker.C
	}

	for ctx.Err() == nil && !surface.CloseRequested() {
		if err := s.Step(); err != nil {
			s.phase.store(PhaseStopping)
			return fmt.Errorf("simulation: %w", err)
		}
		if pace == nil {
			runtime.Gosched()
			continue
		}
		select {
		case <-ctx.Done():
		case <-pace:
		}
	}

	s.phase.store(PhaseStopping)
	s.logger.Info("simulation stopped", log.Uint64("ticks", s.metrics.snapshot().Iterations))
	return nil
}
