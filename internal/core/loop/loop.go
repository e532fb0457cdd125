// Package loop runs the two long-lived engine loops: the simulation loop,
// which advances the world, and the render loop, which owns the surface and
// draws snapshots of the world.
package loop

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"time"

	"github.com/zeusync/lightengine/internal/core/gpu"
)

var (
	ErrSurfaceTimeout = errors.New("timed out waiting for the render surface")
	ErrNotInitialized = errors.New("render loop not initialized")
)

// surfacePoll is the sleep between checks for the render surface.
const surfacePoll = 10 * time.Millisecond

// Phase is the lifecycle position of a loop.
type Phase uint32

const (
	PhaseIdle Phase = iota
	PhaseWaitingForSurface
	PhaseInit
	PhaseRunning
	PhaseStopping
	PhaseStopped
)

func (p Phase) String() string {
	switch p {
	case PhaseIdle:
		return "idle"
	case PhaseWaitingForSurface:
		return "waitingForSurface"
	case PhaseInit:
		return "init"
	case PhaseRunning:
		return "running"
	case PhaseStopping:
		return "stopping"
	case PhaseStopped:
		return "stopped"
	default:
		return "unknown"
	}
}

type phase struct{ v atomic.Uint32 }

func (p *phase) load() Phase   { return Phase(p.v.Load()) }
func (p *phase) store(v Phase) { p.v.Store(uint32(v)) }

// Metrics describes the iterations a loop has run.
type Metrics struct {
	Iterations    uint64
	TotalTime     time.Duration
	AverageTime   time.Duration
	MaxTime       time.Duration
	MinTime       time.Duration
	LastIteration time.Time
	Rate          int
}

type metrics struct {
	mu sync.Mutex
	m  Metrics
}

func (m *metrics) record(started time.Time, took time.Duration, rate int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.m.Iterations++
	m.m.TotalTime += took
	m.m.AverageTime = m.m.TotalTime / time.Duration(m.m.Iterations)
	if took > m.m.MaxTime {
		m.m.MaxTime = took
	}
	if m.m.MinTime == 0 || took < m.m.MinTime {
		m.m.MinTime = took
	}
	m.m.LastIteration = started
	m.m.Rate = rate
}

func (m *metrics) snapshot() Metrics {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.m
}

// SurfaceProvider hands the surface opened by the render loop to the
// simulation loop.
type SurfaceProvider struct {
	mu      sync.RWMutex
	surface gpu.Surface
}

func NewSurfaceProvider() *SurfaceProvider {
	return &SurfaceProvider{}
}

func (p *SurfaceProvider) Publish(s gpu.Surface) {
	p.mu.Lock()
	p.surface = s
	p.mu.Unlock()
}

func (p *SurfaceProvider) Surface() (gpu.Surface, bool) {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.surface, p.surface != nil
}

// Wait polls for the surface until it is published, ctx is done or timeout
// elapses. A zero timeout waits indefinitely.
func (p *SurfaceProvider) Wait(ctx context.Context, timeout time.Duration) (gpu.Surface, error) {
	var deadline <-chan time.Time
	if timeout > 0 {
		timer := time.NewTimer(timeout)
		defer timer.Stop()
		deadline = timer.C
	}
	ticker := time.NewTicker(surfacePoll)
	defer ticker.Stop()
	for {
		if s, ok := p.Surface(); ok {
			return s, nil
		}
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-deadline:
			return nil, ErrSurfaceTimeout
		case <-ticker.C:
		}
	}
}
