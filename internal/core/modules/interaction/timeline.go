package interaction

import (
	"time"

	"github.com/zeusync/lightengine/internal/core/scene"
)

// Behavior is a scripted effect on an entity advanced by simulation time.
type Behavior interface {
	// Advance moves the behavior forward by dt seconds and reports whether it
	// has finished.
	Advance(e *scene.Entity, dt float32) (done bool, err error)
	// Reset rewinds the behavior to its first step.
	Reset()
}

// Step mutates the entity once.
type Step func(e *scene.Entity) error

// Phase repeats Do Count times, one call every Interval. A phase without Do
// only waits.
type Phase struct {
	Count    int
	Interval float32
	Do       Step
}

// Repeat builds a phase calling do n times, every interval.
func Repeat(n int, every time.Duration, do Step) Phase {
	return Phase{Count: n, Interval: float32(every.Seconds()), Do: do}
}

// Wait builds a phase that only lets time pass.
func Wait(d time.Duration) Phase {
	return Phase{Count: 1, Interval: float32(d.Seconds())}
}

// Timeline runs phases back to back. It replaces sleeping worker threads
// with a state machine driven by tick delta time, so a long tick catches up
// by running several steps at once.
type Timeline struct {
	phases  []Phase
	index   int
	count   int
	elapsed float32
}

var _ Behavior = (*Timeline)(nil)

func NewTimeline(phases ...Phase) *Timeline {
	return &Timeline{phases: phases}
}

func (tl *Timeline) Reset() {
	tl.index, tl.count, tl.elapsed = 0, 0, 0
}

func (tl *Timeline) Advance(e *scene.Entity, dt float32) (bool, error) {
	tl.elapsed += dt
	for tl.index < len(tl.phases) {
		p := tl.phases[tl.index]
		for tl.count < p.Count && tl.elapsed >= p.Interval {
			tl.elapsed -= p.Interval
			tl.count++
			if p.Do != nil {
				if err := p.Do(e); err != nil {
					return true, err
				}
			}
		}
		if tl.count < p.Count {
			return false, nil
		}
		tl.index++
		tl.count = 0
	}
	tl.elapsed = 0
	return true, nil
}

// Once is a behavior applying step a single time per activation.
type Once Step

func (o Once) Advance(e *scene.Entity, _ float32) (bool, error) {
	return true, o(e)
}

func (Once) Reset() {}
