package engine

import (
	"github.com/spaghettifunk/lume/engine/core"
)

// DefaultFixedTimestep is the simulation step used when the
// configuration does not specify one.
const DefaultFixedTimestep = 1.0 / 60.0

// DefaultMaxUpdatesPerAdvance bounds how many catch-up updates a single
// frame may run after a stall, before excess time is discarded.
const DefaultMaxUpdatesPerAdvance = 8

// Timestep accumulates real time and converts it into a whole number of
// fixed-size simulation steps, so game logic sees a constant dt no
// matter how the frame rate wobbles.
type Timestep struct {
	fixedDT     float64
	maxSteps    int
	accumulator float64
	simTime     float64
}

func NewTimestep(fixedDT float64, maxSteps int) (*Timestep, error) {
	if fixedDT <= 0 {
		return nil, core.ConfigErrorf("fixed timestep must be positive, got %f", fixedDT)
	}
	if maxSteps < 1 {
		return nil, core.ConfigErrorf("max updates per advance must be at least 1, got %d", maxSteps)
	}
	return &Timestep{
		fixedDT:  fixedDT,
		maxSteps: maxSteps,
	}, nil
}

func (t *Timestep) FixedDT() float64 {
	return t.fixedDT
}

// SimTime is the total simulated time: steps taken times the fixed dt.
func (t *Timestep) SimTime() float64 {
	return t.simTime
}

// Advance adds a frame's real time and runs update once per whole fixed
// step accumulated. The accumulator is clamped to maxSteps worth of time
// first, discarding the excess, so a long stall cannot trigger an
// update spiral. It returns the number of updates run and the blend
// factor in [0,1): how far into the next step the leftover time sits,
// for interpolating render state between the last two updates.
func (t *Timestep) Advance(realDT float64, update func(dt float64) error) (int, float64, error) {
	if realDT > 0 {
		t.accumulator += realDT
	}

	limit := float64(t.maxSteps) * t.fixedDT
	if t.accumulator > limit {
		t.accumulator = limit
	}

	steps := 0
	for t.accumulator >= t.fixedDT {
		t.accumulator -= t.fixedDT
		t.simTime += t.fixedDT
		steps++
		if update != nil {
			if err := update(t.fixedDT); err != nil {
				return steps, t.alpha(), err
			}
		}
	}
	return steps, t.alpha(), nil
}

func (t *Timestep) alpha() float64 {
	return t.accumulator / t.fixedDT
}
