package sim

import (
	"context"
	"time"

	"github.com/msalah0e/lattice/internal/semantic"
)

// Loop drives one Simulation from a single goroutine: a frame ticker and a
// semantic ticker share one select, so frames and semantic cycles never run
// at the same time. Input reaches the simulation only through Do.
type Loop struct {
	Sim              *Simulation
	FrameInterval    time.Duration
	SemanticInterval time.Duration

	// Do carries mutations (pointer moves, resizes) onto the loop goroutine.
	Do chan func(*Simulation)

	OnFrame func(*Simulation)
	OnCycle func([]semantic.Edge)
}

// NewLoop creates a loop at fps frames per second.
func NewLoop(s *Simulation, fps int, semanticInterval time.Duration) *Loop {
	if fps <= 0 {
		fps = 60
	}
	return &Loop{
		Sim:              s,
		FrameInterval:    time.Second / time.Duration(fps),
		SemanticInterval: semanticInterval,
		Do:               make(chan func(*Simulation), 16),
	}
}

// Run blocks until ctx is cancelled. Both tickers are stopped on return.
func (l *Loop) Run(ctx context.Context) error {
	frame := time.NewTicker(l.FrameInterval)
	defer frame.Stop()
	cycle := time.NewTicker(l.SemanticInterval)
	defer cycle.Stop()

	last := time.Now()
	for {
		select {
		case <-ctx.Done():
			return nil
		case fn := <-l.Do:
			fn(l.Sim)
		case now := <-frame.C:
			l.Sim.Frame(now.Sub(last))
			last = now
			if l.OnFrame != nil {
				l.OnFrame(l.Sim)
			}
		case <-cycle.C:
			edges := l.Sim.SemanticCycle()
			if l.OnCycle != nil {
				l.OnCycle(edges)
			}
		}
	}
}
