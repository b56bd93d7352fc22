// Package bench steps several independent simulations headlessly and
// summarises how they behaved.
package bench

import (
	"context"
	"fmt"
	"io"
	"math"
	"os"
	"time"

	"github.com/guptarohit/asciigraph"
	"github.com/shirou/gopsutil/v3/cpu"
	"github.com/shirou/gopsutil/v3/process"

	"github.com/msalah0e/lattice/internal/config"
	"github.com/msalah0e/lattice/internal/fields"
	"github.com/msalah0e/lattice/internal/geometry"
	"github.com/msalah0e/lattice/internal/parallel"
	"github.com/msalah0e/lattice/internal/sim"
)

// CycleEvery is the number of frames between semantic cycles, which is what
// a 3s interval amounts to at 60fps.
const CycleEvery = 180

// Options controls a bench run.
type Options struct {
	Seeds       []int64
	Frames      int
	FrameDT     time.Duration
	Concurrency int
	Progress    io.Writer
}

// Run holds what one seeded simulation did.
type Run struct {
	Seed          int64
	SessionID     string
	AvgForce      float64
	PeakForce     float64
	SemanticEdges int
	Cycles        int
	Transitions   int
	FinalEvent    fields.EventState
	Force         []float64 // mean force per frame
	Elapsed       time.Duration
	Err           error
}

// Report collects every run plus process-level figures.
type Report struct {
	Runs     []Run
	Wall     time.Duration
	CPUTime  time.Duration
	CPUCores int
}

// CPUPercent is process CPU time over wall time, scaled so one saturated
// core reads 100.
func (r Report) CPUPercent() float64 {
	if r.Wall <= 0 {
		return 0
	}
	return 100 * r.CPUTime.Seconds() / r.Wall.Seconds()
}

// Execute runs one simulation per seed, each on its own procedural grid.
func Execute(ctx context.Context, cfg *config.Config, opts Options) (Report, error) {
	if len(opts.Seeds) == 0 {
		return Report{}, fmt.Errorf("bench: no seeds")
	}
	if opts.Frames <= 0 {
		return Report{}, fmt.Errorf("bench: frames must be positive, got %d", opts.Frames)
	}
	if opts.FrameDT <= 0 {
		opts.FrameDT = time.Second / 60
	}

	tasks := make([]parallel.Task[Run], len(opts.Seeds))
	for i, seed := range opts.Seeds {
		tasks[i] = parallel.Task[Run]{
			Name: fmt.Sprintf("seed %d", seed),
			Fn: func(ctx context.Context) (Run, error) {
				return step(ctx, cfg, seed, opts.Frames, opts.FrameDT)
			},
		}
	}

	before := cpuTime()
	start := time.Now()
	results := parallel.Run(ctx, tasks, opts.Concurrency, opts.Progress)
	rep := Report{Wall: time.Since(start)}
	if after := cpuTime(); after > before {
		rep.CPUTime = after - before
	}
	if n, err := cpu.Counts(true); err == nil {
		rep.CPUCores = n
	}

	for i, r := range results {
		run := r.Value
		run.Seed = opts.Seeds[i]
		run.Elapsed = r.Elapsed
		run.Err = r.Err
		rep.Runs = append(rep.Runs, run)
	}
	return rep, nil
}

func step(ctx context.Context, base *config.Config, seed int64, frames int, dt time.Duration) (Run, error) {
	cfg := *base
	cfg.Seed = seed
	w, h := cfg.Viewport.Width, cfg.Viewport.Height
	s := sim.New(&cfg, geometry.BuildGrid(w, h, cfg.Geometry), w, h)

	run := Run{SessionID: s.Session.ID, Force: make([]float64, 0, frames)}
	var sum float64
	for f := 1; f <= frames; f++ {
		if f%60 == 0 {
			if err := ctx.Err(); err != nil {
				return run, err
			}
		}
		// Orbit the pointer so the field has something to follow.
		t := s.Elapsed()
		s.SetPointer(w*(0.5+0.3*math.Cos(t*0.4)), h*(0.5+0.3*math.Sin(t*0.55)))
		s.Frame(dt)
		if f%CycleEvery == 0 {
			s.SemanticCycle()
		}

		d := s.Diagnostics()
		run.Force = append(run.Force, d.AvgForce)
		sum += d.AvgForce
		if d.AvgForce > run.PeakForce {
			run.PeakForce = d.AvgForce
		}
	}

	d := s.Diagnostics()
	run.AvgForce = sum / float64(frames)
	run.SemanticEdges = d.SemanticEdges
	run.Cycles = d.Cycles
	run.Transitions = d.Transitions
	run.FinalEvent = d.Event
	return run, nil
}

func cpuTime() time.Duration {
	p, err := process.NewProcess(int32(os.Getpid()))
	if err != nil {
		return 0
	}
	ts, err := p.Times()
	if err != nil {
		return 0
	}
	return time.Duration((ts.User + ts.System) * float64(time.Second))
}

// Downsample averages series into at most width buckets.
func Downsample(series []float64, width int) []float64 {
	if width <= 0 || len(series) <= width {
		return append([]float64(nil), series...)
	}
	out := make([]float64, width)
	for b := range out {
		lo := b * len(series) / width
		hi := (b + 1) * len(series) / width
		var sum float64
		for _, v := range series[lo:hi] {
			sum += v
		}
		out[b] = sum / float64(hi-lo)
	}
	return out
}

// Plot renders the mean force trace of run as an ASCII chart.
func Plot(run Run, width, height int) string {
	if len(run.Force) == 0 {
		return ""
	}
	return asciigraph.Plot(Downsample(run.Force, width),
		asciigraph.Height(height),
		asciigraph.Width(width),
		asciigraph.Caption(fmt.Sprintf("mean force, seed %d", run.Seed)))
}
