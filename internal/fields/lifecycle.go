package fields

import (
	"math"

	"github.com/msalah0e/lattice/internal/config"
)

// EventState is the global excitement state.
type EventState int

const (
	Idle EventState = iota
	Ignite
	Hold
	Release
	Residue
)

var eventStateNames = [...]string{"idle", "ignite", "hold", "release", "residue"}

func (s EventState) String() string {
	if s < 0 || int(s) >= len(eventStateNames) {
		return "unknown"
	}
	return eventStateNames[s]
}

// EventActivity blends the mean of the five hottest focus values with the
// mean connector value.
func EventActivity(focus, connector []float64) float64 {
	return 0.6*TopMean(focus, 5) + 0.4*Mean(connector)
}

// Lifecycle is the idle→ignite→hold→release→residue→idle state machine that
// gates global excitement. Times are in seconds.
type Lifecycle struct {
	cfg config.LifecycleConfig

	State       EventState
	Gain        float64
	Elapsed     float64 // time in the current state
	Now         float64
	Transitions int

	silenceUntil  float64
	cooldownUntil float64
}

// NewLifecycle starts idle with zero gain.
func NewLifecycle(cfg config.LifecycleConfig) *Lifecycle {
	return &Lifecycle{cfg: cfg}
}

func ms(v int) float64 { return float64(v) / 1000 }

// Silenced reports whether a post-residue hush is in effect.
func (l *Lifecycle) Silenced() bool { return l.Now < l.silenceUntil }

// CoolingDown reports whether a new silence window is currently blocked.
func (l *Lifecycle) CoolingDown() bool { return l.Now < l.cooldownUntil }

func (l *Lifecycle) enter(s EventState) {
	l.State = s
	l.Elapsed = 0
	l.Transitions++
}

// Step advances the machine by dt seconds given the current activity and
// returns the new state. Every state has exactly one successor for every
// input; unknown states fall back to idle.
func (l *Lifecycle) Step(activity, dt float64) EventState {
	if dt < 0 || math.IsNaN(dt) {
		dt = 0
	}
	if math.IsNaN(activity) {
		activity = 0
	}
	l.Now += dt
	l.Elapsed += dt

	switch l.State {
	case Idle:
		l.Gain -= l.Gain * (1 - math.Exp(-4*dt))
		if activity >= l.cfg.IgniteThreshold && !l.Silenced() {
			l.enter(Ignite)
		}
	case Ignite:
		dur := ms(l.cfg.IgniteMS)
		if dur > 0 {
			l.Gain = math.Min(l.cfg.GainCap, l.Gain+l.cfg.GainCap/dur*dt)
		} else {
			l.Gain = l.cfg.GainCap
		}
		if l.Elapsed >= dur {
			l.enter(Hold)
		}
	case Hold:
		l.Gain = math.Min(1, l.Gain+0.08*dt)
		if activity < l.cfg.ReleaseThreshold || l.Elapsed >= ms(l.cfg.HoldMS) {
			l.enter(Release)
		}
	case Release:
		l.Gain = math.Max(0, l.Gain-0.9*dt)
		if l.Gain <= l.cfg.ResidueGain || l.Elapsed >= ms(l.cfg.ReleaseMS) {
			l.enter(Residue)
		}
	case Residue:
		l.Gain = math.Max(0, l.Gain-0.2*dt)
		if l.Elapsed >= ms(l.cfg.ResidueMS) {
			l.enter(Idle)
			if !l.CoolingDown() {
				l.silenceUntil = l.Now + ms(l.cfg.SilenceMS)
				l.cooldownUntil = l.Now + ms(l.cfg.CooldownMS)
			}
		}
	default:
		l.enter(Idle)
	}

	if l.Gain < 0 {
		l.Gain = 0
	}
	return l.State
}

// Hush is 1 during a silence window and 0 otherwise.
func (l *Lifecycle) Hush() float64 {
	if l.Silenced() {
		return 1
	}
	return 0
}
