package liquidglass

import (
	"math"

	"github.com/charmbracelet/harmonica"
)

// Default rest thresholds for unit-scale values such as scale and opacity.
const (
	defaultRestSpeed = 0.01
	defaultRestDelta = 0.005
)

// SpringConfig describes a damped spring in physical terms. Mass defaults to
// 1 and the rest thresholds to small unit-scale values when zero.
type SpringConfig struct {
	Stiffness float64
	Damping   float64
	Mass      float64
	RestSpeed float64
	RestDelta float64
}

// Spring presets for the panel and the slider bubble.
var (
	EnterSpring   = SpringConfig{Stiffness: 250, Damping: 20}
	ExitSpring    = SpringConfig{Stiffness: 300, Damping: 25}
	HoverSpring   = SpringConfig{Stiffness: 300, Damping: 20}
	DragSpring    = SpringConfig{Stiffness: 20, Damping: 2, Mass: 0.1, RestSpeed: 0.2, RestDelta: 0.01}
	BubbleSpring  = SpringConfig{Stiffness: 300, Damping: 15, Mass: 0.8}
	DefaultSpring = SpringConfig{Stiffness: 100, Damping: 10}
)

// Scale targets.
const (
	HoverScale = 1.05
	DragScale  = 1.15
	ExitScale  = 0.9
)

func (c SpringConfig) mass() float64 {
	if c.Mass > 0 {
		return c.Mass
	}
	return 1
}

// AngularFrequency returns sqrt(k/m).
func (c SpringConfig) AngularFrequency() float64 {
	return math.Sqrt(math.Max(c.Stiffness, 0) / c.mass())
}

// DampingRatio returns c / (2*sqrt(k*m)). A non-positive stiffness yields 0.
func (c SpringConfig) DampingRatio() float64 {
	km := c.Stiffness * c.mass()
	if km <= 0 {
		return 0
	}
	return c.Damping / (2 * math.Sqrt(km))
}

func (c SpringConfig) restSpeed() float64 {
	if c.RestSpeed > 0 {
		return c.RestSpeed
	}
	return defaultRestSpeed
}

func (c SpringConfig) restDelta() float64 {
	if c.RestDelta > 0 {
		return c.RestDelta
	}
	return defaultRestDelta
}

// Transition pairs a scale target with the spring that drives it.
type Transition struct {
	Scale  float64
	Spring SpringConfig
}

// DragTransition returns the scale transition for a drag locked on dir. Both
// axes share the same elastic curve; an unlocked drag settles back to 1.
func DragTransition(dir DragDirection) Transition {
	switch dir {
	case DirectionHorizontal, DirectionVertical:
		return Transition{Scale: DragScale, Spring: DragSpring}
	default:
		return Transition{Scale: 1, Spring: DefaultSpring}
	}
}

// Spring animates one value toward a target. Coefficients are precomputed by
// harmonica for a fixed time step and recomputed when Update sees a new dt.
type Spring struct {
	config   SpringConfig
	pos, vel float64
	target   float64
	dt       float64
	spring   harmonica.Spring
}

// NewSpring creates a spring resting at value.
func NewSpring(cfg SpringConfig, value float64) *Spring {
	return &Spring{config: cfg, pos: value, target: value}
}

// Config returns the spring's configuration.
func (s *Spring) Config() SpringConfig { return s.config }

// SetConfig changes the spring's physics, keeping position and velocity.
func (s *Spring) SetConfig(cfg SpringConfig) {
	if cfg == s.config {
		return
	}
	s.config = cfg
	s.dt = 0
}

// SetTarget changes the value the spring moves toward.
func (s *Spring) SetTarget(v float64) { s.target = v }

// Animate sets a new target and config in one call.
func (s *Spring) Animate(t Transition) {
	s.SetConfig(t.Spring)
	s.SetTarget(t.Scale)
}

// Target returns the current target.
func (s *Spring) Target() float64 { return s.target }

// Set jumps to v and stops all motion.
func (s *Spring) Set(v float64) {
	s.pos, s.vel, s.target = v, 0, v
}

// Value returns the current position.
func (s *Spring) Value() float64 { return s.pos }

// Velocity returns the current velocity in units per second.
func (s *Spring) Velocity() float64 { return s.vel }

// Settled reports whether the spring is at rest on its target.
func (s *Spring) Settled() bool {
	return math.Abs(s.vel) <= s.config.restSpeed() &&
		math.Abs(s.pos-s.target) <= s.config.restDelta()
}

// Update advances the spring by dt seconds and returns the new value. Once
// settled the spring snaps exactly onto its target.
func (s *Spring) Update(dt float64) float64 {
	if dt <= 0 {
		return s.pos
	}
	if s.Settled() {
		s.pos, s.vel = s.target, 0
		return s.pos
	}
	if s.dt != dt {
		s.spring = harmonica.NewSpring(dt, s.config.AngularFrequency(), s.config.DampingRatio())
		s.dt = dt
	}
	s.pos, s.vel = s.spring.Update(s.pos, s.vel, s.target)
	if s.Settled() {
		s.pos, s.vel = s.target, 0
	}
	return s.pos
}

// TickDuration returns the fixed time step for a run loop at tps ticks per
// second, matching harmonica.FPS.
func TickDuration(tps int) float64 {
	if tps <= 0 {
		return 0
	}
	return harmonica.FPS(tps)
}
