// Package layout is a force-directed layout engine: pairwise repulsion, a pull
// toward the origin, springs along edges and damped integration. It advances
// one iteration per Step so callers can interleave it with input handling.
package layout

import (
	"errors"
	"fmt"
	"math"
)

// Physics holds the simulation constants.
type Physics struct {
	GravitationalConstant   float64 `toml:"gravitational_constant" validate:"lt=0"`
	CentralGravity          float64 `toml:"central_gravity" validate:"gte=0"`
	SpringLength            float64 `toml:"spring_length" validate:"gt=0"`
	SpringConstant          float64 `toml:"spring_constant" validate:"gt=0"`
	Damping                 float64 `toml:"damping" validate:"gte=0,lte=1"`
	Timestep                float64 `toml:"timestep" validate:"gt=0"`
	MaxVelocity             float64 `toml:"max_velocity" validate:"gt=0"`
	MinVelocity             float64 `toml:"min_velocity" validate:"gt=0"`
	StabilizationIterations int     `toml:"stabilization_iterations" validate:"gt=0"`
	MaxIterations           int     `toml:"max_iterations" validate:"gtfield=StabilizationIterations"`
}

// DefaultPhysics returns the constants the graph view ships with.
func DefaultPhysics() Physics {
	return Physics{
		GravitationalConstant:   -2000,
		CentralGravity:          0.1,
		SpringLength:            100,
		SpringConstant:          0.05,
		Damping:                 0.1,
		Timestep:                0.5,
		MaxVelocity:             50,
		MinVelocity:             0.1,
		StabilizationIterations: 100,
		MaxIterations:           1000,
	}
}

func (p Physics) check() error {
	switch {
	case p.SpringLength <= 0:
		return errors.New("spring length must be positive")
	case p.Timestep <= 0:
		return errors.New("timestep must be positive")
	case p.Damping < 0 || p.Damping > 1:
		return errors.New("damping must be within [0, 1]")
	case p.StabilizationIterations <= 0:
		return errors.New("stabilization iterations must be positive")
	}
	return nil
}

// Event is something an Engine notifies listeners about.
type Event int

const (
	// Stabilized fires once, when the stabilization phase ends because motion
	// fell below MinVelocity or StabilizationIterations were spent.
	Stabilized Event = iota
)

// Link joins two body IDs with a spring.
type Link struct {
	From, To string
}

type body struct {
	id    string
	pos   Vec
	vel   Vec
	force Vec
	mass  float64
	fixed bool
}

type spring struct {
	from, to int
}

// Engine simulates one graph. It is not safe for concurrent use.
type Engine struct {
	phys       Physics
	bodies     []body
	index      map[string]int
	springs    []spring
	iterations int
	sinceWake  int
	stabilized bool
	stable     bool
	listeners  map[Event][]func()
	closed     bool
}

// NewEngine places ids on a circle around the origin and links them with
// springs. Every link endpoint must be one of ids.
func NewEngine(ids []string, links []Link, p Physics) (*Engine, error) {
	if err := p.check(); err != nil {
		return nil, fmt.Errorf("layout: %w", err)
	}
	if len(ids) == 0 {
		return nil, errors.New("layout: no nodes")
	}

	e := &Engine{
		phys:      p,
		index:     make(map[string]int, len(ids)),
		listeners: make(map[Event][]func()),
	}

	radius := p.SpringLength * math.Sqrt(float64(len(ids))) / 2
	for i, id := range ids {
		if _, dup := e.index[id]; dup {
			return nil, fmt.Errorf("layout: duplicate node %q", id)
		}
		var pos Vec
		if len(ids) > 1 {
			angle := 2 * math.Pi * float64(i) / float64(len(ids))
			pos = Vec{radius * math.Cos(angle), radius * math.Sin(angle)}
		}
		e.index[id] = len(e.bodies)
		e.bodies = append(e.bodies, body{id: id, pos: pos, mass: 1})
	}

	for _, l := range links {
		from, ok := e.index[l.From]
		if !ok {
			return nil, fmt.Errorf("layout: link from unknown node %q", l.From)
		}
		to, ok := e.index[l.To]
		if !ok {
			return nil, fmt.Errorf("layout: link to unknown node %q", l.To)
		}
		if from == to {
			continue
		}
		e.springs = append(e.springs, spring{from: from, to: to})
	}
	return e, nil
}

// On registers fn for ev. Listeners are dropped by Close.
func (e *Engine) On(ev Event, fn func()) {
	if e.closed {
		return
	}
	e.listeners[ev] = append(e.listeners[ev], fn)
}

func (e *Engine) emit(ev Event) {
	for _, fn := range e.listeners[ev] {
		fn()
	}
}

// Step runs one iteration. It is a no-op once the engine is closed or has
// come to rest after stabilization.
func (e *Engine) Step() {
	if e.closed || (e.stabilized && e.stable) {
		return
	}

	e.applyForces()
	maxVel := e.integrate()
	e.iterations++
	e.sinceWake++
	e.stable = maxVel < e.phys.MinVelocity

	if e.phys.MaxIterations > 0 && e.sinceWake >= e.phys.MaxIterations {
		e.stable = true
	}
	if !e.stabilized && (e.stable || e.iterations >= e.phys.StabilizationIterations) {
		e.stabilized = true
		e.emit(Stabilized)
	}
}

func (e *Engine) applyForces() {
	for i := range e.bodies {
		e.bodies[i].force = Vec{}
	}

	// Pairwise gravity; a negative constant makes it repulsive.
	g := e.phys.GravitationalConstant
	for i := 0; i < len(e.bodies); i++ {
		for j := i + 1; j < len(e.bodies); j++ {
			a, b := &e.bodies[i], &e.bodies[j]
			d := b.pos.Sub(a.pos)
			dist := d.Len()
			if dist < 0.1 {
				// Coincident bodies: nudge apart along a fixed axis.
				d = Vec{0.1 * float64(j-i), 0.1}
				dist = d.Len()
			}
			f := d.Scale(g * a.mass * b.mass / (dist * dist * dist))
			a.force = a.force.Add(f)
			b.force = b.force.Sub(f)
		}
	}

	// Constant-magnitude pull toward the origin.
	for i := range e.bodies {
		b := &e.bodies[i]
		dist := b.pos.Len()
		if dist > 0 {
			b.force = b.force.Add(b.pos.Scale(-e.phys.CentralGravity / dist))
		}
	}

	for _, s := range e.springs {
		from, to := &e.bodies[s.from], &e.bodies[s.to]
		d := from.pos.Sub(to.pos)
		dist := math.Max(d.Len(), 0.01)
		f := d.Scale(e.phys.SpringConstant * (e.phys.SpringLength - dist) / dist)
		from.force = from.force.Add(f)
		to.force = to.force.Sub(f)
	}
}

// integrate applies damped forces and returns the largest speed.
func (e *Engine) integrate() float64 {
	var maxVel float64
	dt := e.phys.Timestep
	for i := range e.bodies {
		b := &e.bodies[i]
		if b.fixed {
			b.vel = Vec{}
			continue
		}
		acc := b.force.Sub(b.vel.Scale(e.phys.Damping)).Scale(1 / b.mass)
		b.vel = clampVec(b.vel.Add(acc.Scale(dt)), e.phys.MaxVelocity)
		b.pos = b.pos.Add(b.vel.Scale(dt))
		maxVel = math.Max(maxVel, b.vel.Len())
	}
	return maxVel
}

func clampVec(v Vec, limit float64) Vec {
	if l := v.Len(); l > limit {
		return v.Scale(limit / l)
	}
	return v
}

// MoveTo places id at pos with zero velocity and wakes the simulation.
func (e *Engine) MoveTo(id string, pos Vec) bool {
	i, ok := e.index[id]
	if !ok || e.closed {
		return false
	}
	e.bodies[i].pos = pos
	e.bodies[i].vel = Vec{}
	e.wake()
	return true
}

// Pin fixes or releases id; a fixed body ignores forces.
func (e *Engine) Pin(id string, fixed bool) bool {
	i, ok := e.index[id]
	if !ok || e.closed {
		return false
	}
	e.bodies[i].fixed = fixed
	e.wake()
	return true
}

func (e *Engine) wake() {
	e.stable = false
	e.sinceWake = 0
}

// Position returns the current position of id.
func (e *Engine) Position(id string) (Vec, bool) {
	i, ok := e.index[id]
	if !ok || e.closed {
		return Vec{}, false
	}
	return e.bodies[i].pos, true
}

// Bounds returns the box enclosing every body.
func (e *Engine) Bounds() Bounds {
	if len(e.bodies) == 0 {
		return Bounds{}
	}
	b := Bounds{Min: e.bodies[0].pos, Max: e.bodies[0].pos}
	for _, body := range e.bodies[1:] {
		b.Min.X = math.Min(b.Min.X, body.pos.X)
		b.Min.Y = math.Min(b.Min.Y, body.pos.Y)
		b.Max.X = math.Max(b.Max.X, body.pos.X)
		b.Max.Y = math.Max(b.Max.Y, body.pos.Y)
	}
	return b
}

func (e *Engine) Iterations() int { return e.iterations }

// IsStabilized reports whether the stabilization phase has ended.
func (e *Engine) IsStabilized() bool { return e.stabilized }

// IsStable reports whether motion is currently below MinVelocity.
func (e *Engine) IsStable() bool { return e.stable }

// Close releases the simulation state and drops all listeners. Further calls
// are no-ops.
func (e *Engine) Close() {
	if e.closed {
		return
	}
	e.closed = true
	e.listeners = nil
	e.bodies = nil
	e.springs = nil
	e.index = map[string]int{}
}

func (e *Engine) Closed() bool { return e.closed }
