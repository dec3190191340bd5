// Package liquid runs the decorative blob simulation behind the landing page.
//
// Three icosahedra wobble in place. Each vertex is pulled back to its rest position
// by a spring, slowed by viscosity, and pushed by the pointer when it is close.
package liquid

import (
	"math"
	"sync"
	"time"
)

type Vec3 struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
	Z float64 `json:"z"`
}

func (a Vec3) Add(b Vec3) Vec3      { return Vec3{a.X + b.X, a.Y + b.Y, a.Z + b.Z} }
func (a Vec3) Sub(b Vec3) Vec3      { return Vec3{a.X - b.X, a.Y - b.Y, a.Z - b.Z} }
func (a Vec3) Scale(k float64) Vec3 { return Vec3{a.X * k, a.Y * k, a.Z * k} }
func (a Vec3) Len() float64         { return math.Sqrt(a.X*a.X + a.Y*a.Y + a.Z*a.Z) }
func (a Vec3) Normalize() Vec3 {
	l := a.Len()
	if l == 0 {
		return Vec3{}
	}
	return a.Scale(1 / l)
}

type Params struct {
	Viscosity    float64 // velocity damping per second
	Spring       float64 // pull toward rest position
	Amplitude    float64 // surface wobble
	PointerForce float64
	CursorSize   float64
	Attract      bool
	Demo         bool
	IdleAfter    time.Duration
}

func DefaultParams() Params {
	return Params{
		Viscosity:    2.5,
		Spring:       18,
		Amplitude:    0.004,
		PointerForce: 3,
		CursorSize:   0.9,
		Demo:         true,
		IdleAfter:    4 * time.Second,
	}
}

type Blob struct {
	Center Vec3   `json:"center"`
	Pos    []Vec3 `json:"vertices"`
	rest   []Vec3
	vel    []Vec3
}

type pointer struct {
	at     Vec3
	active bool
	moved  time.Time
}

// Simulation is safe for one stepping goroutine and many snapshot readers.
type Simulation struct {
	mu      sync.RWMutex
	params  Params
	blobs   []*Blob
	t       float64
	pointer pointer
	now     func() time.Time
}

func New(p Params) *Simulation {
	s := &Simulation{params: p, now: time.Now}
	for _, c := range []struct {
		center Vec3
		radius float64
	}{
		{Vec3{-1.6, 0.4, 0}, 0.9},
		{Vec3{0.2, -0.3, 0}, 1.2},
		{Vec3{1.8, 0.6, 0}, 0.7},
	} {
		rest := icosahedron(c.radius)
		b := &Blob{Center: c.center, rest: rest, Pos: make([]Vec3, len(rest)), vel: make([]Vec3, len(rest))}
		copy(b.Pos, rest)
		s.blobs = append(s.blobs, b)
	}
	return s
}

// SetPointer moves the pointer in world space; inactive disables the pointer force.
func (s *Simulation) SetPointer(x, y float64, active bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.pointer = pointer{at: Vec3{x, y, 0}, active: active, moved: s.now()}
}

// Step advances the simulation by dt seconds.
func (s *Simulation) Step(dt float64) {
	if dt <= 0 {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	s.t += dt
	p := s.params
	ptr, hasPtr := s.effectivePointer()

	for _, b := range s.blobs {
		for i := range b.Pos {
			pos, vel := b.Pos[i], b.vel[i]

			vel = vel.Add(b.rest[i].Sub(pos).Scale(p.Spring * dt))
			if hasPtr && p.CursorSize > 0 {
				d := pos.Add(b.Center).Sub(ptr)
				if dist := d.Len(); dist < p.CursorSize {
					dir := d.Normalize()
					if p.Attract {
						dir = dir.Scale(-1)
					}
					vel = vel.Add(dir.Scale(p.PointerForce * (1 - dist/p.CursorSize) * dt))
				}
			}
			vel = vel.Scale(math.Max(0, 1-p.Viscosity*dt))

			wobble := pos.Normalize().Scale(math.Sin(s.t*2+pos.Len()*2) * p.Amplitude)
			b.Pos[i] = pos.Add(vel.Scale(dt)).Add(wobble)
			b.vel[i] = vel
		}
	}
}

// effectivePointer returns the real pointer, or the demo drift once the pointer
// has been idle for IdleAfter.
func (s *Simulation) effectivePointer() (Vec3, bool) {
	if s.pointer.active && s.now().Sub(s.pointer.moved) < s.params.IdleAfter {
		return s.pointer.at, true
	}
	if !s.params.Demo {
		return Vec3{}, false
	}
	return Vec3{X: 2 * math.Sin(s.t*0.7), Y: 0.8 * math.Sin(s.t*1.3)}, true
}

type Snapshot struct {
	Time  float64 `json:"t"`
	Blobs []Blob  `json:"blobs"`
}

// Snapshot copies the current vertex positions.
func (s *Simulation) Snapshot() Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := Snapshot{Time: s.t, Blobs: make([]Blob, 0, len(s.blobs))}
	for _, b := range s.blobs {
		out.Blobs = append(out.Blobs, Blob{Center: b.Center, Pos: append([]Vec3(nil), b.Pos...)})
	}
	return out
}

// release drops vertex buffers after the runner stops.
func (s *Simulation) release() {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, b := range s.blobs {
		b.Pos, b.vel = b.Pos[:0], nil
	}
}

// icosahedron returns the 12 vertices of a regular icosahedron of radius r.
func icosahedron(r float64) []Vec3 {
	phi := (1 + math.Sqrt(5)) / 2
	raw := []Vec3{
		{-1, phi, 0}, {1, phi, 0}, {-1, -phi, 0}, {1, -phi, 0},
		{0, -1, phi}, {0, 1, phi}, {0, -1, -phi}, {0, 1, -phi},
		{phi, 0, -1}, {phi, 0, 1}, {-phi, 0, -1}, {-phi, 0, 1},
	}
	out := make([]Vec3, len(raw))
	for i, v := range raw {
		out[i] = v.Normalize().Scale(r)
	}
	return out
}
