// Package effects owns the transient visual state: particles, electric-arc
// strips, and per-frame debug lines, all driven by a deterministic xorshift
// RNG so identical seeds replay to identical buffers.
package effects

import (
	"math"

	"github.com/go-gl/mathgl/mgl32"
)

// Color modes for particle spawning.
const (
	ColorModeFixed uint8 = 0 // every particle uses the base color index
	ColorModeRamp  uint8 = 1 // base index + rand[0,4) for palette ramps
)

// VertexFloats is the effects wire stride: (x, y, color_index, u, v).
const VertexFloats = 5

// Particle is a single simulated particle. Lifetime is in seconds; once it
// is at or below zero (within a small float tolerance) the particle is
// removed.
type Particle struct {
	Pos             mgl32.Vec2
	Vel             mgl32.Vec2
	Color           float32
	LifeRemaining   float32
	LifeInitial     float32
	Size            float32
	Drag            float32
	AttractStrength float32
	SpeedFactor     float32
	HasAttractor    bool
	Attractor       mgl32.Vec2
}

// Arc is an electric-arc strip: a midpoint-displaced polyline between two
// endpoints that expires after its lifetime.
type Arc struct {
	A, B          mgl32.Vec2
	Width         float32
	Color         float32
	Points        []mgl32.Vec2
	LifeRemaining float32
}

// DebugLine is a game-drawn polyline, cleared every frame before update.
type DebugLine struct {
	Points []mgl32.Vec2
	Width  float32
	Color  float32
}

// ParticleParams bundles the spawn ranges and per-particle physics defaults.
type ParticleParams struct {
	DirMin, DirMax   float32 // emission angle range, radians
	SpeedMin, SpeedMax float32
	LifeMin, LifeMax float32
	Size             float32
	ColorMode        uint8
	Color            float32
	Drag             float32
	AttractStrength  float32
	SpeedFactor      float32
	HasAttractor     bool
	Attractor        mgl32.Vec2
}

// State owns the effects pools and the RNG.
type State struct {
	rng       *Rand
	particles []Particle
	arcs      []Arc
	debug     []DebugLine
}

// NewState creates an effects state seeded for deterministic replay.
func NewState(seed uint64) *State {
	return &State{
		rng:       NewRand(seed),
		particles: make([]Particle, 0, 256),
		arcs:      make([]Arc, 0, 16),
		debug:     make([]DebugLine, 0, 16),
	}
}

// Rng exposes the generator for game code that wants deterministic rolls.
func (s *State) Rng() *Rand {
	return s.rng
}

// ParticleCount returns the number of live particles.
func (s *State) ParticleCount() int { return len(s.particles) }

// ArcCount returns the number of live arcs.
func (s *State) ArcCount() int { return len(s.arcs) }

// Particles exposes the live pool read-only (tests, presenter overlays).
func (s *State) Particles() []Particle { return s.particles }

// SpawnParticles emits count particles at origin with direction, speed and
// lifetime rolled uniformly from the parameter ranges.
func (s *State) SpawnParticles(origin mgl32.Vec2, count int, p ParticleParams) {
	for i := 0; i < count; i++ {
		angle := s.rng.Range(p.DirMin, p.DirMax)
		speed := s.rng.Range(p.SpeedMin, p.SpeedMax)
		life := s.rng.Range(p.LifeMin, p.LifeMax)
		color := p.Color
		if p.ColorMode == ColorModeRamp {
			color += float32(s.rng.IntN(4))
		}
		size := p.Size
		if size <= 0 {
			size = 1
		}
		s.particles = append(s.particles, Particle{
			Pos:             origin,
			Vel:             mgl32.Vec2{cos32(angle) * speed, sin32(angle) * speed},
			Color:           color,
			LifeRemaining:   life,
			LifeInitial:     life,
			Size:            size,
			Drag:            p.Drag,
			AttractStrength: p.AttractStrength,
			SpeedFactor:     p.SpeedFactor,
			HasAttractor:    p.HasAttractor,
			Attractor:       p.Attractor,
		})
	}
}

// AddArc generates a zig-zag polyline between a and b via recursive midpoint
// displacement and keeps it alive for lifetime seconds. segments is rounded
// up to the next power of two internally.
func (s *State) AddArc(a, b mgl32.Vec2, width, color, lifetime, amplitude float32, segments int) {
	if segments < 1 {
		segments = 1
	}
	depth := 0
	for 1<<depth < segments {
		depth++
	}
	points := make([]mgl32.Vec2, 0, (1<<depth)+1)
	points = append(points, a)
	points = s.subdivide(points, a, b, amplitude, depth)
	points = append(points, b)

	s.arcs = append(s.arcs, Arc{
		A:             a,
		B:             b,
		Width:         width,
		Color:         color,
		Points:        points,
		LifeRemaining: lifetime,
	})
}

// subdivide appends the interior points of the displaced polyline between a
// and b (exclusive of both endpoints), in order.
func (s *State) subdivide(points []mgl32.Vec2, a, b mgl32.Vec2, amplitude float32, depth int) []mgl32.Vec2 {
	if depth <= 0 {
		return points
	}
	mid := a.Add(b).Mul(0.5)
	seg := b.Sub(a)
	length := seg.Len()
	if length > 1e-6 {
		// Perpendicular displacement, scaled down each level.
		perp := mgl32.Vec2{-seg.Y() / length, seg.X() / length}
		mid = mid.Add(perp.Mul(s.rng.Range(-amplitude, amplitude)))
	}
	points = s.subdivide(points, a, mid, amplitude*0.5, depth-1)
	points = append(points, mid)
	points = s.subdivide(points, mid, b, amplitude*0.5, depth-1)
	return points
}

// AddDebugLine queues a polyline for this frame only.
func (s *State) AddDebugLine(points []mgl32.Vec2, width, color float32) {
	if len(points) < 2 {
		return
	}
	s.debug = append(s.debug, DebugLine{Points: points, Width: width, Color: color})
}

// ClearDebug drops all debug lines. The runner calls this at the start of
// every frame before the game update.
func (s *State) ClearDebug() {
	s.debug = s.debug[:0]
}

// Tick advances particles and arc lifetimes and removes the expired, using
// in-place filtering so the pools never reallocate in steady state.
func (s *State) Tick(dt float32) {
	n := 0
	for i := range s.particles {
		p := s.particles[i]
		if p.HasAttractor && p.AttractStrength != 0 {
			dir := p.Attractor.Sub(p.Pos)
			if l := dir.Len(); l > 1e-6 {
				p.Vel = p.Vel.Add(dir.Mul(p.AttractStrength / l * dt))
			}
		}
		if p.Drag > 0 {
			damp := 1 - p.Drag*dt
			if damp < 0 {
				damp = 0
			}
			p.Vel = p.Vel.Mul(damp)
		}
		factor := p.SpeedFactor
		if factor == 0 {
			factor = 1
		}
		p.Pos = p.Pos.Add(p.Vel.Mul(factor * dt))
		p.LifeRemaining -= dt

		// Float32 residue from subtracting fixed steps counts as expired.
		const lifeEpsilon = 1e-5
		if p.LifeRemaining > lifeEpsilon {
			s.particles[n] = p
			n++
		}
	}
	s.particles = s.particles[:n]

	m := 0
	for i := range s.arcs {
		s.arcs[i].LifeRemaining -= dt
		if s.arcs[i].LifeRemaining > 0 {
			s.arcs[m] = s.arcs[i]
			m++
		}
	}
	s.arcs = s.arcs[:m]
}

// BuildVertices appends the frame's triangle list to out and returns it.
// Vertex format is (x, y, color_index, u, v): u spans the strip width, v runs
// along its length; particles are quads with the full [0,1]x[0,1] range.
func (s *State) BuildVertices(out []float32) []float32 {
	for i := range s.particles {
		p := &s.particles[i]
		h := p.Size * 0.5
		x0, y0 := p.Pos.X()-h, p.Pos.Y()-h
		x1, y1 := p.Pos.X()+h, p.Pos.Y()+h
		c := p.Color
		out = append(out,
			x0, y0, c, 0, 0,
			x1, y0, c, 1, 0,
			x1, y1, c, 1, 1,

			x0, y0, c, 0, 0,
			x1, y1, c, 1, 1,
			x0, y1, c, 0, 1,
		)
	}
	for i := range s.arcs {
		out = appendStrip(out, s.arcs[i].Points, s.arcs[i].Width, s.arcs[i].Color)
	}
	for i := range s.debug {
		out = appendStrip(out, s.debug[i].Points, s.debug[i].Width, s.debug[i].Color)
	}
	return out
}

// appendStrip expands a polyline into a width-extruded triangle list. Each
// point gets a left/right pair offset along the segment normal; consecutive
// pairs form two triangles.
func appendStrip(out []float32, points []mgl32.Vec2, width, color float32) []float32 {
	if len(points) < 2 {
		return out
	}
	half := width * 0.5
	total := float32(0)
	for i := 1; i < len(points); i++ {
		total += points[i].Sub(points[i-1]).Len()
	}
	if total <= 1e-6 {
		return out
	}

	type rim struct {
		l, r mgl32.Vec2
		v    float32
	}
	dist := float32(0)
	prev := rim{}
	for i := range points {
		var dir mgl32.Vec2
		switch {
		case i == 0:
			dir = points[1].Sub(points[0])
		case i == len(points)-1:
			dir = points[i].Sub(points[i-1])
			dist += points[i].Sub(points[i-1]).Len()
		default:
			dir = points[i+1].Sub(points[i-1])
			dist += points[i].Sub(points[i-1]).Len()
		}
		l := dir.Len()
		if l < 1e-6 {
			dir = mgl32.Vec2{1, 0}
			l = 1
		}
		normal := mgl32.Vec2{-dir.Y() / l, dir.X() / l}
		cur := rim{
			l: points[i].Add(normal.Mul(half)),
			r: points[i].Sub(normal.Mul(half)),
			v: dist / total,
		}
		if i > 0 {
			out = append(out,
				prev.l.X(), prev.l.Y(), color, 0, prev.v,
				prev.r.X(), prev.r.Y(), color, 1, prev.v,
				cur.r.X(), cur.r.Y(), color, 1, cur.v,

				prev.l.X(), prev.l.Y(), color, 0, prev.v,
				cur.r.X(), cur.r.Y(), color, 1, cur.v,
				cur.l.X(), cur.l.Y(), color, 0, cur.v,
			)
		}
		prev = cur
	}
	return out
}

func sin32(x float32) float32 { return float32(math.Sin(float64(x))) }
func cos32(x float32) float32 { return float32(math.Cos(float64(x))) }
