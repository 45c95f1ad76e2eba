package engine

import (
	"math"

	"github.com/go-gl/mathgl/mgl32"
)

// VectorVertex is one tessellated vertex in the vector pool.
type VectorVertex struct {
	X, Y       float32
	R, G, B, A float32
}

// VectorState is a plain triangle-vertex pool games fill through the
// tessellation helpers. Cleared at the start of every update.
type VectorState struct {
	vertices []VectorVertex
}

// NewVectorState creates an empty pool.
func NewVectorState() *VectorState {
	return &VectorState{vertices: make([]VectorVertex, 0, 512)}
}

// Clear resets the pool for the next frame, keeping capacity.
func (s *VectorState) Clear() {
	s.vertices = s.vertices[:0]
}

// Vertices returns the frame's triangle list.
func (s *VectorState) Vertices() []VectorVertex {
	return s.vertices
}

// Len returns the number of queued vertices.
func (s *VectorState) Len() int {
	return len(s.vertices)
}

func (s *VectorState) push(p mgl32.Vec2, r, g, b, a float32) {
	s.vertices = append(s.vertices, VectorVertex{X: p.X(), Y: p.Y(), R: r, G: g, B: b, A: a})
}

// FillCircle tessellates a filled circle as a triangle fan.
func (s *VectorState) FillCircle(center mgl32.Vec2, radius float32, segments int, r, g, b, a float32) {
	if segments < 3 {
		segments = 3
	}
	step := 2 * math.Pi / float64(segments)
	for i := 0; i < segments; i++ {
		a0 := float64(i) * step
		a1 := float64(i+1) * step
		p0 := center.Add(mgl32.Vec2{radius * float32(math.Cos(a0)), radius * float32(math.Sin(a0))})
		p1 := center.Add(mgl32.Vec2{radius * float32(math.Cos(a1)), radius * float32(math.Sin(a1))})
		s.push(center, r, g, b, a)
		s.push(p0, r, g, b, a)
		s.push(p1, r, g, b, a)
	}
}

// StrokeCircle tessellates a circle outline as a quad ring.
func (s *VectorState) StrokeCircle(center mgl32.Vec2, radius, width float32, segments int, r, g, b, a float32) {
	if segments < 3 {
		segments = 3
	}
	inner := radius - width*0.5
	outer := radius + width*0.5
	if inner < 0 {
		inner = 0
	}
	step := 2 * math.Pi / float64(segments)
	for i := 0; i < segments; i++ {
		a0 := float64(i) * step
		a1 := float64(i+1) * step
		d0 := mgl32.Vec2{float32(math.Cos(a0)), float32(math.Sin(a0))}
		d1 := mgl32.Vec2{float32(math.Cos(a1)), float32(math.Sin(a1))}
		i0 := center.Add(d0.Mul(inner))
		i1 := center.Add(d1.Mul(inner))
		o0 := center.Add(d0.Mul(outer))
		o1 := center.Add(d1.Mul(outer))
		s.push(i0, r, g, b, a)
		s.push(o0, r, g, b, a)
		s.push(o1, r, g, b, a)
		s.push(i0, r, g, b, a)
		s.push(o1, r, g, b, a)
		s.push(i1, r, g, b, a)
	}
}

// FillPolygon tessellates a convex polygon as a fan from the first point.
func (s *VectorState) FillPolygon(points []mgl32.Vec2, r, g, b, a float32) {
	if len(points) < 3 {
		return
	}
	for i := 1; i < len(points)-1; i++ {
		s.push(points[0], r, g, b, a)
		s.push(points[i], r, g, b, a)
		s.push(points[i+1], r, g, b, a)
	}
}

// StrokePolygon tessellates a closed polygon outline with the given width.
func (s *VectorState) StrokePolygon(points []mgl32.Vec2, width float32, r, g, b, a float32) {
	if len(points) < 2 {
		return
	}
	half := width * 0.5
	n := len(points)
	for i := 0; i < n; i++ {
		p0 := points[i]
		p1 := points[(i+1)%n]
		seg := p1.Sub(p0)
		l := seg.Len()
		if l < 1e-6 {
			continue
		}
		normal := mgl32.Vec2{-seg.Y() / l, seg.X() / l}.Mul(half)
		s.push(p0.Add(normal), r, g, b, a)
		s.push(p0.Sub(normal), r, g, b, a)
		s.push(p1.Sub(normal), r, g, b, a)
		s.push(p0.Add(normal), r, g, b, a)
		s.push(p1.Sub(normal), r, g, b, a)
		s.push(p1.Add(normal), r, g, b, a)
	}
}
