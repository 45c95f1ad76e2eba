package tween

import (
	"math"
	"testing"

	"github.com/go-gl/mathgl/mgl32"
)

// mapStore records tween writes keyed by (entity, field).
type mapStore struct {
	values map[[2]uint32]mgl32.Vec2
	dead   map[uint32]bool
}

func newMapStore() *mapStore {
	return &mapStore{values: map[[2]uint32]mgl32.Vec2{}, dead: map[uint32]bool{}}
}

func (m *mapStore) ApplyTween(id uint32, field Field, v mgl32.Vec2) bool {
	if m.dead[id] {
		return false
	}
	m.values[[2]uint32{id, uint32(field)}] = v
	return true
}

func (m *mapStore) TweenBase(id uint32, field Field) (mgl32.Vec2, bool) {
	v, ok := m.values[[2]uint32{id, uint32(field)}]
	return v, ok
}

func (m *mapStore) get(id uint32, field Field) mgl32.Vec2 {
	return m.values[[2]uint32{id, uint32(field)}]
}

// TestQuadOutMidpoint is the S5 scenario: position_x 0->100 over 0.5s with
// QuadOut reads 75 at half duration.
func TestQuadOutMidpoint(t *testing.T) {
	s := NewState()
	store := newMapStore()
	s.Add(Scalar(1, PosX, 0, 100, 0.5, QuadOut))

	// 15 ticks of 1/60 = 0.25s.
	for i := 0; i < 15; i++ {
		s.Tick(1.0/60.0, store)
	}
	got := store.get(1, PosX).X()
	if math.Abs(float64(got-75)) > 1e-3 {
		t.Errorf("pos.x at half duration = %v, want 75", got)
	}
}

// TestInterpolationLaw is invariant 4: written value equals
// from + easing(t)*(to-from) for a sampling of curves and times.
func TestInterpolationLaw(t *testing.T) {
	curves := []Easing{Linear, QuadIn, CubicOut, SineInOut, ExpoIn, BackOut, BounceOut, ElasticOut}
	for _, curve := range curves {
		s := NewState()
		store := newMapStore()
		from, to := float32(-20), float32(60)
		s.Add(Scalar(1, Rotation, from, to, 1.0, curve))

		elapsed := float32(0)
		for i := 0; i < 30; i++ {
			dt := float32(1.0 / 60.0)
			s.Tick(dt, store)
			elapsed += dt
			want := from + Ease(curve, elapsed)*(to-from)
			got := store.get(1, Rotation).X()
			if math.Abs(float64(got-want)) > 1e-4 {
				t.Fatalf("curve %d at t=%v: got %v, want %v", curve, elapsed, got, want)
			}
		}
	}
}

// TestZeroDurationCompletesExactly verifies a duration-0 tween writes To on
// its first tick and completes.
func TestZeroDurationCompletesExactly(t *testing.T) {
	s := NewState()
	store := newMapStore()
	tw := Scalar(1, PosX, 5, 99, 0, Linear)
	tw.OnComplete = 7
	s.Add(tw)

	s.Tick(1.0/60.0, store)
	if got := store.get(1, PosX).X(); got != 99 {
		t.Errorf("value = %v, want exactly 99", got)
	}
	if s.Len() != 0 {
		t.Error("tween should have completed and been removed")
	}
	done := s.DrainCompleted()
	if len(done) != 1 || done[0] != 7 {
		t.Errorf("completed events = %v, want [7]", done)
	}
	if len(s.DrainCompleted()) != 0 {
		t.Error("drain should clear the queue")
	}
}

// TestCompletionWritesEndpointExactly verifies the final write is To with no
// easing residue.
func TestCompletionWritesEndpointExactly(t *testing.T) {
	s := NewState()
	store := newMapStore()
	s.Add(Scalar(1, ScaleX, 1, 3, 0.1, ElasticOut))

	for i := 0; i < 20; i++ {
		s.Tick(1.0/60.0, store)
	}
	if got := store.get(1, ScaleX).X(); got != 3 {
		t.Errorf("final value = %v, want exactly 3", got)
	}
}

// TestLoopResets verifies Loop restarts from From.
func TestLoopResets(t *testing.T) {
	s := NewState()
	store := newMapStore()
	tw := Scalar(1, PosY, 0, 10, 0.1, Linear)
	tw.Mode = Loop
	s.Add(tw)

	// Run 1.5 cycles; the tween must still be live and mid-flight.
	for i := 0; i < 9; i++ {
		s.Tick(1.0/60.0, store)
	}
	if s.Len() != 1 {
		t.Fatal("looping tween should stay alive")
	}
	got := store.get(1, PosY).X()
	if got < 0 || got > 10 {
		t.Errorf("looped value out of range: %v", got)
	}
}

// TestPingPongSwapsEnds verifies PingPong reverses direction each cycle.
func TestPingPongSwapsEnds(t *testing.T) {
	s := NewState()
	store := newMapStore()
	tw := Scalar(1, PosX, 0, 10, 0.1, Linear)
	tw.Mode = PingPong
	s.Add(tw)

	dt := float32(1.0 / 60.0)
	// First cycle completes on tick 6 (0.1s), writing 10.
	for i := 0; i < 6; i++ {
		s.Tick(dt, store)
	}
	if got := store.get(1, PosX).X(); got != 10 {
		t.Fatalf("end of forward pass = %v, want 10", got)
	}
	// Halfway back: value must be below 10 and falling toward 0.
	for i := 0; i < 3; i++ {
		s.Tick(dt, store)
	}
	if got := store.get(1, PosX).X(); got >= 10 || got <= 0 {
		t.Errorf("mid reverse pass = %v, want inside (0,10)", got)
	}
}

// TestPausedTweenHolds verifies paused tweens don't advance.
func TestPausedTweenHolds(t *testing.T) {
	s := NewState()
	store := newMapStore()
	id := s.Add(Scalar(1, PosX, 0, 10, 1, Linear))
	s.SetPaused(id, true)

	for i := 0; i < 10; i++ {
		s.Tick(1.0/60.0, store)
	}
	if _, ok := store.TweenBase(1, PosX); ok {
		t.Error("paused tween wrote a value")
	}

	s.SetPaused(id, false)
	s.Tick(1.0/60.0, store)
	if _, ok := store.TweenBase(1, PosX); !ok {
		t.Error("resumed tween should write")
	}
}

// TestDeadEntityRetiresTween verifies a false Apply removes the tween.
func TestDeadEntityRetiresTween(t *testing.T) {
	s := NewState()
	store := newMapStore()
	store.dead[5] = true
	s.Add(Scalar(5, PosX, 0, 10, 1, Linear))

	s.Tick(1.0/60.0, store)
	if s.Len() != 0 {
		t.Error("tween on dead entity should retire")
	}
}

// TestRemoveEntityCancelsAll verifies RemoveEntity drops every tween on the
// entity and leaves others alone.
func TestRemoveEntityCancelsAll(t *testing.T) {
	s := NewState()
	s.Add(Scalar(1, PosX, 0, 1, 1, Linear))
	s.Add(Scalar(1, PosY, 0, 1, 1, Linear))
	s.Add(Scalar(2, PosX, 0, 1, 1, Linear))

	s.RemoveEntity(1)
	if s.Len() != 1 {
		t.Errorf("Len = %d, want 1", s.Len())
	}
}

// TestVecTween verifies two-channel targets interpolate both components.
func TestVecTween(t *testing.T) {
	s := NewState()
	store := newMapStore()
	s.Add(Vec(1, Position, mgl32.Vec2{0, 0}, mgl32.Vec2{10, 20}, 1, Linear))

	for i := 0; i < 30; i++ {
		s.Tick(1.0/60.0, store)
	}
	got := store.get(1, Position)
	if math.Abs(float64(got.X()-5)) > 1e-3 || math.Abs(float64(got.Y()-10)) > 1e-3 {
		t.Errorf("halfway vec = %v, want (5,10)", got)
	}
}
