package physics

import (
	"math"
	"testing"

	"github.com/go-gl/mathgl/mgl32"
)

func approx(a, b, eps float32) bool {
	return math.Abs(float64(a-b)) <= float64(eps)
}

// TestVelocityIntegration follows the S3 setup at the wrapper level: a body
// with velocity (10,0) and no gravity advances 10/60 per step.
func TestVelocityIntegration(t *testing.T) {
	w := NewWorld(mgl32.Vec2{0, 0})
	h, err := w.CreateBody(BodyDesc{
		Type:   BodyDynamic,
		Pos:    mgl32.Vec2{0, 0},
		LinVel: mgl32.Vec2{10, 0},
		Mass:   1,
		Entity: 1,
	}, ColliderDesc{Shape: Ball(1)})
	if err != nil {
		t.Fatalf("CreateBody: %v", err)
	}

	var events []ContactEvent
	w.Step(1.0/60.0, &events)

	pos, _, ok := w.BodyPose(h)
	if !ok {
		t.Fatal("body missing")
	}
	if !approx(pos.X(), 10.0/60.0, 1e-4) || !approx(pos.Y(), 0, 1e-4) {
		t.Errorf("pos after step = %v", pos)
	}

	w.Step(1.0/60.0, &events)
	pos, _, _ = w.BodyPose(h)
	if !approx(pos.X(), 20.0/60.0, 1e-4) {
		t.Errorf("pos after two steps = %v", pos)
	}
}

// TestGravityAccelerates verifies gravity reaches dynamic bodies.
func TestGravityAccelerates(t *testing.T) {
	w := NewWorld(mgl32.Vec2{0, 100})
	h, _ := w.CreateBody(BodyDesc{Type: BodyDynamic, Mass: 1, Entity: 1},
		ColliderDesc{Shape: Ball(1)})

	var events []ContactEvent
	for i := 0; i < 60; i++ {
		w.Step(1.0/60.0, &events)
	}
	pos, _, _ := w.BodyPose(h)
	if pos.Y() <= 0 {
		t.Errorf("body did not fall: %v", pos)
	}
	vel, _ := w.Linvel(h)
	if !approx(vel.Y(), 100, 2) {
		t.Errorf("velocity after 1s of 100 gravity = %v", vel)
	}
}

// TestStaticBodyStays verifies static bodies ignore gravity.
func TestStaticBodyStays(t *testing.T) {
	w := NewWorld(mgl32.Vec2{0, 100})
	h, _ := w.CreateBody(BodyDesc{Type: BodyStatic, Pos: mgl32.Vec2{5, 5}, Entity: 1},
		ColliderDesc{Shape: Cuboid(10, 1)})

	var events []ContactEvent
	for i := 0; i < 30; i++ {
		w.Step(1.0/60.0, &events)
	}
	pos, _, _ := w.BodyPose(h)
	if pos != (mgl32.Vec2{5, 5}) {
		t.Errorf("static body moved: %v", pos)
	}
}

// TestContactEventsCarryEntities verifies begin events resolve both entity
// ids from the user-data slot.
func TestContactEventsCarryEntities(t *testing.T) {
	w := NewWorld(mgl32.Vec2{0, 0})
	w.CreateBody(BodyDesc{Type: BodyDynamic, Pos: mgl32.Vec2{0, 0}, Mass: 1, Entity: 11},
		ColliderDesc{Shape: Ball(4)})
	w.CreateBody(BodyDesc{Type: BodyDynamic, Pos: mgl32.Vec2{5, 0}, Mass: 1, Entity: 22},
		ColliderDesc{Shape: Ball(4)})

	var events []ContactEvent
	w.Step(1.0/60.0, &events)

	begins := 0
	for _, ev := range events {
		if ev.Phase != ContactBegin {
			continue
		}
		begins++
		ids := map[uint32]bool{ev.EntityA: true, ev.EntityB: true}
		if !ids[11] || !ids[22] {
			t.Errorf("contact entities = %d,%d, want 11 and 22", ev.EntityA, ev.EntityB)
		}
	}
	if begins != 1 {
		t.Errorf("begin events = %d, want 1", begins)
	}
}

// TestContactEndOnSeparation verifies an end event fires when bodies part.
func TestContactEndOnSeparation(t *testing.T) {
	w := NewWorld(mgl32.Vec2{0, 0})
	a, _ := w.CreateBody(BodyDesc{Type: BodyDynamic, Pos: mgl32.Vec2{0, 0}, Mass: 1, Entity: 1},
		ColliderDesc{Shape: Ball(2), Restitution: 0})
	w.CreateBody(BodyDesc{Type: BodyDynamic, Pos: mgl32.Vec2{3, 0}, Mass: 1, Entity: 2},
		ColliderDesc{Shape: Ball(2), Restitution: 0})

	var events []ContactEvent
	w.Step(1.0/60.0, &events)

	// Yank body A far away and step until separation reports.
	w.SetLinvel(a, mgl32.Vec2{-500, 0})
	sawEnd := false
	for i := 0; i < 30 && !sawEnd; i++ {
		events = events[:0]
		w.Step(1.0/60.0, &events)
		for _, ev := range events {
			if ev.Phase == ContactEnd {
				sawEnd = true
			}
		}
	}
	if !sawEnd {
		t.Error("no end contact after separation")
	}
}

// TestRemoveBodyRemovesJoints verifies joints die with either body.
func TestRemoveBodyRemovesJoints(t *testing.T) {
	w := NewWorld(mgl32.Vec2{0, 0})
	a, _ := w.CreateBody(BodyDesc{Type: BodyDynamic, Mass: 1, Entity: 1}, ColliderDesc{Shape: Ball(1)})
	b, _ := w.CreateBody(BodyDesc{Type: BodyDynamic, Pos: mgl32.Vec2{10, 0}, Mass: 1, Entity: 2}, ColliderDesc{Shape: Ball(1)})

	if _, err := w.CreateJoint(a, b, SpringJoint(mgl32.Vec2{}, mgl32.Vec2{}, 10, 100, 1)); err != nil {
		t.Fatalf("CreateJoint: %v", err)
	}
	if w.JointCount() != 1 {
		t.Fatalf("JointCount = %d", w.JointCount())
	}

	w.RemoveBody(b)
	if w.JointCount() != 0 {
		t.Errorf("joint survived body removal")
	}
	if w.BodyCount() != 1 {
		t.Errorf("BodyCount = %d, want 1", w.BodyCount())
	}

	// Idempotent removal.
	w.RemoveBody(b)
}

// TestCreateJointUnknownBody verifies the error path.
func TestCreateJointUnknownBody(t *testing.T) {
	w := NewWorld(mgl32.Vec2{0, 0})
	a, _ := w.CreateBody(BodyDesc{Type: BodyDynamic, Mass: 1, Entity: 1}, ColliderDesc{Shape: Ball(1)})

	if _, err := w.CreateJoint(a, BodyHandle(999), RevoluteJoint(mgl32.Vec2{}, mgl32.Vec2{})); err != ErrBodyNotFound {
		t.Errorf("err = %v, want ErrBodyNotFound", err)
	}
}

// TestRevoluteJointConstrainsDistance verifies a pinned bob stays at its
// anchor distance under gravity.
func TestRevoluteJointConstrainsDistance(t *testing.T) {
	w := NewWorld(mgl32.Vec2{0, 100})
	anchor, _ := w.CreateBody(BodyDesc{Type: BodyStatic, Pos: mgl32.Vec2{0, 0}, Entity: 1},
		ColliderDesc{Shape: Ball(1), Sensor: true})
	bob, _ := w.CreateBody(BodyDesc{Type: BodyDynamic, Pos: mgl32.Vec2{20, 0}, Mass: 1, Entity: 2},
		ColliderDesc{Shape: Ball(1)})

	if _, err := w.CreateJoint(anchor, bob, RevoluteJoint(mgl32.Vec2{}, mgl32.Vec2{-20, 0})); err != nil {
		t.Fatalf("CreateJoint: %v", err)
	}

	var events []ContactEvent
	for i := 0; i < 120; i++ {
		w.Step(1.0/60.0, &events)
	}
	pos, _, _ := w.BodyPose(bob)
	dist := pos.Len()
	if !approx(dist, 20, 1.5) {
		t.Errorf("bob distance from anchor = %v, want ~20", dist)
	}
}

// TestApplyImpulse verifies an impulse changes velocity by j/m.
func TestApplyImpulse(t *testing.T) {
	w := NewWorld(mgl32.Vec2{0, 0})
	h, _ := w.CreateBody(BodyDesc{Type: BodyDynamic, Mass: 2, Entity: 1}, ColliderDesc{Shape: Ball(1)})

	w.ApplyImpulse(h, mgl32.Vec2{10, 0})
	vel, _ := w.Linvel(h)
	if !approx(vel.X(), 5, 1e-4) {
		t.Errorf("velocity after impulse = %v, want (5,0)", vel)
	}
}

// TestColliderShapeRoundTrip verifies the wrapper reports the shape it was
// given.
func TestColliderShapeRoundTrip(t *testing.T) {
	w := NewWorld(mgl32.Vec2{0, 0})
	tests := []ColliderShape{
		Ball(3),
		Cuboid(4, 5),
		CapsuleY(2, 6),
	}
	for _, shape := range tests {
		h, err := w.CreateBody(BodyDesc{Type: BodyDynamic, Mass: 1, Entity: 1},
			ColliderDesc{Shape: shape})
		if err != nil {
			t.Fatalf("CreateBody(%v): %v", shape.Kind, err)
		}
		got, ok := w.ColliderShape(h)
		if !ok || got != shape {
			t.Errorf("ColliderShape = %+v, want %+v", got, shape)
		}
	}
}

// TestBodyPoseUnknownHandle verifies misses report ok=false.
func TestBodyPoseUnknownHandle(t *testing.T) {
	w := NewWorld(mgl32.Vec2{0, 0})
	if _, _, ok := w.BodyPose(BodyHandle(5)); ok {
		t.Error("unknown handle should miss")
	}
	if _, ok := w.Entity(BodyHandle(5)); ok {
		t.Error("unknown handle should miss")
	}
}
