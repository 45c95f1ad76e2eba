// Package physics wraps a 2D rigid-body simulator behind a small vocabulary
// of engine types. The backend (Chipmunk via jakecoffman/cp) and its native
// math never leak through the public API: callers speak mgl32 vectors and
// opaque handles, and conversion happens at this boundary only.
package physics

import (
	"errors"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/jakecoffman/cp"
)

// ErrBodyNotFound is returned for operations on a removed or unknown handle.
var ErrBodyNotFound = errors.New("physics: body not found")

// BodyType selects how the simulator integrates a body.
type BodyType uint8

const (
	BodyDynamic   BodyType = 0
	BodyKinematic BodyType = 1
	BodyStatic    BodyType = 2
)

// ShapeKind enumerates the collider primitives the engine recognizes.
type ShapeKind uint8

const (
	ShapeBall     ShapeKind = 0
	ShapeCuboid   ShapeKind = 1
	ShapeCapsuleY ShapeKind = 2
)

// ColliderShape is the engine-facing collider description.
type ColliderShape struct {
	Kind        ShapeKind
	Radius      float32    // Ball, CapsuleY
	HalfExtents mgl32.Vec2 // Cuboid
	HalfHeight  float32    // CapsuleY
}

// Ball builds a circle collider.
func Ball(r float32) ColliderShape {
	return ColliderShape{Kind: ShapeBall, Radius: r}
}

// Cuboid builds a box collider from half extents.
func Cuboid(hx, hy float32) ColliderShape {
	return ColliderShape{Kind: ShapeCuboid, HalfExtents: mgl32.Vec2{hx, hy}}
}

// CapsuleY builds a vertical capsule collider.
func CapsuleY(r, halfHeight float32) ColliderShape {
	return ColliderShape{Kind: ShapeCapsuleY, Radius: r, HalfHeight: halfHeight}
}

// BodyDesc describes a rigid body at creation time. Entity is stored in the
// body's user-data slot so collision events resolve to entities in O(1).
type BodyDesc struct {
	Type     BodyType
	Pos      mgl32.Vec2
	Rotation float32
	LinVel   mgl32.Vec2
	AngVel   float32
	Mass     float32 // dynamic bodies only; <= 0 defaults to 1
	Entity   uint32
}

// ColliderDesc describes the collider attached to a body.
type ColliderDesc struct {
	Shape       ColliderShape
	Friction    float32
	Restitution float32
	Sensor      bool
}

// BodyHandle is an opaque reference to a body owned by the world.
type BodyHandle uint32

// ContactPhase distinguishes begin and end contact events.
type ContactPhase uint8

const (
	ContactBegin ContactPhase = 0
	ContactEnd   ContactPhase = 1
)

// ContactEvent is one begin/end contact pair, already resolved to entity ids.
type ContactEvent struct {
	EntityA, EntityB uint32
	Point            mgl32.Vec2
	Normal           mgl32.Vec2
	Phase            ContactPhase
}

// engineCollisionType tags every engine-created shape so one handler sees all
// contacts.
const engineCollisionType cp.CollisionType = 1

type bodySlot struct {
	body   *cp.Body
	shape  *cp.Shape
	desc   ColliderShape
	entity uint32
}

// World owns the simulator space and the handle tables.
type World struct {
	space   *cp.Space
	bodies  map[BodyHandle]*bodySlot
	joints  map[JointHandle]*jointSlot
	nextBody  uint32
	nextJoint uint32

	// pending collects contact events during a Step; drained into the
	// caller's buffer before Step returns.
	pending []ContactEvent
}

// NewWorld creates a physics world with the given gravity.
func NewWorld(gravity mgl32.Vec2) *World {
	w := &World{
		space:   cp.NewSpace(),
		bodies:  make(map[BodyHandle]*bodySlot),
		joints:  make(map[JointHandle]*jointSlot),
		pending: make([]ContactEvent, 0, 32),
	}
	w.space.SetGravity(cpv(gravity))

	handler := w.space.NewCollisionHandler(engineCollisionType, engineCollisionType)
	handler.BeginFunc = func(arb *cp.Arbiter, _ *cp.Space, _ interface{}) bool {
		w.record(arb, ContactBegin)
		return true
	}
	handler.SeparateFunc = func(arb *cp.Arbiter, _ *cp.Space, _ interface{}) {
		w.record(arb, ContactEnd)
	}
	return w
}

func (w *World) record(arb *cp.Arbiter, phase ContactPhase) {
	sa, sb := arb.Shapes()
	ba, bb := sa.Body(), sb.Body()
	ea, _ := ba.UserData.(uint32)
	eb, _ := bb.UserData.(uint32)

	// Separation arbiters can carry no contact points; fall back to the
	// midpoint between the two bodies.
	point := v2(ba.Position().Add(bb.Position()).Mult(0.5))
	normal := mgl32.Vec2{}
	set := arb.ContactPointSet()
	if set.Count > 0 {
		point = v2(set.Points[0].PointA)
		normal = v2(set.Normal)
	}
	w.pending = append(w.pending, ContactEvent{
		EntityA: ea,
		EntityB: eb,
		Point:   point,
		Normal:  normal,
		Phase:   phase,
	})
}

// CreateBody adds a rigid body plus its collider and returns the handle.
func (w *World) CreateBody(desc BodyDesc, col ColliderDesc) (BodyHandle, error) {
	mass := float64(desc.Mass)
	if mass <= 0 {
		mass = 1
	}

	var body *cp.Body
	switch desc.Type {
	case BodyStatic:
		body = cp.NewStaticBody()
	case BodyKinematic:
		body = cp.NewKinematicBody()
	default:
		body = cp.NewBody(mass, momentFor(mass, col.Shape))
	}
	body = w.space.AddBody(body)
	body.SetPosition(cpv(desc.Pos))
	body.SetAngle(float64(desc.Rotation))
	if desc.Type == BodyDynamic || desc.Type == BodyKinematic {
		body.SetVelocity(float64(desc.LinVel.X()), float64(desc.LinVel.Y()))
		body.SetAngularVelocity(float64(desc.AngVel))
	}
	body.UserData = desc.Entity

	shape := w.space.AddShape(newShape(body, col.Shape))
	shape.SetFriction(float64(col.Friction))
	shape.SetElasticity(float64(col.Restitution))
	shape.SetSensor(col.Sensor)
	shape.SetCollisionType(engineCollisionType)

	w.nextBody++
	h := BodyHandle(w.nextBody)
	w.bodies[h] = &bodySlot{body: body, shape: shape, desc: col.Shape, entity: desc.Entity}
	return h, nil
}

// RemoveBody removes a body, its collider, and every joint referencing it.
// Unknown handles are a no-op.
func (w *World) RemoveBody(h BodyHandle) {
	slot, ok := w.bodies[h]
	if !ok {
		return
	}
	for jh, j := range w.joints {
		if j.a == h || j.b == h {
			w.removeJointSlot(jh, j)
		}
	}
	w.space.RemoveShape(slot.shape)
	w.space.RemoveBody(slot.body)
	delete(w.bodies, h)
}

// ApplyImpulse applies a world-space impulse at the body's center of mass.
func (w *World) ApplyImpulse(h BodyHandle, v mgl32.Vec2) {
	if slot, ok := w.bodies[h]; ok {
		slot.body.ApplyImpulseAtWorldPoint(cpv(v), slot.body.Position())
	}
}

// ApplyForce applies a world-space force at the body's center of mass.
func (w *World) ApplyForce(h BodyHandle, v mgl32.Vec2) {
	if slot, ok := w.bodies[h]; ok {
		slot.body.ApplyForceAtWorldPoint(cpv(v), slot.body.Position())
	}
}

// SetLinvel overwrites the body's linear velocity.
func (w *World) SetLinvel(h BodyHandle, v mgl32.Vec2) {
	if slot, ok := w.bodies[h]; ok {
		slot.body.SetVelocity(float64(v.X()), float64(v.Y()))
	}
}

// Linvel reads the body's linear velocity.
func (w *World) Linvel(h BodyHandle) (mgl32.Vec2, bool) {
	slot, ok := w.bodies[h]
	if !ok {
		return mgl32.Vec2{}, false
	}
	return v2(slot.body.Velocity()), true
}

// BodyPose reads the body's position and rotation.
func (w *World) BodyPose(h BodyHandle) (mgl32.Vec2, float32, bool) {
	slot, ok := w.bodies[h]
	if !ok {
		return mgl32.Vec2{}, 0, false
	}
	return v2(slot.body.Position()), float32(slot.body.Angle()), true
}

// Entity returns the entity id stored in the body's user-data slot.
func (w *World) Entity(h BodyHandle) (uint32, bool) {
	slot, ok := w.bodies[h]
	if !ok {
		return 0, false
	}
	return slot.entity, true
}

// ColliderShape returns the collider description the body was created with.
func (w *World) ColliderShape(h BodyHandle) (ColliderShape, bool) {
	slot, ok := w.bodies[h]
	if !ok {
		return ColliderShape{}, false
	}
	return slot.desc, true
}

// BodyCount returns the number of live bodies.
func (w *World) BodyCount() int {
	return len(w.bodies)
}

// Step advances the simulation by dt and appends the contact events detected
// during this step to out.
func (w *World) Step(dt float32, out *[]ContactEvent) {
	w.pending = w.pending[:0]
	w.space.Step(float64(dt))
	*out = append(*out, w.pending...)
}

func momentFor(mass float64, s ColliderShape) float64 {
	switch s.Kind {
	case ShapeCuboid:
		return cp.MomentForBox(mass, float64(s.HalfExtents.X())*2, float64(s.HalfExtents.Y())*2)
	case ShapeCapsuleY:
		a := cp.Vector{X: 0, Y: -float64(s.HalfHeight)}
		b := cp.Vector{X: 0, Y: float64(s.HalfHeight)}
		return cp.MomentForSegment(mass, a, b, float64(s.Radius))
	default:
		return cp.MomentForCircle(mass, 0, float64(s.Radius), cp.Vector{})
	}
}

func newShape(body *cp.Body, s ColliderShape) *cp.Shape {
	switch s.Kind {
	case ShapeCuboid:
		return cp.NewBox(body, float64(s.HalfExtents.X())*2, float64(s.HalfExtents.Y())*2, 0)
	case ShapeCapsuleY:
		a := cp.Vector{X: 0, Y: -float64(s.HalfHeight)}
		b := cp.Vector{X: 0, Y: float64(s.HalfHeight)}
		return cp.NewSegment(body, a, b, float64(s.Radius))
	default:
		return cp.NewCircle(body, float64(s.Radius), cp.Vector{})
	}
}

// cpv and v2 convert vectors between engine math and backend math.
func cpv(v mgl32.Vec2) cp.Vector {
	return cp.Vector{X: float64(v.X()), Y: float64(v.Y())}
}

func v2(v cp.Vector) mgl32.Vec2 {
	return mgl32.Vec2{float32(v.X), float32(v.Y)}
}
