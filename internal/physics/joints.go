package physics

import (
	"errors"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/jakecoffman/cp"
)

// ErrJointNotFound names the unknown-joint error. No World method returns
// it: RemoveJoint treats removed or unknown handles as a no-op.
var ErrJointNotFound = errors.New("physics: joint not found")

// JointKind enumerates the supported constraints.
type JointKind uint8

const (
	JointFixed    JointKind = 0
	JointSpring   JointKind = 1
	JointRevolute JointKind = 2
)

// JointDesc describes a joint between two bodies. Anchors are in each body's
// local space.
type JointDesc struct {
	Kind       JointKind
	AnchorA    mgl32.Vec2
	AnchorB    mgl32.Vec2
	RestLength float32 // Spring
	Stiffness  float32 // Spring
	Damping    float32 // Spring
}

// FixedJoint welds two bodies: anchored pivot plus locked relative rotation.
func FixedJoint(anchorA, anchorB mgl32.Vec2) JointDesc {
	return JointDesc{Kind: JointFixed, AnchorA: anchorA, AnchorB: anchorB}
}

// SpringJoint is a damped spring between two anchors.
func SpringJoint(anchorA, anchorB mgl32.Vec2, restLength, stiffness, damping float32) JointDesc {
	return JointDesc{
		Kind:       JointSpring,
		AnchorA:    anchorA,
		AnchorB:    anchorB,
		RestLength: restLength,
		Stiffness:  stiffness,
		Damping:    damping,
	}
}

// RevoluteJoint pins two bodies at the anchors, leaving rotation free.
func RevoluteJoint(anchorA, anchorB mgl32.Vec2) JointDesc {
	return JointDesc{Kind: JointRevolute, AnchorA: anchorA, AnchorB: anchorB}
}

// JointHandle is an opaque reference to a joint owned by the world.
type JointHandle uint32

type jointSlot struct {
	constraints []*cp.Constraint
	a, b        BodyHandle
}

// CreateJoint adds a joint between two bodies. A fixed joint is modeled as a
// pivot plus a 1:1 gear, which is how the backend expresses a weld.
func (w *World) CreateJoint(a, b BodyHandle, desc JointDesc) (JointHandle, error) {
	sa, ok := w.bodies[a]
	if !ok {
		return 0, ErrBodyNotFound
	}
	sb, ok := w.bodies[b]
	if !ok {
		return 0, ErrBodyNotFound
	}

	var constraints []*cp.Constraint
	switch desc.Kind {
	case JointSpring:
		constraints = append(constraints, cp.NewDampedSpring(
			sa.body, sb.body,
			cpv(desc.AnchorA), cpv(desc.AnchorB),
			float64(desc.RestLength), float64(desc.Stiffness), float64(desc.Damping),
		))
	case JointFixed:
		constraints = append(constraints,
			cp.NewPivotJoint2(sa.body, sb.body, cpv(desc.AnchorA), cpv(desc.AnchorB)),
			cp.NewGearJoint(sa.body, sb.body, 0, 1),
		)
	default: // JointRevolute
		constraints = append(constraints,
			cp.NewPivotJoint2(sa.body, sb.body, cpv(desc.AnchorA), cpv(desc.AnchorB)),
		)
	}
	for _, c := range constraints {
		w.space.AddConstraint(c)
	}

	w.nextJoint++
	h := JointHandle(w.nextJoint)
	w.joints[h] = &jointSlot{constraints: constraints, a: a, b: b}
	return h, nil
}

// RemoveJoint removes a joint. Unknown handles are a no-op.
func (w *World) RemoveJoint(h JointHandle) {
	if slot, ok := w.joints[h]; ok {
		w.removeJointSlot(h, slot)
	}
}

// JointCount returns the number of live joints.
func (w *World) JointCount() int {
	return len(w.joints)
}

func (w *World) removeJointSlot(h JointHandle, slot *jointSlot) {
	for _, c := range slot.constraints {
		w.space.RemoveConstraint(c)
	}
	delete(w.joints, h)
}
