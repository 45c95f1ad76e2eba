package engine

import (
	"math"

	"github.com/go-gl/mathgl/mgl32"

	"zap-engine/internal/effects"
	"zap-engine/internal/physics"
)

// debugOutlineSegments is the circle resolution for collider outlines.
const debugOutlineSegments = 16

// DebugDrawColliders traces every live collider into the effects debug-line
// pool for one frame. Another free function over two subsystems, same reason
// as TickEmitters; games call it from Update when they want overlays.
func DebugDrawColliders(scene *Scene, world *physics.World, fx *effects.State, width, color float32) {
	if world == nil {
		return
	}
	entities := scene.Entities()
	for i := range entities {
		e := &entities[i]
		if e.Body == nil {
			continue
		}
		h := physics.BodyHandle(e.Body.Handle)
		shape, ok := world.ColliderShape(h)
		if !ok {
			continue
		}
		pos, rot, _ := world.BodyPose(h)
		switch shape.Kind {
		case physics.ShapeBall:
			fx.AddDebugLine(circlePoints(pos, shape.Radius, debugOutlineSegments), width, color)
		case physics.ShapeCuboid:
			hx, hy := shape.HalfExtents.X(), shape.HalfExtents.Y()
			corners := []mgl32.Vec2{{-hx, -hy}, {hx, -hy}, {hx, hy}, {-hx, hy}, {-hx, -hy}}
			pts := make([]mgl32.Vec2, len(corners))
			for j, c := range corners {
				pts[j] = pos.Add(rotate(c, rot))
			}
			fx.AddDebugLine(pts, width, color)
		case physics.ShapeCapsuleY:
			a := pos.Add(rotate(mgl32.Vec2{0, -shape.HalfHeight}, rot))
			b := pos.Add(rotate(mgl32.Vec2{0, shape.HalfHeight}, rot))
			fx.AddDebugLine([]mgl32.Vec2{a, b}, shape.Radius*2, color)
		}
	}
}

func circlePoints(center mgl32.Vec2, radius float32, segments int) []mgl32.Vec2 {
	pts := make([]mgl32.Vec2, segments+1)
	for i := 0; i <= segments; i++ {
		a := 2 * math.Pi * float64(i) / float64(segments)
		pts[i] = center.Add(mgl32.Vec2{radius * float32(math.Cos(a)), radius * float32(math.Sin(a))})
	}
	return pts
}

func rotate(v mgl32.Vec2, angle float32) mgl32.Vec2 {
	sin := float32(math.Sin(float64(angle)))
	cos := float32(math.Cos(float64(angle)))
	return mgl32.Vec2{v.X()*cos - v.Y()*sin, v.X()*sin + v.Y()*cos}
}
