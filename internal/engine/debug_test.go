package engine

import (
	"testing"

	"github.com/go-gl/mathgl/mgl32"

	"zap-engine/internal/effects"
	"zap-engine/internal/physics"
)

// TestDebugDrawColliders verifies every collider kind traces an outline into
// the debug pool.
func TestDebugDrawColliders(t *testing.T) {
	ctx := NewContext(GameConfig{EnablePhysics: true}.withDefaults())

	shapes := []physics.ColliderShape{
		physics.Ball(4),
		physics.Cuboid(3, 2),
		physics.CapsuleY(1, 5),
	}
	for i, shape := range shapes {
		if _, err := ctx.SpawnWithBody(Entity{Pos: mgl32.Vec2{float32(i) * 50, 0}},
			physics.BodyDesc{Type: physics.BodyStatic},
			physics.ColliderDesc{Shape: shape, Sensor: true}); err != nil {
			t.Fatalf("spawn %d: %v", i, err)
		}
	}
	// One entity without a body is skipped.
	ctx.Spawn(Entity{})

	DebugDrawColliders(ctx.Scene, ctx.Physics, ctx.Effects, 1, 4)
	verts := ctx.Effects.BuildVertices(nil)
	if len(verts) == 0 {
		t.Fatal("no debug vertices produced")
	}
	if len(verts)%(3*effects.VertexFloats) != 0 {
		t.Errorf("vertex count %d is not a whole triangle list", len(verts)/effects.VertexFloats)
	}

	// Nil world no-ops.
	plain := NewContext(GameConfig{}.withDefaults())
	DebugDrawColliders(plain.Scene, plain.Physics, plain.Effects, 1, 4)
}
