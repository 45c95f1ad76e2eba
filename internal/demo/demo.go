// Package demo is the bundled example game. It touches sprites, physics
// bodies and joints, emitters, arcs, tweens, lights, vector art and sounds,
// so a running engine exercises every wire section. It does not use the
// transform hierarchy.
package demo

import (
	"log"

	"github.com/go-gl/mathgl/mgl32"

	"zap-engine/internal/effects"
	"zap-engine/internal/engine"
	"zap-engine/internal/physics"
	"zap-engine/internal/tween"
)

const (
	worldW = 640
	worldH = 360

	soundImpact uint8 = 3
)

// Game is the demo game state.
type Game struct {
	crates   []engine.EntityId
	ball     engine.EntityId
	bob      engine.EntityId
	uiBadge  engine.EntityId
	torch    engine.LightId
	groundId engine.EntityId

	showColliders bool
}

// New creates the demo game.
func New() *Game {
	return &Game{}
}

// Config declares a small world with mid-size pools and physics on.
func (g *Game) Config() engine.GameConfig {
	return engine.GameConfig{
		WorldWidth:     worldW,
		WorldHeight:    worldH,
		MaxEntities:    256,
		EffectsSeed:    42,
		EnablePhysics:  true,
		PhysicsGravity: mgl32.Vec2{0, 600},
		FixedTimestep:  1.0 / 60.0,
	}
}

// Init builds the scene.
func (g *Game) Init(ctx *engine.Context) {
	// Static ground across the bottom.
	g.groundId, _ = ctx.SpawnWithBody(engine.Entity{
		Pos:   mgl32.Vec2{worldW / 2, worldH - 10},
		Layer: engine.LayerTerrain,
		Tag:   "ground",
		Sprite: g.sprite(ctx, "ground", engine.SpriteComponent{
			AtlasId: 0, Col: 0, Row: 1, CellSpan: 4, Alpha: 1,
		}),
	}, physics.BodyDesc{
		Type: physics.BodyStatic,
	}, physics.ColliderDesc{
		Shape:    physics.Cuboid(worldW/2, 10),
		Friction: 0.8,
	})

	// Falling crates on the objects layer.
	for i := 0; i < 6; i++ {
		id, _ := ctx.SpawnWithBody(engine.Entity{
			Pos:   mgl32.Vec2{120 + float32(i)*70, 40 + float32(i%3)*30},
			Scale: mgl32.Vec2{24, 24},
			Layer: engine.LayerObjects,
			Tag:   "crate",
			Sprite: g.sprite(ctx, "crate", engine.SpriteComponent{
				AtlasId: 0, Col: 1, Row: 0, CellSpan: 1, Alpha: 1,
			}),
		}, physics.BodyDesc{
			Type: physics.BodyDynamic,
			Mass: 2,
		}, physics.ColliderDesc{
			Shape:       physics.Cuboid(12, 12),
			Friction:    0.6,
			Restitution: 0.2,
		})
		g.crates = append(g.crates, id)
	}

	// A bouncy SDF ball: sprite-less, drawn by the raymarcher.
	g.ball, _ = ctx.SpawnWithBody(engine.Entity{
		Pos:   mgl32.Vec2{320, 60},
		Layer: engine.LayerObjects,
		Tag:   "ball",
		Mesh: &engine.MeshComponent{
			Shape:     engine.ShapeSphere,
			Radius:    14,
			Color:     [3]float32{0.9, 0.3, 0.2},
			Shininess: 24,
		},
	}, physics.BodyDesc{
		Type: physics.BodyDynamic,
		Mass: 1,
	}, physics.ColliderDesc{
		Shape:       physics.Ball(14),
		Restitution: 0.7,
		Friction:    0.3,
	})

	// Pendulum: static anchor, dynamic bob, revolute joint.
	anchor, _ := ctx.SpawnWithBody(engine.Entity{
		Pos:   mgl32.Vec2{520, 60},
		Layer: engine.LayerObjects,
		Tag:   "anchor",
	}, physics.BodyDesc{
		Type: physics.BodyStatic,
	}, physics.ColliderDesc{
		Shape:  physics.Ball(2),
		Sensor: true,
	})
	g.bob, _ = ctx.SpawnWithBody(engine.Entity{
		Pos:   mgl32.Vec2{580, 60},
		Layer: engine.LayerObjects,
		Tag:   "bob",
		Mesh: &engine.MeshComponent{
			Shape:      engine.ShapeCapsule,
			Radius:     8,
			HalfHeight: 12,
			Color:      [3]float32{0.3, 0.6, 0.9},
			Emissive:   0.3,
		},
		Emitter: &engine.EmitterComponent{
			Mode:        engine.EmitContinuous,
			Rate:        20,
			SpeedMin:    10,
			SpeedMax:    40,
			LifetimeMin: 0.3,
			LifetimeMax: 0.8,
			ColorMode:   effects.ColorModeRamp,
			Color:       1,
			Drag:        1.5,
		},
	}, physics.BodyDesc{
		Type: physics.BodyDynamic,
		Mass: 3,
	}, physics.ColliderDesc{
		Shape:    physics.Ball(8),
		Friction: 0.4,
	})
	if _, err := ctx.CreateJoint(anchor, g.bob, physics.RevoluteJoint(mgl32.Vec2{}, mgl32.Vec2{-60, 0})); err != nil {
		log.Printf("⚠️ Pendulum joint failed: %v", err)
	}

	// UI badge with a ping-pong alpha tween.
	g.uiBadge = ctx.Spawn(engine.Entity{
		Pos:   mgl32.Vec2{40, 30},
		Scale: mgl32.Vec2{20, 20},
		Layer: engine.LayerUI,
		Tag:   "badge",
		Sprite: g.sprite(ctx, "badge", engine.SpriteComponent{
			AtlasId: 1, Col: 0, Row: 0, CellSpan: 1, Alpha: 1,
		}),
	})
	badge := tween.Scalar(uint32(g.uiBadge), tween.Alpha, 1, 0.25, 0.8, tween.SineInOut)
	badge.Mode = tween.PingPong
	ctx.Tweens.Add(badge)

	// Torch light over the pendulum.
	g.torch = ctx.Lights.Add(engine.PointLight{
		Pos:       mgl32.Vec2{520, 40},
		Color:     [3]float32{1, 0.8, 0.5},
		Intensity: 1.2,
		Radius:    140,
		LayerMask: 1<<engine.LayerObjects | 1<<engine.LayerTerrain,
	})
	ctx.Lights.Ambient = [3]float32{0.9, 0.9, 1}

	// Terrain rarely changes; bake it.
	ctx.BakeLayer(engine.LayerTerrain)
}

// Update runs every fixed step.
func (g *Game) Update(ctx *engine.Context, input *engine.InputQueue) {
	// Vector backdrop: redrawn every frame into the cleared pool.
	w, h := ctx.VisibleSize()
	ctx.Vectors.FillPolygon([]mgl32.Vec2{
		{0, 0}, {w, 0}, {w, h * 0.4}, {0, h * 0.55},
	}, 0.08, 0.10, 0.18, 1)
	ctx.Vectors.FillCircle(mgl32.Vec2{w * 0.8, h * 0.15}, 18, 20, 0.95, 0.9, 0.7, 1)

	// Previous step's contacts: arcs + impact sound on fresh hits.
	for _, hit := range ctx.Collisions() {
		if !hit.Begin {
			continue
		}
		ctx.Effects.AddArc(
			hit.Point.Add(mgl32.Vec2{-12, -8}),
			hit.Point.Add(mgl32.Vec2{12, 8}),
			2, 4, 0.25, 10, 8,
		)
		ctx.EmitSound(soundImpact)
	}

	// Pointer down kicks the ball toward the click and bursts sparks there.
	for _, p := range input.PointerDowns() {
		if ball := ctx.Scene.Get(g.ball); ball != nil && ball.Body != nil {
			dir := mgl32.Vec2{p.X, p.Y}.Sub(ball.Pos)
			if l := dir.Len(); l > 1 {
				ctx.Physics.ApplyImpulse(physics.BodyHandle(ball.Body.Handle), dir.Mul(400/l))
			}
		}
		ctx.Effects.SpawnParticles(mgl32.Vec2{p.X, p.Y}, 24, effects.ParticleParams{
			DirMin: 0, DirMax: 6.2831853,
			SpeedMin: 40, SpeedMax: 160,
			LifeMin: 0.4, LifeMax: 1.0,
			Size:      2,
			ColorMode: effects.ColorModeRamp,
			Color:     1,
			Drag:      2,
		})
		ctx.EmitEvent(1, p.X, p.Y, 0)
	}

	// D toggles collider outlines.
	if input.KeyDown(68) {
		g.showColliders = !g.showColliders
	}
	if g.showColliders {
		engine.DebugDrawColliders(ctx.Scene, ctx.Physics, ctx.Effects, 1, 4)
	}

	// Space bar hops every crate.
	if input.KeyDown(32) {
		for _, id := range g.crates {
			if e := ctx.Scene.Get(id); e != nil && e.Body != nil {
				ctx.Physics.ApplyImpulse(physics.BodyHandle(e.Body.Handle), mgl32.Vec2{0, -300})
			}
		}
	}
}

// sprite resolves a manifest sprite, falling back to a literal cell when the
// manifest doesn't carry the name (keeps the demo alive without assets).
func (g *Game) sprite(ctx *engine.Context, name string, fallback engine.SpriteComponent) *engine.SpriteComponent {
	if sp := ctx.Sprite(name); sp != nil {
		return sp
	}
	fb := fallback
	return &fb
}
