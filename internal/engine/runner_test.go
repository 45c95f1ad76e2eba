package engine

import (
	"testing"

	"github.com/go-gl/mathgl/mgl32"

	"zap-engine/internal/effects"
	"zap-engine/internal/physics"
	"zap-engine/internal/protocol"
)

// stubGame drives the runner from test closures.
type stubGame struct {
	cfg      GameConfig
	initFn   func(*Context)
	updateFn func(*Context, *InputQueue)
}

func (g *stubGame) Config() GameConfig { return g.cfg }
func (g *stubGame) Init(ctx *Context) {
	if g.initFn != nil {
		g.initFn(ctx)
	}
}
func (g *stubGame) Update(ctx *Context, in *InputQueue) {
	if g.updateFn != nil {
		g.updateFn(ctx, in)
	}
}

// TestSortAndBatch is the S1 scenario: three sprites spawned as
// (Objects,0), (Terrain,1), (Objects,1) must sort to (Terrain,1),
// (Objects,0), (Objects,1) with three single-instance batches.
func TestSortAndBatch(t *testing.T) {
	game := &stubGame{
		cfg: GameConfig{},
		initFn: func(ctx *Context) {
			spawn := func(layer RenderLayer, atlas uint32, x float32) {
				ctx.Spawn(Entity{
					Pos:    mgl32.Vec2{x, 0},
					Layer:  layer,
					Sprite: &SpriteComponent{AtlasId: atlas, Alpha: 1, CellSpan: 1},
				})
			}
			spawn(LayerObjects, 0, 100)
			spawn(LayerTerrain, 1, 200)
			spawn(LayerObjects, 1, 300)
		},
	}
	r := NewRunner(game)
	r.Tick(1.0 / 60.0)

	fr := r.Reader()
	if fr.InstanceCount() != 3 {
		t.Fatalf("InstanceCount = %d, want 3", fr.InstanceCount())
	}

	// Instance order by X marker: 200 (Terrain), 100 (Objects/0), 300 (Objects/1).
	wantX := []float32{200, 100, 300}
	for i, want := range wantX {
		if got := fr.InstanceAt(i).X; got != want {
			t.Errorf("instance[%d].X = %v, want %v", i, got, want)
		}
	}

	wantBatches := []protocol.LayerBatch{
		{Layer: 1, Start: 0, End: 1, Atlas: 1},
		{Layer: 2, Start: 1, End: 2, Atlas: 0},
		{Layer: 2, Start: 2, End: 3, Atlas: 1},
	}
	if fr.LayerBatchCount() != len(wantBatches) {
		t.Fatalf("LayerBatchCount = %d, want %d", fr.LayerBatchCount(), len(wantBatches))
	}
	for i, want := range wantBatches {
		if got := fr.LayerBatchAt(i); got != want {
			t.Errorf("batch[%d] = %+v, want %+v", i, got, want)
		}
	}

	// Legacy split: length of the first atlas-0 run.
	if fr.AtlasSplit() != 1 {
		t.Errorf("AtlasSplit = %d, want 1", fr.AtlasSplit())
	}
}

// TestBatchesPartitionInstances checks invariant 2: batches partition
// [0, instance_count) with no gaps or overlaps and constant keys per run.
func TestBatchesPartitionInstances(t *testing.T) {
	game := &stubGame{
		cfg: GameConfig{},
		initFn: func(ctx *Context) {
			layers := []RenderLayer{LayerUI, LayerBackground, LayerObjects, LayerObjects, LayerTerrain, LayerUI, LayerBackground}
			atlases := []uint32{0, 1, 1, 0, 0, 0, 1}
			for i := range layers {
				ctx.Spawn(Entity{
					Pos:    mgl32.Vec2{float32(i), 0},
					Layer:  layers[i],
					Sprite: &SpriteComponent{AtlasId: atlases[i], Alpha: 1, CellSpan: 1},
				})
			}
		},
	}
	r := NewRunner(game)
	r.Tick(1.0 / 60.0)

	fr := r.Reader()
	n := fr.InstanceCount()
	covered := 0
	prevEnd := 0
	for i := 0; i < fr.LayerBatchCount(); i++ {
		b := fr.LayerBatchAt(i)
		if b.Start != prevEnd {
			t.Errorf("batch[%d] starts at %d, want %d (gap or overlap)", i, b.Start, prevEnd)
		}
		if b.End <= b.Start {
			t.Errorf("batch[%d] empty range [%d,%d)", i, b.Start, b.End)
		}
		prevEnd = b.End
		covered += b.End - b.Start
	}
	if covered != n {
		t.Errorf("batches cover %d instances, want %d", covered, n)
	}
	if prevEnd != n {
		t.Errorf("last batch ends at %d, want %d", prevEnd, n)
	}
}

// TestEmptyFrameIsValid verifies a tick with zero entities still publishes a
// readable header with zero counts.
func TestEmptyFrameIsValid(t *testing.T) {
	r := NewRunner(&stubGame{})
	r.Tick(1.0 / 60.0)

	fr, err := protocol.ReadFrame(r.Buffer().Data())
	if err != nil {
		t.Fatalf("ReadFrame: %v", err)
	}
	if !fr.Locked() {
		t.Error("frame should be published")
	}
	if fr.InstanceCount() != 0 || fr.LayerBatchCount() != 0 {
		t.Errorf("empty frame has instances=%d batches=%d", fr.InstanceCount(), fr.LayerBatchCount())
	}
	if fr.FrameCounter() != 1 {
		t.Errorf("FrameCounter = %d, want 1", fr.FrameCounter())
	}
}

// TestPhysicsSync is the S3 scenario: a body with velocity (10,0), no
// gravity, syncs its pose onto the entity each tick.
func TestPhysicsSync(t *testing.T) {
	var id EntityId
	game := &stubGame{
		cfg: GameConfig{EnablePhysics: true},
		initFn: func(ctx *Context) {
			var err error
			id, err = ctx.SpawnWithBody(Entity{
				Pos:   mgl32.Vec2{0, 0},
				Layer: LayerObjects,
			}, physics.BodyDesc{
				Type:   physics.BodyDynamic,
				LinVel: mgl32.Vec2{10, 0},
				Mass:   1,
			}, physics.ColliderDesc{Shape: physics.Ball(1)})
			if err != nil {
				t.Fatalf("SpawnWithBody: %v", err)
			}
		},
	}
	r := NewRunner(game)
	dt := float32(1.0 / 60.0)

	r.Tick(dt)
	e := r.Ctx().Scene.Get(id)
	if e == nil {
		t.Fatal("entity missing")
	}
	if !approx(e.Pos.X(), 10.0/60.0, 1e-4) || !approx(e.Pos.Y(), 0, 1e-4) {
		t.Errorf("after tick 1: pos = %v", e.Pos)
	}

	r.Tick(dt)
	if !approx(e.Pos.X(), 20.0/60.0, 1e-4) {
		t.Errorf("after tick 2: pos.x = %v", e.Pos.X())
	}

	// Invariant 3: entity pose equals body pose after the step.
	pos, rot, ok := r.Ctx().Physics.BodyPose(physics.BodyHandle(e.Body.Handle))
	if !ok {
		t.Fatal("body missing")
	}
	if !approx(e.Pos.X(), pos.X(), 1e-5) || !approx(e.Pos.Y(), pos.Y(), 1e-5) || !approx(e.Rotation, rot, 1e-5) {
		t.Errorf("entity pose %v/%v != body pose %v/%v", e.Pos, e.Rotation, pos, rot)
	}
}

// TestCollisionDelay is the S4 scenario: contacts from tick N's step are
// visible to the game's update in tick N+1 and not before.
func TestCollisionDelay(t *testing.T) {
	var perTick [][]CollisionEvent
	game := &stubGame{
		cfg: GameConfig{EnablePhysics: true},
		initFn: func(ctx *Context) {
			// Two overlapping dynamic balls collide on the first step.
			for i := 0; i < 2; i++ {
				_, err := ctx.SpawnWithBody(Entity{
					Pos:   mgl32.Vec2{float32(i) * 5, 0},
					Layer: LayerObjects,
				}, physics.BodyDesc{Type: physics.BodyDynamic, Mass: 1},
					physics.ColliderDesc{Shape: physics.Ball(4)})
				if err != nil {
					t.Fatalf("SpawnWithBody: %v", err)
				}
			}
		},
		updateFn: func(ctx *Context, _ *InputQueue) {
			snapshot := make([]CollisionEvent, len(ctx.Collisions()))
			copy(snapshot, ctx.Collisions())
			perTick = append(perTick, snapshot)
		},
	}
	r := NewRunner(game)
	r.Tick(1.0 / 60.0)
	r.Tick(1.0 / 60.0)

	if len(perTick) != 2 {
		t.Fatalf("updates = %d", len(perTick))
	}
	if len(perTick[0]) != 0 {
		t.Errorf("tick N update saw %d collisions, want 0", len(perTick[0]))
	}
	begins := 0
	for _, ev := range perTick[1] {
		if ev.Begin {
			begins++
		}
	}
	if begins != 1 {
		t.Errorf("tick N+1 update saw %d begin contacts, want 1", begins)
	}
}

// TestResizeProcessedBeforeUpdate verifies the kind-99 custom event updates
// the visible world before the game's update runs.
func TestResizeProcessedBeforeUpdate(t *testing.T) {
	var seenW, seenH float32
	game := &stubGame{
		cfg: GameConfig{WorldWidth: 640, WorldHeight: 360},
		updateFn: func(ctx *Context, _ *InputQueue) {
			seenW, seenH = ctx.VisibleSize()
		},
	}
	r := NewRunner(game)

	// Feed the pending queue directly; PushInput is gated on the wall-clock
	// loop which tests drive manually.
	r.inputMu.Lock()
	r.pending = append(r.pending, InputEvent{Kind: InputCustom, CustomKind: CustomResizeKind, A: 800, B: 450})
	r.inputMu.Unlock()

	r.Tick(1.0 / 60.0)
	if seenW != 800 || seenH != 450 {
		t.Errorf("visible size in update = %vx%v, want 800x450", seenW, seenH)
	}
}

// TestInputsDroppedWhileStopped verifies the stop contract: events queued
// while stopped never reach a later tick.
func TestInputsDroppedWhileStopped(t *testing.T) {
	sawPointer := false
	game := &stubGame{
		updateFn: func(_ *Context, in *InputQueue) {
			if len(in.PointerDowns()) > 0 {
				sawPointer = true
			}
		},
	}
	r := NewRunner(game)

	r.PushInput(InputEvent{Kind: InputPointerDown, X: 1, Y: 2})
	r.Tick(1.0 / 60.0)
	if sawPointer {
		t.Error("input pushed while stopped should be dropped")
	}
}

// TestDeterministicReplay is invariant 6: same seed, same input trace,
// byte-identical buffers.
func TestDeterministicReplay(t *testing.T) {
	build := func() *Runner {
		game := &stubGame{
			cfg: GameConfig{EnablePhysics: true, PhysicsGravity: mgl32.Vec2{0, 100}, EffectsSeed: 42},
			initFn: func(ctx *Context) {
				ctx.Spawn(Entity{
					Pos:   mgl32.Vec2{100, 100},
					Layer: LayerVFX,
					Emitter: &EmitterComponent{
						Mode: EmitContinuous, Rate: 30,
						SpeedMin: 10, SpeedMax: 50,
						LifetimeMin: 0.2, LifetimeMax: 0.9,
					},
				})
				ctx.SpawnWithBody(Entity{
					Pos:    mgl32.Vec2{50, 0},
					Layer:  LayerObjects,
					Sprite: &SpriteComponent{AtlasId: 0, Alpha: 1, CellSpan: 1},
				}, physics.BodyDesc{Type: physics.BodyDynamic, Mass: 1, LinVel: mgl32.Vec2{5, 0}},
					physics.ColliderDesc{Shape: physics.Ball(3)})
			},
		}
		return NewRunner(game)
	}

	r1 := build()
	r2 := build()
	dt := float32(1.0 / 60.0)
	for i := 0; i < 30; i++ {
		r1.Tick(dt)
		r2.Tick(dt)
	}

	d1 := r1.Buffer().Data()
	d2 := r2.Buffer().Data()
	if len(d1) != len(d2) {
		t.Fatalf("buffer sizes differ: %d vs %d", len(d1), len(d2))
	}
	for i := range d1 {
		if d1[i] != d2[i] {
			t.Fatalf("buffers diverge at float %d: %v vs %v", i, d1[i], d2[i])
		}
	}
}

// TestSectionCountsWithinCaps is invariant 1: counts never exceed
// capacities even under overload.
func TestSectionCountsWithinCaps(t *testing.T) {
	game := &stubGame{
		cfg: GameConfig{
			MaxEntities:        100,
			MaxInstances:       8,
			MaxLayerBatches:    2,
			MaxEffectsVertices: 30,
			MaxSounds:          2,
			MaxEvents:          2,
		},
		initFn: func(ctx *Context) {
			for i := 0; i < 50; i++ {
				ctx.Spawn(Entity{
					Pos:    mgl32.Vec2{float32(i), 0},
					Layer:  RenderLayer(i % LayerCount),
					Sprite: &SpriteComponent{AtlasId: uint32(i % 3), Alpha: 1, CellSpan: 1},
				})
			}
		},
		updateFn: func(ctx *Context, _ *InputQueue) {
			ctx.Effects.SpawnParticles(mgl32.Vec2{0, 0}, 100, effects.ParticleParams{
				DirMax: 6.283, SpeedMin: 5, SpeedMax: 10,
				LifeMin: 1, LifeMax: 2, Size: 1,
			})
			for i := 0; i < 10; i++ {
				ctx.EmitSound(uint8(i))
				ctx.EmitEvent(uint32(i), 0, 0, 0)
			}
		},
	}
	r := NewRunner(game)
	r.Tick(1.0 / 60.0)

	fr := r.Reader()
	l := r.Layout()
	if fr.InstanceCount() > l.Caps.MaxInstances {
		t.Errorf("instances %d > cap %d", fr.InstanceCount(), l.Caps.MaxInstances)
	}
	if fr.LayerBatchCount() > l.Caps.MaxLayerBatches {
		t.Errorf("batches %d > cap %d", fr.LayerBatchCount(), l.Caps.MaxLayerBatches)
	}
	if fr.EffectsVertexCount() > l.Caps.MaxEffectsVertices {
		t.Errorf("effects %d > cap %d", fr.EffectsVertexCount(), l.Caps.MaxEffectsVertices)
	}
	if fr.SoundCount() > l.Caps.MaxSounds {
		t.Errorf("sounds %d > cap %d", fr.SoundCount(), l.Caps.MaxSounds)
	}
	if fr.EventCount() > l.Caps.MaxEvents {
		t.Errorf("events %d > cap %d", fr.EventCount(), l.Caps.MaxEvents)
	}
}

// TestDebugAndVectorPoolsClearPerFrame verifies the per-frame pools reset
// before each update.
func TestDebugAndVectorPoolsClearPerFrame(t *testing.T) {
	ticks := 0
	game := &stubGame{
		updateFn: func(ctx *Context, _ *InputQueue) {
			ticks++
			if ctx.Vectors.Len() != 0 {
				t.Errorf("tick %d: vector pool not cleared (%d verts)", ticks, ctx.Vectors.Len())
			}
			ctx.Vectors.FillCircle(mgl32.Vec2{10, 10}, 5, 8, 1, 0, 0, 1)
			ctx.Effects.AddDebugLine([]mgl32.Vec2{{0, 0}, {10, 10}}, 1, 0)
		},
	}
	r := NewRunner(game)
	r.Tick(1.0 / 60.0)
	firstVerts := r.Reader().VectorVertexCount()
	r.Tick(1.0 / 60.0)

	if got := r.Reader().VectorVertexCount(); got != firstVerts {
		t.Errorf("vector count changed across identical frames: %d vs %d", got, firstVerts)
	}
}

func approx(a, b, eps float32) bool {
	d := a - b
	if d < 0 {
		d = -d
	}
	return d <= eps
}
