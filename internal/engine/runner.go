package engine

import (
	"log"
	"sort"
	"sync"
	"sync/atomic"
	"time"

	"zap-engine/internal/physics"
	"zap-engine/internal/protocol"
)

// maxPendingInputs caps the host input queue between ticks. Floods past the
// cap are dropped oldest-first.
const maxPendingInputs = 256

// TickStats summarizes one completed tick for metrics and telemetry.
type TickStats struct {
	Frame          uint64
	Duration       time.Duration
	Entities       int
	Instances      int
	EffectsVerts   int
	SDFInstances   int
	VectorVerts    int
	LayerBatches   int
	Lights         int
	Sounds         int
	Events         int
	Particles      int
	Truncated      bool
}

// Runner drives the fixed-step pipeline: drain inputs, run the game update,
// tick extensions, step physics, advance effects, and rebuild the wire
// buffer. Everything inside a tick is synchronous and deterministic; the
// only suspension is between ticks.
type Runner struct {
	game Game
	cfg  GameConfig
	ctx  *Context

	layout protocol.Layout
	buf    *protocol.Buffer
	writer *protocol.FrameWriter
	frame  uint64

	inputMu sync.Mutex
	pending []InputEvent
	dropped uint64
	input   InputQueue

	initDone bool

	collisionScratch []physics.ContactEvent
	records          []instanceRecord
	effectsScratch   []float32

	running int32 // atomic
	ticker  *time.Ticker
	stopCh  chan struct{}
	wg      sync.WaitGroup

	// OnFrame, when set, receives the published buffer after every tick;
	// the message-passing fallback ships this prefix to remote presenters.
	OnFrame func(frame uint64, data []float32)
	// OnStats, when set, receives per-tick stats for metrics/telemetry.
	OnStats func(TickStats)
	// OnSounds and OnEvents mirror the wire queues as host callbacks.
	OnSounds func([]uint8)
	OnEvents func([]GameEvent)
}

type instanceRecord struct {
	layer RenderLayer
	atlas uint32
	inst  protocol.Instance
}

// NewRunner builds the runner, its context, and the wire buffer from the
// game's config. The game's Init runs on the first tick, after the host had
// a chance to load the manifest.
func NewRunner(game Game) *Runner {
	cfg := game.Config().withDefaults()
	layout := protocol.NewLayout(cfg.capacities())
	buf := protocol.NewBuffer(layout)
	r := &Runner{
		game:             game,
		cfg:              cfg,
		ctx:              NewContext(cfg),
		layout:           layout,
		buf:              buf,
		writer:           protocol.NewFrameWriter(layout, buf),
		pending:          make([]InputEvent, 0, maxPendingInputs),
		collisionScratch: make([]physics.ContactEvent, 0, 64),
		records:          make([]instanceRecord, 0, cfg.MaxInstances),
		stopCh:           make(chan struct{}),
	}
	return r
}

// Ctx exposes the context (tests, host surfaces).
func (r *Runner) Ctx() *Context { return r.ctx }

// Layout returns the wire layout.
func (r *Runner) Layout() protocol.Layout { return r.layout }

// Buffer returns the shared frame buffer.
func (r *Runner) Buffer() *protocol.Buffer { return r.buf }

// Reader wraps the current buffer in a consumer-side reader.
func (r *Runner) Reader() *protocol.FrameReader {
	return protocol.NewFrameReader(r.layout, r.buf.Data())
}

// Frame returns the number of completed ticks.
func (r *Runner) Frame() uint64 { return atomic.LoadUint64(&r.frame) }

// FixedTimestep returns the configured dt.
func (r *Runner) FixedTimestep() float32 { return r.cfg.FixedTimestep }

// LoadManifest forwards manifest JSON to the context. Must happen before the
// first tick; a failure here refuses engine start.
func (r *Runner) LoadManifest(data []byte) error {
	return r.ctx.LoadManifest(data)
}

// PushInput queues a host event for the next tick. Events pushed while the
// runner is stopped are dropped, as are floods past the pending cap.
func (r *Runner) PushInput(e InputEvent) {
	if atomic.LoadInt32(&r.running) == 0 {
		return
	}
	r.inputMu.Lock()
	if len(r.pending) >= maxPendingInputs {
		copy(r.pending, r.pending[1:])
		r.pending = r.pending[:len(r.pending)-1]
		r.dropped++
	}
	r.pending = append(r.pending, e)
	r.inputMu.Unlock()
}

// Start begins the fixed-cadence tick loop. Safe to call again after Stop.
func (r *Runner) Start() {
	if !atomic.CompareAndSwapInt32(&r.running, 0, 1) {
		return
	}
	r.stopCh = make(chan struct{})
	r.ticker = time.NewTicker(time.Duration(float64(r.cfg.FixedTimestep) * float64(time.Second)))

	r.wg.Add(1)
	go func() {
		defer r.wg.Done()
		for {
			select {
			case <-r.ticker.C:
				r.Tick(r.cfg.FixedTimestep)
			case <-r.stopCh:
				return
			}
		}
	}()
	log.Printf("🎮 Runner started: dt=%.4fs world=%.0fx%.0f", r.cfg.FixedTimestep, r.cfg.WorldWidth, r.cfg.WorldHeight)
}

// Stop halts the loop after the current tick completes. There is no mid-tick
// cancellation.
func (r *Runner) Stop() {
	if !atomic.CompareAndSwapInt32(&r.running, 1, 0) {
		return
	}
	r.ticker.Stop()
	close(r.stopCh)
	r.wg.Wait()

	// Inputs still pending at stop would be stale by resume; drop them.
	r.inputMu.Lock()
	r.pending = r.pending[:0]
	r.inputMu.Unlock()
	log.Println("🛑 Runner stopped")
}

// Running reports whether the tick loop is live.
func (r *Runner) Running() bool {
	return atomic.LoadInt32(&r.running) == 1
}

// Tick runs one fixed step. Exported so tests and bench harnesses can drive
// the pipeline without the wall-clock loop.
func (r *Runner) Tick(dt float32) {
	start := time.Now()

	// 1. Consume inputs queued since the last tick.
	r.inputMu.Lock()
	r.input.reset()
	for _, e := range r.pending {
		r.input.push(e)
	}
	r.pending = r.pending[:0]
	r.inputMu.Unlock()

	// 2. The resize custom event updates the visible world before any game
	// call so the game adapts this very frame.
	for _, e := range r.input.Events() {
		if e.Kind == InputCustom && e.CustomKind == CustomResizeKind {
			r.ctx.setVisibleSize(e.A, e.B)
		}
	}

	// Per-frame pools reset before the game draws into them.
	r.ctx.Effects.ClearDebug()
	r.ctx.Vectors.Clear()

	if !r.initDone {
		r.game.Init(r.ctx)
		r.initDone = true
	}

	// 3. Game update; ctx.Collisions() still holds the previous step's pairs.
	r.game.Update(r.ctx, &r.input)

	// 4. Extensions, only when the game registered anything.
	if r.ctx.Tweens.Len() > 0 {
		r.ctx.Tweens.Tick(dt, r.ctx.Scene)
	}
	if r.ctx.Transforms.Len() > 0 {
		r.ctx.Transforms.Propagate(r.ctx.Scene)
	}

	// 5. Physics step + pose sync; fresh contacts become next frame's
	// collision view.
	if r.ctx.Physics != nil {
		r.collisionScratch = r.collisionScratch[:0]
		r.ctx.Physics.Step(dt, &r.collisionScratch)
		r.syncBodies()
		r.ctx.collisions = r.ctx.collisions[:0]
		for _, ev := range r.collisionScratch {
			r.ctx.collisions = append(r.ctx.collisions, CollisionEvent{
				EntityA: EntityId(ev.EntityA),
				EntityB: EntityId(ev.EntityB),
				Point:   ev.Point,
				Normal:  ev.Normal,
				Begin:   ev.Phase == physics.ContactBegin,
			})
		}
	}

	// 6–7. Emitters then effects integration.
	TickEmitters(r.ctx.Scene, r.ctx.Effects, dt)
	r.ctx.Effects.Tick(dt)

	// 8–9. Encode the frame and release the lock.
	r.rebuildRenderBuffer()

	if r.OnStats != nil {
		r.OnStats(TickStats{
			Frame:        atomic.LoadUint64(&r.frame),
			Duration:     time.Since(start),
			Entities:     r.ctx.Scene.Len(),
			Instances:    r.writer.InstanceCount(),
			EffectsVerts: r.writer.EffectsVertexCount(),
			SDFInstances: r.writer.SDFCount(),
			VectorVerts:  r.writer.VectorVertexCount(),
			LayerBatches: r.writer.LayerBatchCount(),
			Lights:       r.writer.LightCount(),
			Sounds:       r.writer.SoundCount(),
			Events:       r.writer.EventCount(),
			Particles:    r.ctx.Effects.ParticleCount(),
			Truncated:    r.writer.Truncated(),
		})
	}
	if r.OnFrame != nil {
		r.OnFrame(atomic.LoadUint64(&r.frame), r.buf.UsedPrefix())
	}
}

// syncBodies copies each body's pose back onto its entity. A body whose
// entity vanished is stale: logged and skipped rather than fatal.
func (r *Runner) syncBodies() {
	entities := r.ctx.Scene.Entities()
	for i := range entities {
		e := &entities[i]
		if e.Body == nil {
			continue
		}
		pos, rot, ok := r.ctx.Physics.BodyPose(physics.BodyHandle(e.Body.Handle))
		if !ok {
			log.Printf("⚠️ Stale body handle on entity %d, skipping sync", e.Id)
			e.Body = nil
			continue
		}
		e.Pos = pos
		e.Rotation = rot
	}
}

// rebuildRenderBuffer is the sort/batch/encode stage: instances sorted by
// (layer, atlas, insertion order), one batch per contiguous run, then SDF,
// vector, effects, queue, and light sections, then header counters and lock.
func (r *Runner) rebuildRenderBuffer() {
	w := r.writer
	w.Reset()

	// b. Encode sprite instances with their (layer, atlas) sort key.
	r.records = r.records[:0]
	entities := r.ctx.Scene.Entities()
	for i := range entities {
		e := &entities[i]
		if !e.Active || e.Sprite == nil {
			continue
		}
		sp := e.Sprite
		r.records = append(r.records, instanceRecord{
			layer: e.Layer,
			atlas: sp.AtlasId,
			inst: protocol.Instance{
				X:         e.Pos.X(),
				Y:         e.Pos.Y(),
				Rotation:  e.Rotation,
				Scale:     e.Scale.X(),
				SpriteCol: float32(sp.Col),
				Alpha:     sp.Alpha,
				CellSpan:  float32(sp.CellSpan),
				AtlasRow:  float32(sp.Row),
			},
		})
	}

	// c. Stable sort keeps insertion order inside equal (layer, atlas) keys.
	sort.SliceStable(r.records, func(i, j int) bool {
		if r.records[i].layer != r.records[j].layer {
			return r.records[i].layer < r.records[j].layer
		}
		return r.records[i].atlas < r.records[j].atlas
	})

	for i := range r.records {
		if !w.AppendInstance(r.records[i].inst) {
			break
		}
	}
	written := w.InstanceCount()

	// d. One batch per contiguous (layer, atlas) run over what was written.
	atlasSplit := 0
	runStart := 0
	for i := 1; i <= written; i++ {
		if i == written ||
			r.records[i].layer != r.records[runStart].layer ||
			r.records[i].atlas != r.records[runStart].atlas {
			batch := protocol.LayerBatch{
				Layer: int(r.records[runStart].layer),
				Start: runStart,
				End:   i,
				Atlas: int(r.records[runStart].atlas),
			}
			if atlasSplit == 0 && batch.Atlas == 0 {
				// e. Legacy header slot: length of the first atlas-0 run.
				atlasSplit = batch.End - batch.Start
			}
			w.AppendLayerBatch(batch)
			runStart = i
		}
	}
	w.SetAtlasSplit(atlasSplit)

	// f. SDF meshes.
	for i := range entities {
		e := &entities[i]
		if !e.Active || e.Mesh == nil {
			continue
		}
		m := e.Mesh
		extra := m.Extra
		if m.Shape == ShapeRoundedBox {
			extra = m.CornerRadius
		}
		w.AppendSDF(protocol.SDFInstance{
			X:          e.Pos.X(),
			Y:          e.Pos.Y(),
			Radius:     m.Radius,
			Rotation:   e.Rotation,
			R:          m.Color[0],
			G:          m.Color[1],
			B:          m.Color[2],
			Shininess:  m.Shininess,
			Emissive:   m.Emissive,
			ShapeType:  float32(m.Shape),
			HalfHeight: m.HalfHeight,
			Extra:      extra,
		})
	}

	// g. Vector pool.
	for _, v := range r.ctx.Vectors.Vertices() {
		if !w.AppendVectorVertex(protocol.VectorVertex{X: v.X, Y: v.Y, R: v.R, G: v.G, B: v.B, A: v.A}) {
			break
		}
	}

	// h. Effects triangle list.
	r.effectsScratch = r.ctx.Effects.BuildVertices(r.effectsScratch[:0])
	w.CopyEffectsVertices(r.effectsScratch)

	// Queues.
	sounds := r.ctx.drainSounds()
	for _, id := range sounds {
		if !w.AppendSound(id) {
			break
		}
	}
	events := r.ctx.drainEvents()
	for _, ev := range events {
		if !w.AppendEvent(protocol.Event{Kind: ev.Kind, A: ev.A, B: ev.B, C: ev.C}) {
			break
		}
	}
	if r.OnSounds != nil && len(sounds) > 0 {
		r.OnSounds(sounds)
	}
	if r.OnEvents != nil && len(events) > 0 {
		r.OnEvents(events)
	}

	// i. Lights + ambient.
	r.ctx.Lights.Each(func(l PointLight) {
		w.AppendLight(protocol.Light{
			X: l.Pos.X(), Y: l.Pos.Y(),
			R: l.Color[0], G: l.Color[1], B: l.Color[2],
			Intensity: l.Intensity, Radius: l.Radius, LayerMask: l.LayerMask,
		})
	})
	amb := r.ctx.Lights.Ambient
	w.SetAmbient(amb[0], amb[1], amb[2])

	vw, vh := r.ctx.VisibleSize()
	w.SetWorldSize(vw, vh)

	// j. Bake word, counters, lock release.
	w.SetBakeState(r.ctx.Bake().Encode())
	frame := atomic.AddUint64(&r.frame, 1)
	w.Publish(frame)
}
