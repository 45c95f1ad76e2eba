package engine

import (
	"errors"
	"fmt"
	"log"

	"github.com/go-gl/mathgl/mgl32"

	"zap-engine/internal/effects"
	"zap-engine/internal/manifest"
	"zap-engine/internal/physics"
	"zap-engine/internal/transform"
	"zap-engine/internal/tween"
)

// Errors for operations that cross subsystem boundaries.
var (
	ErrEntityNotFound  = errors.New("engine: entity not found")
	ErrEntityHasNoBody = errors.New("engine: entity has no body")
)

// Camera2D is the out-of-band camera state games steer via custom event
// kinds 10..15; world-to-screen stays the presenter's business.
type Camera2D struct {
	Pos  mgl32.Vec2
	Zoom float32
}

// GameEvent is one entry in the outgoing game-event queue.
type GameEvent struct {
	Kind    uint32
	A, B, C float32
}

// Context is the facade game code mutates the world through. It owns every
// subsystem and exposes the composed operations that must stay atomic across
// them (spawn-with-body, despawn, joints). Operations that need two
// subsystems mutably at once live as free functions instead (TickEmitters).
type Context struct {
	Scene      *Scene
	Effects    *effects.State
	Lights     *LightState
	Vectors    *VectorState
	Physics    *physics.World // nil when the game disabled physics
	Tweens     *tween.State
	Transforms *transform.Graph
	Camera     Camera2D

	bake   BakeState
	nextId uint32

	sprites *manifest.Registry
	sounds  []uint8
	events  []GameEvent

	// collisions visible to the game this frame: the previous step's.
	collisions []CollisionEvent

	config         GameConfig
	visibleW, visibleH float32
}

// CollisionEvent is a contact pair resolved to entity ids.
type CollisionEvent struct {
	EntityA, EntityB EntityId
	Point            mgl32.Vec2
	Normal           mgl32.Vec2
	Begin            bool
}

// NewContext builds a context for the given config. Physics is only created
// when the config enables it.
func NewContext(cfg GameConfig) *Context {
	ctx := &Context{
		Scene:      NewScene(cfg.MaxEntities),
		Effects:    effects.NewState(cfg.EffectsSeed),
		Lights:     NewLightState(),
		Vectors:    NewVectorState(),
		Tweens:     tween.NewState(),
		Transforms: transform.NewGraph(),
		Camera:     Camera2D{Zoom: 1},
		sprites:    manifest.Empty(),
		config:     cfg,
		visibleW:   cfg.WorldWidth,
		visibleH:   cfg.WorldHeight,
	}
	if cfg.EnablePhysics {
		ctx.Physics = physics.NewWorld(cfg.PhysicsGravity)
	}
	return ctx
}

// Config returns the game config the engine was started with.
func (c *Context) Config() GameConfig {
	return c.config
}

// VisibleSize returns the aspect-extended visible world area from the last
// resize; before any resize it equals the design world size.
func (c *Context) VisibleSize() (float32, float32) {
	return c.visibleW, c.visibleH
}

func (c *Context) setVisibleSize(w, h float32) {
	if w > 0 {
		c.visibleW = w
	}
	if h > 0 {
		c.visibleH = h
	}
}

// Spawn allocates an id, stamps it onto the entity, and appends it to the
// scene. At capacity the spawn silently fails and NilEntity is returned.
func (c *Context) Spawn(e Entity) EntityId {
	c.nextId++
	e.Id = EntityId(c.nextId)
	e.Active = true
	if e.Scale == (mgl32.Vec2{}) {
		e.Scale = mgl32.Vec2{1, 1}
	}
	if e.Sprite != nil && e.Sprite.CellSpan == 0 {
		e.Sprite.CellSpan = 1
	}
	if !c.Scene.Spawn(e) {
		return NilEntity
	}
	return e.Id
}

// SpawnWithBody creates the physics body with the new entity id in its
// user-data slot, stamps the handle back onto the entity, and appends it to
// the scene in one atomic composed operation. Every body has an entity: a
// body-creation failure aborts the spawn.
func (c *Context) SpawnWithBody(e Entity, body physics.BodyDesc, col physics.ColliderDesc) (EntityId, error) {
	if c.Physics == nil {
		return NilEntity, fmt.Errorf("engine: physics disabled")
	}
	c.nextId++
	id := EntityId(c.nextId)
	e.Id = id
	e.Active = true
	if e.Scale == (mgl32.Vec2{}) {
		e.Scale = mgl32.Vec2{1, 1}
	}
	if e.Sprite != nil && e.Sprite.CellSpan == 0 {
		e.Sprite.CellSpan = 1
	}

	body.Entity = uint32(id)
	body.Pos = e.Pos
	body.Rotation = e.Rotation
	h, err := c.Physics.CreateBody(body, col)
	if err != nil {
		return NilEntity, fmt.Errorf("engine: create body: %w", err)
	}
	e.Body = &BodyRef{Handle: uint32(h)}
	if !c.Scene.Spawn(e) {
		c.Physics.RemoveBody(h)
		return NilEntity, fmt.Errorf("engine: scene at capacity")
	}
	return id, nil
}

// Despawn removes an entity; if it has a body, the body and every joint
// referencing it go too; both removals happen or neither. Unknown ids are a
// silent no-op.
func (c *Context) Despawn(id EntityId) {
	e := c.Scene.Get(id)
	if e == nil {
		return
	}
	if e.Body != nil && c.Physics != nil {
		c.Physics.RemoveBody(physics.BodyHandle(e.Body.Handle))
	}
	c.Scene.Despawn(id)
}

// CreateJoint joins two entities' bodies. Fails with ErrEntityNotFound or
// ErrEntityHasNoBody; the caller handles it.
func (c *Context) CreateJoint(a, b EntityId, desc physics.JointDesc) (physics.JointHandle, error) {
	if c.Physics == nil {
		return 0, ErrEntityHasNoBody
	}
	ea := c.Scene.Get(a)
	eb := c.Scene.Get(b)
	if ea == nil || eb == nil {
		return 0, ErrEntityNotFound
	}
	if ea.Body == nil || eb.Body == nil {
		return 0, ErrEntityHasNoBody
	}
	return c.Physics.CreateJoint(
		physics.BodyHandle(ea.Body.Handle),
		physics.BodyHandle(eb.Body.Handle),
		desc,
	)
}

// RemoveJoint removes a joint by handle.
func (c *Context) RemoveJoint(h physics.JointHandle) {
	if c.Physics != nil {
		c.Physics.RemoveJoint(h)
	}
}

// Collisions returns the contact events the previous tick's physics step
// produced. The one-frame delay is contractual.
func (c *Context) Collisions() []CollisionEvent {
	return c.collisions
}

// BakeLayer sets the layer's bake bit and bumps the generation.
func (c *Context) BakeLayer(layer RenderLayer) {
	c.bake.bake(layer)
}

// InvalidateLayer bumps the generation without touching the mask, telling
// the presenter to re-render its cached target.
func (c *Context) InvalidateLayer(layer RenderLayer) {
	c.bake.invalidate()
}

// UnbakeLayer clears the layer's bake bit and bumps the generation.
func (c *Context) UnbakeLayer(layer RenderLayer) {
	c.bake.unbake(layer)
}

// Bake returns the current bake state.
func (c *Context) Bake() BakeState {
	return c.bake
}

// Sprite resolves a manifest sprite into a component, cloned per call.
// Unknown names return nil, and an entity whose Sprite is nil produces no
// instance, so it is not drawn. The presenter's magenta placeholder covers
// only instances whose cell lies outside the atlas grid.
func (c *Context) Sprite(name string) *SpriteComponent {
	e, ok := c.sprites.Sprite(name)
	if !ok {
		return nil
	}
	return &SpriteComponent{
		AtlasId:  e.AtlasId,
		Col:      e.Col,
		Row:      e.Row,
		CellSpan: e.CellSpan,
		Alpha:    1,
	}
}

// SoundId resolves a manifest sound name to its wire event id.
func (c *Context) SoundId(name string) (uint8, bool) {
	s, ok := c.sprites.Sound(name)
	if !ok {
		return 0, false
	}
	return s.EventId, true
}

// EmitSound queues a sound id for the host this frame. Unknown ids are the
// mixer's problem; the queue clamps at the wire capacity.
func (c *Context) EmitSound(id uint8) {
	c.sounds = append(c.sounds, id)
}

// EmitEvent queues a game event for the host this frame.
func (c *Context) EmitEvent(kind uint32, a, b, cc float32) {
	c.events = append(c.events, GameEvent{Kind: kind, A: a, B: b, C: cc})
}

// LoadManifest parses manifest JSON and replaces the sprite registry.
// Called once at init; a parse failure is fatal to engine start.
func (c *Context) LoadManifest(data []byte) error {
	reg, err := manifest.Parse(data)
	if err != nil {
		return err
	}
	c.sprites = reg
	log.Printf("📦 Manifest loaded: %d atlases, %d sprites", len(reg.Atlases()), reg.SpriteCount())
	return nil
}

// Registry exposes the resolved manifest (presenter setup, tests).
func (c *Context) Registry() *manifest.Registry {
	return c.sprites
}

func (c *Context) drainSounds() []uint8 {
	out := c.sounds
	c.sounds = c.sounds[:0]
	return out
}

func (c *Context) drainEvents() []GameEvent {
	out := c.events
	c.events = c.events[:0]
	return out
}
