// Package engine implements the simulation core: the scene of fat entities,
// the coordinating context facade, and the fixed-step runner that steps
// physics and effects and encodes renderable state into the wire buffer.
package engine

import (
	"github.com/go-gl/mathgl/mgl32"
)

// EntityId is a stable 32-bit identifier. Ids are allocated by a monotonic
// counter in Context and are never reused while the entity is live.
type EntityId uint32

// NilEntity is the zero id; no live entity ever carries it.
const NilEntity EntityId = 0

// RenderLayer is one of six ordered draw tiers. Batches within a layer
// preserve entity insertion order.
type RenderLayer uint8

const (
	LayerBackground RenderLayer = 0
	LayerTerrain    RenderLayer = 1
	LayerObjects    RenderLayer = 2
	LayerForeground RenderLayer = 3
	LayerVFX        RenderLayer = 4
	LayerUI         RenderLayer = 5

	// LayerCount is the number of draw tiers (also the width of the bake mask).
	LayerCount = 6
)

// SpriteComponent selects a cell (or a span of cells) in a texture atlas.
type SpriteComponent struct {
	AtlasId  uint32
	Col      uint32
	Row      uint32
	CellSpan uint32
	Alpha    float32
}

// EmitterMode selects between a steady stream and periodic bursts.
type EmitterMode uint8

const (
	EmitContinuous EmitterMode = 0
	EmitBurst      EmitterMode = 1
)

// EmitterComponent spawns particles at the entity position each tick.
// Accumulator carries the fractional particle count across ticks so low
// rates still emit.
type EmitterComponent struct {
	Mode        EmitterMode
	Interval    float32 // burst period in seconds; 0 fires once
	Rate        float32 // particles per second (continuous) or per burst
	Accumulator float32
	SpeedMin    float32
	SpeedMax    float32
	LifetimeMin float32
	LifetimeMax float32
	ColorMode   uint8 // effects color mode (see effects.ColorMode*)
	Color       float32
	Drag        float32
	AttractStrength float32
	SpeedFactor     float32

	fired bool // burst with Interval == 0 fires exactly once
}

// MeshShape selects the SDF primitive evaluated by the shader.
type MeshShape uint8

const (
	ShapeSphere     MeshShape = 0
	ShapeCapsule    MeshShape = 1
	ShapeRoundedBox MeshShape = 2
)

// MeshComponent describes a raymarched 2D shape drawn in the SDF section.
// CornerRadius is only meaningful for ShapeRoundedBox and travels in the
// instance's extra slot.
type MeshComponent struct {
	Shape        MeshShape
	Radius       float32
	HalfHeight   float32
	CornerRadius float32
	Color        [3]float32
	Shininess    float32
	Emissive     float32
	Extra        float32
}

// Entity is the fat record: mandatory pose fields plus optional components.
// If Body is set, Pos and Rotation are authoritative from physics after each
// step; game code applies forces or impulses instead of writing them.
type Entity struct {
	Id       EntityId
	Pos      mgl32.Vec2
	Rotation float32
	Scale    mgl32.Vec2
	Active   bool
	Layer    RenderLayer
	Tag      string

	Sprite  *SpriteComponent
	Emitter *EmitterComponent
	Mesh    *MeshComponent
	Body    *BodyRef
}

// BodyRef ties an entity to its physics body. The raw handle is owned by the
// physics world; the entity id is mirrored into the body's user-data slot so
// collision events resolve back to entities without a side table.
type BodyRef struct {
	Handle uint32
}

// Scene is a flat ordered sequence of entities keyed by stable id.
// Insertion order is preserved and is the tie-breaker for same-(layer, atlas)
// batches during the render build. Linear scans are fine at the target scale
// (N <= ~1000).
type Scene struct {
	entities []Entity
	maxCount int
}

// NewScene creates a scene pre-allocated for cap entities. cap also acts as
// the spawn limit; 0 means unlimited.
func NewScene(cap int) *Scene {
	alloc := cap
	if alloc <= 0 {
		alloc = 64
	}
	return &Scene{
		entities: make([]Entity, 0, alloc),
		maxCount: cap,
	}
}

// Spawn appends an entity. Returns false when the scene is at capacity; the
// entity is silently dropped in that case (clamp-and-continue policy).
func (s *Scene) Spawn(e Entity) bool {
	if s.maxCount > 0 && len(s.entities) >= s.maxCount {
		return false
	}
	s.entities = append(s.entities, e)
	return true
}

// Despawn removes the entity with the given id, preserving the order of the
// remainder. Unknown ids are a no-op.
func (s *Scene) Despawn(id EntityId) bool {
	for i := range s.entities {
		if s.entities[i].Id == id {
			s.entities = append(s.entities[:i], s.entities[i+1:]...)
			return true
		}
	}
	return false
}

// Get returns the entity with the given id, or nil.
func (s *Scene) Get(id EntityId) *Entity {
	for i := range s.entities {
		if s.entities[i].Id == id {
			return &s.entities[i]
		}
	}
	return nil
}

// Entities returns the live entity slice in insertion order. Callers must
// not retain the slice across spawns.
func (s *Scene) Entities() []Entity {
	return s.entities
}

// Len returns the number of live entities.
func (s *Scene) Len() int {
	return len(s.entities)
}

// Extension store implementations (tween.Store, transform.PoseStore) live in
// scene_ext.go.
