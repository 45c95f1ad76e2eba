package engine

import (
	"github.com/go-gl/mathgl/mgl32"

	"zap-engine/internal/protocol"
)

// Game is the contract the embedded game implements. Config is read once at
// startup; Init runs before the first tick; Update runs every fixed step with
// the frame's input queue. Collision events read inside Update are the ones
// the previous tick's physics step produced.
type Game interface {
	Config() GameConfig
	Init(ctx *Context)
	Update(ctx *Context, input *InputQueue)
}

// GameConfig declares the game's world size, pool capacities, and simulation
// parameters. Zero fields take engine defaults.
type GameConfig struct {
	WorldWidth  float32
	WorldHeight float32

	MaxEntities        int
	MaxInstances       int
	MaxEffectsVertices int
	MaxSDFInstances    int
	MaxVectorVertices  int
	MaxLayerBatches    int
	MaxLights          int
	MaxSounds          int
	MaxEvents          int

	EffectsSeed    uint64
	PhysicsGravity mgl32.Vec2
	EnablePhysics  bool
	FixedTimestep  float32
}

// withDefaults fills zero fields from the engine defaults.
func (c GameConfig) withDefaults() GameConfig {
	caps := protocol.DefaultCapacities()
	if c.WorldWidth == 0 {
		c.WorldWidth = 640
	}
	if c.WorldHeight == 0 {
		c.WorldHeight = 360
	}
	if c.MaxEntities == 0 {
		c.MaxEntities = 1000
	}
	if c.MaxInstances == 0 {
		c.MaxInstances = caps.MaxInstances
	}
	if c.MaxEffectsVertices == 0 {
		c.MaxEffectsVertices = caps.MaxEffectsVertices
	}
	if c.MaxSDFInstances == 0 {
		c.MaxSDFInstances = caps.MaxSDFInstances
	}
	if c.MaxVectorVertices == 0 {
		c.MaxVectorVertices = caps.MaxVectorVertices
	}
	if c.MaxLayerBatches == 0 {
		c.MaxLayerBatches = caps.MaxLayerBatches
	}
	if c.MaxLights == 0 {
		c.MaxLights = caps.MaxLights
	}
	if c.MaxSounds == 0 {
		c.MaxSounds = caps.MaxSounds
	}
	if c.MaxEvents == 0 {
		c.MaxEvents = caps.MaxEvents
	}
	if c.EffectsSeed == 0 {
		c.EffectsSeed = 42
	}
	if c.FixedTimestep == 0 {
		c.FixedTimestep = 1.0 / 60.0
	}
	return c
}

// capacities projects the config onto the wire layout capacities.
func (c GameConfig) capacities() protocol.Capacities {
	return protocol.Capacities{
		MaxInstances:       c.MaxInstances,
		MaxEffectsVertices: c.MaxEffectsVertices,
		MaxSounds:          c.MaxSounds,
		MaxEvents:          c.MaxEvents,
		MaxSDFInstances:    c.MaxSDFInstances,
		MaxVectorVertices:  c.MaxVectorVertices,
		MaxLayerBatches:    c.MaxLayerBatches,
		MaxLights:          c.MaxLights,
	}
}
