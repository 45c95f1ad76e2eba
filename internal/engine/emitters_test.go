package engine

import (
	"testing"

	"github.com/go-gl/mathgl/mgl32"

	"zap-engine/internal/effects"
)

// TestContinuousEmitterAccumulates verifies fractional rates carry across
// ticks: rate 30/s at 60 Hz spawns one particle every other tick.
func TestContinuousEmitterAccumulates(t *testing.T) {
	scene := NewScene(4)
	fx := effects.NewState(42)
	scene.Spawn(Entity{
		Id: 1, Active: true,
		Pos: mgl32.Vec2{10, 10},
		Emitter: &EmitterComponent{
			Mode: EmitContinuous, Rate: 30,
			SpeedMin: 1, SpeedMax: 2,
			LifetimeMin: 1, LifetimeMax: 1,
		},
	})

	dt := float32(1.0 / 60.0)
	TickEmitters(scene, fx, dt)
	if fx.ParticleCount() != 0 {
		t.Errorf("after first tick: %d particles, want 0", fx.ParticleCount())
	}
	TickEmitters(scene, fx, dt)
	if fx.ParticleCount() != 1 {
		t.Errorf("after second tick: %d particles, want 1", fx.ParticleCount())
	}

	// Over a full second the rate holds.
	for i := 0; i < 58; i++ {
		TickEmitters(scene, fx, dt)
	}
	if fx.ParticleCount() != 30 {
		t.Errorf("after 60 ticks: %d particles, want 30", fx.ParticleCount())
	}
}

// TestBurstEmitterOneShot verifies interval 0 fires exactly once.
func TestBurstEmitterOneShot(t *testing.T) {
	scene := NewScene(4)
	fx := effects.NewState(42)
	scene.Spawn(Entity{
		Id: 1, Active: true,
		Emitter: &EmitterComponent{
			Mode: EmitBurst, Interval: 0, Rate: 12,
			SpeedMin: 1, SpeedMax: 2,
			LifetimeMin: 10, LifetimeMax: 10,
		},
	})

	dt := float32(1.0 / 60.0)
	TickEmitters(scene, fx, dt)
	if fx.ParticleCount() != 12 {
		t.Fatalf("one-shot burst spawned %d, want 12", fx.ParticleCount())
	}
	for i := 0; i < 10; i++ {
		TickEmitters(scene, fx, dt)
	}
	if fx.ParticleCount() != 12 {
		t.Errorf("one-shot burst fired again: %d particles", fx.ParticleCount())
	}
}

// TestBurstEmitterInterval verifies periodic bursts fire every interval.
func TestBurstEmitterInterval(t *testing.T) {
	scene := NewScene(4)
	fx := effects.NewState(42)
	scene.Spawn(Entity{
		Id: 1, Active: true,
		Emitter: &EmitterComponent{
			Mode: EmitBurst, Interval: 0.1, Rate: 5,
			SpeedMin: 1, SpeedMax: 2,
			LifetimeMin: 10, LifetimeMax: 10,
		},
	})

	// 0.3 seconds at 60 Hz = 18 ticks = 3 bursts.
	dt := float32(1.0 / 60.0)
	for i := 0; i < 18; i++ {
		TickEmitters(scene, fx, dt)
	}
	if fx.ParticleCount() != 15 {
		t.Errorf("after 0.3s: %d particles, want 15", fx.ParticleCount())
	}
}

// TestInactiveEntityDoesNotEmit verifies the active flag gates emission.
func TestInactiveEntityDoesNotEmit(t *testing.T) {
	scene := NewScene(4)
	fx := effects.NewState(42)
	scene.Spawn(Entity{
		Id: 1, Active: false,
		Emitter: &EmitterComponent{
			Mode: EmitContinuous, Rate: 600,
			LifetimeMin: 1, LifetimeMax: 1,
		},
	})

	TickEmitters(scene, fx, 1.0/60.0)
	if fx.ParticleCount() != 0 {
		t.Errorf("inactive entity emitted %d particles", fx.ParticleCount())
	}
}

// TestEmitterSpawnsAtEntityPosition verifies particles originate at the
// entity's current position.
func TestEmitterSpawnsAtEntityPosition(t *testing.T) {
	scene := NewScene(4)
	fx := effects.NewState(42)
	scene.Spawn(Entity{
		Id: 1, Active: true,
		Pos: mgl32.Vec2{33, 44},
		Emitter: &EmitterComponent{
			Mode: EmitBurst, Interval: 0, Rate: 1,
			LifetimeMin: 1, LifetimeMax: 1,
		},
	})

	TickEmitters(scene, fx, 1.0/60.0)
	parts := fx.Particles()
	if len(parts) != 1 {
		t.Fatalf("particles = %d", len(parts))
	}
	if parts[0].Pos != (mgl32.Vec2{33, 44}) {
		t.Errorf("particle at %v, want entity pos", parts[0].Pos)
	}
}
