package engine

import (
	"math"

	"zap-engine/internal/effects"
)

// TickEmitters advances every entity emitter and spawns the due particles.
// It is a free function taking scene and effects as separate references;
// the two subsystems are mutably borrowed at once, which a method on a
// container owning both could not express.
func TickEmitters(scene *Scene, fx *effects.State, dt float32) {
	entities := scene.Entities()
	for i := range entities {
		e := &entities[i]
		if e.Emitter == nil || !e.Active {
			continue
		}
		em := e.Emitter

		count := 0
		switch em.Mode {
		case EmitBurst:
			if em.Interval <= 0 {
				// One-shot burst.
				if !em.fired {
					em.fired = true
					count = int(em.Rate)
				}
			} else {
				em.Accumulator += dt
				for em.Accumulator >= em.Interval {
					em.Accumulator -= em.Interval
					count += int(em.Rate)
				}
			}
		default: // EmitContinuous
			em.Accumulator += em.Rate * dt
			count = int(math.Floor(float64(em.Accumulator)))
			em.Accumulator -= float32(count)
		}
		if count <= 0 {
			continue
		}

		fx.SpawnParticles(e.Pos, count, effects.ParticleParams{
			DirMin:          0,
			DirMax:          2 * math.Pi,
			SpeedMin:        em.SpeedMin,
			SpeedMax:        em.SpeedMax,
			LifeMin:         em.LifetimeMin,
			LifeMax:         em.LifetimeMax,
			Size:            1,
			ColorMode:       em.ColorMode,
			Color:           em.Color,
			Drag:            em.Drag,
			AttractStrength: em.AttractStrength,
			SpeedFactor:     em.SpeedFactor,
		})
	}
}
