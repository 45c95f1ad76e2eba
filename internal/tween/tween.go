// Package tween animates typed value transitions on scene entities. It is an
// extension: the runner only ticks it when the game registered tweens, and it
// drives the scene through a narrow store interface so the two packages stay
// independently borrowable.
package tween

import (
	"github.com/go-gl/mathgl/mgl32"
)

// Field addresses the entity value a tween writes.
type Field uint8

const (
	Position Field = 0
	PosX     Field = 1
	PosY     Field = 2
	Rotation Field = 3
	Scale    Field = 4
	ScaleX   Field = 5
	ScaleY   Field = 6
	Alpha    Field = 7
)

// LoopMode controls what happens when a tween reaches its duration.
type LoopMode uint8

const (
	Once     LoopMode = 0
	Loop     LoopMode = 1
	PingPong LoopMode = 2
)

// Store is the slice of the scene a tween needs: write one field on one
// entity. The scene implements it; returning false retires the tween (its
// entity is gone).
type Store interface {
	ApplyTween(id uint32, field Field, value mgl32.Vec2) bool
	TweenBase(id uint32, field Field) (mgl32.Vec2, bool)
}

// TweenId identifies a registered tween.
type TweenId uint32

// Tween is one animated transition. Scalar fields use the X component of
// From/To; Position and Scale use both.
type Tween struct {
	Entity   uint32
	Target   Field
	From     mgl32.Vec2
	To       mgl32.Vec2
	Duration float32
	Elapsed  float32
	Easing   Easing
	Mode     LoopMode
	Paused   bool

	// OnComplete, when non-zero, is recorded into the completed queue when a
	// Once tween finishes. Drained via DrainCompleted.
	OnComplete uint32
}

// Scalar builds a single-channel tween; v0 and v1 land in the X component.
func Scalar(entity uint32, target Field, v0, v1, duration float32, e Easing) Tween {
	return Tween{
		Entity:   entity,
		Target:   target,
		From:     mgl32.Vec2{v0, 0},
		To:       mgl32.Vec2{v1, 0},
		Duration: duration,
		Easing:   e,
	}
}

// Vec builds a two-channel tween (Position or Scale).
func Vec(entity uint32, target Field, from, to mgl32.Vec2, duration float32, e Easing) Tween {
	return Tween{
		Entity:   entity,
		Target:   target,
		From:     from,
		To:       to,
		Duration: duration,
		Easing:   e,
	}
}

type slot struct {
	tween Tween
	id    TweenId
	live  bool
}

// State owns all registered tweens and the completed-event queue.
type State struct {
	slots     []slot
	nextId    TweenId
	completed []uint32
}

// NewState creates an empty tween state.
func NewState() *State {
	return &State{nextId: 1}
}

// Add registers a tween and returns its id.
func (s *State) Add(t Tween) TweenId {
	id := s.nextId
	s.nextId++
	// Reuse a dead slot before growing.
	for i := range s.slots {
		if !s.slots[i].live {
			s.slots[i] = slot{tween: t, id: id, live: true}
			return id
		}
	}
	s.slots = append(s.slots, slot{tween: t, id: id, live: true})
	return id
}

// Remove cancels a tween. Unknown ids are a no-op.
func (s *State) Remove(id TweenId) {
	for i := range s.slots {
		if s.slots[i].live && s.slots[i].id == id {
			s.slots[i].live = false
			return
		}
	}
}

// RemoveEntity cancels every tween targeting the entity. Called by games on
// despawn.
func (s *State) RemoveEntity(entity uint32) {
	for i := range s.slots {
		if s.slots[i].live && s.slots[i].tween.Entity == entity {
			s.slots[i].live = false
		}
	}
}

// SetPaused pauses or resumes a tween.
func (s *State) SetPaused(id TweenId, paused bool) {
	for i := range s.slots {
		if s.slots[i].live && s.slots[i].id == id {
			s.slots[i].tween.Paused = paused
			return
		}
	}
}

// Len returns the number of live tweens.
func (s *State) Len() int {
	n := 0
	for i := range s.slots {
		if s.slots[i].live {
			n++
		}
	}
	return n
}

// Tick advances every non-paused tween by dt and writes the interpolated
// values into the store. Duration-zero tweens complete on their first tick,
// writing To exactly.
func (s *State) Tick(dt float32, store Store) {
	for i := range s.slots {
		if !s.slots[i].live || s.slots[i].tween.Paused {
			continue
		}
		tw := &s.slots[i].tween
		tw.Elapsed += dt

		var t float32 = 1
		if tw.Duration > 0 {
			t = tw.Elapsed / tw.Duration
			if t > 1 {
				t = 1
			}
		}
		eased := Ease(tw.Easing, t)
		value := mgl32.Vec2{
			tw.From.X() + eased*(tw.To.X()-tw.From.X()),
			tw.From.Y() + eased*(tw.To.Y()-tw.From.Y()),
		}
		if t >= 1 {
			// Write the endpoint exactly; easing rounding must not leak into
			// the final value.
			value = tw.To
		}
		if !store.ApplyTween(tw.Entity, tw.Target, value) {
			s.slots[i].live = false
			continue
		}

		if t < 1 {
			continue
		}
		switch tw.Mode {
		case Once:
			if tw.OnComplete != 0 {
				s.completed = append(s.completed, tw.OnComplete)
			}
			s.slots[i].live = false
		case Loop:
			tw.Elapsed = 0
		case PingPong:
			tw.From, tw.To = tw.To, tw.From
			tw.Elapsed = 0
		}
	}
}

// DrainCompleted returns and clears the completion event ids recorded since
// the last drain.
func (s *State) DrainCompleted() []uint32 {
	out := s.completed
	s.completed = nil
	return out
}
