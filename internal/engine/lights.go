package engine

import "github.com/go-gl/mathgl/mgl32"

// PointLight is a persistent light: it stays until explicitly removed.
// LayerMask selects which draw tiers it affects (bit per layer).
type PointLight struct {
	Pos       mgl32.Vec2
	Color     [3]float32
	Intensity float32
	Radius    float32
	LayerMask uint32
}

// LightId identifies a registered light.
type LightId uint32

type lightSlot struct {
	light PointLight
	id    LightId
	live  bool
}

// LightState holds the persistent point lights and the ambient color.
// Ambient (1,1,1) is the contract for "unlit" output.
type LightState struct {
	slots   []lightSlot
	nextId  LightId
	Ambient [3]float32
}

// NewLightState creates a light state with full ambient.
func NewLightState() *LightState {
	return &LightState{nextId: 1, Ambient: [3]float32{1, 1, 1}}
}

// Add registers a light and returns its id.
func (s *LightState) Add(l PointLight) LightId {
	id := s.nextId
	s.nextId++
	for i := range s.slots {
		if !s.slots[i].live {
			s.slots[i] = lightSlot{light: l, id: id, live: true}
			return id
		}
	}
	s.slots = append(s.slots, lightSlot{light: l, id: id, live: true})
	return id
}

// Remove drops a light. Unknown ids are a no-op.
func (s *LightState) Remove(id LightId) {
	for i := range s.slots {
		if s.slots[i].live && s.slots[i].id == id {
			s.slots[i].live = false
			return
		}
	}
}

// Get returns a mutable reference to a light, or nil.
func (s *LightState) Get(id LightId) *PointLight {
	for i := range s.slots {
		if s.slots[i].live && s.slots[i].id == id {
			return &s.slots[i].light
		}
	}
	return nil
}

// Len returns the number of live lights.
func (s *LightState) Len() int {
	n := 0
	for i := range s.slots {
		if s.slots[i].live {
			n++
		}
	}
	return n
}

// Each calls fn for every live light in slot order. Add reuses freed slots,
// so a light added after a removal can come before older lights.
func (s *LightState) Each(fn func(PointLight)) {
	for i := range s.slots {
		if s.slots[i].live {
			fn(s.slots[i].light)
		}
	}
}
