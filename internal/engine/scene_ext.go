package engine

import (
	"github.com/go-gl/mathgl/mgl32"

	"zap-engine/internal/tween"
)

// ApplyTween writes an interpolated value onto the addressed entity field.
// Satisfies tween.Store; returning false retires the tween because its
// entity is gone.
func (s *Scene) ApplyTween(id uint32, field tween.Field, v mgl32.Vec2) bool {
	e := s.Get(EntityId(id))
	if e == nil {
		return false
	}
	switch field {
	case tween.Position:
		e.Pos = v
	case tween.PosX:
		e.Pos[0] = v.X()
	case tween.PosY:
		e.Pos[1] = v.X()
	case tween.Rotation:
		e.Rotation = v.X()
	case tween.Scale:
		e.Scale = v
	case tween.ScaleX:
		e.Scale[0] = v.X()
	case tween.ScaleY:
		e.Scale[1] = v.X()
	case tween.Alpha:
		if e.Sprite != nil {
			e.Sprite.Alpha = v.X()
		}
	}
	return true
}

// TweenBase reads the current value of a tween field so games can build
// relative tweens from the live pose. Satisfies tween.Store.
func (s *Scene) TweenBase(id uint32, field tween.Field) (mgl32.Vec2, bool) {
	e := s.Get(EntityId(id))
	if e == nil {
		return mgl32.Vec2{}, false
	}
	switch field {
	case tween.Position:
		return e.Pos, true
	case tween.PosX:
		return mgl32.Vec2{e.Pos.X(), 0}, true
	case tween.PosY:
		return mgl32.Vec2{e.Pos.Y(), 0}, true
	case tween.Rotation:
		return mgl32.Vec2{e.Rotation, 0}, true
	case tween.Scale:
		return e.Scale, true
	case tween.ScaleX:
		return mgl32.Vec2{e.Scale.X(), 0}, true
	case tween.ScaleY:
		return mgl32.Vec2{e.Scale.Y(), 0}, true
	case tween.Alpha:
		if e.Sprite != nil {
			return mgl32.Vec2{e.Sprite.Alpha, 0}, true
		}
		return mgl32.Vec2{1, 0}, true
	}
	return mgl32.Vec2{}, false
}

// Pose reads an entity's world pose. Satisfies transform.PoseStore.
func (s *Scene) Pose(id uint32) (mgl32.Vec2, float32, mgl32.Vec2, bool) {
	e := s.Get(EntityId(id))
	if e == nil {
		return mgl32.Vec2{}, 0, mgl32.Vec2{}, false
	}
	return e.Pos, e.Rotation, e.Scale, true
}

// SetPose writes an entity's world pose. Satisfies transform.PoseStore.
func (s *Scene) SetPose(id uint32, pos mgl32.Vec2, rot float32, scale mgl32.Vec2) {
	if e := s.Get(EntityId(id)); e != nil {
		e.Pos = pos
		e.Rotation = rot
		e.Scale = scale
	}
}
