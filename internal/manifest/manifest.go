// Package manifest parses the asset-baker JSON manifest and resolves sprite
// names to atlas cells. Parsing happens once at init and is the only fatal
// error path in the engine.
package manifest

import (
	"encoding/json"
	"fmt"
)

// Atlas describes one texture sheet partitioned into a cols x rows grid.
type Atlas struct {
	Name      string `json:"name"`
	Cols      uint32 `json:"cols"`
	Rows      uint32 `json:"rows"`
	Path      string `json:"path"`
	NormalMap string `json:"normal_map,omitempty"`
}

// Sprite selects a cell (or span of cells) in a named atlas.
type Sprite struct {
	Atlas    string `json:"atlas"`
	Col      uint32 `json:"col"`
	Row      uint32 `json:"row"`
	CellSpan uint32 `json:"cell_span,omitempty"`
}

// Sound maps a name to an audio asset and its wire event id.
type Sound struct {
	Path    string  `json:"path"`
	EventId uint8   `json:"event_id,omitempty"`
	Volume  float32 `json:"volume,omitempty"`
}

// Manifest is the asset-baker output the host hands the engine at init.
type Manifest struct {
	Atlases []Atlas           `json:"atlases"`
	Sprites map[string]Sprite `json:"sprites"`
	Sounds  map[string]Sound  `json:"sounds,omitempty"`
}

// Entry is a resolved sprite: the atlas name replaced by its index.
type Entry struct {
	AtlasId  uint32
	Col      uint32
	Row      uint32
	CellSpan uint32
}

// Registry maps sprite names to resolved entries.
type Registry struct {
	atlases []Atlas
	sprites map[string]Entry
	sounds  map[string]Sound
}

// Parse decodes and validates manifest JSON. Sprites referencing unknown
// atlases fail the parse; a manifest error refuses engine start.
func Parse(data []byte) (*Registry, error) {
	var m Manifest
	if err := json.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("manifest: parse failed: %w", err)
	}

	atlasIds := make(map[string]uint32, len(m.Atlases))
	for i, a := range m.Atlases {
		if a.Cols == 0 || a.Rows == 0 {
			return nil, fmt.Errorf("manifest: atlas %q has zero grid", a.Name)
		}
		atlasIds[a.Name] = uint32(i)
	}

	reg := &Registry{
		atlases: m.Atlases,
		sprites: make(map[string]Entry, len(m.Sprites)),
		sounds:  m.Sounds,
	}
	for name, s := range m.Sprites {
		id, ok := atlasIds[s.Atlas]
		if !ok {
			return nil, fmt.Errorf("manifest: sprite %q references unknown atlas %q", name, s.Atlas)
		}
		span := s.CellSpan
		if span == 0 {
			span = 1
		}
		reg.sprites[name] = Entry{AtlasId: id, Col: s.Col, Row: s.Row, CellSpan: span}
	}
	return reg, nil
}

// Empty returns a registry with no assets, for games that draw without
// sprites (SDF or vector only).
func Empty() *Registry {
	return &Registry{sprites: map[string]Entry{}}
}

// Sprite resolves a sprite name.
func (r *Registry) Sprite(name string) (Entry, bool) {
	e, ok := r.sprites[name]
	return e, ok
}

// Sound resolves a sound name.
func (r *Registry) Sound(name string) (Sound, bool) {
	s, ok := r.sounds[name]
	return s, ok
}

// Atlases returns the atlas table in id order.
func (r *Registry) Atlases() []Atlas {
	return r.atlases
}

// SpriteCount returns the number of registered sprites.
func (r *Registry) SpriteCount() int {
	return len(r.sprites)
}
