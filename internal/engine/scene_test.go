package engine

import (
	"testing"

	"github.com/go-gl/mathgl/mgl32"
)

// TestSceneSpawnDespawn verifies spawn/despawn leaves the count unchanged
// and preserves the order of the remainder.
func TestSceneSpawnDespawn(t *testing.T) {
	s := NewScene(10)

	s.Spawn(Entity{Id: 1, Tag: "a"})
	s.Spawn(Entity{Id: 2, Tag: "b"})
	s.Spawn(Entity{Id: 3, Tag: "c"})

	before := s.Len()
	s.Spawn(Entity{Id: 4, Tag: "d"})
	if !s.Despawn(4) {
		t.Fatal("despawn of live entity failed")
	}
	if s.Len() != before {
		t.Errorf("spawn+despawn changed count: %d -> %d", before, s.Len())
	}

	// Remaining order is insertion order.
	tags := []string{}
	for _, e := range s.Entities() {
		tags = append(tags, e.Tag)
	}
	want := []string{"a", "b", "c"}
	for i := range want {
		if tags[i] != want[i] {
			t.Errorf("order[%d] = %s, want %s", i, tags[i], want[i])
		}
	}
}

// TestSceneDespawnMiddlePreservesOrder removes from the middle.
func TestSceneDespawnMiddlePreservesOrder(t *testing.T) {
	s := NewScene(10)
	s.Spawn(Entity{Id: 1})
	s.Spawn(Entity{Id: 2})
	s.Spawn(Entity{Id: 3})

	s.Despawn(2)
	ids := []EntityId{}
	for _, e := range s.Entities() {
		ids = append(ids, e.Id)
	}
	if len(ids) != 2 || ids[0] != 1 || ids[1] != 3 {
		t.Errorf("ids after middle despawn: %v", ids)
	}
}

// TestSceneGet verifies lookup and the nil miss.
func TestSceneGet(t *testing.T) {
	s := NewScene(10)
	s.Spawn(Entity{Id: 7, Tag: "seven"})

	if e := s.Get(7); e == nil || e.Tag != "seven" {
		t.Error("Get(7) should find the entity")
	}
	if s.Get(99) != nil {
		t.Error("Get of unknown id should return nil")
	}
	if s.Despawn(99) {
		t.Error("Despawn of unknown id should report false")
	}
}

// TestSceneCapacity verifies the spawn boundary: exactly max succeeds, one
// more silently fails.
func TestSceneCapacity(t *testing.T) {
	s := NewScene(3)
	for i := 1; i <= 3; i++ {
		if !s.Spawn(Entity{Id: EntityId(i)}) {
			t.Fatalf("spawn %d should succeed", i)
		}
	}
	if s.Spawn(Entity{Id: 4}) {
		t.Error("spawn past capacity should fail")
	}
	if s.Len() != 3 {
		t.Errorf("Len = %d, want 3", s.Len())
	}
}

// TestSceneGetMutates verifies Get returns a live reference.
func TestSceneGetMutates(t *testing.T) {
	s := NewScene(4)
	s.Spawn(Entity{Id: 1})

	s.Get(1).Pos = mgl32.Vec2{5, 6}
	if got := s.Get(1).Pos; got != (mgl32.Vec2{5, 6}) {
		t.Errorf("mutation through Get lost: %v", got)
	}
}
