// Package transform maintains parent/child relations with local offsets and
// writes composed world poses back onto entities. Like the tween extension it
// drives the scene through a narrow store interface.
package transform

import (
	"errors"
	"math"

	"github.com/go-gl/mathgl/mgl32"
)

// ErrCycleDetected is returned by SetParent when the new edge would create a
// cycle; the graph is left unchanged.
var ErrCycleDetected = errors.New("transform: cycle detected")

// PoseStore is the slice of the scene the graph needs: read and write the
// world pose of one entity. The scene implements it.
type PoseStore interface {
	Pose(id uint32) (pos mgl32.Vec2, rot float32, scale mgl32.Vec2, ok bool)
	SetPose(id uint32, pos mgl32.Vec2, rot float32, scale mgl32.Vec2)
}

// Local is an entity's transform relative to its parent.
type Local struct {
	Offset   mgl32.Vec2
	Rotation float32
	Scale    mgl32.Vec2
}

// IdentityLocal is the no-op local transform.
func IdentityLocal() Local {
	return Local{Scale: mgl32.Vec2{1, 1}}
}

type node struct {
	id     uint32
	parent uint32 // 0 = root
	local  Local
}

// Graph holds the registered hierarchy. Entities not registered here are
// untouched by propagation.
type Graph struct {
	nodes map[uint32]*node
	// order scratch reused across propagations
	stack []uint32
}

// NewGraph creates an empty transform graph.
func NewGraph() *Graph {
	return &Graph{nodes: make(map[uint32]*node)}
}

// Register adds an entity to the graph with the given local transform and no
// parent. Re-registering replaces the local transform.
func (g *Graph) Register(id uint32, local Local) {
	if n, ok := g.nodes[id]; ok {
		n.local = local
		return
	}
	g.nodes[id] = &node{id: id, local: local}
}

// SetLocal replaces the local transform of a registered entity.
func (g *Graph) SetLocal(id uint32, local Local) {
	if n, ok := g.nodes[id]; ok {
		n.local = local
	}
}

// SetParent links child under parent. Both are registered on demand with
// identity locals. Idempotent; fails with ErrCycleDetected when the edge
// would make child its own ancestor.
func (g *Graph) SetParent(child, parent uint32) error {
	if child == parent {
		return ErrCycleDetected
	}
	// Walk ancestry from parent; hitting child means a cycle.
	for cur := parent; cur != 0; {
		n, ok := g.nodes[cur]
		if !ok {
			break
		}
		if n.parent == child {
			return ErrCycleDetected
		}
		cur = n.parent
	}
	if _, ok := g.nodes[child]; !ok {
		g.nodes[child] = &node{id: child, local: IdentityLocal()}
	}
	if _, ok := g.nodes[parent]; !ok {
		g.nodes[parent] = &node{id: parent, local: IdentityLocal()}
	}
	g.nodes[child].parent = parent
	return nil
}

// Parent returns the parent of id, or 0.
func (g *Graph) Parent(id uint32) uint32 {
	if n, ok := g.nodes[id]; ok {
		return n.parent
	}
	return 0
}

// RemoveEntity drops an entity from the graph. Its children become roots.
func (g *Graph) RemoveEntity(id uint32) {
	delete(g.nodes, id)
	for _, n := range g.nodes {
		if n.parent == id {
			n.parent = 0
		}
	}
}

// Len returns the number of registered entities.
func (g *Graph) Len() int {
	return len(g.nodes)
}

// Propagate walks the hierarchy depth-first from roots and writes composed
// world poses onto entities: the local offset is rotated by the parent
// rotation and scaled by the parent scale, then added to the parent position.
// Children whose parent was removed (or never registered) are treated as
// roots.
func (g *Graph) Propagate(store PoseStore) {
	// children index rebuilt per call; the graph is small and mutation-heavy
	// games would otherwise pay for incremental bookkeeping every SetParent.
	children := make(map[uint32][]uint32, len(g.nodes))
	roots := g.stack[:0]
	for id, n := range g.nodes {
		if n.parent == 0 || g.nodes[n.parent] == nil {
			roots = append(roots, id)
		} else {
			children[n.parent] = append(children[n.parent], id)
		}
	}
	for _, root := range roots {
		pos, rot, scale, ok := store.Pose(root)
		if !ok {
			continue
		}
		// Root world pose comes straight off the entity; only descendants are
		// rewritten.
		g.propagateChildren(store, children, root, pos, rot, scale)
	}
	g.stack = roots[:0]
}

func (g *Graph) propagateChildren(store PoseStore, children map[uint32][]uint32, parent uint32, ppos mgl32.Vec2, prot float32, pscale mgl32.Vec2) {
	for _, child := range children[parent] {
		n := g.nodes[child]
		local := n.local

		scaled := mgl32.Vec2{local.Offset.X() * pscale.X(), local.Offset.Y() * pscale.Y()}
		sin := float32(math.Sin(float64(prot)))
		cos := float32(math.Cos(float64(prot)))
		rotated := mgl32.Vec2{
			scaled.X()*cos - scaled.Y()*sin,
			scaled.X()*sin + scaled.Y()*cos,
		}
		wpos := ppos.Add(rotated)
		wrot := prot + local.Rotation
		wscale := mgl32.Vec2{pscale.X() * local.Scale.X(), pscale.Y() * local.Scale.Y()}

		store.SetPose(child, wpos, wrot, wscale)
		g.propagateChildren(store, children, child, wpos, wrot, wscale)
	}
}
