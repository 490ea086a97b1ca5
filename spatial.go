package thicket

import (
	"fmt"

	"github.com/dhconnelly/rtreego"
)

// SpatialHandle identifies an entry in a SpatialIndex. A handle is
// invalidated by Remove; a later Insert never hands out an equal handle for a
// reused slot. The zero SpatialHandle is never issued.
type SpatialHandle struct {
	slot uint32
	gen  uint32
}

// IsNil reports whether h is the zero handle.
func (h SpatialHandle) IsNil() bool { return h.gen == 0 }

func (h SpatialHandle) String() string {
	if h.IsNil() {
		return "nil"
	}
	return fmt.Sprintf("#%d@%d", h.slot, h.gen)
}

// SpatialIndex stores one axis-aligned box per node.
type SpatialIndex interface {
	// Insert adds an entry and returns its handle.
	Insert(id NodeID, box AABB) SpatialHandle
	// Update replaces the box of a live entry; the handle stays valid.
	Update(h SpatialHandle, box AABB) bool
	// Remove deletes a live entry and invalidates h.
	Remove(h SpatialHandle) bool
	// Lookup returns the node a live handle belongs to.
	Lookup(h SpatialHandle) (NodeID, bool)
	// QueryRect calls fn for every entry intersecting box until fn returns false.
	QueryRect(box AABB, fn func(id NodeID, box AABB) bool)
	// Len returns the number of live entries.
	Len() int
}

// spatialEpsilon pads degenerate boxes, which the R-tree cannot store.
const spatialEpsilon = 1e-6

type rtreeEntry struct {
	id   NodeID
	box  AABB
	rect rtreego.Rect
}

func (e *rtreeEntry) Bounds() rtreego.Rect { return e.rect }

// RTreeIndex is a SpatialIndex backed by an R-tree.
type RTreeIndex struct {
	tree    *rtreego.Rtree
	entries []*rtreeEntry
	gens    []uint32
	free    []uint32
	live    int
}

// NewRTreeIndex creates an empty index. minEntries and maxEntries bound the
// branching factor of R-tree nodes.
func NewRTreeIndex(minEntries, maxEntries int) *RTreeIndex {
	return &RTreeIndex{tree: rtreego.NewTree(2, minEntries, maxEntries)}
}

func toRect(b AABB) rtreego.Rect {
	w := max(b.Width(), spatialEpsilon)
	h := max(b.Height(), spatialEpsilon)
	r, err := rtreego.NewRect(rtreego.Point{b.MinX, b.MinY}, []float64{w, h})
	if err != nil {
		panic(fmt.Sprintf("thicket: invalid spatial box %+v: %v", b, err))
	}
	return r
}

// Insert implements SpatialIndex.
func (x *RTreeIndex) Insert(id NodeID, box AABB) SpatialHandle {
	var slot uint32
	if n := len(x.free); n > 0 {
		slot = x.free[n-1]
		x.free = x.free[:n-1]
	} else {
		slot = uint32(len(x.entries))
		x.entries = append(x.entries, nil)
		x.gens = append(x.gens, 0)
	}
	x.gens[slot]++
	if x.gens[slot] == 0 {
		x.gens[slot] = 1
	}
	e := &rtreeEntry{id: id, box: box, rect: toRect(box)}
	x.entries[slot] = e
	x.tree.Insert(e)
	x.live++
	return SpatialHandle{slot: slot, gen: x.gens[slot]}
}

func (x *RTreeIndex) entry(h SpatialHandle) *rtreeEntry {
	if h.IsNil() || int(h.slot) >= len(x.entries) || x.gens[h.slot] != h.gen {
		return nil
	}
	return x.entries[h.slot]
}

// Update implements SpatialIndex. The R-tree entry is re-inserted under the
// same handle.
func (x *RTreeIndex) Update(h SpatialHandle, box AABB) bool {
	e := x.entry(h)
	if e == nil {
		return false
	}
	if e.box == box {
		return true
	}
	// Delete locates the entry by its current bounds, so update them after.
	x.tree.Delete(e)
	e.box = box
	e.rect = toRect(box)
	x.tree.Insert(e)
	return true
}

// Remove implements SpatialIndex.
func (x *RTreeIndex) Remove(h SpatialHandle) bool {
	e := x.entry(h)
	if e == nil {
		return false
	}
	x.tree.Delete(e)
	x.entries[h.slot] = nil
	x.gens[h.slot]++
	if x.gens[h.slot] == 0 {
		x.gens[h.slot] = 1
	}
	x.free = append(x.free, h.slot)
	x.live--
	return true
}

// Lookup implements SpatialIndex.
func (x *RTreeIndex) Lookup(h SpatialHandle) (NodeID, bool) {
	e := x.entry(h)
	if e == nil {
		return NodeID{}, false
	}
	return e.id, true
}

// QueryRect implements SpatialIndex. Boxes touching only at an edge count as
// intersecting.
func (x *RTreeIndex) QueryRect(box AABB, fn func(id NodeID, box AABB) bool) {
	padded := AABB{
		MinX: box.MinX - spatialEpsilon, MinY: box.MinY - spatialEpsilon,
		MaxX: box.MaxX + spatialEpsilon, MaxY: box.MaxY + spatialEpsilon,
	}
	for _, s := range x.tree.SearchIntersect(toRect(padded)) {
		e := s.(*rtreeEntry)
		if !e.box.Intersects(box) {
			continue
		}
		if !fn(e.id, e.box) {
			return
		}
	}
}

// Len implements SpatialIndex.
func (x *RTreeIndex) Len() int { return x.live }

// spatialAdapter keeps one index entry per attached node in sync with the
// node's world bounds. Changes are queued by the transform pass and applied
// once per frame after the content-box pass.
type spatialAdapter struct {
	tree    *Tree
	index   SpatialIndex
	bounds  *table[AABB]
	pending *DirtyQueue
	metrics *Metrics

	inserts, updates, removes int
}

func newSpatialAdapter(tree *Tree, index SpatialIndex, bounds *table[AABB]) *spatialAdapter {
	return &spatialAdapter{
		tree:    tree,
		index:   index,
		bounds:  bounds,
		pending: NewDirtyQueue("spatial"),
	}
}

// touch schedules id's entry to be inserted or updated.
func (a *spatialAdapter) touch(id NodeID) {
	r := a.tree.rec(id)
	if r.Attached {
		a.pending.Mark(id, r.Layer)
	}
}

// apply flushes pending changes into the index.
func (a *spatialAdapter) apply() int {
	a.inserts, a.updates = 0, 0
	a.pending.DrainAscending(func(id NodeID) {
		box, ok := a.bounds.get(id.Index)
		if !ok {
			return
		}
		r := a.tree.rec(id)
		if r.Spatial.IsNil() || !a.index.Update(r.Spatial, box) {
			a.tree.setSpatial(id, a.index.Insert(id, box))
			a.inserts++
			a.metrics.spatialOp("insert")
			return
		}
		a.updates++
		a.metrics.spatialOp("update")
	})
	return a.inserts + a.updates
}

// remove drops id's entry and any pending change for it.
func (a *spatialAdapter) remove(id NodeID) {
	a.pending.Unmark(id)
	r := a.tree.rec(id)
	if r.Spatial.IsNil() {
		return
	}
	if a.index.Remove(r.Spatial) {
		a.removes++
		a.metrics.spatialOp("remove")
	}
	a.tree.setSpatial(id, SpatialHandle{})
}
