package thicket

// contentBoxResolver aggregates bottom-up: a node's content box is its own
// world bounds united with the content boxes of its non-virtual children,
// snapped outward to whole pixels. A node whose box did not change does not
// dirty its parent.
type contentBoxResolver struct {
	tree    *Tree
	queue   *DirtyQueue
	bounds  *table[AABB] // world bounds, written by the transform pass
	content table[AABB]

	written func(id NodeID, box AABB)
	writes  int
	visits  int
}

func newContentBoxResolver(tree *Tree, bounds *table[AABB]) *contentBoxResolver {
	return &contentBoxResolver{
		tree:   tree,
		queue:  NewDirtyQueue("content_box"),
		bounds: bounds,
	}
}

// mark queues id if it is attached.
func (r *contentBoxResolver) mark(id NodeID) {
	if id.IsNil() {
		return
	}
	rec := r.tree.rec(id)
	if rec.Attached {
		r.queue.Mark(id, rec.Layer)
	}
}

func (r *contentBoxResolver) get(id NodeID) (AABB, bool) {
	return r.content.get(id.Index)
}

func (r *contentBoxResolver) forget(id NodeID) {
	r.queue.Unmark(id)
	r.content.clear(id.Index)
}

// resolve drains deepest layers first so every child is final before its
// parent is unioned. Returns the number of boxes that changed.
func (r *contentBoxResolver) resolve() int {
	r.writes, r.visits = 0, 0
	r.queue.DrainDescending(func(id NodeID) {
		r.visits++
		box := r.compute(id)
		old, had := r.content.get(id.Index)
		if had && old == box {
			return
		}
		r.content.put(id.Index, box)
		r.writes++
		if r.written != nil {
			r.written(id, box)
		}
		r.mark(r.tree.rec(id).Parent)
	})
	return r.writes
}

func (r *contentBoxResolver) compute(id NodeID) AABB {
	box, ok := r.bounds.get(id.Index)
	for child := range r.tree.ChildrenOf(id) {
		if r.tree.rec(child).Virtual {
			continue
		}
		cb, cok := r.content.get(child.Index)
		if !cok {
			continue
		}
		if !ok {
			box, ok = cb, true
			continue
		}
		box = box.Union(cb)
	}
	return box.roundOut()
}
