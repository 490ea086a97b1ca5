package thicket

import "fmt"

// table is a dense per-slot attribute table. An entry is only meaningful
// while set is true; detaching a node clears its entries.
type table[T any] struct {
	vals []T
	set  []bool
}

func (t *table[T]) get(idx uint32) (T, bool) {
	if int(idx) >= len(t.vals) || !t.set[idx] {
		var zero T
		return zero, false
	}
	return t.vals[idx], true
}

// put stores v and returns the previous value, if any.
func (t *table[T]) put(idx uint32, v T) (old T, had bool) {
	if int(idx) >= len(t.vals) {
		n := max(int(idx)+1, 2*len(t.vals))
		vals := make([]T, n)
		copy(vals, t.vals)
		set := make([]bool, n)
		copy(set, t.set)
		t.vals, t.set = vals, set
	}
	old, had = t.vals[idx], t.set[idx]
	t.vals[idx] = v
	t.set[idx] = true
	return old, had
}

func (t *table[T]) clear(idx uint32) {
	if int(idx) < len(t.vals) {
		var zero T
		t.vals[idx] = zero
		t.set[idx] = false
	}
}

// cascade is the top-down resolver shared by opacity, show, filter and world
// transform. A node's resolved value is combine(parent's resolved value, the
// node's local value); recomputing a node always recomputes its whole subtree.
type cascade[L, R any] struct {
	name     string
	tree     *Tree
	queue    *DirtyQueue
	resolved table[R]

	local    func(id NodeID) L
	combine  func(parent R, local L) R
	identity R // parent value seen by the root

	// written runs after every store, with the previous value if there was one.
	written func(id NodeID, old, cur R, had bool)

	writes int // stores in the current pass
}

func newCascade[L, R any](name string, tree *Tree, identity R, local func(NodeID) L, combine func(R, L) R) *cascade[L, R] {
	return &cascade[L, R]{
		name:     name,
		tree:     tree,
		queue:    NewDirtyQueue(name),
		local:    local,
		combine:  combine,
		identity: identity,
	}
}

// mark queues id if it is attached. Detached nodes are seeded on attach.
func (c *cascade[L, R]) mark(id NodeID) {
	r := c.tree.rec(id)
	if r.Attached {
		c.queue.Mark(id, r.Layer)
	}
}

// get returns the resolved value of an attached node.
func (c *cascade[L, R]) get(id NodeID) (R, bool) {
	return c.resolved.get(id.Index)
}

// forget drops id from the queue and the resolved table.
func (c *cascade[L, R]) forget(id NodeID) {
	c.queue.Unmark(id)
	c.resolved.clear(id.Index)
}

// resolve drains the queue root-first and returns the number of stores.
func (c *cascade[L, R]) resolve() int {
	c.writes = 0
	c.queue.DrainAscending(func(id NodeID) {
		parent := c.identity
		if p := c.tree.rec(id).Parent; !p.IsNil() {
			pv, ok := c.resolved.get(p.Index)
			if !ok {
				panic(fmt.Sprintf("thicket: %s resolve of %v before its parent %v", c.name, id, p))
			}
			parent = pv
		}
		c.apply(id, parent)
	})
	return c.writes
}

func (c *cascade[L, R]) apply(id NodeID, parent R) {
	cur := c.combine(parent, c.local(id))
	old, had := c.resolved.put(id.Index, cur)
	c.writes++
	if c.written != nil {
		c.written(id, old, cur, had)
	}
	for child := range c.tree.ChildrenOf(id) {
		c.queue.consume(child)
		c.apply(child, cur)
	}
}
