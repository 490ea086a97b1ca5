package thicket

import (
	"errors"
	"fmt"
	"iter"
)

// NodeID addresses a node slot in a Tree. Gen is bumped every time a slot is
// reused, so an id held past Destroy never addresses the slot's new occupant.
// The zero NodeID is never issued.
type NodeID struct {
	Index uint32
	Gen   uint32
}

// IsNil reports whether id is the zero NodeID.
func (id NodeID) IsNil() bool { return id.Gen == 0 }

func (id NodeID) String() string {
	if id.IsNil() {
		return "nil"
	}
	return fmt.Sprintf("%d@%d", id.Index, id.Gen)
}

// NodeRecord is the structural state of a node.
type NodeRecord struct {
	ID          NodeID
	Parent      NodeID
	FirstChild  NodeID
	LastChild   NodeID
	PrevSibling NodeID
	NextSibling NodeID
	ChildCount  int

	// Layer is the depth below the root (root = 0). Only meaningful while
	// Attached is true.
	Layer    int
	Attached bool

	// Virtual marks a placeholder node whose content box is not merged into
	// its parent's.
	Virtual bool

	// Spatial is the node's handle in the spatial index, nil while the node
	// has no entry.
	Spatial SpatialHandle
}

// ErrCycle is matched by every *CycleError.
var ErrCycle = errors.New("thicket: insert would create a cycle")

// CycleError is returned by Insert when the new parent is the child itself or
// one of its descendants.
type CycleError struct {
	Child, Parent NodeID
}

func (e *CycleError) Error() string {
	return fmt.Sprintf("thicket: cannot insert %v under its own descendant %v", e.Child, e.Parent)
}

// Is makes errors.Is(err, ErrCycle) true.
func (e *CycleError) Is(target error) bool { return target == ErrCycle }

type positionKind uint8

const (
	posBack positionKind = iota
	posFront
	posBefore
	posAfter
)

// Position selects where Insert places a child among its new siblings.
type Position struct {
	kind   positionKind
	anchor NodeID
}

// Back appends the child after the parent's last child.
func Back() Position { return Position{kind: posBack} }

// Front places the child before the parent's first child.
func Front() Position { return Position{kind: posFront} }

// Before places the child immediately before sibling.
func Before(sibling NodeID) Position { return Position{kind: posBefore, anchor: sibling} }

// After places the child immediately after sibling.
func After(sibling NodeID) Position { return Position{kind: posAfter, anchor: sibling} }

// treeListener receives structural notifications. The Scene uses them to seed
// and unseed resolver queues.
type treeListener interface {
	nodeAttached(id NodeID)
	nodeMoved(id, oldParent NodeID)
	nodeDetached(id, oldParent NodeID)
	nodeDestroyed(id NodeID)
}

type treeSlot struct {
	rec   NodeRecord
	gen   uint32
	alive bool
}

// Tree is an arena of nodes linked by parent, first/last child and sibling
// ids. A node is attached when it is the root or its parent is attached.
// Tree is not safe for concurrent use.
type Tree struct {
	slots    []treeSlot
	free     []uint32
	root     NodeID
	live     int
	listener treeListener
	stack    []NodeID // reused traversal buffer
}

// NewTree creates an empty tree with room for capacity nodes.
func NewTree(capacity int) *Tree {
	return &Tree{slots: make([]treeSlot, 0, capacity)}
}

// Create allocates a detached node, reusing a freed slot when one exists.
func (t *Tree) Create() NodeID {
	var idx uint32
	if n := len(t.free); n > 0 {
		idx = t.free[n-1]
		t.free = t.free[:n-1]
	} else {
		idx = uint32(len(t.slots))
		t.slots = append(t.slots, treeSlot{})
	}
	s := &t.slots[idx]
	s.gen++
	if s.gen == 0 {
		s.gen = 1
	}
	s.alive = true
	id := NodeID{Index: idx, Gen: s.gen}
	s.rec = NodeRecord{ID: id}
	t.live++
	return id
}

// Alive reports whether id addresses a live node.
func (t *Tree) Alive(id NodeID) bool {
	if id.Gen == 0 || int(id.Index) >= len(t.slots) {
		return false
	}
	s := &t.slots[id.Index]
	return s.alive && s.gen == id.Gen
}

// Len returns the number of live nodes.
func (t *Tree) Len() int { return t.live }

// Get returns a copy of the node's record, or false for a stale id.
func (t *Tree) Get(id NodeID) (NodeRecord, bool) {
	if !t.Alive(id) {
		return NodeRecord{}, false
	}
	return t.slots[id.Index].rec, true
}

// Root returns the root node, or the nil id when no root is set.
func (t *Tree) Root() NodeID { return t.root }

// SetRoot makes a parentless node the attached root at layer 0. A previous
// root and its subtree become detached.
func (t *Tree) SetRoot(id NodeID) {
	r := t.lookup(id, "SetRoot")
	if !r.Parent.IsNil() {
		panic("thicket: root node must not have a parent")
	}
	if id == t.root {
		return
	}
	if old := t.root; !old.IsNil() {
		t.root = NodeID{}
		t.unstamp(old)
		if t.listener != nil {
			t.listener.nodeDetached(old, NodeID{})
		}
	}
	t.root = id
	t.stamp(id, 0)
	if t.listener != nil {
		t.listener.nodeAttached(id)
	}
}

// Insert links child under parent at pos. If child already has a parent it is
// moved; the layers of its whole subtree are re-stamped before Insert returns.
// Inserting a node under itself or one of its descendants returns a
// *CycleError and leaves the tree unchanged.
func (t *Tree) Insert(child, parent NodeID, pos Position) error {
	c := t.lookup(child, "Insert (child)")
	p := t.lookup(parent, "Insert (parent)")
	if child == parent || t.IsAncestor(child, parent) {
		return &CycleError{Child: child, Parent: parent}
	}
	if child == t.root {
		panic("thicket: cannot insert the root node")
	}
	if pos.kind == posBefore || pos.kind == posAfter {
		a, ok := t.Get(pos.anchor)
		if !ok || a.Parent != parent || pos.anchor == child {
			panic(fmt.Sprintf("thicket: insert anchor %v is not a child of %v", pos.anchor, parent))
		}
	}

	oldParent := c.Parent
	wasAttached := c.Attached
	if !oldParent.IsNil() {
		t.unlink(child)
	}
	t.link(child, parent, pos)

	switch {
	case p.Attached:
		t.stamp(child, p.Layer+1)
		if t.listener != nil {
			if wasAttached {
				t.listener.nodeMoved(child, oldParent)
			} else {
				t.listener.nodeAttached(child)
			}
		}
	case wasAttached:
		t.unstamp(child)
		if t.listener != nil {
			t.listener.nodeDetached(child, oldParent)
		}
	}
	return nil
}

// Remove unlinks node from its parent in O(1). The subtree below node stays
// linked to it but is no longer attached. Panics if node has no parent.
func (t *Tree) Remove(node NodeID) {
	r := t.lookup(node, "Remove")
	parent := r.Parent
	if parent.IsNil() {
		panic(fmt.Sprintf("thicket: Remove on node %v without a parent", node))
	}
	wasAttached := r.Attached
	t.unlink(node)
	if wasAttached {
		t.unstamp(node)
		if t.listener != nil {
			t.listener.nodeDetached(node, parent)
		}
	}
}

// Destroy removes node from its parent (or clears it as root) and frees it and
// its whole subtree. Every freed slot gets a new generation on reuse.
// Panics when node was already destroyed.
func (t *Tree) Destroy(node NodeID) {
	if int(node.Index) < len(t.slots) {
		s := &t.slots[node.Index]
		if !s.alive && s.gen == node.Gen {
			panic(fmt.Sprintf("thicket: Destroy on already destroyed node %v", node))
		}
	}
	r := t.lookup(node, "Destroy")
	switch {
	case !r.Parent.IsNil():
		t.Remove(node)
	case node == t.root:
		t.root = NodeID{}
		t.unstamp(node)
		if t.listener != nil {
			t.listener.nodeDetached(node, NodeID{})
		}
	}

	// Collect first so the listener may inspect intact records.
	order := t.collect(node, nil)
	for i := len(order) - 1; i >= 0; i-- {
		id := order[i]
		if t.listener != nil {
			t.listener.nodeDestroyed(id)
		}
		s := &t.slots[id.Index]
		s.alive = false
		s.rec = NodeRecord{}
		t.free = append(t.free, id.Index)
		t.live--
	}
}

// ChildrenOf returns a sequence over node's children. The sequence reads the
// live sibling links as it advances, so it is restartable and reflects the
// tree at iteration time. Removing the child just yielded is safe.
func (t *Tree) ChildrenOf(node NodeID) iter.Seq[NodeID] {
	return func(yield func(NodeID) bool) {
		if !t.Alive(node) {
			return
		}
		for c := t.slots[node.Index].rec.FirstChild; !c.IsNil(); {
			next := t.slots[c.Index].rec.NextSibling
			if !yield(c) {
				return
			}
			c = next
		}
	}
}

// Descendants returns a pre-order sequence over node and its subtree.
func (t *Tree) Descendants(node NodeID) iter.Seq[NodeID] {
	return func(yield func(NodeID) bool) {
		if !t.Alive(node) {
			return
		}
		stack := []NodeID{node}
		for len(stack) > 0 {
			id := stack[len(stack)-1]
			stack = stack[:len(stack)-1]
			if !yield(id) {
				return
			}
			for c := t.slots[id.Index].rec.LastChild; !c.IsNil(); c = t.slots[c.Index].rec.PrevSibling {
				stack = append(stack, c)
			}
		}
	}
}

// Parent returns node's parent, or the nil id.
func (t *Tree) Parent(node NodeID) NodeID {
	if !t.Alive(node) {
		return NodeID{}
	}
	return t.slots[node.Index].rec.Parent
}

// IsAncestor reports whether candidate is a strict ancestor of node.
func (t *Tree) IsAncestor(candidate, node NodeID) bool {
	if !t.Alive(node) {
		return false
	}
	for p := t.slots[node.Index].rec.Parent; !p.IsNil(); p = t.slots[p.Index].rec.Parent {
		if p == candidate {
			return true
		}
	}
	return false
}

// SetVirtual flags node as a placeholder. Returns true when the flag changed.
func (t *Tree) SetVirtual(node NodeID, virtual bool) bool {
	r := t.lookup(node, "SetVirtual")
	if r.Virtual == virtual {
		return false
	}
	r.Virtual = virtual
	return true
}

// PaintsAfter reports whether a comes after b in pre-order (painter's order).
// Both nodes must be attached.
func (t *Tree) PaintsAfter(a, b NodeID) bool {
	if a == b {
		return false
	}
	pa := t.path(a)
	pb := t.path(b)
	i := 0
	for i < len(pa) && i < len(pb) && pa[i] == pb[i] {
		i++
	}
	switch {
	case i == len(pa):
		return false // a is an ancestor of b
	case i == len(pb):
		return true // b is an ancestor of a
	}
	for s := pb[i]; !s.IsNil(); s = t.slots[s.Index].rec.NextSibling {
		if s == pa[i] {
			return true
		}
	}
	return false
}

// --- Internal helpers ---

func (t *Tree) lookup(id NodeID, op string) *NodeRecord {
	if !t.Alive(id) {
		panic(fmt.Sprintf("thicket: %s on stale or unknown node %v", op, id))
	}
	return &t.slots[id.Index].rec
}

func (t *Tree) rec(id NodeID) *NodeRecord { return &t.slots[id.Index].rec }

func (t *Tree) setSpatial(id NodeID, h SpatialHandle) {
	t.slots[id.Index].rec.Spatial = h
}

// link splices a parentless child into parent's child list.
func (t *Tree) link(child, parent NodeID, pos Position) {
	c := t.rec(child)
	p := t.rec(parent)
	var prev, next NodeID
	switch pos.kind {
	case posBack:
		prev = p.LastChild
	case posFront:
		next = p.FirstChild
	case posBefore:
		next = pos.anchor
		prev = t.rec(next).PrevSibling
	case posAfter:
		prev = pos.anchor
		next = t.rec(prev).NextSibling
	}
	c.Parent = parent
	c.PrevSibling = prev
	c.NextSibling = next
	if prev.IsNil() {
		p.FirstChild = child
	} else {
		t.rec(prev).NextSibling = child
	}
	if next.IsNil() {
		p.LastChild = child
	} else {
		t.rec(next).PrevSibling = child
	}
	p.ChildCount++
}

// unlink detaches child from its parent's sibling list. A child whose
// neighbours do not point back at it means the list is corrupt.
func (t *Tree) unlink(child NodeID) {
	c := t.rec(child)
	p := t.rec(c.Parent)
	if c.PrevSibling.IsNil() {
		if p.FirstChild != child {
			panic(fmt.Sprintf("thicket: node %v is not in the child list of %v", child, c.Parent))
		}
		p.FirstChild = c.NextSibling
	} else {
		prev := t.rec(c.PrevSibling)
		if prev.NextSibling != child {
			panic(fmt.Sprintf("thicket: node %v is not in the child list of %v", child, c.Parent))
		}
		prev.NextSibling = c.NextSibling
	}
	if c.NextSibling.IsNil() {
		p.LastChild = c.PrevSibling
	} else {
		t.rec(c.NextSibling).PrevSibling = c.PrevSibling
	}
	p.ChildCount--
	c.Parent = NodeID{}
	c.PrevSibling = NodeID{}
	c.NextSibling = NodeID{}
}

// stamp sets layer and attached for node's whole subtree.
func (t *Tree) stamp(node NodeID, layer int) {
	t.stack = append(t.stack[:0], node)
	t.rec(node).Layer = layer
	for len(t.stack) > 0 {
		id := t.stack[len(t.stack)-1]
		t.stack = t.stack[:len(t.stack)-1]
		r := t.rec(id)
		r.Attached = true
		for c := r.FirstChild; !c.IsNil(); {
			cr := t.rec(c)
			cr.Layer = r.Layer + 1
			t.stack = append(t.stack, c)
			c = cr.NextSibling
		}
	}
}

// unstamp clears attached and layer for node's whole subtree.
func (t *Tree) unstamp(node NodeID) {
	t.stack = append(t.stack[:0], node)
	for len(t.stack) > 0 {
		id := t.stack[len(t.stack)-1]
		t.stack = t.stack[:len(t.stack)-1]
		r := t.rec(id)
		r.Attached = false
		r.Layer = 0
		for c := r.FirstChild; !c.IsNil(); c = t.rec(c).NextSibling {
			t.stack = append(t.stack, c)
		}
	}
}

// collect appends node's subtree to dst in pre-order.
func (t *Tree) collect(node NodeID, dst []NodeID) []NodeID {
	for id := range t.Descendants(node) {
		dst = append(dst, id)
	}
	return dst
}

// path returns the ids from the topmost ancestor down to node.
func (t *Tree) path(node NodeID) []NodeID {
	var p []NodeID
	for id := node; !id.IsNil(); id = t.rec(id).Parent {
		p = append(p, id)
	}
	for i, j := 0, len(p)-1; i < j; i, j = i+1, j-1 {
		p[i], p[j] = p[j], p[i]
	}
	return p
}
