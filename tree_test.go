package thicket

import (
	"errors"
	"slices"
	"testing"
)

// recordingListener logs tree notifications as short strings.
type recordingListener struct {
	events []string
}

func (l *recordingListener) nodeAttached(id NodeID) {
	l.events = append(l.events, "attach "+id.String())
}

func (l *recordingListener) nodeMoved(id, oldParent NodeID) {
	l.events = append(l.events, "move "+id.String()+" from "+oldParent.String())
}

func (l *recordingListener) nodeDetached(id, oldParent NodeID) {
	l.events = append(l.events, "detach "+id.String()+" from "+oldParent.String())
}

func (l *recordingListener) nodeDestroyed(id NodeID) {
	l.events = append(l.events, "destroy "+id.String())
}

func newTestTree() (*Tree, NodeID) {
	t := NewTree(8)
	root := t.Create()
	t.SetRoot(root)
	return t, root
}

func mustInsert(t *testing.T, tr *Tree, child, parent NodeID, pos Position) {
	t.Helper()
	if err := tr.Insert(child, parent, pos); err != nil {
		t.Fatalf("Insert(%v, %v): %v", child, parent, err)
	}
}

func children(tr *Tree, id NodeID) []NodeID {
	return slices.Collect(tr.ChildrenOf(id))
}

func expectPanic(t *testing.T, what string, fn func()) {
	t.Helper()
	defer func() {
		if r := recover(); r == nil {
			t.Errorf("expected panic for %s, got none", what)
		}
	}()
	fn()
}

func TestCreateIssuesLiveIDs(t *testing.T) {
	tr := NewTree(0)
	a := tr.Create()
	b := tr.Create()
	if a == b {
		t.Fatal("Create returned duplicate ids")
	}
	if a.IsNil() || b.IsNil() {
		t.Fatal("Create returned a nil id")
	}
	if !tr.Alive(a) || !tr.Alive(b) {
		t.Error("new nodes should be alive")
	}
	if tr.Len() != 2 {
		t.Errorf("Len = %d, want 2", tr.Len())
	}
	if tr.Alive(NodeID{}) {
		t.Error("nil id should not be alive")
	}
}

func TestSetRootAttachesAtLayerZero(t *testing.T) {
	tr, root := newTestTree()
	r, ok := tr.Get(root)
	if !ok {
		t.Fatal("root not found")
	}
	if !r.Attached || r.Layer != 0 {
		t.Errorf("root attached=%v layer=%d, want true 0", r.Attached, r.Layer)
	}
	if tr.Root() != root {
		t.Errorf("Root() = %v, want %v", tr.Root(), root)
	}
}

func TestInsertPositions(t *testing.T) {
	tr, root := newTestTree()
	a, b, c, d := tr.Create(), tr.Create(), tr.Create(), tr.Create()
	mustInsert(t, tr, a, root, Back())
	mustInsert(t, tr, b, root, Back())
	mustInsert(t, tr, c, root, Front())
	mustInsert(t, tr, d, root, Before(b))

	want := []NodeID{c, a, d, b}
	if got := children(tr, root); !slices.Equal(got, want) {
		t.Errorf("children = %v, want %v", got, want)
	}

	e := tr.Create()
	mustInsert(t, tr, e, root, After(b))
	want = append(want, e)
	if got := children(tr, root); !slices.Equal(got, want) {
		t.Errorf("children = %v, want %v", got, want)
	}
	r, _ := tr.Get(root)
	if r.ChildCount != 5 || r.FirstChild != c || r.LastChild != e {
		t.Errorf("root record = %+v", r)
	}
}

func TestInsertStampsLayers(t *testing.T) {
	tr, root := newTestTree()
	a, b, c := tr.Create(), tr.Create(), tr.Create()
	// Build a detached chain first, then attach it in one step.
	mustInsert(t, tr, c, b, Back())
	mustInsert(t, tr, b, a, Back())
	if r, _ := tr.Get(c); r.Attached {
		t.Fatal("chain under a detached node should be detached")
	}
	mustInsert(t, tr, a, root, Back())
	for i, id := range []NodeID{a, b, c} {
		r, _ := tr.Get(id)
		if !r.Attached || r.Layer != i+1 {
			t.Errorf("node %d: attached=%v layer=%d, want true %d", i, r.Attached, r.Layer, i+1)
		}
	}
}

func TestMoveRestampsSubtree(t *testing.T) {
	tr, root := newTestTree()
	deep := tr.Create()
	mid := tr.Create()
	leaf := tr.Create()
	mustInsert(t, tr, mid, root, Back())
	mustInsert(t, tr, deep, mid, Back())
	mustInsert(t, tr, leaf, root, Back())

	sub := tr.Create()
	subChild := tr.Create()
	mustInsert(t, tr, sub, leaf, Back())
	mustInsert(t, tr, subChild, sub, Back())

	// Move sub from layer 2 to layer 3.
	mustInsert(t, tr, sub, deep, Back())
	if r, _ := tr.Get(sub); r.Layer != 3 || r.Parent != deep {
		t.Errorf("sub layer=%d parent=%v, want 3 %v", r.Layer, r.Parent, deep)
	}
	if r, _ := tr.Get(subChild); r.Layer != 4 {
		t.Errorf("subChild layer = %d, want 4", r.Layer)
	}
	if r, _ := tr.Get(leaf); r.ChildCount != 0 || !r.FirstChild.IsNil() {
		t.Errorf("old parent still lists the child: %+v", r)
	}
}

func TestInsertCycleReturnsError(t *testing.T) {
	tr, root := newTestTree()
	a, b := tr.Create(), tr.Create()
	mustInsert(t, tr, a, root, Back())
	mustInsert(t, tr, b, a, Back())

	err := tr.Insert(a, b, Back())
	if !errors.Is(err, ErrCycle) {
		t.Fatalf("err = %v, want ErrCycle", err)
	}
	var ce *CycleError
	if !errors.As(err, &ce) || ce.Child != a || ce.Parent != b {
		t.Errorf("CycleError = %+v", ce)
	}
	if err := tr.Insert(a, a, Back()); !errors.Is(err, ErrCycle) {
		t.Errorf("self insert err = %v, want ErrCycle", err)
	}
	// Unchanged.
	if tr.Parent(a) != root || tr.Parent(b) != a {
		t.Error("failed insert modified the tree")
	}
}

func TestRemoveDetachesSubtree(t *testing.T) {
	tr, root := newTestTree()
	a, b := tr.Create(), tr.Create()
	mustInsert(t, tr, a, root, Back())
	mustInsert(t, tr, b, a, Back())

	tr.Remove(a)
	ra, _ := tr.Get(a)
	rb, _ := tr.Get(b)
	if ra.Attached || rb.Attached {
		t.Error("removed subtree should be detached")
	}
	if !ra.Parent.IsNil() || rb.Parent != a {
		t.Error("Remove should unlink only the removed node")
	}
	if len(children(tr, root)) != 0 {
		t.Error("root still lists the removed child")
	}
}

func TestRemoveWithoutParentPanics(t *testing.T) {
	tr, _ := newTestTree()
	a := tr.Create()
	expectPanic(t, "remove without parent", func() { tr.Remove(a) })
}

func TestStaleIDPanics(t *testing.T) {
	tr, root := newTestTree()
	a := tr.Create()
	tr.Destroy(a)
	expectPanic(t, "insert of destroyed node", func() { _ = tr.Insert(a, root, Back()) })
	expectPanic(t, "double destroy", func() { tr.Destroy(a) })
}

func TestBadAnchorPanics(t *testing.T) {
	tr, root := newTestTree()
	a, b, other := tr.Create(), tr.Create(), tr.Create()
	mustInsert(t, tr, a, root, Back())
	mustInsert(t, tr, other, a, Back())
	expectPanic(t, "anchor under another parent", func() { _ = tr.Insert(b, root, Before(other)) })
}

func TestDestroyBumpsGeneration(t *testing.T) {
	tr, root := newTestTree()
	a := tr.Create()
	mustInsert(t, tr, a, root, Back())
	tr.Destroy(a)
	if tr.Alive(a) {
		t.Fatal("destroyed node still alive")
	}
	b := tr.Create()
	if b.Index != a.Index {
		t.Fatalf("slot not reused: %v vs %v", b, a)
	}
	if b.Gen == a.Gen {
		t.Error("reused slot kept its generation")
	}
	if _, ok := tr.Get(a); ok {
		t.Error("stale id resolved to the slot's new occupant")
	}
}

func TestDestroyFreesSubtree(t *testing.T) {
	tr, root := newTestTree()
	a, b, c := tr.Create(), tr.Create(), tr.Create()
	mustInsert(t, tr, a, root, Back())
	mustInsert(t, tr, b, a, Back())
	mustInsert(t, tr, c, b, Back())
	tr.Destroy(a)
	for _, id := range []NodeID{a, b, c} {
		if tr.Alive(id) {
			t.Errorf("%v still alive", id)
		}
	}
	if tr.Len() != 1 {
		t.Errorf("Len = %d, want 1", tr.Len())
	}
}

func TestChildrenOfRestartable(t *testing.T) {
	tr, root := newTestTree()
	a, b := tr.Create(), tr.Create()
	mustInsert(t, tr, a, root, Back())
	mustInsert(t, tr, b, root, Back())
	seq := tr.ChildrenOf(root)
	first := slices.Collect(seq)
	second := slices.Collect(seq)
	if !slices.Equal(first, second) || len(first) != 2 {
		t.Errorf("iterations differ: %v vs %v", first, second)
	}
	// Reflects live state.
	c := tr.Create()
	mustInsert(t, tr, c, root, Back())
	if got := slices.Collect(seq); len(got) != 3 {
		t.Errorf("sequence did not observe the new child: %v", got)
	}
}

func TestChildrenOfRemoveDuringIteration(t *testing.T) {
	tr, root := newTestTree()
	ids := []NodeID{tr.Create(), tr.Create(), tr.Create()}
	for _, id := range ids {
		mustInsert(t, tr, id, root, Back())
	}
	var seen []NodeID
	for c := range tr.ChildrenOf(root) {
		seen = append(seen, c)
		tr.Remove(c)
	}
	if !slices.Equal(seen, ids) {
		t.Errorf("seen = %v, want %v", seen, ids)
	}
}

func TestDescendantsPreOrder(t *testing.T) {
	tr, root := newTestTree()
	a, b, a1, a2 := tr.Create(), tr.Create(), tr.Create(), tr.Create()
	mustInsert(t, tr, a, root, Back())
	mustInsert(t, tr, b, root, Back())
	mustInsert(t, tr, a1, a, Back())
	mustInsert(t, tr, a2, a, Back())
	got := slices.Collect(tr.Descendants(root))
	want := []NodeID{root, a, a1, a2, b}
	if !slices.Equal(got, want) {
		t.Errorf("Descendants = %v, want %v", got, want)
	}
}

func TestPaintsAfter(t *testing.T) {
	tr, root := newTestTree()
	a, b, a1 := tr.Create(), tr.Create(), tr.Create()
	mustInsert(t, tr, a, root, Back())
	mustInsert(t, tr, b, root, Back())
	mustInsert(t, tr, a1, a, Back())

	cases := []struct {
		x, y NodeID
		want bool
	}{
		{b, a, true},
		{a, b, false},
		{a1, a, true},
		{a, a1, false},
		{b, a1, true},
		{a1, b, false},
		{a, a, false},
	}
	for _, c := range cases {
		if got := tr.PaintsAfter(c.x, c.y); got != c.want {
			t.Errorf("PaintsAfter(%v, %v) = %v, want %v", c.x, c.y, got, c.want)
		}
	}
}

func TestListenerNotifications(t *testing.T) {
	tr, root := newTestTree()
	l := &recordingListener{}
	tr.listener = l

	a, b := tr.Create(), tr.Create()
	mustInsert(t, tr, b, a, Back()) // detached: no notification
	mustInsert(t, tr, a, root, Back())
	mustInsert(t, tr, b, root, Back())
	tr.Remove(b)
	tr.Destroy(a)

	want := []string{
		"attach " + a.String(),
		"move " + b.String() + " from " + a.String(),
		"detach " + b.String() + " from " + root.String(),
		"detach " + a.String() + " from " + root.String(),
		"destroy " + a.String(),
	}
	if !slices.Equal(l.events, want) {
		t.Errorf("events =\n%v\nwant\n%v", l.events, want)
	}
}

func TestSetVirtualReportsChange(t *testing.T) {
	tr, root := newTestTree()
	if !tr.SetVirtual(root, true) {
		t.Error("first SetVirtual should report a change")
	}
	if tr.SetVirtual(root, true) {
		t.Error("repeated SetVirtual should not report a change")
	}
}
