package thicket

import (
	"math"
	"slices"
	"testing"
)

func TestRTreeIndexInsertQuery(t *testing.T) {
	x := NewRTreeIndex(2, 4)
	a := NodeID{Index: 1, Gen: 1}
	b := NodeID{Index: 2, Gen: 1}
	x.Insert(a, AABB{0, 0, 10, 10})
	x.Insert(b, AABB{20, 20, 30, 30})
	if x.Len() != 2 {
		t.Fatalf("Len = %d, want 2", x.Len())
	}

	var got []NodeID
	x.QueryRect(AABB{5, 5, 6, 6}, func(id NodeID, _ AABB) bool {
		got = append(got, id)
		return true
	})
	if !slices.Equal(got, []NodeID{a}) {
		t.Errorf("query = %v, want [a]", got)
	}
}

func TestRTreeIndexEdgeTouchIntersects(t *testing.T) {
	x := NewRTreeIndex(2, 4)
	a := NodeID{Index: 1, Gen: 1}
	x.Insert(a, AABB{0, 0, 10, 10})
	var hit bool
	x.QueryRect(AABB{10, 10, 20, 20}, func(NodeID, AABB) bool {
		hit = true
		return true
	})
	if !hit {
		t.Error("edge-touching query should hit")
	}
}

func TestRTreeIndexDegenerateBoxes(t *testing.T) {
	x := NewRTreeIndex(2, 4)
	a := NodeID{Index: 1, Gen: 1}
	x.Insert(a, AABB{5, 5, 5, 5})
	var got []NodeID
	x.QueryRect(AABB{5, 5, 5, 5}, func(id NodeID, _ AABB) bool {
		got = append(got, id)
		return true
	})
	if len(got) != 1 {
		t.Errorf("point query on point entry = %v", got)
	}
}

func TestRTreeIndexUpdateKeepsHandle(t *testing.T) {
	x := NewRTreeIndex(2, 4)
	a := NodeID{Index: 1, Gen: 1}
	h := x.Insert(a, AABB{0, 0, 10, 10})
	if !x.Update(h, AABB{100, 100, 110, 110}) {
		t.Fatal("Update failed")
	}
	if id, ok := x.Lookup(h); !ok || id != a {
		t.Errorf("Lookup after update = %v %v", id, ok)
	}
	var old, cur int
	x.QueryRect(AABB{0, 0, 10, 10}, func(NodeID, AABB) bool { old++; return true })
	x.QueryRect(AABB{105, 105, 106, 106}, func(NodeID, AABB) bool { cur++; return true })
	if old != 0 || cur != 1 {
		t.Errorf("old region hits=%d new region hits=%d, want 0 1", old, cur)
	}
	if x.Len() != 1 {
		t.Errorf("Len = %d, want 1", x.Len())
	}
}

func TestRTreeIndexRemoveInvalidatesHandle(t *testing.T) {
	x := NewRTreeIndex(2, 4)
	h := x.Insert(NodeID{Index: 1, Gen: 1}, AABB{0, 0, 1, 1})
	if !x.Remove(h) {
		t.Fatal("Remove failed")
	}
	if x.Remove(h) {
		t.Error("second Remove succeeded")
	}
	if x.Update(h, AABB{0, 0, 2, 2}) {
		t.Error("Update on removed handle succeeded")
	}
	h2 := x.Insert(NodeID{Index: 2, Gen: 1}, AABB{0, 0, 1, 1})
	if h2 == h {
		t.Error("reused slot handed out an equal handle")
	}
	if _, ok := x.Lookup(h); ok {
		t.Error("stale handle resolves")
	}
}

func TestRTreeIndexManyEntries(t *testing.T) {
	x := NewRTreeIndex(2, 4)
	handles := make([]SpatialHandle, 0, 100)
	for i := range 100 {
		f := float64(i)
		handles = append(handles, x.Insert(NodeID{Index: uint32(i), Gen: 1}, AABB{f * 10, 0, f*10 + 5, 5}))
	}
	for i, h := range handles {
		if i%2 == 0 {
			x.Remove(h)
		}
	}
	var got int
	x.QueryRect(AABB{0, 0, 1000, 5}, func(id NodeID, _ AABB) bool {
		if id.Index%2 == 0 {
			t.Errorf("removed entry %v returned", id)
		}
		got++
		return true
	})
	if got != 50 || x.Len() != 50 {
		t.Errorf("hits=%d len=%d, want 50 50", got, x.Len())
	}
}

func TestQueryPointPainterOrder(t *testing.T) {
	s := newTestScene()
	a := addNode(t, s, s.Root(), rect(0, 0, 20, 20))
	a1 := addNode(t, s, a, rect(0, 0, 10, 10))
	b := addNode(t, s, s.Root(), rect(5, 5, 20, 20))
	s.Resolve()

	got := s.QueryPoint(6, 6)
	want := []NodeID{s.Root(), a, a1, b}
	if !slices.Equal(got, want) {
		t.Errorf("QueryPoint = %v, want %v", got, want)
	}
}

func TestHitTestTopmostEnabled(t *testing.T) {
	s := newTestScene()
	a := addNode(t, s, s.Root(), rect(0, 0, 20, 20))
	b := addNode(t, s, s.Root(), rect(5, 5, 20, 20))
	s.Resolve()

	if id, ok := s.HitTest(6, 6); !ok || id != b {
		t.Errorf("HitTest = %v %v, want %v", id, ok, b)
	}
	s.SetEnable(b, EnableNone)
	s.Resolve()
	if id, ok := s.HitTest(6, 6); !ok || id != a {
		t.Errorf("HitTest with b disabled = %v %v, want %v", id, ok, a)
	}
	s.SetVisible(a, false)
	s.Resolve()
	if id, _ := s.HitTest(6, 6); id != s.Root() {
		t.Errorf("HitTest with a hidden = %v, want root", id)
	}
}

func TestHitTestUsesExactShape(t *testing.T) {
	s := newTestScene()
	s.SetEnable(s.Root(), EnableNone)
	n := addNode(t, s, s.Root(), rect(40, 40, 20, 20))
	s.SetEnable(n, EnableVisible)
	s.SetTransform(n, Transform{Ops: []TransformOp{Rotate(math.Pi / 4)}})
	s.Resolve()

	// The rotated square's bounds reach the corner region, its shape does not.
	b, _ := s.WorldBounds(n)
	if !b.Contains(42, 42) {
		t.Fatalf("bounds %+v should contain the corner probe", b)
	}
	if _, ok := s.HitTest(42, 42); ok {
		t.Error("corner outside the rotated square hit")
	}
	if id, ok := s.HitTest(50, 50); !ok || id != n {
		t.Errorf("center HitTest = %v %v, want %v", id, ok, n)
	}
}

func TestSpatialFollowsTransformChange(t *testing.T) {
	s := newTestScene()
	n := addNode(t, s, s.Root(), rect(0, 0, 10, 10))
	s.Resolve()
	rec, _ := s.Tree().Get(n)
	h := rec.Spatial

	s.SetTransform(n, Transform{Ops: []TransformOp{Translate(60, 60)}})
	st := s.Resolve()
	if st.Spatial != 1 {
		t.Errorf("spatial writes = %d, want 1", st.Spatial)
	}
	rec, _ = s.Tree().Get(n)
	if rec.Spatial != h {
		t.Errorf("handle changed on update: %v -> %v", h, rec.Spatial)
	}
	var hit bool
	s.QueryRect(AABB{62, 62, 64, 64}, func(id NodeID, _ AABB) bool {
		hit = hit || id == n
		return true
	})
	if !hit {
		t.Error("moved node not found at its new position")
	}
}
