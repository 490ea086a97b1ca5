package thicket

import "slices"

// QueryRect calls fn for every attached node whose world bounds intersect
// box, as of the last Resolve. Iteration stops when fn returns false.
func (s *Scene) QueryRect(box AABB, fn func(id NodeID, bounds AABB) bool) {
	s.spatial.index.QueryRect(box, fn)
}

// QueryPoint returns the nodes whose world bounds contain (x, y), in
// painter's order.
func (s *Scene) QueryPoint(x, y float64) []NodeID {
	var hits []NodeID
	s.spatial.index.QueryRect(AABB{MinX: x, MinY: y, MaxX: x, MaxY: y}, func(id NodeID, _ AABB) bool {
		hits = append(hits, id)
		return true
	})
	slices.SortFunc(hits, func(a, b NodeID) int {
		switch {
		case a == b:
			return 0
		case s.tree.PaintsAfter(a, b):
			return 1
		default:
			return -1
		}
	})
	return hits
}

// HitTest returns the topmost enabled node whose transformed rectangle
// contains (x, y). Rotated and skewed nodes are tested against their exact
// shape, not their bounds.
func (s *Scene) HitTest(x, y float64) (NodeID, bool) {
	hits := s.QueryPoint(x, y)
	for i := len(hits) - 1; i >= 0; i-- {
		id := hits[i]
		v, ok := s.show.get(id)
		if !ok || !v.Enabled {
			continue
		}
		m, ok := s.transform.get(id)
		if !ok {
			continue
		}
		l := &s.locals[id.Index]
		o := l.transform.Origin.point(l.layout.Width, l.layout.Height)
		if localContains(m, l.layout.Width, l.layout.Height, o, x, y) {
			return id, true
		}
	}
	return NodeID{}, false
}
