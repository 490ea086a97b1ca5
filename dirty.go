package thicket

// dirtyMark is the per-slot bookkeeping of a DirtyQueue. gen is the
// generation of the marked id, 0 when the slot is not marked.
type dirtyMark struct {
	gen   uint32
	layer int
	pos   int
}

// DirtyQueue records which nodes a resolver must recompute, bucketed by tree
// layer. Each node appears at most once: marking an already-marked node is a
// no-op unless its layer changed, in which case its entry moves.
//
// A DirtyQueue belongs to exactly one resolver.
type DirtyQueue struct {
	name    string
	buckets [][]NodeID
	marks   []dirtyMark
	pending int
}

// NewDirtyQueue creates an empty queue. name labels log lines and metrics.
func NewDirtyQueue(name string) *DirtyQueue {
	return &DirtyQueue{name: name}
}

// Name returns the queue's label.
func (q *DirtyQueue) Name() string { return q.name }

// Len returns the number of marked nodes.
func (q *DirtyQueue) Len() int { return q.pending }

// Marked reports whether id is currently marked.
func (q *DirtyQueue) Marked(id NodeID) bool {
	return int(id.Index) < len(q.marks) && q.marks[id.Index].gen == id.Gen && id.Gen != 0
}

// Mark queues id at layer. Returns false when id was already queued at that
// layer.
func (q *DirtyQueue) Mark(id NodeID, layer int) bool {
	q.grow(id.Index)
	m := &q.marks[id.Index]
	if m.gen != 0 {
		if m.gen == id.Gen && m.layer == layer {
			return false
		}
		q.removeEntry(m)
	}
	for len(q.buckets) <= layer {
		q.buckets = append(q.buckets, nil)
	}
	m.gen = id.Gen
	m.layer = layer
	m.pos = len(q.buckets[layer])
	q.buckets[layer] = append(q.buckets[layer], id)
	q.pending++
	return true
}

// Unmark clears id's mark and drops its queue entry. Called when a node is
// detached or destroyed so a reused slot never triggers a phantom recompute.
func (q *DirtyQueue) Unmark(id NodeID) {
	if !q.Marked(id) {
		return
	}
	m := &q.marks[id.Index]
	q.removeEntry(m)
	m.gen = 0
}

// DrainAscending visits every marked node from the root layer downward and
// empties the queue. fn is only called for nodes still marked when reached;
// nodes consumed by an earlier call in the same drain are skipped.
func (q *DirtyQueue) DrainAscending(fn func(id NodeID)) {
	for layer := 0; layer < len(q.buckets); layer++ {
		for i := 0; i < len(q.buckets[layer]); i++ {
			id := q.buckets[layer][i]
			if q.consume(id) {
				fn(id)
			}
		}
	}
	q.reset()
}

// DrainDescending visits every marked node from the deepest layer upward and
// empties the queue. fn may mark nodes on shallower layers; a layer is always
// drained completely before the one above it starts.
func (q *DirtyQueue) DrainDescending(fn func(id NodeID)) {
	for layer := len(q.buckets) - 1; layer >= 0; layer-- {
		for i := 0; i < len(q.buckets[layer]); i++ {
			id := q.buckets[layer][i]
			if q.consume(id) {
				fn(id)
			}
		}
	}
	q.reset()
}

// consume clears id's mark without touching the bucket. Only valid while
// draining, when buckets are discarded wholesale afterwards.
func (q *DirtyQueue) consume(id NodeID) bool {
	if !q.Marked(id) {
		return false
	}
	q.marks[id.Index].gen = 0
	q.pending--
	return true
}

func (q *DirtyQueue) removeEntry(m *dirtyMark) {
	bucket := q.buckets[m.layer]
	last := len(bucket) - 1
	moved := bucket[last]
	bucket[m.pos] = moved
	q.marks[moved.Index].pos = m.pos
	q.buckets[m.layer] = bucket[:last]
	q.pending--
}

func (q *DirtyQueue) reset() {
	for i := range q.buckets {
		q.buckets[i] = q.buckets[i][:0]
	}
	q.pending = 0
}

func (q *DirtyQueue) grow(idx uint32) {
	if int(idx) < len(q.marks) {
		return
	}
	n := max(int(idx)+1, 2*len(q.marks))
	marks := make([]dirtyMark, n)
	copy(marks, q.marks)
	q.marks = marks
}
