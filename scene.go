package thicket

import (
	"time"

	"github.com/hajimehoshi/ebiten/v2"
)

// EntityStore is the interface for optional ECS integration.
// When set on a Scene, resolution changes are forwarded to the ECS.
type EntityStore interface {
	EmitEvent(event ResolveEvent)
}

// ResolveEvent reports a change in a node's resolved visibility or enable.
type ResolveEvent struct {
	Type     EventType
	Node     NodeID
	EntityID uint32
	Visible  bool
	Enabled  bool
}

// nodeLocal holds the local values a node's resolved attributes derive from.
type nodeLocal struct {
	opacity   float64
	show      Show
	filter    HSV
	transform Transform
	layout    Layout
	entityID  uint32
}

var defaultLocal = nodeLocal{opacity: 1, show: DefaultShow}

// FrameStats reports how many resolved values each pass wrote in a frame.
type FrameStats struct {
	Frame      uint64
	Opacity    int
	Show       int
	Filter     int
	Transform  int
	ContentBox int
	Spatial    int
	Duration   time.Duration
}

// Scene owns a node tree and keeps every node's resolved attributes current.
// Local values are written through setters; Resolve runs the passes that
// bring resolved values up to date, touching only what changed.
//
// Scene is not safe for concurrent use.
type Scene struct {
	tree   *Tree
	locals []nodeLocal

	opacity   *cascade[float64, float64]
	show      *cascade[Show, Visibility]
	filter    *cascade[HSV, HSV]
	transform *cascade[transformInput, Affine]
	bounds    table[AABB]
	content   *contentBoxResolver
	spatial   *spatialAdapter

	cfg     Config
	metrics *Metrics
	store   EntityStore
	debug   bool
	frame   uint64

	tweens     []*TweenGroup
	pointer    pointerState
	captures   []string
	updateFunc func() error
}

// NewScene creates a scene with the default configuration and an attached
// root node.
func NewScene() *Scene {
	s, err := NewSceneWithConfig(DefaultConfig())
	if err != nil {
		panic("thicket: default config rejected: " + err.Error())
	}
	return s
}

// NewSceneWithConfig creates a scene from cfg and an attached root node.
func NewSceneWithConfig(cfg Config) (*Scene, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	s := &Scene{
		tree:   NewTree(cfg.Capacity),
		locals: make([]nodeLocal, 0, cfg.Capacity),
		cfg:    cfg,
		debug:  cfg.Debug,
	}
	s.pointer.deadZone = defaultDragDeadZone
	s.tree.listener = s
	s.opacity = newOpacityCascade(s)
	s.show = newShowCascade(s)
	s.filter = newFilterCascade(s)
	s.transform = newTransformCascade(s)
	s.content = newContentBoxResolver(s.tree, &s.bounds)
	s.spatial = newSpatialAdapter(s.tree, NewRTreeIndex(cfg.Index.MinEntries, cfg.Index.MaxEntries), &s.bounds)

	s.tree.SetRoot(s.Create())
	return s, nil
}

// Root returns the scene's root node.
func (s *Scene) Root() NodeID { return s.tree.Root() }

// Tree returns the scene's node tree for read-only walks. Structural changes
// must go through the Scene.
func (s *Scene) Tree() *Tree { return s.tree }

// Index returns the spatial index holding each attached node's world bounds.
func (s *Scene) Index() SpatialIndex { return s.spatial.index }

// Config returns the configuration the scene was built with.
func (s *Scene) Config() Config { return s.cfg }

// Frame returns the number of completed Resolve calls.
func (s *Scene) Frame() uint64 { return s.frame }

// --- Structure ---

// Create allocates a detached node with default local values.
func (s *Scene) Create() NodeID {
	id := s.tree.Create()
	for len(s.locals) <= int(id.Index) {
		s.locals = append(s.locals, defaultLocal)
	}
	s.locals[id.Index] = defaultLocal
	return id
}

// Alive reports whether id addresses a live node.
func (s *Scene) Alive(id NodeID) bool { return s.tree.Alive(id) }

// InsertChild links child under parent at pos, moving it if it already has a
// parent. Returns a *CycleError if parent is child or one of its descendants.
func (s *Scene) InsertChild(parent, child NodeID, pos Position) error {
	return s.tree.Insert(child, parent, pos)
}

// AddChild appends child under parent.
func (s *Scene) AddChild(parent, child NodeID) error {
	return s.tree.Insert(child, parent, Back())
}

// Remove detaches node and its subtree from the tree. The nodes stay alive
// and can be inserted again.
func (s *Scene) Remove(node NodeID) { s.tree.Remove(node) }

// Destroy detaches and frees node and its subtree.
func (s *Scene) Destroy(node NodeID) { s.tree.Destroy(node) }

// --- Local values ---

func (s *Scene) local(id NodeID, op string) *nodeLocal {
	s.tree.lookup(id, op)
	return &s.locals[id.Index]
}

// SetOpacity sets a node's local opacity, clamped to [0, 1].
func (s *Scene) SetOpacity(id NodeID, opacity float64) {
	l := s.local(id, "SetOpacity")
	opacity = clamp01(opacity)
	if l.opacity == opacity {
		return
	}
	l.opacity = opacity
	s.opacity.mark(id)
}

// Opacity returns a node's local opacity.
func (s *Scene) Opacity(id NodeID) float64 { return s.local(id, "Opacity").opacity }

// SetShow sets a node's local display, visibility and enable state.
func (s *Scene) SetShow(id NodeID, show Show) {
	l := s.local(id, "SetShow")
	if l.show == show {
		return
	}
	l.show = show
	s.show.mark(id)
}

// Show returns a node's local show state.
func (s *Scene) Show(id NodeID) Show { return s.local(id, "Show").show }

// SetDisplay sets a node's local display mode.
func (s *Scene) SetDisplay(id NodeID, d Display) {
	sh := s.local(id, "SetDisplay").show
	sh.Display = d
	s.SetShow(id, sh)
}

// SetVisible sets a node's local visibility.
func (s *Scene) SetVisible(id NodeID, visible bool) {
	sh := s.local(id, "SetVisible").show
	sh.Visible = visible
	s.SetShow(id, sh)
}

// SetEnable sets a node's local enable mode.
func (s *Scene) SetEnable(id NodeID, mode EnableMode) {
	sh := s.local(id, "SetEnable").show
	sh.Enable = mode
	s.SetShow(id, sh)
}

// SetFilter sets a node's local HSV filter.
func (s *Scene) SetFilter(id NodeID, f HSV) {
	l := s.local(id, "SetFilter")
	if l.filter == f {
		return
	}
	l.filter = f
	s.filter.mark(id)
}

// Filter returns a node's local HSV filter.
func (s *Scene) Filter(id NodeID) HSV { return s.local(id, "Filter").filter }

// SetTransform sets a node's local transform. The ops slice is copied.
func (s *Scene) SetTransform(id NodeID, t Transform) {
	l := s.local(id, "SetTransform")
	l.transform = t.clone()
	s.transform.mark(id)
}

// Transform returns a copy of a node's local transform.
func (s *Scene) Transform(id NodeID) Transform {
	return s.local(id, "Transform").transform.clone()
}

// SetLayout records the rectangle the layout solver computed for a node.
func (s *Scene) SetLayout(id NodeID, layout Layout) {
	l := s.local(id, "SetLayout")
	if l.layout == layout {
		return
	}
	l.layout = layout
	s.transform.mark(id)
}

// Layout returns a node's layout rectangle.
func (s *Scene) Layout(id NodeID) Layout { return s.local(id, "Layout").layout }

// SetVirtual marks a node as a placeholder whose content box is left out of
// its parent's.
func (s *Scene) SetVirtual(id NodeID, virtual bool) {
	if s.tree.SetVirtual(id, virtual) {
		s.content.mark(s.tree.rec(id).Parent)
	}
}

// SetEntityID associates an ECS entity with a node for ResolveEvents.
func (s *Scene) SetEntityID(id NodeID, entity uint32) {
	s.local(id, "SetEntityID").entityID = entity
}

// --- Resolution ---

// Resolve brings every resolved attribute up to date: opacity, show, filter
// and world transform top-down, then content boxes bottom-up, then the
// spatial index.
func (s *Scene) Resolve() FrameStats {
	start := time.Now()
	s.metrics.observeDirty(s.queues())

	var st FrameStats
	st.Opacity = s.runPass("opacity", s.opacity.resolve)
	st.Show = s.runPass("show", s.show.resolve)
	st.Filter = s.runPass("filter", s.filter.resolve)
	st.Transform = s.runPass("transform", s.transform.resolve)
	st.ContentBox = s.runPass("content_box", s.content.resolve)
	st.Spatial = s.runPass("spatial", s.spatial.apply)

	s.frame++
	s.metrics.observeFrame()
	s.flushCaptures()
	st.Frame = s.frame
	st.Duration = time.Since(start)
	if s.debug {
		s.debugLog(st)
	}
	return st
}

func (s *Scene) runPass(name string, pass func() int) int {
	t0 := time.Now()
	n := pass()
	s.metrics.observePass(name, n, time.Since(t0))
	return n
}

func (s *Scene) queues() []*DirtyQueue {
	return []*DirtyQueue{
		s.opacity.queue, s.show.queue, s.filter.queue, s.transform.queue,
		s.content.queue, s.spatial.pending,
	}
}

// Pending returns the number of dirty entries waiting for the next Resolve.
func (s *Scene) Pending() int {
	n := 0
	for _, q := range s.queues() {
		n += q.Len()
	}
	return n
}

// SetUpdateFunc sets a callback run by Update before resolution.
func (s *Scene) SetUpdateFunc(fn func() error) { s.updateFunc = fn }

// Update advances tweens by one tick, dispatches pointer input against the
// last resolved state, runs the update callback and resolves.
func (s *Scene) Update() error {
	dt := float32(1.0 / float64(ebiten.TPS()))
	s.advanceTweens(dt)
	s.processInput()
	if s.updateFunc != nil {
		if err := s.updateFunc(); err != nil {
			return err
		}
	}
	s.Resolve()
	return nil
}

// --- Resolved values ---

// ResolvedOpacity returns a node's opacity multiplied down from the root.
func (s *Scene) ResolvedOpacity(id NodeID) (float64, bool) {
	if !s.tree.Alive(id) {
		return 0, false
	}
	return s.opacity.get(id)
}

// ResolvedShow returns a node's resolved visibility and enable.
func (s *Scene) ResolvedShow(id NodeID) (Visibility, bool) {
	if !s.tree.Alive(id) {
		return Visibility{}, false
	}
	return s.show.get(id)
}

// ResolvedFilter returns a node's accumulated HSV filter.
func (s *Scene) ResolvedFilter(id NodeID) (HSV, bool) {
	if !s.tree.Alive(id) {
		return HSV{}, false
	}
	return s.filter.get(id)
}

// WorldMatrix returns the matrix mapping a node's origin-relative coordinates
// to world space.
func (s *Scene) WorldMatrix(id NodeID) (Affine, bool) {
	if !s.tree.Alive(id) {
		return Affine{}, false
	}
	return s.transform.get(id)
}

// WorldBounds returns the world-space box of a node's own rectangle.
func (s *Scene) WorldBounds(id NodeID) (AABB, bool) {
	if !s.tree.Alive(id) {
		return AABB{}, false
	}
	return s.bounds.get(id.Index)
}

// ContentBox returns the union of a node's world bounds and the content boxes
// of its non-virtual children.
func (s *Scene) ContentBox(id NodeID) (AABB, bool) {
	if !s.tree.Alive(id) {
		return AABB{}, false
	}
	return s.content.get(id)
}

// SetEntityStore sets the optional ECS bridge.
func (s *Scene) SetEntityStore(store EntityStore) { s.store = store }

// SetMetrics attaches pass metrics. Pass nil to detach.
func (s *Scene) SetMetrics(m *Metrics) {
	s.metrics = m
	s.spatial.metrics = m
}

// SetDebugMode enables or disables debug mode. When enabled, tree depth and
// child count warnings and per-frame pass stats are logged.
func (s *Scene) SetDebugMode(enabled bool) { s.debug = enabled }

func (s *Scene) emit(t EventType, id NodeID, v Visibility) {
	s.store.EmitEvent(ResolveEvent{
		Type:     t,
		Node:     id,
		EntityID: s.locals[id.Index].entityID,
		Visible:  v.Visible,
		Enabled:  v.Enabled,
	})
}

// worldChanged runs after the transform pass stores a world matrix.
func (s *Scene) worldChanged(id NodeID, m Affine) {
	l := &s.locals[id.Index]
	o := l.transform.Origin.point(l.layout.Width, l.layout.Height)
	box := worldAABB(m, l.layout.Width, l.layout.Height, o)
	if old, had := s.bounds.put(id.Index, box); had && old == box {
		return
	}
	s.content.mark(id)
	s.spatial.touch(id)
}

// --- Tree notifications ---

func (s *Scene) nodeAttached(id NodeID) {
	s.opacity.mark(id)
	s.show.mark(id)
	s.filter.mark(id)
	s.transform.mark(id)
	for n := range s.tree.Descendants(id) {
		s.content.mark(n)
		if s.debug {
			s.debugCheckNode(n)
		}
	}
	if p := s.tree.rec(id).Parent; s.debug && !p.IsNil() {
		s.debugCheckNode(p)
	}
}

func (s *Scene) nodeMoved(id, oldParent NodeID) {
	// Pending entries of the moved subtree are queued under stale layers.
	qs := s.queues()
	for n := range s.tree.Descendants(id) {
		layer := s.tree.rec(n).Layer
		for _, q := range qs {
			if q.Marked(n) {
				q.Mark(n, layer)
			}
		}
	}
	if s.debug {
		s.debugCheckNode(s.tree.rec(id).Parent)
	}
	s.opacity.mark(id)
	s.show.mark(id)
	s.filter.mark(id)
	s.transform.mark(id)
	s.content.mark(oldParent)
	s.content.mark(s.tree.rec(id).Parent)
}

func (s *Scene) nodeDetached(id, oldParent NodeID) {
	for n := range s.tree.Descendants(id) {
		s.opacity.forget(n)
		s.show.forget(n)
		s.filter.forget(n)
		s.transform.forget(n)
		s.content.forget(n)
		s.bounds.clear(n.Index)
		s.spatial.remove(n)
	}
	if !oldParent.IsNil() {
		s.content.mark(oldParent)
	}
}

func (s *Scene) nodeDestroyed(id NodeID) {
	s.locals[id.Index] = nodeLocal{}
}
