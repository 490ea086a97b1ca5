package thicket

import (
	"encoding/json"
	"fmt"
	"math"
)

// scriptStep is a single action of a mutation script. Nodes are addressed by
// label; "root" names the scene root.
type scriptStep struct {
	Action   string   `json:"action"`
	Label    string   `json:"label,omitempty"`
	Parent   string   `json:"parent,omitempty"`
	Position string   `json:"position,omitempty"` // back, front, before, after
	Anchor   string   `json:"anchor,omitempty"`
	Value    float64  `json:"value,omitempty"`
	Flag     bool     `json:"flag,omitempty"`
	Style    string   `json:"style,omitempty"`
	Name     string   `json:"name,omitempty"`
	X        float64  `json:"x,omitempty"`
	Y        float64  `json:"y,omitempty"`
	W        float64  `json:"w,omitempty"`
	H        float64  `json:"h,omitempty"`
	Frames   int      `json:"frames,omitempty"`
	Expect   *expects `json:"expect,omitempty"`
	WantErr  bool     `json:"wantErr,omitempty"`
}

// expects lists resolved values an "expect" step checks.
type expects struct {
	Opacity    *float64    `json:"opacity,omitempty"`
	Visible    *bool       `json:"visible,omitempty"`
	Enabled    *bool       `json:"enabled,omitempty"`
	ContentBox *[4]float64 `json:"contentBox,omitempty"`
	Bounds     *[4]float64 `json:"bounds,omitempty"`
	Detached   bool        `json:"detached,omitempty"`
}

type script struct {
	Steps []scriptStep `json:"steps"`
}

// ScriptRunner replays a JSON mutation script against a Scene, either all
// at once with Run or one frame at a time as the scene's update function.
type ScriptRunner struct {
	steps     []scriptStep
	cursor    int
	waitCount int
	done      bool
	nodes     map[string]NodeID
}

// LoadScript parses a JSON mutation script.
func LoadScript(jsonData []byte) (*ScriptRunner, error) {
	var sc script
	if err := json.Unmarshal(jsonData, &sc); err != nil {
		return nil, fmt.Errorf("parse script: %w", err)
	}
	if len(sc.Steps) == 0 {
		return nil, fmt.Errorf("parse script: no steps")
	}
	return &ScriptRunner{steps: sc.Steps, nodes: make(map[string]NodeID)}, nil
}

// Done reports whether every step has run.
func (r *ScriptRunner) Done() bool { return r.done }

// Node returns the id created for label.
func (r *ScriptRunner) Node(label string) (NodeID, bool) {
	id, ok := r.nodes[label]
	return id, ok
}

// Run executes every remaining step. "resolve" steps resolve the scene and
// "wait" steps resolve it once per frame.
func (r *ScriptRunner) Run(s *Scene) error {
	for !r.done || r.waitCount > 0 {
		if r.waitCount > 0 {
			r.waitCount--
			s.Resolve()
			continue
		}
		action := r.steps[r.cursor].Action
		if err := r.next(s); err != nil {
			return err
		}
		if action == "wait" {
			s.Resolve()
		}
	}
	return nil
}

// Attach installs r as s's update function so each Scene.Update runs the
// steps up to the next frame boundary.
func (r *ScriptRunner) Attach(s *Scene) {
	s.SetUpdateFunc(func() error { return r.Step(s) })
}

// Step runs steps until one ends the frame: "resolve" (the scene resolves
// after the update function returns) or "wait".
func (r *ScriptRunner) Step(s *Scene) error {
	if r.waitCount > 0 {
		r.waitCount--
		return nil
	}
	for !r.done {
		action := r.steps[r.cursor].Action
		if err := r.next(s); err != nil {
			return err
		}
		if action == "resolve" || action == "wait" {
			return nil
		}
	}
	return nil
}

func (r *ScriptRunner) next(s *Scene) error {
	if r.cursor >= len(r.steps) {
		r.done = true
		return nil
	}
	st := r.steps[r.cursor]
	r.cursor++
	err := r.exec(s, st)
	if r.cursor >= len(r.steps) {
		r.done = true
	}
	if err != nil {
		return fmt.Errorf("script step %d (%s): %w", r.cursor, st.Action, err)
	}
	return nil
}

func (r *ScriptRunner) lookup(s *Scene, label string) (NodeID, error) {
	if label == "root" {
		return s.Root(), nil
	}
	id, ok := r.nodes[label]
	if !ok {
		return NodeID{}, fmt.Errorf("unknown node %q", label)
	}
	if !s.Alive(id) {
		return NodeID{}, fmt.Errorf("node %q was destroyed", label)
	}
	return id, nil
}

func (r *ScriptRunner) exec(s *Scene, st scriptStep) error {
	switch st.Action {
	case "create":
		if st.Label == "" || st.Label == "root" {
			return fmt.Errorf("create needs a label other than root")
		}
		r.nodes[st.Label] = s.Create()
		return nil
	case "resolve":
		s.Resolve()
		return nil
	case "capture":
		s.Capture(st.Name)
		return nil
	case "wait":
		if st.Frames > 0 {
			r.waitCount = st.Frames - 1 // this frame counts as one
		}
		return nil
	}

	id, err := r.lookup(s, st.Label)
	if err != nil {
		return err
	}
	switch st.Action {
	case "insert":
		parent, err := r.lookup(s, st.Parent)
		if err != nil {
			return err
		}
		if id == s.Root() {
			return fmt.Errorf("cannot insert the root node")
		}
		pos, err := r.position(s, st, parent, id)
		if err != nil {
			return err
		}
		err = s.InsertChild(parent, id, pos)
		if st.WantErr {
			if err == nil {
				return fmt.Errorf("insert succeeded, want error")
			}
			return nil
		}
		return err
	case "remove":
		if s.tree.Parent(id).IsNil() {
			return fmt.Errorf("node %q has no parent", st.Label)
		}
		s.Remove(id)
	case "destroy":
		if id == s.Root() {
			return fmt.Errorf("cannot destroy the root node")
		}
		s.Destroy(id)
	case "opacity":
		s.SetOpacity(id, st.Value)
	case "visible":
		s.SetVisible(id, st.Flag)
	case "virtual":
		s.SetVirtual(id, st.Flag)
	case "style":
		return s.ApplyStyle(id, st.Style)
	case "layout":
		l := s.Layout(id)
		l.Left, l.Top, l.Width, l.Height = st.X, st.Y, st.W, st.H
		s.SetLayout(id, l)
	case "expect":
		if st.Expect == nil {
			return fmt.Errorf("expect step without expectations")
		}
		return r.check(s, id, st.Expect)
	default:
		return fmt.Errorf("unknown action %q", st.Action)
	}
	return nil
}

func (r *ScriptRunner) position(s *Scene, st scriptStep, parent, child NodeID) (Position, error) {
	switch st.Position {
	case "", "back":
		return Back(), nil
	case "front":
		return Front(), nil
	case "before", "after":
		anchor, err := r.lookup(s, st.Anchor)
		if err != nil {
			return Position{}, err
		}
		if anchor == child || s.tree.Parent(anchor) != parent {
			return Position{}, fmt.Errorf("anchor %q is not a child of %q", st.Anchor, st.Parent)
		}
		if st.Position == "before" {
			return Before(anchor), nil
		}
		return After(anchor), nil
	}
	return Position{}, fmt.Errorf("unknown position %q", st.Position)
}

const scriptTolerance = 1e-9

func (r *ScriptRunner) check(s *Scene, id NodeID, e *expects) error {
	if e.Detached {
		if _, ok := s.ResolvedOpacity(id); ok {
			return fmt.Errorf("node %v still has resolved values", id)
		}
		return nil
	}
	if e.Opacity != nil {
		got, ok := s.ResolvedOpacity(id)
		if !ok || math.Abs(got-*e.Opacity) > scriptTolerance {
			return fmt.Errorf("opacity = %v (resolved %v), want %v", got, ok, *e.Opacity)
		}
	}
	if e.Visible != nil || e.Enabled != nil {
		v, ok := s.ResolvedShow(id)
		if !ok {
			return fmt.Errorf("node %v has no resolved show state", id)
		}
		if e.Visible != nil && v.Visible != *e.Visible {
			return fmt.Errorf("visible = %v, want %v", v.Visible, *e.Visible)
		}
		if e.Enabled != nil && v.Enabled != *e.Enabled {
			return fmt.Errorf("enabled = %v, want %v", v.Enabled, *e.Enabled)
		}
	}
	if e.ContentBox != nil {
		got, ok := s.ContentBox(id)
		if !ok || boxArray(got) != *e.ContentBox {
			return fmt.Errorf("content box = %v (resolved %v), want %v", boxArray(got), ok, *e.ContentBox)
		}
	}
	if e.Bounds != nil {
		got, ok := s.WorldBounds(id)
		if !ok || boxArray(got) != *e.Bounds {
			return fmt.Errorf("bounds = %v (resolved %v), want %v", boxArray(got), ok, *e.Bounds)
		}
	}
	return nil
}
