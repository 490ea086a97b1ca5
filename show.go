package thicket

// Show is the local display, visibility and enable state of a node.
type Show struct {
	Display Display
	Visible bool
	Enable  EnableMode
}

// DefaultShow is the local show state of a new node.
var DefaultShow = Show{Display: DisplayFlex, Visible: true, Enable: EnableAuto}

// Visibility is a node's resolved visibility and interactivity.
type Visibility struct {
	Visible bool
	Enabled bool
}

// resolveShow combines a node's local show state with its parent's resolved
// visibility. Visibility always gates enable, even for EnableVisible.
func resolveShow(parent Visibility, local Show) Visibility {
	visible := local.Display == DisplayFlex && local.Visible && parent.Visible
	var enabled bool
	switch local.Enable {
	case EnableVisible:
		enabled = true
	case EnableAuto:
		enabled = parent.Enabled
	}
	return Visibility{Visible: visible, Enabled: enabled && visible}
}

func newShowCascade(s *Scene) *cascade[Show, Visibility] {
	c := newCascade("show", s.tree, Visibility{Visible: true, Enabled: true},
		func(id NodeID) Show { return s.locals[id.Index].show },
		resolveShow,
	)
	c.written = func(id NodeID, old, cur Visibility, had bool) {
		if !had || s.store == nil {
			return
		}
		if old.Visible != cur.Visible {
			s.emit(EventVisibilityChanged, id, cur)
		}
		if old.Enabled != cur.Enabled {
			s.emit(EventEnableChanged, id, cur)
		}
	}
	return c
}
