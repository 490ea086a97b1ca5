package thicket

// Edges holds per-side insets.
type Edges struct {
	Left, Top, Right, Bottom float64
}

// Layout is the rectangle a layout solver computed for a node: position
// relative to the parent's content box, size, border and padding.
type Layout struct {
	Left, Top     float64
	Width, Height float64
	Border        Edges
	Padding       Edges
}

// Size returns the node's width and height.
func (l Layout) Size() Vec2 { return Vec2{l.Width, l.Height} }
