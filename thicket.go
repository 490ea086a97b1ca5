package thicket

import (
	"image/color"
	"math"
)

// Color represents an RGBA color with components in [0, 1]. Not premultiplied.
type Color struct {
	R, G, B, A float64
}

// ColorWhite is the default debug fill color.
var ColorWhite = Color{1, 1, 1, 1}

func (c Color) toRGBA() color.RGBA {
	return color.RGBA{
		R: uint8(clamp01(c.R)*c.A*255 + 0.5),
		G: uint8(clamp01(c.G)*c.A*255 + 0.5),
		B: uint8(clamp01(c.B)*c.A*255 + 0.5),
		A: uint8(clamp01(c.A)*255 + 0.5),
	}
}

// Vec2 is a 2D vector used for positions and offsets.
type Vec2 struct {
	X, Y float64
}

// AABB is an axis-aligned box. The coordinate system has its origin at the
// top-left, with Y increasing downward.
type AABB struct {
	MinX, MinY, MaxX, MaxY float64
}

// Width returns the horizontal extent of the box.
func (b AABB) Width() float64 { return b.MaxX - b.MinX }

// Height returns the vertical extent of the box.
func (b AABB) Height() float64 { return b.MaxY - b.MinY }

// Contains reports whether the point (x, y) lies inside the box.
// Points on the edge are considered inside.
func (b AABB) Contains(x, y float64) bool {
	return x >= b.MinX && x <= b.MaxX && y >= b.MinY && y <= b.MaxY
}

// Intersects reports whether b and other overlap.
// Boxes sharing only an edge are considered intersecting.
func (b AABB) Intersects(other AABB) bool {
	return b.MinX <= other.MaxX && b.MaxX >= other.MinX &&
		b.MinY <= other.MaxY && b.MaxY >= other.MinY
}

// Union returns the smallest box containing both b and other.
func (b AABB) Union(other AABB) AABB {
	return AABB{
		MinX: math.Min(b.MinX, other.MinX),
		MinY: math.Min(b.MinY, other.MinY),
		MaxX: math.Max(b.MaxX, other.MaxX),
		MaxY: math.Max(b.MaxY, other.MaxY),
	}
}

// roundOut snaps the box outward to integer bounds.
func (b AABB) roundOut() AABB {
	return AABB{
		MinX: math.Floor(b.MinX),
		MinY: math.Floor(b.MinY),
		MaxX: math.Ceil(b.MaxX),
		MaxY: math.Ceil(b.MaxY),
	}
}

// Display is the local display mode of a node.
type Display uint8

const (
	DisplayFlex Display = iota // node takes part in layout and rendering
	DisplayNone                // node and its subtree are hidden
)

func (d Display) String() string {
	switch d {
	case DisplayFlex:
		return "flex"
	case DisplayNone:
		return "none"
	default:
		return "unknown"
	}
}

// EnableMode is the local interactivity mode of a node.
type EnableMode uint8

const (
	EnableAuto    EnableMode = iota // inherit the parent's resolved enable
	EnableNone                      // never enabled
	EnableVisible                   // enabled whenever the node is visible, regardless of the parent
)

func (e EnableMode) String() string {
	switch e {
	case EnableAuto:
		return "auto"
	case EnableNone:
		return "none"
	case EnableVisible:
		return "visible"
	default:
		return "unknown"
	}
}

// EventType identifies a kind of resolution event forwarded to an EntityStore.
type EventType uint8

const (
	EventVisibilityChanged EventType = iota // resolved visibility flipped
	EventEnableChanged                      // resolved enable flipped
)

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

func clamp01(v float64) float64 { return clamp(v, 0, 1) }
