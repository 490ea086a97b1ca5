package thicket

import (
	"math"

	colorful "github.com/lucasb-eyer/go-colorful"
)

// HSV is a hue/saturation/value color filter. As a local value each field is
// a delta added to the parent's resolved filter: H in turns, S and V as
// fractions. Resolved H lies in (-0.5, 0.5]; resolved S and V in [-1, 1].
type HSV struct {
	H, S, V float64
}

// IsZero reports whether f leaves colors unchanged.
func (f HSV) IsZero() bool { return f == HSV{} }

func resolveFilter(parent, local HSV) HSV {
	return HSV{
		H: wrapHue(local.H + parent.H),
		S: clamp(local.S+parent.S, -1, 1),
		V: clamp(local.V+parent.V, -1, 1),
	}
}

// wrapHue maps h into (-0.5, 0.5].
func wrapHue(h float64) float64 {
	return h - math.Ceil(h-0.5)
}

func newFilterCascade(s *Scene) *cascade[HSV, HSV] {
	return newCascade("filter", s.tree, HSV{},
		func(id NodeID) HSV { return s.locals[id.Index].filter },
		resolveFilter,
	)
}

// Apply filters c: the hue is rotated by H turns, saturation and value are
// scaled by 1+S and 1+V. Alpha is unchanged.
func (f HSV) Apply(c Color) Color {
	if f.IsZero() {
		return c
	}
	h, sat, val := colorful.Color{R: clamp01(c.R), G: clamp01(c.G), B: clamp01(c.B)}.Hsv()
	h = math.Mod(h+f.H*360, 360)
	if h < 0 {
		h += 360
	}
	out := colorful.Hsv(h, clamp01(sat*(1+f.S)), clamp01(val*(1+f.V))).Clamped()
	return Color{R: out.R, G: out.G, B: out.B, A: c.A}
}
