package thicket

import (
	"testing"
)

func TestWrapHue(t *testing.T) {
	cases := []struct{ in, want float64 }{
		{0, 0},
		{0.25, 0.25},
		{0.5, 0.5},
		{-0.5, 0.5},
		{0.75, -0.25},
		{-0.75, 0.25},
		{1.5, 0.5},
		{2.1, 0.1},
	}
	for _, c := range cases {
		assertNear(t, "wrapHue", wrapHue(c.in), c.want)
	}
}

func TestResolveFilterClampsSaturationAndValue(t *testing.T) {
	got := resolveFilter(HSV{H: 0.4, S: 0.8, V: -0.9}, HSV{H: 0.2, S: 0.5, V: -0.5})
	assertNear(t, "h", got.H, -0.4)
	assertNear(t, "s", got.S, 1)
	assertNear(t, "v", got.V, -1)
}

func TestFilterAccumulatesDownTree(t *testing.T) {
	s := newTestScene()
	a := addNode(t, s, s.Root(), rect(0, 0, 10, 10))
	b := addNode(t, s, a, rect(0, 0, 10, 10))
	s.SetFilter(a, HSV{H: 0.3, S: 0.2})
	s.SetFilter(b, HSV{H: 0.3, S: 0.2, V: 0.1})
	s.Resolve()

	f, ok := s.ResolvedFilter(b)
	if !ok {
		t.Fatal("no resolved filter")
	}
	assertNear(t, "h", f.H, -0.4)
	assertNear(t, "s", f.S, 0.4)
	assertNear(t, "v", f.V, 0.1)
}

func TestHSVApply(t *testing.T) {
	red := Color{R: 1, A: 0.5}
	if got := (HSV{}).Apply(red); got != red {
		t.Errorf("zero filter changed color: %+v", got)
	}
	// A third of a turn moves red to green.
	got := HSV{H: 1.0 / 3}.Apply(red)
	if got.G < 0.99 || got.R > 0.01 || got.B > 0.01 {
		t.Errorf("hue rotated red = %+v, want green", got)
	}
	if got.A != 0.5 {
		t.Errorf("alpha = %v, want 0.5", got.A)
	}
	dark := HSV{V: -1}.Apply(red)
	if dark.R > 0.001 {
		t.Errorf("value -1 should be black, got %+v", dark)
	}
}
