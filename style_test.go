package thicket

import "testing"

func TestApplyStyle(t *testing.T) {
	s := newTestScene()
	n := addNode(t, s, s.Root(), rect(10, 10, 20, 20))
	err := s.ApplyStyle(n, "opacity: 0.5; visibility: hidden; filter: hsi(90, 0, 0); "+
		"transform: rotate(90deg); transform-origin: 0 0")
	if err != nil {
		t.Fatal(err)
	}
	s.Resolve()

	op, _ := s.ResolvedOpacity(n)
	assertNear(t, "opacity", op, 0.5)
	if v, _ := s.ResolvedShow(n); v.Visible || v.Enabled {
		t.Errorf("show = %+v, want hidden", v)
	}
	f, _ := s.ResolvedFilter(n)
	assertNear(t, "hue", f.H, 0.25)
	b, _ := s.WorldBounds(n)
	assertBox(t, "bounds", b, AABB{-10, 10, 10, 30})
}

func TestApplyStyleKeepsUnmentionedValues(t *testing.T) {
	s := newTestScene()
	n := addNode(t, s, s.Root(), rect(0, 0, 10, 10))
	s.SetEnable(n, EnableNone)
	s.SetTransform(n, Transform{Ops: []TransformOp{Scale(2, 2)}, Origin: OriginAt(Px(0), Px(0))})

	if err := s.ApplyStyle(n, "display: none"); err != nil {
		t.Fatal(err)
	}
	sh := s.Show(n)
	if sh.Display != DisplayNone || sh.Enable != EnableNone || !sh.Visible {
		t.Errorf("show = %+v", sh)
	}
	if err := s.ApplyStyle(n, "transform: none"); err != nil {
		t.Fatal(err)
	}
	tr := s.Transform(n)
	if len(tr.Ops) != 0 || tr.Origin.Kind != OriginXY {
		t.Errorf("transform = %+v, want no ops and the explicit origin", tr)
	}
	if err := s.ApplyStyle(n, "transform-origin: center"); err != nil {
		t.Fatal(err)
	}
	if s.Transform(n).Origin.Kind != OriginCenter {
		t.Error("origin not reset to center")
	}
}

func TestApplyStyleErrorWritesNothing(t *testing.T) {
	s := newTestScene()
	n := addNode(t, s, s.Root(), rect(0, 0, 10, 10))
	s.Resolve()
	if err := s.ApplyStyle(n, "opacity: 0.5; enable: sometimes"); err == nil {
		t.Fatal("expected error")
	}
	if s.Opacity(n) != 1 {
		t.Errorf("opacity = %v, want 1", s.Opacity(n))
	}
	if s.Pending() != 0 {
		t.Errorf("Pending = %d after a rejected style", s.Pending())
	}
}

func TestApplyStylePercentTranslate(t *testing.T) {
	s := newTestScene()
	n := addNode(t, s, s.Root(), rect(0, 0, 20, 10))
	if err := s.ApplyStyle(n, "transform: translate(50%, 100%)"); err != nil {
		t.Fatal(err)
	}
	s.Resolve()
	b, _ := s.WorldBounds(n)
	assertBox(t, "bounds", b, AABB{10, 10, 30, 20})
}
