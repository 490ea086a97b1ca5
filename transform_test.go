package thicket

import (
	"math"
	"testing"
)

func assertMatrix(t *testing.T, name string, got, want Affine) {
	t.Helper()
	for i := range got {
		if math.Abs(got[i]-want[i]) > epsilon {
			t.Errorf("%s[%d] = %v, want %v (full: %v vs %v)", name, i, got[i], want[i], got, want)
		}
	}
}

// --- Affine math ---

func TestMultiplyAffineIdentity(t *testing.T) {
	m := Affine{2, 0.5, -1, 3, 10, 20}
	assertMatrix(t, "I*m", multiplyAffine(identityTransform, m), m)
	assertMatrix(t, "m*I", multiplyAffine(m, identityTransform), m)
}

func TestMultiplyAffineTranslations(t *testing.T) {
	got := multiplyAffine(translation(10, 20), translation(5, -5))
	assertMatrix(t, "T*T", got, translation(15, 15))
}

func TestInvertAffineRoundTrip(t *testing.T) {
	m := multiplyAffine(translation(30, -4), Rotate(0.7).matrix(0, 0))
	m = multiplyAffine(m, Scale(2, 3).matrix(0, 0))
	inv, ok := invertAffine(m)
	if !ok {
		t.Fatal("matrix reported singular")
	}
	assertMatrix(t, "m*inv", multiplyAffine(m, inv), identityTransform)
}

func TestInvertAffineSingular(t *testing.T) {
	if _, ok := invertAffine(Affine{0, 0, 0, 0, 1, 1}); ok {
		t.Error("zero-scale matrix should be singular")
	}
}

func TestTransformPoint(t *testing.T) {
	x, y := Affine{0, 1, -1, 0, 10, 20}.Apply(1, 0)
	assertNear(t, "x", x, 10)
	assertNear(t, "y", y, 21)
}

// --- Transform ops ---

func TestOpMatrices(t *testing.T) {
	assertMatrix(t, "translate", Translate(3, 4).matrix(10, 10), Affine{1, 0, 0, 1, 3, 4})
	assertMatrix(t, "translate%", TranslatePercent(0.5, -1).matrix(40, 20), Affine{1, 0, 0, 1, 20, -20})
	assertMatrix(t, "scale", Scale(2, 3).matrix(1, 1), Affine{2, 0, 0, 3, 0, 0})
	// cos(90)=0, sin(90)=1 → a=0, b=1, c=-1, d=0
	assertMatrix(t, "rot90", Rotate(math.Pi/2).matrix(1, 1), Affine{0, 1, -1, 0, 0, 0})
	assertMatrix(t, "skew", Skew(math.Pi/4, 0).matrix(1, 1), Affine{1, 0, 1, 1, 0, 0})
}

func TestOriginPoint(t *testing.T) {
	o := Origin{}.point(40, 20)
	assertNear(t, "center.x", o.X, 20)
	assertNear(t, "center.y", o.Y, 10)

	o = OriginAt(Px(5), Pct(0.25)).point(40, 20)
	assertNear(t, "xy.x", o.X, 5)
	assertNear(t, "xy.y", o.Y, 5)
}

func TestLocalMatrixAppliesOriginAndOffset(t *testing.T) {
	tr := Transform{Ops: []TransformOp{Scale(2, 2)}}
	got := tr.localMatrix(10, 10, Vec2{100, 50})
	// T(100+5, 50+5) * S(2)
	assertMatrix(t, "local", got, Affine{2, 0, 0, 2, 105, 55})
}

func TestChildOffsetIncludesBorderAndPadding(t *testing.T) {
	parent := Layout{Width: 40, Height: 20, Border: Edges{Left: 2, Top: 3}, Padding: Edges{Left: 4, Top: 1}}
	child := rect(10, 5, 1, 1)
	got := childOffset(child, parent, Origin{})
	// 10 - 20 + 2 + 4, 5 - 10 + 3 + 1
	assertNear(t, "offset.x", got.X, -4)
	assertNear(t, "offset.y", got.Y, -1)
}

// --- World transform cascade ---

func TestWorldBoundsFollowLayout(t *testing.T) {
	s := newTestScene()
	a := addNode(t, s, s.Root(), rect(10, 20, 30, 40))
	b := addNode(t, s, a, rect(5, 5, 10, 10))
	s.Resolve()

	ba, _ := s.WorldBounds(a)
	assertBox(t, "bounds(a)", ba, AABB{10, 20, 40, 60})
	bb, _ := s.WorldBounds(b)
	assertBox(t, "bounds(b)", bb, AABB{15, 25, 25, 35})
}

func TestWorldBoundsBorderPadding(t *testing.T) {
	s := newTestScene()
	a := s.Create()
	s.SetLayout(a, Layout{Left: 10, Top: 10, Width: 50, Height: 50,
		Border: Edges{Left: 1, Top: 1}, Padding: Edges{Left: 4, Top: 2}})
	if err := s.AddChild(s.Root(), a); err != nil {
		t.Fatal(err)
	}
	b := addNode(t, s, a, rect(0, 0, 10, 10))
	s.Resolve()
	bb, _ := s.WorldBounds(b)
	assertBox(t, "bounds(b)", bb, AABB{15, 13, 25, 23})
}

func TestRotationAroundCenter(t *testing.T) {
	s := newTestScene()
	n := addNode(t, s, s.Root(), rect(10, 10, 20, 10))
	s.SetTransform(n, Transform{Ops: []TransformOp{Rotate(math.Pi / 2)}})
	s.Resolve()
	b, _ := s.WorldBounds(n)
	assertBox(t, "rotated bounds", b, AABB{15, 5, 25, 25})
}

func TestRotationAroundTopLeftOrigin(t *testing.T) {
	s := newTestScene()
	n := addNode(t, s, s.Root(), rect(10, 10, 20, 10))
	s.SetTransform(n, Transform{
		Ops:    []TransformOp{Rotate(math.Pi / 2)},
		Origin: OriginAt(Px(0), Px(0)),
	})
	s.Resolve()
	b, _ := s.WorldBounds(n)
	// (0,0)-(20,10) rotated 90 degrees about (10,10): x in [0,10], y in [10,30].
	assertBox(t, "rotated bounds", b, AABB{0, 10, 10, 30})
}

func TestTranslatePercentUsesOwnSize(t *testing.T) {
	s := newTestScene()
	n := addNode(t, s, s.Root(), rect(0, 0, 20, 10))
	s.SetTransform(n, Transform{Ops: []TransformOp{TranslatePercent(0.5, 1)}})
	s.Resolve()
	b, _ := s.WorldBounds(n)
	assertBox(t, "bounds", b, AABB{10, 10, 30, 20})
}

func TestParentTransformCascades(t *testing.T) {
	s := newTestScene()
	a := addNode(t, s, s.Root(), rect(0, 0, 20, 20))
	b := addNode(t, s, a, rect(0, 0, 10, 10))
	s.Resolve()

	s.SetTransform(a, Transform{Ops: []TransformOp{Translate(30, 40)}})
	st := s.Resolve()
	if st.Transform != 2 {
		t.Errorf("transform writes = %d, want 2", st.Transform)
	}
	bb, _ := s.WorldBounds(b)
	assertBox(t, "bounds(b)", bb, AABB{30, 40, 40, 50})
}

func TestSetTransformCopiesOps(t *testing.T) {
	s := newTestScene()
	n := addNode(t, s, s.Root(), rect(0, 0, 10, 10))
	ops := []TransformOp{Translate(1, 1)}
	s.SetTransform(n, Transform{Ops: ops})
	ops[0] = Translate(50, 50)
	if got := s.Transform(n).Ops[0]; got.X != 1 {
		t.Errorf("stored op aliased the caller's slice: %+v", got)
	}
}

func TestSetLayoutSameValueQueuesNothing(t *testing.T) {
	s := newTestScene()
	n := addNode(t, s, s.Root(), rect(0, 0, 10, 10))
	s.Resolve()
	s.SetLayout(n, rect(0, 0, 10, 10))
	if s.Pending() != 0 {
		t.Errorf("Pending = %d, want 0", s.Pending())
	}
}
