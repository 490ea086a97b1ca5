package thicket

import "math"

// Affine is a 2D affine matrix [a, b, c, d, tx, ty]:
//
//	| a  c  tx |
//	| b  d  ty |
//	| 0  0   1 |
type Affine [6]float64

// identityTransform is the identity affine matrix.
var identityTransform = Affine{1, 0, 0, 1, 0, 0}

// multiplyAffine multiplies two 2D affine matrices: result = parent * child.
func multiplyAffine(p, c Affine) Affine {
	return Affine{
		p[0]*c[0] + p[2]*c[1],
		p[1]*c[0] + p[3]*c[1],
		p[0]*c[2] + p[2]*c[3],
		p[1]*c[2] + p[3]*c[3],
		p[0]*c[4] + p[2]*c[5] + p[4],
		p[1]*c[4] + p[3]*c[5] + p[5],
	}
}

// invertAffine computes the inverse of a 2D affine matrix.
// Returns false if the matrix is singular.
func invertAffine(m Affine) (Affine, bool) {
	det := m[0]*m[3] - m[2]*m[1]
	if det > -1e-12 && det < 1e-12 {
		return identityTransform, false
	}
	invDet := 1.0 / det
	a := m[3] * invDet
	b := -m[1] * invDet
	c := -m[2] * invDet
	d := m[0] * invDet
	return Affine{
		a, b, c, d,
		-(a*m[4] + c*m[5]),
		-(b*m[4] + d*m[5]),
	}, true
}

// transformPoint applies an affine matrix to a point.
func transformPoint(m Affine, x, y float64) (float64, float64) {
	return m[0]*x + m[2]*y + m[4], m[1]*x + m[3]*y + m[5]
}

func translation(x, y float64) Affine { return Affine{1, 0, 0, 1, x, y} }

// Apply maps a point through m.
func (m Affine) Apply(x, y float64) (float64, float64) { return transformPoint(m, x, y) }

// TransformOpKind identifies a transform function.
type TransformOpKind uint8

const (
	OpTranslate        TransformOpKind = iota // X, Y in pixels
	OpTranslatePercent                        // X, Y as fractions of the node's width and height
	OpScale                                   // X, Y factors
	OpRotate                                  // X in radians
	OpSkew                                    // X, Y angles in radians
)

func (k TransformOpKind) String() string {
	switch k {
	case OpTranslate:
		return "translate"
	case OpTranslatePercent:
		return "translate%"
	case OpScale:
		return "scale"
	case OpRotate:
		return "rotate"
	case OpSkew:
		return "skew"
	default:
		return "unknown"
	}
}

// TransformOp is one function of a transform list.
type TransformOp struct {
	Kind TransformOpKind
	X, Y float64
}

// Translate returns a pixel translation.
func Translate(x, y float64) TransformOp { return TransformOp{Kind: OpTranslate, X: x, Y: y} }

// TranslatePercent returns a translation relative to the node's size;
// 0.5 moves by half the width or height.
func TranslatePercent(x, y float64) TransformOp {
	return TransformOp{Kind: OpTranslatePercent, X: x, Y: y}
}

// Scale returns a scale.
func Scale(x, y float64) TransformOp { return TransformOp{Kind: OpScale, X: x, Y: y} }

// Rotate returns a rotation by radians, clockwise in screen space.
func Rotate(radians float64) TransformOp { return TransformOp{Kind: OpRotate, X: radians} }

// Skew returns a skew by the given angles in radians.
func Skew(x, y float64) TransformOp { return TransformOp{Kind: OpSkew, X: x, Y: y} }

func (op TransformOp) matrix(w, h float64) Affine {
	switch op.Kind {
	case OpTranslate:
		return translation(op.X, op.Y)
	case OpTranslatePercent:
		return translation(op.X*w, op.Y*h)
	case OpScale:
		return Affine{op.X, 0, 0, op.Y, 0, 0}
	case OpRotate:
		sin, cos := math.Sincos(op.X)
		return Affine{cos, sin, -sin, cos, 0, 0}
	case OpSkew:
		return Affine{1, math.Tan(op.Y), math.Tan(op.X), 1, 0, 0}
	default:
		return identityTransform
	}
}

// Length is a pixel length or, when Percent is set, a fraction of the
// relevant dimension.
type Length struct {
	Value   float64
	Percent bool
}

// Px returns a pixel length.
func Px(v float64) Length { return Length{Value: v} }

// Pct returns a length relative to the node's size; Pct(0.5) is half.
func Pct(frac float64) Length { return Length{Value: frac, Percent: true} }

func (l Length) resolve(size float64) float64 {
	if l.Percent {
		return l.Value * size
	}
	return l.Value
}

// OriginKind selects how a transform origin is computed.
type OriginKind uint8

const (
	OriginCenter OriginKind = iota // the center of the node's box
	OriginXY                       // explicit X, Y lengths from the top-left
)

// Origin is the point transform functions are applied around, relative to
// the node's top-left corner.
type Origin struct {
	Kind OriginKind
	X, Y Length
}

// OriginAt returns an explicit origin.
func OriginAt(x, y Length) Origin { return Origin{Kind: OriginXY, X: x, Y: y} }

// point returns the origin in pixels for a box of size (w, h).
func (o Origin) point(w, h float64) Vec2 {
	if o.Kind == OriginCenter {
		return Vec2{0.5 * w, 0.5 * h}
	}
	return Vec2{o.X.resolve(w), o.Y.resolve(h)}
}

// Transform is a node's local transform: a list of functions applied in
// order around Origin.
type Transform struct {
	Ops    []TransformOp
	Origin Origin
}

// clone copies t so the caller's slice can be reused.
func (t Transform) clone() Transform {
	t.Ops = append([]TransformOp(nil), t.Ops...)
	return t
}

// localMatrix returns the matrix mapping origin-relative coordinates of a
// w by h box into its parent's origin-relative space. offset is the box's
// top-left relative to the parent's origin.
//
//	T(offset + origin) * op[0] * op[1] * ...
func (t Transform) localMatrix(w, h float64, offset Vec2) Affine {
	o := t.Origin.point(w, h)
	m := translation(offset.X+o.X, offset.Y+o.Y)
	for _, op := range t.Ops {
		m = multiplyAffine(m, op.matrix(w, h))
	}
	return m
}

// transformInput is everything the world-transform cascade reads for a node.
type transformInput struct {
	transform Transform
	layout    Layout
	offset    Vec2
}

// newTransformCascade resolves world matrices. A node's offset depends on its
// parent's layout and origin, so it is computed when the local value is read.
func newTransformCascade(s *Scene) *cascade[transformInput, Affine] {
	c := newCascade("transform", s.tree, identityTransform,
		func(id NodeID) transformInput {
			l := &s.locals[id.Index]
			in := transformInput{transform: l.transform, layout: l.layout}
			if p := s.tree.rec(id).Parent; !p.IsNil() {
				pl := &s.locals[p.Index]
				in.offset = childOffset(l.layout, pl.layout, pl.transform.Origin)
			} else {
				in.offset = Vec2{l.layout.Left, l.layout.Top}
			}
			return in
		},
		func(parent Affine, in transformInput) Affine {
			local := in.transform.localMatrix(in.layout.Width, in.layout.Height, in.offset)
			return multiplyAffine(parent, local)
		},
	)
	c.written = func(id NodeID, _, cur Affine, _ bool) {
		s.worldChanged(id, cur)
	}
	return c
}

// childOffset places a child's top-left relative to its parent's transform
// origin, inside the parent's border and padding.
func childOffset(child, parent Layout, parentOrigin Origin) Vec2 {
	o := parentOrigin.point(parent.Width, parent.Height)
	return Vec2{
		X: child.Left - o.X + parent.Border.Left + parent.Padding.Left,
		Y: child.Top - o.Y + parent.Border.Top + parent.Padding.Top,
	}
}
