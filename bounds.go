package thicket

import "math"

// worldAABB computes the axis-aligned bounding box of a w by h box whose
// origin sits at o, transformed by m. Zero allocations.
func worldAABB(m Affine, w, h float64, o Vec2) AABB {
	a, b, cc, d, tx, ty := m[0], m[2], m[1], m[3], m[4], m[5]

	// Corners in origin-relative space: (-ox,-oy) to (w-ox, h-oy).
	x0, y0 := -o.X, -o.Y
	x1, y1 := w-o.X, h-o.Y

	px0, py0 := a*x0+b*y0+tx, cc*x0+d*y0+ty
	px1, py1 := a*x1+b*y0+tx, cc*x1+d*y0+ty
	px2, py2 := a*x1+b*y1+tx, cc*x1+d*y1+ty
	px3, py3 := a*x0+b*y1+tx, cc*x0+d*y1+ty

	return AABB{
		MinX: math.Min(math.Min(px0, px1), math.Min(px2, px3)),
		MinY: math.Min(math.Min(py0, py1), math.Min(py2, py3)),
		MaxX: math.Max(math.Max(px0, px1), math.Max(px2, px3)),
		MaxY: math.Max(math.Max(py0, py1), math.Max(py2, py3)),
	}
}

// localContains reports whether the world point (x, y) falls inside the
// node's untransformed box, using the inverse of its world matrix.
func localContains(m Affine, w, h float64, o Vec2, x, y float64) bool {
	inv, ok := invertAffine(m)
	if !ok {
		return false
	}
	lx, ly := transformPoint(inv, x, y)
	lx += o.X
	ly += o.Y
	return lx >= 0 && lx <= w && ly >= 0 && ly <= h
}
