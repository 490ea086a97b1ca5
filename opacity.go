package thicket

// newOpacityCascade resolves opacity as the product of local opacities along
// the path to the root.
func newOpacityCascade(s *Scene) *cascade[float64, float64] {
	return newCascade("opacity", s.tree, 1.0,
		func(id NodeID) float64 { return s.locals[id.Index].opacity },
		func(parent, local float64) float64 { return parent * local },
	)
}
