package thicket

import (
	"github.com/tanema/gween"
	"github.com/tanema/gween/ease"
)

// TweenGroup animates up to 4 local values of a node simultaneously.
// Create one via the convenience constructors (TweenOpacity, TweenFilter,
// TweenTranslate, TweenRotation) and either call Update(dt) each frame or
// hand it to Scene.Animate. Values are written through the scene's setters,
// so every step dirties exactly what it changed. If the target node is
// destroyed, the group stops immediately.
type TweenGroup struct {
	tweens [4]*gween.Tween
	count  int
	values [4]float64
	apply  func(vals []float64)
	scene  *Scene
	target NodeID
	Done   bool
}

// Target returns the animated node.
func (g *TweenGroup) Target() NodeID { return g.target }

// Update advances all tweens by dt seconds and writes the values to the
// target. If the target node is no longer alive, Done is set and no writes
// occur.
func (g *TweenGroup) Update(dt float32) {
	if g.Done {
		return
	}
	if !g.scene.Alive(g.target) {
		g.Done = true
		return
	}

	allDone := true
	for i := 0; i < g.count; i++ {
		val, finished := g.tweens[i].Update(dt)
		g.values[i] = float64(val)
		if !finished {
			allDone = false
		}
	}
	g.Done = allDone
	g.apply(g.values[:g.count])
}

func newTweenGroup(s *Scene, id NodeID, from, to []float64, duration float32, fn ease.TweenFunc, apply func([]float64)) *TweenGroup {
	g := &TweenGroup{count: len(from), scene: s, target: id, apply: apply}
	for i := range from {
		g.tweens[i] = gween.New(float32(from[i]), float32(to[i]), duration, fn)
	}
	return g
}

// TweenOpacity animates a node's local opacity.
func TweenOpacity(s *Scene, id NodeID, to float64, duration float32, fn ease.TweenFunc) *TweenGroup {
	from := s.Opacity(id)
	return newTweenGroup(s, id, []float64{from}, []float64{to}, duration, fn, func(v []float64) {
		s.SetOpacity(id, v[0])
	})
}

// TweenFilter animates all three components of a node's local HSV filter.
func TweenFilter(s *Scene, id NodeID, to HSV, duration float32, fn ease.TweenFunc) *TweenGroup {
	f := s.Filter(id)
	return newTweenGroup(s, id, []float64{f.H, f.S, f.V}, []float64{to.H, to.S, to.V}, duration, fn, func(v []float64) {
		s.SetFilter(id, HSV{H: v[0], S: v[1], V: v[2]})
	})
}

// TweenTranslate animates the node's leading pixel translation, adding one
// in front of the other transform functions if there is none.
func TweenTranslate(s *Scene, id NodeID, toX, toY float64, duration float32, fn ease.TweenFunc) *TweenGroup {
	t := s.Transform(id)
	var fromX, fromY float64
	if len(t.Ops) > 0 && t.Ops[0].Kind == OpTranslate {
		fromX, fromY = t.Ops[0].X, t.Ops[0].Y
	}
	return newTweenGroup(s, id, []float64{fromX, fromY}, []float64{toX, toY}, duration, fn, func(v []float64) {
		t := s.Transform(id)
		if len(t.Ops) == 0 || t.Ops[0].Kind != OpTranslate {
			t.Ops = append([]TransformOp{{}}, t.Ops...)
		}
		t.Ops[0] = Translate(v[0], v[1])
		s.SetTransform(id, t)
	})
}

// TweenRotation animates the node's first rotation, appending one to its
// transform functions if there is none.
func TweenRotation(s *Scene, id NodeID, to float64, duration float32, fn ease.TweenFunc) *TweenGroup {
	var from float64
	if i := rotationOp(s.Transform(id)); i >= 0 {
		from = s.Transform(id).Ops[i].X
	}
	return newTweenGroup(s, id, []float64{from}, []float64{to}, duration, fn, func(v []float64) {
		t := s.Transform(id)
		i := rotationOp(t)
		if i < 0 {
			t.Ops = append(t.Ops, TransformOp{})
			i = len(t.Ops) - 1
		}
		t.Ops[i] = Rotate(v[0])
		s.SetTransform(id, t)
	})
}

func rotationOp(t Transform) int {
	for i, op := range t.Ops {
		if op.Kind == OpRotate {
			return i
		}
	}
	return -1
}

// Animate registers g with the scene; Update advances it every tick until it
// is done.
func (s *Scene) Animate(g *TweenGroup) {
	s.tweens = append(s.tweens, g)
}

// Tweens returns the number of registered, unfinished tween groups.
func (s *Scene) Tweens() int { return len(s.tweens) }

func (s *Scene) advanceTweens(dt float32) {
	live := s.tweens[:0]
	for _, g := range s.tweens {
		g.Update(dt)
		if !g.Done {
			live = append(live, g)
		}
	}
	clear(s.tweens[len(live):])
	s.tweens = live
}
