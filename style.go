package thicket

import (
	"github.com/phanxgames/thicket/style"
)

// ApplyStyle parses inline declarations and writes them to a node's local
// values. Properties not mentioned keep their current values. On a parse
// error nothing is written.
func (s *Scene) ApplyStyle(id NodeID, declarations string) error {
	d, err := style.Parse(declarations)
	if err != nil {
		return err
	}
	s.ApplyDeclarations(id, d)
	return nil
}

// ApplyDeclarations writes parsed declarations to a node's local values.
func (s *Scene) ApplyDeclarations(id NodeID, d *style.Declarations) {
	if d.Opacity != nil {
		s.SetOpacity(id, *d.Opacity)
	}
	if d.DisplayNone != nil || d.Visible != nil || d.Enable != nil {
		sh := s.Show(id)
		if d.DisplayNone != nil {
			sh.Display = DisplayFlex
			if *d.DisplayNone {
				sh.Display = DisplayNone
			}
		}
		if d.Visible != nil {
			sh.Visible = *d.Visible
		}
		if d.Enable != nil {
			sh.Enable = enableMode(*d.Enable)
		}
		s.SetShow(id, sh)
	}
	if d.Filter != nil {
		s.SetFilter(id, HSV{H: d.Filter.H, S: d.Filter.S, V: d.Filter.I})
	}
	if d.HasTransform || d.Origin != nil {
		t := s.Transform(id)
		if d.HasTransform {
			t.Ops = make([]TransformOp, len(d.Transform))
			for i, f := range d.Transform {
				t.Ops[i] = transformOp(f)
			}
		}
		if d.Origin != nil {
			t.Origin = origin(*d.Origin)
		}
		s.SetTransform(id, t)
	}
}

func enableMode(e style.Enable) EnableMode {
	switch e {
	case style.EnableNone:
		return EnableNone
	case style.EnableVisible:
		return EnableVisible
	default:
		return EnableAuto
	}
}

func transformOp(f style.Func) TransformOp {
	switch f.Kind {
	case style.FuncTranslatePercent:
		return TranslatePercent(f.X, f.Y)
	case style.FuncScale:
		return Scale(f.X, f.Y)
	case style.FuncRotate:
		return Rotate(f.X)
	case style.FuncSkew:
		return Skew(f.X, f.Y)
	default:
		return Translate(f.X, f.Y)
	}
}

func origin(o style.Origin) Origin {
	if o.Center {
		return Origin{}
	}
	return OriginAt(Length(o.X), Length(o.Y))
}
