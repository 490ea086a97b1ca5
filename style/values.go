package style

import (
	"fmt"
	"math"
	"strconv"
	"strings"
)

// Enable is the parsed value of an enable (pointer-events) declaration.
type Enable uint8

const (
	EnableAuto Enable = iota
	EnableNone
	EnableVisible
)

// HSI is a parsed hsi() filter, normalized to turns and fractions: H in
// [-0.5, 0.5], S and I in [-1, 1].
type HSI struct {
	H, S, I float64
}

// Length is a pixel length or, when Percent is set, a fraction of the
// node's size.
type Length struct {
	Value   float64
	Percent bool
}

// FuncKind identifies a transform function.
type FuncKind uint8

const (
	FuncTranslate        FuncKind = iota // X, Y in pixels
	FuncTranslatePercent                 // X, Y as fractions of the node's size
	FuncScale                            // X, Y factors
	FuncRotate                           // X in radians
	FuncSkew                             // X, Y in radians
)

// Func is one parsed transform function.
type Func struct {
	Kind FuncKind
	X, Y float64
}

// Origin is a parsed transform-origin. Center is set for the bare keyword.
type Origin struct {
	Center bool
	X, Y   Length
}

// Declarations holds the parsed properties. Nil pointers and a false
// HasTransform mean the property was not declared.
type Declarations struct {
	Opacity      *float64
	DisplayNone  *bool
	Visible      *bool
	Enable       *Enable
	Filter       *HSI
	Transform    []Func
	HasTransform bool
	Origin       *Origin
}

// number is a numeric token split into value and unit.
type number struct {
	value float64
	unit  string
}

var units = []string{"deg", "rad", "turn", "px", "%"}

func parseNumber(raw string) (number, error) {
	n := number{}
	for _, u := range units {
		if strings.HasSuffix(raw, u) {
			n.unit = u
			raw = strings.TrimSuffix(raw, u)
			break
		}
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return number{}, fmt.Errorf("invalid number %q: %w", raw, err)
	}
	n.value = v
	return n, nil
}

// scalar accepts a unitless number.
func (n number) scalar() (float64, error) {
	if n.unit != "" {
		return 0, fmt.Errorf("unexpected unit %q", n.unit)
	}
	return n.value, nil
}

// angle converts to radians. A bare zero is allowed.
func (n number) angle() (float64, error) {
	switch n.unit {
	case "deg":
		return n.value * math.Pi / 180, nil
	case "rad":
		return n.value, nil
	case "turn":
		return n.value * 2 * math.Pi, nil
	case "":
		if n.value == 0 {
			return 0, nil
		}
	}
	return 0, fmt.Errorf("expected an angle, got %v%s", n.value, n.unit)
}

// length accepts px, % or a bare number as pixels.
func (n number) length() (Length, error) {
	switch n.unit {
	case "", "px":
		return Length{Value: n.value}, nil
	case "%":
		return Length{Value: n.value / 100, Percent: true}, nil
	}
	return Length{}, fmt.Errorf("expected a length, got %v%s", n.value, n.unit)
}

func argNumbers(c *Call, minArgs, maxArgs int) ([]number, error) {
	if len(c.Args) < minArgs || len(c.Args) > maxArgs {
		if minArgs == maxArgs {
			return nil, fmt.Errorf("%s takes %d arguments, got %d", c.Name, minArgs, len(c.Args))
		}
		return nil, fmt.Errorf("%s takes %d to %d arguments, got %d", c.Name, minArgs, maxArgs, len(c.Args))
	}
	out := make([]number, len(c.Args))
	for i, a := range c.Args {
		if a.Number == nil {
			return nil, fmt.Errorf("%s: argument %d: expected a number, got %q", c.Name, i+1, a.String())
		}
		n, err := parseNumber(*a.Number)
		if err != nil {
			return nil, fmt.Errorf("%s: argument %d: %w", c.Name, i+1, err)
		}
		out[i] = n
	}
	return out, nil
}

// parseFilter reads hsi(h, s, i) with h in degrees [-180, 180] and s, i in
// percent [-100, 100]; out-of-range inputs are clamped.
func parseFilter(terms []*Term) (HSI, error) {
	if len(terms) != 1 || terms[0].Call == nil || !strings.EqualFold(terms[0].Call.Name, "hsi") {
		return HSI{}, fmt.Errorf("expected hsi(h, s, i)")
	}
	ns, err := argNumbers(terms[0].Call, 3, 3)
	if err != nil {
		return HSI{}, err
	}
	var v [3]float64
	for i, n := range ns {
		if n.unit != "" && !(i == 0 && n.unit == "deg") && !(i > 0 && n.unit == "%") {
			return HSI{}, fmt.Errorf("hsi: argument %d: unexpected unit %q", i+1, n.unit)
		}
		v[i] = n.value
	}
	return HSI{
		H: clamp(v[0], -180, 180) / 360,
		S: clamp(v[1], -100, 100) / 100,
		I: clamp(v[2], -100, 100) / 100,
	}, nil
}

func parseTransform(terms []*Term) ([]Func, error) {
	if len(terms) == 1 && terms[0].Ident != nil && strings.EqualFold(*terms[0].Ident, "none") {
		return []Func{}, nil
	}
	fns := make([]Func, 0, len(terms))
	for _, t := range terms {
		if t.Call == nil {
			return nil, fmt.Errorf("expected a transform function")
		}
		f, err := parseFunc(t.Call)
		if err != nil {
			return nil, err
		}
		fns = append(fns, f)
	}
	return fns, nil
}

func parseFunc(c *Call) (Func, error) {
	switch c.Name {
	case "translate":
		ns, err := argNumbers(c, 1, 2)
		if err != nil {
			return Func{}, err
		}
		x, err := ns[0].length()
		if err != nil {
			return Func{}, err
		}
		y := Length{Percent: x.Percent}
		if len(ns) == 2 {
			if y, err = ns[1].length(); err != nil {
				return Func{}, err
			}
		}
		if x.Percent != y.Percent {
			return Func{}, fmt.Errorf("translate cannot mix pixels and percentages")
		}
		if x.Percent {
			return Func{Kind: FuncTranslatePercent, X: x.Value, Y: y.Value}, nil
		}
		return Func{Kind: FuncTranslate, X: x.Value, Y: y.Value}, nil
	case "translateX", "translateY":
		ns, err := argNumbers(c, 1, 1)
		if err != nil {
			return Func{}, err
		}
		l, err := ns[0].length()
		if err != nil {
			return Func{}, err
		}
		f := Func{Kind: FuncTranslate}
		if l.Percent {
			f.Kind = FuncTranslatePercent
		}
		if c.Name == "translateX" {
			f.X = l.Value
		} else {
			f.Y = l.Value
		}
		return f, nil
	case "scale":
		ns, err := argNumbers(c, 1, 2)
		if err != nil {
			return Func{}, err
		}
		x, err := ns[0].scalar()
		if err != nil {
			return Func{}, err
		}
		y := x
		if len(ns) == 2 {
			if y, err = ns[1].scalar(); err != nil {
				return Func{}, err
			}
		}
		return Func{Kind: FuncScale, X: x, Y: y}, nil
	case "scaleX", "scaleY":
		ns, err := argNumbers(c, 1, 1)
		if err != nil {
			return Func{}, err
		}
		v, err := ns[0].scalar()
		if err != nil {
			return Func{}, err
		}
		if c.Name == "scaleX" {
			return Func{Kind: FuncScale, X: v, Y: 1}, nil
		}
		return Func{Kind: FuncScale, X: 1, Y: v}, nil
	case "rotate", "rotateZ":
		ns, err := argNumbers(c, 1, 1)
		if err != nil {
			return Func{}, err
		}
		a, err := ns[0].angle()
		if err != nil {
			return Func{}, err
		}
		return Func{Kind: FuncRotate, X: a}, nil
	case "skew":
		ns, err := argNumbers(c, 1, 2)
		if err != nil {
			return Func{}, err
		}
		x, err := ns[0].angle()
		if err != nil {
			return Func{}, err
		}
		var y float64
		if len(ns) == 2 {
			if y, err = ns[1].angle(); err != nil {
				return Func{}, err
			}
		}
		return Func{Kind: FuncSkew, X: x, Y: y}, nil
	}
	return Func{}, fmt.Errorf("unknown transform function %q", c.Name)
}

// parseOrigin reads `center`, or one or two lengths where `center` stands
// for 50%. A missing second value is centered.
func parseOrigin(terms []*Term) (Origin, error) {
	if len(terms) == 1 && terms[0].Ident != nil && strings.EqualFold(*terms[0].Ident, "center") {
		return Origin{Center: true}, nil
	}
	if len(terms) < 1 || len(terms) > 2 {
		return Origin{}, fmt.Errorf("expected one or two origin values")
	}
	o := Origin{Y: Length{Value: 0.5, Percent: true}}
	for i, t := range terms {
		var l Length
		switch {
		case t.Ident != nil && strings.EqualFold(*t.Ident, "center"):
			l = Length{Value: 0.5, Percent: true}
		case t.Number != nil:
			n, err := parseNumber(*t.Number)
			if err != nil {
				return Origin{}, err
			}
			if l, err = n.length(); err != nil {
				return Origin{}, err
			}
		default:
			return Origin{}, fmt.Errorf("invalid origin value")
		}
		if i == 0 {
			o.X = l
		} else {
			o.Y = l
		}
	}
	return o, nil
}

func clamp(v, lo, hi float64) float64 {
	return math.Max(lo, math.Min(hi, v))
}
