// Package style parses inline style declarations such as
//
//	opacity: 0.5; enable: visible; filter: hsi(30, -20, 10);
//	transform: translate(10, 50%) rotate(45deg); transform-origin: center;
//
// into the local values a thicket.Scene resolves.
package style

import (
	"fmt"
	"io"
	"strings"

	"github.com/alecthomas/participle/v2"
	"github.com/alecthomas/participle/v2/lexer"
)

var (
	styleLexer = lexer.MustSimple([]lexer.SimpleRule{
		{Name: "Whitespace", Pattern: `[ \t\r\n]+`},
		{Name: "Comment", Pattern: `/\*[^*]*\*+(?:[^/*][^*]*\*+)*/`},
		{Name: "Number", Pattern: `[-+]?(?:\d+\.\d*|\.\d+|\d+)(?:deg|rad|turn|px|%)?`},
		{Name: "Ident", Pattern: `[A-Za-z_][A-Za-z0-9_-]*`},
		{Name: "Punct", Pattern: `[:;(),]`},
	})

	sheetParser = participle.MustBuild[Sheet](
		participle.Lexer(styleLexer),
		participle.Elide("Whitespace", "Comment"),
		participle.UseLookahead(2),
	)
)

// Sheet is the syntax tree of a declaration list.
type Sheet struct {
	Decls []*Decl `parser:"';'* ( @@ ( ';'+ @@ )* ';'* )?"`
}

// Decl is a single `property: value...` declaration.
type Decl struct {
	Pos      lexer.Position
	Property string  `parser:"@Ident ':'"`
	Terms    []*Term `parser:"@@+"`
}

// Term is one space-separated component of a declaration value.
type Term struct {
	Call   *Call   `parser:"  @@"`
	Number *string `parser:"| @Number"`
	Ident  *string `parser:"| @Ident"`
}

// Call is a functional value such as rotate(45deg).
type Call struct {
	Name string `parser:"@Ident '('"`
	Args []*Arg `parser:"( @@ ( ',' @@ )* )? ')'"`
}

// Arg is a function argument.
type Arg struct {
	Number *string `parser:"  @Number"`
	Ident  *string `parser:"| @Ident"`
}

func (a *Arg) String() string {
	switch {
	case a.Number != nil:
		return *a.Number
	case a.Ident != nil:
		return *a.Ident
	default:
		return ""
	}
}

// ParseSheet parses declarations into a syntax tree without interpreting them.
func ParseSheet(input string) (*Sheet, error) {
	return sheetParser.ParseString("", input)
}

// Parse parses and interprets a declaration list.
func Parse(input string) (*Declarations, error) {
	sheet, err := ParseSheet(input)
	if err != nil {
		return nil, fmt.Errorf("style: %w", err)
	}
	return Interpret(sheet)
}

// ParseReader parses and interprets declarations read from r.
func ParseReader(r io.Reader) (*Declarations, error) {
	sheet, err := sheetParser.Parse("", r)
	if err != nil {
		return nil, fmt.Errorf("style: %w", err)
	}
	return Interpret(sheet)
}

// Interpret converts a syntax tree into declarations. Later declarations of a
// property override earlier ones.
func Interpret(sheet *Sheet) (*Declarations, error) {
	d := &Declarations{}
	for _, decl := range sheet.Decls {
		if err := d.apply(decl); err != nil {
			return nil, fmt.Errorf("style: %s: %s: %w", decl.Pos, decl.Property, err)
		}
	}
	return d, nil
}

func (d *Declarations) apply(decl *Decl) error {
	switch strings.ToLower(decl.Property) {
	case "opacity":
		n, err := singleNumber(decl.Terms)
		if err != nil {
			return err
		}
		v, err := n.scalar()
		if err != nil {
			return err
		}
		d.Opacity = &v
	case "display":
		id, err := singleIdent(decl.Terms)
		if err != nil {
			return err
		}
		// Unknown display values fall back to flex.
		none := id == "none"
		d.DisplayNone = &none
	case "visibility":
		id, err := singleIdent(decl.Terms)
		if err != nil {
			return err
		}
		var visible bool
		switch id {
		case "visible":
			visible = true
		case "hidden":
		default:
			return fmt.Errorf("unknown visibility %q", id)
		}
		d.Visible = &visible
	case "enable", "pointer-events":
		id, err := singleIdent(decl.Terms)
		if err != nil {
			return err
		}
		var e Enable
		switch id {
		case "auto":
			e = EnableAuto
		case "none":
			e = EnableNone
		case "visible":
			e = EnableVisible
		default:
			return fmt.Errorf("unknown enable mode %q", id)
		}
		d.Enable = &e
	case "filter":
		f, err := parseFilter(decl.Terms)
		if err != nil {
			return err
		}
		d.Filter = &f
	case "transform":
		fns, err := parseTransform(decl.Terms)
		if err != nil {
			return err
		}
		d.Transform = fns
		d.HasTransform = true
	case "transform-origin":
		o, err := parseOrigin(decl.Terms)
		if err != nil {
			return err
		}
		d.Origin = &o
	default:
		return fmt.Errorf("unsupported property")
	}
	return nil
}

func singleIdent(terms []*Term) (string, error) {
	if len(terms) != 1 || terms[0].Ident == nil {
		return "", fmt.Errorf("expected a single keyword")
	}
	return strings.ToLower(*terms[0].Ident), nil
}

func singleNumber(terms []*Term) (number, error) {
	if len(terms) != 1 || terms[0].Number == nil {
		return number{}, fmt.Errorf("expected a single number")
	}
	return parseNumber(*terms[0].Number)
}
