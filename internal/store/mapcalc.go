package store

import (
	"fmt"
	"strconv"
	"unicode"

	"github.com/maax3v3/hyperrgb/internal/raster"
)

// evalExpr evaluates a raster-algebra expression against a set of named
// rasters. The grammar covers what the reduction planner emits plus simple
// band math: identifiers (raster names, '#' allowed for band planes),
// numeric literals, the four arithmetic operators, unary minus, and
// parentheses. Operations between two rasters are pixel-wise and require
// matching shapes; scalars broadcast.
func evalExpr(expr string, rasters map[string]*raster.Grid) (*raster.Grid, error) {
	p := &exprParser{input: expr, rasters: rasters}
	v, err := p.parseSum()
	if err != nil {
		return nil, err
	}
	p.skipSpace()
	if p.pos != len(p.input) {
		return nil, fmt.Errorf("unexpected %q at offset %d", p.input[p.pos:], p.pos)
	}
	if v.grid == nil {
		return nil, fmt.Errorf("expression %q has no raster operand", expr)
	}
	if !v.owned {
		// A bare identifier evaluates to a source raster; the result must
		// not alias it.
		return v.grid.Clone(), nil
	}
	return v.grid, nil
}

// exprValue is either a raster plane or a scalar. owned marks grids
// allocated during evaluation, as opposed to source rasters.
type exprValue struct {
	grid   *raster.Grid
	scalar float64
	owned  bool
}

type exprParser struct {
	input   string
	pos     int
	rasters map[string]*raster.Grid
}

func (p *exprParser) skipSpace() {
	for p.pos < len(p.input) && p.input[p.pos] == ' ' {
		p.pos++
	}
}

func (p *exprParser) peek() byte {
	if p.pos >= len(p.input) {
		return 0
	}
	return p.input[p.pos]
}

// parseSum handles '+' and '-'.
func (p *exprParser) parseSum() (exprValue, error) {
	left, err := p.parseProduct()
	if err != nil {
		return exprValue{}, err
	}
	for {
		p.skipSpace()
		op := p.peek()
		if op != '+' && op != '-' {
			return left, nil
		}
		p.pos++
		right, err := p.parseProduct()
		if err != nil {
			return exprValue{}, err
		}
		left, err = combine(left, right, op)
		if err != nil {
			return exprValue{}, err
		}
	}
}

// parseProduct handles '*' and '/'.
func (p *exprParser) parseProduct() (exprValue, error) {
	left, err := p.parseFactor()
	if err != nil {
		return exprValue{}, err
	}
	for {
		p.skipSpace()
		op := p.peek()
		if op != '*' && op != '/' {
			return left, nil
		}
		p.pos++
		right, err := p.parseFactor()
		if err != nil {
			return exprValue{}, err
		}
		left, err = combine(left, right, op)
		if err != nil {
			return exprValue{}, err
		}
	}
}

func (p *exprParser) parseFactor() (exprValue, error) {
	p.skipSpace()
	switch c := p.peek(); {
	case c == '(':
		p.pos++
		v, err := p.parseSum()
		if err != nil {
			return exprValue{}, err
		}
		p.skipSpace()
		if p.peek() != ')' {
			return exprValue{}, fmt.Errorf("missing ')' at offset %d", p.pos)
		}
		p.pos++
		return v, nil
	case c == '-':
		p.pos++
		v, err := p.parseFactor()
		if err != nil {
			return exprValue{}, err
		}
		return combine(exprValue{scalar: 0}, v, '-')
	case c >= '0' && c <= '9' || c == '.':
		return p.parseNumber()
	case isIdentByte(c):
		return p.parseIdent()
	}
	return exprValue{}, fmt.Errorf("unexpected character %q at offset %d", p.peek(), p.pos)
}

func (p *exprParser) parseNumber() (exprValue, error) {
	start := p.pos
	for p.pos < len(p.input) && (p.input[p.pos] >= '0' && p.input[p.pos] <= '9' || p.input[p.pos] == '.') {
		p.pos++
	}
	f, err := strconv.ParseFloat(p.input[start:p.pos], 64)
	if err != nil {
		return exprValue{}, fmt.Errorf("bad number %q: %w", p.input[start:p.pos], err)
	}
	return exprValue{scalar: f}, nil
}

func (p *exprParser) parseIdent() (exprValue, error) {
	start := p.pos
	for p.pos < len(p.input) && isIdentByte(p.input[p.pos]) {
		p.pos++
	}
	name := p.input[start:p.pos]
	g, ok := p.rasters[name]
	if !ok {
		return exprValue{}, fmt.Errorf("raster %q: %w", name, ErrNotFound)
	}
	return exprValue{grid: g}, nil
}

// isIdentByte accepts raster-name characters, including the '#' band
// separator and '.'/'_'/'-' commonly found in map names.
func isIdentByte(c byte) bool {
	if c == '#' || c == '_' || c == '-' {
		return true
	}
	r := rune(c)
	return unicode.IsLetter(r) || unicode.IsDigit(r)
}

// combine applies op pixel-wise, broadcasting scalars. The result never
// aliases an input grid.
func combine(a, b exprValue, op byte) (exprValue, error) {
	apply := func(x, y float64) float64 {
		switch op {
		case '+':
			return x + y
		case '-':
			return x - y
		case '*':
			return x * y
		default:
			return x / y
		}
	}

	switch {
	case a.grid == nil && b.grid == nil:
		return exprValue{scalar: apply(a.scalar, b.scalar)}, nil
	case a.grid != nil && b.grid != nil:
		if err := raster.CheckShape(a.grid, b.grid); err != nil {
			return exprValue{}, err
		}
		out := raster.New(a.grid.Rows, a.grid.Cols)
		for i := range out.Data {
			out.Data[i] = apply(a.grid.Data[i], b.grid.Data[i])
		}
		return exprValue{grid: out, owned: true}, nil
	case a.grid != nil:
		out := raster.New(a.grid.Rows, a.grid.Cols)
		for i := range out.Data {
			out.Data[i] = apply(a.grid.Data[i], b.scalar)
		}
		return exprValue{grid: out, owned: true}, nil
	default:
		out := raster.New(b.grid.Rows, b.grid.Cols)
		for i := range out.Data {
			out.Data[i] = apply(a.scalar, b.grid.Data[i])
		}
		return exprValue{grid: out, owned: true}, nil
	}
}
