package cas

import (
	"fmt"
	"math/big"
	"strings"
	"text/scanner"

	"golang.org/x/text/unicode/norm"
)

// ============================================================
// Parser
// ============================================================

// unicodeOperators maps typographic forms to their ASCII spelling. It runs
// before NFKC, which would otherwise fold ² into a bare 2.
var unicodeOperators = strings.NewReplacer(
	"²", "**2",
	"³", "**3",
	"−", "-",
	"×", "*",
	"·", "*",
	"÷", "/",
	"π", "pi",
)

// funcAliases resolves the accepted spellings of each function.
var funcAliases = map[string]string{
	"log":    "ln",
	"arcsin": "asin",
	"arccos": "acos",
	"arctan": "atan",
}

// Parse reads text as an expression in the single variable varName.
// Identifiers other than varName, the constants pi and E (or e) and the
// known function names are rejected, so the free symbols of the result are
// always a subset of {varName}. Juxtaposition is not multiplication: "2x"
// is an error.
func Parse(text, varName string) (expr Expr, err error) {
	src := norm.NFKC.String(unicodeOperators.Replace(text))
	src = strings.NewReplacer("\r", " ", "\n", " ", "\t", " ").Replace(src)
	if strings.TrimSpace(src) == "" {
		return nil, &ParseError{Msg: "empty expression"}
	}

	p := &parser{varName: varName}
	p.s.Init(strings.NewReader(src))
	p.s.Mode = scanner.ScanIdents | scanner.ScanFloats
	p.s.Error = func(s *scanner.Scanner, msg string) {
		if p.scanErr == nil {
			p.scanErr = &ParseError{Pos: s.Pos().Column, Msg: msg}
		}
	}

	defer func() {
		if r := recover(); r != nil {
			pe, ok := r.(*ParseError)
			if !ok {
				panic(r)
			}
			expr, err = nil, pe
		}
	}()

	p.next()
	e := p.expression()
	if p.tok != scanner.EOF {
		p.fail("unexpected %s", p.describe())
	}
	return e.Simplify(), nil
}

// MustParse is Parse for literals known to be valid; it panics otherwise.
func MustParse(text, varName string) Expr {
	e, err := Parse(text, varName)
	if err != nil {
		panic(err)
	}
	return e
}

type parser struct {
	s       scanner.Scanner
	tok     rune
	pos     int
	varName string
	scanErr *ParseError
}

func (p *parser) next() {
	p.tok = p.s.Scan()
	p.pos = p.s.Position.Column
	if p.tok == scanner.EOF {
		p.pos = p.s.Pos().Column
	}
	if p.scanErr != nil {
		panic(p.scanErr)
	}
}

func (p *parser) fail(format string, args ...interface{}) {
	panic(&ParseError{Pos: p.pos, Msg: fmt.Sprintf(format, args...)})
}

func (p *parser) describe() string {
	switch p.tok {
	case scanner.EOF:
		return "end of input"
	case scanner.Ident, scanner.Int, scanner.Float:
		return fmt.Sprintf("%q", p.s.TokenText())
	}
	return fmt.Sprintf("%q", string(p.tok))
}

// expression := term (('+' | '-') term)*
func (p *parser) expression() Expr {
	terms := []Expr{p.term()}
	for {
		switch p.tok {
		case '+':
			p.next()
			terms = append(terms, p.term())
		case '-':
			p.next()
			terms = append(terms, &Mul{factors: []Expr{N(-1), p.term()}})
		default:
			if len(terms) == 1 {
				return terms[0]
			}
			return &Add{terms: terms}
		}
	}
}

// term := unary (('*' | '/') unary)*
func (p *parser) term() Expr {
	factors := []Expr{p.unary()}
	for {
		switch p.tok {
		case '*':
			p.next()
			factors = append(factors, p.unary())
		case '/':
			p.next()
			factors = append(factors, &Pow{base: p.unary(), exp: N(-1)})
		default:
			if len(factors) == 1 {
				return factors[0]
			}
			return &Mul{factors: factors}
		}
	}
}

// unary := ('+' | '-') unary | power
func (p *parser) unary() Expr {
	switch p.tok {
	case '+':
		p.next()
		return p.unary()
	case '-':
		p.next()
		return &Mul{factors: []Expr{N(-1), p.unary()}}
	}
	return p.power()
}

// power := primary (('**' | '^') unary)?
// The exponent is parsed as a unary so that x**-1 works and x**y**z
// associates to the right.
func (p *parser) power() Expr {
	base := p.primary()
	switch {
	case p.tok == '^':
		p.next()
	case p.tok == '*' && p.s.Peek() == '*':
		p.s.Next()
		p.next()
	default:
		return base
	}
	return &Pow{base: base, exp: p.unary()}
}

// primary := number | constant | variable | function '(' expression ')' | '(' expression ')'
func (p *parser) primary() Expr {
	switch p.tok {
	case scanner.Int, scanner.Float:
		return p.number()
	case scanner.Ident:
		return p.identifier()
	case '(':
		p.next()
		e := p.expression()
		if p.tok != ')' {
			p.fail("expected ')', got %s", p.describe())
		}
		p.next()
		return e
	}
	p.fail("unexpected %s", p.describe())
	return nil
}

func (p *parser) number() Expr {
	text := p.s.TokenText()
	approx := p.tok == scanner.Float
	r, ok := new(big.Rat).SetString(text)
	if !ok {
		p.fail("invalid number %q", text)
	}
	p.next()
	return &Num{val: r, approx: approx}
}

func (p *parser) identifier() Expr {
	name := p.s.TokenText()
	pos := p.pos
	p.next()
	switch name {
	case p.varName:
		return S(name)
	case "pi":
		return Pi()
	case "E", "e":
		return E()
	}
	if alias, ok := funcAliases[name]; ok {
		name = alias
	}
	build, ok := knownFuncs[name]
	if name == "sqrt" {
		build, ok = SqrtOf, true
	}
	if !ok {
		panic(&ParseError{Pos: pos, Msg: fmt.Sprintf("unknown identifier %q", name)})
	}
	if p.tok != '(' {
		p.fail("function %s needs a parenthesised argument", name)
	}
	p.next()
	arg := p.expression()
	if p.tok != ')' {
		p.fail("expected ')' after argument of %s, got %s", name, p.describe())
	}
	p.next()
	return build(arg)
}
