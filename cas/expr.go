// Package cas is the symbolic kernel behind the function study.
//
// Design goals:
//   - Exact rational arithmetic (math/big.Rat), with approximate floats
//     flagged as such so they print like floats
//   - Deterministic simplification and stable output
//   - Float evaluation that never panics: NaN and ±Inf flow through
//   - Real-analysis helpers (limits, real roots, sign sets, range,
//     asymptotes) built on top of the tree
package cas

import (
	"fmt"
	"math"
	"math/big"
	"sort"
	"strings"
)

// ============================================================
// Core Interface
// ============================================================

type Expr interface {
	Simplify() Expr
	String() string
	LaTeX() string
	Sub(varName string, value Expr) Expr
	Diff(varName string) Expr
	Eval() (*Num, bool)
	Equal(other Expr) bool
	exprType() string
	toJSON() map[string]interface{}
}

// ============================================================
// Num: exact rational, or approximate float
// ============================================================

type Num struct {
	val    *big.Rat
	approx bool
}

func N(n int64) *Num { return &Num{val: new(big.Rat).SetInt64(n)} }
func F(p, q int64) *Num {
	if q == 0 {
		panic("cas: denominator is zero")
	}
	return &Num{val: new(big.Rat).SetFrac(big.NewInt(p), big.NewInt(q))}
}

// NFloat wraps a finite float as an approximate number. Callers holding a
// possibly non-finite value should go through FromFloat instead.
func NFloat(f float64) *Num {
	r := new(big.Rat)
	if r.SetFloat64(f) == nil {
		panic(fmt.Sprintf("cas: NFloat of non-finite value %v", f))
	}
	return &Num{val: r, approx: true}
}

// FromFloat maps any float to an expression: ±Inf become Inf nodes and NaN
// becomes Undefined.
func FromFloat(f float64) Expr {
	switch {
	case math.IsNaN(f):
		return Undefined()
	case math.IsInf(f, 1):
		return PosInf()
	case math.IsInf(f, -1):
		return NegInf()
	}
	return NFloat(f)
}

func (n *Num) Simplify() Expr        { return n }
func (n *Num) Sub(string, Expr) Expr { return n }
func (n *Num) Diff(string) Expr      { return N(0) }
func (n *Num) Eval() (*Num, bool)    { return n, true }
func (n *Num) Equal(other Expr) bool { o, ok := other.(*Num); return ok && n.val.Cmp(o.val) == 0 }
func (n *Num) exprType() string      { return "num" }
func (n *Num) Float64() float64      { f, _ := n.val.Float64(); return f }
func (n *Num) IsZero() bool          { return n.val.Sign() == 0 }
func (n *Num) IsOne() bool           { return n.val.Cmp(big.NewRat(1, 1)) == 0 }
func (n *Num) IsNegOne() bool        { return n.val.Cmp(big.NewRat(-1, 1)) == 0 }
func (n *Num) IsInteger() bool       { return n.val.IsInt() }
func (n *Num) IsApprox() bool        { return n.approx }
func (n *Num) Rat() *big.Rat         { return new(big.Rat).Set(n.val) }
func (n *Num) IsPositive() bool      { return n.val.Sign() > 0 }
func (n *Num) IsNegative() bool      { return n.val.Sign() < 0 }

func (n *Num) String() string {
	if n.approx {
		return formatFloat(n.Float64())
	}
	if n.val.IsInt() {
		return n.val.Num().String()
	}
	return n.val.RatString()
}

func (n *Num) LaTeX() string {
	if n.approx || n.val.IsInt() {
		return n.String()
	}
	sign := ""
	v := new(big.Rat).Set(n.val)
	if v.Sign() < 0 {
		sign = "-"
		v.Neg(v)
	}
	return fmt.Sprintf("%s\\frac{%s}{%s}", sign, v.Num().String(), v.Denom().String())
}

func (n *Num) toJSON() map[string]interface{} {
	if n.approx {
		return map[string]interface{}{"type": "num", "value": n.val.RatString(), "approx": true}
	}
	return map[string]interface{}{"type": "num", "value": n.String()}
}

// Arithmetic on numbers; an approximate operand makes the result approximate.
func numAdd(a, b *Num) *Num {
	return &Num{val: new(big.Rat).Add(a.val, b.val), approx: a.approx || b.approx}
}
func numSub(a, b *Num) *Num {
	return &Num{val: new(big.Rat).Sub(a.val, b.val), approx: a.approx || b.approx}
}
func numMul(a, b *Num) *Num {
	return &Num{val: new(big.Rat).Mul(a.val, b.val), approx: a.approx || b.approx}
}
func numNeg(a *Num) *Num { return &Num{val: new(big.Rat).Neg(a.val), approx: a.approx} }
func numRecip(a *Num) *Num {
	if a.IsZero() {
		panic("cas: division by zero")
	}
	return &Num{val: new(big.Rat).Inv(a.val), approx: a.approx}
}
func numDiv(a, b *Num) *Num { return numMul(a, numRecip(b)) }
func numAbs(a *Num) *Num {
	r := new(big.Rat).Set(a.val)
	if r.Sign() < 0 {
		r.Neg(r)
	}
	return &Num{val: r, approx: a.approx}
}
func numCmp(a, b *Num) int { return a.val.Cmp(b.val) }

// numPowInt raises an exact or approximate number to a small integer power.
func numPowInt(b *Num, e int64) *Num {
	neg := e < 0
	if neg {
		e = -e
	}
	result := &Num{val: big.NewRat(1, 1), approx: b.approx}
	for i := int64(0); i < e; i++ {
		result = numMul(result, b)
	}
	if neg {
		return numRecip(result)
	}
	return result
}

// formatFloat prints approximate numbers the way a float-aware CAS does:
// integral values keep a trailing ".0".
func formatFloat(f float64) string {
	if f == math.Trunc(f) && math.Abs(f) < 1e15 {
		return fmt.Sprintf("%.1f", f)
	}
	return fmt.Sprintf("%.15g", f)
}

// FormatNumber prints a plain float without the trailing ".0", for bounds
// and relations.
func FormatNumber(f float64) string {
	switch {
	case math.IsInf(f, 1):
		return "+∞"
	case math.IsInf(f, -1):
		return "-∞"
	case math.IsNaN(f):
		return "undefined"
	}
	if f == math.Trunc(f) && math.Abs(f) < 1e15 {
		return fmt.Sprintf("%.0f", f)
	}
	return fmt.Sprintf("%.10g", f)
}

// ============================================================
// Sym: symbolic variable
// ============================================================

type Sym struct{ name string }

func S(name string) *Sym      { return &Sym{name: name} }
func (s *Sym) Simplify() Expr { return s }
func (s *Sym) String() string { return s.name }
func (s *Sym) LaTeX() string  { return s.name }
func (s *Sym) Eval() (*Num, bool) {
	return nil, false
}
func (s *Sym) Equal(other Expr) bool { o, ok := other.(*Sym); return ok && s.name == o.name }
func (s *Sym) exprType() string      { return "sym" }
func (s *Sym) Name() string          { return s.name }
func (s *Sym) toJSON() map[string]interface{} {
	return map[string]interface{}{"type": "sym", "name": s.name}
}
func (s *Sym) Sub(varName string, value Expr) Expr {
	if s.name == varName {
		return value
	}
	return s
}
func (s *Sym) Diff(varName string) Expr {
	if s.name == varName {
		return N(1)
	}
	return N(0)
}

// ============================================================
// Const: named real constants
// ============================================================

type Const struct {
	name  string
	value float64
}

func Pi() *Const { return &Const{name: "pi", value: math.Pi} }
func E() *Const  { return &Const{name: "E", value: math.E} }

func (c *Const) Simplify() Expr        { return c }
func (c *Const) String() string        { return c.name }
func (c *Const) Sub(string, Expr) Expr { return c }
func (c *Const) Diff(string) Expr      { return N(0) }
func (c *Const) Eval() (*Num, bool)    { return NFloat(c.value), true }
func (c *Const) Equal(other Expr) bool { o, ok := other.(*Const); return ok && c.name == o.name }
func (c *Const) exprType() string      { return "const" }
func (c *Const) Value() float64        { return c.value }
func (c *Const) LaTeX() string {
	if c.name == "pi" {
		return "\\pi"
	}
	return "e"
}
func (c *Const) toJSON() map[string]interface{} {
	return map[string]interface{}{"type": "const", "name": c.name}
}

// ============================================================
// Inf and Undefined: limit values
// ============================================================

type Inf struct{ neg bool }

func PosInf() *Inf { return &Inf{} }
func NegInf() *Inf { return &Inf{neg: true} }

func (i *Inf) Simplify() Expr        { return i }
func (i *Inf) Sub(string, Expr) Expr { return i }
func (i *Inf) Diff(string) Expr      { return N(0) }
func (i *Inf) Eval() (*Num, bool)    { return nil, false }
func (i *Inf) Equal(other Expr) bool { o, ok := other.(*Inf); return ok && i.neg == o.neg }
func (i *Inf) exprType() string      { return "inf" }
func (i *Inf) Negative() bool        { return i.neg }
func (i *Inf) Float64() float64 {
	if i.neg {
		return math.Inf(-1)
	}
	return math.Inf(1)
}
func (i *Inf) String() string {
	if i.neg {
		return "-∞"
	}
	return "+∞"
}
func (i *Inf) LaTeX() string {
	if i.neg {
		return "-\\infty"
	}
	return "+\\infty"
}
func (i *Inf) toJSON() map[string]interface{} {
	return map[string]interface{}{"type": "inf", "negative": i.neg}
}

type undefined struct{}

// Undefined is the value of a limit or evaluation that does not exist.
func Undefined() Expr { return undefined{} }

// IsUndefined reports whether e is the Undefined marker.
func IsUndefined(e Expr) bool { _, ok := e.(undefined); return ok }

func (undefined) Simplify() Expr                 { return undefined{} }
func (undefined) String() string                 { return "undefined" }
func (undefined) LaTeX() string                  { return "\\text{undefined}" }
func (undefined) Sub(string, Expr) Expr          { return undefined{} }
func (undefined) Diff(string) Expr               { return undefined{} }
func (undefined) Eval() (*Num, bool)             { return nil, false }
func (undefined) Equal(other Expr) bool          { return IsUndefined(other) }
func (undefined) exprType() string               { return "undefined" }
func (undefined) toJSON() map[string]interface{} { return map[string]interface{}{"type": "undefined"} }

// ============================================================
// Add: sum of terms
// ============================================================

type Add struct{ terms []Expr }

func AddOf(terms ...Expr) Expr { return (&Add{terms: terms}).Simplify() }

func (a *Add) Simplify() Expr {
	flat := make([]Expr, 0, len(a.terms))
	for _, t := range a.terms {
		s := t.Simplify()
		if inner, ok := s.(*Add); ok {
			flat = append(flat, inner.terms...)
		} else {
			flat = append(flat, s)
		}
	}
	numAccum := N(0)
	coeffs := map[string]*Num{}
	bases := map[string]Expr{}
	order := []string{}
	for _, t := range flat {
		if IsUndefined(t) {
			return Undefined()
		}
		if v, ok := t.(*Num); ok {
			numAccum = numAdd(numAccum, v)
			continue
		}
		c, rest := extractCoefficient(t)
		key := rest.String()
		if _, seen := coeffs[key]; !seen {
			order = append(order, key)
			bases[key] = rest
			coeffs[key] = N(0)
		}
		coeffs[key] = numAdd(coeffs[key], c)
	}
	result := []Expr{}
	for _, key := range order {
		c := coeffs[key]
		switch {
		case c.IsZero():
			continue
		case c.IsOne() && !c.approx:
			result = append(result, bases[key])
		default:
			result = append(result, MulOf(c, bases[key]))
		}
	}
	sortTerms(result)
	if !numAccum.IsZero() {
		result = append(result, numAccum)
	}
	if len(result) == 0 {
		return numAccum
	}
	if len(result) == 1 {
		return result[0]
	}
	return &Add{terms: result}
}

// sortTerms orders terms by descending total degree, then by text.
func sortTerms(terms []Expr) {
	type keyed struct {
		e   Expr
		deg float64
		key string
	}
	ks := make([]keyed, len(terms))
	for i, t := range terms {
		_, rest := extractCoefficient(t)
		ks[i] = keyed{e: t, deg: termDegree(rest), key: rest.String()}
	}
	sort.SliceStable(ks, func(i, j int) bool {
		if ks[i].deg != ks[j].deg {
			return ks[i].deg > ks[j].deg
		}
		return ks[i].key < ks[j].key
	})
	for i := range ks {
		terms[i] = ks[i].e
	}
}

func termDegree(e Expr) float64 {
	switch v := e.(type) {
	case *Sym:
		return 1
	case *Pow:
		if _, ok := v.base.(*Sym); ok {
			if n, ok := v.exp.(*Num); ok {
				return n.Float64()
			}
		}
	case *Mul:
		total := 0.0
		for _, f := range v.factors {
			total += termDegree(f)
		}
		return total
	}
	return 0
}

func (a *Add) String() string {
	if len(a.terms) == 0 {
		return "0"
	}
	var sb strings.Builder
	for i, t := range a.terms {
		switch {
		case i == 0:
			sb.WriteString(t.String())
		case isNegativeTerm(t):
			sb.WriteString(" - ")
			sb.WriteString(MulOf(N(-1), t).String())
		default:
			sb.WriteString(" + ")
			sb.WriteString(t.String())
		}
	}
	return sb.String()
}

func (a *Add) LaTeX() string {
	var sb strings.Builder
	for i, t := range a.terms {
		switch {
		case i == 0:
			sb.WriteString(t.LaTeX())
		case isNegativeTerm(t):
			sb.WriteString(" - ")
			sb.WriteString(MulOf(N(-1), t).LaTeX())
		default:
			sb.WriteString(" + ")
			sb.WriteString(t.LaTeX())
		}
	}
	return sb.String()
}

func isNegativeTerm(e Expr) bool {
	switch v := e.(type) {
	case *Num:
		return v.IsNegative()
	case *Mul:
		if c, ok := v.factors[0].(*Num); ok {
			return c.IsNegative()
		}
	}
	return false
}

func (a *Add) Sub(varName string, value Expr) Expr {
	newTerms := make([]Expr, len(a.terms))
	for i, t := range a.terms {
		newTerms[i] = t.Sub(varName, value)
	}
	return AddOf(newTerms...)
}

func (a *Add) Diff(varName string) Expr {
	dTerms := make([]Expr, len(a.terms))
	for i, t := range a.terms {
		dTerms[i] = t.Diff(varName)
	}
	return AddOf(dTerms...)
}

func (a *Add) Eval() (*Num, bool) {
	acc := N(0)
	for _, t := range a.terms {
		v, ok := t.Eval()
		if !ok {
			return nil, false
		}
		acc = numAdd(acc, v)
	}
	return acc, true
}

func (a *Add) Equal(other Expr) bool {
	o, ok := other.(*Add)
	if !ok || len(a.terms) != len(o.terms) {
		return false
	}
	for i := range a.terms {
		if !a.terms[i].Equal(o.terms[i]) {
			return false
		}
	}
	return true
}

func (a *Add) exprType() string { return "add" }
func (a *Add) toJSON() map[string]interface{} {
	ts := make([]map[string]interface{}, len(a.terms))
	for i, t := range a.terms {
		ts[i] = t.toJSON()
	}
	return map[string]interface{}{"type": "add", "terms": ts}
}
func (a *Add) Terms() []Expr { return a.terms }

// ============================================================
// Mul: product of factors
// ============================================================

type Mul struct{ factors []Expr }

func MulOf(factors ...Expr) Expr { return (&Mul{factors: factors}).Simplify() }

func (m *Mul) Simplify() Expr {
	flat := make([]Expr, 0, len(m.factors))
	for _, f := range m.factors {
		s := f.Simplify()
		if inner, ok := s.(*Mul); ok {
			flat = append(flat, inner.factors...)
		} else {
			flat = append(flat, s)
		}
	}
	coeff := N(1)
	exps := map[string]Expr{}
	bases := map[string]Expr{}
	order := []string{}
	for _, f := range flat {
		if IsUndefined(f) {
			return Undefined()
		}
		if v, ok := f.(*Num); ok {
			coeff = numMul(coeff, v)
			continue
		}
		base, exp := Expr(f), Expr(N(1))
		if p, ok := f.(*Pow); ok {
			base, exp = p.base, p.exp
		}
		key := base.String()
		if prev, seen := exps[key]; seen {
			exps[key] = AddOf(prev, exp)
			continue
		}
		order = append(order, key)
		bases[key] = base
		exps[key] = exp
	}
	if coeff.IsZero() {
		return coeff
	}
	others := []Expr{}
	for _, key := range order {
		f := PowOf(bases[key], exps[key])
		if v, ok := f.(*Num); ok {
			coeff = numMul(coeff, v)
			continue
		}
		if inner, ok := f.(*Mul); ok {
			for _, g := range inner.factors {
				if v, ok := g.(*Num); ok {
					coeff = numMul(coeff, v)
				} else {
					others = append(others, g)
				}
			}
			continue
		}
		others = append(others, f)
	}
	if len(others) == 0 {
		return coeff
	}

	// Precompute sort keys to avoid repeated String() calls in comparator.
	type keyed struct {
		e   Expr
		key string
	}
	ks := make([]keyed, len(others))
	for i, e := range others {
		ks[i] = keyed{e: e, key: e.String()}
	}
	sort.Slice(ks, func(i, j int) bool { return ks[i].key < ks[j].key })
	sortedOthers := make([]Expr, len(ks))
	for i := range ks {
		sortedOthers[i] = ks[i].e
	}
	others = sortedOthers

	if coeff.IsOne() && !coeff.approx {
		if len(others) == 1 {
			return others[0]
		}
		return &Mul{factors: others}
	}
	return &Mul{factors: append([]Expr{coeff}, others...)}
}

// String prints a product with its negative powers gathered under one
// denominator: 3*x**2, -1/x**2, x/2, (x + 1)/(x - 1).
func (m *Mul) String() string {
	sign, num, den := m.split()
	numStr := joinFactors(num, false)
	if numStr == "" {
		numStr = "1"
	}
	if len(den) == 0 {
		return sign + numStr
	}
	denStr := joinFactors(den, true)
	if len(den) > 1 {
		denStr = "(" + denStr + ")"
	}
	return sign + numStr + "/" + denStr
}

func (m *Mul) LaTeX() string {
	sign, num, den := m.split()
	numParts := make([]string, 0, len(num))
	for _, f := range num {
		numParts = append(numParts, latexFactor(f))
	}
	numStr := strings.Join(numParts, " ")
	if numStr == "" {
		numStr = "1"
	}
	if len(den) == 0 {
		return sign + numStr
	}
	denParts := make([]string, 0, len(den))
	for _, f := range den {
		denParts = append(denParts, latexFactor(f))
	}
	return sign + "\\frac{" + numStr + "}{" + strings.Join(denParts, " ") + "}"
}

// split separates a product into a sign, numerator factors and denominator
// factors, with an exact rational coefficient spread over both.
func (m *Mul) split() (sign string, num, den []Expr) {
	factors := m.factors
	if c, ok := factors[0].(*Num); ok {
		factors = factors[1:]
		if c.IsNegative() {
			sign = "-"
			c = numNeg(c)
		}
		switch {
		case c.approx:
			num = append(num, c)
		case c.IsInteger():
			if !c.IsOne() {
				num = append(num, c)
			}
		default:
			if p := c.val.Num(); p.Cmp(big.NewInt(1)) != 0 {
				num = append(num, &Num{val: new(big.Rat).SetInt(p)})
			}
			den = append(den, &Num{val: new(big.Rat).SetInt(c.val.Denom())})
		}
	}
	for _, f := range factors {
		if p, ok := f.(*Pow); ok {
			if en, ok := p.exp.(*Num); ok && en.IsNegative() {
				den = append(den, PowOf(p.base, numNeg(en)))
				continue
			}
		}
		num = append(num, f)
	}
	return sign, num, den
}

func joinFactors(fs []Expr, inDenominator bool) string {
	parts := make([]string, 0, len(fs))
	for _, f := range fs {
		s := f.String()
		switch v := f.(type) {
		case *Add:
			s = "(" + s + ")"
		case *Mul:
			s = "(" + s + ")"
		case *Num:
			if v.IsNegative() {
				s = "(" + s + ")"
			}
		case *Pow:
			if inDenominator && len(fs) == 1 {
				break
			}
			if strings.HasPrefix(s, "1/") {
				s = "(" + s + ")"
			}
		}
		parts = append(parts, s)
	}
	return strings.Join(parts, "*")
}

func latexFactor(f Expr) string {
	switch f.(type) {
	case *Add:
		return "\\left(" + f.LaTeX() + "\\right)"
	}
	return f.LaTeX()
}

func (m *Mul) Sub(varName string, value Expr) Expr {
	newFactors := make([]Expr, len(m.factors))
	for i, f := range m.factors {
		newFactors[i] = f.Sub(varName, value)
	}
	return MulOf(newFactors...)
}

func (m *Mul) Diff(varName string) Expr {
	terms := make([]Expr, len(m.factors))
	for i, fi := range m.factors {
		dfi := fi.Diff(varName)
		others := make([]Expr, 0, len(m.factors)-1)
		for j, fj := range m.factors {
			if j != i {
				others = append(others, fj)
			}
		}
		if len(others) == 0 {
			terms[i] = dfi
		} else {
			terms[i] = MulOf(append([]Expr{dfi}, others...)...)
		}
	}
	return AddOf(terms...)
}

func (m *Mul) Eval() (*Num, bool) {
	acc := N(1)
	for _, f := range m.factors {
		v, ok := f.Eval()
		if !ok {
			return nil, false
		}
		acc = numMul(acc, v)
	}
	return acc, true
}

func (m *Mul) Equal(other Expr) bool {
	o, ok := other.(*Mul)
	if !ok || len(m.factors) != len(o.factors) {
		return false
	}
	for i := range m.factors {
		if !m.factors[i].Equal(o.factors[i]) {
			return false
		}
	}
	return true
}

func (m *Mul) exprType() string { return "mul" }
func (m *Mul) toJSON() map[string]interface{} {
	fs := make([]map[string]interface{}, len(m.factors))
	for i, f := range m.factors {
		fs[i] = f.toJSON()
	}
	return map[string]interface{}{"type": "mul", "factors": fs}
}
func (m *Mul) Factors() []Expr { return m.factors }

// ============================================================
// Pow: base**exponent
// ============================================================

type Pow struct{ base, exp Expr }

func PowOf(base, exp Expr) Expr { return (&Pow{base: base, exp: exp}).Simplify() }

func (p *Pow) Simplify() Expr {
	base := p.base.Simplify()
	exp := p.exp.Simplify()
	if IsUndefined(base) || IsUndefined(exp) {
		return Undefined()
	}

	en, expIsNum := exp.(*Num)
	if expIsNum && en.IsZero() {
		return N(1)
	}
	if expIsNum && en.IsOne() && !en.approx {
		return base
	}
	if c, ok := base.(*Const); ok && c.name == "E" {
		return ExpOf(exp)
	}

	bn, baseIsNum := base.(*Num)
	if baseIsNum && bn.IsZero() {
		// 0**0 is indeterminate and 0**negative is a pole.
		if expIsNum && !en.IsPositive() {
			return &Pow{base: base, exp: exp}
		}
		return N(0)
	}
	if baseIsNum && bn.IsOne() && !bn.approx {
		return N(1)
	}
	if baseIsNum && expIsNum {
		if en.IsInteger() && !en.approx {
			if e := en.val.Num().Int64(); e >= -20 && e <= 20 {
				return numPowInt(bn, e)
			}
		}
		if bn.approx || en.approx {
			if v := math.Pow(bn.Float64(), en.Float64()); !math.IsNaN(v) && !math.IsInf(v, 0) {
				return NFloat(v)
			}
		}
	}
	// (a**b)**c only folds for integer c; sqrt(x**2) must stay |x|-shaped.
	if inner, ok := base.(*Pow); ok && expIsNum && en.IsInteger() {
		return PowOf(inner.base, MulOf(inner.exp, exp))
	}
	return &Pow{base: base, exp: exp}
}

func (p *Pow) String() string {
	if en, ok := p.exp.(*Num); ok && !en.approx {
		switch {
		case en.Equal(F(1, 2)):
			return "sqrt(" + p.base.String() + ")"
		case en.Equal(F(-1, 2)):
			return "1/sqrt(" + p.base.String() + ")"
		case en.IsNegative():
			d := PowOf(p.base, numNeg(en))
			switch d.(type) {
			case *Add, *Mul:
				return "1/(" + d.String() + ")"
			}
			return "1/" + d.String()
		}
	}
	return powOperand(p.base) + "**" + powOperand(p.exp)
}

// powOperand parenthesizes anything that is not an atom.
func powOperand(e Expr) string {
	s := e.String()
	switch v := e.(type) {
	case *Add, *Mul, *Pow:
		return "(" + s + ")"
	case *Num:
		if v.IsNegative() || (!v.approx && !v.IsInteger()) {
			return "(" + s + ")"
		}
	}
	return s
}

func (p *Pow) LaTeX() string {
	if en, ok := p.exp.(*Num); ok && !en.approx {
		switch {
		case en.Equal(F(1, 2)):
			return "\\sqrt{" + p.base.LaTeX() + "}"
		case en.IsNegative():
			return "\\frac{1}{" + PowOf(p.base, numNeg(en)).LaTeX() + "}"
		}
	}
	baseStr := p.base.LaTeX()
	switch p.base.(type) {
	case *Add, *Mul, *Pow:
		baseStr = "\\left(" + baseStr + "\\right)"
	}
	return baseStr + "^{" + p.exp.LaTeX() + "}"
}

func (p *Pow) Sub(varName string, value Expr) Expr {
	return PowOf(p.base.Sub(varName, value), p.exp.Sub(varName, value))
}

func (p *Pow) Diff(varName string) Expr {
	du := p.base.Diff(varName)
	dv := p.exp.Diff(varName)
	_, expIsNum := p.exp.(*Num)
	if expIsNum {
		newExp := AddOf(p.exp, N(-1))
		return MulOf(p.exp, PowOf(p.base, newExp), du)
	}
	switch p.base.(type) {
	case *Num, *Const:
		return MulOf(PowOf(p.base, p.exp), LnOf(p.base), dv)
	}
	logTerm := MulOf(dv, LnOf(p.base))
	divTerm := MulOf(p.exp, du, PowOf(p.base, N(-1)))
	return MulOf(PowOf(p.base, p.exp), AddOf(logTerm, divTerm))
}

func (p *Pow) Eval() (*Num, bool) {
	b, ok1 := p.base.Eval()
	e, ok2 := p.exp.Eval()
	if !ok1 || !ok2 {
		return nil, false
	}
	if e.IsInteger() && !e.approx {
		if k := e.val.Num().Int64(); k >= -20 && k <= 20 && !(b.IsZero() && k < 0) {
			return numPowInt(b, k), true
		}
	}
	pf := math.Pow(b.Float64(), e.Float64())
	if math.IsNaN(pf) || math.IsInf(pf, 0) {
		return nil, false
	}
	return NFloat(pf), true
}

func (p *Pow) Equal(other Expr) bool {
	o, ok := other.(*Pow)
	return ok && p.base.Equal(o.base) && p.exp.Equal(o.exp)
}

func (p *Pow) exprType() string { return "pow" }
func (p *Pow) toJSON() map[string]interface{} {
	return map[string]interface{}{"type": "pow", "base": p.base.toJSON(), "exp": p.exp.toJSON()}
}
func (p *Pow) Base() Expr    { return p.base }
func (p *Pow) ExpExpr() Expr { return p.exp }

// ============================================================
// Func: named function applications
// ============================================================

type Func struct {
	name string
	arg  Expr
}

func funcOf(name string, arg Expr) *Func { return &Func{name: name, arg: arg} }

func SinOf(arg Expr) Expr   { return funcOf("sin", arg).Simplify() }
func CosOf(arg Expr) Expr   { return funcOf("cos", arg).Simplify() }
func TanOf(arg Expr) Expr   { return funcOf("tan", arg).Simplify() }
func ExpOf(arg Expr) Expr   { return funcOf("exp", arg).Simplify() }
func LnOf(arg Expr) Expr    { return funcOf("ln", arg).Simplify() }
func SqrtOf(arg Expr) Expr  { return PowOf(arg, F(1, 2)) }
func AbsOf(arg Expr) Expr   { return funcOf("abs", arg).Simplify() }
func AsinOf(arg Expr) Expr  { return funcOf("asin", arg).Simplify() }
func AcosOf(arg Expr) Expr  { return funcOf("acos", arg).Simplify() }
func AtanOf(arg Expr) Expr  { return funcOf("atan", arg).Simplify() }
func SinhOf(arg Expr) Expr  { return funcOf("sinh", arg).Simplify() }
func CoshOf(arg Expr) Expr  { return funcOf("cosh", arg).Simplify() }
func TanhOf(arg Expr) Expr  { return funcOf("tanh", arg).Simplify() }
func FloorOf(arg Expr) Expr { return funcOf("floor", arg).Simplify() }
func CeilOf(arg Expr) Expr  { return funcOf("ceil", arg).Simplify() }
func SignOf(arg Expr) Expr  { return funcOf("sign", arg).Simplify() }

// knownFuncs maps every function name the kernel understands to its
// constructor.
var knownFuncs = map[string]func(Expr) Expr{
	"sin": SinOf, "cos": CosOf, "tan": TanOf,
	"exp": ExpOf, "ln": LnOf, "abs": AbsOf,
	"asin": AsinOf, "acos": AcosOf, "atan": AtanOf,
	"sinh": SinhOf, "cosh": CoshOf, "tanh": TanhOf,
	"floor": FloorOf, "ceil": CeilOf, "sign": SignOf,
}

func (f *Func) Simplify() Expr {
	arg := f.arg.Simplify()
	if IsUndefined(arg) {
		return Undefined()
	}
	if n, ok := arg.(*Num); ok {
		if n.approx {
			if v := applyFloat(f.name, n.Float64()); !math.IsNaN(v) && !math.IsInf(v, 0) {
				return NFloat(v)
			}
			return &Func{name: f.name, arg: arg}
		}
		if v, ok := exactFuncValue(f.name, n); ok {
			return v
		}
	}
	switch f.name {
	case "ln":
		if inner, ok := arg.(*Func); ok && inner.name == "exp" {
			return inner.arg
		}
		if c, ok := arg.(*Const); ok && c.name == "E" {
			return N(1)
		}
	case "exp":
		if inner, ok := arg.(*Func); ok && inner.name == "ln" {
			return inner.arg
		}
	case "abs", "cos", "cosh":
		// Even functions drop a leading -1.
		if m, ok := arg.(*Mul); ok && len(m.factors) >= 2 {
			if coeff, ok2 := m.factors[0].(*Num); ok2 && coeff.IsNegOne() {
				inner := m.factors[1:]
				if len(inner) == 1 {
					return funcOf(f.name, inner[0]).Simplify()
				}
				return funcOf(f.name, &Mul{factors: inner}).Simplify()
			}
		}
	}
	return &Func{name: f.name, arg: arg}
}

// exactFuncValue folds the identities that keep an exact argument exact.
func exactFuncValue(name string, n *Num) (Expr, bool) {
	switch name {
	case "sin", "tan", "asin", "atan", "sinh", "tanh":
		if n.IsZero() {
			return N(0), true
		}
	case "cos", "cosh", "exp":
		if n.IsZero() {
			return N(1), true
		}
	case "ln":
		if n.IsOne() {
			return N(0), true
		}
	case "acos":
		if n.IsOne() {
			return N(0), true
		}
	case "abs":
		return numAbs(n), true
	case "sign":
		return N(int64(n.val.Sign())), true
	case "floor", "ceil":
		q := new(big.Int).Div(n.val.Num(), n.val.Denom()) // Euclidean: floor for positive denominators
		if name == "ceil" && !n.val.IsInt() {
			q.Add(q, big.NewInt(1))
		}
		return &Num{val: new(big.Rat).SetInt(q)}, true
	}
	return nil, false
}

func (f *Func) String() string { return f.name + "(" + f.arg.String() + ")" }

func (f *Func) LaTeX() string {
	switch f.name {
	case "sin", "cos", "tan", "exp", "ln", "sinh", "cosh", "tanh":
		return "\\" + f.name + "\\left(" + f.arg.LaTeX() + "\\right)"
	case "asin":
		return "\\arcsin\\left(" + f.arg.LaTeX() + "\\right)"
	case "acos":
		return "\\arccos\\left(" + f.arg.LaTeX() + "\\right)"
	case "atan":
		return "\\arctan\\left(" + f.arg.LaTeX() + "\\right)"
	case "abs":
		return "\\left|" + f.arg.LaTeX() + "\\right|"
	case "floor":
		return "\\lfloor " + f.arg.LaTeX() + " \\rfloor"
	case "ceil":
		return "\\lceil " + f.arg.LaTeX() + " \\rceil"
	case "sign":
		return "\\operatorname{sign}\\left(" + f.arg.LaTeX() + "\\right)"
	}
	return "\\operatorname{" + f.name + "}\\left(" + f.arg.LaTeX() + "\\right)"
}

func (f *Func) Sub(varName string, value Expr) Expr {
	return funcOf(f.name, f.arg.Sub(varName, value)).Simplify()
}

func (f *Func) Diff(varName string) Expr {
	du := f.arg.Diff(varName)
	var outer Expr
	switch f.name {
	case "sin":
		outer = CosOf(f.arg)
	case "cos":
		outer = MulOf(N(-1), SinOf(f.arg))
	case "tan":
		outer = AddOf(N(1), PowOf(TanOf(f.arg), N(2)))
	case "exp":
		outer = ExpOf(f.arg)
	case "ln":
		outer = PowOf(f.arg, N(-1))
	case "asin":
		outer = PowOf(AddOf(N(1), MulOf(N(-1), PowOf(f.arg, N(2)))), F(-1, 2))
	case "acos":
		outer = MulOf(N(-1), PowOf(AddOf(N(1), MulOf(N(-1), PowOf(f.arg, N(2)))), F(-1, 2)))
	case "atan":
		outer = PowOf(AddOf(N(1), PowOf(f.arg, N(2))), N(-1))
	case "sinh":
		outer = CoshOf(f.arg)
	case "cosh":
		outer = SinhOf(f.arg)
	case "tanh":
		outer = AddOf(N(1), MulOf(N(-1), PowOf(TanhOf(f.arg), N(2))))
	case "abs":
		outer = SignOf(f.arg)
	case "sign", "floor", "ceil":
		// Piecewise constant; the jumps are not differentiable points.
		return N(0)
	default:
		return MulOf(funcOf(unevaluatedPrefix+f.name+"]", f.arg), du)
	}
	return MulOf(outer, du).Simplify()
}

func (f *Func) Eval() (*Num, bool) {
	n, ok := f.arg.Eval()
	if !ok {
		return nil, false
	}
	if !n.approx {
		if v, ok := exactFuncValue(f.name, n); ok {
			return v.(*Num), true
		}
	}
	v := applyFloat(f.name, n.Float64())
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return nil, false
	}
	return NFloat(v), true
}

func (f *Func) Equal(other Expr) bool {
	o, ok := other.(*Func)
	return ok && f.name == o.name && f.arg.Equal(o.arg)
}

func (f *Func) exprType() string { return "func" }
func (f *Func) toJSON() map[string]interface{} {
	return map[string]interface{}{"type": "func", "name": f.name, "arg": f.arg.toJSON()}
}
func (f *Func) FuncName() string { return f.name }
func (f *Func) Arg() Expr        { return f.arg }

func isNumEqual(e Expr, v int64) bool {
	n, ok := e.(*Num)
	return ok && n.Equal(N(v))
}

func extractCoefficient(e Expr) (*Num, Expr) {
	if m, ok := e.(*Mul); ok && len(m.factors) >= 2 {
		if coeff, ok2 := m.factors[0].(*Num); ok2 {
			rest := m.factors[1:]
			if len(rest) == 1 {
				return coeff, rest[0]
			}
			return coeff, &Mul{factors: rest}
		}
	}
	return N(1), e
}
