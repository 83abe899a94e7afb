package cas

import (
	"fmt"
	"math/big"
	"sort"
	"strings"
)

const unevaluatedPrefix = "D["

// ============================================================
// Top-level convenience functions
// ============================================================

func Simplify(e Expr) Expr { return e.Simplify() }
func String(e Expr) string { return e.String() }
func LaTeX(e Expr) string  { return e.LaTeX() }

func Sub(expr Expr, varName string, value Expr) Expr {
	return expr.Sub(varName, value).Simplify()
}

func Diff(expr Expr, varName string) Expr {
	return expr.Diff(varName).Simplify()
}

func Diff2(expr Expr, varName string) Expr {
	return Diff(Diff(expr, varName), varName)
}

// Derivative differentiates expr and fails with ErrNoDerivative when some
// function in it has no rule, instead of leaving a placeholder behind.
func Derivative(expr Expr, varName string) (Expr, error) {
	d := Diff(expr, varName)
	if name, ok := findUnevaluated(d); ok {
		return nil, fmt.Errorf("%w for %s", ErrNoDerivative, name)
	}
	return d, nil
}

func findUnevaluated(e Expr) (string, bool) {
	switch v := e.(type) {
	case *Func:
		if strings.HasPrefix(v.name, unevaluatedPrefix) {
			return strings.TrimSuffix(strings.TrimPrefix(v.name, unevaluatedPrefix), "]"), true
		}
		return findUnevaluated(v.arg)
	case *Add:
		for _, t := range v.terms {
			if name, ok := findUnevaluated(t); ok {
				return name, true
			}
		}
	case *Mul:
		for _, f := range v.factors {
			if name, ok := findUnevaluated(f); ok {
				return name, true
			}
		}
	case *Pow:
		if name, ok := findUnevaluated(v.base); ok {
			return name, true
		}
		return findUnevaluated(v.exp)
	}
	return "", false
}

func Expand(e Expr) Expr { return expandExpr(e).Simplify() }

func expandExpr(e Expr) Expr {
	switch v := e.(type) {
	case *Mul:
		expanded := make([]Expr, len(v.factors))
		for i, f := range v.factors {
			expanded[i] = expandExpr(f)
		}
		for i, f := range expanded {
			if a, ok := f.(*Add); ok {
				rest := make([]Expr, 0, len(expanded)-1)
				for j, ef := range expanded {
					if j != i {
						rest = append(rest, ef)
					}
				}
				terms := make([]Expr, len(a.terms))
				for k, t := range a.terms {
					terms[k] = expandExpr(MulOf(append([]Expr{t}, rest...)...))
				}
				return expandExpr(AddOf(terms...))
			}
		}
		return MulOf(expanded...)
	case *Add:
		newTerms := make([]Expr, len(v.terms))
		for i, t := range v.terms {
			newTerms[i] = expandExpr(t)
		}
		return AddOf(newTerms...)
	case *Pow:
		base := expandExpr(v.base)
		if _, sum := base.(*Add); !sum {
			return PowOf(base, expandExpr(v.exp))
		}
		if n, ok := v.exp.(*Num); ok && n.IsInteger() && !n.approx {
			exp := n.val.Num().Int64()
			if exp >= 0 && exp <= 10 {
				result := Expr(N(1))
				for i := int64(0); i < exp; i++ {
					result = mulExpanded(result, base)
				}
				return result
			}
		}
		return &Pow{base: base, exp: expandExpr(v.exp)}
	}
	return e
}

// mulExpanded multiplies two expanded sums term by term. Going through
// MulOf on the sums directly would fold (a+b)*(a+b) back into (a+b)**2.
// The terms are already expanded, so their products are not expanded again:
// x*x folds to x**2 and would come straight back here.
func mulExpanded(a, b Expr) Expr {
	at, bt := []Expr{a}, []Expr{b}
	if s, ok := a.(*Add); ok {
		at = s.terms
	}
	if s, ok := b.(*Add); ok {
		bt = s.terms
	}
	out := make([]Expr, 0, len(at)*len(bt))
	for _, s := range at {
		for _, t := range bt {
			out = append(out, MulOf(s, t))
		}
	}
	return AddOf(out...)
}

// ============================================================
// Free Symbols
// ============================================================

func FreeSymbols(e Expr) map[string]struct{} {
	result := map[string]struct{}{}
	collectSymbols(e, result)
	return result
}

func collectSymbols(e Expr, out map[string]struct{}) {
	switch v := e.(type) {
	case *Sym:
		out[v.name] = struct{}{}
	case *Add:
		for _, t := range v.terms {
			collectSymbols(t, out)
		}
	case *Mul:
		for _, f := range v.factors {
			collectSymbols(f, out)
		}
	case *Pow:
		collectSymbols(v.base, out)
		collectSymbols(v.exp, out)
	case *Func:
		collectSymbols(v.arg, out)
	}
}

// SortedSymbols returns the free symbols of e in lexical order.
func SortedSymbols(e Expr) []string {
	set := FreeSymbols(e)
	out := make([]string, 0, len(set))
	for s := range set {
		out = append(out, s)
	}
	sort.Strings(out)
	return out
}

// HasVar reports whether varName occurs in e.
func HasVar(e Expr, varName string) bool {
	_, ok := FreeSymbols(e)[varName]
	return ok
}

// ============================================================
// Polynomial utilities
// ============================================================

func Degree(expr Expr, varName string) int {
	expr = expr.Simplify()
	switch v := expr.(type) {
	case *Sym:
		if v.name == varName {
			return 1
		}
		return 0
	case *Pow:
		if sym, ok := v.base.(*Sym); ok && sym.name == varName {
			if n, ok2 := v.exp.(*Num); ok2 && n.IsInteger() {
				return int(n.val.Num().Int64())
			}
		}
		return 0
	case *Add:
		maxDeg := 0
		for _, t := range v.terms {
			if d := Degree(t, varName); d > maxDeg {
				maxDeg = d
			}
		}
		return maxDeg
	case *Mul:
		totalDeg := 0
		for _, f := range v.factors {
			totalDeg += Degree(f, varName)
		}
		return totalDeg
	}
	return 0
}

const maxPolyDegree = 64

// PolyCoeffs returns the numeric coefficients of expr as a polynomial in
// varName, indexed by degree. ok is false when expr is not a polynomial with
// numeric coefficients.
func PolyCoeffs(expr Expr, varName string) (coeffs []*Num, ok bool) {
	e := Expand(expr)
	terms := []Expr{e}
	if a, isAdd := e.(*Add); isAdd {
		terms = a.terms
	}
	byDeg := map[int]*Num{}
	maxDeg := 0
	for _, t := range terms {
		c, rest := extractCoefficient(t)
		deg := 0
		switch v := rest.(type) {
		case *Num:
			c = numMul(c, v)
		case *Sym:
			if v.name != varName {
				return nil, false
			}
			deg = 1
		case *Pow:
			sym, isSym := v.base.(*Sym)
			en, isNum := v.exp.(*Num)
			if !isSym || !isNum || sym.name != varName || !en.IsInteger() || en.approx || en.IsNegative() {
				return nil, false
			}
			if !en.val.Num().IsInt64() || en.val.Num().Int64() > maxPolyDegree {
				return nil, false
			}
			deg = int(en.val.Num().Int64())
		default:
			return nil, false
		}
		if prev, seen := byDeg[deg]; seen {
			c = numAdd(prev, c)
		}
		byDeg[deg] = c
		if deg > maxDeg {
			maxDeg = deg
		}
	}
	coeffs = make([]*Num, maxDeg+1)
	for i := range coeffs {
		coeffs[i] = N(0)
		if c, seen := byDeg[i]; seen {
			coeffs[i] = c
		}
	}
	for len(coeffs) > 1 && coeffs[len(coeffs)-1].IsZero() {
		coeffs = coeffs[:len(coeffs)-1]
	}
	return coeffs, true
}

// Ratio splits a product into numerator and denominator, moving every
// factor with a negative numeric exponent below the bar.
func Ratio(e Expr) (num, den Expr) {
	var factors []Expr
	switch v := e.(type) {
	case *Mul:
		factors = v.factors
	case *Pow:
		factors = []Expr{v}
	default:
		return e, N(1)
	}
	var numFactors, denFactors []Expr
	for _, f := range factors {
		if p, ok := f.(*Pow); ok {
			if en, ok := p.exp.(*Num); ok && en.IsNegative() {
				denFactors = append(denFactors, PowOf(p.base, numNeg(en)))
				continue
			}
		}
		numFactors = append(numFactors, f)
	}
	return MulOf(append([]Expr{N(1)}, numFactors...)...), MulOf(append([]Expr{N(1)}, denFactors...)...)
}

// Together rewrites a sum of fractions over a common denominator.
func Together(e Expr) (num, den Expr) {
	a, ok := e.(*Add)
	if !ok {
		return Ratio(e)
	}
	nums := make([]Expr, len(a.terms))
	dens := make([]Expr, len(a.terms))
	trivial := true
	for i, t := range a.terms {
		nums[i], dens[i] = Ratio(t)
		if !isNumEqual(dens[i], 1) {
			trivial = false
		}
	}
	if trivial {
		return e, N(1)
	}
	terms := make([]Expr, len(a.terms))
	for i := range a.terms {
		fs := []Expr{nums[i]}
		for j := range dens {
			if j != i {
				fs = append(fs, dens[j])
			}
		}
		terms[i] = MulOf(fs...)
	}
	return AddOf(terms...), MulOf(dens...)
}

// RationalCoeffs returns numerator and denominator coefficients when e is a
// ratio of polynomials in varName.
func RationalCoeffs(e Expr, varName string) (num, den []*Num, ok bool) {
	n, d := Together(e.Simplify())
	if num, ok = PolyCoeffs(n, varName); !ok {
		return nil, nil, false
	}
	if den, ok = PolyCoeffs(d, varName); !ok {
		return nil, nil, false
	}
	if len(den) == 1 && den[0].IsZero() {
		return nil, nil, false
	}
	return num, den, true
}

// SquareFree divides an exact polynomial by gcd(p, p'), leaving every real
// root with multiplicity one. ok is false when p already is square-free or
// has approximate coefficients.
func SquareFree(coeffs []*Num) (out []*Num, ok bool) {
	if len(coeffs) < 3 {
		return coeffs, false
	}
	p := make([]*big.Rat, len(coeffs))
	for i, c := range coeffs {
		if c.approx {
			return coeffs, false
		}
		p[i] = new(big.Rat).Set(c.val)
	}
	dp := make([]*big.Rat, len(p)-1)
	for i := 1; i < len(p); i++ {
		dp[i-1] = new(big.Rat).Mul(p[i], new(big.Rat).SetInt64(int64(i)))
	}
	g := ratGCD(p, dp)
	if len(g) < 2 {
		return coeffs, false
	}
	q, _ := ratDivMod(p, g)
	out = make([]*Num, len(q))
	for i, c := range q {
		out[i] = &Num{val: c}
	}
	return out, true
}

// Rational polynomials below are ascending coefficient slices; the zero
// polynomial is a single zero.

func ratTrim(p []*big.Rat) []*big.Rat {
	for len(p) > 1 && p[len(p)-1].Sign() == 0 {
		p = p[:len(p)-1]
	}
	if len(p) == 0 {
		return []*big.Rat{new(big.Rat)}
	}
	return p
}

func ratIsZero(p []*big.Rat) bool { return len(p) == 1 && p[0].Sign() == 0 }

func ratDivMod(a, b []*big.Rat) (q, r []*big.Rat) {
	b = ratTrim(b)
	r = make([]*big.Rat, len(a))
	for i, c := range a {
		r[i] = new(big.Rat).Set(c)
	}
	r = ratTrim(r)
	if len(r) < len(b) {
		return []*big.Rat{new(big.Rat)}, r
	}
	q = make([]*big.Rat, len(r)-len(b)+1)
	for i := range q {
		q[i] = new(big.Rat)
	}
	lead := b[len(b)-1]
	for !ratIsZero(r) && len(r) >= len(b) {
		shift := len(r) - len(b)
		c := new(big.Rat).Quo(r[len(r)-1], lead)
		q[shift] = c
		for i, bc := range b {
			r[shift+i] = new(big.Rat).Sub(r[shift+i], new(big.Rat).Mul(c, bc))
		}
		r = ratTrim(r[:len(r)-1])
	}
	return ratTrim(q), r
}

func ratGCD(a, b []*big.Rat) []*big.Rat {
	a, b = ratTrim(a), ratTrim(b)
	for !ratIsZero(b) {
		_, r := ratDivMod(a, b)
		a, b = b, r
	}
	return a
}

func polyFloats(coeffs []*Num) []float64 {
	out := make([]float64, len(coeffs))
	for i, c := range coeffs {
		out[i] = c.Float64()
	}
	return out
}

func polyEval(c []float64, x float64) float64 {
	acc := 0.0
	for i := len(c) - 1; i >= 0; i-- {
		acc = acc*x + c[i]
	}
	return acc
}
