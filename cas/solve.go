package cas

import (
	"fmt"
	"math"
	"sort"

	"gonum.org/v1/gonum/diff/fd"
	"gonum.org/v1/gonum/floats"
)

// ============================================================
// Closed-form polynomial solvers
// ============================================================

type SolveResult struct {
	Solutions []Expr
	ExactForm bool
	Error     string
}

func SolveLinear(a, b Expr) SolveResult {
	an, aok := a.Eval()
	bn, bok := b.Eval()
	if aok && bok {
		if an.IsZero() {
			if bn.IsZero() {
				return SolveResult{Error: "identity (0 = 0): infinite solutions"}
			}
			return SolveResult{Error: "no solution (inconsistent)"}
		}
		return SolveResult{Solutions: []Expr{numMul(numNeg(bn), numRecip(an))}, ExactForm: !an.approx && !bn.approx}
	}
	return SolveResult{Solutions: []Expr{MulOf(N(-1), b, PowOf(a, N(-1)))}, ExactForm: false}
}

func SolveQuadraticExact(a, b, c Expr) SolveResult {
	an, aok := a.Eval()
	bn, bok := b.Eval()
	cn, cok := c.Eval()
	if !aok || !bok || !cok {
		disc := AddOf(PowOf(b, N(2)), MulOf(N(-4), a, c))
		denom := MulOf(N(2), a)
		x1 := MulOf(AddOf(MulOf(N(-1), b), SqrtOf(disc)), PowOf(denom, N(-1)))
		x2 := MulOf(AddOf(MulOf(N(-1), b), MulOf(N(-1), SqrtOf(disc))), PowOf(denom, N(-1)))
		return SolveResult{Solutions: []Expr{x1, x2}, ExactForm: true}
	}
	if an.IsZero() {
		return SolveLinear(b, c)
	}
	discN := numSub(numMul(bn, bn), numMul(N(4), numMul(an, cn)))
	if discN.IsNegative() {
		af, bf := an.Float64(), bn.Float64()
		return SolveResult{Error: fmt.Sprintf("complex roots: %g ± %gi", -bf/(2*af), math.Sqrt(-discN.Float64())/(2*af))}
	}
	twoA := numMul(N(2), an)
	if sq, ok := ratSqrt(discN); ok {
		x1 := numDiv(numSub(numNeg(bn), sq), twoA)
		x2 := numDiv(numAdd(numNeg(bn), sq), twoA)
		return SolveResult{Solutions: []Expr{x1, x2}, ExactForm: !discN.approx}
	}
	sq := math.Sqrt(discN.Float64())
	af, bf := an.Float64(), bn.Float64()
	return SolveResult{Solutions: []Expr{NFloat((-bf - sq) / (2 * af)), NFloat((-bf + sq) / (2 * af))}, ExactForm: false}
}

// ratSqrt returns the exact square root of a non-negative rational when
// numerator and denominator are both perfect squares.
func ratSqrt(n *Num) (*Num, bool) {
	num, den := n.val.Num(), n.val.Denom()
	if !num.IsInt64() || !den.IsInt64() {
		return nil, false
	}
	sn := int64(math.Round(math.Sqrt(float64(num.Int64()))))
	sd := int64(math.Round(math.Sqrt(float64(den.Int64()))))
	if sn*sn != num.Int64() || sd*sd != den.Int64() {
		return nil, false
	}
	return &Num{val: F(sn, sd).val, approx: n.approx}, true
}

// SolveCubic returns the real roots of a*x**3 + b*x**2 + c*x + d, by the
// trigonometric method when all three are real and Cardano otherwise.
func SolveCubic(a, b, c, d Expr) SolveResult {
	an, aok := a.Eval()
	bn, bok := b.Eval()
	cn, cok := c.Eval()
	dn, dok := d.Eval()
	if !aok || !bok || !cok || !dok {
		return SolveResult{Error: "SolveCubic requires numeric coefficients"}
	}
	if an.IsZero() {
		return SolveQuadraticExact(b, c, d)
	}
	af, bf, cf, df := an.Float64(), bn.Float64(), cn.Float64(), dn.Float64()
	p := (3*af*cf - bf*bf) / (3 * af * af)
	q := (2*bf*bf*bf - 9*af*bf*cf + 27*af*af*df) / (27 * af * af * af)
	offset := bf / (3 * af)
	disc := -(4*p*p*p + 27*q*q)

	var roots []Expr
	switch {
	case p == 0 && q == 0:
		roots = []Expr{NFloat(-offset)}
	case disc > 0:
		m := 2 * math.Sqrt(-p/3)
		arg := math.Max(-1, math.Min(1, 3*q/(p*m)))
		theta := math.Acos(arg) / 3
		for k := 0; k < 3; k++ {
			roots = append(roots, NFloat(m*math.Cos(theta-2*math.Pi*float64(k)/3)-offset))
		}
	case disc == 0:
		roots = []Expr{NFloat(3*q/p - offset), NFloat(-3*q/(2*p) - offset)}
	default:
		sq := math.Sqrt(q*q/4 + p*p*p/27)
		A := math.Cbrt(-q/2 + sq)
		B := math.Cbrt(-q/2 - sq)
		return SolveResult{Solutions: []Expr{NFloat(A + B - offset)}}
	}
	return SolveResult{Solutions: roots, ExactForm: false}
}

// ============================================================
// Real roots
// ============================================================

// RootOptions bounds the numeric root search.
type RootOptions struct {
	// Radius is the half-width of the window [-Radius, Radius] scanned for
	// roots that have no closed form.
	Radius float64
	// Samples is the number of scan intervals across the window.
	Samples int
}

func DefaultRootOptions() RootOptions { return RootOptions{Radius: 100, Samples: 20000} }

func (o RootOptions) withDefaults() RootOptions {
	def := DefaultRootOptions()
	if o.Radius <= 0 {
		o.Radius = def.Radius
	}
	if o.Samples < 16 {
		o.Samples = def.Samples
	}
	return o
}

// RealRoots returns the sorted real solutions of expr = 0. Polynomials of
// degree up to 3 are solved in closed form; products are split into their
// factors; everything else is scanned numerically inside the window. Every
// candidate is checked against expr itself, so points where expr is
// undefined are never reported.
func RealRoots(expr Expr, varName string, opts RootOptions) []float64 {
	opts = opts.withDefaults()
	expr = expr.Simplify()
	if !HasVar(expr, varName) {
		return nil
	}
	var out []float64
	for _, r := range rootCandidates(expr, varName, opts) {
		if residualOK(expr, varName, r) {
			out = append(out, r)
		}
	}
	return uniqueSorted(out)
}

func rootCandidates(e Expr, v string, opts RootOptions) []float64 {
	if !HasVar(e, v) {
		return nil
	}
	if coeffs, ok := PolyCoeffs(e, v); ok {
		return polyRoots(coeffs, opts)
	}
	switch t := e.(type) {
	case *Mul:
		var out []float64
		for _, f := range t.factors {
			if p, ok := f.(*Pow); ok {
				if en, ok := p.exp.(*Num); ok && en.IsNegative() {
					continue
				}
			}
			out = append(out, rootCandidates(f, v, opts)...)
		}
		return out
	case *Pow:
		if en, ok := t.exp.(*Num); ok {
			if en.IsPositive() {
				return rootCandidates(t.base, v, opts)
			}
			return nil
		}
		if !HasVar(t.exp, v) {
			return nil
		}
	case *Func:
		switch t.name {
		case "exp", "cosh":
			return nil
		case "ln":
			return rootCandidates(AddOf(t.arg, N(-1)), v, opts)
		case "acos":
			return rootCandidates(AddOf(t.arg, N(-1)), v, opts)
		case "abs", "sign", "sinh", "tanh", "atan", "asin":
			return rootCandidates(t.arg, v, opts)
		}
	}
	return scanRoots(Lambdify(e, v), -opts.Radius, opts.Radius, opts.Samples)
}

// polyRoots solves a polynomial given by ascending coefficients.
func polyRoots(coeffs []*Num, opts RootOptions) []float64 {
	var roots []float64
	k := 0
	for k < len(coeffs)-1 && coeffs[k].IsZero() {
		k++
	}
	if k > 0 {
		roots = append(roots, 0)
		coeffs = coeffs[k:]
	}
	var res SolveResult
	switch len(coeffs) - 1 {
	case 0:
		return roots
	case 1:
		res = SolveLinear(coeffs[1], coeffs[0])
	case 2:
		res = SolveQuadraticExact(coeffs[2], coeffs[1], coeffs[0])
	case 3:
		res = SolveCubic(coeffs[3], coeffs[2], coeffs[1], coeffs[0])
	default:
		if sf, ok := SquareFree(coeffs); ok {
			return append(roots, polyRoots(sf, opts)...)
		}
		cf := polyFloats(coeffs)
		lead := cf[len(cf)-1]
		bound := 0.0
		for _, c := range cf[:len(cf)-1] {
			bound = math.Max(bound, math.Abs(c/lead))
		}
		bound = math.Min(bound+1, opts.Radius)
		return append(roots, scanRoots(func(x float64) float64 { return polyEval(cf, x) }, -bound, bound, opts.Samples)...)
	}
	cf := polyFloats(coeffs)
	f := func(x float64) float64 { return polyEval(cf, x) }
	for _, s := range res.Solutions {
		r, ok := Float(s)
		if !ok {
			continue
		}
		if n, isNum := s.(*Num); !isNum || n.approx {
			r = polish(f, r)
		}
		roots = append(roots, r)
	}
	return roots
}

// scanRoots samples f over [lo, hi], bisects every sign change and looks for
// touching roots at local minima of |f|. Sign changes across a pole are
// discarded because f blows up at the bisection limit.
func scanRoots(f func(float64) float64, lo, hi float64, n int) []float64 {
	xs := floats.Span(make([]float64, n+1), lo, hi)
	ys := make([]float64, len(xs))
	for i, x := range xs {
		ys[i] = f(x)
	}
	var out []float64
	for i := range xs {
		if ys[i] == 0 {
			out = append(out, xs[i])
			continue
		}
		if i+1 < len(xs) && finite(ys[i]) && finite(ys[i+1]) && ys[i+1] != 0 && (ys[i] < 0) != (ys[i+1] < 0) {
			r := bisect(f, xs[i], xs[i+1], ys[i])
			if v := f(r); finite(v) && math.Abs(v) <= 1e-6*(1+math.Abs(ys[i])+math.Abs(ys[i+1])) {
				out = append(out, r)
			}
			continue
		}
		if i == 0 || i+1 >= len(xs) {
			continue
		}
		a, b, c := ys[i-1], ys[i], ys[i+1]
		if !finite(a) || !finite(c) || (a < 0) != (b < 0) || (b < 0) != (c < 0) {
			continue
		}
		if math.Abs(b) < math.Abs(a) && math.Abs(b) <= math.Abs(c) {
			if r, ok := touchRoot(f, xs[i-1], xs[i+1], xs[i]); ok {
				out = append(out, r)
			}
		}
	}
	return out
}

func bisect(f func(float64) float64, a, b, fa float64) float64 {
	for i := 0; i < 200; i++ {
		m := a + (b-a)/2
		if m == a || m == b {
			return m
		}
		fm := f(m)
		if fm == 0 {
			return m
		}
		if (fm < 0) == (fa < 0) {
			a, fa = m, fm
		} else {
			b = m
		}
	}
	return a + (b-a)/2
}

// touchRoot runs Newton on f' to find the extremum of f inside (lo, hi) and
// accepts it when f vanishes there.
func touchRoot(f func(float64) float64, lo, hi, x0 float64) (float64, bool) {
	d1 := &fd.Settings{Formula: fd.Central}
	d2 := &fd.Settings{Formula: fd.Central2nd}
	x := x0
	for i := 0; i < 60; i++ {
		g := fd.Derivative(f, x, d1)
		h := fd.Derivative(f, x, d2)
		if !finite(g) || !finite(h) || h == 0 {
			break
		}
		step := g / h
		x -= step
		if x < lo || x > hi || !finite(x) {
			return 0, false
		}
		if math.Abs(step) <= 1e-14*(1+math.Abs(x)) {
			break
		}
	}
	if v := f(x); finite(v) && math.Abs(v) <= 1e-9 {
		return x, true
	}
	return 0, false
}

// polish refines a root with Newton steps, keeping the original when the
// iteration wanders off.
func polish(f func(float64) float64, x0 float64) float64 {
	settings := &fd.Settings{Formula: fd.Central}
	x := x0
	for i := 0; i < 20; i++ {
		fx := f(x)
		if fx == 0 {
			break
		}
		d := fd.Derivative(f, x, settings)
		if !finite(d) || d == 0 {
			break
		}
		step := fx / d
		x -= step
		if math.Abs(step) <= 1e-15*(1+math.Abs(x)) {
			break
		}
	}
	if !finite(x) || math.Abs(x-x0) > 1e-6*(1+math.Abs(x0)) || math.Abs(f(x)) > math.Abs(f(x0)) {
		return x0
	}
	return x
}

// residualOK accepts r as a root of e when e(r) is finite and negligible
// next to the size of the terms that cancel there.
func residualOK(e Expr, v string, r float64) bool {
	val := evalFloat(e, v, r)
	if !finite(val) {
		return false
	}
	scale := 1.0
	if a, ok := e.(*Add); ok {
		for _, t := range a.terms {
			if tv := math.Abs(evalFloat(t, v, r)); finite(tv) {
				scale += tv
			}
		}
	}
	return math.Abs(val) <= 1e-7*scale
}

// uniqueSorted sorts xs, merges near-duplicates and snaps values within
// rounding distance of an integer.
func uniqueSorted(xs []float64) []float64 {
	if len(xs) == 0 {
		return nil
	}
	sort.Float64s(xs)
	out := make([]float64, 0, len(xs))
	for _, x := range xs {
		if r := math.Round(x); math.Abs(x-r) <= 1e-9*(1+math.Abs(x)) {
			x = r
		}
		if n := len(out); n > 0 && math.Abs(out[n-1]-x) <= 1e-7*(1+math.Abs(x)) {
			continue
		}
		out = append(out, x)
	}
	return out
}

// ============================================================
// Break points
// ============================================================

// BreakPoints returns the points where expr stops being a continuous real
// function: poles, edges of the real domain, and jumps of sign. Points are
// sorted and limited to the search window for non-algebraic pieces.
func BreakPoints(expr Expr, varName string, opts RootOptions) []float64 {
	opts = opts.withDefaults()
	return uniqueSorted(breakCandidates(expr.Simplify(), varName, opts))
}

func breakCandidates(e Expr, v string, opts RootOptions) []float64 {
	if !HasVar(e, v) {
		return nil
	}
	var out []float64
	switch t := e.(type) {
	case *Add:
		for _, term := range t.terms {
			out = append(out, breakCandidates(term, v, opts)...)
		}
	case *Mul:
		for _, f := range t.factors {
			out = append(out, breakCandidates(f, v, opts)...)
		}
	case *Pow:
		out = append(out, breakCandidates(t.base, v, opts)...)
		out = append(out, breakCandidates(t.exp, v, opts)...)
		en, ok := t.exp.(*Num)
		if !ok || en.IsNegative() || !en.IsInteger() {
			out = append(out, RealRoots(t.base, v, opts)...)
		}
	case *Func:
		out = append(out, breakCandidates(t.arg, v, opts)...)
		switch t.name {
		case "ln", "sign":
			out = append(out, RealRoots(t.arg, v, opts)...)
		case "tan":
			out = append(out, RealRoots(CosOf(t.arg), v, opts)...)
		case "asin", "acos":
			out = append(out, RealRoots(AddOf(t.arg, N(-1)), v, opts)...)
			out = append(out, RealRoots(AddOf(t.arg, N(1)), v, opts)...)
		case "floor", "ceil":
			out = append(out, integerCrossings(t.arg, v, opts)...)
		}
	}
	return out
}

// integerCrossings finds where arg passes through an integer inside the
// window, which is where floor and ceil jump.
func integerCrossings(arg Expr, v string, opts RootOptions) []float64 {
	f := Lambdify(arg, v)
	lo, hi := f(-opts.Radius), f(opts.Radius)
	if !finite(lo) || !finite(hi) {
		return nil
	}
	if lo > hi {
		lo, hi = hi, lo
	}
	if hi-lo > 1000 {
		return nil
	}
	var out []float64
	for k := math.Ceil(lo); k <= hi; k++ {
		out = append(out, RealRoots(AddOf(arg, NFloat(-k)), v, opts)...)
	}
	return out
}
