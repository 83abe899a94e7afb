package cas

import (
	"math"
)

// ============================================================
// Limits
// ============================================================

// Direction selects a one-sided limit at a finite point.
type Direction int

const (
	BothSides Direction = iota
	FromBelow
	FromAbove
)

// LimitResult holds the result of a limit computation. A failed limit has
// Value Undefined, never nil.
type LimitResult struct {
	Value   Expr
	Success bool
	Error   string
}

func limitFailure(msg string) LimitResult {
	return LimitResult{Value: Undefined(), Error: msg}
}

// Limit computes lim_{varName -> point} expr. point may be PosInf() or
// NegInf(). At infinity it tries, in order, the rational fast path,
// structural evaluation and a numeric probe; at a finite point it tries
// continuity, L'Hôpital and one-sided numeric probes.
func Limit(expr Expr, varName string, point Expr) LimitResult {
	return LimitDir(expr, varName, point, BothSides)
}

// LimitDir is Limit with an explicit approach direction. The direction is
// ignored at infinity.
func LimitDir(expr Expr, varName string, point Expr, dir Direction) LimitResult {
	expr = expr.Simplify()
	switch p := point.(type) {
	case *Inf:
		return limitAtInfinity(expr, varName, p.neg)
	case undefined:
		return limitFailure("limit point is undefined")
	}
	if _, ok := Float(point); !ok {
		return limitFailure("limit point must be a real number: " + point.String())
	}
	return limitAtPoint(expr, varName, point, dir, 5)
}

func limitAtPoint(expr Expr, varName string, point Expr, dir Direction, maxLhopital int) LimitResult {
	pf, _ := Float(point)
	if v := evalFloat(expr, varName, pf); finite(v) && continuousAt(expr, varName, pf, v, dir) {
		subbed := Sub(expr, varName, point)
		if _, ok := Float(subbed); ok {
			return LimitResult{Value: subbed, Success: true}
		}
		return LimitResult{Value: FromFloat(v), Success: true}
	}
	if maxLhopital > 0 {
		if num, denom, ok := extractQuotient(expr); ok {
			nv := evalFloat(num, varName, pf)
			dv := evalFloat(denom, varName, pf)
			bothZero := nv == 0 && dv == 0
			bothInf := math.IsInf(nv, 0) && math.IsInf(dv, 0)
			if bothZero || bothInf {
				dNum := Diff(num, varName)
				dDen := Diff(denom, varName)
				if res := limitAtPoint(MulOf(dNum, PowOf(dDen, N(-1))), varName, point, dir, maxLhopital-1); res.Success {
					return res
				}
			}
		}
	}
	if res, ok := structuralLimit(expr, varName, point, pf, dir); ok {
		return res
	}
	f := Lambdify(expr, varName)
	below := func(k int) float64 { return pf - math.Pow(10, -float64(k+1)) }
	above := func(k int) float64 { return pf + math.Pow(10, -float64(k+1)) }
	switch dir {
	case FromBelow:
		return probeResult(numericLimit(f, below, 8))
	case FromAbove:
		return probeResult(numericLimit(f, above, 8))
	}
	l, r := numericLimit(f, below, 8), numericLimit(f, above, 8)
	if IsUndefined(l) || IsUndefined(r) {
		return limitFailure("limit could not be determined: " + expr.String() + " as " + varName + " -> " + point.String())
	}
	if !l.Equal(r) {
		return limitFailure("one-sided limits differ: " + l.String() + " and " + r.String())
	}
	return LimitResult{Value: l, Success: true}
}

// continuousAt checks that samples next to pf on the approach side agree
// with the value there. A point evaluated near a pole gives a huge finite
// value that its neighbours do not share. Samples outside the domain are
// ignored.
func continuousAt(expr Expr, varName string, pf, val float64, dir Direction) bool {
	h := 1e-8 * (1 + math.Abs(pf))
	steps := []float64{-h, h}
	switch dir {
	case FromBelow:
		steps = steps[:1]
	case FromAbove:
		steps = steps[1:]
	}
	for _, d := range steps {
		s := evalFloat(expr, varName, pf+d)
		if math.IsNaN(s) {
			continue
		}
		if math.IsInf(s, 0) || math.Abs(s-val) > 1e-3*(1+math.Abs(val)) {
			return false
		}
	}
	return true
}

// structuralLimit propagates one-sided limits through the tree. Both sides
// must agree for BothSides.
func structuralLimit(expr Expr, varName string, point Expr, pf float64, dir Direction) (LimitResult, bool) {
	side := func(sign float64) extValue {
		l := limiter{v: varName, point: point, near: pf + sign*1e-9*(1+math.Abs(pf))}
		return l.eval(expr)
	}
	var x extValue
	switch dir {
	case FromBelow:
		x = side(-1)
	case FromAbove:
		x = side(1)
	default:
		lo, hi := side(-1), side(1)
		if lo.kind != hi.kind || (lo.kind == extFinite && !lo.val.Equal(hi.val)) {
			return LimitResult{}, false
		}
		x = lo
	}
	switch x.kind {
	case extFinite:
		return LimitResult{Value: x.val, Success: true}, true
	case extPosInf:
		return LimitResult{Value: PosInf(), Success: true}, true
	case extNegInf:
		return LimitResult{Value: NegInf(), Success: true}, true
	}
	return LimitResult{}, false
}

func probeResult(v Expr) LimitResult {
	if IsUndefined(v) {
		return limitFailure("limit could not be determined numerically")
	}
	return LimitResult{Value: v, Success: true}
}

func extractQuotient(e Expr) (num, denom Expr, ok bool) {
	num, denom = Ratio(e)
	if isNumEqual(denom, 1) {
		return nil, nil, false
	}
	return num, denom, true
}

func limitAtInfinity(expr Expr, varName string, neg bool) LimitResult {
	if !HasVar(expr, varName) {
		return LimitResult{Value: expr, Success: true}
	}
	if v, ok := rationalLimit(expr, varName, neg); ok {
		return LimitResult{Value: v, Success: true}
	}
	switch x := extLimit(expr, varName, neg); x.kind {
	case extFinite:
		return LimitResult{Value: x.val, Success: true}
	case extPosInf:
		return LimitResult{Value: PosInf(), Success: true}
	case extNegInf:
		return LimitResult{Value: NegInf(), Success: true}
	case extBounded:
		return limitFailure("expression oscillates without a limit")
	}
	sign := 1.0
	if neg {
		sign = -1
	}
	v := numericLimit(Lambdify(expr, varName), func(k int) float64 { return sign * math.Pow(10, float64(k+1)) }, 9)
	return probeResult(v)
}

// rationalLimit compares leading terms when expr is a ratio of polynomials.
func rationalLimit(expr Expr, varName string, neg bool) (Expr, bool) {
	num, den, ok := RationalCoeffs(expr, varName)
	if !ok {
		return nil, false
	}
	dn, dd := len(num)-1, len(den)-1
	ln, ld := num[dn], den[dd]
	if ln.IsZero() {
		return N(0), true
	}
	switch {
	case dn < dd:
		return N(0), true
	case dn == dd:
		return numDiv(ln, ld), true
	}
	positive := numDiv(ln, ld).IsPositive()
	if neg && (dn-dd)%2 == 1 {
		positive = !positive
	}
	if positive {
		return PosInf(), true
	}
	return NegInf(), true
}

// ============================================================
// Structural limits
// ============================================================

type extKind int

const (
	extFinite extKind = iota
	extPosInf
	extNegInf
	extBounded // oscillates inside a bounded range
	extUnknown
)

// extValue is an extended limit. side is the sign a finite zero is
// approached from at a finite point, 0 when unknown.
type extValue struct {
	kind extKind
	val  Expr
	f    float64
	side int
}

var (
	extPos   = extValue{kind: extPosInf}
	extNeg   = extValue{kind: extNegInf}
	extBound = extValue{kind: extBounded}
	extNone  = extValue{kind: extUnknown}
)

func extOf(e Expr) extValue {
	f, ok := Float(e)
	if !ok {
		return extNone
	}
	return extValue{kind: extFinite, val: e, f: f}
}

func (x extValue) infinite() bool { return x.kind == extPosInf || x.kind == extNegInf }

// limiter evaluates limits by propagating extended values through the
// tree, either at ±∞ or at a finite point approached from the side of near.
// Indeterminate forms come back as extUnknown.
type limiter struct {
	v     string
	atInf bool
	neg   bool
	point Expr
	near  float64
}

// extLimit evaluates the limit of e at ±∞.
func extLimit(e Expr, v string, neg bool) extValue {
	return limiter{v: v, atInf: true, neg: neg}.eval(e)
}

func (l limiter) eval(e Expr) extValue {
	if !HasVar(e, l.v) {
		return extOf(e)
	}
	var x extValue
	switch t := e.(type) {
	case *Sym:
		switch {
		case l.atInf && l.neg:
			return extNeg
		case l.atInf:
			return extPos
		}
		x = extOf(l.point)
	case *Add:
		x = l.add(t)
	case *Mul:
		x = l.mul(t)
	case *Pow:
		x = l.pow(t)
	case *Func:
		x = l.fn(t)
	default:
		return extNone
	}
	if !l.atInf && x.kind == extFinite && x.f == 0 {
		x.side = signOf(evalFloat(e, l.v, l.near))
	}
	return x
}

func signOf(v float64) int {
	switch {
	case v > 0:
		return 1
	case v < 0:
		return -1
	}
	return 0
}

func (l limiter) add(a *Add) extValue {
	sum := Expr(N(0))
	pos, negInf, bounded := false, false, false
	for _, t := range a.terms {
		x := l.eval(t)
		switch x.kind {
		case extUnknown:
			return extNone
		case extPosInf:
			pos = true
		case extNegInf:
			negInf = true
		case extBounded:
			bounded = true
		case extFinite:
			sum = AddOf(sum, x.val)
		}
	}
	switch {
	case pos && negInf:
		return extNone
	case pos:
		return extPos
	case negInf:
		return extNeg
	case bounded:
		return extBound
	}
	return extOf(sum)
}

func (l limiter) mul(m *Mul) extValue {
	prod := Expr(N(1))
	sign := 1
	infinite, bounded, zero := false, false, false
	for _, f := range m.factors {
		x := l.eval(f)
		switch x.kind {
		case extUnknown:
			return extNone
		case extPosInf:
			infinite = true
		case extNegInf:
			infinite = true
			sign = -sign
		case extBounded:
			bounded = true
		case extFinite:
			if x.f == 0 {
				zero = true
			} else if x.f < 0 {
				sign = -sign
			}
			prod = MulOf(prod, x.val)
		}
	}
	switch {
	case infinite && (zero || bounded):
		return extNone
	case infinite && sign > 0:
		return extPos
	case infinite:
		return extNeg
	case bounded && zero:
		return extOf(N(0))
	case bounded:
		return extBound
	}
	return extOf(prod)
}

func (l limiter) pow(p *Pow) extValue {
	b := l.eval(p.base)
	if en, ok := p.exp.(*Num); ok {
		r := en.Float64()
		integer := en.IsInteger()
		even := integer && math.Mod(math.Abs(r), 2) == 0
		switch b.kind {
		case extFinite:
			if b.f == 0 && r < 0 {
				switch {
				case even:
					return extPos
				case b.side > 0:
					return extPos
				case b.side < 0 && integer:
					return extNeg
				}
				return extNone
			}
			return extOf(PowOf(b.val, en))
		case extPosInf:
			if r > 0 {
				return extPos
			}
			return extOf(N(0))
		case extNegInf:
			if !integer {
				return extNone
			}
			if r < 0 {
				return extOf(N(0))
			}
			if even {
				return extPos
			}
			return extNeg
		case extBounded:
			if r > 0 && integer {
				return extBound
			}
		}
		return extNone
	}
	// a**g(x) with a constant base.
	x := l.eval(p.exp)
	if b.kind != extFinite || HasVar(p.base, l.v) || b.f <= 0 {
		return extNone
	}
	switch {
	case x.kind == extFinite:
		return extOf(PowOf(b.val, x.val))
	case b.f == 1:
		return extOf(N(1))
	case x.kind == extPosInf && b.f > 1, x.kind == extNegInf && b.f < 1:
		return extPos
	case x.infinite():
		return extOf(N(0))
	case x.kind == extBounded:
		return extBound
	}
	return extNone
}

// fn handles the singularities of ln and tan at a finite argument before
// falling back to extFunc.
func (l limiter) fn(t *Func) extValue {
	a := l.eval(t.arg)
	if !l.atInf && a.kind == extFinite {
		switch t.name {
		case "ln":
			if a.f == 0 {
				if a.side > 0 {
					return extNeg
				}
				return extNone
			}
		case "tan":
			if math.Abs(math.Cos(a.f)) < 1e-9 {
				switch signOf(evalFloat(t, l.v, l.near)) {
				case 1:
					return extPos
				case -1:
					return extNeg
				}
				return extNone
			}
		}
	}
	return extFunc(t.name, a)
}

func extFunc(name string, a extValue) extValue {
	switch a.kind {
	case extUnknown:
		return extNone
	case extFinite:
		v := funcOf(name, a.val).Simplify()
		if _, ok := Float(v); !ok {
			return extNone
		}
		return extOf(v)
	case extBounded:
		switch name {
		case "sin", "cos", "atan", "tanh", "exp", "abs", "sign", "floor", "ceil":
			return extBound
		}
		return extNone
	}
	pos := a.kind == extPosInf
	switch name {
	case "exp":
		if pos {
			return extPos
		}
		return extOf(N(0))
	case "ln":
		if pos {
			return extPos
		}
	case "atan":
		if pos {
			return extOf(MulOf(F(1, 2), Pi()))
		}
		return extOf(MulOf(F(-1, 2), Pi()))
	case "tanh", "sign":
		if pos {
			return extOf(N(1))
		}
		return extOf(N(-1))
	case "sinh", "floor", "ceil":
		return a
	case "cosh", "abs":
		return extPos
	case "sin", "cos":
		return extBound
	}
	return extNone
}

// ============================================================
// Numeric probe
// ============================================================

// numericLimit samples f along a sequence approaching the limit point and
// classifies the tail: convergence to a value, divergence to ±∞, or
// Undefined when it can tell neither.
func numericLimit(f func(float64) float64, at func(k int) float64, steps int) Expr {
	vals := make([]float64, steps)
	for k := range vals {
		vals[k] = f(at(k))
	}
	tail := vals[steps-4:]
	for _, v := range tail {
		if math.IsNaN(v) {
			return Undefined()
		}
	}
	last := tail[len(tail)-1]
	if math.IsInf(last, 0) {
		if math.IsInf(last, 1) {
			return PosInf()
		}
		return NegInf()
	}
	if growing(tail, 1) {
		return PosInf()
	}
	if growing(tail, -1) {
		return NegInf()
	}
	for _, v := range tail {
		if math.IsInf(v, 0) {
			return Undefined()
		}
	}
	first := math.Abs(tail[1] - tail[0])
	step := math.Abs(last - tail[len(tail)-2])
	if step > 1e-6*(1+math.Abs(last)) || step > first {
		return Undefined()
	}
	return snap(last, math.Max(10*step, 1e-12))
}

// growing reports a monotone run of values with the given sign that has
// left any plausible finite limit behind.
func growing(tail []float64, sign float64) bool {
	for i, v := range tail {
		if v*sign <= 0 {
			return false
		}
		if i > 0 && math.Abs(v) <= math.Abs(tail[i-1]) {
			return false
		}
	}
	last, first := math.Abs(tail[len(tail)-1]), math.Abs(tail[0])
	return last >= 1e6 && last >= 10*first
}

// snap turns a float limit into an exact value when an integer or a small
// rational lies within tol of it.
func snap(v, tol float64) Expr {
	if r := math.Round(v); math.Abs(v-r) <= tol {
		return N(int64(r))
	}
	for q := int64(2); q <= 12; q++ {
		p := math.Round(v * float64(q))
		if math.Abs(v-p/float64(q)) <= tol {
			return F(int64(p), q)
		}
	}
	return NFloat(v)
}
