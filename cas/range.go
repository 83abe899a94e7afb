package cas

import (
	"math"
)

// ============================================================
// Range of a function
// ============================================================

type rangeCandidate struct {
	value    float64
	attained bool
}

// FunctionRange returns the set of values expr takes as varName runs over
// its real domain. The domain is cut at break points; on each continuous
// piece the extremes are searched among the limits at the piece ends, the
// values at defined ends, the critical points and the points where the
// derivative breaks. Piecewise-constant functions (floor, ceil, sign) give
// ErrNotComputable.
func FunctionRange(expr Expr, varName string, opts RootOptions) (Set, error) {
	expr = expr.Simplify()
	if containsFunc(expr, "floor", "ceil", "sign") {
		return Set{}, ErrNotComputable
	}
	if !HasVar(expr, varName) {
		v, ok := Float(expr)
		if !ok {
			return Set{}, ErrNotComputable
		}
		return NewSet(Interval{Lo: v, Hi: v}), nil
	}
	d, err := Derivative(expr, varName)
	if err != nil {
		return Set{}, ErrNotComputable
	}
	opts = opts.withDefaults()
	crit := RealRoots(d, varName, opts)
	kinks := BreakPoints(d, varName, opts)
	breaks := BreakPoints(expr, varName, opts)
	f := Lambdify(expr, varName)

	var pieces []Interval
	bounds := append(append([]float64{math.Inf(-1)}, breaks...), math.Inf(1))
	for i := 0; i+1 < len(bounds); i++ {
		lo, hi := bounds[i], bounds[i+1]
		t := samplePoint(lo, hi)
		ft := f(t)
		if !finite(ft) {
			continue
		}
		cands := []rangeCandidate{{value: ft, attained: true}}
		for _, end := range []struct {
			at  float64
			dir Direction
		}{{lo, FromAbove}, {hi, FromBelow}} {
			c, ok := endCandidate(expr, varName, end.at, end.dir)
			if !ok {
				return Set{}, ErrNotComputable
			}
			cands = append(cands, c...)
		}
		for _, pts := range [][]float64{crit, kinks} {
			for _, p := range pts {
				if p > lo && p < hi {
					if v := f(p); finite(v) {
						cands = append(cands, rangeCandidate{value: v, attained: true})
					}
				}
			}
		}
		pieces = append(pieces, spanOf(cands))
	}
	if len(pieces) == 0 {
		return Set{}, ErrNotComputable
	}
	return NewSet(pieces...), nil
}

// endCandidate describes the behaviour of expr at one end of a piece by its
// one-sided limit. A finite end counts as attained only when expr is
// defined there with that same value, so a pole evaluated at a rounded
// break point is never taken for a value. An end at infinity without a
// limit contributes nothing; a finite end without one makes the range
// unknown and ok is false.
func endCandidate(expr Expr, varName string, at float64, dir Direction) (cands []rangeCandidate, ok bool) {
	var point Expr
	switch {
	case math.IsInf(at, -1):
		point = NegInf()
	case math.IsInf(at, 1):
		point = PosInf()
	default:
		point = NFloat(at)
	}
	atInf := math.IsInf(at, 0)
	res := LimitDir(expr, varName, point, dir)
	if !res.Success {
		return nil, atInf
	}
	if inf, isInf := res.Value.(*Inf); isInf {
		return []rangeCandidate{{value: inf.Float64()}}, true
	}
	lv, isNum := Float(res.Value)
	if !isNum {
		return nil, atInf
	}
	c := rangeCandidate{value: lv}
	if !atInf {
		if v := evalFloat(expr, varName, at); finite(v) && math.Abs(v-lv) <= 1e-9*(1+math.Abs(lv)) {
			c.attained = true
		}
	}
	return []rangeCandidate{c}, true
}

func spanOf(cands []rangeCandidate) Interval {
	iv := Interval{Lo: math.Inf(1), Hi: math.Inf(-1), LeftOpen: true, RightOpen: true}
	for _, c := range cands {
		switch {
		case c.value < iv.Lo:
			iv.Lo, iv.LeftOpen = c.value, !c.attained
		case c.value == iv.Lo && c.attained:
			iv.LeftOpen = false
		}
		switch {
		case c.value > iv.Hi:
			iv.Hi, iv.RightOpen = c.value, !c.attained
		case c.value == iv.Hi && c.attained:
			iv.RightOpen = false
		}
	}
	return iv
}

func containsFunc(e Expr, names ...string) bool {
	switch v := e.(type) {
	case *Func:
		for _, n := range names {
			if v.name == n {
				return true
			}
		}
		return containsFunc(v.arg, names...)
	case *Add:
		for _, t := range v.terms {
			if containsFunc(t, names...) {
				return true
			}
		}
	case *Mul:
		for _, f := range v.factors {
			if containsFunc(f, names...) {
				return true
			}
		}
	case *Pow:
		return containsFunc(v.base, names...) || containsFunc(v.exp, names...)
	}
	return false
}
