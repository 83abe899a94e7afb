package cas

import (
	"fmt"
	"math"
)

// ============================================================
// Inequalities
// ============================================================

// Relation is the comparison of an inequality expr <rel> 0.
type Relation int

const (
	GT Relation = iota
	GE
	LT
	LE
)

func (r Relation) String() string {
	switch r {
	case GT:
		return ">"
	case GE:
		return ">="
	case LT:
		return "<"
	case LE:
		return "<="
	}
	return fmt.Sprintf("Relation(%d)", int(r))
}

func (r Relation) holds(v float64) bool {
	switch r {
	case GT:
		return v > 0
	case GE:
		return v >= 0
	case LT:
		return v < 0
	case LE:
		return v <= 0
	}
	return false
}

// SolveInequality returns the set of real x for which expr <rel> 0 holds
// and expr is defined. The line is cut at the roots and break points of
// expr; each piece is classified by one interior test point and each cut
// point by its own value.
func SolveInequality(expr Expr, varName string, rel Relation, opts RootOptions) (Set, error) {
	expr = expr.Simplify()
	for _, s := range SortedSymbols(expr) {
		if s != varName {
			return Set{}, fmt.Errorf("inequality in %s has free symbol %s", varName, s)
		}
	}
	if !HasVar(expr, varName) {
		if v, ok := Float(expr); ok && rel.holds(v) {
			return Reals(), nil
		}
		return EmptySet(), nil
	}
	opts = opts.withDefaults()
	points := cutPoints(expr, varName, opts)
	f := Lambdify(expr, varName)

	var ivs []Interval
	bounds := append(append([]float64{math.Inf(-1)}, points...), math.Inf(1))
	for i := 0; i+1 < len(bounds); i++ {
		lo, hi := bounds[i], bounds[i+1]
		if v := f(samplePoint(lo, hi)); finite(v) && rel.holds(v) {
			ivs = append(ivs, Interval{Lo: lo, Hi: hi, LeftOpen: true, RightOpen: true})
		}
	}
	for _, p := range points {
		if v := f(p); finite(v) && rel.holds(v) {
			ivs = append(ivs, Interval{Lo: p, Hi: p})
		}
	}
	return NewSet(ivs...), nil
}

func cutPoints(expr Expr, varName string, opts RootOptions) []float64 {
	roots := RealRoots(expr, varName, opts)
	breaks := BreakPoints(expr, varName, opts)
	return uniqueSorted(append(append([]float64{}, roots...), breaks...))
}

// samplePoint picks a point strictly inside (lo, hi).
func samplePoint(lo, hi float64) float64 {
	switch {
	case math.IsInf(lo, -1) && math.IsInf(hi, 1):
		return 0
	case math.IsInf(lo, -1):
		return hi - 1
	case math.IsInf(hi, 1):
		return lo + 1
	}
	return lo + (hi-lo)/2
}
