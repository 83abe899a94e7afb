package funcstudy

import (
	"fmt"
	"log/slog"
	"math"

	"github.com/njchilds90/funcstudy/cas"
)

// Options tunes the numeric parts of a study.
type Options struct {
	// SearchRadius bounds the scan for roots without a closed form. The
	// window is widened to twice the zoom when that is larger.
	SearchRadius float64
}

func DefaultOptions() Options { return Options{SearchRadius: 20} }

func (o Options) roots(zoom int) cas.RootOptions {
	ro := cas.DefaultRootOptions()
	ro.Radius = math.Max(o.SearchRadius, 2*float64(zoom))
	return ro
}

// Report is a complete study of one function.
type Report struct {
	Function Function
	Zoom     int

	// Domain is the set of values the function takes.
	Domain Outcome[cas.Set]

	LimitNegInf cas.Expr
	LimitPosInf cas.Expr

	Derivative       cas.Expr
	SecondDerivative cas.Expr
	CriticalPoints   []float64

	Increasing cas.Set
	Decreasing cas.Set
	Variation  []VariationRow

	Convex  cas.Set
	Concave cas.Set

	// Asymptotes is NotComputable when none were found.
	Asymptotes Outcome[[]cas.Asymptote]

	Grid *Grid
}

// Analyze runs the full study. Range and asymptotes degrade to
// NotComputable; a missing derivative rule or a failed sign analysis aborts
// with an error.
func Analyze(fn Function, zoom int, opts Options) (*Report, error) {
	if err := checkZoom(zoom); err != nil {
		return nil, err
	}
	ro := opts.roots(zoom)
	r := &Report{Function: fn, Zoom: zoom}

	d, err := cas.Derivative(fn.Expr, Variable)
	if err != nil {
		return nil, fmt.Errorf("first derivative: %w", err)
	}
	d2, err := cas.Derivative(d, Variable)
	if err != nil {
		return nil, fmt.Errorf("second derivative: %w", err)
	}
	r.Derivative, r.SecondDerivative = d, d2

	if set, err := cas.FunctionRange(fn.Expr, Variable, ro); err != nil {
		slog.Debug("range not computable", "expr", fn.Text, "error", err)
		r.Domain = NotComputable[cas.Set]()
	} else {
		r.Domain = Computed(set)
	}

	r.LimitNegInf = cas.Limit(fn.Expr, Variable, cas.NegInf()).Value
	r.LimitPosInf = cas.Limit(fn.Expr, Variable, cas.PosInf()).Value

	r.CriticalPoints = cas.RealRoots(d, Variable, ro)
	if r.Increasing, err = cas.SolveInequality(d, Variable, cas.GT, ro); err != nil {
		return nil, fmt.Errorf("sign of f': %w", err)
	}
	if r.Decreasing, err = cas.SolveInequality(d, Variable, cas.LT, ro); err != nil {
		return nil, fmt.Errorf("sign of f': %w", err)
	}
	r.Variation = Variation(fn, d, r.CriticalPoints, zoom)

	if r.Convex, err = cas.SolveInequality(d2, Variable, cas.GT, ro); err != nil {
		return nil, fmt.Errorf("sign of f'': %w", err)
	}
	if r.Concave, err = cas.SolveInequality(d2, Variable, cas.LT, ro); err != nil {
		return nil, fmt.Errorf("sign of f'': %w", err)
	}

	if as, err := cas.Asymptotes(fn.Expr, Variable, ro); err != nil || len(as) == 0 {
		if err != nil {
			slog.Debug("asymptotes not computable", "expr", fn.Text, "error", err)
		}
		r.Asymptotes = NotComputable[[]cas.Asymptote]()
	} else {
		r.Asymptotes = Computed(as)
	}

	if r.Grid, err = Sample(fn, zoom); err != nil {
		return nil, err
	}
	slog.Debug("study complete",
		"expr", fn.Text,
		"zoom", zoom,
		"critical_points", len(r.CriticalPoints),
		"rows", len(r.Variation),
	)
	return r, nil
}

// FormatPoints prints critical points the way floats print in expressions:
// [-1.0, 1.0].
func FormatPoints(ps []float64) string {
	s := "["
	for i, p := range ps {
		if i > 0 {
			s += ", "
		}
		s += cas.NFloat(p).String()
	}
	return s + "]"
}
