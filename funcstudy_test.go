package funcstudy_test

import (
	"errors"
	"math"
	"sort"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/njchilds90/funcstudy"
	"github.com/njchilds90/funcstudy/cas"
)

func mustParse(t *testing.T, text string) funcstudy.Function {
	t.Helper()
	fn, err := funcstudy.Parse(text)
	require.NoError(t, err)
	return fn
}

func study(t *testing.T, text string) *funcstudy.Report {
	t.Helper()
	r, err := funcstudy.Analyze(mustParse(t, text), funcstudy.DefaultZoom, funcstudy.DefaultOptions())
	require.NoError(t, err)
	return r
}

// ============================================================
// Analyze
// ============================================================

func TestAnalyze_Cubic(t *testing.T) {
	r := study(t, "x**3 - 3*x")

	assert.Equal(t, "3*x**2 - 3", r.Derivative.String())
	assert.Equal(t, "6*x", r.SecondDerivative.String())
	assert.Equal(t, []float64{-1, 1}, r.CriticalPoints)
	assert.Equal(t, "[-1.0, 1.0]", funcstudy.FormatPoints(r.CriticalPoints))

	assert.Equal(t, "x < -1 or x > 1", r.Increasing.Relational("x"))
	assert.Equal(t, "-1 < x < 1", r.Decreasing.Relational("x"))
	assert.Equal(t, "(0, +∞)", r.Convex.String())
	assert.Equal(t, "(-∞, 0)", r.Concave.String())

	assert.Equal(t, "-∞", r.LimitNegInf.String())
	assert.Equal(t, "+∞", r.LimitPosInf.String())

	domain, ok := r.Domain.Get()
	require.True(t, ok)
	assert.Equal(t, "(-∞, +∞)", domain.String())
	assert.False(t, r.Asymptotes.OK())

	assert.Equal(t, []funcstudy.VariationRow{
		{Start: math.Inf(-1), End: -1, StartValue: "-∞", EndValue: "2", Direction: funcstudy.Up},
		{Start: -1, End: 1, StartValue: "2", EndValue: "-2", Direction: funcstudy.Down},
		{Start: 1, End: math.Inf(1), StartValue: "-2", EndValue: "+∞", Direction: funcstudy.Up},
	}, r.Variation)

	require.NotNil(t, r.Grid)
	assert.Len(t, r.Grid.X, funcstudy.SamplePoints)
}

func TestAnalyze_Hyperbola(t *testing.T) {
	r := study(t, "1/x")

	assert.Equal(t, "0", r.LimitNegInf.String())
	assert.Equal(t, "0", r.LimitPosInf.String())
	assert.Empty(t, r.CriticalPoints)
	if domain, ok := r.Domain.Get(); ok {
		assert.Equal(t, "(-∞, 0) ∪ (0, +∞)", domain.String())
	}
	as, ok := r.Asymptotes.Get()
	require.True(t, ok)
	assert.Len(t, as, 2)

	require.Len(t, r.Variation, 1)
	assert.Equal(t, funcstudy.Down, r.Variation[0].Direction)
}

func TestAnalyze_RepeatedRootsGiveExactCriticalPoints(t *testing.T) {
	r := study(t, "(x+1)**10*(x-1)**10")

	assert.Equal(t, []float64{-1, 0, 1}, r.CriticalPoints)
	require.Len(t, r.Variation, 4)
	dirs := make([]funcstudy.Direction, len(r.Variation))
	for i, row := range r.Variation {
		dirs[i] = row.Direction
	}
	assert.Equal(t, []funcstudy.Direction{funcstudy.Down, funcstudy.Up, funcstudy.Down, funcstudy.Up}, dirs)
}

func TestAnalyze_LogRange(t *testing.T) {
	r := study(t, "ln(x)")

	domain, ok := r.Domain.Get()
	require.True(t, ok)
	assert.True(t, domain.Equal(cas.Reals()), domain.String())
}

func TestAnalyze_PiecewiseConstantRangeDegrades(t *testing.T) {
	r := study(t, "floor(x)")
	assert.False(t, r.Domain.OK())
	assert.True(t, r.Domain.Or(cas.Reals()).Equal(cas.Reals()))
	assert.Equal(t, []float64(nil), r.CriticalPoints)
}

func TestAnalyze_SecondDerivativeIsDiffOfFirst(t *testing.T) {
	for _, text := range []string{"x**3 - 3*x", "sin(x)*x", "exp(-x**2)", "x/(x**2 + 1)", "ln(x**2 + 1)"} {
		r := study(t, text)
		assert.True(t, cas.Diff(r.Derivative, "x").Equal(r.SecondDerivative), text)
	}
}

func TestAnalyze_CriticalPointsSortedAndReal(t *testing.T) {
	for _, text := range []string{"sin(x)", "x**4 - 5*x**2 + 4", "x**3 + x", "x*exp(-x)", "cos(x)/(x**2 + 1)"} {
		r := study(t, text)
		assert.True(t, sort.Float64sAreSorted(r.CriticalPoints), text)
		for _, c := range r.CriticalPoints {
			assert.False(t, math.IsNaN(c) || math.IsInf(c, 0), text)
		}
	}
}

func TestAnalyze_InfiniteEndsUseMarkers(t *testing.T) {
	for _, text := range []string{"x**2", "exp(x)", "sin(x)", "1/x", "x**3 - 3*x"} {
		rows := study(t, text).Variation
		require.NotEmpty(t, rows, text)
		assert.Equal(t, funcstudy.NegInfMarker, rows[0].StartValue, text)
		assert.Equal(t, funcstudy.PosInfMarker, rows[len(rows)-1].EndValue, text)
		for _, row := range rows[1:] {
			assert.NotEqual(t, funcstudy.NegInfMarker, row.StartValue, text)
		}
	}
}

func TestAnalyze_RejectsZoom(t *testing.T) {
	_, err := funcstudy.Analyze(mustParse(t, "x"), 0, funcstudy.DefaultOptions())
	assert.ErrorIs(t, err, funcstudy.ErrZoomRange)
}

// ============================================================
// Variation
// ============================================================

func TestRepresentative(t *testing.T) {
	inf := math.Inf(1)
	cases := []struct {
		name   string
		lo, hi float64
		want   float64
	}{
		{"bounded", -1, 1, 0},
		{"whole line", -inf, inf, -10},
		{"left open inside window", -inf, -1, -10},
		{"left open outside window", -inf, -30, -31},
		{"right open inside window", 1, inf, 5.5},
		{"right open outside window", 30, inf, 31},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := funcstudy.Representative(tc.lo, tc.hi, 10)
			assert.Equal(t, tc.want, got)
			assert.True(t, got > tc.lo && got < tc.hi)
		})
	}
}

func TestVariation_UnknownDirection(t *testing.T) {
	fn := mustParse(t, "sqrt(x)")
	rows := funcstudy.Variation(fn, cas.Diff(fn.Expr, "x"), nil, 10)
	require.Len(t, rows, 1)
	assert.Equal(t, funcstudy.Unknown, rows[0].Direction)
}

// ============================================================
// Sample
// ============================================================

func TestSample_GridShape(t *testing.T) {
	fn := mustParse(t, "x**2")
	for zoom := funcstudy.MinZoom; zoom <= funcstudy.MaxZoom; zoom++ {
		g, err := funcstudy.Sample(fn, zoom)
		require.NoError(t, err)
		require.Len(t, g.X, funcstudy.SamplePoints)
		require.Len(t, g.Y, funcstudy.SamplePoints)
		assert.InDelta(t, -float64(zoom), g.X[0], 1e-12)
		assert.InDelta(t, float64(zoom), g.X[len(g.X)-1], 1e-12)
	}
}

func TestSample_ToleratesSingularities(t *testing.T) {
	g, err := funcstudy.Sample(mustParse(t, "1/x + ln(x)"), 10)
	require.NoError(t, err)
	assert.Less(t, g.Defined(), funcstudy.SamplePoints)
	assert.Greater(t, g.Defined(), 0)
}

func TestSample_ZoomOutOfRange(t *testing.T) {
	_, err := funcstudy.Sample(mustParse(t, "x"), 51)
	assert.ErrorIs(t, err, funcstudy.ErrZoomRange)
}

// ============================================================
// Run
// ============================================================

type spyAnalyzer struct {
	calls  int
	report *funcstudy.Report
	err    error
	panics bool
}

func (s *spyAnalyzer) Analyze(fn funcstudy.Function, zoom int) (*funcstudy.Report, error) {
	s.calls++
	if s.panics {
		panic("boom")
	}
	if s.report == nil && s.err == nil {
		return funcstudy.Pipeline{Options: funcstudy.DefaultOptions()}.Analyze(fn, zoom)
	}
	return s.report, s.err
}

func TestRun_SimplePlotSkipsStudy(t *testing.T) {
	spy := &spyAnalyzer{}
	res := funcstudy.Run(funcstudy.Request{Expr: "x**3 - 3*x", Plot: true}, spy)
	require.NoError(t, res.Err)
	assert.Equal(t, 0, spy.calls)
	assert.Nil(t, res.Study)
	require.NotNil(t, res.Plot)
	assert.Equal(t, funcstudy.DefaultZoom, res.Plot.Zoom)
}

func TestRun_BothActions(t *testing.T) {
	spy := &spyAnalyzer{}
	res := funcstudy.Run(funcstudy.Request{Expr: "x**2", Study: true, Plot: true, Zoom: 3}, spy)
	require.NoError(t, res.Err)
	assert.Equal(t, 1, spy.calls)
	require.NotNil(t, res.Study)
	require.NotNil(t, res.Plot)
	assert.Equal(t, 3, res.Study.Zoom)
}

func TestRun_MalformedInput(t *testing.T) {
	spy := &spyAnalyzer{}
	res := funcstudy.Run(funcstudy.Request{Expr: "x+++", Study: true, Plot: true}, spy)
	require.Error(t, res.Err)
	var pe *cas.ParseError
	assert.True(t, errors.As(res.Err, &pe))
	assert.Equal(t, 0, spy.calls)
	assert.Nil(t, res.Study)
	assert.Nil(t, res.Plot)
	assert.Nil(t, res.Function)
	assert.Contains(t, res.ErrorMessage(), "Error: ")
}

func TestRun_AnalyzerErrorReplacesOutput(t *testing.T) {
	spy := &spyAnalyzer{err: cas.ErrNoDerivative}
	res := funcstudy.Run(funcstudy.Request{Expr: "x", Study: true, Plot: true}, spy)
	assert.ErrorIs(t, res.Err, cas.ErrNoDerivative)
	assert.Nil(t, res.Plot)
}

func TestRun_RecoversPanics(t *testing.T) {
	res := funcstudy.Run(funcstudy.Request{Expr: "x", Study: true}, &spyAnalyzer{panics: true})
	require.Error(t, res.Err)
	assert.Contains(t, res.Err.Error(), "boom")
	assert.Nil(t, res.Study)
}

func TestRun_EmptyInput(t *testing.T) {
	res := funcstudy.Run(funcstudy.Request{Expr: "   ", Study: true}, nil)
	assert.True(t, res.Empty())
	assert.Empty(t, res.ErrorMessage())
}

func TestRun_ZoomOutOfRange(t *testing.T) {
	res := funcstudy.Run(funcstudy.Request{Expr: "x", Plot: true, Zoom: 80}, nil)
	assert.ErrorIs(t, res.Err, funcstudy.ErrZoomRange)
}
