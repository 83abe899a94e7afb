package cas_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/njchilds90/funcstudy/cas"
)

func TestLimit_AtInfinity(t *testing.T) {
	cases := []struct {
		in       string
		neg, pos string
	}{
		{"1/x", "0", "0"},
		{"x**3 - 3*x", "-∞", "+∞"},
		{"(2*x**2 + 1)/(x**2 - 3)", "2", "2"},
		{"x**2", "+∞", "+∞"},
	}
	for _, tc := range cases {
		t.Run(tc.in, func(t *testing.T) {
			e := cas.MustParse(tc.in, "x")
			neg := cas.Limit(e, "x", cas.NegInf())
			pos := cas.Limit(e, "x", cas.PosInf())
			require.True(t, neg.Success, neg.Error)
			require.True(t, pos.Success, pos.Error)
			assert.Equal(t, tc.neg, neg.Value.String())
			assert.Equal(t, tc.pos, pos.Value.String())
		})
	}
}

func TestLimit_Transcendental(t *testing.T) {
	res := cas.Limit(cas.MustParse("exp(x)", "x"), "x", cas.NegInf())
	require.True(t, res.Success)
	assert.Equal(t, "0", res.Value.String())

	res = cas.Limit(cas.MustParse("atan(x)", "x"), "x", cas.PosInf())
	require.True(t, res.Success)
	assert.Equal(t, "pi/2", res.Value.String())

	res = cas.Limit(cas.MustParse("x*exp(-x)", "x"), "x", cas.PosInf())
	require.True(t, res.Success)
	assert.Equal(t, "0", res.Value.String())
}

func TestLimit_OscillationFails(t *testing.T) {
	res := cas.Limit(cas.MustParse("sin(x)", "x"), "x", cas.PosInf())
	assert.False(t, res.Success)
	assert.True(t, cas.IsUndefined(res.Value))
	assert.NotEmpty(t, res.Error)
}

func TestLimit_RemovableSingularities(t *testing.T) {
	res := cas.Limit(cas.MustParse("sin(x)/x", "x"), "x", cas.N(0))
	require.True(t, res.Success, res.Error)
	assert.Equal(t, "1", res.Value.String())

	res = cas.Limit(cas.MustParse("(x**2 - 1)/(x - 1)", "x"), "x", cas.N(1))
	require.True(t, res.Success, res.Error)
	assert.Equal(t, "2", res.Value.String())
}

func TestLimitDir_Pole(t *testing.T) {
	e := cas.MustParse("1/x", "x")
	below := cas.LimitDir(e, "x", cas.N(0), cas.FromBelow)
	above := cas.LimitDir(e, "x", cas.N(0), cas.FromAbove)
	require.True(t, below.Success)
	require.True(t, above.Success)
	assert.Equal(t, "-∞", below.Value.String())
	assert.Equal(t, "+∞", above.Value.String())

	both := cas.Limit(e, "x", cas.N(0))
	assert.False(t, both.Success)
}

func TestLimit_ContinuousPoint(t *testing.T) {
	res := cas.Limit(cas.MustParse("x**2 + 1", "x"), "x", cas.N(2))
	require.True(t, res.Success)
	assert.Equal(t, "5", res.Value.String())
}

func TestLimitDir_LogAtZero(t *testing.T) {
	for _, in := range []string{"ln(x)", "ln(x**2)", "ln(x)/x"} {
		t.Run(in, func(t *testing.T) {
			res := cas.LimitDir(cas.MustParse(in, "x"), "x", cas.N(0), cas.FromAbove)
			require.True(t, res.Success, res.Error)
			assert.Equal(t, "-∞", res.Value.String())
		})
	}

	res := cas.LimitDir(cas.MustParse("ln(x - 1)", "x"), "x", cas.N(1), cas.FromAbove)
	require.True(t, res.Success, res.Error)
	assert.Equal(t, "-∞", res.Value.String())
}

func TestLimitDir_TanPole(t *testing.T) {
	e := cas.MustParse("tan(x)", "x")
	halfPi := cas.MulOf(cas.F(1, 2), cas.Pi())

	below := cas.LimitDir(e, "x", halfPi, cas.FromBelow)
	require.True(t, below.Success, below.Error)
	assert.Equal(t, "+∞", below.Value.String())

	above := cas.LimitDir(e, "x", halfPi, cas.FromAbove)
	require.True(t, above.Success, above.Error)
	assert.Equal(t, "-∞", above.Value.String())

	assert.False(t, cas.Limit(e, "x", halfPi).Success)
}

func TestLimitDir_DomainEdge(t *testing.T) {
	res := cas.LimitDir(cas.MustParse("sqrt(x)", "x"), "x", cas.N(0), cas.FromAbove)
	require.True(t, res.Success, res.Error)
	v, ok := cas.Float(res.Value)
	require.True(t, ok)
	assert.Zero(t, v)
}
