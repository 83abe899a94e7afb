package cas_test

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/njchilds90/funcstudy/cas"
)

func TestParse_Accepts(t *testing.T) {
	cases := []struct {
		in, want string
	}{
		{"x**3 - 3*x", "x**3 - 3*x"},
		{"x^2", "x**2"},
		{"x²", "x**2"},
		{"2·x", "2*x"},
		{"−x", "-x"},
		{"1/x", "1/x"},
		{"-x**2", "-x**2"},
		{"2**-1", "1/2"},
		{"log(x)", "ln(x)"},
		{"arctan(x)", "atan(x)"},
		{"sqrt(x)", "sqrt(x)"},
		{"e**x", "exp(x)"},
		{"0.5*x", "0.5*x"},
		{"+x", "x"},
		{" ( x + 1 ) * 2 ", "2*(x + 1)"},
		{"π", "pi"},
	}
	for _, tc := range cases {
		t.Run(tc.in, func(t *testing.T) {
			e, err := cas.Parse(tc.in, "x")
			require.NoError(t, err)
			assert.Equal(t, tc.want, e.String())
		})
	}
}

func TestParse_Rejects(t *testing.T) {
	for _, in := range []string{"", "   ", "x+++", "2x", "y + 1", "sin x", "(x + 1", "x)", "x * * 2", "foo(x)", "x $ 2"} {
		t.Run(in, func(t *testing.T) {
			e, err := cas.Parse(in, "x")
			require.Error(t, err)
			assert.Nil(t, e)
			var pe *cas.ParseError
			assert.True(t, errors.As(err, &pe), "want *ParseError, got %T", err)
		})
	}
}

func TestParse_UnknownIdentifierPosition(t *testing.T) {
	_, err := cas.Parse("x + y", "x")
	var pe *cas.ParseError
	require.ErrorAs(t, err, &pe)
	assert.Equal(t, 5, pe.Pos)
	assert.Contains(t, pe.Error(), `"y"`)
}

func TestParse_FreeSymbolsSubsetOfVariable(t *testing.T) {
	for _, in := range []string{"x**3 - 3*x", "sin(x)/x", "exp(-x**2)", "pi*E", "7", "abs(x - 1) + floor(x)"} {
		e, err := cas.Parse(in, "x")
		require.NoError(t, err, in)
		for s := range cas.FreeSymbols(e) {
			assert.Equal(t, "x", s, in)
		}
	}
}
