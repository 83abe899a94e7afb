package cas_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/njchilds90/funcstudy/cas"
)

func asymptotes(t *testing.T, in string) []cas.Asymptote {
	t.Helper()
	got, err := cas.Asymptotes(cas.MustParse(in, "x"), "x", cas.DefaultRootOptions())
	require.NoError(t, err)
	return got
}

func TestAsymptotes_Hyperbola(t *testing.T) {
	assert.Equal(t, []cas.Asymptote{
		{Kind: cas.Vertical, Side: "x → 0", Line: "x = 0"},
		{Kind: cas.Horizontal, Side: "x → ±∞", Line: "y = 0"},
	}, asymptotes(t, "1/x"))
}

func TestAsymptotes_Oblique(t *testing.T) {
	assert.Equal(t, []cas.Asymptote{
		{Kind: cas.Vertical, Side: "x → 0", Line: "x = 0"},
		{Kind: cas.Oblique, Side: "x → ±∞", Line: "y = x"},
	}, asymptotes(t, "(x**2 + 1)/x"))
}

func TestAsymptotes_OneSided(t *testing.T) {
	assert.Equal(t, []cas.Asymptote{
		{Kind: cas.Horizontal, Side: "x → -∞", Line: "y = 0"},
	}, asymptotes(t, "exp(x)"))
}

func TestAsymptotes_None(t *testing.T) {
	assert.Empty(t, asymptotes(t, "x**2"))
	assert.Empty(t, asymptotes(t, "7"))
}
