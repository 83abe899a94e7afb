package render

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/njchilds90/funcstudy"
)

func TestSegments_SplitAtGaps(t *testing.T) {
	nan := math.NaN()
	g := &funcstudy.Grid{
		X:    []float64{-3, -2, -1, 0, 1, 2, 3},
		Y:    []float64{1, 2, nan, nan, 2, 1, 2},
		Zoom: 3,
	}
	segs := segments(g, window{lo: 0, hi: 3})
	require.Len(t, segs, 2)
	assert.Equal(t, []float64{-3, -2}, segs[0][0])
	assert.Equal(t, []float64{1, 2, 3}, segs[1][0])
}

func TestSegments_SplitAcrossPole(t *testing.T) {
	g := &funcstudy.Grid{
		X:    []float64{-2, -1, 1, 2},
		Y:    []float64{-1, -100, 100, 1},
		Zoom: 2,
	}
	segs := segments(g, window{lo: -10, hi: 10})
	require.Len(t, segs, 2)
	assert.Equal(t, []float64{-1, -10}, segs[0][1])
	assert.Equal(t, []float64{10, 1}, segs[1][1])
}

func TestViewOf_IgnoresPoles(t *testing.T) {
	fn, err := funcstudy.Parse("1/x")
	require.NoError(t, err)
	g, err := funcstudy.Sample(fn, 10)
	require.NoError(t, err)
	w, err := viewOf(g)
	require.NoError(t, err)
	assert.Less(t, w.hi, 50.0)
	assert.Greater(t, w.lo, -50.0)
}

func TestNiceStep(t *testing.T) {
	assert.Equal(t, 2.0, niceStep(20, 10))
	assert.Equal(t, 5.0, niceStep(40, 10))
	assert.Equal(t, 0.5, niceStep(4, 8))
}
