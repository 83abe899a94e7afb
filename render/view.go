// Package render turns studies and sample grids into PNG plots, text
// summaries, terminal plots and the exported PDF.
package render

import (
	"errors"
	"math"
	"sort"

	"github.com/njchilds90/funcstudy"
)

var ErrNothingToPlot = errors.New("function is undefined on the whole window")

// window is the visible y range of a grid. Poles would otherwise flatten
// the rest of the curve, so the range follows the bulk of the samples and
// only stretches to the extremes when they stay close to it.
type window struct {
	lo, hi float64
}

func viewOf(g *funcstudy.Grid) (window, error) {
	ys := make([]float64, 0, len(g.Y))
	for _, v := range g.Y {
		if finite(v) {
			ys = append(ys, v)
		}
	}
	if len(ys) == 0 {
		return window{}, ErrNothingToPlot
	}
	sort.Float64s(ys)
	q := func(p float64) float64 { return ys[int(p*float64(len(ys)-1))] }
	lo, hi := q(0.02), q(0.98)
	span := hi - lo
	lo = math.Max(ys[0], lo-span/2)
	hi = math.Min(ys[len(ys)-1], hi+span/2)
	if hi-lo < 1e-9 {
		lo, hi = lo-1, hi+1
	}
	pad := (hi - lo) * 0.05
	return window{lo: lo - pad, hi: hi + pad}, nil
}

// side tells whether v lies below (-1), inside (0) or above (1) w.
func (w window) side(v float64) int {
	switch {
	case v < w.lo:
		return -1
	case v > w.hi:
		return 1
	}
	return 0
}

func (w window) clamp(v float64) float64 { return math.Max(w.lo, math.Min(w.hi, v)) }

// segments splits the grid into runs of defined samples, clamped to w. A
// run also ends where the curve leaves the window on one side and comes
// back from the other.
func segments(g *funcstudy.Grid, w window) [][2][]float64 {
	var (
		out    [][2][]float64
		xs, ys []float64
		prev   = 0
	)
	flush := func() {
		if len(xs) >= 2 {
			out = append(out, [2][]float64{xs, ys})
		}
		xs, ys = nil, nil
	}
	for i, y := range g.Y {
		if !finite(y) {
			flush()
			continue
		}
		s := w.side(y)
		if len(xs) > 0 && s != 0 && prev == -s {
			flush()
		}
		xs = append(xs, g.X[i])
		ys = append(ys, w.clamp(y))
		prev = s
	}
	flush()
	return out
}

// niceStep rounds span/n up to 1, 2 or 5 times a power of ten.
func niceStep(span float64, n int) float64 {
	raw := span / float64(n)
	mag := math.Pow(10, math.Floor(math.Log10(raw)))
	for _, m := range []float64{1, 2, 5, 10} {
		if raw <= m*mag {
			return m * mag
		}
	}
	return 10 * mag
}

func ticksFor(lo, hi float64, n int) []float64 {
	step := niceStep(hi-lo, n)
	var out []float64
	for v := math.Ceil(lo/step) * step; v <= hi+step*1e-9; v += step {
		if math.Abs(v) < step*1e-9 {
			v = 0
		}
		out = append(out, v)
	}
	return out
}

func finite(v float64) bool { return !math.IsNaN(v) && !math.IsInf(v, 0) }
