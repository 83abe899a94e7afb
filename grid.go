package funcstudy

import (
	"math"

	"gonum.org/v1/gonum/floats"

	"github.com/njchilds90/funcstudy/cas"
)

// Grid is the function sampled at SamplePoints evenly spaced points of
// [-Zoom, Zoom], both ends included. Y holds NaN or ±Inf where the function
// is not defined.
type Grid struct {
	X, Y []float64
	Zoom int
}

// Sample evaluates fn over the plotting window. Undefined points never
// fail the call.
func Sample(fn Function, zoom int) (*Grid, error) {
	if err := checkZoom(zoom); err != nil {
		return nil, err
	}
	z := float64(zoom)
	xs := floats.Span(make([]float64, SamplePoints), -z, z)
	f := cas.Lambdify(fn.Expr, Variable)
	ys := make([]float64, len(xs))
	for i, v := range xs {
		ys[i] = f(v)
	}
	return &Grid{X: xs, Y: ys, Zoom: zoom}, nil
}

// Defined counts the finite samples.
func (g *Grid) Defined() int {
	n := 0
	for _, v := range g.Y {
		if !math.IsNaN(v) && !math.IsInf(v, 0) {
			n++
		}
	}
	return n
}
