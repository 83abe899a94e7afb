package funcstudy

import (
	"math"

	"github.com/njchilds90/funcstudy/cas"
)

// Direction is the monotonicity symbol of one variation row.
type Direction string

const (
	Up      Direction = "↗"
	Down    Direction = "↘"
	Flat    Direction = "→"
	Unknown Direction = "?"
)

// VariationRow describes f between two consecutive boundaries of the
// variation table. Start may be -Inf and End +Inf; the matching value is
// then the literal marker.
type VariationRow struct {
	Start, End           float64
	StartValue, EndValue string
	Direction            Direction
}

// Variation builds one row per interval of -∞, the critical points, +∞.
// The direction comes from the sign of deriv at one interior point chosen
// by Representative.
func Variation(fn Function, deriv cas.Expr, critical []float64, zoom int) []VariationRow {
	bounds := make([]float64, 0, len(critical)+2)
	bounds = append(bounds, math.Inf(-1))
	bounds = append(bounds, critical...)
	bounds = append(bounds, math.Inf(1))

	f := cas.Lambdify(fn.Expr, Variable)
	df := cas.Lambdify(deriv, Variable)
	rows := make([]VariationRow, 0, len(bounds)-1)
	for i := 0; i+1 < len(bounds); i++ {
		lo, hi := bounds[i], bounds[i+1]
		row := VariationRow{
			Start:      lo,
			End:        hi,
			StartValue: NegInfMarker,
			EndValue:   PosInfMarker,
			Direction:  directionOf(df(Representative(lo, hi, zoom))),
		}
		if !math.IsInf(lo, 0) {
			row.StartValue = formatValue(f(lo))
		}
		if !math.IsInf(hi, 0) {
			row.EndValue = formatValue(f(hi))
		}
		rows = append(rows, row)
	}
	return rows
}

// Representative picks the point of (lo, hi) where the derivative sign is
// read. Bounded intervals use the midpoint; an unbounded side falls back on
// the zoom window, stepping one unit inside when the window misses the
// interval.
func Representative(lo, hi float64, zoom int) float64 {
	z := float64(zoom)
	loInf, hiInf := math.IsInf(lo, -1), math.IsInf(hi, 1)
	switch {
	case loInf && hiInf:
		return -z
	case loInf:
		if -z < hi {
			return -z
		}
		return hi - 1
	case hiInf:
		if lo < z {
			return (lo + z) / 2
		}
		return lo + 1
	}
	return (lo + hi) / 2
}

func directionOf(v float64) Direction {
	switch {
	case math.IsNaN(v) || math.IsInf(v, 0):
		return Unknown
	case v > 0:
		return Up
	case v < 0:
		return Down
	}
	return Flat
}

func formatValue(v float64) string {
	if math.IsNaN(v) {
		return "undefined"
	}
	return cas.FormatNumber(v)
}
