// Package funcstudy studies a real function of one variable x: its range,
// limits at ±∞, derivatives, critical points, monotonicity, variation table,
// convexity and asymptotes, plus a sampled grid for plotting.
//
// Every entry point is stateless. A Request goes through Run and comes back
// as a Result; nothing is kept between runs.
package funcstudy

import (
	"errors"
	"fmt"
	"strings"

	"github.com/njchilds90/funcstudy/cas"
)

const (
	// Variable is the only free symbol an input may use.
	Variable = "x"

	SamplePoints = 1000
	MinZoom      = 1
	MaxZoom      = 50
	DefaultZoom  = 10

	NegInfMarker = "-∞"
	PosInfMarker = "+∞"

	// Placeholders shown for soft failures.
	NotComputableText = "not automatically computable"
	NoAsymptoteText   = "no asymptote found"
)

var ErrZoomRange = errors.New("zoom out of range")

func checkZoom(zoom int) error {
	if zoom < MinZoom || zoom > MaxZoom {
		return fmt.Errorf("%w: %d not in [%d, %d]", ErrZoomRange, zoom, MinZoom, MaxZoom)
	}
	return nil
}

// ============================================================
// Function
// ============================================================

// Function is the text the user typed together with its parsed form.
type Function struct {
	Text string
	Expr cas.Expr
}

// Parse reads text as a function of x.
func Parse(text string) (Function, error) {
	e, err := cas.Parse(text, Variable)
	if err != nil {
		return Function{}, err
	}
	return Function{Text: strings.TrimSpace(text), Expr: e}, nil
}

func (f Function) String() string { return f.Expr.String() }

// ============================================================
// Outcome
// ============================================================

// Outcome holds the result of a computation that may legitimately give up.
// The zero value is NotComputable.
type Outcome[T any] struct {
	value T
	ok    bool
}

func Computed[T any](v T) Outcome[T] { return Outcome[T]{value: v, ok: true} }

func NotComputable[T any]() Outcome[T] { return Outcome[T]{} }

func (o Outcome[T]) Get() (T, bool) { return o.value, o.ok }
func (o Outcome[T]) OK() bool       { return o.ok }

// Or returns the computed value, or def.
func (o Outcome[T]) Or(def T) T {
	if o.ok {
		return o.value
	}
	return def
}
