package cas

import (
	"fmt"
)

// ============================================================
// Asymptotes
// ============================================================

type AsymptoteKind string

const (
	Vertical   AsymptoteKind = "vertical"
	Horizontal AsymptoteKind = "horizontal"
	Oblique    AsymptoteKind = "oblique"
)

// Asymptote is a line the graph approaches.
type Asymptote struct {
	Kind AsymptoteKind
	// Side tells where the approach happens: "x → -∞", "x → +∞",
	// "x → ±∞", or "x → a" for vertical asymptotes.
	Side string
	// Line is the equation of the line, "x = 0" or "y = 2*x + 1".
	Line string
}

func (a Asymptote) String() string {
	return fmt.Sprintf("%s asymptote %s (%s)", a.Kind, a.Line, a.Side)
}

// Asymptotes finds the vertical asymptotes at break points where a
// one-sided limit is infinite, and at each infinite end either the
// horizontal asymptote y = L or the oblique one y = m*x + b with
// m = lim f/x and b = lim (f - m*x).
func Asymptotes(expr Expr, varName string, opts RootOptions) ([]Asymptote, error) {
	expr = expr.Simplify()
	for _, s := range SortedSymbols(expr) {
		if s != varName {
			return nil, fmt.Errorf("expression has free symbol %s", s)
		}
	}
	if !HasVar(expr, varName) {
		return nil, nil
	}
	var out []Asymptote
	for _, p := range BreakPoints(expr, varName, opts) {
		at := NFloat(p)
		left := LimitDir(expr, varName, at, FromBelow)
		right := LimitDir(expr, varName, at, FromAbove)
		if isInf(left.Value) || isInf(right.Value) {
			out = append(out, Asymptote{
				Kind: Vertical,
				Side: "x → " + FormatNumber(p),
				Line: varName + " = " + FormatNumber(p),
			})
		}
	}

	neg := endAsymptote(expr, varName, NegInf())
	pos := endAsymptote(expr, varName, PosInf())
	switch {
	case neg != nil && pos != nil && neg.Line == pos.Line:
		neg.Side = "x → ±∞"
		out = append(out, *neg)
	default:
		if neg != nil {
			out = append(out, *neg)
		}
		if pos != nil {
			out = append(out, *pos)
		}
	}
	return out, nil
}

func endAsymptote(expr Expr, varName string, end *Inf) *Asymptote {
	side := "x → " + end.String()
	lim := Limit(expr, varName, end)
	if !lim.Success {
		return nil
	}
	if _, ok := Float(lim.Value); ok {
		return &Asymptote{Kind: Horizontal, Side: side, Line: "y = " + lim.Value.String()}
	}
	if !isInf(lim.Value) {
		return nil
	}
	x := S(varName)
	slope := Limit(MulOf(expr, PowOf(x, N(-1))), varName, end)
	m, ok := Float(slope.Value)
	if !slope.Success || !ok || m == 0 {
		return nil
	}
	intercept := Limit(AddOf(expr, MulOf(N(-1), slope.Value, x)), varName, end)
	if _, ok := Float(intercept.Value); !intercept.Success || !ok {
		return nil
	}
	line := AddOf(MulOf(slope.Value, x), intercept.Value)
	return &Asymptote{Kind: Oblique, Side: side, Line: "y = " + line.String()}
}

func isInf(e Expr) bool {
	_, ok := e.(*Inf)
	return ok
}
