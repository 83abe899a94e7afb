package cas

import (
	"errors"
	"fmt"
)

var (
	// ErrNoDerivative is returned when an expression contains a function the
	// kernel has no differentiation rule for.
	ErrNoDerivative = errors.New("no derivative rule")
	// ErrNotComputable marks a quantity the kernel cannot determine
	// automatically.
	ErrNotComputable = errors.New("not automatically computable")
)

// ParseError reports malformed input. Pos is a 1-based rune offset into the
// normalised input, or 0 when the error is not tied to a position.
type ParseError struct {
	Pos int
	Msg string
}

func (e *ParseError) Error() string {
	if e.Pos <= 0 {
		return "parse error: " + e.Msg
	}
	return fmt.Sprintf("parse error at position %d: %s", e.Pos, e.Msg)
}
