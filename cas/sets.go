package cas

import (
	"math"
	"sort"
	"strings"
)

// ============================================================
// Real sets
// ============================================================

// Interval is a connected subset of the real line. Infinite ends are always
// open.
type Interval struct {
	Lo, Hi              float64
	LeftOpen, RightOpen bool
}

func (iv Interval) empty() bool {
	if math.IsNaN(iv.Lo) || math.IsNaN(iv.Hi) || iv.Lo > iv.Hi {
		return true
	}
	return iv.Lo == iv.Hi && (iv.LeftOpen || iv.RightOpen || math.IsInf(iv.Lo, 0))
}

func (iv Interval) normalize() Interval {
	if math.IsInf(iv.Lo, -1) {
		iv.LeftOpen = true
	}
	if math.IsInf(iv.Hi, 1) {
		iv.RightOpen = true
	}
	return iv
}

// Contains reports whether x lies in the interval.
func (iv Interval) Contains(x float64) bool {
	if x < iv.Lo || x > iv.Hi {
		return false
	}
	if x == iv.Lo && iv.LeftOpen {
		return false
	}
	return !(x == iv.Hi && iv.RightOpen)
}

func (iv Interval) String() string {
	if iv.Lo == iv.Hi {
		return "{" + FormatNumber(iv.Lo) + "}"
	}
	left, right := "[", "]"
	if iv.LeftOpen {
		left = "("
	}
	if iv.RightOpen {
		right = ")"
	}
	return left + FormatNumber(iv.Lo) + ", " + FormatNumber(iv.Hi) + right
}

// Set is a sorted union of disjoint intervals.
type Set struct {
	Intervals []Interval
}

func EmptySet() Set { return Set{} }

func Reals() Set {
	return Set{Intervals: []Interval{{Lo: math.Inf(-1), Hi: math.Inf(1), LeftOpen: true, RightOpen: true}}}
}

// NewSet normalises ivs: empty pieces are dropped, the rest sorted, and
// pieces that overlap or touch at a point one of them contains are merged.
func NewSet(ivs ...Interval) Set {
	parts := make([]Interval, 0, len(ivs))
	for _, iv := range ivs {
		iv = iv.normalize()
		if !iv.empty() {
			parts = append(parts, iv)
		}
	}
	sort.Slice(parts, func(i, j int) bool {
		if parts[i].Lo != parts[j].Lo {
			return parts[i].Lo < parts[j].Lo
		}
		return !parts[i].LeftOpen && parts[j].LeftOpen
	})
	var out []Interval
	for _, iv := range parts {
		if n := len(out); n > 0 {
			last := &out[n-1]
			if iv.Lo < last.Hi || (iv.Lo == last.Hi && !(iv.LeftOpen && last.RightOpen)) {
				if iv.Hi > last.Hi || (iv.Hi == last.Hi && !iv.RightOpen) {
					last.Hi, last.RightOpen = iv.Hi, iv.RightOpen
				}
				continue
			}
		}
		out = append(out, iv)
	}
	return Set{Intervals: out}
}

func (s Set) IsEmpty() bool { return len(s.Intervals) == 0 }

func (s Set) Contains(x float64) bool {
	for _, iv := range s.Intervals {
		if iv.Contains(x) {
			return true
		}
	}
	return false
}

func (s Set) Union(o Set) Set {
	return NewSet(append(append([]Interval{}, s.Intervals...), o.Intervals...)...)
}

func (s Set) Equal(o Set) bool {
	if len(s.Intervals) != len(o.Intervals) {
		return false
	}
	for i := range s.Intervals {
		if s.Intervals[i] != o.Intervals[i] {
			return false
		}
	}
	return true
}

// String renders the set in interval notation: (-∞, -1) ∪ (1, +∞).
func (s Set) String() string {
	if s.IsEmpty() {
		return "∅"
	}
	parts := make([]string, len(s.Intervals))
	for i, iv := range s.Intervals {
		parts[i] = iv.String()
	}
	return strings.Join(parts, " ∪ ")
}

// Relational renders the set as conditions on varName:
// "x < -1 or x > 1", "-1 < x < 1".
func (s Set) Relational(varName string) string {
	if s.IsEmpty() {
		return "no solution"
	}
	parts := make([]string, len(s.Intervals))
	for i, iv := range s.Intervals {
		parts[i] = iv.relational(varName)
	}
	return strings.Join(parts, " or ")
}

func (iv Interval) relational(v string) string {
	lo, hi := math.IsInf(iv.Lo, -1), math.IsInf(iv.Hi, 1)
	lt := func(open bool) string {
		if open {
			return " < "
		}
		return " <= "
	}
	switch {
	case lo && hi:
		return "-∞ < " + v + " < +∞"
	case iv.Lo == iv.Hi:
		return v + " = " + FormatNumber(iv.Lo)
	case lo:
		return v + lt(iv.RightOpen) + FormatNumber(iv.Hi)
	case hi:
		gt := " > "
		if !iv.LeftOpen {
			gt = " >= "
		}
		return v + gt + FormatNumber(iv.Lo)
	}
	return FormatNumber(iv.Lo) + lt(iv.LeftOpen) + v + lt(iv.RightOpen) + FormatNumber(iv.Hi)
}
