package render

import (
	"bytes"
	"fmt"
	"strings"
	"text/tabwriter"

	"github.com/njchilds90/funcstudy"
	"github.com/njchilds90/funcstudy/cas"
)

// VariationHeader names the five columns of the variation table.
var VariationHeader = []string{"x start", "x end", "f(x start)", "f(x end)", "variation"}

// SummaryLine is one labelled quantity of a study.
type SummaryLine struct {
	Label string
	Value string
}

// Summary lists every quantity of a report in display order.
func Summary(r *funcstudy.Report) []SummaryLine {
	x := funcstudy.Variable
	domain := funcstudy.NotComputableText
	if set, ok := r.Domain.Get(); ok {
		domain = set.String()
	}
	asym := funcstudy.NoAsymptoteText
	if as, ok := r.Asymptotes.Get(); ok {
		parts := make([]string, len(as))
		for i, a := range as {
			parts[i] = a.String()
		}
		asym = strings.Join(parts, "; ")
	}
	return []SummaryLine{
		{"Function", "f(x) = " + r.Function.String()},
		{"Range", domain},
		{"Limit x → -∞", r.LimitNegInf.String()},
		{"Limit x → +∞", r.LimitPosInf.String()},
		{"Derivative", "f'(x) = " + r.Derivative.String()},
		{"Critical points", funcstudy.FormatPoints(r.CriticalPoints)},
		{"Increasing on", r.Increasing.Relational(x)},
		{"Decreasing on", r.Decreasing.Relational(x)},
		{"Second derivative", "f''(x) = " + r.SecondDerivative.String()},
		{"Convex (∪) on", r.Convex.Relational(x)},
		{"Concave (∩) on", r.Concave.Relational(x)},
		{"Asymptotes", asym},
	}
}

// SummaryText renders Summary as "Label: value" lines.
func SummaryText(r *funcstudy.Report) string {
	var sb strings.Builder
	for _, l := range Summary(r) {
		fmt.Fprintf(&sb, "%s: %s\n", l.Label, l.Value)
	}
	return sb.String()
}

// VariationCells returns the table body as strings, one slice per row.
func VariationCells(rows []funcstudy.VariationRow) [][]string {
	out := make([][]string, len(rows))
	for i, r := range rows {
		out[i] = []string{
			cas.FormatNumber(r.Start),
			cas.FormatNumber(r.End),
			r.StartValue,
			r.EndValue,
			string(r.Direction),
		}
	}
	return out
}

// VariationTable renders the rows as an aligned five-column text table.
func VariationTable(rows []funcstudy.VariationRow) string {
	var buf bytes.Buffer
	tw := tabwriter.NewWriter(&buf, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, strings.Join(VariationHeader, "\t"))
	for _, cells := range VariationCells(rows) {
		fmt.Fprintln(tw, strings.Join(cells, "\t"))
	}
	tw.Flush()
	return buf.String()
}
