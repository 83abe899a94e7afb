package render

import (
	"fmt"

	"github.com/njchilds90/funcstudy"
	"github.com/njchilds90/funcstudy/cas"
)

// Document is the machine-readable form of a Result, shared by the JSON API
// and the command line. Byte slices encode as base64.
type Document struct {
	Expr     string     `json:"expr"`
	Zoom     int        `json:"zoom"`
	Function *ExprJSON  `json:"function,omitempty"`
	Study    *StudyJSON `json:"study,omitempty"`
	Plot     *PlotJSON  `json:"plot,omitempty"`
	Error    string     `json:"error,omitempty"`
}

type ExprJSON struct {
	String string                 `json:"string"`
	LaTeX  string                 `json:"latex"`
	Tree   map[string]interface{} `json:"tree"`
}

type SetJSON struct {
	Intervals string `json:"intervals"`
	Relation  string `json:"relation"`
}

type RowJSON struct {
	Start      string `json:"start"`
	End        string `json:"end"`
	StartValue string `json:"start_value"`
	EndValue   string `json:"end_value"`
	Direction  string `json:"direction"`
}

type AsymptoteJSON struct {
	Kind string `json:"kind"`
	Side string `json:"side"`
	Line string `json:"line"`
}

type StudyJSON struct {
	Range            string          `json:"range"`
	LimitNegInf      string          `json:"limit_neg_inf"`
	LimitPosInf      string          `json:"limit_pos_inf"`
	Derivative       ExprJSON        `json:"derivative"`
	SecondDerivative ExprJSON        `json:"second_derivative"`
	CriticalPoints   []float64       `json:"critical_points"`
	Increasing       SetJSON         `json:"increasing"`
	Decreasing       SetJSON         `json:"decreasing"`
	Convex           SetJSON         `json:"convex"`
	Concave          SetJSON         `json:"concave"`
	Variation        []RowJSON       `json:"variation"`
	Asymptotes       []AsymptoteJSON `json:"asymptotes"`
	AsymptoteNote    string          `json:"asymptote_note,omitempty"`
	Summary          string          `json:"summary"`
	PNG              []byte          `json:"png,omitempty"`
	PDF              []byte          `json:"pdf,omitempty"`
}

type PlotJSON struct {
	Points    int    `json:"points"`
	Undefined int    `json:"undefined"`
	PNG       []byte `json:"png,omitempty"`
}

// DocumentOptions selects the binary artifacts embedded in a Document.
type DocumentOptions struct {
	PNG bool
	PDF bool
}

// NewDocument converts res. Rendering failures of the artifacts are
// returned as errors; the run error itself goes into Document.Error.
func NewDocument(res *funcstudy.Result, opts DocumentOptions) (*Document, error) {
	doc := &Document{Expr: res.Request.Expr, Zoom: res.Request.Zoom}
	if res.Err != nil {
		doc.Error = res.ErrorMessage()
		return doc, nil
	}
	if res.Function != nil {
		e := exprJSON(res.Function.Expr)
		doc.Function = &e
	}
	if r := res.Study; r != nil {
		s, err := studyJSON(r, opts)
		if err != nil {
			return nil, err
		}
		doc.Study = s
	}
	if g := res.Plot; g != nil {
		p := &PlotJSON{Points: len(g.X), Undefined: len(g.Y) - g.Defined()}
		if opts.PNG {
			png, err := Plot(g, "f(x) = "+res.Function.String())
			if err != nil {
				return nil, err
			}
			p.PNG = png
		}
		doc.Plot = p
	}
	return doc, nil
}

func studyJSON(r *funcstudy.Report, opts DocumentOptions) (*StudyJSON, error) {
	x := funcstudy.Variable
	set := func(s cas.Set) SetJSON { return SetJSON{Intervals: s.String(), Relation: s.Relational(x)} }
	s := &StudyJSON{
		Range:            funcstudy.NotComputableText,
		LimitNegInf:      r.LimitNegInf.String(),
		LimitPosInf:      r.LimitPosInf.String(),
		Derivative:       exprJSON(r.Derivative),
		SecondDerivative: exprJSON(r.SecondDerivative),
		CriticalPoints:   append([]float64{}, r.CriticalPoints...),
		Increasing:       set(r.Increasing),
		Decreasing:       set(r.Decreasing),
		Convex:           set(r.Convex),
		Concave:          set(r.Concave),
		Asymptotes:       []AsymptoteJSON{},
		Summary:          SummaryText(r),
	}
	if d, ok := r.Domain.Get(); ok {
		s.Range = d.String()
	}
	for _, cells := range VariationCells(r.Variation) {
		s.Variation = append(s.Variation, RowJSON{cells[0], cells[1], cells[2], cells[3], cells[4]})
	}
	if as, ok := r.Asymptotes.Get(); ok {
		for _, a := range as {
			s.Asymptotes = append(s.Asymptotes, AsymptoteJSON{Kind: string(a.Kind), Side: a.Side, Line: a.Line})
		}
	} else {
		s.AsymptoteNote = funcstudy.NoAsymptoteText
	}
	if !opts.PNG && !opts.PDF {
		return s, nil
	}
	var png []byte
	if r.Grid != nil {
		var err error
		png, err = Plot(r.Grid, "f(x) = "+r.Function.String())
		// Without a plot the PDF still carries the summary.
		if err != nil && !opts.PDF {
			return nil, fmt.Errorf("study plot: %w", err)
		}
	}
	if opts.PNG {
		s.PNG = png
	}
	if opts.PDF {
		pdf, err := PDF(r, png)
		if err != nil {
			return nil, err
		}
		s.PDF = pdf
	}
	return s, nil
}

func exprJSON(e cas.Expr) ExprJSON {
	return ExprJSON{String: e.String(), LaTeX: e.LaTeX(), Tree: cas.Tree(e)}
}
