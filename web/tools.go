package web

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strings"

	"github.com/njchilds90/funcstudy"
	"github.com/njchilds90/funcstudy/cas"
	"github.com/njchilds90/funcstudy/render"
)

// ============================================================
// Tool calls
// ============================================================

// ToolRequest calls one study step by name. Expressions are given either
// as text ("x**2 - 1") or as the JSON tree returned by earlier calls.
type ToolRequest struct {
	Tool   string                 `json:"tool"`
	Params map[string]interface{} `json:"params"`
}

type ToolResponse struct {
	Result interface{} `json:"result,omitempty"`
	LaTeX  string      `json:"latex,omitempty"`
	String string      `json:"string,omitempty"`
	Error  string      `json:"error,omitempty"`
}

var relations = map[string]cas.Relation{">": cas.GT, ">=": cas.GE, "<": cas.LT, "<=": cas.LE}

// HandleToolCall runs a single tool. Failures are reported in
// ToolResponse.Error, never as a Go error.
func HandleToolCall(req ToolRequest, opts funcstudy.Options, analyzer funcstudy.Analyzer) ToolResponse {
	x := funcstudy.Variable
	roots := cas.DefaultRootOptions()
	roots.Radius = opts.SearchRadius

	getExpr := func(key string) (cas.Expr, error) {
		v, ok := req.Params[key]
		if !ok {
			return nil, fmt.Errorf("missing param: %s", key)
		}
		switch val := v.(type) {
		case string:
			return cas.Parse(val, x)
		case map[string]interface{}:
			e, err := cas.FromJSON(val)
			if err != nil {
				return nil, err
			}
			for _, s := range cas.SortedSymbols(e) {
				if s != x {
					return nil, fmt.Errorf("param %s: unknown symbol %s", key, s)
				}
			}
			return e, nil
		}
		return nil, fmt.Errorf("invalid type for param %s", key)
	}
	getString := func(key, def string) (string, error) {
		v, ok := req.Params[key]
		if !ok {
			return def, nil
		}
		s, ok := v.(string)
		if !ok {
			return "", fmt.Errorf("param %s must be a string", key)
		}
		return s, nil
	}
	getInt := func(key string, def int) (int, error) {
		v, ok := req.Params[key]
		if !ok {
			return def, nil
		}
		f, ok := v.(float64)
		if !ok || f != float64(int(f)) {
			return 0, fmt.Errorf("param %s must be an integer", key)
		}
		return int(f), nil
	}
	getPoint := func(key string) (cas.Expr, error) {
		v, ok := req.Params[key]
		if !ok {
			return nil, fmt.Errorf("missing param: %s", key)
		}
		switch val := v.(type) {
		case float64:
			return cas.FromFloat(val), nil
		case string:
			switch strings.TrimSpace(val) {
			case "+oo", "oo", "+inf", "inf", "+∞", "∞":
				return cas.PosInf(), nil
			case "-oo", "-inf", "-∞":
				return cas.NegInf(), nil
			}
			return cas.Parse(val, x)
		case map[string]interface{}:
			return cas.FromJSON(val)
		}
		return nil, fmt.Errorf("invalid type for param %s", key)
	}
	fail := func(err error) ToolResponse { return ToolResponse{Error: err.Error()} }
	respond := func(e cas.Expr) ToolResponse {
		return ToolResponse{Result: cas.Tree(e), LaTeX: cas.LaTeX(e), String: cas.String(e)}
	}
	respondSet := func(s cas.Set) ToolResponse {
		return ToolResponse{Result: s.Relational(x), String: s.String()}
	}

	switch req.Tool {
	case "parse":
		e, err := getExpr("expr")
		if err != nil {
			return fail(err)
		}
		return respond(e)

	case "diff", "diff2":
		e, err := getExpr("expr")
		if err != nil {
			return fail(err)
		}
		d, err := cas.Derivative(e, x)
		if err == nil && req.Tool == "diff2" {
			d, err = cas.Derivative(d, x)
		}
		if err != nil {
			return fail(err)
		}
		return respond(d)

	case "limit":
		e, err := getExpr("expr")
		if err != nil {
			return fail(err)
		}
		p, err := getPoint("point")
		if err != nil {
			return fail(err)
		}
		side, err := getString("direction", "")
		if err != nil {
			return fail(err)
		}
		dir := cas.BothSides
		switch side {
		case "":
		case "left", "-":
			dir = cas.FromBelow
		case "right", "+":
			dir = cas.FromAbove
		default:
			return fail(fmt.Errorf("direction must be left or right, got %q", side))
		}
		res := cas.LimitDir(e, x, p, dir)
		if !res.Success {
			return ToolResponse{String: res.Value.String(), Error: res.Error}
		}
		return respond(res.Value)

	case "critical_points":
		e, err := getExpr("expr")
		if err != nil {
			return fail(err)
		}
		d, err := cas.Derivative(e, x)
		if err != nil {
			return fail(err)
		}
		pts := cas.RealRoots(d, x, roots)
		return ToolResponse{Result: append([]float64{}, pts...), String: funcstudy.FormatPoints(pts)}

	case "solve_inequality":
		e, err := getExpr("expr")
		if err != nil {
			return fail(err)
		}
		op, err := getString("relation", ">")
		if err != nil {
			return fail(err)
		}
		rel, ok := relations[op]
		if !ok {
			return fail(fmt.Errorf("relation must be one of > >= < <=, got %q", op))
		}
		s, err := cas.SolveInequality(e, x, rel, roots)
		if err != nil {
			return fail(err)
		}
		return respondSet(s)

	case "range":
		e, err := getExpr("expr")
		if err != nil {
			return fail(err)
		}
		s, err := cas.FunctionRange(e, x, roots)
		if err != nil {
			return ToolResponse{String: funcstudy.NotComputableText, Error: err.Error()}
		}
		return respondSet(s)

	case "asymptotes":
		e, err := getExpr("expr")
		if err != nil {
			return fail(err)
		}
		as, err := cas.Asymptotes(e, x, roots)
		if err != nil {
			return fail(err)
		}
		if len(as) == 0 {
			return ToolResponse{Result: []render.AsymptoteJSON{}, String: funcstudy.NoAsymptoteText}
		}
		out := make([]render.AsymptoteJSON, len(as))
		lines := make([]string, len(as))
		for i, a := range as {
			out[i] = render.AsymptoteJSON{Kind: string(a.Kind), Side: a.Side, Line: a.Line}
			lines[i] = a.String()
		}
		return ToolResponse{Result: out, String: strings.Join(lines, "; ")}

	case "study":
		text, err := getString("expr", "")
		if err != nil {
			return fail(err)
		}
		zoom, err := getInt("zoom", funcstudy.DefaultZoom)
		if err != nil {
			return fail(err)
		}
		res := funcstudy.Run(funcstudy.Request{Expr: text, Study: true, Zoom: zoom}, analyzer)
		if res.Err != nil {
			return fail(res.Err)
		}
		doc, err := render.NewDocument(res, render.DocumentOptions{})
		if err != nil {
			return fail(err)
		}
		return ToolResponse{Result: doc, String: render.SummaryText(res.Study)}

	case "tool_spec":
		return ToolResponse{String: ToolSpec()}
	}
	return ToolResponse{Error: fmt.Sprintf("unknown tool: %s", req.Tool)}
}

// ToolSpec describes the tools as JSON for agent registration.
func ToolSpec() string {
	tools := []map[string]interface{}{
		ts("parse", "Parse a function of x into an expression tree", []string{"expr"}, map[string]string{"expr": "string"}),
		ts("diff", "First derivative d/dx", []string{"expr"}, map[string]string{"expr": "string"}),
		ts("diff2", "Second derivative d²/dx²", []string{"expr"}, map[string]string{"expr": "string"}),
		ts("limit", "lim_{x->point} expr. point: number, \"+oo\" or \"-oo\"; optional direction left|right", []string{"expr", "point"}, map[string]string{"expr": "string", "point": "string", "direction": "string"}),
		ts("critical_points", "Real roots of f', ascending", []string{"expr"}, map[string]string{"expr": "string"}),
		ts("solve_inequality", "Solve expr > 0 (relation: > >= < <=)", []string{"expr"}, map[string]string{"expr": "string", "relation": "string"}),
		ts("range", "Set of values taken by the function", []string{"expr"}, map[string]string{"expr": "string"}),
		ts("asymptotes", "Vertical, horizontal and oblique asymptotes", []string{"expr"}, map[string]string{"expr": "string"}),
		ts("study", "Full study of a function of x. Optional zoom 1-50", []string{"expr"}, map[string]string{"expr": "string", "zoom": "integer"}),
		ts("tool_spec", "Return this tool schema", []string{}, map[string]string{}),
	}
	spec := map[string]interface{}{"tools": tools}
	b, _ := json.MarshalIndent(spec, "", "  ")
	return string(b)
}

func ts(name, description string, required []string, props map[string]string) map[string]interface{} {
	properties := map[string]interface{}{}
	for k, typ := range props {
		properties[k] = map[string]interface{}{"type": typ}
	}
	return map[string]interface{}{
		"name":        name,
		"description": description,
		"inputSchema": map[string]interface{}{
			"type":       "object",
			"properties": properties,
			"required":   required,
		},
	}
}

// POST /tool: handle a tool call
func (s *Server) handleTool(w http.ResponseWriter, r *http.Request) {
	var req ToolRequest
	if !s.decodeJSON(w, r, &req) {
		return
	}
	writeJSON(w, http.StatusOK, HandleToolCall(req, s.cfg.Study.Options(), s.analyzer))
}

// GET /schema: tool schema for agent registration
func (s *Server) handleSchema(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	fmt.Fprint(w, ToolSpec())
}
