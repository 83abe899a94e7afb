package funcstudy

import (
	"fmt"
	"log/slog"
	"runtime/debug"
	"strings"
)

// Request is one interaction: the typed text, which of the two actions
// were triggered, and the zoom. Zoom 0 means DefaultZoom.
type Request struct {
	Expr  string
	Study bool
	Plot  bool
	Zoom  int
}

// Result is everything a shell needs to display one run. When Err is set
// every other output is nil.
type Result struct {
	Request  Request
	Function *Function
	Study    *Report
	Plot     *Grid
	Err      error
}

// ErrorMessage is the single line shown in place of the results.
func (r *Result) ErrorMessage() string {
	if r.Err == nil {
		return ""
	}
	return "Error: " + r.Err.Error()
}

// Empty reports a run with nothing to show.
func (r *Result) Empty() bool {
	return r.Err == nil && r.Study == nil && r.Plot == nil
}

// Analyzer performs the full study.
type Analyzer interface {
	Analyze(fn Function, zoom int) (*Report, error)
}

// Pipeline is the Analyzer backed by Analyze.
type Pipeline struct {
	Options Options
}

func (p Pipeline) Analyze(fn Function, zoom int) (*Report, error) {
	return Analyze(fn, zoom, p.Options)
}

// Run executes one request from scratch. The simple plot only parses and
// samples; the analyzer is called for the full study alone. A nil analyzer
// means Pipeline with DefaultOptions.
func Run(req Request, a Analyzer) (res *Result) {
	res = &Result{Request: req}
	defer func() {
		if rec := recover(); rec != nil {
			slog.Error("panic during run", "expr", req.Expr, "panic", rec, "stack", string(debug.Stack()))
			*res = Result{Request: req, Err: fmt.Errorf("internal error: %v", rec)}
		}
	}()

	if strings.TrimSpace(req.Expr) == "" {
		return res
	}
	if req.Zoom == 0 {
		req.Zoom = DefaultZoom
		res.Request.Zoom = DefaultZoom
	}
	if err := checkZoom(req.Zoom); err != nil {
		res.Err = err
		return res
	}
	fn, err := Parse(req.Expr)
	if err != nil {
		res.Err = err
		return res
	}

	var (
		report *Report
		grid   *Grid
	)
	if req.Study {
		if a == nil {
			a = Pipeline{Options: DefaultOptions()}
		}
		if report, err = a.Analyze(fn, req.Zoom); err != nil {
			res.Err = err
			return res
		}
	}
	if req.Plot {
		if grid, err = Sample(fn, req.Zoom); err != nil {
			res.Err = err
			return res
		}
	}
	res.Function, res.Study, res.Plot = &fn, report, grid
	return res
}
