package web

import (
	"bytes"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"html/template"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/njchilds90/funcstudy"
	"github.com/njchilds90/funcstudy/render"
)

// ============================================================
// Request decoding
// ============================================================

// formRequest reads expr, zoom and the two action flags from the query.
// Missing zoom means the configured default.
func (s *Server) formRequest(r *http.Request) (funcstudy.Request, error) {
	q := r.URL.Query()
	req := funcstudy.Request{
		Expr:  q.Get("expr"),
		Study: q.Has("study"),
		Plot:  q.Has("plot"),
		Zoom:  s.cfg.Study.DefaultZoom,
	}
	if z := strings.TrimSpace(q.Get("zoom")); z != "" {
		n, err := strconv.Atoi(z)
		if err != nil {
			return req, fmt.Errorf("invalid zoom %q", z)
		}
		req.Zoom = n
	}
	return req, nil
}

// decodeJSON reads exactly one JSON value into v, rejecting unknown fields
// and trailing data. It answers 400 itself and returns false on failure.
func (s *Server) decodeJSON(w http.ResponseWriter, r *http.Request, v interface{}) bool {
	r.Body = http.MaxBytesReader(w, r.Body, s.cfg.Server.MaxBodyBytes)
	defer r.Body.Close()

	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
		return false
	}
	if dec.More() {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid JSON: trailing data"})
		return false
	}
	return true
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// ============================================================
// HTML page
// ============================================================

type pageData struct {
	Expr    string
	Zoom    int
	MinZoom int
	MaxZoom int
	Error   string
	Study   *studyView
	Plot    *plotView
}

type plotView struct {
	PlotURI   template.URL
	PlotError string
}

type studyView struct {
	Graph   plotView
	Summary []render.SummaryLine
	Header  []string
	Rows    [][]string
	PDFLink string
	PDFName string
}

func newPlotView(g *funcstudy.Grid, fn *funcstudy.Function) plotView {
	if g == nil {
		return plotView{PlotError: "no plot available"}
	}
	png, err := render.Plot(g, "f(x) = "+fn.String())
	if err != nil {
		return plotView{PlotError: err.Error()}
	}
	return plotView{PlotURI: template.URL("data:image/png;base64," + base64.StdEncoding.EncodeToString(png))}
}

func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	req, err := s.formRequest(r)
	data := pageData{
		Expr:    req.Expr,
		Zoom:    req.Zoom,
		MinZoom: funcstudy.MinZoom,
		MaxZoom: funcstudy.MaxZoom,
	}
	if err != nil {
		data.Error = "Error: " + err.Error()
		data.Zoom = s.cfg.Study.DefaultZoom
	} else {
		res := funcstudy.Run(req, s.analyzer)
		data.Zoom = res.Request.Zoom
		data.Error = res.ErrorMessage()
		if rep := res.Study; rep != nil {
			data.Study = &studyView{
				Graph:   newPlotView(rep.Grid, res.Function),
				Summary: render.Summary(rep),
				Header:  render.VariationHeader,
				Rows:    render.VariationCells(rep.Variation),
				PDFLink: "/export.pdf?" + url.Values{"expr": {req.Expr}, "zoom": {strconv.Itoa(rep.Zoom)}}.Encode(),
				PDFName: render.PDFFileName,
			}
		}
		if res.Plot != nil {
			v := newPlotView(res.Plot, res.Function)
			data.Plot = &v
		}
	}

	var buf bytes.Buffer
	if err := s.page.Execute(&buf, data); err != nil {
		s.logger.Error("render page", "error", err, "request_id", RequestID(r.Context()))
		http.Error(w, "internal server error", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	_, _ = w.Write(buf.Bytes())
}

// ============================================================
// Artifacts
// ============================================================

// runArtifact runs req and answers 400 when there is nothing to render.
func (s *Server) runArtifact(w http.ResponseWriter, r *http.Request, study bool) (*funcstudy.Result, bool) {
	req, err := s.formRequest(r)
	if err != nil {
		http.Error(w, "Error: "+err.Error(), http.StatusBadRequest)
		return nil, false
	}
	req.Study, req.Plot = study, !study
	res := funcstudy.Run(req, s.analyzer)
	switch {
	case res.Err != nil:
		http.Error(w, res.ErrorMessage(), http.StatusBadRequest)
		return nil, false
	case res.Empty():
		http.Error(w, "Error: missing expr", http.StatusBadRequest)
		return nil, false
	}
	return res, true
}

func (s *Server) handlePlot(w http.ResponseWriter, r *http.Request) {
	res, ok := s.runArtifact(w, r, false)
	if !ok {
		return
	}
	png, err := render.Plot(res.Plot, "f(x) = "+res.Function.String())
	if errors.Is(err, render.ErrNothingToPlot) {
		http.Error(w, "Error: "+err.Error(), http.StatusUnprocessableEntity)
		return
	}
	if err != nil {
		s.logger.Error("render plot", "error", err, "request_id", RequestID(r.Context()))
		http.Error(w, "internal server error", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "image/png")
	w.Header().Set("Cache-Control", "no-store")
	_, _ = w.Write(png)
}

func (s *Server) handleExport(w http.ResponseWriter, r *http.Request) {
	res, ok := s.runArtifact(w, r, true)
	if !ok {
		return
	}
	doc, err := render.NewDocument(res, render.DocumentOptions{PDF: true})
	if err != nil {
		s.logger.Error("render pdf", "error", err, "request_id", RequestID(r.Context()))
		http.Error(w, "internal server error", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", render.PDFMimeType)
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", render.PDFFileName))
	w.Header().Set("Cache-Control", "no-store")
	_, _ = w.Write(doc.Study.PDF)
}

// ============================================================
// JSON API
// ============================================================

// StudyRequest is the body of POST /api/study. With neither action set the
// full study is run. PNG and PDF embed the artifacts, base64 encoded.
type StudyRequest struct {
	Expr  string `json:"expr"`
	Zoom  int    `json:"zoom"`
	Study bool   `json:"study"`
	Plot  bool   `json:"plot"`
	PNG   bool   `json:"png"`
	PDF   bool   `json:"pdf"`
}

func (s *Server) handleStudy(w http.ResponseWriter, r *http.Request) {
	var body StudyRequest
	if !s.decodeJSON(w, r, &body) {
		return
	}
	if body.Zoom == 0 {
		body.Zoom = s.cfg.Study.DefaultZoom
	}
	req := funcstudy.Request{Expr: body.Expr, Zoom: body.Zoom, Study: body.Study, Plot: body.Plot}
	if !req.Study && !req.Plot {
		req.Study = true
	}
	res := funcstudy.Run(req, s.analyzer)
	doc, err := render.NewDocument(res, render.DocumentOptions{PNG: body.PNG, PDF: body.PDF})
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
		return
	}
	writeJSON(w, http.StatusOK, doc)
}

// GET /health: liveness check
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"status": "ok",
		"time":   time.Now().UTC().Format(time.RFC3339),
	})
}
