package web

import (
	"bytes"
	"encoding/json"
	"image/png"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/njchilds90/funcstudy"
	"github.com/njchilds90/funcstudy/config"
	"github.com/njchilds90/funcstudy/render"
)

type countingAnalyzer struct {
	calls int
}

func (c *countingAnalyzer) Analyze(fn funcstudy.Function, zoom int) (*funcstudy.Report, error) {
	c.calls++
	return funcstudy.Analyze(fn, zoom, funcstudy.DefaultOptions())
}

func newTestServer(t *testing.T, a funcstudy.Analyzer) *httptest.Server {
	t.Helper()
	s, err := New(config.Default(), a, slog.New(slog.NewTextHandler(io.Discard, nil)))
	require.NoError(t, err)
	ts := httptest.NewServer(s.Handler())
	t.Cleanup(ts.Close)
	return ts
}

func get(t *testing.T, ts *httptest.Server, path string, q url.Values) (*http.Response, []byte) {
	t.Helper()
	u := ts.URL + path
	if q != nil {
		u += "?" + q.Encode()
	}
	resp, err := http.Get(u)
	require.NoError(t, err)
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return resp, body
}

func postJSON(t *testing.T, ts *httptest.Server, path, body string) (*http.Response, []byte) {
	t.Helper()
	resp, err := http.Post(ts.URL+path, "application/json", strings.NewReader(body))
	require.NoError(t, err)
	defer resp.Body.Close()
	out, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return resp, out
}

// ============================================================
// HTML page
// ============================================================

func TestIndex_Empty(t *testing.T) {
	ts := newTestServer(t, nil)
	resp, body := get(t, ts, "/", nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, resp.Header.Get("Content-Type"), "text/html")
	assert.Contains(t, string(body), "Full study")
	assert.Contains(t, string(body), "Simple plot")
	assert.Contains(t, string(body), `max="50"`)
	assert.NotContains(t, string(body), "Variation table")
}

func TestIndex_FullStudy(t *testing.T) {
	ts := newTestServer(t, nil)
	_, body := get(t, ts, "/", url.Values{"expr": {"x**3 - 3*x"}, "study": {"1"}})
	page := string(body)
	assert.Contains(t, page, "3*x**2 - 3")
	assert.Contains(t, page, "x &lt; -1 or x &gt; 1")
	assert.Contains(t, page, "-1 &lt; x &lt; 1")
	assert.Contains(t, page, "[-1.0, 1.0]")
	assert.Contains(t, page, "Variation table")
	assert.Contains(t, page, "data:image/png;base64,")
	assert.Contains(t, page, render.PDFFileName)
	assert.NotContains(t, page, "Simple plot of f(x)")
}

func TestIndex_SimplePlotSkipsStudy(t *testing.T) {
	a := &countingAnalyzer{}
	ts := newTestServer(t, a)
	_, body := get(t, ts, "/", url.Values{"expr": {"sin(x)"}, "plot": {"1"}, "zoom": {"5"}})
	assert.Equal(t, 0, a.calls)
	assert.Contains(t, string(body), "Simple plot of f(x)")
	assert.Contains(t, string(body), "data:image/png;base64,")
}

func TestIndex_MalformedInput(t *testing.T) {
	a := &countingAnalyzer{}
	ts := newTestServer(t, a)
	_, body := get(t, ts, "/", url.Values{"expr": {"x+++"}, "study": {"1"}, "plot": {"1"}})
	page := string(body)
	assert.Equal(t, 1, strings.Count(page, `class="error"`))
	assert.Contains(t, page, "Error: parse error")
	assert.NotContains(t, page, "data:image/png")
	assert.Equal(t, 0, a.calls)
}

func TestIndex_BadZoom(t *testing.T) {
	ts := newTestServer(t, nil)
	_, body := get(t, ts, "/", url.Values{"expr": {"x"}, "plot": {"1"}, "zoom": {"wide"}})
	assert.Contains(t, string(body), "Error: invalid zoom")

	_, body = get(t, ts, "/", url.Values{"expr": {"x"}, "plot": {"1"}, "zoom": {"99"}})
	assert.Contains(t, string(body), "zoom out of range")
}

// ============================================================
// Artifacts
// ============================================================

func TestPlotPNG(t *testing.T) {
	ts := newTestServer(t, nil)
	resp, body := get(t, ts, "/plot.png", url.Values{"expr": {"1/x"}, "zoom": {"3"}})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "image/png", resp.Header.Get("Content-Type"))
	_, err := png.Decode(bytes.NewReader(body))
	assert.NoError(t, err)
}

func TestPlotPNG_Errors(t *testing.T) {
	ts := newTestServer(t, nil)
	resp, _ := get(t, ts, "/plot.png", url.Values{"expr": {"x+++"}})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	resp, _ = get(t, ts, "/plot.png", nil)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	resp, _ = get(t, ts, "/plot.png", url.Values{"expr": {"ln(-1 - x**2)"}})
	assert.Equal(t, http.StatusUnprocessableEntity, resp.StatusCode)
}

func TestExportPDF(t *testing.T) {
	ts := newTestServer(t, nil)
	resp, body := get(t, ts, "/export.pdf", url.Values{"expr": {"x**2"}, "zoom": {"4"}})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, render.PDFMimeType, resp.Header.Get("Content-Type"))
	assert.Equal(t, `attachment; filename="Etude_fonction.pdf"`, resp.Header.Get("Content-Disposition"))
	assert.True(t, bytes.HasPrefix(body, []byte("%PDF-")))
}

// ============================================================
// JSON API
// ============================================================

func TestAPIStudy(t *testing.T) {
	ts := newTestServer(t, nil)
	resp, body := postJSON(t, ts, "/api/study", `{"expr":"x**3 - 3*x","zoom":10,"study":true,"plot":true,"png":true}`)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var doc render.Document
	require.NoError(t, json.Unmarshal(body, &doc))
	assert.Empty(t, doc.Error)
	require.NotNil(t, doc.Study)
	assert.Equal(t, "3*x**2 - 3", doc.Study.Derivative.String)
	assert.Equal(t, []float64{-1, 1}, doc.Study.CriticalPoints)
	assert.Equal(t, "x < -1 or x > 1", doc.Study.Increasing.Relation)
	assert.Equal(t, "-1 < x < 1", doc.Study.Decreasing.Relation)
	assert.Len(t, doc.Study.Variation, 3)
	assert.NotEmpty(t, doc.Study.PNG)
	assert.Empty(t, doc.Study.PDF)
	require.NotNil(t, doc.Plot)
	assert.Equal(t, funcstudy.SamplePoints, doc.Plot.Points)
}

func TestAPIStudy_DefaultsToStudy(t *testing.T) {
	ts := newTestServer(t, nil)
	_, body := postJSON(t, ts, "/api/study", `{"expr":"1/x"}`)
	var doc render.Document
	require.NoError(t, json.Unmarshal(body, &doc))
	require.NotNil(t, doc.Study)
	assert.Equal(t, "0", doc.Study.LimitNegInf)
	assert.Equal(t, "0", doc.Study.LimitPosInf)
	assert.Equal(t, funcstudy.DefaultZoom, doc.Zoom)
	assert.Nil(t, doc.Plot)
}

func TestAPIStudy_RunError(t *testing.T) {
	ts := newTestServer(t, nil)
	resp, body := postJSON(t, ts, "/api/study", `{"expr":"x+++","study":true}`)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	var doc render.Document
	require.NoError(t, json.Unmarshal(body, &doc))
	assert.True(t, strings.HasPrefix(doc.Error, "Error: "))
	assert.Nil(t, doc.Study)
}

func TestAPIStudy_BadBodies(t *testing.T) {
	ts := newTestServer(t, nil)
	for name, body := range map[string]string{
		"unknown field": `{"expression":"x"}`,
		"trailing data": `{"expr":"x"} {"expr":"y"}`,
		"not json":      `expr=x`,
	} {
		t.Run(name, func(t *testing.T) {
			resp, _ := postJSON(t, ts, "/api/study", body)
			assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
		})
	}
}

func TestAPIStudy_MethodNotAllowed(t *testing.T) {
	ts := newTestServer(t, nil)
	resp, _ := get(t, ts, "/api/study", nil)
	assert.Equal(t, http.StatusMethodNotAllowed, resp.StatusCode)
}

// ============================================================
// Tools, health, middleware
// ============================================================

func TestTool_Diff(t *testing.T) {
	ts := newTestServer(t, nil)
	_, body := postJSON(t, ts, "/tool", `{"tool":"diff","params":{"expr":"x**3 - 3*x"}}`)
	var out ToolResponse
	require.NoError(t, json.Unmarshal(body, &out))
	assert.Empty(t, out.Error)
	assert.Equal(t, "3*x**2 - 3", out.String)
}

func TestHandleToolCall(t *testing.T) {
	opts := funcstudy.DefaultOptions()
	cases := []struct {
		req  ToolRequest
		want string
	}{
		{ToolRequest{Tool: "limit", Params: map[string]interface{}{"expr": "1/x", "point": "+oo"}}, "0"},
		{ToolRequest{Tool: "limit", Params: map[string]interface{}{"expr": "1/x", "point": 0.0, "direction": "right"}}, "+∞"},
		{ToolRequest{Tool: "critical_points", Params: map[string]interface{}{"expr": "x**3 - 3*x"}}, "[-1.0, 1.0]"},
		{ToolRequest{Tool: "solve_inequality", Params: map[string]interface{}{"expr": "x**2 - 1", "relation": "<"}}, "(-1, 1)"},
		{ToolRequest{Tool: "range", Params: map[string]interface{}{"expr": "x**2"}}, "[0, +∞)"},
		{ToolRequest{Tool: "asymptotes", Params: map[string]interface{}{"expr": "x**2"}}, funcstudy.NoAsymptoteText},
	}
	for _, tc := range cases {
		t.Run(tc.req.Tool, func(t *testing.T) {
			out := HandleToolCall(tc.req, opts, nil)
			assert.Empty(t, out.Error)
			assert.Equal(t, tc.want, out.String)
		})
	}
}

func TestHandleToolCall_Errors(t *testing.T) {
	opts := funcstudy.DefaultOptions()
	assert.Contains(t, HandleToolCall(ToolRequest{Tool: "nope"}, opts, nil).Error, "unknown tool")
	assert.Contains(t, HandleToolCall(ToolRequest{Tool: "diff"}, opts, nil).Error, "missing param")
	assert.NotEmpty(t, HandleToolCall(ToolRequest{Tool: "diff", Params: map[string]interface{}{"expr": "y"}}, opts, nil).Error)
	tree := map[string]interface{}{"type": "sym", "name": "y"}
	assert.Contains(t, HandleToolCall(ToolRequest{Tool: "parse", Params: map[string]interface{}{"expr": tree}}, opts, nil).Error, "unknown symbol")
}

func TestSchema(t *testing.T) {
	ts := newTestServer(t, nil)
	_, body := get(t, ts, "/schema", nil)
	var spec map[string][]map[string]interface{}
	require.NoError(t, json.Unmarshal(body, &spec))
	assert.NotEmpty(t, spec["tools"])
}

func TestHealth(t *testing.T) {
	ts := newTestServer(t, nil)
	resp, body := get(t, ts, "/health", nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	var out map[string]string
	require.NoError(t, json.Unmarshal(body, &out))
	assert.Equal(t, "ok", out["status"])
}

func TestRequestID(t *testing.T) {
	ts := newTestServer(t, nil)
	resp, _ := get(t, ts, "/health", nil)
	_, err := uuid.Parse(resp.Header.Get(requestIDHeader))
	assert.NoError(t, err)

	id := uuid.NewString()
	req, err := http.NewRequest(http.MethodGet, ts.URL+"/health", nil)
	require.NoError(t, err)
	req.Header.Set(requestIDHeader, id)
	resp, err = http.DefaultClient.Do(req)
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, id, resp.Header.Get(requestIDHeader))
}

func TestRecover(t *testing.T) {
	s, err := New(config.Default(), nil, slog.New(slog.NewTextHandler(io.Discard, nil)))
	require.NoError(t, err)
	h := s.withRecover(http.HandlerFunc(func(http.ResponseWriter, *http.Request) { panic("boom") }))
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
}
