package tui

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/njchilds90/funcstudy"
	"github.com/njchilds90/funcstudy/config"
	"github.com/njchilds90/funcstudy/render"
)

type countingAnalyzer struct {
	calls int
	err   error
}

func (a *countingAnalyzer) Analyze(fn funcstudy.Function, zoom int) (*funcstudy.Report, error) {
	a.calls++
	if a.err != nil {
		return nil, a.err
	}
	return funcstudy.Analyze(fn, zoom, funcstudy.DefaultOptions())
}

func key(k tea.KeyType) tea.KeyMsg { return tea.KeyMsg{Type: k} }

// press sends msg and runs the returned command once, feeding its message
// back like the program loop would.
func press(t *testing.T, m Model, msg tea.Msg) Model {
	t.Helper()
	next, cmd := m.Update(msg)
	m = next.(Model)
	if cmd != nil {
		if out, ok := cmd().(resultMsg); ok {
			next, _ = m.Update(out)
			m = next.(Model)
		}
	}
	return m
}

func newModel(t *testing.T, a funcstudy.Analyzer, expr string) Model {
	t.Helper()
	return New(config.Default(), a, expr, t.TempDir())
}

func TestEnterRunsFullStudy(t *testing.T) {
	a := &countingAnalyzer{}
	m := press(t, newModel(t, a, "x**3 - 3*x"), key(tea.KeyEnter))

	require.NotNil(t, m.Result())
	require.NoError(t, m.Result().Err)
	require.NotNil(t, m.Result().Study)
	assert.Equal(t, 1, a.calls)
	assert.Contains(t, m.View(), "Critical points")
}

func TestCtrlPPlotsWithoutStudy(t *testing.T) {
	a := &countingAnalyzer{}
	m := press(t, newModel(t, a, "sin(x)"), key(tea.KeyCtrlP))

	require.NotNil(t, m.Result())
	assert.Nil(t, m.Result().Study)
	require.NotNil(t, m.Result().Plot)
	assert.Len(t, m.Result().Plot.X, funcstudy.SamplePoints)
	assert.Zero(t, a.calls)
}

func TestZoomStepsAndReruns(t *testing.T) {
	m := newModel(t, nil, "x**2")
	m = press(t, m, key(tea.KeyCtrlP))
	require.Equal(t, funcstudy.DefaultZoom, m.Result().Plot.Zoom)

	m = press(t, m, key(tea.KeyUp))
	assert.Equal(t, funcstudy.DefaultZoom+1, m.Zoom())
	assert.Equal(t, funcstudy.DefaultZoom+1, m.Result().Plot.Zoom)

	m = press(t, m, key(tea.KeyDown))
	m = press(t, m, key(tea.KeyDown))
	assert.Equal(t, funcstudy.DefaultZoom-1, m.Result().Plot.Zoom)
}

func TestZoomStaysInRange(t *testing.T) {
	cfg := config.Default()
	cfg.Study.DefaultZoom = funcstudy.MinZoom
	m := New(cfg, nil, "", t.TempDir())
	m = press(t, m, key(tea.KeyDown))
	assert.Equal(t, funcstudy.MinZoom, m.Zoom())

	cfg.Study.DefaultZoom = funcstudy.MaxZoom
	m = New(cfg, nil, "", t.TempDir())
	m = press(t, m, key(tea.KeyUp))
	assert.Equal(t, funcstudy.MaxZoom, m.Zoom())
}

func TestZoomWithoutResultDoesNotRun(t *testing.T) {
	a := &countingAnalyzer{}
	m := newModel(t, a, "x")
	_, cmd := m.Update(key(tea.KeyUp))
	assert.Nil(t, cmd)
	assert.Zero(t, a.calls)
}

func TestParseErrorShownAsSingleLine(t *testing.T) {
	m := press(t, newModel(t, nil, "x+++"), key(tea.KeyEnter))

	require.Error(t, m.Result().Err)
	assert.Contains(t, m.View(), "Error: ")
	assert.NotContains(t, m.View(), "Critical points")
}

func TestAnalyzerErrorClearsPreviousResults(t *testing.T) {
	a := &countingAnalyzer{}
	m := press(t, newModel(t, a, "x**2"), key(tea.KeyEnter))
	require.NotNil(t, m.Result().Study)

	a.err = errors.New("boom")
	m = press(t, m, key(tea.KeyEnter))
	assert.Nil(t, m.Result().Study)
	assert.Contains(t, m.View(), "Error: boom")
}

func TestExportPDF(t *testing.T) {
	dir := t.TempDir()
	m := New(config.Default(), nil, "x**2", dir)

	m = press(t, m, key(tea.KeyCtrlS))
	assert.Contains(t, m.Status(), "Nothing to export")

	m = press(t, m, key(tea.KeyEnter))
	m = press(t, m, key(tea.KeyCtrlS))
	path := filepath.Join(dir, render.PDFFileName)
	assert.Equal(t, "Saved "+path, m.Status())

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "%PDF-", string(data[:5]))
}

func TestQuitKeys(t *testing.T) {
	for _, k := range []tea.KeyType{tea.KeyEsc, tea.KeyCtrlC} {
		_, cmd := newModel(t, nil, "").Update(key(k))
		require.NotNil(t, cmd)
		assert.IsType(t, tea.QuitMsg{}, cmd())
	}
}

func TestTypingEditsInput(t *testing.T) {
	m := newModel(t, nil, "")
	next, _ := m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("x")})
	m = press(t, next.(Model), key(tea.KeyEnter))
	require.NotNil(t, m.Result())
	assert.Equal(t, "x", m.Result().Request.Expr)
}
