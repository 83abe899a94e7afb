package cli

import (
	"bytes"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/njchilds90/funcstudy/config"
	"github.com/njchilds90/funcstudy/render"
)

func TestRootCommand(t *testing.T) {
	cmd := NewRootCommand()
	require.NotNil(t, cmd)
	assert.Equal(t, "funcstudy", cmd.Use)
	assert.Contains(t, cmd.Long, "variation table")
}

func TestCommandPresence(t *testing.T) {
	cmd := NewRootCommand()
	for _, name := range []string{"serve", "study", "tui"} {
		t.Run(name, func(t *testing.T) {
			sub, _, err := cmd.Find([]string{name})
			require.NoError(t, err, "Command %s should exist", name)
			require.NotNil(t, sub)
			assert.Equal(t, name, sub.Name())
		})
	}
}

func TestGlobalFlags(t *testing.T) {
	cmd := NewRootCommand()

	verbose := cmd.PersistentFlags().Lookup("verbose")
	require.NotNil(t, verbose)
	assert.Equal(t, "v", verbose.Shorthand)
	assert.Equal(t, "false", verbose.DefValue)

	cfg := cmd.PersistentFlags().Lookup("config")
	require.NotNil(t, cfg)
	assert.Equal(t, "c", cfg.Shorthand)

	require.NotNil(t, cmd.PersistentFlags().Lookup("log-format"))
}

func TestStudyCommandFlags(t *testing.T) {
	cmd := NewRootCommand()
	studyCmd, _, err := cmd.Find([]string{"study"})
	require.NoError(t, err)

	zoom := studyCmd.Flags().Lookup("zoom")
	require.NotNil(t, zoom)
	assert.Equal(t, "z", zoom.Shorthand)
	assert.Equal(t, "0", zoom.DefValue)

	format := studyCmd.Flags().Lookup("format")
	require.NotNil(t, format)
	assert.Equal(t, "text", format.DefValue)

	for _, name := range []string{"plot-only", "ascii", "pdf", "png"} {
		assert.NotNil(t, studyCmd.Flags().Lookup(name), name)
	}
}

func TestServeCommandFlags(t *testing.T) {
	cmd := NewRootCommand()
	serveCmd, _, err := cmd.Find([]string{"serve"})
	require.NoError(t, err)

	addr := serveCmd.Flags().Lookup("addr")
	require.NotNil(t, addr)
	assert.Equal(t, "", addr.DefValue)
}

func newStudy(t *testing.T, args ...string) (*bytes.Buffer, error) {
	t.Helper()
	buf := &bytes.Buffer{}
	cmd := NewStudyCommand(&RootOptions{Config: config.Default()})
	cmd.SetOut(buf)
	cmd.SetErr(&bytes.Buffer{})
	cmd.SetArgs(args)
	return buf, cmd.Execute()
}

func TestStudyText(t *testing.T) {
	buf, err := newStudy(t, "x**3 - 3*x")
	require.NoError(t, err)

	out := buf.String()
	assert.Contains(t, out, "Function: f(x) = x**3 - 3*x")
	assert.Contains(t, out, "Critical points: [-1.0, 1.0]")
	assert.Contains(t, out, "Variation table")
	assert.Contains(t, out, "↘")
	assert.Contains(t, out, "1000 of 1000 samples defined")
}

func TestStudyPlotOnlyASCII(t *testing.T) {
	buf, err := newStudy(t, "sin(x)", "--plot-only", "--ascii", "--zoom", "5")
	require.NoError(t, err)

	out := buf.String()
	assert.NotContains(t, out, "Variation table")
	assert.Contains(t, out, "on [-5, 5]")
	assert.Contains(t, out, "*")
}

func TestStudyJSON(t *testing.T) {
	buf, err := newStudy(t, "1/x", "--format", "json")
	require.NoError(t, err)

	var doc render.Document
	require.NoError(t, json.Unmarshal(buf.Bytes(), &doc))
	assert.Equal(t, "1/x", doc.Expr)
	assert.Equal(t, 10, doc.Zoom)
	require.NotNil(t, doc.Study)
	assert.Empty(t, doc.Error)
	assert.NotEmpty(t, doc.Study.Asymptotes)
}

func TestStudyParseErrorExitCode(t *testing.T) {
	buf, err := newStudy(t, "x+++")
	require.Error(t, err)
	assert.Equal(t, ExitFailure, GetExitCode(err))
	assert.Empty(t, buf.String())
}

func TestStudyParseErrorJSONCarriesMessage(t *testing.T) {
	buf, err := newStudy(t, "x+++", "--format", "json")
	require.Error(t, err)

	var doc render.Document
	require.NoError(t, json.Unmarshal(buf.Bytes(), &doc))
	assert.NotEmpty(t, doc.Error)
	assert.Nil(t, doc.Study)
}

func TestStudyBlankExpression(t *testing.T) {
	for _, args := range [][]string{
		{""},
		{"   ", "--format", "json"},
		{"", "--pdf", t.TempDir()},
		{"", "--plot-only", "--png", filepath.Join(t.TempDir(), "plot.png")},
	} {
		buf, err := newStudy(t, args...)
		require.Error(t, err, "%q", args)
		assert.Equal(t, ExitFailure, GetExitCode(err))
		assert.Contains(t, err.Error(), "missing expression")
		assert.Empty(t, buf.String())
	}
}

func TestStudyInvalidFormat(t *testing.T) {
	_, err := newStudy(t, "x", "--format", "xml")
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
}

func TestStudyZoomOutOfRange(t *testing.T) {
	_, err := newStudy(t, "x", "--zoom", "51")
	require.Error(t, err)
	assert.Equal(t, ExitFailure, GetExitCode(err))
}

func TestStudyPDFIntoDirectory(t *testing.T) {
	dir := t.TempDir()
	_, err := newStudy(t, "x**2", "--pdf", dir)
	require.NoError(t, err)

	data, err := os.ReadFile(filepath.Join(dir, render.PDFFileName))
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(data, []byte("%PDF-")))
}

func TestStudyPNG(t *testing.T) {
	path := filepath.Join(t.TempDir(), "plot.png")
	_, err := newStudy(t, "x**2", "--plot-only", "--png", path)
	require.NoError(t, err)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(data, []byte("\x89PNG")))
}

func TestStudyPDFNeedsFullStudy(t *testing.T) {
	_, err := newStudy(t, "x", "--plot-only", "--pdf", t.TempDir())
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
}

func TestRootLoadsConfig(t *testing.T) {
	path := filepath.Join(t.TempDir(), "funcstudy.yaml")
	require.NoError(t, os.WriteFile(path, []byte("study:\n  default_zoom: 4\n"), 0o644))

	buf := &bytes.Buffer{}
	cmd := NewRootCommand()
	cmd.SetOut(buf)
	cmd.SetErr(&bytes.Buffer{})
	cmd.SetArgs([]string{"--config", path, "study", "x", "--format", "json"})
	require.NoError(t, cmd.Execute())

	var doc render.Document
	require.NoError(t, json.Unmarshal(buf.Bytes(), &doc))
	assert.Equal(t, 4, doc.Zoom)
}

func TestRootRejectsLogFormat(t *testing.T) {
	cmd := NewRootCommand()
	cmd.SetOut(&bytes.Buffer{})
	cmd.SetErr(&bytes.Buffer{})
	cmd.SetArgs([]string{"--log-format", "xml", "study", "x"})
	err := cmd.Execute()
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
}

func TestExitError(t *testing.T) {
	inner := errors.New("boom")
	err := WrapExitError(ExitFailure, "study failed", inner)
	assert.Equal(t, "study failed: boom", err.Error())
	assert.ErrorIs(t, err, inner)
	assert.Equal(t, ExitSuccess, GetExitCode(nil))
	assert.Equal(t, ExitFailure, GetExitCode(errors.New("plain")))
	assert.Equal(t, ExitCommandError, GetExitCode(NewExitError(ExitCommandError, "bad flag")))
}
