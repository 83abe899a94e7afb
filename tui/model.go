// Package tui is the terminal front end: one input line, two actions and a
// zoom, with the study drawn below.
package tui

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/njchilds90/funcstudy"
	"github.com/njchilds90/funcstudy/config"
	"github.com/njchilds90/funcstudy/render"
)

const (
	plotWidth  = 72
	plotHeight = 18
)

// resultMsg carries a finished run back into Update.
type resultMsg struct {
	res *funcstudy.Result
}

// Model represents the TUI application state.
type Model struct {
	input    textinput.Model
	analyzer funcstudy.Analyzer
	zoom     int
	outDir   string

	result  *funcstudy.Result
	last    funcstudy.Request
	running bool
	status  string

	width  int
	height int
}

// New builds the model for cfg. The PDF export is written to outDir.
func New(cfg config.Config, analyzer funcstudy.Analyzer, initial, outDir string) Model {
	ti := textinput.New()
	ti.Placeholder = "x**3 - 3*x"
	ti.Prompt = "f(x) = "
	ti.CharLimit = 256
	ti.Width = 50
	ti.SetValue(initial)
	ti.Focus()

	if analyzer == nil {
		analyzer = funcstudy.Pipeline{Options: cfg.Study.Options()}
	}
	zoom := cfg.Study.DefaultZoom
	if zoom == 0 {
		zoom = funcstudy.DefaultZoom
	}
	return Model{input: ti, analyzer: analyzer, zoom: zoom, outDir: outDir}
}

// Run starts the program on the alternate screen and blocks until it quits.
func Run(cfg config.Config, initial string) error {
	_, err := tea.NewProgram(New(cfg, nil, initial, "."), tea.WithAltScreen()).Run()
	return err
}

// Zoom is the current half-width of the plot window.
func (m Model) Zoom() int { return m.zoom }

// Result is the last finished run, nil before the first one.
func (m Model) Result() *funcstudy.Result { return m.result }

// Status is the transient line under the input.
func (m Model) Status() string { return m.status }

func (m Model) Init() tea.Cmd {
	return textinput.Blink
}

// run returns the command executing req off the update loop.
func (m Model) run(req funcstudy.Request) tea.Cmd {
	analyzer := m.analyzer
	return func() tea.Msg {
		return resultMsg{res: funcstudy.Run(req, analyzer)}
	}
}

func (m Model) request(study, plot bool) funcstudy.Request {
	return funcstudy.Request{Expr: m.input.Value(), Study: study, Plot: plot, Zoom: m.zoom}
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		return m, nil

	case resultMsg:
		m.running = false
		m.result = msg.res
		return m, nil

	case tea.KeyMsg:
		key := msg.String()
		m.status = ""

		switch key {
		case "ctrl+c", "esc":
			return m, tea.Quit
		case "enter":
			m.last = m.request(true, false)
			m.running = true
			return m, m.run(m.last)
		case "ctrl+p":
			m.last = m.request(false, true)
			m.running = true
			return m, m.run(m.last)
		case "up", "down":
			return m.changeZoom(key)
		case "ctrl+s":
			m.status = m.exportPDF()
			return m, nil
		}
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

// changeZoom steps the zoom and reruns the last action so the plot follows.
func (m Model) changeZoom(key string) (tea.Model, tea.Cmd) {
	z := m.zoom
	if key == "up" {
		z++
	} else {
		z--
	}
	if z < funcstudy.MinZoom || z > funcstudy.MaxZoom {
		return m, nil
	}
	m.zoom = z
	if m.result == nil || m.result.Empty() || m.result.Err != nil {
		return m, nil
	}
	m.last.Zoom = z
	m.running = true
	return m, m.run(m.last)
}

// exportPDF writes the current study and returns the status line.
func (m Model) exportPDF() string {
	if m.result == nil || m.result.Study == nil {
		return "Nothing to export: run the full study first"
	}
	doc, err := render.NewDocument(m.result, render.DocumentOptions{PDF: true})
	if err != nil {
		return "Export failed: " + err.Error()
	}
	path := filepath.Join(m.outDir, render.PDFFileName)
	if err := os.WriteFile(path, doc.Study.PDF, 0o644); err != nil {
		return "Export failed: " + err.Error()
	}
	return "Saved " + path
}

func (m Model) View() string {
	var b strings.Builder
	b.WriteString(titleStyle.Render("Function study"))
	b.WriteString("\n")
	b.WriteString(inputStyle.Render(m.input.View()))
	b.WriteString("\n")
	b.WriteString(labelStyle.Render(fmt.Sprintf("zoom %d", m.zoom)))
	b.WriteString(dimStyle.Render("   enter study · ctrl+p plot · ↑/↓ zoom · ctrl+s PDF · esc quit"))
	b.WriteString("\n")
	if m.running {
		b.WriteString(dimStyle.Render("working..."))
		b.WriteString("\n")
	}
	if m.status != "" {
		b.WriteString(statusStyle.Render(m.status))
		b.WriteString("\n")
	}
	b.WriteString(m.resultView())
	return b.String()
}

func (m Model) resultView() string {
	res := m.result
	if res == nil {
		return ""
	}
	if res.Err != nil {
		return errorStyle.Render(res.ErrorMessage())
	}
	var panels []string
	if r := res.Study; r != nil {
		text := render.SummaryText(r) + "\n" + render.VariationTable(r.Variation)
		panels = append(panels, resultStyle.Render(strings.TrimRight(text, "\n")))
	}
	g := res.Plot
	if g == nil && res.Study != nil {
		g = res.Study.Grid
	}
	if g != nil {
		plot, err := render.ASCIIPlot(g, plotWidth, plotHeight)
		if err != nil {
			panels = append(panels, errorStyle.Render("Error: "+err.Error()))
		} else {
			panels = append(panels, plotStyle.Render(plot))
		}
	}
	return lipgloss.JoinVertical(lipgloss.Left, panels...)
}
