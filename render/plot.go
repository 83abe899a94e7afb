package render

import (
	"bytes"
	"fmt"
	"image"
	"image/color"
	"image/draw"
	"image/png"

	chart "github.com/wcharczuk/go-chart/v2"
	"github.com/wcharczuk/go-chart/v2/drawing"
	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/fixed"

	"github.com/njchilds90/funcstudy"
	"github.com/njchilds90/funcstudy/cas"
)

const (
	PlotWidth  = 700
	PlotHeight = 400
)

var (
	curveColor = drawing.ColorFromHex("1f77b4")
	axisColor  = drawing.ColorBlack
	gridColor  = drawing.ColorFromHex("b0b0b0")
)

// Plot draws the sampled function as a PNG. Undefined samples leave gaps in
// the curve; the lines x = 0 and y = 0 are drawn in black over a dashed
// grid.
func Plot(g *funcstudy.Grid, title string) ([]byte, error) {
	w, err := viewOf(g)
	if err != nil {
		return nil, err
	}
	z := float64(g.Zoom)

	curve := chart.Style{StrokeColor: curveColor, StrokeWidth: 2}
	axis := chart.Style{StrokeColor: axisColor, StrokeWidth: 1}
	series := []chart.Series{
		chart.ContinuousSeries{Name: "x = 0", XValues: []float64{0, 0}, YValues: []float64{w.lo, w.hi}, Style: axis},
	}
	if w.side(0) == 0 {
		series = append(series, chart.ContinuousSeries{Name: "y = 0", XValues: []float64{-z, z}, YValues: []float64{0, 0}, Style: axis})
	}
	for i, seg := range segments(g, w) {
		series = append(series, chart.ContinuousSeries{
			Name:    fmt.Sprintf("f#%d", i),
			XValues: seg[0],
			YValues: seg[1],
			Style:   curve,
		})
	}

	grid := chart.Style{StrokeColor: gridColor, StrokeWidth: 0.6, StrokeDashArray: []float64{4, 3}}
	xTicks, xLines := axisTicks(ticksFor(-z, z, 10))
	yTicks, yLines := axisTicks(ticksFor(w.lo, w.hi, 8))
	ch := chart.Chart{
		Title:      title,
		Width:      PlotWidth,
		Height:     PlotHeight,
		Background: chart.Style{Padding: chart.Box{Top: 40, Left: 16, Right: 16, Bottom: 16}},
		XAxis: chart.XAxis{
			Range:          &chart.ContinuousRange{Min: -z, Max: z},
			Ticks:          xTicks,
			GridLines:      xLines,
			GridMajorStyle: grid,
		},
		YAxis: chart.YAxis{
			Range:          &chart.ContinuousRange{Min: w.lo, Max: w.hi},
			Ticks:          yTicks,
			GridLines:      yLines,
			GridMajorStyle: grid,
		},
		Series: series,
	}
	var buf bytes.Buffer
	if err := ch.Render(chart.PNG, &buf); err != nil {
		return nil, fmt.Errorf("render plot: %w", err)
	}
	return caption(buf.Bytes(), captionText(g))
}

func axisTicks(vs []float64) ([]chart.Tick, []chart.GridLine) {
	ticks := make([]chart.Tick, len(vs))
	lines := make([]chart.GridLine, len(vs))
	for i, v := range vs {
		ticks[i] = chart.Tick{Value: v, Label: cas.FormatNumber(v)}
		lines[i] = chart.GridLine{Value: v}
	}
	return ticks, lines
}

func captionText(g *funcstudy.Grid) string {
	s := fmt.Sprintf("x in [-%d, %d], %d samples", g.Zoom, g.Zoom, len(g.X))
	if missing := len(g.Y) - g.Defined(); missing > 0 {
		s += fmt.Sprintf(", %d undefined", missing)
	}
	return s
}

// caption stamps a one-line note in the bottom left corner of a PNG.
func caption(pngBytes []byte, text string) ([]byte, error) {
	img, err := png.Decode(bytes.NewReader(pngBytes))
	if err != nil {
		return nil, fmt.Errorf("decode plot: %w", err)
	}
	b := img.Bounds()
	rgba := image.NewRGBA(b)
	draw.Draw(rgba, b, img, b.Min, draw.Src)

	face := basicfont.Face7x13
	dr := &font.Drawer{Dst: rgba, Src: image.NewUniform(color.RGBA{R: 80, G: 80, B: 80, A: 255}), Face: face}
	dr.Dot = fixed.Point26_6{X: fixed.I(b.Min.X + 8), Y: fixed.I(b.Min.Y + 8 + face.Metrics().Ascent.Ceil())}
	dr.DrawString(text)

	var out bytes.Buffer
	if err := png.Encode(&out, rgba); err != nil {
		return nil, fmt.Errorf("encode plot: %w", err)
	}
	return out.Bytes(), nil
}
