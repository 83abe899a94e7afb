package render

import (
	"math"
	"strings"

	"github.com/njchilds90/funcstudy"
)

// ASCIIPlot draws the grid on a width x height character canvas for
// terminals. Axes are drawn with '|' and '-', the curve with '*'.
func ASCIIPlot(g *funcstudy.Grid, width, height int) (string, error) {
	if width < 2 || height < 2 {
		return "", nil
	}
	w, err := viewOf(g)
	if err != nil {
		return "", err
	}
	canvas := make([][]rune, height)
	for i := range canvas {
		canvas[i] = []rune(strings.Repeat(" ", width))
	}
	z := float64(g.Zoom)
	col := func(x float64) int { return int(math.Round((x + z) / (2 * z) * float64(width-1))) }
	row := func(y float64) int { return int(math.Round((w.hi - y) / (w.hi - w.lo) * float64(height-1))) }

	if w.side(0) == 0 {
		r := row(0)
		for c := range canvas[r] {
			canvas[r][c] = '-'
		}
	}
	c0 := col(0)
	for r := range canvas {
		if canvas[r][c0] == '-' {
			canvas[r][c0] = '+'
		} else {
			canvas[r][c0] = '|'
		}
	}
	for i, y := range g.Y {
		if !finite(y) || w.side(y) != 0 {
			continue
		}
		canvas[row(y)][col(g.X[i])] = '*'
	}

	lines := make([]string, height)
	for i, l := range canvas {
		lines[i] = string(l)
	}
	return strings.Join(lines, "\n"), nil
}
