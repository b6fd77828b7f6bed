package stats

import (
	"fmt"
	"io"
	"math"
	"os"
	"strings"

	"github.com/mattn/go-runewidth"
	"golang.org/x/term"
)

// Series represents a named data series for plotting.
type Series struct {
	Name   string
	Values []float64
}

const (
	defaultPlotHeight   = 10
	minPlotWidth        = 10
	terminalWidthBackup = 80
	axisLabelTop        = "max"
	axisLabelMid        = "mid"
	axisLabelBottom     = "min"
	axisSeparator       = " │ "
	scaleNote           = "Scaled per series; see min/max below."
	colorReset          = "\x1b[0m"
)

var seriesMarks = []rune{'●', '+', 'x', 'o'}

var seriesColors = []string{"\x1b[36m", "\x1b[35m", "\x1b[33m", "\x1b[32m"}

// PlotSeries renders a multi-line text plot for the provided series.
func PlotSeries(w io.Writer, title string, series []Series, width, height int) error {
	return PlotSeriesWithColor(w, title, series, width, height, false)
}

// PlotSeriesWithColor renders a plot, coloring each series when useColor is set.
// Later series draw over earlier ones where points coincide.
func PlotSeriesWithColor(w io.Writer, title string, series []Series, width, height int, useColor bool) error {
	var kept []Series
	for _, s := range series {
		if len(s.Values) > 0 {
			kept = append(kept, s)
		}
	}
	if len(kept) == 0 {
		return nil
	}
	if height <= 0 {
		height = defaultPlotHeight
	}
	if width <= 0 {
		width = autoPlotWidth()
	}
	width = max(width, minPlotWidth)

	grid := make([][]int, height)
	for y := range grid {
		grid[y] = make([]int, width)
		for x := range grid[y] {
			grid[y][x] = -1
		}
	}
	legend := make([]string, 0, len(kept))
	for si, s := range kept {
		values := resample(s.Values, width)
		lo, hi := minMax(s.Values)
		span := hi - lo
		for x, v := range values {
			row := height / 2
			if span > 1e-9 {
				row = int(math.Round((hi - v) / span * float64(height-1)))
			}
			grid[max(0, min(row, height-1))][x] = si
		}
		legend = append(legend, fmt.Sprintf("%s %s (min %.1f, max %.1f)",
			paint(string(seriesMarks[si%len(seriesMarks)]), si, useColor), s.Name, lo, hi))
	}

	labelWidth := max(runewidth.StringWidth(axisLabelTop), runewidth.StringWidth(axisLabelBottom))
	lines := []string{title, scaleNote}
	for y, row := range grid {
		label := ""
		switch y {
		case 0:
			label = axisLabelTop
		case height / 2:
			label = axisLabelMid
		case height - 1:
			label = axisLabelBottom
		}
		var b strings.Builder
		b.WriteString(runewidth.FillLeft(label, labelWidth))
		b.WriteString(axisSeparator)
		for _, si := range row {
			if si < 0 {
				b.WriteByte(' ')
				continue
			}
			b.WriteString(paint(string(seriesMarks[si%len(seriesMarks)]), si, useColor))
		}
		lines = append(lines, strings.TrimRight(b.String(), " "))
	}
	lines = append(lines, "Legend: "+strings.Join(legend, "  "), "")
	for _, line := range lines {
		if _, err := fmt.Fprintln(w, line); err != nil {
			return err
		}
	}
	return nil
}

// PlotWidthFor returns the plot area width that fits in totalWidth columns.
func PlotWidthFor(totalWidth int) int {
	axis := max(runewidth.StringWidth(axisLabelTop), runewidth.StringWidth(axisLabelBottom)) +
		runewidth.StringWidth(axisSeparator)
	return max(totalWidth-axis, minPlotWidth)
}

func autoPlotWidth() int {
	width, _, err := term.GetSize(int(os.Stdout.Fd()))
	if err != nil || width <= 0 {
		width = terminalWidthBackup
	}
	return PlotWidthFor(width)
}

// resample stretches or shrinks values to n points with linear interpolation.
func resample(values []float64, n int) []float64 {
	out := make([]float64, n)
	if len(values) == 1 || n == 1 {
		for i := range out {
			out[i] = values[len(values)-1]
		}
		return out
	}
	step := float64(len(values)-1) / float64(n-1)
	for i := range out {
		pos := float64(i) * step
		lo := int(pos)
		if lo >= len(values)-1 {
			out[i] = values[len(values)-1]
			continue
		}
		frac := pos - float64(lo)
		out[i] = values[lo]*(1-frac) + values[lo+1]*frac
	}
	return out
}

func paint(s string, idx int, useColor bool) string {
	if !useColor {
		return s
	}
	return seriesColors[idx%len(seriesColors)] + s + colorReset
}
