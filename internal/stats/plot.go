package stats

import (
	"fmt"
	"io"
	"math"
	"os"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-runewidth"
	"golang.org/x/term"
)

// Series represents a named data series for plotting.
type Series struct {
	Name   string
	Values []float64
}

const (
	defaultPlotHeight = 8
	minPlotWidth      = 10
	fallbackTermWidth = 80
	axisSeparator     = " | "
)

var axisLabels = [3]string{"100%", "50%", "0%"}

var seriesColors = []lipgloss.Color{"6", "5", "3", "2"}

// PlotPercent renders series on a fixed 0-100 scale using braille dots.
// Each terminal cell holds 2x4 dots.
func PlotPercent(w io.Writer, title string, series []Series, width, height int, useColor bool) error {
	var plotted []Series
	for _, s := range series {
		if len(s.Values) > 0 {
			plotted = append(plotted, s)
		}
	}
	if len(plotted) == 0 {
		return nil
	}
	if height <= 0 {
		height = defaultPlotHeight
	}
	if width <= 0 {
		width = PlotWidthFor(TerminalWidth())
	}
	width = max(width, minPlotWidth)
	useColor = useColor && colorAllowed(w)

	layers := make([]*canvas, len(plotted))
	for i, s := range plotted {
		layers[i] = newCanvas(width, height)
		layers[i].polyline(resample(s.Values, width*2))
	}

	if title != "" {
		if _, err := fmt.Fprintln(w, title); err != nil {
			return err
		}
	}
	labelWidth := runewidth.StringWidth(axisLabels[0])
	for y := 0; y < height; y++ {
		var row strings.Builder
		row.WriteString(runewidth.FillLeft(axisLabel(y, height), labelWidth))
		row.WriteString(axisSeparator)
		for x := 0; x < width; x++ {
			var mask uint8
			owner := -1
			for i, layer := range layers {
				if m := layer.cells[y][x]; m != 0 {
					mask |= m
					if owner < 0 {
						owner = i
					}
				}
			}
			cell := string(rune(0x2800 + int(mask)))
			if useColor && owner >= 0 {
				cell = colorize(cell, owner)
			}
			row.WriteString(cell)
		}
		if _, err := fmt.Fprintln(w, row.String()); err != nil {
			return err
		}
	}

	legend := make([]string, len(plotted))
	for i, s := range plotted {
		last := s.Values[len(s.Values)-1]
		label := fmt.Sprintf("%c %s (last %.1f%%)", rune(0x28FF), s.Name, last)
		if useColor {
			label = colorize(label, i)
		}
		legend[i] = label
	}
	_, err := fmt.Fprintf(w, "Legend: %s\n\n", strings.Join(legend, "  "))
	return err
}

// PlotWidthFor computes a plot width that fits within the total available width.
func PlotWidthFor(totalWidth int) int {
	axis := runewidth.StringWidth(axisLabels[0]) + runewidth.StringWidth(axisSeparator)
	return max(totalWidth-axis, minPlotWidth)
}

// TerminalWidth returns the width of stdout, or a fallback when it is not a terminal.
func TerminalWidth() int {
	width, _, err := term.GetSize(int(os.Stdout.Fd()))
	if err != nil || width <= 0 {
		return fallbackTermWidth
	}
	return width
}

// StdoutIsTerminal reports whether stdout is attached to a terminal.
func StdoutIsTerminal() bool {
	return term.IsTerminal(int(os.Stdout.Fd()))
}

func colorAllowed(w io.Writer) bool {
	if os.Getenv("NO_COLOR") != "" {
		return false
	}
	file, ok := w.(*os.File)
	if !ok {
		return true
	}
	return term.IsTerminal(int(file.Fd()))
}

func colorize(s string, idx int) string {
	return lipgloss.NewStyle().Foreground(seriesColors[idx%len(seriesColors)]).Render(s)
}

func axisLabel(row, height int) string {
	switch {
	case row == 0:
		return axisLabels[0]
	case row == height-1:
		return axisLabels[2]
	case height > 2 && row == height/2:
		return axisLabels[1]
	default:
		return ""
	}
}

// canvas is a grid of braille cells addressed in dot coordinates.
type canvas struct {
	cells [][]uint8
	dotsW int
	dotsH int
}

func newCanvas(width, height int) *canvas {
	cells := make([][]uint8, height)
	for y := range cells {
		cells[y] = make([]uint8, width)
	}
	return &canvas{cells: cells, dotsW: width * 2, dotsH: height * 4}
}

// braille dot bits indexed by [column][row] inside one cell.
var dotBits = [2][4]uint8{
	{0x01, 0x02, 0x04, 0x40},
	{0x08, 0x10, 0x20, 0x80},
}

func (c *canvas) set(x, y int) {
	if x < 0 || y < 0 || x >= c.dotsW || y >= c.dotsH {
		return
	}
	c.cells[y/4][x/2] |= dotBits[x%2][y%4]
}

// percentRow maps a 0-100 value to a dot row, 0 being the top.
func (c *canvas) percentRow(v float64) int {
	v = math.Min(math.Max(v, 0), 100)
	return int(math.Round((1 - v/100) * float64(c.dotsH-1)))
}

func (c *canvas) polyline(values []float64) {
	prevX, prevY := -1, -1
	for x, v := range values {
		y := c.percentRow(v)
		if prevX < 0 {
			c.set(x, y)
		} else {
			c.line(prevX, prevY, x, y)
		}
		prevX, prevY = x, y
	}
}

// line draws between two dots with Bresenham's algorithm.
func (c *canvas) line(x0, y0, x1, y1 int) {
	dx := abs(x1 - x0)
	dy := -abs(y1 - y0)
	sx, sy := 1, 1
	if x0 > x1 {
		sx = -1
	}
	if y0 > y1 {
		sy = -1
	}
	e := dx + dy
	for {
		c.set(x0, y0)
		if x0 == x1 && y0 == y1 {
			return
		}
		e2 := 2 * e
		if e2 >= dy {
			e += dy
			x0 += sx
		}
		if e2 <= dx {
			e += dx
			y0 += sy
		}
	}
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}

// resample stretches or averages values to exactly n points.
func resample(values []float64, n int) []float64 {
	if n <= 0 || len(values) == 0 {
		return nil
	}
	out := make([]float64, n)
	switch {
	case len(values) == 1 || n == 1:
		for i := range out {
			out[i] = values[0]
		}
	case len(values) > n:
		for i := range out {
			start := i * len(values) / n
			end := max((i+1)*len(values)/n, start+1)
			var sum float64
			for _, v := range values[start:end] {
				sum += v
			}
			out[i] = sum / float64(end-start)
		}
	default:
		for i := range out {
			pos := float64(i) * float64(len(values)-1) / float64(n-1)
			idx := int(pos)
			if idx >= len(values)-1 {
				out[i] = values[len(values)-1]
				continue
			}
			frac := pos - float64(idx)
			out[i] = values[idx]*(1-frac) + values[idx+1]*frac
		}
	}
	return out
}
