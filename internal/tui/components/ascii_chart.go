package components

import (
	"fmt"
	"math"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/rgehrsitz/finrechner/internal/tui/tuistyles"
)

const yAxisWidth = 12

// DataSeries represents a single line in a chart
type DataSeries struct {
	Name   string
	Points []float64
	Color  lipgloss.Color
}

// ASCIIChart draws line series on a character grid
type ASCIIChart struct {
	Title      string
	Series     []*DataSeries
	Labels     []string // X-axis labels, spread evenly
	Width      int
	Height     int
	ShowLegend bool
	XAxisLabel string
}

// NewASCIIChart creates a new ASCII chart
func NewASCIIChart(title string) *ASCIIChart {
	return &ASCIIChart{
		Title:      title,
		Width:      72,
		Height:     15,
		ShowLegend: true,
	}
}

// AddSeries adds a data series to the chart
func (c *ASCIIChart) AddSeries(name string, points []float64, color lipgloss.Color) *ASCIIChart {
	c.Series = append(c.Series, &DataSeries{
		Name:   name,
		Points: points,
		Color:  color,
	})
	return c
}

// WithLabels sets the X-axis labels
func (c *ASCIIChart) WithLabels(labels []string) *ASCIIChart {
	c.Labels = labels
	return c
}

// WithSize sets the chart dimensions
func (c *ASCIIChart) WithSize(width, height int) *ASCIIChart {
	c.Width = width
	c.Height = height
	return c
}

// WithXAxisLabel sets the caption under the X axis
func (c *ASCIIChart) WithXAxisLabel(label string) *ASCIIChart {
	c.XAxisLabel = label
	return c
}

// Render returns the styled chart
func (c *ASCIIChart) Render() string {
	if !c.hasData() {
		return tuistyles.InfoStyle.Render("Keine Daten")
	}

	var content strings.Builder
	if c.Title != "" {
		titleStyle := lipgloss.NewStyle().
			Bold(true).
			Foreground(tuistyles.ColorPrimary)
		content.WriteString(titleStyle.Render(c.Title))
		content.WriteString("\n\n")
	}

	minVal, maxVal := c.bounds()
	content.WriteString(c.renderGrid(minVal, maxVal))

	if c.XAxisLabel != "" {
		labelStyle := lipgloss.NewStyle().
			Foreground(tuistyles.ColorMuted).
			Italic(true)
		content.WriteString("\n")
		content.WriteString(labelStyle.Render(c.XAxisLabel))
	}

	if c.ShowLegend && len(c.Series) > 1 {
		content.WriteString("\n\n")
		content.WriteString(c.renderLegend())
	}

	return content.String()
}

func (c *ASCIIChart) hasData() bool {
	for _, series := range c.Series {
		if len(series.Points) > 0 {
			return true
		}
	}
	return false
}

// bounds returns the padded value range across all series
func (c *ASCIIChart) bounds() (float64, float64) {
	lo, hi := math.Inf(1), math.Inf(-1)
	for _, series := range c.Series {
		for _, point := range series.Points {
			lo = math.Min(lo, point)
			hi = math.Max(hi, point)
		}
	}
	if hi == lo {
		// flat series still need a non-empty range
		pad := math.Max(math.Abs(hi)*0.1, 1)
		return lo - pad, hi + pad
	}
	padding := (hi - lo) * 0.1
	return lo - padding, hi + padding
}

// cell maps point i of n with value v onto grid coordinates
func (c *ASCIIChart) cell(i, n int, v, minVal, maxVal float64, chartWidth int) (int, int) {
	x := 0
	if n > 1 {
		x = int(float64(i) / float64(n-1) * float64(chartWidth-1))
	}
	y := c.Height - 1 - int((v-minVal)/(maxVal-minVal)*float64(c.Height-1))
	return x, y
}

func (c *ASCIIChart) renderGrid(minVal, maxVal float64) string {
	chartWidth := c.Width - yAxisWidth
	if chartWidth < 2 {
		chartWidth = 2
	}

	grid := make([][]rune, c.Height)
	colors := make([][]int, c.Height)
	for i := range grid {
		grid[i] = []rune(strings.Repeat(" ", chartWidth))
		colors[i] = make([]int, chartWidth)
	}

	for seriesIdx, series := range c.Series {
		char := seriesChar(seriesIdx)
		n := len(series.Points)
		prevX, prevY := 0, 0
		for i, point := range series.Points {
			x, y := c.cell(i, n, point, minVal, maxVal, chartWidth)
			if i > 0 {
				drawLine(grid, colors, prevX, prevY, x, y, char, seriesIdx)
			} else {
				plot(grid, colors, x, y, char, seriesIdx)
			}
			prevX, prevY = x, y
		}
	}

	var out strings.Builder
	yAxisStyle := lipgloss.NewStyle().
		Foreground(tuistyles.ColorMuted).
		Width(yAxisWidth).
		Align(lipgloss.Right)
	for i, row := range grid {
		yValue := maxVal - (float64(i)/float64(c.Height-1))*(maxVal-minVal)
		out.WriteString(yAxisStyle.Render(formatChartValue(yValue)))
		out.WriteString(" │ ")
		for j, r := range row {
			if r == ' ' {
				out.WriteRune(r)
				continue
			}
			style := lipgloss.NewStyle().Foreground(c.Series[colors[i][j]].Color)
			out.WriteString(style.Render(string(r)))
		}
		out.WriteString("\n")
	}

	out.WriteString(strings.Repeat(" ", yAxisWidth))
	out.WriteString(" └")
	out.WriteString(strings.Repeat("─", chartWidth))
	out.WriteString("\n")

	if len(c.Labels) > 0 {
		out.WriteString(c.renderXAxisLabels(chartWidth))
	}
	return out.String()
}

func plot(grid [][]rune, colors [][]int, x, y int, char rune, series int) {
	if y < 0 || y >= len(grid) || x < 0 || x >= len(grid[y]) {
		return
	}
	if grid[y][x] == ' ' {
		grid[y][x] = char
		colors[y][x] = series
	}
}

// drawLine connects two cells with Bresenham's algorithm
func drawLine(grid [][]rune, colors [][]int, x0, y0, x1, y1 int, char rune, series int) {
	dx := abs(x1 - x0)
	dy := abs(y1 - y0)
	sx, sy := -1, -1
	if x0 < x1 {
		sx = 1
	}
	if y0 < y1 {
		sy = 1
	}

	err := dx - dy
	x, y := x0, y0
	for {
		plot(grid, colors, x, y, char, series)
		if x == x1 && y == y1 {
			return
		}
		e2 := 2 * err
		if e2 > -dy {
			err -= dy
			x += sx
		}
		if e2 < dx {
			err += dx
			y += sy
		}
	}
}

// renderXAxisLabels places each label under its position on the axis
func (c *ASCIIChart) renderXAxisLabels(chartWidth int) string {
	line := []rune(strings.Repeat(" ", chartWidth+len(c.Labels[len(c.Labels)-1])))
	n := len(c.Labels)
	next := 0
	for i, label := range c.Labels {
		pos := 0
		if n > 1 {
			pos = int(float64(i) / float64(n-1) * float64(chartWidth-1))
		}
		if pos < next {
			continue
		}
		for j, r := range label {
			if pos+j < len(line) {
				line[pos+j] = r
			}
		}
		next = pos + len([]rune(label)) + 1
	}

	labelStyle := lipgloss.NewStyle().Foreground(tuistyles.ColorMuted)
	return strings.Repeat(" ", yAxisWidth+3) + labelStyle.Render(strings.TrimRight(string(line), " "))
}

func (c *ASCIIChart) renderLegend() string {
	items := make([]string, 0, len(c.Series))
	for i, series := range c.Series {
		symbol := lipgloss.NewStyle().Foreground(series.Color).Render(string(seriesChar(i)))
		name := lipgloss.NewStyle().Foreground(tuistyles.ColorForeground).Render(series.Name)
		items = append(items, fmt.Sprintf("%s %s", symbol, name))
	}
	return lipgloss.NewStyle().Foreground(tuistyles.ColorMuted).Render("Legende: " + strings.Join(items, " • "))
}

func seriesChar(index int) rune {
	chars := []rune{'●', '■', '▲', '♦'}
	return chars[index%len(chars)]
}

// formatChartValue abbreviates an axis value, e.g. "1,2 Mio €" or "350 Tsd €"
func formatChartValue(value float64) string {
	var s string
	switch {
	case math.Abs(value) >= 1_000_000:
		s = fmt.Sprintf("%.1f Mio €", value/1_000_000)
	case math.Abs(value) >= 1_000:
		s = fmt.Sprintf("%.0f Tsd €", value/1_000)
	default:
		s = fmt.Sprintf("%.0f €", value)
	}
	return strings.Replace(s, ".", ",", 1)
}

func abs(x int) int {
	if x < 0 {
		return -x
	}
	return x
}
