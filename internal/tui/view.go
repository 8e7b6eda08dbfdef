package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/rgehrsitz/finrechner/internal/domain"
	"github.com/rgehrsitz/finrechner/internal/output"
	"github.com/rgehrsitz/finrechner/internal/tui/components"
	"github.com/rgehrsitz/finrechner/internal/tui/tuistyles"
)

// chartLabels are the selected paths drawn in the chart, in drawing order
var chartLabels = []string{"worst", "p50", "best"}

// View renders the current state of the application
func (m Model) View() string {
	var content string
	switch {
	case m.running:
		content = m.renderRunning()
	case m.err != nil:
		content = m.renderError()
	case m.result != nil:
		content = m.renderResult()
	case m.cancelled:
		content = InfoStyle.Render("Simulation abgebrochen.")
	default:
		content = InfoStyle.Render("Bereit.")
	}

	return AppStyle.Render(lipgloss.JoinVertical(
		lipgloss.Left,
		m.renderTitleBar(),
		"",
		content,
		"",
		StatusBarStyle.Render(m.help.View(m.keys)),
	))
}

func (m Model) renderTitleBar() string {
	title := TitleStyle.Render("Monte-Carlo-Simulation")
	info := SubtitleStyle.Render(fmt.Sprintf("  %d Simulationen über %d Jahre · Lauf %d",
		m.params.Simulations, m.params.Years, m.generation))
	return title + info
}

func (m Model) renderRunning() string {
	bar := components.NewProgressBar(m.progress).
		WithLabel("Fortschritt").
		WithWidth(max(20, min(60, m.width-30)))
	return m.spinner.View() + " Simuliere...\n\n" + bar.Render()
}

func (m Model) renderError() string {
	return ErrorStyle.Render("Fehler: " + m.err.Error())
}

func (m Model) renderResult() string {
	r := m.result
	sections := []string{
		m.renderChart(r),
		m.renderCards(r),
		m.renderMetrics(r),
	}
	if m.cancelled {
		sections = append(sections, InfoStyle.Render("Letzter Lauf abgebrochen, angezeigt wird das vorherige Ergebnis."))
	}
	return strings.Join(sections, "\n\n")
}

func (m Model) renderChart(r *domain.MonteCarloResult) string {
	chart := components.NewASCIIChart("Ausgewählte Pfade").
		WithSize(max(30, m.width-4), max(8, m.height/3)).
		WithXAxisLabel("Jahre")

	for i, path := range chartPaths(r.SelectedPaths) {
		values := make([]float64, len(path.Points))
		for j, p := range path.Points {
			values[j] = p.Y
		}
		color := tuistyles.ChartColors[i%len(tuistyles.ChartColors)]
		chart.AddSeries(output.PathLabel(path.Label), values, color)
	}
	return chart.WithLabels(yearLabels(r.Years)).Render()
}

// chartPaths picks the paths named in chartLabels, falling back to the first
// selected paths when a label is missing
func chartPaths(paths []domain.MonteCarloPath) []domain.MonteCarloPath {
	byLabel := make(map[string]domain.MonteCarloPath, len(paths))
	for _, p := range paths {
		if _, seen := byLabel[p.Label]; !seen {
			byLabel[p.Label] = p
		}
	}

	var picked []domain.MonteCarloPath
	for _, label := range chartLabels {
		if p, ok := byLabel[label]; ok {
			picked = append(picked, p)
		}
	}
	if len(picked) == 0 {
		n := min(len(paths), len(chartLabels))
		picked = append(picked, paths[:n]...)
	}
	return picked
}

func yearLabels(years int) []string {
	if years <= 0 {
		return nil
	}
	step := 1
	if years > 10 {
		step = (years + 9) / 10
	}
	var labels []string
	for y := 0; y <= years; y += step {
		labels = append(labels, fmt.Sprintf("%d", y))
	}
	return labels
}

func (m Model) renderCards(r *domain.MonteCarloResult) string {
	paid := r.TotalContributions
	cards := []*components.MetricCard{
		components.NewMetricCard("Median", r.OverallStats.Median).WithReference(paid),
		components.NewMetricCard("10. Perzentil", r.OverallStats.P10).WithReference(paid),
		components.NewMetricCard("90. Perzentil", r.OverallStats.P90).WithReference(paid),
		components.NewMetricCard("Eingezahlt", paid),
	}
	columns := 4
	if m.width < 110 {
		columns = 2
	}
	return components.MetricGrid(cards, columns)
}

func (m Model) renderMetrics(r *domain.MonteCarloResult) string {
	var b strings.Builder
	b.WriteString(TableHeaderStyle.Render(fmt.Sprintf("%-14s %14s %14s %10s", "Perzentil", "Max. Drawdown", "Rendite p.a.", "Sharpe")))
	b.WriteString("\n")
	for _, level := range domain.PercentileLevels {
		metrics, ok := r.PercentileMetrics[level]
		if !ok {
			continue
		}
		row := fmt.Sprintf("%-14s %14s %14s %10.2f",
			fmt.Sprintf("%d.", level),
			output.FormatPercentage(metrics.MaxDrawdown),
			output.FormatPercentage(metrics.AvgAnnualReturn),
			metrics.SharpeRatio)
		b.WriteString(TableCellStyle.Render(row))
		b.WriteString("\n")
	}
	b.WriteString(SubtitleStyle.Render(fmt.Sprintf("Portfolio: Drift %s, Volatilität %s · Seed %d",
		output.FormatPercentage(r.Portfolio.Drift),
		output.FormatPercentage(r.Portfolio.Volatility),
		r.Seed)))
	return b.String()
}
