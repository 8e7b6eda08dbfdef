package components

import (
	"fmt"

	"github.com/charmbracelet/lipgloss"
	"github.com/rgehrsitz/finrechner/internal/tui/tuistyles"
)

// MetricCard displays one amount with a label and an optional change against a reference
type MetricCard struct {
	Label  string
	Amount float64
	// Reference, when set, renders the difference Amount - *Reference as a trend
	Reference *float64
	Width     int
}

// NewMetricCard creates a new metric card
func NewMetricCard(label string, amount float64) *MetricCard {
	return &MetricCard{
		Label:  label,
		Amount: amount,
		Width:  24,
	}
}

// WithReference compares the amount against reference, e.g. the money paid in
func (m *MetricCard) WithReference(reference float64) *MetricCard {
	m.Reference = &reference
	return m
}

// WithWidth sets the card width
func (m *MetricCard) WithWidth(width int) *MetricCard {
	m.Width = width
	return m
}

func (m *MetricCard) trend() string {
	if m.Reference == nil {
		return ""
	}
	change := m.Amount - *m.Reference
	positive := change >= 0
	sign := ""
	if positive {
		sign = "+"
	}
	style := tuistyles.MetricTrendStyle(positive)
	return style.Render(fmt.Sprintf("%s %s%s", tuistyles.TrendIndicator(positive), sign, tuistyles.FormatCurrency(change)))
}

// Render returns the bordered card
func (m *MetricCard) Render() string {
	content := tuistyles.MetricLabelStyle.Render(m.Label) + "\n" +
		tuistyles.MetricValueStyle.Render(tuistyles.FormatCurrency(m.Amount))
	if trend := m.trend(); trend != "" {
		content += "\n" + trend
	}

	cardStyle := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(tuistyles.ColorBorder).
		Padding(0, 1).
		Width(m.Width)
	return cardStyle.Render(content)
}

// RenderCompact returns a single line without border
func (m *MetricCard) RenderCompact() string {
	line := tuistyles.MetricLabelStyle.Render(m.Label+":") + " " +
		tuistyles.MetricValueStyle.Render(tuistyles.FormatCurrency(m.Amount))
	if trend := m.trend(); trend != "" {
		line += " " + trend
	}
	return line
}

// MetricGrid renders cards in rows of the given number of columns
func MetricGrid(cards []*MetricCard, columns int) string {
	if len(cards) == 0 {
		return ""
	}
	if columns < 1 {
		columns = 1
	}

	var rows []string
	var current []string
	for i, card := range cards {
		current = append(current, card.Render())
		if (i+1)%columns == 0 || i == len(cards)-1 {
			rows = append(rows, lipgloss.JoinHorizontal(lipgloss.Top, current...))
			current = nil
		}
	}
	return lipgloss.JoinVertical(lipgloss.Left, rows...)
}
