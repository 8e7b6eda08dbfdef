package components

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/rgehrsitz/finrechner/internal/tui/tuistyles"
)

// ProgressBar displays a percentage as a filled bar
type ProgressBar struct {
	Percent     float64
	Width       int
	Label       string
	ShowPercent bool
}

// NewProgressBar creates a new progress bar
func NewProgressBar(percent float64) *ProgressBar {
	return &ProgressBar{
		Percent:     percent,
		Width:       40,
		ShowPercent: true,
	}
}

// WithLabel sets the progress label
func (p *ProgressBar) WithLabel(label string) *ProgressBar {
	p.Label = label
	return p
}

// WithWidth sets the bar width
func (p *ProgressBar) WithWidth(width int) *ProgressBar {
	p.Width = width
	return p
}

// Update updates the progress
func (p *ProgressBar) Update(percent float64) {
	p.Percent = percent
}

// Filled returns the number of filled cells, clamped to the bar width
func (p *ProgressBar) Filled() int {
	filled := int(float64(p.Width) * p.Percent / 100)
	if filled < 0 {
		return 0
	}
	if filled > p.Width {
		return p.Width
	}
	return filled
}

// IsComplete returns true if progress is at 100%
func (p *ProgressBar) IsComplete() bool {
	return p.Percent >= 100
}

// Render returns the styled progress bar
func (p *ProgressBar) Render() string {
	var content strings.Builder

	if p.Label != "" {
		labelStyle := lipgloss.NewStyle().
			Foreground(tuistyles.ColorForeground).
			Bold(true)
		content.WriteString(labelStyle.Render(p.Label))
		content.WriteString("\n")
	}

	filled := p.Filled()
	empty := p.Width - filled

	barStyle := lipgloss.NewStyle().Foreground(tuistyles.ColorSuccess)
	emptyStyle := lipgloss.NewStyle().Foreground(tuistyles.ColorBorder)

	content.WriteString("[")
	if filled > 0 {
		content.WriteString(barStyle.Render(strings.Repeat("█", filled)))
	}
	if empty > 0 {
		content.WriteString(emptyStyle.Render(strings.Repeat("░", empty)))
	}
	content.WriteString("]")

	if p.ShowPercent {
		percentStyle := lipgloss.NewStyle().
			Foreground(tuistyles.ColorPrimary).
			Bold(true)
		content.WriteString(" ")
		content.WriteString(percentStyle.Render(fmt.Sprintf("%.0f%%", p.Percent)))
	}

	return content.String()
}
