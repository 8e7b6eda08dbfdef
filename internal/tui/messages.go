package tui

import (
	"github.com/rgehrsitz/finrechner/internal/domain"
)

// Message types for the Bubble Tea update cycle. Run messages carry the
// generation of the run they belong to; messages of an older generation
// are dropped.

// RunRequestedMsg starts a new simulation run
type RunRequestedMsg struct{}

// RunProgressMsg reports the progress of the run with the given generation
type RunProgressMsg struct {
	Generation int
	Percent    float64
}

// RunFinishedMsg is the terminal message of a run
type RunFinishedMsg struct {
	Generation int
	Result     *domain.MonteCarloResult
	Err        error
}
