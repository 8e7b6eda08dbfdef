package api

import (
	"github.com/rgehrsitz/finrechner/internal/domain"
)

type CalculationResponse struct {
	CalculationMetadata CalculationMetadata `json:"calculation_metadata"`
	CalculationResult   any                 `json:"calculation_result"`
}

type CalculationMetadata struct {
	CalculationID          string `json:"calculation_id"`
	Operation              string `json:"operation"`
	CalculationStartedAt   string `json:"calculation_started_at"`
	CalculationCompletedAt string `json:"calculation_completed_at"`
	CalculationDurationMs  int64  `json:"calculation_duration_ms"`
	CalculationOutcome     string `json:"calculation_outcome"`
}

type ErrorResponse struct {
	Status  int    `json:"status"`
	Kind    string `json:"kind"`
	Message string `json:"message"`
}

const (
	OutcomeSuccess = "SUCCESS"
	OutcomeFailure = "FAILURE"
)

// MonteCarloRequest is a Monte Carlo input. With Estimate set, drift and
// volatility of every asset are estimated from price history first.
type MonteCarloRequest struct {
	domain.MonteCarloParams
	Estimate bool `json:"estimate,omitempty"`
}
