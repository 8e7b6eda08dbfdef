package domain

import "time"

// GoalHorizonMonths is the longest horizon the goal timeline simulates
const GoalHorizonMonths = 600

// Goal represents a savings target checked against the shared projection
type Goal struct {
	ID          string  `yaml:"id,omitempty" json:"id"`
	Title       string  `yaml:"title" json:"title"`
	TargetValue float64 `yaml:"target_value" json:"target_value"`
}

// SavingsParams describes the single saving plan all goals are measured against
type SavingsParams struct {
	InitialBalance      float64   `yaml:"initial_balance" json:"initial_balance"`
	MonthlyContribution float64   `yaml:"monthly_contribution" json:"monthly_contribution"`
	AnnualRate          float64   `yaml:"annual_rate" json:"annual_rate"`
	StartDate           time.Time `yaml:"start_date,omitempty" json:"start_date,omitempty"` // zero means today
}

// GoalOutcome records the first month a goal was reached
type GoalOutcome struct {
	Goal       Goal      `json:"goal"`
	MonthIndex int       `json:"monthIndex"`
	Date       time.Time `json:"date"`
}

// BalancePoint is the balance after one simulated month
type BalancePoint struct {
	Month   int     `json:"month"`
	Balance float64 `json:"balance"`
}

// GoalTimeline is the result of a goal reachability run
type GoalTimeline struct {
	Timeline    []BalancePoint `json:"timeline"`
	Reached     []GoalOutcome  `json:"reached"`
	Unreachable []Goal         `json:"unreachable"`
}
