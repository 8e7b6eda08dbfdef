package config

import (
	"errors"
	"fmt"
	"os"

	"github.com/rgehrsitz/finrechner/internal/calculation"
	"github.com/rgehrsitz/finrechner/internal/domain"
	"gopkg.in/yaml.v3"
)

// Input is one calculation file. Every section is optional but at least one must be present.
type Input struct {
	Compound      *domain.CompoundParams      `yaml:"compound,omitempty" json:"compound,omitempty"`
	Retirement    *RetirementInput            `yaml:"retirement,omitempty" json:"retirement,omitempty"`
	Withdrawal    *domain.WithdrawalParams    `yaml:"withdrawal,omitempty" json:"withdrawal,omitempty"`
	MaxWithdrawal *domain.MaxWithdrawalParams `yaml:"max_withdrawal,omitempty" json:"max_withdrawal,omitempty"`
	Goals         *GoalsInput                 `yaml:"goals,omitempty" json:"goals,omitempty"`
	MonteCarlo    *domain.MonteCarloParams    `yaml:"montecarlo,omitempty" json:"montecarlo,omitempty"`
}

// RetirementInput is a retirement section: the solver mode plus its parameters
type RetirementInput struct {
	Mode                    domain.RetirementMode `yaml:"mode" json:"mode"`
	domain.RetirementParams `yaml:",inline"`
}

// GoalsInput is a goals section: one saving plan and the goals measured against it
type GoalsInput struct {
	Savings domain.SavingsParams `yaml:"savings" json:"savings"`
	Goals   []domain.Goal        `yaml:"goals" json:"goals"`
}

// ErrNoSections is returned for an input file without any calculation section
var ErrNoSections = errors.New("input contains no calculation section")

// InputParser handles parsing of calculation input files
type InputParser struct{}

// NewInputParser creates a new input parser
func NewInputParser() *InputParser {
	return &InputParser{}
}

// LoadFromFile loads and validates an input file
func (ip *InputParser) LoadFromFile(filename string) (*Input, error) {
	data, err := os.ReadFile(filename)
	if err != nil {
		return nil, fmt.Errorf("failed to read file %s: %w", filename, err)
	}
	return ip.Parse(data)
}

// Parse decodes YAML input, normalises it and validates it
func (ip *InputParser) Parse(data []byte) (*Input, error) {
	var input Input
	if err := yaml.Unmarshal(data, &input); err != nil {
		return nil, fmt.Errorf("failed to parse YAML: %w", err)
	}

	if err := ip.Normalize(&input); err != nil {
		return nil, fmt.Errorf("input validation failed: %w", err)
	}
	if err := ip.ValidateInput(&input); err != nil {
		return nil, fmt.Errorf("input validation failed: %w", err)
	}
	return &input, nil
}

// Normalize rewrites user spellings into canonical values, e.g. "biweekly" intervals
func (ip *InputParser) Normalize(input *Input) error {
	if input.Compound != nil && !input.Compound.Contribution.Advanced() {
		interval, err := domain.ParseInterval(string(input.Compound.Contribution.Interval))
		if err != nil {
			return fmt.Errorf("compound: %w", err)
		}
		input.Compound.Contribution.Interval = interval
	}
	if input.MaxWithdrawal != nil && input.MaxWithdrawal.Strategy == "" {
		input.MaxWithdrawal.Strategy = domain.StrategyPerpetual
	}
	if input.Retirement != nil && input.Retirement.AnnuityType == "" {
		input.Retirement.AnnuityType = domain.AnnuityCapitalConsumption
	}
	return nil
}

// ValidateInput checks the structure of every present section. Numeric ranges
// are checked again by the calculators themselves.
func (ip *InputParser) ValidateInput(input *Input) error {
	if input.Sections() == 0 {
		return ErrNoSections
	}
	if input.Compound != nil {
		if err := ip.validateCompound(input.Compound); err != nil {
			return fmt.Errorf("compound: %w", err)
		}
	}
	if input.Retirement != nil {
		if err := ip.validateRetirement(input.Retirement); err != nil {
			return fmt.Errorf("retirement: %w", err)
		}
	}
	if input.Withdrawal != nil {
		if input.Withdrawal.Principal < 0 || input.Withdrawal.MonthlyWithdrawal < 0 {
			return fmt.Errorf("withdrawal: principal and monthly_withdrawal cannot be negative")
		}
	}
	if input.MaxWithdrawal != nil {
		if err := ip.validateMaxWithdrawal(input.MaxWithdrawal); err != nil {
			return fmt.Errorf("max_withdrawal: %w", err)
		}
	}
	if input.Goals != nil {
		if err := ip.validateGoals(input.Goals); err != nil {
			return fmt.Errorf("goals: %w", err)
		}
	}
	if input.MonteCarlo != nil {
		if err := ip.validateMonteCarlo(input.MonteCarlo); err != nil {
			return fmt.Errorf("montecarlo: %w", err)
		}
	}
	return nil
}

// Sections counts the calculation sections present
func (in *Input) Sections() int {
	n := 0
	for _, present := range []bool{
		in.Compound != nil,
		in.Retirement != nil,
		in.Withdrawal != nil,
		in.MaxWithdrawal != nil,
		in.Goals != nil,
		in.MonteCarlo != nil,
	} {
		if present {
			n++
		}
	}
	return n
}

func (ip *InputParser) validateCompound(c *domain.CompoundParams) error {
	if c.Years < 0 {
		return fmt.Errorf("years cannot be negative")
	}
	if c.Principal < 0 {
		return fmt.Errorf("principal cannot be negative")
	}
	if !c.Contribution.Advanced() {
		if _, err := calculation.AnnualizeContributionStrict(c.Contribution.Amount, c.Contribution.Interval); err != nil {
			return err
		}
	}
	for i, period := range c.Contribution.Periods {
		if period.EndYear < period.StartYear {
			return fmt.Errorf("period %d ends (%d) before it starts (%d)", i+1, period.EndYear, period.StartYear)
		}
	}
	return nil
}

func (ip *InputParser) validateRetirement(r *RetirementInput) error {
	if !r.Mode.Valid() {
		return fmt.Errorf("unknown mode %q (valid: max_payout, earliest_age, required_savings)", r.Mode)
	}
	if !r.AnnuityType.Valid() {
		return fmt.Errorf("unknown annuity_type %q (valid: capital_consumption, endless)", r.AnnuityType)
	}
	if r.LifeExpectancy <= r.CurrentAge {
		return fmt.Errorf("life_expectancy must be greater than current_age")
	}
	if r.Mode != domain.ModeMaxPayout && r.DesiredNetPayout <= 0 {
		return fmt.Errorf("desired_net_payout is required for mode %s", r.Mode)
	}
	return nil
}

func (ip *InputParser) validateMaxWithdrawal(m *domain.MaxWithdrawalParams) error {
	switch m.Strategy {
	case domain.StrategyPerpetual:
	case domain.StrategyFixedHorizon:
		if m.Years <= 0 {
			return fmt.Errorf("years is required for the fixed_horizon strategy")
		}
	default:
		return fmt.Errorf("unknown strategy %q (valid: perpetual, fixed_horizon)", m.Strategy)
	}
	return nil
}

func (ip *InputParser) validateGoals(g *GoalsInput) error {
	if len(g.Goals) == 0 {
		return fmt.Errorf("at least one goal is required")
	}
	seen := make(map[string]bool, len(g.Goals))
	for i, goal := range g.Goals {
		if goal.Title == "" {
			return fmt.Errorf("goal %d needs a title", i+1)
		}
		if goal.TargetValue < 0 {
			return fmt.Errorf("goal %q has a negative target", goal.Title)
		}
		if goal.ID != "" {
			if seen[goal.ID] {
				return fmt.Errorf("duplicate goal id %q", goal.ID)
			}
			seen[goal.ID] = true
		}
	}
	return nil
}

func (ip *InputParser) validateMonteCarlo(m *domain.MonteCarloParams) error {
	if m.Simulations <= 0 {
		return fmt.Errorf("simulations must be positive")
	}
	if m.Years <= 0 {
		return fmt.Errorf("years must be positive")
	}
	if len(m.Assets) == 0 {
		return fmt.Errorf("at least one asset is required")
	}
	for i, asset := range m.Assets {
		if asset.Ticker == "" {
			return fmt.Errorf("asset %d needs a ticker", i+1)
		}
	}
	if _, err := calculation.AggregatePortfolio(m.Assets); err != nil {
		return err
	}
	return nil
}
