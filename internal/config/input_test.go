package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/rgehrsitz/finrechner/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewInputParser(t *testing.T) {
	parser := NewInputParser()
	assert.NotNil(t, parser)
}

func TestInputParser_LoadFromFile_FileNotFound(t *testing.T) {
	parser := NewInputParser()
	_, err := parser.LoadFromFile("nonexistent.yaml")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to read file")
	assert.True(t, errors.Is(err, os.ErrNotExist))
}

func TestInputParser_LoadFromFile_InvalidYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "invalid.yaml")
	require.NoError(t, os.WriteFile(path, []byte("compound: [unclosed"), 0o644))

	_, err := NewInputParser().LoadFromFile(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to parse YAML")
}

func TestInputParser_LoadFromFile_Example(t *testing.T) {
	input, err := NewInputParser().LoadFromFile(filepath.Join("testdata", "example.yaml"))
	require.NoError(t, err)
	assert.Equal(t, 6, input.Sections())

	require.NotNil(t, input.Compound)
	assert.Equal(t, 20, input.Compound.Years)
	assert.Equal(t, domain.IntervalMonthly, input.Compound.Contribution.Interval)
	assert.True(t, input.Compound.ShowRange)

	require.NotNil(t, input.Retirement)
	assert.Equal(t, domain.ModeMaxPayout, input.Retirement.Mode)
	assert.Equal(t, 67, input.Retirement.RetirementAge)
	assert.Equal(t, domain.AnnuityCapitalConsumption, input.Retirement.AnnuityType)

	require.NotNil(t, input.MaxWithdrawal)
	assert.Equal(t, domain.StrategyFixedHorizon, input.MaxWithdrawal.Strategy)

	require.NotNil(t, input.Goals)
	require.Len(t, input.Goals.Goals, 3)
	assert.Equal(t, "notgroschen", input.Goals.Goals[0].ID)
	assert.Equal(t, time.Date(2025, time.January, 1, 0, 0, 0, 0, time.UTC), input.Goals.Savings.StartDate)

	require.NotNil(t, input.MonteCarlo)
	assert.Equal(t, uint64(20240601), input.MonteCarlo.Seed)
	require.Len(t, input.MonteCarlo.Assets, 2)
	assert.Equal(t, "XEON", input.MonteCarlo.Assets[1].Ticker)
}

func TestInputParser_Parse_Normalizes(t *testing.T) {
	input, err := NewInputParser().Parse([]byte(`
compound:
  principal: 1000
  rate: 5
  years: 10
  contribution:
    amount: 100
    interval: biweekly
retirement:
  mode: earliest_age
  current_age: 40
  life_expectancy: 90
  monthly_savings: 500
  rate: 5
  tax_rate: 25
  desired_net_payout: 1500
max_withdrawal:
  principal: 100000
  rate: 4
`))
	require.NoError(t, err)
	assert.Equal(t, domain.IntervalBiWeekly, input.Compound.Contribution.Interval)
	assert.Equal(t, domain.AnnuityCapitalConsumption, input.Retirement.AnnuityType)
	assert.Equal(t, domain.StrategyPerpetual, input.MaxWithdrawal.Strategy)
}

func TestInputParser_Parse_AdvancedScheduleKeepsInterval(t *testing.T) {
	input, err := NewInputParser().Parse([]byte(`
compound:
  principal: 1000
  rate: 5
  years: 10
  contribution:
    periods:
      - start_year: 1
        end_year: 5
        monthly_amount: 100
`))
	require.NoError(t, err)
	assert.True(t, input.Compound.Contribution.Advanced())
	assert.Empty(t, input.Compound.Contribution.Interval)
}

func TestInputParser_Parse_ValidationErrors(t *testing.T) {
	tests := []struct {
		name    string
		yaml    string
		wantErr string
	}{
		{
			name:    "empty document",
			yaml:    "{}",
			wantErr: ErrNoSections.Error(),
		},
		{
			name: "unknown interval",
			yaml: `
compound:
  years: 5
  contribution: {amount: 10, interval: fortnightly}`,
			wantErr: "compound: parse_interval",
		},
		{
			name: "period ends before start",
			yaml: `
compound:
  years: 5
  contribution:
    periods: [{start_year: 4, end_year: 2, monthly_amount: 10}]`,
			wantErr: "period 1 ends (2) before it starts (4)",
		},
		{
			name: "unknown retirement mode",
			yaml: `
retirement: {mode: someday, current_age: 30, retirement_age: 60, life_expectancy: 90}`,
			wantErr: `unknown mode "someday"`,
		},
		{
			name: "desired payout missing",
			yaml: `
retirement: {mode: required_savings, current_age: 30, retirement_age: 60, life_expectancy: 90}`,
			wantErr: "desired_net_payout is required",
		},
		{
			name: "life expectancy before current age",
			yaml: `
retirement: {mode: max_payout, current_age: 80, retirement_age: 85, life_expectancy: 70}`,
			wantErr: "life_expectancy must be greater than current_age",
		},
		{
			name:    "negative withdrawal",
			yaml:    "withdrawal: {principal: -1, monthly_withdrawal: 100}",
			wantErr: "withdrawal: principal and monthly_withdrawal cannot be negative",
		},
		{
			name:    "unknown withdrawal strategy",
			yaml:    "max_withdrawal: {principal: 1000, rate: 3, strategy: yolo}",
			wantErr: `unknown strategy "yolo"`,
		},
		{
			name:    "fixed horizon without years",
			yaml:    "max_withdrawal: {principal: 1000, rate: 3, strategy: fixed_horizon}",
			wantErr: "years is required",
		},
		{
			name:    "no goals",
			yaml:    "goals: {savings: {monthly_contribution: 100}}",
			wantErr: "at least one goal is required",
		},
		{
			name: "duplicate goal ids",
			yaml: `
goals:
  savings: {monthly_contribution: 100}
  goals: [{id: a, title: Urlaub, target_value: 1}, {id: a, title: Auto, target_value: 2}]`,
			wantErr: `duplicate goal id "a"`,
		},
		{
			name: "weights do not sum to 100",
			yaml: `
montecarlo:
  years: 10
  simulations: 100
  assets: [{ticker: A, weight: 60, annual_drift: 5, annual_volatility: 10}]`,
			wantErr: "weights_sum",
		},
		{
			name:    "missing ticker",
			yaml:    "montecarlo: {years: 10, simulations: 100, assets: [{weight: 100}]}",
			wantErr: "asset 1 needs a ticker",
		},
	}

	parser := NewInputParser()
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := parser.Parse([]byte(tt.yaml))
			require.Error(t, err)
			assert.Contains(t, err.Error(), "input validation failed")
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestInputParser_Parse_WeightErrorIsConstraintViolation(t *testing.T) {
	_, err := NewInputParser().Parse([]byte(`
montecarlo:
  years: 10
  simulations: 100
  assets: [{ticker: A, weight: 50, annual_drift: 5, annual_volatility: 10}]`))
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrConstraintViolation)
}

func TestInput_Sections(t *testing.T) {
	assert.Equal(t, 0, (&Input{}).Sections())
	assert.Equal(t, 2, (&Input{
		Withdrawal: &domain.WithdrawalParams{},
		Goals:      &GoalsInput{},
	}).Sections())
}
