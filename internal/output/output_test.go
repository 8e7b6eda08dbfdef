package output

import (
	"encoding/csv"
	"fmt"
	"os"
	"strings"
	"testing"
	"time"

	json "github.com/goccy/go-json"
	"github.com/rgehrsitz/finrechner/internal/calculation"
	"github.com/rgehrsitz/finrechner/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func buildTestReport(t *testing.T) *Report {
	t.Helper()

	points, err := calculation.SimulateCompoundGrowth(domain.CompoundParams{
		Principal: 10000,
		Rate:      7,
		Inflation: 2.5,
		Years:     20,
		Contribution: domain.ContributionSchedule{
			Amount:   500,
			Interval: domain.IntervalMonthly,
		},
	})
	require.NoError(t, err)

	plan, err := calculation.SimulateWithdrawalPlan(domain.WithdrawalParams{
		Principal:         24000,
		MonthlyWithdrawal: 1000,
	})
	require.NoError(t, err)

	return &Report{
		Projection: NewProjectionReport(points),
		Retirement: &domain.RetirementResult{
			Mode:               domain.ModeMaxPayout,
			AnnuityType:        domain.AnnuityCapitalConsumption,
			Reachable:          true,
			RetirementAge:      67,
			RetirementCapital:  461784.16,
			RequiredCapital:    461784.16,
			GrossMonthlyPayout: 2500,
			NetMonthlyPayout:   2031.25,
			CapitalPhase:       []domain.ProjectionPoint{{Year: 0, Nominal: 1000, Real: 1000, Contributions: 1000}},
			PayoutPhase:        []domain.ProjectionPoint{{Year: 0, Nominal: 461784.16, Real: 461784.16}},
		},
		Withdrawal: plan,
		MaxWithdrawal: &MaxWithdrawalReport{
			Params:            domain.MaxWithdrawalParams{Principal: 500000, Rate: 5, Strategy: domain.StrategyFixedHorizon, Years: 30},
			MonthlyWithdrawal: 2684.11,
		},
		Goals: &domain.GoalTimeline{
			Timeline: []domain.BalancePoint{{Month: 0, Balance: 100}, {Month: 1, Balance: 200}},
			Reached: []domain.GoalOutcome{{
				Goal:       domain.Goal{ID: "a", Title: "Urlaub", TargetValue: 150},
				MonthIndex: 1,
				Date:       time.Date(2031, time.March, 1, 0, 0, 0, 0, time.UTC),
			}},
			Unreachable: []domain.Goal{{ID: "b", Title: "Villa", TargetValue: 1e9}},
		},
		MonteCarlo: &domain.MonteCarloResult{
			RunID:       "run-1",
			Seed:        42,
			Simulations: 100,
			Years:       10,
			Portfolio:   domain.Portfolio{Drift: 7, Volatility: 15},
			SelectedPaths: []domain.MonteCarloPath{
				{Simulation: 3, Label: "worst", EndValue: 9000},
				{Simulation: 7, Label: "p50", EndValue: 20000},
			},
			OverallStats: domain.OverallStats{Worst: 9000, P10: 12000, Median: 20000, P90: 30000, Best: 45000},
			PercentileMetrics: map[int]domain.PathMetrics{
				10: {MaxDrawdown: 35, AvgAnnualReturn: 2.5, SharpeRatio: 0.1},
				50: {MaxDrawdown: 20, AvgAnnualReturn: 7, SharpeRatio: 0.45},
			},
			TotalContributions: 10000,
		},
	}
}

func TestFormatCurrency(t *testing.T) {
	tests := []struct {
		amount float64
		want   string
	}{
		{0, "0,00 €"},
		{1234.565, "1.234,57 €"},
		{-0.001, "0,00 €"},
		{301887.905327, "301.887,91 €"},
		{-1500, "-1.500,00 €"},
	}
	for _, tt := range tests {
		t.Run(fmt.Sprint(tt.amount), func(t *testing.T) {
			assert.Equal(t, tt.want, FormatCurrency(tt.amount))
		})
	}
}

func TestFormatPercentageAndMonth(t *testing.T) {
	assert.Equal(t, "7,5 %", FormatPercentage(7.5))
	assert.Equal(t, "März 2031", FormatMonth(time.Date(2031, time.March, 15, 0, 0, 0, 0, time.UTC)))
	assert.Equal(t, "Dezember 2024", FormatMonth(time.Date(2024, time.December, 1, 0, 0, 0, 0, time.UTC)))
}

func TestPathLabel(t *testing.T) {
	assert.Equal(t, "Schlechtester Verlauf", PathLabel("worst"))
	assert.Equal(t, "25. Perzentil", PathLabel("p25"))
	assert.Equal(t, "custom", PathLabel("custom"))
}

func TestReport_Empty(t *testing.T) {
	var nilReport *Report
	assert.True(t, nilReport.Empty())
	assert.True(t, (&Report{}).Empty())
	assert.False(t, (&Report{Goals: &domain.GoalTimeline{}}).Empty())
}

func TestConsoleFormatter_Format(t *testing.T) {
	data, err := ConsoleFormatter{}.Format(buildTestReport(t))
	require.NoError(t, err)
	content := string(data)

	for _, want := range []string{
		"ZINSESZINS",
		"Endkapital nominal:   301.887,91 €",
		"ALTERSVORSORGE",
		"Kapitalverzehr",
		"Monatsrente netto:    2.031,25 €",
		"ENTNAHMEPLAN",
		"nach 2 Jahren aufgebraucht",
		"MAXIMALE ENTNAHME",
		"Kapitalverzehr über 30 Jahre",
		"SPARZIELE",
		"erreicht im März 2031 (Monat 1)",
		"nicht innerhalb von 50 Jahren erreichbar",
		"MONTE-CARLO-SIMULATION",
		"Seed 42",
		"Schlechtester Verlauf",
		"50. Perzentil",
	} {
		assert.Contains(t, content, want)
	}
	// sections follow the fixed order
	assert.Less(t, strings.Index(content, "ZINSESZINS"), strings.Index(content, "SPARZIELE"))
}

func TestConsoleFormatter_Unreachable(t *testing.T) {
	data, err := ConsoleFormatter{}.Format(&Report{Retirement: &domain.RetirementResult{
		Mode:        domain.ModeEarliestAge,
		AnnuityType: domain.AnnuityEndless,
	}})
	require.NoError(t, err)
	assert.Contains(t, string(data), "bis zum Alter 100 nicht erreichbar")
	assert.NotContains(t, string(data), "Renteneintritt mit")
}

func TestConsoleFormatter_EmptyReport(t *testing.T) {
	_, err := ConsoleFormatter{}.Format(&Report{})
	assert.Error(t, err)
}

func TestJSONFormatter_Format(t *testing.T) {
	report := buildTestReport(t)

	pretty, err := JSONFormatter{Pretty: true}.Format(report)
	require.NoError(t, err)
	assert.Contains(t, string(pretty), "\n  \"projection\"")

	compact, err := JSONFormatter{}.Format(report)
	require.NoError(t, err)
	assert.NotContains(t, string(compact), "\n")

	var decoded map[string]any
	require.NoError(t, json.Unmarshal(compact, &decoded))
	for _, key := range []string{"projection", "retirement", "withdrawal", "maxWithdrawal", "goals", "monteCarlo"} {
		assert.Contains(t, decoded, key)
	}

	summary := decoded["projection"].(map[string]any)["summary"].(map[string]any)
	assert.InDelta(t, 301887.905327, summary["finalNominal"], 1e-6)
}

func TestCSVFormatter_Format(t *testing.T) {
	data, err := CSVFormatter{}.Format(buildTestReport(t))
	require.NoError(t, err)

	reader := csv.NewReader(strings.NewReader(string(data)))
	reader.FieldsPerRecord = -1
	records, err := reader.ReadAll()
	require.NoError(t, err)

	var sections []string
	for _, record := range records {
		switch record[0] {
		case "projection", "retirement", "withdrawal", "max_withdrawal", "goals", "montecarlo":
			sections = append(sections, record[0])
		}
	}
	assert.Equal(t, []string{"projection", "retirement", "withdrawal", "max_withdrawal", "goals", "montecarlo"}, sections)

	content := string(data)
	assert.Contains(t, content, ",20,301887.91,")
	assert.Contains(t, content, "p50,20.0000,7.0000,0.4500")
	assert.Contains(t, content, "worst,3,9000.00")
}

func TestFormatterRegistry(t *testing.T) {
	names := AvailableFormatterNames()
	assert.Equal(t, []string{"console", "csv", "json", "json-compact"}, names)
	assert.Equal(t, []string{"table", "text"}, AvailableFormatAliases())

	for _, name := range names {
		f := GetFormatterByName(name)
		require.NotNil(t, f, name)
		assert.Equal(t, name, f.Name())
	}
	assert.Equal(t, "console", GetFormatterByName("text").Name())
	assert.Nil(t, GetFormatterByName("html"))
}

func TestFormatterFunc(t *testing.T) {
	called := false
	f := FormatterFunc{ID: "test", F: func(report *Report) ([]byte, error) {
		called = true
		return []byte("ok"), nil
	}}
	out, err := f.Format(&Report{})
	require.NoError(t, err)
	assert.True(t, called)
	assert.Equal(t, "test", f.Name())
	assert.Equal(t, []byte("ok"), out)
}

func TestWriteFormatted(t *testing.T) {
	t.Chdir(t.TempDir())

	f := FormatterFunc{ID: "test", F: func(*Report) ([]byte, error) { return []byte("inhalt"), nil }}
	filename, err := WriteFormatted(f, &Report{}, "txt")
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(filename, "finrechner_report_"))
	assert.True(t, strings.HasSuffix(filename, ".txt"))

	content, err := os.ReadFile(filename)
	require.NoError(t, err)
	assert.Equal(t, "inhalt", string(content))

	failing := FormatterFunc{ID: "err", F: func(*Report) ([]byte, error) { return nil, fmt.Errorf("formatter error") }}
	filename, err = WriteFormatted(failing, &Report{}, "txt")
	assert.Empty(t, filename)
	assert.ErrorContains(t, err, "formatter error")
}
