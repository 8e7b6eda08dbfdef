package output

import (
	"bytes"
	"encoding/csv"
	"strconv"

	"github.com/rgehrsitz/finrechner/internal/domain"
)

// CSVFormatter renders one table per report section. Tables are separated by
// an empty line and start with a header row whose first cell names the section.
type CSVFormatter struct{}

func (c CSVFormatter) Name() string { return "csv" }

func (c CSVFormatter) Format(report *Report) ([]byte, error) {
	var tables [][][]string
	if p := report.Projection; p != nil {
		tables = append(tables, projectionRows(p))
	}
	if r := report.Retirement; r != nil {
		tables = append(tables, retirementRows(r))
	}
	if w := report.Withdrawal; w != nil {
		tables = append(tables, withdrawalRows(w))
	}
	if m := report.MaxWithdrawal; m != nil {
		tables = append(tables, [][]string{
			{"max_withdrawal", "principal", "rate", "strategy", "years", "monthly_withdrawal"},
			{"", money(m.Params.Principal), floatToString(m.Params.Rate), string(m.Params.Strategy),
				intToString(m.Params.Years), money(m.MonthlyWithdrawal)},
		})
	}
	if g := report.Goals; g != nil {
		tables = append(tables, goalRows(g))
	}
	if mc := report.MonteCarlo; mc != nil {
		tables = append(tables, monteCarloRows(mc))
	}

	buf := &bytes.Buffer{}
	w := csv.NewWriter(buf)
	for i, table := range tables {
		if i > 0 {
			if err := w.Write(nil); err != nil {
				return nil, err
			}
		}
		if err := w.WriteAll(table); err != nil {
			return nil, err
		}
	}
	w.Flush()
	return buf.Bytes(), w.Error()
}

func projectionRows(p *ProjectionReport) [][]string {
	rows := [][]string{{"projection", "year", "nominal", "real", "contributions", "min_nominal", "max_nominal"}}
	for _, pt := range p.Points {
		row := []string{"", intToString(pt.Year), money(pt.Nominal), money(pt.Real), money(pt.Contributions), "", ""}
		if pt.Range != nil {
			row[5] = money(pt.Range.MinNominal)
			row[6] = money(pt.Range.MaxNominal)
		}
		rows = append(rows, row)
	}
	return rows
}

func retirementRows(r *domain.RetirementResult) [][]string {
	rows := [][]string{
		{"retirement", "mode", "annuity_type", "reachable", "retirement_age", "retirement_capital",
			"required_capital", "gross_monthly", "net_monthly", "required_monthly_savings"},
		{"", string(r.Mode), string(r.AnnuityType), strconv.FormatBool(r.Reachable), intToString(r.RetirementAge),
			money(r.RetirementCapital), money(r.RequiredCapital), money(r.GrossMonthlyPayout),
			money(r.NetMonthlyPayout), money(r.RequiredMonthlySavings)},
		{"phase", "year", "nominal", "real", "flow"},
	}
	for _, pt := range r.CapitalPhase {
		rows = append(rows, []string{"capital", intToString(pt.Year), money(pt.Nominal), money(pt.Real), money(pt.Contributions)})
	}
	for _, pt := range r.PayoutPhase {
		rows = append(rows, []string{"payout", intToString(pt.Year), money(pt.Nominal), money(pt.Real), money(pt.Contributions)})
	}
	return rows
}

func withdrawalRows(w *domain.WithdrawalPlan) [][]string {
	rows := [][]string{{"withdrawal", "year", "balance", "withdrawn", "tax_paid"}}
	for _, pt := range w.Points {
		rows = append(rows, []string{"", intToString(pt.Year), money(pt.Balance), money(pt.Withdrawn), money(pt.TaxPaid)})
	}
	rows = append(rows, []string{"total", strconv.FormatBool(w.Depleted), intToString(w.DepletionYear),
		money(w.TotalWithdrawn), money(w.TotalTax)})
	return rows
}

func goalRows(g *domain.GoalTimeline) [][]string {
	rows := [][]string{{"goals", "id", "title", "target_value", "reached", "month", "date"}}
	for _, o := range g.Reached {
		rows = append(rows, []string{"", o.Goal.ID, o.Goal.Title, money(o.Goal.TargetValue), "true",
			intToString(o.MonthIndex), o.Date.Format("2006-01-02")})
	}
	for _, goal := range g.Unreachable {
		rows = append(rows, []string{"", goal.ID, goal.Title, money(goal.TargetValue), "false", "", ""})
	}
	return rows
}

func monteCarloRows(mc *domain.MonteCarloResult) [][]string {
	s := mc.OverallStats
	rows := [][]string{
		{"montecarlo", "run_id", "seed", "simulations", "years", "drift", "volatility", "total_contributions"},
		{"", mc.RunID, strconv.FormatUint(mc.Seed, 10), intToString(mc.Simulations), intToString(mc.Years),
			floatToString(mc.Portfolio.Drift), floatToString(mc.Portfolio.Volatility), money(mc.TotalContributions)},
		{"stats", "worst", "p10", "median", "p90", "best"},
		{"", money(s.Worst), money(s.P10), money(s.Median), money(s.P90), money(s.Best)},
		{"percentile", "max_drawdown", "avg_annual_return", "sharpe_ratio"},
	}
	for _, level := range domain.PercentileLevels {
		m, ok := mc.PercentileMetrics[level]
		if !ok {
			continue
		}
		rows = append(rows, []string{"p" + intToString(level), floatToString(m.MaxDrawdown),
			floatToString(m.AvgAnnualReturn), floatToString(m.SharpeRatio)})
	}
	rows = append(rows, []string{"path", "simulation", "end_value"})
	for _, path := range mc.SelectedPaths {
		rows = append(rows, []string{path.Label, intToString(path.Simulation), money(path.EndValue)})
	}
	return rows
}

func money(v float64) string {
	return RoundMoney(v).StringFixed(2)
}

func floatToString(v float64) string {
	return strconv.FormatFloat(v, 'f', 4, 64)
}

func intToString(v int) string {
	return strconv.Itoa(v)
}
