package output

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/rgehrsitz/finrechner/internal/domain"
)

// ConsoleFormatter renders a German plain-text report
type ConsoleFormatter struct{}

func (c ConsoleFormatter) Name() string { return "console" }

var modeLabels = map[domain.RetirementMode]string{
	domain.ModeMaxPayout:       "Maximale monatliche Rente",
	domain.ModeEarliestAge:     "Frühestes Renteneintrittsalter",
	domain.ModeRequiredSavings: "Benötigte Sparrate",
}

var annuityLabels = map[domain.AnnuityType]string{
	domain.AnnuityCapitalConsumption: "Kapitalverzehr",
	domain.AnnuityEndless:            "Ewige Rente",
}

func (c ConsoleFormatter) Format(report *Report) ([]byte, error) {
	if report.Empty() {
		return nil, fmt.Errorf("report contains no results")
	}

	var buf bytes.Buffer
	sections := []func(*bytes.Buffer, *Report) bool{
		writeProjection,
		writeRetirement,
		writeWithdrawal,
		writeMaxWithdrawal,
		writeGoals,
		writeMonteCarlo,
	}
	first := true
	for _, section := range sections {
		var part bytes.Buffer
		if !section(&part, report) {
			continue
		}
		if !first {
			buf.WriteString("\n")
		}
		first = false
		buf.Write(part.Bytes())
	}
	return buf.Bytes(), nil
}

func writeProjection(buf *bytes.Buffer, report *Report) bool {
	p := report.Projection
	if p == nil {
		return false
	}
	s := p.Summary

	buf.WriteString(heading("Zinseszins"))
	fmt.Fprintf(buf, "Laufzeit:             %d Jahre\n", s.Years)
	fmt.Fprintf(buf, "Endkapital nominal:   %s\n", FormatCurrency(s.FinalNominal))
	fmt.Fprintf(buf, "Endkapital real:      %s\n", FormatCurrency(s.FinalReal))
	fmt.Fprintf(buf, "Einzahlungen gesamt:  %s\n", FormatCurrency(s.TotalContributions))
	fmt.Fprintf(buf, "Zinsertrag:           %s\n", FormatCurrency(s.TotalInterest))
	fmt.Fprintf(buf, "Kaufkraftverlust:     %s\n", FormatCurrency(s.PurchasingPowerLoss))
	fmt.Fprintln(buf)

	withRange := len(p.Points) > 0 && p.Points[0].Range != nil
	fmt.Fprintf(buf, "%-6s %18s %18s %18s", "Jahr", "Nominal", "Real", "Einzahlungen")
	if withRange {
		fmt.Fprintf(buf, " %18s %18s", "Minimum", "Maximum")
	}
	fmt.Fprintln(buf)
	width := 63
	if withRange {
		width = 101
	}
	fmt.Fprintln(buf, strings.Repeat("-", width))
	for _, pt := range p.Points {
		fmt.Fprintf(buf, "%-6d %18s %18s %18s", pt.Year,
			FormatCurrency(pt.Nominal), FormatCurrency(pt.Real), FormatCurrency(pt.Contributions))
		if pt.Range != nil {
			fmt.Fprintf(buf, " %18s %18s", FormatCurrency(pt.Range.MinNominal), FormatCurrency(pt.Range.MaxNominal))
		}
		fmt.Fprintln(buf)
	}
	return true
}

func writeRetirement(buf *bytes.Buffer, report *Report) bool {
	r := report.Retirement
	if r == nil {
		return false
	}

	buf.WriteString(heading("Altersvorsorge"))
	fmt.Fprintf(buf, "Berechnung:           %s\n", modeLabels[r.Mode])
	fmt.Fprintf(buf, "Rentenart:            %s\n", annuityLabels[r.AnnuityType])
	if !r.Reachable {
		fmt.Fprintf(buf, "Die gewünschte Rente ist bis zum Alter %d nicht erreichbar.\n", domain.MaxRetirementAge)
		return true
	}

	fmt.Fprintf(buf, "Renteneintritt mit:   %d Jahren\n", r.RetirementAge)
	fmt.Fprintf(buf, "Kapital bei Eintritt: %s\n", FormatCurrency(r.RetirementCapital))
	fmt.Fprintf(buf, "Benötigtes Kapital:   %s\n", FormatCurrency(r.RequiredCapital))
	fmt.Fprintf(buf, "Monatsrente brutto:   %s\n", FormatCurrency(r.GrossMonthlyPayout))
	fmt.Fprintf(buf, "Monatsrente netto:    %s\n", FormatCurrency(r.NetMonthlyPayout))
	if r.Mode == domain.ModeRequiredSavings {
		fmt.Fprintf(buf, "Benötigte Sparrate:   %s monatlich\n", FormatCurrency(r.RequiredMonthlySavings))
	}

	if len(r.CapitalPhase) > 0 {
		fmt.Fprintln(buf)
		fmt.Fprintln(buf, "Ansparphase:")
		writePhase(buf, r.CapitalPhase, "Einzahlungen")
	}
	if len(r.PayoutPhase) > 0 {
		fmt.Fprintln(buf)
		fmt.Fprintln(buf, "Auszahlphase:")
		writePhase(buf, r.PayoutPhase, "Ausgezahlt")
	}
	return true
}

func writePhase(buf *bytes.Buffer, points []domain.ProjectionPoint, flowLabel string) {
	fmt.Fprintf(buf, "  %-6s %18s %18s %18s\n", "Jahr", "Nominal", "Real", flowLabel)
	for _, pt := range points {
		fmt.Fprintf(buf, "  %-6d %18s %18s %18s\n", pt.Year,
			FormatCurrency(pt.Nominal), FormatCurrency(pt.Real), FormatCurrency(pt.Contributions))
	}
}

func writeWithdrawal(buf *bytes.Buffer, report *Report) bool {
	w := report.Withdrawal
	if w == nil {
		return false
	}

	buf.WriteString(heading("Entnahmeplan"))
	if w.Depleted {
		fmt.Fprintf(buf, "Das Kapital ist nach %d Jahren aufgebraucht (letzte volle Entnahme im Jahr %d).\n",
			w.YearsUntilDepletion(), w.DepletionYear)
	} else {
		fmt.Fprintf(buf, "Das Kapital reicht länger als %d Jahre.\n", domain.MaxWithdrawalYears)
	}
	fmt.Fprintf(buf, "Entnommen gesamt:     %s\n", FormatCurrency(w.TotalWithdrawn))
	fmt.Fprintf(buf, "Steuern gesamt:       %s\n", FormatCurrency(w.TotalTax))
	fmt.Fprintln(buf)

	fmt.Fprintf(buf, "%-6s %18s %18s %18s\n", "Jahr", "Kapital", "Entnommen", "Steuern")
	fmt.Fprintln(buf, strings.Repeat("-", 63))
	for _, pt := range w.Points {
		fmt.Fprintf(buf, "%-6d %18s %18s %18s\n", pt.Year,
			FormatCurrency(pt.Balance), FormatCurrency(pt.Withdrawn), FormatCurrency(pt.TaxPaid))
	}
	return true
}

func writeMaxWithdrawal(buf *bytes.Buffer, report *Report) bool {
	m := report.MaxWithdrawal
	if m == nil {
		return false
	}

	buf.WriteString(heading("Maximale Entnahme"))
	fmt.Fprintf(buf, "Kapital:              %s\n", FormatCurrency(m.Params.Principal))
	fmt.Fprintf(buf, "Rendite:              %s\n", FormatPercentage(m.Params.Rate))
	switch m.Params.Strategy {
	case domain.StrategyFixedHorizon:
		fmt.Fprintf(buf, "Strategie:            Kapitalverzehr über %d Jahre\n", m.Params.Years)
	default:
		fmt.Fprintln(buf, "Strategie:            Kapitalerhalt (ewige Entnahme)")
	}
	fmt.Fprintf(buf, "Monatliche Entnahme:  %s\n", FormatCurrency(m.MonthlyWithdrawal))
	return true
}

func writeGoals(buf *bytes.Buffer, report *Report) bool {
	g := report.Goals
	if g == nil {
		return false
	}

	buf.WriteString(heading("Sparziele"))
	for _, outcome := range g.Reached {
		fmt.Fprintf(buf, "✓ %-24s %16s  erreicht im %s (Monat %d)\n",
			outcome.Goal.Title, FormatCurrency(outcome.Goal.TargetValue), FormatMonth(outcome.Date), outcome.MonthIndex)
	}
	for _, goal := range g.Unreachable {
		fmt.Fprintf(buf, "✗ %-24s %16s  nicht innerhalb von %d Jahren erreichbar\n",
			goal.Title, FormatCurrency(goal.TargetValue), domain.GoalHorizonMonths/12)
	}
	if n := len(g.Timeline); n > 0 {
		fmt.Fprintf(buf, "Kontostand nach %d Monaten: %s\n", g.Timeline[n-1].Month, FormatCurrency(g.Timeline[n-1].Balance))
	}
	return true
}

var pathLabels = map[string]string{
	"worst":  "Schlechtester Verlauf",
	"best":   "Bester Verlauf",
	"sample": "Stichprobe",
}

// PathLabel translates a selected path label for display
func PathLabel(label string) string {
	if german, ok := pathLabels[label]; ok {
		return german
	}
	if strings.HasPrefix(label, "p") {
		return label[1:] + ". Perzentil"
	}
	return label
}

func writeMonteCarlo(buf *bytes.Buffer, report *Report) bool {
	mc := report.MonteCarlo
	if mc == nil {
		return false
	}

	buf.WriteString(heading("Monte-Carlo-Simulation"))
	fmt.Fprintf(buf, "Simulationen:         %d über %d Jahre (Seed %d)\n", mc.Simulations, mc.Years, mc.Seed)
	fmt.Fprintf(buf, "Portfolio:            Rendite %s, Volatilität %s\n",
		FormatPercentage(mc.Portfolio.Drift), FormatPercentage(mc.Portfolio.Volatility))
	fmt.Fprintf(buf, "Einzahlungen gesamt:  %s\n", FormatCurrency(mc.TotalContributions))
	fmt.Fprintln(buf)

	stats := mc.OverallStats
	fmt.Fprintln(buf, "Endwerte:")
	fmt.Fprintf(buf, "  Schlechtester:      %s\n", FormatCurrency(stats.Worst))
	fmt.Fprintf(buf, "  10. Perzentil:      %s\n", FormatCurrency(stats.P10))
	fmt.Fprintf(buf, "  Median:             %s\n", FormatCurrency(stats.Median))
	fmt.Fprintf(buf, "  90. Perzentil:      %s\n", FormatCurrency(stats.P90))
	fmt.Fprintf(buf, "  Bester:             %s\n", FormatCurrency(stats.Best))
	fmt.Fprintln(buf)

	fmt.Fprintf(buf, "%-12s %16s %16s %12s\n", "Perzentil", "Max. Drawdown", "Rendite p.a.", "Sharpe")
	fmt.Fprintln(buf, strings.Repeat("-", 59))
	for _, level := range domain.PercentileLevels {
		m, ok := mc.PercentileMetrics[level]
		if !ok {
			continue
		}
		fmt.Fprintf(buf, "%-12s %16s %16s %12s\n", fmt.Sprintf("P%d", level),
			FormatPercentage(m.MaxDrawdown), FormatPercentage(m.AvgAnnualReturn), formatNumber(RoundMoney(m.SharpeRatio), 2))
	}

	if len(mc.SelectedPaths) > 0 {
		fmt.Fprintln(buf)
		fmt.Fprintln(buf, "Ausgewählte Verläufe:")
		for _, path := range mc.SelectedPaths {
			fmt.Fprintf(buf, "  %-24s %18s\n", PathLabel(path.Label), FormatCurrency(path.EndValue))
		}
	}
	return true
}
