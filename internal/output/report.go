package output

import (
	"strings"
	"time"

	"github.com/rgehrsitz/finrechner/internal/calculation"
	"github.com/rgehrsitz/finrechner/internal/domain"
	"github.com/shopspring/decimal"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
	"golang.org/x/text/number"
)

// Report bundles the results of one invocation. Formatters render every
// non-nil section in a fixed order.
type Report struct {
	Projection    *ProjectionReport        `json:"projection,omitempty"`
	Retirement    *domain.RetirementResult `json:"retirement,omitempty"`
	Withdrawal    *domain.WithdrawalPlan   `json:"withdrawal,omitempty"`
	MaxWithdrawal *MaxWithdrawalReport     `json:"maxWithdrawal,omitempty"`
	Goals         *domain.GoalTimeline     `json:"goals,omitempty"`
	MonteCarlo    *domain.MonteCarloResult `json:"monteCarlo,omitempty"`
}

// ProjectionReport is a compound growth series with its summary
type ProjectionReport struct {
	Points  []domain.ProjectionPoint `json:"points"`
	Summary domain.ProjectionSummary `json:"summary"`
}

// MaxWithdrawalReport pairs the inverse withdrawal inputs with the solved amount
type MaxWithdrawalReport struct {
	Params            domain.MaxWithdrawalParams `json:"params"`
	MonthlyWithdrawal float64                    `json:"monthlyWithdrawal"`
}

// NewProjectionReport summarizes a compound growth series
func NewProjectionReport(points []domain.ProjectionPoint) *ProjectionReport {
	return &ProjectionReport{
		Points:  points,
		Summary: calculation.SummarizeProjection(points),
	}
}

// Empty reports whether no section is set
func (r *Report) Empty() bool {
	return r == nil || (r.Projection == nil && r.Retirement == nil && r.Withdrawal == nil &&
		r.MaxWithdrawal == nil && r.Goals == nil && r.MonteCarlo == nil)
}

var (
	germanPrinter = message.NewPrinter(language.German)
	germanUpper   = cases.Upper(language.German)
)

var germanMonths = [...]string{
	"Januar", "Februar", "März", "April", "Mai", "Juni",
	"Juli", "August", "September", "Oktober", "November", "Dezember",
}

// RoundMoney rounds an amount to cents, half away from zero
func RoundMoney(amount float64) decimal.Decimal {
	return decimal.NewFromFloat(amount).Round(2)
}

// FormatCurrency formats an amount the German way, e.g. "1.234,56 €"
func FormatCurrency(amount float64) string {
	return formatNumber(RoundMoney(amount), 2) + " €"
}

// FormatPercentage formats a percent value with one decimal, e.g. "7,5 %"
func FormatPercentage(percent float64) string {
	return formatNumber(decimal.NewFromFloat(percent).Round(1), 1) + " %"
}

// FormatMonth formats a date as German month and year, e.g. "März 2031"
func FormatMonth(t time.Time) string {
	return germanMonths[t.Month()-1] + " " + t.Format("2006")
}

func formatNumber(d decimal.Decimal, places int) string {
	if d.IsZero() {
		// avoid "-0,00"
		d = decimal.Zero
	}
	return germanPrinter.Sprint(number.Decimal(d.InexactFloat64(),
		number.MinFractionDigits(places), number.MaxFractionDigits(places)))
}

func heading(title string) string {
	upper := germanUpper.String(title)
	return upper + "\n" + strings.Repeat("=", len([]rune(upper))) + "\n"
}
