package calculation

import (
	"math"

	"github.com/rgehrsitz/finrechner/internal/domain"
)

const (
	opWithdrawal    = "withdrawal"
	opMaxWithdrawal = "max_withdrawal"
)

// SimulateWithdrawalPlan draws a fixed monthly amount from a growing balance,
// taxing gains above the tax-free allowance, until the balance is used up or
// domain.MaxWithdrawalYears have passed
func SimulateWithdrawalPlan(params domain.WithdrawalParams) (*domain.WithdrawalPlan, error) {
	if err := validateWithdrawal(params); err != nil {
		return nil, err
	}

	rate := params.Rate / 100
	taxRate := params.TaxRate / 100
	annual := params.MonthlyWithdrawal * 12

	plan := &domain.WithdrawalPlan{
		Points: []domain.WithdrawalPoint{{Year: 0, Balance: params.Principal}},
	}
	if params.Principal == 0 {
		plan.Depleted = true
		return plan, nil
	}

	balance := params.Principal
	for year := 1; year <= domain.MaxWithdrawalYears; year++ {
		growth := balance * rate
		taxable := math.Max(0, growth-domain.TaxFreeWithdrawalShare*annual)
		tax := math.Max(0, taxable*taxRate)
		balance += growth - annual - tax

		plan.TotalWithdrawn += annual
		plan.TotalTax += tax

		if balance <= 0 {
			plan.Points = append(plan.Points, domain.WithdrawalPoint{Year: year, Balance: 0, Withdrawn: annual, TaxPaid: tax})
			plan.Depleted = true
			plan.DepletionYear = year
			if balance < 0 {
				// the last withdrawal could not be paid in full
				plan.DepletionYear = year - 1
				plan.TotalWithdrawn += balance
			}
			return plan, nil
		}
		plan.Points = append(plan.Points, domain.WithdrawalPoint{Year: year, Balance: balance, Withdrawn: annual, TaxPaid: tax})
	}

	plan.DepletionYear = domain.MaxWithdrawalYears
	return plan, nil
}

// SolveMaxWithdrawal returns the largest sustainable monthly withdrawal.
// The fixed-horizon form uses rate/12 as the monthly rate.
func SolveMaxWithdrawal(params domain.MaxWithdrawalParams) (float64, error) {
	if err := domain.CheckNonNegative(opMaxWithdrawal, "principal", params.Principal); err != nil {
		return 0, err
	}
	if err := domain.CheckRate(opMaxWithdrawal, "rate", params.Rate); err != nil {
		return 0, err
	}
	rate := params.Rate / 100

	switch params.Strategy {
	case domain.StrategyPerpetual:
		if rate <= 0 {
			return 0, nil
		}
		return params.Principal * rate / 12, nil
	case domain.StrategyFixedHorizon:
		if params.Years <= 0 {
			return 0, domain.InvalidInput(opMaxWithdrawal, "years", "must be positive for a fixed horizon, got %d", params.Years)
		}
		months := float64(params.Years * 12)
		m := rate / 12
		if m == 0 {
			return params.Principal / months, nil
		}
		return params.Principal * m / (1 - math.Pow(1+m, -months)), nil
	default:
		return 0, domain.InvalidInput(opMaxWithdrawal, "strategy", "unknown strategy %q", params.Strategy)
	}
}

func validateWithdrawal(p domain.WithdrawalParams) error {
	if err := domain.CheckNonNegative(opWithdrawal, "principal", p.Principal); err != nil {
		return err
	}
	if err := domain.CheckNonNegative(opWithdrawal, "monthly_withdrawal", p.MonthlyWithdrawal); err != nil {
		return err
	}
	if err := domain.CheckRate(opWithdrawal, "rate", p.Rate); err != nil {
		return err
	}
	if err := domain.CheckNonNegative(opWithdrawal, "tax_rate", p.TaxRate); err != nil {
		return err
	}
	if p.TaxRate > 100 {
		return domain.InvalidInput(opWithdrawal, "tax_rate", "cannot exceed 100, got %v", p.TaxRate)
	}
	return nil
}
