package calculation

import (
	"math"

	"github.com/rgehrsitz/finrechner/internal/domain"
)

const opCompound = "compound"

// maxProjectionYears keeps a mistyped horizon from allocating a huge series
const maxProjectionYears = 1000

// SimulateCompoundGrowth projects a balance year by year. Point 0 is the principal;
// each following year adds that year's contribution and then applies growth.
// The min/max tracks are only filled when ShowRange is set.
func SimulateCompoundGrowth(params domain.CompoundParams) ([]domain.ProjectionPoint, error) {
	if err := validateCompound(params); err != nil {
		return nil, err
	}

	rate := params.Rate / 100
	minRate := (params.Rate + params.WorstCase) / 100
	maxRate := (params.Rate + params.BestCase) / 100
	inflation := params.Inflation / 100

	series := make([]domain.ProjectionPoint, 0, params.Years+1)
	first := domain.ProjectionPoint{
		Year:          0,
		Nominal:       params.Principal,
		Real:          params.Principal,
		Contributions: params.Principal,
	}
	if params.ShowRange {
		first.Range = &domain.BalanceRange{
			MinNominal: params.Principal,
			MaxNominal: params.Principal,
			MinReal:    params.Principal,
			MaxReal:    params.Principal,
		}
	}
	series = append(series, first)

	balance, minBalance, maxBalance := params.Principal, params.Principal, params.Principal
	contributed := params.Principal
	// validated above; aliases like "biweekly" resolve here
	interval, _ := domain.ParseInterval(string(params.Contribution.Interval))
	baseAnnual := AnnualizeContribution(params.Contribution.Amount, interval)

	for year := 1; year <= params.Years; year++ {
		contribution := annualContribution(params.Contribution, baseAnnual, year)
		contributed += contribution

		balance = (balance + contribution) * (1 + rate)
		deflator := math.Pow(1+inflation, float64(year))

		point := domain.ProjectionPoint{
			Year:          year,
			Nominal:       balance,
			Real:          balance / deflator,
			Contributions: contributed,
		}
		if params.ShowRange {
			minBalance = (minBalance + contribution) * (1 + minRate)
			maxBalance = (maxBalance + contribution) * (1 + maxRate)
			point.Range = &domain.BalanceRange{
				MinNominal: minBalance,
				MaxNominal: maxBalance,
				MinReal:    minBalance / deflator,
				MaxReal:    maxBalance / deflator,
			}
		}
		series = append(series, point)
	}

	return series, nil
}

// annualContribution returns what is paid in during the given year (1-based)
func annualContribution(schedule domain.ContributionSchedule, baseAnnual float64, year int) float64 {
	if schedule.Advanced() {
		amount := 0.0
		// later periods override earlier ones when they overlap
		for _, period := range schedule.Periods {
			if year >= period.StartYear && year <= period.EndYear {
				amount = period.MonthlyAmount * 12
			}
		}
		return amount
	}
	if schedule.DynamicIncrease != 0 {
		return baseAnnual * math.Pow(1+schedule.DynamicIncrease/100, float64(year))
	}
	return baseAnnual
}

func validateCompound(params domain.CompoundParams) error {
	if err := domain.CheckNonNegative(opCompound, "principal", params.Principal); err != nil {
		return err
	}
	if err := domain.CheckRate(opCompound, "rate", params.Rate); err != nil {
		return err
	}
	if err := domain.CheckRate(opCompound, "inflation", params.Inflation); err != nil {
		return err
	}
	if params.Years < 0 || params.Years > maxProjectionYears {
		return domain.InvalidInput(opCompound, "years", "must be between 0 and %d, got %d", maxProjectionYears, params.Years)
	}
	if params.ShowRange {
		if err := domain.CheckRate(opCompound, "worst_case", params.Rate+params.WorstCase); err != nil {
			return err
		}
		if err := domain.CheckRate(opCompound, "best_case", params.Rate+params.BestCase); err != nil {
			return err
		}
	}
	return validateSchedule(opCompound, params.Contribution)
}

func validateSchedule(op string, schedule domain.ContributionSchedule) error {
	if schedule.Advanced() {
		for i, period := range schedule.Periods {
			if period.StartYear < 0 || period.EndYear < period.StartYear {
				return domain.InvalidInput(op, "periods", "period %d has an invalid year range %d-%d", i+1, period.StartYear, period.EndYear)
			}
			if err := domain.CheckFinite(op, "periods.monthly_amount", period.MonthlyAmount); err != nil {
				return err
			}
		}
		return nil
	}
	if err := domain.CheckFinite(op, "contribution.amount", schedule.Amount); err != nil {
		return err
	}
	if _, err := domain.ParseInterval(string(schedule.Interval)); err != nil {
		return err
	}
	return domain.CheckRate(op, "contribution.dynamic_increase", schedule.DynamicIncrease)
}

// SummarizeProjection reduces a series to its final figures. An empty series yields a zero summary.
func SummarizeProjection(series []domain.ProjectionPoint) domain.ProjectionSummary {
	if len(series) == 0 {
		return domain.ProjectionSummary{}
	}
	last := series[len(series)-1]
	return domain.ProjectionSummary{
		Years:               last.Year,
		FinalNominal:        last.Nominal,
		FinalReal:           last.Real,
		TotalContributions:  last.Contributions,
		TotalInterest:       last.Nominal - last.Contributions,
		PurchasingPowerLoss: last.Nominal - last.Real,
	}
}
