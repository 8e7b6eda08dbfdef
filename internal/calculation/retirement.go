package calculation

import (
	"math"

	"github.com/rgehrsitz/finrechner/internal/domain"
)

const opRetirement = "retirement"

// SolveRetirement runs one of the three retirement modes over the shared
// accumulation and payout recurrences
func SolveRetirement(mode domain.RetirementMode, params domain.RetirementParams) (*domain.RetirementResult, error) {
	if err := validateRetirement(mode, params); err != nil {
		return nil, err
	}

	switch mode {
	case domain.ModeMaxPayout:
		return solveMaxPayout(params), nil
	case domain.ModeEarliestAge:
		return solveEarliestAge(params)
	default:
		return solveRequiredSavings(params)
	}
}

func solveMaxPayout(params domain.RetirementParams) *domain.RetirementResult {
	years := params.RetirementAge - params.CurrentAge
	capitalPhase := accumulate(params, params.MonthlySavings, years)
	capital := capitalPhase[len(capitalPhase)-1].Nominal

	payoutYears := params.LifeExpectancy - params.RetirementAge
	rate := params.Rate / 100
	gross := grossPayoutFor(params.AnnuityType, capital, rate, payoutYears)

	return &domain.RetirementResult{
		Mode:               domain.ModeMaxPayout,
		AnnuityType:        params.AnnuityType,
		Reachable:          true,
		RetirementAge:      params.RetirementAge,
		RetirementCapital:  capital,
		RequiredCapital:    capital,
		GrossMonthlyPayout: gross,
		NetMonthlyPayout:   netOf(gross, params.TaxRate),
		CapitalPhase:       capitalPhase,
		PayoutPhase:        payout(params, capital, gross, payoutYears),
	}
}

func solveEarliestAge(params domain.RetirementParams) (*domain.RetirementResult, error) {
	gross := grossOf(params.DesiredNetPayout, params.TaxRate)
	rate := params.Rate / 100

	result := &domain.RetirementResult{
		Mode:               domain.ModeEarliestAge,
		AnnuityType:        params.AnnuityType,
		GrossMonthlyPayout: gross,
		NetMonthlyPayout:   params.DesiredNetPayout,
	}

	acc := newAccumulator(params, params.MonthlySavings)
	series := []domain.ProjectionPoint{acc.point()}

	for age := params.CurrentAge; age <= domain.MaxRetirementAge; age++ {
		if age > params.CurrentAge {
			acc.step()
			series = append(series, acc.point())
		}

		// retiring at or after life expectancy leaves no payout phase for either annuity
		payoutYears := params.LifeExpectancy - age
		if payoutYears <= 0 {
			break
		}
		required, err := requiredCapital(params.AnnuityType, gross, rate, payoutYears)
		if err != nil {
			return nil, err
		}
		result.RequiredCapital = required

		if acc.balance >= required {
			result.Reachable = true
			result.RetirementAge = age
			result.RetirementCapital = acc.balance
			result.CapitalPhase = series
			result.PayoutPhase = payout(params, acc.balance, gross, payoutYears)
			return result, nil
		}
	}

	// not reachable before life expectancy or MaxRetirementAge: report the accumulation for context
	result.CapitalPhase = series
	result.RetirementCapital = acc.balance
	return result, nil
}

func solveRequiredSavings(params domain.RetirementParams) (*domain.RetirementResult, error) {
	gross := grossOf(params.DesiredNetPayout, params.TaxRate)
	rate := params.Rate / 100
	years := params.RetirementAge - params.CurrentAge
	payoutYears := params.LifeExpectancy - params.RetirementAge

	required, err := requiredCapital(params.AnnuityType, gross, rate, payoutYears)
	if err != nil {
		return nil, err
	}

	m := monthlyRate(rate)
	months := float64(12 * years)
	futureCapital := params.CurrentCapital * math.Pow(1+m, months)
	factor := months
	if m != 0 {
		factor = (math.Pow(1+m, months) - 1) / m
	}
	monthly := (required - futureCapital) / factor
	if monthly < 0 {
		monthly = 0
	}

	level := params
	level.SavingsIncrease = 0
	capitalPhase := accumulate(level, monthly, years)
	capital := capitalPhase[len(capitalPhase)-1].Nominal

	return &domain.RetirementResult{
		Mode:                   domain.ModeRequiredSavings,
		AnnuityType:            params.AnnuityType,
		Reachable:              true,
		RetirementAge:          params.RetirementAge,
		RetirementCapital:      capital,
		RequiredCapital:        required,
		GrossMonthlyPayout:     gross,
		NetMonthlyPayout:       params.DesiredNetPayout,
		RequiredMonthlySavings: monthly,
		CapitalPhase:           capitalPhase,
		PayoutPhase:            payout(params, capital, gross, payoutYears),
	}, nil
}

// accumulator carries the yearly savings recurrence. Savings are paid in
// before growth and grow by SavingsIncrease after every year.
type accumulator struct {
	year        int
	balance     float64
	contributed float64
	inflation   float64 // running deflator
	annual      float64
	rate        float64
	inflRate    float64
	increase    float64
}

func newAccumulator(params domain.RetirementParams, monthlySavings float64) *accumulator {
	return &accumulator{
		balance:     params.CurrentCapital,
		contributed: params.CurrentCapital,
		inflation:   1,
		annual:      monthlySavings * 12,
		rate:        params.Rate / 100,
		inflRate:    params.Inflation / 100,
		increase:    params.SavingsIncrease / 100,
	}
}

func (a *accumulator) step() {
	a.year++
	a.balance = (a.balance + a.annual) * (1 + a.rate)
	a.contributed += a.annual
	a.inflation *= 1 + a.inflRate
	a.annual *= 1 + a.increase
}

func (a *accumulator) point() domain.ProjectionPoint {
	return domain.ProjectionPoint{
		Year:          a.year,
		Nominal:       a.balance,
		Real:          a.balance / a.inflation,
		Contributions: a.contributed,
	}
}

func accumulate(params domain.RetirementParams, monthlySavings float64, years int) []domain.ProjectionPoint {
	acc := newAccumulator(params, monthlySavings)
	series := make([]domain.ProjectionPoint, 0, years+1)
	series = append(series, acc.point())
	for y := 0; y < years; y++ {
		acc.step()
		series = append(series, acc.point())
	}
	return series
}

// payout simulates the decumulation phase. Real values are relative to the
// start of the payout phase and Contributions holds the cumulative gross payout.
func payout(params domain.RetirementParams, capital, gross float64, years int) []domain.ProjectionPoint {
	if years < 0 {
		years = 0
	}
	rate := params.Rate / 100
	inflRate := params.Inflation / 100
	m := monthlyRate(rate)

	series := make([]domain.ProjectionPoint, 0, years+1)
	series = append(series, domain.ProjectionPoint{Year: 0, Nominal: capital, Real: capital})

	balance, deflator, paid := capital, 1.0, 0.0
	for y := 1; y <= years; y++ {
		if params.AnnuityType == domain.AnnuityEndless {
			balance = balance*(1+rate) - 12*gross
		} else {
			for month := 0; month < 12; month++ {
				balance = balance*(1+m) - gross
			}
			// the amortisation leaves float dust at the end of the horizon
			if balance < 0 && balance > -1e-6*math.Max(1, capital) {
				balance = 0
			}
		}
		paid += 12 * gross
		deflator *= 1 + inflRate
		series = append(series, domain.ProjectionPoint{
			Year:          y,
			Nominal:       balance,
			Real:          balance / deflator,
			Contributions: paid,
		})
	}
	return series
}

// grossPayoutFor is the monthly gross payout a capital supports
func grossPayoutFor(annuity domain.AnnuityType, capital, rate float64, years int) float64 {
	if annuity == domain.AnnuityEndless {
		if rate <= 0 {
			return 0
		}
		return capital * rate / 12
	}
	months := float64(years * 12)
	if months <= 0 {
		return 0
	}
	m := monthlyRate(rate)
	if m == 0 {
		return capital / months
	}
	return capital * m / (1 - math.Pow(1+m, -months))
}

// requiredCapital inverts grossPayoutFor
func requiredCapital(annuity domain.AnnuityType, gross, rate float64, years int) (float64, error) {
	if annuity == domain.AnnuityEndless {
		if rate <= 0 {
			return 0, domain.InvalidInput(opRetirement, "rate", "an endless annuity needs a positive return, got %v%%", rate*100)
		}
		return 12 * gross / rate, nil
	}
	months := float64(years * 12)
	m := monthlyRate(rate)
	if m == 0 {
		return gross * months, nil
	}
	return gross * (1 - math.Pow(1+m, -months)) / m, nil
}

// monthlyRate is the compound-equivalent monthly rate of an annual rate
func monthlyRate(annual float64) float64 {
	if annual == 0 {
		return 0
	}
	return math.Pow(1+annual, 1.0/12) - 1
}

func netOf(gross, taxPercent float64) float64 {
	return gross * (1 - taxPercent/100)
}

func grossOf(net, taxPercent float64) float64 {
	return net / (1 - taxPercent/100)
}

func validateRetirement(mode domain.RetirementMode, p domain.RetirementParams) error {
	if !mode.Valid() {
		return domain.InvalidInput(opRetirement, "mode", "unknown mode %q", mode)
	}
	if !p.AnnuityType.Valid() {
		return domain.InvalidInput(opRetirement, "annuity_type", "unknown annuity type %q", p.AnnuityType)
	}
	if p.CurrentAge < 0 || p.CurrentAge > domain.MaxRetirementAge {
		return domain.InvalidInput(opRetirement, "current_age", "must be between 0 and %d, got %d", domain.MaxRetirementAge, p.CurrentAge)
	}
	if p.LifeExpectancy <= p.CurrentAge {
		return domain.InvalidInput(opRetirement, "life_expectancy", "must be greater than the current age %d, got %d", p.CurrentAge, p.LifeExpectancy)
	}
	if mode != domain.ModeEarliestAge {
		if p.RetirementAge < p.CurrentAge {
			return domain.InvalidInput(opRetirement, "retirement_age", "cannot be before the current age %d, got %d", p.CurrentAge, p.RetirementAge)
		}
		if p.RetirementAge >= p.LifeExpectancy {
			return domain.InvalidInput(opRetirement, "retirement_age", "must be before the life expectancy %d, got %d", p.LifeExpectancy, p.RetirementAge)
		}
	}
	if mode == domain.ModeRequiredSavings && p.RetirementAge == p.CurrentAge {
		return domain.InvalidInput(opRetirement, "retirement_age", "must be after the current age to save towards it")
	}

	for _, check := range []struct {
		field string
		value float64
	}{
		{"current_capital", p.CurrentCapital},
		{"monthly_savings", p.MonthlySavings},
		{"desired_net_payout", p.DesiredNetPayout},
	} {
		if err := domain.CheckNonNegative(opRetirement, check.field, check.value); err != nil {
			return err
		}
	}
	if err := domain.CheckRate(opRetirement, "rate", p.Rate); err != nil {
		return err
	}
	if err := domain.CheckRate(opRetirement, "inflation", p.Inflation); err != nil {
		return err
	}
	if err := domain.CheckRate(opRetirement, "savings_increase", p.SavingsIncrease); err != nil {
		return err
	}
	if err := domain.CheckFinite(opRetirement, "tax_rate", p.TaxRate); err != nil {
		return err
	}
	if p.TaxRate < 0 || p.TaxRate >= 100 {
		return domain.InvalidInput(opRetirement, "tax_rate", "must be in [0, 100), got %v", p.TaxRate)
	}
	return nil
}
