package calculation

import "github.com/rgehrsitz/finrechner/internal/domain"

// AnnualizeContribution converts a periodic amount into its yearly total.
// Unknown intervals yield 0; use AnnualizeContributionStrict to reject them.
func AnnualizeContribution(amount float64, interval domain.Interval) float64 {
	n, ok := interval.PeriodsPerYear()
	if !ok {
		return 0
	}
	return amount * n
}

// AnnualizeContributionStrict is AnnualizeContribution but fails with
// domain.ErrInvalidInterval for unknown intervals
func AnnualizeContributionStrict(amount float64, interval domain.Interval) (float64, error) {
	parsed, err := domain.ParseInterval(string(interval))
	if err != nil {
		return 0, err
	}
	n, _ := parsed.PeriodsPerYear()
	return amount * n, nil
}
