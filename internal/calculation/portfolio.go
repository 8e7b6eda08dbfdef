package calculation

import (
	"math"
	"strings"

	"github.com/rgehrsitz/finrechner/internal/domain"
)

const opPortfolio = "portfolio"

// weightTolerance is how far the weight sum may stray from 100
const weightTolerance = 0.01

// AggregatePortfolio combines assets into one drift/volatility pair by weighting
// each linearly. Correlation between assets is ignored, so the volatility is an
// upper bound for a diversified portfolio.
func AggregatePortfolio(assets []domain.AssetSpec) (domain.Portfolio, error) {
	if len(assets) == 0 {
		return domain.Portfolio{}, domain.InvalidInput(opPortfolio, "assets", "at least one asset is required")
	}

	var sum float64
	var missing []string
	for _, asset := range assets {
		if err := domain.CheckNonNegative(opPortfolio, "weight", asset.Weight); err != nil {
			return domain.Portfolio{}, err
		}
		if err := domain.CheckRate(opPortfolio, "annual_drift", asset.AnnualDrift); err != nil {
			return domain.Portfolio{}, err
		}
		if err := domain.CheckFinite(opPortfolio, "annual_volatility", asset.AnnualVolatility); err != nil {
			return domain.Portfolio{}, err
		}
		if asset.AnnualVolatility < 0 {
			return domain.Portfolio{}, domain.ConstraintViolation(opPortfolio, "negative_volatility",
				"asset %s has a negative volatility of %v%%", asset.Ticker, asset.AnnualVolatility)
		}
		if asset.DataUnavailable {
			missing = append(missing, asset.Ticker)
		}
		sum += asset.Weight
	}

	if len(missing) > 0 {
		return domain.Portfolio{}, domain.ConstraintViolation(opPortfolio, "missing_estimate",
			"no drift/volatility estimate for %s", strings.Join(missing, ", "))
	}
	if math.Abs(sum-100) > weightTolerance {
		return domain.Portfolio{}, domain.ConstraintViolation(opPortfolio, "weights_sum",
			"asset weights sum to %.2f, expected 100", sum)
	}

	var portfolio domain.Portfolio
	for _, asset := range assets {
		w := asset.Weight / sum
		portfolio.Drift += w * asset.AnnualDrift
		portfolio.Volatility += w * asset.AnnualVolatility
	}
	return portfolio, nil
}
