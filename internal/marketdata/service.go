package marketdata

import (
	"context"
	"time"

	"github.com/rgehrsitz/finrechner/internal/config"
	"github.com/rgehrsitz/finrechner/internal/domain"
)

// DateLayout is the date format used by every price source
const DateLayout = "2006-01-02"

// PriceService supplies historical closing prices for one ticker, keyed by trading day
type PriceService interface {
	Prices(ctx context.Context, ticker string, from, to time.Time) (map[time.Time]float64, error)
}

// NewEstimatorFromSettings builds an estimator over the configured price source.
// It returns nil when neither a price directory nor a price service URL is set.
func NewEstimatorFromSettings(s config.MarketDataSettings) *Estimator {
	var service PriceService
	switch {
	case s.PriceDir != "":
		service = NewCSVPriceService(s.PriceDir)
	case s.PriceURL != "":
		httpService := NewHTTPPriceService(s.PriceURL)
		if s.Timeout > 0 {
			httpService.Timeout = s.Timeout
		}
		service = httpService
	default:
		return nil
	}

	estimator := NewEstimator(service)
	if s.LookbackYears > 0 {
		estimator.LookbackYears = s.LookbackYears
	}
	return estimator
}

func unavailable(ticker, message string, cause error) *domain.CalcError {
	return &domain.CalcError{
		Kind:      domain.ErrExternalDataUnavailable,
		Operation: "prices",
		Field:     ticker,
		Message:   message,
		Cause:     cause,
	}
}

func inRange(day, from, to time.Time) bool {
	if !from.IsZero() && day.Before(from) {
		return false
	}
	if !to.IsZero() && day.After(to) {
		return false
	}
	return true
}
