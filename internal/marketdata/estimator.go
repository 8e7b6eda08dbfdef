package marketdata

import (
	"context"
	"errors"
	"fmt"
	"math"
	"sort"
	"time"

	"github.com/rgehrsitz/finrechner/internal/calculation"
	"github.com/rgehrsitz/finrechner/internal/domain"
	"golang.org/x/sync/errgroup"
)

const (
	tradingDays      = float64(domain.TradingDaysPerYear)
	defaultLookback  = 5
	maxParallelFetch = 4
	minObservations  = 20
)

// errTooFewPrices is returned when a history is too short to estimate from
var errTooFewPrices = errors.New("not enough prices to estimate returns")

// Estimator turns price histories into drift and volatility estimates
type Estimator struct {
	Service PriceService
	Logger  calculation.Logger
	// LookbackYears is how much history is requested
	LookbackYears int
	Now           func() time.Time
}

// NewEstimator creates an estimator over service with a five year lookback
func NewEstimator(service PriceService) *Estimator {
	return &Estimator{
		Service:       service,
		Logger:        calculation.NopLogger{},
		LookbackYears: defaultLookback,
		Now:           time.Now,
	}
}

// SetLogger sets the logger; nil restores the no-op logger
func (e *Estimator) SetLogger(logger calculation.Logger) {
	if logger == nil {
		logger = calculation.NopLogger{}
	}
	e.Logger = logger
}

// EstimateAssets fills AnnualDrift and AnnualVolatility of every asset from its
// price history. An asset whose history cannot be fetched or used keeps
// drift and volatility at 0, is marked DataUnavailable and carries a warning;
// the Monte Carlo engine refuses to run such a portfolio. Only context
// cancellation is returned as an error.
func (e *Estimator) EstimateAssets(ctx context.Context, assets []domain.AssetSpec) ([]domain.AssetSpec, error) {
	now := time.Now
	if e.Now != nil {
		now = e.Now
	}
	lookback := e.LookbackYears
	if lookback <= 0 {
		lookback = defaultLookback
	}
	to := now()
	from := to.AddDate(-lookback, 0, 0)

	out := make([]domain.AssetSpec, len(assets))
	copy(out, assets)

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(maxParallelFetch)
	for i := range out {
		g.Go(func() error {
			asset := &out[i]
			prices, err := e.Service.Prices(gctx, asset.Ticker, from, to)
			if err == nil {
				asset.AnnualDrift, asset.AnnualVolatility, err = EstimateFromPrices(prices)
			}
			if err != nil {
				if ctxErr := gctx.Err(); ctxErr != nil {
					return ctxErr
				}
				e.fallback(asset, err)
				return nil
			}
			asset.DataUnavailable = false
			asset.Warning = ""
			e.logger().Debugf("estimated %s: drift %.2f%%, volatility %.2f%%", asset.Ticker, asset.AnnualDrift, asset.AnnualVolatility)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return out, nil
}

func (e *Estimator) fallback(asset *domain.AssetSpec, cause error) {
	asset.AnnualDrift = 0
	asset.AnnualVolatility = 0
	asset.DataUnavailable = true
	asset.Warning = fmt.Sprintf("Keine historischen Daten für %s: %v", asset.Ticker, cause)
	e.logger().Warnf("price history for %s unavailable, using drift=0 volatility=0: %v", asset.Ticker, cause)
}

func (e *Estimator) logger() calculation.Logger {
	if e.Logger == nil {
		return calculation.NopLogger{}
	}
	return e.Logger
}

// EstimateFromPrices annualises daily log returns into a drift and volatility in percent:
// drift = exp(252*mean) - 1 and volatility = stdev*sqrt(252)
func EstimateFromPrices(prices map[time.Time]float64) (drift, volatility float64, err error) {
	if len(prices) < minObservations {
		return 0, 0, errTooFewPrices
	}

	days := make([]time.Time, 0, len(prices))
	for day := range prices {
		days = append(days, day)
	}
	sort.Slice(days, func(i, j int) bool { return days[i].Before(days[j]) })

	series := make([]float64, len(days))
	for i, day := range days {
		series[i] = prices[day]
	}
	returns := logReturns(series)
	if len(returns) < minObservations-1 {
		return 0, 0, errTooFewPrices
	}

	drift = (math.Exp(tradingDays*mean(returns)) - 1) * 100
	volatility = stdDev(returns) * math.Sqrt(tradingDays) * 100
	return drift, volatility, nil
}

func logReturns(series []float64) []float64 {
	if len(series) < 2 {
		return nil
	}
	returns := make([]float64, 0, len(series)-1)
	for i := 1; i < len(series); i++ {
		if series[i-1] <= 0 || series[i] <= 0 {
			continue
		}
		returns = append(returns, math.Log(series[i]/series[i-1]))
	}
	return returns
}

func mean(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}
	sum := 0.0
	for _, v := range values {
		sum += v
	}
	return sum / float64(len(values))
}

func stdDev(values []float64) float64 {
	if len(values) < 2 {
		return 0
	}
	m := mean(values)
	var sumSquares float64
	for _, v := range values {
		diff := v - m
		sumSquares += diff * diff
	}
	return math.Sqrt(sumSquares / float64(len(values)-1))
}
