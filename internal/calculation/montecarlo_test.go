package calculation

import (
	"context"
	"errors"
	"math"
	"math/rand/v2"
	"sync/atomic"
	"testing"

	"github.com/rgehrsitz/finrechner/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testMonteCarloParams() domain.MonteCarloParams {
	return domain.MonteCarloParams{
		InitialInvestment:   10000,
		MonthlyContribution: 200,
		Years:               5,
		Simulations:         60,
		RiskFreeRate:        2,
		Seed:                42,
		Assets: []domain.AssetSpec{
			{Ticker: "VWCE", Weight: 70, AnnualDrift: 7, AnnualVolatility: 15},
			{Ticker: "XEON", Weight: 30, AnnualDrift: 3, AnnualVolatility: 1},
		},
	}
}

func TestNewMonteCarloEngine(t *testing.T) {
	engine := NewMonteCarloEngine()

	assert.NotNil(t, engine.Logger, "Should initialize logger")
	assert.Greater(t, engine.Workers, 0)
	assert.NotNil(t, engine.SourceFactory)

	custom := &TestLogger{}
	engine.SetLogger(custom)
	assert.Equal(t, custom, engine.Logger, "Should set custom logger")

	engine.SetLogger(nil)
	assert.IsType(t, NopLogger{}, engine.Logger, "Should be no-op logger")
}

func TestMonteCarlo_ZeroVolatilityIsDeterministic(t *testing.T) {
	params := domain.MonteCarloParams{
		InitialInvestment: 10000,
		Years:             10,
		Simulations:       25,
		Seed:              7,
		Assets:            []domain.AssetSpec{{Ticker: "BOND", Weight: 100, AnnualDrift: 7}},
	}

	result, err := NewMonteCarloEngine().Run(context.Background(), params, nil)
	require.NoError(t, err)

	want := 10000 * math.Pow(1.07, 10)
	assert.InEpsilon(t, want, result.OverallStats.Median, 1e-9)
	assert.Equal(t, result.OverallStats.Worst, result.OverallStats.Best)
	assert.Equal(t, result.OverallStats.Worst, result.OverallStats.Median)
	for _, path := range result.SelectedPaths {
		assert.InEpsilon(t, want, path.EndValue, 1e-9)
	}
	assert.InEpsilon(t, 7, result.PercentileMetrics[50].AvgAnnualReturn, 1e-6)
	assert.Equal(t, 0.0, result.PercentileMetrics[50].MaxDrawdown)
	assert.Equal(t, 0.0, result.PercentileMetrics[50].SharpeRatio)
}

func TestMonteCarlo_ZeroVolatilityWithContributions(t *testing.T) {
	params := domain.MonteCarloParams{
		InitialInvestment:   5000,
		MonthlyContribution: 300,
		Years:               3,
		Simulations:         5,
		Seed:                1,
		Assets:              []domain.AssetSpec{{Ticker: "CASH", Weight: 100, AnnualDrift: 4}},
	}
	result, err := NewMonteCarloEngine().Run(context.Background(), params, nil)
	require.NoError(t, err)

	daily := math.Pow(1.04, 1.0/252)
	want := 5000.0
	for day := 0; day < 3*252; day++ {
		want = want*daily + 300.0/21
	}
	assert.InEpsilon(t, want, result.OverallStats.Median, 1e-9)
	assert.Equal(t, result.OverallStats.Worst, result.OverallStats.Best)
	assert.Equal(t, 5000.0+300*36, result.TotalContributions)

	path := result.SelectedPaths[0]
	require.Len(t, path.Points, 3*12+1)
	assert.Equal(t, domain.PathPoint{X: 0, Y: 5000}, path.Points[0])
	assert.InDelta(t, 3.0, path.Points[36].X, 1e-12)
}

func TestMonteCarlo_SeedReproducibleAcrossWorkerCounts(t *testing.T) {
	params := testMonteCarloParams()

	single := NewMonteCarloEngine()
	single.Workers = 1
	first, err := single.Run(context.Background(), params, nil)
	require.NoError(t, err)

	parallel := NewMonteCarloEngine()
	parallel.Workers = 8
	second, err := parallel.Run(context.Background(), params, nil)
	require.NoError(t, err)

	assert.NotEqual(t, first.RunID, second.RunID)
	assert.Equal(t, uint64(42), second.Seed)
	assert.Equal(t, first.OverallStats, second.OverallStats)
	assert.Equal(t, first.PercentileMetrics, second.PercentileMetrics)
	assert.Equal(t, first.SelectedPaths, second.SelectedPaths)
	assert.Equal(t, first.Portfolio, second.Portfolio)

	params.Seed = 43
	third, err := single.Run(context.Background(), params, nil)
	require.NoError(t, err)
	assert.NotEqual(t, first.OverallStats, third.OverallStats)
}

func TestMonteCarlo_ResultShape(t *testing.T) {
	result, err := NewMonteCarloEngine().Run(context.Background(), testMonteCarloParams(), nil)
	require.NoError(t, err)

	assert.Len(t, result.SelectedPaths, domain.DefaultDisplayPaths)
	assert.Equal(t, "worst", result.SelectedPaths[0].Label)
	assert.Equal(t, "best", result.SelectedPaths[1].Label)
	assert.Equal(t, result.OverallStats.Worst, result.SelectedPaths[0].EndValue)
	assert.Equal(t, result.OverallStats.Best, result.SelectedPaths[1].EndValue)

	seen := map[int]bool{}
	for _, path := range result.SelectedPaths {
		assert.False(t, seen[path.Simulation], "paths are deduplicated")
		seen[path.Simulation] = true
		assert.Len(t, path.Points, 5*12+1)
	}

	stats := result.OverallStats
	assert.LessOrEqual(t, stats.Worst, stats.P10)
	assert.LessOrEqual(t, stats.P10, stats.Median)
	assert.LessOrEqual(t, stats.Median, stats.P90)
	assert.LessOrEqual(t, stats.P90, stats.Best)

	assert.Len(t, result.PercentileMetrics, len(domain.PercentileLevels))
	assert.LessOrEqual(t, result.PercentileMetrics[10].MaxDrawdown, result.PercentileMetrics[90].MaxDrawdown)
	assert.InDelta(t, 0.7*7+0.3*3, result.Portfolio.Drift, 1e-12)
	assert.InDelta(t, 0.7*15+0.3*1, result.Portfolio.Volatility, 1e-12)
}

func TestMonteCarlo_ConstraintViolations(t *testing.T) {
	tests := map[string]func(p *domain.MonteCarloParams){
		"weights below 100": func(p *domain.MonteCarloParams) { p.Assets[1].Weight = 20 },
		"missing estimate": func(p *domain.MonteCarloParams) {
			p.Assets[1] = domain.AssetSpec{Ticker: "XEON", Weight: 30, DataUnavailable: true, Warning: "no data"}
		},
		"negative volatility": func(p *domain.MonteCarloParams) { p.Assets[0].AnnualVolatility = -1 },
	}

	for name, mutate := range tests {
		t.Run(name, func(t *testing.T) {
			params := testMonteCarloParams()
			mutate(&params)
			result, err := NewMonteCarloEngine().Run(context.Background(), params, nil)
			assert.Nil(t, result)
			assert.True(t, errors.Is(err, domain.ErrConstraintViolation), "got %v", err)
		})
	}
}

func TestMonteCarlo_InvalidInput(t *testing.T) {
	tests := map[string]func(p *domain.MonteCarloParams){
		"no simulations":     func(p *domain.MonteCarloParams) { p.Simulations = 0 },
		"no years":           func(p *domain.MonteCarloParams) { p.Years = 0 },
		"negative principal": func(p *domain.MonteCarloParams) { p.InitialInvestment = -1 },
		"no assets":          func(p *domain.MonteCarloParams) { p.Assets = nil },
	}

	for name, mutate := range tests {
		t.Run(name, func(t *testing.T) {
			params := testMonteCarloParams()
			mutate(&params)
			_, err := NewMonteCarloEngine().Run(context.Background(), params, nil)
			assert.True(t, errors.Is(err, domain.ErrInvalidInput), "got %v", err)
		})
	}
}

func TestMonteCarlo_ProgressThenTerminal(t *testing.T) {
	params := testMonteCarloParams()
	params.Simulations = 250

	var updates []RunUpdate
	for update := range NewMonteCarloEngine().Start(context.Background(), params) {
		updates = append(updates, update)
	}

	require.NotEmpty(t, updates)
	last := updates[len(updates)-1]
	assert.True(t, last.Done)
	require.NoError(t, last.Err)
	require.NotNil(t, last.Result)
	assert.Equal(t, last.RunID, last.Result.RunID)

	previous := 0.0
	for _, update := range updates[:len(updates)-1] {
		assert.False(t, update.Done, "only the last message is terminal")
		assert.GreaterOrEqual(t, update.Progress, previous)
		assert.Equal(t, last.RunID, update.RunID)
		previous = update.Progress
	}
	assert.Equal(t, 100.0, previous)
	assert.LessOrEqual(t, len(updates), progressUpdatesPerRun+2)
}

func TestMonteCarlo_RunReportsProgress(t *testing.T) {
	var calls int
	var last float64
	_, err := NewMonteCarloEngine().Run(context.Background(), testMonteCarloParams(), func(percent float64) {
		calls++
		last = percent
	})
	require.NoError(t, err)
	assert.Equal(t, 60, calls, "one update per simulation below 100 simulations")
	assert.Equal(t, 100.0, last)
}

func TestMonteCarlo_Cancellation(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	logger := &TestLogger{}
	engine := NewMonteCarloEngine()
	engine.SetLogger(logger)

	result, err := engine.Run(ctx, testMonteCarloParams(), nil)
	assert.Nil(t, result)
	assert.ErrorIs(t, err, context.Canceled)
	assert.NotEmpty(t, logger.Warns)
}

func TestMonteCarlo_InjectedSource(t *testing.T) {
	var created atomic.Int64
	engine := NewMonteCarloEngine()
	engine.SourceFactory = func(seed, stream uint64) rand.Source {
		created.Add(1)
		return rand.NewPCG(seed, stream)
	}

	params := testMonteCarloParams()
	result, err := engine.Run(context.Background(), params, nil)
	require.NoError(t, err)
	// one source per simulation, one for the path sample and one per replayed path
	assert.Equal(t, int64(params.Simulations+1+len(result.SelectedPaths)), created.Load())
}

func TestMonteCarlo_SelectedPathsReplayTheirSimulation(t *testing.T) {
	params := testMonteCarloParams()
	result, err := NewMonteCarloEngine().Run(context.Background(), params, nil)
	require.NoError(t, err)

	portfolio, err := AggregatePortfolio(params.Assets)
	require.NoError(t, err)
	spec := newPathSpec(params, portfolio)
	ctx := context.Background()

	for _, path := range result.SelectedPaths {
		recorded, err := simulatePath(ctx, rand.New(PCGSource(params.Seed, uint64(path.Simulation))), spec, true)
		require.NoError(t, err)
		scalar, err := simulatePath(ctx, rand.New(PCGSource(params.Seed, uint64(path.Simulation))), spec, false)
		require.NoError(t, err)

		assert.Nil(t, scalar.points, "aggregation runs keep no points")
		assert.Equal(t, recorded.end, scalar.end)
		assert.Equal(t, recorded.maxDrawdown, scalar.maxDrawdown)
		assert.Equal(t, recorded.points, path.Points, "simulation %d", path.Simulation)
		assert.Equal(t, path.EndValue, recorded.end)
		assert.Equal(t, path.EndValue, path.Points[len(path.Points)-1].Y)
	}
}

func TestSelectPaths(t *testing.T) {
	order := make([]int, 100)
	for i := range order {
		order[i] = 99 - i
	}
	picks := selectPaths(order, 15, rand.New(rand.NewPCG(1, 2)))

	require.Len(t, picks, 15)
	assert.Equal(t, pathPick{index: 99, label: "worst"}, picks[0])
	assert.Equal(t, pathPick{index: 0, label: "best"}, picks[1])
	assert.Equal(t, pathPick{index: 99 - 9, label: "p10"}, picks[2])
	assert.Equal(t, pathPick{index: 99 - 49, label: "p50"}, picks[4])
	for _, pick := range picks[7:] {
		assert.Equal(t, "sample", pick.label)
	}

	small := selectPaths([]int{2, 0, 1}, 15, rand.New(rand.NewPCG(1, 2)))
	assert.Len(t, small, 3)
}

func TestAggregatePortfolio(t *testing.T) {
	portfolio, err := AggregatePortfolio([]domain.AssetSpec{
		{Ticker: "A", Weight: 50, AnnualDrift: 8, AnnualVolatility: 20},
		{Ticker: "B", Weight: 49.995, AnnualDrift: 2, AnnualVolatility: 4},
	})
	require.NoError(t, err, "sums within tolerance are accepted")
	assert.InDelta(t, 5, portfolio.Drift, 1e-3)
	assert.InDelta(t, 12, portfolio.Volatility, 1e-3)

	_, err = AggregatePortfolio([]domain.AssetSpec{{Ticker: "A", Weight: 110, AnnualDrift: 5}})
	var calcErr *domain.CalcError
	require.True(t, errors.As(err, &calcErr))
	assert.Equal(t, "weights_sum", calcErr.Field)

	_, err = AggregatePortfolio([]domain.AssetSpec{{Ticker: "A", Weight: 100, DataUnavailable: true}})
	require.True(t, errors.As(err, &calcErr))
	assert.Equal(t, "missing_estimate", calcErr.Field)
	assert.Contains(t, err.Error(), "A")
}

func TestNearestRank(t *testing.T) {
	sorted := []float64{1, 2, 3, 4, 5, 6, 7, 8, 9, 10}

	assert.Equal(t, 1.0, nearestRank(sorted, 0))
	assert.Equal(t, 1.0, nearestRank(sorted, 10))
	assert.Equal(t, 5.0, nearestRank(sorted, 50))
	assert.Equal(t, 9.0, nearestRank(sorted, 90))
	assert.Equal(t, 10.0, nearestRank(sorted, 100))
	assert.Equal(t, 0.0, nearestRank(nil, 50))
}

func TestRunningStatsAndDrawdown(t *testing.T) {
	var stats runningStats
	for _, v := range []float64{2, 4, 4, 4, 5, 5, 7, 9} {
		stats.add(v)
	}
	assert.InDelta(t, 5, stats.mean, 1e-12)
	assert.InDelta(t, math.Sqrt(32.0/7), stats.stdDev(), 1e-12)

	dd := newDrawdownTracker(100)
	for _, v := range []float64{120, 90, 130, 65, 140} {
		dd.observe(v)
	}
	assert.InDelta(t, 0.5, dd.max, 1e-12)
}
