package calculation

import (
	"context"
	"errors"
	"fmt"
	"math"
	"math/rand/v2"
	"runtime"
	"sort"
	"time"

	"github.com/google/uuid"
	"github.com/rgehrsitz/finrechner/internal/domain"
	"golang.org/x/sync/errgroup"
)

const opMonteCarlo = "montecarlo"

const (
	maxMonteCarloYears    = 100
	defaultMaxSimulations = 100_000
	dt                    = 1.0 / domain.TradingDaysPerYear
	progressUpdatesPerRun = 100
	runUpdateBufferSize   = progressUpdatesPerRun + 2
)

// SourceFactory builds the random source of one simulation. The source must
// depend only on its arguments so results do not depend on scheduling.
type SourceFactory func(seed, stream uint64) rand.Source

// PCGSource is the default SourceFactory
func PCGSource(seed, stream uint64) rand.Source {
	return rand.NewPCG(seed, stream)
}

// RunUpdate is one message of a running Monte Carlo simulation. Progress
// updates arrive first; the last message has Done set and carries either
// Result or Err.
type RunUpdate struct {
	RunID    string
	Progress float64 // percent of simulations finished
	Done     bool
	Result   *domain.MonteCarloResult
	Err      error
}

// MonteCarloEngine runs geometric Brownian motion portfolio simulations on a bounded worker pool
type MonteCarloEngine struct {
	Logger         Logger
	Workers        int
	MaxSimulations int
	SourceFactory  SourceFactory
}

// NewMonteCarloEngine creates an engine with one worker per CPU and PCG randomness
func NewMonteCarloEngine() *MonteCarloEngine {
	return &MonteCarloEngine{
		Logger:         NopLogger{},
		Workers:        runtime.GOMAXPROCS(0),
		MaxSimulations: defaultMaxSimulations,
		SourceFactory:  PCGSource,
	}
}

// SetLogger sets the logger; nil restores the no-op logger
func (e *MonteCarloEngine) SetLogger(logger Logger) {
	if logger == nil {
		logger = NopLogger{}
	}
	e.Logger = logger
}

// Run executes a simulation and blocks until it is finished. onProgress may be nil.
func (e *MonteCarloEngine) Run(ctx context.Context, params domain.MonteCarloParams, onProgress func(percent float64)) (*domain.MonteCarloResult, error) {
	for update := range e.Start(ctx, params) {
		if update.Done {
			return update.Result, update.Err
		}
		if onProgress != nil {
			onProgress(update.Progress)
		}
	}
	return nil, errors.New("monte carlo run ended without a result")
}

// Start runs a simulation in the background. The channel yields progress
// updates and then exactly one Done update before it is closed. The buffer
// holds every message a run can produce, so an abandoned channel never
// blocks the run.
func (e *MonteCarloEngine) Start(ctx context.Context, params domain.MonteCarloParams) <-chan RunUpdate {
	runID := uuid.NewString()
	updates := make(chan RunUpdate, runUpdateBufferSize)

	go func() {
		defer close(updates)
		result, err := e.run(ctx, runID, params, func(percent float64) {
			updates <- RunUpdate{RunID: runID, Progress: percent}
		})
		final := RunUpdate{RunID: runID, Done: true, Result: result, Err: err}
		if err == nil {
			final.Progress = 100
		}
		updates <- final
	}()

	return updates
}

// pathSpec is the per-path input shared by all simulations of a run
type pathSpec struct {
	initial      float64
	dailyDeposit float64
	days         int
	years        int
	driftTerm    float64 // (mu - sigma^2/2) dt
	shockScale   float64 // sigma sqrt(dt)
	riskFree     float64
}

// pathOutcome is what one simulation leaves behind for aggregation
type pathOutcome struct {
	points       []domain.PathPoint
	end          float64
	maxDrawdown  float64
	annualReturn float64
	sharpe       float64
}

func (e *MonteCarloEngine) run(ctx context.Context, runID string, params domain.MonteCarloParams, progress func(float64)) (*domain.MonteCarloResult, error) {
	if err := e.validate(params); err != nil {
		return nil, err
	}
	portfolio, err := AggregatePortfolio(params.Assets)
	if err != nil {
		return nil, err
	}

	seed := params.Seed
	if seed == 0 {
		seed = uint64(time.Now().UnixNano())
	}
	logger := e.logger()
	started := time.Now()
	logger.Infof("monte carlo %s: %d simulations over %d years, drift %.2f%%, volatility %.2f%%, seed %d",
		runID, params.Simulations, params.Years, portfolio.Drift, portfolio.Volatility, seed)

	spec := newPathSpec(params, portfolio)
	outcomes, err := e.simulateAll(ctx, spec, seed, params.Simulations, progress)
	if err != nil {
		logger.Warnf("monte carlo %s stopped: %v", runID, err)
		return nil, err
	}

	displayPaths := params.DisplayPaths
	if displayPaths <= 0 {
		displayPaths = domain.DefaultDisplayPaths
	}
	shuffle := rand.New(e.sourceFactory()(seed, uint64(params.Simulations)))

	result := aggregateOutcomes(outcomes, displayPaths, shuffle)
	// only the displayed paths carry points; their streams replay them exactly
	for i := range result.SelectedPaths {
		points, err := e.tracePath(ctx, spec, seed, result.SelectedPaths[i].Simulation)
		if err != nil {
			logger.Warnf("monte carlo %s stopped: %v", runID, err)
			return nil, err
		}
		result.SelectedPaths[i].Points = points
	}
	result.RunID = runID
	result.Seed = seed
	result.Simulations = params.Simulations
	result.Years = params.Years
	result.Portfolio = portfolio
	result.TotalContributions = params.InitialInvestment + params.MonthlyContribution*12*float64(params.Years)

	logger.Infof("monte carlo %s finished in %s: median %.2f, p10 %.2f, p90 %.2f",
		runID, time.Since(started).Round(time.Millisecond), result.OverallStats.Median, result.OverallStats.P10, result.OverallStats.P90)
	return result, nil
}

func newPathSpec(params domain.MonteCarloParams, portfolio domain.Portfolio) pathSpec {
	// a continuous drift of ln(1+d) makes the zero-volatility path grow by exactly (1+d) per year
	mu := math.Log1p(portfolio.Drift / 100)
	sigma := portfolio.Volatility / 100
	return pathSpec{
		initial:      params.InitialInvestment,
		dailyDeposit: params.MonthlyContribution / domain.TradingDaysPerMonth,
		days:         params.Years * domain.TradingDaysPerYear,
		years:        params.Years,
		driftTerm:    (mu - sigma*sigma/2) * dt,
		shockScale:   sigma * math.Sqrt(dt),
		riskFree:     params.RiskFreeRate / 100,
	}
}

// tracePath replays simulation index on its own stream and returns its monthly points
func (e *MonteCarloEngine) tracePath(ctx context.Context, spec pathSpec, seed uint64, index int) ([]domain.PathPoint, error) {
	rng := rand.New(e.sourceFactory()(seed, uint64(index)))
	outcome, err := simulatePath(ctx, rng, spec, true)
	if err != nil {
		return nil, err
	}
	return outcome.points, nil
}

// simulateAll fans the simulations out over the worker pool. A single collector
// goroutine counts completions and reports progress in order.
func (e *MonteCarloEngine) simulateAll(ctx context.Context, spec pathSpec, seed uint64, n int, progress func(float64)) ([]pathOutcome, error) {
	outcomes := make([]pathOutcome, n)
	completed := make(chan struct{}, n)
	collectorDone := make(chan struct{})

	step := (n + progressUpdatesPerRun - 1) / progressUpdatesPerRun
	go func() {
		defer close(collectorDone)
		count := 0
		for range completed {
			count++
			if count%step == 0 || count == n {
				progress(100 * float64(count) / float64(n))
			}
		}
	}()

	workers := e.Workers
	if workers <= 0 {
		workers = 1
	}
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)
	newSource := e.sourceFactory()

	for i := range n {
		if gctx.Err() != nil {
			break
		}
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			rng := rand.New(newSource(seed, uint64(i)))
			outcome, err := simulatePath(gctx, rng, spec, false)
			if err != nil {
				return err
			}
			outcomes[i] = outcome
			completed <- struct{}{}
			return nil
		})
	}

	err := g.Wait()
	close(completed)
	<-collectorDone

	if ctxErr := ctx.Err(); ctxErr != nil {
		return nil, ctxErr
	}
	if err != nil {
		return nil, err
	}
	return outcomes, nil
}

// simulatePath walks one path in daily steps. With record set it keeps a point
// every trading month.
func simulatePath(ctx context.Context, rng *rand.Rand, spec pathSpec, record bool) (pathOutcome, error) {
	var points []domain.PathPoint
	if record {
		points = make([]domain.PathPoint, 0, spec.days/domain.TradingDaysPerMonth+1)
		points = append(points, domain.PathPoint{X: 0, Y: spec.initial})
	}

	value := spec.initial
	drawdown := newDrawdownTracker(value)
	var returns runningStats

	for day := 1; day <= spec.days; day++ {
		if day%domain.TradingDaysPerYear == 0 {
			if err := ctx.Err(); err != nil {
				return pathOutcome{}, err
			}
		}

		growth := math.Exp(spec.driftTerm + spec.shockScale*standardNormal(rng))
		value = value*growth + spec.dailyDeposit
		returns.add(growth - 1)
		drawdown.observe(value)

		if record && day%domain.TradingDaysPerMonth == 0 {
			points = append(points, domain.PathPoint{X: float64(day) / domain.TradingDaysPerYear, Y: value})
		}
	}

	outcome := pathOutcome{
		points:      points,
		end:         value,
		maxDrawdown: drawdown.max,
	}
	if spec.initial > 0 && spec.years > 0 {
		outcome.annualReturn = math.Pow(value/spec.initial, 1/float64(spec.years)) - 1
	}
	if annualStd := returns.stdDev() * math.Sqrt(domain.TradingDaysPerYear); annualStd > 0 {
		outcome.sharpe = (outcome.annualReturn - spec.riskFree) / annualStd
	}
	return outcome, nil
}

// standardNormal draws N(0,1) with the Box-Muller transform
func standardNormal(rng *rand.Rand) float64 {
	u1 := 1 - rng.Float64() // (0, 1], keeps the log finite
	u2 := rng.Float64()
	return math.Sqrt(-2*math.Log(u1)) * math.Cos(2*math.Pi*u2)
}

// aggregateOutcomes computes the run statistics and picks the paths to display.
// The picked paths carry no points yet.
func aggregateOutcomes(outcomes []pathOutcome, displayPaths int, shuffle *rand.Rand) *domain.MonteCarloResult {
	n := len(outcomes)
	order := make([]int, n)
	ends := make([]float64, n)
	drawdowns := make([]float64, n)
	returns := make([]float64, n)
	sharpes := make([]float64, n)
	for i, o := range outcomes {
		order[i] = i
		ends[i] = o.end
		drawdowns[i] = o.maxDrawdown
		returns[i] = o.annualReturn
		sharpes[i] = o.sharpe
	}
	sort.SliceStable(order, func(a, b int) bool {
		return ends[order[a]] < ends[order[b]]
	})

	sortedEnds := sortedCopy(ends)
	result := &domain.MonteCarloResult{
		OverallStats: domain.OverallStats{
			Median: nearestRank(sortedEnds, 50),
			P10:    nearestRank(sortedEnds, 10),
			P90:    nearestRank(sortedEnds, 90),
			Worst:  sortedEnds[0],
			Best:   sortedEnds[n-1],
		},
		PercentileMetrics: make(map[int]domain.PathMetrics, len(domain.PercentileLevels)),
	}

	drawdowns = sortedCopy(drawdowns)
	returns = sortedCopy(returns)
	sharpes = sortedCopy(sharpes)
	for _, p := range domain.PercentileLevels {
		result.PercentileMetrics[p] = domain.PathMetrics{
			MaxDrawdown:     nearestRank(drawdowns, float64(p)) * 100,
			AvgAnnualReturn: nearestRank(returns, float64(p)) * 100,
			SharpeRatio:     nearestRank(sharpes, float64(p)),
		}
	}

	for _, pick := range selectPaths(order, displayPaths, shuffle) {
		o := outcomes[pick.index]
		result.SelectedPaths = append(result.SelectedPaths, domain.MonteCarloPath{
			Simulation: pick.index,
			Label:      pick.label,
			EndValue:   o.end,
		})
	}
	return result
}

type pathPick struct {
	index int
	label string
}

// selectPaths keeps the worst, the best and the percentile paths of the
// ending-value ranking, then fills up with a shuffled sample of the rest
func selectPaths(order []int, limit int, shuffle *rand.Rand) []pathPick {
	n := len(order)
	picked := make(map[int]bool, limit)
	picks := make([]pathPick, 0, limit)
	add := func(index int, label string) {
		if len(picks) >= limit || picked[index] {
			return
		}
		picked[index] = true
		picks = append(picks, pathPick{index: index, label: label})
	}

	add(order[0], "worst")
	add(order[n-1], "best")
	for _, p := range domain.PercentileLevels {
		add(order[nearestRankIndex(n, float64(p))], fmt.Sprintf("p%d", p))
	}

	rest := make([]int, 0, n)
	for i := 0; i < n; i++ {
		if !picked[i] {
			rest = append(rest, i)
		}
	}
	shuffle.Shuffle(len(rest), func(a, b int) {
		rest[a], rest[b] = rest[b], rest[a]
	})
	for _, index := range rest {
		if len(picks) >= limit {
			break
		}
		add(index, "sample")
	}
	return picks
}

func (e *MonteCarloEngine) validate(p domain.MonteCarloParams) error {
	if err := domain.CheckNonNegative(opMonteCarlo, "initial_investment", p.InitialInvestment); err != nil {
		return err
	}
	if err := domain.CheckNonNegative(opMonteCarlo, "monthly_contribution", p.MonthlyContribution); err != nil {
		return err
	}
	if err := domain.CheckFinite(opMonteCarlo, "risk_free_rate", p.RiskFreeRate); err != nil {
		return err
	}
	if p.Years < 1 || p.Years > maxMonteCarloYears {
		return domain.InvalidInput(opMonteCarlo, "years", "must be between 1 and %d, got %d", maxMonteCarloYears, p.Years)
	}
	limit := e.MaxSimulations
	if limit <= 0 {
		limit = defaultMaxSimulations
	}
	if p.Simulations < 1 || p.Simulations > limit {
		return domain.InvalidInput(opMonteCarlo, "simulations", "must be between 1 and %d, got %d", limit, p.Simulations)
	}
	if p.DisplayPaths < 0 {
		return domain.InvalidInput(opMonteCarlo, "display_paths", "cannot be negative, got %d", p.DisplayPaths)
	}
	return nil
}

func (e *MonteCarloEngine) logger() Logger {
	if e.Logger == nil {
		return NopLogger{}
	}
	return e.Logger
}

func (e *MonteCarloEngine) sourceFactory() SourceFactory {
	if e.SourceFactory == nil {
		return PCGSource
	}
	return e.SourceFactory
}
