package domain

// Monte Carlo discretisation
const (
	TradingDaysPerYear  = 252
	TradingDaysPerMonth = 21
	// DefaultDisplayPaths bounds how many paths are handed to a chart
	DefaultDisplayPaths = 15
)

// PercentileLevels are the percentiles reported for path metrics
var PercentileLevels = []int{10, 25, 50, 75, 90}

// AssetSpec is one portfolio position with its annualised return estimates in percent
type AssetSpec struct {
	Ticker           string  `yaml:"ticker" json:"ticker"`
	Weight           float64 `yaml:"weight" json:"weight"`
	AnnualDrift      float64 `yaml:"annual_drift" json:"annual_drift"`
	AnnualVolatility float64 `yaml:"annual_volatility" json:"annual_volatility"`
	// DataUnavailable marks a fallback estimate; runs containing such an asset are refused
	DataUnavailable bool   `yaml:"data_unavailable,omitempty" json:"data_unavailable,omitempty"`
	Warning         string `yaml:"warning,omitempty" json:"warning,omitempty"`
}

// Portfolio is the aggregated drift and volatility of a set of assets, in percent
type Portfolio struct {
	Drift      float64 `json:"drift"`
	Volatility float64 `json:"volatility"`
}

// MonteCarloParams holds the inputs of one Monte Carlo run
type MonteCarloParams struct {
	InitialInvestment   float64     `yaml:"initial_investment" json:"initial_investment"`
	MonthlyContribution float64     `yaml:"monthly_contribution" json:"monthly_contribution"`
	Years               int         `yaml:"years" json:"years"`
	Simulations         int         `yaml:"simulations" json:"simulations"`
	RiskFreeRate        float64     `yaml:"risk_free_rate" json:"risk_free_rate"`
	Assets              []AssetSpec `yaml:"assets" json:"assets"`
	// Seed 0 asks the engine to pick one; the seed used is reported in the result
	Seed         uint64 `yaml:"seed,omitempty" json:"seed,omitempty"`
	DisplayPaths int    `yaml:"display_paths,omitempty" json:"display_paths,omitempty"`
}

// PathPoint is a chart point: X in years, Y the balance
type PathPoint struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// MonteCarloPath is a monthly sampled simulation path chosen for display
type MonteCarloPath struct {
	Simulation int         `json:"simulation"`
	Label      string      `json:"label"` // worst, best, p10 ... p90, sample
	EndValue   float64     `json:"endValue"`
	Points     []PathPoint `json:"points"`
}

// OverallStats are nearest-rank statistics of the ending values
type OverallStats struct {
	Median float64 `json:"median"`
	P10    float64 `json:"p10"`
	P90    float64 `json:"p90"`
	Worst  float64 `json:"worst"`
	Best   float64 `json:"best"`
}

// PathMetrics are risk metrics at one percentile of their own distributions.
// MaxDrawdown and AvgAnnualReturn are in percent.
type PathMetrics struct {
	MaxDrawdown     float64 `json:"maxDrawdown"`
	AvgAnnualReturn float64 `json:"avgAnnualReturn"`
	SharpeRatio     float64 `json:"sharpeRatio"`
}

// MonteCarloResult is the terminal output of a Monte Carlo run
type MonteCarloResult struct {
	RunID              string              `json:"runId"`
	Seed               uint64              `json:"seed"`
	Simulations        int                 `json:"simulations"`
	Years              int                 `json:"years"`
	Portfolio          Portfolio           `json:"portfolio"`
	SelectedPaths      []MonteCarloPath    `json:"selectedPaths"`
	OverallStats       OverallStats        `json:"overallStats"`
	PercentileMetrics  map[int]PathMetrics `json:"percentileMetrics"`
	TotalContributions float64             `json:"totalContributions"`
}
