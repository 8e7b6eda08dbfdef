package domain

// ContributionPeriod is one leg of an advanced savings schedule. Years are inclusive.
type ContributionPeriod struct {
	StartYear     int     `yaml:"start_year" json:"start_year"`
	EndYear       int     `yaml:"end_year" json:"end_year"`
	MonthlyAmount float64 `yaml:"monthly_amount" json:"monthly_amount"`
}

// ContributionSchedule describes how much is paid in each year.
// A non-empty Periods list switches the schedule into advanced mode and
// Amount/Interval/DynamicIncrease are ignored.
type ContributionSchedule struct {
	Amount          float64              `yaml:"amount" json:"amount"`
	Interval        Interval             `yaml:"interval" json:"interval"`
	DynamicIncrease float64              `yaml:"dynamic_increase,omitempty" json:"dynamic_increase,omitempty"` // percent per year, 0 = off
	Periods         []ContributionPeriod `yaml:"periods,omitempty" json:"periods,omitempty"`
}

// Advanced reports whether the schedule uses explicit contribution periods
func (s ContributionSchedule) Advanced() bool {
	return len(s.Periods) > 0
}

// CompoundParams holds the inputs of the compound growth simulator. Rates are percentages.
type CompoundParams struct {
	Principal    float64              `yaml:"principal" json:"principal"`
	Rate         float64              `yaml:"rate" json:"rate"`
	Inflation    float64              `yaml:"inflation" json:"inflation"`
	Years        int                  `yaml:"years" json:"years"`
	Contribution ContributionSchedule `yaml:"contribution" json:"contribution"`
	BestCase     float64              `yaml:"best_case,omitempty" json:"best_case,omitempty"`   // added to Rate for the max track
	WorstCase    float64              `yaml:"worst_case,omitempty" json:"worst_case,omitempty"` // added to Rate for the min track, usually negative
	ShowRange    bool                 `yaml:"show_range,omitempty" json:"show_range,omitempty"`
}

// BalanceRange carries the best/worst-case tracks for one projection year
type BalanceRange struct {
	MinNominal float64 `json:"minNominal"`
	MaxNominal float64 `json:"maxNominal"`
	MinReal    float64 `json:"minReal"`
	MaxReal    float64 `json:"maxReal"`
}

// ProjectionPoint is the state of an account at the end of one simulated year
type ProjectionPoint struct {
	Year          int           `json:"year"`
	Nominal       float64       `json:"nominal"`
	Real          float64       `json:"real"`
	Contributions float64       `json:"contributions"` // cumulative, principal included
	Range         *BalanceRange `json:"range,omitempty"`
}

// ProjectionSummary condenses a projection series into its headline figures
type ProjectionSummary struct {
	Years               int     `json:"years"`
	FinalNominal        float64 `json:"finalNominal"`
	FinalReal           float64 `json:"finalReal"`
	TotalContributions  float64 `json:"totalContributions"`
	TotalInterest       float64 `json:"totalInterest"`
	PurchasingPowerLoss float64 `json:"purchasingPowerLoss"`
}
