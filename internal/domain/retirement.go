package domain

// RetirementMode selects which quantity the retirement solver derives
type RetirementMode string

const (
	ModeMaxPayout       RetirementMode = "max_payout"
	ModeEarliestAge     RetirementMode = "earliest_age"
	ModeRequiredSavings RetirementMode = "required_savings"
)

// Valid reports whether the mode is known
func (m RetirementMode) Valid() bool {
	switch m {
	case ModeMaxPayout, ModeEarliestAge, ModeRequiredSavings:
		return true
	}
	return false
}

// AnnuityType is the payout regime after retirement
type AnnuityType string

const (
	// AnnuityCapitalConsumption draws the capital down to zero at life expectancy
	AnnuityCapitalConsumption AnnuityType = "capital_consumption"
	// AnnuityEndless pays out only the return and keeps the capital intact
	AnnuityEndless AnnuityType = "endless"
)

// Valid reports whether the annuity type is known
func (a AnnuityType) Valid() bool {
	return a == AnnuityCapitalConsumption || a == AnnuityEndless
}

// MaxRetirementAge is the age at which the earliest-age search gives up
const MaxRetirementAge = 100

// RetirementParams holds the inputs shared by all retirement modes. Rates are percentages.
type RetirementParams struct {
	CurrentAge       int         `yaml:"current_age" json:"current_age"`
	RetirementAge    int         `yaml:"retirement_age" json:"retirement_age"` // ignored by earliest_age
	LifeExpectancy   int         `yaml:"life_expectancy" json:"life_expectancy"`
	CurrentCapital   float64     `yaml:"current_capital" json:"current_capital"`
	MonthlySavings   float64     `yaml:"monthly_savings" json:"monthly_savings"` // ignored by required_savings
	SavingsIncrease  float64     `yaml:"savings_increase,omitempty" json:"savings_increase,omitempty"`
	Rate             float64     `yaml:"rate" json:"rate"`
	Inflation        float64     `yaml:"inflation" json:"inflation"`
	TaxRate          float64     `yaml:"tax_rate" json:"tax_rate"`
	AnnuityType      AnnuityType `yaml:"annuity_type" json:"annuity_type"`
	DesiredNetPayout float64     `yaml:"desired_net_payout,omitempty" json:"desired_net_payout,omitempty"` // monthly, used by the inverse modes
}

// RetirementResult is the solver output. Which scalars are meaningful depends on Mode.
type RetirementResult struct {
	Mode        RetirementMode `json:"mode"`
	AnnuityType AnnuityType    `json:"annuityType"`

	// Reachable is false only in earliest_age mode when no age up to MaxRetirementAge works
	Reachable     bool `json:"reachable"`
	RetirementAge int  `json:"retirementAge"`

	RetirementCapital      float64 `json:"retirementCapital"`
	RequiredCapital        float64 `json:"requiredCapital"`
	GrossMonthlyPayout     float64 `json:"grossMonthlyPayout"`
	NetMonthlyPayout       float64 `json:"netMonthlyPayout"`
	RequiredMonthlySavings float64 `json:"requiredMonthlySavings,omitempty"`

	CapitalPhase []ProjectionPoint `json:"capitalPhase"`
	PayoutPhase  []ProjectionPoint `json:"payoutPhase"`
}
