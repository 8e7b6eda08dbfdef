package domain

// MaxWithdrawalYears caps the depletion simulation
const MaxWithdrawalYears = 100

// TaxFreeWithdrawalShare is the part of each year's withdrawals treated as tax free
const TaxFreeWithdrawalShare = 0.3

// WithdrawalParams holds the inputs of a withdrawal plan. Rates are percentages.
type WithdrawalParams struct {
	Principal         float64 `yaml:"principal" json:"principal"`
	MonthlyWithdrawal float64 `yaml:"monthly_withdrawal" json:"monthly_withdrawal"`
	Rate              float64 `yaml:"rate" json:"rate"`
	TaxRate           float64 `yaml:"tax_rate" json:"tax_rate"`
}

// WithdrawalPoint is the balance at the end of one plan year
type WithdrawalPoint struct {
	Year      int     `json:"year"`
	Balance   float64 `json:"balance"`
	Withdrawn float64 `json:"withdrawn"`
	TaxPaid   float64 `json:"taxPaid"`
}

// WithdrawalPlan is the year-indexed result of a depletion simulation
type WithdrawalPlan struct {
	Points []WithdrawalPoint `json:"points"`
	// Depleted is false when the balance survived the full MaxWithdrawalYears
	Depleted bool `json:"depleted"`
	// DepletionYear is the last year the full withdrawal could be paid
	DepletionYear  int     `json:"depletionYear"`
	TotalWithdrawn float64 `json:"totalWithdrawn"`
	TotalTax       float64 `json:"totalTax"`
}

// YearsUntilDepletion returns len(Points)-1, the number of simulated years
func (p *WithdrawalPlan) YearsUntilDepletion() int {
	return len(p.Points) - 1
}

// WithdrawalStrategy selects the inverse withdrawal formula
type WithdrawalStrategy string

const (
	StrategyPerpetual    WithdrawalStrategy = "perpetual"
	StrategyFixedHorizon WithdrawalStrategy = "fixed_horizon"
)

// MaxWithdrawalParams holds the inputs of the maximum-withdrawal solver
type MaxWithdrawalParams struct {
	Principal float64            `yaml:"principal" json:"principal"`
	Rate      float64            `yaml:"rate" json:"rate"`
	Strategy  WithdrawalStrategy `yaml:"strategy" json:"strategy"`
	Years     int                `yaml:"years,omitempty" json:"years,omitempty"` // fixed_horizon only
}
