package calculation

import (
	"sort"
	"time"

	"github.com/google/uuid"
	"github.com/rgehrsitz/finrechner/internal/domain"
)

const opGoals = "goals"

// CalculateGoalTimeline runs one monthly savings projection and records the first
// month each goal's target is met. The run stops once every goal is reached or
// after domain.GoalHorizonMonths.
func CalculateGoalTimeline(savings domain.SavingsParams, goals []domain.Goal) (*domain.GoalTimeline, error) {
	if err := validateGoals(savings, goals); err != nil {
		return nil, err
	}

	start := savings.StartDate
	if start.IsZero() {
		start = time.Now()
	}

	sorted := make([]domain.Goal, len(goals))
	copy(sorted, goals)
	for i := range sorted {
		if sorted[i].ID == "" {
			sorted[i].ID = uuid.NewString()
		}
	}
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].TargetValue < sorted[j].TargetValue
	})

	monthly := savings.AnnualRate / 100 / 12
	balance := savings.InitialBalance
	timeline := &domain.GoalTimeline{
		Timeline:    make([]domain.BalancePoint, 0, 64),
		Reached:     make([]domain.GoalOutcome, 0, len(sorted)),
		Unreachable: []domain.Goal{},
	}

	next := 0
	for month := 0; month <= domain.GoalHorizonMonths; month++ {
		if month > 0 {
			balance = balance*(1+monthly) + savings.MonthlyContribution
		}
		timeline.Timeline = append(timeline.Timeline, domain.BalancePoint{Month: month, Balance: balance})

		for next < len(sorted) && balance >= sorted[next].TargetValue {
			timeline.Reached = append(timeline.Reached, domain.GoalOutcome{
				Goal:       sorted[next],
				MonthIndex: month,
				Date:       start.AddDate(0, month, 0),
			})
			next++
		}
		if next == len(sorted) {
			break
		}
	}

	timeline.Unreachable = append(timeline.Unreachable, sorted[next:]...)
	return timeline, nil
}

func validateGoals(savings domain.SavingsParams, goals []domain.Goal) error {
	if err := domain.CheckNonNegative(opGoals, "initial_balance", savings.InitialBalance); err != nil {
		return err
	}
	if err := domain.CheckFinite(opGoals, "monthly_contribution", savings.MonthlyContribution); err != nil {
		return err
	}
	if err := domain.CheckRate(opGoals, "annual_rate", savings.AnnualRate); err != nil {
		return err
	}
	for _, goal := range goals {
		if err := domain.CheckNonNegative(opGoals, "target_value", goal.TargetValue); err != nil {
			return err
		}
	}
	return nil
}
