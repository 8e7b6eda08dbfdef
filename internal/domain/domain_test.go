package domain

import (
	"errors"
	"fmt"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseInterval(t *testing.T) {
	tests := []struct {
		input   string
		want    Interval
		wantErr bool
	}{
		{"", IntervalMonthly, false},
		{"daily", IntervalDaily, false},
		{"Weekly", IntervalWeekly, false},
		{"bi_weekly", IntervalBiWeekly, false},
		{"bi-weekly", IntervalBiWeekly, false},
		{"biweekly", IntervalBiWeekly, false},
		{" monthly ", IntervalMonthly, false},
		{"quarterly", IntervalQuarterly, false},
		{"yearly", IntervalYearly, false},
		{"fortnightly", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, err := ParseInterval(tt.input)
			if tt.wantErr {
				require.Error(t, err)
				assert.True(t, errors.Is(err, ErrInvalidInterval))
				assert.False(t, errors.Is(err, ErrInvalidInput))
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestInterval_PeriodsPerYear(t *testing.T) {
	n, ok := IntervalBiWeekly.PeriodsPerYear()
	assert.True(t, ok)
	assert.Equal(t, 26.0, n)

	_, ok = Interval("hourly").PeriodsPerYear()
	assert.False(t, ok)
	assert.False(t, Interval("hourly").Valid())
}

func TestCalcError(t *testing.T) {
	err := InvalidInput("compound", "years", "cannot be negative, got %d", -1)

	assert.EqualError(t, err, "compound: years: cannot be negative, got -1")
	assert.True(t, errors.Is(err, ErrInvalidInput))
	assert.False(t, errors.Is(err, ErrConstraintViolation))

	wrapped := fmt.Errorf("running scenario: %w", err)
	var calcErr *CalcError
	require.True(t, errors.As(wrapped, &calcErr))
	assert.Equal(t, "years", calcErr.Field)

	cause := errors.New("connection refused")
	external := &CalcError{Kind: ErrExternalDataUnavailable, Operation: "prices", Message: "fetch failed", Cause: cause}
	assert.True(t, errors.Is(external, cause))
	assert.True(t, errors.Is(external, ErrExternalDataUnavailable))
	assert.Equal(t, "prices: fetch failed: connection refused", external.Error())
}

func TestChecks(t *testing.T) {
	assert.NoError(t, CheckNonNegative("op", "principal", 0))
	assert.Error(t, CheckNonNegative("op", "principal", -0.01))
	assert.Error(t, CheckFinite("op", "rate", math.NaN()))
	assert.Error(t, CheckFinite("op", "rate", math.Inf(1)))
	assert.NoError(t, CheckRate("op", "rate", -99))
	assert.Error(t, CheckRate("op", "rate", -100))

	err := ConstraintViolation("montecarlo", "weights_sum", "weights sum to %.1f, expected 100", 90.0)
	assert.True(t, errors.Is(err, ErrConstraintViolation))
	assert.Contains(t, err.Error(), "weights_sum")
}

func TestEnumsValid(t *testing.T) {
	assert.True(t, ModeEarliestAge.Valid())
	assert.False(t, RetirementMode("fastest").Valid())
	assert.True(t, AnnuityEndless.Valid())
	assert.False(t, AnnuityType("").Valid())

	plan := &WithdrawalPlan{Points: make([]WithdrawalPoint, 4)}
	assert.Equal(t, 3, plan.YearsUntilDepletion())
}
