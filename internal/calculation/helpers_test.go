package calculation

import (
	"math"
	"testing"
)

const moneyTolerance = 1e-6

// TestLogger records messages for assertions
type TestLogger struct {
	Debugs []string
	Infos  []string
	Warns  []string
	Errors []string
}

func (l *TestLogger) Debugf(format string, args ...any) { l.Debugs = append(l.Debugs, format) }
func (l *TestLogger) Infof(format string, args ...any)  { l.Infos = append(l.Infos, format) }
func (l *TestLogger) Warnf(format string, args ...any)  { l.Warns = append(l.Warns, format) }
func (l *TestLogger) Errorf(format string, args ...any) { l.Errors = append(l.Errors, format) }

func assertMoneyEquals(t *testing.T, expected, actual float64, description string) {
	t.Helper()
	if math.Abs(expected-actual) > moneyTolerance*math.Max(1, math.Abs(expected)) {
		t.Errorf("%s: expected %.6f, got %.6f (diff: %.6f)", description, expected, actual, actual-expected)
	}
}
