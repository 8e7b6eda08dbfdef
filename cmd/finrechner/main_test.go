package main

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	json "github.com/goccy/go-json"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const exampleInput = "../../internal/config/testdata/example.yaml"

// execute runs the root command with args after resetting every flag left
// over from a previous run
func execute(t *testing.T, args ...string) (string, string, error) {
	t.Helper()
	resetFlags(rootCmd)

	var stdout, stderr bytes.Buffer
	rootCmd.SetOut(&stdout)
	rootCmd.SetErr(&stderr)
	rootCmd.SetArgs(args)
	err := rootCmd.Execute()
	return stdout.String(), stderr.String(), err
}

func resetFlags(cmd *cobra.Command) {
	reset := func(f *pflag.Flag) {
		_ = f.Value.Set(f.DefValue)
		f.Changed = false
	}
	cmd.PersistentFlags().VisitAll(reset)
	cmd.Flags().VisitAll(reset)
	for _, sub := range cmd.Commands() {
		resetFlags(sub)
	}
}

func writeInput(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "input.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestRootCommand(t *testing.T) {
	assert.Equal(t, "finrechner", rootCmd.Use)
	assert.NotEmpty(t, rootCmd.Short)
	assert.NotEmpty(t, rootCmd.Long)

	for _, name := range []string{"format", "debug", "settings", "save"} {
		assert.NotNil(t, rootCmd.PersistentFlags().Lookup(name), "missing persistent flag %s", name)
	}
}

func TestRootCommand_Help(t *testing.T) {
	stdout, _, err := execute(t, "--help")
	require.NoError(t, err)
	assert.Contains(t, stdout, "finrechner")
	assert.Contains(t, stdout, "montecarlo")
}

func TestCommandSubcommands(t *testing.T) {
	expected := []string{
		"compound",
		"retirement",
		"withdrawal",
		"max-withdrawal",
		"goals",
		"montecarlo",
		"validate",
		"serve",
		"version",
	}

	registered := make(map[string]bool)
	for _, cmd := range rootCmd.Commands() {
		registered[cmd.Name()] = true
	}
	for _, name := range expected {
		assert.True(t, registered[name], "command %s not registered", name)
	}

	assert.NotNil(t, monteCarloCmd.Flags().Lookup("estimate"))
	assert.NotNil(t, serveCmd.Flags().Lookup("addr"))
}

func TestVersionCommand(t *testing.T) {
	stdout, _, err := execute(t, "version")
	require.NoError(t, err)
	assert.Contains(t, stdout, "finrechner dev")
}

func TestValidateCommand(t *testing.T) {
	stdout, _, err := execute(t, "validate", exampleInput)
	require.NoError(t, err)
	assert.Contains(t, stdout, "ist gültig (6 Abschnitte)")

	_, _, err = execute(t, "validate", "does-not-exist.yaml")
	require.Error(t, err)
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestCalculatorCommands_Console(t *testing.T) {
	tests := []struct {
		command string
		heading string
	}{
		{"compound", "ZINSESZINS"},
		{"retirement", "ALTERSVORSORGE"},
		{"withdrawal", "ENTNAHMEPLAN"},
		{"max-withdrawal", "MAXIMALE ENTNAHME"},
		{"goals", "SPARZIELE"},
	}

	for _, tt := range tests {
		t.Run(tt.command, func(t *testing.T) {
			stdout, _, err := execute(t, tt.command, exampleInput)
			require.NoError(t, err)
			assert.Contains(t, stdout, tt.heading)
			assert.Contains(t, stdout, "€")
		})
	}
}

func TestCompoundCommand_JSON(t *testing.T) {
	stdout, _, err := execute(t, "compound", exampleInput, "--format", "json")
	require.NoError(t, err)

	var report map[string]any
	require.NoError(t, json.Unmarshal([]byte(stdout), &report))
	assert.Contains(t, report, "projection")
	assert.NotContains(t, report, "monteCarlo")
}

func TestMonteCarloCommand(t *testing.T) {
	path := writeInput(t, `
montecarlo:
  initial_investment: 1000
  monthly_contribution: 50
  years: 2
  simulations: 20
  seed: 9
  assets:
    - ticker: ETF
      weight: 100
      annual_drift: 6
      annual_volatility: 12
`)

	stdout, _, err := execute(t, "montecarlo", path, "--format", "csv")
	require.NoError(t, err)
	assert.Contains(t, stdout, "montecarlo")

	stdout, stderr, err := execute(t, "montecarlo", path, "--format", "json", "--progress")
	require.NoError(t, err)
	assert.Contains(t, stderr, "100.0 %")

	var report struct {
		MonteCarlo struct {
			Seed        uint64 `json:"seed"`
			Simulations int    `json:"simulations"`
		} `json:"monteCarlo"`
	}
	require.NoError(t, json.Unmarshal([]byte(stdout), &report))
	assert.Equal(t, uint64(9), report.MonteCarlo.Seed)
	assert.Equal(t, 20, report.MonteCarlo.Simulations)
}

func TestMonteCarloCommand_EstimateWithoutPriceSource(t *testing.T) {
	_, _, err := execute(t, "montecarlo", exampleInput, "--estimate")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "market_data.price_dir")
}

func TestCalculatorCommands_Errors(t *testing.T) {
	onlyGoals := writeInput(t, `
goals:
  savings:
    initial_balance: 0
    monthly_contribution: 100
    annual_rate: 0
  goals:
    - title: Urlaub
      target_value: 1200
`)

	tests := []struct {
		name    string
		args    []string
		wantErr string
	}{
		{"missing section", []string{"compound", onlyGoals}, "no compound section"},
		{"unknown format", []string{"goals", onlyGoals, "--format", "xml"}, `unknown format "xml"`},
		{"missing file", []string{"goals", "nope.yaml"}, "failed to read file"},
		{"no argument", []string{"compound"}, "accepts 1 arg"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, _, err := execute(t, tt.args...)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestNewLogger(t *testing.T) {
	var buf bytes.Buffer
	logger, err := newLogger(&buf, "info", false)
	require.NoError(t, err)
	logger.Debugf("hidden")
	logger.Infof("shown %d", 1)
	assert.NotContains(t, buf.String(), "hidden")
	assert.Contains(t, buf.String(), "shown 1")

	logger, err = newLogger(&buf, "info", true)
	require.NoError(t, err)
	logger.Debugf("now visible")
	assert.Contains(t, buf.String(), "now visible")

	_, err = newLogger(&buf, "loud", false)
	require.Error(t, err)
}
