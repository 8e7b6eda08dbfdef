package main

import (
	"errors"
	"fmt"

	"github.com/rgehrsitz/finrechner/internal/calculation"
	"github.com/rgehrsitz/finrechner/internal/config"
	"github.com/rgehrsitz/finrechner/internal/marketdata"
	"github.com/rgehrsitz/finrechner/internal/output"
	"github.com/spf13/cobra"
)

// loadInput parses the input file and fails when the named section is missing
func loadInput(path, section string, present func(*config.Input) bool) (*config.Input, error) {
	input, err := config.NewInputParser().LoadFromFile(path)
	if err != nil {
		return nil, err
	}
	if !present(input) {
		return nil, fmt.Errorf("%s: no %s section", path, section)
	}
	return input, nil
}

var compoundCmd = &cobra.Command{
	Use:   "compound [input-file]",
	Short: "Project compound growth with contributions and inflation",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		input, err := loadInput(args[0], "compound", func(in *config.Input) bool { return in.Compound != nil })
		if err != nil {
			return err
		}
		points, err := calculation.SimulateCompoundGrowth(*input.Compound)
		if err != nil {
			return fmt.Errorf("compound calculation failed: %w", err)
		}
		return render(cmd, &output.Report{Projection: output.NewProjectionReport(points)})
	},
}

var retirementCmd = &cobra.Command{
	Use:   "retirement [input-file]",
	Short: "Solve a retirement plan for payout, earliest age or required savings",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		input, err := loadInput(args[0], "retirement", func(in *config.Input) bool { return in.Retirement != nil })
		if err != nil {
			return err
		}
		result, err := calculation.SolveRetirement(input.Retirement.Mode, input.Retirement.RetirementParams)
		if err != nil {
			return fmt.Errorf("retirement calculation failed: %w", err)
		}
		return render(cmd, &output.Report{Retirement: result})
	},
}

var withdrawalCmd = &cobra.Command{
	Use:   "withdrawal [input-file]",
	Short: "Simulate a monthly withdrawal plan until depletion",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		input, err := loadInput(args[0], "withdrawal", func(in *config.Input) bool { return in.Withdrawal != nil })
		if err != nil {
			return err
		}
		plan, err := calculation.SimulateWithdrawalPlan(*input.Withdrawal)
		if err != nil {
			return fmt.Errorf("withdrawal calculation failed: %w", err)
		}
		return render(cmd, &output.Report{Withdrawal: plan})
	},
}

var maxWithdrawalCmd = &cobra.Command{
	Use:   "max-withdrawal [input-file]",
	Short: "Compute the largest sustainable monthly withdrawal",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		input, err := loadInput(args[0], "max_withdrawal", func(in *config.Input) bool { return in.MaxWithdrawal != nil })
		if err != nil {
			return err
		}
		monthly, err := calculation.SolveMaxWithdrawal(*input.MaxWithdrawal)
		if err != nil {
			return fmt.Errorf("max withdrawal calculation failed: %w", err)
		}
		return render(cmd, &output.Report{MaxWithdrawal: &output.MaxWithdrawalReport{
			Params:            *input.MaxWithdrawal,
			MonthlyWithdrawal: monthly,
		}})
	},
}

var goalsCmd = &cobra.Command{
	Use:   "goals [input-file]",
	Short: "Compute when each savings goal is reached",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		input, err := loadInput(args[0], "goals", func(in *config.Input) bool { return in.Goals != nil })
		if err != nil {
			return err
		}
		timeline, err := calculation.CalculateGoalTimeline(input.Goals.Savings, input.Goals.Goals)
		if err != nil {
			return fmt.Errorf("goal calculation failed: %w", err)
		}
		return render(cmd, &output.Report{Goals: timeline})
	},
}

var monteCarloCmd = &cobra.Command{
	Use:   "montecarlo [input-file]",
	Short: "Run a Monte Carlo portfolio simulation",
	Long: `Simulate the portfolio of the montecarlo section with geometric Brownian motion.

With --estimate, drift and volatility of every asset are estimated from the
price history configured in the settings (market_data.price_dir or
market_data.price_url).`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		env, err := setup(cmd)
		if err != nil {
			return err
		}
		input, err := loadInput(args[0], "montecarlo", func(in *config.Input) bool { return in.MonteCarlo != nil })
		if err != nil {
			return err
		}
		params := *input.MonteCarlo
		env.settings.ApplyMonteCarloDefaults(&params)

		if estimate, _ := cmd.Flags().GetBool("estimate"); estimate {
			estimator := marketdata.NewEstimatorFromSettings(env.settings.MarketData)
			if estimator == nil {
				return errors.New("--estimate needs market_data.price_dir or market_data.price_url in the settings")
			}
			estimator.SetLogger(env.logger.WithField("component", "marketdata"))
			assets, err := estimator.EstimateAssets(cmd.Context(), params.Assets)
			if err != nil {
				return fmt.Errorf("estimating assets failed: %w", err)
			}
			params.Assets = assets
		}

		showProgress, _ := cmd.Flags().GetBool("progress")
		var onProgress func(float64)
		if showProgress {
			onProgress = func(percent float64) {
				fmt.Fprintf(cmd.ErrOrStderr(), "\rSimulation: %5.1f %%", percent)
			}
		}

		result, err := env.newEngine().Run(cmd.Context(), params, onProgress)
		if showProgress {
			fmt.Fprintln(cmd.ErrOrStderr())
		}
		if err != nil {
			return fmt.Errorf("monte carlo simulation failed: %w", err)
		}
		return render(cmd, &output.Report{MonteCarlo: result})
	},
}

func init() {
	monteCarloCmd.Flags().Bool("estimate", false, "Estimate drift and volatility from historical prices")
	monteCarloCmd.Flags().Bool("progress", false, "Print progress to stderr")

	rootCmd.AddCommand(compoundCmd)
	rootCmd.AddCommand(retirementCmd)
	rootCmd.AddCommand(withdrawalCmd)
	rootCmd.AddCommand(maxWithdrawalCmd)
	rootCmd.AddCommand(goalsCmd)
	rootCmd.AddCommand(monteCarloCmd)
}
