package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"runtime/debug"
	"strings"
	"syscall"

	"github.com/rgehrsitz/finrechner/internal/calculation"
	"github.com/rgehrsitz/finrechner/internal/config"
	"github.com/rgehrsitz/finrechner/internal/output"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

func versionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "finrechner %s (commit %s, built %s)\n", version, commit, date)
			if info := buildInfo(); info != "" {
				fmt.Fprintln(cmd.OutOrStdout(), info)
			}
		},
	}
}

func buildInfo() string {
	if bi, ok := debug.ReadBuildInfo(); ok && bi != nil {
		return bi.String()
	}
	return ""
}

var rootCmd = &cobra.Command{
	Use:   "finrechner",
	Short: "Personal finance calculator CLI",
	Long: `Compound interest, retirement, withdrawal, savings goal and Monte Carlo
calculators. Every calculator reads its section from a YAML input file.`,
	SilenceUsage: true,
}

// environment is what every calculator command needs besides its input
type environment struct {
	settings *config.Settings
	logger   *logrus.Logger
}

// setup loads the runtime settings and builds the logger from the persistent flags
func setup(cmd *cobra.Command) (*environment, error) {
	settingsFile, _ := cmd.Flags().GetString("settings")
	settings, err := config.LoadSettings(settingsFile)
	if err != nil {
		return nil, err
	}
	debugMode, _ := cmd.Flags().GetBool("debug")
	logger, err := newLogger(cmd.ErrOrStderr(), settings.LogLevel, debugMode)
	if err != nil {
		return nil, err
	}
	return &environment{settings: settings, logger: logger}, nil
}

// newEngine creates a Monte Carlo engine sized by the settings
func (env *environment) newEngine() *calculation.MonteCarloEngine {
	engine := calculation.NewMonteCarloEngine()
	if env.settings.MonteCarlo.Workers > 0 {
		engine.Workers = env.settings.MonteCarlo.Workers
	}
	engine.MaxSimulations = env.settings.MonteCarlo.MaxSimulations
	engine.SetLogger(env.logger.WithField("component", "montecarlo"))
	return engine
}

// formatExtensions maps formatter names to file extensions for --save
var formatExtensions = map[string]string{
	"console":      "txt",
	"json":         "json",
	"json-compact": "json",
	"csv":          "csv",
}

// render prints the report in the --format format and optionally saves it
func render(cmd *cobra.Command, report *output.Report) error {
	format, _ := cmd.Flags().GetString("format")
	formatter := output.GetFormatterByName(format)
	if formatter == nil {
		return fmt.Errorf("unknown format %q (available: %s; aliases: %s)", format,
			strings.Join(output.AvailableFormatterNames(), ", "),
			strings.Join(output.AvailableFormatAliases(), ", "))
	}

	data, err := formatter.Format(report)
	if err != nil {
		return fmt.Errorf("failed to format report: %w", err)
	}
	fmt.Fprint(cmd.OutOrStdout(), string(data))

	if save, _ := cmd.Flags().GetBool("save"); save {
		filename, err := output.WriteFormatted(formatter, report, formatExtensions[formatter.Name()])
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.ErrOrStderr(), "Report gespeichert: %s\n", filename)
	}
	return nil
}

var validateCmd = &cobra.Command{
	Use:   "validate [input-file]",
	Short: "Validate an input file",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		input, err := config.NewInputParser().LoadFromFile(args[0])
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Eingabedatei %s ist gültig (%d Abschnitte)\n", args[0], input.Sections())
		return nil
	},
}

func init() {
	rootCmd.PersistentFlags().StringP("format", "f", "console", "Output format: console, json, json-compact, csv")
	rootCmd.PersistentFlags().Bool("debug", false, "Enable debug logging")
	rootCmd.PersistentFlags().String("settings", "", "Runtime settings file (YAML); FINRECHNER_* environment variables override it")
	rootCmd.PersistentFlags().Bool("save", false, "Also write the report to a timestamped file in the working directory")

	rootCmd.AddCommand(validateCmd)
	rootCmd.AddCommand(versionCmd())
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, err)
		stop()
		os.Exit(1)
	}
}
