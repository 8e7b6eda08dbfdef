package main

import (
	"fmt"
	"os"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/rgehrsitz/finrechner/internal/calculation"
	"github.com/rgehrsitz/finrechner/internal/config"
	"github.com/rgehrsitz/finrechner/internal/tui"
)

func main() {
	if len(os.Args) < 2 {
		fmt.Println("Usage: finrechner-tui <input-file> [settings-file]")
		os.Exit(1)
	}
	inputPath := os.Args[1]
	settingsPath := ""
	if len(os.Args) > 2 {
		settingsPath = os.Args[2]
	}

	input, err := config.NewInputParser().LoadFromFile(inputPath)
	if err != nil {
		fmt.Printf("Error: %v\n", err)
		os.Exit(1)
	}
	if input.MonteCarlo == nil {
		fmt.Printf("Error: %s has no montecarlo section\n", inputPath)
		os.Exit(1)
	}

	settings, err := config.LoadSettings(settingsPath)
	if err != nil {
		fmt.Printf("Error: %v\n", err)
		os.Exit(1)
	}
	params := *input.MonteCarlo
	settings.ApplyMonteCarloDefaults(&params)

	engine := calculation.NewMonteCarloEngine()
	if settings.MonteCarlo.Workers > 0 {
		engine.Workers = settings.MonteCarlo.Workers
	}
	engine.MaxSimulations = settings.MonteCarlo.MaxSimulations

	p := tea.NewProgram(
		tui.NewModel(params, engine),
		tea.WithAltScreen(),
	)

	if _, err := p.Run(); err != nil {
		fmt.Printf("Error running TUI: %v\n", err)
		os.Exit(1)
	}
}
