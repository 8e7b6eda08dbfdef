package tui

import (
	"context"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/rgehrsitz/finrechner/internal/calculation"
	"github.com/rgehrsitz/finrechner/internal/domain"
)

// Model is the state of a Monte Carlo session
type Model struct {
	// Terminal dimensions
	width  int
	height int

	params   domain.MonteCarloParams
	engine   *calculation.MonteCarloEngine
	nextSeed func() uint64

	// Current run. generation grows with every start so late messages of
	// a replaced run can be recognised and dropped.
	generation int
	running    bool
	cancel     context.CancelFunc
	updates    <-chan calculation.RunUpdate
	progress   float64

	result    *domain.MonteCarloResult
	err       error
	cancelled bool

	spinner spinner.Model
	help    help.Model
	keys    keyMap
}

// NewModel creates a model that simulates params on engine
func NewModel(params domain.MonteCarloParams, engine *calculation.MonteCarloEngine) Model {
	s := spinner.New()
	s.Spinner = spinner.Dot
	s.Style = InfoStyle

	return Model{
		width:    80,
		height:   24,
		params:   params,
		engine:   engine,
		nextSeed: timeSeed,
		spinner:  s,
		help:     help.New(),
		keys:     defaultKeyMap(),
	}
}

// WithSeedSource replaces the seed generator used when rerunning
func (m Model) WithSeedSource(next func() uint64) Model {
	m.nextSeed = next
	return m
}

// Init starts the first run and the spinner (required by tea.Model interface)
func (m Model) Init() tea.Cmd {
	return tea.Batch(m.spinner.Tick, requestRun)
}

func requestRun() tea.Msg {
	return RunRequestedMsg{}
}

func timeSeed() uint64 {
	return uint64(time.Now().UnixNano())
}

// startRun cancels a run in flight and starts a new generation
func (m Model) startRun() (Model, tea.Cmd) {
	if m.cancel != nil {
		m.cancel()
	}
	ctx, cancel := context.WithCancel(context.Background())

	m.generation++
	m.running = true
	m.cancel = cancel
	m.progress = 0
	m.err = nil
	m.cancelled = false
	m.updates = m.engine.Start(ctx, m.params)
	return m, waitForUpdate(m.generation, m.updates)
}

// waitForUpdate turns the next message of a run into a tea.Msg
func waitForUpdate(generation int, updates <-chan calculation.RunUpdate) tea.Cmd {
	return func() tea.Msg {
		update, ok := <-updates
		if !ok {
			return RunFinishedMsg{Generation: generation, Err: context.Canceled}
		}
		if update.Done {
			return RunFinishedMsg{Generation: generation, Result: update.Result, Err: update.Err}
		}
		return RunProgressMsg{Generation: generation, Percent: update.Progress}
	}
}
