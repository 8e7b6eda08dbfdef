package tui

import (
	"context"
	"errors"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
)

// Update handles all messages and updates the model state
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {

	case tea.KeyMsg:
		return m.handleKeyPress(msg)

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.help.Width = msg.Width
		return m, nil

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	case RunRequestedMsg:
		return m.startRun()

	case RunProgressMsg:
		if msg.Generation != m.generation {
			return m, nil
		}
		m.progress = msg.Percent
		return m, waitForUpdate(m.generation, m.updates)

	case RunFinishedMsg:
		if msg.Generation != m.generation {
			return m, nil
		}
		m.running = false
		m.updates = nil
		if m.cancel != nil {
			m.cancel()
			m.cancel = nil
		}
		switch {
		case errors.Is(msg.Err, context.Canceled):
			m.cancelled = true
		case msg.Err != nil:
			m.err = msg.Err
		default:
			m.result = msg.Result
			m.progress = 100
		}
		return m, nil
	}

	return m, nil
}

// handleKeyPress processes keyboard input
func (m Model) handleKeyPress(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Quit):
		if m.cancel != nil {
			m.cancel()
		}
		return m, tea.Quit

	case key.Matches(msg, m.keys.Rerun):
		m.params.Seed = m.nextSeed()
		return m.startRun()

	case key.Matches(msg, m.keys.Cancel):
		if m.running && m.cancel != nil {
			m.cancel()
		}
		return m, nil
	}
	return m, nil
}
