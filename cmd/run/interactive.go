package main

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#FAFAFA")).
			Background(lipgloss.Color("#7D56F4")).
			Padding(0, 1)

	demoStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#98FB98"))

	descStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#87CEEB"))

	selectedStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FAFAFA")).
			Background(lipgloss.Color("#7D56F4"))

	outputStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#90EE90"))

	errorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FF6B6B"))

	helpStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#666666"))
)

type modelState int

const (
	stateSelectDemo modelState = iota
	stateShowResult
)

type interactiveModel struct {
	err      error
	demos    []demo
	view     viewport.Model
	selected int
	width    int
	height   int
	state    modelState
}

type demoResultMsg struct {
	err    error
	output []string
	trace  string
}

func newInteractiveModel() *interactiveModel {
	return &interactiveModel{
		demos: demos(),
		view:  viewport.New(80, 20),
		state: stateSelectDemo,
	}
}

func (m *interactiveModel) Init() tea.Cmd {
	return nil
}

func (m *interactiveModel) runSelected() tea.Msg {
	output, trace, err := execDemo(m.demos[m.selected])
	return demoResultMsg{output: output, trace: trace.String(), err: err}
}

func (m *interactiveModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.view.Width = msg.Width
		m.view.Height = msg.Height - 6

	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c", "q":
			return m, tea.Quit

		case "up", "k":
			if m.state == stateSelectDemo && m.selected > 0 {
				m.selected--
			}

		case "down", "j":
			if m.state == stateSelectDemo && m.selected < len(m.demos)-1 {
				m.selected++
			}

		case "enter":
			switch m.state {
			case stateSelectDemo:
				return m, m.runSelected
			case stateShowResult:
				m.state = stateSelectDemo
				m.err = nil
			}

		case "esc":
			if m.state == stateShowResult {
				m.state = stateSelectDemo
				m.err = nil
			}
		}

	case demoResultMsg:
		m.err = msg.err
		m.view.SetContent(renderResult(msg))
		m.view.GotoTop()
		m.state = stateShowResult
	}

	if m.state == stateShowResult {
		var cmd tea.Cmd
		m.view, cmd = m.view.Update(msg)
		return m, cmd
	}
	return m, nil
}

func renderResult(msg demoResultMsg) string {
	var b strings.Builder
	for _, line := range msg.output {
		b.WriteString(outputStyle.Render(line))
		b.WriteString("\n")
	}
	if msg.err != nil {
		b.WriteString(errorStyle.Render(fmt.Sprintf("escaped: %v", msg.err)))
		b.WriteString("\n")
	}
	if msg.trace != "" {
		b.WriteString("\n--- drain trace ---\n")
		b.WriteString(msg.trace)
	}
	return b.String()
}

func (m *interactiveModel) View() string {
	var b strings.Builder

	b.WriteString(titleStyle.Render("Deferred-Action Engine"))
	b.WriteString("\n\n")

	switch m.state {
	case stateSelectDemo:
		b.WriteString("Select a demo to run:\n\n")
		for i, d := range m.demos {
			line := fmt.Sprintf("%-10s %s", demoStyle.Render(d.name), descStyle.Render(d.desc))
			if i == m.selected {
				b.WriteString(selectedStyle.Render("> " + line))
			} else {
				b.WriteString("  " + line)
			}
			b.WriteString("\n")
		}
		b.WriteString("\n")
		b.WriteString(helpStyle.Render("↑/↓ select • enter run • q quit"))

	case stateShowResult:
		d := m.demos[m.selected]
		b.WriteString(fmt.Sprintf("Output of %s:\n\n", demoStyle.Render(d.name)))
		b.WriteString(m.view.View())
		b.WriteString("\n\n")
		b.WriteString(helpStyle.Render("↑/↓ scroll • enter back • q quit"))
	}

	return b.String()
}

func runInteractive() error {
	p := tea.NewProgram(newInteractiveModel(), tea.WithAltScreen())
	_, err := p.Run()
	return err
}
