package main

import (
	"bytes"
	"fmt"

	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/gosuda/pseudocode"
)

var (
	titleStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("230")).Background(lipgloss.Color("24")).Padding(0, 1)
	errStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("196"))
	statusStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("245"))
)

type model struct {
	path     string
	src      string
	viewport viewport.Model
	ready    bool
	output   string
	runErr   error
}

type runDoneMsg struct {
	output string
	err    error
}

func newModel(path, src string) model {
	return model{path: path, src: src}
}

func (m model) Init() tea.Cmd {
	src := m.src
	return func() tea.Msg {
		var buf bytes.Buffer
		err := pseudocode.Run(src, &buf)
		return runDoneMsg{output: buf.String(), err: err}
	}
}

func (m model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "esc", "ctrl+c":
			return m, tea.Quit
		}
	case tea.WindowSizeMsg:
		headerHeight := 1
		footerHeight := 1
		if !m.ready {
			m.viewport = viewport.New(msg.Width, msg.Height-headerHeight-footerHeight)
			m.ready = true
		} else {
			m.viewport.Width = msg.Width
			m.viewport.Height = msg.Height - headerHeight - footerHeight
		}
		m.viewport.SetContent(m.content())
	case runDoneMsg:
		m.output = msg.output
		m.runErr = msg.err
		if m.ready {
			m.viewport.SetContent(m.content())
			m.viewport.GotoBottom()
		}
	}
	var cmd tea.Cmd
	m.viewport, cmd = m.viewport.Update(msg)
	return m, cmd
}

func (m model) content() string {
	if m.runErr != nil {
		return m.output + "\n" + errStyle.Render(m.runErr.Error())
	}
	return m.output
}

func (m model) View() string {
	if !m.ready {
		return "loading..."
	}
	header := titleStyle.Render(m.path)
	footer := statusStyle.Render(fmt.Sprintf("%3.f%%  q to quit", m.viewport.ScrollPercent()*100))
	return header + "\n" + m.viewport.View() + "\n" + footer
}
