// Package tui is the terminal front end: a query input and a results pane.
package tui

import (
	"context"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/ffaiyaz23/querywidget/internal/widget"
)

var (
	titleStyle   = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("63"))
	resultsStyle = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).Padding(0, 1)
	loadingStyle = lipgloss.NewStyle().Faint(true)
	errorStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("196"))
	helpStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("241"))
)

// resolvedMsg arrives when a background request has rendered its outcome.
type resolvedMsg struct {
	err error
}

// Model is the bubbletea model hosting the widget.
type Model struct {
	ctx     context.Context
	input   textinput.Model
	display *display
	widget  *widget.Widget
	width   int
}

// New builds the terminal model. The query client is shared by every submission.
func New(ctx context.Context, client widget.Querier) Model {
	inp := textinput.New()
	inp.Placeholder = "Ask the knowledge base"
	inp.Prompt = "query> "
	inp.Focus()

	d := &display{}
	return Model{
		ctx:     ctx,
		input:   inp,
		display: d,
		widget:  widget.New(client, d, nil),
	}
}

func (m Model) Init() tea.Cmd {
	return textinput.Blink
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		return m, nil
	case resolvedMsg:
		return m, nil
	case tea.KeyMsg:
		switch msg.Type {
		case tea.KeyCtrlC, tea.KeyEsc:
			return m, tea.Quit
		case tea.KeyEnter:
			done := m.widget.HandleKey(m.ctx, widget.EnterKey, m.input.Value())
			return m, func() tea.Msg { return resolvedMsg{err: <-done} }
		}
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

func (m Model) View() string {
	var b strings.Builder
	b.WriteString(titleStyle.Render("Query"))
	b.WriteString("\n\n")
	b.WriteString(m.input.View())
	b.WriteString("\n\n")

	state, text := m.display.current()
	if state != widget.StateIdle {
		switch state {
		case widget.StateLoading:
			text = loadingStyle.Render(text)
		case widget.StateError:
			text = errorStyle.Render(text)
		}
		box := resultsStyle
		if m.width > 4 {
			box = box.Width(m.width - 2)
		}
		b.WriteString(box.Render(text))
		b.WriteString("\n")
	}

	b.WriteString(helpStyle.Render("enter: submit • esc: quit"))
	return b.String()
}
