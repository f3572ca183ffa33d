// internal/tui/chat.go
package tui

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-runewidth"

	"safari-connect/internal/responder"
)

var (
	green = lipgloss.Color("#2E8B57")
	sand  = lipgloss.Color("#E0C48C")
	gray  = lipgloss.Color("#626262")
	white = lipgloss.Color("#FAFAFA")

	styleHeader = lipgloss.NewStyle().
			Bold(true).
			Foreground(white).
			Background(green).
			Padding(0, 1).
			MarginBottom(1)

	styleUser = lipgloss.NewStyle().
			Foreground(sand).
			Bold(true)

	styleBot = lipgloss.NewStyle().
			Foreground(green).
			Bold(true)

	styleCategory = lipgloss.NewStyle().Foreground(gray).Italic(true)

	styleFooter = lipgloss.NewStyle().
			Foreground(gray).
			MarginTop(1)
)

// replyReadyMsg carries a generated reply before the typing delay.
type replyReadyMsg struct {
	reply responder.Reply
}

// replyMsg delivers the reply once the typing delay has passed.
type replyMsg struct {
	reply responder.Reply
}

type Model struct {
	responder *responder.Responder
	conv      *responder.Conversation
	input     textinput.Model
	spinner   spinner.Model
	quick     []responder.QuickReply
	quickIdx  int
	width     int
	err       error
}

func NewModel(r *responder.Responder) Model {
	ti := textinput.New()
	ti.Placeholder = "Ask about prices, coverage, delivery..."
	ti.CharLimit = 500
	ti.Width = 60
	ti.Focus()

	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = styleBot

	return Model{
		responder: r,
		conv:      responder.NewConversation(),
		input:     ti,
		spinner:   sp,
		quick:     r.QuickReplies(),
		quickIdx:  -1,
	}
}

func (m Model) Init() tea.Cmd {
	return textinput.Blink
}

// Conversation exposes the underlying state machine.
func (m Model) Conversation() *responder.Conversation {
	return m.conv
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		return m, nil

	case replyReadyMsg:
		delay := msg.reply.TypingDelay
		return m, tea.Tick(delay, func(time.Time) tea.Msg { return replyMsg(msg) })

	case replyMsg:
		if err := m.conv.Receive(msg.reply); err != nil {
			m.err = err
		}
		return m, nil

	case spinner.TickMsg:
		if m.conv.State() != responder.StateAwaitingReply {
			return m, nil
		}
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	case tea.KeyMsg:
		switch msg.Type {
		case tea.KeyCtrlC, tea.KeyEsc:
			return m, tea.Quit

		case tea.KeyTab:
			if len(m.quick) > 0 {
				m.quickIdx = (m.quickIdx + 1) % len(m.quick)
				m.input.SetValue(m.quick[m.quickIdx].Text)
				m.input.CursorEnd()
				m.compose()
			}
			return m, nil

		case tea.KeyEnter:
			return m.send()
		}
	}

	var cmd tea.Cmd
	before := m.input.Value()
	m.input, cmd = m.input.Update(msg)
	if m.input.Value() != before && strings.TrimSpace(m.input.Value()) != "" {
		m.compose()
	}
	return m, cmd
}

func (m *Model) compose() {
	if m.conv.State() == responder.StateAwaitingReply {
		return
	}
	if err := m.conv.Compose(); err != nil {
		m.err = err
	}
}

func (m Model) send() (tea.Model, tea.Cmd) {
	if m.conv.State() == responder.StateAwaitingReply {
		return m, nil
	}
	text := strings.TrimSpace(m.input.Value())
	if err := m.conv.Send(text); err != nil {
		// Enter on an empty line is a no-op.
		return m, nil
	}
	m.err = nil
	m.input.Reset()
	m.quickIdx = -1

	r := m.responder
	ask := func() tea.Msg {
		return replyReadyMsg{reply: r.Reply(context.Background(), text)}
	}
	return m, tea.Batch(ask, m.spinner.Tick)
}

func (m Model) View() string {
	var b strings.Builder
	b.WriteString(styleHeader.Render("Safari WiFi chat"))
	b.WriteString("\n")

	for _, msg := range m.conv.Messages() {
		switch msg.Role {
		case responder.RoleUser:
			b.WriteString(styleUser.Render("You: "))
			b.WriteString(msg.Text)
		default:
			b.WriteString(styleBot.Render("Safari WiFi: "))
			b.WriteString(styleCategory.Render(fmt.Sprintf("[%s]", msg.Category)))
			b.WriteString("\n")
			b.WriteString(msg.Text)
		}
		b.WriteString("\n\n")
	}

	if m.conv.State() == responder.StateAwaitingReply {
		b.WriteString(m.spinner.View())
		b.WriteString(" typing...\n\n")
	}

	b.WriteString(m.input.View())

	if m.err != nil {
		b.WriteString("\n")
		b.WriteString(styleCategory.Render(m.err.Error()))
	}

	b.WriteString("\n\n")
	b.WriteString(styleFooter.Render(m.footer()))
	b.WriteString("\n")
	return b.String()
}

// footer lists the key bindings, cut to the terminal width once it is known.
func (m Model) footer() string {
	labels := make([]string, 0, len(m.quick))
	for _, q := range m.quick {
		labels = append(labels, q.Label)
	}
	footer := "enter: send • tab: quick replies (" + strings.Join(labels, ", ") + ") • esc: quit"
	if m.width > 0 {
		footer = runewidth.Truncate(footer, m.width, "…")
	}
	return footer
}

// Run starts the chat client on the terminal.
func Run(r *responder.Responder, opts ...tea.ProgramOption) error {
	_, err := tea.NewProgram(NewModel(r), opts...).Run()
	return err
}
