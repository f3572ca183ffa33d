// internal/tui/chat_test.go
package tui

import (
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/mattn/go-runewidth"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"safari-connect/internal/responder"
)

func newTestModel(t *testing.T) Model {
	t.Helper()
	catalog, err := responder.DefaultCatalog()
	require.NoError(t, err)
	r, err := responder.New(catalog,
		responder.Contact{Phone: "+255 754 000 111", WhatsAppNumber: "+255754000111"},
		responder.WithTypingDelay(0, 0),
	)
	require.NoError(t, err)
	return NewModel(r)
}

func update(t *testing.T, m Model, msg tea.Msg) (Model, tea.Cmd) {
	t.Helper()
	next, cmd := m.Update(msg)
	model, ok := next.(Model)
	require.True(t, ok)
	return model, cmd
}

func typeText(t *testing.T, m Model, text string) Model {
	t.Helper()
	m, _ = update(t, m, tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(text)})
	return m
}

// findReply runs a batched command and returns the reply it produces.
func findReply(t *testing.T, cmd tea.Cmd) replyReadyMsg {
	t.Helper()
	require.NotNil(t, cmd)
	msg := cmd()
	if batch, ok := msg.(tea.BatchMsg); ok {
		for _, c := range batch {
			if c == nil {
				continue
			}
			if ready, ok := c().(replyReadyMsg); ok {
				return ready
			}
		}
	}
	ready, ok := msg.(replyReadyMsg)
	require.True(t, ok, "no reply in %T", msg)
	return ready
}

func TestChat_FullCycle(t *testing.T) {
	m := newTestModel(t)
	assert.Equal(t, responder.StateIdle, m.Conversation().State())

	m = typeText(t, m, "How much for a week?")
	assert.Equal(t, responder.StateComposing, m.Conversation().State())

	m, cmd := update(t, m, tea.KeyMsg{Type: tea.KeyEnter})
	assert.Equal(t, responder.StateAwaitingReply, m.Conversation().State())
	assert.Empty(t, m.input.Value())

	ready := findReply(t, cmd)
	assert.Equal(t, responder.Price, ready.reply.Category)

	m, cmd = update(t, m, ready)
	require.NotNil(t, cmd)
	assert.Equal(t, responder.StateAwaitingReply, m.Conversation().State())

	m, _ = update(t, m, replyMsg(ready))
	assert.Equal(t, responder.StateIdle, m.Conversation().State())

	msgs := m.Conversation().Messages()
	require.Len(t, msgs, 2)
	assert.Equal(t, responder.RoleUser, msgs[0].Role)
	assert.Equal(t, responder.RoleBot, msgs[1].Role)
	assert.Equal(t, responder.Price, msgs[1].Category)

	view := m.View()
	assert.Contains(t, view, "You: ")
	assert.Contains(t, view, "[price]")
}

func TestChat_EnterOnEmptyInputIsNoop(t *testing.T) {
	m := newTestModel(t)

	m, cmd := update(t, m, tea.KeyMsg{Type: tea.KeyEnter})
	assert.Nil(t, cmd)
	assert.Equal(t, responder.StateIdle, m.Conversation().State())
	assert.Empty(t, m.Conversation().Messages())
}

func TestChat_EnterWhileAwaitingIsIgnored(t *testing.T) {
	m := newTestModel(t)
	m = typeText(t, m, "coverage?")
	m, _ = update(t, m, tea.KeyMsg{Type: tea.KeyEnter})

	m = typeText(t, m, "again")
	m, cmd := update(t, m, tea.KeyMsg{Type: tea.KeyEnter})
	assert.Nil(t, cmd)
	assert.Len(t, m.Conversation().Messages(), 1)
	assert.Equal(t, responder.StateAwaitingReply, m.Conversation().State())
}

func TestChat_TabCyclesQuickReplies(t *testing.T) {
	m := newTestModel(t)
	require.NotEmpty(t, m.quick)

	m, _ = update(t, m, tea.KeyMsg{Type: tea.KeyTab})
	assert.Equal(t, m.quick[0].Text, m.input.Value())
	assert.Equal(t, responder.StateComposing, m.Conversation().State())

	for range m.quick {
		m, _ = update(t, m, tea.KeyMsg{Type: tea.KeyTab})
	}
	assert.Equal(t, m.quick[0].Text, m.input.Value())
}

func TestChat_Quit(t *testing.T) {
	m := newTestModel(t)

	_, cmd := update(t, m, tea.KeyMsg{Type: tea.KeyEsc})
	require.NotNil(t, cmd)
	assert.Equal(t, tea.Quit(), cmd())
}

func TestChat_StrayReplyRecordsError(t *testing.T) {
	m := newTestModel(t)

	m, _ = update(t, m, replyMsg{reply: responder.Reply{Category: responder.Default, Text: "hi"}})
	require.Error(t, m.err)
	assert.ErrorIs(t, m.err, responder.ErrInvalidTransition)
	assert.Contains(t, m.View(), "invalid conversation transition")
}

func TestChat_FooterFitsWidth(t *testing.T) {
	m := newTestModel(t)
	assert.Contains(t, m.footer(), "esc: quit")

	m, _ = update(t, m, tea.WindowSizeMsg{Width: 30, Height: 20})
	footer := m.footer()
	assert.LessOrEqual(t, runewidth.StringWidth(footer), 30)
	assert.True(t, strings.HasSuffix(footer, "…"))
}
