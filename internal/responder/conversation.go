// internal/responder/conversation.go
package responder

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

// State is where a chat widget is in its send/reply cycle.
type State int

const (
	StateIdle State = iota
	StateComposing
	StateAwaitingReply
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateComposing:
		return "composing"
	case StateAwaitingReply:
		return "awaiting_reply"
	default:
		return fmt.Sprintf("state(%d)", int(s))
	}
}

var (
	ErrInvalidTransition = errors.New("invalid conversation transition")
	ErrEmptyMessage      = errors.New("empty message")
)

const (
	RoleUser = "user"
	RoleBot  = "bot"
)

type Message struct {
	Role     string    `json:"role"`
	Text     string    `json:"text"`
	Category Category  `json:"category,omitempty"`
	At       time.Time `json:"at"`
}

// Conversation tracks Idle -> Composing -> AwaitingReply -> Idle for one chat.
// It is not safe for concurrent use.
type Conversation struct {
	state    State
	messages []Message
	now      func() time.Time
}

func NewConversation() *Conversation {
	return &Conversation{now: time.Now}
}

func (c *Conversation) State() State {
	return c.state
}

func (c *Conversation) Messages() []Message {
	return append([]Message(nil), c.messages...)
}

// Compose marks the user as typing.
func (c *Conversation) Compose() error {
	switch c.state {
	case StateIdle, StateComposing:
		c.state = StateComposing
		return nil
	default:
		return fmt.Errorf("%w: compose while %s", ErrInvalidTransition, c.state)
	}
}

// Send records a user message and waits for the reply.
func (c *Conversation) Send(text string) error {
	if c.state == StateAwaitingReply {
		return fmt.Errorf("%w: send while %s", ErrInvalidTransition, c.state)
	}
	text = strings.TrimSpace(text)
	if text == "" {
		return ErrEmptyMessage
	}
	c.messages = append(c.messages, Message{Role: RoleUser, Text: text, At: c.now()})
	c.state = StateAwaitingReply
	return nil
}

// Receive records the bot reply and returns to idle.
func (c *Conversation) Receive(reply Reply) error {
	if c.state != StateAwaitingReply {
		return fmt.Errorf("%w: reply while %s", ErrInvalidTransition, c.state)
	}
	c.messages = append(c.messages, Message{Role: RoleBot, Text: reply.Text, Category: reply.Category, At: c.now()})
	c.state = StateIdle
	return nil
}
