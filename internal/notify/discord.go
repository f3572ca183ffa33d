// internal/notify/discord.go
package notify

import (
	"context"
	"fmt"

	"github.com/bwmarrin/discordgo"
)

// Discord rejects messages longer than this many characters.
const discordMaxMessage = 2000

type discordSender interface {
	ChannelMessageSend(channelID string, content string, options ...discordgo.RequestOption) (*discordgo.Message, error)
}

// DiscordNotifier posts booking alerts to a staff channel.
type DiscordNotifier struct {
	session   discordSender
	channelID string
}

// NewDiscordNotifier creates a REST-only session; no gateway connection is opened.
func NewDiscordNotifier(token, channelID string) (*DiscordNotifier, error) {
	if channelID == "" {
		return nil, fmt.Errorf("discord channel id is required")
	}
	dg, err := discordgo.New("Bot " + token)
	if err != nil {
		return nil, fmt.Errorf("discord session: %w", err)
	}
	return &DiscordNotifier{session: dg, channelID: channelID}, nil
}

func (n *DiscordNotifier) Name() string { return "discord" }

func (n *DiscordNotifier) Notify(ctx context.Context, msg Message) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	content := []rune(msg.Body())
	if len(content) > discordMaxMessage {
		content = append(content[:discordMaxMessage-1], '…')
	}
	if _, err := n.session.ChannelMessageSend(n.channelID, string(content), discordgo.WithContext(ctx)); err != nil {
		return fmt.Errorf("discord send: %w", err)
	}
	return nil
}
