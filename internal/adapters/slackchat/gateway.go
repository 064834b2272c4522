// Package slackchat implements the chat gateway against the Slack Web API.
// Message IDs are Slack timestamps.
package slackchat

import (
	"context"
	"fmt"

	"github.com/slack-go/slack"

	"github.com/example/nudge/internal/ports/secondary"
)

// Gateway implements secondary.ChatGateway with a Slack client.
type Gateway struct {
	client *slack.Client
}

// New creates a gateway from a bot token.
func New(token string) *Gateway {
	return &Gateway{client: slack.New(token)}
}

// Ping checks that the API is reachable and the token is valid.
func (g *Gateway) Ping(ctx context.Context) error {
	if _, err := g.client.AuthTestContext(ctx); err != nil {
		return fmt.Errorf("failed to reach chat api: %w", err)
	}
	return nil
}

// PostMessage posts text into a channel and returns the message timestamp.
func (g *Gateway) PostMessage(ctx context.Context, channelID, text string) (string, error) {
	_, timestamp, err := g.client.PostMessageContext(ctx, channelID,
		slack.MsgOptionText(text, false))
	if err != nil {
		return "", fmt.Errorf("failed to post message: %w", err)
	}
	return timestamp, nil
}

// GetReactions returns the current reactions on a message.
func (g *Gateway) GetReactions(ctx context.Context, channelID, messageID string) ([]secondary.Reaction, error) {
	item := slack.NewRefToMessage(channelID, messageID)
	reactions, err := g.client.GetReactionsContext(ctx, item, slack.NewGetReactionsParameters())
	if err != nil {
		return nil, fmt.Errorf("failed to get reactions: %w", err)
	}

	result := make([]secondary.Reaction, 0, len(reactions))
	for _, r := range reactions {
		result = append(result, secondary.Reaction{Name: r.Name, UserIDs: r.Users})
	}
	return result, nil
}

// OpenDirectConversation resolves or opens a DM with a user.
func (g *Gateway) OpenDirectConversation(ctx context.Context, recipientID string) (string, error) {
	channel, _, _, err := g.client.OpenConversationContext(ctx, &slack.OpenConversationParameters{
		Users:    []string{recipientID},
		ReturnIM: true,
	})
	if err != nil {
		return "", fmt.Errorf("failed to open conversation with %s: %w", recipientID, err)
	}
	return channel.ID, nil
}

// GetPermalink returns a durable link to a message.
func (g *Gateway) GetPermalink(ctx context.Context, channelID, messageID string) (string, error) {
	permalink, err := g.client.GetPermalinkContext(ctx, &slack.PermalinkParameters{
		Channel: channelID,
		Ts:      messageID,
	})
	if err != nil {
		return "", fmt.Errorf("failed to get permalink: %w", err)
	}
	return permalink, nil
}

// Ensure Gateway implements the interface
var _ secondary.ChatGateway = (*Gateway)(nil)
