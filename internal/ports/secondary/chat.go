package secondary

import "context"

// Reaction is one emoji applied to a message and the users who applied it.
type Reaction struct {
	Name    string
	UserIDs []string
}

// ChatGateway defines the secondary port for the chat platform.
type ChatGateway interface {
	// PostMessage posts text into a channel and returns the message ID.
	PostMessage(ctx context.Context, channelID, text string) (string, error)

	// GetReactions returns the current reactions on a message.
	GetReactions(ctx context.Context, channelID, messageID string) ([]Reaction, error)

	// OpenDirectConversation resolves or opens a one-to-one conversation
	// with a recipient and returns its channel ID.
	OpenDirectConversation(ctx context.Context, recipientID string) (string, error)

	// GetPermalink returns a durable link to a message. Best-effort;
	// callers tolerate failure.
	GetPermalink(ctx context.Context, channelID, messageID string) (string, error)
}
