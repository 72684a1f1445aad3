package chat

import (
	"time"

	"github.com/google/uuid"
)

// Message is one transcript entry. Immutable once created; the JSON field
// names are the wire format sent as conversation history to the practice
// endpoint.
type Message struct {
	ID        string    `json:"id"`
	Text      string    `json:"text"`
	IsBot     bool      `json:"isBot"`
	CreatedAt time.Time `json:"timestamp"`
}

// NewUserMessage builds a user-authored message. Callers are expected to have
// trimmed the text already.
func NewUserMessage(text string) Message {
	return Message{
		ID:        uuid.NewString(),
		Text:      text,
		IsBot:     false,
		CreatedAt: time.Now().UTC(),
	}
}

// NewBotMessage builds an interviewer-authored message.
func NewBotMessage(text string) Message {
	return Message{
		ID:        uuid.NewString(),
		Text:      text,
		IsBot:     true,
		CreatedAt: time.Now().UTC(),
	}
}
