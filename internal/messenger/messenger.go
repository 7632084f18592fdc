// Package messenger keeps user-facing status messages between the request
// that produces them and the request that displays them.
package messenger

import (
	"context"
	"strconv"

	"github.com/nebari-dev/attributes/internal/i18n"
)

// Type classifies a message.
type Type string

// TypeStatus reports a completed action.
const TypeStatus Type = "status"

// Message is one status message.
type Message struct {
	Type Type        `json:"type"`
	Text i18n.Markup `json:"text"`
}

// Messenger stores messages per recipient. A recipient is a user key
// ("user:<id>") or, for anonymous visitors, a session key.
type Messenger interface {
	// Add appends a message for the recipient
	Add(ctx context.Context, recipient string, msgType Type, text i18n.Markup) error

	// Drain returns all pending messages of the recipient and removes them
	Drain(ctx context.Context, recipient string) ([]Message, error)

	// Close releases resources
	Close() error
}

// UserRecipient returns the recipient key of an authenticated account.
func UserRecipient(userID uint) string {
	return "user:" + strconv.FormatUint(uint64(userID), 10)
}

// SessionRecipient returns the recipient key of an anonymous session.
func SessionRecipient(sessionID string) string {
	return "session:" + sessionID
}

// AddStatus is Add with TypeStatus.
func AddStatus(ctx context.Context, m Messenger, recipient string, text i18n.Markup) error {
	return m.Add(ctx, recipient, TypeStatus, text)
}
