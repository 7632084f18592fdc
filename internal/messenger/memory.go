package messenger

import (
	"context"
	"log/slog"
	"sync"

	"github.com/nebari-dev/attributes/internal/i18n"
)

// MemoryMessenger keeps messages in process memory
type MemoryMessenger struct {
	messages map[string][]Message
	mu       sync.Mutex
}

// NewMemoryMessenger creates a new in-memory messenger
func NewMemoryMessenger() *MemoryMessenger {
	slog.Info("Initialized in-memory messenger")
	return &MemoryMessenger{
		messages: make(map[string][]Message),
	}
}

// Add appends a message for the recipient
func (m *MemoryMessenger) Add(ctx context.Context, recipient string, msgType Type, text i18n.Markup) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.messages[recipient] = append(m.messages[recipient], Message{Type: msgType, Text: text})
	slog.Debug("Message added", "recipient", recipient, "type", msgType)
	return nil
}

// Drain returns and removes all pending messages of the recipient
func (m *MemoryMessenger) Drain(ctx context.Context, recipient string) ([]Message, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	msgs := m.messages[recipient]
	delete(m.messages, recipient)
	return msgs, nil
}

// Close discards all pending messages
func (m *MemoryMessenger) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.messages = make(map[string][]Message)
	slog.Info("Memory messenger closed")
	return nil
}
