package messenger

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/nebari-dev/attributes/internal/i18n"
	"github.com/valkey-io/valkey-go"
)

// messageTTL bounds how long undisplayed messages are kept.
const messageTTL = time.Hour

// ValkeyMessenger keeps messages in Valkey lists so every server instance
// sees them.
type ValkeyMessenger struct {
	client valkey.Client
	prefix string // Key prefix: "attributes:messages:"
}

// NewValkeyMessenger creates a new Valkey-backed messenger
func NewValkeyMessenger(addr string) (*ValkeyMessenger, error) {
	// Create Valkey client with connection pool
	client, err := valkey.NewClient(valkey.ClientOption{
		InitAddress: []string{addr},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to Valkey: %w", err)
	}

	// Test connection
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	pingCmd := client.B().Ping().Build()
	if err := client.Do(ctx, pingCmd).Error(); err != nil {
		client.Close()
		return nil, fmt.Errorf("failed to ping Valkey: %w", err)
	}

	m := &ValkeyMessenger{
		client: client,
		prefix: "attributes:messages:",
	}

	slog.Info("Initialized Valkey messenger",
		"address", addr,
		"key_prefix", m.prefix)
	return m, nil
}

func (m *ValkeyMessenger) key(recipient string) string {
	return m.prefix + recipient
}

// Add pushes a message onto the recipient's list and refreshes its expiry
func (m *ValkeyMessenger) Add(ctx context.Context, recipient string, msgType Type, text i18n.Markup) error {
	data, err := json.Marshal(Message{Type: msgType, Text: text})
	if err != nil {
		return fmt.Errorf("failed to marshal message: %w", err)
	}

	key := m.key(recipient)
	cmds := []valkey.Completed{
		m.client.B().Rpush().Key(key).Element(string(data)).Build(),
		m.client.B().Expire().Key(key).Seconds(int64(messageTTL / time.Second)).Build(),
	}
	for _, resp := range m.client.DoMulti(ctx, cmds...) {
		if err := resp.Error(); err != nil {
			return fmt.Errorf("failed to push message to Valkey: %w", err)
		}
	}

	slog.Debug("Message added", "recipient", recipient, "type", msgType)
	return nil
}

// Drain reads and deletes the recipient's list in one MULTI/EXEC block
func (m *ValkeyMessenger) Drain(ctx context.Context, recipient string) ([]Message, error) {
	key := m.key(recipient)
	cmds := []valkey.Completed{
		m.client.B().Multi().Build(),
		m.client.B().Lrange().Key(key).Start(0).Stop(-1).Build(),
		m.client.B().Del().Key(key).Build(),
		m.client.B().Exec().Build(),
	}
	resps := m.client.DoMulti(ctx, cmds...)

	exec, err := resps[len(resps)-1].ToArray()
	if err != nil {
		return nil, fmt.Errorf("failed to drain messages: %w", err)
	}
	if len(exec) == 0 {
		return nil, nil
	}
	raw, err := exec[0].AsStrSlice()
	if err != nil {
		return nil, fmt.Errorf("failed to read messages: %w", err)
	}

	msgs := make([]Message, 0, len(raw))
	for _, item := range raw {
		var msg Message
		if err := json.Unmarshal([]byte(item), &msg); err != nil {
			slog.Warn("Skipping malformed message", "recipient", recipient, "error", err)
			continue
		}
		msgs = append(msgs, msg)
	}
	return msgs, nil
}

// Close closes the Valkey connection
func (m *ValkeyMessenger) Close() error {
	m.client.Close()
	slog.Info("Valkey messenger closed")
	return nil
}
