// Package comms provides the in-process bus that announces task store mutations
// to collaborators such as the persistence layer.
package comms

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// MessageType identifies the kind of mutation.
type MessageType string

const (
	TypeCreated  MessageType = "created"
	TypeUpserted MessageType = "upserted"
	TypeUpdated  MessageType = "updated"
	TypeDeleted  MessageType = "deleted"
	TypeReset    MessageType = "reset" // TaskID is zero
)

// TopicTasks is the topic every task mutation is published on.
const TopicTasks = "tasks"

// Message announces one successful mutation.
type Message struct {
	ID        string      `json:"id"`
	Topic     string      `json:"topic"`
	Type      MessageType `json:"type"`
	TaskID    int         `json:"task_id,omitempty"`
	Timestamp time.Time   `json:"timestamp"`
}

// NewMessage returns a message for TopicTasks with a fresh ID and timestamp.
func NewMessage(typ MessageType, taskID int) *Message {
	return &Message{
		ID:        uuid.NewString(),
		Topic:     TopicTasks,
		Type:      typ,
		TaskID:    taskID,
		Timestamp: time.Now().UTC(),
	}
}

// Handler processes a published message.
type Handler func(ctx context.Context, msg *Message) error

// Bus delivers mutation messages to subscribers.
type Bus interface {
	// Publish delivers msg to every handler subscribed to msg.Topic.
	Publish(ctx context.Context, msg *Message) error

	// Subscribe registers a handler for topic.
	// Returns an unsubscribe function.
	Subscribe(topic string, handler Handler) (unsubscribe func())

	// History returns up to limit of the most recent messages, oldest first.
	History(limit int) ([]*Message, error)
}
