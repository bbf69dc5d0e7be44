package events

import (
	"context"
	"encoding/json"
	"fmt"
	"time"
)

type Action string

const (
	ActionCreated Action = "created"
	ActionUpdated Action = "updated"
	ActionDeleted Action = "deleted"
)

// ChangeEvent announces that a user's finance data changed.
type ChangeEvent struct {
	UserID    string    `json:"user_id"`
	Resource  string    `json:"resource"`
	Action    Action    `json:"action"`
	IDs       []string  `json:"ids"`
	Timestamp time.Time `json:"timestamp"`
}

func NewChangeEvent(userID, resource string, action Action, ids []string) ChangeEvent {
	if ids == nil {
		ids = []string{}
	}
	return ChangeEvent{
		UserID:    userID,
		Resource:  resource,
		Action:    action,
		IDs:       ids,
		Timestamp: time.Now().UTC(),
	}
}

// RoutingKey is finance.<resource>.<action>.
func (e ChangeEvent) RoutingKey() string {
	return fmt.Sprintf("finance.%s.%s", e.Resource, e.Action)
}

func (e ChangeEvent) ToJSON() ([]byte, error) {
	return json.Marshal(e)
}

type Publisher interface {
	PublishChange(ctx context.Context, event ChangeEvent) error
	Close() error
}

// NoopPublisher is used when no broker is configured.
type NoopPublisher struct{}

func (NoopPublisher) PublishChange(context.Context, ChangeEvent) error { return nil }

func (NoopPublisher) Close() error { return nil }
