// Package events publishes account lifecycle notifications.
package events

import (
	"context"
	"time"
)

const (
	TypeAccountProvisioned = "account.provisioned"
	TypeAccountDeleted     = "account.deleted"

	producerName = "emailgenx"
)

// Meta describes one emitted event.
type Meta struct {
	ID       string    `json:"id"`
	Type     string    `json:"type"`
	Time     time.Time `json:"time"`
	Producer string    `json:"producer"`
}

// AccountData is the payload of account lifecycle events.
type AccountData struct {
	ChatID int64  `json:"chat_id"`
	Email  string `json:"email,omitempty"`
}

// Envelope is the wire format of a published event.
type Envelope struct {
	Meta Meta        `json:"meta"`
	Data AccountData `json:"data"`
}

// Publisher delivers lifecycle events. Implementations must be safe for concurrent use.
type Publisher interface {
	Publish(ctx context.Context, eventType string, data AccountData) error
	Close() error
}

// Nop discards every event.
type Nop struct{}

func (Nop) Publish(context.Context, string, AccountData) error { return nil }

func (Nop) Close() error { return nil }
