// Package notification delivers user-facing notifications after workflow
// commits. Delivery is fire-and-forget: Notify never blocks on or reports
// channel failures.
package notification

import (
	"context"
	"time"

	"github.com/google/uuid"
)

type Notification struct {
	ID          uuid.UUID `json:"id"`
	RecipientID uuid.UUID `json:"recipient_id"`
	Title       string    `json:"title"`
	Message     string    `json:"message"`
	Link        string    `json:"link,omitempty"`
	Subject     *Subject  `json:"subject,omitempty"`

	// SubjectLabel is filled in by the resolver for Subject before delivery.
	SubjectLabel string    `json:"subject_label,omitempty"`
	CreatedAt    time.Time `json:"created_at"`
}

// Notifier is the port workflows depend on.
type Notifier interface {
	Notify(n Notification)
}

// Channel is one delivery medium (inbox, websocket, email).
type Channel interface {
	Name() string
	Deliver(ctx context.Context, n Notification) error
}

type NopNotifier struct{}

func (NopNotifier) Notify(Notification) {}
