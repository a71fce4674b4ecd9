package ws

import (
	"context"
	"encoding/json"

	"skill-staffing/internal/notification"
)

type NotificationEvent struct {
	Type         string                    `json:"type"`
	Notification notification.Notification `json:"notification"`
}

// Channel pushes notifications to the recipient's open connections.
type Channel struct {
	hub *Hub
}

func NewChannel(hub *Hub) *Channel {
	return &Channel{hub: hub}
}

func (c *Channel) Name() string { return "websocket" }

// Deliver succeeds when the recipient has no open connection; the inbox keeps
// the notification for later.
func (c *Channel) Deliver(_ context.Context, n notification.Notification) error {
	b, err := json.Marshal(NotificationEvent{Type: "notification", Notification: n})
	if err != nil {
		return err
	}
	c.hub.SendToUser(n.RecipientID, b)
	return nil
}
