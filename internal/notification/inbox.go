package notification

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"skill-staffing/internal/infrastructure/cache"

	"github.com/google/uuid"
)

// Inbox keeps each user's most recent notifications in a capped Redis list.
type Inbox struct {
	redis *cache.Redis
	size  int
	ttl   time.Duration
}

func NewInbox(redis *cache.Redis, size int, ttl time.Duration) *Inbox {
	if size <= 0 {
		size = 100
	}
	return &Inbox{redis: redis, size: size, ttl: ttl}
}

func inboxKey(userID uuid.UUID) string {
	return "notifications:" + userID.String()
}

func (i *Inbox) Name() string { return "inbox" }

func (i *Inbox) Deliver(ctx context.Context, n Notification) error {
	b, err := json.Marshal(n)
	if err != nil {
		return err
	}
	return i.redis.PushCapped(ctx, inboxKey(n.RecipientID), b, i.size, i.ttl)
}

// List returns the newest notifications first. An unavailable Redis yields
// an empty inbox.
func (i *Inbox) List(ctx context.Context, userID uuid.UUID, limit int) ([]Notification, error) {
	if limit <= 0 || limit > i.size {
		limit = i.size
	}
	raw, err := i.redis.Range(ctx, inboxKey(userID), limit)
	if err != nil {
		return nil, fmt.Errorf("read inbox: %w", err)
	}
	out := make([]Notification, 0, len(raw))
	for _, b := range raw {
		var n Notification
		if err := json.Unmarshal(b, &n); err != nil {
			continue
		}
		out = append(out, n)
	}
	return out, nil
}
