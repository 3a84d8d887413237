package website

import (
	"context"
	"log/slog"
	"time"

	"github.com/frahmantamala/website-management/internal/core/events"
	"github.com/google/uuid"
)

const (
	EventSubmitted = "website.submitted"
	EventApproved  = "website.approved"
	EventRejected  = "website.rejected"
	EventDeleted   = "website.deleted"
)

func newEvent(eventType string, w *Website, actorID int64, extra map[string]interface{}) events.BaseEvent {
	data := map[string]interface{}{
		"website_id": w.ID,
		"name":       w.Name,
		"owner_id":   w.UserID,
		"actor_id":   actorID,
		"status":     w.Status,
	}
	for k, v := range extra {
		data[k] = v
	}
	return events.BaseEvent{
		ID:        uuid.NewString(),
		Type:      eventType,
		Timestamp: time.Now(),
		Data:      data,
	}
}

// RegisterAuditSubscriber logs every website lifecycle event, the
// audit trail admins see in the activity feed.
func RegisterAuditSubscriber(bus *events.EventBus, logger *slog.Logger) {
	handler := func(ctx context.Context, event events.Event) error {
		logger.Info("audit",
			"event_type", event.EventType(),
			"event_id", event.EventID(),
			"occurred_at", event.OccurredAt(),
			"payload", event.Payload())
		return nil
	}

	for _, t := range []string{EventSubmitted, EventApproved, EventRejected, EventDeleted} {
		bus.Subscribe(t, handler)
	}
}
