package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"saraswati-be/internal/dto"
	"saraswati-be/internal/pkg/logger"
	"saraswati-be/pkg/events"
	pktNats "saraswati-be/pkg/nats"

	"github.com/google/uuid"
)

// NotificationDelivery defines how to push real-time updates.
// Typically implemented by the WebSocket Hub.
type NotificationDelivery interface {
	Send(userID string, notification dto.NotificationPayload)
	Broadcast(notification dto.NotificationPayload)
}

// NotificationService turns workflow events from the bus into push
// notifications for the people involved in the review. Notifications are
// ephemeral; the review timeline is the durable record.
type NotificationService struct {
	subscriber *pktNats.Subscriber
	delivery   NotificationDelivery
	logger     logger.ILogger
}

func NewNotificationService(sub *pktNats.Subscriber, delivery NotificationDelivery, log logger.ILogger) *NotificationService {
	return &NotificationService{
		subscriber: sub,
		delivery:   delivery,
		logger:     log,
	}
}

// Start begins listening to the event bus.
func (s *NotificationService) Start() {
	// Subscribe to all events with a durable consumer
	err := s.subscriber.Subscribe("events.>", "notif-service-worker", s.handleEvent)
	if err != nil {
		s.logger.Error("NotificationService", "Failed to start notification subscriber", map[string]interface{}{"error": err})
		return
	}
	s.logger.Info("NotificationService", "Notification service started, listening to events.>", nil)
}

var notificationTitles = map[string]string{
	events.TypeReviewSubmitted:        "Review requested",
	events.TypeReviewReopened:         "Review resubmitted",
	events.TypeReviewApproved:         "Review approved",
	events.TypeReviewChangesRequested: "Changes requested",
	events.TypeReviewCommented:        "New comment",
	events.TypeReviewMerged:           "Review merged",
	events.TypeReviewClosed:           "Review closed",
	events.TypeNoteDeleted:            "Note deleted",
	events.TypeNoteRestored:           "Note restored",
}

func (s *NotificationService) handleEvent(ctx context.Context, event events.Event) error {
	// Strip "events." prefix from type if present (NATS subject includes stream name)
	typeCode := strings.TrimPrefix(event.EventType(), "events.")

	title, ok := notificationTitles[typeCode]
	if !ok {
		// Unknown events are not an error; the bus carries more than we push.
		return nil
	}

	payload := event.Payload()
	noteTitle, _ := payload["title"].(string)
	actorId, _ := payload["user_id"].(string)

	notif := dto.NotificationPayload{
		Id:        uuid.New(),
		TypeCode:  typeCode,
		Title:     title,
		Message:   fmt.Sprintf("%s: %s", title, noteTitle),
		Metadata:  payload,
		CreatedAt: time.Now(),
	}

	if s.delivery == nil {
		return nil
	}

	// Everyone involved in the review hears about it, except whoever acted.
	recipients := s.resolveRecipients(payload, actorId)
	if len(recipients) == 0 {
		return nil
	}
	for _, userId := range recipients {
		s.delivery.Send(userId, notif)
	}
	s.logger.Info("NotificationService", "Notification delivered", map[string]interface{}{
		"type":       typeCode,
		"recipients": len(recipients),
	})
	return nil
}

func (s *NotificationService) resolveRecipients(payload map[string]interface{}, actorId string) []string {
	seen := make(map[string]struct{})
	var out []string

	add := func(id string) {
		if id == "" || id == actorId {
			return
		}
		if _, ok := seen[id]; ok {
			return
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}

	if authorId, ok := payload["author_id"].(string); ok {
		add(authorId)
	}
	switch reviewers := payload["reviewers"].(type) {
	case []string:
		for _, id := range reviewers {
			add(id)
		}
	case []interface{}:
		// JSON decoding turns the slice into []interface{}.
		for _, v := range reviewers {
			if id, ok := v.(string); ok {
				add(id)
			}
		}
	}
	return out
}
