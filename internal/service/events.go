package service

import (
	"context"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/team-pig/backend/internal/domain"
	"github.com/team-pig/backend/internal/metrics"
)

// EventPublisher delivers board events to the room's live clients.
type EventPublisher interface {
	Publish(ctx context.Context, event domain.BoardEvent) error
}

// PurgeScheduler queues the hard delete of a soft-deleted room.
type PurgeScheduler interface {
	SchedulePurge(ctx context.Context, roomID uint) error
}

type nopPublisher struct{}

func (nopPublisher) Publish(context.Context, domain.BoardEvent) error { return nil }

type nopScheduler struct{}

func (nopScheduler) SchedulePurge(context.Context, uint) error { return nil }

// emitter publishes an event after a committed mutation. Publish failures are
// logged only; the mutation already happened.
type emitter struct {
	publisher EventPublisher
	now       func() time.Time
}

func newEmitter(p EventPublisher) emitter {
	if p == nil {
		p = nopPublisher{}
	}
	return emitter{publisher: p, now: time.Now}
}

func (e emitter) emit(ctx context.Context, eventType string, roomID, actorID uint, entityID string, data interface{}) {
	metrics.BoardMutations.WithLabelValues(eventType).Inc()
	event := domain.BoardEvent{
		Type:     eventType,
		RoomID:   roomID,
		ActorID:  actorID,
		EntityID: entityID,
		At:       e.now().UTC(),
		Data:     data,
	}
	if err := e.publisher.Publish(ctx, event); err != nil {
		logrus.WithError(err).WithFields(logrus.Fields{
			"room_id":    roomID,
			"event_type": eventType,
		}).Warn("Failed to publish board event")
	}
}
