package redispubsub

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"github.com/go-redis/redis/v8"

	"github.com/team-pig/backend/internal/domain"
)

// DefaultKeyPrefix namespaces every channel this service publishes on.
const DefaultKeyPrefix = "bb:"

// EventPublisher publishes board events on one Redis channel per room.
type EventPublisher struct {
	client    redis.UniversalClient
	keyPrefix string
}

// NewEventPublisher creates an EventPublisher. An empty keyPrefix means DefaultKeyPrefix.
func NewEventPublisher(client redis.UniversalClient, keyPrefix string) *EventPublisher {
	if client == nil {
		panic("redis client cannot be nil for EventPublisher")
	}
	return &EventPublisher{client: client, keyPrefix: normalizePrefix(keyPrefix)}
}

// Publish sends the event as JSON to the room's channel.
func (p *EventPublisher) Publish(ctx context.Context, event domain.BoardEvent) error {
	payload, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("redis: marshal board event: %w", err)
	}
	if err := p.client.Publish(ctx, RoomChannel(p.keyPrefix, event.RoomID), payload).Err(); err != nil {
		return fmt.Errorf("redis: publish board event to room %d: %w", event.RoomID, err)
	}
	return nil
}

// RoomChannel returns the channel carrying events of roomID.
func RoomChannel(keyPrefix string, roomID uint) string {
	return fmt.Sprintf("%sroom:%d:events", normalizePrefix(keyPrefix), roomID)
}

// RoomChannelPattern matches the event channel of every room.
func RoomChannelPattern(keyPrefix string) string {
	return normalizePrefix(keyPrefix) + "room:*:events"
}

// ParseRoomChannel extracts the room id from a channel built by RoomChannel.
func ParseRoomChannel(keyPrefix, channel string) (uint, bool) {
	prefix := normalizePrefix(keyPrefix) + "room:"
	if !strings.HasPrefix(channel, prefix) || !strings.HasSuffix(channel, ":events") {
		return 0, false
	}
	raw := strings.TrimSuffix(strings.TrimPrefix(channel, prefix), ":events")
	id, err := strconv.ParseUint(raw, 10, 64)
	if err != nil || id == 0 {
		return 0, false
	}
	return uint(id), true
}

func normalizePrefix(keyPrefix string) string {
	if keyPrefix == "" {
		return DefaultKeyPrefix
	}
	return keyPrefix
}
