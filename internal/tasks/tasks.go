// Package tasks defines the background jobs and how they are enqueued.
package tasks

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/hibiken/asynq"
)

const (
	// TypeRoomPurge hard-deletes one soft-deleted room and its board.
	TypeRoomPurge = "room:purge"
	// TypeRoomPurgeSweep purges every room soft-deleted longer than the grace period.
	TypeRoomPurgeSweep = "room:purge_sweep"

	QueueDefault  = "default"
	purgeMaxRetry = 5
)

// RoomPurgePayload identifies the room to purge.
type RoomPurgePayload struct {
	RoomID uint `json:"roomId"`
}

// NewRoomPurgeTask builds the purge task of roomID.
func NewRoomPurgeTask(roomID uint) (*asynq.Task, error) {
	payload, err := json.Marshal(RoomPurgePayload{RoomID: roomID})
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TypeRoomPurge, payload, asynq.MaxRetry(purgeMaxRetry), asynq.Queue(QueueDefault)), nil
}

// ParseRoomPurgePayload decodes a purge task payload.
func ParseRoomPurgePayload(data []byte) (RoomPurgePayload, error) {
	var p RoomPurgePayload
	if err := json.Unmarshal(data, &p); err != nil {
		return p, err
	}
	if p.RoomID == 0 {
		return p, fmt.Errorf("room purge payload has no room id")
	}
	return p, nil
}

// NewRoomPurgeSweepTask builds the periodic sweep task.
func NewRoomPurgeSweepTask() *asynq.Task {
	return asynq.NewTask(TypeRoomPurgeSweep, nil, asynq.MaxRetry(1), asynq.Queue(QueueDefault))
}

// Enqueuer is the part of asynq.Client the scheduler needs.
type Enqueuer interface {
	EnqueueContext(ctx context.Context, task *asynq.Task, opts ...asynq.Option) (*asynq.TaskInfo, error)
}

// PurgeScheduler queues room purges on asynq.
type PurgeScheduler struct {
	client Enqueuer
}

// NewPurgeScheduler creates a PurgeScheduler on client, usually an *asynq.Client.
func NewPurgeScheduler(client Enqueuer) *PurgeScheduler {
	if client == nil {
		panic("asynq client cannot be nil for PurgeScheduler")
	}
	return &PurgeScheduler{client: client}
}

// SchedulePurge enqueues the purge of roomID.
func (s *PurgeScheduler) SchedulePurge(ctx context.Context, roomID uint) error {
	task, err := NewRoomPurgeTask(roomID)
	if err != nil {
		return fmt.Errorf("tasks: build purge task: %w", err)
	}
	if _, err := s.client.EnqueueContext(ctx, task); err != nil {
		return fmt.Errorf("tasks: enqueue purge of room %d: %w", roomID, err)
	}
	return nil
}
