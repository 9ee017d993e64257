package worker

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/hibiken/asynq"
	"github.com/sirupsen/logrus"

	"github.com/team-pig/backend/internal/metrics"
	"github.com/team-pig/backend/internal/repository"
	"github.com/team-pig/backend/internal/tasks"
)

const (
	defaultPurgeGrace = 5 * time.Minute
	defaultSweepBatch = 50
)

// PurgeHandler hard-deletes soft-deleted rooms.
type PurgeHandler struct {
	boardRepo repository.BoardRepository
	roomRepo  repository.RoomRepository
	grace     time.Duration
	batch     int
	now       func() time.Time
}

// NewPurgeHandler creates a PurgeHandler. The sweep only touches rooms
// deleted more than grace ago; grace <= 0 means five minutes.
func NewPurgeHandler(boardRepo repository.BoardRepository, roomRepo repository.RoomRepository, grace time.Duration) *PurgeHandler {
	if boardRepo == nil {
		panic("BoardRepository cannot be nil for PurgeHandler")
	}
	if roomRepo == nil {
		panic("RoomRepository cannot be nil for PurgeHandler")
	}
	if grace <= 0 {
		grace = defaultPurgeGrace
	}
	return &PurgeHandler{
		boardRepo: boardRepo,
		roomRepo:  roomRepo,
		grace:     grace,
		batch:     defaultSweepBatch,
		now:       time.Now,
	}
}

func taskLogger(ctx context.Context, t *asynq.Task) *logrus.Entry {
	taskID := ""
	if rw := t.ResultWriter(); rw != nil {
		taskID = rw.TaskID()
	}
	retry, _ := asynq.GetRetryCount(ctx)
	return logrus.WithFields(logrus.Fields{
		"task_id":   taskID,
		"task_type": t.Type(),
		"retry":     retry,
	})
}

// ProcessPurge handles tasks.TypeRoomPurge.
func (h *PurgeHandler) ProcessPurge(ctx context.Context, t *asynq.Task) error {
	logCtx := taskLogger(ctx, t)

	payload, err := tasks.ParseRoomPurgePayload(t.Payload())
	if err != nil {
		logCtx.WithError(err).Error("Failed to decode room purge payload")
		return fmt.Errorf("decode room purge payload: %v: %w", err, asynq.SkipRetry)
	}
	logCtx = logCtx.WithField("room_id", payload.RoomID)

	if err := h.purge(ctx, payload.RoomID); err != nil {
		if errors.Is(err, repository.ErrRoomNotDeleted) {
			logCtx.Warn("Refusing to purge a live room")
			return fmt.Errorf("%v: %w", err, asynq.SkipRetry)
		}
		logCtx.WithError(err).Error("Room purge failed")
		return err
	}
	logCtx.Info("Room purged")
	return nil
}

// ProcessSweep handles tasks.TypeRoomPurgeSweep. It purges one batch; rooms
// beyond the batch wait for the next run.
func (h *PurgeHandler) ProcessSweep(ctx context.Context, t *asynq.Task) error {
	logCtx := taskLogger(ctx, t)

	cutoff := h.now().Add(-h.grace)
	ids, err := h.roomRepo.ListDeletedBefore(ctx, cutoff, h.batch)
	if err != nil {
		logCtx.WithError(err).Error("Failed to list deleted rooms")
		return err
	}

	var failed int
	for _, id := range ids {
		if err := h.purge(ctx, id); err != nil {
			failed++
			logCtx.WithError(err).WithField("room_id", id).Warn("Sweep could not purge room")
		}
	}
	logCtx.WithFields(logrus.Fields{"found": len(ids), "failed": failed}).Info("Purge sweep finished")
	if failed > 0 {
		return fmt.Errorf("purge sweep: %d of %d rooms failed", failed, len(ids))
	}
	return nil
}

func (h *PurgeHandler) purge(ctx context.Context, roomID uint) error {
	if err := h.boardRepo.PurgeRoom(ctx, roomID); err != nil {
		if errors.Is(err, repository.ErrRoomNotDeleted) {
			metrics.RoomPurges.WithLabelValues("skipped").Inc()
			return fmt.Errorf("purge room %d: %w", roomID, err)
		}
		metrics.RoomPurges.WithLabelValues("error").Inc()
		return fmt.Errorf("purge room %d: %w", roomID, err)
	}
	metrics.RoomPurges.WithLabelValues("ok").Inc()
	return nil
}
