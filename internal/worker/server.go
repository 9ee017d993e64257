package worker

import (
	"context"
	"errors"

	"github.com/hibiken/asynq"
	"github.com/sirupsen/logrus"

	"github.com/team-pig/backend/internal/tasks"
)

// WorkerServer runs the asynq server that processes purge tasks.
type WorkerServer struct {
	server *asynq.Server
	purge  *PurgeHandler
	log    *logrus.Entry
}

// NewWorkerServer creates a WorkerServer. concurrency <= 0 means 10.
func NewWorkerServer(redisOpt asynq.RedisConnOpt, concurrency int, purge *PurgeHandler, logger *logrus.Logger) *WorkerServer {
	if purge == nil {
		panic("PurgeHandler cannot be nil for WorkerServer")
	}
	if concurrency <= 0 {
		concurrency = 10
	}
	logEntry := logger.WithField("component", "worker_server")

	server := asynq.NewServer(redisOpt, asynq.Config{
		Concurrency: concurrency,
		Queues:      map[string]int{tasks.QueueDefault: 1},
		Logger:      asynqLogger{entry: logEntry},
		ErrorHandler: asynq.ErrorHandlerFunc(func(ctx context.Context, task *asynq.Task, err error) {
			retryCount, _ := asynq.GetRetryCount(ctx)
			maxRetry, _ := asynq.GetMaxRetry(ctx)
			logEntry.WithFields(logrus.Fields{
				"task_type": task.Type(),
				"retries":   retryCount,
				"max_retry": maxRetry,
			}).Errorf("Task failed: %v", err)
		}),
	})

	return &WorkerServer{server: server, purge: purge, log: logEntry}
}

// Mux returns the task routing of this worker.
func (ws *WorkerServer) Mux() *asynq.ServeMux {
	mux := asynq.NewServeMux()
	mux.HandleFunc(tasks.TypeRoomPurge, ws.purge.ProcessPurge)
	mux.HandleFunc(tasks.TypeRoomPurgeSweep, ws.purge.ProcessSweep)
	return mux
}

// Start begins processing in background goroutines.
func (ws *WorkerServer) Start() error {
	ws.log.Info("Worker server starting...")
	if err := ws.server.Start(ws.Mux()); err != nil && !errors.Is(err, asynq.ErrServerClosed) {
		return err
	}
	return nil
}

// Shutdown stops fetching tasks and waits for running ones.
func (ws *WorkerServer) Shutdown() {
	ws.log.Info("Shutting down worker server...")
	ws.server.Shutdown()
	ws.log.Info("Worker server stopped.")
}

// Scheduler enqueues the periodic purge sweep.
type Scheduler struct {
	scheduler *asynq.Scheduler
	log       *logrus.Entry
}

// NewScheduler registers the sweep on schedule, a cron spec or "@every <duration>".
func NewScheduler(redisOpt asynq.RedisConnOpt, schedule string, logger *logrus.Logger) (*Scheduler, error) {
	logEntry := logger.WithField("component", "scheduler")
	scheduler := asynq.NewScheduler(redisOpt, &asynq.SchedulerOpts{Logger: asynqLogger{entry: logEntry}})

	entryID, err := scheduler.Register(schedule, tasks.NewRoomPurgeSweepTask())
	if err != nil {
		return nil, err
	}
	logEntry.Infof("Purge sweep registered with schedule '%s' (EntryID: %s)", schedule, entryID)
	return &Scheduler{scheduler: scheduler, log: logEntry}, nil
}

// Start begins enqueueing in a background goroutine.
func (s *Scheduler) Start() error {
	s.log.Info("Asynq scheduler starting...")
	return s.scheduler.Start()
}

// Shutdown stops the scheduler.
func (s *Scheduler) Shutdown() {
	s.scheduler.Shutdown()
	s.log.Info("Asynq scheduler stopped.")
}
