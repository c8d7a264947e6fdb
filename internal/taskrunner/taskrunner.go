// Package taskrunner executes render tasks with in-memory workers. It is
// the default execution mode: no external broker, bounded queue, graceful
// shutdown.
package taskrunner

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"

	"go.uber.org/zap"

	"encore-ai/internal/dto"
	"encore-ai/internal/service"
	"encore-ai/internal/storage"
	"encore-ai/internal/types"
	"encore-ai/log"
)

const (
	defaultQueueSize   = 64
	defaultConcurrency = 1
)

var (
	ErrRunnerStopped = errors.New("task runner stopped")
	ErrQueueFull     = errors.New("task queue is full")
)

// Config controls in-process task runner behavior.
type Config struct {
	QueueSize   int
	Concurrency int
}

// DefaultConfig returns a single-machine default. One render at a time:
// a render saturates the machine on its own through the unit worker pool.
func DefaultConfig() Config {
	return Config{
		QueueSize:   defaultQueueSize,
		Concurrency: defaultConcurrency,
	}
}

// RenderTaskPayload contains render task enqueue data.
type RenderTaskPayload struct {
	TaskID    string `json:"task_id"`
	EpisodeID string `json:"episode_id"`
	Force     bool   `json:"force,omitempty"`
}

// Runner executes queued render tasks with in-memory workers.
type Runner struct {
	service *service.Service
	config  Config

	queue  chan RenderTaskPayload
	ctx    context.Context
	cancel context.CancelFunc

	workerWg sync.WaitGroup
	closed   atomic.Bool
}

// New creates and starts a task runner.
func New(svc *service.Service, cfg Config) *Runner {
	if svc == nil {
		svc = service.NewService()
	}

	cfg = normalizeConfig(cfg)
	ctx, cancel := context.WithCancel(context.Background())

	runner := &Runner{
		service: svc,
		config:  cfg,
		queue:   make(chan RenderTaskPayload, cfg.QueueSize),
		ctx:     ctx,
		cancel:  cancel,
	}

	for i := 0; i < cfg.Concurrency; i++ {
		runner.workerWg.Add(1)
		go runner.worker(i + 1)
	}

	return runner
}

func normalizeConfig(cfg Config) Config {
	if cfg.QueueSize <= 0 {
		cfg.QueueSize = defaultQueueSize
	}
	if cfg.Concurrency <= 0 {
		cfg.Concurrency = defaultConcurrency
	}
	return cfg
}

// SubmitRenderTask queues an episode render job.
func (r *Runner) SubmitRenderTask(payload RenderTaskPayload) error {
	if payload.EpisodeID == "" {
		return errors.New("render task episode id is required")
	}
	if r.closed.Load() {
		return ErrRunnerStopped
	}

	select {
	case <-r.ctx.Done():
		return ErrRunnerStopped
	case r.queue <- payload:
		log.GetLogger().Info("[TaskRunner] task submitted",
			zap.String("task_id", payload.TaskID),
			zap.String("episode_id", payload.EpisodeID))
		return nil
	default:
		return ErrQueueFull
	}
}

func (r *Runner) worker(workerID int) {
	defer r.workerWg.Done()

	for {
		select {
		case <-r.ctx.Done():
			return
		default:
		}

		select {
		case <-r.ctx.Done():
			return
		case payload := <-r.queue:
			r.processRenderTask(workerID, payload)
		}
	}
}

func (r *Runner) processRenderTask(workerID int, payload RenderTaskPayload) {
	err := r.service.ExecuteRenderTask(dto.StartRenderTaskReq{
		EpisodeId:   payload.EpisodeID,
		ReuseTaskId: payload.TaskID,
		Force:       payload.Force,
	})
	if err != nil {
		r.markTaskFailed(payload.TaskID, err)
		log.GetLogger().Error("[TaskRunner] task failed",
			zap.Int("worker_id", workerID),
			zap.String("task_id", payload.TaskID),
			zap.String("episode_id", payload.EpisodeID),
			zap.Error(err))
		return
	}

	log.GetLogger().Info("[TaskRunner] task completed",
		zap.Int("worker_id", workerID),
		zap.String("task_id", payload.TaskID),
		zap.String("episode_id", payload.EpisodeID))
}

// markTaskFailed covers failures raised before the pipeline took over
// status bookkeeping.
func (r *Runner) markTaskFailed(taskID string, taskErr error) {
	if taskID == "" {
		return
	}

	task, err := storage.GetTask(taskID)
	if err != nil || task == nil {
		return
	}
	if task.Status == types.RenderTaskStatusFailed {
		return
	}

	task.Status = types.RenderTaskStatusFailed
	task.FailReason = taskErr.Error()
	task.StatusMsg = "Failed"
	_ = storage.SaveTask(task)
}

// Close stops workers and rejects new tasks.
func (r *Runner) Close() {
	if !r.closed.CompareAndSwap(false, true) {
		return
	}

	r.cancel()
	r.workerWg.Wait()
}

// Pending returns the number of queued tasks waiting for workers.
func (r *Runner) Pending() int {
	return len(r.queue)
}
