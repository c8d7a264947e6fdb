// Package queue provides task handlers for Asynq background processing.
package queue

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/hibiken/asynq"
	"go.uber.org/zap"

	"encore-ai/internal/dto"
	"encore-ai/internal/service"
	"encore-ai/log"
)

// TaskHandlers provides handlers for the queue's task types.
type TaskHandlers struct {
	service *service.Service
}

func NewTaskHandlers(svc *service.Service) *TaskHandlers {
	return &TaskHandlers{service: svc}
}

// HandleRenderTask processes an episode render. The error return feeds
// Asynq's retry machinery; the pipeline has already persisted the failed
// status by the time it surfaces here.
func (h *TaskHandlers) HandleRenderTask(ctx context.Context, t *asynq.Task) error {
	var payload RenderTaskPayload
	if err := json.Unmarshal(t.Payload(), &payload); err != nil {
		return fmt.Errorf("failed to unmarshal payload: %w", err)
	}

	log.GetLogger().Info("[Queue] Processing render task",
		zap.String("task_id", payload.TaskID),
		zap.String("episode_id", payload.EpisodeID))

	err := h.service.ExecuteRenderTask(dto.StartRenderTaskReq{
		EpisodeId:   payload.EpisodeID,
		ReuseTaskId: payload.TaskID,
		Force:       payload.Force,
	})
	if err != nil {
		return err
	}

	log.GetLogger().Info("[Queue] Render task completed",
		zap.String("task_id", payload.TaskID))

	return nil
}

// RegisterHandlers registers all task handlers with the Asynq server mux.
func (h *TaskHandlers) RegisterHandlers(mux *asynq.ServeMux) {
	mux.HandleFunc(TypeRenderTask, h.HandleRenderTask)
}

// StartWorker starts the Asynq worker with registered handlers.
func StartWorker(q *Queue, svc *service.Service) error {
	handlers := NewTaskHandlers(svc)

	mux := asynq.NewServeMux()
	handlers.RegisterHandlers(mux)

	log.GetLogger().Info("[Queue] Starting worker",
		zap.String("redis_addr", q.config.RedisAddr),
		zap.Int("concurrency", q.config.Concurrency))

	return q.server.Run(mux)
}
