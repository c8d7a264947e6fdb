// Package handler exposes the render API over HTTP.
package handler

import (
	"go.uber.org/zap"

	"encore-ai/config"
	"encore-ai/internal/queue"
	"encore-ai/internal/service"
	"encore-ai/internal/taskrunner"
	"encore-ai/log"
)

type Handler struct {
	Service *service.Service
	Runner  *taskrunner.Runner
	Queue   *queue.Queue
}

// NewHandler wires the execution mode from configuration: an in-process
// runner by default, the Redis-backed queue when a broker is configured.
func NewHandler() *Handler {
	svc := service.NewService()
	h := &Handler{Service: svc}

	if config.Conf.Queue.RedisAddr != "" {
		h.Queue = queue.NewQueue(queue.QueueConfig{
			RedisAddr:     config.Conf.Queue.RedisAddr,
			RedisPassword: config.Conf.Queue.RedisPassword,
			RedisDB:       config.Conf.Queue.RedisDB,
			Concurrency:   config.Conf.Queue.Concurrency,
		})
		// The worker consumes alongside the HTTP surface; Run blocks
		// until Close shuts the server down.
		go func() {
			if err := queue.StartWorker(h.Queue, svc); err != nil {
				log.GetLogger().Error("queue worker stopped", zap.Error(err))
			}
		}()
	} else {
		h.Runner = taskrunner.New(svc, taskrunner.DefaultConfig())
	}
	return h
}

// Close releases the execution backend.
func (h *Handler) Close() {
	if h.Runner != nil {
		h.Runner.Close()
	}
	if h.Queue != nil {
		h.Queue.Close()
	}
}
