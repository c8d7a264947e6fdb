package main

import (
	"os"

	"go.uber.org/zap"

	"encore-ai/config"
	"encore-ai/internal/deps"
	"encore-ai/internal/server"
	"encore-ai/internal/storage"
	"encore-ai/log"
)

func main() {
	log.InitLogger()
	defer log.GetLogger().Sync()

	if !config.LoadConfig() {
		return
	}
	if err := config.CheckConfig(); err != nil {
		log.GetLogger().Error("invalid configuration", zap.Error(err))
		return
	}

	storage.InitDB()

	// Mark any stale "running" tasks as failed (zombie cleanup).
	if count, err := storage.MarkStaleTasks(); err != nil {
		log.GetLogger().Warn("failed to mark stale tasks", zap.Error(err))
	} else if count > 0 {
		log.GetLogger().Info("marked stale tasks as failed", zap.Int64("count", count))
	}

	if err := deps.CheckDependency(); err != nil {
		log.GetLogger().Error("dependency check failed", zap.Error(err))
		return
	}
	if err := server.StartBackend(); err != nil {
		log.GetLogger().Error("API server exited", zap.Error(err))
		os.Exit(1)
	}
}
