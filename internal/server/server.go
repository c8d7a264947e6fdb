// Package server boots the HTTP API.
package server

import (
	"fmt"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"encore-ai/config"
	"encore-ai/internal/router"
	"encore-ai/log"
)

// StartBackend runs the API server until it fails or the process exits.
func StartBackend() error {
	gin.SetMode(gin.ReleaseMode)
	engine := gin.New()
	engine.Use(gin.Recovery())

	hdl := router.SetupRouter(engine)
	defer hdl.Close()

	addr := fmt.Sprintf("%s:%d", config.Conf.Server.Host, config.Conf.Server.Port)
	log.GetLogger().Info("API server listening", zap.String("addr", addr))
	return engine.Run(addr)
}
