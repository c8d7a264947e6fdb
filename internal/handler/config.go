package handler

import (
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"encore-ai/config"
	"encore-ai/internal/response"
	"encore-ai/log"
	apperrors "encore-ai/pkg/errors"
)

func (h *Handler) GetConfig(c *gin.Context) {
	response.Success(c, config.Conf)
}

// UpdateConfig replaces the running configuration and persists it. The
// render settings take effect on the next submitted task.
func (h *Handler) UpdateConfig(c *gin.Context) {
	var incoming config.Config
	if err := c.ShouldBindJSON(&incoming); err != nil {
		response.ErrorResponse(c, apperrors.Wrap(apperrors.CodeInvalidParams, "Invalid parameters", err))
		return
	}

	previous := config.Conf
	config.Conf = incoming
	if err := config.CheckConfig(); err != nil {
		config.Conf = previous
		response.ErrorResponse(c, apperrors.Wrap(apperrors.CodeInvalidParams, "Invalid configuration", err))
		return
	}
	if err := config.SaveConfig(); err != nil {
		log.GetLogger().Error("UpdateConfig SaveConfig err", zap.Error(err))
		response.ErrorResponse(c, apperrors.Wrap(apperrors.CodeFileWriteError, "Failed to persist configuration", err))
		return
	}

	log.GetLogger().Info("configuration updated")
	response.Success(c, config.Conf)
}
