package handler

import (
	"os"
	"path/filepath"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"encore-ai/internal/dto"
	"encore-ai/internal/queue"
	"encore-ai/internal/response"
	"encore-ai/internal/taskrunner"
	"encore-ai/log"
	apperrors "encore-ai/pkg/errors"
)

// submit hands the prepared task to the configured execution backend.
func (h *Handler) submit(req dto.StartRenderTaskReq, taskId string) error {
	if h.Queue != nil {
		return h.Queue.EnqueueRenderTask(queue.RenderTaskPayload{
			TaskID:    taskId,
			EpisodeID: req.EpisodeId,
			Force:     req.Force,
		})
	}
	return h.Runner.SubmitRenderTask(taskrunner.RenderTaskPayload{
		TaskID:    taskId,
		EpisodeID: req.EpisodeId,
		Force:     req.Force,
	})
}

func (h *Handler) StartRenderTask(c *gin.Context) {
	var req dto.StartRenderTaskReq
	if err := c.ShouldBindJSON(&req); err != nil {
		log.GetLogger().Error("StartRenderTask ShouldBindJSON err", zap.Error(err))
		response.ErrorResponse(c, apperrors.Wrap(apperrors.CodeInvalidParams, "Invalid parameters", err))
		return
	}
	log.GetLogger().Info("StartRenderTask received request", zap.Any("req", req))

	task, err := h.Service.PrepareRenderTask(req)
	if err != nil {
		response.ErrorResponse(c, err)
		return
	}
	req.ReuseTaskId = task.TaskId
	if err := h.submit(req, task.TaskId); err != nil {
		response.ErrorResponse(c, apperrors.Wrap(apperrors.CodeUnknown, "Failed to submit task", err))
		return
	}
	response.Success(c, dto.StartRenderTaskResData{TaskId: task.TaskId})
}

func (h *Handler) GetRenderTask(c *gin.Context) {
	var req dto.GetRenderTaskReq
	if err := c.ShouldBindQuery(&req); err != nil {
		response.ErrorResponse(c, apperrors.Wrap(apperrors.CodeInvalidParams, "Invalid parameters", err))
		return
	}

	data, err := h.Service.GetTaskStatus(req)
	if err != nil {
		response.ErrorResponse(c, err)
		return
	}
	response.Success(c, data)
}

func (h *Handler) GetTaskHistory(c *gin.Context) {
	history, err := h.Service.GetTaskHistory(200)
	if err != nil {
		response.ErrorResponse(c, err)
		return
	}
	response.Success(c, history)
}

func (h *Handler) DeleteTask(c *gin.Context) {
	taskId := c.Param("taskId")
	if taskId == "" {
		response.ErrorResponse(c, apperrors.ErrInvalidParams)
		return
	}
	if err := h.Service.DeleteTask(taskId); err != nil {
		response.ErrorResponse(c, err)
		return
	}
	response.Success(c, nil)
}

// RetryTask restarts a failed or finished task, reusing its id so only
// changed or missing units render again.
func (h *Handler) RetryTask(c *gin.Context) {
	taskId := c.Param("taskId")
	if taskId == "" {
		response.ErrorResponse(c, apperrors.ErrInvalidParams)
		return
	}

	req, err := h.Service.RetryTask(taskId)
	if err != nil {
		response.ErrorResponse(c, err)
		return
	}
	task, err := h.Service.PrepareRenderTask(*req)
	if err != nil {
		response.ErrorResponse(c, err)
		return
	}
	if err := h.submit(*req, task.TaskId); err != nil {
		response.ErrorResponse(c, apperrors.Wrap(apperrors.CodeUnknown, "Failed to submit task", err))
		return
	}
	response.Success(c, dto.StartRenderTaskResData{TaskId: task.TaskId})
}

func (h *Handler) SuggestExcerpts(c *gin.Context) {
	var req dto.SuggestExcerptsReq
	if err := c.ShouldBindQuery(&req); err != nil {
		response.ErrorResponse(c, apperrors.Wrap(apperrors.CodeInvalidParams, "Invalid parameters", err))
		return
	}

	data, err := h.Service.SuggestExcerpts(req)
	if err != nil {
		response.ErrorResponse(c, err)
		return
	}
	response.Success(c, data)
}

// DownloadFile serves finished render artifacts from the renders root.
func (h *Handler) DownloadFile(c *gin.Context) {
	requestedFile := c.Param("filepath")
	if requestedFile == "" {
		response.ErrorResponse(c, apperrors.ErrInvalidParams)
		return
	}

	localFilePath, err := h.Service.ResolveDownloadPath(requestedFile)
	if err != nil {
		response.ErrorResponse(c, apperrors.Wrap(apperrors.CodeInvalidParams, "Invalid file path", err))
		return
	}
	if _, err := os.Stat(localFilePath); os.IsNotExist(err) {
		c.JSON(404, response.FromError(apperrors.ErrFileNotFound))
		return
	}
	c.FileAttachment(localFilePath, filepath.Base(localFilePath))
}
