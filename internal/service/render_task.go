package service

import (
	"fmt"
	"os"
	"sort"
	"strings"

	"go.uber.org/zap"

	"encore-ai/internal/analysis"
	"encore-ai/internal/dto"
	"encore-ai/internal/songmatch"
	"encore-ai/internal/storage"
	"encore-ai/internal/types"
	"encore-ai/log"
	apperrors "encore-ai/pkg/errors"
	"encore-ai/pkg/util"
)

// ExecuteRenderTask runs the pipeline synchronously. The task runner and
// queue workers use it so a failure propagates into their retry
// machinery.
func (s *Service) ExecuteRenderTask(req dto.StartRenderTaskReq) error {
	task, err := s.PrepareRenderTask(req)
	if err != nil {
		return err
	}
	return s.runPipeline(task, req.Force)
}

// PrepareRenderTask validates the episode and persists the task record in
// the processing state. The returned task is immediately queryable; the
// caller decides where execution happens.
func (s *Service) PrepareRenderTask(req dto.StartRenderTaskReq) (*types.RenderTask, error) {
	scriptPath, err := resolveScriptPath(req.EpisodeId)
	if err != nil {
		return nil, apperrors.Wrap(apperrors.CodeInvalidParams, "Invalid episode id", err)
	}
	if _, err := os.Stat(scriptPath); err != nil {
		return nil, apperrors.WrapWithDetail(apperrors.CodeScriptNotFound,
			"Episode script not found", scriptPath, err)
	}

	var task *types.RenderTask
	taskId := req.ReuseTaskId
	if taskId != "" {
		task, _ = storage.GetTask(taskId)
	} else {
		taskId = fmt.Sprintf("%s_%s",
			util.SanitizePathName(req.EpisodeId),
			util.GenerateRandStringWithUpperLowerNum(4))
	}

	if task == nil {
		task = &types.RenderTask{
			TaskId:    taskId,
			EpisodeId: req.EpisodeId,
		}
	}
	task.Status = types.RenderTaskStatusProcessing
	task.Stage = types.RenderStageTimeline
	task.ProcessPct = 0
	task.StatusMsg = "Building timeline"
	task.FailReason = ""

	if err := storage.SaveTask(task); err != nil {
		log.GetLogger().Error("StartRenderTask SaveTask err", zap.Error(err))
		return nil, apperrors.Wrap(apperrors.CodeDBError, "Failed to save task", err)
	}
	return task, nil
}

func (s *Service) GetTaskStatus(req dto.GetRenderTaskReq) (*dto.GetRenderTaskResData, error) {
	task, err := storage.GetTask(req.TaskId)
	if err != nil {
		return nil, apperrors.Wrap(apperrors.CodeDBError, "Failed to load task", err)
	}
	if task == nil {
		return nil, apperrors.ErrNotFound
	}
	return taskToDTO(task), nil
}

func (s *Service) GetTaskHistory(limit int) ([]dto.GetRenderTaskResData, error) {
	tasks, err := storage.GetTaskHistory(limit)
	if err != nil {
		return nil, apperrors.Wrap(apperrors.CodeDBError, "Failed to load task history", err)
	}
	history := make([]dto.GetRenderTaskResData, 0, len(tasks))
	for i := range tasks {
		history = append(history, *taskToDTO(&tasks[i]))
	}
	return history, nil
}

// DeleteTask removes the task record and its render artifacts.
func (s *Service) DeleteTask(taskId string) error {
	task, err := storage.GetTask(taskId)
	if err != nil {
		return apperrors.Wrap(apperrors.CodeDBError, "Failed to load task", err)
	}
	if task == nil {
		return apperrors.ErrNotFound
	}

	if rendersDir, err := resolveEpisodeRendersDir(task.EpisodeId); err == nil {
		if err := os.RemoveAll(rendersDir); err != nil {
			log.GetLogger().Error("DeleteTask RemoveAll err",
				zap.String("path", rendersDir), zap.Error(err))
			// Keep going: the record must not outlive a half-deleted tree.
		}
	}
	if err := storage.DeleteTask(taskId); err != nil {
		return apperrors.Wrap(apperrors.CodeDBError, "Failed to delete task", err)
	}
	return nil
}

// RetryTask checks that a task is eligible for a re-run and returns the
// resubmission request. Reusing the task id lets the change-aware
// scheduler pick up where the last run stopped.
func (s *Service) RetryTask(taskId string) (*dto.StartRenderTaskReq, error) {
	task, err := storage.GetTask(taskId)
	if err != nil {
		return nil, apperrors.Wrap(apperrors.CodeDBError, "Failed to load task", err)
	}
	if task == nil {
		return nil, apperrors.ErrNotFound
	}
	if task.Status != types.RenderTaskStatusFailed && task.Status != types.RenderTaskStatusSuccess {
		return nil, apperrors.New(apperrors.CodeInvalidParams, "Only failed or finished tasks can be retried")
	}

	return &dto.StartRenderTaskReq{
		EpisodeId:   task.EpisodeId,
		ReuseTaskId: task.TaskId,
	}, nil
}

// SuggestExcerpts returns a social-clip start point per analyzed song of
// the episode's show.
func (s *Service) SuggestExcerpts(req dto.SuggestExcerptsReq) (*dto.SuggestExcerptsResData, error) {
	analysisPath, err := resolveAnalysisPath(req.EpisodeId)
	if err != nil {
		return nil, apperrors.Wrap(apperrors.CodeInvalidParams, "Invalid episode id", err)
	}
	show, err := analysis.Load(analysisPath)
	if err != nil {
		return nil, apperrors.Wrap(apperrors.CodeAnalysisMissing, "Audio analysis unreadable", err)
	}
	if show == nil {
		return nil, apperrors.WrapWithDetail(apperrors.CodeAnalysisMissing,
			"Audio analysis not found", analysisPath, nil)
	}

	excerptLen := req.ExcerptLenSec
	if excerptLen <= 0 {
		excerptLen = types.ExcerptWindowSec
	}

	names := make([]string, 0, len(show.PerSongAnalysis))
	for name := range show.PerSongAnalysis {
		names = append(names, name)
	}
	sort.Strings(names)

	res := &dto.SuggestExcerptsResData{}
	for _, name := range names {
		startSec, ok := songmatch.FindSmartExcerptStart(show.PerSongAnalysis[name], excerptLen)
		if !ok {
			continue
		}
		res.Suggestions = append(res.Suggestions, dto.ExcerptSuggestion{
			SongName: name,
			StartSec: startSec,
		})
	}
	return res, nil
}

func taskToDTO(task *types.RenderTask) *dto.GetRenderTaskResData {
	res := &dto.GetRenderTaskResData{
		TaskId:     task.TaskId,
		EpisodeId:  task.EpisodeId,
		Status:     task.Status,
		Stage:      task.Stage,
		ProcessPct: task.ProcessPct,
		StatusMsg:  task.StatusMsg,
		FailReason: task.FailReason,
		OutputPath: task.OutputPath,
	}
	if task.Warnings != "" {
		res.Warnings = strings.Split(task.Warnings, "\n")
	}
	return res
}
