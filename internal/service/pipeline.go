package service

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"

	"go.uber.org/zap"

	"encore-ai/config"
	"encore-ai/internal/analysis"
	"encore-ai/internal/notify"
	"encore-ai/internal/render"
	"encore-ai/internal/storage"
	"encore-ai/internal/timeline"
	"encore-ai/internal/types"
	"encore-ai/log"
	apperrors "encore-ai/pkg/errors"
	"encore-ai/pkg/util"
)

// Progress percentages per stage. Rendering owns the wide middle band
// since it dominates wall-clock time.
const (
	pctTimelineDone = 10
	pctRenderDone   = 85
	pctStitchDone   = 92
	pctPostDone     = 100
)

// Swapped out in tests.
var newEngine = func(cfg config.Render) render.Engine {
	return render.NewCLIEngine(cfg)
}

// runPipeline drives one render task through its stages, persisting
// progress after each transition so a crash leaves a resumable record.
func (s *Service) runPipeline(task *types.RenderTask, force bool) error {
	logger := log.GetLogger().With(
		zap.String("task id", task.TaskId),
		zap.String("episode id", task.EpisodeId))
	logger.Info("render pipeline started")

	tl, err := s.stageTimeline(task)
	if err != nil {
		return s.failTask(task, err)
	}
	s.advance(task, types.RenderStageRender, pctTimelineDone, "Rendering units")

	units, err := s.stageRender(task, tl, force)
	if err != nil {
		return s.failTask(task, err)
	}
	s.advance(task, types.RenderStageStitch, pctRenderDone, "Stitching episode")

	rawPath, err := s.stageStitch(task, units)
	if err != nil {
		return s.failTask(task, err)
	}
	s.advance(task, types.RenderStagePost, pctStitchDone, "Normalizing loudness")

	outputPath, err := s.stagePost(rawPath)
	if err != nil {
		return s.failTask(task, err)
	}

	task.Status = types.RenderTaskStatusSuccess
	task.Stage = types.RenderStageDone
	task.ProcessPct = pctPostDone
	task.StatusMsg = "Done"
	task.OutputPath = outputPath
	if err := storage.SaveTask(task); err != nil {
		logger.Error("save finished task", zap.Error(err))
	}
	s.publish(task, "")
	s.Notifier.Notify(notify.Event{
		TaskID:    task.TaskId,
		EpisodeID: task.EpisodeId,
		Stage:     task.Stage,
		Status:    task.Status,
		Message:   outputPath,
	})
	logger.Info("render pipeline finished", zap.String("output", outputPath))
	return nil
}

func (s *Service) stageTimeline(task *types.RenderTask) (*types.Timeline, error) {
	scriptPath, err := resolveScriptPath(task.EpisodeId)
	if err != nil {
		return nil, err
	}
	data, err := os.ReadFile(scriptPath)
	if err != nil {
		return nil, apperrors.WrapWithDetail(apperrors.CodeScriptNotFound,
			"Episode script not found", scriptPath, err)
	}
	var script types.EpisodeScript
	if err := json.Unmarshal(data, &script); err != nil {
		return nil, apperrors.Wrap(apperrors.CodeScriptUnparsable, "Episode script unparsable", err)
	}
	task.Title = script.Title

	analysisPath, err := resolveAnalysisPath(task.EpisodeId)
	if err != nil {
		return nil, err
	}
	show, err := analysis.Load(analysisPath)
	if err != nil {
		return nil, apperrors.Wrap(apperrors.CodeAnalysisMissing, "Audio analysis unreadable", err)
	}

	dataRoot, err := resolveDataRoot()
	if err != nil {
		return nil, err
	}
	builder := timeline.NewBuilder(task.EpisodeId, dataRoot)
	tl, warnings, err := builder.Build(&script, show)
	if err != nil {
		return nil, err
	}
	task.Warnings = strings.Join(warnings, "\n")

	rendersDir, err := resolveEpisodeRendersDir(task.EpisodeId)
	if err != nil {
		return nil, err
	}
	if err := timeline.Save(tl, filepath.Join(rendersDir, "props.json")); err != nil {
		return nil, apperrors.Wrap(apperrors.CodeFileWriteError, "Failed to persist timeline", err)
	}
	return tl, nil
}

func (s *Service) stageRender(task *types.RenderTask, tl *types.Timeline, force bool) ([]render.Unit, error) {
	rendersDir, err := resolveEpisodeRendersDir(task.EpisodeId)
	if err != nil {
		return nil, err
	}

	cfg := config.Conf.Render
	scheduler := render.NewScheduler(newEngine(cfg), cfg, filepath.Join(rendersDir, "scenes"))
	scheduler.OnUnitDone = func(done, total int) {
		pct := pctTimelineDone + (pctRenderDone-pctTimelineDone)*done/total
		s.advance(task, types.RenderStageRender, uint8(pct), "Rendering units")
	}

	units, err := scheduler.PlanUnits(tl)
	if err != nil {
		return nil, apperrors.Wrap(apperrors.CodeRenderFailed, "Failed to plan render units", err)
	}
	if force {
		for i := range units {
			units[i].Skip = false
		}
	}
	if err := scheduler.Render(context.Background(), units); err != nil {
		return nil, err
	}
	return units, nil
}

func (s *Service) stageStitch(task *types.RenderTask, units []render.Unit) (string, error) {
	rendersDir, err := resolveEpisodeRendersDir(task.EpisodeId)
	if err != nil {
		return "", err
	}
	rawPath := filepath.Join(rendersDir, "episode-raw.mp4")
	if err := render.Stitch(units, rawPath); err != nil {
		return "", err
	}
	return rawPath, nil
}

func (s *Service) stagePost(rawPath string) (string, error) {
	outputPath := filepath.Join(filepath.Dir(rawPath), "episode.mp4")
	if err := util.NormalizeLoudness(rawPath, outputPath); err != nil {
		return "", apperrors.Wrap(apperrors.CodePostProcessFailed, "Loudness normalization failed", err)
	}
	os.Remove(rawPath)
	return outputPath, nil
}

func (s *Service) advance(task *types.RenderTask, stage string, pct uint8, msg string) {
	task.Stage = stage
	task.ProcessPct = pct
	task.StatusMsg = msg
	if err := storage.SaveTask(task); err != nil {
		log.GetLogger().Error("save task progress", zap.String("task id", task.TaskId), zap.Error(err))
	}
	s.publish(task, msg)
}

func (s *Service) failTask(task *types.RenderTask, cause error) error {
	log.GetLogger().Error("render pipeline failed",
		zap.String("task id", task.TaskId),
		zap.String("stage", task.Stage),
		zap.Error(cause))

	task.Status = types.RenderTaskStatusFailed
	task.FailReason = cause.Error()
	task.StatusMsg = "Failed"
	if err := storage.SaveTask(task); err != nil {
		log.GetLogger().Error("save failed task", zap.String("task id", task.TaskId), zap.Error(err))
	}
	s.publish(task, cause.Error())
	s.Notifier.Notify(notify.Event{
		TaskID:    task.TaskId,
		EpisodeID: task.EpisodeId,
		Stage:     task.Stage,
		Status:    task.Status,
		Message:   cause.Error(),
	})
	return cause
}

func (s *Service) publish(task *types.RenderTask, message string) {
	if s.Progress == nil {
		return
	}
	s.Progress.Publish(notify.ProgressEvent{
		TaskID:     task.TaskId,
		EpisodeID:  task.EpisodeId,
		Stage:      task.Stage,
		Status:     task.Status,
		ProcessPct: task.ProcessPct,
		Message:    message,
	})
}
