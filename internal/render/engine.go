package render

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"os/exec"
	"time"

	"go.uber.org/zap"

	"encore-ai/config"
	"encore-ai/internal/storage"
	"encore-ai/internal/types"
	"encore-ai/log"
)

// Engine renders a frame range of a mini-composition to a video file.
// Frame numbers are in the mini-composition's own space and the range is
// inclusive on both ends.
type Engine interface {
	RenderFrames(ctx context.Context, comp *types.MiniComposition, startFrame, endFrame int, outputPath string) error
}

// CLIEngine shells out to the Remotion CLI. One invocation renders one
// contiguous frame range; the scheduler owns chunking and retries.
type CLIEngine struct {
	Backend         string
	FramesPerWorker int
	CompositionID   string
	ProjectEntry    string
}

func NewCLIEngine(cfg config.Render) *CLIEngine {
	return &CLIEngine{
		Backend:         cfg.Backend,
		FramesPerWorker: cfg.FramesPerWorker,
		CompositionID:   "Episode",
		ProjectEntry:    "remotion/index.ts",
	}
}

func (e *CLIEngine) glRenderer() string {
	if e.Backend == "hardware" {
		return "angle"
	}
	return "swangle"
}

func (e *CLIEngine) RenderFrames(ctx context.Context, comp *types.MiniComposition, startFrame, endFrame int, outputPath string) error {
	propsFile, err := os.CreateTemp("", "props-*.json")
	if err != nil {
		return err
	}
	defer os.Remove(propsFile.Name())

	props, err := json.Marshal(comp)
	if err != nil {
		return err
	}
	if _, err := propsFile.Write(props); err != nil {
		propsFile.Close()
		return err
	}
	if err := propsFile.Close(); err != nil {
		return err
	}

	cmdArgs := []string{
		"remotion", "render",
		e.ProjectEntry,
		e.CompositionID,
		outputPath,
		"--props=" + propsFile.Name(),
		fmt.Sprintf("--frames=%d-%d", startFrame, endFrame),
		fmt.Sprintf("--concurrency=%d", e.FramesPerWorker),
		"--gl=" + e.glRenderer(),
	}

	started := time.Now()
	cmd := exec.CommandContext(ctx, storage.NpxPath, cmdArgs...)
	output, err := cmd.CombinedOutput()
	if err != nil {
		if ctx.Err() != nil {
			return fmt.Errorf("engine call for %s frames %d-%d: %w", comp.EpisodeID, startFrame, endFrame, ctx.Err())
		}
		log.GetLogger().Error("engine call failed",
			zap.Error(err),
			zap.String("episode id", comp.EpisodeID),
			zap.Int("start frame", startFrame),
			zap.Int("end frame", endFrame),
			zap.String("output", string(output)))
		return fmt.Errorf("engine call for %s frames %d-%d: %w", comp.EpisodeID, startFrame, endFrame, err)
	}

	log.GetLogger().Info("engine call done",
		zap.String("episode id", comp.EpisodeID),
		zap.Int("start frame", startFrame),
		zap.Int("end frame", endFrame),
		zap.Duration("elapsed", time.Since(started)))
	return nil
}
