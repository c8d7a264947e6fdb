package deps

import (
	"fmt"

	"go.uber.org/zap"

	"encore-ai/config"
	"encore-ai/internal/storage"
	"encore-ai/log"
	apperrors "encore-ai/pkg/errors"
)

// CheckDependency resolves every required binary and records the result
// for the subprocess wrappers. Any missing must-tier binary fails startup.
func CheckDependency() error {
	specs := BuildDependencyInventory(config.Conf.Render.EngineCommand)
	states := ResolveDependencyStates(specs, NewPathResolver())

	var missing []string
	for _, state := range states {
		if state.Status != DependencyStatusOK {
			if state.Tier == DependencyTierMust {
				missing = append(missing, state.Name)
			}
			continue
		}
		switch state.ID {
		case "ffmpeg":
			storage.FfmpegPath = state.ResolvedPath
		case "ffprobe":
			storage.FfprobePath = state.ResolvedPath
		case "engine":
			storage.NpxPath = state.ResolvedPath
		}
	}

	log.GetLogger().Info("dependency check", zap.String("report", FormatDependencyReport(states)))

	if len(missing) > 0 {
		return apperrors.WrapWithDetail(apperrors.CodeEngineMissing,
			"Required external binaries missing",
			fmt.Sprintf("%v", missing), nil)
	}
	return nil
}
