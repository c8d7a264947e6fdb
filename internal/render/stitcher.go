package render

import (
	"fmt"
	"os"
	"strings"

	"go.uber.org/zap"

	"encore-ai/log"
	apperrors "encore-ai/pkg/errors"
)

// Stitch concatenates the unit outputs, in segment order, into the raw
// episode video. Every unit output must exist: assembling around a hole
// would silently ship an episode with segments missing, so any absent
// file fails the stitch and names the offenders.
func Stitch(units []Unit, outputPath string) error {
	var inputs []string
	var missing []string
	for _, unit := range units {
		if _, err := os.Stat(unit.OutputPath); err != nil {
			missing = append(missing, fmt.Sprintf("%d", unit.Index))
			continue
		}
		inputs = append(inputs, unit.OutputPath)
	}
	if len(missing) > 0 {
		return apperrors.WrapWithDetail(apperrors.CodeUnitOutputMissing,
			"Required unit output missing",
			fmt.Sprintf("segments %s", strings.Join(missing, ", ")),
			nil)
	}
	if len(inputs) == 0 {
		return apperrors.ErrStitchFailed
	}

	if err := concatFiles(inputs, outputPath); err != nil {
		return apperrors.Wrap(apperrors.CodeStitchFailed, "Episode stitch failed", err)
	}
	log.GetLogger().Info("episode stitched",
		zap.Int("units", len(inputs)),
		zap.String("output", outputPath))
	return nil
}
