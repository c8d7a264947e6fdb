package util

import (
	"fmt"
	"os"
	"os/exec"
	"strconv"
	"strings"

	"go.uber.org/zap"

	"encore-ai/internal/storage"
	"encore-ai/log"
)

// AudioDurationSeconds probes an audio file's duration with ffprobe.
func AudioDurationSeconds(filePath string) (float64, error) {
	cmdArgs := []string{
		"-v", "error",
		"-show_entries", "format=duration",
		"-of", "default=noprint_wrappers=1:nokey=1",
		filePath,
	}
	cmd := exec.Command(storage.FfprobePath, cmdArgs...)
	output, err := cmd.Output()
	if err != nil {
		log.GetLogger().Error("ffprobe duration failed", zap.Error(err), zap.String("file", filePath))
		return 0, fmt.Errorf("ffprobe %s: %w", filePath, err)
	}

	duration, err := strconv.ParseFloat(strings.TrimSpace(string(output)), 64)
	if err != nil {
		return 0, fmt.Errorf("parse ffprobe duration %q: %w", strings.TrimSpace(string(output)), err)
	}
	return duration, nil
}

// ConcatVideoFiles losslessly concatenates inputs into outputPath using the
// concat demuxer with stream copy. All inputs must share codec parameters.
func ConcatVideoFiles(inputs []string, outputPath string) error {
	if len(inputs) == 0 {
		return fmt.Errorf("no inputs to concatenate")
	}

	listFile, err := os.CreateTemp("", "concat-*.txt")
	if err != nil {
		return err
	}
	defer os.Remove(listFile.Name())

	for _, input := range inputs {
		// Single quotes in the path must be escaped for the concat demuxer.
		escaped := strings.ReplaceAll(input, "'", `'\''`)
		if _, err := fmt.Fprintf(listFile, "file '%s'\n", escaped); err != nil {
			listFile.Close()
			return err
		}
	}
	if err := listFile.Close(); err != nil {
		return err
	}

	cmdArgs := []string{
		"-y",
		"-f", "concat",
		"-safe", "0",
		"-i", listFile.Name(),
		"-c", "copy",
		outputPath,
	}
	cmd := exec.Command(storage.FfmpegPath, cmdArgs...)
	output, err := cmd.CombinedOutput()
	if err != nil {
		log.GetLogger().Error("ffmpeg concat failed",
			zap.Error(err),
			zap.Strings("inputs", inputs),
			zap.String("output", string(output)))
		return fmt.Errorf("ffmpeg concat: %w", err)
	}
	return nil
}

// NormalizeLoudness runs a loudnorm pass over the stitched program,
// re-encoding audio to -14 LUFS (platform standard) while stream-copying
// video.
func NormalizeLoudness(inputPath, outputPath string) error {
	cmdArgs := []string{
		"-y",
		"-i", inputPath,
		"-c:v", "copy",
		"-af", "loudnorm=I=-14:TP=-1.5:LRA=11",
		"-c:a", "aac",
		"-b:a", "192k",
		outputPath,
	}
	cmd := exec.Command(storage.FfmpegPath, cmdArgs...)
	output, err := cmd.CombinedOutput()
	if err != nil {
		log.GetLogger().Error("loudness normalization failed",
			zap.Error(err),
			zap.String("input", inputPath),
			zap.String("output", string(output)))
		return fmt.Errorf("ffmpeg loudnorm: %w", err)
	}

	log.GetLogger().Info("loudness normalization done", zap.String("output", outputPath))
	return nil
}
