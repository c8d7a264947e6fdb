package service

import (
	"fmt"
	"path/filepath"
	"strings"

	"encore-ai/config"
	"encore-ai/internal/appdirs"
)

var appDirsResolver = appdirs.Resolve

// resolveDataRoot honors the configured data directory, falling back to
// the platform-resolved location.
func resolveDataRoot() (string, error) {
	if configured := strings.TrimSpace(config.Conf.App.DataDir); configured != "" {
		return configured, nil
	}
	dirs, err := appDirsResolver()
	if err != nil {
		return "", err
	}
	return dirs.DataDir, nil
}

func resolveRendersRoot() (string, error) {
	dataRoot, err := resolveDataRoot()
	if err != nil {
		return "", err
	}
	return filepath.Join(dataRoot, appdirs.RendersRootName), nil
}

// validateEpisodeID rejects ids that could escape the data tree once
// joined into a path. Episode ids name a single directory level; they are
// also joined under the renders root that DeleteTask removes recursively.
func validateEpisodeID(episodeID string) error {
	if strings.TrimSpace(episodeID) == "" {
		return fmt.Errorf("episode id is empty")
	}
	if strings.ContainsAny(episodeID, `/\`) || strings.Contains(episodeID, "..") || episodeID != filepath.Base(episodeID) {
		return fmt.Errorf("episode id %q contains path separators", episodeID)
	}
	return nil
}

func resolveEpisodeRendersDir(episodeID string) (string, error) {
	if err := validateEpisodeID(episodeID); err != nil {
		return "", err
	}
	rendersRoot, err := resolveRendersRoot()
	if err != nil {
		return "", err
	}
	return filepath.Join(rendersRoot, episodeID), nil
}

func resolveScriptPath(episodeID string) (string, error) {
	if err := validateEpisodeID(episodeID); err != nil {
		return "", err
	}
	dataRoot, err := resolveDataRoot()
	if err != nil {
		return "", err
	}
	return filepath.Join(dataRoot, appdirs.AssetsRootName, episodeID, "script.json"), nil
}

func resolveAnalysisPath(episodeID string) (string, error) {
	if err := validateEpisodeID(episodeID); err != nil {
		return "", err
	}
	dataRoot, err := resolveDataRoot()
	if err != nil {
		return "", err
	}
	return filepath.Join(dataRoot, appdirs.AnalysisRootName, episodeID+".json"), nil
}

// ResolveDownloadPath maps a renders-root-relative request path to the
// local artifact path, rejecting anything that escapes the renders root.
func (s *Service) ResolveDownloadPath(requested string) (string, error) {
	rendersRoot, err := resolveRendersRoot()
	if err != nil {
		return "", err
	}
	return resolveRenderDownloadPath(filepath.Join(rendersRoot, filepath.FromSlash(requested)))
}

// resolveRenderDownloadPath validates that a requested artifact path stays
// inside the renders root before it is served.
func resolveRenderDownloadPath(localPath string) (string, error) {
	rendersRoot, err := resolveRendersRoot()
	if err != nil {
		return "", err
	}

	cleaned := filepath.Clean(localPath)
	relPath, err := filepath.Rel(rendersRoot, cleaned)
	if err != nil {
		return "", err
	}
	if relPath == "." || relPath == "" {
		return "", fmt.Errorf("render artifact path %q is not a file path", localPath)
	}
	if relPath == ".." || strings.HasPrefix(relPath, ".."+string(filepath.Separator)) {
		return "", fmt.Errorf("render artifact path %q is outside renders root %q", localPath, rendersRoot)
	}
	return cleaned, nil
}
