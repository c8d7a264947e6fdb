package appdirs

import (
	"path/filepath"
	"strings"
)

const (
	AssetsRootName   = "assets"
	RendersRootName  = "renders"
	AnalysisRootName = "analysis"
	dbFileName       = "encore.db"
)

func AssetsRootFor(paths Paths) string {
	return filepath.Join(normalizeDataDir(paths.DataDir), AssetsRootName)
}

func EpisodeAssetsDirFor(paths Paths, episodeID string) string {
	return filepath.Join(AssetsRootFor(paths), episodeID)
}

func RendersRootFor(paths Paths) string {
	return filepath.Join(normalizeDataDir(paths.DataDir), RendersRootName)
}

func EpisodeRendersDirFor(paths Paths, episodeID string) string {
	return filepath.Join(RendersRootFor(paths), episodeID)
}

func AnalysisPathFor(paths Paths, showID string) string {
	return filepath.Join(normalizeDataDir(paths.DataDir), AnalysisRootName, showID+".json")
}

func DBPathFor(paths Paths) string {
	return filepath.Join(normalizeCacheDir(paths.CacheDir), dbFileName)
}

func ResolveAssetsRoot() (string, error) {
	paths, err := Resolve()
	if err != nil {
		return "", err
	}
	return AssetsRootFor(paths), nil
}

func ResolveRendersRoot() (string, error) {
	paths, err := Resolve()
	if err != nil {
		return "", err
	}
	return RendersRootFor(paths), nil
}

func ResolveDBPath() (string, error) {
	paths, err := Resolve()
	if err != nil {
		return "", err
	}
	return DBPathFor(paths), nil
}

func normalizeDataDir(dataDir string) string {
	trimmed := strings.TrimSpace(dataDir)
	if trimmed == "" {
		return "data"
	}
	return trimmed
}

func normalizeCacheDir(cacheDir string) string {
	trimmed := strings.TrimSpace(cacheDir)
	if trimmed == "" {
		return "cache"
	}
	return trimmed
}
