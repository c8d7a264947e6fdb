// Package media resolves the generated and archival visual assets backing
// a timeline segment. Pure functions over the filesystem's state at call
// time; filesystem access is injected so tests run against a fixture tree.
package media

import (
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"encore-ai/internal/types"
)

// image extensions accepted when scanning archival directories.
var archivalExtensions = map[string]bool{
	".jpg":  true,
	".jpeg": true,
	".png":  true,
	".webp": true,
}

// How many archival photos a segment without generated art cycles through.
const archivalFallbackCount = 6

// ProceduralToken marks a slot the rendering engine fills with a
// procedural visual instead of a still.
const ProceduralToken = "procedural"

// Resolver locates segment visuals under a data directory. Paths returned
// are data-dir-relative slash paths (what the rendering engine consumes);
// existence checks run against the physical tree.
type Resolver struct {
	// DataDir is the physical root the relative paths resolve against.
	DataDir string

	statFunc    func(string) (os.FileInfo, error)
	walkDirFunc func(string, fs.WalkDirFunc) error
	readDirFunc func(string) ([]os.DirEntry, error)
}

func NewResolver(dataDir string) *Resolver {
	return &Resolver{
		DataDir:     dataDir,
		statFunc:    os.Stat,
		walkDirFunc: filepath.WalkDir,
		readDirFunc: os.ReadDir,
	}
}

func (r *Resolver) exists(rel string) bool {
	if _, err := r.statFunc(filepath.Join(r.DataDir, filepath.FromSlash(rel))); err != nil {
		return false
	}
	return true
}

// ResolveImages returns the generated visual for each scene-prompt slot of
// a segment, preferring a generated video over a generated still. Slots
// with neither are omitted.
func (r *Resolver) ResolveImages(episodeID string, segmentIndex, slotCount int) []string {
	images := make([]string, 0, slotCount)
	for slot := 0; slot < slotCount; slot++ {
		base := fmt.Sprintf("assets/%s/images/seg-%02d-%d", episodeID, segmentIndex, slot)
		if video := base + ".mp4"; r.exists(video) {
			images = append(images, video)
			continue
		}
		if still := base + ".png"; r.exists(still) {
			images = append(images, still)
		}
	}
	return images
}

// ResolveArchivalImages recursively scans an episode's archival asset tree
// (one subdirectory per external source) and returns every image found, in
// directory-traversal order.
func (r *Resolver) ResolveArchivalImages(episodeID string) []string {
	root := filepath.Join(r.DataDir, "assets", episodeID, "archival")
	var images []string
	_ = r.walkDirFunc(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil || d.IsDir() {
			return nil
		}
		if !archivalExtensions[strings.ToLower(filepath.Ext(path))] {
			return nil
		}
		rel, relErr := filepath.Rel(r.DataDir, path)
		if relErr != nil {
			return nil
		}
		images = append(images, filepath.ToSlash(rel))
		return nil
	})
	return images
}

// InterleaveArchival inserts one archival image after every `every`
// generated images, consuming archival images in order. When the generated
// list is empty it falls back to cycling archival images directly, offset
// by segment index so adjacent segments don't show identical photo sets.
func InterleaveArchival(images, archival []string, every, segmentIndex int) []string {
	if every <= 0 {
		every = 4
	}
	if len(images) == 0 {
		if len(archival) == 0 {
			return nil
		}
		count := archivalFallbackCount
		if count > len(archival) {
			count = len(archival)
		}
		out := make([]string, 0, count)
		for i := 0; i < count; i++ {
			out = append(out, archival[(segmentIndex+i)%len(archival)])
		}
		return out
	}

	out := make([]string, 0, len(images)+len(images)/every)
	next := 0
	for i, img := range images {
		out = append(out, img)
		if (i+1)%every == 0 && next < len(archival) {
			out = append(out, archival[next])
			next++
		}
	}
	return out
}

// PadImages guarantees roughly one visual per five seconds of segment
// duration by cycling the existing list, alternating a real image with a
// procedural slot token for variety.
func PadImages(images []string, durationInFrames int) []string {
	target := (durationInFrames + types.FramesPerImage - 1) / types.FramesPerImage
	if target < 1 {
		target = 1
	}
	if len(images) >= target {
		return images
	}

	out := make([]string, 0, target)
	out = append(out, images...)
	cycle := 0
	for fill := 0; len(out) < target; fill++ {
		if len(images) > 0 && fill%2 == 0 {
			out = append(out, images[cycle%len(images)])
			cycle++
		} else {
			out = append(out, fmt.Sprintf("%s:%d", ProceduralToken, len(out)))
		}
	}
	return out
}

// SortedDirFiles lists a directory's files with one of the given
// extensions, sorted by name. Used for picking ambient beds and BGM.
func (r *Resolver) SortedDirFiles(relDir string, extensions ...string) []string {
	dir := filepath.Join(r.DataDir, filepath.FromSlash(relDir))
	entries, err := r.readDirFunc(dir)
	if err != nil {
		return nil
	}
	allowed := make(map[string]bool, len(extensions))
	for _, ext := range extensions {
		allowed[strings.ToLower(ext)] = true
	}
	var files []string
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		if len(allowed) > 0 && !allowed[strings.ToLower(filepath.Ext(entry.Name()))] {
			continue
		}
		files = append(files, filepath.ToSlash(filepath.Join(relDir, entry.Name())))
	}
	sort.Strings(files)
	return files
}
