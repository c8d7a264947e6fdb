// Package analysis loads the precomputed per-show audio analysis consumed
// read-only by the timeline builder.
package analysis

import (
	"encoding/json"
	"fmt"
	"os"
	"sort"

	"encore-ai/internal/types"
)

// Load reads a show analysis JSON file. A missing file returns (nil, nil):
// the caller degrades to no cold open, no trimming and no energy-driven
// effects rather than failing the build.
func Load(path string) (*types.ShowAnalysis, error) {
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read analysis %s: %w", path, err)
	}

	var show types.ShowAnalysis
	if err := json.Unmarshal(data, &show); err != nil {
		return nil, fmt.Errorf("parse analysis %s: %w", path, err)
	}
	return &show, nil
}

// EnergyPeak locates the single highest-energy moment across the whole
// show: the source of the cold open.
type EnergyPeak struct {
	SongName string
	TimeSec  float64
	Energy   float64
}

// GlobalEnergyPeak scans every song's energy array for its global maximum.
// Songs are visited in name order so ties resolve deterministically.
// Returns false when no song has energy data.
func GlobalEnergyPeak(show *types.ShowAnalysis) (EnergyPeak, bool) {
	if show == nil {
		return EnergyPeak{}, false
	}

	names := make([]string, 0, len(show.PerSongAnalysis))
	for name := range show.PerSongAnalysis {
		names = append(names, name)
	}
	sort.Strings(names)

	var peak EnergyPeak
	found := false
	for _, name := range names {
		song := show.PerSongAnalysis[name]
		sampleDur := song.SampleDuration()
		if sampleDur <= 0 {
			continue
		}
		for i, e := range song.Energy {
			if !found || e > peak.Energy {
				peak = EnergyPeak{
					SongName: name,
					TimeSec:  float64(i) * sampleDur,
					Energy:   e,
				}
				found = true
			}
		}
	}
	return peak, found
}
