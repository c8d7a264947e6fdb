package analysis

import (
	"os"
	"path/filepath"
	"testing"

	"encore-ai/internal/types"
)

func TestLoadMissingFileReturnsNil(t *testing.T) {
	show, err := Load(filepath.Join(t.TempDir(), "nope.json"))
	if err != nil {
		t.Fatalf("Load() error = %v, want nil for missing file", err)
	}
	if show != nil {
		t.Fatalf("Load() = %+v, want nil", show)
	}
}

func TestLoadParsesShowAnalysis(t *testing.T) {
	path := filepath.Join(t.TempDir(), "show.json")
	content := `{
		"songSegments": {
			"Dark Star": {"path": "/audio/dark-star.flac", "duration": 400}
		},
		"perSongAnalysis": {
			"Dark Star": {"energy": [0.1, 0.2, 0.3], "duration": 400}
		}
	}`
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}

	show, err := Load(path)
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}
	if show == nil {
		t.Fatal("Load() = nil, want analysis")
	}
	seg, ok := show.SongSegments["Dark Star"]
	if !ok {
		t.Fatal("missing Dark Star song segment")
	}
	if seg.Duration != 400 {
		t.Fatalf("Duration = %v, want 400", seg.Duration)
	}
	if len(show.PerSongAnalysis["Dark Star"].Energy) != 3 {
		t.Fatal("expected 3 energy samples")
	}
}

func TestLoadUnparsableFileErrors(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.json")
	if err := os.WriteFile(path, []byte("{not json"), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := Load(path); err == nil {
		t.Fatal("Load() error = nil, want parse error")
	}
}

func TestGlobalEnergyPeak(t *testing.T) {
	show := &types.ShowAnalysis{
		PerSongAnalysis: map[string]types.SongAnalysis{
			"Sugar Magnolia": {Energy: []float64{0.2, 0.5, 0.3}, Duration: 300},
			"Dark Star":      {Energy: []float64{0.1, 0.95, 0.4, 0.2}, Duration: 400},
		},
	}

	peak, ok := GlobalEnergyPeak(show)
	if !ok {
		t.Fatal("GlobalEnergyPeak() ok = false, want true")
	}
	if peak.SongName != "Dark Star" {
		t.Fatalf("SongName = %q, want %q", peak.SongName, "Dark Star")
	}
	// Sample 1 of 4 over 400s: 100s in.
	if peak.TimeSec != 100.0 {
		t.Fatalf("TimeSec = %v, want 100", peak.TimeSec)
	}
	if peak.Energy != 0.95 {
		t.Fatalf("Energy = %v, want 0.95", peak.Energy)
	}
}

func TestGlobalEnergyPeakNilAnalysis(t *testing.T) {
	if _, ok := GlobalEnergyPeak(nil); ok {
		t.Fatal("GlobalEnergyPeak(nil) ok = true, want false")
	}
}
