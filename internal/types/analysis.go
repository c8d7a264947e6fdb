package types

// ShowAnalysis is the precomputed per-show audio analysis JSON: song
// boundaries within the recording plus per-song feature arrays. Produced
// offline; consumed read-only.
type ShowAnalysis struct {
	SongSegments    map[string]SongSegment  `json:"songSegments"`
	PerSongAnalysis map[string]SongAnalysis `json:"perSongAnalysis"`
}

// SongSegment locates one song's audio file and its wall-clock duration.
type SongSegment struct {
	Path     string  `json:"path"`
	Duration float64 `json:"duration"`
}

// SongAnalysis holds evenly spaced feature samples across one song.
type SongAnalysis struct {
	Energy           []float64 `json:"energy"`
	Onsets           []float64 `json:"onsets,omitempty"`
	SpectralCentroid []float64 `json:"spectralCentroid,omitempty"`
	Duration         float64   `json:"duration"`
	TimesPlayed      int       `json:"timesPlayed,omitempty"`
	FirstPlayed      string    `json:"firstPlayed,omitempty"`
	LastPlayed       string    `json:"lastPlayed,omitempty"`
}

// SampleDuration returns the seconds covered by one energy sample, or 0
// when the analysis is empty.
func (a SongAnalysis) SampleDuration() float64 {
	if len(a.Energy) == 0 || a.Duration <= 0 {
		return 0
	}
	return a.Duration / float64(len(a.Energy))
}
