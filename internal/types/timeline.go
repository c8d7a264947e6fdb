package types

// SilenceWindow marks a dramatic audio-drop region in full-timeline frame
// space.
type SilenceWindow struct {
	StartFrame     int `json:"startFrame"`
	DurationFrames int `json:"durationFrames"`
}

// PreSwellWindow marks a volume ramp ending exactly at a dramatic segment's
// start frame.
type PreSwellWindow struct {
	PeakFrame       int     `json:"peakFrame"`
	RampFrames      int     `json:"rampFrames"`
	BoostMultiplier float64 `json:"boostMultiplier"`
}

// AudioMix holds composition-level channel volumes passed through to the
// rendering engine.
type AudioMix struct {
	NarrationVolume float64 `json:"narrationVolume"`
	ConcertVolume   float64 `json:"concertVolume"`
	AmbientVolume   float64 `json:"ambientVolume"`
	BGMVolume       float64 `json:"bgmVolume"`
}

// Timeline is the canonical render input: built once per invocation,
// persisted as renders/{episodeId}/props.json, never mutated in place.
type Timeline struct {
	EpisodeID             string           `json:"episodeId"`
	EpisodeTitle          string           `json:"episodeTitle"`
	Segments              []Segment        `json:"segments"`
	TotalDurationInFrames int              `json:"totalDurationInFrames"`
	AmbientBedSrc         string           `json:"ambientBedSrc,omitempty"`
	BGMSrc                string           `json:"bgmSrc,omitempty"`
	SilenceWindows        []SilenceWindow  `json:"silenceWindows,omitempty"`
	PreSwellWindows       []PreSwellWindow `json:"preSwellWindows,omitempty"`
	AudioMix              *AudioMix        `json:"audioMix,omitempty"`
}

// SegmentStartFrame returns segment i's start in full-timeline frame space.
// Adjacent segments overlap by CrossfadeFrames, so segment i starts at the
// cumulative duration of its predecessors minus i crossfades.
func (t *Timeline) SegmentStartFrame(i int) int {
	start := 0
	for j := 0; j < i && j < len(t.Segments); j++ {
		start += t.Segments[j].DurationInFrames
	}
	start -= CrossfadeFrames * i
	if start < 0 {
		start = 0
	}
	return start
}

// MiniComposition is a bounded sub-timeline used to render one unit without
// evaluating the full program. Transient: never persisted.
type MiniComposition struct {
	EpisodeID       string           `json:"episodeId"`
	EpisodeTitle    string           `json:"episodeTitle"`
	Segments        []Segment        `json:"segments"`
	AmbientBedSrc   string           `json:"ambientBedSrc,omitempty"`
	BGMSrc          string           `json:"bgmSrc,omitempty"`
	SilenceWindows  []SilenceWindow  `json:"silenceWindows,omitempty"`
	PreSwellWindows []PreSwellWindow `json:"preSwellWindows,omitempty"`
	AudioMix        *AudioMix        `json:"audioMix,omitempty"`

	// TargetStart/TargetEnd delimit the unit's rendered span inside the
	// mini-composition's own frame space. Spans of consecutive units
	// partition the program: a unit ends where the next segment starts,
	// and the crossfade frames are rendered by the next unit against
	// this segment as its prev.
	TargetStart int `json:"targetStart"`
	TargetEnd   int `json:"targetEnd"`
	// FrameOffset maps mini-composition frame 0 back to full-timeline space.
	FrameOffset int `json:"frameOffset"`
}

// DurationInFrames is the mini-composition's own crossfade-adjusted length.
func (m *MiniComposition) DurationInFrames() int {
	total := 0
	for _, seg := range m.Segments {
		total += seg.DurationInFrames
	}
	if n := len(m.Segments); n > 1 {
		total -= CrossfadeFrames * (n - 1)
	}
	return total
}
