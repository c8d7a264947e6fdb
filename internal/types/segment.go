package types

// SegmentType discriminates the closed set of timeline entry kinds.
type SegmentType string

const (
	SegmentColdOpen         SegmentType = "cold_open"
	SegmentBrandIntro       SegmentType = "brand_intro"
	SegmentNarration        SegmentType = "narration"
	SegmentConcertAudio     SegmentType = "concert_audio"
	SegmentContextText      SegmentType = "context_text"
	SegmentChapterCard      SegmentType = "chapter_card"
	SegmentLegacyCard       SegmentType = "legacy_card"
	SegmentScrollingCredits SegmentType = "scrolling_credits"
	SegmentEndScreen        SegmentType = "end_screen"
)

// SongDNA carries performance-history provenance shown as an overlay.
type SongDNA struct {
	TimesPlayed int    `json:"timesPlayed,omitempty"`
	FirstPlayed string `json:"firstPlayed,omitempty"`
	LastPlayed  string `json:"lastPlayed,omitempty"`
}

// Segment is one timeline entry. DurationInFrames is authoritative: all
// downstream timing derives from it and it is never recomputed from audio
// length after construction. Segments are built once by the timeline
// builder and immutable afterwards.
type Segment struct {
	Type             SegmentType `json:"type"`
	DurationInFrames int         `json:"durationInFrames"`

	// Audio-bearing segments (narration, concert_audio, cold_open).
	AudioSrc       string `json:"audioSrc,omitempty"`
	AudioStartFrom int    `json:"audioStartFrom,omitempty"` // frames into the source file

	// Visual-bearing segments.
	Images  []string `json:"images,omitempty"`
	Mood    string   `json:"mood,omitempty"`
	Palette string   `json:"palette,omitempty"`

	// Text content (narration text, card titles, credits body).
	Text  string        `json:"text,omitempty"`
	Lines []ContextLine `json:"lines,omitempty"`

	// Concert-audio extras.
	SongName         string    `json:"songName,omitempty"`
	Energy           []float64 `json:"energy,omitempty"`
	Onsets           []float64 `json:"onsets,omitempty"`
	SpectralCentroid []float64 `json:"spectralCentroid,omitempty"`
	SongDNA          *SongDNA  `json:"songDna,omitempty"`
	FoleySrc         string    `json:"foleySrc,omitempty"`
	FoleyVolume      float64   `json:"foleyVolume,omitempty"`

	// Concert ambience bled into a following narration/context segment.
	BleedAudioSrc       string `json:"bleedAudioSrc,omitempty"`
	BleedAudioStartFrom int    `json:"bleedAudioStartFrom,omitempty"`
}

// ContextLine is one line of a context_text segment with its display time.
type ContextLine struct {
	Text        string  `json:"text"`
	DurationSec float64 `json:"durationSec"`
}
