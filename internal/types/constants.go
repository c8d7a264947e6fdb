package types

// Externally observable contract constants. Changing any of these changes
// rendered output byte-for-byte.
const (
	FPS = 30

	// Adjacent segments overlap by this many frames in the final program.
	CrossfadeFrames = 30

	// Fixed structural segment durations.
	BrandIntroFrames       = 5 * FPS
	ColdOpenFrames         = 8 * FPS
	EndScreenFrames        = 20 * FPS
	LegacyCardFrames       = 8 * FPS
	ScrollingCreditsFrames = 15 * FPS
	ChapterCardFrames      = 2 * FPS

	// Dead-air trim pads around detected musical content.
	DefaultLeadPadSec  = 1.0
	DefaultTrailPadSec = 4.0

	// Musical-content detection over per-song energy samples.
	EnergyThreshold  = 0.08
	MinEnergyRun     = 5
	MinEnergySamples = 10

	// Excerpt-mode peak hunting.
	ExcerptWindowSec  = 30.0
	ExcerptBackoffSec = 45.0

	// One visual roughly every five seconds on long segments.
	FramesPerImage = 5 * FPS

	// Dramatic-mood automation.
	DramaticSilenceFrames = 2 * FPS
	PreSwellRampFrames    = 3 * FPS
	PreSwellBoost         = 1.35

	// Engine-memory-driven ceiling on frames per render call. Units longer
	// than this are split into sub-chunks and concatenated.
	MaxChunkFrames = 5400
)

// Moods that trigger a silence window and a pre-swell ramp.
var DramaticMoods = map[string]bool{
	"dramatic": true,
	"ominous":  true,
	"haunting": true,
}
