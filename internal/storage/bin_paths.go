package storage

// Resolved external binary paths, populated by the dependency check at
// startup. Defaults assume PATH lookup.
var (
	FfmpegPath  = "ffmpeg"
	FfprobePath = "ffprobe"
	NpxPath     = "npx"
)
