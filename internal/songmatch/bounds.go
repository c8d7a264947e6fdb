package songmatch

import (
	"encore-ai/internal/types"
)

// MusicBounds is the detected musical-content window inside a song
// recording, pads applied and clamped to the song.
type MusicBounds struct {
	StartSec        float64
	EndSec          float64
	TrimmedDuration float64
}

// BoundsOptions carries the dead-air pads added around detected content.
type BoundsOptions struct {
	LeadPadSec  float64
	TrailPadSec float64
}

// DefaultBoundsOptions returns the standard pads.
func DefaultBoundsOptions() BoundsOptions {
	return BoundsOptions{
		LeadPadSec:  types.DefaultLeadPadSec,
		TrailPadSec: types.DefaultTrailPadSec,
	}
}

// FindMusicBounds scans the song's energy samples for the first and last
// runs of at least MinEnergyRun consecutive samples above EnergyThreshold,
// defining the musical-content window. Returns nil when fewer than
// MinEnergySamples samples exist or no qualifying run is found; callers
// treat nil as "use full duration, untrimmed".
func FindMusicBounds(analysis types.SongAnalysis, opts BoundsOptions) *MusicBounds {
	energy := analysis.Energy
	if len(energy) < types.MinEnergySamples {
		return nil
	}
	sampleDur := analysis.SampleDuration()
	if sampleDur <= 0 {
		return nil
	}

	firstRun := -1
	for i := 0; i+types.MinEnergyRun <= len(energy); i++ {
		if runAboveThreshold(energy, i) {
			firstRun = i
			break
		}
	}
	if firstRun < 0 {
		return nil
	}

	lastRunEnd := -1
	for i := len(energy) - types.MinEnergyRun; i >= firstRun; i-- {
		if runAboveThreshold(energy, i) {
			lastRunEnd = i + types.MinEnergyRun - 1
			break
		}
	}
	if lastRunEnd < 0 {
		return nil
	}

	startSec := float64(firstRun)*sampleDur - opts.LeadPadSec
	if startSec < 0 {
		startSec = 0
	}
	endSec := float64(lastRunEnd)*sampleDur + opts.TrailPadSec
	if endSec > analysis.Duration {
		endSec = analysis.Duration
	}
	if endSec <= startSec {
		return nil
	}

	return &MusicBounds{
		StartSec:        startSec,
		EndSec:          endSec,
		TrimmedDuration: endSec - startSec,
	}
}

func runAboveThreshold(energy []float64, start int) bool {
	for i := start; i < start+types.MinEnergyRun; i++ {
		if energy[i] < types.EnergyThreshold {
			return false
		}
	}
	return true
}

// FindSmartExcerptStart picks a start time for excerpt-mode rendering: the
// 30-second window with the largest energy rise between its first and last
// thirds (the build into a peak), backed off 45 seconds so the excerpt
// plays into it. Clamped so an excerpt of excerptLenSec fits inside the
// song. The second return is false when the analysis is too sparse to
// score windows.
func FindSmartExcerptStart(analysis types.SongAnalysis, excerptLenSec float64) (float64, bool) {
	sampleDur := analysis.SampleDuration()
	if sampleDur <= 0 {
		return 0, false
	}
	windowSamples := int(types.ExcerptWindowSec / sampleDur)
	if windowSamples < 3 || windowSamples > len(analysis.Energy) {
		return 0, false
	}
	third := windowSamples / 3

	bestDelta := 0.0
	bestStart := -1
	for i := 0; i+windowSamples <= len(analysis.Energy); i++ {
		firstAvg := mean(analysis.Energy[i : i+third])
		lastAvg := mean(analysis.Energy[i+windowSamples-third : i+windowSamples])
		delta := lastAvg - firstAvg
		if bestStart < 0 || delta > bestDelta {
			bestDelta = delta
			bestStart = i
		}
	}
	if bestStart < 0 {
		return 0, false
	}

	start := float64(bestStart)*sampleDur - types.ExcerptBackoffSec
	maxStart := analysis.Duration - excerptLenSec
	if maxStart < 0 {
		maxStart = 0
	}
	if start > maxStart {
		start = maxStart
	}
	if start < 0 {
		start = 0
	}
	return start, true
}

func mean(samples []float64) float64 {
	if len(samples) == 0 {
		return 0
	}
	total := 0.0
	for _, s := range samples {
		total += s
	}
	return total / float64(len(samples))
}
