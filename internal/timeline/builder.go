// Package timeline converts an episode script plus audio analysis into the
// canonical frame-accurate Timeline consumed by the render scheduler and
// the rendering engine.
package timeline

import (
	"fmt"
	"math"
	"os"
	"path/filepath"
	"sort"

	"github.com/samber/lo"

	"encore-ai/internal/analysis"
	"encore-ai/internal/media"
	"encore-ai/internal/songmatch"
	"encore-ai/internal/types"
	apperrors "encore-ai/pkg/errors"
	"encore-ai/pkg/util"
)

// Cold open audio starts this many seconds before the show's energy peak
// so the 8-second open plays into it.
const coldOpenLeadSec = 4.0

// Foley overlay gates, highest priority first.
const (
	foleyRoarThreshold  = 0.85
	foleyCheerThreshold = 0.65
)

var foleyFiles = []struct {
	src       string
	threshold float64
}{
	{"assets/foley/crowd-roar.mp3", foleyRoarThreshold},
	{"assets/foley/crowd-cheer.mp3", foleyCheerThreshold},
	{"assets/foley/scattered-clapping.mp3", 0},
}

// Builder walks a script's segment list once, resolving media and audio
// per segment, and emits an immutable Timeline.
type Builder struct {
	EpisodeID string
	DataDir   string
	Media     *media.Resolver
	Matcher   *songmatch.Matcher

	probeAudioDuration func(path string) (float64, error)
	statFunc           func(string) (os.FileInfo, error)
}

func NewBuilder(episodeID, dataDir string) *Builder {
	return &Builder{
		EpisodeID:          episodeID,
		DataDir:            dataDir,
		Media:              media.NewResolver(dataDir),
		Matcher:            songmatch.NewDefaultMatcher(),
		probeAudioDuration: util.AudioDurationSeconds,
		statFunc:           os.Stat,
	}
}

func (b *Builder) fileExists(rel string) bool {
	_, err := b.statFunc(filepath.Join(b.DataDir, filepath.FromSlash(rel)))
	return err == nil
}

// concertState carries ambience from the last concert segment into the
// narration/context segments that follow it.
type concertState struct {
	audioSrc  string
	startFrom int
}

// Build runs the single-pass construction. Recoverable problems (missing
// narration audio, unmatched songs, absent analysis) become warnings, not
// errors; the returned error is reserved for an unusable result.
func (b *Builder) Build(script *types.EpisodeScript, show *types.ShowAnalysis) (*types.Timeline, []string, error) {
	if script == nil || len(script.Segments) == 0 {
		return nil, nil, apperrors.ErrScriptUnparsable
	}

	var warnings []string
	var segments []types.Segment
	var bleed concertState

	warn := func(format string, args ...any) {
		warnings = append(warnings, fmt.Sprintf(format, args...))
	}

	if coldOpen, ok := b.buildColdOpen(show); ok {
		segments = append(segments, coldOpen)
	} else if show == nil {
		warn("no audio analysis: cold open, dead-air trimming and energy effects disabled")
	}

	segments = append(segments, types.Segment{
		Type:             types.SegmentBrandIntro,
		DurationInFrames: types.BrandIntroFrames,
	})

	for i, scriptSeg := range script.Segments {
		switch scriptSeg.Type {
		case string(types.SegmentNarration):
			if scriptSeg.Key == types.SetBreakNarrationKey {
				segments = append(segments, types.Segment{
					Type:             types.SegmentChapterCard,
					DurationInFrames: types.ChapterCardFrames,
					Text:             "Set Break",
					Mood:             scriptSeg.Mood,
				})
			}
			seg, ok := b.buildNarration(scriptSeg, i, bleed, warn)
			if ok {
				segments = append(segments, seg)
			}
		case string(types.SegmentConcertAudio):
			var prev, next *types.ScriptSegment
			if i > 0 {
				prev = &script.Segments[i-1]
			}
			if i+1 < len(script.Segments) {
				next = &script.Segments[i+1]
			}
			seg, ok := b.buildConcertAudio(scriptSeg, i, prev, next, show, warn)
			if ok {
				segments = append(segments, seg)
				bleed = concertState{audioSrc: seg.AudioSrc, startFrom: seg.AudioStartFrom}
			}
		case string(types.SegmentContextText):
			segments = append(segments, b.buildContextText(scriptSeg, i, bleed))
		default:
			warn("script segment %d: unknown type %q skipped", i, scriptSeg.Type)
		}
	}

	segments = append(segments, b.buildClosing(script)...)

	// Anything structural alone is not a renderable episode.
	renderable := lo.CountBy(segments, func(seg types.Segment) bool {
		return seg.Type == types.SegmentNarration ||
			seg.Type == types.SegmentConcertAudio ||
			seg.Type == types.SegmentContextText
	})
	if renderable == 0 {
		return nil, warnings, apperrors.ErrEmptyTimeline
	}

	t := &types.Timeline{
		EpisodeID:    b.EpisodeID,
		EpisodeTitle: script.Title,
		Segments:     segments,
	}
	t.TotalDurationInFrames = totalDuration(segments)
	b.attachAudioBeds(t)
	deriveAutomationWindows(t)

	return t, warnings, nil
}

// totalDuration applies the crossfade invariant: adjacent segments overlap
// by CrossfadeFrames, so naive summation overcounts by one crossfade per
// boundary.
func totalDuration(segments []types.Segment) int {
	total := 0
	for _, seg := range segments {
		total += seg.DurationInFrames
	}
	if n := len(segments); n > 1 {
		total -= types.CrossfadeFrames * (n - 1)
	}
	return total
}

func (b *Builder) buildColdOpen(show *types.ShowAnalysis) (types.Segment, bool) {
	peak, ok := analysis.GlobalEnergyPeak(show)
	if !ok {
		return types.Segment{}, false
	}
	record, found := show.SongSegments[peak.SongName]
	if !found || record.Path == "" {
		return types.Segment{}, false
	}

	startSec := peak.TimeSec - coldOpenLeadSec
	if startSec < 0 {
		startSec = 0
	}
	return types.Segment{
		Type:             types.SegmentColdOpen,
		DurationInFrames: types.ColdOpenFrames,
		AudioSrc:         record.Path,
		AudioStartFrom:   int(math.Round(startSec * types.FPS)),
		SongName:         peak.SongName,
	}, true
}

func (b *Builder) buildNarration(scriptSeg types.ScriptSegment, index int, bleed concertState, warn func(string, ...any)) (types.Segment, bool) {
	audioRel := fmt.Sprintf("assets/%s/narration/%s.mp3", b.EpisodeID, scriptSeg.Key)
	audioPath := filepath.Join(b.DataDir, filepath.FromSlash(audioRel))

	durationSec, err := b.probeAudioDuration(audioPath)
	if err != nil {
		// Always skip rather than substituting a fixed duration: a wrong
		// duration silently desyncs the concert-bleed timing downstream.
		warn("narration %q: audio missing or unreadable, segment skipped", scriptSeg.Key)
		return types.Segment{}, false
	}

	seg := types.Segment{
		Type:             types.SegmentNarration,
		DurationInFrames: int(math.Ceil(durationSec * types.FPS)),
		AudioSrc:         audioRel,
		Text:             scriptSeg.Text,
		Mood:             scriptSeg.Mood,
		Palette:          scriptSeg.Palette,
	}
	seg.Images = b.resolveSegmentVisuals(index, len(scriptSeg.ScenePrompts), seg.DurationInFrames)
	seg.BleedAudioSrc = bleed.audioSrc
	seg.BleedAudioStartFrom = bleed.startFrom
	return seg, true
}

func (b *Builder) buildConcertAudio(scriptSeg types.ScriptSegment, index int, prev, next *types.ScriptSegment, show *types.ShowAnalysis, warn func(string, ...any)) (types.Segment, bool) {
	if show == nil {
		warn("concert segment %d (%s): no audio analysis, segment dropped", index, scriptSeg.SongName)
		return types.Segment{}, false
	}

	key, record, ok := b.findSongRecord(scriptSeg.SongName, show)
	if !ok || record.Path == "" {
		warn("concert segment %d (%s): no matching song audio, segment dropped", index, scriptSeg.SongName)
		return types.Segment{}, false
	}

	songAnalysis := show.PerSongAnalysis[key]
	if songAnalysis.Duration == 0 {
		songAnalysis.Duration = record.Duration
	}

	// Segue detection: the separator appearing in either side's name
	// suppresses trimming on that boundary, keeping the transition intact.
	leadSegue := prev != nil && prev.Type == string(types.SegmentConcertAudio) &&
		(songmatch.HasSegue(prev.SongName) || songmatch.HasSegue(scriptSeg.SongName))
	trailSegue := next != nil && next.Type == string(types.SegmentConcertAudio) &&
		(songmatch.HasSegue(scriptSeg.SongName) || songmatch.HasSegue(next.SongName))

	startSec := 0.0
	endSec := record.Duration
	bounds := songmatch.FindMusicBounds(songAnalysis, songmatch.DefaultBoundsOptions())
	if bounds != nil {
		if !leadSegue {
			startSec = bounds.StartSec
		}
		if !trailSegue {
			endSec = bounds.EndSec
		}
	}
	if endSec <= startSec {
		startSec, endSec = 0, record.Duration
	}

	seg := types.Segment{
		Type:             types.SegmentConcertAudio,
		DurationInFrames: int(math.Ceil((endSec - startSec) * types.FPS)),
		AudioSrc:         record.Path,
		AudioStartFrom:   int(math.Round(startSec * types.FPS)),
		SongName:         scriptSeg.SongName,
		Mood:             scriptSeg.Mood,
		Palette:          scriptSeg.Palette,
	}

	seg.Energy, seg.Onsets, seg.SpectralCentroid = sliceFeatures(songAnalysis, startSec, endSec)
	if songAnalysis.TimesPlayed > 0 {
		seg.SongDNA = &types.SongDNA{
			TimesPlayed: songAnalysis.TimesPlayed,
			FirstPlayed: songAnalysis.FirstPlayed,
			LastPlayed:  songAnalysis.LastPlayed,
		}
	}
	b.assignFoley(&seg)
	seg.Images = b.resolveSegmentVisuals(index, len(scriptSeg.ScenePrompts), seg.DurationInFrames)

	return seg, true
}

// findSongRecord resolves a script song name to an analysis record: exact
// key first, then fuzzy matching in sorted-key order.
func (b *Builder) findSongRecord(name string, show *types.ShowAnalysis) (string, types.SongSegment, bool) {
	if record, ok := show.SongSegments[name]; ok {
		return name, record, true
	}
	keys := make([]string, 0, len(show.SongSegments))
	for key := range show.SongSegments {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	for _, key := range keys {
		if b.Matcher.MatchSongName(name, key) {
			return key, show.SongSegments[key], true
		}
	}
	return "", types.SongSegment{}, false
}

// sliceFeatures restricts the per-song feature arrays to the trimmed
// window. Copies, never aliases: segments are immutable once built.
func sliceFeatures(song types.SongAnalysis, startSec, endSec float64) (energy, onsets, centroid []float64) {
	sampleDur := song.SampleDuration()
	if sampleDur <= 0 {
		return nil, nil, nil
	}
	first := int(startSec / sampleDur)
	last := int(math.Ceil(endSec / sampleDur))
	if first < 0 {
		first = 0
	}
	if last > len(song.Energy) {
		last = len(song.Energy)
	}
	if first >= last {
		return nil, nil, nil
	}

	energy = append([]float64(nil), song.Energy[first:last]...)
	if len(song.Onsets) == len(song.Energy) {
		onsets = append([]float64(nil), song.Onsets[first:last]...)
	}
	if len(song.SpectralCentroid) == len(song.Energy) {
		centroid = append([]float64(nil), song.SpectralCentroid[first:last]...)
	}
	return energy, onsets, centroid
}

// assignFoley picks a crowd-reaction overlay by peak energy, preferring
// roar over cheer over scattered clapping, gated by file existence.
func (b *Builder) assignFoley(seg *types.Segment) {
	peak := 0.0
	for _, e := range seg.Energy {
		if e > peak {
			peak = e
		}
	}
	if peak == 0 {
		return
	}
	for _, foley := range foleyFiles {
		if peak >= foley.threshold && b.fileExists(foley.src) {
			seg.FoleySrc = foley.src
			seg.FoleyVolume = 0.25 + 0.25*peak
			return
		}
	}
}

func (b *Builder) buildContextText(scriptSeg types.ScriptSegment, index int, bleed concertState) types.Segment {
	totalSec := lo.SumBy(scriptSeg.Lines, func(line types.ContextLine) float64 {
		return line.DurationSec
	})
	seg := types.Segment{
		Type:                types.SegmentContextText,
		DurationInFrames:    int(math.Ceil(totalSec * types.FPS)),
		Lines:               scriptSeg.Lines,
		Mood:                scriptSeg.Mood,
		Palette:             scriptSeg.Palette,
		BleedAudioSrc:       bleed.audioSrc,
		BleedAudioStartFrom: bleed.startFrom,
	}
	if seg.DurationInFrames < 1 {
		seg.DurationInFrames = 1
	}
	seg.Images = b.resolveSegmentVisuals(index, len(scriptSeg.ScenePrompts), seg.DurationInFrames)
	return seg
}

func (b *Builder) resolveSegmentVisuals(index, slotCount, durationInFrames int) []string {
	images := b.Media.ResolveImages(b.EpisodeID, index, slotCount)
	archival := b.Media.ResolveArchivalImages(b.EpisodeID)
	images = media.InterleaveArchival(images, archival, 4, index)
	return media.PadImages(images, durationInFrames)
}

// buildClosing appends the fixed closing sequence: legacy card, scrolling
// credits, end screen.
func (b *Builder) buildClosing(script *types.EpisodeScript) []types.Segment {
	legacyText := script.LegacyStatement
	if script.LegacyAttribution != "" {
		legacyText += "\n— " + script.LegacyAttribution
	}
	return []types.Segment{
		{
			Type:             types.SegmentLegacyCard,
			DurationInFrames: types.LegacyCardFrames,
			Text:             legacyText,
		},
		{
			Type:             types.SegmentScrollingCredits,
			DurationInFrames: types.ScrollingCreditsFrames,
		},
		{
			Type:             types.SegmentEndScreen,
			DurationInFrames: types.EndScreenFrames,
		},
	}
}

// attachAudioBeds picks the ambient bed and BGM tracks, when present.
func (b *Builder) attachAudioBeds(t *types.Timeline) {
	if beds := b.Media.SortedDirFiles("assets/ambient", ".mp3"); len(beds) > 0 {
		t.AmbientBedSrc = beds[0]
	}
	if bgm := b.Media.SortedDirFiles(fmt.Sprintf("assets/%s/bgm", b.EpisodeID), ".mp3"); len(bgm) > 0 {
		t.BGMSrc = bgm[0]
	}
	t.AudioMix = &types.AudioMix{
		NarrationVolume: 1.0,
		ConcertVolume:   1.0,
		AmbientVolume:   0.18,
		BGMVolume:       0.12,
	}
}

// deriveAutomationWindows converts each dramatic-mood segment's position
// into full-timeline frame offsets: a silence window at its start, and a
// pre-swell ramp ending exactly there (skipped for the very first
// segment).
func deriveAutomationWindows(t *types.Timeline) {
	for i, seg := range t.Segments {
		if !types.DramaticMoods[seg.Mood] {
			continue
		}
		start := t.SegmentStartFrame(i)
		t.SilenceWindows = append(t.SilenceWindows, types.SilenceWindow{
			StartFrame:     start,
			DurationFrames: types.DramaticSilenceFrames,
		})
		if i > 0 {
			t.PreSwellWindows = append(t.PreSwellWindows, types.PreSwellWindow{
				PeakFrame:       start,
				RampFrames:      types.PreSwellRampFrames,
				BoostMultiplier: types.PreSwellBoost,
			})
		}
	}
}
