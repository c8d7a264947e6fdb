package timeline

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"encore-ai/internal/types"
	apperrors "encore-ai/pkg/errors"
)

func newTestBuilder(t *testing.T, narrationSec float64) *Builder {
	t.Helper()
	b := NewBuilder("ep-1977-05-08", t.TempDir())
	b.probeAudioDuration = func(path string) (float64, error) {
		if narrationSec <= 0 {
			return 0, errors.New("no such file")
		}
		return narrationSec, nil
	}
	b.statFunc = func(string) (os.FileInfo, error) {
		return nil, os.ErrNotExist
	}
	return b
}

// trimmableEnergy builds an energy curve with dead air on both ends: 4 low
// samples, 12 high (peaking at peakValue), 4 low. With a 20-second song
// this yields one sample per second.
func trimmableEnergy(peakValue float64) []float64 {
	energy := make([]float64, 20)
	for i := 4; i < 16; i++ {
		energy[i] = 0.5
	}
	energy[10] = peakValue
	return energy
}

func testAnalysis() *types.ShowAnalysis {
	return &types.ShowAnalysis{
		SongSegments: map[string]types.SongSegment{
			"scarlet begonias": {Path: "/audio/scarlet.mp3", Duration: 20},
		},
		PerSongAnalysis: map[string]types.SongAnalysis{
			"scarlet begonias": {
				Energy:   trimmableEnergy(0.9),
				Duration: 20,
			},
		},
	}
}

func testScript() *types.EpisodeScript {
	return &types.EpisodeScript{
		Title:             "Cornell '77",
		LegacyStatement:   "The music never stopped.",
		LegacyAttribution: "A fan",
		Segments: []types.ScriptSegment{
			{Type: "narration", Key: "intro", Text: "May 8th, 1977."},
			{Type: "concert_audio", SongName: "Scarlet Begonias", Mood: "upbeat"},
			{Type: "context_text", Lines: []types.ContextLine{
				{Text: "Barton Hall.", DurationSec: 3},
				{Text: "8,500 in attendance.", DurationSec: 3},
			}},
		},
	}
}

func TestBuildFullEpisode(t *testing.T) {
	b := newTestBuilder(t, 10.0)

	tl, warnings, err := b.Build(testScript(), testAnalysis())
	if err != nil {
		t.Fatalf("Build failed: %v", err)
	}
	if len(warnings) != 0 {
		t.Fatalf("unexpected warnings: %v", warnings)
	}

	wantTypes := []types.SegmentType{
		types.SegmentColdOpen,
		types.SegmentBrandIntro,
		types.SegmentNarration,
		types.SegmentConcertAudio,
		types.SegmentContextText,
		types.SegmentLegacyCard,
		types.SegmentScrollingCredits,
		types.SegmentEndScreen,
	}
	if len(tl.Segments) != len(wantTypes) {
		t.Fatalf("got %d segments, want %d", len(tl.Segments), len(wantTypes))
	}
	for i, wantType := range wantTypes {
		if tl.Segments[i].Type != wantType {
			t.Fatalf("segment %d type = %s, want %s", i, tl.Segments[i].Type, wantType)
		}
	}

	// Cold open brackets the global energy peak at sample 10: audio starts
	// 4 seconds earlier, at frame 180.
	coldOpen := tl.Segments[0]
	if coldOpen.AudioSrc != "/audio/scarlet.mp3" {
		t.Fatalf("cold open AudioSrc = %q", coldOpen.AudioSrc)
	}
	if coldOpen.AudioStartFrom != 180 {
		t.Fatalf("cold open AudioStartFrom = %d, want 180", coldOpen.AudioStartFrom)
	}

	// 10 seconds of narration audio at 30fps.
	if got := tl.Segments[2].DurationInFrames; got != 300 {
		t.Fatalf("narration duration = %d frames, want 300", got)
	}

	// Music runs samples 4..15, so playback spans 3s..19s after padding.
	concert := tl.Segments[3]
	if concert.AudioStartFrom != 90 {
		t.Fatalf("concert AudioStartFrom = %d, want 90", concert.AudioStartFrom)
	}
	if concert.DurationInFrames != 480 {
		t.Fatalf("concert duration = %d frames, want 480", concert.DurationInFrames)
	}
	if len(concert.Energy) == 0 || len(concert.Energy) >= 20 {
		t.Fatalf("concert energy not restricted to trimmed window: %d samples", len(concert.Energy))
	}

	if got := tl.Segments[4].DurationInFrames; got != 180 {
		t.Fatalf("context text duration = %d frames, want 180", got)
	}

	sum := 0
	for _, seg := range tl.Segments {
		sum += seg.DurationInFrames
	}
	want := sum - types.CrossfadeFrames*(len(tl.Segments)-1)
	if tl.TotalDurationInFrames != want {
		t.Fatalf("total = %d, want %d", tl.TotalDurationInFrames, want)
	}
}

func TestBuildSkipsMissingNarration(t *testing.T) {
	b := newTestBuilder(t, 0) // every narration probe fails

	tl, warnings, err := b.Build(testScript(), testAnalysis())
	if err != nil {
		t.Fatalf("Build failed: %v", err)
	}
	for _, seg := range tl.Segments {
		if seg.Type == types.SegmentNarration {
			t.Fatal("narration segment present despite missing audio")
		}
	}
	if len(warnings) != 1 || !strings.Contains(warnings[0], "intro") {
		t.Fatalf("want one warning naming the key, got %v", warnings)
	}
}

func TestBuildDropsUnmatchedSong(t *testing.T) {
	b := newTestBuilder(t, 10.0)
	script := testScript()
	script.Segments[1].SongName = "Dark Star"

	tl, warnings, err := b.Build(script, testAnalysis())
	if err != nil {
		t.Fatalf("Build failed: %v", err)
	}
	for _, seg := range tl.Segments {
		if seg.Type == types.SegmentConcertAudio {
			t.Fatal("concert segment present despite unmatched song")
		}
	}
	if len(warnings) != 1 || !strings.Contains(warnings[0], "Dark Star") {
		t.Fatalf("want one warning naming the song, got %v", warnings)
	}
}

func TestBuildFuzzySongResolution(t *testing.T) {
	b := newTestBuilder(t, 10.0)
	analysis := testAnalysis()
	analysis.SongSegments["goin' down the road feeling bad"] = types.SongSegment{
		Path: "/audio/gdtrfb.mp3", Duration: 20,
	}
	analysis.PerSongAnalysis["goin' down the road feeling bad"] = types.SongAnalysis{
		Energy: trimmableEnergy(0.5), Duration: 20,
	}
	script := testScript()
	script.Segments[1].SongName = "GDTRFB"

	tl, _, err := b.Build(script, analysis)
	if err != nil {
		t.Fatalf("Build failed: %v", err)
	}
	var concert *types.Segment
	for i := range tl.Segments {
		if tl.Segments[i].Type == types.SegmentConcertAudio {
			concert = &tl.Segments[i]
		}
	}
	if concert == nil {
		t.Fatal("concert segment missing")
	}
	if concert.AudioSrc != "/audio/gdtrfb.mp3" {
		t.Fatalf("alias did not resolve, AudioSrc = %q", concert.AudioSrc)
	}
}

func TestBuildNoAnalysis(t *testing.T) {
	b := newTestBuilder(t, 10.0)

	tl, warnings, err := b.Build(testScript(), nil)
	if err != nil {
		t.Fatalf("Build failed: %v", err)
	}
	if tl.Segments[0].Type == types.SegmentColdOpen {
		t.Fatal("cold open built without analysis")
	}
	if len(warnings) < 2 {
		t.Fatalf("want warnings for disabled analysis and dropped concert, got %v", warnings)
	}
}

func TestBuildEmptyTimeline(t *testing.T) {
	b := newTestBuilder(t, 0)
	script := &types.EpisodeScript{
		Title: "Empty",
		Segments: []types.ScriptSegment{
			{Type: "narration", Key: "intro"},
		},
	}

	_, _, err := b.Build(script, nil)
	if !errors.Is(err, apperrors.ErrEmptyTimeline) {
		t.Fatalf("want ErrEmptyTimeline, got %v", err)
	}
}

func TestBuildNilScript(t *testing.T) {
	b := newTestBuilder(t, 10.0)
	if _, _, err := b.Build(nil, nil); !errors.Is(err, apperrors.ErrScriptUnparsable) {
		t.Fatalf("want ErrScriptUnparsable, got %v", err)
	}
}

func TestBuildSegueSuppressesTrim(t *testing.T) {
	b := newTestBuilder(t, 10.0)
	analysis := &types.ShowAnalysis{
		SongSegments: map[string]types.SongSegment{
			"help on the way >": {Path: "/audio/help.mp3", Duration: 20},
			"slipknot!":         {Path: "/audio/slipknot.mp3", Duration: 20},
		},
		PerSongAnalysis: map[string]types.SongAnalysis{
			"help on the way >": {Energy: trimmableEnergy(0.5), Duration: 20},
			"slipknot!":         {Energy: trimmableEnergy(0.5), Duration: 20},
		},
	}
	script := &types.EpisodeScript{
		Title: "Segue",
		Segments: []types.ScriptSegment{
			{Type: "concert_audio", SongName: "help on the way >"},
			{Type: "concert_audio", SongName: "slipknot!"},
		},
	}

	tl, _, err := b.Build(script, analysis)
	if err != nil {
		t.Fatalf("Build failed: %v", err)
	}
	var concerts []types.Segment
	for _, seg := range tl.Segments {
		if seg.Type == types.SegmentConcertAudio {
			concerts = append(concerts, seg)
		}
	}
	if len(concerts) != 2 {
		t.Fatalf("got %d concert segments, want 2", len(concerts))
	}

	// First song: lead trim applies (3s in), trail trim suppressed so
	// playback runs to the full 20s.
	if concerts[0].AudioStartFrom != 90 {
		t.Fatalf("segue-out AudioStartFrom = %d, want 90", concerts[0].AudioStartFrom)
	}
	if concerts[0].DurationInFrames != 510 { // (20 - 3) * 30
		t.Fatalf("segue-out duration = %d, want 510", concerts[0].DurationInFrames)
	}

	// Second song: lead trim suppressed, trail trim applies.
	if concerts[1].AudioStartFrom != 0 {
		t.Fatalf("segue-in AudioStartFrom = %d, want 0", concerts[1].AudioStartFrom)
	}
	if concerts[1].DurationInFrames != 570 { // 19 * 30
		t.Fatalf("segue-in duration = %d, want 570", concerts[1].DurationInFrames)
	}
}

func TestBuildChapterCardBeforeSetBreak(t *testing.T) {
	b := newTestBuilder(t, 5.0)
	script := testScript()
	script.Segments = append(script.Segments, types.ScriptSegment{
		Type: "narration", Key: types.SetBreakNarrationKey, Text: "Set two.",
	})

	tl, _, err := b.Build(script, testAnalysis())
	if err != nil {
		t.Fatalf("Build failed: %v", err)
	}
	cardIdx := -1
	for i, seg := range tl.Segments {
		if seg.Type == types.SegmentChapterCard {
			cardIdx = i
		}
	}
	if cardIdx < 0 {
		t.Fatal("chapter card not inserted")
	}
	if next := tl.Segments[cardIdx+1]; next.Type != types.SegmentNarration || next.Text != "Set two." {
		t.Fatalf("segment after chapter card = %s %q", next.Type, next.Text)
	}
	if tl.Segments[cardIdx].DurationInFrames != types.ChapterCardFrames {
		t.Fatalf("chapter card duration = %d", tl.Segments[cardIdx].DurationInFrames)
	}
}

func TestBuildConcertBleed(t *testing.T) {
	b := newTestBuilder(t, 5.0)
	script := &types.EpisodeScript{
		Title: "Bleed",
		Segments: []types.ScriptSegment{
			{Type: "narration", Key: "intro"},
			{Type: "concert_audio", SongName: "Scarlet Begonias"},
			{Type: "narration", Key: "after"},
		},
	}

	tl, _, err := b.Build(script, testAnalysis())
	if err != nil {
		t.Fatalf("Build failed: %v", err)
	}
	var narrations []types.Segment
	for _, seg := range tl.Segments {
		if seg.Type == types.SegmentNarration {
			narrations = append(narrations, seg)
		}
	}
	if len(narrations) != 2 {
		t.Fatalf("got %d narration segments", len(narrations))
	}
	if narrations[0].BleedAudioSrc != "" {
		t.Fatalf("narration before any concert has bleed %q", narrations[0].BleedAudioSrc)
	}
	if narrations[1].BleedAudioSrc != "/audio/scarlet.mp3" {
		t.Fatalf("narration after concert bleed = %q, want concert audio", narrations[1].BleedAudioSrc)
	}
}

func TestBuildDramaticWindows(t *testing.T) {
	b := newTestBuilder(t, 10.0)
	script := testScript()
	script.Segments[0].Mood = "ominous"

	tl, _, err := b.Build(script, testAnalysis())
	if err != nil {
		t.Fatalf("Build failed: %v", err)
	}
	if len(tl.SilenceWindows) != 1 {
		t.Fatalf("got %d silence windows, want 1", len(tl.SilenceWindows))
	}
	if len(tl.PreSwellWindows) != 1 {
		t.Fatalf("got %d pre-swell windows, want 1", len(tl.PreSwellWindows))
	}
	// The ominous narration is segment 2 (after cold open and brand
	// intro); both windows anchor to its start frame.
	start := tl.SegmentStartFrame(2)
	if tl.SilenceWindows[0].StartFrame != start {
		t.Fatalf("silence window at %d, want %d", tl.SilenceWindows[0].StartFrame, start)
	}
	if tl.PreSwellWindows[0].PeakFrame != start {
		t.Fatalf("pre-swell peak at %d, want %d", tl.PreSwellWindows[0].PeakFrame, start)
	}
	if tl.SilenceWindows[0].DurationFrames != types.DramaticSilenceFrames {
		t.Fatalf("silence duration = %d", tl.SilenceWindows[0].DurationFrames)
	}
}

func TestSaveLoadRoundTrip(t *testing.T) {
	b := newTestBuilder(t, 10.0)
	tl, _, err := b.Build(testScript(), testAnalysis())
	if err != nil {
		t.Fatalf("Build failed: %v", err)
	}

	path := filepath.Join(t.TempDir(), "renders", "ep-1977-05-08", "props.json")
	if err := Save(tl, path); err != nil {
		t.Fatalf("Save failed: %v", err)
	}
	loaded, err := Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if loaded.TotalDurationInFrames != tl.TotalDurationInFrames {
		t.Fatalf("round trip total = %d, want %d", loaded.TotalDurationInFrames, tl.TotalDurationInFrames)
	}
	if len(loaded.Segments) != len(tl.Segments) {
		t.Fatalf("round trip segments = %d, want %d", len(loaded.Segments), len(tl.Segments))
	}
}
