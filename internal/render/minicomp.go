package render

import (
	"encore-ai/internal/types"
)

// WindowTimeline extracts the sliding window around segment i: the target
// plus its immediate neighbors, re-zeroed into the mini-composition's own
// frame space. Automation windows overlapping the extents are carried
// over, shifted by the frame offset.
func WindowTimeline(t *types.Timeline, i int) *types.MiniComposition {
	first := i - 1
	if first < 0 {
		first = 0
	}
	last := i + 1
	if last >= len(t.Segments) {
		last = len(t.Segments) - 1
	}

	comp := &types.MiniComposition{
		EpisodeID:     t.EpisodeID,
		EpisodeTitle:  t.EpisodeTitle,
		Segments:      append([]types.Segment(nil), t.Segments[first:last+1]...),
		AmbientBedSrc: t.AmbientBedSrc,
		BGMSrc:        t.BGMSrc,
		AudioMix:      t.AudioMix,
		FrameOffset:   t.SegmentStartFrame(first),
	}
	comp.TargetStart = t.SegmentStartFrame(i) - comp.FrameOffset
	if i < len(t.Segments)-1 {
		comp.TargetEnd = t.SegmentStartFrame(i+1) - comp.FrameOffset
	} else {
		comp.TargetEnd = comp.TargetStart + t.Segments[i].DurationInFrames
	}

	compEnd := comp.FrameOffset + comp.DurationInFrames()
	for _, w := range t.SilenceWindows {
		if w.StartFrame < compEnd && w.StartFrame+w.DurationFrames > comp.FrameOffset {
			w.StartFrame -= comp.FrameOffset
			comp.SilenceWindows = append(comp.SilenceWindows, w)
		}
	}
	for _, w := range t.PreSwellWindows {
		if w.PeakFrame-w.RampFrames < compEnd && w.PeakFrame > comp.FrameOffset {
			w.PeakFrame -= comp.FrameOffset
			comp.PreSwellWindows = append(comp.PreSwellWindows, w)
		}
	}
	return comp
}
