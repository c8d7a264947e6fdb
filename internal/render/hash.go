// Package render plans and executes change-aware chunked renders of a
// timeline, one unit per segment, and stitches the unit outputs into the
// final episode video.
package render

import (
	"crypto/sha256"
	"encoding/json"
	"fmt"

	"encore-ai/internal/types"
)

// hashInput is everything that can change a segment's rendered pixels or
// audio. Crossfades pull the neighbors into frame, and automation windows
// and composition-level beds alter the mix, so they all participate.
// Struct fields marshal in declaration order, which keeps the digest
// deterministic.
type hashInput struct {
	Prev            *types.Segment         `json:"prev,omitempty"`
	Target          types.Segment          `json:"target"`
	Next            *types.Segment         `json:"next,omitempty"`
	SilenceWindows  []types.SilenceWindow  `json:"silenceWindows,omitempty"`
	PreSwellWindows []types.PreSwellWindow `json:"preSwellWindows,omitempty"`
	AmbientBedSrc   string                 `json:"ambientBedSrc,omitempty"`
	BGMSrc          string                 `json:"bgmSrc,omitempty"`
	AudioMix        *types.AudioMix        `json:"audioMix,omitempty"`
}

// SegmentHash digests segment i together with its render context. Two
// timelines producing equal hashes for a segment render identical output
// for it.
func SegmentHash(t *types.Timeline, i int) (string, error) {
	in := hashInput{
		Target:        t.Segments[i],
		AmbientBedSrc: t.AmbientBedSrc,
		BGMSrc:        t.BGMSrc,
		AudioMix:      t.AudioMix,
	}
	if i > 0 {
		in.Prev = &t.Segments[i-1]
	}
	if i+1 < len(t.Segments) {
		in.Next = &t.Segments[i+1]
	}

	start := t.SegmentStartFrame(i)
	end := start + t.Segments[i].DurationInFrames
	for _, w := range t.SilenceWindows {
		if w.StartFrame < end && w.StartFrame+w.DurationFrames > start {
			in.SilenceWindows = append(in.SilenceWindows, w)
		}
	}
	for _, w := range t.PreSwellWindows {
		if w.PeakFrame-w.RampFrames < end && w.PeakFrame > start {
			in.PreSwellWindows = append(in.PreSwellWindows, w)
		}
	}

	data, err := json.Marshal(in)
	if err != nil {
		return "", err
	}
	sum := sha256.Sum256(data)
	return fmt.Sprintf("%x", sum), nil
}
