package types

// EpisodeScript is the persisted script JSON for one episode: an ordered
// segment list plus episode metadata. Produced by an external generation
// step; consumed read-only here.
type EpisodeScript struct {
	Title             string          `json:"title"`
	ThumbnailPrompt   string          `json:"thumbnailPrompt,omitempty"`
	LegacyStatement   string          `json:"legacyStatement,omitempty"`
	LegacyAttribution string          `json:"legacyAttribution,omitempty"`
	ShortsMoments     []ShortsMoment  `json:"shortsMoments,omitempty"`
	Segments          []ScriptSegment `json:"segments"`
}

// ScriptSegment is one entry of the script's ordered segment list.
type ScriptSegment struct {
	Type         string        `json:"type"`
	Key          string        `json:"key,omitempty"` // narration key, maps to narration/{key}.mp3
	Text         string        `json:"text,omitempty"`
	SongName     string        `json:"songName,omitempty"`
	FullSong     bool          `json:"fullSong,omitempty"`
	Mood         string        `json:"mood,omitempty"`
	Palette      string        `json:"palette,omitempty"`
	ScenePrompts []string      `json:"scenePrompts,omitempty"`
	Lines        []ContextLine `json:"lines,omitempty"`
}

// ShortsMoment names a song the script flagged as a short-form highlight.
type ShortsMoment struct {
	SongName string `json:"songName"`
	Reason   string `json:"reason,omitempty"`
}

// The narration key that gets a chapter card inserted in front of it.
const SetBreakNarrationKey = "set_break"
