package dto

// StartRenderTaskReq starts (or retries) an episode render.
type StartRenderTaskReq struct {
	EpisodeId   string `json:"episode_id" binding:"required"`
	ReuseTaskId string `json:"reuse_task_id,omitempty"`
	// Force re-renders every unit even when the previous outputs are up
	// to date.
	Force bool `json:"force,omitempty"`
}

type StartRenderTaskResData struct {
	TaskId string `json:"task_id"`
}

// GetRenderTaskReq queries one task's progress.
type GetRenderTaskReq struct {
	TaskId string `json:"taskId" form:"taskId" binding:"required"`
}

type GetRenderTaskResData struct {
	TaskId     string   `json:"task_id"`
	EpisodeId  string   `json:"episode_id"`
	Status     int      `json:"status"`
	Stage      string   `json:"stage"`
	ProcessPct uint8    `json:"process_percent"`
	StatusMsg  string   `json:"status_msg,omitempty"`
	FailReason string   `json:"fail_reason,omitempty"`
	Warnings   []string `json:"warnings,omitempty"`
	OutputPath string   `json:"output_path,omitempty"`
}

// SuggestExcerptsReq asks for social-clip start points per song of an
// analyzed show.
type SuggestExcerptsReq struct {
	EpisodeId     string  `json:"episodeId" form:"episodeId" binding:"required"`
	ExcerptLenSec float64 `json:"excerptLenSec" form:"excerptLenSec"`
}

type ExcerptSuggestion struct {
	SongName string  `json:"song_name"`
	StartSec float64 `json:"start_sec"`
}

type SuggestExcerptsResData struct {
	Suggestions []ExcerptSuggestion `json:"suggestions"`
}
