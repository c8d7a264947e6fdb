package types

// Render task lifecycle status values persisted with the task record.
const (
	RenderTaskStatusPending    = 0
	RenderTaskStatusProcessing = 1
	RenderTaskStatusSuccess    = 2
	RenderTaskStatusFailed     = 3
)

// Pipeline stage names, persisted so a later invocation can resume after
// the last completed stage.
const (
	RenderStageTimeline = "timeline"
	RenderStageRender   = "render"
	RenderStageStitch   = "stitch"
	RenderStagePost     = "post"
	RenderStageDone     = "done"
)

// RenderTask is the persisted episode render record.
type RenderTask struct {
	Id         int64  `json:"id" gorm:"column:id;primarykey;autoIncrement"`
	TaskId     string `json:"task_id" gorm:"column:task_id;uniqueIndex;size:64"`
	EpisodeId  string `json:"episode_id" gorm:"column:episode_id;index;size:64"`
	Title      string `json:"title" gorm:"column:title"`
	Status     int    `json:"status" gorm:"column:status"`
	Stage      string `json:"stage" gorm:"column:stage;size:32"`
	ProcessPct uint8  `json:"process_percent" gorm:"column:process_percent"`
	StatusMsg  string `json:"status_msg" gorm:"column:status_msg"`
	FailReason string `json:"fail_reason" gorm:"column:fail_reason"`
	// Warnings collects recoverable skip-level issues, one per line, so a
	// human can decide whether to accept a degraded episode.
	Warnings   string `json:"warnings" gorm:"column:warnings"`
	OutputPath string `json:"output_path" gorm:"column:output_path"`
	CreateTime int64  `json:"create_time" gorm:"column:create_time;autoCreateTime"`
	UpdateTime int64  `json:"update_time" gorm:"column:update_time;autoUpdateTime"`
}

func (RenderTask) TableName() string {
	return "render_tasks"
}
