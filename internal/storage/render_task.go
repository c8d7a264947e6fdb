package storage

import (
	"errors"

	"gorm.io/gorm"

	"encore-ai/internal/types"
)

func SaveTask(task *types.RenderTask) error {
	if DB == nil {
		return errors.New("database not initialized")
	}
	// Upsert keyed by TaskId; Id is the primary key, so preserve it on
	// update.
	var existing types.RenderTask
	result := DB.Where("task_id = ?", task.TaskId).First(&existing)

	if result.Error == nil {
		task.Id = existing.Id
		return DB.Save(task).Error
	} else if errors.Is(result.Error, gorm.ErrRecordNotFound) {
		return DB.Create(task).Error
	}
	return result.Error
}

// GetTask returns the task record, or nil when no record exists; callers
// distinguish not-found from a database failure.
func GetTask(taskId string) (*types.RenderTask, error) {
	if DB == nil {
		return nil, errors.New("database not initialized")
	}
	var task types.RenderTask
	err := DB.Where("task_id = ?", taskId).First(&task).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &task, nil
}

// GetLatestTaskForEpisode returns the most recent render task for an
// episode, or nil when none exists.
func GetLatestTaskForEpisode(episodeId string) (*types.RenderTask, error) {
	if DB == nil {
		return nil, errors.New("database not initialized")
	}
	var task types.RenderTask
	err := DB.Where("episode_id = ?", episodeId).Order("create_time desc").First(&task).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &task, nil
}

func GetTaskHistory(limit int) ([]types.RenderTask, error) {
	if DB == nil {
		return nil, errors.New("database not initialized")
	}
	var tasks []types.RenderTask
	if err := DB.Order("create_time desc").Limit(limit).Find(&tasks).Error; err != nil {
		return nil, err
	}
	return tasks, nil
}

func DeleteTask(taskId string) error {
	if DB == nil {
		return errors.New("database not initialized")
	}
	return DB.Where("task_id = ?", taskId).Delete(&types.RenderTask{}).Error
}

// MarkStaleTasks marks all running tasks as failed. Called on server
// startup to clean up zombie tasks left by a crash; completed stage
// outputs on disk stay intact, so a retry resumes from them.
func MarkStaleTasks() (int64, error) {
	if DB == nil {
		return 0, errors.New("database not initialized")
	}
	result := DB.Model(&types.RenderTask{}).
		Where("status = ?", types.RenderTaskStatusProcessing).
		Updates(map[string]interface{}{
			"status":      types.RenderTaskStatusFailed,
			"fail_reason": "task interrupted by server restart",
			"status_msg":  "Interrupted",
		})
	return result.RowsAffected, result.Error
}
