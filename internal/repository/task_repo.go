package repository

import (
	"context"
	"time"

	"github.com/Skedlyze/Skedlyze/internal/model"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

type TaskRepository interface {
	Create(ctx context.Context, task *model.Task) error
	CreateBatch(ctx context.Context, tasks []*model.Task) error
	FindByID(ctx context.Context, userID, taskID uuid.UUID) (*model.Task, error)
	FindByIDs(ctx context.Context, userID uuid.UUID, taskIDs []uuid.UUID) ([]model.Task, error)
	FindAllByUser(ctx context.Context, userID uuid.UUID) ([]model.Task, error)
	FindByCategory(ctx context.Context, userID uuid.UUID, category string) ([]model.Task, error)
	FindByStatus(ctx context.Context, userID uuid.UUID, status string) ([]model.Task, error)
	FindDueBetween(ctx context.Context, userID uuid.UUID, from, to time.Time) ([]model.Task, error)
	FindUnsynced(ctx context.Context, userID uuid.UUID) ([]model.Task, error)
	CountByUser(ctx context.Context, userID uuid.UUID) (int64, error)
	CountSynced(ctx context.Context, userID uuid.UUID) (int64, error)
	Update(ctx context.Context, task *model.Task) error
	UpdateFields(ctx context.Context, taskID uuid.UUID, fields map[string]interface{}) error
	Delete(ctx context.Context, userID, taskID uuid.UUID) error
	AggregateStats(ctx context.Context, userID uuid.UUID) (*TaskAggregates, error)
	CountByCategories(ctx context.Context, userID uuid.UUID) ([]CategoryCount, error)
}

// TaskAggregates holds the SQL-side rollups for the stats endpoint.
type TaskAggregates struct {
	TotalTasks        int64    `json:"total_tasks"`
	CompletedTasks    int64    `json:"completed_tasks"`
	PendingTasks      int64    `json:"pending_tasks"`
	AvgCompletionTime *float64 `json:"avg_completion_time"`
}

type CategoryCount struct {
	Category string `json:"category"`
	Count    int64  `json:"count"`
}

type taskRepository struct {
	db *gorm.DB
}

func NewTaskRepository(db *gorm.DB) TaskRepository {
	return &taskRepository{db: db}
}

func (r *taskRepository) Create(ctx context.Context, task *model.Task) error {
	return r.db.WithContext(ctx).Create(task).Error
}

func (r *taskRepository) CreateBatch(ctx context.Context, tasks []*model.Task) error {
	if len(tasks) == 0 {
		return nil
	}
	return r.db.WithContext(ctx).Create(&tasks).Error
}

func (r *taskRepository) FindByID(ctx context.Context, userID, taskID uuid.UUID) (*model.Task, error) {
	var task model.Task
	if err := r.db.WithContext(ctx).
		Where("id = ? AND user_id = ?", taskID, userID).
		First(&task).Error; err != nil {
		return nil, err
	}

	return &task, nil
}

func (r *taskRepository) FindByIDs(ctx context.Context, userID uuid.UUID, taskIDs []uuid.UUID) ([]model.Task, error) {
	if len(taskIDs) == 0 {
		return []model.Task{}, nil
	}

	var tasks []model.Task
	if err := r.db.WithContext(ctx).
		Where("user_id = ? AND id IN ?", userID, taskIDs).
		Find(&tasks).Error; err != nil {
		return nil, err
	}

	return tasks, nil
}

func (r *taskRepository) FindAllByUser(ctx context.Context, userID uuid.UUID) ([]model.Task, error) {
	var tasks []model.Task
	if err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("created_at DESC").
		Find(&tasks).Error; err != nil {
		return nil, err
	}

	return tasks, nil
}

func (r *taskRepository) FindByCategory(ctx context.Context, userID uuid.UUID, category string) ([]model.Task, error) {
	var tasks []model.Task
	if err := r.db.WithContext(ctx).
		Where("user_id = ? AND category = ?", userID, category).
		Order("created_at DESC").
		Find(&tasks).Error; err != nil {
		return nil, err
	}

	return tasks, nil
}

func (r *taskRepository) FindByStatus(ctx context.Context, userID uuid.UUID, status string) ([]model.Task, error) {
	var tasks []model.Task
	if err := r.db.WithContext(ctx).
		Where("user_id = ? AND status = ?", userID, status).
		Order("created_at DESC").
		Find(&tasks).Error; err != nil {
		return nil, err
	}

	return tasks, nil
}

func (r *taskRepository) FindDueBetween(ctx context.Context, userID uuid.UUID, from, to time.Time) ([]model.Task, error) {
	var tasks []model.Task
	if err := r.db.WithContext(ctx).
		Where("user_id = ? AND due_date >= ? AND due_date < ?", userID, from, to).
		Order("due_date ASC").
		Find(&tasks).Error; err != nil {
		return nil, err
	}

	return tasks, nil
}

func (r *taskRepository) FindUnsynced(ctx context.Context, userID uuid.UUID) ([]model.Task, error) {
	var tasks []model.Task
	if err := r.db.WithContext(ctx).
		Where("user_id = ? AND synced_to_calendar = ? AND due_date IS NOT NULL", userID, false).
		Order("due_date ASC").
		Find(&tasks).Error; err != nil {
		return nil, err
	}

	return tasks, nil
}

func (r *taskRepository) CountByUser(ctx context.Context, userID uuid.UUID) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&model.Task{}).
		Where("user_id = ?", userID).
		Count(&count).Error
	return count, err
}

func (r *taskRepository) CountSynced(ctx context.Context, userID uuid.UUID) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&model.Task{}).
		Where("user_id = ? AND synced_to_calendar = ?", userID, true).
		Count(&count).Error
	return count, err
}

func (r *taskRepository) Update(ctx context.Context, task *model.Task) error {
	return r.db.WithContext(ctx).Save(task).Error
}

func (r *taskRepository) UpdateFields(ctx context.Context, taskID uuid.UUID, fields map[string]interface{}) error {
	return r.db.WithContext(ctx).
		Model(&model.Task{}).
		Where("id = ?", taskID).
		Updates(fields).Error
}

func (r *taskRepository) Delete(ctx context.Context, userID, taskID uuid.UUID) error {
	return r.db.WithContext(ctx).
		Where("id = ? AND user_id = ?", taskID, userID).
		Delete(&model.Task{}).Error
}

func (r *taskRepository) AggregateStats(ctx context.Context, userID uuid.UUID) (*TaskAggregates, error) {
	var agg TaskAggregates
	err := r.db.WithContext(ctx).
		Model(&model.Task{}).
		Select(
			"COUNT(*) as total_tasks, "+
				"COUNT(CASE WHEN is_completed THEN 1 END) as completed_tasks, "+
				"COUNT(CASE WHEN NOT is_completed THEN 1 END) as pending_tasks, "+
				"AVG(completion_time_minutes) as avg_completion_time").
		Where("user_id = ?", userID).
		Scan(&agg).Error
	if err != nil {
		return nil, err
	}
	return &agg, nil
}

func (r *taskRepository) CountByCategories(ctx context.Context, userID uuid.UUID) ([]CategoryCount, error) {
	var counts []CategoryCount
	err := r.db.WithContext(ctx).
		Model(&model.Task{}).
		Select("category, COUNT(*) as count").
		Where("user_id = ?", userID).
		Group("category").
		Scan(&counts).Error
	return counts, err
}
