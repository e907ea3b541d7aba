package repository

import (
	"context"

	"github.com/Skedlyze/Skedlyze/internal/model"
	"gorm.io/gorm"
)

type DefaultTaskRepository interface {
	Count(ctx context.Context) (int64, error)
	CreateBatch(ctx context.Context, tasks []model.DefaultTask) error
	FindActiveByGoal(ctx context.Context, goal string) ([]model.DefaultTask, error)
}

type defaultTaskRepository struct {
	db *gorm.DB
}

func NewDefaultTaskRepository(db *gorm.DB) DefaultTaskRepository {
	return &defaultTaskRepository{db: db}
}

func (r *defaultTaskRepository) Count(ctx context.Context) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&model.DefaultTask{}).Count(&count).Error
	return count, err
}

func (r *defaultTaskRepository) CreateBatch(ctx context.Context, tasks []model.DefaultTask) error {
	if len(tasks) == 0 {
		return nil
	}
	return r.db.WithContext(ctx).Create(&tasks).Error
}

func (r *defaultTaskRepository) FindActiveByGoal(ctx context.Context, goal string) ([]model.DefaultTask, error) {
	var tasks []model.DefaultTask
	err := r.db.WithContext(ctx).
		Where("goal = ? AND is_active = ?", goal, true).
		Order("sort_order ASC").
		Find(&tasks).Error
	return tasks, err
}
