package repository

import (
	"context"
	"time"

	"github.com/Skedlyze/Skedlyze/internal/model"
	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type AchievementRepository interface {
	Count(ctx context.Context) (int64, error)
	CreateBatch(ctx context.Context, achievements []model.Achievement) error
	FindAll(ctx context.Context) ([]model.Achievement, error)
	FindByType(ctx context.Context, achievementType string) ([]model.Achievement, error)
	FindUnlocks(ctx context.Context, userID uuid.UUID) ([]model.UserAchievement, error)
	// Unlock inserts the join row if it does not already exist and reports
	// whether this call created it. The unique index makes repeated or
	// concurrent unlocks of the same pair a no-op.
	Unlock(ctx context.Context, userID uuid.UUID, achievementID uint) (bool, error)
	MarkRead(ctx context.Context, userID uuid.UUID, achievementID uint) error
}

type achievementRepository struct {
	db *gorm.DB
}

func NewAchievementRepository(db *gorm.DB) AchievementRepository {
	return &achievementRepository{db: db}
}

func (r *achievementRepository) Count(ctx context.Context) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&model.Achievement{}).Count(&count).Error
	return count, err
}

func (r *achievementRepository) CreateBatch(ctx context.Context, achievements []model.Achievement) error {
	if len(achievements) == 0 {
		return nil
	}
	return r.db.WithContext(ctx).Create(&achievements).Error
}

func (r *achievementRepository) FindAll(ctx context.Context) ([]model.Achievement, error) {
	var achievements []model.Achievement
	err := r.db.WithContext(ctx).Order("id ASC").Find(&achievements).Error
	return achievements, err
}

func (r *achievementRepository) FindByType(ctx context.Context, achievementType string) ([]model.Achievement, error) {
	var achievements []model.Achievement
	err := r.db.WithContext(ctx).
		Where("type = ?", achievementType).
		Order("requirement_value ASC").
		Find(&achievements).Error
	return achievements, err
}

func (r *achievementRepository) FindUnlocks(ctx context.Context, userID uuid.UUID) ([]model.UserAchievement, error) {
	var unlocks []model.UserAchievement
	err := r.db.WithContext(ctx).
		Preload("Achievement").
		Where("user_id = ?", userID).
		Order("earned_at DESC").
		Find(&unlocks).Error
	return unlocks, err
}

func (r *achievementRepository) Unlock(ctx context.Context, userID uuid.UUID, achievementID uint) (bool, error) {
	unlock := model.UserAchievement{
		UserID:        userID,
		AchievementID: achievementID,
		EarnedAt:      time.Now(),
		IsRead:        false,
	}

	result := r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "user_id"}, {Name: "achievement_id"}},
			DoNothing: true,
		}).
		Create(&unlock)
	if result.Error != nil {
		return false, result.Error
	}

	return result.RowsAffected > 0, nil
}

func (r *achievementRepository) MarkRead(ctx context.Context, userID uuid.UUID, achievementID uint) error {
	return r.db.WithContext(ctx).
		Model(&model.UserAchievement{}).
		Where("user_id = ? AND achievement_id = ?", userID, achievementID).
		Update("is_read", true).Error
}
