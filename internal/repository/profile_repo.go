package repository

import (
	"context"
	"errors"
	"time"

	"github.com/Skedlyze/Skedlyze/internal/model"
	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type ProfileRepository interface {
	GetOrCreate(ctx context.Context, userID uuid.UUID) (*model.Profile, error)
	// Mutate runs fn against the user's profile inside a transaction, holding a
	// row lock where the dialect supports it, and persists the result. The
	// profile is lazily created first if absent.
	Mutate(ctx context.Context, userID uuid.UUID, fn func(p *model.Profile) error) (*model.Profile, error)
	ResetCounter(ctx context.Context, column string) error
	TopByExperience(ctx context.Context, limit int) ([]model.Profile, error)
}

type profileRepository struct {
	db *gorm.DB
}

func NewProfileRepository(db *gorm.DB) ProfileRepository {
	return &profileRepository{db: db}
}

func newProfile(userID uuid.UUID) *model.Profile {
	today := time.Now()
	return &model.Profile{
		UserID:         userID,
		FirstLoginDate: &today,
		CategoryStats:  map[string]*model.CategoryStat{},
	}
}

func (r *profileRepository) GetOrCreate(ctx context.Context, userID uuid.UUID) (*model.Profile, error) {
	var profile model.Profile
	err := r.db.WithContext(ctx).Where("user_id = ?", userID).First(&profile).Error
	if err == nil {
		return &profile, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	fresh := newProfile(userID)
	// Concurrent first reads may race on the insert; the conflict clause makes
	// the lazy init idempotent.
	if err := r.db.WithContext(ctx).
		Clauses(clause.OnConflict{DoNothing: true}).
		Create(fresh).Error; err != nil {
		return nil, err
	}

	if err := r.db.WithContext(ctx).Where("user_id = ?", userID).First(&profile).Error; err != nil {
		return nil, err
	}
	return &profile, nil
}

func (r *profileRepository) Mutate(ctx context.Context, userID uuid.UUID, fn func(p *model.Profile) error) (*model.Profile, error) {
	var result *model.Profile

	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		query := tx.Where("user_id = ?", userID)
		// SQLite (used in tests) has no FOR UPDATE; its single-writer model
		// covers us there.
		if tx.Dialector.Name() == "postgres" {
			query = query.Clauses(clause.Locking{Strength: "UPDATE"})
		}

		var profile model.Profile
		err := query.First(&profile).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			fresh := newProfile(userID)
			if err := tx.Clauses(clause.OnConflict{DoNothing: true}).Create(fresh).Error; err != nil {
				return err
			}
			if err := tx.Where("user_id = ?", userID).First(&profile).Error; err != nil {
				return err
			}
		} else if err != nil {
			return err
		}

		if profile.CategoryStats == nil {
			profile.CategoryStats = map[string]*model.CategoryStat{}
		}

		if err := fn(&profile); err != nil {
			return err
		}

		if err := tx.Save(&profile).Error; err != nil {
			return err
		}

		result = &profile
		return nil
	})
	if err != nil {
		return nil, err
	}

	return result, nil
}

func (r *profileRepository) ResetCounter(ctx context.Context, column string) error {
	return r.db.WithContext(ctx).
		Model(&model.Profile{}).
		Where(column+" <> 0").
		Update(column, 0).Error
}

func (r *profileRepository) TopByExperience(ctx context.Context, limit int) ([]model.Profile, error) {
	var profiles []model.Profile
	err := r.db.WithContext(ctx).
		Preload("User").
		Order("experience_points DESC").
		Limit(limit).
		Find(&profiles).Error
	return profiles, err
}
