package service

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/glebarez/sqlite"
	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/Skedlyze/Skedlyze/internal/model"
	"github.com/Skedlyze/Skedlyze/internal/repository"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	path := filepath.Join(t.TempDir(), "test.db")
	db, err := gorm.Open(sqlite.Open(path), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("open db: %v", err)
	}

	if err := db.AutoMigrate(
		&model.User{},
		&model.Profile{},
		&model.Task{},
		&model.Achievement{},
		&model.UserAchievement{},
		&model.DefaultTask{},
	); err != nil {
		t.Fatalf("migrate: %v", err)
	}

	return db
}

func createTestUser(t *testing.T, db *gorm.DB) *model.User {
	t.Helper()

	user := &model.User{
		GoogleID:    "google-" + uuid.NewString(),
		Email:       uuid.NewString() + "@example.com",
		Name:        "Test User",
		Preferences: map[string]any{},
	}
	if err := db.Create(user).Error; err != nil {
		t.Fatalf("create user: %v", err)
	}
	return user
}

// setLastActivity rewrites the streak bookkeeping directly, used to simulate
// completions on earlier days.
func setLastActivity(t *testing.T, profiles repository.ProfileRepository, userID uuid.UUID, day time.Time) {
	t.Helper()

	_, err := profiles.Mutate(context.Background(), userID, func(p *model.Profile) error {
		d := time.Date(day.Year(), day.Month(), day.Day(), 0, 0, 0, 0, time.UTC)
		p.LastActivityDate = &d
		return nil
	})
	if err != nil {
		t.Fatalf("set last activity: %v", err)
	}
}

func seedTestAchievements(t *testing.T, db *gorm.DB) {
	t.Helper()

	catalog := []model.Achievement{
		{Name: "First Steps", Description: "Complete your first task", Type: model.AchievementTaskCompletion, RequirementValue: 1, ExperienceReward: 25},
		{Name: "Task Master", Description: "Complete 10 tasks", Type: model.AchievementTaskCompletion, RequirementValue: 10, ExperienceReward: 50},
		{Name: "Getting Started", Description: "Maintain a 3-day streak", Type: model.AchievementStreak, RequirementValue: 3, ExperienceReward: 30},
		{Name: "Level 5", Description: "Reach level 5", Type: model.AchievementLevelUp, RequirementValue: 5, ExperienceReward: 50},
	}
	if err := db.Create(&catalog).Error; err != nil {
		t.Fatalf("seed achievements: %v", err)
	}
}
