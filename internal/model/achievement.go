package model

import (
	"time"

	"github.com/google/uuid"
)

const (
	AchievementTaskCompletion = "task_completion"
	AchievementStreak         = "streak"
	AchievementLevelUp        = "level_up"
	AchievementSpecial        = "special"
)

// Achievement is a global catalog row; user unlocks live in UserAchievement.
type Achievement struct {
	ID               uint      `gorm:"primaryKey" json:"id"`
	Name             string    `gorm:"size:100;not null" json:"name"`
	Description      string    `gorm:"type:text;not null" json:"description"`
	Icon             *string   `gorm:"size:50" json:"icon,omitempty"`
	Type             string    `gorm:"size:20;not null;index" json:"type"`
	RequirementValue int       `gorm:"not null" json:"requirement_value"`
	ExperienceReward int       `gorm:"default:0" json:"experience_reward"`
	IsHidden         bool      `gorm:"default:false" json:"is_hidden"`
	CreatedAt        time.Time `gorm:"autoCreateTime" json:"created_at"`
}

// UserAchievement is append-only; only IsRead is ever updated. The unique
// index guarantees an achievement is earned at most once per user.
type UserAchievement struct {
	ID            uint        `gorm:"primaryKey" json:"id"`
	UserID        uuid.UUID   `gorm:"type:uuid;not null;uniqueIndex:idx_user_achievement" json:"user_id"`
	User          User        `gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE" json:"-"`
	AchievementID uint        `gorm:"not null;uniqueIndex:idx_user_achievement" json:"achievement_id"`
	Achievement   Achievement `gorm:"foreignKey:AchievementID;constraint:OnDelete:CASCADE" json:"achievement"`
	EarnedAt      time.Time   `gorm:"not null" json:"earned_at"`
	IsRead        bool        `gorm:"default:false" json:"is_read"`
}

// DefaultTask is an onboarding template used to generate a new user's starter
// tasks for their selected goal.
type DefaultTask struct {
	ID               uint      `gorm:"primaryKey" json:"id"`
	Goal             string    `gorm:"size:50;not null;index" json:"goal"`
	Title            string    `gorm:"size:255;not null" json:"title"`
	Description      *string   `gorm:"type:text" json:"description,omitempty"`
	Category         string    `gorm:"size:20;default:other;not null" json:"category"`
	Priority         string    `gorm:"size:10;default:medium;not null" json:"priority"`
	ExperienceReward int       `gorm:"default:10" json:"experience_reward"`
	IsDaily          bool      `gorm:"default:false" json:"is_daily"`
	IsWeekly         bool      `gorm:"default:false" json:"is_weekly"`
	SortOrder        int       `gorm:"default:0" json:"sort_order"`
	IsActive         bool      `gorm:"default:true" json:"is_active"`
	CreatedAt        time.Time `gorm:"autoCreateTime" json:"created_at"`
}
