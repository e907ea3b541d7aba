package model

import (
	"time"

	"github.com/google/uuid"
)

// CategoryStat tracks created/completed counts for one task category.
type CategoryStat struct {
	TotalCreated   int     `json:"total_created"`
	TotalCompleted int     `json:"total_completed"`
	CompletionRate float64 `json:"completion_rate"`
}

// Profile is the per-user gamification record, created lazily on first access.
// Unlocked achievements live only in the user_achievements join table; the
// counter here is bookkeeping, not a second source of truth.
type Profile struct {
	UserID uuid.UUID `gorm:"type:uuid;primaryKey" json:"user_id"`
	User   User      `gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE" json:"-"`

	Level                 int `gorm:"default:0;not null" json:"level"`
	ExperiencePoints      int `gorm:"default:0;not null" json:"experience_points"`
	TotalExperienceEarned int `gorm:"default:0;not null" json:"total_experience_earned"`

	CurrentStreakDays int        `gorm:"default:0;not null" json:"current_streak_days"`
	LongestStreakDays int        `gorm:"default:0;not null" json:"longest_streak_days"`
	LastActivityDate  *time.Time `gorm:"type:date" json:"last_activity_date,omitempty"`
	StreakStartDate   *time.Time `gorm:"type:date" json:"streak_start_date,omitempty"`
	FirstLoginDate    *time.Time `gorm:"type:date" json:"first_login_date,omitempty"`

	TotalTasksCreated       int `gorm:"default:0;not null" json:"total_tasks_created"`
	TotalTasksCompleted     int `gorm:"default:0;not null" json:"total_tasks_completed"`
	TasksCompletedToday     int `gorm:"default:0;not null" json:"tasks_completed_today"`
	TasksCompletedThisWeek  int `gorm:"default:0;not null" json:"tasks_completed_this_week"`
	TasksCompletedThisMonth int `gorm:"default:0;not null" json:"tasks_completed_this_month"`

	TotalAchievementsEarned int     `gorm:"default:0;not null" json:"total_achievements_earned"`
	CompletionRate          float64 `gorm:"type:decimal(5,2);default:0;not null" json:"completion_rate"`

	CategoryStats map[string]*CategoryStat `gorm:"type:jsonb;serializer:json;default:'{}'" json:"category_stats"`

	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}

func (Profile) TableName() string {
	return "user_gamification_data"
}
