package dto

import (
	"time"

	"github.com/Skedlyze/Skedlyze/internal/model"
	"github.com/Skedlyze/Skedlyze/internal/repository"
)

type UpdateProfileRequest struct {
	Name        *string        `json:"name" binding:"omitempty,max=100"`
	Preferences map[string]any `json:"preferences"`
}

type UpdatePreferencesRequest struct {
	Preferences map[string]any `json:"preferences" binding:"required"`
}

type StatsResponse struct {
	User                  *model.Profile              `json:"user"`
	TaskStats             *repository.TaskAggregates  `json:"taskStats"`
	CategoryStats         []repository.CategoryCount  `json:"categoryStats"`
	ExperienceToNextLevel int                         `json:"experienceToNextLevel"`
	CompletionRate        float64                     `json:"completionRate"`
}

// AchievementView merges a catalog row with the user's unlock state.
type AchievementView struct {
	model.Achievement
	IsUnlocked bool       `json:"is_unlocked"`
	EarnedAt   *time.Time `json:"earned_at,omitempty"`
	IsRead     *bool      `json:"is_read,omitempty"`
}

type StreakResponse struct {
	CurrentStreakDays int        `json:"current_streak_days"`
	LongestStreakDays int        `json:"longest_streak_days"`
	StreakStartDate   *time.Time `json:"streak_start_date,omitempty"`
	LastActivityDate  *time.Time `json:"last_activity_date,omitempty"`
}

type LeaderboardEntry struct {
	Position            int     `json:"position"`
	Name                string  `json:"name"`
	Picture             *string `json:"picture,omitempty"`
	Level               int     `json:"level"`
	ExperiencePoints    int     `json:"experience_points"`
	CurrentStreakDays   int     `json:"current_streak_days"`
	TotalTasksCompleted int     `json:"total_tasks_completed"`
}
