package dto

import (
	"time"

	"github.com/Skedlyze/Skedlyze/internal/model"
)

type CreateTaskRequest struct {
	Title            string     `json:"title" binding:"required,max=255"`
	Description      *string    `json:"description" binding:"omitempty,max=10000"`
	Priority         string     `json:"priority" binding:"omitempty,oneof=low medium high"`
	Category         string     `json:"category" binding:"omitempty,oneof=work personal health learning social other"`
	DueDate          *time.Time `json:"due_date"`
	StartTime        *time.Time `json:"start_time"`
	EndTime          *time.Time `json:"end_time"`
	AllDay           bool       `json:"all_day"`
	ExperienceReward *int       `json:"experience_reward" binding:"omitempty,min=0"`
	IsRecurring      bool       `json:"is_recurring"`
	RecurrenceRule   *string    `json:"recurrence_rule" binding:"omitempty,max=255"`
}

// UpdateTaskRequest uses pointers so absent fields are left untouched.
// Setting IsCompleted=false on a completed task triggers the uncheck flow.
type UpdateTaskRequest struct {
	Title          *string    `json:"title" binding:"omitempty,max=255"`
	Description    *string    `json:"description" binding:"omitempty,max=10000"`
	Priority       *string    `json:"priority" binding:"omitempty,oneof=low medium high"`
	Status         *string    `json:"status" binding:"omitempty,oneof=pending in_progress completed cancelled"`
	Category       *string    `json:"category" binding:"omitempty,oneof=work personal health learning social other"`
	DueDate        *time.Time `json:"due_date"`
	StartTime      *time.Time `json:"start_time"`
	EndTime        *time.Time `json:"end_time"`
	AllDay         *bool      `json:"all_day"`
	IsCompleted    *bool      `json:"is_completed"`
	IsRecurring    *bool      `json:"is_recurring"`
	RecurrenceRule *string    `json:"recurrence_rule" binding:"omitempty,max=255"`
}

type CompleteTaskResponse struct {
	Task             *model.Task `json:"task"`
	ExperienceGained int         `json:"experienceGained"`
	LevelUp          bool        `json:"levelUp"`
	NewLevel         *int        `json:"newLevel"`
}

type UncheckTaskResponse struct {
	Task           *model.Task `json:"task"`
	ExperienceLost int         `json:"experienceLost"`
	LevelDown      bool        `json:"levelDown"`
	NewLevel       *int        `json:"newLevel"`
}

type SyncStatusResponse struct {
	TotalTasks  int64 `json:"total_tasks"`
	SyncedTasks int64 `json:"synced_tasks"`
	SyncEnabled bool  `json:"sync_enabled"`
}

type TaskSearchResult struct {
	Tasks []model.Task `json:"tasks"`
	Query string       `json:"query"`
	Total int64        `json:"total"`
}
