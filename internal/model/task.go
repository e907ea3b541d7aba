package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

const (
	PriorityLow    = "low"
	PriorityMedium = "medium"
	PriorityHigh   = "high"

	StatusPending    = "pending"
	StatusInProgress = "in_progress"
	StatusCompleted  = "completed"
	StatusCancelled  = "cancelled"

	CategoryWork     = "work"
	CategoryPersonal = "personal"
	CategoryHealth   = "health"
	CategoryLearning = "learning"
	CategorySocial   = "social"
	CategoryOther    = "other"
)

type Task struct {
	ID     uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	UserID uuid.UUID `gorm:"type:uuid;index;not null" json:"user_id"`
	User   User      `gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE" json:"-"`

	Title       string  `gorm:"size:255;not null" json:"title"`
	Description *string `gorm:"type:text" json:"description,omitempty"`
	Priority    string  `gorm:"size:10;default:medium;not null" json:"priority"`
	Status      string  `gorm:"size:20;default:pending;not null;index" json:"status"`
	Category    string  `gorm:"size:20;default:other;not null;index" json:"category"`

	// Scheduling
	DueDate   *time.Time `json:"due_date,omitempty"`
	StartTime *time.Time `json:"start_time,omitempty"`
	EndTime   *time.Time `json:"end_time,omitempty"`
	AllDay    bool       `gorm:"default:false" json:"all_day"`

	// Gamification
	ExperienceReward      int        `gorm:"default:10" json:"experience_reward"`
	IsCompleted           bool       `gorm:"default:false;index" json:"is_completed"`
	CompletedAt           *time.Time `json:"completed_at,omitempty"`
	CompletionTimeMinutes *int       `json:"completion_time_minutes,omitempty"`

	// Google Calendar integration
	GoogleCalendarEventID *string `gorm:"size:255" json:"google_calendar_event_id,omitempty"`
	SyncedToCalendar      bool    `gorm:"default:false" json:"synced_to_calendar"`

	// Recurring tasks
	IsRecurring    bool    `gorm:"default:false" json:"is_recurring"`
	RecurrenceRule *string `gorm:"size:255" json:"recurrence_rule,omitempty"` // RRULE format

	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}

func (t *Task) BeforeCreate(tx *gorm.DB) error {
	if t.ID == uuid.Nil {
		t.ID = uuid.New()
	}
	return nil
}
