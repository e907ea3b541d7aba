package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type User struct {
	ID       uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	GoogleID string    `gorm:"size:255;uniqueIndex;not null" json:"google_id"`
	Email    string    `gorm:"size:100;uniqueIndex;not null" json:"email"`
	Name     string    `gorm:"size:100;not null" json:"name"`
	Picture  *string   `gorm:"type:text" json:"picture,omitempty"`

	// Dev-seeded accounts only; OAuth users get a random hash.
	PasswordHash string `gorm:"size:255" json:"-"`

	// Google OAuth tokens, used for Calendar access
	AccessToken    *string    `gorm:"type:text" json:"-"`
	RefreshToken   *string    `gorm:"type:text" json:"-"`
	TokenExpiresAt *time.Time `json:"-"`

	Preferences         map[string]any `gorm:"type:jsonb;serializer:json;default:'{}'" json:"preferences"`
	CalendarSyncEnabled bool           `gorm:"default:false" json:"calendar_sync_enabled"`
	SelectedGoal        *string        `gorm:"size:50" json:"selected_goal,omitempty"`

	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt time.Time `gorm:"autoUpdateTime" json:"updated_at"`

	Profile *Profile `gorm:"constraint:OnDelete:CASCADE" json:"profile,omitempty"`
}

func (u *User) BeforeCreate(tx *gorm.DB) error {
	if u.ID == uuid.Nil {
		u.ID = uuid.New()
	}
	return nil
}
