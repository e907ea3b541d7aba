package dto

import "time"

type CalendarEventRequest struct {
	Summary     string    `json:"summary" binding:"required,max=255"`
	Description string    `json:"description" binding:"omitempty,max=10000"`
	Location    string    `json:"location" binding:"omitempty,max=255"`
	Start       time.Time `json:"start" binding:"required"`
	End         time.Time `json:"end" binding:"required"`
}

type CalendarEventQuery struct {
	TimeMin    *time.Time `form:"timeMin"`
	TimeMax    *time.Time `form:"timeMax"`
	MaxResults int64      `form:"maxResults"`
}

type CalendarInfo struct {
	ID      string `json:"id"`
	Summary string `json:"summary"`
	Primary bool   `json:"primary"`
}

type CalendarEvent struct {
	ID          string     `json:"id"`
	Summary     string     `json:"summary"`
	Description string     `json:"description,omitempty"`
	Location    string     `json:"location,omitempty"`
	Start       *time.Time `json:"start,omitempty"`
	End         *time.Time `json:"end,omitempty"`
	HTMLLink    string     `json:"html_link,omitempty"`
}

type BulkSyncResponse struct {
	Synced int `json:"synced"`
	Failed int `json:"failed"`
}
