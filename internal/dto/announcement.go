package dto

import "time"

// AnnouncementTargetRequest scopes a COHORT announcement.
type AnnouncementTargetRequest struct {
	Major     string `json:"major" validate:"required,max=64"`
	YearLevel *int   `json:"year_level" validate:"omitempty,min=1,max=8"`
}

// CreateAnnouncementRequest is the POST /announcements payload.
type CreateAnnouncementRequest struct {
	Title       string                      `json:"title" validate:"required,max=200"`
	Content     string                      `json:"content" validate:"required"`
	Audience    string                      `json:"audience" validate:"required,audience"`
	Priority    string                      `json:"priority" validate:"omitempty,priority"`
	IsPinned    bool                        `json:"is_pinned"`
	PublishedAt *time.Time                  `json:"published_at"`
	ExpiresAt   *time.Time                  `json:"expires_at"`
	Targets     []AnnouncementTargetRequest `json:"targets" validate:"max=20,dive"`
}
