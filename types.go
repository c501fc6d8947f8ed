package contentsync

import (
	"time"

	"github.com/contentsync/contentsync/platform"
	"github.com/contentsync/contentsync/repurpose"
)

// User is a dashboard account.
type User struct {
	ID           string    `json:"id"`
	Email        string    `json:"email"`
	FullName     string    `json:"full_name,omitempty"`
	PasswordHash string    `json:"-"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// PlatformStatus is the sync state of a registered platform.
type PlatformStatus string

const (
	StatusConnected PlatformStatus = "connected"
	StatusError     PlatformStatus = "error"
	StatusSyncing   PlatformStatus = "syncing"
	StatusPending   PlatformStatus = "pending"
)

// Valid reports whether s is a known platform status.
func (s PlatformStatus) Valid() bool {
	switch s {
	case StatusConnected, StatusError, StatusSyncing, StatusPending:
		return true
	}
	return false
}

// Platform is a publishing destination registered by a user.
type Platform struct {
	ID           string         `json:"id"`
	UserID       string         `json:"user_id"`
	Name         string         `json:"name"`
	URL          string         `json:"url,omitempty"`
	Type         platform.Type  `json:"platform_type"`
	Status       PlatformStatus `json:"status"`
	LastSync     *time.Time     `json:"last_sync,omitempty"`
	ContentCount int            `json:"content_count"`
	GapCount     int            `json:"gap_count"`
	PrimaryColor string         `json:"primary_color,omitempty"`
	AvatarURL    string         `json:"avatar_url,omitempty"`
	CreatedAt    time.Time      `json:"created_at"`
	UpdatedAt    time.Time      `json:"updated_at"`
}

// ReviewStatus tracks generated content through the review queue.
type ReviewStatus string

const (
	ReviewPending   ReviewStatus = "pending"
	ReviewApproved  ReviewStatus = "approved"
	ReviewRejected  ReviewStatus = "rejected"
	ReviewPublished ReviewStatus = "published"
)

// ReviewStatuses lists every review status in queue order.
var ReviewStatuses = []ReviewStatus{ReviewPending, ReviewApproved, ReviewRejected, ReviewPublished}

// Valid reports whether s is a known review status.
func (s ReviewStatus) Valid() bool {
	for _, v := range ReviewStatuses {
		if v == s {
			return true
		}
	}
	return false
}

// RepurposedContent is a model-generated adaptation awaiting review.
type RepurposedContent struct {
	ID                   string                `json:"id"`
	UserID               string                `json:"user_id"`
	OriginalContentTitle string                `json:"original_content_title"`
	OriginalPlatform     platform.Type         `json:"original_platform,omitempty"`
	TargetPlatform       platform.Type         `json:"target_platform,omitempty"`
	OriginalContent      string                `json:"original_content,omitempty"`
	RepurposedContent    string                `json:"repurposed_content"`
	ContentType          repurpose.ContentType `json:"content_type"`
	Status               ReviewStatus          `json:"status"`
	Hashtags             []string              `json:"hashtags,omitempty"`
	Notes                string                `json:"notes,omitempty"`
	CreatedAt            time.Time             `json:"created_at"`
	UpdatedAt            time.Time             `json:"updated_at"`
}

// ContentReview records a status change made in the review queue.
type ContentReview struct {
	ID            string       `json:"id"`
	UserID        string       `json:"user_id"`
	ContentID     string       `json:"content_id"`
	Status        ReviewStatus `json:"status"`
	ReviewerNotes string       `json:"reviewer_notes,omitempty"`
	ReviewedAt    time.Time    `json:"reviewed_at"`
}

// Generation is one logged call to the language model.
type Generation struct {
	ID               string    `json:"id"`
	UserID           string    `json:"user_id"`
	Prompt           string    `json:"prompt"`
	Response         string    `json:"response,omitempty"`
	ModelUsed        string    `json:"model_used"`
	TokensUsed       int       `json:"tokens_used,omitempty"`
	ProcessingTimeMs int64     `json:"processing_time_ms"`
	Success          bool      `json:"success"`
	ErrorMessage     string    `json:"error_message,omitempty"`
	CreatedAt        time.Time `json:"created_at"`
}

// DashboardStats are the aggregate counters shown on the dashboard.
type DashboardStats struct {
	TotalPlatforms     int `json:"totalPlatforms"`
	ConnectedPlatforms int `json:"connectedPlatforms"`
	TotalContent       int `json:"totalContent"`
	TotalGaps          int `json:"totalGaps"`
	PendingReviews     int `json:"pendingReviews"`
}
