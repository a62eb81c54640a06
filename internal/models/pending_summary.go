package models

import (
	"time"

	"github.com/google/uuid"
)

// PendingPrSummary holds a generated summary that has not yet been handed off
// to the work journal. Unique on (organization, repository, pull request
// number); deleted once the journal hand-off succeeds, kept for retry when it
// fails.
type PendingPrSummary struct {
	ID                uuid.UUID `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	Organization      string    `gorm:"size:255;not null;uniqueIndex:idx_pending_pr" json:"organization"`
	Repository        string    `gorm:"size:255;not null;uniqueIndex:idx_pending_pr" json:"repository"`
	PullRequestNumber int       `gorm:"not null;uniqueIndex:idx_pending_pr" json:"pull_request_number"`
	PullRequestTitle  string    `gorm:"type:text" json:"pull_request_title"`
	GitHubUserID      int64     `gorm:"index" json:"github_user_id"`
	GitHubLogin       string    `gorm:"size:255" json:"github_login"`
	Summary           string    `gorm:"type:text" json:"summary"`
	CreatedAt         time.Time `json:"created_at"`
	UpdatedAt         time.Time `json:"updated_at"`
}
