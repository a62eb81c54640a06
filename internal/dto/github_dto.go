package dto

import "github.com/worklog-labs/gitjournal-backend/internal/github"

// SyncRequest carries the encrypted journal credentials for a repository
// sync or a pending-summary flush.
type SyncRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type SyncResponse struct {
	Processed int `json:"processed"`
	Skipped   int `json:"skipped"`
	Journaled int `json:"journaled"`
}

type PullRequestDetailResponse struct {
	github.PullRequest
	Files   []github.PullRequestFile `json:"files"`
	Summary string                   `json:"pr_summary,omitempty"`
}

type Pagination struct {
	CurrentPage       int `json:"current_page"`
	PerPage           int `json:"per_page"`
	TotalContributors int `json:"total_contributors,omitempty"`
}

type ContributorsResponse struct {
	Repository   string               `json:"repository"`
	Contributors []github.Contributor `json:"contributors"`
	Pagination   Pagination           `json:"pagination"`
}

type PullContributorsResponse struct {
	PullNumber   int                  `json:"pull_number"`
	Repository   string               `json:"repository"`
	Contributors []github.Contributor `json:"contributors"`
	Pagination   Pagination           `json:"pagination"`
}

type SummariesStatusResponse struct {
	Summaries int64 `json:"summaries"`
	Found     bool  `json:"found"`
}
