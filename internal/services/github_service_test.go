package services

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/worklog-labs/gitjournal-backend/internal/github"
	"github.com/worklog-labs/gitjournal-backend/internal/summarizer"
)

func newGitHubServiceFixture(t *testing.T, gh *githubStub, summarizerStatus int) *GitHubService {
	t.Helper()

	ghSrv := httptest.NewServer(gh)
	t.Cleanup(ghSrv.Close)

	aiSrv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if summarizerStatus != http.StatusOK {
			w.WriteHeader(summarizerStatus)
			return
		}
		json.NewEncoder(w).Encode(map[string]interface{}{
			"content": []map[string]string{{"type": "text", "text": "files summary"}},
		})
	}))
	t.Cleanup(aiSrv.Close)

	ghClient := github.NewClient(ghSrv.URL, 5*time.Second)
	summaries := summarizer.New("test-key", aiSrv.URL, "model-x", 1000, 5*time.Second)
	return NewGitHubService(ghClient, summaries)
}

func TestPullContributorsIntersectsCommitAuthors(t *testing.T) {
	gh := &githubStub{
		contributors: []github.Contributor{
			{Login: "alice", Contributions: 50},
			{Login: "bob", Contributions: 120},
			{Login: "carol", Contributions: 10},
		},
		commits: []github.Commit{
			{SHA: "a1", Author: &github.User{Login: "bob"}},
			{SHA: "a2", Author: &github.User{Login: "alice"}},
			{SHA: "a3", Author: nil}, // web-squashed commit without an account
		},
	}
	svc := newGitHubServiceFixture(t, gh, http.StatusOK)

	resp, err := svc.PullContributors(context.Background(), "gh-token", "acme", "widgets", 42, 1, 30)
	require.NoError(t, err)

	require.Len(t, resp.Contributors, 2)
	assert.Equal(t, "bob", resp.Contributors[0].Login)
	assert.Equal(t, "alice", resp.Contributors[1].Login)
	assert.Equal(t, 42, resp.PullNumber)
	assert.Equal(t, "acme/widgets", resp.Repository)
}

func TestPullContributorsNoOverlap(t *testing.T) {
	gh := &githubStub{
		contributors: []github.Contributor{{Login: "alice", Contributions: 50}},
		commits:      []github.Commit{{SHA: "a1", Author: &github.User{Login: "mallory"}}},
	}
	svc := newGitHubServiceFixture(t, gh, http.StatusOK)

	resp, err := svc.PullContributors(context.Background(), "gh-token", "acme", "widgets", 1, 1, 30)
	require.NoError(t, err)
	assert.Empty(t, resp.Contributors)
}

func TestPullRequestDetailIncludesSummary(t *testing.T) {
	gh := &githubStub{
		prs: []github.PullRequest{{Number: 7, Title: "Fix the thing"}},
	}
	svc := newGitHubServiceFixture(t, gh, http.StatusOK)

	detail, err := svc.PullRequestDetail(context.Background(), "gh-token", "acme", "widgets", 7, false)
	require.NoError(t, err)
	assert.Equal(t, "Fix the thing", detail.Title)
	require.Len(t, detail.Files, 1)
	assert.Equal(t, "files summary", detail.Summary)
}

func TestPullRequestDetailSkipSummary(t *testing.T) {
	gh := &githubStub{
		prs: []github.PullRequest{{Number: 7, Title: "Fix the thing"}},
	}
	// Summarizer returning 500 must not matter when the summary is skipped.
	svc := newGitHubServiceFixture(t, gh, http.StatusInternalServerError)

	detail, err := svc.PullRequestDetail(context.Background(), "gh-token", "acme", "widgets", 7, true)
	require.NoError(t, err)
	assert.Empty(t, detail.Summary)
}

func TestRepositoryContributorsPagination(t *testing.T) {
	gh := &githubStub{
		contributors: []github.Contributor{{Login: "alice", Contributions: 50}},
	}
	svc := newGitHubServiceFixture(t, gh, http.StatusOK)

	resp, err := svc.RepositoryContributors(context.Background(), "gh-token", "acme", "widgets", 0, 0)
	require.NoError(t, err)
	assert.Equal(t, 1, resp.Pagination.CurrentPage)
	assert.Equal(t, 30, resp.Pagination.PerPage)
	require.Len(t, resp.Contributors, 1)
}
