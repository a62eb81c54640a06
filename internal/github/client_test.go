package github

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/worklog-labs/gitjournal-backend/internal/apperr"
)

func TestGetRequiresToken(t *testing.T) {
	client := NewClient("http://unused.invalid", time.Second)
	_, err := client.CurrentUser(context.Background(), "")
	assert.Equal(t, apperr.KindUnauthorized, apperr.KindOf(err))
}

func TestCurrentUserSendsHeaders(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/user", r.URL.Path)
		assert.Equal(t, "token gh-token", r.Header.Get("Authorization"))
		assert.Equal(t, "application/vnd.github.v3+json", r.Header.Get("Accept"))
		json.NewEncoder(w).Encode(User{ID: 7, Login: "octocat"})
	}))
	defer srv.Close()

	client := NewClient(srv.URL, 5*time.Second)
	user, err := client.CurrentUser(context.Background(), "gh-token")
	require.NoError(t, err)
	assert.Equal(t, int64(7), user.ID)
	assert.Equal(t, "octocat", user.Login)
}

func TestPullRequestsPassesOptions(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/repos/acme/widgets/pulls", r.URL.Path)
		q := r.URL.Query()
		assert.Equal(t, "all", q.Get("state"))
		assert.Equal(t, "created", q.Get("sort"))
		assert.Equal(t, "desc", q.Get("direction"))
		assert.Equal(t, "2", q.Get("page"))
		assert.Equal(t, "30", q.Get("per_page"))
		json.NewEncoder(w).Encode([]PullRequest{{Number: 42, Title: "Add thing"}})
	}))
	defer srv.Close()

	client := NewClient(srv.URL, 5*time.Second)
	prs, err := client.PullRequests(context.Background(), "gh-token", "acme", "widgets", PullOptions{
		State:     "all",
		Sort:      "created",
		Direction: "desc",
		Page:      2,
		PerPage:   30,
	})
	require.NoError(t, err)
	require.Len(t, prs, 1)
	assert.Equal(t, 42, prs[0].Number)
}

func TestPullRequestsDefaults(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		assert.Equal(t, "all", q.Get("state"))
		assert.Equal(t, "updated", q.Get("sort"))
		assert.Equal(t, "1", q.Get("page"))
		assert.Equal(t, "30", q.Get("per_page"))
		json.NewEncoder(w).Encode([]PullRequest{})
	}))
	defer srv.Close()

	client := NewClient(srv.URL, 5*time.Second)
	_, err := client.PullRequests(context.Background(), "gh-token", "acme", "widgets", PullOptions{})
	require.NoError(t, err)
}

func TestClientErrorIsNotRetried(t *testing.T) {
	var calls int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		w.WriteHeader(http.StatusNotFound)
		json.NewEncoder(w).Encode(map[string]string{"message": "Not Found"})
	}))
	defer srv.Close()

	client := NewClient(srv.URL, 5*time.Second)
	_, err := client.PullRequest(context.Background(), "gh-token", "acme", "widgets", 1)
	require.Error(t, err)

	assert.Equal(t, int32(1), atomic.LoadInt32(&calls))
	assert.Equal(t, apperr.KindUpstream, apperr.KindOf(err))
	assert.Equal(t, http.StatusNotFound, apperr.HTTPStatus(err))
	assert.Equal(t, "Not Found", apperr.Message(err))
}

func TestServerErrorIsRetriedThenRecovered(t *testing.T) {
	var calls int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if atomic.AddInt32(&calls, 1) == 1 {
			w.WriteHeader(http.StatusBadGateway)
			return
		}
		json.NewEncoder(w).Encode(User{ID: 1, Login: "octocat"})
	}))
	defer srv.Close()

	client := NewClient(srv.URL, 5*time.Second)
	user, err := client.CurrentUser(context.Background(), "gh-token")
	require.NoError(t, err)
	assert.Equal(t, "octocat", user.Login)
	assert.Equal(t, int32(2), atomic.LoadInt32(&calls))
}

func TestServerErrorExhaustsRetries(t *testing.T) {
	var calls int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	client := NewClient(srv.URL, 5*time.Second)
	_, err := client.CurrentUser(context.Background(), "gh-token")
	require.Error(t, err)
	assert.Equal(t, apperr.KindUpstream, apperr.KindOf(err))
	assert.Equal(t, int32(maxRetries+1), atomic.LoadInt32(&calls))
}

func TestTransportFailure(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	srv.Close()

	client := NewClient(srv.URL, time.Second)
	_, err := client.CurrentUser(context.Background(), "gh-token")
	assert.Equal(t, apperr.KindUnavailable, apperr.KindOf(err))
}

func TestContributorsTotalFromLinkHeader(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Link", fmt.Sprintf(
			`<%s/repos/acme/widgets/contributors?page=2&per_page=30>; rel="next", <%s/repos/acme/widgets/contributors?page=9&per_page=30>; rel="last"`,
			"https://api.github.com", "https://api.github.com"))
		json.NewEncoder(w).Encode([]Contributor{{Login: "octocat", Contributions: 120}})
	}))
	defer srv.Close()

	client := NewClient(srv.URL, 5*time.Second)
	contributors, total, err := client.Contributors(context.Background(), "gh-token", "acme", "widgets", 1, 30)
	require.NoError(t, err)
	require.Len(t, contributors, 1)
	assert.Equal(t, 9*30, total)
}

func TestContributorsTotalUnknownWithoutLinkHeader(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode([]Contributor{{Login: "octocat"}})
	}))
	defer srv.Close()

	client := NewClient(srv.URL, 5*time.Second)
	_, total, err := client.Contributors(context.Background(), "gh-token", "acme", "widgets", 1, 30)
	require.NoError(t, err)
	assert.Zero(t, total)
}

func TestUserEmails(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/user/emails", r.URL.Path)
		json.NewEncoder(w).Encode([]Email{
			{Email: "dev@example.com", Verified: true, Primary: true},
			{Email: "alt@example.com", Verified: false},
		})
	}))
	defer srv.Close()

	client := NewClient(srv.URL, 5*time.Second)
	emails, err := client.UserEmails(context.Background(), "gh-token")
	require.NoError(t, err)
	require.Len(t, emails, 2)
	assert.True(t, emails[0].Verified)
}
