// Package github wraps the GitHub REST API with typed operations. Every
// network failure is normalized exactly once here: upstream error responses
// become apperr.Upstream with the status and message GitHub returned, and
// transport-level failures become ServiceUnavailable.
package github

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"regexp"
	"strconv"
	"time"

	"github.com/sethvargo/go-retry"

	"github.com/worklog-labs/gitjournal-backend/internal/apperr"
)

const maxRetries = 2

var lastPageRe = regexp.MustCompile(`[?&]page=(\d+)[^>]*>;\s*rel="last"`)

type Client struct {
	baseURL string
	http    *http.Client
}

func NewClient(baseURL string, timeout time.Duration) *Client {
	if timeout == 0 {
		timeout = 30 * time.Second
	}
	return &Client{
		baseURL: baseURL,
		http:    &http.Client{Timeout: timeout},
	}
}

func (c *Client) CurrentUser(ctx context.Context, token string) (*User, error) {
	var user User
	if _, err := c.get(ctx, token, "/user", nil, &user); err != nil {
		return nil, err
	}
	return &user, nil
}

func (c *Client) UserEmails(ctx context.Context, token string) ([]Email, error) {
	var emails []Email
	if _, err := c.get(ctx, token, "/user/emails", nil, &emails); err != nil {
		return nil, err
	}
	return emails, nil
}

func (c *Client) Repositories(ctx context.Context, token string, page, perPage int) ([]Repository, error) {
	if page < 1 {
		page = 1
	}
	if perPage < 1 {
		perPage = 30
	}
	query := url.Values{
		"page":      {strconv.Itoa(page)},
		"per_page":  {strconv.Itoa(perPage)},
		"sort":      {"updated"},
		"direction": {"desc"},
	}
	var repos []Repository
	if _, err := c.get(ctx, token, "/user/repos", query, &repos); err != nil {
		return nil, err
	}
	return repos, nil
}

func (c *Client) PullRequests(ctx context.Context, token, owner, repo string, opts PullOptions) ([]PullRequest, error) {
	opts = opts.withDefaults()
	query := url.Values{
		"state":     {opts.State},
		"page":      {strconv.Itoa(opts.Page)},
		"per_page":  {strconv.Itoa(opts.PerPage)},
		"sort":      {opts.Sort},
		"direction": {opts.Direction},
	}
	var prs []PullRequest
	path := fmt.Sprintf("/repos/%s/%s/pulls", owner, repo)
	if _, err := c.get(ctx, token, path, query, &prs); err != nil {
		return nil, err
	}
	return prs, nil
}

func (c *Client) PullRequest(ctx context.Context, token, owner, repo string, number int) (*PullRequest, error) {
	var pr PullRequest
	path := fmt.Sprintf("/repos/%s/%s/pulls/%d", owner, repo, number)
	if _, err := c.get(ctx, token, path, nil, &pr); err != nil {
		return nil, err
	}
	return &pr, nil
}

func (c *Client) PullRequestFiles(ctx context.Context, token, owner, repo string, number int) ([]PullRequestFile, error) {
	var files []PullRequestFile
	path := fmt.Sprintf("/repos/%s/%s/pulls/%d/files", owner, repo, number)
	if _, err := c.get(ctx, token, path, nil, &files); err != nil {
		return nil, err
	}
	return files, nil
}

func (c *Client) PullRequestCommits(ctx context.Context, token, owner, repo string, number int) ([]Commit, error) {
	var commits []Commit
	path := fmt.Sprintf("/repos/%s/%s/pulls/%d/commits", owner, repo, number)
	if _, err := c.get(ctx, token, path, nil, &commits); err != nil {
		return nil, err
	}
	return commits, nil
}

// Contributors lists repository contributors and derives an approximate total
// from the pagination Link header when GitHub provides one. A zero total
// means unknown, not zero contributors.
func (c *Client) Contributors(ctx context.Context, token, owner, repo string, page, perPage int) ([]Contributor, int, error) {
	if page < 1 {
		page = 1
	}
	if perPage < 1 {
		perPage = 30
	}
	query := url.Values{
		"page":     {strconv.Itoa(page)},
		"per_page": {strconv.Itoa(perPage)},
		"anon":     {"false"},
	}
	var contributors []Contributor
	path := fmt.Sprintf("/repos/%s/%s/contributors", owner, repo)
	header, err := c.get(ctx, token, path, query, &contributors)
	if err != nil {
		return nil, 0, err
	}

	total := 0
	if m := lastPageRe.FindStringSubmatch(header.Get("Link")); m != nil {
		if lastPage, err := strconv.Atoi(m[1]); err == nil {
			total = lastPage * perPage
		}
	}
	return contributors, total, nil
}

// get performs one authenticated GET with bounded retries. Transport errors
// and 5xx responses are retried; 4xx responses are returned immediately with
// the upstream status and message.
func (c *Client) get(ctx context.Context, token, path string, query url.Values, out interface{}) (http.Header, error) {
	if token == "" {
		return nil, apperr.New(apperr.KindUnauthorized, "GitHub token is required")
	}

	reqURL := c.baseURL + path
	if len(query) > 0 {
		reqURL += "?" + query.Encode()
	}

	var header http.Header
	backoff := retry.WithMaxRetries(maxRetries, retry.NewExponential(200*time.Millisecond))
	err := retry.Do(ctx, backoff, func(ctx context.Context) error {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
		if err != nil {
			return err
		}
		req.Header.Set("Authorization", "token "+token)
		req.Header.Set("Accept", "application/vnd.github.v3+json")

		resp, err := c.http.Do(req)
		if err != nil {
			return retry.RetryableError(apperr.Wrap(apperr.KindUnavailable, "Failed to reach GitHub", err))
		}
		defer resp.Body.Close()

		body, err := io.ReadAll(resp.Body)
		if err != nil {
			return apperr.Wrap(apperr.KindUnavailable, "Failed to read GitHub response", err)
		}

		if resp.StatusCode >= 400 {
			upstream := apperr.Upstream(resp.StatusCode, upstreamMessage(body))
			if resp.StatusCode >= 500 {
				return retry.RetryableError(upstream)
			}
			return upstream
		}

		if err := json.Unmarshal(body, out); err != nil {
			return apperr.Wrap(apperr.KindUnavailable, "Failed to parse GitHub response", err)
		}
		header = resp.Header
		return nil
	})
	if err != nil {
		return nil, err
	}
	return header, nil
}

func upstreamMessage(body []byte) string {
	var payload struct {
		Message string `json:"message"`
	}
	if err := json.Unmarshal(body, &payload); err == nil && payload.Message != "" {
		return payload.Message
	}
	return "GitHub API error"
}
