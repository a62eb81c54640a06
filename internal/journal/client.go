// Package journal is the client for the external work journal service. The
// service only exposes "create an entry, get its id back"; credentials are
// sent in plaintext over this one call and must be decrypted just-in-time by
// the caller.
package journal

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"time"

	"github.com/worklog-labs/gitjournal-backend/internal/apperr"
)

type Client struct {
	origin string
	http   *http.Client
}

func NewClient(origin string, timeout time.Duration) *Client {
	if timeout == 0 {
		timeout = 30 * time.Second
	}
	return &Client{
		origin: origin,
		http:   &http.Client{Timeout: timeout},
	}
}

type importRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
	Title    string `json:"title"`
	Content  string `json:"content"`
}

type importResponse struct {
	JournalID string `json:"journalId"`
	Message   string `json:"message"`
}

// CreateEntry posts one entry and returns the id the journal assigned.
// Failures are classified fail-closed: invalid external credentials map to
// Unauthorized, other upstream 4xx to BadRequest, connection-level failures
// to ServiceUnavailable, and anything else to Unauthorized.
func (c *Client) CreateEntry(ctx context.Context, email, password, title, content string) (string, error) {
	reqBody, err := json.Marshal(importRequest{
		Email:    email,
		Password: password,
		Title:    title,
		Content:  content,
	})
	if err != nil {
		return "", apperr.Wrap(apperr.KindInternal, "Failed to encode journal request", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.origin+"/api/vendor/import-journal", bytes.NewBuffer(reqBody))
	if err != nil {
		return "", apperr.Wrap(apperr.KindInternal, "Failed to build journal request", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return "", apperr.Wrap(apperr.KindUnavailable, "Could not connect to work journal service", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", apperr.Wrap(apperr.KindUnavailable, "Could not read work journal response", err)
	}

	var payload importResponse
	switch {
	case resp.StatusCode == http.StatusOK || resp.StatusCode == http.StatusCreated:
		if err := json.Unmarshal(body, &payload); err != nil || payload.JournalID == "" {
			return "", apperr.New(apperr.KindUnauthorized, "Failed to authenticate with work journal API")
		}
		return payload.JournalID, nil
	case resp.StatusCode == http.StatusUnauthorized:
		return "", apperr.New(apperr.KindUnauthorized, "Invalid credentials for work journal API")
	case resp.StatusCode >= 400 && resp.StatusCode < 500:
		msg := "Error communicating with external service"
		if err := json.Unmarshal(body, &payload); err == nil && payload.Message != "" {
			msg = payload.Message
		}
		return "", apperr.New(apperr.KindBadRequest, msg)
	default:
		return "", apperr.New(apperr.KindUnauthorized, "Failed to authenticate with work journal API")
	}
}
