package journal

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/worklog-labs/gitjournal-backend/internal/apperr"
)

func TestCreateEntrySuccess(t *testing.T) {
	var got importRequest
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/api/vendor/import-journal", r.URL.Path)
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))

		w.WriteHeader(http.StatusCreated)
		json.NewEncoder(w).Encode(map[string]string{"journalId": "j-123"})
	}))
	defer srv.Close()

	client := NewClient(srv.URL, 5*time.Second)
	id, err := client.CreateEntry(context.Background(), "dev@example.com", "secret", "PR title", "summary body")
	require.NoError(t, err)
	assert.Equal(t, "j-123", id)
	assert.Equal(t, "dev@example.com", got.Email)
	assert.Equal(t, "secret", got.Password)
	assert.Equal(t, "PR title", got.Title)
	assert.Equal(t, "summary body", got.Content)
}

func TestCreateEntryAcceptsOK(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]string{"journalId": "j-200"})
	}))
	defer srv.Close()

	client := NewClient(srv.URL, 5*time.Second)
	id, err := client.CreateEntry(context.Background(), "a@b.c", "p", "t", "c")
	require.NoError(t, err)
	assert.Equal(t, "j-200", id)
}

func TestCreateEntrySuccessWithoutID(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{}`))
	}))
	defer srv.Close()

	client := NewClient(srv.URL, 5*time.Second)
	_, err := client.CreateEntry(context.Background(), "a@b.c", "p", "t", "c")
	assert.Equal(t, apperr.KindUnauthorized, apperr.KindOf(err))
}

func TestCreateEntryUnauthorized(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	}))
	defer srv.Close()

	client := NewClient(srv.URL, 5*time.Second)
	_, err := client.CreateEntry(context.Background(), "a@b.c", "wrong", "t", "c")
	assert.Equal(t, apperr.KindUnauthorized, apperr.KindOf(err))
	assert.Equal(t, "Invalid credentials for work journal API", apperr.Message(err))
}

func TestCreateEntryClientErrorUsesUpstreamMessage(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnprocessableEntity)
		json.NewEncoder(w).Encode(map[string]string{"message": "title is required"})
	}))
	defer srv.Close()

	client := NewClient(srv.URL, 5*time.Second)
	_, err := client.CreateEntry(context.Background(), "a@b.c", "p", "", "c")
	assert.Equal(t, apperr.KindBadRequest, apperr.KindOf(err))
	assert.Equal(t, "title is required", apperr.Message(err))
}

func TestCreateEntryServerError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	client := NewClient(srv.URL, 5*time.Second)
	_, err := client.CreateEntry(context.Background(), "a@b.c", "p", "t", "c")
	assert.Equal(t, apperr.KindUnauthorized, apperr.KindOf(err))
}

func TestCreateEntryConnectionFailure(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	srv.Close()

	client := NewClient(srv.URL, time.Second)
	_, err := client.CreateEntry(context.Background(), "a@b.c", "p", "t", "c")
	assert.Equal(t, apperr.KindUnavailable, apperr.KindOf(err))
}
