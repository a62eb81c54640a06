package services

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/worklog-labs/gitjournal-backend/internal/models"
	"github.com/worklog-labs/gitjournal-backend/internal/store"
)

type fakeUserStore struct {
	mu    sync.Mutex
	users map[uuid.UUID]*models.User
}

func newFakeUserStore() *fakeUserStore {
	return &fakeUserStore{users: make(map[uuid.UUID]*models.User)}
}

func (f *fakeUserStore) Create(_ context.Context, user *models.User) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, u := range f.users {
		if strings.EqualFold(u.Email, user.Email) {
			return store.ErrDuplicate
		}
	}
	if user.PrJournalMap == nil {
		user.PrJournalMap = map[string]interface{}{}
	}
	f.users[user.ID] = user
	return nil
}

func (f *fakeUserStore) ByID(_ context.Context, id uuid.UUID) (*models.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if u, ok := f.users[id]; ok {
		return u, nil
	}
	return nil, store.ErrNotFound
}

func (f *fakeUserStore) ByEmail(_ context.Context, email string) (*models.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, u := range f.users {
		if strings.EqualFold(u.Email, email) {
			return u, nil
		}
	}
	return nil, store.ErrNotFound
}

func (f *fakeUserStore) MarkVerified(_ context.Context, id uuid.UUID) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	u, ok := f.users[id]
	if !ok {
		return store.ErrNotFound
	}
	u.IsVerified = true
	return nil
}

func (f *fakeUserStore) JournalFor(_ context.Context, userID uuid.UUID, hashKey string) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	u, ok := f.users[userID]
	if !ok {
		return "", store.ErrNotFound
	}
	if id, ok := u.PrJournalMap[hashKey].(string); ok {
		return id, nil
	}
	return "", store.ErrNotFound
}

func (f *fakeUserStore) RecordJournal(_ context.Context, userID uuid.UUID, hashKey, journalID string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	u, ok := f.users[userID]
	if !ok {
		return store.ErrNotFound
	}
	u.PrJournalMap[hashKey] = journalID
	return nil
}

type fakeRefreshTokenStore struct {
	mu      sync.Mutex
	records []*models.RefreshToken
}

func newFakeRefreshTokenStore() *fakeRefreshTokenStore {
	return &fakeRefreshTokenStore{}
}

func (f *fakeRefreshTokenStore) Save(_ context.Context, rec *models.RefreshToken) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.records = append(f.records, rec)
	return nil
}

func (f *fakeRefreshTokenStore) FindActive(_ context.Context, userID uuid.UUID, token string) (*models.RefreshToken, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, r := range f.records {
		if r.UserID == userID && r.Token == token && r.IsActive {
			return r, nil
		}
	}
	return nil, store.ErrNotFound
}

func (f *fakeRefreshTokenStore) RevokeAndReplace(_ context.Context, userID uuid.UUID, oldToken, revokedByIP string, next *models.RefreshToken) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, r := range f.records {
		if r.UserID == userID && r.Token == oldToken && r.IsActive {
			now := time.Now()
			r.IsActive = false
			r.RevokedAt = &now
			r.RevokedByIP = revokedByIP
			r.ReplacedByToken = &next.Token
			f.records = append(f.records, next)
			return nil
		}
	}
	return store.ErrNotFound
}

func (f *fakeRefreshTokenStore) Revoke(_ context.Context, userID uuid.UUID, token, revokedByIP string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, r := range f.records {
		if r.UserID == userID && r.Token == token && r.IsActive {
			now := time.Now()
			r.IsActive = false
			r.RevokedAt = &now
			r.RevokedByIP = revokedByIP
			return nil
		}
	}
	return store.ErrNotFound
}

func (f *fakeRefreshTokenStore) byToken(token string) *models.RefreshToken {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, r := range f.records {
		if r.Token == token {
			return r
		}
	}
	return nil
}

type fakePendingSummaryStore struct {
	mu      sync.Mutex
	records map[uuid.UUID]*models.PendingPrSummary
}

func newFakePendingSummaryStore() *fakePendingSummaryStore {
	return &fakePendingSummaryStore{records: make(map[uuid.UUID]*models.PendingPrSummary)}
}

func (f *fakePendingSummaryStore) Find(_ context.Context, org, repo string, number int) (*models.PendingPrSummary, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, r := range f.records {
		if r.Organization == org && r.Repository == repo && r.PullRequestNumber == number {
			return r, nil
		}
	}
	return nil, store.ErrNotFound
}

func (f *fakePendingSummaryStore) Create(_ context.Context, rec *models.PendingPrSummary) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, r := range f.records {
		if r.Organization == rec.Organization && r.Repository == rec.Repository && r.PullRequestNumber == rec.PullRequestNumber {
			return store.ErrDuplicate
		}
	}
	f.records[rec.ID] = rec
	return nil
}

func (f *fakePendingSummaryStore) Delete(_ context.Context, id uuid.UUID) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.records[id]; !ok {
		return store.ErrNotFound
	}
	delete(f.records, id)
	return nil
}

func (f *fakePendingSummaryStore) ListByAuthor(_ context.Context, githubUserID int64) ([]models.PendingPrSummary, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []models.PendingPrSummary
	for _, r := range f.records {
		if r.GitHubUserID == githubUserID {
			out = append(out, *r)
		}
	}
	return out, nil
}

func (f *fakePendingSummaryStore) CountByAuthor(_ context.Context, githubUserID int64) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var n int64
	for _, r := range f.records {
		if r.GitHubUserID == githubUserID {
			n++
		}
	}
	return n, nil
}

var (
	_ store.UserStore           = (*fakeUserStore)(nil)
	_ store.RefreshTokenStore   = (*fakeRefreshTokenStore)(nil)
	_ store.PendingSummaryStore = (*fakePendingSummaryStore)(nil)
)
