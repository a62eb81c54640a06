// Package store defines the persistence surface consumed by the services.
// The contracts treat the database as a keyed document store; the GORM
// implementations live alongside and tests substitute in-memory fakes.
package store

import (
	"context"
	"errors"

	"github.com/google/uuid"

	"github.com/worklog-labs/gitjournal-backend/internal/models"
)

var (
	ErrNotFound  = errors.New("record not found")
	ErrDuplicate = errors.New("duplicate record")
)

type UserStore interface {
	Create(ctx context.Context, user *models.User) error
	ByID(ctx context.Context, id uuid.UUID) (*models.User, error)
	ByEmail(ctx context.Context, email string) (*models.User, error)
	MarkVerified(ctx context.Context, id uuid.UUID) error

	// JournalFor returns the journal entry id recorded under hashKey, or
	// ErrNotFound. Presence of the key is the sole source of truth for "this
	// PR was already journaled".
	JournalFor(ctx context.Context, userID uuid.UUID, hashKey string) (string, error)
	RecordJournal(ctx context.Context, userID uuid.UUID, hashKey, journalID string) error
}

type RefreshTokenStore interface {
	Save(ctx context.Context, rec *models.RefreshToken) error

	// FindActive matches on token text AND the active flag; a revoked or
	// unknown token yields ErrNotFound.
	FindActive(ctx context.Context, userID uuid.UUID, token string) (*models.RefreshToken, error)

	// RevokeAndReplace retires the active record for oldToken and persists
	// its successor. The revocation must be a single conditional update so
	// that of two concurrent rotations of the same token, exactly one wins
	// and the other sees ErrNotFound.
	RevokeAndReplace(ctx context.Context, userID uuid.UUID, oldToken, revokedByIP string, next *models.RefreshToken) error

	// Revoke retires a token without a successor (logout, expiry).
	Revoke(ctx context.Context, userID uuid.UUID, token, revokedByIP string) error
}

type PendingSummaryStore interface {
	Find(ctx context.Context, org, repo string, number int) (*models.PendingPrSummary, error)
	Create(ctx context.Context, rec *models.PendingPrSummary) error
	Delete(ctx context.Context, id uuid.UUID) error
	ListByAuthor(ctx context.Context, githubUserID int64) ([]models.PendingPrSummary, error)
	CountByAuthor(ctx context.Context, githubUserID int64) (int64, error)
}
