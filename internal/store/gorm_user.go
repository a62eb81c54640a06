package store

import (
	"context"
	"database/sql"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/worklog-labs/gitjournal-backend/internal/models"
)

type GormUserStore struct {
	db *gorm.DB
}

func NewGormUserStore(db *gorm.DB) *GormUserStore {
	return &GormUserStore{db: db}
}

func (s *GormUserStore) Create(ctx context.Context, user *models.User) error {
	err := s.db.WithContext(ctx).Create(user).Error
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return ErrDuplicate
	}
	return err
}

func (s *GormUserStore) ByID(ctx context.Context, id uuid.UUID) (*models.User, error) {
	var user models.User
	err := s.db.WithContext(ctx).First(&user, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &user, nil
}

func (s *GormUserStore) ByEmail(ctx context.Context, email string) (*models.User, error) {
	var user models.User
	err := s.db.WithContext(ctx).Where("email = ?", email).First(&user).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &user, nil
}

func (s *GormUserStore) MarkVerified(ctx context.Context, id uuid.UUID) error {
	return s.db.WithContext(ctx).Model(&models.User{}).
		Where("id = ?", id).
		Update("is_verified", true).Error
}

func (s *GormUserStore) JournalFor(ctx context.Context, userID uuid.UUID, hashKey string) (string, error) {
	var journalID sql.NullString
	err := s.db.WithContext(ctx).Model(&models.User{}).
		Where("id = ?", userID).
		Select("pr_journal_map ->> ?", hashKey).
		Scan(&journalID).Error
	if err != nil {
		return "", err
	}
	if !journalID.Valid || journalID.String == "" {
		return "", ErrNotFound
	}
	return journalID.String, nil
}

func (s *GormUserStore) RecordJournal(ctx context.Context, userID uuid.UUID, hashKey, journalID string) error {
	return s.db.WithContext(ctx).Model(&models.User{}).
		Where("id = ?", userID).
		Update("pr_journal_map", gorm.Expr(
			"jsonb_set(COALESCE(pr_journal_map, '{}'::jsonb), ARRAY[?], to_jsonb(?::text))",
			hashKey, journalID,
		)).Error
}
