package store

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/worklog-labs/gitjournal-backend/internal/models"
)

type GormPendingSummaryStore struct {
	db *gorm.DB
}

func NewGormPendingSummaryStore(db *gorm.DB) *GormPendingSummaryStore {
	return &GormPendingSummaryStore{db: db}
}

func (s *GormPendingSummaryStore) Find(ctx context.Context, org, repo string, number int) (*models.PendingPrSummary, error) {
	var rec models.PendingPrSummary
	err := s.db.WithContext(ctx).
		Where("organization = ? AND repository = ? AND pull_request_number = ?", org, repo, number).
		First(&rec).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &rec, nil
}

func (s *GormPendingSummaryStore) Create(ctx context.Context, rec *models.PendingPrSummary) error {
	err := s.db.WithContext(ctx).Create(rec).Error
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return ErrDuplicate
	}
	return err
}

func (s *GormPendingSummaryStore) Delete(ctx context.Context, id uuid.UUID) error {
	return s.db.WithContext(ctx).Delete(&models.PendingPrSummary{}, "id = ?", id).Error
}

func (s *GormPendingSummaryStore) ListByAuthor(ctx context.Context, githubUserID int64) ([]models.PendingPrSummary, error) {
	var recs []models.PendingPrSummary
	err := s.db.WithContext(ctx).
		Where("git_hub_user_id = ?", githubUserID).
		Order("created_at ASC").
		Find(&recs).Error
	return recs, err
}

func (s *GormPendingSummaryStore) CountByAuthor(ctx context.Context, githubUserID int64) (int64, error) {
	var count int64
	err := s.db.WithContext(ctx).Model(&models.PendingPrSummary{}).
		Where("git_hub_user_id = ?", githubUserID).
		Count(&count).Error
	return count, err
}
