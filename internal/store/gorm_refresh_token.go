package store

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/worklog-labs/gitjournal-backend/internal/models"
)

type GormRefreshTokenStore struct {
	db *gorm.DB
}

func NewGormRefreshTokenStore(db *gorm.DB) *GormRefreshTokenStore {
	return &GormRefreshTokenStore{db: db}
}

func (s *GormRefreshTokenStore) Save(ctx context.Context, rec *models.RefreshToken) error {
	return s.db.WithContext(ctx).Create(rec).Error
}

func (s *GormRefreshTokenStore) FindActive(ctx context.Context, userID uuid.UUID, token string) (*models.RefreshToken, error) {
	var rec models.RefreshToken
	err := s.db.WithContext(ctx).
		Where("user_id = ? AND token = ? AND is_active = ?", userID, token, true).
		First(&rec).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &rec, nil
}

// RevokeAndReplace runs the rotation as a conditional update matched on token
// text and the active flag. Two concurrent refresh calls against the same
// token cannot both succeed: the loser's update affects zero rows.
func (s *GormRefreshTokenStore) RevokeAndReplace(ctx context.Context, userID uuid.UUID, oldToken, revokedByIP string, next *models.RefreshToken) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		now := time.Now()
		res := tx.Model(&models.RefreshToken{}).
			Where("user_id = ? AND token = ? AND is_active = ?", userID, oldToken, true).
			Updates(map[string]interface{}{
				"is_active":         false,
				"revoked_at":        now,
				"revoked_by_ip":     revokedByIP,
				"replaced_by_token": next.Token,
			})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return ErrNotFound
		}
		return tx.Create(next).Error
	})
}

func (s *GormRefreshTokenStore) Revoke(ctx context.Context, userID uuid.UUID, token, revokedByIP string) error {
	now := time.Now()
	res := s.db.WithContext(ctx).Model(&models.RefreshToken{}).
		Where("user_id = ? AND token = ? AND is_active = ?", userID, token, true).
		Updates(map[string]interface{}{
			"is_active":     false,
			"revoked_at":    now,
			"revoked_by_ip": revokedByIP,
		})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}
