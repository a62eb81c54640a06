package models

import (
	"time"

	"github.com/google/uuid"
)

// RefreshToken is one link in a per-user rotation chain. Exactly one record
// per lineage is active; rotation stamps the revocation fields and links the
// successor via ReplacedByToken, so an auditor can walk the full lineage.
// Revoked records are never deleted.
type RefreshToken struct {
	ID              uuid.UUID  `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	UserID          uuid.UUID  `gorm:"type:uuid;not null;index" json:"user_id"`
	Token           string     `gorm:"type:text;not null;uniqueIndex" json:"-"`
	ExpiresAt       time.Time  `gorm:"not null" json:"expires_at"`
	CreatedAt       time.Time  `json:"created_at"`
	CreatedByIP     string     `gorm:"size:45" json:"created_by_ip"`
	RevokedAt       *time.Time `json:"revoked_at,omitempty"`
	RevokedByIP     string     `gorm:"size:45" json:"revoked_by_ip,omitempty"`
	ReplacedByToken *string    `gorm:"type:text" json:"-"`
	IsActive        bool       `gorm:"default:true;index" json:"is_active"`
	User            User       `gorm:"foreignKey:UserID" json:"-"`
}
