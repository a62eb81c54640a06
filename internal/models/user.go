package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// User is the identity anchor. PrJournalMap maps sha256(org_repo_prNumber)
// hex digests to the journal entry id created for that pull request; presence
// of a key means the PR has already been journaled for this user.
type User struct {
	ID           uuid.UUID         `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	Email        string            `gorm:"not null;size:255;uniqueIndex" json:"email"`
	Password     string            `gorm:"not null" json:"-"`
	IsVerified   bool              `gorm:"default:false" json:"is_verified"`
	PrJournalMap datatypes.JSONMap `gorm:"type:jsonb;default:'{}'" json:"-"`
	CreatedAt    time.Time         `json:"created_at"`
	UpdatedAt    time.Time         `json:"updated_at"`
	DeletedAt    gorm.DeletedAt    `gorm:"index" json:"-"`
}
