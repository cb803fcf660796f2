package models

import (
	"time"

	"budgetry/internal/uuid"

	"gorm.io/gorm"
)

// Base holds the id, timestamps and soft-delete marker shared by every table.
type Base struct {
	ID        string         `gorm:"type:uuid;primaryKey" json:"id"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"deleted_at,omitempty"`
}

// EnsureID assigns a UUIDv7 unless the record already has an id.
func (b *Base) EnsureID() {
	if b.ID == "" {
		b.ID = uuid.New()
	}
}

// Touch assigns a missing id and creation time and bumps UpdatedAt to now.
// Stores that bypass GORM use it in place of the hooks.
func (b *Base) Touch(now time.Time) {
	b.EnsureID()
	if b.CreatedAt.IsZero() {
		b.CreatedAt = now
	}
	b.UpdatedAt = now
}

// BeforeCreate assigns the id before GORM inserts the row.
func (b *Base) BeforeCreate(tx *gorm.DB) error {
	b.EnsureID()
	return nil
}
