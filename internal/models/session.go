package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Session is a row of the auth table. SessionID holds the SHA-256 of the
// token handed to the client, never the token itself.
type Session struct {
	ID        uuid.UUID `gorm:"size:36;primaryKey" json:"id"`
	UserID    uuid.UUID `gorm:"size:36;not null;index" json:"user_id"`
	SessionID string    `gorm:"uniqueIndex;not null;size:64" json:"-"`
	ExpiresAt time.Time `gorm:"not null;index" json:"expires_at"`
	CreatedAt time.Time `json:"created_at"`
	User      User      `gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE" json:"-"`
}

func (s *Session) BeforeCreate(tx *gorm.DB) error {
	if s.ID == uuid.Nil {
		s.ID = uuid.New()
	}
	return nil
}

func (Session) TableName() string {
	return "auth"
}
