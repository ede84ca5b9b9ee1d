package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Meal belongs to exactly one user, stored in the session_user column.
type Meal struct {
	ID          uuid.UUID  `gorm:"size:36;primaryKey" json:"id"`
	UserID      uuid.UUID  `gorm:"column:session_user;size:36;not null;index" json:"-"`
	Name        string     `gorm:"not null;size:255" json:"name"`
	Description *string    `gorm:"size:1000" json:"description"`
	Diet        bool       `gorm:"not null" json:"diet"`
	OccurredAt  *time.Time `gorm:"index" json:"occurredAt"`
	CreatedAt   time.Time  `json:"createdAt"`
	UpdatedAt   time.Time  `json:"updatedAt"`
	User        User       `gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE" json:"-"`
}

func (m *Meal) BeforeCreate(tx *gorm.DB) error {
	if m.ID == uuid.Nil {
		m.ID = uuid.New()
	}
	return nil
}

func (Meal) TableName() string {
	return "meals"
}
