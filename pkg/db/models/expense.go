package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// Expense is a back-office outgoing, tracked per day for the dashboard.
type Expense struct {
	ID         uuid.UUID       `gorm:"column:id;type:uuid;primaryKey"`
	Label      string          `gorm:"column:label;not null"`
	Category   string          `gorm:"column:category"`
	Amount     decimal.Decimal `gorm:"column:amount;type:numeric(14,4);not null"`
	IncurredOn time.Time       `gorm:"column:incurred_on;not null"`
	Notes      *string         `gorm:"column:notes"`
	CreatedAt  time.Time       `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt  time.Time       `gorm:"column:updated_at;autoUpdateTime"`
}

// BeforeCreate assigns an id when none was provided.
func (e *Expense) BeforeCreate(tx *gorm.DB) error {
	if e.ID == uuid.Nil {
		e.ID = uuid.New()
	}
	return nil
}
