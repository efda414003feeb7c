package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/nayyarmobile/shopdesk-backend/pkg/enums"
)

// RepairTicket is one job on the service queue.
type RepairTicket struct {
	ID           uuid.UUID          `gorm:"column:id;type:uuid;primaryKey"`
	Reference    string             `gorm:"column:reference;not null;uniqueIndex"`
	CustomerName string             `gorm:"column:customer_name;not null"`
	Device       string             `gorm:"column:device;not null"`
	Problem      string             `gorm:"column:problem;not null"`
	Technician   string             `gorm:"column:technician"`
	Charges      decimal.Decimal    `gorm:"column:charges;type:numeric(14,4);not null"`
	Status       enums.RepairStatus `gorm:"column:status;type:text;not null;default:'Pending'"`
	CreatedAt    time.Time          `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt    time.Time          `gorm:"column:updated_at;autoUpdateTime"`
}

// BeforeCreate assigns an id when none was provided.
func (r *RepairTicket) BeforeCreate(tx *gorm.DB) error {
	if r.ID == uuid.Nil {
		r.ID = uuid.New()
	}
	return nil
}
