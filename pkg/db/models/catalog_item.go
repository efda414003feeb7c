package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/nayyarmobile/shopdesk-backend/pkg/enums"
)

// CatalogItem is the single source of truth for stock and pricing.
// StockQuantity is only ever decremented through the checkout commit and
// incremented through restock; nothing else touches it.
type CatalogItem struct {
	ID            uuid.UUID          `gorm:"column:id;type:uuid;primaryKey"`
	Name          string             `gorm:"column:name;not null"`
	Brand         string             `gorm:"column:brand;not null"`
	Model         string             `gorm:"column:model"`
	Storage       string             `gorm:"column:storage"`
	Color         string             `gorm:"column:color"`
	ScanCode      string             `gorm:"column:scan_code;not null;uniqueIndex"`
	Category      enums.ItemCategory `gorm:"column:category;type:text;not null;default:'Accessories'"`
	UnitPrice     decimal.Decimal    `gorm:"column:unit_price;type:numeric(14,4);not null"`
	UnitCost      decimal.Decimal    `gorm:"column:unit_cost;type:numeric(14,4);not null"`
	StockQuantity int                `gorm:"column:stock_quantity;not null;default:0"`
	ImageURL      *string            `gorm:"column:image_url"`
	CreatedAt     time.Time          `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt     time.Time          `gorm:"column:updated_at;autoUpdateTime"`
}

// BeforeCreate assigns an id when none was provided.
func (c *CatalogItem) BeforeCreate(tx *gorm.DB) error {
	if c.ID == uuid.Nil {
		c.ID = uuid.New()
	}
	return nil
}
