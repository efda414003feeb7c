package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/nayyarmobile/shopdesk-backend/pkg/enums"
)

// SaleRecord is one finalized sale in the append-only ledger. Every money
// field is a snapshot taken at commit time; only Status may change later,
// and only completed -> void/returned.
type SaleRecord struct {
	ID             uuid.UUID        `gorm:"column:id;type:uuid;primaryKey"`
	SerialNo       int64            `gorm:"column:serial_no;not null;uniqueIndex"`
	InvoiceNo      string           `gorm:"column:invoice_no;not null;uniqueIndex"`
	CustomerName   string           `gorm:"column:customer_name;not null;default:'Walk-in'"`
	CustomerPhone  string           `gorm:"column:customer_phone;not null;default:'-'"`
	Subtotal       decimal.Decimal  `gorm:"column:subtotal;type:numeric(14,4);not null"`
	TaxAmount      decimal.Decimal  `gorm:"column:tax_amount;type:numeric(14,4);not null"`
	GlobalDiscount decimal.Decimal  `gorm:"column:global_discount;type:numeric(14,4);not null"`
	GrandTotal     decimal.Decimal  `gorm:"column:grand_total;type:numeric(14,4);not null"`
	CashTendered   decimal.Decimal  `gorm:"column:cash_tendered;type:numeric(14,4);not null"`
	OnlineTendered decimal.Decimal  `gorm:"column:online_tendered;type:numeric(14,4);not null"`
	ChangeDue      decimal.Decimal  `gorm:"column:change_due;type:numeric(14,4);not null"`
	GiftIncluded   bool             `gorm:"column:gift_included;not null;default:false"`
	Salesman       string           `gorm:"column:salesman;not null"`
	Status         enums.SaleStatus `gorm:"column:status;type:text;not null;default:'completed'"`
	Lines          []SaleLine       `gorm:"foreignKey:SaleRecordID;constraint:OnDelete:CASCADE"`
	CreatedAt      time.Time        `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt      time.Time        `gorm:"column:updated_at;autoUpdateTime"`
}

// BeforeCreate assigns an id when none was provided.
func (s *SaleRecord) BeforeCreate(tx *gorm.DB) error {
	if s.ID == uuid.Nil {
		s.ID = uuid.New()
	}
	return nil
}

// SaleLine is the frozen copy of one cart line at the moment of sale.
// It references the catalog item by id but never reads live stock or price.
type SaleLine struct {
	ID           uuid.UUID       `gorm:"column:id;type:uuid;primaryKey"`
	SaleRecordID uuid.UUID       `gorm:"column:sale_record_id;type:uuid;not null;index"`
	ItemID       uuid.UUID       `gorm:"column:item_id;type:uuid;not null"`
	Name         string          `gorm:"column:name;not null"`
	Brand        string          `gorm:"column:brand"`
	ScanCode     string          `gorm:"column:scan_code"`
	Quantity     int             `gorm:"column:quantity;not null"`
	UnitPrice    decimal.Decimal `gorm:"column:unit_price;type:numeric(14,4);not null"`
	LineDiscount decimal.Decimal `gorm:"column:line_discount;type:numeric(14,4);not null"`
	LineTotal    decimal.Decimal `gorm:"column:line_total;type:numeric(14,4);not null"`
	CreatedAt    time.Time       `gorm:"column:created_at;autoCreateTime"`
}

// BeforeCreate assigns an id when none was provided.
func (l *SaleLine) BeforeCreate(tx *gorm.DB) error {
	if l.ID == uuid.Nil {
		l.ID = uuid.New()
	}
	return nil
}
