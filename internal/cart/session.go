// Package cart holds the in-memory working state of one POS sale. A session
// is plain mutable state; the checkout orchestrator serializes access to it.
package cart

import (
	"strings"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/nayyarmobile/shopdesk-backend/internal/pricing"
	"github.com/nayyarmobile/shopdesk-backend/pkg/db/models"
	pkgerrors "github.com/nayyarmobile/shopdesk-backend/pkg/errors"
)

const (
	// DefaultCustomerName is used when the cashier leaves the name blank.
	DefaultCustomerName = "Walk-in"
	// DefaultCustomerPhone is used when the cashier leaves the phone blank.
	DefaultCustomerPhone = "-"
)

// Line is one cart entry. Price and identity fields are snapshots taken when
// the item was added; live catalog changes do not leak into an open session.
// The stock cap is refreshed from the catalog whenever the caller touches the
// line, so restocks and sales on other terminals move the clamp.
type Line struct {
	ItemID       uuid.UUID
	Name         string
	Brand        string
	ScanCode     string
	UnitPrice    decimal.Decimal
	Quantity     int
	LineDiscount decimal.Decimal
	StockCap     int
}

// Subtotal returns the unrounded line subtotal.
func (l Line) Subtotal() decimal.Decimal {
	return pricing.LineSubtotal(pricing.Line{
		UnitPrice:    l.UnitPrice,
		Quantity:     l.Quantity,
		LineDiscount: l.LineDiscount,
	})
}

// Settings are the session-level knobs the cashier can flip mid-sale.
type Settings struct {
	TaxEnabled     bool
	GlobalDiscount decimal.Decimal
	CustomerName   string
	CustomerPhone  string
	GiftIncluded   bool
}

// Payment is the split tender entered before commit.
type Payment struct {
	CashTendered   decimal.Decimal
	OnlineTendered decimal.Decimal
}

// Session is the working state of one sale: ordered lines, settings, and the
// payment split. At most one line exists per catalog item.
type Session struct {
	lines    []*Line
	settings Settings
	payment  Payment
}

// NewSession returns an empty session with walk-in customer defaults.
func NewSession() *Session {
	return &Session{
		settings: Settings{
			GlobalDiscount: decimal.Zero,
			CustomerName:   DefaultCustomerName,
			CustomerPhone:  DefaultCustomerPhone,
		},
	}
}

// AddItem adds one unit of the catalog item. Adding an item already in the
// cart increments its line instead of creating a second one.
func (s *Session) AddItem(item *models.CatalogItem) error {
	if item == nil {
		return pkgerrors.New(pkgerrors.CodeValidation, "catalog item required")
	}
	if line := s.find(item.ID); line != nil {
		line.StockCap = item.StockQuantity
		if line.Quantity >= line.StockCap {
			return pkgerrors.New(pkgerrors.CodeStockLimitReached, "all available stock already in cart").
				WithDetails(map[string]any{"item_id": item.ID.String(), "stock": line.StockCap})
		}
		line.Quantity++
		return nil
	}
	if item.StockQuantity <= 0 {
		return pkgerrors.New(pkgerrors.CodeOutOfStock, "item is out of stock").
			WithDetails(map[string]string{"item_id": item.ID.String()})
	}
	s.lines = append(s.lines, &Line{
		ItemID:       item.ID,
		Name:         item.Name,
		Brand:        item.Brand,
		ScanCode:     item.ScanCode,
		UnitPrice:    item.UnitPrice,
		Quantity:     1,
		LineDiscount: decimal.Zero,
		StockCap:     item.StockQuantity,
	})
	return nil
}

// ChangeQuantity sets a line's quantity, silently clamping to [1, stock cap].
func (s *Session) ChangeQuantity(itemID uuid.UUID, quantity int) error {
	line := s.find(itemID)
	if line == nil {
		return pkgerrors.New(pkgerrors.CodeNotFound, "item is not in the cart").
			WithDetails(map[string]string{"item_id": itemID.String()})
	}
	if quantity < 1 {
		quantity = 1
	}
	if quantity > line.StockCap {
		quantity = line.StockCap
	}
	line.Quantity = quantity
	return nil
}

// RefreshStockCap replaces a line's stock cap with a fresh catalog read.
// Unknown items are a no-op; the follow-up mutation reports them.
func (s *Session) RefreshStockCap(itemID uuid.UUID, stock int) {
	if line := s.find(itemID); line != nil {
		line.StockCap = stock
	}
}

// RemoveLine drops the line for the given item.
func (s *Session) RemoveLine(itemID uuid.UUID) error {
	for i, line := range s.lines {
		if line.ItemID == itemID {
			s.lines = append(s.lines[:i], s.lines[i+1:]...)
			return nil
		}
	}
	return pkgerrors.New(pkgerrors.CodeNotFound, "item is not in the cart").
		WithDetails(map[string]string{"item_id": itemID.String()})
}

// SetLineDiscount applies a per-line discount. A discount exceeding the line
// subtotal is rejected rather than silently producing a negative line.
func (s *Session) SetLineDiscount(itemID uuid.UUID, discount decimal.Decimal) error {
	line := s.find(itemID)
	if line == nil {
		return pkgerrors.New(pkgerrors.CodeNotFound, "item is not in the cart").
			WithDetails(map[string]string{"item_id": itemID.String()})
	}
	if discount.IsNegative() {
		return pkgerrors.New(pkgerrors.CodeValidation, "line discount cannot be negative")
	}
	gross := line.UnitPrice.Mul(decimal.NewFromInt(int64(line.Quantity)))
	if discount.GreaterThan(gross) {
		return pkgerrors.New(pkgerrors.CodeValidation, "line discount exceeds line subtotal").
			WithDetails(map[string]any{"item_id": itemID.String(), "line_subtotal": gross.String()})
	}
	line.LineDiscount = discount
	return nil
}

// SetGlobalDiscount applies the whole-sale discount.
func (s *Session) SetGlobalDiscount(discount decimal.Decimal) error {
	if discount.IsNegative() {
		return pkgerrors.New(pkgerrors.CodeValidation, "global discount cannot be negative")
	}
	s.settings.GlobalDiscount = discount
	return nil
}

// SetTaxEnabled toggles tax for the whole sale.
func (s *Session) SetTaxEnabled(enabled bool) {
	s.settings.TaxEnabled = enabled
}

// SetGiftIncluded toggles the gift flag.
func (s *Session) SetGiftIncluded(gift bool) {
	s.settings.GiftIncluded = gift
}

// SetCustomer records the customer, falling back to walk-in defaults for
// blank fields.
func (s *Session) SetCustomer(name, phone string) {
	name = strings.TrimSpace(name)
	phone = strings.TrimSpace(phone)
	if name == "" {
		name = DefaultCustomerName
	}
	if phone == "" {
		phone = DefaultCustomerPhone
	}
	s.settings.CustomerName = name
	s.settings.CustomerPhone = phone
}

// SetPayment records the tender split.
func (s *Session) SetPayment(cash, online decimal.Decimal) error {
	if cash.IsNegative() || online.IsNegative() {
		return pkgerrors.New(pkgerrors.CodeValidation, "tendered amounts cannot be negative")
	}
	s.payment = Payment{CashTendered: cash, OnlineTendered: online}
	return nil
}

// Lines returns the lines in insertion order. Callers get copies.
func (s *Session) Lines() []Line {
	out := make([]Line, 0, len(s.lines))
	for _, line := range s.lines {
		out = append(out, *line)
	}
	return out
}

// Settings returns the current session settings.
func (s *Session) Settings() Settings {
	return s.settings
}

// Payment returns the current tender split.
func (s *Session) Payment() Payment {
	return s.payment
}

// IsEmpty reports whether the cart has no lines.
func (s *Session) IsEmpty() bool {
	return len(s.lines) == 0
}

// Breakdown recomputes the money projection from current state.
func (s *Session) Breakdown(taxRate decimal.Decimal) pricing.Breakdown {
	lines := make([]pricing.Line, 0, len(s.lines))
	for _, line := range s.lines {
		lines = append(lines, pricing.Line{
			UnitPrice:    line.UnitPrice,
			Quantity:     line.Quantity,
			LineDiscount: line.LineDiscount,
		})
	}
	return pricing.Compute(pricing.Inputs{
		Lines:          lines,
		TaxEnabled:     s.settings.TaxEnabled,
		TaxRate:        taxRate,
		GlobalDiscount: s.settings.GlobalDiscount,
	})
}

// ChangeDue derives change against the current payment split.
func (s *Session) ChangeDue(taxRate decimal.Decimal) decimal.Decimal {
	breakdown := s.Breakdown(taxRate)
	return pricing.ChangeDue(s.payment.CashTendered, s.payment.OnlineTendered, breakdown.GrandTotal)
}

// Reset clears lines, settings, and payment back to a fresh sale.
func (s *Session) Reset() {
	fresh := NewSession()
	*s = *fresh
}

func (s *Session) find(itemID uuid.UUID) *Line {
	for _, line := range s.lines {
		if line.ItemID == itemID {
			return line
		}
	}
	return nil
}
