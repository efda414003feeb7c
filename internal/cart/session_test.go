package cart

import (
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/nayyarmobile/shopdesk-backend/pkg/db/models"
	"github.com/nayyarmobile/shopdesk-backend/pkg/enums"
	pkgerrors "github.com/nayyarmobile/shopdesk-backend/pkg/errors"
)

func testItem(name string, price int64, stock int) *models.CatalogItem {
	return &models.CatalogItem{
		ID:            uuid.New(),
		Name:          name,
		Brand:         "Samsung",
		ScanCode:      "SCAN-" + name,
		Category:      enums.ItemCategoryPhones,
		UnitPrice:     decimal.NewFromInt(price),
		StockQuantity: stock,
	}
}

func TestSessionDefaults(t *testing.T) {
	t.Parallel()

	session := NewSession()
	settings := session.Settings()
	if settings.CustomerName != DefaultCustomerName || settings.CustomerPhone != DefaultCustomerPhone {
		t.Fatalf("unexpected defaults: %+v", settings)
	}
	if !session.IsEmpty() {
		t.Fatal("new session should be empty")
	}
}

func TestSessionAddItemMergesLines(t *testing.T) {
	t.Parallel()

	session := NewSession()
	item := testItem("A15", 100, 3)

	for i := 0; i < 3; i++ {
		if err := session.AddItem(item); err != nil {
			t.Fatalf("add %d: %v", i, err)
		}
	}
	lines := session.Lines()
	if len(lines) != 1 || lines[0].Quantity != 3 {
		t.Fatalf("unexpected lines: %+v", lines)
	}

	err := session.AddItem(item)
	if !pkgerrors.Is(err, pkgerrors.CodeStockLimitReached) {
		t.Fatalf("expected STOCK_LIMIT_REACHED, got %v", err)
	}
}

func TestSessionAddItemOutOfStock(t *testing.T) {
	t.Parallel()

	session := NewSession()
	err := session.AddItem(testItem("A15", 100, 0))
	if !pkgerrors.Is(err, pkgerrors.CodeOutOfStock) {
		t.Fatalf("expected OUT_OF_STOCK, got %v", err)
	}
}

func TestSessionChangeQuantityClamps(t *testing.T) {
	t.Parallel()

	session := NewSession()
	item := testItem("A15", 100, 4)
	if err := session.AddItem(item); err != nil {
		t.Fatalf("add: %v", err)
	}

	if err := session.ChangeQuantity(item.ID, 99); err != nil {
		t.Fatalf("clamp high: %v", err)
	}
	if got := session.Lines()[0].Quantity; got != 4 {
		t.Fatalf("quantity = %d, want clamped 4", got)
	}

	if err := session.ChangeQuantity(item.ID, 0); err != nil {
		t.Fatalf("clamp low: %v", err)
	}
	if got := session.Lines()[0].Quantity; got != 1 {
		t.Fatalf("quantity = %d, want clamped 1", got)
	}

	err := session.ChangeQuantity(uuid.New(), 2)
	if !pkgerrors.Is(err, pkgerrors.CodeNotFound) {
		t.Fatalf("expected NOT_FOUND, got %v", err)
	}
}

func TestSessionStockCapFollowsFreshReads(t *testing.T) {
	t.Parallel()

	session := NewSession()
	item := testItem("A15", 100, 2)
	if err := session.AddItem(item); err != nil {
		t.Fatalf("add: %v", err)
	}

	session.RefreshStockCap(item.ID, 10)
	if err := session.ChangeQuantity(item.ID, 7); err != nil {
		t.Fatalf("change quantity: %v", err)
	}
	if got := session.Lines()[0].Quantity; got != 7 {
		t.Fatalf("quantity = %d, want 7 with refreshed cap", got)
	}

	// Re-adding the same item carries the latest stock into the line too.
	item.StockQuantity = 8
	if err := session.AddItem(item); err != nil {
		t.Fatalf("re-add: %v", err)
	}
	line := session.Lines()[0]
	if line.Quantity != 8 || line.StockCap != 8 {
		t.Fatalf("line = %+v, want quantity 8 at cap 8", line)
	}
	if err := session.AddItem(item); !pkgerrors.Is(err, pkgerrors.CodeStockLimitReached) {
		t.Fatalf("expected STOCK_LIMIT_REACHED at refreshed cap, got %v", err)
	}

	// Unknown items are ignored.
	session.RefreshStockCap(uuid.New(), 99)
	if got := session.Lines()[0].StockCap; got != 8 {
		t.Fatalf("cap = %d, want untouched 8", got)
	}
}

func TestSessionRemoveLineKeepsOrder(t *testing.T) {
	t.Parallel()

	session := NewSession()
	first := testItem("A15", 100, 5)
	second := testItem("13C", 80, 5)
	third := testItem("Case", 10, 5)
	for _, item := range []*models.CatalogItem{first, second, third} {
		if err := session.AddItem(item); err != nil {
			t.Fatalf("add: %v", err)
		}
	}

	if err := session.RemoveLine(second.ID); err != nil {
		t.Fatalf("remove: %v", err)
	}
	lines := session.Lines()
	if len(lines) != 2 || lines[0].ItemID != first.ID || lines[1].ItemID != third.ID {
		t.Fatalf("unexpected order after remove: %+v", lines)
	}
}

func TestSessionLineDiscountBounds(t *testing.T) {
	t.Parallel()

	session := NewSession()
	item := testItem("A15", 100, 5)
	if err := session.AddItem(item); err != nil {
		t.Fatalf("add: %v", err)
	}
	if err := session.ChangeQuantity(item.ID, 2); err != nil {
		t.Fatalf("set quantity: %v", err)
	}

	if err := session.SetLineDiscount(item.ID, decimal.NewFromInt(200)); err != nil {
		t.Fatalf("discount at subtotal should pass: %v", err)
	}

	err := session.SetLineDiscount(item.ID, decimal.NewFromInt(201))
	if !pkgerrors.Is(err, pkgerrors.CodeValidation) {
		t.Fatalf("expected VALIDATION_ERROR, got %v", err)
	}

	err = session.SetLineDiscount(item.ID, decimal.NewFromInt(-1))
	if !pkgerrors.Is(err, pkgerrors.CodeValidation) {
		t.Fatalf("expected VALIDATION_ERROR for negative, got %v", err)
	}
}

func TestSessionBreakdownAndChange(t *testing.T) {
	t.Parallel()

	session := NewSession()
	item := testItem("C", 200, 5)
	if err := session.AddItem(item); err != nil {
		t.Fatalf("add: %v", err)
	}
	session.SetTaxEnabled(true)
	if err := session.SetPayment(decimal.NewFromInt(250), decimal.Zero); err != nil {
		t.Fatalf("set payment: %v", err)
	}

	taxRate := decimal.RequireFromString("0.18")
	breakdown := session.Breakdown(taxRate)
	if !breakdown.TaxAmount.Equal(decimal.NewFromInt(36)) {
		t.Fatalf("tax = %s, want 36", breakdown.TaxAmount)
	}
	if !breakdown.GrandTotal.Equal(decimal.NewFromInt(236)) {
		t.Fatalf("grand total = %s, want 236", breakdown.GrandTotal)
	}
	if change := session.ChangeDue(taxRate); !change.Equal(decimal.NewFromInt(14)) {
		t.Fatalf("change = %s, want 14", change)
	}
}

func TestSessionCustomerDefaultsOnBlank(t *testing.T) {
	t.Parallel()

	session := NewSession()
	session.SetCustomer("  ", "")
	settings := session.Settings()
	if settings.CustomerName != DefaultCustomerName || settings.CustomerPhone != DefaultCustomerPhone {
		t.Fatalf("unexpected customer: %+v", settings)
	}

	session.SetCustomer("Ali", "0300-1234567")
	settings = session.Settings()
	if settings.CustomerName != "Ali" || settings.CustomerPhone != "0300-1234567" {
		t.Fatalf("unexpected customer: %+v", settings)
	}
}

func TestSessionReset(t *testing.T) {
	t.Parallel()

	session := NewSession()
	if err := session.AddItem(testItem("A15", 100, 5)); err != nil {
		t.Fatalf("add: %v", err)
	}
	session.SetTaxEnabled(true)
	if err := session.SetGlobalDiscount(decimal.NewFromInt(10)); err != nil {
		t.Fatalf("set discount: %v", err)
	}

	session.Reset()
	if !session.IsEmpty() {
		t.Fatal("reset should clear lines")
	}
	settings := session.Settings()
	if settings.TaxEnabled || !settings.GlobalDiscount.Equal(decimal.Zero) {
		t.Fatalf("reset should clear settings: %+v", settings)
	}
	if settings.CustomerName != DefaultCustomerName {
		t.Fatalf("reset should restore defaults: %+v", settings)
	}
}
