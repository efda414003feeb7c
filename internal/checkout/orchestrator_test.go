package checkout

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/nayyarmobile/shopdesk-backend/internal/catalog"
	"github.com/nayyarmobile/shopdesk-backend/internal/ledger"
	"github.com/nayyarmobile/shopdesk-backend/internal/notifications"
	"github.com/nayyarmobile/shopdesk-backend/pkg/config"
	"github.com/nayyarmobile/shopdesk-backend/pkg/db"
	"github.com/nayyarmobile/shopdesk-backend/pkg/db/models"
	"github.com/nayyarmobile/shopdesk-backend/pkg/enums"
	pkgerrors "github.com/nayyarmobile/shopdesk-backend/pkg/errors"
)

type testRig struct {
	orchestrator *Orchestrator
	catalogSvc   catalog.Service
	ledgerSvc    ledger.Service
	client       *db.Client
	toasts       *notifications.Center
}

func newTestRig(t *testing.T) *testRig {
	t.Helper()

	cfg := config.DBConfig{
		Driver: config.DriverSQLite,
		DSN:    "file:checkout_" + uuid.NewString() + "?mode=memory&cache=shared",
	}
	client, err := db.New(context.Background(), cfg, nil)
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	t.Cleanup(func() { _ = client.Close() })
	if err := client.AutoMigrate(context.Background()); err != nil {
		t.Fatalf("migrate: %v", err)
	}

	catalogSvc, err := catalog.NewService(catalog.NewRepository(client.DB()))
	if err != nil {
		t.Fatalf("catalog service: %v", err)
	}
	ledgerSvc, err := ledger.NewService(ledger.NewRepository(client.DB()), catalogSvc, client)
	if err != nil {
		t.Fatalf("ledger service: %v", err)
	}
	toasts := notifications.NewCenter(3 * time.Second)

	orchestrator, err := NewOrchestrator(client, catalogSvc, ledgerSvc, toasts, nil, nil, config.CheckoutConfig{
		TaxRatePercent: "18",
		ToastTTL:       3 * time.Second,
		Salesman:       "Nayyar",
	})
	if err != nil {
		t.Fatalf("orchestrator: %v", err)
	}

	return &testRig{
		orchestrator: orchestrator,
		catalogSvc:   catalogSvc,
		ledgerSvc:    ledgerSvc,
		client:       client,
		toasts:       toasts,
	}
}

func (r *testRig) seedItem(t *testing.T, name string, price int64, stock int) *models.CatalogItem {
	t.Helper()
	item, err := r.catalogSvc.CreateItem(context.Background(), catalog.ItemInput{
		Name:          name,
		Brand:         "Samsung",
		ScanCode:      "SCAN-" + name,
		Category:      enums.ItemCategoryPhones,
		UnitPrice:     decimal.NewFromInt(price),
		UnitCost:      decimal.NewFromInt(price - 10),
		StockQuantity: stock,
	})
	if err != nil {
		t.Fatalf("seed item: %v", err)
	}
	return item
}

func (r *testRig) ledgerCount(t *testing.T) int {
	t.Helper()
	count := 0
	for _, err := range r.ledgerSvc.Query(context.Background(), nil) {
		if err != nil {
			t.Fatalf("query ledger: %v", err)
		}
		count++
	}
	return count
}

func (r *testRig) stockOf(t *testing.T, id uuid.UUID) int {
	t.Helper()
	item, err := r.catalogSvc.LookupByID(context.Background(), id)
	if err != nil {
		t.Fatalf("lookup item: %v", err)
	}
	return item.StockQuantity
}

func TestCommitHappyPath(t *testing.T) {
	t.Parallel()

	rig := newTestRig(t)
	ctx := context.Background()
	item := rig.seedItem(t, "A", 100, 5)

	if err := rig.orchestrator.OpenSession(ctx); err != nil {
		t.Fatalf("open session: %v", err)
	}
	if err := rig.orchestrator.AddItemByID(ctx, item.ID); err != nil {
		t.Fatalf("add item: %v", err)
	}
	if err := rig.orchestrator.SetPayment(decimal.NewFromInt(100), decimal.Zero); err != nil {
		t.Fatalf("set payment: %v", err)
	}

	record, err := rig.orchestrator.RequestCommit(ctx)
	if err != nil {
		t.Fatalf("commit: %v", err)
	}
	if !record.GrandTotal.Equal(decimal.NewFromInt(100)) {
		t.Fatalf("grand total = %s, want 100", record.GrandTotal)
	}
	if !record.ChangeDue.Equal(decimal.Zero) {
		t.Fatalf("change due = %s, want 0", record.ChangeDue)
	}
	if !record.Subtotal.Equal(decimal.NewFromInt(100)) {
		t.Fatalf("subtotal = %s, want 100", record.Subtotal)
	}
	if record.Salesman != "Nayyar" {
		t.Fatalf("salesman = %s, want Nayyar", record.Salesman)
	}
	if got := rig.stockOf(t, item.ID); got != 4 {
		t.Fatalf("stock = %d, want 4", got)
	}
	if got := rig.ledgerCount(t); got != 1 {
		t.Fatalf("ledger records = %d, want 1", got)
	}
	if got := rig.orchestrator.State(); got != StateIdle {
		t.Fatalf("state = %s, want idle after commit", got)
	}
}

func TestCommitTaxOn(t *testing.T) {
	t.Parallel()

	rig := newTestRig(t)
	ctx := context.Background()
	item := rig.seedItem(t, "C", 200, 5)

	if err := rig.orchestrator.OpenSession(ctx); err != nil {
		t.Fatalf("open session: %v", err)
	}
	if err := rig.orchestrator.AddItemByID(ctx, item.ID); err != nil {
		t.Fatalf("add item: %v", err)
	}
	if err := rig.orchestrator.SetTaxEnabled(true); err != nil {
		t.Fatalf("enable tax: %v", err)
	}
	if err := rig.orchestrator.SetPayment(decimal.NewFromInt(236), decimal.Zero); err != nil {
		t.Fatalf("set payment: %v", err)
	}

	record, err := rig.orchestrator.RequestCommit(ctx)
	if err != nil {
		t.Fatalf("commit: %v", err)
	}
	if !record.TaxAmount.Equal(decimal.NewFromInt(36)) {
		t.Fatalf("tax = %s, want 36", record.TaxAmount)
	}
	if !record.GrandTotal.Equal(decimal.NewFromInt(236)) {
		t.Fatalf("grand total = %s, want 236", record.GrandTotal)
	}
}

func TestCommitEmptyCart(t *testing.T) {
	t.Parallel()

	rig := newTestRig(t)
	ctx := context.Background()

	if err := rig.orchestrator.OpenSession(ctx); err != nil {
		t.Fatalf("open session: %v", err)
	}
	_, err := rig.orchestrator.RequestCommit(ctx)
	if !pkgerrors.Is(err, pkgerrors.CodeEmptyCart) {
		t.Fatalf("expected EMPTY_CART, got %v", err)
	}
	if got := rig.orchestrator.State(); got != StateSessionOpen {
		t.Fatalf("state = %s, want session to stay open", got)
	}
}

func TestCommitInsufficientPayment(t *testing.T) {
	t.Parallel()

	rig := newTestRig(t)
	ctx := context.Background()
	item := rig.seedItem(t, "A", 50, 5)

	if err := rig.orchestrator.OpenSession(ctx); err != nil {
		t.Fatalf("open session: %v", err)
	}
	if err := rig.orchestrator.AddItemByID(ctx, item.ID); err != nil {
		t.Fatalf("add item: %v", err)
	}
	if err := rig.orchestrator.SetPayment(decimal.NewFromInt(20), decimal.NewFromInt(10)); err != nil {
		t.Fatalf("set payment: %v", err)
	}

	_, err := rig.orchestrator.RequestCommit(ctx)
	if !pkgerrors.Is(err, pkgerrors.CodeInsufficientPayment) {
		t.Fatalf("expected INSUFFICIENT_PAYMENT, got %v", err)
	}
	if got := rig.stockOf(t, item.ID); got != 5 {
		t.Fatalf("stock = %d, want untouched 5", got)
	}
	if got := rig.ledgerCount(t); got != 0 {
		t.Fatalf("ledger records = %d, want 0", got)
	}
}

func TestCommitRollsBackWhenStockChanges(t *testing.T) {
	t.Parallel()

	rig := newTestRig(t)
	ctx := context.Background()
	first := rig.seedItem(t, "A", 100, 5)
	second := rig.seedItem(t, "B", 50, 2)

	if err := rig.orchestrator.OpenSession(ctx); err != nil {
		t.Fatalf("open session: %v", err)
	}
	if err := rig.orchestrator.AddItemByID(ctx, first.ID); err != nil {
		t.Fatalf("add first: %v", err)
	}
	if err := rig.orchestrator.AddItemByID(ctx, second.ID); err != nil {
		t.Fatalf("add second: %v", err)
	}
	if err := rig.orchestrator.ChangeQuantity(ctx, second.ID, 2); err != nil {
		t.Fatalf("bump second: %v", err)
	}
	if err := rig.orchestrator.SetPayment(decimal.NewFromInt(500), decimal.Zero); err != nil {
		t.Fatalf("set payment: %v", err)
	}

	// Another terminal sells item B out from under the open session.
	if err := rig.client.DB().Model(&models.CatalogItem{}).
		Where("id = ?", second.ID).
		Update("stock_quantity", 1).Error; err != nil {
		t.Fatalf("shrink stock: %v", err)
	}

	_, err := rig.orchestrator.RequestCommit(ctx)
	if !pkgerrors.Is(err, pkgerrors.CodeInsufficientStock) {
		t.Fatalf("expected INSUFFICIENT_STOCK, got %v", err)
	}
	if got := rig.stockOf(t, first.ID); got != 5 {
		t.Fatalf("first stock = %d, want rolled back 5", got)
	}
	if got := rig.stockOf(t, second.ID); got != 1 {
		t.Fatalf("second stock = %d, want 1", got)
	}
	if got := rig.ledgerCount(t); got != 0 {
		t.Fatalf("ledger records = %d, want 0", got)
	}
	if got := rig.orchestrator.State(); got != StateSessionOpen {
		t.Fatalf("state = %s, want session to stay open", got)
	}

	// Session state survives the failed commit; fixing the cart lets the
	// cashier retry.
	if err := rig.orchestrator.ChangeQuantity(ctx, second.ID, 1); err != nil {
		t.Fatalf("shrink line: %v", err)
	}
	snapshot, err := rig.orchestrator.Snapshot()
	if err != nil {
		t.Fatalf("snapshot: %v", err)
	}
	if len(snapshot.Lines) != 2 {
		t.Fatalf("lines = %d, want staged 2", len(snapshot.Lines))
	}
	if _, err := rig.orchestrator.RequestCommit(ctx); err != nil {
		t.Fatalf("retry commit: %v", err)
	}
}

func TestChangeQuantityTracksLiveStock(t *testing.T) {
	t.Parallel()

	rig := newTestRig(t)
	ctx := context.Background()
	item := rig.seedItem(t, "A", 100, 2)

	if err := rig.orchestrator.OpenSession(ctx); err != nil {
		t.Fatalf("open session: %v", err)
	}
	if err := rig.orchestrator.AddItemByID(ctx, item.ID); err != nil {
		t.Fatalf("add item: %v", err)
	}

	// A restock lands while the session is open; the clamp follows it.
	if _, err := rig.catalogSvc.Restock(ctx, item.ID, 8); err != nil {
		t.Fatalf("restock: %v", err)
	}
	if err := rig.orchestrator.ChangeQuantity(ctx, item.ID, 7); err != nil {
		t.Fatalf("change quantity: %v", err)
	}
	snapshot, err := rig.orchestrator.Snapshot()
	if err != nil {
		t.Fatalf("snapshot: %v", err)
	}
	if got := snapshot.Lines[0].Quantity; got != 7 {
		t.Fatalf("quantity = %d, want 7 after restock", got)
	}

	// Stock shrinking on another terminal tightens the clamp the same way.
	if err := rig.client.DB().Model(&models.CatalogItem{}).
		Where("id = ?", item.ID).
		Update("stock_quantity", 3).Error; err != nil {
		t.Fatalf("shrink stock: %v", err)
	}
	if err := rig.orchestrator.ChangeQuantity(ctx, item.ID, 8); err != nil {
		t.Fatalf("change quantity: %v", err)
	}
	snapshot, err = rig.orchestrator.Snapshot()
	if err != nil {
		t.Fatalf("snapshot: %v", err)
	}
	if got := snapshot.Lines[0].Quantity; got != 3 {
		t.Fatalf("quantity = %d, want clamped 3", got)
	}
}

func TestSessionLifecycleGuards(t *testing.T) {
	t.Parallel()

	rig := newTestRig(t)
	ctx := context.Background()

	if err := rig.orchestrator.AbortSession(ctx); !pkgerrors.Is(err, pkgerrors.CodeStateConflict) {
		t.Fatalf("expected STATE_CONFLICT aborting idle, got %v", err)
	}
	if err := rig.orchestrator.OpenSession(ctx); err != nil {
		t.Fatalf("open session: %v", err)
	}
	if err := rig.orchestrator.OpenSession(ctx); !pkgerrors.Is(err, pkgerrors.CodeStateConflict) {
		t.Fatalf("expected STATE_CONFLICT on second open, got %v", err)
	}
	if err := rig.orchestrator.AbortSession(ctx); err != nil {
		t.Fatalf("abort: %v", err)
	}
	if got := rig.orchestrator.State(); got != StateIdle {
		t.Fatalf("state = %s, want idle after abort", got)
	}
}

func TestAddItemByScanCodeUnknownToasts(t *testing.T) {
	t.Parallel()

	rig := newTestRig(t)
	ctx := context.Background()

	if err := rig.orchestrator.OpenSession(ctx); err != nil {
		t.Fatalf("open session: %v", err)
	}
	err := rig.orchestrator.AddItemByScanCode(ctx, "SCAN-GHOST")
	if !pkgerrors.Is(err, pkgerrors.CodeScanNotFound) {
		t.Fatalf("expected SCAN_NOT_FOUND, got %v", err)
	}

	toasts := rig.toasts.Active()
	found := false
	for _, toast := range toasts {
		if toast.Level == notifications.LevelError && strings.Contains(toast.Message, "SCAN-GHOST") {
			found = true
		}
	}
	if !found {
		t.Fatalf("expected scan toast, got %+v", toasts)
	}
}

func TestSnapshotWhileIdle(t *testing.T) {
	t.Parallel()

	rig := newTestRig(t)
	snapshot, err := rig.orchestrator.Snapshot()
	if err != nil {
		t.Fatalf("snapshot: %v", err)
	}
	if snapshot.State != StateIdle || len(snapshot.Lines) != 0 {
		t.Fatalf("unexpected idle snapshot: %+v", snapshot)
	}
}
