package ledger

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/nayyarmobile/shopdesk-backend/internal/catalog"
	"github.com/nayyarmobile/shopdesk-backend/pkg/config"
	"github.com/nayyarmobile/shopdesk-backend/pkg/db"
	"github.com/nayyarmobile/shopdesk-backend/pkg/db/models"
	"github.com/nayyarmobile/shopdesk-backend/pkg/enums"
	pkgerrors "github.com/nayyarmobile/shopdesk-backend/pkg/errors"
	"github.com/nayyarmobile/shopdesk-backend/pkg/pagination"
)

func newTestClient(t *testing.T) *db.Client {
	t.Helper()
	cfg := config.DBConfig{
		Driver: config.DriverSQLite,
		DSN:    "file:ledger_" + uuid.NewString() + "?mode=memory&cache=shared",
	}
	client, err := db.New(context.Background(), cfg, nil)
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	t.Cleanup(func() { _ = client.Close() })
	if err := client.AutoMigrate(context.Background()); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	return client
}

func newTestLedger(t *testing.T) (Service, catalog.Service, *db.Client) {
	t.Helper()
	client := newTestClient(t)
	catalogSvc, err := catalog.NewService(catalog.NewRepository(client.DB()))
	if err != nil {
		t.Fatalf("catalog service: %v", err)
	}
	svc, err := NewService(NewRepository(client.DB()), catalogSvc, client)
	if err != nil {
		t.Fatalf("ledger service: %v", err)
	}
	return svc, catalogSvc, client
}

func appendSale(t *testing.T, svc Service, client *db.Client, customer string, total int64, lines []AppendLine) *models.SaleRecord {
	t.Helper()
	if lines == nil {
		lines = []AppendLine{{
			ItemID:    uuid.New(),
			Name:      "Galaxy A15",
			Quantity:  1,
			UnitPrice: decimal.NewFromInt(total),
			LineTotal: decimal.NewFromInt(total),
		}}
	}
	var record *models.SaleRecord
	err := client.WithTx(context.Background(), func(tx *gorm.DB) error {
		var txErr error
		record, txErr = svc.Append(context.Background(), tx, AppendInput{
			CustomerName:  customer,
			CustomerPhone: "-",
			Subtotal:      decimal.NewFromInt(total),
			GrandTotal:    decimal.NewFromInt(total),
			CashTendered:  decimal.NewFromInt(total),
			Salesman:      "Nayyar",
			Lines:         lines,
		})
		return txErr
	})
	if err != nil {
		t.Fatalf("append sale: %v", err)
	}
	return record
}

func TestAppendAssignsSerialsAndInvoices(t *testing.T) {
	t.Parallel()

	svc, _, client := newTestLedger(t)

	first := appendSale(t, svc, client, "Walk-in", 100, nil)
	second := appendSale(t, svc, client, "Walk-in", 50, nil)

	if first.SerialNo != 1 || first.InvoiceNo != "INV-10001" {
		t.Fatalf("unexpected first record: serial=%d invoice=%s", first.SerialNo, first.InvoiceNo)
	}
	if second.SerialNo != 2 || second.InvoiceNo != "INV-10002" {
		t.Fatalf("unexpected second record: serial=%d invoice=%s", second.SerialNo, second.InvoiceNo)
	}
	if first.Status != enums.SaleStatusCompleted {
		t.Fatalf("status = %s, want completed", first.Status)
	}
}

func TestAppendRejectsEmptyLines(t *testing.T) {
	t.Parallel()

	svc, _, client := newTestLedger(t)

	err := client.WithTx(context.Background(), func(tx *gorm.DB) error {
		_, txErr := svc.Append(context.Background(), tx, AppendInput{})
		return txErr
	})
	if !pkgerrors.Is(err, pkgerrors.CodeEmptyCart) {
		t.Fatalf("expected EMPTY_CART, got %v", err)
	}
}

func TestMarkStatusTransitions(t *testing.T) {
	t.Parallel()

	svc, _, client := newTestLedger(t)
	record := appendSale(t, svc, client, "Walk-in", 100, nil)
	ctx := context.Background()

	voided, err := svc.MarkStatus(ctx, record.InvoiceNo, enums.SaleStatusVoid)
	if err != nil {
		t.Fatalf("mark void: %v", err)
	}
	if voided.Status != enums.SaleStatusVoid {
		t.Fatalf("status = %s, want void", voided.Status)
	}

	_, err = svc.MarkStatus(ctx, record.InvoiceNo, enums.SaleStatusReturned)
	if !pkgerrors.Is(err, pkgerrors.CodeStateConflict) {
		t.Fatalf("expected STATE_CONFLICT, got %v", err)
	}

	_, err = svc.MarkStatus(ctx, "INV-99999", enums.SaleStatusVoid)
	if !pkgerrors.Is(err, pkgerrors.CodeNotFound) {
		t.Fatalf("expected NOT_FOUND, got %v", err)
	}
}

func TestMarkReturnedRestocksCatalog(t *testing.T) {
	t.Parallel()

	svc, catalogSvc, client := newTestLedger(t)
	ctx := context.Background()

	item, err := catalogSvc.CreateItem(ctx, catalog.ItemInput{
		Name:          "Galaxy A15",
		ScanCode:      "SCAN-A15",
		Category:      enums.ItemCategoryPhones,
		UnitPrice:     decimal.NewFromInt(100),
		StockQuantity: 3,
	})
	if err != nil {
		t.Fatalf("create item: %v", err)
	}

	record := appendSale(t, svc, client, "Walk-in", 200, []AppendLine{{
		ItemID:    item.ID,
		Name:      item.Name,
		Quantity:  2,
		UnitPrice: decimal.NewFromInt(100),
		LineTotal: decimal.NewFromInt(200),
	}})

	if _, err := svc.MarkStatus(ctx, record.InvoiceNo, enums.SaleStatusReturned); err != nil {
		t.Fatalf("mark returned: %v", err)
	}

	got, err := catalogSvc.LookupByID(ctx, item.ID)
	if err != nil {
		t.Fatalf("reload item: %v", err)
	}
	if got.StockQuantity != 5 {
		t.Fatalf("stock = %d, want 5 after return", got.StockQuantity)
	}
}

func TestQueryIsLazyAndRestartable(t *testing.T) {
	t.Parallel()

	svc, _, client := newTestLedger(t)
	ctx := context.Background()
	appendSale(t, svc, client, "Ali", 100, nil)
	appendSale(t, svc, client, "Walk-in", 50, nil)

	onlyAli := func(record *models.SaleRecord) bool {
		return record.CustomerName == "Ali"
	}

	count := 0
	for record, err := range svc.Query(ctx, onlyAli) {
		if err != nil {
			t.Fatalf("query: %v", err)
		}
		if record.CustomerName != "Ali" {
			t.Fatalf("predicate leaked record: %+v", record)
		}
		count++
	}
	if count != 1 {
		t.Fatalf("matched %d records, want 1", count)
	}

	// A new append is visible to the next range over the same sequence.
	seq := svc.Query(ctx, onlyAli)
	appendSale(t, svc, client, "Ali", 75, nil)
	count = 0
	for _, err := range seq {
		if err != nil {
			t.Fatalf("restarted query: %v", err)
		}
		count++
	}
	if count != 2 {
		t.Fatalf("restarted query matched %d records, want 2", count)
	}
}

func TestListSalesPaginates(t *testing.T) {
	t.Parallel()

	svc, _, client := newTestLedger(t)
	ctx := context.Background()
	for i := 0; i < 3; i++ {
		appendSale(t, svc, client, "Walk-in", int64(100+i), nil)
	}

	first, err := svc.ListSales(ctx, Filter{}, pagination.Params{Limit: 2})
	if err != nil {
		t.Fatalf("first page: %v", err)
	}
	if len(first.Records) != 2 || first.NextCursor == "" {
		t.Fatalf("unexpected first page: %d records, cursor=%q", len(first.Records), first.NextCursor)
	}

	second, err := svc.ListSales(ctx, Filter{}, pagination.Params{Limit: 2, Cursor: first.NextCursor})
	if err != nil {
		t.Fatalf("second page: %v", err)
	}
	if len(second.Records) != 1 || second.NextCursor != "" {
		t.Fatalf("unexpected second page: %d records, cursor=%q", len(second.Records), second.NextCursor)
	}

	seen := map[string]bool{}
	for _, record := range append(first.Records, second.Records...) {
		if seen[record.InvoiceNo] {
			t.Fatalf("invoice %s appeared twice", record.InvoiceNo)
		}
		seen[record.InvoiceNo] = true
	}
}
