package expenses

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/nayyarmobile/shopdesk-backend/pkg/db/models"
	pkgerrors "github.com/nayyarmobile/shopdesk-backend/pkg/errors"
)

func newTestService(t *testing.T) Service {
	t.Helper()
	dsn := "file:expenses_" + uuid.NewString() + "?mode=memory&cache=shared"
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	if err := db.AutoMigrate(&models.Expense{}); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	svc, err := NewService(NewRepository(db))
	if err != nil {
		t.Fatalf("new service: %v", err)
	}
	return svc
}

func TestRecordExpenseValidation(t *testing.T) {
	t.Parallel()

	svc := newTestService(t)
	ctx := context.Background()

	_, err := svc.RecordExpense(ctx, ExpenseInput{Amount: decimal.NewFromInt(100)})
	if !pkgerrors.Is(err, pkgerrors.CodeValidation) {
		t.Fatalf("expected VALIDATION_ERROR for blank label, got %v", err)
	}

	_, err = svc.RecordExpense(ctx, ExpenseInput{Label: "Rent", Amount: decimal.Zero})
	if !pkgerrors.Is(err, pkgerrors.CodeValidation) {
		t.Fatalf("expected VALIDATION_ERROR for zero amount, got %v", err)
	}
}

func TestExpenseTotalsByWindow(t *testing.T) {
	t.Parallel()

	svc := newTestService(t)
	ctx := context.Background()
	day := time.Date(2026, 8, 20, 0, 0, 0, 0, time.UTC)

	for _, exp := range []ExpenseInput{
		{Label: "Rent", Category: "Shop", Amount: decimal.NewFromInt(30000), IncurredOn: day.Add(2 * time.Hour)},
		{Label: "Tea", Category: "Misc", Amount: decimal.NewFromInt(500), IncurredOn: day.Add(5 * time.Hour)},
		{Label: "Stock run", Category: "Inventory", Amount: decimal.NewFromInt(12000), IncurredOn: day.AddDate(0, 0, 1)},
	} {
		if _, err := svc.RecordExpense(ctx, exp); err != nil {
			t.Fatalf("record %s: %v", exp.Label, err)
		}
	}

	total, err := svc.TotalBetween(ctx, day, day.AddDate(0, 0, 1))
	if err != nil {
		t.Fatalf("total: %v", err)
	}
	if !total.Equal(decimal.NewFromInt(30500)) {
		t.Fatalf("total = %s, want 30500", total)
	}

	listed, err := svc.ListBetween(ctx, day, day.AddDate(0, 0, 2))
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(listed) != 3 {
		t.Fatalf("listed %d expenses, want 3", len(listed))
	}
}

func TestDeleteExpense(t *testing.T) {
	t.Parallel()

	svc := newTestService(t)
	ctx := context.Background()

	expense, err := svc.RecordExpense(ctx, ExpenseInput{Label: "Rent", Amount: decimal.NewFromInt(100)})
	if err != nil {
		t.Fatalf("record: %v", err)
	}
	if err := svc.DeleteExpense(ctx, expense.ID); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if err := svc.DeleteExpense(ctx, expense.ID); !pkgerrors.Is(err, pkgerrors.CodeNotFound) {
		t.Fatalf("expected NOT_FOUND on second delete, got %v", err)
	}
}
