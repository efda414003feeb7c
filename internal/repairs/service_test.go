package repairs

import (
	"context"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/nayyarmobile/shopdesk-backend/pkg/db/models"
	"github.com/nayyarmobile/shopdesk-backend/pkg/enums"
	pkgerrors "github.com/nayyarmobile/shopdesk-backend/pkg/errors"
	"github.com/nayyarmobile/shopdesk-backend/pkg/pagination"
)

func newTestService(t *testing.T) Service {
	t.Helper()
	dsn := "file:repairs_" + uuid.NewString() + "?mode=memory&cache=shared"
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	if err := db.AutoMigrate(&models.RepairTicket{}); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	svc, err := NewService(NewRepository(db))
	if err != nil {
		t.Fatalf("new service: %v", err)
	}
	return svc
}

func validInput() TicketInput {
	return TicketInput{
		CustomerName: "Ali",
		Device:       "Galaxy A15",
		Problem:      "Cracked screen",
		Technician:   "Imran",
		Charges:      decimal.NewFromInt(4500),
	}
}

func TestCreateTicketAssignsReference(t *testing.T) {
	t.Parallel()

	svc := newTestService(t)
	ticket, err := svc.CreateTicket(context.Background(), validInput())
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if !strings.HasPrefix(ticket.Reference, "REP-") {
		t.Fatalf("reference = %q, want REP- prefix", ticket.Reference)
	}
	if ticket.Status != enums.RepairStatusPending {
		t.Fatalf("status = %s, want Pending", ticket.Status)
	}
}

func TestCreateTicketValidation(t *testing.T) {
	t.Parallel()

	svc := newTestService(t)
	ctx := context.Background()

	bad := validInput()
	bad.CustomerName = " "
	if _, err := svc.CreateTicket(ctx, bad); !pkgerrors.Is(err, pkgerrors.CodeValidation) {
		t.Fatalf("expected VALIDATION_ERROR, got %v", err)
	}

	bad = validInput()
	bad.Charges = decimal.NewFromInt(-1)
	if _, err := svc.CreateTicket(ctx, bad); !pkgerrors.Is(err, pkgerrors.CodeValidation) {
		t.Fatalf("expected VALIDATION_ERROR for charges, got %v", err)
	}
}

func TestAdvanceStatusForwardOnly(t *testing.T) {
	t.Parallel()

	svc := newTestService(t)
	ctx := context.Background()
	ticket, err := svc.CreateTicket(ctx, validInput())
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	ticket, err = svc.AdvanceStatus(ctx, ticket.ID, enums.RepairStatusInProgress)
	if err != nil {
		t.Fatalf("advance to in progress: %v", err)
	}
	ticket, err = svc.AdvanceStatus(ctx, ticket.ID, enums.RepairStatusCompleted)
	if err != nil {
		t.Fatalf("advance to completed: %v", err)
	}

	_, err = svc.AdvanceStatus(ctx, ticket.ID, enums.RepairStatusPending)
	if !pkgerrors.Is(err, pkgerrors.CodeStateConflict) {
		t.Fatalf("expected STATE_CONFLICT going backwards, got %v", err)
	}
}

func TestListTicketsFiltersAndCounts(t *testing.T) {
	t.Parallel()

	svc := newTestService(t)
	ctx := context.Background()

	first, err := svc.CreateTicket(ctx, validInput())
	if err != nil {
		t.Fatalf("create first: %v", err)
	}
	other := validInput()
	other.CustomerName = "Sana"
	other.Device = "Redmi 13C"
	if _, err := svc.CreateTicket(ctx, other); err != nil {
		t.Fatalf("create second: %v", err)
	}
	if _, err := svc.AdvanceStatus(ctx, first.ID, enums.RepairStatusInProgress); err != nil {
		t.Fatalf("advance: %v", err)
	}

	pending := enums.RepairStatusPending
	result, err := svc.ListTickets(ctx, Filter{Status: &pending}, pagination.Params{})
	if err != nil {
		t.Fatalf("list pending: %v", err)
	}
	if len(result.Tickets) != 1 || result.Tickets[0].CustomerName != "Sana" {
		t.Fatalf("unexpected pending listing: %+v", result.Tickets)
	}

	result, err = svc.ListTickets(ctx, Filter{Search: "redmi"}, pagination.Params{})
	if err != nil {
		t.Fatalf("list by search: %v", err)
	}
	if len(result.Tickets) != 1 {
		t.Fatalf("search matched %d tickets, want 1", len(result.Tickets))
	}

	count, err := svc.PendingCount(ctx)
	if err != nil {
		t.Fatalf("pending count: %v", err)
	}
	if count != 1 {
		t.Fatalf("pending count = %d, want 1", count)
	}
}
