package repairs

import (
	"context"
	stdErrors "errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/nayyarmobile/shopdesk-backend/pkg/db/models"
	"github.com/nayyarmobile/shopdesk-backend/pkg/enums"
	pkgerrors "github.com/nayyarmobile/shopdesk-backend/pkg/errors"
	"github.com/nayyarmobile/shopdesk-backend/pkg/pagination"
)

// TicketInput carries the writable fields of a repair ticket.
type TicketInput struct {
	CustomerName string          `json:"customer_name"`
	Device       string          `json:"device"`
	Problem      string          `json:"problem"`
	Technician   string          `json:"technician"`
	Charges      decimal.Decimal `json:"charges"`
}

// ListResult is one page of tickets plus the cursor for the next.
type ListResult struct {
	Tickets    []models.RepairTicket
	NextCursor string
}

// Service exposes the repair queue for the back office.
type Service interface {
	CreateTicket(ctx context.Context, input TicketInput) (*models.RepairTicket, error)
	UpdateTicket(ctx context.Context, id uuid.UUID, input TicketInput) (*models.RepairTicket, error)
	AdvanceStatus(ctx context.Context, id uuid.UUID, status enums.RepairStatus) (*models.RepairTicket, error)
	GetTicket(ctx context.Context, id uuid.UUID) (*models.RepairTicket, error)
	ListTickets(ctx context.Context, filter Filter, page pagination.Params) (*ListResult, error)
	PendingCount(ctx context.Context) (int64, error)
}

type service struct {
	repo Repository
}

// NewService wires a repairs service with the provided repository.
func NewService(repo Repository) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("repairs repository required")
	}
	return &service{repo: repo}, nil
}

func (s *service) CreateTicket(ctx context.Context, input TicketInput) (*models.RepairTicket, error) {
	if err := validateTicketInput(input); err != nil {
		return nil, err
	}
	ticket := &models.RepairTicket{
		Reference:    newReference(),
		CustomerName: strings.TrimSpace(input.CustomerName),
		Device:       strings.TrimSpace(input.Device),
		Problem:      strings.TrimSpace(input.Problem),
		Technician:   strings.TrimSpace(input.Technician),
		Charges:      input.Charges,
		Status:       enums.RepairStatusPending,
	}
	if err := s.repo.Create(ctx, ticket); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "create repair ticket")
	}
	return ticket, nil
}

func (s *service) UpdateTicket(ctx context.Context, id uuid.UUID, input TicketInput) (*models.RepairTicket, error) {
	if err := validateTicketInput(input); err != nil {
		return nil, err
	}
	ticket, err := s.GetTicket(ctx, id)
	if err != nil {
		return nil, err
	}
	ticket.CustomerName = strings.TrimSpace(input.CustomerName)
	ticket.Device = strings.TrimSpace(input.Device)
	ticket.Problem = strings.TrimSpace(input.Problem)
	ticket.Technician = strings.TrimSpace(input.Technician)
	ticket.Charges = input.Charges
	if err := s.repo.Update(ctx, ticket); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "update repair ticket")
	}
	return ticket, nil
}

// AdvanceStatus moves a ticket forward through the queue. Tickets never move
// backwards and completed tickets are final.
func (s *service) AdvanceStatus(ctx context.Context, id uuid.UUID, status enums.RepairStatus) (*models.RepairTicket, error) {
	if !status.IsValid() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, fmt.Sprintf("invalid repair status %q", status))
	}
	ticket, err := s.GetTicket(ctx, id)
	if err != nil {
		return nil, err
	}
	if !canAdvance(ticket.Status, status) {
		return nil, pkgerrors.New(pkgerrors.CodeStateConflict, "repair status transition disallowed").
			WithDetails(map[string]string{"from": ticket.Status.String(), "to": status.String()})
	}
	ticket.Status = status
	if err := s.repo.Update(ctx, ticket); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "advance repair status")
	}
	return ticket, nil
}

func (s *service) GetTicket(ctx context.Context, id uuid.UUID) (*models.RepairTicket, error) {
	if id == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "ticket id is required")
	}
	ticket, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if stdErrors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "repair ticket not found").
				WithDetails(map[string]string{"ticket_id": id.String()})
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "load repair ticket")
	}
	return ticket, nil
}

func (s *service) ListTickets(ctx context.Context, filter Filter, page pagination.Params) (*ListResult, error) {
	tickets, err := s.repo.List(ctx, filter, page)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "list repair tickets")
	}

	limit := pagination.NormalizeLimit(page.Limit)
	result := &ListResult{Tickets: tickets}
	if len(tickets) > limit {
		result.Tickets = tickets[:limit]
		last := result.Tickets[limit-1]
		result.NextCursor = pagination.EncodeCursor(pagination.Cursor{
			CreatedAt: last.CreatedAt,
			ID:        last.ID,
		})
	}
	return result, nil
}

func (s *service) PendingCount(ctx context.Context) (int64, error) {
	count, err := s.repo.CountByStatus(ctx, enums.RepairStatusPending)
	if err != nil {
		return 0, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "count pending repairs")
	}
	return count, nil
}

func canAdvance(from, to enums.RepairStatus) bool {
	switch from {
	case enums.RepairStatusPending:
		return to == enums.RepairStatusInProgress || to == enums.RepairStatusCompleted
	case enums.RepairStatusInProgress:
		return to == enums.RepairStatusCompleted
	default:
		return false
	}
}

func newReference() string {
	return "REP-" + strings.ToUpper(uuid.NewString()[:8])
}

func validateTicketInput(input TicketInput) error {
	if strings.TrimSpace(input.CustomerName) == "" {
		return pkgerrors.New(pkgerrors.CodeValidation, "customer name is required")
	}
	if strings.TrimSpace(input.Device) == "" {
		return pkgerrors.New(pkgerrors.CodeValidation, "device is required")
	}
	if strings.TrimSpace(input.Problem) == "" {
		return pkgerrors.New(pkgerrors.CodeValidation, "problem description is required")
	}
	if input.Charges.IsNegative() {
		return pkgerrors.New(pkgerrors.CodeValidation, "charges cannot be negative")
	}
	return nil
}
