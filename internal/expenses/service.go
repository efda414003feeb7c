package expenses

import (
	"context"
	stdErrors "errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/nayyarmobile/shopdesk-backend/pkg/db/models"
	pkgerrors "github.com/nayyarmobile/shopdesk-backend/pkg/errors"
)

// ExpenseInput carries the writable fields of an expense.
type ExpenseInput struct {
	Label      string          `json:"label"`
	Category   string          `json:"category"`
	Amount     decimal.Decimal `json:"amount"`
	IncurredOn time.Time       `json:"incurred_on"`
	Notes      *string         `json:"notes"`
}

// Service exposes expense tracking for the back office.
type Service interface {
	RecordExpense(ctx context.Context, input ExpenseInput) (*models.Expense, error)
	DeleteExpense(ctx context.Context, id uuid.UUID) error
	ListBetween(ctx context.Context, from, to time.Time) ([]models.Expense, error)
	TotalBetween(ctx context.Context, from, to time.Time) (decimal.Decimal, error)
}

type service struct {
	repo Repository
}

// NewService wires an expense service with the provided repository.
func NewService(repo Repository) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("expenses repository required")
	}
	return &service{repo: repo}, nil
}

func (s *service) RecordExpense(ctx context.Context, input ExpenseInput) (*models.Expense, error) {
	if strings.TrimSpace(input.Label) == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "expense label is required")
	}
	if !input.Amount.IsPositive() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "expense amount must be positive")
	}
	incurredOn := input.IncurredOn
	if incurredOn.IsZero() {
		incurredOn = time.Now()
	}
	expense := &models.Expense{
		Label:      strings.TrimSpace(input.Label),
		Category:   strings.TrimSpace(input.Category),
		Amount:     input.Amount,
		IncurredOn: incurredOn,
		Notes:      input.Notes,
	}
	if err := s.repo.Create(ctx, expense); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "record expense")
	}
	return expense, nil
}

func (s *service) DeleteExpense(ctx context.Context, id uuid.UUID) error {
	if _, err := s.repo.FindByID(ctx, id); err != nil {
		if stdErrors.Is(err, gorm.ErrRecordNotFound) {
			return pkgerrors.New(pkgerrors.CodeNotFound, "expense not found").
				WithDetails(map[string]string{"expense_id": id.String()})
		}
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "load expense")
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "delete expense")
	}
	return nil
}

func (s *service) ListBetween(ctx context.Context, from, to time.Time) ([]models.Expense, error) {
	expenses, err := s.repo.ListBetween(ctx, from, to)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "list expenses")
	}
	return expenses, nil
}

func (s *service) TotalBetween(ctx context.Context, from, to time.Time) (decimal.Decimal, error) {
	total, err := s.repo.SumBetween(ctx, from, to)
	if err != nil {
		return decimal.Zero, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "sum expenses")
	}
	return total, nil
}
