package controllers

import (
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/nayyarmobile/shopdesk-backend/api/responses"
	"github.com/nayyarmobile/shopdesk-backend/api/validators"
	"github.com/nayyarmobile/shopdesk-backend/internal/expenses"
	"github.com/nayyarmobile/shopdesk-backend/pkg/db/models"
	"github.com/nayyarmobile/shopdesk-backend/pkg/logger"
)

type expenseRequest struct {
	Label      string          `json:"label" validate:"required,max=120"`
	Category   string          `json:"category" validate:"max=60"`
	Amount     decimal.Decimal `json:"amount"`
	IncurredOn *time.Time      `json:"incurred_on"`
	Notes      *string         `json:"notes"`
}

type expenseResponse struct {
	ID         uuid.UUID       `json:"id"`
	Label      string          `json:"label"`
	Category   string          `json:"category"`
	Amount     decimal.Decimal `json:"amount"`
	IncurredOn time.Time       `json:"incurred_on"`
	Notes      *string         `json:"notes,omitempty"`
	CreatedAt  time.Time       `json:"created_at"`
}

func newExpenseResponse(expense *models.Expense) expenseResponse {
	return expenseResponse{
		ID:         expense.ID,
		Label:      expense.Label,
		Category:   expense.Category,
		Amount:     expense.Amount,
		IncurredOn: expense.IncurredOn,
		Notes:      expense.Notes,
		CreatedAt:  expense.CreatedAt,
	}
}

type expensesListResponse struct {
	Expenses []expenseResponse `json:"expenses"`
	Total    decimal.Decimal   `json:"total"`
}

// ExpensesList returns expenses in a date window with their total.
func ExpensesList(svc expenses.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		today := time.Now().Truncate(24 * time.Hour)
		from, err := validators.ParseQueryDate(r, "from", today)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		to, err := validators.ParseQueryDate(r, "to", from.AddDate(0, 0, 1))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		listed, err := svc.ListBetween(r.Context(), from, to)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		total, err := svc.TotalBetween(r.Context(), from, to)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		resp := expensesListResponse{Expenses: []expenseResponse{}, Total: total}
		for i := range listed {
			resp.Expenses = append(resp.Expenses, newExpenseResponse(&listed[i]))
		}
		responses.WriteSuccess(w, resp)
	}
}

// ExpensesCreate records an expense.
func ExpensesCreate(svc expenses.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req expenseRequest
		if err := validators.DecodeJSONBody(r, &req); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		input := expenses.ExpenseInput{
			Label:    req.Label,
			Category: req.Category,
			Amount:   req.Amount,
			Notes:    req.Notes,
		}
		if req.IncurredOn != nil {
			input.IncurredOn = *req.IncurredOn
		}
		expense, err := svc.RecordExpense(r.Context(), input)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, newExpenseResponse(expense))
	}
}

// ExpensesDelete removes an expense.
func ExpensesDelete(svc expenses.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := parseIDParam(r, "expenseId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		if err := svc.DeleteExpense(r.Context(), id); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, map[string]string{"status": "deleted"})
	}
}
