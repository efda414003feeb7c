package controllers

import (
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/nayyarmobile/shopdesk-backend/api/responses"
	"github.com/nayyarmobile/shopdesk-backend/api/validators"
	"github.com/nayyarmobile/shopdesk-backend/internal/repairs"
	"github.com/nayyarmobile/shopdesk-backend/pkg/db/models"
	"github.com/nayyarmobile/shopdesk-backend/pkg/enums"
	pkgerrors "github.com/nayyarmobile/shopdesk-backend/pkg/errors"
	"github.com/nayyarmobile/shopdesk-backend/pkg/logger"
	"github.com/nayyarmobile/shopdesk-backend/pkg/pagination"
)

type repairTicketRequest struct {
	CustomerName string          `json:"customer_name" validate:"required,max=120"`
	Device       string          `json:"device" validate:"required,max=120"`
	Problem      string          `json:"problem" validate:"required,max=500"`
	Technician   string          `json:"technician" validate:"max=120"`
	Charges      decimal.Decimal `json:"charges"`
}

func (req repairTicketRequest) toInput() repairs.TicketInput {
	return repairs.TicketInput{
		CustomerName: req.CustomerName,
		Device:       req.Device,
		Problem:      req.Problem,
		Technician:   req.Technician,
		Charges:      req.Charges,
	}
}

type ticketResponse struct {
	ID           uuid.UUID          `json:"id"`
	Reference    string             `json:"reference"`
	CustomerName string             `json:"customer_name"`
	Device       string             `json:"device"`
	Problem      string             `json:"problem"`
	Technician   string             `json:"technician"`
	Charges      decimal.Decimal    `json:"charges"`
	Status       enums.RepairStatus `json:"status"`
	CreatedAt    time.Time          `json:"created_at"`
	UpdatedAt    time.Time          `json:"updated_at"`
}

func newTicketResponse(ticket *models.RepairTicket) ticketResponse {
	return ticketResponse{
		ID:           ticket.ID,
		Reference:    ticket.Reference,
		CustomerName: ticket.CustomerName,
		Device:       ticket.Device,
		Problem:      ticket.Problem,
		Technician:   ticket.Technician,
		Charges:      ticket.Charges,
		Status:       ticket.Status,
		CreatedAt:    ticket.CreatedAt,
		UpdatedAt:    ticket.UpdatedAt,
	}
}

type repairsListResponse struct {
	Tickets    []ticketResponse `json:"tickets"`
	NextCursor string           `json:"next_cursor,omitempty"`
}

// RepairsList returns repair tickets, newest first.
func RepairsList(svc repairs.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		limit, err := validators.ParseQueryInt(r, "limit", pagination.DefaultLimit, 1, pagination.MaxLimit)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		filter := repairs.Filter{Search: validators.SanitizeString(r.URL.Query().Get("q"), 64)}
		if raw := r.URL.Query().Get("status"); raw != "" {
			status, parseErr := enums.ParseRepairStatus(raw)
			if parseErr != nil {
				responses.WriteError(r.Context(), logg, w,
					pkgerrors.Wrap(pkgerrors.CodeValidation, parseErr, "invalid status filter"))
				return
			}
			filter.Status = &status
		}

		result, err := svc.ListTickets(r.Context(), filter, pagination.Params{
			Limit:  limit,
			Cursor: r.URL.Query().Get("cursor"),
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		resp := repairsListResponse{Tickets: []ticketResponse{}, NextCursor: result.NextCursor}
		for i := range result.Tickets {
			resp.Tickets = append(resp.Tickets, newTicketResponse(&result.Tickets[i]))
		}
		responses.WriteSuccess(w, resp)
	}
}

// RepairsCreate opens a new repair ticket.
func RepairsCreate(svc repairs.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req repairTicketRequest
		if err := validators.DecodeJSONBody(r, &req); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		ticket, err := svc.CreateTicket(r.Context(), req.toInput())
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, newTicketResponse(ticket))
	}
}

// RepairsUpdate edits a ticket's details.
func RepairsUpdate(svc repairs.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := parseIDParam(r, "ticketId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		var req repairTicketRequest
		if err := validators.DecodeJSONBody(r, &req); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		ticket, err := svc.UpdateTicket(r.Context(), id, req.toInput())
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, newTicketResponse(ticket))
	}
}

type repairStatusRequest struct {
	Status string `json:"status" validate:"required"`
}

// RepairsAdvanceStatus moves a ticket forward through the queue.
func RepairsAdvanceStatus(svc repairs.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := parseIDParam(r, "ticketId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		var req repairStatusRequest
		if err := validators.DecodeJSONBody(r, &req); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		status, err := enums.ParseRepairStatus(req.Status)
		if err != nil {
			responses.WriteError(r.Context(), logg, w,
				pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid status"))
			return
		}
		ticket, err := svc.AdvanceStatus(r.Context(), id, status)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, newTicketResponse(ticket))
	}
}
