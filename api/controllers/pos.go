package controllers

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/nayyarmobile/shopdesk-backend/api/responses"
	"github.com/nayyarmobile/shopdesk-backend/api/validators"
	"github.com/nayyarmobile/shopdesk-backend/internal/checkout"
	"github.com/nayyarmobile/shopdesk-backend/internal/notifications"
	"github.com/nayyarmobile/shopdesk-backend/internal/pricing"
	pkgerrors "github.com/nayyarmobile/shopdesk-backend/pkg/errors"
	"github.com/nayyarmobile/shopdesk-backend/pkg/logger"
)

type sessionLineResponse struct {
	ItemID       uuid.UUID       `json:"item_id"`
	Name         string          `json:"name"`
	Brand        string          `json:"brand"`
	ScanCode     string          `json:"scan_code"`
	Quantity     int             `json:"quantity"`
	UnitPrice    decimal.Decimal `json:"unit_price"`
	LineDiscount decimal.Decimal `json:"line_discount"`
	LineTotal    decimal.Decimal `json:"line_total"`
}

type sessionResponse struct {
	State          string                `json:"state"`
	Lines          []sessionLineResponse `json:"lines"`
	TaxEnabled     bool                  `json:"tax_enabled"`
	GiftIncluded   bool                  `json:"gift_included"`
	CustomerName   string                `json:"customer_name"`
	CustomerPhone  string                `json:"customer_phone"`
	Subtotal       decimal.Decimal       `json:"subtotal"`
	TaxAmount      decimal.Decimal       `json:"tax_amount"`
	GlobalDiscount decimal.Decimal       `json:"global_discount"`
	GrandTotal     decimal.Decimal       `json:"grand_total"`
	DisplayTotal   decimal.Decimal       `json:"display_total"`
	CashTendered   decimal.Decimal       `json:"cash_tendered"`
	OnlineTendered decimal.Decimal       `json:"online_tendered"`
	ChangeDue      decimal.Decimal       `json:"change_due"`
}

func newSessionResponse(snapshot *checkout.Snapshot) sessionResponse {
	resp := sessionResponse{
		State:          string(snapshot.State),
		Lines:          []sessionLineResponse{},
		TaxEnabled:     snapshot.Settings.TaxEnabled,
		GiftIncluded:   snapshot.Settings.GiftIncluded,
		CustomerName:   snapshot.Settings.CustomerName,
		CustomerPhone:  snapshot.Settings.CustomerPhone,
		Subtotal:       snapshot.Breakdown.Subtotal,
		TaxAmount:      snapshot.Breakdown.TaxAmount,
		GlobalDiscount: snapshot.Breakdown.GlobalDiscount,
		GrandTotal:     snapshot.Breakdown.GrandTotal,
		DisplayTotal:   pricing.DisplayTotal(snapshot.Breakdown.GrandTotal),
		CashTendered:   snapshot.Payment.CashTendered,
		OnlineTendered: snapshot.Payment.OnlineTendered,
		ChangeDue:      snapshot.ChangeDue,
	}
	for _, line := range snapshot.Lines {
		resp.Lines = append(resp.Lines, sessionLineResponse{
			ItemID:       line.ItemID,
			Name:         line.Name,
			Brand:        line.Brand,
			ScanCode:     line.ScanCode,
			Quantity:     line.Quantity,
			UnitPrice:    line.UnitPrice,
			LineDiscount: line.LineDiscount,
			LineTotal:    line.Subtotal(),
		})
	}
	return resp
}

func writeSession(w http.ResponseWriter, r *http.Request, logg *logger.Logger, orch *checkout.Orchestrator) {
	snapshot, err := orch.Snapshot()
	if err != nil {
		responses.WriteError(r.Context(), logg, w, err)
		return
	}
	responses.WriteSuccess(w, newSessionResponse(snapshot))
}

// PosSession returns the current session view.
func PosSession(orch *checkout.Orchestrator, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		writeSession(w, r, logg, orch)
	}
}

// PosOpenSession starts a new sale.
func PosOpenSession(orch *checkout.Orchestrator, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := orch.OpenSession(r.Context()); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		writeSession(w, r, logg, orch)
	}
}

// PosAbortSession cancels the open sale.
func PosAbortSession(orch *checkout.Orchestrator, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := orch.AbortSession(r.Context()); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		writeSession(w, r, logg, orch)
	}
}

type posAddItemRequest struct {
	ItemID uuid.UUID `json:"item_id" validate:"required"`
}

// PosAddItem adds one unit of a catalog item to the cart.
func PosAddItem(orch *checkout.Orchestrator, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req posAddItemRequest
		if err := validators.DecodeJSONBody(r, &req); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		if err := orch.AddItemByID(r.Context(), req.ItemID); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		writeSession(w, r, logg, orch)
	}
}

type posScanRequest struct {
	ScanCode string `json:"scan_code" validate:"required"`
}

// PosScanItem resolves a scan code and adds the item.
func PosScanItem(orch *checkout.Orchestrator, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req posScanRequest
		if err := validators.DecodeJSONBody(r, &req); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		if err := orch.AddItemByScanCode(r.Context(), validators.SanitizeString(req.ScanCode, 64)); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		writeSession(w, r, logg, orch)
	}
}

type posQuantityRequest struct {
	Quantity int `json:"quantity"`
}

// PosChangeQuantity sets a line quantity, clamped to stock.
func PosChangeQuantity(orch *checkout.Orchestrator, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		itemID, err := parseIDParam(r, "itemId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		var req posQuantityRequest
		if err := validators.DecodeJSONBody(r, &req); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		if err := orch.ChangeQuantity(r.Context(), itemID, req.Quantity); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		writeSession(w, r, logg, orch)
	}
}

// PosRemoveItem drops a line from the cart.
func PosRemoveItem(orch *checkout.Orchestrator, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		itemID, err := parseIDParam(r, "itemId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		if err := orch.RemoveLine(itemID); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		writeSession(w, r, logg, orch)
	}
}

type posLineDiscountRequest struct {
	Discount decimal.Decimal `json:"discount"`
}

// PosSetLineDiscount applies a per-line discount.
func PosSetLineDiscount(orch *checkout.Orchestrator, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		itemID, err := parseIDParam(r, "itemId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		var req posLineDiscountRequest
		if err := validators.DecodeJSONBody(r, &req); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		if err := orch.SetLineDiscount(itemID, req.Discount); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		writeSession(w, r, logg, orch)
	}
}

type posSettingsRequest struct {
	TaxEnabled     *bool            `json:"tax_enabled"`
	GiftIncluded   *bool            `json:"gift_included"`
	GlobalDiscount *decimal.Decimal `json:"global_discount"`
	CustomerName   *string          `json:"customer_name"`
	CustomerPhone  *string          `json:"customer_phone"`
}

// PosUpdateSettings patches the session settings; absent fields are left
// untouched.
func PosUpdateSettings(orch *checkout.Orchestrator, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req posSettingsRequest
		if err := validators.DecodeJSONBody(r, &req); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		if req.TaxEnabled != nil {
			if err := orch.SetTaxEnabled(*req.TaxEnabled); err != nil {
				responses.WriteError(r.Context(), logg, w, err)
				return
			}
		}
		if req.GiftIncluded != nil {
			if err := orch.SetGiftIncluded(*req.GiftIncluded); err != nil {
				responses.WriteError(r.Context(), logg, w, err)
				return
			}
		}
		if req.GlobalDiscount != nil {
			if err := orch.SetGlobalDiscount(*req.GlobalDiscount); err != nil {
				responses.WriteError(r.Context(), logg, w, err)
				return
			}
		}
		if req.CustomerName != nil || req.CustomerPhone != nil {
			name, phone := "", ""
			if req.CustomerName != nil {
				name = *req.CustomerName
			}
			if req.CustomerPhone != nil {
				phone = *req.CustomerPhone
			}
			if err := orch.SetCustomer(name, phone); err != nil {
				responses.WriteError(r.Context(), logg, w, err)
				return
			}
		}
		writeSession(w, r, logg, orch)
	}
}

type posPaymentRequest struct {
	CashTendered   decimal.Decimal `json:"cash_tendered"`
	OnlineTendered decimal.Decimal `json:"online_tendered"`
}

// PosSetPayment records the tender split.
func PosSetPayment(orch *checkout.Orchestrator, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req posPaymentRequest
		if err := validators.DecodeJSONBody(r, &req); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		if err := orch.SetPayment(req.CashTendered, req.OnlineTendered); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		writeSession(w, r, logg, orch)
	}
}

// PosCommit finalizes the sale and returns the ledger record.
func PosCommit(orch *checkout.Orchestrator, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		record, err := orch.RequestCommit(r.Context())
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, newSaleResponse(record))
	}
}

// PosToasts drains the pending toast feed for the terminal.
func PosToasts(center *notifications.Center) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		responses.WriteSuccess(w, center.Drain())
	}
}

func parseIDParam(r *http.Request, key string) (uuid.UUID, error) {
	raw := chi.URLParam(r, key)
	id, err := uuid.Parse(raw)
	if err != nil {
		return uuid.Nil, pkgerrors.New(pkgerrors.CodeValidation, "invalid id parameter").
			WithDetails(map[string]string{"field": key, "value": raw})
	}
	return id, nil
}
