package controllers

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/nayyarmobile/shopdesk-backend/api/responses"
	"github.com/nayyarmobile/shopdesk-backend/api/validators"
	"github.com/nayyarmobile/shopdesk-backend/internal/ledger"
	"github.com/nayyarmobile/shopdesk-backend/pkg/db/models"
	"github.com/nayyarmobile/shopdesk-backend/pkg/enums"
	pkgerrors "github.com/nayyarmobile/shopdesk-backend/pkg/errors"
	"github.com/nayyarmobile/shopdesk-backend/pkg/logger"
	"github.com/nayyarmobile/shopdesk-backend/pkg/pagination"
)

type saleLineResponse struct {
	ItemID       uuid.UUID       `json:"item_id"`
	Name         string          `json:"name"`
	Brand        string          `json:"brand"`
	ScanCode     string          `json:"scan_code"`
	Quantity     int             `json:"quantity"`
	UnitPrice    decimal.Decimal `json:"unit_price"`
	LineDiscount decimal.Decimal `json:"line_discount"`
	LineTotal    decimal.Decimal `json:"line_total"`
}

type saleResponse struct {
	ID             uuid.UUID          `json:"id"`
	SerialNo       int64              `json:"serial_no"`
	InvoiceNo      string             `json:"invoice_no"`
	CustomerName   string             `json:"customer_name"`
	CustomerPhone  string             `json:"customer_phone"`
	Subtotal       decimal.Decimal    `json:"subtotal"`
	TaxAmount      decimal.Decimal    `json:"tax_amount"`
	GlobalDiscount decimal.Decimal    `json:"global_discount"`
	GrandTotal     decimal.Decimal    `json:"grand_total"`
	CashTendered   decimal.Decimal    `json:"cash_tendered"`
	OnlineTendered decimal.Decimal    `json:"online_tendered"`
	ChangeDue      decimal.Decimal    `json:"change_due"`
	GiftIncluded   bool               `json:"gift_included"`
	Salesman       string             `json:"salesman"`
	Status         enums.SaleStatus   `json:"status"`
	Lines          []saleLineResponse `json:"lines"`
	CreatedAt      time.Time          `json:"created_at"`
}

func newSaleResponse(record *models.SaleRecord) saleResponse {
	resp := saleResponse{
		ID:             record.ID,
		SerialNo:       record.SerialNo,
		InvoiceNo:      record.InvoiceNo,
		CustomerName:   record.CustomerName,
		CustomerPhone:  record.CustomerPhone,
		Subtotal:       record.Subtotal,
		TaxAmount:      record.TaxAmount,
		GlobalDiscount: record.GlobalDiscount,
		GrandTotal:     record.GrandTotal,
		CashTendered:   record.CashTendered,
		OnlineTendered: record.OnlineTendered,
		ChangeDue:      record.ChangeDue,
		GiftIncluded:   record.GiftIncluded,
		Salesman:       record.Salesman,
		Status:         record.Status,
		Lines:          []saleLineResponse{},
		CreatedAt:      record.CreatedAt,
	}
	for _, line := range record.Lines {
		resp.Lines = append(resp.Lines, saleLineResponse{
			ItemID:       line.ItemID,
			Name:         line.Name,
			Brand:        line.Brand,
			ScanCode:     line.ScanCode,
			Quantity:     line.Quantity,
			UnitPrice:    line.UnitPrice,
			LineDiscount: line.LineDiscount,
			LineTotal:    line.LineTotal,
		})
	}
	return resp
}

type salesListResponse struct {
	Sales      []saleResponse `json:"sales"`
	NextCursor string         `json:"next_cursor,omitempty"`
}

// SalesList returns the sales history, newest first.
func SalesList(svc ledger.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		limit, err := validators.ParseQueryInt(r, "limit", pagination.DefaultLimit, 1, pagination.MaxLimit)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		filter := ledger.Filter{Search: validators.SanitizeString(r.URL.Query().Get("q"), 64)}
		if raw := r.URL.Query().Get("status"); raw != "" {
			status, parseErr := enums.ParseSaleStatus(raw)
			if parseErr != nil {
				responses.WriteError(r.Context(), logg, w,
					pkgerrors.Wrap(pkgerrors.CodeValidation, parseErr, "invalid status filter"))
				return
			}
			filter.Status = &status
		}

		result, err := svc.ListSales(r.Context(), filter, pagination.Params{
			Limit:  limit,
			Cursor: r.URL.Query().Get("cursor"),
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		resp := salesListResponse{Sales: []saleResponse{}, NextCursor: result.NextCursor}
		for i := range result.Records {
			resp.Sales = append(resp.Sales, newSaleResponse(&result.Records[i]))
		}
		responses.WriteSuccess(w, resp)
	}
}

// SaleDetail returns a single sale by invoice number.
func SaleDetail(svc ledger.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		record, err := svc.GetByInvoiceNo(r.Context(), chi.URLParam(r, "invoiceNo"))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, newSaleResponse(record))
	}
}

type saleStatusRequest struct {
	Status string `json:"status" validate:"required,oneof=void returned"`
}

// SaleMarkStatus voids or returns a completed sale.
func SaleMarkStatus(svc ledger.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req saleStatusRequest
		if err := validators.DecodeJSONBody(r, &req); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		status, err := enums.ParseSaleStatus(req.Status)
		if err != nil {
			responses.WriteError(r.Context(), logg, w,
				pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid status"))
			return
		}
		record, err := svc.MarkStatus(r.Context(), chi.URLParam(r, "invoiceNo"), status)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, newSaleResponse(record))
	}
}
