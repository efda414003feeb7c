package controllers

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/nayyarmobile/shopdesk-backend/api/responses"
	"github.com/nayyarmobile/shopdesk-backend/api/validators"
	"github.com/nayyarmobile/shopdesk-backend/internal/catalog"
	"github.com/nayyarmobile/shopdesk-backend/pkg/db/models"
	"github.com/nayyarmobile/shopdesk-backend/pkg/enums"
	pkgerrors "github.com/nayyarmobile/shopdesk-backend/pkg/errors"
	"github.com/nayyarmobile/shopdesk-backend/pkg/logger"
)

type inventoryItemRequest struct {
	Name          string          `json:"name" validate:"required,max=120"`
	Brand         string          `json:"brand" validate:"max=60"`
	Model         string          `json:"model" validate:"max=60"`
	Storage       string          `json:"storage" validate:"max=30"`
	Color         string          `json:"color" validate:"max=30"`
	ScanCode      string          `json:"scan_code" validate:"required,max=64"`
	Category      string          `json:"category" validate:"required"`
	UnitPrice     decimal.Decimal `json:"unit_price"`
	UnitCost      decimal.Decimal `json:"unit_cost"`
	StockQuantity int             `json:"stock_quantity"`
	ImageURL      *string         `json:"image_url"`
}

func (req inventoryItemRequest) toInput() (catalog.ItemInput, error) {
	category, err := enums.ParseItemCategory(req.Category)
	if err != nil {
		return catalog.ItemInput{}, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid category")
	}
	return catalog.ItemInput{
		Name:          req.Name,
		Brand:         req.Brand,
		Model:         req.Model,
		Storage:       req.Storage,
		Color:         req.Color,
		ScanCode:      req.ScanCode,
		Category:      category,
		UnitPrice:     req.UnitPrice,
		UnitCost:      req.UnitCost,
		StockQuantity: req.StockQuantity,
		ImageURL:      req.ImageURL,
	}, nil
}

type itemResponse struct {
	ID            uuid.UUID          `json:"id"`
	Name          string             `json:"name"`
	Brand         string             `json:"brand"`
	Model         string             `json:"model"`
	Storage       string             `json:"storage"`
	Color         string             `json:"color"`
	ScanCode      string             `json:"scan_code"`
	Category      enums.ItemCategory `json:"category"`
	UnitPrice     decimal.Decimal    `json:"unit_price"`
	UnitCost      decimal.Decimal    `json:"unit_cost"`
	StockQuantity int                `json:"stock_quantity"`
	ImageURL      *string            `json:"image_url,omitempty"`
	CreatedAt     time.Time          `json:"created_at"`
	UpdatedAt     time.Time          `json:"updated_at"`
}

func newItemResponse(item *models.CatalogItem) itemResponse {
	return itemResponse{
		ID:            item.ID,
		Name:          item.Name,
		Brand:         item.Brand,
		Model:         item.Model,
		Storage:       item.Storage,
		Color:         item.Color,
		ScanCode:      item.ScanCode,
		Category:      item.Category,
		UnitPrice:     item.UnitPrice,
		UnitCost:      item.UnitCost,
		StockQuantity: item.StockQuantity,
		ImageURL:      item.ImageURL,
		CreatedAt:     item.CreatedAt,
		UpdatedAt:     item.UpdatedAt,
	}
}

// InventoryList returns catalog items, optionally filtered.
func InventoryList(svc catalog.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		filter := catalog.ListFilter{Search: validators.SanitizeString(r.URL.Query().Get("q"), 64)}
		if raw := r.URL.Query().Get("category"); raw != "" {
			category, err := enums.ParseItemCategory(raw)
			if err != nil {
				responses.WriteError(r.Context(), logg, w,
					pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid category filter"))
				return
			}
			filter.Category = &category
		}
		items, err := svc.ListItems(r.Context(), filter)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		resp := make([]itemResponse, 0, len(items))
		for i := range items {
			resp = append(resp, newItemResponse(&items[i]))
		}
		responses.WriteSuccess(w, resp)
	}
}

// InventoryDetail returns one catalog item by id.
func InventoryDetail(svc catalog.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := parseIDParam(r, "itemId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		item, err := svc.LookupByID(r.Context(), id)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, newItemResponse(item))
	}
}

// InventoryLookupByScan resolves a scan code to an item for the POS screen.
func InventoryLookupByScan(svc catalog.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		item, err := svc.LookupByScanCode(r.Context(), chi.URLParam(r, "scanCode"))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, newItemResponse(item))
	}
}

// InventoryCreate adds a catalog item.
func InventoryCreate(svc catalog.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req inventoryItemRequest
		if err := validators.DecodeJSONBody(r, &req); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		input, err := req.toInput()
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		item, err := svc.CreateItem(r.Context(), input)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, newItemResponse(item))
	}
}

// InventoryUpdate replaces the writable fields of a catalog item.
func InventoryUpdate(svc catalog.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := parseIDParam(r, "itemId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		var req inventoryItemRequest
		if err := validators.DecodeJSONBody(r, &req); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		input, err := req.toInput()
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		item, err := svc.UpdateItem(r.Context(), id, input)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, newItemResponse(item))
	}
}

// InventoryDelete removes a catalog item.
func InventoryDelete(svc catalog.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := parseIDParam(r, "itemId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		if err := svc.DeleteItem(r.Context(), id); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, map[string]string{"status": "deleted"})
	}
}

type inventoryRestockRequest struct {
	Quantity int `json:"quantity" validate:"required,min=1"`
}

// InventoryRestock adds units to an item's stock.
func InventoryRestock(svc catalog.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := parseIDParam(r, "itemId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		var req inventoryRestockRequest
		if err := validators.DecodeJSONBody(r, &req); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		item, err := svc.Restock(r.Context(), id, req.Quantity)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, newItemResponse(item))
	}
}
