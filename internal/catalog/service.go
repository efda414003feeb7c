package catalog

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
)

// Service exposes catalog lookups for the POS terminal and CRUD for the
// inventory screen.
type Service interface {
	LookupByID(ctx context.Context, id uuid.UUID) (*models.CatalogItem, error)
	LookupByScanCode(ctx context.Context, scanCode string) (*models.CatalogItem, error)
	ListItems(ctx context.Context, filter ListFilter) ([]models.CatalogItem, error)
	CreateItem(ctx context.Context, input ItemInput) (*models.CatalogItem, error)
	UpdateItem(ctx context.Context, id uuid.UUID, input ItemInput) (*models.CatalogItem, error)
	DeleteItem(ctx context.Context, id uuid.UUID) error
	Restock(ctx context.Context, id uuid.UUID, quantity int) (*models.CatalogItem, error)
	ReserveAndDeduct(ctx context.Context, tx *gorm.DB, id uuid.UUID, quantity int) error
	ReturnStock(ctx context.Context, tx *gorm.DB, id uuid.UUID, quantity int) error
	Summary(ctx context.Context) (StockSummary, error)
}

// ItemInput carries the writable fields of a catalog item.
type ItemInput struct {
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
	ImageURL      *string            `json:"image_url"`
}

type service struct {
	repo Repository
}

// NewService wires a catalog service with the provided repository.
func NewService(repo Repository) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("catalog repository required")
	}
	return &service{repo: repo}, nil
}

func (s *service) LookupByID(ctx context.Context, id uuid.UUID) (*models.CatalogItem, error) {
	if id == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "item id is required")
	}
	item, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if stdErrors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "catalog item not found").
				WithDetails(map[string]string{"item_id": id.String()})
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "load catalog item")
	}
	return item, nil
}

func (s *service) LookupByScanCode(ctx context.Context, scanCode string) (*models.CatalogItem, error) {
	scanCode = strings.TrimSpace(scanCode)
	if scanCode == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "scan code is required")
	}
	item, err := s.repo.FindByScanCode(ctx, scanCode)
	if err != nil {
		if stdErrors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeScanNotFound, "no item matches scan code").
				WithDetails(map[string]string{"scan_code": scanCode})
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "lookup by scan code")
	}
	return item, nil
}

func (s *service) ListItems(ctx context.Context, filter ListFilter) ([]models.CatalogItem, error) {
	items, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "list catalog items")
	}
	return items, nil
}

func (s *service) CreateItem(ctx context.Context, input ItemInput) (*models.CatalogItem, error) {
	if err := validateItemInput(input); err != nil {
		return nil, err
	}
	item := &models.CatalogItem{
		Name:          strings.TrimSpace(input.Name),
		Brand:         strings.TrimSpace(input.Brand),
		Model:         strings.TrimSpace(input.Model),
		Storage:       strings.TrimSpace(input.Storage),
		Color:         strings.TrimSpace(input.Color),
		ScanCode:      strings.TrimSpace(input.ScanCode),
		Category:      input.Category,
		UnitPrice:     input.UnitPrice,
		UnitCost:      input.UnitCost,
		StockQuantity: input.StockQuantity,
		ImageURL:      input.ImageURL,
	}
	if err := s.repo.Create(ctx, item); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "create catalog item")
	}
	return item, nil
}

func (s *service) UpdateItem(ctx context.Context, id uuid.UUID, input ItemInput) (*models.CatalogItem, error) {
	if err := validateItemInput(input); err != nil {
		return nil, err
	}
	item, err := s.LookupByID(ctx, id)
	if err != nil {
		return nil, err
	}
	item.Name = strings.TrimSpace(input.Name)
	item.Brand = strings.TrimSpace(input.Brand)
	item.Model = strings.TrimSpace(input.Model)
	item.Storage = strings.TrimSpace(input.Storage)
	item.Color = strings.TrimSpace(input.Color)
	item.ScanCode = strings.TrimSpace(input.ScanCode)
	item.Category = input.Category
	item.UnitPrice = input.UnitPrice
	item.UnitCost = input.UnitCost
	item.StockQuantity = input.StockQuantity
	item.ImageURL = input.ImageURL
	if err := s.repo.Update(ctx, item); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "update catalog item")
	}
	return item, nil
}

func (s *service) DeleteItem(ctx context.Context, id uuid.UUID) error {
	if _, err := s.LookupByID(ctx, id); err != nil {
		return err
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "delete catalog item")
	}
	return nil
}

func (s *service) Restock(ctx context.Context, id uuid.UUID, quantity int) (*models.CatalogItem, error) {
	if quantity <= 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "restock quantity must be positive")
	}
	ok, err := s.repo.AddStock(ctx, id, quantity)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "restock catalog item")
	}
	if !ok {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "catalog item not found").
			WithDetails(map[string]string{"item_id": id.String()})
	}
	return s.LookupByID(ctx, id)
}

// ReserveAndDeduct decrements stock inside the caller's transaction. The
// update is guarded on the live quantity so a concurrent sale cannot drive
// stock negative; a rejected guard surfaces as INSUFFICIENT_STOCK and the
// caller is expected to roll the whole commit back.
func (s *service) ReserveAndDeduct(ctx context.Context, tx *gorm.DB, id uuid.UUID, quantity int) error {
	if quantity <= 0 {
		return pkgerrors.New(pkgerrors.CodeValidation, "deduct quantity must be positive")
	}
	repo := s.repo.WithTx(tx)
	ok, err := repo.DeductStock(ctx, id, quantity)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "deduct stock")
	}
	if ok {
		return nil
	}
	if _, err := repo.FindByID(ctx, id); err != nil {
		if stdErrors.Is(err, gorm.ErrRecordNotFound) {
			return pkgerrors.New(pkgerrors.CodeNotFound, "catalog item not found").
				WithDetails(map[string]string{"item_id": id.String()})
		}
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "verify catalog item")
	}
	return pkgerrors.New(pkgerrors.CodeInsufficientStock, "not enough stock to complete sale").
		WithDetails(map[string]any{"item_id": id.String(), "requested": quantity})
}

// ReturnStock puts units back inside the caller's transaction, used when a
// completed sale is marked returned.
func (s *service) ReturnStock(ctx context.Context, tx *gorm.DB, id uuid.UUID, quantity int) error {
	if quantity <= 0 {
		return pkgerrors.New(pkgerrors.CodeValidation, "return quantity must be positive")
	}
	ok, err := s.repo.WithTx(tx).AddStock(ctx, id, quantity)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "return stock")
	}
	if !ok {
		return pkgerrors.New(pkgerrors.CodeNotFound, "catalog item not found").
			WithDetails(map[string]string{"item_id": id.String()})
	}
	return nil
}

func (s *service) Summary(ctx context.Context) (StockSummary, error) {
	summary, err := s.repo.Summarize(ctx)
	if err != nil {
		return StockSummary{}, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "summarize catalog")
	}
	return summary, nil
}

func validateItemInput(input ItemInput) error {
	if strings.TrimSpace(input.Name) == "" {
		return pkgerrors.New(pkgerrors.CodeValidation, "item name is required")
	}
	if strings.TrimSpace(input.ScanCode) == "" {
		return pkgerrors.New(pkgerrors.CodeValidation, "scan code is required")
	}
	if !input.Category.IsValid() {
		return pkgerrors.New(pkgerrors.CodeValidation, fmt.Sprintf("invalid category %q", input.Category))
	}
	if input.UnitPrice.IsNegative() {
		return pkgerrors.New(pkgerrors.CodeValidation, "unit price cannot be negative")
	}
	if input.UnitCost.IsNegative() {
		return pkgerrors.New(pkgerrors.CodeValidation, "unit cost cannot be negative")
	}
	if input.StockQuantity < 0 {
		return pkgerrors.New(pkgerrors.CodeValidation, "stock quantity cannot be negative")
	}
	return nil
}
