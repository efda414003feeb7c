package catalog

import (
	"context"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/nayyarmobile/shopdesk-backend/pkg/db/models"
	"github.com/nayyarmobile/shopdesk-backend/pkg/enums"
)

// ListFilter narrows catalog listings for the inventory screen.
type ListFilter struct {
	Category *enums.ItemCategory
	Search   string
}

// Items with fewer units than this show up on the dashboard's low stock
// alert list.
const LowStockThreshold = 5

// StockSummary aggregates catalog stock for the dashboard.
type StockSummary struct {
	ItemCount  int64
	TotalUnits int64
	LowStock   int64
}

// Repository manages persistence for catalog items.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	Create(ctx context.Context, item *models.CatalogItem) error
	Update(ctx context.Context, item *models.CatalogItem) error
	Delete(ctx context.Context, id uuid.UUID) error
	FindByID(ctx context.Context, id uuid.UUID) (*models.CatalogItem, error)
	FindByScanCode(ctx context.Context, scanCode string) (*models.CatalogItem, error)
	List(ctx context.Context, filter ListFilter) ([]models.CatalogItem, error)
	DeductStock(ctx context.Context, id uuid.UUID, quantity int) (bool, error)
	AddStock(ctx context.Context, id uuid.UUID, quantity int) (bool, error)
	Summarize(ctx context.Context) (StockSummary, error)
}

type repository struct {
	db *gorm.DB
}

// NewRepository returns a catalog repository bound to the provided database.
func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) WithTx(tx *gorm.DB) Repository {
	if tx == nil {
		return r
	}
	return &repository{db: tx}
}

func (r *repository) Create(ctx context.Context, item *models.CatalogItem) error {
	return r.db.WithContext(ctx).Create(item).Error
}

func (r *repository) Update(ctx context.Context, item *models.CatalogItem) error {
	return r.db.WithContext(ctx).Save(item).Error
}

func (r *repository) Delete(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Where("id = ?", id).Delete(&models.CatalogItem{}).Error
}

func (r *repository) FindByID(ctx context.Context, id uuid.UUID) (*models.CatalogItem, error) {
	var item models.CatalogItem
	if err := r.db.WithContext(ctx).First(&item, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &item, nil
}

func (r *repository) FindByScanCode(ctx context.Context, scanCode string) (*models.CatalogItem, error) {
	var item models.CatalogItem
	if err := r.db.WithContext(ctx).First(&item, "scan_code = ?", scanCode).Error; err != nil {
		return nil, err
	}
	return &item, nil
}

func (r *repository) List(ctx context.Context, filter ListFilter) ([]models.CatalogItem, error) {
	query := r.db.WithContext(ctx).Model(&models.CatalogItem{})
	if filter.Category != nil {
		query = query.Where("category = ?", *filter.Category)
	}
	if search := strings.TrimSpace(filter.Search); search != "" {
		pattern := "%" + strings.ToLower(search) + "%"
		query = query.Where(
			"LOWER(name) LIKE ? OR LOWER(brand) LIKE ? OR LOWER(scan_code) LIKE ?",
			pattern, pattern, pattern,
		)
	}

	var items []models.CatalogItem
	if err := query.Order("name ASC").Find(&items).Error; err != nil {
		return nil, err
	}
	return items, nil
}

// DeductStock atomically decrements stock, guarded so the row is only touched
// when enough units remain. Returns false when the guard rejected the update.
func (r *repository) DeductStock(ctx context.Context, id uuid.UUID, quantity int) (bool, error) {
	result := r.db.WithContext(ctx).
		Model(&models.CatalogItem{}).
		Where("id = ? AND stock_quantity >= ?", id, quantity).
		UpdateColumn("stock_quantity", gorm.Expr("stock_quantity - ?", quantity))
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected == 1, nil
}

// AddStock increments stock for a restock or a returned sale. Returns false
// when the item does not exist.
func (r *repository) AddStock(ctx context.Context, id uuid.UUID, quantity int) (bool, error) {
	result := r.db.WithContext(ctx).
		Model(&models.CatalogItem{}).
		Where("id = ?", id).
		UpdateColumn("stock_quantity", gorm.Expr("stock_quantity + ?", quantity))
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected == 1, nil
}

func (r *repository) Summarize(ctx context.Context) (StockSummary, error) {
	var summary StockSummary
	err := r.db.WithContext(ctx).
		Model(&models.CatalogItem{}).
		Select(
			"COUNT(*) AS item_count, "+
				"COALESCE(SUM(stock_quantity), 0) AS total_units, "+
				"COALESCE(SUM(CASE WHEN stock_quantity < ? THEN 1 ELSE 0 END), 0) AS low_stock",
			LowStockThreshold,
		).
		Scan(&summary).Error
	if err != nil {
		return StockSummary{}, err
	}
	return summary, nil
}
