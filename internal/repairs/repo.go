package repairs

import (
	"context"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/nayyarmobile/shopdesk-backend/pkg/db/models"
	"github.com/nayyarmobile/shopdesk-backend/pkg/enums"
	"github.com/nayyarmobile/shopdesk-backend/pkg/pagination"
)

// Filter narrows repair ticket listings.
type Filter struct {
	Status *enums.RepairStatus
	Search string
}

// Repository manages persistence for repair tickets.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	Create(ctx context.Context, ticket *models.RepairTicket) error
	Update(ctx context.Context, ticket *models.RepairTicket) error
	FindByID(ctx context.Context, id uuid.UUID) (*models.RepairTicket, error)
	List(ctx context.Context, filter Filter, page pagination.Params) ([]models.RepairTicket, error)
	CountByStatus(ctx context.Context, status enums.RepairStatus) (int64, error)
}

type repository struct {
	db *gorm.DB
}

// NewRepository returns a repair repository bound to the provided database.
func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) WithTx(tx *gorm.DB) Repository {
	if tx == nil {
		return r
	}
	return &repository{db: tx}
}

func (r *repository) Create(ctx context.Context, ticket *models.RepairTicket) error {
	return r.db.WithContext(ctx).Create(ticket).Error
}

func (r *repository) Update(ctx context.Context, ticket *models.RepairTicket) error {
	return r.db.WithContext(ctx).Save(ticket).Error
}

func (r *repository) FindByID(ctx context.Context, id uuid.UUID) (*models.RepairTicket, error) {
	var ticket models.RepairTicket
	if err := r.db.WithContext(ctx).First(&ticket, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &ticket, nil
}

func (r *repository) List(ctx context.Context, filter Filter, page pagination.Params) ([]models.RepairTicket, error) {
	query := r.db.WithContext(ctx).Model(&models.RepairTicket{})
	if filter.Status != nil {
		query = query.Where("status = ?", *filter.Status)
	}
	if search := strings.TrimSpace(filter.Search); search != "" {
		pattern := "%" + strings.ToLower(search) + "%"
		query = query.Where(
			"LOWER(reference) LIKE ? OR LOWER(customer_name) LIKE ? OR LOWER(device) LIKE ?",
			pattern, pattern, pattern,
		)
	}

	cursor, err := pagination.ParseCursor(page.Cursor)
	if err != nil {
		return nil, err
	}
	if cursor != nil {
		query = query.Where(
			"(created_at < ?) OR (created_at = ? AND id < ?)",
			cursor.CreatedAt, cursor.CreatedAt, cursor.ID,
		)
	}

	var tickets []models.RepairTicket
	err = query.
		Order("created_at DESC, id DESC").
		Limit(pagination.LimitWithBuffer(page.Limit)).
		Find(&tickets).Error
	if err != nil {
		return nil, err
	}
	return tickets, nil
}

func (r *repository) CountByStatus(ctx context.Context, status enums.RepairStatus) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&models.RepairTicket{}).
		Where("status = ?", status).
		Count(&count).Error
	return count, err
}
