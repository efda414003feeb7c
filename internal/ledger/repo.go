package ledger

import (
	"context"
	"iter"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/nayyarmobile/shopdesk-backend/pkg/db/models"
	"github.com/nayyarmobile/shopdesk-backend/pkg/enums"
	"github.com/nayyarmobile/shopdesk-backend/pkg/pagination"
)

// streamBatchSize bounds how many records one streaming page loads.
const streamBatchSize = 100

// Filter narrows ledger reads for listings and streams.
type Filter struct {
	Status *enums.SaleStatus
	Search string
	From   *time.Time
	To     *time.Time
}

// Repository manages persistence for the sale ledger.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	Create(ctx context.Context, record *models.SaleRecord) error
	MaxSerial(ctx context.Context) (int64, error)
	FindByID(ctx context.Context, id uuid.UUID) (*models.SaleRecord, error)
	FindByInvoiceNo(ctx context.Context, invoiceNo string) (*models.SaleRecord, error)
	List(ctx context.Context, filter Filter, page pagination.Params) ([]models.SaleRecord, error)
	UpdateStatus(ctx context.Context, id uuid.UUID, status enums.SaleStatus) error
	Stream(ctx context.Context, filter Filter) iter.Seq2[models.SaleRecord, error]
}

type repository struct {
	db *gorm.DB
}

// NewRepository returns a ledger repository bound to the provided database.
func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) WithTx(tx *gorm.DB) Repository {
	if tx == nil {
		return r
	}
	return &repository{db: tx}
}

func (r *repository) Create(ctx context.Context, record *models.SaleRecord) error {
	return r.db.WithContext(ctx).Create(record).Error
}

// MaxSerial returns the highest serial issued so far, zero for an empty
// ledger. Callers that assign the next serial must hold a transaction.
func (r *repository) MaxSerial(ctx context.Context) (int64, error) {
	var serial int64
	err := r.db.WithContext(ctx).
		Model(&models.SaleRecord{}).
		Select("COALESCE(MAX(serial_no), 0)").
		Scan(&serial).Error
	if err != nil {
		return 0, err
	}
	return serial, nil
}

func (r *repository) FindByID(ctx context.Context, id uuid.UUID) (*models.SaleRecord, error) {
	var record models.SaleRecord
	if err := r.db.WithContext(ctx).
		Preload("Lines").
		First(&record, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &record, nil
}

func (r *repository) FindByInvoiceNo(ctx context.Context, invoiceNo string) (*models.SaleRecord, error) {
	var record models.SaleRecord
	if err := r.db.WithContext(ctx).
		Preload("Lines").
		First(&record, "invoice_no = ?", invoiceNo).Error; err != nil {
		return nil, err
	}
	return &record, nil
}

func (r *repository) List(ctx context.Context, filter Filter, page pagination.Params) ([]models.SaleRecord, error) {
	query := r.applyFilter(r.db.WithContext(ctx).Model(&models.SaleRecord{}), filter)

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

	var records []models.SaleRecord
	err = query.
		Preload("Lines").
		Order("created_at DESC, id DESC").
		Limit(pagination.LimitWithBuffer(page.Limit)).
		Find(&records).Error
	if err != nil {
		return nil, err
	}
	return records, nil
}

func (r *repository) UpdateStatus(ctx context.Context, id uuid.UUID, status enums.SaleStatus) error {
	return r.db.WithContext(ctx).
		Model(&models.SaleRecord{}).
		Where("id = ?", id).
		Update("status", status).Error
}

// Stream yields matching records in serial order. Each range re-runs the
// query, so the sequence always reflects current ledger state. Records load
// in batches to keep memory bounded on long ledgers.
func (r *repository) Stream(ctx context.Context, filter Filter) iter.Seq2[models.SaleRecord, error] {
	return func(yield func(models.SaleRecord, error) bool) {
		lastSerial := int64(0)
		for {
			var batch []models.SaleRecord
			err := r.applyFilter(r.db.WithContext(ctx).Model(&models.SaleRecord{}), filter).
				Where("serial_no > ?", lastSerial).
				Preload("Lines").
				Order("serial_no ASC").
				Limit(streamBatchSize).
				Find(&batch).Error
			if err != nil {
				yield(models.SaleRecord{}, err)
				return
			}
			for _, record := range batch {
				if !yield(record, nil) {
					return
				}
				lastSerial = record.SerialNo
			}
			if len(batch) < streamBatchSize {
				return
			}
		}
	}
}

func (r *repository) applyFilter(query *gorm.DB, filter Filter) *gorm.DB {
	if filter.Status != nil {
		query = query.Where("status = ?", *filter.Status)
	}
	if search := strings.TrimSpace(filter.Search); search != "" {
		pattern := "%" + strings.ToLower(search) + "%"
		query = query.Where("LOWER(invoice_no) LIKE ? OR LOWER(customer_name) LIKE ?", pattern, pattern)
	}
	if filter.From != nil {
		query = query.Where("created_at >= ?", *filter.From)
	}
	if filter.To != nil {
		query = query.Where("created_at < ?", *filter.To)
	}
	return query
}
