package ledger

import (
	"context"
	stdErrors "errors"
	"fmt"
	"iter"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/nayyarmobile/shopdesk-backend/internal/catalog"
	"github.com/nayyarmobile/shopdesk-backend/pkg/db"
	"github.com/nayyarmobile/shopdesk-backend/pkg/db/models"
	"github.com/nayyarmobile/shopdesk-backend/pkg/enums"
	pkgerrors "github.com/nayyarmobile/shopdesk-backend/pkg/errors"
	"github.com/nayyarmobile/shopdesk-backend/pkg/pagination"
)

// invoiceBase offsets serials so the first invoice reads INV-10001.
const invoiceBase = 10000

// InvoiceNo derives the invoice identifier for a serial. The mapping is
// fixed; receipts and searches rely on it never changing.
func InvoiceNo(serial int64) string {
	return fmt.Sprintf("INV-%d", invoiceBase+serial)
}

// AppendLine is the frozen copy of one cart line headed into the ledger.
type AppendLine struct {
	ItemID       uuid.UUID
	Name         string
	Brand        string
	ScanCode     string
	Quantity     int
	UnitPrice    decimal.Decimal
	LineDiscount decimal.Decimal
	LineTotal    decimal.Decimal
}

// AppendInput carries everything a committed sale records.
type AppendInput struct {
	CustomerName   string
	CustomerPhone  string
	Subtotal       decimal.Decimal
	TaxAmount      decimal.Decimal
	GlobalDiscount decimal.Decimal
	GrandTotal     decimal.Decimal
	CashTendered   decimal.Decimal
	OnlineTendered decimal.Decimal
	ChangeDue      decimal.Decimal
	GiftIncluded   bool
	Salesman       string
	Lines          []AppendLine
}

// ListResult is one page of the sales history plus the cursor for the next.
type ListResult struct {
	Records    []models.SaleRecord
	NextCursor string
}

// Service exposes the append-only sale ledger.
type Service interface {
	Append(ctx context.Context, tx *gorm.DB, input AppendInput) (*models.SaleRecord, error)
	GetByInvoiceNo(ctx context.Context, invoiceNo string) (*models.SaleRecord, error)
	ListSales(ctx context.Context, filter Filter, page pagination.Params) (*ListResult, error)
	Query(ctx context.Context, predicate func(*models.SaleRecord) bool) iter.Seq2[models.SaleRecord, error]
	MarkStatus(ctx context.Context, invoiceNo string, status enums.SaleStatus) (*models.SaleRecord, error)
}

type service struct {
	repo       Repository
	catalogSvc catalog.Service
	client     *db.Client
}

// NewService wires the ledger service with its repository, the catalog for
// return restocks, and the db client for status transactions.
func NewService(repo Repository, catalogSvc catalog.Service, client *db.Client) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("ledger repository required")
	}
	if catalogSvc == nil {
		return nil, fmt.Errorf("catalog service required")
	}
	if client == nil {
		return nil, fmt.Errorf("db client required")
	}
	return &service{repo: repo, catalogSvc: catalogSvc, client: client}, nil
}

// Append writes a completed sale inside the caller's transaction. The serial
// is read and assigned under that same transaction, which is what keeps
// serials strictly increasing with no duplicates.
func (s *service) Append(ctx context.Context, tx *gorm.DB, input AppendInput) (*models.SaleRecord, error) {
	if tx == nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "append requires a transaction")
	}
	if len(input.Lines) == 0 {
		return nil, pkgerrors.New(pkgerrors.CodeEmptyCart, "cannot record a sale without lines")
	}

	repo := s.repo.WithTx(tx)
	lastSerial, err := repo.MaxSerial(ctx)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "read last serial")
	}
	serial := lastSerial + 1

	record := &models.SaleRecord{
		SerialNo:       serial,
		InvoiceNo:      InvoiceNo(serial),
		CustomerName:   input.CustomerName,
		CustomerPhone:  input.CustomerPhone,
		Subtotal:       input.Subtotal,
		TaxAmount:      input.TaxAmount,
		GlobalDiscount: input.GlobalDiscount,
		GrandTotal:     input.GrandTotal,
		CashTendered:   input.CashTendered,
		OnlineTendered: input.OnlineTendered,
		ChangeDue:      input.ChangeDue,
		GiftIncluded:   input.GiftIncluded,
		Salesman:       input.Salesman,
		Status:         enums.SaleStatusCompleted,
	}
	for _, line := range input.Lines {
		record.Lines = append(record.Lines, models.SaleLine{
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

	if err := repo.Create(ctx, record); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "append sale record")
	}
	return record, nil
}

func (s *service) GetByInvoiceNo(ctx context.Context, invoiceNo string) (*models.SaleRecord, error) {
	record, err := s.repo.FindByInvoiceNo(ctx, invoiceNo)
	if err != nil {
		if stdErrors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "sale record not found").
				WithDetails(map[string]string{"invoice_no": invoiceNo})
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "load sale record")
	}
	return record, nil
}

func (s *service) ListSales(ctx context.Context, filter Filter, page pagination.Params) (*ListResult, error) {
	records, err := s.repo.List(ctx, filter, page)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "list sales")
	}

	limit := pagination.NormalizeLimit(page.Limit)
	result := &ListResult{Records: records}
	if len(records) > limit {
		result.Records = records[:limit]
		last := result.Records[limit-1]
		result.NextCursor = pagination.EncodeCursor(pagination.Cursor{
			CreatedAt: last.CreatedAt,
			ID:        last.ID,
		})
	}
	return result, nil
}

// Query yields ledger records matching the predicate. The sequence is lazy
// and finite, and each range restarts against current ledger state.
func (s *service) Query(ctx context.Context, predicate func(*models.SaleRecord) bool) iter.Seq2[models.SaleRecord, error] {
	return func(yield func(models.SaleRecord, error) bool) {
		for record, err := range s.repo.Stream(ctx, Filter{}) {
			if err != nil {
				yield(models.SaleRecord{}, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "stream ledger"))
				return
			}
			if predicate != nil && !predicate(&record) {
				continue
			}
			if !yield(record, nil) {
				return
			}
		}
	}
}

// MarkStatus applies the only permitted post-append mutation. Marking a sale
// returned also puts its units back into the catalog, in the same
// transaction.
func (s *service) MarkStatus(ctx context.Context, invoiceNo string, status enums.SaleStatus) (*models.SaleRecord, error) {
	if !status.IsValid() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, fmt.Sprintf("invalid status %q", status))
	}

	var updated *models.SaleRecord
	err := s.client.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		record, err := repo.FindByInvoiceNo(ctx, invoiceNo)
		if err != nil {
			if stdErrors.Is(err, gorm.ErrRecordNotFound) {
				return pkgerrors.New(pkgerrors.CodeNotFound, "sale record not found").
					WithDetails(map[string]string{"invoice_no": invoiceNo})
			}
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "load sale record")
		}
		if !record.Status.CanTransitionTo(status) {
			return pkgerrors.New(pkgerrors.CodeStateConflict, "status transition disallowed").
				WithDetails(map[string]string{
					"invoice_no": invoiceNo,
					"from":       record.Status.String(),
					"to":         status.String(),
				})
		}
		if err := repo.UpdateStatus(ctx, record.ID, status); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "update sale status")
		}
		if status == enums.SaleStatusReturned {
			for _, line := range record.Lines {
				if err := s.catalogSvc.ReturnStock(ctx, tx, line.ItemID, line.Quantity); err != nil {
					return err
				}
			}
		}
		record.Status = status
		updated = record
		return nil
	})
	if err != nil {
		return nil, err
	}
	return updated, nil
}
