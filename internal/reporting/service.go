// Package reporting derives dashboard numbers from the other services. It
// owns no tables of its own; everything here is a projection.
package reporting

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/nayyarmobile/shopdesk-backend/internal/catalog"
	"github.com/nayyarmobile/shopdesk-backend/internal/expenses"
	"github.com/nayyarmobile/shopdesk-backend/internal/ledger"
	"github.com/nayyarmobile/shopdesk-backend/internal/repairs"
	"github.com/nayyarmobile/shopdesk-backend/pkg/db/models"
	"github.com/nayyarmobile/shopdesk-backend/pkg/enums"
	pkgerrors "github.com/nayyarmobile/shopdesk-backend/pkg/errors"
)

// DashboardSummary is the day-at-a-glance view for the back office. Voided
// and returned sales do not count toward the totals.
type DashboardSummary struct {
	Date           time.Time       `json:"date"`
	SalesTotal     decimal.Decimal `json:"sales_total"`
	SalesCount     int             `json:"sales_count"`
	ItemsSold      int             `json:"items_sold"`
	GrossProfit    decimal.Decimal `json:"gross_profit"`
	StockItems     int64           `json:"stock_items"`
	StockUnits     int64           `json:"stock_units"`
	LowStockItems  int64           `json:"low_stock_items"`
	PendingRepairs int64           `json:"pending_repairs"`
	ExpensesTotal  decimal.Decimal `json:"expenses_total"`
	NetTotal       decimal.Decimal `json:"net_total"`
}

// Service computes dashboard summaries.
type Service interface {
	DailySummary(ctx context.Context, day time.Time) (*DashboardSummary, error)
}

type service struct {
	ledgerSvc   ledger.Service
	catalogSvc  catalog.Service
	repairsSvc  repairs.Service
	expensesSvc expenses.Service
}

// NewService wires the reporting service over the domain services it reads.
func NewService(
	ledgerSvc ledger.Service,
	catalogSvc catalog.Service,
	repairsSvc repairs.Service,
	expensesSvc expenses.Service,
) (Service, error) {
	if ledgerSvc == nil {
		return nil, fmt.Errorf("ledger service required")
	}
	if catalogSvc == nil {
		return nil, fmt.Errorf("catalog service required")
	}
	if repairsSvc == nil {
		return nil, fmt.Errorf("repairs service required")
	}
	if expensesSvc == nil {
		return nil, fmt.Errorf("expenses service required")
	}
	return &service{
		ledgerSvc:   ledgerSvc,
		catalogSvc:  catalogSvc,
		repairsSvc:  repairsSvc,
		expensesSvc: expensesSvc,
	}, nil
}

func (s *service) DailySummary(ctx context.Context, day time.Time) (*DashboardSummary, error) {
	from := time.Date(day.Year(), day.Month(), day.Day(), 0, 0, 0, 0, day.Location())
	to := from.AddDate(0, 0, 1)

	summary := &DashboardSummary{
		Date:          from,
		SalesTotal:    decimal.Zero,
		GrossProfit:   decimal.Zero,
		ExpensesTotal: decimal.Zero,
	}

	inWindow := func(record *models.SaleRecord) bool {
		return record.Status == enums.SaleStatusCompleted &&
			!record.CreatedAt.Before(from) &&
			record.CreatedAt.Before(to)
	}
	costs := map[uuid.UUID]decimal.Decimal{}
	for record, err := range s.ledgerSvc.Query(ctx, inWindow) {
		if err != nil {
			return nil, err
		}
		summary.SalesTotal = summary.SalesTotal.Add(record.GrandTotal)
		summary.SalesCount++
		for _, line := range record.Lines {
			summary.ItemsSold += line.Quantity
			cost, err := s.unitCost(ctx, costs, line.ItemID)
			if err != nil {
				return nil, err
			}
			profit := line.LineTotal.Sub(cost.Mul(decimal.NewFromInt(int64(line.Quantity))))
			summary.GrossProfit = summary.GrossProfit.Add(profit)
		}
	}

	stock, err := s.catalogSvc.Summary(ctx)
	if err != nil {
		return nil, err
	}
	summary.StockItems = stock.ItemCount
	summary.StockUnits = stock.TotalUnits
	summary.LowStockItems = stock.LowStock

	pending, err := s.repairsSvc.PendingCount(ctx)
	if err != nil {
		return nil, err
	}
	summary.PendingRepairs = pending

	spent, err := s.expensesSvc.TotalBetween(ctx, from, to)
	if err != nil {
		return nil, err
	}
	summary.ExpensesTotal = spent
	summary.NetTotal = summary.SalesTotal.Sub(spent)

	return summary, nil
}

// unitCost resolves the current unit cost of an item, caching per call.
// Items removed from the catalog since the sale count with zero cost.
func (s *service) unitCost(ctx context.Context, cache map[uuid.UUID]decimal.Decimal, itemID uuid.UUID) (decimal.Decimal, error) {
	if cost, ok := cache[itemID]; ok {
		return cost, nil
	}
	item, err := s.catalogSvc.LookupByID(ctx, itemID)
	if err != nil {
		if pkgerrors.Is(err, pkgerrors.CodeNotFound) {
			cache[itemID] = decimal.Zero
			return decimal.Zero, nil
		}
		return decimal.Zero, err
	}
	cache[itemID] = item.UnitCost
	return item.UnitCost, nil
}
