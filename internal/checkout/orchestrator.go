// Package checkout drives the POS sale lifecycle on a single terminal:
// open a session, stage cart state, and commit stock deduction plus ledger
// append as one transaction.
package checkout

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/nayyarmobile/shopdesk-backend/internal/cart"
	"github.com/nayyarmobile/shopdesk-backend/internal/catalog"
	"github.com/nayyarmobile/shopdesk-backend/internal/ledger"
	"github.com/nayyarmobile/shopdesk-backend/internal/notifications"
	"github.com/nayyarmobile/shopdesk-backend/internal/pricing"
	"github.com/nayyarmobile/shopdesk-backend/pkg/config"
	"github.com/nayyarmobile/shopdesk-backend/pkg/db/models"
	pkgerrors "github.com/nayyarmobile/shopdesk-backend/pkg/errors"
	"github.com/nayyarmobile/shopdesk-backend/pkg/logger"
	"github.com/nayyarmobile/shopdesk-backend/pkg/metrics"
)

// State is the terminal's position in the sale lifecycle.
type State string

const (
	StateIdle        State = "idle"
	StateSessionOpen State = "session_open"
	StateCommitting  State = "committing"
)

// terminalName labels metrics; one terminal is assumed.
const terminalName = "pos-1"

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

// Snapshot is the read view of the open session for the terminal screen.
type Snapshot struct {
	State     State
	Lines     []cart.Line
	Settings  cart.Settings
	Payment   cart.Payment
	Breakdown pricing.Breakdown
	ChangeDue decimal.Decimal
}

// Orchestrator serializes every sale operation behind one mutex, so the
// commit critical section can never interleave with cart mutations or a
// second commit.
type Orchestrator struct {
	mu      sync.Mutex
	state   State
	session *cart.Session

	tx         txRunner
	catalogSvc catalog.Service
	ledgerSvc  ledger.Service
	notifier   notifications.Notifier
	checkout   *metrics.CheckoutMetrics
	logg       *logger.Logger
	taxRate    decimal.Decimal
	salesman   string
}

// NewOrchestrator wires the checkout orchestrator.
func NewOrchestrator(
	tx txRunner,
	catalogSvc catalog.Service,
	ledgerSvc ledger.Service,
	notifier notifications.Notifier,
	checkoutMetrics *metrics.CheckoutMetrics,
	logg *logger.Logger,
	cfg config.CheckoutConfig,
) (*Orchestrator, error) {
	if tx == nil {
		return nil, fmt.Errorf("tx runner required")
	}
	if catalogSvc == nil {
		return nil, fmt.Errorf("catalog service required")
	}
	if ledgerSvc == nil {
		return nil, fmt.Errorf("ledger service required")
	}
	if notifier == nil {
		return nil, fmt.Errorf("notifier required")
	}
	taxRate, err := cfg.TaxRate()
	if err != nil {
		return nil, err
	}
	return &Orchestrator{
		state:      StateIdle,
		tx:         tx,
		catalogSvc: catalogSvc,
		ledgerSvc:  ledgerSvc,
		notifier:   notifier,
		checkout:   checkoutMetrics,
		logg:       logg,
		taxRate:    taxRate,
		salesman:   cfg.Salesman,
	}, nil
}

// OpenSession starts a fresh sale. Only one session may be open at a time.
func (o *Orchestrator) OpenSession(ctx context.Context) error {
	o.mu.Lock()
	defer o.mu.Unlock()
	if o.state != StateIdle {
		return pkgerrors.New(pkgerrors.CodeStateConflict, "a session is already open")
	}
	o.session = cart.NewSession()
	o.state = StateSessionOpen
	o.checkout.SessionOpened()
	o.infof(ctx, "checkout session opened")
	return nil
}

// AbortSession discards all staged state and returns to idle.
func (o *Orchestrator) AbortSession(ctx context.Context) error {
	o.mu.Lock()
	defer o.mu.Unlock()
	if o.state != StateSessionOpen {
		return pkgerrors.New(pkgerrors.CodeStateConflict, "no open session to abort")
	}
	o.resetLocked()
	o.infof(ctx, "checkout session aborted")
	o.notifier.Notify(notifications.LevelInfo, "Sale cancelled")
	return nil
}

// State returns the current lifecycle state.
func (o *Orchestrator) State() State {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.state
}

// Snapshot returns the current session view, recomputing the breakdown.
func (o *Orchestrator) Snapshot() (*Snapshot, error) {
	o.mu.Lock()
	defer o.mu.Unlock()
	if o.state == StateIdle {
		return &Snapshot{State: StateIdle}, nil
	}
	breakdown := o.session.Breakdown(o.taxRate)
	return &Snapshot{
		State:     o.state,
		Lines:     o.session.Lines(),
		Settings:  o.session.Settings(),
		Payment:   o.session.Payment(),
		Breakdown: breakdown,
		ChangeDue: o.session.ChangeDue(o.taxRate),
	}, nil
}

// AddItemByID looks up a catalog item and adds one unit to the cart.
func (o *Orchestrator) AddItemByID(ctx context.Context, itemID uuid.UUID) error {
	item, err := o.catalogSvc.LookupByID(ctx, itemID)
	if err != nil {
		return err
	}
	return o.addItem(item)
}

// AddItemByScanCode resolves a scan and adds the item. An unknown code
// surfaces as a toast as well as an error, matching the scan-gun flow where
// nobody is looking at the response body.
func (o *Orchestrator) AddItemByScanCode(ctx context.Context, scanCode string) error {
	item, err := o.catalogSvc.LookupByScanCode(ctx, scanCode)
	if err != nil {
		if pkgerrors.Is(err, pkgerrors.CodeScanNotFound) {
			o.notifier.Notify(notifications.LevelError, "No item matches scan code "+scanCode)
		}
		return err
	}
	return o.addItem(item)
}

func (o *Orchestrator) addItem(item *models.CatalogItem) error {
	o.mu.Lock()
	defer o.mu.Unlock()
	if err := o.requireOpenLocked(); err != nil {
		return err
	}
	if err := o.session.AddItem(item); err != nil {
		switch {
		case pkgerrors.Is(err, pkgerrors.CodeOutOfStock):
			o.notifier.Notify(notifications.LevelWarning, item.Name+" is out of stock")
		case pkgerrors.Is(err, pkgerrors.CodeStockLimitReached):
			o.notifier.Notify(notifications.LevelWarning, "All available "+item.Name+" already in cart")
		}
		return err
	}
	return nil
}

// ChangeQuantity sets a line quantity, clamped to the item's live stock. The
// catalog is re-read so restocks made after the item entered the cart raise
// the clamp.
func (o *Orchestrator) ChangeQuantity(ctx context.Context, itemID uuid.UUID, quantity int) error {
	item, err := o.catalogSvc.LookupByID(ctx, itemID)
	if err != nil {
		return err
	}
	o.mu.Lock()
	defer o.mu.Unlock()
	if err := o.requireOpenLocked(); err != nil {
		return err
	}
	o.session.RefreshStockCap(itemID, item.StockQuantity)
	return o.session.ChangeQuantity(itemID, quantity)
}

// RemoveLine drops an item from the cart.
func (o *Orchestrator) RemoveLine(itemID uuid.UUID) error {
	o.mu.Lock()
	defer o.mu.Unlock()
	if err := o.requireOpenLocked(); err != nil {
		return err
	}
	return o.session.RemoveLine(itemID)
}

// SetLineDiscount applies a per-line discount.
func (o *Orchestrator) SetLineDiscount(itemID uuid.UUID, discount decimal.Decimal) error {
	o.mu.Lock()
	defer o.mu.Unlock()
	if err := o.requireOpenLocked(); err != nil {
		return err
	}
	return o.session.SetLineDiscount(itemID, discount)
}

// SetGlobalDiscount applies the whole-sale discount.
func (o *Orchestrator) SetGlobalDiscount(discount decimal.Decimal) error {
	o.mu.Lock()
	defer o.mu.Unlock()
	if err := o.requireOpenLocked(); err != nil {
		return err
	}
	return o.session.SetGlobalDiscount(discount)
}

// SetTaxEnabled toggles tax for the sale.
func (o *Orchestrator) SetTaxEnabled(enabled bool) error {
	o.mu.Lock()
	defer o.mu.Unlock()
	if err := o.requireOpenLocked(); err != nil {
		return err
	}
	o.session.SetTaxEnabled(enabled)
	return nil
}

// SetGiftIncluded toggles the gift flag.
func (o *Orchestrator) SetGiftIncluded(gift bool) error {
	o.mu.Lock()
	defer o.mu.Unlock()
	if err := o.requireOpenLocked(); err != nil {
		return err
	}
	o.session.SetGiftIncluded(gift)
	return nil
}

// SetCustomer records the customer snapshot for the sale.
func (o *Orchestrator) SetCustomer(name, phone string) error {
	o.mu.Lock()
	defer o.mu.Unlock()
	if err := o.requireOpenLocked(); err != nil {
		return err
	}
	o.session.SetCustomer(name, phone)
	return nil
}

// SetPayment records the tender split.
func (o *Orchestrator) SetPayment(cash, online decimal.Decimal) error {
	o.mu.Lock()
	defer o.mu.Unlock()
	if err := o.requireOpenLocked(); err != nil {
		return err
	}
	return o.session.SetPayment(cash, online)
}

// RequestCommit finalizes the sale: every line's stock deduction and the
// ledger append run in one transaction. Any failure rolls the whole commit
// back and the session stays open with its staged state intact.
func (o *Orchestrator) RequestCommit(ctx context.Context) (*models.SaleRecord, error) {
	o.mu.Lock()
	defer o.mu.Unlock()

	if err := o.requireOpenLocked(); err != nil {
		return nil, err
	}
	if o.session.IsEmpty() {
		return nil, pkgerrors.New(pkgerrors.CodeEmptyCart, "cannot commit an empty cart")
	}

	breakdown := o.session.Breakdown(o.taxRate)
	payment := o.session.Payment()
	if !pricing.CoversTotal(payment.CashTendered, payment.OnlineTendered, breakdown.GrandTotal) {
		return nil, pkgerrors.New(pkgerrors.CodeInsufficientPayment, "tendered amount does not cover total").
			WithDetails(map[string]string{
				"grand_total": breakdown.GrandTotal.String(),
				"tendered":    payment.CashTendered.Add(payment.OnlineTendered).String(),
			})
	}

	o.state = StateCommitting
	started := time.Now()

	record, err := o.commit(ctx, breakdown, payment)
	o.checkout.ObserveCommitDuration(terminalName, time.Since(started))
	if err != nil {
		o.state = StateSessionOpen
		o.checkout.IncCommitFailure(terminalName, string(pkgerrors.As(err).Code()))
		if pkgerrors.Is(err, pkgerrors.CodeInsufficientStock) {
			o.notifier.Notify(notifications.LevelError, "Stock changed during commit, sale not recorded")
		}
		return nil, err
	}

	o.checkout.IncCommitSuccess(terminalName)
	if o.logg != nil {
		o.logg.Info(o.logg.WithInvoiceNo(ctx, record.InvoiceNo), "sale committed")
	}
	o.notifier.Notify(notifications.LevelSuccess, "Sale committed "+record.InvoiceNo)
	o.resetLocked()
	return record, nil
}

func (o *Orchestrator) commit(ctx context.Context, breakdown pricing.Breakdown, payment cart.Payment) (*models.SaleRecord, error) {
	lines := o.session.Lines()
	settings := o.session.Settings()
	changeDue := pricing.ChangeDue(payment.CashTendered, payment.OnlineTendered, breakdown.GrandTotal)

	var record *models.SaleRecord
	err := o.tx.WithTx(ctx, func(tx *gorm.DB) error {
		for _, line := range lines {
			if err := o.catalogSvc.ReserveAndDeduct(ctx, tx, line.ItemID, line.Quantity); err != nil {
				return err
			}
		}

		appendLines := make([]ledger.AppendLine, 0, len(lines))
		for _, line := range lines {
			appendLines = append(appendLines, ledger.AppendLine{
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

		var err error
		record, err = o.ledgerSvc.Append(ctx, tx, ledger.AppendInput{
			CustomerName:   settings.CustomerName,
			CustomerPhone:  settings.CustomerPhone,
			Subtotal:       breakdown.Subtotal,
			TaxAmount:      breakdown.TaxAmount,
			GlobalDiscount: breakdown.GlobalDiscount,
			GrandTotal:     breakdown.GrandTotal,
			CashTendered:   payment.CashTendered,
			OnlineTendered: payment.OnlineTendered,
			ChangeDue:      changeDue,
			GiftIncluded:   settings.GiftIncluded,
			Salesman:       o.salesman,
			Lines:          appendLines,
		})
		return err
	})
	if err != nil {
		return nil, err
	}
	return record, nil
}

// requireOpenLocked guards cart mutations. Callers must hold the lock.
func (o *Orchestrator) requireOpenLocked() error {
	if o.state != StateSessionOpen {
		return pkgerrors.New(pkgerrors.CodeStateConflict, "no open session")
	}
	return nil
}

// resetLocked returns the terminal to idle. Callers must hold the lock.
func (o *Orchestrator) resetLocked() {
	o.session = nil
	o.state = StateIdle
	o.checkout.SessionClosed()
}

func (o *Orchestrator) infof(ctx context.Context, msg string) {
	if o.logg != nil {
		o.logg.Info(ctx, msg)
	}
}
