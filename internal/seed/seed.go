// Package seed loads the demo dataset used by the in-memory mode so the
// dashboard has something to show on a fresh boot.
package seed

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/nayyarmobile/shopdesk-backend/internal/catalog"
	"github.com/nayyarmobile/shopdesk-backend/internal/ledger"
	"github.com/nayyarmobile/shopdesk-backend/pkg/db"
	"github.com/nayyarmobile/shopdesk-backend/pkg/db/models"
	"github.com/nayyarmobile/shopdesk-backend/pkg/enums"
	"github.com/nayyarmobile/shopdesk-backend/pkg/logger"
)

func strptr(s string) *string { return &s }

func demoItems() []models.CatalogItem {
	return []models.CatalogItem{
		{
			Name: "iPhone 15 Pro", Brand: "Apple", Model: "A3102",
			Storage: "256GB", Color: "Natural Titanium", ScanCode: "1001",
			Category:  enums.ItemCategoryPhones,
			UnitPrice: decimal.NewFromInt(1199), UnitCost: decimal.NewFromInt(950),
			StockQuantity: 12,
			ImageURL:      strptr("https://images.unsplash.com/photo-1696446701796-da61225697cc?w=200"),
		},
		{
			Name: "S24 Ultra", Brand: "Samsung", Model: "SM-S928",
			Storage: "512GB", Color: "Titanium Black", ScanCode: "1002",
			Category:  enums.ItemCategoryPhones,
			UnitPrice: decimal.NewFromInt(1299), UnitCost: decimal.NewFromInt(1050),
			StockQuantity: 8,
			ImageURL:      strptr("https://images.unsplash.com/photo-1610945265064-0e34e5519bbf?w=200"),
		},
		{
			Name: "AirPods Pro 2", Brand: "Apple", Model: "A2698",
			Storage: "-", Color: "White", ScanCode: "2001",
			Category:  enums.ItemCategoryAccessories,
			UnitPrice: decimal.NewFromInt(249), UnitCost: decimal.NewFromInt(180),
			StockQuantity: 25,
			ImageURL:      strptr("https://images.unsplash.com/photo-1588156979435-379b9d802b0a?w=200"),
		},
		{
			Name: "20W Adapter", Brand: "Apple", Model: "A2305",
			Storage: "-", Color: "White", ScanCode: "2002",
			Category:  enums.ItemCategoryAccessories,
			UnitPrice: decimal.NewFromInt(25), UnitCost: decimal.NewFromInt(12),
			StockQuantity: 50,
			ImageURL:      strptr("https://images.unsplash.com/photo-1583863788434-e58a36330cf0?w=200"),
		},
		{
			Name: "Leather Case", Brand: "Apple", Model: "iPhone 15",
			Storage: "-", Color: "Midnight", ScanCode: "2003",
			Category:  enums.ItemCategoryAccessories,
			UnitPrice: decimal.NewFromInt(59), UnitCost: decimal.NewFromInt(30),
			StockQuantity: 15,
			ImageURL:      strptr("https://images.unsplash.com/photo-1616348436168-de43ad0db179?w=200"),
		},
	}
}

func openingSale(phone models.CatalogItem) models.SaleRecord {
	price := decimal.NewFromInt(1199)
	return models.SaleRecord{
		SerialNo:       1,
		InvoiceNo:      "INV-10001",
		CustomerName:   "James Anderson",
		CustomerPhone:  "555-0102",
		Subtotal:       price,
		TaxAmount:      decimal.Zero,
		GlobalDiscount: decimal.Zero,
		GrandTotal:     price,
		CashTendered:   decimal.NewFromInt(1200),
		OnlineTendered: decimal.Zero,
		ChangeDue:      decimal.NewFromInt(1),
		GiftIncluded:   true,
		Salesman:       "Nayyar",
		Status:         enums.SaleStatusCompleted,
		Lines: []models.SaleLine{{
			ItemID:       phone.ID,
			Name:         phone.Name,
			Brand:        phone.Brand,
			ScanCode:     phone.ScanCode,
			Quantity:     1,
			UnitPrice:    price,
			LineDiscount: decimal.Zero,
			LineTotal:    price,
		}},
		CreatedAt: time.Date(2024, time.March, 20, 10, 45, 0, 0, time.UTC),
	}
}

// Demo inserts the demo catalog and opening sale. It is a no-op when the
// catalog already has items, so repeated boots against a durable store
// stay idempotent.
func Demo(ctx context.Context, client *db.Client, logg *logger.Logger) error {
	catalogRepo := catalog.NewRepository(client.DB())

	summary, err := catalogRepo.Summarize(ctx)
	if err != nil {
		return err
	}
	if summary.ItemCount > 0 {
		return nil
	}

	err = client.WithTx(ctx, func(tx *gorm.DB) error {
		txCatalog := catalogRepo.WithTx(tx)
		items := demoItems()
		for i := range items {
			if err := txCatalog.Create(ctx, &items[i]); err != nil {
				return err
			}
		}
		sale := openingSale(items[0])
		return ledger.NewRepository(client.DB()).WithTx(tx).Create(ctx, &sale)
	})
	if err != nil {
		return err
	}

	if logg != nil {
		logg.Info(ctx, "demo data seeded")
	}
	return nil
}
