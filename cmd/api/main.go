package main

import (
	"context"
	"net/http"
	"os"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/nayyarmobile/shopdesk-backend/api/routes"
	"github.com/nayyarmobile/shopdesk-backend/internal/catalog"
	"github.com/nayyarmobile/shopdesk-backend/internal/checkout"
	"github.com/nayyarmobile/shopdesk-backend/internal/expenses"
	"github.com/nayyarmobile/shopdesk-backend/internal/ledger"
	"github.com/nayyarmobile/shopdesk-backend/internal/notifications"
	"github.com/nayyarmobile/shopdesk-backend/internal/repairs"
	"github.com/nayyarmobile/shopdesk-backend/internal/reporting"
	"github.com/nayyarmobile/shopdesk-backend/internal/seed"
	"github.com/nayyarmobile/shopdesk-backend/pkg/config"
	"github.com/nayyarmobile/shopdesk-backend/pkg/db"
	"github.com/nayyarmobile/shopdesk-backend/pkg/logger"
	"github.com/nayyarmobile/shopdesk-backend/pkg/metrics"
)

func main() {
	logg := logger.New(logger.Options{ServiceName: "api"})

	if err := godotenv.Load(); err != nil {
		logg.Warn(context.Background(), ".env file not found, relying on environment")
	}

	cfg, err := config.Load()
	if err != nil {
		logg.Error(context.Background(), "failed to load config", err)
		os.Exit(1)
	}

	logg = logger.New(logger.Options{
		ServiceName: "api",
		Level:       logger.ParseLevel(cfg.App.LogLevel),
		Format:      cfg.App.LogFormat,
		WarnStack:   cfg.App.LogWarnStack,
	})

	dbClient, err := db.New(context.Background(), cfg.DB, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to bootstrap database", err)
		os.Exit(1)
	}
	defer func() {
		if err := dbClient.Close(); err != nil {
			logg.Error(context.Background(), "error closing database", err)
		}
	}()

	if err := dbClient.AutoMigrate(context.Background()); err != nil {
		logg.Error(context.Background(), "failed to run migrations", err)
		os.Exit(1)
	}

	if cfg.Seed.Demo {
		if err := seed.Demo(context.Background(), dbClient, logg); err != nil {
			logg.Error(context.Background(), "failed to seed demo data", err)
			os.Exit(1)
		}
	}

	catalogSvc, err := catalog.NewService(catalog.NewRepository(dbClient.DB()))
	if err != nil {
		logg.Error(context.Background(), "failed to create catalog service", err)
		os.Exit(1)
	}
	ledgerSvc, err := ledger.NewService(ledger.NewRepository(dbClient.DB()), catalogSvc, dbClient)
	if err != nil {
		logg.Error(context.Background(), "failed to create ledger service", err)
		os.Exit(1)
	}
	repairsSvc, err := repairs.NewService(repairs.NewRepository(dbClient.DB()))
	if err != nil {
		logg.Error(context.Background(), "failed to create repairs service", err)
		os.Exit(1)
	}
	expensesSvc, err := expenses.NewService(expenses.NewRepository(dbClient.DB()))
	if err != nil {
		logg.Error(context.Background(), "failed to create expenses service", err)
		os.Exit(1)
	}
	reportingSvc, err := reporting.NewService(ledgerSvc, catalogSvc, repairsSvc, expensesSvc)
	if err != nil {
		logg.Error(context.Background(), "failed to create reporting service", err)
		os.Exit(1)
	}

	registry := prometheus.NewRegistry()
	checkoutMetrics := metrics.NewCheckoutMetrics(registry)

	toastCenter := notifications.NewCenter(cfg.Checkout.ToastTTL)
	orchestrator, err := checkout.NewOrchestrator(
		dbClient, catalogSvc, ledgerSvc, toastCenter, checkoutMetrics, logg, cfg.Checkout,
	)
	if err != nil {
		logg.Error(context.Background(), "failed to create checkout orchestrator", err)
		os.Exit(1)
	}

	port := os.Getenv("PORT")
	if port == "" {
		port = cfg.App.Port
	}
	addr := ":" + port
	ctx := logg.WithFields(context.Background(), map[string]any{
		"env":  cfg.App.Env,
		"addr": addr,
	})
	logg.Info(ctx, "starting api server")

	server := &http.Server{
		Addr: addr,
		Handler: routes.NewRouter(routes.Deps{
			Config:       cfg,
			Logger:       logg,
			DB:           dbClient,
			Orchestrator: orchestrator,
			Catalog:      catalogSvc,
			Ledger:       ledgerSvc,
			Repairs:      repairsSvc,
			Expenses:     expensesSvc,
			Reporting:    reportingSvc,
			Toasts:       toastCenter,
			Metrics:      registry,
		}),
	}

	if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		logg.Error(ctx, "api server stopped unexpectedly", err)
		os.Exit(1)
	}
}
