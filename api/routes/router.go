package routes

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/nayyarmobile/shopdesk-backend/api/controllers"
	"github.com/nayyarmobile/shopdesk-backend/api/middleware"
	"github.com/nayyarmobile/shopdesk-backend/internal/catalog"
	"github.com/nayyarmobile/shopdesk-backend/internal/checkout"
	"github.com/nayyarmobile/shopdesk-backend/internal/expenses"
	"github.com/nayyarmobile/shopdesk-backend/internal/ledger"
	"github.com/nayyarmobile/shopdesk-backend/internal/notifications"
	"github.com/nayyarmobile/shopdesk-backend/internal/repairs"
	"github.com/nayyarmobile/shopdesk-backend/internal/reporting"
	"github.com/nayyarmobile/shopdesk-backend/pkg/config"
	"github.com/nayyarmobile/shopdesk-backend/pkg/db"
	"github.com/nayyarmobile/shopdesk-backend/pkg/logger"
)

// Deps carries everything the HTTP layer needs. The router owns no
// business logic; every route delegates to a service or the orchestrator.
type Deps struct {
	Config       *config.Config
	Logger       *logger.Logger
	DB           db.Pinger
	Orchestrator *checkout.Orchestrator
	Catalog      catalog.Service
	Ledger       ledger.Service
	Repairs      repairs.Service
	Expenses     expenses.Service
	Reporting    reporting.Service
	Toasts       *notifications.Center
	Metrics      prometheus.Gatherer
}

// NewRouter builds the full route tree with middleware applied.
func NewRouter(deps Deps) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.Recoverer(deps.Logger))
	r.Use(middleware.RequestID(deps.Logger))
	r.Use(middleware.Logging(deps.Logger))
	r.Use(middleware.CORS())

	r.Get("/health/live", controllers.HealthLive(deps.Config))
	r.Get("/health/ready", controllers.HealthReady(deps.Config, deps.Logger, deps.DB))

	if deps.Metrics != nil {
		r.Method(http.MethodGet, "/metrics", promhttp.HandlerFor(deps.Metrics, promhttp.HandlerOpts{}))
	}

	r.Route("/api/v1", func(r chi.Router) {
		r.Route("/pos", func(r chi.Router) {
			r.Get("/session", controllers.PosSession(deps.Orchestrator, deps.Logger))
			r.Post("/session", controllers.PosOpenSession(deps.Orchestrator, deps.Logger))
			r.Delete("/session", controllers.PosAbortSession(deps.Orchestrator, deps.Logger))
			r.Post("/session/items", controllers.PosAddItem(deps.Orchestrator, deps.Logger))
			r.Post("/session/scan", controllers.PosScanItem(deps.Orchestrator, deps.Logger))
			r.Put("/session/items/{itemId}/quantity", controllers.PosChangeQuantity(deps.Orchestrator, deps.Logger))
			r.Put("/session/items/{itemId}/discount", controllers.PosSetLineDiscount(deps.Orchestrator, deps.Logger))
			r.Delete("/session/items/{itemId}", controllers.PosRemoveItem(deps.Orchestrator, deps.Logger))
			r.Patch("/session/settings", controllers.PosUpdateSettings(deps.Orchestrator, deps.Logger))
			r.Put("/session/payment", controllers.PosSetPayment(deps.Orchestrator, deps.Logger))
			r.Post("/session/commit", controllers.PosCommit(deps.Orchestrator, deps.Logger))
			r.Get("/toasts", controllers.PosToasts(deps.Toasts))
		})

		r.Route("/sales", func(r chi.Router) {
			r.Get("/", controllers.SalesList(deps.Ledger, deps.Logger))
			r.Get("/{invoiceNo}", controllers.SaleDetail(deps.Ledger, deps.Logger))
			r.Put("/{invoiceNo}/status", controllers.SaleMarkStatus(deps.Ledger, deps.Logger))
		})

		r.Route("/inventory", func(r chi.Router) {
			r.Get("/", controllers.InventoryList(deps.Catalog, deps.Logger))
			r.Post("/", controllers.InventoryCreate(deps.Catalog, deps.Logger))
			r.Get("/scan/{scanCode}", controllers.InventoryLookupByScan(deps.Catalog, deps.Logger))
			r.Get("/{itemId}", controllers.InventoryDetail(deps.Catalog, deps.Logger))
			r.Put("/{itemId}", controllers.InventoryUpdate(deps.Catalog, deps.Logger))
			r.Delete("/{itemId}", controllers.InventoryDelete(deps.Catalog, deps.Logger))
			r.Post("/{itemId}/restock", controllers.InventoryRestock(deps.Catalog, deps.Logger))
		})

		r.Route("/repairs", func(r chi.Router) {
			r.Get("/", controllers.RepairsList(deps.Repairs, deps.Logger))
			r.Post("/", controllers.RepairsCreate(deps.Repairs, deps.Logger))
			r.Put("/{ticketId}", controllers.RepairsUpdate(deps.Repairs, deps.Logger))
			r.Put("/{ticketId}/status", controllers.RepairsAdvanceStatus(deps.Repairs, deps.Logger))
		})

		r.Route("/expenses", func(r chi.Router) {
			r.Get("/", controllers.ExpensesList(deps.Expenses, deps.Logger))
			r.Post("/", controllers.ExpensesCreate(deps.Expenses, deps.Logger))
			r.Delete("/{expenseId}", controllers.ExpensesDelete(deps.Expenses, deps.Logger))
		})

		r.Get("/dashboard/summary", controllers.DashboardSummary(deps.Reporting, deps.Logger))
	})

	return r
}
