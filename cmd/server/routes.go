package main

import (
	"log/slog"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"gorm.io/gorm"

	"seafood-backend/internal/audit"
	"seafood-backend/internal/auth"
	"seafood-backend/internal/catalog"
	"seafood-backend/internal/classification"
	"seafood-backend/internal/config"
	"seafood-backend/internal/httpx"
	"seafood-backend/internal/ledger"
	"seafood-backend/internal/models"
	"seafood-backend/internal/partner"
	"seafood-backend/internal/procurement"
	"seafood-backend/internal/reception"
	"seafood-backend/internal/sequence"
)

func newApp(cfg *config.Config, db *gorm.DB, log *slog.Logger) *fiber.App {
	app := fiber.New(fiber.Config{ErrorHandler: httpx.ErrorHandler})

	corsOrigins := strings.Split(cfg.CORSOrigins, ",")
	for i := range corsOrigins {
		corsOrigins[i] = strings.TrimSpace(corsOrigins[i])
	}
	app.Use(recover.New())
	app.Use(auth.RequestID())
	app.Use(logger.New(logger.Config{
		Format: "${time} ${locals:request_id} ${status} ${method} ${path} ${latency}\n",
	}))
	app.Use(cors.New(cors.Config{
		AllowOrigins:  strings.Join(corsOrigins, ","),
		AllowHeaders:  "Origin, Content-Type, Accept, Authorization, " + auth.RequestIDHeader,
		AllowMethods:  "GET,POST,PUT,DELETE,OPTIONS",
		ExposeHeaders: auth.RequestIDHeader,
	}))

	auditLog := audit.NewLogger(db, log)
	seq := sequence.NewGenerator(cfg.SequenceMaxAttempts)
	engine := ledger.NewEngine(db, seq, auditLog)
	partners := partner.NewService(db, seq, auditLog)
	services := catalog.NewService(db, seq, auditLog)
	receptions := reception.NewService(db, seq, auditLog)
	classifications := classification.NewService(db, auditLog)
	purchasing := procurement.NewService(db, seq, engine, auditLog)

	api := app.Group("/api")

	// Public auth
	api.Post("/auth/register-admin", auth.RegisterAdminHandler(db))
	api.Post("/auth/login", auth.LoginHandler(cfg, db, auditLog))

	protected := api.Group("")
	protected.Use(auth.JWTMiddleware(cfg))
	protected.Get("/auth/me", auth.MeHandler(db))

	admin := auth.RequireRole(models.RoleAdmin)
	ops := auth.RequireRole(models.RoleAdmin, models.RoleOperator)
	money := auth.RequireRole(models.RoleAdmin, models.RoleAccountant)

	protected.Post("/admin/users", admin, auth.CreateUserHandler(db, auditLog))
	protected.Get("/audit-logs", admin, audit.ListAuditLogsHandler(db))

	// Partners and the service catalog are read by every role.
	protected.Get("/clients", partner.ListClientsHandler(partners))
	protected.Get("/clients/:id", partner.GetClientHandler(partners))
	protected.Get("/suppliers", partner.ListSuppliersHandler(partners))
	protected.Get("/suppliers/:id", partner.GetSupplierHandler(partners))
	protected.Get("/prospects", partner.ListProspectsHandler(partners))
	protected.Get("/service-categories", catalog.ListCategoriesHandler(services))
	protected.Get("/species", catalog.ListSubCategoriesHandler(services))
	protected.Get("/services", catalog.ListServicesHandler(services))
	protected.Get("/services/:id", catalog.GetServiceHandler(services))

	protected.Post("/clients", admin, partner.CreateClientHandler(partners))
	protected.Put("/clients/:id", admin, partner.UpdateClientHandler(partners))
	protected.Post("/clients/:id/status", admin, partner.SetClientStatusHandler(partners))
	protected.Post("/suppliers", admin, partner.CreateSupplierHandler(partners))
	protected.Put("/suppliers/:id", admin, partner.UpdateSupplierHandler(partners))
	protected.Post("/suppliers/:id/status", admin, partner.SetSupplierStatusHandler(partners))
	protected.Post("/prospects", admin, partner.CreateProspectHandler(partners))
	protected.Put("/prospects/:id", admin, partner.UpdateProspectHandler(partners))
	protected.Post("/prospects/:id/status", admin, partner.SetProspectStatusHandler(partners))
	protected.Post("/service-categories", admin, catalog.CreateCategoryHandler(services))
	protected.Put("/service-categories/:id", admin, catalog.UpdateCategoryHandler(services))
	protected.Post("/species", admin, catalog.CreateSubCategoryHandler(services))
	protected.Post("/services", admin, catalog.CreateServiceHandler(services))
	protected.Put("/services/:id", admin, catalog.UpdateServiceHandler(services))

	// Reception floor
	protected.Post("/receptions", ops, reception.CreateReceptionHandler(receptions))
	protected.Get("/receptions", ops, reception.ListReceptionsHandler(receptions))
	protected.Get("/receptions/:id", ops, reception.GetReceptionHandler(receptions))
	protected.Put("/receptions/:id", ops, reception.EditReceptionHandler(receptions))
	protected.Post("/receptions/:id/transition", ops, reception.TransitionReceptionHandler(receptions))
	protected.Delete("/receptions/:id", ops, reception.DeleteReceptionHandler(receptions))

	protected.Post("/classifications", ops, classification.CreateClassificationHandler(classifications))
	protected.Get("/classifications", ops, classification.ListClassificationsHandler(classifications))
	protected.Get("/classifications/:id", ops, classification.GetClassificationHandler(classifications))
	protected.Put("/classifications/:id", ops, classification.EditClassificationHandler(classifications))
	protected.Post("/classifications/:id/transition", ops, classification.TransitionClassificationHandler(classifications))
	protected.Delete("/classifications/:id", ops, classification.DeleteClassificationHandler(classifications))
	protected.Post("/classifications/:id/items", ops, classification.AddItemHandler(classifications))
	protected.Put("/classifications/:id/items/:itemId", ops, classification.UpdateItemHandler(classifications))
	protected.Delete("/classifications/:id/items/:itemId", ops, classification.RemoveItemHandler(classifications))

	// Money
	protected.Post("/cashboxes", money, ledger.CreateCashboxHandler(engine))
	protected.Get("/cashboxes", money, ledger.ListCashboxesHandler(engine))
	protected.Get("/cashboxes/:id", money, ledger.GetCashboxHandler(engine))
	protected.Post("/cashboxes/:id/transactions", money, ledger.PostCashboxTransactionHandler(engine))
	protected.Get("/cashboxes/:id/transactions", money, ledger.ListCashboxTransactionsHandler(engine))
	protected.Post("/bank-accounts", money, ledger.CreateBankAccountHandler(engine))
	protected.Get("/bank-accounts", money, ledger.ListBankAccountsHandler(engine))
	protected.Get("/bank-accounts/:id", money, ledger.GetBankAccountHandler(engine))
	protected.Post("/bank-accounts/:id/transactions", money, ledger.PostBankTransactionHandler(engine))
	protected.Get("/bank-accounts/:id/transactions", money, ledger.ListBankTransactionsHandler(engine))

	protected.Post("/purchase-requests", money, procurement.CreateRequestHandler(purchasing))
	protected.Get("/purchase-requests", money, procurement.ListRequestsHandler(purchasing))
	protected.Get("/purchase-requests/:id", money, procurement.GetRequestHandler(purchasing))
	protected.Put("/purchase-requests/:id/items", money, procurement.UpdateRequestItemsHandler(purchasing))
	protected.Post("/purchase-requests/:id/approve", money, procurement.ApproveRequestHandler(purchasing))
	protected.Post("/purchase-requests/:id/reject", money, procurement.RejectRequestHandler(purchasing))
	protected.Post("/purchase-requests/:id/cancel", money, procurement.CancelRequestHandler(purchasing))
	protected.Post("/purchase-orders", money, procurement.CreateOrderHandler(purchasing))
	protected.Get("/purchase-orders", money, procurement.ListOrdersHandler(purchasing))
	protected.Get("/purchase-orders/:id", money, procurement.GetOrderHandler(purchasing))
	protected.Post("/purchase-orders/:id/items", money, procurement.AddOrderItemHandler(purchasing))
	protected.Put("/purchase-orders/:id/items/:itemId", money, procurement.UpdateOrderItemHandler(purchasing))
	protected.Delete("/purchase-orders/:id/items/:itemId", money, procurement.RemoveOrderItemHandler(purchasing))
	protected.Post("/purchase-orders/:id/submit", money, procurement.SubmitOrderHandler(purchasing))
	protected.Post("/purchase-orders/:id/approve", money, procurement.ApproveOrderHandler(purchasing))
	protected.Post("/purchase-orders/:id/cancel", money, procurement.CancelOrderHandler(purchasing))
	protected.Post("/purchase-orders/:id/pay", money, procurement.PayOrderHandler(purchasing))

	return app
}
