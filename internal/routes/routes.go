// Package routes defines the API routing configuration.
// It wires repositories, services and handlers together and groups routes
// by functionality with the appropriate permission checks.
package routes

import (
	"campuspay/internal/config"
	"campuspay/internal/handlers"
	"campuspay/internal/middleware"
	"campuspay/internal/models"
	"campuspay/internal/repositories"
	"campuspay/internal/services/aggregation"
	"campuspay/internal/services/auth"
	"campuspay/internal/services/billing"
	"campuspay/internal/services/correction"
	"campuspay/internal/services/ledger"
	"campuspay/internal/services/settlement"
	"campuspay/internal/services/student"
	"campuspay/internal/services/topup"
	"campuspay/internal/services/wallet"

	"github.com/gofiber/fiber/v2"
)

// SetupRoutes configures all application routes.
func SetupRoutes(app *fiber.App) {
	ledgerCfg := config.LoadLedgerConfig()

	// Repositories
	ledgerRepo := repositories.NewLedgerRepository(repositories.DB)
	userRepo := repositories.NewUserRepository(repositories.DB)

	// Services. The settlement engine is both the ledger's post-credit hook
	// and the billing service's settler; the ledger is the only write path.
	engine := settlement.NewEngine(ledgerCfg)
	ledgerService := ledger.NewService(ledgerRepo, repositories.CacheService, engine, nil)
	walletService := wallet.NewService(ledgerRepo, repositories.CacheService, ledgerCfg)
	correctionService := correction.NewService(ledgerRepo, repositories.CacheService, ledgerCfg)
	aggregationService := aggregation.NewService(ledgerRepo)
	billingService := billing.NewService(ledgerRepo, engine)
	studentService := student.NewService(ledgerRepo, walletService)
	authService := auth.NewService(userRepo)

	snapClient := topup.NewSnapClient(
		config.GetEnv("MIDTRANS_SERVER_KEY", ""),
		config.GetEnv("MIDTRANS_ENV", "sandbox") == "production",
	)
	topUpService := topup.NewService(ledgerRepo, ledgerService, snapClient)

	// Handlers
	authHandler := handlers.NewAuthHandler(authService)
	walletHandler := handlers.NewWalletHandler(walletService, studentService)
	transactionHandler := handlers.NewTransactionHandler(ledgerService, correctionService)
	billingHandler := handlers.NewBillingHandler(billingService)
	topUpHandler := handlers.NewTopUpHandler(topUpService)
	reportsHandler := handlers.NewReportsHandler(aggregationService)

	api := app.Group("/api")

	// Public endpoints
	api.Get("/health", handlers.HealthCheck)
	api.Post("/login", authHandler.Login)
	api.Post("/refresh", authHandler.Refresh)
	// The payment gateway calls this back; it authenticates by order id.
	api.Post("/topups/notification", topUpHandler.Notification)

	app.Get("/", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{
			"message": "Welcome to CampusPay API",
			"version": "1.0.0",
			"docs":    "/api",
		})
	})

	// Protected routes
	protected := api.Use(middleware.Handler)

	protected.Post("/logout", authHandler.Logout)
	protected.Post("/change-password", authHandler.ChangePassword)

	setupStudentRoutes(protected, walletHandler)
	setupWalletRoutes(protected, walletHandler, transactionHandler, topUpHandler)
	setupLedgerRoutes(protected, transactionHandler)
	setupBillingRoutes(protected, billingHandler)

	protected.Get("/reports/balances", middleware.RequirePermission(models.PermissionReportsRead), reportsHandler.Totals)
}

func setupStudentRoutes(router fiber.Router, walletHandler *handlers.WalletHandler) {
	students := router.Group("/students")
	students.Post("/", middleware.RequirePermission(models.PermissionWalletWrite), walletHandler.CreateStudent)
	students.Get("/", middleware.RequirePermission(models.PermissionWalletRead), walletHandler.ListStudents)
	students.Get("/:id/wallet", middleware.RequirePermission(models.PermissionWalletRead), walletHandler.GetStudentWallet)
}

func setupWalletRoutes(router fiber.Router, walletHandler *handlers.WalletHandler, transactionHandler *handlers.TransactionHandler, topUpHandler *handlers.TopUpHandler) {
	wallets := router.Group("/wallets")
	wallets.Get("/:id", middleware.RequirePermission(models.PermissionWalletRead), walletHandler.GetWallet)
	wallets.Get("/:id/balance", middleware.RequirePermission(models.PermissionWalletRead), walletHandler.GetBalance)
	wallets.Get("/:id/reconcile", middleware.RequirePermission(models.PermissionReadAdmin), walletHandler.Reconcile)
	wallets.Get("/:id/transactions", middleware.RequirePermission(models.PermissionLedgerRead), transactionHandler.History)
	wallets.Post("/topup", middleware.RequirePermission(models.PermissionWalletWrite), topUpHandler.CreateOrder)
}

func setupLedgerRoutes(router fiber.Router, h *handlers.TransactionHandler) {
	transactions := router.Group("/transactions")
	transactions.Post("/", middleware.RequirePermission(models.PermissionLedgerWrite), h.Append)
	transactions.Get("/:id", middleware.RequirePermission(models.PermissionLedgerRead), h.Get)
	transactions.Post("/:id/void", middleware.RequirePermission(models.PermissionLedgerCorrect), h.Void)
	transactions.Put("/:id", middleware.RequirePermission(models.PermissionLedgerCorrect), h.Edit)
}

func setupBillingRoutes(router fiber.Router, h *handlers.BillingHandler) {
	payments := router.Group("/payments", middleware.RequirePermission(models.PermissionBillingWrite))
	payments.Post("/", h.CreatePayment)
	payments.Get("/", h.ListPayments)
	payments.Get("/:id", h.GetPayment)

	funds := router.Group("/funds", middleware.RequirePermission(models.PermissionBillingWrite))
	funds.Post("/withdrawals", h.RecordWithdrawal)
	funds.Post("/disbursements", h.RecordDisbursement)
}
