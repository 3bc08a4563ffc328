package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/cadmeko-api/internal/application/auth"
	"github.com/jhoicas/cadmeko-api/internal/application/inventory"
	"github.com/jhoicas/cadmeko-api/internal/application/orders"
	"github.com/jhoicas/cadmeko-api/internal/application/reports"
	"github.com/jhoicas/cadmeko-api/internal/application/usecase"
	"github.com/jhoicas/cadmeko-api/pkg/clock"
)

// RouterDeps dependencias para el router.
type RouterDeps struct {
	AuthUC    *auth.AuthUseCase
	ProductUC *usecase.ProductUseCase
	ClientUC  *usecase.ClientUseCase
	Ledger    *inventory.LedgerUseCase
	OrderUC   *orders.OrderUseCase
	ReportUC  *reports.ReportUseCase
	Clock     clock.Clock
	JWTSecret string
}

// Router registra las rutas de la API.
// RequireRole filtra por grupo; los casos de uso vuelven a verificar la identidad recibida.
func Router(app *fiber.App, deps RouterDeps) {
	api := app.Group("/api")

	// Auth (público)
	authHandler := NewAuthHandler(deps.AuthUC)
	api.Post("/auth/login", authHandler.Login)

	// Rutas protegidas (requieren Bearer Token)
	protected := api.Group("/", AuthMiddleware(deps.JWTSecret))
	protected.Get("/me", authHandler.Me)

	// Products
	productHandler := NewProductHandler(deps.ProductUC)
	protected.Get("/products.csv", RequireRole(auth.CatalogRoles...), productHandler.ExportCSV)
	products := protected.Group("/products", RequireRole(auth.CatalogRoles...))
	products.Post("/", productHandler.Create)
	products.Get("/", productHandler.List)
	products.Get("/:id", productHandler.GetByID)

	// Clients
	clients := protected.Group("/clients", RequireRole(auth.OrderRoles...))
	clientHandler := NewClientHandler(deps.ClientUC)
	clients.Post("/", clientHandler.Create)
	clients.Get("/", clientHandler.List)
	clients.Get("/:id", clientHandler.GetByID)

	// Stock ledger. El saldo también lo consultan quienes capturan pedidos.
	stock := protected.Group("/stock")
	inventoryHandler := NewInventoryHandler(deps.Ledger)
	stock.Get("/", RequireRole(auth.StockRoles...), inventoryHandler.ListStock)
	stock.Post("/movements", RequireRole(auth.StockRoles...), inventoryHandler.RecordMovement)
	stock.Get("/:productId/balance", RequireRole(auth.OrderRoles...), inventoryHandler.GetBalance)
	stock.Get("/:productId/movements", RequireRole(auth.StockRoles...), inventoryHandler.ListMovements)

	// Orders
	ordersGroup := protected.Group("/orders", RequireRole(auth.OrderRoles...))
	orderHandler := NewOrderHandler(deps.OrderUC)
	ordersGroup.Post("/", orderHandler.Create)
	ordersGroup.Get("/", orderHandler.List)
	ordersGroup.Get("/:id", orderHandler.GetByID)
	ordersGroup.Post("/:id/lines", orderHandler.AddLine)
	ordersGroup.Post("/:id/finalize", orderHandler.Finalize)

	// Users (solo admin)
	users := protected.Group("/users", RequireRole(auth.UserAdminRoles...))
	userHandler := NewUserHandler(deps.AuthUC)
	users.Post("/", userHandler.Create)
	users.Get("/", userHandler.List)
	users.Put("/:id/role", userHandler.UpdateRole)
	users.Put("/:id/password", userHandler.ResetPassword)
	users.Delete("/:id", userHandler.Delete)

	// Reports + dashboard
	reportsGroup := protected.Group("/reports", RequireRole(auth.ReportRoles...))
	reportHandler := NewReportHandler(deps.ReportUC, deps.Clock)
	reportsGroup.Get("/stock", reportHandler.Stock)
	reportsGroup.Get("/stock.csv", reportHandler.StockCSV)
	reportsGroup.Get("/stock.pdf", reportHandler.StockPDF)
	reportsGroup.Get("/orders", reportHandler.Orders)
	reportsGroup.Get("/orders.csv", reportHandler.OrdersCSV)

	dashboardHandler := NewDashboardHandler(deps.ReportUC)
	protected.Get("/dashboard", RequireRole(auth.DashboardRoles...), dashboardHandler.GetSummary)
}
