package handler

import (
	"go-pos-ws/internal/middleware"
	"go-pos-ws/internal/model"
	"go-pos-ws/internal/service"
	"go-pos-ws/internal/ws"

	"github.com/gofiber/contrib/websocket"
	"github.com/gofiber/fiber/v2"
)

// Services is everything the HTTP layer calls into.
type Services struct {
	Auth     service.AuthService
	Users    service.UserService
	Catalog  service.CatalogService
	Barcodes service.BarcodeService
	Sales    service.SaleService
	Reports  service.ReportService
	Audit    service.AuditService
}

// Register mounts the /api/v1 routes and, when hub is set, the /ws endpoint.
func Register(app *fiber.App, svc Services, hub *ws.Hub) {
	authHandler := NewAuthHandler(svc.Auth)
	userHandler := NewUserHandler(svc.Users)
	roleHandler := NewRoleHandler(svc.Users, svc.Audit)
	catalogHandler := NewCatalogHandler(svc.Catalog)
	barcodeHandler := NewBarcodeHandler(svc.Barcodes)
	saleHandler := NewSaleHandler(svc.Sales)
	reportHandler := NewReportHandler(svc.Reports)

	requireAuth := middleware.RequireAuth(svc.Auth)
	priv := middleware.RequirePrivilege

	api := app.Group("/api/v1")

	// ============ PUBLIC ROUTES ============
	auth := api.Group("/auth")
	auth.Post("/login", authHandler.Login)
	auth.Post("/refresh", authHandler.Refresh)
	auth.Post("/logout", requireAuth, authHandler.Logout)
	auth.Post("/change-password", requireAuth, authHandler.ChangePassword)
	auth.Get("/me", requireAuth, authHandler.Me)

	// ============ PROTECTED ROUTES ============
	protected := api.Group("", requireAuth)

	// Categories
	protected.Get("/categories", priv(model.PrivCategoryView), catalogHandler.GetCategories)
	protected.Get("/categories/:id", priv(model.PrivCategoryView), catalogHandler.GetCategory)
	protected.Post("/categories", priv(model.PrivCategoryCreate), catalogHandler.CreateCategory)
	protected.Put("/categories/:id", priv(model.PrivCategoryUpdate), catalogHandler.UpdateCategory)
	protected.Delete("/categories/:id", priv(model.PrivCategoryDelete), catalogHandler.DeleteCategory)

	// Products and stock
	protected.Get("/products", priv(model.PrivProductView), catalogHandler.GetProducts)
	protected.Get("/products/suggest", priv(model.PrivProductView), catalogHandler.SuggestProducts)
	protected.Get("/products/barcode/:code", priv(model.PrivProductView), catalogHandler.GetProductByBarcode)
	protected.Get("/products/:id", priv(model.PrivProductView), catalogHandler.GetProduct)
	protected.Post("/products", priv(model.PrivProductCreate), catalogHandler.CreateProduct)
	protected.Put("/products/:id", priv(model.PrivProductUpdate), catalogHandler.UpdateProduct)
	protected.Delete("/products/:id", priv(model.PrivProductDelete), catalogHandler.DeleteProduct)
	protected.Post("/products/:id/stock", priv(model.PrivStockAdd), catalogHandler.AddStock)
	protected.Get("/products/:id/movements", priv(model.PrivProductView), catalogHandler.GetMovements)
	protected.Get("/products/:id/reconcile", priv(model.PrivStockAdd), catalogHandler.ReconcileStock)
	protected.Get("/products/:id/label.png", priv(model.PrivProductView), barcodeHandler.Label)

	// Barcodes
	protected.Get("/barcodes/generate", priv(model.PrivProductCreate), barcodeHandler.Generate)
	protected.Get("/barcodes/validate/:code", priv(model.PrivProductView), barcodeHandler.Validate)

	// Sales
	protected.Post("/sales", priv(model.PrivSaleCreate), saleHandler.CreateSale)
	protected.Get("/sales", priv(model.PrivSaleView), saleHandler.GetSales)
	protected.Get("/sales/:id", priv(model.PrivSaleView), saleHandler.GetSale)

	// Reports
	protected.Get("/reports/dashboard", priv(model.PrivReportView), reportHandler.GetDashboardStats)
	protected.Get("/reports/stock-movement", priv(model.PrivReportView), reportHandler.GetStockMovement)
	protected.Get("/reports/sales-summary", priv(model.PrivReportView), reportHandler.GetSalesSummary)
	protected.Get("/reports/top-products", priv(model.PrivReportView), reportHandler.GetTopProducts)
	protected.Get("/reports/sales.xlsx", priv(model.PrivReportExport), reportHandler.ExportSalesXLSX)
	protected.Get("/reports/sales.pdf", priv(model.PrivReportExport), reportHandler.ExportSalesPDF)

	// User Management Routes
	protected.Get("/users", priv(model.PrivUserView), userHandler.GetUsers)
	protected.Get("/users/:id", priv(model.PrivUserView), userHandler.GetUser)
	protected.Post("/users", priv(model.PrivUserCreate), userHandler.CreateUser)
	protected.Put("/users/:id", priv(model.PrivUserUpdate), userHandler.UpdateUser)
	protected.Delete("/users/:id", priv(model.PrivUserDelete), userHandler.DeleteUser)
	protected.Put("/users/:id/privileges", priv(model.PrivUserUpdatePrivilege), userHandler.UpdateUserPrivileges)

	protected.Get("/roles", roleHandler.GetRoles)
	protected.Get("/privileges", roleHandler.GetPrivileges)
	protected.Get("/audit-logs", priv(model.PrivAuditView), roleHandler.GetAuditLogs)

	if hub == nil {
		return
	}

	// WebSocket Route; browsers cannot set headers so the access token comes as ?token=
	app.Use("/ws", func(c *fiber.Ctx) error {
		if !websocket.IsWebSocketUpgrade(c) {
			return c.SendStatus(fiber.StatusUpgradeRequired)
		}
		user, err := svc.Auth.Authenticate(c.UserContext(), c.Query("token"))
		if err != nil {
			return fail(c, err)
		}
		c.Locals(middleware.LocalUserID, user.ID)
		return c.Next()
	})
	app.Get("/ws", websocket.New(func(c *websocket.Conn) {
		hub.Register <- c
		defer func() { hub.Unregister <- c }()

		for {
			// keep alive until the client goes away
			if _, _, err := c.ReadMessage(); err != nil {
				break
			}
		}
	}))
}
