// Package server assembles the Fiber application and its route table.
package server

import (
	"strings"

	"freight-backend/internal/apperr"
	"freight-backend/internal/appuser"
	"freight-backend/internal/audit"
	"freight-backend/internal/auth"
	"freight-backend/internal/config"
	"freight-backend/internal/customer"
	"freight-backend/internal/invoice"
	"freight-backend/internal/location"
	"freight-backend/internal/logger"
	"freight-backend/internal/printing"
	"freight-backend/internal/response"
	"freight-backend/internal/vehicle"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/fiber/v2/middleware/requestid"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type Deps struct {
	DB        *gorm.DB
	Config    *config.Config
	Log       *zap.Logger
	Blacklist auth.TokenBlacklist
	// Renderer is nil when PDF output is disabled.
	Renderer printing.PDFRenderer
}

func New(d Deps) *fiber.App {
	app := fiber.New(fiber.Config{
		AppName:      "freight-backend",
		ErrorHandler: response.ErrorHandler(d.Log),
	})

	app.Use(requestid.New(requestid.Config{ContextKey: logger.RequestIDKey}))
	app.Use(logger.Middleware(d.Log))
	app.Use(recover.New())
	app.Use(cors.New(corsConfig(d.Config.CORSOrigins)))

	app.Get("/healthz", healthHandler(d.DB))

	api := app.Group("/api")

	// Public auth
	api.Post("/auth/register", auth.RegisterHandler(d.DB))
	api.Post("/auth/login", auth.LoginHandler(d.DB, d.Config))

	// Protected
	protected := api.Group("", auth.JWTMiddleware(d.Config.JWTSecret, d.Blacklist))

	protected.Post("/auth/logout", auth.LogoutHandler(d.Blacklist))
	protected.Get("/auth/me", auth.MeHandler(d.DB))

	// Invoices (export is registered before /:id)
	invoices := invoice.NewService(d.DB)
	protected.Get("/invoices", invoice.ListInvoicesHandler(invoices))
	protected.Get("/invoices/export", invoice.ExportInvoicesHandler(invoices))
	protected.Get("/invoices/:id", invoice.GetInvoiceHandler(invoices))
	protected.Get("/invoices/:id/print", invoice.PrintInvoiceHandler(invoices, d.Renderer))
	protected.Post("/invoices", invoice.CreateInvoiceHandler(invoices))
	protected.Put("/invoices/:id", invoice.UpdateInvoiceHandler(invoices))
	protected.Delete("/invoices/:id", invoice.DeleteInvoiceHandler(invoices))

	// Customers
	protected.Get("/customers", customer.ListCustomersHandler(d.DB))
	protected.Post("/customers", customer.CreateCustomerHandler(d.DB))
	protected.Put("/customers/:id", customer.UpdateCustomerHandler(d.DB))
	protected.Delete("/customers/:id", customer.DeleteCustomerHandler(d.DB))

	// Vehicles
	protected.Get("/vehicles", vehicle.ListVehiclesHandler(d.DB))
	protected.Post("/vehicles", vehicle.CreateVehicleHandler(d.DB))
	protected.Put("/vehicles/:id", vehicle.UpdateVehicleHandler(d.DB))
	protected.Delete("/vehicles/:id", vehicle.DeleteVehicleHandler(d.DB))

	// Locations
	protected.Get("/locations", location.ListLocationsHandler(d.DB))
	protected.Post("/locations", location.CreateLocationHandler(d.DB))
	protected.Put("/locations/:id", location.UpdateLocationHandler(d.DB))
	protected.Delete("/locations/:id", location.DeleteLocationHandler(d.DB))

	// App users
	protected.Get("/appusers", appuser.ListAppUsersHandler(d.DB))
	protected.Post("/appusers", appuser.CreateAppUserHandler(d.DB))
	protected.Put("/appusers/:id", appuser.UpdateAppUserHandler(d.DB))
	protected.Delete("/appusers/:id", appuser.DeleteAppUserHandler(d.DB))

	// Audit
	protected.Get("/audit-logs", audit.ListAuditLogsHandler(d.DB))

	return app
}

// corsConfig takes a comma separated origin list. Credentials (the auth
// cookie) are only allowed for explicit origins.
func corsConfig(origins string) cors.Config {
	list := strings.Split(origins, ",")
	for i := range list {
		list[i] = strings.TrimSpace(list[i])
	}
	allow := strings.Join(list, ",")

	return cors.Config{
		AllowOrigins:     allow,
		AllowHeaders:     "Origin, Content-Type, Accept, Authorization",
		AllowMethods:     "GET,POST,PUT,DELETE,OPTIONS",
		AllowCredentials: allow != "*",
		ExposeHeaders:    "Content-Disposition",
	}
}

func healthHandler(db *gorm.DB) fiber.Handler {
	return func(c *fiber.Ctx) error {
		sqlDB, err := db.DB()
		if err != nil {
			return apperr.Internal("Database unavailable", err)
		}
		if err := sqlDB.PingContext(c.UserContext()); err != nil {
			return apperr.Internal("Database unavailable", err)
		}
		return response.OK(c, "", fiber.Map{"status": "ok"})
	}
}
