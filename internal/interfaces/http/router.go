package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/Entregas-api/internal/application/delivery"
)

// RouterDeps dependencias para el router.
type RouterDeps struct {
	DeliveryUC *delivery.UseCase
	SettingsUC *delivery.SettingsUseCase
	JWTSecret  string
}

// Router registra las rutas de la API.
func Router(app *fiber.App, deps RouterDeps) {
	api := app.Group("/api")

	// Rutas protegidas (requieren Bearer Token)
	protected := api.Group("/", AuthMiddleware(deps.JWTSecret))
	operators := RequireRole(RoleAdmin, RoleDispatcher)

	// Sesiones de entrega
	sessions := protected.Group("/delivery-sessions", operators)
	h := NewDeliveryHandler(deps.DeliveryUC)
	sessions.Post("/", h.Open)
	sessions.Get("/:id", h.Get)
	sessions.Delete("/:id", h.Close)
	sessions.Post("/:id/orders/refresh", h.RefreshOrders)
	sessions.Get("/:id/balances", h.Balances)
	sessions.Put("/:id/allocations", h.SetQuantity)
	sessions.Put("/:id/allocations/pin", h.SetPinned)
	sessions.Post("/:id/autofill", h.AutoFill)
	sessions.Post("/:id/clear", h.ClearOrder)
	sessions.Post("/:id/edit/begin", h.BeginEdit)
	sessions.Post("/:id/edit/cancel", h.CancelEdit)
	sessions.Post("/:id/edit/commit", h.CommitEdit)
	sessions.Get("/:id/preview", h.Preview)
	sessions.Get("/:id/preview.pdf", h.PreviewPDF)
	sessions.Post("/:id/submit", h.Submit)
	sessions.Get("/:id/submissions", h.Submissions)

	// Banderas de entrega (lectura para operadores, escritura solo admin)
	settings := protected.Group("/delivery-settings")
	sh := NewDeliverySettingsHandler(deps.SettingsUC)
	settings.Get("/", operators, sh.Get)
	settings.Put("/", RequireRole(RoleAdmin), sh.Update)
}
