package http

import (
	"github.com/gofiber/fiber/v2"
	"github.com/jhoicas/Facturacion-api/internal/application/billing"
)

// RouterDeps dependencias para el router.
type RouterDeps struct {
	Facturar   *billing.FacturarUseCase
	PDF        *billing.ComprobantePDFUseCase
	DefaultEnv string
	JWTSecret  string
}

// Router registra las rutas de la API.
func Router(app *fiber.App, deps RouterDeps) {
	api := app.Group("/api")

	// Rutas protegidas (requieren Bearer Token)
	protected := api.Group("/", AuthMiddleware(deps.JWTSecret))

	// Solo los roles operativos pueden emitir; el estado queda abierto a
	// cualquier usuario autenticado.
	facturacion := protected.Group("/facturacion")
	handler := NewFacturacionHandler(deps.Facturar, deps.PDF, deps.DefaultEnv)
	facturacion.Post("/", RequireRole("admin", "cajero"), handler.Dispatch)
	facturacion.Get("/estado", handler.Estado)
	facturacion.Get("/:id/pdf", handler.PDF)
}
