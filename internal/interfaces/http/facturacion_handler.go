package http

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/jhoicas/Facturacion-api/internal/application/billing"
	"github.com/jhoicas/Facturacion-api/internal/application/dto"
	"github.com/jhoicas/Facturacion-api/internal/domain"
	"github.com/jhoicas/Facturacion-api/internal/domain/entity"
)

// FacturacionHandler maneja las peticiones HTTP de facturación AFIP (protegido).
//
// Contrato de errores: todo fallo de estos endpoints (validación, pedido
// inexistente, configuración, firma, transporte) responde un cuerpo
// dto.FatalResponse con la clave "error" siempre presente, para que el caller
// pueda parsearla sin mirar el status. Los rechazos de AFIP no son fallos:
// van como 200 con Success=false.
type FacturacionHandler struct {
	facturar   *billing.FacturarUseCase
	pdf        *billing.ComprobantePDFUseCase
	defaultEnv string
}

// NewFacturacionHandler construye el handler.
func NewFacturacionHandler(facturar *billing.FacturarUseCase, pdf *billing.ComprobantePDFUseCase, defaultEnv string) *FacturacionHandler {
	return &FacturacionHandler{facturar: facturar, pdf: pdf, defaultEnv: defaultEnv}
}

// Dispatch despacha la acción pedida: "status" o "generate".
// POST /api/facturacion
func (h *FacturacionHandler) Dispatch(c *fiber.Ctx) error {
	var in dto.FacturacionRequest
	if err := c.BodyParser(&in); err != nil {
		return fail(c, fiber.StatusBadRequest, "cuerpo inválido")
	}
	entorno := h.resolveEnv(in.Environment)
	if entorno == "" {
		return fail(c, fiber.StatusBadRequest, "environment debe ser production o testing")
	}

	switch in.Action {
	case "status":
		res, err := h.facturar.Status(c.Context(), entorno)
		if err != nil {
			return fail(c, fiber.StatusInternalServerError, err.Error())
		}
		return c.JSON(res)
	case "generate":
		res, err := h.facturar.Generar(c.Context(), entorno, in.OrderID)
		if err != nil {
			return fail(c, statusForGenerar(err), err.Error())
		}
		return c.JSON(res)
	default:
		return fail(c, fiber.StatusBadRequest, "action debe ser status o generate")
	}
}

// Estado consulta conectividad y último comprobante autorizado.
// GET /api/facturacion/estado
func (h *FacturacionHandler) Estado(c *fiber.Ctx) error {
	entorno := h.resolveEnv(c.Query("environment"))
	if entorno == "" {
		return fail(c, fiber.StatusBadRequest, "environment debe ser production o testing")
	}
	res, err := h.facturar.Status(c.Context(), entorno)
	if err != nil {
		return fail(c, fiber.StatusInternalServerError, err.Error())
	}
	return c.JSON(res)
}

// PDF descarga la representación gráfica de un comprobante autorizado.
// GET /api/facturacion/:id/pdf
func (h *FacturacionHandler) PDF(c *fiber.Ctx) error {
	id := c.Params("id")
	if id == "" {
		return fail(c, fiber.StatusBadRequest, "id requerido")
	}
	entorno := h.resolveEnv(c.Query("environment"))
	if entorno == "" {
		return fail(c, fiber.StatusBadRequest, "environment debe ser production o testing")
	}
	data, filename, err := h.pdf.GenerarPDF(c.Context(), id, entorno)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return fail(c, fiber.StatusNotFound, err.Error())
		}
		return fail(c, fiber.StatusInternalServerError, err.Error())
	}
	c.Set(fiber.HeaderContentType, "application/pdf")
	c.Set(fiber.HeaderContentDisposition, `attachment; filename="`+filename+`"`)
	return c.Send(data)
}

// resolveEnv aplica el entorno por defecto y valida los valores admitidos.
func (h *FacturacionHandler) resolveEnv(env string) string {
	if env == "" {
		env = h.defaultEnv
	}
	if env != entity.EntornoProduccion && env != entity.EntornoTesting {
		return ""
	}
	return env
}

// statusForGenerar mapea los errores del orquestador al status HTTP; el cuerpo
// es el mismo en todos los casos (FatalResponse).
func statusForGenerar(err error) int {
	switch {
	case errors.Is(err, domain.ErrInvalidInput):
		return fiber.StatusBadRequest
	case errors.Is(err, domain.ErrPedidoNotFound):
		return fiber.StatusNotFound
	default:
		return fiber.StatusInternalServerError
	}
}

// fail responde el error con la clave "error" siempre presente.
func fail(c *fiber.Ctx, status int, msg string) error {
	return c.Status(status).JSON(dto.FatalResponse{Error: msg})
}
