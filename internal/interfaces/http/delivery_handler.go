package http

import (
	"context"

	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/Entregas-api/internal/application/delivery"
	"github.com/jhoicas/Entregas-api/internal/application/dto"
)

// DeliveryHandler sesiones de entrega: pedidos del cliente, asignaciones por bodega/lote y envío (protegido).
type DeliveryHandler struct {
	uc *delivery.UseCase
}

// NewDeliveryHandler construye el handler.
func NewDeliveryHandler(uc *delivery.UseCase) *DeliveryHandler {
	return &DeliveryHandler{uc: uc}
}

// Open abre una sesión de entrega para un cliente.
// POST /api/delivery-sessions
func (h *DeliveryHandler) Open(c *fiber.Ctx) error {
	companyID, userID := GetCompanyID(c), GetUserID(c)
	if companyID == "" || userID == "" {
		return unauthorized(c)
	}
	var in dto.OpenDeliverySessionRequest
	if err := c.BodyParser(&in); err != nil {
		return invalidBody(c)
	}
	out, err := h.uc.OpenSession(c.Context(), companyID, userID, in)
	if err != nil {
		return writeDeliveryError(c, err, "", nil)
	}
	return c.Status(fiber.StatusCreated).JSON(out)
}

// Get estado de la sesión.
// GET /api/delivery-sessions/:id
func (h *DeliveryHandler) Get(c *fiber.Ctx) error {
	companyID := GetCompanyID(c)
	if companyID == "" {
		return unauthorized(c)
	}
	out, err := h.uc.GetSession(c.Context(), companyID, c.Params("id"))
	if err != nil {
		return writeDeliveryError(c, err, "", nil)
	}
	return c.JSON(out)
}

// Close descarta la sesión.
// DELETE /api/delivery-sessions/:id
func (h *DeliveryHandler) Close(c *fiber.Ctx) error {
	companyID := GetCompanyID(c)
	if companyID == "" {
		return unauthorized(c)
	}
	if err := h.uc.CloseSession(c.Context(), companyID, c.Params("id")); err != nil {
		return writeDeliveryError(c, err, "", nil)
	}
	return c.SendStatus(fiber.StatusNoContent)
}

// RefreshOrders vuelve a traer los pedidos del cliente.
// POST /api/delivery-sessions/:id/orders/refresh
func (h *DeliveryHandler) RefreshOrders(c *fiber.Ctx) error {
	companyID := GetCompanyID(c)
	if companyID == "" {
		return unauthorized(c)
	}
	out, err := h.uc.RefreshOrders(c.Context(), companyID, c.Params("id"))
	if err != nil {
		return writeDeliveryError(c, err, "", nil)
	}
	return c.JSON(out)
}

// Balances existencias de un ítem por bodega y lote.
// GET /api/delivery-sessions/:id/balances?item=&order_key=&refresh=true
func (h *DeliveryHandler) Balances(c *fiber.Ctx) error {
	companyID := GetCompanyID(c)
	if companyID == "" {
		return unauthorized(c)
	}
	out, err := h.uc.LoadBalances(c.Context(), companyID, c.Params("id"),
		c.Query("item"), c.Query("order_key"), c.QueryBool("refresh", false))
	if err != nil {
		return writeDeliveryError(c, err, "", nil)
	}
	return c.JSON(out)
}

// SetQuantity cantidad digitada para un pedido en una sub-unidad.
// PUT /api/delivery-sessions/:id/allocations
func (h *DeliveryHandler) SetQuantity(c *fiber.Ctx) error {
	companyID := GetCompanyID(c)
	if companyID == "" {
		return unauthorized(c)
	}
	var in dto.SetAllocationRequest
	if err := c.BodyParser(&in); err != nil {
		return invalidBody(c)
	}
	out, err := h.uc.SetQuantity(c.Context(), companyID, c.Params("id"), in)
	if err != nil {
		return writeDeliveryError(c, err, "", nil)
	}
	return c.JSON(out)
}

// SetPinned fija o libera una sub-unidad para asignación automática.
// PUT /api/delivery-sessions/:id/allocations/pin
func (h *DeliveryHandler) SetPinned(c *fiber.Ctx) error {
	companyID := GetCompanyID(c)
	if companyID == "" {
		return unauthorized(c)
	}
	var in dto.SetPinnedRequest
	if err := c.BodyParser(&in); err != nil {
		return invalidBody(c)
	}
	out, err := h.uc.SetPinned(c.Context(), companyID, c.Params("id"), in)
	if err != nil {
		return writeDeliveryError(c, err, "", nil)
	}
	return c.JSON(out)
}

// AutoFill llena el pendiente del pedido.
// POST /api/delivery-sessions/:id/autofill
func (h *DeliveryHandler) AutoFill(c *fiber.Ctx) error {
	return h.orderCommand(c, h.uc.AutoFill)
}

// ClearOrder borra las asignaciones del pedido.
// POST /api/delivery-sessions/:id/clear
func (h *DeliveryHandler) ClearOrder(c *fiber.Ctx) error {
	return h.orderCommand(c, h.uc.ClearOrder)
}

// BeginEdit POST /api/delivery-sessions/:id/edit/begin
func (h *DeliveryHandler) BeginEdit(c *fiber.Ctx) error {
	return h.sessionCommand(c, h.uc.BeginEdit)
}

// CancelEdit POST /api/delivery-sessions/:id/edit/cancel
func (h *DeliveryHandler) CancelEdit(c *fiber.Ctx) error {
	return h.sessionCommand(c, h.uc.CancelEdit)
}

// CommitEdit POST /api/delivery-sessions/:id/edit/commit
func (h *DeliveryHandler) CommitEdit(c *fiber.Ctx) error {
	return h.sessionCommand(c, h.uc.CommitEdit)
}

// Preview comprobante sin enviar.
// GET /api/delivery-sessions/:id/preview
func (h *DeliveryHandler) Preview(c *fiber.Ctx) error {
	companyID := GetCompanyID(c)
	if companyID == "" {
		return unauthorized(c)
	}
	out, err := h.uc.Preview(c.Context(), companyID, c.Params("id"))
	if err != nil {
		return writeDeliveryError(c, err, "", nil)
	}
	return c.JSON(out)
}

// PreviewPDF nota de entrega imprimible.
// GET /api/delivery-sessions/:id/preview.pdf
func (h *DeliveryHandler) PreviewPDF(c *fiber.Ctx) error {
	companyID := GetCompanyID(c)
	if companyID == "" {
		return unauthorized(c)
	}
	doc, err := h.uc.PreviewPDF(c.Context(), companyID, c.Params("id"))
	if err != nil {
		return writeDeliveryError(c, err, "", nil)
	}
	c.Set(fiber.HeaderContentType, "application/pdf")
	c.Set(fiber.HeaderContentDisposition, `inline; filename="nota-entrega.pdf"`)
	return c.Send(doc)
}

// Submit revalida con datos frescos y envía la nota de entrega al sistema contable.
// POST /api/delivery-sessions/:id/submit
func (h *DeliveryHandler) Submit(c *fiber.Ctx) error {
	companyID := GetCompanyID(c)
	if companyID == "" {
		return unauthorized(c)
	}
	out, err := h.uc.Submit(c.Context(), companyID, c.Params("id"))
	if err != nil {
		if out != nil {
			return writeDeliveryError(c, err, out.Message, out.Session)
		}
		return writeDeliveryError(c, err, "", nil)
	}
	return c.JSON(out)
}

// Submissions historial de envíos de la sesión.
// GET /api/delivery-sessions/:id/submissions?limit=&offset=&detail=true
func (h *DeliveryHandler) Submissions(c *fiber.Ctx) error {
	companyID := GetCompanyID(c)
	if companyID == "" {
		return unauthorized(c)
	}
	var page dto.PageRequest
	if err := c.QueryParser(&page); err != nil {
		return invalidBody(c)
	}
	out, err := h.uc.ListSubmissions(c.Context(), companyID, c.Params("id"), page, c.QueryBool("detail", false))
	if err != nil {
		return writeDeliveryError(c, err, "", nil)
	}
	return c.JSON(out)
}

func (h *DeliveryHandler) sessionCommand(c *fiber.Ctx, fn func(context.Context, string, string) (*dto.DeliverySessionResponse, error)) error {
	companyID := GetCompanyID(c)
	if companyID == "" {
		return unauthorized(c)
	}
	out, err := fn(c.Context(), companyID, c.Params("id"))
	if err != nil {
		return writeDeliveryError(c, err, "", nil)
	}
	return c.JSON(out)
}

func (h *DeliveryHandler) orderCommand(c *fiber.Ctx, fn func(context.Context, string, string, string) (*dto.DeliverySessionResponse, error)) error {
	companyID := GetCompanyID(c)
	if companyID == "" {
		return unauthorized(c)
	}
	var in dto.OrderKeyRequest
	if err := c.BodyParser(&in); err != nil {
		return invalidBody(c)
	}
	out, err := fn(c.Context(), companyID, c.Params("id"), in.OrderKey)
	if err != nil {
		return writeDeliveryError(c, err, "", nil)
	}
	return c.JSON(out)
}
