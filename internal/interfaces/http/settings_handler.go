package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/Entregas-api/internal/application/delivery"
	"github.com/jhoicas/Entregas-api/internal/application/dto"
)

// DeliverySettingsHandler banderas de entrega de la empresa del token.
type DeliverySettingsHandler struct {
	uc *delivery.SettingsUseCase
}

// NewDeliverySettingsHandler construye el handler.
func NewDeliverySettingsHandler(uc *delivery.SettingsUseCase) *DeliverySettingsHandler {
	return &DeliverySettingsHandler{uc: uc}
}

// Get GET /api/delivery-settings
func (h *DeliverySettingsHandler) Get(c *fiber.Ctx) error {
	companyID := GetCompanyID(c)
	if companyID == "" {
		return unauthorized(c)
	}
	out, err := h.uc.GetSettings(c.Context(), companyID)
	if err != nil {
		return writeDeliveryError(c, err, "", nil)
	}
	return c.JSON(out)
}

// Update actualización parcial; solo admin.
// PUT /api/delivery-settings
func (h *DeliverySettingsHandler) Update(c *fiber.Ctx) error {
	companyID := GetCompanyID(c)
	if companyID == "" {
		return unauthorized(c)
	}
	var in dto.UpdateDeliverySettingsRequest
	if err := c.BodyParser(&in); err != nil {
		return invalidBody(c)
	}
	out, err := h.uc.UpdateSettings(c.Context(), companyID, in)
	if err != nil {
		return writeDeliveryError(c, err, "", nil)
	}
	return c.JSON(out)
}
