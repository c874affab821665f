package http

import (
	"errors"

	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/Entregas-api/internal/application/dto"
	"github.com/jhoicas/Entregas-api/internal/domain"
)

type errorMapping struct {
	err    error
	status int
	code   string
}

// El orden importa: los errores de sesión y de restricciones se revisan antes que ErrNotFound/ErrInvalidInput.
var deliveryErrorMappings = []errorMapping{
	{domain.ErrSessionNotFound, fiber.StatusNotFound, "SESSION_NOT_FOUND"},
	{domain.ErrExceedsPending, fiber.StatusConflict, "EXCEEDS_PENDING"},
	{domain.ErrExceedsAvailable, fiber.StatusConflict, "EXCEEDS_AVAILABLE"},
	{domain.ErrLedgerSessionExpired, fiber.StatusUnauthorized, "LEDGER_SESSION_EXPIRED"},
	{domain.ErrLedgerUnavailable, fiber.StatusBadGateway, "LEDGER_UNAVAILABLE"},
	{domain.ErrLedgerRejected, fiber.StatusUnprocessableEntity, "LEDGER_REJECTED"},
	{domain.ErrNotFound, fiber.StatusNotFound, "NOT_FOUND"},
	{domain.ErrInvalidInput, fiber.StatusBadRequest, "VALIDATION"},
	{domain.ErrEmptyVoucher, fiber.StatusBadRequest, "VALIDATION"},
}

// writeDeliveryError responde el error de dominio con su código HTTP. session, si viene, es el estado
// de la sesión tras el refresco automático (409) o tras el rechazo (422).
func writeDeliveryError(c *fiber.Ctx, err error, message string, session *dto.DeliverySessionResponse) error {
	if message == "" {
		message = err.Error()
	}
	for _, m := range deliveryErrorMappings {
		if errors.Is(err, m.err) {
			return c.Status(m.status).JSON(dto.DeliveryErrorResponse{Code: m.code, Message: message, Session: session})
		}
	}
	return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{Code: "INTERNAL", Message: err.Error()})
}

func unauthorized(c *fiber.Ctx) error {
	return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{Code: "UNAUTHORIZED", Message: "token inválido"})
}

func invalidBody(c *fiber.Ctx) error {
	return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_BODY", Message: "cuerpo inválido"})
}
