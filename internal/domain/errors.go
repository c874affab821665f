package domain

import (
	"errors"
	"fmt"
)

// Errores de dominio (sin dependencias externas).
var (
	ErrNotFound        = errors.New("recurso no encontrado")
	ErrInvalidInput    = errors.New("entrada inválida")
	ErrUnauthorized    = errors.New("no autorizado")
	ErrSessionNotFound = errors.New("sesión de entrega no encontrada")
	ErrEmptyVoucher    = errors.New("no hay cantidades para entregar")

	// Violaciones de restricciones detectadas en la revalidación previa al envío.
	ErrExceedsPending   = errors.New("la cantidad supera la cantidad pendiente del pedido")
	ErrExceedsAvailable = errors.New("la cantidad supera la existencia disponible")

	// Errores del sistema contable.
	ErrLedgerSessionExpired = errors.New("la sesión con el sistema contable expiró")
	ErrLedgerUnavailable    = errors.New("sistema contable no disponible")
	ErrLedgerRejected       = errors.New("el sistema contable rechazó el comprobante")
)

// ValidationError envuelve un error de dominio con un detalle legible para el usuario.
type ValidationError struct {
	Err     error
	Details string
}

func (e *ValidationError) Error() string {
	if e.Details != "" {
		return fmt.Sprintf("%s: %s", e.Err.Error(), e.Details)
	}
	return e.Err.Error()
}

func (e *ValidationError) Unwrap() error {
	return e.Err
}

// Invalid construye un ValidationError con detalle formateado.
func Invalid(err error, format string, args ...any) error {
	return &ValidationError{Err: err, Details: fmt.Sprintf(format, args...)}
}
