package delivery

import (
	"context"

	allocation "github.com/jhoicas/Entregas-api/internal/domain/delivery"
	"github.com/jhoicas/Entregas-api/internal/domain/entity"
)

// LedgerGateway puerto de salida hacia el sistema contable (implementado en infrastructure/tally).
type LedgerGateway interface {
	GetOrders(ctx context.Context, conn entity.LedgerConnection, includeCleared bool) ([]entity.Order, error)
	GetSubUnitBalances(ctx context.Context, conn entity.LedgerConnection, item string) ([]entity.SubUnit, error)
	PostVoucherXML(ctx context.Context, conn entity.LedgerConnection, xmlBody string) (string, error)
}

// BalanceCache existencias por sub-unidad cacheadas por sesión e ítem.
type BalanceCache interface {
	Get(ctx context.Context, session, item string) ([]entity.SubUnit, bool, error)
	Set(ctx context.Context, session, item string, subUnits []entity.SubUnit) error
	Invalidate(ctx context.Context, session, item string) error
	Drop(ctx context.Context, session string) error
}

// VoucherCodec sintetiza el XML de la nota de entrega, interpreta la respuesta y calcula la huella.
type VoucherCodec interface {
	// Build devuelve "" si el comprobante no tiene cantidades.
	Build(v *allocation.Voucher) (string, error)
	Interpret(raw string) allocation.ImportResult
	Fingerprint(voucherXML string) (string, error)
}

// DeliveryNotePDFGenerator representación imprimible de la nota de entrega pendiente.
type DeliveryNotePDFGenerator interface {
	GenerateDeliveryNotePDF(ctx context.Context, v *allocation.Voucher) ([]byte, error)
}

// SettingsProvider banderas vigentes de la empresa (persistidas o por defecto).
type SettingsProvider interface {
	Effective(ctx context.Context, companyID string) (entity.DeliverySettings, error)
}
