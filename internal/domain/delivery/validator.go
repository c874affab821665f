package delivery

import (
	"regexp"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/Entregas-api/internal/domain"
	"github.com/jhoicas/Entregas-api/internal/domain/entity"
)

// quantityInputRe acepta decimales no negativos, también a medio digitar ("12.", ".").
var quantityInputRe = regexp.MustCompile(`^\d*(\.\d*)?$`)

// Engine aplica las reglas de asignación con las banderas de la empresa.
type Engine struct {
	settings entity.DeliverySettings
}

// NewEngine construye el motor.
func NewEngine(settings entity.DeliverySettings) *Engine {
	return &Engine{settings: settings}
}

// Settings banderas con las que opera el motor.
func (e *Engine) Settings() entity.DeliverySettings { return e.settings }

// Clamp ajusta una cantidad candidata a los topes activos, en este orden:
//  1. existencia disponible de la sub-unidad (si no se permite stock negativo);
//  2. pendiente del pedido menos lo asignado en sus otras sub-unidades (si no se permite exceder el pedido).
//
// Devuelve false cuando el pedido ya está cubierto por otras sub-unidades y no admite asignación.
func (e *Engine) Clamp(candidate, available, pending, otherSubUnitsTotal decimal.Decimal) (decimal.Decimal, bool) {
	if !e.settings.AllowNegativeStock {
		candidate = decimal.Min(candidate, available)
	}
	if !e.settings.AllowDeliveryExceedOrder {
		maxForSubUnit := pending.Sub(otherSubUnitsTotal)
		if maxForSubUnit.IsNegative() {
			return decimal.Zero, false
		}
		candidate = decimal.Min(candidate, maxForSubUnit)
	}
	if candidate.IsNegative() {
		candidate = decimal.Zero
	}
	return candidate, true
}

// AvailableForSubUnit existencia de la sub-unidad menos lo ya asignado a ella por los
// otros pedidos abiertos del cliente (mismo ítem, bodega y lote).
func AvailableForSubUnit(l Ledger, orders []entity.Order, su entity.SubUnit, excludingOrder string) decimal.Decimal {
	available := su.ClosingBalance
	for _, o := range orders {
		if o.Item != su.Item || o.Key() == excludingOrder {
			continue
		}
		available = available.Sub(l.Qty(Key{OrderKey: o.Key(), Warehouse: su.Warehouse, Batch: su.Batch}))
	}
	return available
}

// AvailableForOrder equivalente para ítems sin control por bodega/lote: existencia del ítem
// menos lo asignado por los otros pedidos del mismo ítem.
func AvailableForOrder(l Ledger, orders []entity.Order, order entity.Order) decimal.Decimal {
	available := order.AvailableQty
	for _, o := range orders {
		if o.Item != order.Item || o.Key() == order.Key() || o.IsTracked() {
			continue
		}
		available = available.Sub(l.Qty(Key{OrderKey: o.Key()}))
	}
	return available
}

// KeyFor clave de asignación del pedido en la sub-unidad (nil para ítems sin control).
func KeyFor(order entity.Order, su *entity.SubUnit) Key {
	if su == nil || !order.IsTracked() {
		return Key{OrderKey: order.Key()}
	}
	return Key{OrderKey: order.Key(), Warehouse: su.Warehouse, Batch: su.Batch}
}

// SetQuantity aplica una edición manual de cantidad. El texto se valida, se ajusta a los topes
// y reemplaza la entrada; la marca de fijada se pierde porque la edición manual manda.
// Un texto no numérico no cambia el libro y devuelve ErrInvalidInput.
func (e *Engine) SetQuantity(l Ledger, orders []entity.Order, order entity.Order, su *entity.SubUnit, text string) (Ledger, error) {
	text = strings.TrimSpace(text)
	if !quantityInputRe.MatchString(text) {
		return l, domain.Invalid(domain.ErrInvalidInput, "cantidad %q no es un número válido", text)
	}
	key := KeyFor(order, su)
	if text == "" || text == "." {
		return l.Delete(key), nil
	}
	number := text
	if strings.HasPrefix(number, ".") {
		number = "0" + number
	}

	// Digitación parcial: se guarda tal cual, sin topes.
	if strings.HasSuffix(text, ".") {
		qty, err := decimal.NewFromString(strings.TrimSuffix(number, "."))
		if err != nil {
			return l, domain.Invalid(domain.ErrInvalidInput, "cantidad %q no es un número válido", text)
		}
		return l.Set(key, Allocation{Kind: Manual, Qty: qty, Draft: text}), nil
	}

	candidate, err := decimal.NewFromString(number)
	if err != nil {
		return l, domain.Invalid(domain.ErrInvalidInput, "cantidad %q no es un número válido", text)
	}
	candidate = candidate.Round(2)

	var available decimal.Decimal
	if su != nil && order.IsTracked() {
		available = AvailableForSubUnit(l, orders, *su, order.Key())
	} else {
		available = AvailableForOrder(l, orders, order)
	}
	other := l.OrderTotalExcept(order.Key(), key)

	qty, ok := e.Clamp(candidate, available, order.PendingQty, other)
	if !ok || !qty.IsPositive() {
		return l.Delete(key), nil
	}
	return l.Set(key, Allocation{Kind: Manual, Qty: qty}), nil
}
