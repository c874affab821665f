package delivery

import (
	"github.com/shopspring/decimal"

	"github.com/jhoicas/Entregas-api/internal/domain/entity"
)

// candidate sub-unidad elegible para un pedido con su existencia disponible para él.
type candidate struct {
	key       Key
	available decimal.Decimal
}

// Eligible filtra las sub-unidades del ítem del pedido que cumplen su restricción de bodega/lote.
// El orden original (el de la consulta) se conserva.
func Eligible(order entity.Order, subUnits []entity.SubUnit) []entity.SubUnit {
	var out []entity.SubUnit
	for _, su := range subUnits {
		if su.Item != "" && su.Item != order.Item {
			continue
		}
		if order.Accepts(su) {
			out = append(out, su)
		}
	}
	return out
}

// candidates arma la lista de destinos del pedido. Un ítem sin control por bodega/lote
// tiene un único destino: el propio pedido.
func candidates(l Ledger, orders []entity.Order, order entity.Order, subUnits []entity.SubUnit) []candidate {
	if !order.IsTracked() {
		return []candidate{{
			key:       Key{OrderKey: order.Key()},
			available: nonNegative(AvailableForOrder(l, orders, order)),
		}}
	}
	eligible := Eligible(order, subUnits)
	out := make([]candidate, 0, len(eligible))
	for _, su := range eligible {
		out = append(out, candidate{
			key:       Key{OrderKey: order.Key(), Warehouse: su.Warehouse, Batch: su.Batch},
			available: nonNegative(AvailableForSubUnit(l, orders, su, order.Key())),
		})
	}
	return out
}

// AutoFill llena el pendiente del pedido recorriendo sus sub-unidades en orden (primer ajuste voraz):
// cada una recibe toda su existencia disponible hasta cubrir el pendiente; el resto queda en cero.
// Solo actúa si el pedido no tiene asignaciones ni sub-unidades fijadas, así que reentrar no cambia nada.
func (e *Engine) AutoFill(l Ledger, orders []entity.Order, order entity.Order, subUnits []entity.SubUnit) Ledger {
	if l.HasAllocations(order.Key()) || l.HasPins(order.Key()) {
		return l
	}
	remaining := order.PendingQty
	cands := candidates(l, orders, order, subUnits)
	return l.edit(func(m map[Key]Allocation) {
		for _, c := range cands {
			var assign decimal.Decimal
			if remaining.GreaterThanOrEqual(c.available) {
				assign = c.available
			} else {
				assign = nonNegative(remaining)
			}
			remaining = remaining.Sub(assign)
			put(m, c.key, Allocation{Kind: Manual, Qty: assign})
		}
	})
}

// Redistribute recalcula el pedido respetando las sub-unidades fijadas:
//  1. las fijadas (en orden) reciben min(disponible, restante);
//  2. las no fijadas conservan su asignación previa hasta donde alcance el restante.
//
// Nunca supera el pendiente del pedido. Aplicarla dos veces seguidas da el mismo libro.
func (e *Engine) Redistribute(l Ledger, orders []entity.Order, order entity.Order, subUnits []entity.SubUnit) Ledger {
	remaining := order.PendingQty
	cands := candidates(l, orders, order, subUnits)
	return l.edit(func(m map[Key]Allocation) {
		for _, c := range cands {
			if m[c.key].Kind != Auto {
				continue
			}
			assign := nonNegative(decimal.Min(c.available, remaining))
			remaining = remaining.Sub(assign)
			m[c.key] = Allocation{Kind: Auto, Qty: assign}
		}
		for _, c := range cands {
			prior, ok := m[c.key]
			if !ok || prior.Kind == Auto {
				continue
			}
			assign := decimal.Min(prior.Qty, remaining)
			if !assign.IsPositive() {
				delete(m, c.key)
				continue
			}
			remaining = remaining.Sub(assign)
			m[c.key] = Allocation{Kind: Manual, Qty: assign}
		}
	})
}

// SetPinned marca o desmarca una sub-unidad como automática y redistribuye el pedido.
// Al desmarcar, la cantidad que tenía queda como asignación manual previa.
func (e *Engine) SetPinned(l Ledger, orders []entity.Order, order entity.Order, su *entity.SubUnit, subUnits []entity.SubUnit, pinned bool) Ledger {
	key := KeyFor(order, su)
	current := l.Get(key)
	if pinned {
		l = l.Set(key, Allocation{Kind: Auto, Qty: current.Qty})
	} else if current.Kind == Auto {
		l = l.Set(key, Allocation{Kind: Manual, Qty: current.Qty})
	}
	return e.Redistribute(l, orders, order, subUnits)
}

func nonNegative(d decimal.Decimal) decimal.Decimal {
	if d.IsNegative() {
		return decimal.Zero
	}
	return d
}
