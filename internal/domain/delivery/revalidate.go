package delivery

import (
	"sort"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/Entregas-api/internal/domain"
	"github.com/jhoicas/Entregas-api/internal/domain/entity"
)

// Revalidate verifica el libro contra datos frescos del sistema contable, sin ajustar nada:
// cualquier exceso es un error (ErrExceedsPending o ErrExceedsAvailable) con el detalle del pedido o sub-unidad.
// balances trae las sub-unidades recién consultadas por ítem.
func (e *Engine) Revalidate(l Ledger, fresh []entity.Order, balances map[string][]entity.SubUnit) error {
	byKey := make(map[string]entity.Order, len(fresh))
	for _, o := range fresh {
		byKey[o.Key()] = o
	}

	// 1. Pendiente por pedido.
	var orderKeys []string
	seen := map[string]bool{}
	for k, q := range l.Quantities() {
		if !q.IsPositive() || seen[k.OrderKey] {
			continue
		}
		seen[k.OrderKey] = true
		orderKeys = append(orderKeys, k.OrderKey)
	}
	sort.Strings(orderKeys)

	for _, ok := range orderKeys {
		o, found := byKey[ok]
		if !found {
			return domain.Invalid(domain.ErrExceedsPending, "el pedido %s ya no tiene cantidad pendiente", ok)
		}
		if e.settings.AllowDeliveryExceedOrder {
			continue
		}
		if total := l.OrderTotal(ok); total.GreaterThan(o.PendingQty) {
			return domain.Invalid(domain.ErrExceedsPending, "pedido %s ítem %s: a entregar %s, pendiente %s",
				o.Number, o.Item, total.String(), o.PendingQty.String())
		}
	}
	if e.settings.AllowNegativeStock {
		return nil
	}

	// 2. Existencia por sub-unidad (ítems con control) o por ítem (sin control).
	type stockKey struct{ item, warehouse, batch string }
	demand := map[stockKey]decimal.Decimal{}
	supply := map[stockKey]decimal.Decimal{}
	var stockKeys []stockKey
	for k, q := range l.Quantities() {
		o := byKey[k.OrderKey]
		sk := stockKey{item: o.Item, warehouse: k.Warehouse, batch: k.Batch}
		if _, ok := demand[sk]; !ok {
			stockKeys = append(stockKeys, sk)
			if o.IsTracked() {
				supply[sk] = balanceOf(balances[o.Item], k.Warehouse, k.Batch)
			} else {
				supply[sk] = o.AvailableQty
			}
		}
		demand[sk] = demand[sk].Add(q)
	}
	sort.Slice(stockKeys, func(i, j int) bool {
		a, b := stockKeys[i], stockKeys[j]
		if a.item != b.item {
			return a.item < b.item
		}
		if a.warehouse != b.warehouse {
			return a.warehouse < b.warehouse
		}
		return a.batch < b.batch
	})
	for _, sk := range stockKeys {
		if demand[sk].GreaterThan(supply[sk]) {
			return domain.Invalid(domain.ErrExceedsAvailable, "ítem %s bodega %q lote %q: a entregar %s, disponible %s",
				sk.item, sk.warehouse, sk.batch, demand[sk].String(), supply[sk].String())
		}
	}
	return nil
}

func balanceOf(subUnits []entity.SubUnit, warehouse, batch string) decimal.Decimal {
	for _, su := range subUnits {
		if su.Warehouse == warehouse && su.Batch == batch {
			return su.ClosingBalance
		}
	}
	return decimal.Zero
}
