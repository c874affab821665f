// Package delivery contiene el motor de asignación de entregas: el libro de asignaciones de una sesión,
// los topes por existencia y por pendiente, y los algoritmos de distribución entre sub-unidades.
package delivery

import (
	"sort"

	"github.com/shopspring/decimal"
)

// Kind estado de una asignación.
type Kind int

const (
	// Empty sin asignación (equivale a cero; nunca se almacena).
	Empty Kind = iota
	// Manual cantidad digitada por el usuario o calculada por el auto-llenado.
	Manual
	// Auto sub-unidad fijada por el usuario para recibir cantidad automática en la redistribución.
	Auto
)

func (k Kind) String() string {
	switch k {
	case Manual:
		return "manual"
	case Auto:
		return "auto"
	default:
		return "empty"
	}
}

// Key identifica una asignación: pedido + bodega + lote. Bodega y lote van vacíos para ítems sin control.
type Key struct {
	OrderKey  string
	Warehouse string
	Batch     string
}

// Allocation valor de una entrada del libro (unión Manual(qty) | Auto(qty) | Empty).
type Allocation struct {
	Kind  Kind
	Qty   decimal.Decimal
	Draft string // texto parcial en edición ("12."); vacío si la cantidad está completa
}

// IsZero indica si la entrada no aporta cantidad.
func (a Allocation) IsZero() bool {
	return a.Kind == Empty || !a.Qty.IsPositive()
}

// Ledger libro de asignaciones de una sesión de entrega. Es un valor inmutable:
// cada comando devuelve un libro nuevo con la versión incrementada.
type Ledger struct {
	version uint64
	entries map[Key]Allocation
}

// NewLedger crea un libro vacío.
func NewLedger() Ledger {
	return Ledger{entries: map[Key]Allocation{}}
}

// Version número de versión; aumenta con cada cambio.
func (l Ledger) Version() uint64 { return l.version }

// Len cantidad de entradas almacenadas (incluye sub-unidades fijadas con cero).
func (l Ledger) Len() int { return len(l.entries) }

// Get devuelve la entrada o Empty si no existe.
func (l Ledger) Get(k Key) Allocation {
	if a, ok := l.entries[k]; ok {
		return a
	}
	return Allocation{Kind: Empty, Qty: decimal.Zero}
}

// Qty cantidad asignada a la clave (cero si no existe).
func (l Ledger) Qty(k Key) decimal.Decimal {
	return l.Get(k).Qty
}

// IsPinned indica si la sub-unidad está fijada para asignación automática.
func (l Ledger) IsPinned(k Key) bool {
	return l.Get(k).Kind == Auto
}

// Keys devuelve las claves ordenadas (pedido, bodega, lote).
func (l Ledger) Keys() []Key {
	keys := make([]Key, 0, len(l.entries))
	for k := range l.entries {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool {
		if keys[i].OrderKey != keys[j].OrderKey {
			return keys[i].OrderKey < keys[j].OrderKey
		}
		if keys[i].Warehouse != keys[j].Warehouse {
			return keys[i].Warehouse < keys[j].Warehouse
		}
		return keys[i].Batch < keys[j].Batch
	})
	return keys
}

// KeysForOrder claves del pedido, ordenadas.
func (l Ledger) KeysForOrder(orderKey string) []Key {
	var out []Key
	for _, k := range l.Keys() {
		if k.OrderKey == orderKey {
			out = append(out, k)
		}
	}
	return out
}

// OrderTotal suma de las asignaciones del pedido en todas sus sub-unidades.
func (l Ledger) OrderTotal(orderKey string) decimal.Decimal {
	return l.OrderTotalExcept(orderKey, Key{})
}

// OrderTotalExcept suma de las asignaciones del pedido excluyendo la clave indicada.
func (l Ledger) OrderTotalExcept(orderKey string, except Key) decimal.Decimal {
	total := decimal.Zero
	for k, a := range l.entries {
		if k.OrderKey != orderKey || k == except {
			continue
		}
		total = total.Add(a.Qty)
	}
	return total
}

// HasAllocations indica si el pedido tiene alguna asignación distinta de cero.
func (l Ledger) HasAllocations(orderKey string) bool {
	for k, a := range l.entries {
		if k.OrderKey == orderKey && !a.IsZero() {
			return true
		}
	}
	return false
}

// HasPins indica si el pedido tiene alguna sub-unidad fijada.
func (l Ledger) HasPins(orderKey string) bool {
	for k, a := range l.entries {
		if k.OrderKey == orderKey && a.Kind == Auto {
			return true
		}
	}
	return false
}

// Quantities vista plana de las cantidades distintas de cero. La ausencia significa cero.
func (l Ledger) Quantities() map[Key]decimal.Decimal {
	out := make(map[Key]decimal.Decimal, len(l.entries))
	for k, a := range l.entries {
		if !a.IsZero() {
			out[k] = a.Qty
		}
	}
	return out
}

// IsEmpty indica si no hay ninguna cantidad distinta de cero.
func (l Ledger) IsEmpty() bool {
	for _, a := range l.entries {
		if !a.IsZero() {
			return false
		}
	}
	return true
}

// Set guarda la asignación. Una Manual en cero (sin borrador) o una Empty se elimina.
func (l Ledger) Set(k Key, a Allocation) Ledger {
	return l.edit(func(m map[Key]Allocation) {
		put(m, k, a)
	})
}

// Delete elimina la entrada (y con ella la marca de fijada).
func (l Ledger) Delete(k Key) Ledger {
	if _, ok := l.entries[k]; !ok {
		return l
	}
	return l.edit(func(m map[Key]Allocation) {
		delete(m, k)
	})
}

// ClearOrder elimina todas las entradas del pedido.
func (l Ledger) ClearOrder(orderKey string) Ledger {
	return l.edit(func(m map[Key]Allocation) {
		for k := range m {
			if k.OrderKey == orderKey {
				delete(m, k)
			}
		}
	})
}

// Clear vacía el libro conservando la secuencia de versiones.
func (l Ledger) Clear() Ledger {
	return l.edit(func(m map[Key]Allocation) {
		for k := range m {
			delete(m, k)
		}
	})
}

func (l Ledger) edit(fn func(m map[Key]Allocation)) Ledger {
	next := make(map[Key]Allocation, len(l.entries))
	for k, a := range l.entries {
		next[k] = a
	}
	fn(next)
	return Ledger{version: l.version + 1, entries: next}
}

func put(m map[Key]Allocation, k Key, a Allocation) {
	switch {
	case a.Kind == Empty:
		delete(m, k)
	case a.Kind == Manual && !a.Qty.IsPositive() && a.Draft == "":
		delete(m, k)
	default:
		if a.Qty.IsNegative() {
			a.Qty = decimal.Zero
		}
		m[k] = a
	}
}
