package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// Order representa una línea de pedido de venta abierta traída del sistema contable.
// Es inmutable durante la sesión: un refresco la reemplaza completa.
type Order struct {
	Number       string
	Date         time.Time
	Customer     string
	Item         string
	Unit         string          // unidad de medida del ítem ("Nos", "Kgs")
	OrderedQty   decimal.Decimal
	PendingQty   decimal.Decimal // cantidad aún no entregada
	AvailableQty decimal.Decimal // existencia total del ítem (ítems sin control por bodega/lote)
	Rate         decimal.Decimal
	RateText     string          // tarifa tal como la envía el sistema contable ("10.00/Nos")
	DiscountPct  decimal.Decimal
	DueDate      time.Time
	Warehouse    string // restricción de bodega del pedido (vacío = cualquiera)
	Batch        string // restricción de lote del pedido (vacío = cualquiera)

	TracksWarehouse bool
	TracksBatch     bool
}

// Key identidad de la línea: número + ítem + fecha del pedido.
func (o Order) Key() string {
	return o.Number + o.Item + o.Date.Format("20060102")
}

// IsTracked indica si el ítem maneja bodega y/o lote (asignación por sub-unidad).
func (o Order) IsTracked() bool {
	return o.TracksWarehouse || o.TracksBatch
}

// RateString devuelve la tarifa textual del pedido; si no vino del sistema se arma "tarifa/unidad".
func (o Order) RateString() string {
	if o.RateText != "" {
		return o.RateText
	}
	s := o.Rate.StringFixed(2)
	if o.Unit != "" {
		s += "/" + o.Unit
	}
	return s
}

// Accepts indica si una sub-unidad cumple la restricción de bodega/lote del pedido (coincidencia exacta).
func (o Order) Accepts(su SubUnit) bool {
	if o.Warehouse != "" && su.Warehouse != o.Warehouse {
		return false
	}
	if o.Batch != "" && su.Batch != o.Batch {
		return false
	}
	return true
}
