package delivery

import (
	"sort"
	"time"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/Entregas-api/internal/domain/entity"
)

// VoucherLine una asignación final: pedido, sub-unidad y cantidad a entregar (> 0).
type VoucherLine struct {
	Order     entity.Order
	Warehouse string
	Batch     string
	Quantity  decimal.Decimal
}

// Amount importe de la línea sin redondear: cantidad × tarifa × (100 − descuento) / 100.
func (l VoucherLine) Amount() decimal.Decimal {
	hundred := decimal.NewFromInt(100)
	return l.Quantity.Mul(l.Order.Rate).Mul(hundred.Sub(l.Order.DiscountPct)).Div(hundred)
}

// OrderLines líneas de un mismo número de pedido, en el orden en que se emitirán.
type OrderLines struct {
	OrderNumber string
	Lines       []VoucherLine
}

// Voucher nota de entrega lista para sintetizar.
type Voucher struct {
	CompanyName string
	Customer    string
	Date        time.Time
	Reference   string
	Narration   string
	Layout      string // entity.BatchXMLSingle | entity.BatchXMLSeparate
	Orders      []OrderLines
}

// Total suma sin redondear de los importes de todas las líneas.
func (v Voucher) Total() decimal.Decimal {
	total := decimal.Zero
	for _, ol := range v.Orders {
		for _, l := range ol.Lines {
			total = total.Add(l.Amount())
		}
	}
	return total
}

// Empty indica si no hay ninguna línea con cantidad positiva.
func (v Voucher) Empty() bool {
	for _, ol := range v.Orders {
		for _, l := range ol.Lines {
			if l.Quantity.IsPositive() {
				return false
			}
		}
	}
	return true
}

// Lines arma las líneas del comprobante a partir del libro, agrupadas por número de pedido
// en el orden de la lista de pedidos. Dentro de cada pedido las sub-unidades siguen el orden en que
// el sistema contable las informó (subUnits por ítem); las que no figuran van al final por clave.
func Lines(l Ledger, orders []entity.Order, subUnits map[string][]entity.SubUnit) []OrderLines {
	quantities := l.Quantities()
	var out []OrderLines
	index := map[string]int{}
	for _, o := range orders {
		keys := l.KeysForOrder(o.Key())
		sortBySubUnitOrder(keys, subUnits[o.Item])
		for _, k := range keys {
			q, ok := quantities[k]
			if !ok {
				continue
			}
			i, seen := index[o.Number]
			if !seen {
				i = len(out)
				index[o.Number] = i
				out = append(out, OrderLines{OrderNumber: o.Number})
			}
			out[i].Lines = append(out[i].Lines, VoucherLine{Order: o, Warehouse: k.Warehouse, Batch: k.Batch, Quantity: q})
		}
	}
	return out
}

func sortBySubUnitOrder(keys []Key, subUnits []entity.SubUnit) {
	if len(subUnits) == 0 || len(keys) < 2 {
		return
	}
	pos := make(map[[2]string]int, len(subUnits))
	for i, su := range subUnits {
		pos[[2]string{su.Warehouse, su.Batch}] = i
	}
	rank := func(k Key) int {
		if i, ok := pos[[2]string{k.Warehouse, k.Batch}]; ok {
			return i
		}
		return len(subUnits)
	}
	sort.SliceStable(keys, func(i, j int) bool { return rank(keys[i]) < rank(keys[j]) })
}

// ImportResult clasificación de la respuesta del sistema contable a una importación.
type ImportResult struct {
	Succeeded  bool
	Message    string
	Created    int
	Altered    int
	Deleted    int
	Errors     int
	Exceptions int
	LastVchID  string
}
