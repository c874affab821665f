package delivery_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/Entregas-api/internal/domain/delivery"
	"github.com/jhoicas/Entregas-api/internal/domain/entity"
)

func TestLines_AgrupaPorPedidoEnOrden(t *testing.T) {
	o1 := trackedOrder("SO/2", "Tornillo", "100")
	o2 := trackedOrder("SO/1", "Tuerca", "10")
	o3 := plainOrder("SO/2", "Arandela", "5", "50")
	su1 := subUnit("Tornillo", "A", "L1", "40")
	su2 := subUnit("Tornillo", "A", "L2", "90")

	l := delivery.NewLedger().
		Set(key(o1, su2), delivery.Allocation{Kind: delivery.Manual, Qty: d("60")}).
		Set(key(o1, su1), delivery.Allocation{Kind: delivery.Manual, Qty: d("40")}).
		Set(delivery.Key{OrderKey: o2.Key(), Warehouse: "B", Batch: "X"}, delivery.Allocation{Kind: delivery.Auto, Qty: d("0")}).
		Set(delivery.Key{OrderKey: o3.Key()}, delivery.Allocation{Kind: delivery.Manual, Qty: d("5")})

	lines := delivery.Lines(l, []entity.Order{o1, o2, o3}, nil)

	require.Len(t, lines, 1, "el pedido sin cantidades no aparece y SO/2 agrupa sus dos ítems")
	assert.Equal(t, "SO/2", lines[0].OrderNumber)
	require.Len(t, lines[0].Lines, 3)
	assert.Equal(t, "L1", lines[0].Lines[0].Batch, "sin orden informado, por clave")
	assert.Equal(t, "L2", lines[0].Lines[1].Batch)
	assert.Equal(t, "Arandela", lines[0].Lines[2].Order.Item)
}

func TestLines_SubUnidadesEnElOrdenDelSistemaContable(t *testing.T) {
	o := trackedOrder("SO/1", "Tornillo", "100")
	fetched := []entity.SubUnit{
		subUnit("Tornillo", "Bodega B", "L9", "50"),
		subUnit("Tornillo", "Bodega A", "L1", "40"),
	}
	l := delivery.NewLedger().
		Set(key(o, fetched[1]), delivery.Allocation{Kind: delivery.Manual, Qty: d("40")}).
		Set(delivery.Key{OrderKey: o.Key(), Warehouse: "Bodega 0", Batch: "L0"}, delivery.Allocation{Kind: delivery.Manual, Qty: d("5")}).
		Set(key(o, fetched[0]), delivery.Allocation{Kind: delivery.Manual, Qty: d("50")})

	lines := delivery.Lines(l, []entity.Order{o}, map[string][]entity.SubUnit{"Tornillo": fetched})

	require.Len(t, lines, 1)
	require.Len(t, lines[0].Lines, 3)
	assert.Equal(t, "L9", lines[0].Lines[0].Batch, "primero la que informó primero el sistema contable")
	assert.Equal(t, "L1", lines[0].Lines[1].Batch)
	assert.Equal(t, "L0", lines[0].Lines[2].Batch, "la sub-unidad desconocida va al final")
}

func TestVoucherLine_Amount(t *testing.T) {
	o := trackedOrder("SO/1", "Tornillo", "100")
	o.Rate = d("12.5")
	o.DiscountPct = d("10")

	l := delivery.VoucherLine{Order: o, Quantity: d("3")}
	assert.True(t, d("33.75").Equal(l.Amount()))

	v := delivery.Voucher{Orders: []delivery.OrderLines{{OrderNumber: "SO/1", Lines: []delivery.VoucherLine{l, l}}}}
	assert.True(t, d("67.5").Equal(v.Total()))
	assert.False(t, v.Empty())
	assert.True(t, delivery.Voucher{}.Empty())
}
