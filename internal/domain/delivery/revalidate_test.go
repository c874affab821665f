package delivery_test

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/Entregas-api/internal/domain"
	"github.com/jhoicas/Entregas-api/internal/domain/delivery"
	"github.com/jhoicas/Entregas-api/internal/domain/entity"
)

func TestRevalidate_SinCambiosPasa(t *testing.T) {
	o := trackedOrder("SO/1", "Tornillo", "100")
	su1 := subUnit("Tornillo", "Bodega", "L1", "40")
	su2 := subUnit("Tornillo", "Bodega", "L2", "90")
	subs := []entity.SubUnit{su1, su2}
	e := strictEngine()
	l := e.AutoFill(delivery.NewLedger(), []entity.Order{o}, o, subs)

	err := e.Revalidate(l, []entity.Order{o}, map[string][]entity.SubUnit{"Tornillo": subs})
	assert.NoError(t, err)
}

func TestRevalidate_PendienteReducido(t *testing.T) {
	o := trackedOrder("SO/1", "Tornillo", "100")
	su1 := subUnit("Tornillo", "Bodega", "L1", "40")
	subs := []entity.SubUnit{su1}
	e := strictEngine()
	l := e.AutoFill(delivery.NewLedger(), []entity.Order{o}, o, subs)

	fresh := o
	fresh.PendingQty = d("25")
	err := e.Revalidate(l, []entity.Order{fresh}, map[string][]entity.SubUnit{"Tornillo": subs})
	require.Error(t, err)
	assert.True(t, errors.Is(err, domain.ErrExceedsPending))
	assert.Contains(t, err.Error(), "SO/1")
}

func TestRevalidate_PedidoYaNoPendiente(t *testing.T) {
	o := trackedOrder("SO/1", "Tornillo", "100")
	su1 := subUnit("Tornillo", "Bodega", "L1", "40")
	e := strictEngine()
	l := e.AutoFill(delivery.NewLedger(), []entity.Order{o}, o, []entity.SubUnit{su1})

	err := e.Revalidate(l, nil, nil)
	assert.True(t, errors.Is(err, domain.ErrExceedsPending))
}

func TestRevalidate_ExistenciaReducida(t *testing.T) {
	a := trackedOrder("SO/1", "Tornillo", "30")
	b := trackedOrder("SO/2", "Tornillo", "30")
	su1 := subUnit("Tornillo", "Bodega", "L1", "60")
	orders := []entity.Order{a, b}
	e := strictEngine()
	l := e.AutoFill(delivery.NewLedger(), orders, a, []entity.SubUnit{su1})
	l = e.AutoFill(l, orders, b, []entity.SubUnit{su1})

	fresh := subUnit("Tornillo", "Bodega", "L1", "50")
	err := e.Revalidate(l, orders, map[string][]entity.SubUnit{"Tornillo": {fresh}})
	require.Error(t, err)
	assert.True(t, errors.Is(err, domain.ErrExceedsAvailable), "60 asignados contra 50 disponibles")
}

func TestRevalidate_BanderasOmitenChequeos(t *testing.T) {
	o := trackedOrder("SO/1", "Tornillo", "100")
	su1 := subUnit("Tornillo", "Bodega", "L1", "40")
	l := strictEngine().AutoFill(delivery.NewLedger(), []entity.Order{o}, o, []entity.SubUnit{su1})

	fresh := o
	fresh.PendingQty = d("10")
	lax := delivery.NewEngine(entity.DeliverySettings{AllowNegativeStock: true, AllowDeliveryExceedOrder: true})
	assert.NoError(t, lax.Revalidate(l, []entity.Order{fresh}, map[string][]entity.SubUnit{}))
}
