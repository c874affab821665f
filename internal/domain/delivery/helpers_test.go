package delivery_test

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/Entregas-api/internal/domain/delivery"
	"github.com/jhoicas/Entregas-api/internal/domain/entity"
)

// ── helpers ───────────────────────────────────────────────────────────────────

func d(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func trackedOrder(number, item, pending string) entity.Order {
	return entity.Order{
		Number:          number,
		Date:            time.Date(2024, time.January, 1, 0, 0, 0, 0, time.UTC),
		Customer:        "Cliente Uno",
		Item:            item,
		Unit:            "Nos",
		OrderedQty:      d(pending),
		PendingQty:      d(pending),
		Rate:            d("10"),
		DueDate:         time.Date(2024, time.January, 15, 0, 0, 0, 0, time.UTC),
		TracksWarehouse: true,
		TracksBatch:     true,
	}
}

func plainOrder(number, item, pending, available string) entity.Order {
	o := trackedOrder(number, item, pending)
	o.TracksWarehouse = false
	o.TracksBatch = false
	o.AvailableQty = d(available)
	return o
}

func subUnit(item, warehouse, batch, balance string) entity.SubUnit {
	return entity.SubUnit{Item: item, Warehouse: warehouse, Batch: batch, ClosingBalance: d(balance)}
}

func key(o entity.Order, su entity.SubUnit) delivery.Key {
	return delivery.Key{OrderKey: o.Key(), Warehouse: su.Warehouse, Batch: su.Batch}
}

func strictEngine() *delivery.Engine {
	return delivery.NewEngine(entity.DeliverySettings{BatchXMLFormat: entity.BatchXMLSingle})
}
