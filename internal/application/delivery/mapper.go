package delivery

import (
	"time"

	"github.com/jhoicas/Entregas-api/internal/application/dto"
	allocation "github.com/jhoicas/Entregas-api/internal/domain/delivery"
	"github.com/jhoicas/Entregas-api/internal/domain/entity"
)

const dateLayout = "2006-01-02"

func toSessionResponse(s *Session) *dto.DeliverySessionResponse {
	out := &dto.DeliverySessionResponse{
		ID:        s.ID,
		Customer:  s.Customer,
		Date:      s.Date.Format(dateLayout),
		Reference: s.Reference,
		Narration: s.Narration,
		Version:   s.Ledger.Version(),
		Editing:   s.Editing(),
		Settings:  toSettingsResponse(s.Settings),
		Orders:    make([]dto.DeliveryOrderResponse, 0, len(s.Orders)),
		Total:     newVoucher(s, s.Orders).Total().Round(2),
	}
	for _, o := range s.Orders {
		out.Orders = append(out.Orders, toOrderResponse(s.Ledger, o))
	}
	return out
}

func toOrderResponse(l allocation.Ledger, o entity.Order) dto.DeliveryOrderResponse {
	r := dto.DeliveryOrderResponse{
		Key:          o.Key(),
		Number:       o.Number,
		Date:         o.Date.Format(dateLayout),
		Item:         o.Item,
		Unit:         o.Unit,
		OrderedQty:   o.OrderedQty,
		PendingQty:   o.PendingQty,
		AvailableQty: o.AvailableQty,
		Rate:         o.RateString(),
		DiscountPct:  o.DiscountPct,
		DueDate:      o.DueDate.Format(dateLayout),
		Warehouse:    o.Warehouse,
		Batch:        o.Batch,
		Tracked:      o.IsTracked(),
		Allocated:    l.OrderTotal(o.Key()),
		Allocations:  []dto.AllocationResponse{},
	}
	for _, k := range l.KeysForOrder(o.Key()) {
		a := l.Get(k)
		r.Allocations = append(r.Allocations, dto.AllocationResponse{
			Warehouse: k.Warehouse,
			Batch:     k.Batch,
			Kind:      a.Kind.String(),
			Quantity:  a.Qty,
			Draft:     a.Draft,
			Pinned:    a.Kind == allocation.Auto,
		})
	}
	return r
}

// toBalancesResponse con pedido, cada sub-unidad trae lo disponible para él (descontando otros pedidos),
// lo que ya tiene asignado y si es elegible según su restricción de bodega/lote.
func toBalancesResponse(s *Session, item string, order *entity.Order, subUnits []entity.SubUnit) *dto.ItemBalancesResponse {
	out := &dto.ItemBalancesResponse{Item: item, SubUnits: make([]dto.SubUnitBalanceResponse, 0, len(subUnits))}
	if order != nil {
		out.OrderKey = order.Key()
	}
	for _, su := range subUnits {
		r := dto.SubUnitBalanceResponse{
			Warehouse:      su.Warehouse,
			Batch:          su.Batch,
			ClosingBalance: su.ClosingBalance,
			ClosingValue:   su.ClosingValue,
			Eligible:       true,
		}
		if order != nil {
			key := allocation.KeyFor(*order, &su)
			available := allocation.AvailableForSubUnit(s.Ledger, s.Orders, su, order.Key())
			allocated := s.Ledger.Qty(key)
			r.Available = &available
			r.Allocated = &allocated
			r.Pinned = s.Ledger.IsPinned(key)
			r.Eligible = order.Item == item && order.Accepts(su)
		}
		out.SubUnits = append(out.SubUnits, r)
	}
	return out
}

func toPreviewResponse(v *allocation.Voucher) *dto.DeliveryPreviewResponse {
	out := &dto.DeliveryPreviewResponse{Lines: []dto.DeliveryPreviewLine{}, Total: v.Total().Round(2)}
	for _, ol := range v.Orders {
		for _, l := range ol.Lines {
			out.Lines = append(out.Lines, dto.DeliveryPreviewLine{
				OrderNumber: ol.OrderNumber,
				Item:        l.Order.Item,
				Warehouse:   l.Warehouse,
				Batch:       l.Batch,
				Quantity:    l.Quantity,
				Unit:        l.Order.Unit,
				Rate:        l.Order.RateString(),
				DiscountPct: l.Order.DiscountPct,
				Amount:      l.Amount().Round(2),
			})
		}
	}
	return out
}

func toSettingsResponse(s entity.DeliverySettings) dto.DeliverySettingsResponse {
	return dto.DeliverySettingsResponse{
		AllowNegativeStock:       s.AllowNegativeStock,
		AllowDeliveryExceedOrder: s.AllowDeliveryExceedOrder,
		BatchXMLFormat:           s.BatchXMLFormat,
		AgeingBuckets:            s.AgeingBuckets,
	}
}

func toSubmissionResponse(s *entity.DeliverySubmission, detail bool) dto.DeliverySubmissionResponse {
	r := dto.DeliverySubmissionResponse{
		ID:          s.ID,
		Customer:    s.Customer,
		VoucherDate: s.VoucherDate.Format(dateLayout),
		Fingerprint: s.Fingerprint,
		Succeeded:   s.Succeeded,
		Message:     s.Message,
		CreatedAt:   s.CreatedAt.UTC().Format(time.RFC3339),
	}
	if detail {
		r.RequestXML = s.RequestXML
		r.ResponseXML = s.ResponseXML
	}
	return r
}
