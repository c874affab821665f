package delivery

import (
	"context"

	"github.com/jhoicas/Entregas-api/internal/application/dto"
	"github.com/jhoicas/Entregas-api/internal/domain"
)

// SetQuantity aplica una cantidad digitada en una sub-unidad (o en el pedido, si el ítem no tiene control).
// La cantidad se ajusta en silencio a los topes activos.
func (uc *UseCase) SetQuantity(ctx context.Context, companyID, sessionID string, in dto.SetAllocationRequest) (*dto.DeliverySessionResponse, error) {
	s, err := uc.store.Get(companyID, sessionID)
	if err != nil {
		return nil, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	o, _, su, err := uc.orderAndSubUnits(ctx, s, in.OrderKey, in.Warehouse, in.Batch, true)
	if err != nil {
		return nil, err
	}
	next, err := s.Engine.SetQuantity(s.Ledger, s.Orders, o, su, in.Quantity)
	if err != nil {
		return nil, err
	}
	s.Ledger = next
	return toSessionResponse(s), nil
}

// SetPinned fija o libera una sub-unidad para asignación automática y redistribuye el pedido.
func (uc *UseCase) SetPinned(ctx context.Context, companyID, sessionID string, in dto.SetPinnedRequest) (*dto.DeliverySessionResponse, error) {
	s, err := uc.store.Get(companyID, sessionID)
	if err != nil {
		return nil, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	o, subUnits, su, err := uc.orderAndSubUnits(ctx, s, in.OrderKey, in.Warehouse, in.Batch, true)
	if err != nil {
		return nil, err
	}
	if su == nil {
		return nil, domain.Invalid(domain.ErrInvalidInput, "el ítem %s no maneja bodega ni lote", o.Item)
	}
	s.Ledger = s.Engine.SetPinned(s.Ledger, s.Orders, o, su, subUnits, in.Pinned)
	return toSessionResponse(s), nil
}

// AutoFill llena el pendiente del pedido si aún no tiene asignaciones ni sub-unidades fijadas.
func (uc *UseCase) AutoFill(ctx context.Context, companyID, sessionID, orderKey string) (*dto.DeliverySessionResponse, error) {
	s, err := uc.store.Get(companyID, sessionID)
	if err != nil {
		return nil, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	o, subUnits, _, err := uc.orderAndSubUnits(ctx, s, orderKey, "", "", false)
	if err != nil {
		return nil, err
	}
	s.Ledger = s.Engine.AutoFill(s.Ledger, s.Orders, o, subUnits)
	return toSessionResponse(s), nil
}

// ClearOrder borra todas las asignaciones y fijaciones del pedido.
func (uc *UseCase) ClearOrder(_ context.Context, companyID, sessionID, orderKey string) (*dto.DeliverySessionResponse, error) {
	s, err := uc.store.Get(companyID, sessionID)
	if err != nil {
		return nil, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.Order(orderKey); !ok {
		return nil, domain.Invalid(domain.ErrNotFound, "pedido %s no pertenece a la sesión", orderKey)
	}
	s.Ledger = s.Ledger.ClearOrder(orderKey)
	return toSessionResponse(s), nil
}

// BeginEdit guarda una foto del libro completo antes de abrir el diálogo de selección.
// Si ya hay una edición en curso se conserva la foto original.
func (uc *UseCase) BeginEdit(_ context.Context, companyID, sessionID string) (*dto.DeliverySessionResponse, error) {
	s, err := uc.store.Get(companyID, sessionID)
	if err != nil {
		return nil, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.snapshot == nil {
		snap := s.Ledger
		s.snapshot = &snap
	}
	return toSessionResponse(s), nil
}

// CancelEdit restaura el libro guardado en BeginEdit.
func (uc *UseCase) CancelEdit(_ context.Context, companyID, sessionID string) (*dto.DeliverySessionResponse, error) {
	s, err := uc.store.Get(companyID, sessionID)
	if err != nil {
		return nil, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.snapshot == nil {
		return nil, domain.Invalid(domain.ErrInvalidInput, "no hay una edición en curso")
	}
	s.Ledger = *s.snapshot
	s.snapshot = nil
	return toSessionResponse(s), nil
}

// CommitEdit confirma los cambios hechos desde BeginEdit.
func (uc *UseCase) CommitEdit(_ context.Context, companyID, sessionID string) (*dto.DeliverySessionResponse, error) {
	s, err := uc.store.Get(companyID, sessionID)
	if err != nil {
		return nil, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.snapshot == nil {
		return nil, domain.Invalid(domain.ErrInvalidInput, "no hay una edición en curso")
	}
	s.snapshot = nil
	return toSessionResponse(s), nil
}
