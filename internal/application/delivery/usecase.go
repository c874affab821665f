// Package delivery orquesta las sesiones de entrega: trae pedidos y existencias del sistema contable,
// aplica el motor de asignación y envía la nota de entrega.
package delivery

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/jhoicas/Entregas-api/internal/application/dto"
	"github.com/jhoicas/Entregas-api/internal/domain"
	allocation "github.com/jhoicas/Entregas-api/internal/domain/delivery"
	"github.com/jhoicas/Entregas-api/internal/domain/entity"
	"github.com/jhoicas/Entregas-api/internal/domain/repository"
	"github.com/jhoicas/Entregas-api/pkg/logger"
)

// UseCase casos de uso de la sesión de entrega.
type UseCase struct {
	gateway     LedgerGateway
	cache       BalanceCache
	codec       VoucherCodec
	pdf         DeliveryNotePDFGenerator
	settings    SettingsProvider
	submissions repository.DeliverySubmissionRepository // opcional
	store       *SessionStore
	log         *logger.Logger
	now         func() time.Time
}

// NewUseCase construye el caso de uso inyectando sus puertos. submissions puede ser nil.
func NewUseCase(
	gateway LedgerGateway,
	cache BalanceCache,
	codec VoucherCodec,
	pdf DeliveryNotePDFGenerator,
	settings SettingsProvider,
	submissions repository.DeliverySubmissionRepository,
	store *SessionStore,
	log *logger.Logger,
) *UseCase {
	return &UseCase{
		gateway:     gateway,
		cache:       cache,
		codec:       codec,
		pdf:         pdf,
		settings:    settings,
		submissions: submissions,
		store:       store,
		log:         log,
		now:         time.Now,
	}
}

// OpenSession trae los pedidos abiertos de la empresa, se queda con los del cliente y abre un libro vacío.
func (uc *UseCase) OpenSession(ctx context.Context, companyID, userID string, in dto.OpenDeliverySessionRequest) (*dto.DeliverySessionResponse, error) {
	customer := strings.TrimSpace(in.Customer)
	if customer == "" {
		return nil, domain.Invalid(domain.ErrInvalidInput, "el cliente es obligatorio")
	}
	if strings.TrimSpace(in.CompanyName) == "" {
		return nil, domain.Invalid(domain.ErrInvalidInput, "la empresa del sistema contable es obligatoria")
	}
	date := uc.now()
	if in.Date != "" {
		d, err := time.Parse("2006-01-02", in.Date)
		if err != nil {
			return nil, domain.Invalid(domain.ErrInvalidInput, "fecha %q inválida, formato AAAA-MM-DD", in.Date)
		}
		date = d
	}

	settings, err := uc.settings.Effective(ctx, companyID)
	if err != nil {
		return nil, fmt.Errorf("delivery: banderas de la empresa: %w", err)
	}
	s := &Session{
		CompanyID: companyID,
		UserID:    userID,
		Conn: entity.LedgerConnection{
			LocationID:  in.LocationID,
			CompanyName: in.CompanyName,
			CompanyGUID: in.CompanyGUID,
		},
		Customer:  customer,
		Date:      date,
		Reference: strings.TrimSpace(in.Reference),
		Narration: strings.TrimSpace(in.Narration),
		Settings:  settings,
		Engine:    allocation.NewEngine(settings),
		Ledger:    allocation.NewLedger(),

		subUnitOrder: map[string][]entity.SubUnit{},
	}
	orders, err := uc.fetchOrders(ctx, s)
	if err != nil {
		return nil, err
	}
	s.Orders = orders
	uc.store.Add(s)

	uc.log.Info().
		Str("session", s.ID).
		Str("company", companyID).
		Str("customer", customer).
		Int("orders", len(orders)).
		Msg("sesión de entrega abierta")
	return toSessionResponse(s), nil
}

// GetSession estado actual de la sesión.
func (uc *UseCase) GetSession(_ context.Context, companyID, sessionID string) (*dto.DeliverySessionResponse, error) {
	s, err := uc.store.Get(companyID, sessionID)
	if err != nil {
		return nil, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	return toSessionResponse(s), nil
}

// CloseSession descarta libro, foto de edición y existencias cacheadas.
func (uc *UseCase) CloseSession(ctx context.Context, companyID, sessionID string) error {
	s, err := uc.store.Get(companyID, sessionID)
	if err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	uc.store.Remove(s.ID)
	s.Ledger = s.Ledger.Clear()
	s.snapshot = nil
	if err := uc.cache.Drop(ctx, s.ID); err != nil {
		uc.log.Warn().Err(err).Str("session", s.ID).Msg("no se pudo limpiar la caché de existencias")
	}
	uc.log.Info().Str("session", s.ID).Msg("sesión de entrega cerrada")
	return nil
}

// RefreshOrders vuelve a traer los pedidos; la lista se reemplaza completa.
func (uc *UseCase) RefreshOrders(ctx context.Context, companyID, sessionID string) (*dto.DeliverySessionResponse, error) {
	s, err := uc.store.Get(companyID, sessionID)
	if err != nil {
		return nil, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	orders, err := uc.fetchOrders(ctx, s)
	if err != nil {
		return nil, err
	}
	s.Orders = orders
	return toSessionResponse(s), nil
}

// LoadBalances existencias del ítem desde la caché de la sesión o del sistema contable.
// force descarta lo cacheado. Con orderKey se calcula además lo disponible para ese pedido.
func (uc *UseCase) LoadBalances(ctx context.Context, companyID, sessionID, item, orderKey string, force bool) (*dto.ItemBalancesResponse, error) {
	if strings.TrimSpace(item) == "" {
		return nil, domain.Invalid(domain.ErrInvalidInput, "el ítem es obligatorio")
	}
	s, err := uc.store.Get(companyID, sessionID)
	if err != nil {
		return nil, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	var order *entity.Order
	if orderKey != "" {
		o, ok := s.Order(orderKey)
		if !ok {
			return nil, domain.Invalid(domain.ErrNotFound, "pedido %s no pertenece a la sesión", orderKey)
		}
		order = &o
	}
	subUnits, err := uc.subUnits(ctx, s, item, force)
	if err != nil {
		return nil, err
	}
	return toBalancesResponse(s, item, order, subUnits), nil
}

// SweepExpired cierra las sesiones vencidas por inactividad y limpia su caché.
func (uc *UseCase) SweepExpired(ctx context.Context) int {
	ids := uc.store.Expired()
	for _, id := range ids {
		if err := uc.cache.Drop(ctx, id); err != nil {
			uc.log.Warn().Err(err).Str("session", id).Msg("no se pudo limpiar la caché de existencias")
		}
	}
	if len(ids) > 0 {
		uc.log.Info().Int("sessions", len(ids)).Msg("sesiones de entrega vencidas descartadas")
	}
	return len(ids)
}

// fetchOrders pedidos abiertos del cliente de la sesión, en el orden del sistema contable.
func (uc *UseCase) fetchOrders(ctx context.Context, s *Session) ([]entity.Order, error) {
	all, err := uc.gateway.GetOrders(ctx, s.Conn, false)
	if err != nil {
		uc.log.Warn().Err(err).Str("customer", s.Customer).Msg("no se pudieron traer los pedidos")
		return nil, err
	}
	orders := make([]entity.Order, 0, len(all))
	for _, o := range all {
		if strings.EqualFold(strings.TrimSpace(o.Customer), s.Customer) {
			orders = append(orders, o)
		}
	}
	return orders, nil
}

// subUnits lectura con caché; un refresco forzado invalida, consulta y reescribe (la última escritura gana).
func (uc *UseCase) subUnits(ctx context.Context, s *Session, item string, force bool) ([]entity.SubUnit, error) {
	if force {
		if err := uc.cache.Invalidate(ctx, s.ID, item); err != nil {
			uc.log.Warn().Err(err).Str("item", item).Msg("no se pudo invalidar la caché")
		}
	} else {
		cached, ok, err := uc.cache.Get(ctx, s.ID, item)
		if err != nil {
			uc.log.Warn().Err(err).Str("item", item).Msg("lectura de caché fallida; se consulta el sistema contable")
		} else if ok {
			s.subUnitOrder[item] = cached
			return cached, nil
		}
	}

	fetched, err := uc.gateway.GetSubUnitBalances(ctx, s.Conn, item)
	if err != nil {
		return nil, err
	}
	for i := range fetched {
		fetched[i].Item = item
	}
	if err := uc.cache.Set(ctx, s.ID, item, fetched); err != nil {
		uc.log.Warn().Err(err).Str("item", item).Msg("no se pudo guardar en caché")
	}
	s.subUnitOrder[item] = fetched
	uc.log.Debug().Str("session", s.ID).Str("item", item).Int("sub_units", len(fetched)).Bool("forced", force).
		Msg("existencias consultadas")
	return fetched, nil
}

// orderAndSubUnits resuelve el pedido y, si maneja bodega/lote, sus existencias y la sub-unidad pedida.
func (uc *UseCase) orderAndSubUnits(ctx context.Context, s *Session, orderKey, warehouse, batch string, needSubUnit bool) (entity.Order, []entity.SubUnit, *entity.SubUnit, error) {
	o, ok := s.Order(orderKey)
	if !ok {
		return entity.Order{}, nil, nil, domain.Invalid(domain.ErrNotFound, "pedido %s no pertenece a la sesión", orderKey)
	}
	if !o.IsTracked() {
		return o, nil, nil, nil
	}
	subUnits, err := uc.subUnits(ctx, s, o.Item, false)
	if err != nil {
		return entity.Order{}, nil, nil, err
	}
	if !needSubUnit {
		return o, subUnits, nil, nil
	}
	for i := range subUnits {
		if subUnits[i].Warehouse == warehouse && subUnits[i].Batch == batch {
			su := subUnits[i]
			if !o.Accepts(su) {
				return entity.Order{}, nil, nil, domain.Invalid(domain.ErrInvalidInput,
					"el pedido %s no admite bodega %q lote %q", o.Number, warehouse, batch)
			}
			return o, subUnits, &su, nil
		}
	}
	return entity.Order{}, nil, nil, domain.Invalid(domain.ErrInvalidInput,
		"ítem %s sin sub-unidad bodega %q lote %q", o.Item, warehouse, batch)
}
