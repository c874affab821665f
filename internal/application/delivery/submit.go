package delivery

import (
	"context"
	"errors"
	"sort"

	"github.com/google/uuid"

	"github.com/jhoicas/Entregas-api/internal/application/dto"
	"github.com/jhoicas/Entregas-api/internal/domain"
	allocation "github.com/jhoicas/Entregas-api/internal/domain/delivery"
	"github.com/jhoicas/Entregas-api/internal/domain/entity"
)

// Preview líneas, XML y huella del comprobante con el libro actual, sin enviar nada.
func (uc *UseCase) Preview(_ context.Context, companyID, sessionID string) (*dto.DeliveryPreviewResponse, error) {
	s, err := uc.store.Get(companyID, sessionID)
	if err != nil {
		return nil, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	v := newVoucher(s, s.Orders)
	xml, err := uc.codec.Build(v)
	if err != nil {
		return nil, err
	}
	out := toPreviewResponse(v)
	out.XML = xml
	if xml != "" {
		if out.Fingerprint, err = uc.codec.Fingerprint(xml); err != nil {
			return nil, err
		}
	}
	return out, nil
}

// PreviewPDF nota de entrega imprimible con el libro actual.
func (uc *UseCase) PreviewPDF(ctx context.Context, companyID, sessionID string) ([]byte, error) {
	s, err := uc.store.Get(companyID, sessionID)
	if err != nil {
		return nil, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	v := newVoucher(s, s.Orders)
	if v.Empty() {
		return nil, domain.ErrEmptyVoucher
	}
	return uc.pdf.GenerateDeliveryNotePDF(ctx, v)
}

// Submit envía la nota de entrega al sistema contable:
//  1. valida localmente fecha, cliente y que haya cantidades;
//  2. refresca pedidos y existencias y revalida el libro sin ajustar nada;
//  3. sintetiza el XML y calcula su huella para la bitácora;
//  4. envía, interpreta la respuesta y registra el envío.
//
// Si la revalidación falla, la sesión queda con los pedidos frescos y la respuesta trae su estado
// junto con el error (ErrExceedsPending o ErrExceedsAvailable). Con éxito se limpia el libro y se
// descartan las existencias en caché, que ya no reflejan lo entregado.
func (uc *UseCase) Submit(ctx context.Context, companyID, sessionID string) (*dto.SubmitDeliveryResponse, error) {
	s, err := uc.store.Get(companyID, sessionID)
	if err != nil {
		return nil, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.Date.IsZero() {
		return nil, domain.Invalid(domain.ErrInvalidInput, "la fecha del comprobante es obligatoria")
	}
	if s.Customer == "" {
		return nil, domain.Invalid(domain.ErrInvalidInput, "el cliente es obligatorio")
	}
	if s.Ledger.IsEmpty() {
		return nil, domain.ErrEmptyVoucher
	}

	fresh, err := uc.revalidate(ctx, s)
	if err != nil {
		if errors.Is(err, domain.ErrExceedsPending) || errors.Is(err, domain.ErrExceedsAvailable) {
			return &dto.SubmitDeliveryResponse{Message: err.Error(), Session: toSessionResponse(s)}, err
		}
		return nil, err
	}

	v := newVoucher(s, fresh)
	xml, err := uc.codec.Build(v)
	if err != nil {
		return nil, err
	}
	if xml == "" {
		return nil, domain.ErrEmptyVoucher
	}
	fingerprint, err := uc.codec.Fingerprint(xml)
	if err != nil {
		return nil, err
	}

	uc.log.Debug().Str("session", s.ID).Str("xml", xml).Msg("comprobante a enviar")
	raw, err := uc.gateway.PostVoucherXML(ctx, s.Conn, xml)
	if err != nil {
		uc.record(ctx, s, v, fingerprint, xml, "", allocation.ImportResult{Message: err.Error()})
		uc.log.Warn().Err(err).Str("session", s.ID).Msg("envío de nota de entrega fallido")
		return nil, err
	}
	result := uc.codec.Interpret(raw)
	submissionID := uc.record(ctx, s, v, fingerprint, xml, raw, result)

	uc.log.Info().
		Str("session", s.ID).
		Bool("succeeded", result.Succeeded).
		Str("message", result.Message).
		Str("fingerprint", fingerprint).
		Msg("nota de entrega enviada")

	resp := &dto.SubmitDeliveryResponse{
		Succeeded:    result.Succeeded,
		Message:      result.Message,
		Created:      result.Created,
		Altered:      result.Altered,
		SubmissionID: submissionID,
	}
	if !result.Succeeded {
		s.Orders = fresh
		resp.Session = toSessionResponse(s)
		return resp, domain.Invalid(domain.ErrLedgerRejected, "%s", result.Message)
	}

	s.Ledger = s.Ledger.Clear()
	s.snapshot = nil
	uc.dropBalances(ctx, s)
	if after, err := uc.fetchOrders(ctx, s); err == nil {
		s.Orders = after
	} else {
		s.Orders = fresh
	}
	resp.Session = toSessionResponse(s)
	return resp, nil
}

// revalidate trae pedidos y existencias frescos de los ítems con asignaciones y revalida el libro.
// Ante un exceso, la sesión adopta los pedidos frescos.
func (uc *UseCase) revalidate(ctx context.Context, s *Session) ([]entity.Order, error) {
	fresh, err := uc.fetchOrders(ctx, s)
	if err != nil {
		return nil, err
	}

	byKey := make(map[string]entity.Order, len(s.Orders))
	for _, o := range s.Orders {
		byKey[o.Key()] = o
	}
	for _, o := range fresh {
		byKey[o.Key()] = o
	}
	tracked := map[string]bool{}
	for k := range s.Ledger.Quantities() {
		if o, ok := byKey[k.OrderKey]; ok && o.IsTracked() {
			tracked[o.Item] = true
		}
	}
	items := make([]string, 0, len(tracked))
	for item := range tracked {
		items = append(items, item)
	}
	sort.Strings(items)

	balances := make(map[string][]entity.SubUnit, len(items))
	for _, item := range items {
		subUnits, err := uc.subUnits(ctx, s, item, true)
		if err != nil {
			return nil, err
		}
		balances[item] = subUnits
	}

	if err := s.Engine.Revalidate(s.Ledger, fresh, balances); err != nil {
		s.Orders = fresh
		uc.log.Warn().Err(err).Str("session", s.ID).Msg("revalidación previa al envío rechazada")
		return nil, err
	}
	return fresh, nil
}

// dropBalances descarta las existencias en caché de la sesión; la siguiente consulta va al sistema contable.
func (uc *UseCase) dropBalances(ctx context.Context, s *Session) {
	if err := uc.cache.Drop(ctx, s.ID); err != nil {
		uc.log.Session(s.ID).Warn().Err(err).Msg("no se pudo limpiar la caché de existencias")
	}
	s.subUnitOrder = map[string][]entity.SubUnit{}
}

// record guarda el envío en la bitácora; un fallo al guardar solo se registra en el log.
func (uc *UseCase) record(ctx context.Context, s *Session, v *allocation.Voucher, fingerprint, xml, raw string, result allocation.ImportResult) string {
	if uc.submissions == nil {
		return ""
	}
	sub := &entity.DeliverySubmission{
		ID:          uuid.New().String(),
		CompanyID:   s.CompanyID,
		SessionID:   s.ID,
		Customer:    v.Customer,
		VoucherDate: v.Date,
		Fingerprint: fingerprint,
		Succeeded:   result.Succeeded,
		Message:     result.Message,
		RequestXML:  xml,
		ResponseXML: raw,
		CreatedAt:   uc.now(),
	}
	if err := uc.submissions.Create(ctx, sub); err != nil {
		uc.log.Error().Err(err).Str("session", s.ID).Msg("no se pudo registrar el envío")
		return ""
	}
	return sub.ID
}

func newVoucher(s *Session, orders []entity.Order) *allocation.Voucher {
	return &allocation.Voucher{
		CompanyName: s.Conn.CompanyName,
		Customer:    s.Customer,
		Date:        s.Date,
		Reference:   s.Reference,
		Narration:   s.Narration,
		Layout:      s.Settings.BatchXMLFormat,
		Orders:      allocation.Lines(s.Ledger, orders, s.subUnitOrder),
	}
}
