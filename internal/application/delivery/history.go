package delivery

import (
	"context"
	"fmt"

	"github.com/jhoicas/Entregas-api/internal/application/dto"
)

// ListSubmissions historial de envíos de la sesión, más recientes primero. Consulta la bitácora
// aunque la sesión ya esté cerrada; sin bitácora configurada devuelve una lista vacía.
func (uc *UseCase) ListSubmissions(ctx context.Context, companyID, sessionID string, page dto.PageRequest, detail bool) (*dto.DeliverySubmissionListResponse, error) {
	page.DefaultPage()
	out := &dto.DeliverySubmissionListResponse{
		Items: []dto.DeliverySubmissionResponse{},
		Page:  dto.PageResponse{Limit: page.Limit, Offset: page.Offset},
	}
	if uc.submissions == nil {
		return out, nil
	}
	list, err := uc.submissions.ListBySession(ctx, companyID, sessionID)
	if err != nil {
		return nil, fmt.Errorf("delivery: historial de envíos: %w", err)
	}
	out.Page.Total = len(list)
	if page.Offset >= len(list) {
		return out, nil
	}
	end := page.Offset + page.Limit
	if end > len(list) {
		end = len(list)
	}
	for _, s := range list[page.Offset:end] {
		out.Items = append(out.Items, toSubmissionResponse(s, detail))
	}
	return out, nil
}
