package repository

import (
	"context"

	"github.com/jhoicas/Entregas-api/internal/domain/entity"
)

// DeliverySubmissionRepository bitácora de envíos de notas de entrega.
type DeliverySubmissionRepository interface {
	Create(ctx context.Context, s *entity.DeliverySubmission) error
	// ListBySession envíos de la sesión, del más reciente al más antiguo.
	ListBySession(ctx context.Context, companyID, sessionID string) ([]*entity.DeliverySubmission, error)
}
