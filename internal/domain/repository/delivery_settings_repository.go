package repository

import (
	"context"

	"github.com/jhoicas/Entregas-api/internal/domain/entity"
)

// DeliverySettingsRepository puerto de persistencia de las banderas de entrega por empresa.
type DeliverySettingsRepository interface {
	// Get devuelve (nil, nil) si la empresa no tiene banderas propias.
	Get(ctx context.Context, companyID string) (*entity.DeliverySettings, error)
	Upsert(ctx context.Context, settings *entity.DeliverySettings) error
}
