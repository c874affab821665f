package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/jhoicas/Entregas-api/internal/domain/entity"
	"github.com/jhoicas/Entregas-api/internal/domain/repository"
)

var _ repository.DeliverySettingsRepository = (*DeliverySettingsRepo)(nil)

// DeliverySettingsRepo implementación de DeliverySettingsRepository sobre PostgreSQL.
type DeliverySettingsRepo struct {
	q Querier
}

// NewDeliverySettingsRepository construye el adaptador. Pasar pool o tx (Querier).
func NewDeliverySettingsRepository(q Querier) *DeliverySettingsRepo {
	return &DeliverySettingsRepo{q: q}
}

// Get obtiene las banderas de la empresa.
func (r *DeliverySettingsRepo) Get(ctx context.Context, companyID string) (*entity.DeliverySettings, error) {
	query := `
		SELECT company_id, allow_negative_stock, allow_exceed_order, batch_xml_format, ageing_buckets, updated_at
		FROM delivery_settings WHERE company_id = $1`
	var s entity.DeliverySettings
	err := r.q.QueryRow(ctx, query, companyID).Scan(
		&s.CompanyID, &s.AllowNegativeStock, &s.AllowDeliveryExceedOrder, &s.BatchXMLFormat, &s.AgeingBuckets, &s.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get delivery settings: %w", err)
	}
	return &s, nil
}

// Upsert inserta o reemplaza las banderas de la empresa.
func (r *DeliverySettingsRepo) Upsert(ctx context.Context, s *entity.DeliverySettings) error {
	query := `
		INSERT INTO delivery_settings (company_id, allow_negative_stock, allow_exceed_order, batch_xml_format, ageing_buckets, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6)
		ON CONFLICT (company_id)
		DO UPDATE SET allow_negative_stock = EXCLUDED.allow_negative_stock,
		              allow_exceed_order   = EXCLUDED.allow_exceed_order,
		              batch_xml_format     = EXCLUDED.batch_xml_format,
		              ageing_buckets       = EXCLUDED.ageing_buckets,
		              updated_at           = EXCLUDED.updated_at`
	_, err := r.q.Exec(ctx, query,
		s.CompanyID, s.AllowNegativeStock, s.AllowDeliveryExceedOrder, s.BatchXMLFormat, s.AgeingBuckets, s.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("upsert delivery settings: %w", err)
	}
	return nil
}
