package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/jhoicas/Entregas-api/internal/domain/entity"
	"github.com/jhoicas/Entregas-api/internal/domain/repository"
)

var _ repository.DeliverySubmissionRepository = (*DeliverySubmissionRepo)(nil)

// DeliverySubmissionRepo bitácora de envíos sobre PostgreSQL.
type DeliverySubmissionRepo struct {
	q Querier
}

// NewDeliverySubmissionRepository construye el adaptador. Pasar pool o tx (Querier).
func NewDeliverySubmissionRepository(q Querier) *DeliverySubmissionRepo {
	return &DeliverySubmissionRepo{q: q}
}

const submissionColumns = `id, company_id, session_id, customer, voucher_date, fingerprint, succeeded, message,
		request_xml, response_xml, created_at`

// Create registra un envío.
func (r *DeliverySubmissionRepo) Create(ctx context.Context, s *entity.DeliverySubmission) error {
	query := `
		INSERT INTO delivery_submissions (` + submissionColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)`
	_, err := r.q.Exec(ctx, query,
		s.ID, s.CompanyID, s.SessionID, s.Customer, s.VoucherDate, s.Fingerprint, s.Succeeded, s.Message,
		s.RequestXML, s.ResponseXML, s.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert delivery submission: %w", err)
	}
	return nil
}

// ListBySession envíos de la sesión, más recientes primero.
func (r *DeliverySubmissionRepo) ListBySession(ctx context.Context, companyID, sessionID string) ([]*entity.DeliverySubmission, error) {
	query := `
		SELECT ` + submissionColumns + `
		FROM delivery_submissions
		WHERE company_id = $1 AND session_id = $2
		ORDER BY created_at DESC`
	rows, err := r.q.Query(ctx, query, companyID, sessionID)
	if err != nil {
		return nil, fmt.Errorf("list delivery submissions: %w", err)
	}
	defer rows.Close()

	var list []*entity.DeliverySubmission
	for rows.Next() {
		s, err := scanSubmission(rows)
		if err != nil {
			return nil, fmt.Errorf("scan delivery submission: %w", err)
		}
		list = append(list, s)
	}
	return list, rows.Err()
}

func scanSubmission(row pgx.Row) (*entity.DeliverySubmission, error) {
	var s entity.DeliverySubmission
	err := row.Scan(
		&s.ID, &s.CompanyID, &s.SessionID, &s.Customer, &s.VoucherDate, &s.Fingerprint, &s.Succeeded, &s.Message,
		&s.RequestXML, &s.ResponseXML, &s.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &s, nil
}
