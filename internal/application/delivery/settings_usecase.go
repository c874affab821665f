package delivery

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jhoicas/Entregas-api/internal/application/dto"
	"github.com/jhoicas/Entregas-api/internal/domain"
	"github.com/jhoicas/Entregas-api/internal/domain/entity"
	"github.com/jhoicas/Entregas-api/internal/domain/repository"
)

var errSettingsNotPersisted = errors.New("delivery: las banderas no tienen persistencia configurada")

// SettingsUseCase banderas de entrega por empresa: las persistidas ganan sobre los valores por defecto del proceso.
type SettingsUseCase struct {
	repo     repository.DeliverySettingsRepository
	defaults entity.DeliverySettings
	now      func() time.Time
}

// NewSettingsUseCase construye el caso de uso. Sin repo solo se sirven los valores por defecto.
func NewSettingsUseCase(repo repository.DeliverySettingsRepository, defaults entity.DeliverySettings) *SettingsUseCase {
	if !entity.ValidBatchXMLFormat(defaults.BatchXMLFormat) {
		defaults.BatchXMLFormat = entity.BatchXMLSingle
	}
	return &SettingsUseCase{repo: repo, defaults: defaults, now: time.Now}
}

// Effective banderas vigentes de la empresa.
func (uc *SettingsUseCase) Effective(ctx context.Context, companyID string) (entity.DeliverySettings, error) {
	out := uc.defaults
	out.CompanyID = companyID
	if uc.repo == nil {
		return out, nil
	}
	stored, err := uc.repo.Get(ctx, companyID)
	if err != nil {
		return entity.DeliverySettings{}, err
	}
	if stored == nil {
		return out, nil
	}
	if !entity.ValidBatchXMLFormat(stored.BatchXMLFormat) {
		stored.BatchXMLFormat = uc.defaults.BatchXMLFormat
	}
	return *stored, nil
}

// GetSettings banderas vigentes en formato de respuesta.
func (uc *SettingsUseCase) GetSettings(ctx context.Context, companyID string) (*dto.DeliverySettingsResponse, error) {
	s, err := uc.Effective(ctx, companyID)
	if err != nil {
		return nil, err
	}
	out := toSettingsResponse(s)
	return &out, nil
}

// UpdateSettings actualización parcial. Las sesiones ya abiertas conservan las banderas con que se abrieron.
func (uc *SettingsUseCase) UpdateSettings(ctx context.Context, companyID string, in dto.UpdateDeliverySettingsRequest) (*dto.DeliverySettingsResponse, error) {
	if uc.repo == nil {
		return nil, errSettingsNotPersisted
	}
	s, err := uc.Effective(ctx, companyID)
	if err != nil {
		return nil, err
	}
	if in.AllowNegativeStock != nil {
		s.AllowNegativeStock = *in.AllowNegativeStock
	}
	if in.AllowDeliveryExceedOrder != nil {
		s.AllowDeliveryExceedOrder = *in.AllowDeliveryExceedOrder
	}
	if in.BatchXMLFormat != nil {
		f := strings.ToLower(strings.TrimSpace(*in.BatchXMLFormat))
		if !entity.ValidBatchXMLFormat(f) {
			return nil, domain.Invalid(domain.ErrInvalidInput, "batch_xml_format debe ser %q o %q",
				entity.BatchXMLSingle, entity.BatchXMLSeparate)
		}
		s.BatchXMLFormat = f
	}
	if in.AgeingBuckets != nil {
		s.AgeingBuckets = strings.TrimSpace(*in.AgeingBuckets)
	}
	s.CompanyID = companyID
	s.UpdatedAt = uc.now()
	if err := uc.repo.Upsert(ctx, &s); err != nil {
		return nil, fmt.Errorf("delivery: guardar banderas: %w", err)
	}
	out := toSettingsResponse(s)
	return &out, nil
}
