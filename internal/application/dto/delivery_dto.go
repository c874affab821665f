package dto

import "github.com/shopspring/decimal"

// OpenDeliverySessionRequest body para abrir una sesión de entrega de un cliente.
type OpenDeliverySessionRequest struct {
	Customer    string `json:"customer"`
	LocationID  string `json:"location_id"`
	CompanyName string `json:"company_name"`
	CompanyGUID string `json:"company_guid"`
	Date        string `json:"date"` // YYYY-MM-DD
	Reference   string `json:"reference"`
	Narration   string `json:"narration"`
}

// DeliverySessionResponse estado completo de la sesión: pedidos del cliente y asignaciones.
type DeliverySessionResponse struct {
	ID        string                   `json:"id"`
	Customer  string                   `json:"customer"`
	Date      string                   `json:"date"`
	Reference string                   `json:"reference,omitempty"`
	Narration string                   `json:"narration,omitempty"`
	Version   uint64                   `json:"version"`
	Editing   bool                     `json:"editing"`
	Settings  DeliverySettingsResponse `json:"settings"`
	Orders    []DeliveryOrderResponse  `json:"orders"`
	Total     decimal.Decimal          `json:"total"`
}

// DeliveryOrderResponse una línea de pedido abierta con lo asignado en la sesión.
type DeliveryOrderResponse struct {
	Key          string               `json:"key"`
	Number       string               `json:"number"`
	Date         string               `json:"date"`
	Item         string               `json:"item"`
	Unit         string               `json:"unit"`
	OrderedQty   decimal.Decimal      `json:"ordered_qty"`
	PendingQty   decimal.Decimal      `json:"pending_qty"`
	AvailableQty decimal.Decimal      `json:"available_qty"`
	Rate         string               `json:"rate"`
	DiscountPct  decimal.Decimal      `json:"discount_pct"`
	DueDate      string               `json:"due_date"`
	Warehouse    string               `json:"warehouse,omitempty"`
	Batch        string               `json:"batch,omitempty"`
	Tracked      bool                 `json:"tracked"`
	Allocated    decimal.Decimal      `json:"allocated"`
	Allocations  []AllocationResponse `json:"allocations"`
}

// AllocationResponse asignación de una sub-unidad (bodega y lote vacíos para ítems sin control).
type AllocationResponse struct {
	Warehouse string          `json:"warehouse"`
	Batch     string          `json:"batch"`
	Kind      string          `json:"kind"` // manual | auto
	Quantity  decimal.Decimal `json:"quantity"`
	Draft     string          `json:"draft,omitempty"`
	Pinned    bool            `json:"pinned"`
}

// SubUnitBalanceResponse existencia de una sub-unidad; Available y Allocated solo si se pidió un pedido.
type SubUnitBalanceResponse struct {
	Warehouse      string           `json:"warehouse"`
	Batch          string           `json:"batch"`
	ClosingBalance decimal.Decimal  `json:"closing_balance"`
	ClosingValue   decimal.Decimal  `json:"closing_value"`
	Available      *decimal.Decimal `json:"available,omitempty"`
	Allocated      *decimal.Decimal `json:"allocated,omitempty"`
	Pinned         bool             `json:"pinned,omitempty"`
	Eligible       bool             `json:"eligible"`
}

// ItemBalancesResponse existencias de un ítem por bodega y lote.
type ItemBalancesResponse struct {
	Item     string                   `json:"item"`
	OrderKey string                   `json:"order_key,omitempty"`
	SubUnits []SubUnitBalanceResponse `json:"sub_units"`
}

// SetAllocationRequest edición manual de cantidad (texto tal como se digita).
type SetAllocationRequest struct {
	OrderKey  string `json:"order_key"`
	Warehouse string `json:"warehouse"`
	Batch     string `json:"batch"`
	Quantity  string `json:"quantity"`
}

// SetPinnedRequest fija o libera una sub-unidad para asignación automática.
type SetPinnedRequest struct {
	OrderKey  string `json:"order_key"`
	Warehouse string `json:"warehouse"`
	Batch     string `json:"batch"`
	Pinned    bool   `json:"pinned"`
}

// OrderKeyRequest body con solo la clave del pedido.
type OrderKeyRequest struct {
	OrderKey string `json:"order_key"`
}

// DeliveryPreviewLine línea del comprobante tal como se enviará.
type DeliveryPreviewLine struct {
	OrderNumber string          `json:"order_number"`
	Item        string          `json:"item"`
	Warehouse   string          `json:"warehouse"`
	Batch       string          `json:"batch"`
	Quantity    decimal.Decimal `json:"quantity"`
	Unit        string          `json:"unit"`
	Rate        string          `json:"rate"`
	DiscountPct decimal.Decimal `json:"discount_pct"`
	Amount      decimal.Decimal `json:"amount"`
}

// DeliveryPreviewResponse comprobante sin enviar.
type DeliveryPreviewResponse struct {
	Lines       []DeliveryPreviewLine `json:"lines"`
	Total       decimal.Decimal       `json:"total"`
	XML         string                `json:"xml"`
	Fingerprint string                `json:"fingerprint"`
}

// SubmitDeliveryResponse resultado del envío; Session trae el estado tras el envío o tras el refresco.
type SubmitDeliveryResponse struct {
	Succeeded    bool                     `json:"succeeded"`
	Message      string                   `json:"message"`
	Created      int                      `json:"created"`
	Altered      int                      `json:"altered"`
	SubmissionID string                   `json:"submission_id,omitempty"`
	Session      *DeliverySessionResponse `json:"session,omitempty"`
}

// DeliveryErrorResponse error con el estado refrescado de la sesión (409 por restricciones).
type DeliveryErrorResponse struct {
	Code    string                   `json:"code"`
	Message string                   `json:"message"`
	Session *DeliverySessionResponse `json:"session,omitempty"`
}

// DeliverySettingsResponse banderas vigentes de la empresa.
type DeliverySettingsResponse struct {
	AllowNegativeStock       bool   `json:"allow_negative_stock"`
	AllowDeliveryExceedOrder bool   `json:"allow_delivery_exceed_order"`
	BatchXMLFormat           string `json:"batch_xml_format"`
	AgeingBuckets            string `json:"ageing_buckets,omitempty"`
}

// UpdateDeliverySettingsRequest actualización parcial: los campos nulos no cambian.
type UpdateDeliverySettingsRequest struct {
	AllowNegativeStock       *bool   `json:"allow_negative_stock"`
	AllowDeliveryExceedOrder *bool   `json:"allow_delivery_exceed_order"`
	BatchXMLFormat           *string `json:"batch_xml_format"`
	AgeingBuckets            *string `json:"ageing_buckets"`
}

// DeliverySubmissionResponse un envío de la bitácora. El XML solo se incluye con detail=true.
type DeliverySubmissionResponse struct {
	ID          string `json:"id"`
	Customer    string `json:"customer"`
	VoucherDate string `json:"voucher_date"`
	Fingerprint string `json:"fingerprint"`
	Succeeded   bool   `json:"succeeded"`
	Message     string `json:"message"`
	RequestXML  string `json:"request_xml,omitempty"`
	ResponseXML string `json:"response_xml,omitempty"`
	CreatedAt   string `json:"created_at"`
}

// DeliverySubmissionListResponse historial paginado de envíos de una sesión.
type DeliverySubmissionListResponse struct {
	Items []DeliverySubmissionResponse `json:"items"`
	Page  PageResponse                 `json:"page"`
}
