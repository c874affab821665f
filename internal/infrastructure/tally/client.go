package tally

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"

	"github.com/jhoicas/Entregas-api/internal/domain"
	"github.com/jhoicas/Entregas-api/internal/domain/entity"
	pkgtally "github.com/jhoicas/Entregas-api/pkg/tally"
)

const (
	headerLocation    = "X-Location-Id"
	headerCompanyName = "X-Company-Name"
	headerCompanyGUID = "X-Company-Guid"

	maxResponseBytes = 4 << 20 // 4 MB
)

// Frases con las que el conector reporta una sesión vencida dentro del texto de error.
var authExpiryPhrases = []string{"session expired", "token expired", "jwt expired", "not authenticated", "sesión expirada"}

// HTTPClient cliente del conector HTTP que expone el sistema contable.
type HTTPClient struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client
}

// NewHTTPClient construye el cliente. timeout 0 usa 30 s.
func NewHTTPClient(baseURL, apiKey string, timeout time.Duration) *HTTPClient {
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &HTTPClient{
		baseURL:    strings.TrimRight(baseURL, "/"),
		apiKey:     apiKey,
		httpClient: &http.Client{Timeout: timeout},
	}
}

// ── Estructuras del conector ──────────────────────────────────────────────────

type ordersRequest struct {
	IncludeCleared bool `json:"include_cleared"`
}

type ordersResponse struct {
	Orders []orderDTO `json:"orders"`
}

// orderDTO cantidades y tarifas llegan como texto libre ("12.5 Nos", "10.00/Nos").
type orderDTO struct {
	Number       string `json:"order_no"`
	Date         string `json:"order_date"`
	Party        string `json:"party"`
	Item         string `json:"item"`
	OrderedQty   string `json:"ordered_qty"`
	PendingQty   string `json:"pending_qty"`
	AvailableQty string `json:"available_qty"`
	Rate         string `json:"rate"`
	Discount     string `json:"discount"`
	DueDate      string `json:"due_date"`
	Godown       string `json:"godown"`
	Batch        string `json:"batch"`
	HasGodowns   bool   `json:"has_godowns"`
	HasBatches   bool   `json:"has_batches"`
}

type batchesRequest struct {
	Item string `json:"item"`
}

type batchesResponse struct {
	Batches []batchDTO `json:"batches"`
}

type batchDTO struct {
	Godown         string `json:"godown"`
	Batch          string `json:"batch"`
	ClosingBalance string `json:"closing_balance"`
	ClosingValue   string `json:"closing_value"`
}

type errorDTO struct {
	Error   string `json:"error"`
	Message string `json:"message"`
}

// ── Operaciones ───────────────────────────────────────────────────────────────

// GetOrders trae las líneas de pedido abiertas de la empresa (todas las cuentas).
func (c *HTTPClient) GetOrders(ctx context.Context, conn entity.LedgerConnection, includeCleared bool) ([]entity.Order, error) {
	body, err := json.Marshal(ordersRequest{IncludeCleared: includeCleared})
	if err != nil {
		return nil, fmt.Errorf("tally: serializar solicitud de pedidos: %w", err)
	}
	raw, err := c.do(ctx, conn, "/orders", "application/json", body)
	if err != nil {
		return nil, err
	}
	if err := embeddedError(raw); err != nil {
		return nil, err
	}
	var resp ordersResponse
	if err := json.Unmarshal([]byte(raw), &resp); err != nil {
		return nil, fmt.Errorf("%w: respuesta de pedidos inválida: %v", domain.ErrLedgerUnavailable, err)
	}
	orders := make([]entity.Order, 0, len(resp.Orders))
	for _, dto := range resp.Orders {
		o, err := toOrder(dto)
		if err != nil {
			return nil, err
		}
		orders = append(orders, o)
	}
	return orders, nil
}

// GetSubUnitBalances trae las existencias por bodega y lote del ítem, en el orden del sistema contable.
func (c *HTTPClient) GetSubUnitBalances(ctx context.Context, conn entity.LedgerConnection, item string) ([]entity.SubUnit, error) {
	body, err := json.Marshal(batchesRequest{Item: item})
	if err != nil {
		return nil, fmt.Errorf("tally: serializar solicitud de lotes: %w", err)
	}
	raw, err := c.do(ctx, conn, "/batches", "application/json", body)
	if err != nil {
		return nil, err
	}
	if err := embeddedError(raw); err != nil {
		return nil, err
	}
	var resp batchesResponse
	if err := json.Unmarshal([]byte(raw), &resp); err != nil {
		return nil, fmt.Errorf("%w: respuesta de lotes inválida: %v", domain.ErrLedgerUnavailable, err)
	}
	out := make([]entity.SubUnit, 0, len(resp.Batches))
	for _, b := range resp.Batches {
		balance, _ := pkgtally.ParseQuantity(b.ClosingBalance)
		value, _ := pkgtally.ParseQuantity(b.ClosingValue)
		out = append(out, entity.SubUnit{
			Item:           item,
			Warehouse:      b.Godown,
			Batch:          b.Batch,
			ClosingBalance: balance,
			ClosingValue:   value,
		})
	}
	return out, nil
}

// PostVoucherXML envía el sobre de importación y devuelve el texto crudo de la respuesta.
// Un sobre de error del conector o una sesión vencida informados con HTTP 200 se devuelven como error
// y nunca llegan al intérprete.
func (c *HTTPClient) PostVoucherXML(ctx context.Context, conn entity.LedgerConnection, xmlBody string) (string, error) {
	raw, err := c.do(ctx, conn, "/import", "text/xml; charset=utf-8", []byte(xmlBody))
	if err != nil {
		return "", err
	}
	if err := embeddedError(raw); err != nil {
		return "", err
	}
	if isAuthExpiry(raw) {
		return "", fmt.Errorf("%w: %s", domain.ErrLedgerSessionExpired, errorText(raw))
	}
	return raw, nil
}

// do ejecuta la llamada y traduce los fallos de transporte y sesión a los errores de dominio.
func (c *HTTPClient) do(ctx context.Context, conn entity.LedgerConnection, path, contentType string, body []byte) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("tally: crear request: %w", err)
	}
	req.Header.Set("Content-Type", contentType)
	req.Header.Set(headerLocation, conn.LocationID)
	req.Header.Set(headerCompanyName, conn.CompanyName)
	req.Header.Set(headerCompanyGUID, conn.CompanyGUID)
	if c.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.apiKey)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		if ctx.Err() != nil {
			return "", fmt.Errorf("%w: timeout o cancelación: %v", domain.ErrLedgerUnavailable, ctx.Err())
		}
		return "", fmt.Errorf("%w: %v", domain.ErrLedgerUnavailable, err)
	}
	defer resp.Body.Close()

	rawBody, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return "", fmt.Errorf("%w: leer respuesta: %v", domain.ErrLedgerUnavailable, err)
	}
	text, err := decodeBody(rawBody, resp.Header.Get("Content-Type"))
	if err != nil {
		return "", fmt.Errorf("%w: decodificar respuesta: %v", domain.ErrLedgerUnavailable, err)
	}

	switch {
	case resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden:
		return "", fmt.Errorf("%w: HTTP %d", domain.ErrLedgerSessionExpired, resp.StatusCode)
	case resp.StatusCode >= 300:
		msg := errorText(text)
		if isAuthExpiry(msg) {
			return "", fmt.Errorf("%w: %s", domain.ErrLedgerSessionExpired, msg)
		}
		return "", fmt.Errorf("%w: HTTP %d: %s", domain.ErrLedgerUnavailable, resp.StatusCode, msg)
	}
	return text, nil
}

// decodeBody lleva la respuesta a UTF-8: BOM UTF-16 o charset declarado (utf-16, windows-1252, latin1).
func decodeBody(raw []byte, contentType string) (string, error) {
	ct := strings.ToLower(contentType)
	switch {
	case len(raw) >= 2 && ((raw[0] == 0xFF && raw[1] == 0xFE) || (raw[0] == 0xFE && raw[1] == 0xFF)):
		return transformString(raw, unicode.UTF16(unicode.LittleEndian, unicode.UseBOM).NewDecoder())
	case strings.Contains(ct, "utf-16"):
		return transformString(raw, unicode.UTF16(unicode.LittleEndian, unicode.UseBOM).NewDecoder())
	case strings.Contains(ct, "windows-1252") || strings.Contains(ct, "iso-8859-1") || strings.Contains(ct, "latin1"):
		return transformString(raw, charmap.Windows1252.NewDecoder())
	}
	return strings.TrimPrefix(string(raw), "\ufeff"), nil
}

func transformString(raw []byte, t transform.Transformer) (string, error) {
	out, _, err := transform.Bytes(t, raw)
	if err != nil {
		return "", err
	}
	return string(out), nil
}

func errorText(body string) string {
	var e errorDTO
	if err := json.Unmarshal([]byte(body), &e); err == nil {
		if e.Error != "" {
			return e.Error
		}
		if e.Message != "" {
			return e.Message
		}
	}
	body = strings.TrimSpace(body)
	if len(body) > 300 {
		body = body[:300]
	}
	return body
}

// embeddedError detecta un error informado con HTTP 200 ({"error": "..."}).
func embeddedError(body string) error {
	var e errorDTO
	if err := json.Unmarshal([]byte(body), &e); err != nil || e.Error == "" {
		return nil
	}
	if isAuthExpiry(e.Error) {
		return fmt.Errorf("%w: %s", domain.ErrLedgerSessionExpired, e.Error)
	}
	return fmt.Errorf("%w: %s", domain.ErrLedgerUnavailable, e.Error)
}

func isAuthExpiry(msg string) bool {
	lower := strings.ToLower(msg)
	for _, p := range authExpiryPhrases {
		if strings.Contains(lower, p) {
			return true
		}
	}
	return false
}

// ── Conversión ────────────────────────────────────────────────────────────────

var dateLayouts = []string{"20060102", "2006-01-02", "2-Jan-06", "2-Jan-2006"}

func parseDate(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("fecha %q no reconocida", s)
}

func toOrder(dto orderDTO) (entity.Order, error) {
	date, err := parseDate(dto.Date)
	if err != nil {
		return entity.Order{}, fmt.Errorf("%w: pedido %s: %v", domain.ErrLedgerUnavailable, dto.Number, err)
	}
	due := date
	if dto.DueDate != "" {
		if d, err := parseDate(dto.DueDate); err == nil {
			due = d
		}
	}
	ordered, orderedUnit := pkgtally.ParseQuantity(dto.OrderedQty)
	pending, pendingUnit := pkgtally.ParseQuantity(dto.PendingQty)
	available, _ := pkgtally.ParseQuantity(dto.AvailableQty)
	rate, rateUnit := pkgtally.ParseQuantity(dto.Rate)
	discount, _ := pkgtally.ParseQuantity(dto.Discount)
	// Sin pendiente informado se asume el pedido completo.
	if strings.TrimSpace(dto.PendingQty) == "" {
		pending = ordered
	}

	return entity.Order{
		Number:          dto.Number,
		Date:            date,
		Customer:        dto.Party,
		Item:            dto.Item,
		Unit:            firstNonEmpty(pendingUnit, orderedUnit, rateUnit),
		OrderedQty:      ordered,
		PendingQty:      decimal.Max(pending, decimal.Zero),
		AvailableQty:    available,
		Rate:            rate,
		RateText:        strings.TrimSpace(dto.Rate),
		DiscountPct:     discount,
		DueDate:         due,
		Warehouse:       dto.Godown,
		Batch:           dto.Batch,
		TracksWarehouse: dto.HasGodowns,
		TracksBatch:     dto.HasBatches,
	}, nil
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}

// IsSessionExpired indica si el error exige volver a autenticarse contra el sistema contable.
func IsSessionExpired(err error) bool {
	return errors.Is(err, domain.ErrLedgerSessionExpired)
}
