package http_test

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/Entregas-api/internal/application/delivery"
	"github.com/jhoicas/Entregas-api/internal/application/dto"
	"github.com/jhoicas/Entregas-api/internal/domain/entity"
	"github.com/jhoicas/Entregas-api/internal/infrastructure/cache"
	infrapdf "github.com/jhoicas/Entregas-api/internal/infrastructure/pdf"
	"github.com/jhoicas/Entregas-api/internal/infrastructure/tally"
	apphttp "github.com/jhoicas/Entregas-api/internal/interfaces/http"
	"github.com/jhoicas/Entregas-api/pkg/logger"
)

// ──────────────────────────────────────────────────────────────────────────────
// Conector contable simulado
// ──────────────────────────────────────────────────────────────────────────────

type ledgerStub struct {
	batches  string
	response string
	status   int
	posts    int
}

func (l *ledgerStub) server(t *testing.T) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/orders":
			_, _ = io.WriteString(w, `{"orders":[
				{"order_no":"SO/1","order_date":"20240101","party":"Cliente Uno","item":"Tornillo",
				 "ordered_qty":"100 Nos","pending_qty":"100 Nos","rate":"10/Nos","discount":"0",
				 "has_godowns":true,"has_batches":true},
				{"order_no":"SO/9","order_date":"20240101","party":"Otro Cliente","item":"Tornillo",
				 "ordered_qty":"5 Nos","rate":"10/Nos","has_godowns":true,"has_batches":true}
			]}`)
		case "/batches":
			_, _ = io.WriteString(w, l.batches)
		case "/import":
			l.posts++
			if l.status != 0 {
				w.WriteHeader(l.status)
			}
			_, _ = io.WriteString(w, l.response)
		default:
			w.WriteHeader(http.StatusNotFound)
		}
	}))
	t.Cleanup(srv.Close)
	return srv
}

func newDeliveryApp(t *testing.T, stub *ledgerStub) *fiber.App {
	t.Helper()
	srv := stub.server(t)
	settings := delivery.NewSettingsUseCase(nil, entity.DeliverySettings{BatchXMLFormat: entity.BatchXMLSingle})
	uc := delivery.NewUseCase(
		tally.NewHTTPClient(srv.URL, "", 2*time.Second),
		cache.NewMemoryBalanceCache(time.Hour),
		tally.NewVoucherService(),
		infrapdf.NewMarotoPDFGenerator(),
		settings,
		nil,
		delivery.NewSessionStore(time.Hour),
		logger.Nop(),
	)
	app := fiber.New()
	apphttp.Router(app, apphttp.RouterDeps{DeliveryUC: uc, SettingsUC: settings, JWTSecret: testJWTSecret})
	return app
}

func call(t *testing.T, app *fiber.App, method, path, role string, body any) (*http.Response, []byte) {
	t.Helper()
	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	if role != "" {
		req.Header.Set("Authorization", tokenForRole(t, role))
	}
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	defer resp.Body.Close()
	out, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return resp, out
}

func openSession(t *testing.T, app *fiber.App) dto.DeliverySessionResponse {
	t.Helper()
	resp, body := call(t, app, http.MethodPost, "/api/delivery-sessions", apphttp.RoleDispatcher, dto.OpenDeliverySessionRequest{
		Customer: "Cliente Uno", CompanyName: "Demo S.A.S.", Date: "2024-03-05",
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode, string(body))
	var s dto.DeliverySessionResponse
	require.NoError(t, json.Unmarshal(body, &s))
	return s
}

const twoBatches = `{"batches":[
	{"godown":"Bodega A","batch":"L1","closing_balance":"40 Nos"},
	{"godown":"Bodega B","batch":"L2","closing_balance":"90 Nos"}]}`

// ──────────────────────────────────────────────────────────────────────────────
// Tests
// ──────────────────────────────────────────────────────────────────────────────

func TestDelivery_SinToken(t *testing.T) {
	app := newDeliveryApp(t, &ledgerStub{batches: twoBatches})
	resp, _ := call(t, app, http.MethodPost, "/api/delivery-sessions", "", nil)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}

func TestDelivery_FlujoCompleto(t *testing.T) {
	stub := &ledgerStub{batches: twoBatches, response: `<RESPONSE><CREATED>1</CREATED><ERRORS>0</ERRORS></RESPONSE>`}
	app := newDeliveryApp(t, stub)

	s := openSession(t, app)
	require.Len(t, s.Orders, 1, "solo pedidos del cliente")
	key := s.Orders[0].Key
	base := "/api/delivery-sessions/" + s.ID

	resp, body := call(t, app, http.MethodPost, base+"/autofill", apphttp.RoleDispatcher, dto.OrderKeyRequest{OrderKey: key})
	require.Equal(t, http.StatusOK, resp.StatusCode, string(body))
	require.NoError(t, json.Unmarshal(body, &s))
	assert.Equal(t, "100", s.Orders[0].Allocated.String())

	resp, body = call(t, app, http.MethodGet, base+"/preview", apphttp.RoleDispatcher, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var preview dto.DeliveryPreviewResponse
	require.NoError(t, json.Unmarshal(body, &preview))
	assert.Len(t, preview.Lines, 2)
	assert.True(t, strings.HasPrefix(preview.XML, "<ENVELOPE>"))

	resp, body = call(t, app, http.MethodGet, base+"/preview.pdf", apphttp.RoleDispatcher, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "application/pdf", resp.Header.Get("Content-Type"))
	assert.True(t, bytes.HasPrefix(body, []byte("%PDF")))

	resp, body = call(t, app, http.MethodPost, base+"/submit", apphttp.RoleDispatcher, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode, string(body))
	var res dto.SubmitDeliveryResponse
	require.NoError(t, json.Unmarshal(body, &res))
	assert.True(t, res.Succeeded)
	assert.Equal(t, 1, stub.posts)

	resp, _ = call(t, app, http.MethodDelete, base, apphttp.RoleDispatcher, nil)
	assert.Equal(t, http.StatusNoContent, resp.StatusCode)
	resp, _ = call(t, app, http.MethodGet, base, apphttp.RoleDispatcher, nil)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestDelivery_CantidadInvalida_400(t *testing.T) {
	app := newDeliveryApp(t, &ledgerStub{batches: twoBatches})
	s := openSession(t, app)

	resp, body := call(t, app, http.MethodPut, "/api/delivery-sessions/"+s.ID+"/allocations", apphttp.RoleDispatcher,
		dto.SetAllocationRequest{OrderKey: s.Orders[0].Key, Warehouse: "Bodega A", Batch: "L1", Quantity: "-3"})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Contains(t, string(body), "VALIDATION")
}

func TestDelivery_EnvioVacio_400(t *testing.T) {
	app := newDeliveryApp(t, &ledgerStub{batches: twoBatches})
	s := openSession(t, app)

	resp, _ := call(t, app, http.MethodPost, "/api/delivery-sessions/"+s.ID+"/submit", apphttp.RoleDispatcher, nil)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestDelivery_ExistenciaBaja_409ConSesion(t *testing.T) {
	stub := &ledgerStub{batches: twoBatches}
	app := newDeliveryApp(t, stub)
	s := openSession(t, app)
	base := "/api/delivery-sessions/" + s.ID

	resp, _ := call(t, app, http.MethodPost, base+"/autofill", apphttp.RoleDispatcher, dto.OrderKeyRequest{OrderKey: s.Orders[0].Key})
	require.Equal(t, http.StatusOK, resp.StatusCode)

	stub.batches = `{"batches":[{"godown":"Bodega A","batch":"L1","closing_balance":"40 Nos"},{"godown":"Bodega B","batch":"L2","closing_balance":"10 Nos"}]}`
	resp, body := call(t, app, http.MethodPost, base+"/submit", apphttp.RoleDispatcher, nil)
	assert.Equal(t, http.StatusConflict, resp.StatusCode)

	var e dto.DeliveryErrorResponse
	require.NoError(t, json.Unmarshal(body, &e))
	assert.Equal(t, "EXCEEDS_AVAILABLE", e.Code)
	require.NotNil(t, e.Session)
	assert.Equal(t, 0, stub.posts)
}

func TestDelivery_Rechazo_422(t *testing.T) {
	stub := &ledgerStub{batches: twoBatches, response: `<RESPONSE><LINEERROR>Voucher totals do not match</LINEERROR></RESPONSE>`}
	app := newDeliveryApp(t, stub)
	s := openSession(t, app)
	base := "/api/delivery-sessions/" + s.ID

	call(t, app, http.MethodPost, base+"/autofill", apphttp.RoleDispatcher, dto.OrderKeyRequest{OrderKey: s.Orders[0].Key})
	resp, body := call(t, app, http.MethodPost, base+"/submit", apphttp.RoleDispatcher, nil)
	assert.Equal(t, http.StatusUnprocessableEntity, resp.StatusCode)

	var e dto.DeliveryErrorResponse
	require.NoError(t, json.Unmarshal(body, &e))
	assert.Equal(t, "LEDGER_REJECTED", e.Code)
	assert.Equal(t, "Voucher totals do not match", e.Message)
}

func TestDelivery_SesionContableVencida_401(t *testing.T) {
	stub := &ledgerStub{batches: twoBatches, status: http.StatusUnauthorized}
	app := newDeliveryApp(t, stub)
	s := openSession(t, app)
	base := "/api/delivery-sessions/" + s.ID

	call(t, app, http.MethodPost, base+"/autofill", apphttp.RoleDispatcher, dto.OrderKeyRequest{OrderKey: s.Orders[0].Key})
	resp, body := call(t, app, http.MethodPost, base+"/submit", apphttp.RoleDispatcher, nil)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	assert.Contains(t, string(body), "LEDGER_SESSION_EXPIRED")
}

func TestDelivery_SesionVencidaEn200_NoLimpiaElLibro(t *testing.T) {
	stub := &ledgerStub{batches: twoBatches, response: `{"error":"Session expired, please login again"}`}
	app := newDeliveryApp(t, stub)
	s := openSession(t, app)
	base := "/api/delivery-sessions/" + s.ID

	call(t, app, http.MethodPost, base+"/autofill", apphttp.RoleDispatcher, dto.OrderKeyRequest{OrderKey: s.Orders[0].Key})
	resp, body := call(t, app, http.MethodPost, base+"/submit", apphttp.RoleDispatcher, nil)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	assert.Contains(t, string(body), "LEDGER_SESSION_EXPIRED")

	resp, body = call(t, app, http.MethodGet, base, apphttp.RoleDispatcher, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.NoError(t, json.Unmarshal(body, &s))
	assert.Equal(t, "100", s.Orders[0].Allocated.String(), "las asignaciones siguen en la sesión")
}

func TestDeliverySettings_SoloAdminActualiza(t *testing.T) {
	app := newDeliveryApp(t, &ledgerStub{batches: twoBatches})

	resp, body := call(t, app, http.MethodGet, "/api/delivery-settings", apphttp.RoleDispatcher, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, string(body), `"batch_xml_format":"single"`)

	resp, _ = call(t, app, http.MethodPut, "/api/delivery-settings", apphttp.RoleDispatcher, dto.UpdateDeliverySettingsRequest{})
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)
}

func TestDelivery_HistorialSinBitacora(t *testing.T) {
	app := newDeliveryApp(t, &ledgerStub{batches: twoBatches})
	s := openSession(t, app)

	resp, body := call(t, app, http.MethodGet, "/api/delivery-sessions/"+s.ID+"/submissions?limit=500", apphttp.RoleDispatcher, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode, string(body))
	var page dto.DeliverySubmissionListResponse
	require.NoError(t, json.Unmarshal(body, &page))
	assert.Empty(t, page.Items)
	assert.Equal(t, 100, page.Page.Limit, "el límite se acota")
}
