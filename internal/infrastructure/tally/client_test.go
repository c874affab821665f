package tally_test

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/encoding/unicode"

	"github.com/jhoicas/Entregas-api/internal/domain"
	"github.com/jhoicas/Entregas-api/internal/domain/entity"
	"github.com/jhoicas/Entregas-api/internal/infrastructure/tally"
)

var conn = entity.LedgerConnection{LocationID: "loc-1", CompanyName: "Demo S.A.S.", CompanyGUID: "guid-1"}

func TestHTTPClient_GetOrders(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/orders", r.URL.Path)
		assert.Equal(t, "loc-1", r.Header.Get("X-Location-Id"))
		assert.Equal(t, "Demo S.A.S.", r.Header.Get("X-Company-Name"))
		assert.Equal(t, "guid-1", r.Header.Get("X-Company-Guid"))
		assert.Equal(t, "Bearer clave", r.Header.Get("Authorization"))

		var req map[string]bool
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.False(t, req["include_cleared"])

		w.Header().Set("Content-Type", "application/json")
		_, _ = io.WriteString(w, `{"orders":[{
			"order_no":"SO/1","order_date":"20240101","party":"Cliente Uno","item":"Tornillo",
			"ordered_qty":"100 Nos","pending_qty":"60 Nos","available_qty":"40 Nos",
			"rate":"10.50/Nos","discount":"5","due_date":"15-Jan-24",
			"godown":"Bodega A","batch":"","has_godowns":true,"has_batches":true
		},{
			"order_no":"SO/2","order_date":"2024-01-02","party":"Cliente Dos","item":"Tuerca",
			"ordered_qty":"12 Kgs","rate":"3/Kgs"
		}]}`)
	}))
	defer srv.Close()

	c := tally.NewHTTPClient(srv.URL+"/", "clave", time.Second)
	orders, err := c.GetOrders(context.Background(), conn, false)
	require.NoError(t, err)
	require.Len(t, orders, 2)

	o := orders[0]
	assert.Equal(t, "SO/1", o.Number)
	assert.Equal(t, "Cliente Uno", o.Customer)
	assert.Equal(t, "Nos", o.Unit)
	assert.True(t, d("100").Equal(o.OrderedQty))
	assert.True(t, d("60").Equal(o.PendingQty))
	assert.True(t, d("40").Equal(o.AvailableQty))
	assert.True(t, d("10.5").Equal(o.Rate))
	assert.Equal(t, "10.50/Nos", o.RateString())
	assert.True(t, d("5").Equal(o.DiscountPct))
	assert.Equal(t, time.Date(2024, time.January, 15, 0, 0, 0, 0, time.UTC), o.DueDate)
	assert.Equal(t, "Bodega A", o.Warehouse)
	assert.True(t, o.IsTracked())
	assert.Equal(t, "SO/1Tornillo20240101", o.Key())

	o2 := orders[1]
	assert.True(t, d("12").Equal(o2.PendingQty), "sin pendiente informado se toma el pedido completo")
	assert.Equal(t, o2.Date, o2.DueDate, "sin vencimiento se usa la fecha del pedido")
	assert.False(t, o2.IsTracked())
}

func TestHTTPClient_GetOrders_FechaInvalida(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = io.WriteString(w, `{"orders":[{"order_no":"SO/1","order_date":"ayer","item":"X"}]}`)
	}))
	defer srv.Close()

	_, err := tally.NewHTTPClient(srv.URL, "", time.Second).GetOrders(context.Background(), conn, true)
	assert.ErrorIs(t, err, domain.ErrLedgerUnavailable)
}

func TestHTTPClient_GetSubUnitBalances(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/batches", r.URL.Path)
		var req map[string]string
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, "Tornillo", req["item"])

		_, _ = io.WriteString(w, `{"batches":[
			{"godown":"Bodega A","batch":"L1","closing_balance":"40 Nos","closing_value":"400.00"},
			{"godown":"Bodega B","batch":"L2","closing_balance":"90 Nos","closing_value":"900.00"}
		]}`)
	}))
	defer srv.Close()

	subUnits, err := tally.NewHTTPClient(srv.URL, "", time.Second).GetSubUnitBalances(context.Background(), conn, "Tornillo")
	require.NoError(t, err)
	require.Len(t, subUnits, 2)
	assert.Equal(t, "Tornillo", subUnits[0].Item)
	assert.Equal(t, "Bodega A", subUnits[0].Warehouse)
	assert.True(t, d("40").Equal(subUnits[0].ClosingBalance))
	assert.True(t, d("900").Equal(subUnits[1].ClosingValue))
}

func TestHTTPClient_PostVoucherXML(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/import", r.URL.Path)
		assert.Contains(t, r.Header.Get("Content-Type"), "text/xml")
		body, _ := io.ReadAll(r.Body)
		assert.Equal(t, "<ENVELOPE/>", string(body))
		_, _ = io.WriteString(w, `<RESPONSE><CREATED>1</CREATED></RESPONSE>`)
	}))
	defer srv.Close()

	raw, err := tally.NewHTTPClient(srv.URL, "", time.Second).PostVoucherXML(context.Background(), conn, "<ENVELOPE/>")
	require.NoError(t, err)
	assert.Equal(t, `<RESPONSE><CREATED>1</CREATED></RESPONSE>`, raw)
}

func TestHTTPClient_DecodificaUTF16(t *testing.T) {
	encoded, err := unicode.UTF16(unicode.LittleEndian, unicode.UseBOM).NewEncoder().String(`<RESPONSE><LINEERROR>Ítem no existe</LINEERROR></RESPONSE>`)
	require.NoError(t, err)

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = io.WriteString(w, encoded)
	}))
	defer srv.Close()

	raw, err := tally.NewHTTPClient(srv.URL, "", time.Second).PostVoucherXML(context.Background(), conn, "<ENVELOPE/>")
	require.NoError(t, err)
	assert.Equal(t, `<RESPONSE><LINEERROR>Ítem no existe</LINEERROR></RESPONSE>`, raw)
}

func TestHTTPClient_DecodificaWindows1252(t *testing.T) {
	encoded, err := charmap.Windows1252.NewEncoder().String(`<LINEERROR>Compañía</LINEERROR>`)
	require.NoError(t, err)

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "text/xml; charset=windows-1252")
		_, _ = io.WriteString(w, encoded)
	}))
	defer srv.Close()

	raw, err := tally.NewHTTPClient(srv.URL, "", time.Second).PostVoucherXML(context.Background(), conn, "<ENVELOPE/>")
	require.NoError(t, err)
	assert.Equal(t, `<LINEERROR>Compañía</LINEERROR>`, raw)
}

// ── Errores de transporte y sesión ───────────────────────────────────────────

func TestHTTPClient_Errores(t *testing.T) {
	cases := []struct {
		name    string
		status  int
		body    string
		wantErr error
	}{
		{"401", http.StatusUnauthorized, ``, domain.ErrLedgerSessionExpired},
		{"403", http.StatusForbidden, ``, domain.ErrLedgerSessionExpired},
		{"frase de sesión vencida", http.StatusBadRequest, `{"error":"Session expired, please log in"}`, domain.ErrLedgerSessionExpired},
		{"frase en 200", http.StatusOK, `{"error":"JWT expired"}`, domain.ErrLedgerSessionExpired},
		{"error en 200", http.StatusOK, `{"error":"company not loaded"}`, domain.ErrLedgerUnavailable},
		{"500", http.StatusInternalServerError, `boom`, domain.ErrLedgerUnavailable},
		{"json inválido", http.StatusOK, `no es json`, domain.ErrLedgerUnavailable},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
				w.WriteHeader(tc.status)
				_, _ = io.WriteString(w, tc.body)
			}))
			defer srv.Close()

			_, err := tally.NewHTTPClient(srv.URL, "", time.Second).GetSubUnitBalances(context.Background(), conn, "Tornillo")
			assert.ErrorIs(t, err, tc.wantErr)
			assert.Equal(t, tc.wantErr == domain.ErrLedgerSessionExpired, tally.IsSessionExpired(err))
		})
	}
}

func TestHTTPClient_PostVoucherXML_ErroresEn200(t *testing.T) {
	cases := []struct {
		name    string
		body    string
		wantErr error
	}{
		{"sobre json de sesión vencida", `{"error":"Session expired, please login again"}`, domain.ErrLedgerSessionExpired},
		{"sobre json de otro error", `{"error":"company not loaded"}`, domain.ErrLedgerUnavailable},
		{"texto plano de sesión vencida", `Not authenticated`, domain.ErrLedgerSessionExpired},
		{"sesión vencida dentro del xml", `<RESPONSE><LINEERROR>JWT expired</LINEERROR></RESPONSE>`, domain.ErrLedgerSessionExpired},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
				_, _ = io.WriteString(w, tc.body)
			}))
			defer srv.Close()

			raw, err := tally.NewHTTPClient(srv.URL, "", time.Second).PostVoucherXML(context.Background(), conn, "<ENVELOPE/>")
			assert.ErrorIs(t, err, tc.wantErr)
			assert.Empty(t, raw, "el cuerpo no llega al intérprete")
			assert.Equal(t, tc.wantErr == domain.ErrLedgerSessionExpired, tally.IsSessionExpired(err))
		})
	}
}

func TestHTTPClient_SinConexion(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {}))
	url := srv.URL
	srv.Close()

	_, err := tally.NewHTTPClient(url, "", time.Second).PostVoucherXML(context.Background(), conn, "<ENVELOPE/>")
	assert.ErrorIs(t, err, domain.ErrLedgerUnavailable)
}
