package rcv

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func newTestGateway(t *testing.T) *httptest.Server {
	t.Helper()

	writeJSON := func(w http.ResponseWriter, v any) {
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(v)
	}

	mux := http.NewServeMux()
	mux.HandleFunc("/api/v1/sii/contribuyentes/situacion_tributaria/tercero/76123456-7", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, TaxSituation{RUT: 76123456, DV: "7", BusinessName: "EMPRESA DEMO SPA"})
	})
	mux.HandleFunc("/api/v1/sii/rcv/compras/resumen/76123456-7/2024-03/REGISTRO", func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "periodo no disponible", http.StatusBadGateway)
	})
	mux.HandleFunc("/api/v1/sii/rcv/compras/resumen/76123456-7/2024-02/REGISTRO", func(w http.ResponseWriter, r *http.Request) {
		var body authBody
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, "11111111-1", body.Auth.Pass.RUT)
		assert.Equal(t, "secret", body.Auth.Pass.Password)
		writeJSON(w, Summary{Period: "2024-02", Lines: []SummaryLine{
			{Type: TypeInvoice, Count: 2, NetAmount: 300},
			{Type: TypeDispatchGuide, Count: 0},
		}})
	})
	mux.HandleFunc("/api/v1/sii/rcv/compras/detalle/76123456-7/2024-02/33/REGISTRO", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, DetailResponse{Data: []Document{
			{Folio: 1, Type: TypeInvoice, CounterpartyName: "ENEL", NetAmount: 100},
			{Folio: 2, Type: TypeInvoice, CounterpartyName: "COPEC", NetAmount: 200},
		}})
	})
	mux.HandleFunc("/api/v1/sii/rcv/ventas/resumen/76123456-7/2024-03", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, Summary{Period: "2024-03", Lines: []SummaryLine{{Type: TypeReceipt, Count: 1}}})
	})
	mux.HandleFunc("/api/v1/sii/rcv/ventas/detalle/76123456-7/2024-03/39", func(w http.ResponseWriter, r *http.Request) {
		http.NotFound(w, r)
	})

	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "Bearer test-token", r.Header.Get("Authorization"))
		mux.ServeHTTP(w, r)
	}))
}

func TestClient_ExtractFallsBackToPreviousPeriod(t *testing.T) {
	srv := newTestGateway(t)
	defer srv.Close()

	client := NewClient(ClientConfig{BaseURL: srv.URL, Token: "test-token", Timeout: 5 * time.Second}, zap.NewNop())

	ext, err := client.Extract(context.Background(), "76.123.456-7", Credentials{RUT: "11111111-1", Password: "secret"}, "2024-03")
	require.NoError(t, err)

	require.NotNil(t, ext.TaxSituation)
	assert.Equal(t, "EMPRESA DEMO SPA", ext.TaxSituation.BusinessName)

	require.NotNil(t, ext.PurchaseSummary)
	assert.Equal(t, "2024-02", ext.PurchaseSummary.Period)
	assert.Len(t, ext.PurchaseDetail, 2)

	require.NotNil(t, ext.SalesSummary)
	assert.Equal(t, "2024-03", ext.SalesSummary.Period)
	assert.Empty(t, ext.SalesDetail)
	assert.True(t, ext.HasData())
}

func TestClient_ExtractRequiresToken(t *testing.T) {
	client := NewClient(ClientConfig{BaseURL: "http://127.0.0.1:0"}, zap.NewNop())

	_, err := client.Extract(context.Background(), "76123456-7", Credentials{}, "2024-03")
	assert.ErrorIs(t, err, ErrMissingToken)
}

func TestClient_ExtractDefaultsToCurrentPeriod(t *testing.T) {
	var requested []string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requested = append(requested, r.URL.Path)
		http.Error(w, "down", http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	client := NewClient(ClientConfig{BaseURL: srv.URL, Token: "t"}, zap.NewNop())
	client.now = func() time.Time { return time.Date(2024, time.May, 10, 0, 0, 0, 0, time.UTC) }

	ext, err := client.Extract(context.Background(), "76123456-7", Credentials{}, "")
	require.NoError(t, err)
	assert.False(t, ext.HasData())
	assert.Contains(t, requested, "/api/v1/sii/rcv/compras/resumen/76123456-7/2024-05/REGISTRO")
	assert.Contains(t, requested, "/api/v1/sii/rcv/compras/resumen/76123456-7/2024-04/REGISTRO")
}
