package routes

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/angelmondragon/warrantywizard-backend/internal/alerts"
	"github.com/angelmondragon/warrantywizard-backend/internal/chat"
	"github.com/angelmondragon/warrantywizard-backend/internal/insights"
	"github.com/angelmondragon/warrantywizard-backend/internal/invoices"
	"github.com/angelmondragon/warrantywizard-backend/internal/warranties"
	"github.com/angelmondragon/warrantywizard-backend/pkg/config"
	"github.com/angelmondragon/warrantywizard-backend/pkg/logger"
	"github.com/angelmondragon/warrantywizard-backend/pkg/metrics"
	"github.com/angelmondragon/warrantywizard-backend/pkg/storage/local"
	"github.com/angelmondragon/warrantywizard-backend/pkg/types"
)

var testToday = types.NewDate(2025, 6, 1)

type stubPinger struct{ err error }

func (p stubPinger) Ping(context.Context) error { return p.err }

type testServer struct {
	handler http.Handler
	reg     *prometheus.Registry
}

func newTestServer(t *testing.T, pinger stubPinger) *testServer {
	t.Helper()

	cfg, err := config.Load()
	require.NoError(t, err)
	logg := logger.New(logger.Options{ServiceName: "router-test", Output: io.Discard})

	var (
		alertSvc   *alerts.Service
		insightSvc *insights.Service
	)
	alertRepo := alerts.NewMemoryRepository()
	insightRepo := insights.NewMemoryRepository()

	wsvc, err := warranties.NewService(warranties.NewMemoryRepository(),
		warranties.WithClock(func() time.Time { return testToday.Time().Add(9 * time.Hour) }),
		warranties.WithLogger(logg),
		warranties.WithDeleteHook(func(ctx context.Context, id int64) error { return alertSvc.DeleteForWarranty(ctx, id) }),
		warranties.WithDeleteHook(func(ctx context.Context, id int64) error { return insightSvc.DeleteForWarranty(ctx, id) }),
	)
	require.NoError(t, err)

	alertSvc, err = alerts.NewService(alertRepo, wsvc, logg)
	require.NoError(t, err)
	insightSvc, err = insights.NewService(insightRepo, wsvc, nil, logg)
	require.NoError(t, err)

	chatSvc, err := chat.NewService(chat.NewRuleBasedResponder(wsvc), chat.NewMemoryHistory(), chat.WithLogger(logg))
	require.NoError(t, err)

	uploads := t.TempDir()
	store, err := local.New(uploads)
	require.NoError(t, err)
	invoiceSvc, err := invoices.NewService(wsvc, store, logg)
	require.NoError(t, err)

	reg := prometheus.NewRegistry()
	deps := Deps{
		Config:      cfg,
		Logger:      logg,
		DB:          pinger,
		HTTPMetrics: metrics.NewHTTPMetrics(reg),
		Gatherer:    reg,
		Warranties:  wsvc,
		Alerts:      alertSvc,
		Insights:    insightSvc,
		Chat:        chatSvc,
		Invoices:    invoiceSvc,
		UploadsDir:  uploads,
	}
	return &testServer{handler: NewRouter(deps), reg: reg}
}

func (s *testServer) do(t *testing.T, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	s.handler.ServeHTTP(rec, req)
	return rec
}

func decode(t *testing.T, rec *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var out map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out), rec.Body.String())
	return out
}

func (s *testServer) create(t *testing.T, body map[string]any) int64 {
	t.Helper()
	rec := s.do(t, http.MethodPost, "/api/warranties", body)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	warranty := decode(t, rec)["warranty"].(map[string]any)
	return int64(warranty["id"].(float64))
}

func TestCreateWithoutProductNameNamesTheField(t *testing.T) {
	srv := newTestServer(t, stubPinger{})

	rec := srv.do(t, http.MethodPost, "/api/warranties", map[string]any{
		"purchase_date": "2024-01-15",
		"warranty_end":  "2026-01-15",
	})

	require.Equal(t, http.StatusBadRequest, rec.Code)
	errBody := decode(t, rec)["error"].(map[string]any)
	assert.Equal(t, "VALIDATION_ERROR", errBody["code"])
	assert.Contains(t, errBody["message"], "product_name")
	assert.Equal(t, "product_name", errBody["details"].(map[string]any)["field"])
}

func TestExpiringIncludesDaysUntilExpiry(t *testing.T) {
	srv := newTestServer(t, stubPinger{})
	srv.create(t, map[string]any{
		"product_name":  "Forklift",
		"purchase_date": "2024-01-15",
		"warranty_end":  testToday.AddDays(10).String(),
		"purchase_cost": 1200.5,
	})
	srv.create(t, map[string]any{
		"product_name":  "Laptop",
		"purchase_date": "2024-01-15",
		"warranty_end":  testToday.AddDays(-1).String(),
	})

	rec := srv.do(t, http.MethodGet, "/api/warranties/expiring?days=30", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	body := decode(t, rec)
	assert.EqualValues(t, 1, body["count"])
	assert.EqualValues(t, 30, body["days"])
	item := body["warranties"].([]any)[0].(map[string]any)
	assert.Equal(t, "Forklift", item["product_name"])
	assert.EqualValues(t, 10, item["days_until_expiry"])
	assert.Equal(t, "expiring_soon", item["status"])
	assert.EqualValues(t, 1200.5, item["purchase_cost"])

	rec = srv.do(t, http.MethodGet, "/api/warranties?status=expired", nil)
	body = decode(t, rec)
	assert.EqualValues(t, 1, body["count"])
	assert.Equal(t, "Laptop", body["warranties"].([]any)[0].(map[string]any)["product_name"])

	rec = srv.do(t, http.MethodGet, "/api/warranties/expired", nil)
	assert.EqualValues(t, 1, decode(t, rec)["count"])
}

func TestExpiringFallsBackToDefaultWindow(t *testing.T) {
	srv := newTestServer(t, stubPinger{})
	srv.create(t, map[string]any{
		"product_name":  "Forklift",
		"purchase_date": "2024-01-15",
		"warranty_end":  testToday.AddDays(10).String(),
	})

	for _, raw := range []string{"0", "-5", "abc"} {
		rec := srv.do(t, http.MethodGet, "/api/warranties/expiring?days="+raw, nil)
		require.Equal(t, http.StatusOK, rec.Code, "days=%s: %s", raw, rec.Body.String())
		body := decode(t, rec)
		assert.EqualValues(t, 30, body["days"], raw)
		assert.EqualValues(t, 1, body["count"], raw)
	}
}

func TestListSearchIsCaseInsensitive(t *testing.T) {
	srv := newTestServer(t, stubPinger{})
	srv.create(t, map[string]any{"product_name": "Pump", "supplier": "Grainger", "purchase_date": "2024-01-01", "warranty_length_months": 36})
	srv.create(t, map[string]any{"product_name": "Desk", "supplier": "Staples", "purchase_date": "2024-01-01", "warranty_length_months": 12})

	body := decode(t, srv.do(t, http.MethodGet, "/api/warranties?q=grainger", nil))
	require.EqualValues(t, 1, body["count"])
	item := body["warranties"].([]any)[0].(map[string]any)
	assert.Equal(t, "Pump", item["product_name"])
	assert.Equal(t, "2027-01-01", item["warranty_end"])

	rec := srv.do(t, http.MethodGet, "/api/warranties?status=bogus", nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestGetUpdateClaimDelete(t *testing.T) {
	srv := newTestServer(t, stubPinger{})
	id := srv.create(t, map[string]any{"product_name": "Compressor", "purchase_date": "06/01/2024", "warranty_length_months": 24})
	path := "/api/warranties/" + itoa(id)

	body := decode(t, srv.do(t, http.MethodGet, path, nil))
	assert.Equal(t, "2024-06-01", body["warranty"].(map[string]any)["purchase_date"])

	rec := srv.do(t, http.MethodPatch, path, map[string]any{"notes": "bay 4", "status": "expired"})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	updated := decode(t, rec)["warranty"].(map[string]any)
	assert.Equal(t, "bay 4", updated["notes"])
	assert.Equal(t, "active", updated["status"])

	rec = srv.do(t, http.MethodPost, path+"/claim", map[string]any{"claim_amount": 250, "claim_description": "motor failure"})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	claimed := decode(t, rec)["warranty"].(map[string]any)
	assert.Equal(t, true, claimed["claim_filed"])
	assert.EqualValues(t, 250, claimed["claim_amount"])
	assert.Equal(t, testToday.String(), claimed["claim_date"])

	rec = srv.do(t, http.MethodDelete, path, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "Compressor", decode(t, rec)["warranty"].(map[string]any)["product_name"])

	rec = srv.do(t, http.MethodGet, path, nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "NOT_FOUND", decode(t, rec)["error"].(map[string]any)["code"])
}

func TestAnalyticsShapeAndAlias(t *testing.T) {
	srv := newTestServer(t, stubPinger{})
	srv.create(t, map[string]any{"product_name": "Pump", "category": "Plant", "purchase_date": "2024-01-01", "warranty_end": testToday.AddDays(5).String(), "purchase_cost": 100})
	srv.create(t, map[string]any{"product_name": "Desk", "purchase_date": "2024-01-01", "warranty_end": testToday.AddDays(400).String(), "purchase_cost": "50.25", "claim_filed": true, "claim_amount": 10})

	first := srv.do(t, http.MethodGet, "/api/analytics", nil)
	require.Equal(t, http.StatusOK, first.Code)
	body := decode(t, first)

	totals := body["totals"].(map[string]any)
	assert.EqualValues(t, 2, totals["total"])
	assert.EqualValues(t, 1, totals["active"])
	assert.EqualValues(t, 1, totals["expiring"])
	assert.EqualValues(t, 0, totals["expired"])
	claims := body["claims"].(map[string]any)
	assert.EqualValues(t, 1, claims["filed"])
	assert.EqualValues(t, 10, claims["total_claim_amount"])
	assert.EqualValues(t, 150.25, body["estimated"].(map[string]any)["coverage_value"])
	assert.Contains(t, body, "breakdown")

	alias := srv.do(t, http.MethodGet, "/api/warranties/analytics", nil)
	assert.JSONEq(t, first.Body.String(), alias.Body.String())
}

func TestChatNextMonthScenario(t *testing.T) {
	srv := newTestServer(t, stubPinger{})
	srv.create(t, map[string]any{"product_name": "Generator", "purchase_date": "2024-01-01", "warranty_end": testToday.AddDays(10).String()})
	srv.create(t, map[string]any{"product_name": "Scanner", "purchase_date": "2024-01-01", "warranty_end": testToday.AddDays(45).String()})

	rec := srv.do(t, http.MethodPost, "/api/ai-chat", map[string]any{"message": "Which items expire next month?"})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	body := decode(t, rec)
	reply := body["reply"].(string)
	assert.Contains(t, reply, "Generator")
	assert.NotContains(t, reply, "Scanner")
	sessionID := body["session_id"].(string)
	assert.True(t, strings.HasPrefix(sessionID, "session_"))

	history := decode(t, srv.do(t, http.MethodGet, "/api/ai/chat/history/"+sessionID, nil))
	assert.EqualValues(t, 2, history["count"])

	cleared := decode(t, srv.do(t, http.MethodDelete, "/api/ai/chat/history/"+sessionID, nil))
	assert.EqualValues(t, 2, cleared["deleted"])

	rec = srv.do(t, http.MethodPost, "/api/ai/chat", map[string]any{"message": ""})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestAlertsGenerateAndCascadeOnDelete(t *testing.T) {
	srv := newTestServer(t, stubPinger{})
	id := srv.create(t, map[string]any{"product_name": "Boiler", "purchase_date": "2024-01-01", "warranty_end": testToday.AddDays(7).String()})

	rec := srv.do(t, http.MethodPost, "/api/alerts/generate", nil)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.EqualValues(t, 1, decode(t, rec)["count"])

	again := decode(t, srv.do(t, http.MethodPost, "/api/alerts/generate", nil))
	assert.EqualValues(t, 0, again["count"])

	list := decode(t, srv.do(t, http.MethodGet, "/api/alerts", nil))
	require.EqualValues(t, 1, list["count"])
	alert := list["alerts"].([]any)[0].(map[string]any)
	assert.Equal(t, "7_day_warning", alert["alert_type"])
	assert.Equal(t, "Boiler", alert["product_name"])

	perWarranty := decode(t, srv.do(t, http.MethodGet, "/api/warranties/"+itoa(id)+"/alerts", nil))
	assert.EqualValues(t, 1, perWarranty["count"])

	alertID := int64(alert["id"].(float64))
	rec = srv.do(t, http.MethodPost, "/api/alerts/"+itoa(alertID)+"/sent", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, true, decode(t, rec)["alert"].(map[string]any)["sent"])

	srv.do(t, http.MethodDelete, "/api/warranties/"+itoa(id), nil)
	list = decode(t, srv.do(t, http.MethodGet, "/api/alerts", nil))
	assert.EqualValues(t, 0, list["count"])

	rec = srv.do(t, http.MethodDelete, "/api/alerts/"+itoa(alertID), nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestInsightFallsBackToRules(t *testing.T) {
	srv := newTestServer(t, stubPinger{})
	id := srv.create(t, map[string]any{"product_name": "Chiller", "purchase_date": "2024-01-01", "warranty_end": testToday.AddDays(20).String()})

	rec := srv.do(t, http.MethodPost, "/api/warranties/"+itoa(id)+"/insights", nil)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	insight := decode(t, rec)["insight"].(map[string]any)
	assert.EqualValues(t, 80, insight["risk_score"])
	assert.Equal(t, "risk_assessment", insight["insight_type"])

	list := decode(t, srv.do(t, http.MethodGet, "/api/warranties/"+itoa(id)+"/insights", nil))
	assert.EqualValues(t, 1, list["count"])

	rec = srv.do(t, http.MethodPost, "/api/warranties/999/insights", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestCSVUploadAndExtractInvoice(t *testing.T) {
	srv := newTestServer(t, stubPinger{})

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	part, err := mw.CreateFormFile("file", "warranties.csv")
	require.NoError(t, err)
	_, err = part.Write([]byte("Product Name,Purchase Date,Warranty End,Supplier\nPump,2024-01-01,2027-01-01,Grainger\n,2024-01-01,2027-01-01,Nobody\n"))
	require.NoError(t, err)
	require.NoError(t, mw.Close())

	req := httptest.NewRequest(http.MethodPost, "/api/upload/csv", &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	rec := httptest.NewRecorder()
	srv.handler.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	body := decode(t, rec)
	assert.EqualValues(t, 1, body["created"])
	rowErrors := body["errors"].([]any)
	require.Len(t, rowErrors, 1)
	assert.EqualValues(t, 3, rowErrors[0].(map[string]any)["row"])

	rec = srv.do(t, http.MethodPost, "/api/ai/extract-invoice", map[string]any{
		"invoice_text": "Product: Cordless Drill\nSerial Number: SN-12345\nPurchase Date: 03/05/2024\nWarranty: 2 years\nTotal: $149.99",
	})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	fields := decode(t, rec)["fields"].(map[string]any)
	assert.Equal(t, "Cordless Drill", fields["product_name"])
	assert.Equal(t, "2024-03-05", fields["purchase_date"])
	assert.EqualValues(t, 24, fields["warranty_length_months"])
	assert.EqualValues(t, 149.99, fields["purchase_cost"])
}

func TestUploadRejectsMissingFile(t *testing.T) {
	srv := newTestServer(t, stubPinger{})

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	require.NoError(t, mw.WriteField("product_name", "Drill"))
	require.NoError(t, mw.Close())

	req := httptest.NewRequest(http.MethodPost, "/api/upload/invoice", &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	rec := httptest.NewRecorder()
	srv.handler.ServeHTTP(rec, req)

	require.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "UPLOAD_ERROR", decode(t, rec)["error"].(map[string]any)["code"])
}

func TestHealthAndUnknownRoutes(t *testing.T) {
	srv := newTestServer(t, stubPinger{})

	rec := srv.do(t, http.MethodGet, "/health", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "ok", decode(t, rec)["database"])

	assert.Equal(t, http.StatusOK, srv.do(t, http.MethodGet, "/health/live", nil).Code)
	assert.Equal(t, http.StatusOK, srv.do(t, http.MethodGet, "/health/ready", nil).Code)

	rec = srv.do(t, http.MethodGet, "/api/nope", nil)
	require.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "NOT_FOUND", decode(t, rec)["error"].(map[string]any)["code"])

	rec = srv.do(t, http.MethodGet, "/metrics", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "http_requests_total")
}

func TestHealthReportsDatabaseFailure(t *testing.T) {
	srv := newTestServer(t, stubPinger{err: errors.New("connection refused")})

	rec := srv.do(t, http.MethodGet, "/health", nil)
	require.Equal(t, http.StatusServiceUnavailable, rec.Code)
	assert.Equal(t, "unavailable", decode(t, rec)["database"])

	rec = srv.do(t, http.MethodGet, "/health/ready", nil)
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
}

func itoa(id int64) string {
	return strconv.FormatInt(id, 10)
}
