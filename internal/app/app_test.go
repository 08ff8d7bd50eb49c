package app

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"enrolpulse/internal/config"
	"enrolpulse/internal/shared/testutil"
	"enrolpulse/pkg/contracts/events"
)

func testConfig(t *testing.T) *config.Config {
	t.Helper()
	dir := t.TempDir()

	cfg := config.Default()
	cfg.Server.Port = 0
	cfg.Paths.BaseDir = dir
	cfg.Dataset.Path = testutil.WriteFile(t, dir, "enrolment.csv", testutil.SampleCSV)
	cfg.Security.RateLimit.Enabled = false
	return cfg
}

func newTestApp(t *testing.T, cfg *config.Config) *Application {
	t.Helper()
	logger, _ := testutil.NewTestLogger(t)
	app, err := New(cfg, logger)
	require.NoError(t, err)
	t.Cleanup(func() {
		require.NoError(t, app.Stop(context.Background()))
	})
	return app
}

func get(t *testing.T, h http.Handler, target string, header http.Header) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, target, nil)
	for k, v := range header {
		req.Header[k] = v
	}
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)
	return w
}

func decode(t *testing.T, w *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	var body map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body), w.Body.String())
	return body
}

func TestNewRequiresConfig(t *testing.T) {
	_, err := New(nil, nil)
	assert.Error(t, err)
}

func TestNewWiresServices(t *testing.T) {
	cfg := testConfig(t)
	app := newTestApp(t, cfg)

	require.NotNil(t, app.Services)
	assert.NotNil(t, app.Services.Dashboard)
	assert.NotNil(t, app.Services.Health)
	assert.NotNil(t, app.Services.WebSocket)
	assert.NotNil(t, app.Metrics)
	assert.Equal(t, cfg.Dataset.Path, app.Services.Dataset.Path())
	assert.Equal(t, cfg.Forecast.Window, app.Services.Forecaster.Window)
	assert.Equal(t, ":0", app.Server.Addr)
	assert.Equal(t, app.Router, app.Server.Handler)
}

func TestHealthRoutes(t *testing.T) {
	app := newTestApp(t, testConfig(t))

	w := get(t, app.Router, "/api/health/live", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "alive", decode(t, w)["status"])

	// nothing has loaded the dataset yet
	w = get(t, app.Router, "/api/health/ready", nil)
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)

	_, err := app.Services.Dataset.Get(context.Background())
	require.NoError(t, err)

	w = get(t, app.Router, "/api/health/ready", nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	body := decode(t, w)
	assert.Equal(t, "ready", body["status"])
	live := body["services"].(map[string]interface{})["websocket"].(map[string]interface{})
	assert.Contains(t, live["details"], "total_connections")

	w = get(t, app.Router, "/api/version", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, decode(t, w), "api_version")
}

func TestDashboardRoutes(t *testing.T) {
	app := newTestApp(t, testConfig(t))

	w := get(t, app.Router, "/api/regions/states", nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	body := decode(t, w)
	assert.Equal(t, []interface{}{"Bihar", "Kerala"}, body["data"])

	w = get(t, app.Router, "/api/dashboard/states/Kerala/districts", nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	ranking := decode(t, w)["data"].([]interface{})
	require.Len(t, ranking, 3)
	assert.Equal(t, "Ernakulam", ranking[0].(map[string]interface{})["district"])

	w = get(t, app.Router, "/api/dashboard/forecast?state=Kerala&horizon=2", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "VALIDATION_FAILED", decode(t, w)["error_code"])

	w = get(t, app.Router, "/api/export/districts.csv?state=Bihar", nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Contains(t, w.Header().Get("Content-Disposition"), "districts_bihar.csv")
	assert.Contains(t, w.Body.String(), "1,Patna,100,50,150")
}

func TestMiddlewareChain(t *testing.T) {
	app := newTestApp(t, testConfig(t))

	header := http.Header{}
	header.Set("X-Request-ID", "req-42")
	header.Set("Origin", "http://localhost:8080")
	w := get(t, app.Router, "/api/regions/states", header)

	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "req-42", w.Header().Get("X-Request-ID"))
	assert.Equal(t, "nosniff", w.Header().Get("X-Content-Type-Options"))
	assert.Equal(t, "http://localhost:8080", w.Header().Get("Access-Control-Allow-Origin"))

	header.Set("Origin", "http://evil.example")
	w = get(t, app.Router, "/api/regions/states", header)
	assert.Empty(t, w.Header().Get("Access-Control-Allow-Origin"))
}

func TestRateLimit(t *testing.T) {
	cfg := testConfig(t)
	cfg.Security.RateLimit = config.RateLimitConfig{Enabled: true, RPS: 0.001, Burst: 2}
	app := newTestApp(t, cfg)

	var codes []int
	for i := 0; i < 3; i++ {
		codes = append(codes, get(t, app.Router, "/api/health/live", nil).Code)
	}
	assert.Equal(t, []int{http.StatusOK, http.StatusOK, http.StatusTooManyRequests}, codes)

	// scrapes are outside the limited group
	assert.Equal(t, http.StatusOK, get(t, app.Router, "/metrics", nil).Code)
}

func TestNotFoundAndMethodNotAllowed(t *testing.T) {
	app := newTestApp(t, testConfig(t))

	w := get(t, app.Router, "/nope", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, float64(http.StatusNotFound), decode(t, w)["status"])

	req := httptest.NewRequest(http.MethodDelete, "/api/regions/states", nil)
	rec := httptest.NewRecorder()
	app.Router.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)
}

func TestMetricsEndpoint(t *testing.T) {
	app := newTestApp(t, testConfig(t))

	_, err := app.Services.Dataset.Get(context.Background())
	require.NoError(t, err)

	w := get(t, app.Router, "/metrics", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "go_goroutines")

	cfg := testConfig(t)
	cfg.Telemetry.MetricExporter = "none"
	disabled := newTestApp(t, cfg)
	assert.Equal(t, http.StatusNotFound, get(t, disabled.Router, "/metrics", nil).Code)
}

func TestLiveSessionRoute(t *testing.T) {
	app := newTestApp(t, testConfig(t))
	app.Services.WebSocket.Start()

	srv := httptest.NewServer(app.Router)
	defer srv.Close()

	header := http.Header{}
	header.Set("Origin", "http://localhost:8080")
	conn, _, err := websocket.DefaultDialer.Dial("ws"+strings.TrimPrefix(srv.URL, "http")+"/ws/dashboard", header)
	require.NoError(t, err)
	defer conn.Close()

	require.NoError(t, conn.SetReadDeadline(time.Now().Add(5*time.Second)))
	var msg events.WebSocketMessage
	require.NoError(t, conn.ReadJSON(&msg))
	assert.Equal(t, events.MessageTypeConnect, msg.Type)

	require.NoError(t, conn.WriteJSON(events.SelectMessage{Type: events.MessageTypeSelect, State: "Bihar", Horizon: 3}))
	var reply events.WebSocketMessage
	require.NoError(t, conn.ReadJSON(&reply))
	require.Equal(t, events.MessageTypeDashboard, reply.Type, "error: %+v", reply.Error)
	view := reply.Data.(map[string]interface{})
	assert.Equal(t, map[string]interface{}{"state": "Bihar", "district": "Gaya"}, view["selection"])
}

func TestStartStop(t *testing.T) {
	cfg := testConfig(t)
	logger, logs := testutil.NewTestLogger(t)
	app, err := New(cfg, logger)
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	require.NoError(t, app.Start(ctx, cancel))

	assert.Eventually(t, func() bool {
		_, ok := app.Services.Dataset.Info()
		return ok
	}, 5*time.Second, 10*time.Millisecond, "dataset is warmed on start")

	require.NoError(t, app.Stop(context.Background()))
	assert.True(t, logs.ContainsMessage("Application shutdown complete"))
	assert.False(t, app.Services.WebSocket.Register(nil), "hub is stopped")
}

func TestStartWithMissingDataset(t *testing.T) {
	cfg := testConfig(t)
	cfg.Dataset.Path = "missing.csv"
	logger, logs := testutil.NewTestLogger(t)
	app, err := New(cfg, logger)
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	require.NoError(t, app.Start(ctx, cancel))

	assert.Eventually(t, func() bool {
		return logs.ContainsMessage("Dataset not loaded at startup")
	}, 5*time.Second, 10*time.Millisecond)

	w := get(t, app.Router, "/api/regions/states", nil)
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)

	require.NoError(t, app.Stop(context.Background()))
}
