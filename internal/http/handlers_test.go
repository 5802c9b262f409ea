package http

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	nethttp "net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/stocksentinel/alerts-core/backend/internal/alerts"
	"github.com/stocksentinel/alerts-core/backend/internal/auth"
	"github.com/stocksentinel/alerts-core/backend/internal/config"
	"github.com/stocksentinel/alerts-core/backend/internal/domain"
	"github.com/stocksentinel/alerts-core/backend/internal/notify"
	"github.com/stocksentinel/alerts-core/backend/internal/repository"
	"github.com/stocksentinel/alerts-core/backend/internal/service"
	"github.com/stocksentinel/alerts-core/backend/internal/snapshot"
)

const (
	testShop   = "demo-shop.myshopify.com"
	testSecret = "test-secret"
)

type testEnv struct {
	app   *fiber.App
	token string
	svc   *service.HistoryService
	sched *alerts.Scheduler
}

func setupEnv(t *testing.T) *testEnv {
	t.Helper()

	tmpDir, err := os.MkdirTemp("", "test_http")
	require.NoError(t, err)
	t.Cleanup(func() { os.RemoveAll(tmpDir) })

	repo, err := repository.NewBoltHistoryRepository(filepath.Join(tmpDir, "history.db.bolt"))
	require.NoError(t, err)
	t.Cleanup(func() { repo.Close() })

	logger := logrus.New()
	logger.SetOutput(io.Discard)

	svc := service.NewHistoryService(repo, logger)
	sink := notify.NewLogSink(logger)
	provider := snapshot.NewDemoProvider()
	sched := alerts.NewScheduler(provider, sink, domain.DefaultThresholds(), time.Hour, logger)

	cfg := config.Config{
		JWTSecret:     testSecret,
		RetentionDays: 90,
	}

	app := NewApp(Deps{
		History:   svc,
		Scheduler: sched,
		Sink:      sink,
		Config:    cfg,
		Logger:    logger,
	})

	token, err := auth.GenerateToken(testSecret, testShop)
	require.NoError(t, err)

	return &testEnv{app: app, token: token, svc: svc, sched: sched}
}

func (e *testEnv) request(t *testing.T, method, target string, body any) *nethttp.Response {
	t.Helper()

	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(data)
	}

	req := httptest.NewRequest(method, target, reader)
	req.Header.Set("Authorization", "Bearer "+e.token)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := e.app.Test(req, -1)
	require.NoError(t, err)
	return resp
}

func decode[T any](t *testing.T, resp *nethttp.Response) T {
	t.Helper()
	var out T
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&out))
	return out
}

func TestHistoryRequiresAuth(t *testing.T) {
	env := setupEnv(t)

	req := httptest.NewRequest(nethttp.MethodGet, "/api/history", nil)
	resp, err := env.app.Test(req, -1)
	require.NoError(t, err)
	assert.Equal(t, nethttp.StatusUnauthorized, resp.StatusCode)

	req = httptest.NewRequest(nethttp.MethodGet, "/api/history", nil)
	req.Header.Set("Authorization", "Bearer not-a-token")
	resp, err = env.app.Test(req, -1)
	require.NoError(t, err)
	assert.Equal(t, nethttp.StatusUnauthorized, resp.StatusCode)
}

func TestRecordAndQueryHistory(t *testing.T) {
	env := setupEnv(t)

	resp := env.request(t, nethttp.MethodPost, "/api/history", map[string]any{
		"product_id":     "prod-1",
		"product_title":  "Classic Leather Wallet",
		"change_type":    "SALE",
		"previous_stock": 10,
		"quantity":       -2,
		"new_stock":      8,
		"source":         "POS",
	})
	require.Equal(t, nethttp.StatusCreated, resp.StatusCode)

	stored := decode[domain.InventoryLogEntry](t, resp)
	assert.NotEmpty(t, stored.ID)
	assert.Equal(t, testShop, stored.Shop)

	resp = env.request(t, nethttp.MethodGet, "/api/history", nil)
	require.Equal(t, nethttp.StatusOK, resp.StatusCode)

	result := decode[service.QueryResult](t, resp)
	assert.Equal(t, 1, result.Total)
	require.Len(t, result.Entries, 1)
	assert.Equal(t, "prod-1", result.Entries[0].ProductID)
	assert.False(t, result.HasMore)
}

func TestRecordRejectsInvalidEntry(t *testing.T) {
	env := setupEnv(t)

	resp := env.request(t, nethttp.MethodPost, "/api/history", map[string]any{
		"product_id":     "prod-1",
		"product_title":  "Wallet",
		"change_type":    "SALE",
		"previous_stock": 10,
		"quantity":       -2,
		"new_stock":      9, // violates newStock = previousStock + quantity
		"source":         "POS",
	})
	assert.Equal(t, nethttp.StatusBadRequest, resp.StatusCode)
}

func TestMalformedDateFilterTreatedAsAbsent(t *testing.T) {
	env := setupEnv(t)

	for i := 0; i < 3; i++ {
		resp := env.request(t, nethttp.MethodPost, "/api/history", map[string]any{
			"product_id":     fmt.Sprintf("prod-%d", i),
			"product_title":  "Product",
			"change_type":    "RESTOCK",
			"previous_stock": 0,
			"quantity":       5,
			"new_stock":      5,
			"source":         "ADMIN",
		})
		require.Equal(t, nethttp.StatusCreated, resp.StatusCode)
	}

	resp := env.request(t, nethttp.MethodGet, "/api/history?dateFrom=not-a-date&changeType=BANANA", nil)
	require.Equal(t, nethttp.StatusOK, resp.StatusCode)

	result := decode[service.QueryResult](t, resp)
	assert.Equal(t, 3, result.Total, "bad filter values must behave as if absent")
}

func TestPublicHistoryVariant(t *testing.T) {
	env := setupEnv(t)

	resp := env.request(t, nethttp.MethodPost, "/api/history", map[string]any{
		"product_id":     "prod-1",
		"product_title":  "Product",
		"change_type":    "SALE",
		"previous_stock": 5,
		"quantity":       -1,
		"new_stock":      4,
		"source":         "POS",
	})
	require.Equal(t, nethttp.StatusCreated, resp.StatusCode)

	// No session token, shop from the query string
	req := httptest.NewRequest(nethttp.MethodGet, "/api/public/history?shop="+testShop, nil)
	resp, err := env.app.Test(req, -1)
	require.NoError(t, err)
	require.Equal(t, nethttp.StatusOK, resp.StatusCode)

	result := decode[service.QueryResult](t, resp)
	assert.Equal(t, 1, result.Total)

	// Shop is mandatory for the public variant
	req = httptest.NewRequest(nethttp.MethodGet, "/api/public/history", nil)
	resp, err = env.app.Test(req, -1)
	require.NoError(t, err)
	assert.Equal(t, nethttp.StatusBadRequest, resp.StatusCode)
}

func TestStatsEndpoint(t *testing.T) {
	env := setupEnv(t)

	for _, ct := range []string{"SALE", "RESTOCK"} {
		qty := -1
		prev := 5
		if ct == "RESTOCK" {
			qty = 10
		}
		resp := env.request(t, nethttp.MethodPost, "/api/history", map[string]any{
			"product_id":     "prod-1",
			"product_title":  "Product",
			"change_type":    ct,
			"previous_stock": prev,
			"quantity":       qty,
			"new_stock":      prev + qty,
			"source":         "ADMIN",
		})
		require.Equal(t, nethttp.StatusCreated, resp.StatusCode)
	}

	resp := env.request(t, nethttp.MethodGet, "/api/history/stats", nil)
	require.Equal(t, nethttp.StatusOK, resp.StatusCode)

	stats := decode[domain.HistoryStats](t, resp)
	assert.Equal(t, 2, stats.TotalChanges)
	assert.Equal(t, 1, stats.ChangesByType[domain.ChangeTypeSale])
	assert.Equal(t, 1, stats.ChangesByType[domain.ChangeTypeRestock])
}

func TestAlertLifecycleOverAPI(t *testing.T) {
	env := setupEnv(t)

	resp := env.request(t, nethttp.MethodPost, "/api/alerts/refresh", nil)
	require.Equal(t, nethttp.StatusOK, resp.StatusCode)

	body := decode[map[string]json.RawMessage](t, resp)
	var refreshed bool
	require.NoError(t, json.Unmarshal(body["refreshed"], &refreshed))
	assert.True(t, refreshed)

	var active []domain.InstantAlert
	require.NoError(t, json.Unmarshal(body["alerts"], &active))
	require.NotEmpty(t, active, "demo catalog has low-stock products")

	// Dismiss one alert, it drops out of the active view
	resp = env.request(t, nethttp.MethodPost, "/api/alerts/"+active[0].ID+"/dismiss", nil)
	require.Equal(t, nethttp.StatusOK, resp.StatusCode)

	resp = env.request(t, nethttp.MethodGet, "/api/alerts", nil)
	require.Equal(t, nethttp.StatusOK, resp.StatusCode)
	view := decode[struct {
		Alerts []domain.InstantAlert `json:"alerts"`
	}](t, resp)
	assert.Len(t, view.Alerts, len(active)-1)

	resp = env.request(t, nethttp.MethodPost, "/api/alerts/unknown-id/dismiss", nil)
	assert.Equal(t, nethttp.StatusNotFound, resp.StatusCode)

	resp = env.request(t, nethttp.MethodPost, "/api/alerts/dismiss", nil)
	require.Equal(t, nethttp.StatusOK, resp.StatusCode)

	resp = env.request(t, nethttp.MethodGet, "/api/alerts", nil)
	view = decode[struct {
		Alerts []domain.InstantAlert `json:"alerts"`
	}](t, resp)
	assert.Empty(t, view.Alerts)
}

func TestNotificationTestEndpoint(t *testing.T) {
	env := setupEnv(t)

	resp := env.request(t, nethttp.MethodGet, "/api/alerts/notifications/test", nil)
	require.Equal(t, nethttp.StatusOK, resp.StatusCode)

	result := decode[notify.TestResult](t, resp)
	assert.True(t, result.Success)
}

func TestCleanupEndpoint(t *testing.T) {
	env := setupEnv(t)

	resp := env.request(t, nethttp.MethodPost, "/api/history/cleanup", map[string]any{})
	require.Equal(t, nethttp.StatusOK, resp.StatusCode)

	body := decode[map[string]int](t, resp)
	assert.Equal(t, 0, body["removed"])
}

func TestTokenEndpoint(t *testing.T) {
	env := setupEnv(t)

	req := httptest.NewRequest(nethttp.MethodPost, "/api/auth/token", bytes.NewReader([]byte(`{"shop":"`+testShop+`"}`)))
	req.Header.Set("Content-Type", "application/json")
	resp, err := env.app.Test(req, -1)
	require.NoError(t, err)
	require.Equal(t, nethttp.StatusOK, resp.StatusCode)

	body := decode[map[string]string](t, resp)
	assert.NotEmpty(t, body["token"])
}
