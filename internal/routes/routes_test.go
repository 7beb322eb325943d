package routes

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"spark/internal/handlers"
	"spark/internal/models"
	"spark/internal/repositories/memory"
	"spark/internal/services/deposit"
	"spark/internal/services/gift"
	"spark/internal/services/payment"
	"spark/internal/services/transfer"
	"spark/internal/services/wallet"
	"spark/internal/utils"

	"github.com/gofiber/fiber/v2"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	secret       = "routes-test"
	alice   uint = 1
	bob     uint = 2
	adminID uint = 9
)

type testServer struct {
	app   *fiber.App
	store *memory.Store
}

func newTestServer(t *testing.T, checks map[string]handlers.HealthCheckFunc) *testServer {
	t.Helper()
	store := memory.NewStore(time.Second)
	store.AddUser(alice, bob, adminID)

	reg := prometheus.NewRegistry()
	transfers := transfer.NewService(store, store)
	deposits := deposit.NewService(store, store, payment.NewSandboxGateway(0), "USD")
	gifts := gift.NewService(store, store, transfers, nil)
	svc := wallet.NewService(store, store, transfers, deposits, gifts, nil, nil, wallet.NewPrometheusMetrics(reg))

	app := fiber.New()
	SetupRoutes(app, Dependencies{
		WalletService: svc,
		JWTSecret:     secret,
		Version:       "test",
		HealthChecks:  checks,
		Gatherer:      reg,
	})
	return &testServer{app: app, store: store}
}

func (s *testServer) do(t *testing.T, method, path string, userID uint, role, body string) (*http.Response, map[string]interface{}) {
	t.Helper()
	var reader io.Reader
	if body != "" {
		reader = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	if userID != 0 {
		token, err := utils.GenerateToken(secret, models.UserClaims{UserID: userID, Role: role}, time.Minute)
		require.NoError(t, err)
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := s.app.Test(req)
	require.NoError(t, err)

	out := map[string]interface{}{}
	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	if len(raw) > 0 && raw[0] == '{' {
		require.NoError(t, json.Unmarshal(raw, &out))
	}
	return resp, out
}

func TestRoutes_TransferScenario(t *testing.T) {
	s := newTestServer(t, nil)
	s.store.SeedWallet(alice, 500_000_000)

	resp, body := s.do(t, "POST", "/api/wallet/transfer", alice, models.RoleUser, `{"receiver_id":2,"amount":"2.50000000"}`)
	require.Equal(t, fiber.StatusCreated, resp.StatusCode, body)
	assert.Equal(t, "2.50000000", body["from_balance"])
	assert.Equal(t, "2.50000000", body["to_balance"])

	resp, body = s.do(t, "GET", "/api/wallet", bob, models.RoleUser, "")
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	assert.Equal(t, "2.50000000", body["balance"])

	resp, body = s.do(t, "GET", "/api/wallet/transactions?limit=5", alice, models.RoleUser, "")
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	data, ok := body["data"].([]interface{})
	require.True(t, ok)
	require.Len(t, data, 1)
	assert.Equal(t, "out", data[0].(map[string]interface{})["direction"])
}

func TestRoutes_ErrorMapping(t *testing.T) {
	s := newTestServer(t, nil)
	s.store.SeedWallet(alice, 100_000_000)

	tests := []struct {
		name   string
		path   string
		body   string
		status int
		code   string
	}{
		{name: "insufficient", path: "/api/wallet/transfer", body: `{"receiver_id":2,"amount":"2.00000000"}`, status: fiber.StatusUnprocessableEntity, code: "INSUFFICIENT_BALANCE"},
		{name: "self transfer", path: "/api/wallet/transfer", body: `{"receiver_id":1,"amount":"1"}`, status: fiber.StatusBadRequest, code: "SELF_TRANSFER"},
		{name: "unknown recipient", path: "/api/wallet/transfer", body: `{"receiver_id":77,"amount":"1"}`, status: fiber.StatusNotFound, code: "RECIPIENT_NOT_FOUND"},
		{name: "bad amount", path: "/api/wallet/transfer", body: `{"receiver_id":2,"amount":"abc"}`, status: fiber.StatusBadRequest, code: "INVALID_AMOUNT"},
		{name: "missing fields", path: "/api/wallet/transfer", body: `{}`, status: fiber.StatusBadRequest, code: "VALIDATION_FAILED"},
		{name: "declined", path: "/api/wallet/deposit", body: `{"amount":"1","payment_method":"pm_card_chargeDeclined"}`, status: fiber.StatusPaymentRequired, code: "PAYMENT_DECLINED"},
		{name: "currency", path: "/api/wallet/deposit", body: `{"amount":"1","currency":"EUR","payment_method":"pm_card_visa"}`, status: fiber.StatusBadRequest, code: "INVALID_CURRENCY"},
		{name: "gift without kind", path: "/api/gifts", body: `{"receiver_id":2,"amount":"1"}`, status: fiber.StatusBadRequest, code: "VALIDATION_FAILED"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp, body := s.do(t, "POST", tt.path, alice, models.RoleUser, tt.body)
			assert.Equal(t, tt.status, resp.StatusCode, body)
			assert.Equal(t, tt.code, body["code"])
		})
	}

	assert.Equal(t, int64(100_000_000), s.store.TotalBalance())
	assert.Empty(t, s.store.Transactions())
}

func TestRoutes_DepositAndGift(t *testing.T) {
	s := newTestServer(t, nil)

	resp, body := s.do(t, "POST", "/api/wallet/deposit", alice, models.RoleUser, `{"amount":10,"payment_method":"pm_card_visa","idempotency_key":"dep-1"}`)
	require.Equal(t, fiber.StatusCreated, resp.StatusCode, body)
	assert.Equal(t, "10.00000000", body["balance"])

	resp, body = s.do(t, "POST", "/api/wallet/deposit", alice, models.RoleUser, `{"amount":"10","payment_method":"pm_card_visa","idempotency_key":"dep-1"}`)
	require.Equal(t, fiber.StatusOK, resp.StatusCode, body)
	assert.Equal(t, true, body["replayed"])

	resp, body = s.do(t, "POST", "/api/gifts", alice, models.RoleUser, `{"receiver_id":2,"gift_kind":"rose","amount":"3.5","message":"hi"}`)
	require.Equal(t, fiber.StatusCreated, resp.StatusCode, body)
	assert.Equal(t, "6.50000000", body["sender_balance"])
	assert.Len(t, s.store.Gifts(), 1)
}

func TestRoutes_AdminRequiresRole(t *testing.T) {
	s := newTestServer(t, nil)

	resp, _ := s.do(t, "POST", "/api/admin/wallets/2/deposit", alice, models.RoleUser, `{"amount":"5"}`)
	assert.Equal(t, fiber.StatusForbidden, resp.StatusCode)

	resp, _ = s.do(t, "POST", "/api/admin/wallets/2/deposit", 0, "", `{"amount":"5"}`)
	assert.Equal(t, fiber.StatusUnauthorized, resp.StatusCode)

	resp, body := s.do(t, "POST", "/api/admin/wallets/2/deposit", adminID, models.RoleAdmin, `{"amount":"5"}`)
	require.Equal(t, fiber.StatusCreated, resp.StatusCode, body)
	assert.Equal(t, "5.00000000", body["balance"])

	resp, body = s.do(t, "POST", "/api/admin/transfers", adminID, models.RoleAdmin, `{"from_user_id":2,"to_user_id":1,"amount":"1.25"}`)
	require.Equal(t, fiber.StatusCreated, resp.StatusCode, body)
	assert.Equal(t, "3.75000000", body["from_balance"])

	resp, _ = s.do(t, "POST", "/api/admin/wallets/abc/deposit", adminID, models.RoleAdmin, `{"amount":"5"}`)
	assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)

	resp, body = s.do(t, "POST", "/api/admin/wallets/404/deposit", adminID, models.RoleAdmin, `{"amount":"5"}`)
	assert.Equal(t, fiber.StatusNotFound, resp.StatusCode)
	assert.Equal(t, "USER_NOT_FOUND", body["code"])
}

func TestRoutes_HealthAndMetrics(t *testing.T) {
	s := newTestServer(t, map[string]handlers.HealthCheckFunc{
		"database": func(context.Context) error { return nil },
	})

	resp, body := s.do(t, "GET", "/health", 0, "", "")
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)
	assert.Equal(t, "ok", body["status"])

	s.store.SeedWallet(alice, 100)
	_, _ = s.do(t, "GET", "/api/wallet", alice, models.RoleUser, "")

	req := httptest.NewRequest("GET", "/metrics", nil)
	metricsResp, err := s.app.Test(req)
	require.NoError(t, err)
	raw, err := io.ReadAll(metricsResp.Body)
	require.NoError(t, err)
	assert.Contains(t, string(raw), "spark_wallet_operations_total")

	degraded := newTestServer(t, map[string]handlers.HealthCheckFunc{
		"redis": func(context.Context) error { return errors.New("connection refused") },
	})
	resp, body = degraded.do(t, "GET", "/health", 0, "", "")
	assert.Equal(t, fiber.StatusServiceUnavailable, resp.StatusCode)
	assert.Equal(t, "degraded", body["status"])
}
