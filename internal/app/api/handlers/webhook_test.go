package handlers

import (
	"bytes"
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/DFXswiss/dfx-gateway/internal/app/service/order"
	"github.com/DFXswiss/dfx-gateway/internal/app/service/reconcile"
	websvc "github.com/DFXswiss/dfx-gateway/internal/app/service/webhook"
	"github.com/DFXswiss/dfx-gateway/internal/models"
	"github.com/DFXswiss/dfx-gateway/internal/platform/lock"
	cfgpkg "github.com/DFXswiss/dfx-gateway/pkg/config"
)

type stubVerifier struct{ ok bool }

func (s stubVerifier) Verify(_ []byte, _ string, _ string) bool { return s.ok }

type stubNotifLog struct{}

func (stubNotifLog) Save(_ context.Context, _ *models.PaymentNotificationLog) {}

type stubGatewayConfig struct{ cfg cfgpkg.GatewayConfig }

func (s stubGatewayConfig) GatewayConfig() cfgpkg.GatewayConfig { return s.cfg }

func newWebhookRouter(t *testing.T, store order.Store, sigOK bool) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)
	log := zap.NewNop().Sugar()
	h := websvc.NewHandler(
		stubGatewayConfig{cfg: cfgpkg.GatewayConfig{
			Enabled:      true,
			RouteID:      "16760",
			StoreTimeout: 5 * time.Second,
		}},
		stubVerifier{ok: sigOK},
		reconcile.NewEngine(),
		store,
		lock.NewMemoryLocker(),
		websvc.NewTransitioner(store, log),
		stubNotifLog{},
		log,
	)
	r := gin.New()
	RegisterGatewayRoutes(r.Group("/api/gateway/dfx"), h)
	return r
}

func postWebhook(r *gin.Engine, body []byte, signature string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, "/api/gateway/dfx/webhook", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	if signature != "" {
		req.Header.Set("X-Payload-Signature", signature)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestApiDFXWebhook_AcceptedTransition(t *testing.T) {
	store := order.NewMemoryStore()
	store.Put(&models.Order{ID: 482, Status: models.OrderStatusPending, Total: decimal.RequireFromString("100.00"), Currency: "EUR"})
	r := newWebhookRouter(t, store, true)

	body := []byte(`{"externalId":"482/xyz","routeId":"16760","payment":{"status":"Completed","amount":100.00,"currency":"EUR"}}`)
	w := postWebhook(r, body, "c2ln")

	require.Equal(t, http.StatusOK, w.Code)
	require.Contains(t, w.Body.String(), "applied")

	o, err := store.Get(context.Background(), 482)
	require.NoError(t, err)
	require.Equal(t, models.OrderStatusProcessing, o.Status)
}

func TestApiDFXWebhook_BadSignatureIs401(t *testing.T) {
	store := order.NewMemoryStore()
	store.Put(&models.Order{ID: 482, Status: models.OrderStatusPending, Total: decimal.RequireFromString("100.00"), Currency: "EUR"})
	r := newWebhookRouter(t, store, false)

	body := []byte(`{"externalId":"482/xyz","routeId":"16760","payment":{"status":"Completed","amount":100.00,"currency":"EUR"}}`)
	w := postWebhook(r, body, "c2ln")

	require.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestApiDFXWebhook_UnknownOrderIs404(t *testing.T) {
	r := newWebhookRouter(t, order.NewMemoryStore(), true)

	body := []byte(`{"externalId":"7/x","routeId":"16760","payment":{"status":"Completed","amount":1,"currency":"EUR"}}`)
	w := postWebhook(r, body, "c2ln")

	require.Equal(t, http.StatusNotFound, w.Code)
}

func TestApiDFXWebhook_ResponseNeverEchoesOrderData(t *testing.T) {
	store := order.NewMemoryStore()
	store.Put(&models.Order{ID: 482, Status: models.OrderStatusPending, Total: decimal.RequireFromString("100.00"), Currency: "EUR", CustomerID: "cust-77"})
	r := newWebhookRouter(t, store, true)

	body := []byte(`{"externalId":"482/xyz","routeId":"16760","payment":{"status":"Completed","amount":99.99,"currency":"EUR"}}`)
	w := postWebhook(r, body, "c2ln")

	require.Equal(t, http.StatusBadRequest, w.Code)
	require.NotContains(t, w.Body.String(), "100")
	require.NotContains(t, w.Body.String(), "cust-77")
}
