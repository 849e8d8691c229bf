package handlers

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/DFXswiss/dfx-gateway/internal/app/service/checkout"
	"github.com/DFXswiss/dfx-gateway/internal/app/service/order"
	"github.com/DFXswiss/dfx-gateway/internal/models"
	cfgpkg "github.com/DFXswiss/dfx-gateway/pkg/config"
)

func newCheckoutRouter(t *testing.T, store order.Store, enabled bool) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)
	svc := checkout.NewService(stubGatewayConfig{cfg: cfgpkg.GatewayConfig{
		Enabled:      enabled,
		RouteID:      "16760",
		PayBaseURL:   "https://app.dfx.swiss/pl",
		WebhookURL:   "https://shop.example.com/api/gateway/dfx/webhook",
		ExpiryWindow: time.Hour,
	}}, store, zap.NewNop().Sugar())

	r := gin.New()
	RegisterCheckoutRoutes(r.Group("/api/v1/checkout"), svc)
	return r
}

func postCheckout(r *gin.Engine, payload map[string]any) *httptest.ResponseRecorder {
	body, _ := json.Marshal(payload)
	req := httptest.NewRequest(http.MethodPost, "/api/v1/checkout/pay", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestApiCheckoutPay_ReturnsRedirect(t *testing.T) {
	store := order.NewMemoryStore()
	store.Put(&models.Order{ID: 482, Status: models.OrderStatusPending, Total: decimal.RequireFromString("100.00"), Currency: "EUR"})
	r := newCheckoutRouter(t, store, true)

	w := postCheckout(r, map[string]any{"order_id": 482, "redirect_uri": "https://shop.example.com/thanks"})
	require.Equal(t, http.StatusOK, w.Code)
	require.Contains(t, w.Body.String(), "app.dfx.swiss")
	require.Contains(t, w.Body.String(), "routeId=16760")
}

func TestApiCheckoutPay_GatewayDisabledIs400(t *testing.T) {
	store := order.NewMemoryStore()
	store.Put(&models.Order{ID: 482, Status: models.OrderStatusPending, Total: decimal.New(1, 0), Currency: "EUR"})
	r := newCheckoutRouter(t, store, false)

	w := postCheckout(r, map[string]any{"order_id": 482, "redirect_uri": "https://x"})
	require.Equal(t, http.StatusBadRequest, w.Code)
}

func TestApiCheckoutPay_UnknownOrderIs404(t *testing.T) {
	r := newCheckoutRouter(t, order.NewMemoryStore(), true)

	w := postCheckout(r, map[string]any{"order_id": 9, "redirect_uri": "https://x"})
	require.Equal(t, http.StatusNotFound, w.Code)
}

func TestApiCheckoutPay_MissingFieldsIs400(t *testing.T) {
	r := newCheckoutRouter(t, order.NewMemoryStore(), true)

	w := postCheckout(r, map[string]any{"order_id": 9})
	require.Equal(t, http.StatusBadRequest, w.Code)
}
