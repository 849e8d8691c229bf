package webhook

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/DFXswiss/dfx-gateway/internal/app/service/order"
	"github.com/DFXswiss/dfx-gateway/internal/app/service/reconcile"
	"github.com/DFXswiss/dfx-gateway/internal/models"
	"github.com/DFXswiss/dfx-gateway/internal/platform/lock"
	cfgpkg "github.com/DFXswiss/dfx-gateway/pkg/config"
)

type stubVerifier struct{ ok bool }

func (s stubVerifier) Verify(_ []byte, _ string, _ string) bool { return s.ok }

type stubNotifLog struct{}

func (stubNotifLog) Save(_ context.Context, _ *models.PaymentNotificationLog) {}

type staticConfig struct{ cfg cfgpkg.GatewayConfig }

func (s staticConfig) GatewayConfig() cfgpkg.GatewayConfig { return s.cfg }

func testGatewayConfig() cfgpkg.GatewayConfig {
	return cfgpkg.GatewayConfig{
		Enabled:      true,
		RouteID:      "16760",
		PublicKeyPEM: "irrelevant for stub",
		StoreTimeout: 5 * time.Second,
	}
}

func newTestHandler(store order.Store, cfg cfgpkg.GatewayConfig, sigOK bool) *Handler {
	log := zap.NewNop().Sugar()
	return NewHandler(
		staticConfig{cfg: cfg},
		stubVerifier{ok: sigOK},
		reconcile.NewEngine(),
		store,
		lock.NewMemoryLocker(),
		NewTransitioner(store, log),
		stubNotifLog{},
		log,
	)
}

func pendingOrder() *models.Order {
	return &models.Order{
		ID:       482,
		Status:   models.OrderStatusPending,
		Total:    decimal.RequireFromString("100.00"),
		Currency: "EUR",
	}
}

func webhookBody(status, amount, curr string) []byte {
	return []byte(`{"externalId":"482/xyz","routeId":"16760","payment":{"status":"` +
		status + `","amount":` + amount + `,"currency":"` + curr + `"}}`)
}

func handle(h *Handler, body []byte) *Outcome {
	return h.Handle(context.Background(), &Request{
		Body:       body,
		Signature:  "c2ln",
		ReceivedAt: time.Now(),
	})
}

func TestHandle_CompletedTransitionsOrder(t *testing.T) {
	store := order.NewMemoryStore()
	store.Put(pendingOrder())
	h := newTestHandler(store, testGatewayConfig(), true)

	out := handle(h, webhookBody("Completed", "100.00", "EUR"))
	require.Equal(t, OutcomeApplied, out.Kind)
	require.Equal(t, 200, out.HTTPStatus())

	o, err := store.Get(context.Background(), 482)
	require.NoError(t, err)
	require.Equal(t, models.OrderStatusProcessing, o.Status)
	require.Contains(t, store.Notes(482), "Payment completed on DFX. Order is being prepared for shipping.")
}

func TestHandle_Idempotence(t *testing.T) {
	store := order.NewMemoryStore()
	store.Put(pendingOrder())
	h := newTestHandler(store, testGatewayConfig(), true)
	body := webhookBody("Completed", "100.00", "EUR")

	first := handle(h, body)
	require.Equal(t, OutcomeApplied, first.Kind)

	second := handle(h, body)
	require.Equal(t, OutcomeAlreadyProcessed, second.Kind)
	require.Equal(t, 200, second.HTTPStatus(), "redelivery must be acked so the sender stops retrying")

	o, err := store.Get(context.Background(), 482)
	require.NoError(t, err)
	require.Equal(t, models.OrderStatusProcessing, o.Status)
}

func TestHandle_ConcurrentDuplicatesApplyOnce(t *testing.T) {
	store := order.NewMemoryStore()
	store.Put(pendingOrder())
	h := newTestHandler(store, testGatewayConfig(), true)
	body := webhookBody("Completed", "100.00", "EUR")

	const deliveries = 8
	outcomes := make([]*Outcome, deliveries)
	var wg sync.WaitGroup
	for i := 0; i < deliveries; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			outcomes[i] = handle(h, body)
		}(i)
	}
	wg.Wait()

	applied := 0
	for _, out := range outcomes {
		require.True(t, out.Accepted())
		if out.Kind == OutcomeApplied {
			applied++
		}
	}
	require.Equal(t, 1, applied, "exactly one delivery may apply the transition")

	terminalNotes := 0
	for _, n := range store.Notes(482) {
		if n == "Payment completed on DFX. Order is being prepared for shipping." {
			terminalNotes++
		}
	}
	require.Equal(t, 1, terminalNotes)
}

func TestHandle_SignatureFailure(t *testing.T) {
	store := order.NewMemoryStore()
	store.Put(pendingOrder())
	h := newTestHandler(store, testGatewayConfig(), false)

	out := handle(h, webhookBody("Completed", "100.00", "EUR"))
	require.Equal(t, OutcomeSignatureInvalid, out.Kind)
	require.Equal(t, 401, out.HTTPStatus())

	o, _ := store.Get(context.Background(), 482)
	require.Equal(t, models.OrderStatusPending, o.Status)
}

func TestHandle_RouteMismatchRejectedDespiteValidSignature(t *testing.T) {
	store := order.NewMemoryStore()
	store.Put(pendingOrder())
	h := newTestHandler(store, testGatewayConfig(), true)

	body := []byte(`{"externalId":"482/xyz","routeId":"99999","payment":{"status":"Completed","amount":100.00,"currency":"EUR"}}`)
	out := handle(h, body)
	require.Equal(t, OutcomeRouteMismatch, out.Kind)
	require.Equal(t, 400, out.HTTPStatus())

	o, _ := store.Get(context.Background(), 482)
	require.Equal(t, models.OrderStatusPending, o.Status)
	require.Empty(t, store.Notes(482), "foreign-route webhooks must not touch the order")
}

func TestHandle_OrderNotFound(t *testing.T) {
	h := newTestHandler(order.NewMemoryStore(), testGatewayConfig(), true)

	out := handle(h, webhookBody("Completed", "100.00", "EUR"))
	require.Equal(t, OutcomeOrderNotFound, out.Kind)
	require.Equal(t, 404, out.HTTPStatus())
}

func TestHandle_AmountMismatchAuditsBothValues(t *testing.T) {
	store := order.NewMemoryStore()
	store.Put(pendingOrder())
	h := newTestHandler(store, testGatewayConfig(), true)

	out := handle(h, webhookBody("Completed", "99.99", "EUR"))
	require.Equal(t, OutcomeAmountMismatch, out.Kind)
	require.Equal(t, 400, out.HTTPStatus())

	o, _ := store.Get(context.Background(), 482)
	require.Equal(t, models.OrderStatusPending, o.Status)

	notes := store.Notes(482)
	require.Len(t, notes, 1)
	require.Contains(t, notes[0], "100")
	require.Contains(t, notes[0], "99.99")
}

func TestHandle_CurrencyCaseInsensitive(t *testing.T) {
	store := order.NewMemoryStore()
	store.Put(pendingOrder())
	h := newTestHandler(store, testGatewayConfig(), true)

	out := handle(h, webhookBody("Completed", "100.00", "eur"))
	require.Equal(t, OutcomeApplied, out.Kind)
}

func TestHandle_CurrencyMismatchAuditsBothValues(t *testing.T) {
	store := order.NewMemoryStore()
	store.Put(pendingOrder())
	h := newTestHandler(store, testGatewayConfig(), true)

	out := handle(h, webhookBody("Completed", "100.00", "USD"))
	require.Equal(t, OutcomeCurrencyMismatch, out.Kind)

	notes := store.Notes(482)
	require.Len(t, notes, 1)
	require.Contains(t, notes[0], "EUR")
	require.Contains(t, notes[0], "USD")
}

func TestHandle_UnknownStatusIsAuditedNoOp(t *testing.T) {
	store := order.NewMemoryStore()
	store.Put(pendingOrder())
	h := newTestHandler(store, testGatewayConfig(), true)

	out := handle(h, webhookBody("Refunded", "100.00", "EUR"))
	require.Equal(t, OutcomeAccepted, out.Kind)
	require.Equal(t, 200, out.HTTPStatus())

	o, _ := store.Get(context.Background(), 482)
	require.Equal(t, models.OrderStatusPending, o.Status)

	notes := store.Notes(482)
	require.Len(t, notes, 1)
	require.Contains(t, notes[0], "Refunded")
}

func TestHandle_PendingStatusLeavesOrderUntouched(t *testing.T) {
	store := order.NewMemoryStore()
	store.Put(pendingOrder())
	h := newTestHandler(store, testGatewayConfig(), true)

	out := handle(h, webhookBody("Pending", "100.00", "EUR"))
	require.Equal(t, OutcomeAccepted, out.Kind)
	require.Empty(t, store.Notes(482))
}

func TestHandle_MalformedPayload(t *testing.T) {
	h := newTestHandler(order.NewMemoryStore(), testGatewayConfig(), true)

	out := handle(h, []byte(`{"externalId":`))
	require.Equal(t, OutcomeBadPayload, out.Kind)
	require.Equal(t, 400, out.HTTPStatus())
}

func TestHandle_GatewayDisabled(t *testing.T) {
	cfg := testGatewayConfig()
	cfg.Enabled = false
	h := newTestHandler(order.NewMemoryStore(), cfg, true)

	out := handle(h, webhookBody("Completed", "100.00", "EUR"))
	require.Equal(t, OutcomeGatewayDisabled, out.Kind)
	require.Equal(t, 503, out.HTTPStatus())
}

func TestHandle_AlreadyProcessedSkipsAmountValidation(t *testing.T) {
	store := order.NewMemoryStore()
	o := pendingOrder()
	o.Status = models.OrderStatusProcessing
	store.Put(o)
	h := newTestHandler(store, testGatewayConfig(), true)

	// wrong amount and currency, but the idempotent no-op short-circuits first
	out := handle(h, webhookBody("Completed", "1.00", "USD"))
	require.Equal(t, OutcomeAlreadyProcessed, out.Kind)
	require.Equal(t, 200, out.HTTPStatus())
}
