package webhook

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/samber/lo"
	"go.uber.org/zap"
	"gorm.io/datatypes"

	"github.com/DFXswiss/dfx-gateway/internal/app/service/order"
	"github.com/DFXswiss/dfx-gateway/internal/app/service/reconcile"
	"github.com/DFXswiss/dfx-gateway/internal/models"
	"github.com/DFXswiss/dfx-gateway/internal/platform/dfx/notification"
	"github.com/DFXswiss/dfx-gateway/internal/platform/dfx/signature"
	"github.com/DFXswiss/dfx-gateway/internal/platform/lock"
	cfgpkg "github.com/DFXswiss/dfx-gateway/pkg/config"
	"github.com/DFXswiss/dfx-gateway/pkg/logctx"
	"github.com/DFXswiss/dfx-gateway/pkg/types"
)

// NotificationLogger persists webhook delivery records for forensics.
type NotificationLogger interface {
	Save(ctx context.Context, log *models.PaymentNotificationLog)
}

// Handler drives one webhook request through verify, parse, reconcile and
// apply, and maps the result onto an Outcome. Rejection detail goes to the
// operator log and the order notes, never to the caller.
type Handler struct {
	gwcfg        cfgpkg.GatewayProvider
	verifier     signature.Verifier
	engine       *reconcile.Engine
	orders       order.Store
	locker       lock.OrderLocker
	transitioner *Transitioner
	notifSvc     NotificationLogger
	Logger       *zap.SugaredLogger
}

func NewHandler(
	gwcfg cfgpkg.GatewayProvider,
	verifier signature.Verifier,
	engine *reconcile.Engine,
	orders order.Store,
	locker lock.OrderLocker,
	transitioner *Transitioner,
	notifSvc NotificationLogger,
	log *zap.SugaredLogger,
) *Handler {
	return &Handler{
		gwcfg:        gwcfg,
		verifier:     verifier,
		engine:       engine,
		orders:       orders,
		locker:       locker,
		transitioner: transitioner,
		notifSvc:     notifSvc,
		Logger:       log,
	}
}

// Handle always runs to a terminal outcome once entered; an abandoned webhook
// is indistinguishable from a lost one on the sender side.
func (h *Handler) Handle(ctx context.Context, req *Request) (out *Outcome) {
	// gateway config is read once and held for the whole request
	cfg := h.gwcfg.GatewayConfig()
	log := logctx.FromCtx(ctx, h.Logger)

	traceID, _ := ctx.Value("traceID").(string)
	h.notifSvc.Save(ctx, &models.PaymentNotificationLog{
		ProviderID:       string(types.PaymentProviderDFX),
		TraceID:          traceID,
		NotificationTime: req.ReceivedAt,
		Data:             payloadJSON(req.Body),
		Status:           models.PaymentNotificationLogStatusReceived,
	})

	var externalID string
	defer func() {
		status := models.PaymentNotificationLogStatusHandled
		if !out.Accepted() {
			status = models.PaymentNotificationLogStatusRejected
		}
		resMap := map[string]any{"outcome": out.Kind}
		if out.Err != nil {
			resMap["error"] = out.Err.Error()
		}
		resBytes, _ := json.Marshal(resMap)
		var orderID *int64
		if out.OrderID != 0 {
			orderID = lo.ToPtr(out.OrderID)
		}
		h.notifSvc.Save(ctx, &models.PaymentNotificationLog{
			ProviderID:       string(types.PaymentProviderDFX),
			TraceID:          traceID,
			ExternalID:       externalID,
			OrderID:          orderID,
			NotificationTime: time.Now(),
			Data:             payloadJSON(req.Body),
			Result:           lo.ToPtr(datatypes.JSON(resBytes)),
			Status:           status,
		})
	}()

	if !cfg.Enabled {
		log.Errorw("webhook_rejected_gateway_disabled")
		return &Outcome{Kind: OutcomeGatewayDisabled}
	}

	if !h.verifier.Verify(req.Body, req.Signature, cfg.PublicKeyPEM) {
		log.Errorw("webhook_signature_verification_failed")
		return &Outcome{Kind: OutcomeSignatureInvalid}
	}

	n, err := notification.Parse(req.Body)
	if err != nil {
		log.Errorw("webhook_payload_invalid", "error", err.Error())
		return &Outcome{Kind: OutcomeBadPayload, Err: err}
	}
	externalID = n.ExternalID
	log = log.With("order_id", n.OrderID, "external_id", n.ExternalID)

	// the order store is the only I/O; bound it so the sender gets a
	// retryable response instead of a hung connection
	sctx, cancel := context.WithTimeout(ctx, storeTimeout(cfg))
	defer cancel()

	// exclusive per-order section: nothing else may pass the idempotency gate
	// between our read and our write
	release, err := h.locker.Lock(sctx, n.OrderID)
	if err != nil {
		log.Errorw("webhook_order_lock_failed", "error", err.Error())
		return &Outcome{Kind: OutcomeStoreUnavailable, OrderID: n.OrderID, Err: err}
	}
	defer release()

	ord, err := h.orders.Get(sctx, n.OrderID)
	if err != nil && !errors.Is(err, order.ErrNotFound) {
		log.Errorw("webhook_order_load_failed", "error", err.Error())
		return &Outcome{Kind: OutcomeStoreUnavailable, OrderID: n.OrderID, Err: err}
	}

	tr, rerr := h.engine.Reconcile(n, ord, cfg)
	if rerr != nil {
		return h.rejectionOutcome(sctx, log, n, rerr)
	}

	ack, err := h.transitioner.Apply(sctx, ord, tr)
	if err != nil {
		log.Errorw("webhook_apply_failed", "error", err.Error())
		return &Outcome{Kind: OutcomeStoreUnavailable, OrderID: n.OrderID, Err: err}
	}
	if tr.Terminal && !ack.Changed {
		// a concurrent delivery won the compare-and-swap
		log.Infow("webhook_duplicate_delivery_ignored")
		return &Outcome{Kind: OutcomeAlreadyProcessed, OrderID: n.OrderID}
	}
	if tr.Terminal {
		log.Infow("webhook_transition_applied", "to", tr.To)
		return &Outcome{Kind: OutcomeApplied, OrderID: n.OrderID}
	}
	log.Infow("webhook_accepted_noop", "status", n.RawStatus)
	return &Outcome{Kind: OutcomeAccepted, OrderID: n.OrderID}
}

func (h *Handler) rejectionOutcome(ctx context.Context, log *zap.SugaredLogger, n *notification.PaymentNotification, rerr error) *Outcome {
	var amountErr *reconcile.AmountMismatchError
	var currencyErr *reconcile.CurrencyMismatchError

	switch {
	case errors.Is(rerr, reconcile.ErrRouteMismatch):
		// the webhook may belong to another merchant; do not touch the order
		log.Errorw("webhook_route_mismatch", "received_route_id", n.RouteID)
		return &Outcome{Kind: OutcomeRouteMismatch, OrderID: n.OrderID, Err: rerr}

	case errors.Is(rerr, reconcile.ErrOrderNotFound):
		log.Errorw("webhook_order_not_found")
		return &Outcome{Kind: OutcomeOrderNotFound, OrderID: n.OrderID, Err: rerr}

	case errors.Is(rerr, reconcile.ErrAlreadyProcessed):
		log.Infow("webhook_order_already_processed")
		h.transitioner.RecordRejection(ctx, n.OrderID,
			"DFX webhook received for already-processed order; ignored.")
		return &Outcome{Kind: OutcomeAlreadyProcessed, OrderID: n.OrderID}

	case errors.As(rerr, &amountErr):
		log.Errorw("webhook_amount_mismatch",
			"expected_amount", amountErr.Expected.String(),
			"received_amount", amountErr.Received.String())
		h.transitioner.RecordRejection(ctx, n.OrderID,
			"DFX payment amount mismatch. Expected: "+amountErr.Expected.String()+
				", Received: "+amountErr.Received.String())
		return &Outcome{Kind: OutcomeAmountMismatch, OrderID: n.OrderID, Err: rerr}

	case errors.As(rerr, &currencyErr):
		log.Errorw("webhook_currency_mismatch",
			"expected_currency", currencyErr.Expected,
			"received_currency", currencyErr.Received)
		h.transitioner.RecordRejection(ctx, n.OrderID,
			"DFX payment currency mismatch. Expected: "+currencyErr.Expected+
				", Received: "+currencyErr.Received)
		return &Outcome{Kind: OutcomeCurrencyMismatch, OrderID: n.OrderID, Err: rerr}
	}

	log.Errorw("webhook_reconcile_failed", "error", rerr.Error())
	return &Outcome{Kind: OutcomeStoreUnavailable, OrderID: n.OrderID, Err: rerr}
}

func storeTimeout(cfg cfgpkg.GatewayConfig) time.Duration {
	if cfg.StoreTimeout > 0 {
		return cfg.StoreTimeout
	}
	return 10 * time.Second
}

// payloadJSON keeps the raw body when it is valid JSON and falls back to a
// quoted string otherwise, so the jsonb column accepts it either way.
func payloadJSON(body []byte) datatypes.JSON {
	if json.Valid(body) {
		return datatypes.JSON(body)
	}
	quoted, _ := json.Marshal(string(body))
	return datatypes.JSON(quoted)
}
