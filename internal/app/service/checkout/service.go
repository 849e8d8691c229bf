package checkout

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strconv"
	"time"

	"go.uber.org/fx"
	"go.uber.org/zap"

	"github.com/DFXswiss/dfx-gateway/internal/app/service/order"
	"github.com/DFXswiss/dfx-gateway/internal/models"
	cfgpkg "github.com/DFXswiss/dfx-gateway/pkg/config"
	"github.com/DFXswiss/dfx-gateway/pkg/logctx"
)

var (
	ErrGatewayDisabled = errors.New("gateway is disabled")
	// ErrRouteNotConfigured mirrors the checkout-time guard: without a route id
	// the payment page cannot attribute the payment to this merchant.
	ErrRouteNotConfigured = errors.New("route id is not configured")
	ErrOrderNotPayable    = errors.New("order is not awaiting payment")
)

const awaitingPaymentNote = "Awaiting DFX payment."

// expiryDateFormat is the timestamp shape the DFX payment page expects.
const expiryDateFormat = "2006-01-02T15:04:05Z"

// Service builds the outbound redirect to the DFX payment page for an order
// that is awaiting payment.
type Service struct {
	gwcfg  cfgpkg.GatewayProvider
	orders order.Store
	log    *zap.SugaredLogger
	now    func() time.Time
}

func NewService(gwcfg cfgpkg.GatewayProvider, orders order.Store, log *zap.SugaredLogger) *Service {
	return &Service{gwcfg: gwcfg, orders: orders, log: log, now: time.Now}
}

// BuildPayURL validates the order, records the awaiting-payment note, and
// returns the payment page URL carrying route id, order reference, amount,
// expiry, webhook callback and return URL.
func (s *Service) BuildPayURL(ctx context.Context, orderID int64, redirectURI string) (string, error) {
	cfg := s.gwcfg.GatewayConfig()
	if !cfg.Enabled {
		return "", ErrGatewayDisabled
	}
	if cfg.RouteID == "" {
		return "", ErrRouteNotConfigured
	}

	ord, err := s.orders.Get(ctx, orderID)
	if err != nil {
		return "", err
	}
	if ord.Status != models.OrderStatusPending {
		return "", ErrOrderNotPayable
	}

	if err := s.orders.AppendNote(ctx, orderID, awaitingPaymentNote); err != nil {
		return "", err
	}

	base, err := url.Parse(cfg.PayBaseURL)
	if err != nil {
		return "", fmt.Errorf("invalid pay base url: %w", err)
	}

	window := cfg.ExpiryWindow
	if window <= 0 {
		window = time.Hour
	}
	expiry := s.now().UTC().Add(window).Format(expiryDateFormat)

	q := url.Values{}
	q.Set("routeId", cfg.RouteID)
	q.Set("message", strconv.FormatInt(orderID, 10))
	q.Set("amount", ord.Total.String())
	q.Set("expiryDate", expiry)
	q.Set("webhookUrl", cfg.WebhookURL)
	q.Set("redirect-uri", redirectURI)
	base.RawQuery = q.Encode()

	logctx.FromCtx(ctx, s.log).Infow("checkout_redirect_built",
		"order_id", orderID, "route_id", cfg.RouteID, "expiry", expiry)
	return base.String(), nil
}

var Module = fx.Options(
	fx.Provide(NewService),
)
