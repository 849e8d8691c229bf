package reconcile

import (
	"errors"
	"fmt"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/DFXswiss/dfx-gateway/internal/models"
	"github.com/DFXswiss/dfx-gateway/internal/platform/dfx/notification"
	cfgpkg "github.com/DFXswiss/dfx-gateway/pkg/config"
)

var (
	// ErrRouteMismatch: the signature authenticates the sender, not that the
	// webhook belongs to this merchant's route, so this gate exists separately.
	ErrRouteMismatch = errors.New("route id mismatch")
	ErrOrderNotFound = errors.New("order not found")
	// ErrAlreadyProcessed is not a failure: the order has already left the
	// awaiting-payment state and the redelivered webhook must be acked as a
	// no-op so the sender stops retrying. It short-circuits before the amount
	// and currency gates.
	ErrAlreadyProcessed = errors.New("order already processed")
)

// AmountMismatchError preserves both sides of a failed exact-amount comparison
// for the audit trail.
type AmountMismatchError struct {
	Expected decimal.Decimal
	Received decimal.Decimal
}

func (e *AmountMismatchError) Error() string {
	return fmt.Sprintf("payment amount mismatch: expected %s, received %s", e.Expected, e.Received)
}

type CurrencyMismatchError struct {
	Expected string
	Received string
}

func (e *CurrencyMismatchError) Error() string {
	return fmt.Sprintf("payment currency mismatch: expected %s, received %s", e.Expected, e.Received)
}

// Transition is the computed effect of an accepted notification.
// A nil To with an empty Note is a pure no-op (payment still pending).
type Transition struct {
	To       models.OrderStatus
	Note     string
	Terminal bool
}

// NoOp reports whether the transition leaves the order status untouched.
func (t *Transition) NoOp() bool { return !t.Terminal }

// Engine validates a parsed notification against the referenced order and the
// gateway configuration. It is pure: no I/O, no clock, no logging.
type Engine struct{}

func NewEngine() *Engine { return &Engine{} }

// Reconcile runs the validation gates in order, first failure wins:
// route match, order existence, idempotency guard, exact amount, currency.
// ord may be nil when the parsed order id resolved to nothing; the route gate
// still runs first so a mismatched webhook never leaks order existence.
func (e *Engine) Reconcile(n *notification.PaymentNotification, ord *models.Order, cfg cfgpkg.GatewayConfig) (*Transition, error) {
	if cfg.RouteID == "" || cfg.RouteID != n.RouteID {
		return nil, ErrRouteMismatch
	}
	if ord == nil {
		return nil, ErrOrderNotFound
	}
	if ord.Status != models.OrderStatusPending {
		return nil, ErrAlreadyProcessed
	}
	if !n.Amount.Equal(ord.Total) {
		return nil, &AmountMismatchError{Expected: ord.Total, Received: n.Amount}
	}
	if !strings.EqualFold(n.Currency, ord.Currency) {
		return nil, &CurrencyMismatchError{Expected: strings.ToUpper(ord.Currency), Received: n.Currency}
	}

	switch n.Status {
	case notification.PaymentStatusCompleted:
		return &Transition{
			To:       models.OrderStatusProcessing,
			Note:     "Payment completed on DFX. Order is being prepared for shipping.",
			Terminal: true,
		}, nil
	case notification.PaymentStatusCancelled:
		return &Transition{
			To:       models.OrderStatusCancelled,
			Note:     "Payment cancelled by DFX.",
			Terminal: true,
		}, nil
	case notification.PaymentStatusExpired:
		return &Transition{
			To:       models.OrderStatusFailed,
			Note:     "Payment expired on DFX.",
			Terminal: true,
		}, nil
	case notification.PaymentStatusPending:
		// still awaiting payment, nothing to record
		return &Transition{}, nil
	default:
		return &Transition{
			Note: fmt.Sprintf("Unknown DFX payment status received: %s", n.RawStatus),
		}, nil
	}
}
