package webhook

import (
	"context"

	"go.uber.org/zap"

	"github.com/DFXswiss/dfx-gateway/internal/app/service/order"
	"github.com/DFXswiss/dfx-gateway/internal/app/service/reconcile"
	"github.com/DFXswiss/dfx-gateway/internal/models"
	"github.com/DFXswiss/dfx-gateway/pkg/logctx"
)

// Ack is the result of applying a transition.
type Ack struct {
	// Changed is false when the compare-and-swap found the order already
	// moved out of awaiting-payment by a concurrent delivery.
	Changed bool
}

// Transitioner applies exactly the transition the engine computed, never one
// of its own, and records the audit note alongside.
type Transitioner struct {
	orders order.Store
	log    *zap.SugaredLogger
}

func NewTransitioner(orders order.Store, log *zap.SugaredLogger) *Transitioner {
	return &Transitioner{orders: orders, log: log}
}

// Apply writes a terminal transition via compare-and-swap from the pending
// state, so a terminal order is never reverted or double-moved. No-op
// transitions only append their note, if any.
func (t *Transitioner) Apply(ctx context.Context, ord *models.Order, tr *reconcile.Transition) (*Ack, error) {
	if tr.Terminal {
		changed, err := t.orders.UpdateStatus(ctx, ord.ID, models.OrderStatusPending, tr.To, tr.Note)
		if err != nil {
			return nil, err
		}
		return &Ack{Changed: changed}, nil
	}
	if tr.Note != "" {
		if err := t.orders.AppendNote(ctx, ord.ID, tr.Note); err != nil {
			return nil, err
		}
	}
	return &Ack{}, nil
}

// RecordRejection appends a forensic note for a rejected-but-attributable
// webhook. A note that cannot be written is logged, not fatal; the rejection
// response stands either way.
func (t *Transitioner) RecordRejection(ctx context.Context, orderID int64, note string) {
	if err := t.orders.AppendNote(ctx, orderID, note); err != nil {
		logctx.FromCtx(ctx, t.log).Errorw("failed to append rejection note",
			"order_id", orderID, "note", note, "error", err.Error())
	}
}
