package order

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/DFXswiss/dfx-gateway/internal/models"
	"github.com/DFXswiss/dfx-gateway/pkg/logctx"
	"github.com/DFXswiss/dfx-gateway/pkg/tool"
)

var ErrNotFound = errors.New("order not found")

// Store is the order collaborator the gateway core runs against. Any backend
// works as long as UpdateStatus is a compare-and-swap: the write succeeds only
// when the order is still in the expected state, which is what makes redelivered
// webhooks safe even across replicas.
type Store interface {
	Get(ctx context.Context, id int64) (*models.Order, error)
	// UpdateStatus moves the order from `from` to `to` and appends note in the
	// same transaction. It reports false when the order was no longer in `from`.
	UpdateStatus(ctx context.Context, id int64, from, to models.OrderStatus, note string) (bool, error)
	// AppendNote attaches an audit note without touching status.
	AppendNote(ctx context.Context, id int64, note string) error
}

type GormStore struct {
	db  *gorm.DB
	log *zap.SugaredLogger
}

func NewGormStore(db *gorm.DB, log *zap.SugaredLogger) *GormStore {
	return &GormStore{db: db, log: log}
}

func (s *GormStore) Get(ctx context.Context, id int64) (*models.Order, error) {
	var o models.Order
	err := s.db.WithContext(ctx).First(&o, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("load order %d: %w", id, err)
	}
	return &o, nil
}

func (s *GormStore) UpdateStatus(ctx context.Context, id int64, from, to models.OrderStatus, note string) (bool, error) {
	changed := false
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Model(&models.Order{}).
			Where("id = ? AND status = ?", id, from).
			Update("status", to)
		if res.Error != nil {
			return res.Error
		}
		changed = res.RowsAffected == 1
		if changed && note != "" {
			return tx.Create(&models.OrderNote{
				ID:      tool.GenerateUUIDV7(),
				OrderID: id,
				Note:    note,
			}).Error
		}
		return nil
	})
	if err != nil {
		return false, fmt.Errorf("update order %d status: %w", id, err)
	}
	if !changed {
		logctx.FromCtx(ctx, s.log).Infow("order status cas missed", "order_id", id, "from", from, "to", to)
	}
	return changed, nil
}

func (s *GormStore) AppendNote(ctx context.Context, id int64, note string) error {
	err := s.db.WithContext(ctx).Create(&models.OrderNote{
		ID:      tool.GenerateUUIDV7(),
		OrderID: id,
		Note:    note,
	}).Error
	if err != nil {
		return fmt.Errorf("append note to order %d: %w", id, err)
	}
	return nil
}
