package order

import (
	"context"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"github.com/DFXswiss/dfx-gateway/internal/models"
)

func TestMemoryStore_UpdateStatusCAS(t *testing.T) {
	s := NewMemoryStore()
	s.Put(&models.Order{ID: 1, Status: models.OrderStatusPending, Total: decimal.New(100, 0), Currency: "EUR"})

	ctx := context.Background()

	changed, err := s.UpdateStatus(ctx, 1, models.OrderStatusPending, models.OrderStatusProcessing, "paid")
	require.NoError(t, err)
	require.True(t, changed)

	// second swap from pending must miss
	changed, err = s.UpdateStatus(ctx, 1, models.OrderStatusPending, models.OrderStatusCancelled, "late cancel")
	require.NoError(t, err)
	require.False(t, changed)

	o, err := s.Get(ctx, 1)
	require.NoError(t, err)
	require.Equal(t, models.OrderStatusProcessing, o.Status)
	require.Equal(t, []string{"paid"}, s.Notes(1))
}

func TestMemoryStore_GetUnknownOrder(t *testing.T) {
	s := NewMemoryStore()
	_, err := s.Get(context.Background(), 99)
	require.ErrorIs(t, err, ErrNotFound)
}

func TestMemoryStore_GetReturnsCopy(t *testing.T) {
	s := NewMemoryStore()
	s.Put(&models.Order{ID: 2, Status: models.OrderStatusPending})

	o, err := s.Get(context.Background(), 2)
	require.NoError(t, err)
	o.Status = models.OrderStatusFailed

	again, err := s.Get(context.Background(), 2)
	require.NoError(t, err)
	require.Equal(t, models.OrderStatusPending, again.Status)
}
