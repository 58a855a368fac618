package service

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/BerniceZTT/prep_end/models"
)

// fakeStockGateway 盘点网关桩
type fakeStockGateway struct {
	mu      sync.Mutex
	saved   map[string]models.StockQuantityUpdate
	failIDs map[string]error
	gate    chan struct{}
}

func newFakeStockGateway() *fakeStockGateway {
	return &fakeStockGateway{
		saved:   make(map[string]models.StockQuantityUpdate),
		failIDs: make(map[string]error),
	}
}

func (f *fakeStockGateway) UpdateStockQuantity(_ context.Context, ingredientID string, payload models.StockQuantityUpdate) error {
	if f.gate != nil {
		<-f.gate
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	if err, ok := f.failIDs[ingredientID]; ok {
		return err
	}
	f.saved[ingredientID] = payload
	return nil
}

func TestAddPendingUpdateLastWriteWins(t *testing.T) {
	store := NewInventoryStore(newFakeStockGateway())

	store.AddPendingUpdate("ing-1", models.QuantityBreakdown{Boxes: 1}, "alice")
	store.AddPendingUpdate("ing-2", models.QuantityBreakdown{Bags: 2}, "alice")
	store.AddPendingUpdate("ing-1", models.QuantityBreakdown{Boxes: 3, Each: 5}, "bob")

	assert.Equal(t, 2, store.PendingCount(), "同一食材后写覆盖先写")

	var found *models.PendingStockUpdate
	for _, update := range store.Pending() {
		if update.IngredientID == "ing-1" {
			u := update
			found = &u
		}
	}
	require.NotNil(t, found)
	assert.Equal(t, models.QuantityBreakdown{Boxes: 3, Each: 5}, found.RemainingQuantity)
	assert.Equal(t, "bob", found.UpdatedBy)

	store.Clear()
	assert.Zero(t, store.PendingCount())
}

func TestSaveAllSuccessClearsPending(t *testing.T) {
	gw := newFakeStockGateway()
	store := NewInventoryStore(gw)

	store.AddPendingUpdate("ing-1", models.QuantityBreakdown{Boxes: 1}, "alice")
	store.AddPendingUpdate("ing-2", models.QuantityBreakdown{Bags: 2}, "alice")

	require.NoError(t, store.SaveAll(context.Background()))
	assert.Zero(t, store.PendingCount(), "全部成功后清空")

	gw.mu.Lock()
	defer gw.mu.Unlock()
	require.Len(t, gw.saved, 2)
	assert.Equal(t, "Physical count updated", gw.saved["ing-1"].Notes)
	assert.Equal(t, models.QuantityBreakdown{Bags: 2}, gw.saved["ing-2"].RemainingQuantity)
}

func TestSaveAllFailurePreservesPending(t *testing.T) {
	gw := newFakeStockGateway()
	gw.failIDs["ing-2"] = errors.New("gateway down")
	store := NewInventoryStore(gw)

	store.AddPendingUpdate("ing-1", models.QuantityBreakdown{Boxes: 1}, "alice")
	store.AddPendingUpdate("ing-2", models.QuantityBreakdown{Bags: 2}, "alice")

	err := store.SaveAll(context.Background())
	require.Error(t, err)
	assert.Equal(t, 2, store.PendingCount(), "任一条失败则保留全部待保存修改")

	// 失败后允许重试
	gw.mu.Lock()
	delete(gw.failIDs, "ing-2")
	gw.mu.Unlock()
	require.NoError(t, store.SaveAll(context.Background()))
	assert.Zero(t, store.PendingCount())
}

func TestSaveAllEmptyIsNoop(t *testing.T) {
	gw := newFakeStockGateway()
	store := NewInventoryStore(gw)

	require.NoError(t, store.SaveAll(context.Background()))
	gw.mu.Lock()
	defer gw.mu.Unlock()
	assert.Empty(t, gw.saved)
}

func TestSaveAllRejectsConcurrentSave(t *testing.T) {
	gw := newFakeStockGateway()
	gw.gate = make(chan struct{})
	store := NewInventoryStore(gw)

	store.AddPendingUpdate("ing-1", models.QuantityBreakdown{Boxes: 1}, "alice")

	done := make(chan error, 1)
	go func() {
		done <- store.SaveAll(context.Background())
	}()

	// 第一次保存被网关卡住期间，第二次保存必须被拒绝
	assert.Eventually(t, func() bool {
		return errors.Is(store.SaveAll(context.Background()), ErrSaveInProgress)
	}, time.Second, 5*time.Millisecond)

	close(gw.gate)
	require.NoError(t, <-done)
	assert.Zero(t, store.PendingCount())
}
