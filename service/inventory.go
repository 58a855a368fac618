package service

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/BerniceZTT/prep_end/models"
	"github.com/BerniceZTT/prep_end/utils"
)

// ErrSaveInProgress 已有保存操作进行中
var ErrSaveInProgress = errors.New("盘点保存进行中")

// StockGateway 盘点保存依赖的远端网关能力
type StockGateway interface {
	UpdateStockQuantity(ctx context.Context, ingredientID string, payload models.StockQuantityUpdate) error
}

// InventoryStore 盘点待保存修改的进程级存储，单写者，内部互斥
type InventoryStore struct {
	mu      sync.Mutex
	gw      StockGateway
	pending map[string]models.PendingStockUpdate
	saving  bool
}

// NewInventoryStore 创建盘点存储
func NewInventoryStore(gw StockGateway) *InventoryStore {
	return &InventoryStore{
		gw:      gw,
		pending: make(map[string]models.PendingStockUpdate),
	}
}

// AddPendingUpdate 记录一条待保存的盘点修改，同一食材后写覆盖先写
func (s *InventoryStore) AddPendingUpdate(ingredientID string, quantity models.QuantityBreakdown, updatedBy string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.pending[ingredientID] = models.PendingStockUpdate{
		IngredientID:      ingredientID,
		RemainingQuantity: quantity,
		UpdatedBy:         updatedBy,
	}
}

// Pending 待保存修改快照
func (s *InventoryStore) Pending() []models.PendingStockUpdate {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]models.PendingStockUpdate, 0, len(s.pending))
	for _, update := range s.pending {
		out = append(out, update)
	}
	return out
}

// PendingCount 待保存修改条数
func (s *InventoryStore) PendingCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.pending)
}

// Clear 丢弃全部待保存修改
func (s *InventoryStore) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.pending = make(map[string]models.PendingStockUpdate)
}

// SaveAll 并发保存全部待保存修改
// 任一条失败则保留全部待保存修改并返回错误，全部成功后才清空
func (s *InventoryStore) SaveAll(ctx context.Context) error {
	s.mu.Lock()
	if s.saving {
		s.mu.Unlock()
		return ErrSaveInProgress
	}
	if len(s.pending) == 0 {
		s.mu.Unlock()
		return nil
	}
	s.saving = true
	updates := make([]models.PendingStockUpdate, 0, len(s.pending))
	for _, update := range s.pending {
		updates = append(updates, update)
	}
	s.mu.Unlock()

	var wg sync.WaitGroup
	var errMu sync.Mutex
	var errs []error

	for _, update := range updates {
		wg.Add(1)
		go func(update models.PendingStockUpdate) {
			defer wg.Done()
			err := s.gw.UpdateStockQuantity(ctx, update.IngredientID, models.StockQuantityUpdate{
				RemainingQuantity: update.RemainingQuantity,
				UpdatedBy:         update.UpdatedBy,
				Notes:             "Physical count updated",
			})
			if err != nil {
				errMu.Lock()
				errs = append(errs, fmt.Errorf("保存 %s 失败: %w", update.IngredientID, err))
				errMu.Unlock()
			}
		}(update)
	}
	wg.Wait()

	s.mu.Lock()
	defer s.mu.Unlock()
	s.saving = false

	if len(errs) > 0 {
		utils.LogError(errors.Join(errs...), map[string]interface{}{
			"total":  len(updates),
			"failed": len(errs),
		}, "盘点保存部分失败，保留待保存修改")
		return errors.Join(errs...)
	}

	s.pending = make(map[string]models.PendingStockUpdate)
	utils.LogInfo(map[string]interface{}{"saved": len(updates)}, "盘点保存完成")
	return nil
}
