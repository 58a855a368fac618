package service

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/BerniceZTT/prep_end/models"
	"github.com/BerniceZTT/prep_end/utils"
)

var (
	// ErrItemNotFound 条目不存在
	ErrItemNotFound = errors.New("食材条目不存在")
	// ErrQuantityLocked 当前阶段数量不可修改
	ErrQuantityLocked = errors.New("当前阶段数量不可修改")
	// ErrStageConflict 当前阶段不允许该操作
	ErrStageConflict = errors.New("当前阶段不允许该操作")
)

// gatewayCallTimeout 倒计时回调里发起网关请求时的超时
const gatewayCallTimeout = 10 * time.Second

// PrepGateway 备餐流程依赖的远端网关能力
type PrepGateway interface {
	IngredientForecasts(ctx context.Context, date string) (*models.ForecastResponse, error)
	UpdatePrepStatus(ctx context.Context, payload models.PrepStatusUpdate) (*models.PrepStatusResult, error)
	UpdateOnHand(ctx context.Context, ingredientID string, payload models.OnHandUpdate) error
	UpdateExpired(ctx context.Context, ingredientID string, payload models.ExpiredUpdate) error
	DeleteExpired(ctx context.Context, ingredientID string) error
	IngredientDetail(ctx context.Context, ingredientID, date string) (*models.IngredientDetail, error)
}

// PrepItem 单个备餐条目的本地状态
// Confirmed 为服务端确认的阶段，Provisional 为本地预估，渲染时预估优先
type PrepItem struct {
	ID                string              `json:"id"`
	IngredientID      string              `json:"ingredientId"`
	Name              string              `json:"name"`
	Category          models.PrepCategory `json:"category"`
	Unit              string              `json:"unit"`
	Quantity          int                 `json:"quantity"`
	PrepIntervalHours float64             `json:"prepIntervalHours"`
	Confirmed         models.PrepStatus   `json:"confirmedStatus"`
	Provisional       models.PrepStatus   `json:"provisionalStatus,omitempty"`
	CountdownActive   bool                `json:"countdownActive"`
	CountdownEndsAt   time.Time           `json:"countdownEndsAt,omitempty"`
}

// EffectiveStatus 界面生效的阶段，本地预估优先于服务端确认
func (it *PrepItem) EffectiveStatus() models.PrepStatus {
	if it.Provisional != "" {
		return it.Provisional
	}
	return it.Confirmed
}

// PrepAllResult 一次"全部开始备餐"广播的汇总
type PrepAllResult struct {
	Signal    int               `json:"signal"`
	Attempted int               `json:"attempted"`
	Started   int               `json:"started"`
	Failed    int               `json:"failed"`
	Errors    map[string]string `json:"errors,omitempty"`
}

// PrepService 备餐条目生命周期控制器
// 条目集合归属于当前加载的预测，重新加载即整体替换，服务端始终为最终数据源
type PrepService struct {
	mu        sync.Mutex
	gw        PrepGateway
	timers    *TimerService
	refresh   *RefreshSignal
	countdown time.Duration

	items         map[string]*PrepItem
	order         []string
	prepAllSignal int
}

// NewPrepService 创建备餐服务，countdown 传入 PrepCountdown
func NewPrepService(gw PrepGateway, countdown time.Duration, refresh *RefreshSignal) *PrepService {
	return &PrepService{
		gw:        gw,
		timers:    NewTimerService(),
		refresh:   refresh,
		countdown: countdown,
		items:     make(map[string]*PrepItem),
	}
}

// LoadItems 拉取指定日期的备餐预测并重建本地条目
// 旧条目（含进行中的倒计时）全部废弃，available 回到 to-prep 只会经由这里发生
func (s *PrepService) LoadItems(ctx context.Context, date string) ([]PrepItem, error) {
	resp, err := s.gw.IngredientForecasts(ctx, date)
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.timers.StopAll()
	s.items = make(map[string]*PrepItem)
	s.order = s.order[:0]

	for _, daypart := range resp.Forecasts {
		for _, ing := range daypart.Ingredients {
			if !ing.IsPrepItem {
				continue
			}
			if _, ok := s.items[ing.IngredientPrepForecastID]; ok {
				continue
			}
			item := &PrepItem{
				ID:                ing.IngredientPrepForecastID,
				IngredientID:      ing.IngredientID,
				Name:              ing.IngredientName,
				Category:          ing.Category,
				Unit:              ing.Units,
				Quantity:          ing.Quantity,
				PrepIntervalHours: ing.PrepIntervalHours,
				Confirmed:         ing.PrepStatus,
			}
			s.items[item.ID] = item
			s.order = append(s.order, item.ID)
		}
	}

	utils.LogInfo(map[string]interface{}{
		"date":  date,
		"count": len(s.order),
	}, "备餐条目加载完成")

	return s.snapshotLocked(""), nil
}

// Items 返回条目快照，category 为空时返回全部
func (s *PrepService) Items(category models.PrepCategory) []PrepItem {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.snapshotLocked(category)
}

// Item 返回单个条目快照
func (s *PrepService) Item(id string) (PrepItem, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	it, ok := s.items[id]
	if !ok {
		return PrepItem{}, ErrItemNotFound
	}
	return *it, nil
}

func (s *PrepService) snapshotLocked(category models.PrepCategory) []PrepItem {
	out := make([]PrepItem, 0, len(s.order))
	for _, id := range s.order {
		it := s.items[id]
		if category != "" && it.Category != category {
			continue
		}
		out = append(out, *it)
	}
	return out
}

// Increment 增加工作数量，无上限
func (s *PrepService) Increment(id string) (int, error) {
	return s.adjustQuantity(id, 1)
}

// Decrement 减少工作数量，下限为0
func (s *PrepService) Decrement(id string) (int, error) {
	return s.adjustQuantity(id, -1)
}

func (s *PrepService) adjustQuantity(id string, delta int) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	it, ok := s.items[id]
	if !ok {
		return 0, ErrItemNotFound
	}

	// check-temp/print-label 阶段数量只读
	switch it.EffectiveStatus() {
	case models.PrepStatusCheckTemp, models.PrepStatusPrintLabel:
		return it.Quantity, ErrQuantityLocked
	}

	it.Quantity += delta
	if it.Quantity < 0 {
		it.Quantity = 0
	}
	return it.Quantity, nil
}

// StartPrep 开始备餐: to-prep -> in-prep，并启动固定时长倒计时
// 已有倒计时进行中时为幂等空操作
func (s *PrepService) StartPrep(id, updatedBy string) error {
	s.mu.Lock()
	it, ok := s.items[id]
	if !ok {
		s.mu.Unlock()
		return ErrItemNotFound
	}

	switch it.EffectiveStatus() {
	case models.PrepStatusToPrep, models.PrepStatusInPrep:
	default:
		s.mu.Unlock()
		return ErrStageConflict
	}

	if it.CountdownActive {
		s.mu.Unlock()
		return nil
	}

	it.Provisional = models.PrepStatusInPrep
	it.CountdownActive = true
	it.CountdownEndsAt = time.Now().Add(s.countdown)
	s.mu.Unlock()

	s.timers.Start(id, s.countdown, func() {
		s.finishCountdown(id, updatedBy)
	})

	utils.Logger.Info().
		Str("id", id).
		Dur("countdown", s.countdown).
		Msg("开始备餐倒计时")
	return nil
}

// finishCountdown 倒计时归零后推进阶段，批量备餐进入温度检查，其余直接进入标签打印
func (s *PrepService) finishCountdown(id, updatedBy string) {
	s.mu.Lock()
	it, ok := s.items[id]
	if !ok {
		s.mu.Unlock()
		return
	}
	it.CountdownActive = false
	category := it.Category
	eff := it.EffectiveStatus()
	s.mu.Unlock()

	next := models.PrepStatusPrintLabel
	if category.RequiresTempCheck() {
		if eff == models.PrepStatusCheckTemp {
			return
		}
		next = models.PrepStatusCheckTemp
	}

	ctx, cancel := context.WithTimeout(context.Background(), gatewayCallTimeout)
	defer cancel()

	if err := s.advance(ctx, id, next, updatedBy); err != nil {
		utils.LogError(err, map[string]interface{}{
			"id":   id,
			"next": next,
		}, "倒计时结束后推进阶段失败")
	}
}

// advance 发起状态更新，以服务端确认的阶段覆盖本地预估
// 网关失败时本地状态保持不变，由用户重试
func (s *PrepService) advance(ctx context.Context, id string, next models.PrepStatus, updatedBy string) error {
	res, err := s.gw.UpdatePrepStatus(ctx, models.PrepStatusUpdate{
		IngredientPrepForecastID: id,
		PrepStatus:               next,
		UpdatedBy:                updatedBy,
	})
	if err != nil {
		return err
	}

	s.mu.Lock()
	if it, ok := s.items[id]; ok {
		if res.PrepStatus != next {
			utils.LogInconsistency("备餐状态", "/prep-status", next, res.PrepStatus)
		}
		it.Confirmed = res.PrepStatus
		it.Provisional = ""
	}
	s.mu.Unlock()

	if s.refresh != nil {
		s.refresh.Bump()
	}
	return nil
}

// ConfirmTempCheck 温度检查确认: check-temp -> print-label
func (s *PrepService) ConfirmTempCheck(ctx context.Context, id, updatedBy string) error {
	if err := s.requireStage(id, models.PrepStatusCheckTemp); err != nil {
		return err
	}
	return s.advance(ctx, id, models.PrepStatusPrintLabel, updatedBy)
}

// MarkPrepared 标记备餐完成: print-label -> available
func (s *PrepService) MarkPrepared(ctx context.Context, id, updatedBy string) error {
	if err := s.requireStage(id, models.PrepStatusPrintLabel); err != nil {
		return err
	}
	return s.advance(ctx, id, models.PrepStatusAvailable, updatedBy)
}

// PrepareMore 在 available 阶段继续备餐，本地回到 to-prep，不等待新预测
func (s *PrepService) PrepareMore(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	it, ok := s.items[id]
	if !ok {
		return ErrItemNotFound
	}
	if it.EffectiveStatus() != models.PrepStatusAvailable {
		return ErrStageConflict
	}
	it.Provisional = models.PrepStatusToPrep
	return nil
}

func (s *PrepService) requireStage(id string, stage models.PrepStatus) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	it, ok := s.items[id]
	if !ok {
		return ErrItemNotFound
	}
	if it.EffectiveStatus() != stage {
		return ErrStageConflict
	}
	return nil
}

// PrepAll 广播"全部开始备餐"，只作用于批量备餐类别
// 各条目独立推进，单个条目失败不影响其他条目，不保证原子性
func (s *PrepService) PrepAll(ctx context.Context, updatedBy string) PrepAllResult {
	s.mu.Lock()
	s.prepAllSignal++
	result := PrepAllResult{
		Signal: s.prepAllSignal,
		Errors: make(map[string]string),
	}

	type candidate struct {
		id  string
		eff models.PrepStatus
	}
	var candidates []candidate
	for _, id := range s.order {
		it := s.items[id]
		if it.Category != models.CategoryBatchPrep {
			continue
		}
		eff := it.EffectiveStatus()
		// 温度检查中的条目不重复触发
		if eff == models.PrepStatusCheckTemp {
			continue
		}
		candidates = append(candidates, candidate{id: id, eff: eff})
	}
	s.mu.Unlock()

	for _, cand := range candidates {
		result.Attempted++

		// 服务端不在 to-prep/in-prep 时先重置状态
		if cand.eff != models.PrepStatusToPrep && cand.eff != models.PrepStatusInPrep {
			res, err := s.gw.UpdatePrepStatus(ctx, models.PrepStatusUpdate{
				IngredientPrepForecastID: cand.id,
				PrepStatus:               models.PrepStatusToPrep,
				UpdatedBy:                updatedBy,
			})
			if err != nil {
				utils.LogError(err, map[string]interface{}{"id": cand.id}, "重置备餐状态失败")
				result.Failed++
				result.Errors[cand.id] = err.Error()
				continue
			}
			s.mu.Lock()
			if it, ok := s.items[cand.id]; ok {
				it.Confirmed = res.PrepStatus
				it.Provisional = ""
			}
			s.mu.Unlock()
		}

		if err := s.StartPrep(cand.id, updatedBy); err != nil {
			result.Failed++
			result.Errors[cand.id] = err.Error()
			continue
		}
		result.Started++
	}

	if len(result.Errors) == 0 {
		result.Errors = nil
	}

	utils.LogInfo(map[string]interface{}{
		"signal":    result.Signal,
		"attempted": result.Attempted,
		"started":   result.Started,
		"failed":    result.Failed,
	}, "全部开始备餐广播完成")
	return result
}

// PrepAllSignal 当前广播信号值
func (s *PrepService) PrepAllSignal() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.prepAllSignal
}

// UpdateOnHand 更新现存量
func (s *PrepService) UpdateOnHand(ctx context.Context, ingredientID string, quantity int, updatedBy string) error {
	err := s.gw.UpdateOnHand(ctx, ingredientID, models.OnHandUpdate{
		OnHandQuantity: quantity,
		UpdatedBy:      updatedBy,
	})
	if err != nil {
		return err
	}
	if s.refresh != nil {
		s.refresh.Bump()
	}
	return nil
}

// UpdateExpired 更新过期量
func (s *PrepService) UpdateExpired(ctx context.Context, ingredientID string, quantity int, updatedBy string) error {
	err := s.gw.UpdateExpired(ctx, ingredientID, models.ExpiredUpdate{
		ExpiredQuantity: quantity,
		UpdatedBy:       updatedBy,
	})
	if err != nil {
		return err
	}
	if s.refresh != nil {
		s.refresh.Bump()
	}
	return nil
}

// ClearExpired 清除过期量
func (s *PrepService) ClearExpired(ctx context.Context, ingredientID string) error {
	return s.gw.DeleteExpired(ctx, ingredientID)
}

// Detail 获取食材详情
func (s *PrepService) Detail(ctx context.Context, ingredientID, date string) (*models.IngredientDetail, error) {
	return s.gw.IngredientDetail(ctx, ingredientID, date)
}

// Refresh 当前刷新信号
func (s *PrepService) Refresh() *RefreshSignal {
	return s.refresh
}

// Close 释放全部倒计时，服务关闭时调用
func (s *PrepService) Close() {
	s.timers.StopAll()
}
