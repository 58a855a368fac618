package service

import (
	"context"
	"strings"
	"sync"

	"github.com/BerniceZTT/prep_end/models"
	"github.com/BerniceZTT/prep_end/utils"
)

// LabelPrintGateway 标签打印依赖的远端网关能力
type LabelPrintGateway interface {
	PrintItems(ctx context.Context, date string) (*models.PrintItemsResponse, error)
	PrintLabels(ctx context.Context, ingredientPrepForecastIDs []string) (*models.MultiPrintLabelResponse, error)
}

// LabelAggregator 标签打印聚合器
// 持有选择时的拷贝，后续对备餐条目数量的修改不会回写已选的打印数量
type LabelAggregator struct {
	mu    sync.Mutex
	gw    LabelPrintGateway
	items []*models.LabelRequest
	index map[string]*models.LabelRequest

	lastOutcome *models.PrintOutcome
}

// NewLabelAggregator 创建标签聚合器
func NewLabelAggregator(gw LabelPrintGateway) *LabelAggregator {
	return &LabelAggregator{
		gw:    gw,
		index: make(map[string]*models.LabelRequest),
	}
}

// Load 拉取可打印条目并重置选择状态
func (a *LabelAggregator) Load(ctx context.Context, date string) ([]models.LabelRequest, error) {
	resp, err := a.gw.PrintItems(ctx, date)
	if err != nil {
		return nil, err
	}

	a.mu.Lock()
	defer a.mu.Unlock()

	a.items = a.items[:0]
	a.index = make(map[string]*models.LabelRequest)
	for _, item := range resp.Items {
		req := &models.LabelRequest{
			ItemID:     item.IngredientPrepForecastID,
			Name:       item.IngredientName,
			LabelCount: 0,
			Selected:   false,
		}
		a.items = append(a.items, req)
		a.index[req.ItemID] = req
	}

	return a.snapshotLocked(""), nil
}

// Items 返回条目快照，term 非空时按名称过滤（大小写不敏感）
func (a *LabelAggregator) Items(term string) []models.LabelRequest {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.snapshotLocked(term)
}

func (a *LabelAggregator) snapshotLocked(term string) []models.LabelRequest {
	term = strings.ToLower(strings.TrimSpace(term))
	out := make([]models.LabelRequest, 0, len(a.items))
	for _, item := range a.items {
		if term != "" && !strings.Contains(strings.ToLower(item.Name), term) {
			continue
		}
		out = append(out, *item)
	}
	return out
}

// VisibleIDs 当前过滤条件下可见条目的ID集合
func (a *LabelAggregator) VisibleIDs(term string) []string {
	items := a.Items(term)
	ids := make([]string, 0, len(items))
	for _, item := range items {
		ids = append(ids, item.ItemID)
	}
	return ids
}

// SetSelected 设置单个条目的选中状态，不影响已设置的打印数量
func (a *LabelAggregator) SetSelected(id string, selected bool) error {
	a.mu.Lock()
	defer a.mu.Unlock()

	item, ok := a.index[id]
	if !ok {
		return ErrItemNotFound
	}
	item.Selected = selected
	return nil
}

// SelectAll 批量设置选中状态，只作用于传入的可见子集，过滤外的条目保持原状
func (a *LabelAggregator) SelectAll(visibleIDs []string, selected bool) {
	a.mu.Lock()
	defer a.mu.Unlock()

	for _, id := range visibleIDs {
		if item, ok := a.index[id]; ok {
			item.Selected = selected
		}
	}
}

// ClearAll 清空全部选中状态
func (a *LabelAggregator) ClearAll() {
	a.mu.Lock()
	defer a.mu.Unlock()

	for _, item := range a.items {
		item.Selected = false
	}
}

// SetLabelCount 设置打印数量，下限为0
func (a *LabelAggregator) SetLabelCount(id string, count int) error {
	a.mu.Lock()
	defer a.mu.Unlock()

	item, ok := a.index[id]
	if !ok {
		return ErrItemNotFound
	}
	if count < 0 {
		count = 0
	}
	item.LabelCount = count
	return nil
}

// IncrementCount 打印数量加一
func (a *LabelAggregator) IncrementCount(id string) error {
	a.mu.Lock()
	defer a.mu.Unlock()

	item, ok := a.index[id]
	if !ok {
		return ErrItemNotFound
	}
	item.LabelCount++
	return nil
}

// DecrementCount 打印数量减一，下限为0
func (a *LabelAggregator) DecrementCount(id string) error {
	a.mu.Lock()
	defer a.mu.Unlock()

	item, ok := a.index[id]
	if !ok {
		return ErrItemNotFound
	}
	if item.LabelCount > 0 {
		item.LabelCount--
	}
	return nil
}

// SelectedCount 当前选中条目数
func (a *LabelAggregator) SelectedCount() int {
	a.mu.Lock()
	defer a.mu.Unlock()

	count := 0
	for _, item := range a.items {
		if item.Selected {
			count++
		}
	}
	return count
}

// Submit 提交批量打印
// 可提交子集为空时不发起网络请求，返回未提交的结果；否则恰好发起一次聚合请求，
// 响应按ID回配到选择项上，部分失败不视为错误，失败条目保留 error 字段
func (a *LabelAggregator) Submit(ctx context.Context) (*models.PrintOutcome, error) {
	a.mu.Lock()
	eligible := make([]models.LabelRequest, 0, len(a.items))
	for _, item := range a.items {
		if item.Selected && item.LabelCount > 0 {
			eligible = append(eligible, *item)
		}
	}
	a.mu.Unlock()

	if len(eligible) == 0 {
		utils.Logger.Warn().Msg("没有选中的条目或打印数量均为0")
		return &models.PrintOutcome{
			Submitted: false,
			Message:   "没有可打印的标签",
		}, nil
	}

	ids := make([]string, 0, len(eligible))
	for _, item := range eligible {
		ids = append(ids, item.ItemID)
	}

	resp, err := a.gw.PrintLabels(ctx, ids)
	if err != nil {
		return nil, err
	}

	// 按ID回配，服务端可能乱序或缺失条目
	byID := make(map[string]models.PrintLabelEntry, len(resp.Labels))
	for _, entry := range resp.Labels {
		byID[entry.IngredientPrepForecastID] = entry
	}

	labels := make([]models.SelectedLabel, 0, len(eligible))
	for _, item := range eligible {
		label := models.SelectedLabel{
			ItemID:     item.ItemID,
			Name:       item.Name,
			LabelCount: item.LabelCount,
		}
		if entry, ok := byID[item.ItemID]; ok {
			label.PrepTime = entry.PrepTime
			label.ExpiryTime = entry.ExpiryTime
			label.PrepIntervalHours = entry.PrepIntervalHours
			label.Success = entry.Success
			label.Error = entry.Error
		} else {
			label.Success = false
			label.Error = "服务端未返回该条目的打印结果"
		}
		labels = append(labels, label)
	}

	outcome := &models.PrintOutcome{
		Submitted:       true,
		Message:         resp.Message,
		TotalRequested:  resp.TotalRequested,
		TotalSuccessful: resp.TotalSuccessful,
		TotalFailed:     resp.TotalFailed,
		Labels:          labels,
		UpdatedAt:       resp.UpdatedAt,
	}

	a.mu.Lock()
	a.lastOutcome = outcome
	a.mu.Unlock()

	utils.LogInfo(map[string]interface{}{
		"requested":  resp.TotalRequested,
		"successful": resp.TotalSuccessful,
		"failed":     resp.TotalFailed,
	}, "批量打印提交完成")
	return outcome, nil
}

// LastOutcome 最近一次提交结果，用于打印预览
func (a *LabelAggregator) LastOutcome() *models.PrintOutcome {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.lastOutcome
}
