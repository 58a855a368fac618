package service

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/BerniceZTT/prep_end/models"
	"github.com/BerniceZTT/prep_end/utils"
)

const (
	// SearchDebounce 搜索防抖延迟
	SearchDebounce = 500 * time.Millisecond
	// maxRecentSearches 最近搜索保留条数
	maxRecentSearches = 10
)

// SearchGateway 搜索依赖的远端网关能力
type SearchGateway interface {
	Search(ctx context.Context, term string) (*models.ForecastResponse, error)
}

// SearchResults 搜索结果快照
type SearchResults struct {
	Term    string                      `json:"term"`
	Items   []models.IngredientForecast `json:"items"`
	Message string                      `json:"message,omitempty"`
	Error   string                      `json:"error,omitempty"`
	Loading bool                        `json:"loading"`
}

type searchCacheEntry struct {
	items   []models.IngredientForecast
	message string
}

// SearchService 防抖搜索
// 每次实际执行的查询携带递增的代号，响应返回时代号已过期则丢弃，
// 保证旧查询的结果不会覆盖新查询
type SearchService struct {
	mu       sync.Mutex
	gw       SearchGateway
	debounce time.Duration
	timer    *time.Timer

	generation int
	term       string
	items      []models.IngredientForecast
	message    string
	lastErr    string
	loading    bool

	cache  map[string]searchCacheEntry
	recent []string
}

// NewSearchService 创建搜索服务，debounce 传入 SearchDebounce
func NewSearchService(gw SearchGateway, debounce time.Duration) *SearchService {
	return &SearchService{
		gw:       gw,
		debounce: debounce,
		cache:    make(map[string]searchCacheEntry),
	}
}

// SetTerm 更新搜索词并重置防抖计时，后到的搜索词使先前未执行的查询作废
func (s *SearchService) SetTerm(term string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.term = term
	if s.timer != nil {
		s.timer.Stop()
		s.timer = nil
	}

	if strings.TrimSpace(term) == "" {
		// 空搜索词: 清空结果并作废在途请求
		s.generation++
		s.items = nil
		s.message = ""
		s.lastErr = ""
		s.loading = false
		return
	}

	s.timer = time.AfterFunc(s.debounce, func() {
		s.SearchNow(term)
	})
}

// SearchNow 立即执行一次搜索，跳过防抖但仍受代号保护
func (s *SearchService) SearchNow(term string) {
	term = strings.TrimSpace(term)
	if term == "" {
		return
	}

	s.mu.Lock()
	s.generation++
	gen := s.generation
	s.loading = true
	s.lastErr = ""
	s.addRecentLocked(term)

	if cached, ok := s.cache[term]; ok {
		s.items = cached.items
		s.message = cached.message
		s.loading = false
		s.mu.Unlock()
		return
	}
	s.mu.Unlock()

	ctx, cancel := context.WithTimeout(context.Background(), gatewayCallTimeout)
	defer cancel()
	resp, err := s.gw.Search(ctx, term)

	s.mu.Lock()
	defer s.mu.Unlock()

	// 已有更新的查询，丢弃过期响应
	if gen != s.generation {
		utils.Logger.Debug().
			Str("term", term).
			Int("generation", gen).
			Msg("丢弃过期搜索响应")
		return
	}

	s.loading = false
	if err != nil {
		s.lastErr = err.Error()
		utils.LogError(err, map[string]interface{}{"term": term}, "搜索失败")
		return
	}

	items := flattenForecasts(resp)
	message := ""
	if len(items) == 0 {
		message = resp.Message
		if message == "" {
			message = "No results found"
		}
	}

	s.items = items
	s.message = message
	s.cache[term] = searchCacheEntry{items: items, message: message}
}

// flattenForecasts 把按餐段分组的响应摊平为条目列表
func flattenForecasts(resp *models.ForecastResponse) []models.IngredientForecast {
	var items []models.IngredientForecast
	for _, daypart := range resp.Forecasts {
		items = append(items, daypart.Ingredients...)
	}
	return items
}

// Results 当前搜索结果快照
func (s *SearchService) Results() SearchResults {
	s.mu.Lock()
	defer s.mu.Unlock()

	items := make([]models.IngredientForecast, len(s.items))
	copy(items, s.items)
	return SearchResults{
		Term:    s.term,
		Items:   items,
		Message: s.message,
		Error:   s.lastErr,
		Loading: s.loading,
	}
}

// addRecentLocked 记录最近搜索，去重后置顶，最多保留 maxRecentSearches 条
func (s *SearchService) addRecentLocked(term string) {
	term = strings.TrimSpace(term)
	if term == "" {
		return
	}

	updated := []string{term}
	for _, prev := range s.recent {
		if prev != term {
			updated = append(updated, prev)
		}
	}
	if len(updated) > maxRecentSearches {
		updated = updated[:maxRecentSearches]
	}
	s.recent = updated
}

// RecentSearches 最近搜索记录
func (s *SearchService) RecentSearches() []string {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]string, len(s.recent))
	copy(out, s.recent)
	return out
}

// ClearRecentSearches 清空最近搜索
func (s *SearchService) ClearRecentSearches() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.recent = nil
}

// Close 停止未触发的防抖计时并作废在途请求
func (s *SearchService) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.timer != nil {
		s.timer.Stop()
		s.timer = nil
	}
	s.generation++
}
