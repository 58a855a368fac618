package service

import (
	"sync"
	"time"
)

// PrepCountdown 备餐倒计时固定时长，沿用现网行为，不由 prepIntervalHours 推导
const PrepCountdown = 3 * time.Second

// TimerService 管理按条目划分的倒计时句柄，条目移除时必须调用 Stop/StopAll 释放
type TimerService struct {
	mu     sync.Mutex
	active map[string]*time.Timer
}

// NewTimerService 创建倒计时管理器
func NewTimerService() *TimerService {
	return &TimerService{
		active: make(map[string]*time.Timer),
	}
}

// Start 启动一次倒计时，同一条目已有倒计时则不重复启动
// 返回是否实际启动，fn 最多被调用一次
func (s *TimerService) Start(id string, d time.Duration, fn func()) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.active[id]; ok {
		return false
	}

	s.active[id] = time.AfterFunc(d, func() {
		s.mu.Lock()
		delete(s.active, id)
		s.mu.Unlock()
		fn()
	})
	return true
}

// Active 检查条目是否有进行中的倒计时
func (s *TimerService) Active(id string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.active[id]
	return ok
}

// Stop 取消条目的倒计时
func (s *TimerService) Stop(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if t, ok := s.active[id]; ok {
		t.Stop()
		delete(s.active, id)
	}
}

// StopAll 取消全部倒计时，服务关闭或重新加载时调用
func (s *TimerService) StopAll() {
	s.mu.Lock()
	defer s.mu.Unlock()

	for id, t := range s.active {
		t.Stop()
		delete(s.active, id)
	}
}

// RefreshSignal 全局刷新信号，单调递增，依赖方轮询比较
type RefreshSignal struct {
	mu  sync.Mutex
	key int
}

// Bump 递增刷新信号
func (r *RefreshSignal) Bump() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.key++
	return r.key
}

// Key 读取当前刷新信号
func (r *RefreshSignal) Key() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.key
}
