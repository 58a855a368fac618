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

// fakePrepGateway 可编程的网关桩，记录全部状态更新请求
type fakePrepGateway struct {
	mu            sync.Mutex
	statusUpdates []models.PrepStatusUpdate
	statusErr     map[string]error
	statusEcho    func(models.PrepStatusUpdate) models.PrepStatus
	statusCalled  chan models.PrepStatusUpdate

	forecasts *models.ForecastResponse
	onHand    []models.OnHandUpdate
	expired   []models.ExpiredUpdate
}

func newFakePrepGateway() *fakePrepGateway {
	return &fakePrepGateway{
		statusErr:    make(map[string]error),
		statusCalled: make(chan models.PrepStatusUpdate, 16),
	}
}

func (f *fakePrepGateway) IngredientForecasts(_ context.Context, _ string) (*models.ForecastResponse, error) {
	if f.forecasts == nil {
		return &models.ForecastResponse{}, nil
	}
	return f.forecasts, nil
}

func (f *fakePrepGateway) UpdatePrepStatus(_ context.Context, payload models.PrepStatusUpdate) (*models.PrepStatusResult, error) {
	f.mu.Lock()
	f.statusUpdates = append(f.statusUpdates, payload)
	err := f.statusErr[payload.IngredientPrepForecastID]
	echo := f.statusEcho
	f.mu.Unlock()

	select {
	case f.statusCalled <- payload:
	default:
	}

	if err != nil {
		return nil, err
	}
	status := payload.PrepStatus
	if echo != nil {
		status = echo(payload)
	}
	return &models.PrepStatusResult{
		IngredientPrepForecastID: payload.IngredientPrepForecastID,
		PrepStatus:               status,
	}, nil
}

func (f *fakePrepGateway) UpdateOnHand(_ context.Context, _ string, payload models.OnHandUpdate) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.onHand = append(f.onHand, payload)
	return nil
}

func (f *fakePrepGateway) UpdateExpired(_ context.Context, _ string, payload models.ExpiredUpdate) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.expired = append(f.expired, payload)
	return nil
}

func (f *fakePrepGateway) DeleteExpired(_ context.Context, _ string) error { return nil }

func (f *fakePrepGateway) IngredientDetail(_ context.Context, ingredientID, _ string) (*models.IngredientDetail, error) {
	return &models.IngredientDetail{IngredientID: ingredientID}, nil
}

func (f *fakePrepGateway) updates() []models.PrepStatusUpdate {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]models.PrepStatusUpdate, len(f.statusUpdates))
	copy(out, f.statusUpdates)
	return out
}

func forecastFixture() *models.ForecastResponse {
	return &models.ForecastResponse{
		Date: "2025-08-06",
		Forecasts: []models.DayPartForecast{
			{
				DayPart: "Lunch",
				Ingredients: []models.IngredientForecast{
					{
						IngredientPrepForecastID: "fry-1",
						IngredientID:             "ing-fry-1",
						IngredientName:           "Fries",
						Category:                 models.CategoryOffCyclePrep,
						Units:                    "kg",
						Quantity:                 4,
						IsPrepItem:               true,
						PrepStatus:               models.PrepStatusToPrep,
					},
					{
						IngredientPrepForecastID: "batch-1",
						IngredientID:             "ing-batch-1",
						IngredientName:           "Marinated Chicken",
						Category:                 models.CategoryBatchPrep,
						Units:                    "kg",
						Quantity:                 6,
						IsPrepItem:               true,
						PrepStatus:               models.PrepStatusToPrep,
					},
					{
						IngredientPrepForecastID: "batch-2",
						IngredientID:             "ing-batch-2",
						IngredientName:           "Coleslaw",
						Category:                 models.CategoryBatchPrep,
						Units:                    "kg",
						Quantity:                 3,
						IsPrepItem:               true,
						PrepStatus:               models.PrepStatusAvailable,
					},
					{
						IngredientPrepForecastID: "napkins",
						IngredientID:             "ing-napkins",
						IngredientName:           "Napkins",
						Category:                 models.CategoryNonFood,
						Units:                    "pcs",
						Quantity:                 100,
						IsPrepItem:               false,
						PrepStatus:               models.PrepStatusToPrep,
					},
				},
			},
			{
				DayPart: "Dinner",
				Ingredients: []models.IngredientForecast{
					{
						// 重复ID只保留首个
						IngredientPrepForecastID: "fry-1",
						IngredientID:             "ing-fry-1",
						IngredientName:           "Fries",
						Category:                 models.CategoryOffCyclePrep,
						Units:                    "kg",
						Quantity:                 9,
						IsPrepItem:               true,
						PrepStatus:               models.PrepStatusToPrep,
					},
				},
			},
		},
	}
}

func newTestPrepService(t *testing.T, gw *fakePrepGateway, countdown time.Duration) *PrepService {
	t.Helper()
	svc := NewPrepService(gw, countdown, &RefreshSignal{})
	t.Cleanup(svc.Close)
	if gw.forecasts != nil {
		_, err := svc.LoadItems(context.Background(), "2025-08-06")
		require.NoError(t, err)
	}
	return svc
}

func TestLoadItemsFiltersAndDedupes(t *testing.T) {
	gw := newFakePrepGateway()
	gw.forecasts = forecastFixture()
	svc := newTestPrepService(t, gw, time.Hour)

	items := svc.Items("")
	require.Len(t, items, 3)
	assert.Equal(t, "fry-1", items[0].ID)
	assert.Equal(t, 4, items[0].Quantity, "重复ID应保留首个餐段的数量")

	batch := svc.Items(models.CategoryBatchPrep)
	require.Len(t, batch, 2)
	for _, it := range batch {
		assert.Equal(t, models.CategoryBatchPrep, it.Category)
	}
}

func TestAdjustQuantity(t *testing.T) {
	gw := newFakePrepGateway()
	gw.forecasts = forecastFixture()
	svc := newTestPrepService(t, gw, time.Hour)

	q, err := svc.Increment("fry-1")
	require.NoError(t, err)
	assert.Equal(t, 5, q)

	for i := 0; i < 10; i++ {
		q, err = svc.Decrement("fry-1")
		require.NoError(t, err)
	}
	assert.Equal(t, 0, q, "数量下限为0")

	_, err = svc.Increment("missing")
	assert.ErrorIs(t, err, ErrItemNotFound)
}

func TestQuantityLockedDuringCheckTempAndPrintLabel(t *testing.T) {
	gw := newFakePrepGateway()
	gw.forecasts = forecastFixture()
	svc := newTestPrepService(t, gw, time.Hour)

	svc.mu.Lock()
	svc.items["batch-1"].Confirmed = models.PrepStatusCheckTemp
	svc.items["fry-1"].Confirmed = models.PrepStatusPrintLabel
	svc.mu.Unlock()

	q, err := svc.Increment("batch-1")
	assert.ErrorIs(t, err, ErrQuantityLocked)
	assert.Equal(t, 6, q, "锁定时返回当前数量")

	_, err = svc.Decrement("fry-1")
	assert.ErrorIs(t, err, ErrQuantityLocked)
}

func TestStartPrepCountdownAdvancesToPrintLabel(t *testing.T) {
	gw := newFakePrepGateway()
	gw.forecasts = forecastFixture()
	svc := newTestPrepService(t, gw, 10*time.Millisecond)

	require.NoError(t, svc.StartPrep("fry-1", "alice"))

	it, err := svc.Item("fry-1")
	require.NoError(t, err)
	assert.Equal(t, models.PrepStatusInPrep, it.EffectiveStatus())
	assert.True(t, it.CountdownActive)

	select {
	case payload := <-gw.statusCalled:
		assert.Equal(t, "fry-1", payload.IngredientPrepForecastID)
		assert.Equal(t, models.PrepStatusPrintLabel, payload.PrepStatus, "非批量类别跳过温度检查")
		assert.Equal(t, "alice", payload.UpdatedBy)
	case <-time.After(2 * time.Second):
		t.Fatal("倒计时结束后未发起状态更新")
	}

	assert.Eventually(t, func() bool {
		it, err := svc.Item("fry-1")
		return err == nil && it.Confirmed == models.PrepStatusPrintLabel && it.Provisional == ""
	}, time.Second, 5*time.Millisecond)

	assert.Len(t, gw.updates(), 1, "一次倒计时只发起一次状态更新")
	assert.Equal(t, 1, svc.Refresh().Key())
}

func TestStartPrepBatchGoesToCheckTemp(t *testing.T) {
	gw := newFakePrepGateway()
	gw.forecasts = forecastFixture()
	svc := newTestPrepService(t, gw, 10*time.Millisecond)

	require.NoError(t, svc.StartPrep("batch-1", "alice"))

	select {
	case payload := <-gw.statusCalled:
		assert.Equal(t, models.PrepStatusCheckTemp, payload.PrepStatus)
	case <-time.After(2 * time.Second):
		t.Fatal("倒计时结束后未发起状态更新")
	}
}

func TestStartPrepIdempotentWhileCountdownActive(t *testing.T) {
	gw := newFakePrepGateway()
	gw.forecasts = forecastFixture()
	svc := newTestPrepService(t, gw, time.Hour)

	require.NoError(t, svc.StartPrep("fry-1", "alice"))
	require.NoError(t, svc.StartPrep("fry-1", "alice"), "倒计时进行中重复开始为幂等空操作")

	assert.Empty(t, gw.updates())
	assert.True(t, svc.timers.Active("fry-1"))
}

func TestStartPrepStageConflict(t *testing.T) {
	gw := newFakePrepGateway()
	gw.forecasts = forecastFixture()
	svc := newTestPrepService(t, gw, time.Hour)

	err := svc.StartPrep("batch-2", "alice")
	assert.ErrorIs(t, err, ErrStageConflict, "available 阶段不能直接开始备餐")

	err = svc.StartPrep("missing", "alice")
	assert.ErrorIs(t, err, ErrItemNotFound)
}

func TestGatewayFailureKeepsLocalState(t *testing.T) {
	gw := newFakePrepGateway()
	gw.forecasts = forecastFixture()
	gw.statusErr["fry-1"] = errors.New("gateway down")
	svc := newTestPrepService(t, gw, 10*time.Millisecond)

	require.NoError(t, svc.StartPrep("fry-1", "alice"))

	select {
	case <-gw.statusCalled:
	case <-time.After(2 * time.Second):
		t.Fatal("倒计时结束后未发起状态更新")
	}

	assert.Eventually(t, func() bool {
		it, err := svc.Item("fry-1")
		return err == nil && !it.CountdownActive
	}, time.Second, 5*time.Millisecond)

	it, err := svc.Item("fry-1")
	require.NoError(t, err)
	assert.Equal(t, models.PrepStatusToPrep, it.Confirmed, "网关失败时本地确认状态不变")
	assert.Equal(t, models.PrepStatusInPrep, it.EffectiveStatus(), "预估状态保留，由用户重试")
	assert.Equal(t, 0, svc.Refresh().Key())
}

func TestConfirmedStatusSupersedesProvisional(t *testing.T) {
	gw := newFakePrepGateway()
	gw.forecasts = forecastFixture()
	// 服务端确认的状态与请求不一致时以服务端为准
	gw.statusEcho = func(models.PrepStatusUpdate) models.PrepStatus {
		return models.PrepStatusAvailable
	}
	svc := newTestPrepService(t, gw, time.Hour)

	svc.mu.Lock()
	svc.items["fry-1"].Confirmed = models.PrepStatusPrintLabel
	svc.mu.Unlock()

	require.NoError(t, svc.MarkPrepared(context.Background(), "fry-1", "alice"))

	it, err := svc.Item("fry-1")
	require.NoError(t, err)
	assert.Equal(t, models.PrepStatusAvailable, it.Confirmed)
	assert.Empty(t, it.Provisional)
}

func TestTempCheckAndPreparedTransitions(t *testing.T) {
	gw := newFakePrepGateway()
	gw.forecasts = forecastFixture()
	svc := newTestPrepService(t, gw, time.Hour)
	ctx := context.Background()

	err := svc.ConfirmTempCheck(ctx, "batch-1", "alice")
	assert.ErrorIs(t, err, ErrStageConflict, "非 check-temp 阶段不能确认温度检查")

	svc.mu.Lock()
	svc.items["batch-1"].Confirmed = models.PrepStatusCheckTemp
	svc.mu.Unlock()

	require.NoError(t, svc.ConfirmTempCheck(ctx, "batch-1", "alice"))
	it, err := svc.Item("batch-1")
	require.NoError(t, err)
	assert.Equal(t, models.PrepStatusPrintLabel, it.Confirmed)

	require.NoError(t, svc.MarkPrepared(ctx, "batch-1", "alice"))
	it, err = svc.Item("batch-1")
	require.NoError(t, err)
	assert.Equal(t, models.PrepStatusAvailable, it.Confirmed)
}

func TestPrepareMore(t *testing.T) {
	gw := newFakePrepGateway()
	gw.forecasts = forecastFixture()
	svc := newTestPrepService(t, gw, time.Hour)

	err := svc.PrepareMore("fry-1")
	assert.ErrorIs(t, err, ErrStageConflict, "仅 available 阶段可继续备餐")

	require.NoError(t, svc.PrepareMore("batch-2"))
	it, err := svc.Item("batch-2")
	require.NoError(t, err)
	assert.Equal(t, models.PrepStatusToPrep, it.EffectiveStatus())
	assert.Empty(t, gw.updates(), "继续备餐是本地操作，不发起网关请求")
}

func TestPrepAllFanOut(t *testing.T) {
	gw := newFakePrepGateway()
	gw.forecasts = forecastFixture()
	svc := newTestPrepService(t, gw, time.Hour)

	result := svc.PrepAll(context.Background(), "alice")

	assert.Equal(t, 1, result.Signal)
	assert.Equal(t, 2, result.Attempted, "只作用于批量备餐类别")
	assert.Equal(t, 2, result.Started)
	assert.Equal(t, 0, result.Failed)

	// batch-2 在 available，广播前先重置回 to-prep
	updates := gw.updates()
	require.Len(t, updates, 1)
	assert.Equal(t, "batch-2", updates[0].IngredientPrepForecastID)
	assert.Equal(t, models.PrepStatusToPrep, updates[0].PrepStatus)

	for _, id := range []string{"batch-1", "batch-2"} {
		it, err := svc.Item(id)
		require.NoError(t, err)
		assert.Equal(t, models.PrepStatusInPrep, it.EffectiveStatus())
		assert.True(t, it.CountdownActive)
	}

	fry, err := svc.Item("fry-1")
	require.NoError(t, err)
	assert.Equal(t, models.PrepStatusToPrep, fry.EffectiveStatus(), "非批量条目不受广播影响")
}

func TestPrepAllSingleFailureDoesNotBlockOthers(t *testing.T) {
	gw := newFakePrepGateway()
	gw.forecasts = forecastFixture()
	gw.statusErr["batch-2"] = errors.New("gateway down")
	svc := newTestPrepService(t, gw, time.Hour)

	result := svc.PrepAll(context.Background(), "alice")

	assert.Equal(t, 2, result.Attempted)
	assert.Equal(t, 1, result.Started)
	assert.Equal(t, 1, result.Failed)
	require.Contains(t, result.Errors, "batch-2")

	it, err := svc.Item("batch-1")
	require.NoError(t, err)
	assert.True(t, it.CountdownActive, "单条失败不影响其他条目")
}

func TestPrepAllSkipsCheckTemp(t *testing.T) {
	gw := newFakePrepGateway()
	gw.forecasts = forecastFixture()
	svc := newTestPrepService(t, gw, time.Hour)

	svc.mu.Lock()
	svc.items["batch-1"].Confirmed = models.PrepStatusCheckTemp
	svc.mu.Unlock()

	result := svc.PrepAll(context.Background(), "alice")
	assert.Equal(t, 1, result.Attempted, "温度检查中的条目不重复触发")
	assert.Equal(t, 1, result.Started)

	result = svc.PrepAll(context.Background(), "alice")
	assert.Equal(t, 2, result.Signal, "广播信号每次递增")
}

func TestLoadItemsStopsRunningCountdowns(t *testing.T) {
	gw := newFakePrepGateway()
	gw.forecasts = forecastFixture()
	svc := newTestPrepService(t, gw, time.Hour)

	require.NoError(t, svc.StartPrep("fry-1", "alice"))
	require.True(t, svc.timers.Active("fry-1"))

	_, err := svc.LoadItems(context.Background(), "2025-08-06")
	require.NoError(t, err)
	assert.False(t, svc.timers.Active("fry-1"), "重新加载废弃进行中的倒计时")

	it, err := svc.Item("fry-1")
	require.NoError(t, err)
	assert.Equal(t, models.PrepStatusToPrep, it.EffectiveStatus())
}

func TestUpdateOnHandAndExpiredBumpRefresh(t *testing.T) {
	gw := newFakePrepGateway()
	gw.forecasts = forecastFixture()
	svc := newTestPrepService(t, gw, time.Hour)
	ctx := context.Background()

	require.NoError(t, svc.UpdateOnHand(ctx, "ing-fry-1", 12, "alice"))
	require.NoError(t, svc.UpdateExpired(ctx, "ing-fry-1", 2, "alice"))

	assert.Equal(t, 2, svc.Refresh().Key())
	require.Len(t, gw.onHand, 1)
	assert.Equal(t, 12, gw.onHand[0].OnHandQuantity)
	require.Len(t, gw.expired, 1)
	assert.Equal(t, 2, gw.expired[0].ExpiredQuantity)
}
