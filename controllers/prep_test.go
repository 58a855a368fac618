package controllers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/BerniceZTT/prep_end/models"
	"github.com/BerniceZTT/prep_end/service"
)

// stubPrepGateway 控制器测试用的网关桩
type stubPrepGateway struct {
	forecasts *models.ForecastResponse
}

func (s *stubPrepGateway) IngredientForecasts(_ context.Context, _ string) (*models.ForecastResponse, error) {
	return s.forecasts, nil
}

func (s *stubPrepGateway) UpdatePrepStatus(_ context.Context, payload models.PrepStatusUpdate) (*models.PrepStatusResult, error) {
	return &models.PrepStatusResult{
		IngredientPrepForecastID: payload.IngredientPrepForecastID,
		PrepStatus:               payload.PrepStatus,
	}, nil
}

func (s *stubPrepGateway) UpdateOnHand(_ context.Context, _ string, _ models.OnHandUpdate) error {
	return nil
}

func (s *stubPrepGateway) UpdateExpired(_ context.Context, _ string, _ models.ExpiredUpdate) error {
	return nil
}

func (s *stubPrepGateway) DeleteExpired(_ context.Context, _ string) error { return nil }

func (s *stubPrepGateway) IngredientDetail(_ context.Context, ingredientID, _ string) (*models.IngredientDetail, error) {
	return &models.IngredientDetail{IngredientID: ingredientID, IngredientName: "Fries"}, nil
}

func newPrepRouter(t *testing.T) (*gin.Engine, *service.PrepService) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	gw := &stubPrepGateway{
		forecasts: &models.ForecastResponse{
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
							Quantity:                 4,
							IsPrepItem:               true,
							PrepStatus:               models.PrepStatusToPrep,
						},
					},
				},
			},
		},
	}
	svc := service.NewPrepService(gw, time.Hour, &service.RefreshSignal{})
	t.Cleanup(svc.Close)
	ctl := NewPrepController(svc, "2025-08-06")

	router := gin.New()
	router.GET("/api/prep/items", ctl.ListItems)
	router.GET("/api/prep/ingredients/:ingredientId", ctl.Detail)
	router.POST("/api/prep/items/:id/start", ctl.StartPrep)
	router.POST("/api/prep/items/:id/increment", ctl.Increment)
	router.POST("/api/prep/items/:id/check-temp", ctl.ConfirmTempCheck)
	router.PATCH("/api/prep/ingredients/:ingredientId/on-hand", ctl.UpdateOnHand)
	return router, svc
}

func doRequest(router *gin.Engine, method, path, body string) *httptest.ResponseRecorder {
	var reader *strings.Reader
	if body == "" {
		reader = strings.NewReader("")
	} else {
		reader = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func TestListItemsLoadsOnFirstRequest(t *testing.T) {
	router, _ := newPrepRouter(t)

	w := doRequest(router, http.MethodGet, "/api/prep/items", "")
	require.Equal(t, http.StatusOK, w.Code)

	var resp struct {
		Success bool `json:"success"`
		Data    struct {
			Date       string             `json:"date"`
			Items      []service.PrepItem `json:"items"`
			RefreshKey int                `json:"refreshKey"`
		} `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.True(t, resp.Success)
	assert.Equal(t, "2025-08-06", resp.Data.Date)
	require.Len(t, resp.Data.Items, 1)
	assert.Equal(t, "fry-1", resp.Data.Items[0].ID)
}

func TestStartPrepReturnsCountdownState(t *testing.T) {
	router, _ := newPrepRouter(t)
	doRequest(router, http.MethodGet, "/api/prep/items", "")

	w := doRequest(router, http.MethodPost, "/api/prep/items/fry-1/start", `{"updatedBy":"alice"}`)
	require.Equal(t, http.StatusOK, w.Code)

	var resp struct {
		Success bool             `json:"success"`
		Data    service.PrepItem `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.True(t, resp.Data.CountdownActive)
	assert.Equal(t, models.PrepStatusInPrep, resp.Data.EffectiveStatus())
}

func TestIncrementUnknownItemReturns404(t *testing.T) {
	router, _ := newPrepRouter(t)
	doRequest(router, http.MethodGet, "/api/prep/items", "")

	w := doRequest(router, http.MethodPost, "/api/prep/items/missing/increment", "")
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Contains(t, w.Body.String(), "RESOURCE_NOT_FOUND")
}

func TestStageConflictReturns409(t *testing.T) {
	router, _ := newPrepRouter(t)
	doRequest(router, http.MethodGet, "/api/prep/items", "")

	// to-prep 阶段不能确认温度检查
	w := doRequest(router, http.MethodPost, "/api/prep/items/fry-1/check-temp", `{"updatedBy":"alice"}`)
	assert.Equal(t, http.StatusConflict, w.Code)
	assert.Contains(t, w.Body.String(), "STAGE_CONFLICT")
}

func TestUpdateOnHandRejectsNegative(t *testing.T) {
	router, _ := newPrepRouter(t)
	doRequest(router, http.MethodGet, "/api/prep/items", "")

	w := doRequest(router, http.MethodPatch, "/api/prep/ingredients/ing-fry-1/on-hand", `{"onHandQuantity":-1}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = doRequest(router, http.MethodPatch, "/api/prep/ingredients/ing-fry-1/on-hand", `{"onHandQuantity":5,"updatedBy":"alice"}`)
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestDetailPassthrough(t *testing.T) {
	router, _ := newPrepRouter(t)

	w := doRequest(router, http.MethodGet, "/api/prep/ingredients/ing-fry-1?date=2025-08-06", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "Fries")
}
