package gateway

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/BerniceZTT/prep_end/models"
	"github.com/BerniceZTT/prep_end/utils"

	"github.com/google/uuid"
)

// Client 远端备餐API客户端，所有屏幕数据均来自该网关
type Client struct {
	baseURL string
	http    *http.Client
}

// NewClient 创建网关客户端
func NewClient(baseURL string, timeout time.Duration) *Client {
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{Timeout: timeout},
	}
}

// GatewayError 网关返回非2xx时的错误
type GatewayError struct {
	StatusCode int
	Endpoint   string
	Body       string
}

// Error 实现error接口
func (e *GatewayError) Error() string {
	return fmt.Sprintf("网关请求失败: %s, 状态码: %d, 响应: %s", e.Endpoint, e.StatusCode, e.Body)
}

// do 执行一次网关请求，out为nil时丢弃响应体
func (c *Client) do(ctx context.Context, method, path string, payload interface{}, out interface{}) error {
	endpoint := c.baseURL + path

	var body io.Reader
	if payload != nil {
		data, err := json.Marshal(payload)
		if err != nil {
			return fmt.Errorf("序列化请求体失败: %w", err)
		}
		body = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, endpoint, body)
	if err != nil {
		return fmt.Errorf("创建请求失败: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	requestID := uuid.NewString()
	req.Header.Set("X-Request-Id", requestID)

	start := time.Now()
	utils.Logger.Debug().
		Str("method", method).
		Str("url", endpoint).
		Str("requestId", requestID).
		Interface("payload", payload).
		Msg("网关请求")

	resp, err := c.http.Do(req)
	if err != nil {
		utils.LogError(err, map[string]interface{}{
			"method":    method,
			"url":       endpoint,
			"requestId": requestID,
		}, "网关请求失败")
		return fmt.Errorf("网关请求失败: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("读取响应失败: %w", err)
	}

	utils.LogApiResponse(method, endpoint, resp.StatusCode, time.Since(start), truncate(string(respBody), 512))

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return &GatewayError{
			StatusCode: resp.StatusCode,
			Endpoint:   path,
			Body:       truncate(string(respBody), 256),
		}
	}

	if out != nil && len(respBody) > 0 {
		if err := json.Unmarshal(respBody, out); err != nil {
			return fmt.Errorf("解析响应失败: %w", err)
		}
	}
	return nil
}

// truncate 截断过长的日志内容
func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}

// Forecasts 获取指定日期的预测
func (c *Client) Forecasts(ctx context.Context, date string) (*models.ForecastResponse, error) {
	var out models.ForecastResponse
	if err := c.do(ctx, http.MethodGet, "/forecasts/"+url.PathEscape(date), nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// ApprovedForecasts 获取已审批的预测
func (c *Client) ApprovedForecasts(ctx context.Context, date string) (*models.ForecastResponse, error) {
	var out models.ForecastResponse
	if err := c.do(ctx, http.MethodGet, "/approved-forecasts/"+url.PathEscape(date), nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// IngredientForecasts 获取按餐段分组的食材备餐预测
func (c *Client) IngredientForecasts(ctx context.Context, date string) (*models.ForecastResponse, error) {
	var out models.ForecastResponse
	if err := c.do(ctx, http.MethodGet, "/ingredient-forecasts/"+url.PathEscape(date), nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// UpdatePrepStatus 更新备餐状态，返回服务端确认后的状态
func (c *Client) UpdatePrepStatus(ctx context.Context, payload models.PrepStatusUpdate) (*models.PrepStatusResult, error) {
	var out models.PrepStatusResult
	if err := c.do(ctx, http.MethodPatch, "/prep-status", payload, &out); err != nil {
		return nil, err
	}
	utils.LogGatewayOperation("更新备餐状态", "/prep-status", payload, out)
	return &out, nil
}

// UpdateOnHand 更新现存量
func (c *Client) UpdateOnHand(ctx context.Context, ingredientID string, payload models.OnHandUpdate) error {
	return c.do(ctx, http.MethodPatch, "/ingredient-detail/"+url.PathEscape(ingredientID)+"/on-hand", payload, nil)
}

// UpdateExpired 更新过期量
func (c *Client) UpdateExpired(ctx context.Context, ingredientID string, payload models.ExpiredUpdate) error {
	return c.do(ctx, http.MethodPatch, "/ingredient-detail/"+url.PathEscape(ingredientID)+"/expired", payload, nil)
}

// DeleteExpired 清除过期量
func (c *Client) DeleteExpired(ctx context.Context, ingredientID string) error {
	return c.do(ctx, http.MethodDelete, "/ingredient-detail/"+url.PathEscape(ingredientID)+"/expired", nil, nil)
}

// IngredientDetail 获取食材详情
func (c *Client) IngredientDetail(ctx context.Context, ingredientID, date string) (*models.IngredientDetail, error) {
	var out models.IngredientDetail
	path := "/ingredient-detail/" + url.PathEscape(ingredientID) + "?date=" + url.QueryEscape(date)
	if err := c.do(ctx, http.MethodGet, path, nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// PrintLabel 打印单条标签
func (c *Client) PrintLabel(ctx context.Context, ingredientPrepForecastID string) (*models.PrintLabelResponse, error) {
	payload := map[string]string{"ingredientPrepForecastId": ingredientPrepForecastID}
	var out models.PrintLabelResponse
	if err := c.do(ctx, http.MethodPost, "/print-label", payload, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// PrintLabels 批量打印标签，一次聚合请求
func (c *Client) PrintLabels(ctx context.Context, ingredientPrepForecastIDs []string) (*models.MultiPrintLabelResponse, error) {
	payload := map[string][]string{"ingredientPrepForecastIds": ingredientPrepForecastIDs}
	var out models.MultiPrintLabelResponse
	if err := c.do(ctx, http.MethodPost, "/print-labels", payload, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// PrintItems 获取可打印标签的条目
func (c *Client) PrintItems(ctx context.Context, date string) (*models.PrintItemsResponse, error) {
	var out models.PrintItemsResponse
	if err := c.do(ctx, http.MethodGet, "/print-label-items/"+url.PathEscape(date), nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// Search 按关键词搜索预测
func (c *Client) Search(ctx context.Context, term string) (*models.ForecastResponse, error) {
	var out models.ForecastResponse
	if err := c.do(ctx, http.MethodGet, "/search?q="+url.QueryEscape(term), nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// StockCounting 获取当日盘点数据
func (c *Client) StockCounting(ctx context.Context) (*models.StockCountResponse, error) {
	var out models.StockCountResponse
	if err := c.do(ctx, http.MethodGet, "/stock-counting", nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// WeeklyStockCounting 获取按周盘点数据，位置与类别为可选过滤条件
func (c *Client) WeeklyStockCounting(ctx context.Context, startDate, endDate, storageLocation, category string) (*models.StockCountResponse, error) {
	params := url.Values{}
	params.Set("startDate", startDate)
	params.Set("endDate", endDate)
	if strings.TrimSpace(storageLocation) != "" {
		params.Set("storageLocation", storageLocation)
	}
	if strings.TrimSpace(category) != "" {
		params.Set("category", category)
	}
	var out models.StockCountResponse
	if err := c.do(ctx, http.MethodGet, "/stock-counting/weekly?"+params.Encode(), nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// UpdateStockQuantity 更新盘点数量
func (c *Client) UpdateStockQuantity(ctx context.Context, ingredientID string, payload models.StockQuantityUpdate) error {
	return c.do(ctx, http.MethodPatch, "/stock-counting/"+url.PathEscape(ingredientID)+"/quantity", payload, nil)
}

// StockOrder 生成订货建议
func (c *Client) StockOrder(ctx context.Context) ([]models.StockOrderItem, error) {
	var out []models.StockOrderItem
	if err := c.do(ctx, http.MethodPost, "/inventory/stock-order", nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// ApproveForecast 提交预测审批
func (c *Client) ApproveForecast(ctx context.Context, payload models.ApproveForecastRequest) error {
	return c.do(ctx, http.MethodPost, "/approved-forecast", payload, nil)
}
