package models

// PrepStatus 备餐阶段枚举
type PrepStatus string

const (
	PrepStatusToPrep     PrepStatus = "to-prep"     // 待备餐
	PrepStatusInPrep     PrepStatus = "in-prep"     // 备餐中
	PrepStatusCheckTemp  PrepStatus = "check-temp"  // 温度检查
	PrepStatusPrintLabel PrepStatus = "print-label" // 打印标签
	PrepStatusAvailable  PrepStatus = "available"   // 可供应
)

// prepStatusRank 阶段先后顺序，客户端只允许向前推进
var prepStatusRank = map[PrepStatus]int{
	PrepStatusToPrep:     0,
	PrepStatusInPrep:     1,
	PrepStatusCheckTemp:  2,
	PrepStatusPrintLabel: 3,
	PrepStatusAvailable:  4,
}

// Rank 返回阶段序号，未知阶段返回 -1
func (s PrepStatus) Rank() int {
	if r, ok := prepStatusRank[s]; ok {
		return r
	}
	return -1
}

// IsValid 检查阶段是否有效
func (s PrepStatus) IsValid() bool {
	_, ok := prepStatusRank[s]
	return ok
}

// PrepCategory 备餐类别枚举
type PrepCategory string

const (
	CategoryOffCyclePrep    PrepCategory = "Off-cycle Fry Prep Items" // 非周期油炸备餐
	CategoryBatchPrep       PrepCategory = "Batch Prep Items"         // 批量备餐
	CategoryTwentyFourHours PrepCategory = "24-hours Items"           // 24小时备餐
	CategoryNonFood         PrepCategory = "Non Food"                 // 非食品
)

// RequiresTempCheck 批量备餐类别在倒计时结束后需要温度检查
func (c PrepCategory) RequiresTempCheck() bool {
	return c == CategoryBatchPrep
}

// IngredientForecast 单条食材备餐预测
type IngredientForecast struct {
	IngredientPrepForecastID string       `json:"ingredientPrepForecastId"`
	ForecastedDate           string       `json:"forecastedDate"`
	IngredientName           string       `json:"ingredientName"`
	Category                 PrepCategory `json:"category"`
	Units                    string       `json:"units"`
	Quantity                 int          `json:"quantity"`
	DaypartQuantity          int          `json:"daypartQuantity"`
	PrepIntervalHours        float64      `json:"prepIntervalHours"`
	IsPrepItem               bool         `json:"isPrepItem"`
	PrepStatus               PrepStatus   `json:"prepStatus"`
	IngredientID             string       `json:"ingredientId"`
}

// DayPartForecast 按餐段分组的预测
type DayPartForecast struct {
	DayPart     string               `json:"dayPart"`
	Ingredients []IngredientForecast `json:"ingredients"`
}

// ForecastResponse 预测接口响应
type ForecastResponse struct {
	Date      string            `json:"date"`
	Forecasts []DayPartForecast `json:"forecasts"`
	Message   string            `json:"message,omitempty"`
}

// PrepStatusUpdate 备餐状态更新请求
type PrepStatusUpdate struct {
	IngredientPrepForecastID string     `json:"ingredientPrepForecastId"`
	PrepStatus               PrepStatus `json:"prepStatus"`
	UpdatedBy                string     `json:"updatedBy"`
}

// PrepStatusResult 备餐状态更新响应，服务端确认后的状态为准
type PrepStatusResult struct {
	IngredientPrepForecastID string     `json:"ingredientPrepForecastId,omitempty"`
	PrepStatus               PrepStatus `json:"prepStatus"`
	Message                  string     `json:"message,omitempty"`
	UpdatedAt                string     `json:"updatedAt,omitempty"`
}

// OnHandUpdate 现存量更新请求
type OnHandUpdate struct {
	OnHandQuantity int    `json:"onHandQuantity"`
	UpdatedBy      string `json:"updatedBy"`
}

// ExpiredUpdate 过期量更新请求
type ExpiredUpdate struct {
	ExpiredQuantity int    `json:"expiredQuantity"`
	UpdatedBy       string `json:"updatedBy"`
}

// InventorySnapshot 食材库存快照
type InventorySnapshot struct {
	OnHandQuantity  int    `json:"onHandQuantity"`
	Unit            string `json:"unit"`
	ExpiredQuantity int    `json:"expiredQuantity"`
	LastUpdated     string `json:"lastUpdated"`
}

// ForecastByDaypart 按餐段拆分的预测用量
type ForecastByDaypart struct {
	Daypart          string  `json:"daypart"`
	ForecastQuantity float64 `json:"forecastQuantity"`
	Unit             string  `json:"unit"`
}

// IngredientDetail 食材详情响应
type IngredientDetail struct {
	IngredientID      string              `json:"ingredientId"`
	IngredientName    string              `json:"ingredientName"`
	PrepStatus        PrepStatus          `json:"prepStatus"`
	Category          PrepCategory        `json:"category,omitempty"`
	Inventory         InventorySnapshot   `json:"inventory"`
	ForecastByDaypart []ForecastByDaypart `json:"forecastByDaypart"`
}

// ApproveForecastItem 审批预测时的单条食材
type ApproveForecastItem struct {
	PosItemID          string  `json:"posItemId"`
	PosItemName        string  `json:"posItemName"`
	ForecastedQuantity float64 `json:"forecastedQuantity"`
	Unit               string  `json:"unit,omitempty"`
	ForecastID         string  `json:"forecastId,omitempty"`
}

// ApproveForecastDayPart 审批预测时的餐段分组
type ApproveForecastDayPart struct {
	DayPart string                `json:"dayPart"`
	Items   []ApproveForecastItem `json:"items"`
}

// ApproveForecastRequest 预测审批请求
type ApproveForecastRequest struct {
	Date       string                   `json:"date"`
	ModifiedBy string                   `json:"modifiedBy"`
	Forecasts  []ApproveForecastDayPart `json:"forecasts"`
}
