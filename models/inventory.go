package models

// QuantityBreakdown 按包装单位拆分的数量
type QuantityBreakdown struct {
	Boxes int `json:"boxes"`
	Bags  int `json:"bags"`
	Each  int `json:"each"`
}

// ConsumptionStatus 消耗趋势枚举
type ConsumptionStatus string

const (
	ConsumptionNormal   ConsumptionStatus = "normal"
	ConsumptionIncrease ConsumptionStatus = "increase"
	ConsumptionDecrease ConsumptionStatus = "decrease"
)

// StockCountItem 盘点条目
type StockCountItem struct {
	IngredientID      string            `json:"ingredientId"`
	ItemName          string            `json:"itemName"`
	StartOfDayQty     QuantityBreakdown `json:"startOfDayQuantity"`
	EndOfDayQty       QuantityBreakdown `json:"endOfDayQuantity"`
	RemainingQty      QuantityBreakdown `json:"remainingQuantity"`
	ConsumptionRate   QuantityBreakdown `json:"consumptionRate"`
	ConsumptionStatus ConsumptionStatus `json:"consumptionStatus"`
	Category          string            `json:"category,omitempty"`
}

// StockCountResponse 盘点接口响应
type StockCountResponse struct {
	Items      []StockCountItem `json:"items"`
	TotalItems int              `json:"totalItems,omitempty"`
	Location   string           `json:"location,omitempty"`
}

// StockQuantityUpdate 盘点数量更新请求
type StockQuantityUpdate struct {
	RemainingQuantity QuantityBreakdown `json:"remainingQuantity"`
	UpdatedBy         string            `json:"updatedBy"`
	Notes             string            `json:"notes,omitempty"`
}

// PendingStockUpdate 尚未保存的盘点修改
type PendingStockUpdate struct {
	IngredientID      string            `json:"ingredientId"`
	RemainingQuantity QuantityBreakdown `json:"remainingQuantity"`
	UpdatedBy         string            `json:"updatedBy"`
}

// OrderQuantity 订货数量，字段可缺省
type OrderQuantity struct {
	Units *int `json:"units,omitempty"`
	Bags  *int `json:"bags,omitempty"`
	Boxes *int `json:"boxes,omitempty"`
}

// StockOrderItem 订货建议条目
type StockOrderItem struct {
	ID                string        `json:"id"`
	ItemName          string        `json:"itemName"`
	Category          string        `json:"category"`
	LastUpdatedCount  OrderQuantity `json:"lastUpdatedCount"`
	PrevOrderQuantity OrderQuantity `json:"prevOrderQuantity"`
	NextOrderQuantity OrderQuantity `json:"nxtOrderQuantity"`
	ExpOnHandQuantity OrderQuantity `json:"ExpOnHandQuantity"`
}
