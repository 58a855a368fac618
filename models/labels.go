package models

// PrintItem 可打印标签的条目，来自 print-label-items 接口
type PrintItem struct {
	IngredientPrepForecastID string     `json:"ingredientPrepForecastId"`
	IngredientName           string     `json:"ingredientName"`
	PrepStatus               PrepStatus `json:"prepStatus"`
	PrepIntervalHours        float64    `json:"prepIntervalHours"`
}

// PrintItemsResponse print-label-items 接口响应
type PrintItemsResponse struct {
	Date  string      `json:"date"`
	Items []PrintItem `json:"items"`
}

// LabelRequest 标签打印选择项，聚合器持有的是选择时的拷贝
type LabelRequest struct {
	ItemID     string `json:"itemId"`
	Name       string `json:"name"`
	LabelCount int    `json:"labelCount"`
	Selected   bool   `json:"selected"`
}

// PrintLabelResponse 单条打印响应
type PrintLabelResponse struct {
	Message           string  `json:"message"`
	IngredientName    string  `json:"ingredientName"`
	PrepTime          string  `json:"prepTime"`
	ExpiryTime        string  `json:"expiryTime"`
	PrepIntervalHours float64 `json:"prepIntervalHours"`
	UpdatedAt         string  `json:"updatedAt"`
}

// PrintLabelEntry 批量打印响应中的单条结果
type PrintLabelEntry struct {
	IngredientPrepForecastID string  `json:"ingredientPrepForecastId"`
	IngredientName           string  `json:"ingredientName"`
	PrepTime                 string  `json:"prepTime"`
	ExpiryTime               string  `json:"expiryTime"`
	PrepIntervalHours        float64 `json:"prepIntervalHours"`
	Success                  bool    `json:"success"`
	Error                    string  `json:"error,omitempty"`
}

// MultiPrintLabelResponse 批量打印接口响应
type MultiPrintLabelResponse struct {
	Message         string            `json:"message"`
	TotalRequested  int               `json:"totalRequested"`
	TotalSuccessful int               `json:"totalSuccessful"`
	TotalFailed     int               `json:"totalFailed"`
	Labels          []PrintLabelEntry `json:"labels"`
	UpdatedAt       string            `json:"updatedAt"`
}

// SelectedLabel 提交后回填了打印时间的选择项
type SelectedLabel struct {
	ItemID            string  `json:"itemId"`
	Name              string  `json:"name"`
	LabelCount        int     `json:"labelCount"`
	PrepTime          string  `json:"prepTime,omitempty"`
	ExpiryTime        string  `json:"expiryTime,omitempty"`
	PrepIntervalHours float64 `json:"prepIntervalHours,omitempty"`
	Success           bool    `json:"success"`
	Error             string  `json:"error,omitempty"`
}

// PrintOutcome 一次批量打印提交的汇总结果
type PrintOutcome struct {
	Submitted       bool            `json:"submitted"`
	Message         string          `json:"message,omitempty"`
	TotalRequested  int             `json:"totalRequested"`
	TotalSuccessful int             `json:"totalSuccessful"`
	TotalFailed     int             `json:"totalFailed"`
	Labels          []SelectedLabel `json:"labels,omitempty"`
	UpdatedAt       string          `json:"updatedAt,omitempty"`
}

// LabelCopy 单张可打印标签，纯渲染投影，每次生成，不做持久化
type LabelCopy struct {
	ItemID        string `json:"itemId"`
	Name          string `json:"name"`
	PrepDate      string `json:"prepDate"`
	PrepTime      string `json:"prepTime"`
	ExpiryTime    string `json:"expiryTime,omitempty"`
	SequenceIndex int    `json:"sequenceIndex"`
	SequenceTotal int    `json:"sequenceTotal"`
}
