package controllers

import (
	"errors"

	"github.com/gin-gonic/gin"

	"github.com/BerniceZTT/prep_end/gateway"
	"github.com/BerniceZTT/prep_end/models"
	"github.com/BerniceZTT/prep_end/service"
	"github.com/BerniceZTT/prep_end/utils"
)

// InventoryController 库存盘点与订货控制器
type InventoryController struct {
	GW    *gateway.Client
	Store *service.InventoryStore
}

// NewInventoryController 创建库存控制器
func NewInventoryController(gw *gateway.Client, store *service.InventoryStore) *InventoryController {
	return &InventoryController{GW: gw, Store: store}
}

// StockCounting 当日盘点数据
func (ctl *InventoryController) StockCounting(c *gin.Context) {
	resp, err := ctl.GW.StockCounting(c.Request.Context())
	if err != nil {
		utils.HandleError(c, utils.CreateGatewayError("获取盘点数据", err))
		return
	}
	utils.SuccessResponse(c, resp, "")
}

// WeeklyStockCounting 按周盘点数据，位置与类别为可选过滤条件
func (ctl *InventoryController) WeeklyStockCounting(c *gin.Context) {
	startDate := c.Query("startDate")
	endDate := c.Query("endDate")
	if startDate == "" || endDate == "" {
		utils.HandleError(c, utils.CreateBadRequestError("缺少 startDate 或 endDate"))
		return
	}

	resp, err := ctl.GW.WeeklyStockCounting(c.Request.Context(), startDate, endDate,
		c.Query("storageLocation"), c.Query("category"))
	if err != nil {
		utils.HandleError(c, utils.CreateGatewayError("获取周盘点数据", err))
		return
	}
	utils.SuccessResponse(c, resp, "")
}

// StockOrder 生成订货建议
func (ctl *InventoryController) StockOrder(c *gin.Context) {
	items, err := ctl.GW.StockOrder(c.Request.Context())
	if err != nil {
		utils.HandleError(c, utils.CreateGatewayError("生成订货建议", err))
		return
	}
	utils.SuccessResponse(c, gin.H{"items": items}, "")
}

// AddPendingUpdate 记录一条待保存的盘点修改
func (ctl *InventoryController) AddPendingUpdate(c *gin.Context) {
	var req struct {
		IngredientID      string                   `json:"ingredientId"`
		RemainingQuantity models.QuantityBreakdown `json:"remainingQuantity"`
		UpdatedBy         string                   `json:"updatedBy"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.HandleError(c, utils.CreateBadRequestError("无效的请求体: "+err.Error()))
		return
	}
	if req.IngredientID == "" {
		utils.HandleError(c, utils.CreateBadRequestError("缺少 ingredientId"))
		return
	}

	updatedBy := utils.ResolveUpdatedBy(c, req.UpdatedBy)
	ctl.Store.AddPendingUpdate(req.IngredientID, req.RemainingQuantity, updatedBy)
	utils.SuccessResponse(c, gin.H{"pendingCount": ctl.Store.PendingCount()}, "")
}

// PendingUpdates 待保存修改快照
func (ctl *InventoryController) PendingUpdates(c *gin.Context) {
	utils.SuccessResponse(c, gin.H{
		"pending":      ctl.Store.Pending(),
		"pendingCount": ctl.Store.PendingCount(),
	}, "")
}

// ClearPendingUpdates 丢弃全部待保存修改
func (ctl *InventoryController) ClearPendingUpdates(c *gin.Context) {
	ctl.Store.Clear()
	utils.SuccessResponse(c, nil, "已丢弃待保存修改")
}

// SaveAll 保存全部待保存修改
func (ctl *InventoryController) SaveAll(c *gin.Context) {
	if err := ctl.Store.SaveAll(c.Request.Context()); err != nil {
		if errors.Is(err, service.ErrSaveInProgress) {
			utils.HandleError(c, utils.CreateConflictError(err.Error()))
			return
		}
		utils.HandleError(c, utils.CreateGatewayError("保存盘点", err))
		return
	}
	utils.SuccessResponse(c, gin.H{"pendingCount": ctl.Store.PendingCount()}, "盘点已保存")
}
