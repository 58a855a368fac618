package controllers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/BerniceZTT/prep_end/models"
	"github.com/BerniceZTT/prep_end/service"
	"github.com/BerniceZTT/prep_end/utils"
)

// PrepController 备餐流程控制器
type PrepController struct {
	Svc         *service.PrepService
	DefaultDate string
}

// NewPrepController 创建备餐控制器
func NewPrepController(svc *service.PrepService, defaultDate string) *PrepController {
	return &PrepController{Svc: svc, DefaultDate: defaultDate}
}

// updatedByRequest 带操作人的请求体
type updatedByRequest struct {
	UpdatedBy string `json:"updatedBy"`
}

// handlePrepError 把服务层错误映射为API错误
func handlePrepError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrItemNotFound):
		utils.HandleError(c, utils.CreateNotFoundError("食材条目"))
	case errors.Is(err, service.ErrQuantityLocked), errors.Is(err, service.ErrStageConflict):
		utils.HandleError(c, utils.CreateConflictError(err.Error()))
	default:
		utils.HandleError(c, utils.CreateGatewayError("备餐", err))
	}
}

// ListItems 获取备餐条目，category 可选过滤，reload=true 时重新拉取预测
func (ctl *PrepController) ListItems(c *gin.Context) {
	date := c.DefaultQuery("date", ctl.DefaultDate)
	category := models.PrepCategory(c.Query("category"))

	if c.Query("reload") == "true" || len(ctl.Svc.Items("")) == 0 {
		if _, err := ctl.Svc.LoadItems(c.Request.Context(), date); err != nil {
			utils.HandleError(c, utils.CreateGatewayError("加载备餐预测", err))
			return
		}
	}

	items := ctl.Svc.Items(category)
	utils.SuccessResponse(c, gin.H{
		"date":       date,
		"items":      items,
		"refreshKey": ctl.Svc.Refresh().Key(),
	}, "")
}

// StartPrep 开始备餐并启动倒计时
func (ctl *PrepController) StartPrep(c *gin.Context) {
	var req updatedByRequest
	_ = c.ShouldBindJSON(&req)
	updatedBy := utils.ResolveUpdatedBy(c, req.UpdatedBy)

	if err := ctl.Svc.StartPrep(c.Param("id"), updatedBy); err != nil {
		handlePrepError(c, err)
		return
	}

	item, err := ctl.Svc.Item(c.Param("id"))
	if err != nil {
		handlePrepError(c, err)
		return
	}
	utils.SuccessResponse(c, item, "倒计时已启动")
}

// Increment 数量加一
func (ctl *PrepController) Increment(c *gin.Context) {
	quantity, err := ctl.Svc.Increment(c.Param("id"))
	if err != nil {
		handlePrepError(c, err)
		return
	}
	utils.SuccessResponse(c, gin.H{"quantity": quantity}, "")
}

// Decrement 数量减一，下限为0
func (ctl *PrepController) Decrement(c *gin.Context) {
	quantity, err := ctl.Svc.Decrement(c.Param("id"))
	if err != nil {
		handlePrepError(c, err)
		return
	}
	utils.SuccessResponse(c, gin.H{"quantity": quantity}, "")
}

// ConfirmTempCheck 温度检查确认
func (ctl *PrepController) ConfirmTempCheck(c *gin.Context) {
	var req updatedByRequest
	_ = c.ShouldBindJSON(&req)
	updatedBy := utils.ResolveUpdatedBy(c, req.UpdatedBy)

	if err := ctl.Svc.ConfirmTempCheck(c.Request.Context(), c.Param("id"), updatedBy); err != nil {
		handlePrepError(c, err)
		return
	}
	utils.SuccessResponse(c, nil, "温度检查已确认")
}

// MarkPrepared 标记备餐完成
func (ctl *PrepController) MarkPrepared(c *gin.Context) {
	var req updatedByRequest
	_ = c.ShouldBindJSON(&req)
	updatedBy := utils.ResolveUpdatedBy(c, req.UpdatedBy)

	if err := ctl.Svc.MarkPrepared(c.Request.Context(), c.Param("id"), updatedBy); err != nil {
		handlePrepError(c, err)
		return
	}
	utils.SuccessResponse(c, nil, "备餐完成")
}

// PrepareMore 可供应阶段继续备餐
func (ctl *PrepController) PrepareMore(c *gin.Context) {
	if err := ctl.Svc.PrepareMore(c.Param("id")); err != nil {
		handlePrepError(c, err)
		return
	}
	utils.SuccessResponse(c, nil, "已回到待备餐")
}

// PrepAll 广播"全部开始备餐"
func (ctl *PrepController) PrepAll(c *gin.Context) {
	var req updatedByRequest
	_ = c.ShouldBindJSON(&req)
	updatedBy := utils.ResolveUpdatedBy(c, req.UpdatedBy)

	result := ctl.Svc.PrepAll(c.Request.Context(), updatedBy)
	utils.SuccessResponse(c, result, "")
}

// RefreshKey 当前全局刷新信号
func (ctl *PrepController) RefreshKey(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"refreshKey": ctl.Svc.Refresh().Key()})
}

// UpdateOnHand 更新现存量
func (ctl *PrepController) UpdateOnHand(c *gin.Context) {
	var req struct {
		OnHandQuantity int    `json:"onHandQuantity"`
		UpdatedBy      string `json:"updatedBy"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.HandleError(c, utils.CreateBadRequestError("无效的请求体: "+err.Error()))
		return
	}
	if req.OnHandQuantity < 0 {
		utils.HandleError(c, utils.CreateBadRequestError("现存量不能为负数"))
		return
	}

	updatedBy := utils.ResolveUpdatedBy(c, req.UpdatedBy)
	if err := ctl.Svc.UpdateOnHand(c.Request.Context(), c.Param("ingredientId"), req.OnHandQuantity, updatedBy); err != nil {
		utils.HandleError(c, utils.CreateGatewayError("更新现存量", err))
		return
	}
	utils.SuccessResponse(c, nil, "现存量已更新")
}

// UpdateExpired 更新过期量
func (ctl *PrepController) UpdateExpired(c *gin.Context) {
	var req struct {
		ExpiredQuantity int    `json:"expiredQuantity"`
		UpdatedBy       string `json:"updatedBy"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.HandleError(c, utils.CreateBadRequestError("无效的请求体: "+err.Error()))
		return
	}
	if req.ExpiredQuantity < 0 {
		utils.HandleError(c, utils.CreateBadRequestError("过期量不能为负数"))
		return
	}

	updatedBy := utils.ResolveUpdatedBy(c, req.UpdatedBy)
	if err := ctl.Svc.UpdateExpired(c.Request.Context(), c.Param("ingredientId"), req.ExpiredQuantity, updatedBy); err != nil {
		utils.HandleError(c, utils.CreateGatewayError("更新过期量", err))
		return
	}
	utils.SuccessResponse(c, nil, "过期量已更新")
}

// ClearExpired 清除过期量
func (ctl *PrepController) ClearExpired(c *gin.Context) {
	if err := ctl.Svc.ClearExpired(c.Request.Context(), c.Param("ingredientId")); err != nil {
		utils.HandleError(c, utils.CreateGatewayError("清除过期量", err))
		return
	}
	utils.SuccessResponse(c, nil, "过期量已清除")
}

// Detail 食材详情，含按餐段拆分的预测用量
func (ctl *PrepController) Detail(c *gin.Context) {
	date := c.DefaultQuery("date", ctl.DefaultDate)
	detail, err := ctl.Svc.Detail(c.Request.Context(), c.Param("ingredientId"), date)
	if err != nil {
		utils.HandleError(c, utils.CreateGatewayError("获取食材详情", err))
		return
	}
	utils.SuccessResponse(c, detail, "")
}
