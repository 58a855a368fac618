package controllers

import (
	"github.com/gin-gonic/gin"

	"github.com/BerniceZTT/prep_end/gateway"
	"github.com/BerniceZTT/prep_end/models"
	"github.com/BerniceZTT/prep_end/service"
	"github.com/BerniceZTT/prep_end/utils"
)

// ForecastController 预测查看与审批控制器
type ForecastController struct {
	GW      *gateway.Client
	Refresh *service.RefreshSignal
}

// NewForecastController 创建预测控制器
func NewForecastController(gw *gateway.Client, refresh *service.RefreshSignal) *ForecastController {
	return &ForecastController{GW: gw, Refresh: refresh}
}

// GetForecasts 获取指定日期的预测
func (ctl *ForecastController) GetForecasts(c *gin.Context) {
	resp, err := ctl.GW.Forecasts(c.Request.Context(), c.Param("date"))
	if err != nil {
		utils.HandleError(c, utils.CreateGatewayError("获取预测", err))
		return
	}
	utils.SuccessResponse(c, resp, "")
}

// GetApprovedForecasts 获取已审批的预测
func (ctl *ForecastController) GetApprovedForecasts(c *gin.Context) {
	resp, err := ctl.GW.ApprovedForecasts(c.Request.Context(), c.Param("date"))
	if err != nil {
		utils.HandleError(c, utils.CreateGatewayError("获取已审批预测", err))
		return
	}
	utils.SuccessResponse(c, resp, "")
}

// GetIngredientForecasts 获取食材备餐预测
func (ctl *ForecastController) GetIngredientForecasts(c *gin.Context) {
	resp, err := ctl.GW.IngredientForecasts(c.Request.Context(), c.Param("date"))
	if err != nil {
		utils.HandleError(c, utils.CreateGatewayError("获取食材预测", err))
		return
	}
	utils.SuccessResponse(c, resp, "")
}

// ApproveForecasts 提交预测审批，成功后递增全局刷新信号
func (ctl *ForecastController) ApproveForecasts(c *gin.Context) {
	var req models.ApproveForecastRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.HandleError(c, utils.CreateBadRequestError("无效的请求体: "+err.Error()))
		return
	}
	if req.ModifiedBy == "" {
		req.ModifiedBy = utils.ResolveUpdatedBy(c, "")
	}

	if err := ctl.GW.ApproveForecast(c.Request.Context(), req); err != nil {
		utils.HandleError(c, utils.CreateGatewayError("预测审批", err))
		return
	}

	refreshKey := ctl.Refresh.Bump()
	utils.SuccessResponse(c, gin.H{"refreshKey": refreshKey}, "审批成功")
}
