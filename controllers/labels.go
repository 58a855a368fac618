package controllers

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/BerniceZTT/prep_end/service"
	"github.com/BerniceZTT/prep_end/utils"
)

// LabelController 标签打印控制器
type LabelController struct {
	Agg         *service.LabelAggregator
	DefaultDate string
}

// NewLabelController 创建标签控制器
func NewLabelController(agg *service.LabelAggregator, defaultDate string) *LabelController {
	return &LabelController{Agg: agg, DefaultDate: defaultDate}
}

// handleLabelError 把聚合器错误映射为API错误
func handleLabelError(c *gin.Context, err error) {
	if errors.Is(err, service.ErrItemNotFound) {
		utils.HandleError(c, utils.CreateNotFoundError("标签条目"))
		return
	}
	utils.HandleError(c, utils.CreateGatewayError("标签打印", err))
}

// ListItems 获取可打印条目，term 为名称过滤，reload=true 时重新拉取
func (ctl *LabelController) ListItems(c *gin.Context) {
	date := c.DefaultQuery("date", ctl.DefaultDate)
	term := c.Query("term")

	if c.Query("reload") == "true" || len(ctl.Agg.Items("")) == 0 {
		if _, err := ctl.Agg.Load(c.Request.Context(), date); err != nil {
			handleLabelError(c, err)
			return
		}
	}

	utils.SuccessResponse(c, gin.H{
		"items":         ctl.Agg.Items(term),
		"selectedCount": ctl.Agg.SelectedCount(),
	}, "")
}

// SetSelected 设置单个条目选中状态
func (ctl *LabelController) SetSelected(c *gin.Context) {
	var req struct {
		Selected bool `json:"selected"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.HandleError(c, utils.CreateBadRequestError("无效的请求体: "+err.Error()))
		return
	}

	if err := ctl.Agg.SetSelected(c.Param("id"), req.Selected); err != nil {
		handleLabelError(c, err)
		return
	}
	utils.SuccessResponse(c, gin.H{"selectedCount": ctl.Agg.SelectedCount()}, "")
}

// SelectAll 批量设置选中状态，只作用于当前过滤可见的子集
func (ctl *LabelController) SelectAll(c *gin.Context) {
	var req struct {
		Term     string `json:"term"`
		Selected bool   `json:"selected"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.HandleError(c, utils.CreateBadRequestError("无效的请求体: "+err.Error()))
		return
	}

	ctl.Agg.SelectAll(ctl.Agg.VisibleIDs(req.Term), req.Selected)
	utils.SuccessResponse(c, gin.H{"selectedCount": ctl.Agg.SelectedCount()}, "")
}

// ClearAll 清空全部选中状态
func (ctl *LabelController) ClearAll(c *gin.Context) {
	ctl.Agg.ClearAll()
	utils.SuccessResponse(c, gin.H{"selectedCount": 0}, "")
}

// SetCount 设置打印数量
func (ctl *LabelController) SetCount(c *gin.Context) {
	var req struct {
		LabelCount int `json:"labelCount"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.HandleError(c, utils.CreateBadRequestError("无效的请求体: "+err.Error()))
		return
	}

	if err := ctl.Agg.SetLabelCount(c.Param("id"), req.LabelCount); err != nil {
		handleLabelError(c, err)
		return
	}
	utils.SuccessResponse(c, nil, "")
}

// IncrementCount 打印数量加一
func (ctl *LabelController) IncrementCount(c *gin.Context) {
	if err := ctl.Agg.IncrementCount(c.Param("id")); err != nil {
		handleLabelError(c, err)
		return
	}
	utils.SuccessResponse(c, nil, "")
}

// DecrementCount 打印数量减一
func (ctl *LabelController) DecrementCount(c *gin.Context) {
	if err := ctl.Agg.DecrementCount(c.Param("id")); err != nil {
		handleLabelError(c, err)
		return
	}
	utils.SuccessResponse(c, nil, "")
}

// Submit 提交批量打印
// 无可提交条目时不发起网关请求，返回提示而不是错误
func (ctl *LabelController) Submit(c *gin.Context) {
	outcome, err := ctl.Agg.Submit(c.Request.Context())
	if err != nil {
		handleLabelError(c, err)
		return
	}
	utils.SuccessResponse(c, outcome, outcome.Message)
}

// Preview 最近一次提交的标签预览
func (ctl *LabelController) Preview(c *gin.Context) {
	outcome := ctl.Agg.LastOutcome()
	if outcome == nil {
		utils.HandleError(c, utils.CreateNotFoundError("打印结果"))
		return
	}

	copies := service.GenerateLabelCopies(outcome.Labels, time.Now())
	utils.SuccessResponse(c, gin.H{
		"copies":          copies,
		"totalRequested":  outcome.TotalRequested,
		"totalSuccessful": outcome.TotalSuccessful,
		"totalFailed":     outcome.TotalFailed,
	}, "")
}

// Document 最近一次提交的A4打印文档
func (ctl *LabelController) Document(c *gin.Context) {
	outcome := ctl.Agg.LastOutcome()
	if outcome == nil {
		utils.HandleError(c, utils.CreateNotFoundError("打印结果"))
		return
	}

	copies := service.GenerateLabelCopies(outcome.Labels, time.Now())
	doc, err := service.RenderPrintDocument(copies)
	if err != nil {
		utils.HandleError(c, err)
		return
	}
	c.Data(http.StatusOK, "text/html; charset=utf-8", []byte(doc))
}
