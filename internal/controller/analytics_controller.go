package controller

import (
	"errors"
	"math_quiz_backend/internal/service"
	"math_quiz_backend/internal/util"
	"net/http"

	"github.com/gin-gonic/gin"
)

type AnalyticsController struct {
	ChartService *service.ChartService
}

func NewAnalyticsController(chartService *service.ChartService) *AnalyticsController {
	return &AnalyticsController{ChartService: chartService}
}

// ShowAnalytics 无数据时返回纯文本，否则重新生成图表并渲染页面
func (c *AnalyticsController) ShowAnalytics(ctx *gin.Context) {
	url, err := c.ChartService.Render(ctx.Request.Context())
	if errors.Is(err, util.ErrNoResults) {
		ctx.String(http.StatusOK, util.NoDataMessage)
		return
	}
	if err != nil {
		util.LogInternalErrorPage(ctx, err)
		return
	}

	ctx.HTML(http.StatusOK, "analytics.html", gin.H{"ChartURL": url})
}
