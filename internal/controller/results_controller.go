package controller

import (
	"math_quiz_backend/internal/service"
	"math_quiz_backend/internal/util"
	"net/http"

	"github.com/gin-gonic/gin"
)

type ResultsController struct {
	ResultsService *service.ResultsService
}

func NewResultsController(resultsService *service.ResultsService) *ResultsController {
	return &ResultsController{ResultsService: resultsService}
}

func (c *ResultsController) ShowResults(ctx *gin.Context) {
	summary, err := c.ResultsService.Summaries(ctx.Request.Context())
	if err != nil {
		util.LogInternalErrorPage(ctx, err)
		return
	}

	ctx.HTML(http.StatusOK, "results.html", gin.H{"Summary": summary})
}

// @Summary 获取答题汇总
// @Description 按用户统计答题总数、答对数与答错数，顺序为首次出现顺序
// @Tags 结果
// @Produce json
// @Success 200 {object} util.Response{data=[]model.UserSummary}
// @Router /api/results [get]
func (c *ResultsController) GetResults(ctx *gin.Context) {
	summary, err := c.ResultsService.Summaries(ctx.Request.Context())
	if err != nil {
		util.LogInternalError(ctx, err)
		return
	}

	util.Success(ctx, summary)
}
