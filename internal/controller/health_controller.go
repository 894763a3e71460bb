package controller

import (
	"context"
	"math_quiz_backend/internal/repository"
	"math_quiz_backend/internal/util"
	"math_quiz_backend/pkg/logger"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type HealthController struct {
	Results repository.ResultsStore
}

func NewHealthController(results repository.ResultsStore) *HealthController {
	return &HealthController{Results: results}
}

// @Summary 健康检查
// @Description 检查服务与结果存储的状态
// @Tags 系统
// @Produce json
// @Success 200 {object} util.Response
// @Failure 503 {object} util.Response
// @Router /api/health [get]
func (c *HealthController) HealthCheck(ctx *gin.Context) {
	pingCtx, cancel := context.WithTimeout(ctx.Request.Context(), 5*time.Second)
	defer cancel()

	if err := c.Results.Ping(pingCtx); err != nil {
		logger.Log.Warn("Results store unavailable", zap.Error(err))
		util.Error(ctx, http.StatusServiceUnavailable, "Results store unavailable")
		return
	}

	util.Success(ctx, gin.H{
		"status": "ok",
		"components": gin.H{
			"results": "up",
		},
	})
}
