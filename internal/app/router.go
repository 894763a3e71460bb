package app

import (
	"math_quiz_backend/docs"
	"math_quiz_backend/internal/config"
	"math_quiz_backend/internal/service"
	"math_quiz_backend/internal/util"
	"math_quiz_backend/pkg/monitoring"

	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
)

func (a *App) registerRoutes(router *gin.Engine, c *controllers, cfg *config.Config) {
	docs.SwaggerInfo.BasePath = "/"
	router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler, ginSwagger.URL("/swagger/doc.json")))

	router.GET("/metrics", monitoring.PrometheusHandler())

	// 1. 页面路由
	a.registerPageRoutes(router, c)

	// 2. JSON 接口
	a.registerAPIRoutes(router, c)

	// 图表等静态文件
	if cfg.Storage.Type == util.StorageLocal || cfg.Storage.Type == "" {
		router.Static(service.StaticURLPrefix, cfg.Storage.LocalPath)
	}
}

func (a *App) registerPageRoutes(router *gin.Engine, c *controllers) {
	router.GET("/", c.home.Index)
	router.GET("/quiz", c.quiz.ShowQuiz)
	router.POST("/quiz", c.quiz.SubmitQuiz)
	router.GET("/results", c.results.ShowResults)
	router.GET("/analytics", c.analytics.ShowAnalytics)
	router.GET("/worksheet", c.worksheet.DownloadWorksheet)
}

func (a *App) registerAPIRoutes(router *gin.Engine, c *controllers) {
	api := router.Group("/api")
	{
		api.GET("/health", c.health.HealthCheck)
		api.GET("/results", c.results.GetResults)
		api.GET("/quiz", c.quiz.StartQuizAPI)
		api.POST("/quiz", c.quiz.SubmitQuizAPI)
	}
}
