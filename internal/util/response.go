package util

import (
	"math_quiz_backend/pkg/logger"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// Response 统一响应结构
type Response struct {
	Code    int         `json:"code"`
	Message string      `json:"message"`
	Data    interface{} `json:"data,omitempty"`
}

func Success(c *gin.Context, data interface{}) {
	c.JSON(http.StatusOK, Response{
		Code:    http.StatusOK,
		Message: "success",
		Data:    data,
	})
}

func Created(c *gin.Context, data interface{}) {
	c.JSON(http.StatusCreated, Response{
		Code:    http.StatusCreated,
		Message: "created",
		Data:    data,
	})
}

func Error(c *gin.Context, code int, message string) {
	c.JSON(code, Response{
		Code:    code,
		Message: message,
	})
}

func BadRequest(c *gin.Context, message string) {
	Error(c, http.StatusBadRequest, message)
}

func InternalServerError(c *gin.Context) {
	Error(c, http.StatusInternalServerError, "Internal server error")
}

func LogInternalError(c *gin.Context, err error) {
	logger.Log.Error("Internal server error", zap.String("path", c.Request.URL.Path), zap.Error(err))
	InternalServerError(c)
}

// ErrorPage 以 HTML 页面返回错误
func ErrorPage(c *gin.Context, code int, message string) {
	c.HTML(code, "error.html", gin.H{
		"Code":    code,
		"Message": message,
	})
}

func LogInternalErrorPage(c *gin.Context, err error) {
	logger.Log.Error("Internal server error", zap.String("path", c.Request.URL.Path), zap.Error(err))
	ErrorPage(c, http.StatusInternalServerError, "Something went wrong, please try again later.")
}
