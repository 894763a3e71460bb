package controller

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

type HomeController struct{}

func NewHomeController() *HomeController {
	return &HomeController{}
}

func (c *HomeController) Index(ctx *gin.Context) {
	ctx.HTML(http.StatusOK, "index.html", nil)
}
