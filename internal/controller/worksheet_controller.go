package controller

import (
	"math_quiz_backend/internal/service"
	"math_quiz_backend/internal/util"
	"net/http"

	"github.com/gin-gonic/gin"
)

type WorksheetController struct {
	WorksheetService *service.WorksheetService
}

func NewWorksheetController(worksheetService *service.WorksheetService) *WorksheetController {
	return &WorksheetController{WorksheetService: worksheetService}
}

// @Summary 下载练习纸
// @Description 生成不带答案的算术练习纸，以附件形式下载
// @Tags 练习
// @Produce plain
// @Success 200 {string} string "worksheet.txt"
// @Router /worksheet [get]
func (c *WorksheetController) DownloadWorksheet(ctx *gin.Context) {
	content := c.WorksheetService.Build()

	ctx.Header("Content-Disposition", "attachment; filename="+service.WorksheetFilename)
	ctx.Data(http.StatusOK, util.MimeTextPlain, []byte(content))
}
