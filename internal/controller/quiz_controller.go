package controller

import (
	"errors"
	"math_quiz_backend/internal/service"
	"math_quiz_backend/internal/util"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
)

type QuizController struct {
	QuizService *service.QuizService
}

func NewQuizController(quizService *service.QuizService) *QuizController {
	return &QuizController{QuizService: quizService}
}

type quizForm struct {
	Token string `form:"quiz_token" binding:"required"`
	Name  string `form:"name"`
}

// StartQuizResponse 新测验
type StartQuizResponse struct {
	Token     string   `json:"token"`
	Questions []string `json:"questions"`
}

// SubmitQuizPayload 提交测验
type SubmitQuizPayload struct {
	Token     string   `json:"token" binding:"required"`
	Name      string   `json:"name"`
	Questions []string `json:"questions"`
	Answers   []string `json:"answers"`
}

// ShowQuiz 渲染一套新题
func (c *QuizController) ShowQuiz(ctx *gin.Context) {
	session, token, err := c.QuizService.StartQuiz(ctx.Request.Context())
	if err != nil {
		util.LogInternalErrorPage(ctx, err)
		return
	}

	ctx.HTML(http.StatusOK, "quiz.html", gin.H{
		"Token":     token,
		"Questions": session.Expressions(),
	})
}

// SubmitQuiz 批改表单提交并跳转到结果页
func (c *QuizController) SubmitQuiz(ctx *gin.Context) {
	var form quizForm
	if err := ctx.ShouldBind(&form); err != nil {
		util.ErrorPage(ctx, http.StatusBadRequest, "The quiz form is incomplete. Please start a new quiz.")
		return
	}

	n := c.QuizService.QuestionCount
	req := service.SubmitQuizRequest{
		Token:     form.Token,
		Name:      form.Name,
		Questions: make([]string, n),
		Answers:   make([]string, n),
	}
	for i := 0; i < n; i++ {
		req.Questions[i] = ctx.PostForm("question" + strconv.Itoa(i))
		req.Answers[i] = ctx.PostForm("answer" + strconv.Itoa(i))
	}

	if _, err := c.QuizService.SubmitQuiz(ctx.Request.Context(), req); err != nil {
		if code, msg, ok := quizClientError(err); ok {
			util.ErrorPage(ctx, code, msg)
			return
		}
		util.LogInternalErrorPage(ctx, err)
		return
	}

	ctx.Redirect(http.StatusFound, "/results")
}

// @Summary 开始测验
// @Description 生成一套新题并返回会话令牌
// @Tags 测验
// @Produce json
// @Success 200 {object} util.Response{data=StartQuizResponse}
// @Router /api/quiz [get]
func (c *QuizController) StartQuizAPI(ctx *gin.Context) {
	session, token, err := c.QuizService.StartQuiz(ctx.Request.Context())
	if err != nil {
		util.LogInternalError(ctx, err)
		return
	}

	util.Success(ctx, StartQuizResponse{
		Token:     token,
		Questions: session.Expressions(),
	})
}

// @Summary 提交测验
// @Description 按会话中的题目批改答案并写入结果表
// @Tags 测验
// @Accept json
// @Produce json
// @Param body body SubmitQuizPayload true "答案"
// @Success 201 {object} util.Response{data=model.QuizResult}
// @Failure 400 {object} util.Response
// @Router /api/quiz [post]
func (c *QuizController) SubmitQuizAPI(ctx *gin.Context) {
	var payload SubmitQuizPayload
	if err := ctx.ShouldBindJSON(&payload); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	result, err := c.QuizService.SubmitQuiz(ctx.Request.Context(), service.SubmitQuizRequest{
		Token:     payload.Token,
		Name:      payload.Name,
		Questions: payload.Questions,
		Answers:   payload.Answers,
	})
	if err != nil {
		if code, msg, ok := quizClientError(err); ok {
			util.Error(ctx, code, msg)
			return
		}
		util.LogInternalError(ctx, err)
		return
	}

	util.Created(ctx, result)
}

// quizClientError 区分客户端造成的错误与内部错误
func quizClientError(err error) (int, string, bool) {
	switch {
	case errors.Is(err, util.ErrQuizSessionNotFound):
		return http.StatusBadRequest, "This quiz has expired or was already submitted. Please start a new quiz.", true
	case errors.Is(err, util.ErrQuizTampered), errors.Is(err, util.ErrAnswerCountMismatch):
		return http.StatusBadRequest, "The submitted quiz does not match the questions that were issued.", true
	}
	return 0, "", false
}
