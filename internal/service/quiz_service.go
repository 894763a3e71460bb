package service

import (
	"context"
	"fmt"
	"math_quiz_backend/internal/model"
	"math_quiz_backend/internal/repository"
	"math_quiz_backend/internal/util"
	"math_quiz_backend/pkg/logger"
	"math_quiz_backend/pkg/monitoring"
	"math_quiz_backend/pkg/tracing"
	"strings"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"
)

type QuizService struct {
	Generator     *QuestionGenerator
	Sessions      repository.QuizSessionStore
	Results       repository.ResultsStore
	QuestionCount int
	Now           func() time.Time
}

func NewQuizService(gen *QuestionGenerator, sessions repository.QuizSessionStore, results repository.ResultsStore, questionCount int) *QuizService {
	return &QuizService{
		Generator:     gen,
		Sessions:      sessions,
		Results:       results,
		QuestionCount: questionCount,
		Now:           time.Now,
	}
}

// SubmitQuizRequest 客户端提交的内容，Questions 为往返的题目原文，可为空
type SubmitQuizRequest struct {
	Token     string
	Name      string
	Questions []string
	Answers   []string
}

// StartQuiz 生成一套新题并保存会话，返回会话与交给客户端的令牌
func (s *QuizService) StartQuiz(ctx context.Context) (*model.QuizSession, string, error) {
	ctx, span := tracing.Start(ctx, "QuizService.StartQuiz")
	defer span.End()

	session := &model.QuizSession{
		ID:        model.GenerateUUID(),
		Questions: s.Generator.GenerateN(s.QuestionCount),
		IssuedAt:  s.Now(),
	}

	token, err := s.Sessions.Save(ctx, session)
	if err != nil {
		return nil, "", fmt.Errorf("save quiz session: %w", err)
	}
	return session, token, nil
}

// SubmitQuiz 按会话中的题目批改，所有记录共用一个时间戳并一次性写入结果表
func (s *QuizService) SubmitQuiz(ctx context.Context, req SubmitQuizRequest) (*model.QuizResult, error) {
	ctx, span := tracing.Start(ctx, "QuizService.SubmitQuiz")
	defer span.End()

	session, err := s.Sessions.Take(ctx, req.Token)
	if err != nil {
		return nil, err
	}

	if err := verifyRoundTrip(session, req.Questions); err != nil {
		logger.Log.Warn("Quiz submission rejected", zap.String("session", session.ID), zap.Error(err))
		return nil, err
	}
	if len(req.Answers) > len(session.Questions) {
		return nil, util.ErrAnswerCountMismatch
	}

	timestamp := s.Now()
	result := &model.QuizResult{
		Name:    req.Name,
		Total:   len(session.Questions),
		Records: make([]model.AnswerRecord, 0, len(session.Questions)),
	}

	for i, q := range session.Questions {
		answer := ""
		if i < len(req.Answers) {
			answer = req.Answers[i]
		}

		correct := GradeAnswer(answer, q.Answer)
		if correct {
			result.Score++
		}
		status := model.StatusFor(correct)
		monitoring.AnswersGraded.WithLabelValues(string(status)).Inc()

		result.Records = append(result.Records, model.AnswerRecord{
			Name:          req.Name,
			Question:      q.Expression,
			UserAnswer:    answer,
			CorrectAnswer: q.Answer,
			Status:        status,
			Timestamp:     timestamp,
		})
	}

	if err := s.Results.Append(ctx, result.Records); err != nil {
		// 写入失败时放回会话，允许用同一令牌重新提交
		if rerr := s.Sessions.Release(ctx, req.Token, session); rerr != nil {
			logger.Log.Error("Failed to release quiz session", zap.String("session", session.ID), zap.Error(rerr))
		}
		return nil, fmt.Errorf("save quiz results: %w", err)
	}

	monitoring.QuizSubmissions.Inc()
	span.SetAttributes(attribute.Int("quiz.score", result.Score), attribute.Int("quiz.total", result.Total))
	logger.Log.Info("Quiz submitted",
		zap.String("session", session.ID),
		zap.String("name", req.Name),
		zap.Int("score", result.Score),
		zap.Int("total", result.Total),
	)
	return result, nil
}

// verifyRoundTrip 客户端回传的题目必须符合表达式语法且与会话一致，空值忽略
func verifyRoundTrip(session *model.QuizSession, submitted []string) error {
	if len(submitted) > len(session.Questions) {
		return fmt.Errorf("%w: %d questions submitted, %d issued", util.ErrQuizTampered, len(submitted), len(session.Questions))
	}
	for i, text := range submitted {
		if strings.TrimSpace(text) == "" {
			continue
		}
		expr, err := util.ParseExpression(text)
		if err != nil {
			return fmt.Errorf("%w: question %d: %v", util.ErrQuizTampered, i, err)
		}
		if expr.String() != session.Questions[i].Expression {
			return fmt.Errorf("%w: question %d", util.ErrQuizTampered, i)
		}
	}
	return nil
}
