package service

import (
	"context"
	"fmt"
	"math_quiz_backend/internal/model"
	"math_quiz_backend/internal/repository"
	"math_quiz_backend/pkg/tracing"
)

type ResultsService struct {
	Results repository.ResultsStore
}

func NewResultsService(results repository.ResultsStore) *ResultsService {
	return &ResultsService{Results: results}
}

// Summaries 结果表为空时返回空切片
func (s *ResultsService) Summaries(ctx context.Context) ([]model.UserSummary, error) {
	ctx, span := tracing.Start(ctx, "ResultsService.Summaries")
	defer span.End()

	records, err := s.Results.All(ctx)
	if err != nil {
		return nil, fmt.Errorf("load results: %w", err)
	}
	return Summarize(records), nil
}

// Summarize 按姓名分组统计，顺序为姓名首次出现的顺序
func Summarize(records []model.AnswerRecord) []model.UserSummary {
	summaries := []model.UserSummary{}
	index := make(map[string]int)

	for _, r := range records {
		i, ok := index[r.Name]
		if !ok {
			i = len(summaries)
			index[r.Name] = i
			summaries = append(summaries, model.UserSummary{Name: r.Name})
		}
		summaries[i].Total++
		if r.Status == model.StatusCorrect {
			summaries[i].Correct++
		}
	}

	for i := range summaries {
		summaries[i].Incorrect = summaries[i].Total - summaries[i].Correct
	}
	return summaries
}
