package service

import (
	"context"
	"math_quiz_backend/internal/model"
	"sync"
)

type fakeResultsStore struct {
	mu          sync.Mutex
	records     []model.AnswerRecord
	appendCalls int
	allCalls    int
	appendErr   error
	allErr      error
}

func (f *fakeResultsStore) Init(ctx context.Context) error { return nil }

func (f *fakeResultsStore) Append(ctx context.Context, records []model.AnswerRecord) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.appendCalls++
	if f.appendErr != nil {
		return f.appendErr
	}
	f.records = append(f.records, records...)
	return nil
}

func (f *fakeResultsStore) All(ctx context.Context) ([]model.AnswerRecord, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.allCalls++
	if f.allErr != nil {
		return nil, f.allErr
	}
	out := make([]model.AnswerRecord, len(f.records))
	copy(out, f.records)
	return out, nil
}

func (f *fakeResultsStore) Ping(ctx context.Context) error { return nil }

func record(name string, status model.AnswerStatus) model.AnswerRecord {
	return model.AnswerRecord{Name: name, Question: "1 + 1", UserAnswer: "2", CorrectAnswer: 2, Status: status}
}
