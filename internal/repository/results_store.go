package repository

import (
	"context"
	"math_quiz_backend/internal/model"
)

// ResultsStore 仅追加的答题结果表。
// Init 保证表头（或表结构）存在且只存在一次；All 按写入顺序返回全部记录。
type ResultsStore interface {
	Init(ctx context.Context) error
	Append(ctx context.Context, records []model.AnswerRecord) error
	All(ctx context.Context) ([]model.AnswerRecord, error)
	Ping(ctx context.Context) error
}
