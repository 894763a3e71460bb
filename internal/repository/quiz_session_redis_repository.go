package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math_quiz_backend/internal/model"
	"math_quiz_backend/internal/util"
	"time"

	"github.com/go-redis/redis/v8"
	"github.com/google/uuid"
)

const quizSessionKeyPrefix = "quiz:session:"

// RedisSessionRepository 会话存放在 Redis，GETDEL 保证只能提交一次
type RedisSessionRepository struct {
	Redis *redis.Client
	TTL   time.Duration
}

func NewRedisSessionRepository(rdb *redis.Client, ttl time.Duration) *RedisSessionRepository {
	return &RedisSessionRepository{Redis: rdb, TTL: ttl}
}

func (r *RedisSessionRepository) Save(ctx context.Context, session *model.QuizSession) (string, error) {
	if err := r.set(ctx, session.ID, session); err != nil {
		return "", fmt.Errorf("save quiz session: %w", err)
	}
	return session.ID, nil
}

// Release 放回的会话重新计时
func (r *RedisSessionRepository) Release(ctx context.Context, token string, session *model.QuizSession) error {
	if err := r.set(ctx, token, session); err != nil {
		return fmt.Errorf("release quiz session: %w", err)
	}
	return nil
}

func (r *RedisSessionRepository) set(ctx context.Context, id string, session *model.QuizSession) error {
	data, err := json.Marshal(session)
	if err != nil {
		return err
	}
	return r.Redis.Set(ctx, quizSessionKeyPrefix+id, data, r.TTL).Err()
}

func (r *RedisSessionRepository) Take(ctx context.Context, token string) (*model.QuizSession, error) {
	// 只接受 uuid，避免拿任意字符串探测键空间
	if _, err := uuid.Parse(token); err != nil {
		return nil, util.ErrQuizSessionNotFound
	}

	data, err := r.Redis.GetDel(ctx, quizSessionKeyPrefix+token).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, util.ErrQuizSessionNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("load quiz session: %w", err)
	}

	var session model.QuizSession
	if err := json.Unmarshal(data, &session); err != nil {
		return nil, fmt.Errorf("decode quiz session: %w", err)
	}
	return &session, nil
}
