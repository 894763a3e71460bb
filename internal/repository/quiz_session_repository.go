package repository

import (
	"context"
	"fmt"
	"math_quiz_backend/internal/model"
	"math_quiz_backend/internal/util"
	"sync"
	"time"
)

// QuizSessionStore 保存进行中的测验。Save 返回交给客户端的令牌，Take 凭令牌取回。
// 取回后结果未能写入时调用 Release 放回会话，客户端可用同一令牌重试。
type QuizSessionStore interface {
	Save(ctx context.Context, session *model.QuizSession) (string, error)
	Take(ctx context.Context, token string) (*model.QuizSession, error)
	Release(ctx context.Context, token string, session *model.QuizSession) error
}

// TokenSessionRepository 无状态实现：会话即签名令牌，有效期内可重复提交
type TokenSessionRepository struct {
	Secret string
	TTL    time.Duration
}

func NewTokenSessionRepository(secret string, ttl time.Duration) *TokenSessionRepository {
	return &TokenSessionRepository{Secret: secret, TTL: ttl}
}

func (r *TokenSessionRepository) Save(_ context.Context, session *model.QuizSession) (string, error) {
	return util.GenerateQuizToken(session, r.Secret, r.TTL)
}

func (r *TokenSessionRepository) Take(_ context.Context, token string) (*model.QuizSession, error) {
	session, err := util.ParseQuizToken(token, r.Secret)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", util.ErrQuizSessionNotFound, err)
	}
	return session, nil
}

// Release 令牌本身未被消耗，无需处理
func (r *TokenSessionRepository) Release(context.Context, string, *model.QuizSession) error {
	return nil
}

type memorySession struct {
	session   model.QuizSession
	expiresAt time.Time
}

// MemorySessionRepository 进程内实现，会话只能取一次
type MemorySessionRepository struct {
	TTL time.Duration
	Now func() time.Time

	mu       sync.Mutex
	sessions map[string]memorySession
}

func NewMemorySessionRepository(ttl time.Duration) *MemorySessionRepository {
	return &MemorySessionRepository{
		TTL:      ttl,
		Now:      time.Now,
		sessions: make(map[string]memorySession),
	}
}

func (r *MemorySessionRepository) Save(_ context.Context, session *model.QuizSession) (string, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	now := r.Now()
	// 顺带清理过期会话
	for id, s := range r.sessions {
		if now.After(s.expiresAt) {
			delete(r.sessions, id)
		}
	}

	r.sessions[session.ID] = memorySession{session: *session, expiresAt: now.Add(r.TTL)}
	return session.ID, nil
}

func (r *MemorySessionRepository) Take(_ context.Context, token string) (*model.QuizSession, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	s, ok := r.sessions[token]
	if !ok {
		return nil, util.ErrQuizSessionNotFound
	}
	delete(r.sessions, token)
	if r.Now().After(s.expiresAt) {
		return nil, util.ErrQuizSessionNotFound
	}
	session := s.session
	return &session, nil
}

// Release 放回的会话重新计时
func (r *MemorySessionRepository) Release(_ context.Context, token string, session *model.QuizSession) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.sessions[token] = memorySession{session: *session, expiresAt: r.Now().Add(r.TTL)}
	return nil
}
