package util

import (
	"errors"
	"fmt"
	"math_quiz_backend/internal/model"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// QuizClaims 只签名题目原文，答案在解析时重新计算，不随令牌下发
type QuizClaims struct {
	Expressions []string `json:"expressions"`
	jwt.RegisteredClaims
}

func GenerateQuizToken(session *model.QuizSession, secret string, expiration time.Duration) (string, error) {
	claims := &QuizClaims{
		Expressions: session.Expressions(),
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        session.ID,
			IssuedAt:  jwt.NewNumericDate(session.IssuedAt),
			ExpiresAt: jwt.NewNumericDate(session.IssuedAt.Add(expiration)),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(secret))
}

func ParseQuizToken(tokenString, secret string) (*model.QuizSession, error) {
	token, err := jwt.ParseWithClaims(tokenString, &QuizClaims{}, func(token *jwt.Token) (interface{}, error) {
		return []byte(secret), nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	if err != nil {
		return nil, err
	}

	claims, ok := token.Claims.(*QuizClaims)
	if !ok || !token.Valid {
		return nil, errors.New("invalid quiz token")
	}

	session := &model.QuizSession{
		ID:        claims.ID,
		Questions: make([]model.Question, len(claims.Expressions)),
	}
	for i, text := range claims.Expressions {
		expr, err := ParseExpression(text)
		if err != nil {
			return nil, fmt.Errorf("question %d: %w", i, err)
		}
		answer, err := expr.Evaluate()
		if err != nil {
			return nil, fmt.Errorf("question %d: %w", i, err)
		}
		session.Questions[i] = model.Question{Expression: expr.String(), Answer: answer}
	}
	if claims.IssuedAt != nil {
		session.IssuedAt = claims.IssuedAt.Time
	}
	return session, nil
}
