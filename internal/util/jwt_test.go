package util

import (
	"encoding/base64"
	"math_quiz_backend/internal/model"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSecret = "0123456789abcdef0123456789abcdef"

func TestQuizToken_AnswersNotInPayload(t *testing.T) {
	session := &model.QuizSession{
		ID: "session-1",
		Questions: []model.Question{
			{Expression: "12 * 7", Answer: 84},
			{Expression: "63 / 9", Answer: 7},
		},
		IssuedAt: time.Now(),
	}

	token, err := GenerateQuizToken(session, testSecret, time.Hour)
	require.NoError(t, err)

	parts := strings.Split(token, ".")
	require.Len(t, parts, 3)
	payload, err := base64.RawURLEncoding.DecodeString(parts[1])
	require.NoError(t, err)
	assert.Contains(t, string(payload), `"12 * 7"`)
	assert.NotContains(t, string(payload), "answer")

	got, err := ParseQuizToken(token, testSecret)
	require.NoError(t, err)
	assert.Equal(t, "session-1", got.ID)
	assert.Equal(t, session.Questions, got.Questions)
}

func TestQuizToken_Expired(t *testing.T) {
	session := &model.QuizSession{
		ID:        "session-2",
		Questions: []model.Question{{Expression: "1 + 1", Answer: 2}},
		IssuedAt:  time.Now().Add(-2 * time.Hour),
	}
	token, err := GenerateQuizToken(session, testSecret, time.Hour)
	require.NoError(t, err)

	_, err = ParseQuizToken(token, testSecret)
	assert.Error(t, err)
}
