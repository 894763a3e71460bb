package service

import (
	"context"
	"errors"
	"math/rand"
	"math_quiz_backend/internal/model"
	"math_quiz_backend/internal/repository"
	"math_quiz_backend/internal/util"
	"strconv"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestQuizService(store *fakeResultsStore) *QuizService {
	gen := NewQuestionGenerator(rand.NewSource(1))
	sessions := repository.NewMemorySessionRepository(time.Hour)
	svc := NewQuizService(gen, sessions, store, 5)
	svc.Now = func() time.Time { return time.Date(2024, 3, 1, 10, 30, 0, 0, time.Local) }
	return svc
}

// answersWithCorrect 前 n 道答对，其余答错
func answersWithCorrect(session *model.QuizSession, n int) []string {
	answers := make([]string, len(session.Questions))
	for i, q := range session.Questions {
		if i < n {
			answers[i] = strconv.Itoa(q.Answer)
		} else {
			answers[i] = strconv.Itoa(q.Answer + 1)
		}
	}
	return answers
}

func TestStartQuiz_DoesNotTouchResults(t *testing.T) {
	store := &fakeResultsStore{}
	svc := newTestQuizService(store)

	for i := 0; i < 3; i++ {
		session, token, err := svc.StartQuiz(context.Background())
		require.NoError(t, err)
		assert.Len(t, session.Questions, 5)
		assert.NotEmpty(t, token)
	}

	assert.Zero(t, store.appendCalls)
	assert.Zero(t, store.allCalls)
	assert.Empty(t, store.records)
}

func TestSubmitQuiz_GradesAndAppendsOnce(t *testing.T) {
	for n := 0; n <= 5; n++ {
		store := &fakeResultsStore{}
		svc := newTestQuizService(store)

		session, token, err := svc.StartQuiz(context.Background())
		require.NoError(t, err)

		result, err := svc.SubmitQuiz(context.Background(), SubmitQuizRequest{
			Token:     token,
			Name:      "Ada",
			Questions: session.Expressions(),
			Answers:   answersWithCorrect(session, n),
		})
		require.NoError(t, err)

		assert.Equal(t, n, result.Score)
		assert.Equal(t, 5, result.Total)
		assert.Equal(t, 1, store.appendCalls)
		require.Len(t, store.records, 5)

		correct := 0
		for i, rec := range store.records {
			assert.Equal(t, "Ada", rec.Name)
			assert.Equal(t, session.Questions[i].Expression, rec.Question)
			assert.Equal(t, session.Questions[i].Answer, rec.CorrectAnswer)
			assert.Equal(t, store.records[0].Timestamp, rec.Timestamp)
			if rec.Status == model.StatusCorrect {
				correct++
			} else {
				assert.Equal(t, model.StatusWrong, rec.Status)
			}
		}
		assert.Equal(t, n, correct)
	}
}

func TestSubmitQuiz_NonNumericAnswersAreWrong(t *testing.T) {
	store := &fakeResultsStore{}
	svc := newTestQuizService(store)

	session, token, err := svc.StartQuiz(context.Background())
	require.NoError(t, err)

	result, err := svc.SubmitQuiz(context.Background(), SubmitQuizRequest{
		Token:   token,
		Name:    "Bob",
		Answers: []string{"abc", "", "4.0", "  ", "x"},
	})
	require.NoError(t, err)
	assert.Equal(t, 0, result.Score)
	require.Len(t, store.records, len(session.Questions))
	assert.Equal(t, "abc", store.records[0].UserAnswer)
	assert.Equal(t, "", store.records[1].UserAnswer)
}

func TestSubmitQuiz_RejectsTamperedQuestions(t *testing.T) {
	store := &fakeResultsStore{}
	svc := newTestQuizService(store)

	session, token, err := svc.StartQuiz(context.Background())
	require.NoError(t, err)

	questions := session.Expressions()
	questions[2] = "1 + 1"

	_, err = svc.SubmitQuiz(context.Background(), SubmitQuizRequest{
		Token:     token,
		Name:      "Eve",
		Questions: questions,
		Answers:   []string{"2", "2", "2", "2", "2"},
	})
	assert.ErrorIs(t, err, util.ErrQuizTampered)
	assert.Zero(t, store.appendCalls)
}

func TestSubmitQuiz_RejectsMalformedQuestions(t *testing.T) {
	store := &fakeResultsStore{}
	svc := newTestQuizService(store)

	_, token, err := svc.StartQuiz(context.Background())
	require.NoError(t, err)

	_, err = svc.SubmitQuiz(context.Background(), SubmitQuizRequest{
		Token:     token,
		Questions: []string{"__import__('os').system('ls')"},
	})
	assert.ErrorIs(t, err, util.ErrQuizTampered)
	assert.Zero(t, store.appendCalls)
}

func TestSubmitQuiz_UnknownOrReusedSession(t *testing.T) {
	store := &fakeResultsStore{}
	svc := newTestQuizService(store)

	_, err := svc.SubmitQuiz(context.Background(), SubmitQuizRequest{Token: "missing"})
	assert.ErrorIs(t, err, util.ErrQuizSessionNotFound)

	session, token, err := svc.StartQuiz(context.Background())
	require.NoError(t, err)
	req := SubmitQuizRequest{Token: token, Name: "Ada", Answers: answersWithCorrect(session, 5)}

	_, err = svc.SubmitQuiz(context.Background(), req)
	require.NoError(t, err)

	_, err = svc.SubmitQuiz(context.Background(), req)
	assert.ErrorIs(t, err, util.ErrQuizSessionNotFound)
	assert.Equal(t, 1, store.appendCalls)
}

func TestSubmitQuiz_StoreFailurePropagates(t *testing.T) {
	storeErr := errors.New("sheets unavailable")
	store := &fakeResultsStore{appendErr: storeErr}
	svc := newTestQuizService(store)

	_, token, err := svc.StartQuiz(context.Background())
	require.NoError(t, err)

	_, err = svc.SubmitQuiz(context.Background(), SubmitQuizRequest{Token: token, Name: "Ada"})
	assert.ErrorIs(t, err, storeErr)
	assert.NotErrorIs(t, err, util.ErrQuizSessionNotFound)
}

func TestSubmitQuiz_RetryAfterStoreFailure(t *testing.T) {
	store := &fakeResultsStore{appendErr: errors.New("quota exceeded")}
	svc := newTestQuizService(store)

	session, token, err := svc.StartQuiz(context.Background())
	require.NoError(t, err)
	req := SubmitQuizRequest{
		Token:     token,
		Name:      "Ada",
		Questions: session.Expressions(),
		Answers:   answersWithCorrect(session, 4),
	}

	_, err = svc.SubmitQuiz(context.Background(), req)
	require.Error(t, err)
	assert.Empty(t, store.records)

	// 存储恢复后同一令牌可以重新提交
	store.appendErr = nil
	result, err := svc.SubmitQuiz(context.Background(), req)
	require.NoError(t, err)
	assert.Equal(t, 4, result.Score)
	assert.Len(t, store.records, 5)
	assert.Equal(t, 2, store.appendCalls)

	_, err = svc.SubmitQuiz(context.Background(), req)
	assert.ErrorIs(t, err, util.ErrQuizSessionNotFound)
	assert.Len(t, store.records, 5)
}

func TestSubmitQuiz_TooManyAnswers(t *testing.T) {
	svc := newTestQuizService(&fakeResultsStore{})

	_, token, err := svc.StartQuiz(context.Background())
	require.NoError(t, err)

	_, err = svc.SubmitQuiz(context.Background(), SubmitQuizRequest{
		Token:   token,
		Answers: make([]string, 6),
	})
	assert.ErrorIs(t, err, util.ErrAnswerCountMismatch)
}
