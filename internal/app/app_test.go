package app

import (
	"context"
	"errors"
	"html"
	"math_quiz_backend/internal/config"
	"math_quiz_backend/internal/model"
	"math_quiz_backend/internal/repository"
	"math_quiz_backend/internal/util"
	"net/http"
	"net/http/httptest"
	"net/url"
	"os"
	"path/filepath"
	"regexp"
	"strconv"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type memoryResultsStore struct {
	mu      sync.Mutex
	records []model.AnswerRecord
	appends int
	failAll error
}

func (s *memoryResultsStore) Init(ctx context.Context) error { return nil }

func (s *memoryResultsStore) Append(ctx context.Context, records []model.AnswerRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.appends++
	s.records = append(s.records, records...)
	return nil
}

func (s *memoryResultsStore) All(ctx context.Context) ([]model.AnswerRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.failAll != nil {
		return nil, s.failAll
	}
	out := make([]model.AnswerRecord, len(s.records))
	copy(out, s.records)
	return out, nil
}

func (s *memoryResultsStore) Ping(ctx context.Context) error { return s.failAll }

func (s *memoryResultsStore) count() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.records)
}

var (
	tokenRe    = regexp.MustCompile(`name="quiz_token" value="([^"]+)"`)
	questionRe = regexp.MustCompile(`name="question(\d+)" value="([^"]+)"`)
)

func TestMain(m *testing.M) {
	gin.SetMode(gin.TestMode)
	os.Exit(m.Run())
}

func newTestApp(t *testing.T, store repository.ResultsStore) *App {
	t.Helper()
	cfg := &config.Config{
		Server: config.ServerConfig{Port: "0", Mode: gin.TestMode},
		Quiz: config.QuizConfig{
			QuestionCount:  5,
			WorksheetCount: 20,
			SessionBackend: util.SessionBackendMemory,
			SessionTTL:     time.Hour,
		},
		Storage:   config.StorageConfig{Type: util.StorageLocal, LocalPath: t.TempDir()},
		Chart:     config.ChartConfig{Filename: "analytics.png", Width: 8, Height: 5},
		RateLimit: config.RateLimitConfig{MaxRequests: 1000, WindowMinutes: 1},
	}

	a := &App{Config: cfg}
	require.NoError(t, a.build(&repositories{
		results:  store,
		sessions: repository.NewMemorySessionRepository(cfg.Quiz.SessionTTL),
	}))
	return a
}

func serve(a *App, req *http.Request) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	a.Router.ServeHTTP(w, req)
	return w
}

// startQuiz 取回页面中的令牌与题目原文
func startQuiz(t *testing.T, a *App) (string, []string) {
	t.Helper()
	w := serve(a, httptest.NewRequest(http.MethodGet, "/quiz", nil))
	require.Equal(t, http.StatusOK, w.Code)

	body := w.Body.String()
	m := tokenRe.FindStringSubmatch(body)
	require.NotNil(t, m, body)

	matches := questionRe.FindAllStringSubmatch(body, -1)
	questions := make([]string, len(matches))
	for i, q := range matches {
		idx, err := strconv.Atoi(q[1])
		require.NoError(t, err)
		require.Equal(t, i, idx)
		questions[i] = html.UnescapeString(q[2])
	}
	return html.UnescapeString(m[1]), questions
}

func submitForm(a *App, form url.Values) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, "/quiz", strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	return serve(a, req)
}

func TestIndexPage(t *testing.T) {
	a := newTestApp(t, &memoryResultsStore{})
	w := serve(a, httptest.NewRequest(http.MethodGet, "/", nil))

	assert.Equal(t, http.StatusOK, w.Code)
	for _, link := range []string{`href="/quiz"`, `href="/results"`, `href="/analytics"`, `href="/worksheet"`} {
		assert.Contains(t, w.Body.String(), link)
	}
}

func TestQuizPageDoesNotTouchStore(t *testing.T) {
	store := &memoryResultsStore{}
	a := newTestApp(t, store)

	for i := 0; i < 3; i++ {
		_, questions := startQuiz(t, a)
		assert.Len(t, questions, 5)
		for _, q := range questions {
			_, err := util.ParseExpression(q)
			assert.NoError(t, err, q)
		}
	}
	assert.Zero(t, store.appends)
}

func TestQuizSubmission(t *testing.T) {
	store := &memoryResultsStore{}
	a := newTestApp(t, store)

	token, questions := startQuiz(t, a)
	form := url.Values{"quiz_token": {token}, "name": {"Ada"}}
	for i, q := range questions {
		expr, err := util.ParseExpression(q)
		require.NoError(t, err)
		answer, err := expr.Evaluate()
		require.NoError(t, err)
		if i >= 3 {
			answer++
		}
		form.Set("question"+strconv.Itoa(i), q)
		form.Set("answer"+strconv.Itoa(i), strconv.Itoa(answer))
	}

	w := submitForm(a, form)
	assert.Equal(t, http.StatusFound, w.Code)
	assert.Equal(t, "/results", w.Header().Get("Location"))

	require.Equal(t, 5, store.count())
	assert.Equal(t, 1, store.appends)
	for i, rec := range store.records {
		assert.Equal(t, "Ada", rec.Name)
		assert.Equal(t, questions[i], rec.Question)
		assert.Equal(t, store.records[0].Timestamp, rec.Timestamp)
		if i < 3 {
			assert.Equal(t, model.StatusCorrect, rec.Status)
		} else {
			assert.Equal(t, model.StatusWrong, rec.Status)
		}
	}

	// 内存会话只能提交一次
	w = submitForm(a, form)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, 5, store.count())

	w = serve(a, httptest.NewRequest(http.MethodGet, "/results", nil))
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "<td>Ada</td><td>5</td><td>3</td><td>2</td>")
}

func TestQuizSubmissionRejectsTamperedQuestion(t *testing.T) {
	store := &memoryResultsStore{}
	a := newTestApp(t, store)

	token, questions := startQuiz(t, a)
	form := url.Values{"quiz_token": {token}, "name": {"Eve"}}
	for i, q := range questions {
		form.Set("question"+strconv.Itoa(i), q)
		form.Set("answer"+strconv.Itoa(i), "1")
	}
	form.Set("question0", "__import__('os')")

	w := submitForm(a, form)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Zero(t, store.count())
}

func TestQuizSubmissionUnknownToken(t *testing.T) {
	a := newTestApp(t, &memoryResultsStore{})

	w := submitForm(a, url.Values{"quiz_token": {"missing"}, "name": {"X"}})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = submitForm(a, url.Values{"name": {"X"}})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestResultsPageEmpty(t *testing.T) {
	a := newTestApp(t, &memoryResultsStore{})
	w := serve(a, httptest.NewRequest(http.MethodGet, "/results", nil))

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "No results yet.")
}

func TestResultsPageStoreFailure(t *testing.T) {
	a := newTestApp(t, &memoryResultsStore{failAll: errors.New("quota exceeded")})
	w := serve(a, httptest.NewRequest(http.MethodGet, "/results", nil))

	assert.Equal(t, http.StatusInternalServerError, w.Code)
}

func TestAnalyticsWithoutData(t *testing.T) {
	a := newTestApp(t, &memoryResultsStore{})
	w := serve(a, httptest.NewRequest(http.MethodGet, "/analytics", nil))

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "No data available.", w.Body.String())
	_, err := os.Stat(filepath.Join(a.Config.Storage.LocalPath, "analytics.png"))
	assert.True(t, os.IsNotExist(err))
}

func TestAnalyticsRendersChart(t *testing.T) {
	store := &memoryResultsStore{records: []model.AnswerRecord{
		{Name: "A", Question: "1 + 1", UserAnswer: "2", CorrectAnswer: 2, Status: model.StatusCorrect},
		{Name: "A", Question: "2 + 2", UserAnswer: "5", CorrectAnswer: 4, Status: model.StatusWrong},
		{Name: "B", Question: "3 + 3", UserAnswer: "6", CorrectAnswer: 6, Status: model.StatusCorrect},
	}}
	a := newTestApp(t, store)

	w := serve(a, httptest.NewRequest(http.MethodGet, "/analytics", nil))
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "/static/analytics.png?v=")

	data, err := os.ReadFile(filepath.Join(a.Config.Storage.LocalPath, "analytics.png"))
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(string(data), "\x89PNG"))

	w = serve(a, httptest.NewRequest(http.MethodGet, "/static/analytics.png", nil))
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestWorksheetDownload(t *testing.T) {
	a := newTestApp(t, &memoryResultsStore{})
	w := serve(a, httptest.NewRequest(http.MethodGet, "/worksheet", nil))

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "attachment; filename=worksheet.txt", w.Header().Get("Content-Disposition"))
	assert.True(t, strings.HasPrefix(w.Header().Get("Content-Type"), "text/plain"))

	body := w.Body.String()
	require.True(t, strings.HasPrefix(body, "Math Worksheet\n\n"))
	lines := strings.Split(strings.TrimSuffix(strings.TrimPrefix(body, "Math Worksheet\n\n"), "\n"), "\n")
	require.Len(t, lines, 20)
	for i, line := range lines {
		assert.True(t, strings.HasPrefix(line, strconv.Itoa(i+1)+". "), line)
		assert.True(t, strings.HasSuffix(line, " = "), line)
	}
}

func TestHealth(t *testing.T) {
	a := newTestApp(t, &memoryResultsStore{})
	w := serve(a, httptest.NewRequest(http.MethodGet, "/api/health", nil))
	assert.Equal(t, http.StatusOK, w.Code)

	a = newTestApp(t, &memoryResultsStore{failAll: errors.New("down")})
	w = serve(a, httptest.NewRequest(http.MethodGet, "/api/health", nil))
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
}
