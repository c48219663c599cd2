package handlers

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/SAP-F-2025/quiz-service/internal/events"
	"github.com/SAP-F-2025/quiz-service/internal/metrics"
	"github.com/SAP-F-2025/quiz-service/internal/models"
	"github.com/SAP-F-2025/quiz-service/internal/repositories/postgres"
	"github.com/SAP-F-2025/quiz-service/internal/services"
	"github.com/SAP-F-2025/quiz-service/internal/testutil"
	"github.com/SAP-F-2025/quiz-service/internal/utils"
	"github.com/SAP-F-2025/quiz-service/internal/validator"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

type apiFixture struct {
	router    *gin.Engine
	publisher *events.MockEventPublisher
}

func newAPIFixture(t *testing.T) *apiFixture {
	t.Helper()
	gin.SetMode(gin.TestMode)

	db := testutil.NewTestDB(t)
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	repo := postgres.NewRepository(db, nil, time.Minute, logger)
	publisher := events.NewMockEventPublisher(logger)
	m := metrics.New(prometheus.NewRegistry())

	serviceManager := services.NewServiceManager(repo, publisher, m, logger, validator.New())
	hm := NewHandlerManager(serviceManager, m, utils.NewSlogLogger(logger))

	router := gin.New()
	hm.SetupMiddleware(router, nil)
	hm.SetupRoutes(router)

	return &apiFixture{router: router, publisher: publisher}
}

func (f *apiFixture) do(t *testing.T, method, path string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()
	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	f.router.ServeHTTP(w, req)
	return w
}

func decode[T any](t *testing.T, w *httptest.ResponseRecorder) T {
	t.Helper()
	var out T
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &out), w.Body.String())
	return out
}

func (f *apiFixture) createUser(t *testing.T, email, role string) uint {
	t.Helper()
	w := f.do(t, http.MethodPost, "/api/v1/users", gin.H{"email": email, "name": email, "role": role})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	return decode[models.User](t, w).ID
}

// publishedQuiz creates a quiz worth 3.5 points with a short answer question
// keyed "Paris" (2.5) and an essay (1).
func (f *apiFixture) publishedQuiz(t *testing.T, teacherID uint) (quizID, shortID, essayID uint) {
	t.Helper()
	w := f.do(t, http.MethodPost, "/api/v1/quizzes", gin.H{"title": "Capitals", "teacher_id": teacherID})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	quizID = decode[models.Quiz](t, w).ID

	w = f.do(t, http.MethodPost, fmt.Sprintf("/api/v1/quizzes/%d/questions", quizID), gin.H{
		"type": "short_answer", "question_text": "Capital of France?", "expected_answer": "Paris", "points": "2.5",
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	shortID = decode[models.Question](t, w).ID

	w = f.do(t, http.MethodPost, fmt.Sprintf("/api/v1/quizzes/%d/questions", quizID), gin.H{
		"type": "essay", "question_text": "Why Paris?", "points": 1,
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	essayID = decode[models.Question](t, w).ID

	w = f.do(t, http.MethodPut, fmt.Sprintf("/api/v1/quizzes/%d", quizID), gin.H{"is_published": true})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	return quizID, shortID, essayID
}

func TestAttemptLifecycle(t *testing.T) {
	f := newAPIFixture(t)
	teacherID := f.createUser(t, "teacher@example.com", "teacher")
	studentID := f.createUser(t, "student@example.com", "student")
	quizID, shortID, essayID := f.publishedQuiz(t, teacherID)

	w := f.do(t, http.MethodPost, "/api/v1/attempts", gin.H{"quiz_id": quizID, "student_id": studentID})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	started := decode[map[string]interface{}](t, w)
	assert.Equal(t, "in_progress", started["state"])
	assert.Equal(t, "3.5", started["max_score"])
	assert.Nil(t, started["total_score"])
	attemptID := uint(started["id"].(float64))

	w = f.do(t, http.MethodPost, fmt.Sprintf("/api/v1/attempts/%d/answers", attemptID), gin.H{"question_id": shortID, "answer_text": " PARIS "})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	answer := decode[map[string]interface{}](t, w)
	assert.Equal(t, "correct", answer["evaluation"])
	assert.Equal(t, true, answer["is_correct"])
	assert.Equal(t, "2.5", answer["points_earned"])

	w = f.do(t, http.MethodPost, fmt.Sprintf("/api/v1/attempts/%d/answers", attemptID), gin.H{"question_id": essayID, "answer_text": "Because."})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	essay := decode[map[string]interface{}](t, w)
	assert.Equal(t, "not_evaluated", essay["evaluation"])
	assert.Nil(t, essay["is_correct"])
	assert.Nil(t, essay["points_earned"])

	w = f.do(t, http.MethodPost, fmt.Sprintf("/api/v1/attempts/%d/complete", attemptID), nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	completed := decode[map[string]interface{}](t, w)
	assert.Equal(t, "completed", completed["state"])
	assert.Equal(t, "2.5", completed["total_score"])
	assert.NotNil(t, completed["completed_at"])

	w = f.do(t, http.MethodPost, fmt.Sprintf("/api/v1/attempts/%d/complete", attemptID), nil)
	assert.Equal(t, http.StatusConflict, w.Code)
	assert.Equal(t, CodeConflict, decode[ErrorResponse](t, w).Code)

	w = f.do(t, http.MethodPost, fmt.Sprintf("/api/v1/attempts/%d/answers", attemptID), gin.H{"question_id": shortID, "answer_text": "Lyon"})
	assert.Equal(t, http.StatusConflict, w.Code)

	w = f.do(t, http.MethodGet, fmt.Sprintf("/api/v1/attempts/%d", attemptID), nil)
	require.Equal(t, http.StatusOK, w.Code)
	detail := decode[struct {
		Attempt map[string]interface{}   `json:"attempt"`
		Answers []map[string]interface{} `json:"answers"`
	}](t, w)
	assert.Equal(t, "completed", detail.Attempt["state"])
	assert.Len(t, detail.Answers, 2)

	w = f.do(t, http.MethodGet, fmt.Sprintf("/api/v1/students/%d/attempts?state=completed", studentID), nil)
	require.Equal(t, http.StatusOK, w.Code)
	list := decode[map[string]interface{}](t, w)
	assert.Equal(t, float64(1), list["total"])

	assert.Len(t, f.publisher.EventsOfType(events.EventAttemptCompleted), 1)
}

func TestErrorMapping(t *testing.T) {
	f := newAPIFixture(t)
	teacherID := f.createUser(t, "teacher@example.com", "teacher")
	studentID := f.createUser(t, "student@example.com", "student")

	w := f.do(t, http.MethodPost, "/api/v1/quizzes", gin.H{"title": "Draft", "teacher_id": teacherID})
	require.Equal(t, http.StatusCreated, w.Code)
	draftID := decode[models.Quiz](t, w).ID

	tests := []struct {
		name   string
		method string
		path   string
		body   interface{}
		status int
		code   string
	}{
		{"unknown quiz", http.MethodPost, "/api/v1/attempts", gin.H{"quiz_id": 9999, "student_id": studentID}, http.StatusNotFound, CodeNotFound},
		{"unpublished quiz", http.MethodPost, "/api/v1/attempts", gin.H{"quiz_id": draftID, "student_id": studentID}, http.StatusUnprocessableEntity, CodePrecondition},
		{"teacher starts attempt", http.MethodPost, "/api/v1/attempts", gin.H{"quiz_id": draftID, "student_id": teacherID}, http.StatusUnprocessableEntity, CodePrecondition},
		{"missing fields", http.MethodPost, "/api/v1/attempts", gin.H{}, http.StatusBadRequest, CodeValidation},
		{"unknown attempt", http.MethodPost, "/api/v1/attempts/9999/complete", nil, http.StatusNotFound, CodeNotFound},
		{"malformed id", http.MethodGet, "/api/v1/attempts/abc", nil, http.StatusBadRequest, CodeValidation},
		{"duplicate email", http.MethodPost, "/api/v1/users", gin.H{"email": "student@example.com", "name": "x", "role": "student"}, http.StatusConflict, CodeConflict},
		{"bad question shape", http.MethodPost, fmt.Sprintf("/api/v1/quizzes/%d/questions", draftID), gin.H{"type": "true_false", "question_text": "?", "expected_answer": "maybe", "points": 1}, http.StatusBadRequest, CodeValidation},
		{"bad state filter", http.MethodGet, fmt.Sprintf("/api/v1/students/%d/attempts?state=paused", studentID), nil, http.StatusBadRequest, CodeValidation},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := f.do(t, tt.method, tt.path, tt.body)
			assert.Equal(t, tt.status, w.Code, w.Body.String())
			assert.Equal(t, tt.code, decode[ErrorResponse](t, w).Code)
		})
	}
}

func TestSubmitAnswerRequiresAnswerText(t *testing.T) {
	f := newAPIFixture(t)
	teacherID := f.createUser(t, "teacher@example.com", "teacher")
	studentID := f.createUser(t, "student@example.com", "student")
	quizID, shortID, _ := f.publishedQuiz(t, teacherID)

	w := f.do(t, http.MethodPost, "/api/v1/attempts", gin.H{"quiz_id": quizID, "student_id": studentID})
	require.Equal(t, http.StatusCreated, w.Code)
	attemptID := decode[models.QuizAttempt](t, w).ID

	w = f.do(t, http.MethodPost, fmt.Sprintf("/api/v1/attempts/%d/answers", attemptID), gin.H{"question_id": shortID})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = f.do(t, http.MethodPost, fmt.Sprintf("/api/v1/attempts/%d/answers", attemptID), gin.H{"question_id": shortID, "answer_text": ""})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Equal(t, "incorrect", decode[map[string]interface{}](t, w)["evaluation"])
}

func TestExportResults(t *testing.T) {
	f := newAPIFixture(t)
	teacherID := f.createUser(t, "teacher@example.com", "teacher")
	studentID := f.createUser(t, "student@example.com", "student")
	quizID, shortID, _ := f.publishedQuiz(t, teacherID)

	w := f.do(t, http.MethodPost, "/api/v1/attempts", gin.H{"quiz_id": quizID, "student_id": studentID})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	attemptID := decode[models.QuizAttempt](t, w).ID

	w = f.do(t, http.MethodPost, fmt.Sprintf("/api/v1/attempts/%d/answers", attemptID), gin.H{"question_id": shortID, "answer_text": "paris"})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	w = f.do(t, http.MethodPost, fmt.Sprintf("/api/v1/attempts/%d/complete", attemptID), nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	w = f.do(t, http.MethodGet, fmt.Sprintf("/api/v1/quizzes/%d/results/export", quizID), nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Equal(t, xlsxContentType, w.Header().Get("Content-Type"))
	assert.Contains(t, w.Header().Get("Content-Disposition"), "results.xlsx")

	book, err := excelize.OpenReader(bytes.NewReader(w.Body.Bytes()))
	require.NoError(t, err)
	defer book.Close()

	rows, err := book.GetRows("Results")
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, "Attempt ID", rows[0][0])
	assert.Equal(t, fmt.Sprint(attemptID), rows[1][0])
	assert.Equal(t, "student@example.com", rows[1][3])
	assert.Equal(t, "completed", rows[1][4])
	assert.Equal(t, "2.5", rows[1][7])
	assert.Equal(t, "3.5", rows[1][8])

	w = f.do(t, http.MethodGet, "/api/v1/quizzes/9999/results/export", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestHealthAndMetrics(t *testing.T) {
	f := newAPIFixture(t)

	w := f.do(t, http.MethodGet, "/health", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "healthy", decode[map[string]interface{}](t, w)["status"])
	assert.NotEmpty(t, w.Header().Get(utils.RequestIDHeader))

	w = f.do(t, http.MethodGet, "/metrics", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "http_requests_total")
}
