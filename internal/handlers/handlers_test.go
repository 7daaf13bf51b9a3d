package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"sort"
	"sync"
	"testing"
	"time"

	"github.com/SAP-F-2025/interview-service/internal/cache"
	"github.com/SAP-F-2025/interview-service/internal/events"
	"github.com/SAP-F-2025/interview-service/internal/interview"
	"github.com/SAP-F-2025/interview-service/internal/models"
	"github.com/SAP-F-2025/interview-service/internal/repositories"
	"github.com/SAP-F-2025/interview-service/internal/services"
	"github.com/SAP-F-2025/interview-service/internal/utils"
	"github.com/SAP-F-2025/interview-service/internal/validator"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// memoryAttempts is an in-memory AttemptRepository
type memoryAttempts struct {
	mu   sync.Mutex
	rows []*models.InterviewAttempt
}

func (r *memoryAttempts) Create(_ context.Context, a *models.InterviewAttempt) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.rows = append(r.rows, a)
	return nil
}

func (r *memoryAttempts) GetByID(_ context.Context, id string) (*models.InterviewAttempt, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, a := range r.rows {
		if a.ID == id {
			return a, nil
		}
	}
	return nil, repositories.ErrNotFound
}

func (r *memoryAttempts) ListByUser(_ context.Context, userID string, filters repositories.AttemptFilters) ([]*models.InterviewAttempt, int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*models.InterviewAttempt
	for _, a := range r.rows {
		if a.UserID == userID {
			out = append(out, a)
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Timestamp.After(out[j].Timestamp) })
	total := int64(len(out))
	if filters.Offset >= len(out) {
		return []*models.InterviewAttempt{}, total, nil
	}
	out = out[filters.Offset:]
	if filters.Limit > 0 && len(out) > filters.Limit {
		out = out[:filters.Limit]
	}
	return out, total, nil
}

type memoryProgress struct {
	mu   sync.Mutex
	rows map[string]*models.UserProgress
}

func (r *memoryProgress) Get(_ context.Context, userID string) (*models.UserProgress, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	p, ok := r.rows[userID]
	if !ok {
		return nil, repositories.ErrNotFound
	}
	cp := *p
	return &cp, nil
}

func (r *memoryProgress) RecordAttempt(ctx context.Context, userID string, scorePercent *int, at time.Time) (*models.UserProgress, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	p, ok := r.rows[userID]
	if !ok {
		p = &models.UserProgress{UserID: userID}
		r.rows[userID] = p
	}
	p.RecordAttempt(scorePercent, at)
	cp := *p
	return &cp, nil
}

type testManager struct {
	progress services.ProgressService
	feedback services.FeedbackService
	room     services.RoomService
}

func (m *testManager) Progress() services.ProgressService { return m.progress }
func (m *testManager) Feedback() services.FeedbackService { return m.feedback }
func (m *testManager) Room() services.RoomService         { return m.room }
func (m *testManager) Close()                             { m.room.Close() }

var quizBank = interview.Bank{
	interview.TypeBehavioral: {
		interview.ModeQuiz: {
			{ID: "b1", Prompt: "Tell me about a conflict", Kind: interview.KindQuiz, Checklist: []string{"situation", "result"}},
		},
	},
}

func newTestRouter(t *testing.T) (*gin.Engine, *testManager) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	slogger := slog.New(slog.NewTextHandler(io.Discard, nil))
	publisher := events.NewMockEventPublisher(slogger)
	v := validator.New()

	progress := services.NewProgressService(&memoryAttempts{}, &memoryProgress{rows: map[string]*models.UserProgress{}}, cache.NewMemoryCache(), publisher, v, slogger)
	feedback := services.NewFeedbackService(nil, 0, publisher, v, slogger)
	room := services.NewRoomService(services.RoomConfig{
		Bank:     quizBank,
		Shuffler: interview.NewSeededShuffler(1),
	}, services.NewLocalProgressGateway(progress), services.NewLocalFeedbackClient(feedback), cache.NewMemorySessionStore(), publisher, slogger)

	manager := &testManager{progress: progress, feedback: feedback, room: room}
	t.Cleanup(manager.Close)

	logger := utils.NewSlogLogger(slogger)
	router := gin.New()
	router.Use(utils.ContextLogger(logger))
	NewHandlerManager(manager, logger).SetupRoutes(router)
	return router, manager
}

func doRequest(router http.Handler, method, path, userID string, body interface{}) *httptest.ResponseRecorder {
	var reader io.Reader
	if body != nil {
		raw, _ := json.Marshal(body)
		reader = bytes.NewReader(raw)
	}
	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if userID != "" {
		req.Header.Set(utils.UserIDHeader, userID)
	}
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func decode[T any](t *testing.T, w *httptest.ResponseRecorder) T {
	t.Helper()
	var out T
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &out), w.Body.String())
	return out
}

func TestHealthEndpoints(t *testing.T) {
	router, _ := newTestRouter(t)

	for _, path := range []string{"/health", "/api/health"} {
		w := doRequest(router, http.MethodGet, path, "", nil)
		assert.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, "ok", decode[map[string]string](t, w)["status"])
	}

	w := doRequest(router, http.MethodGet, "/metrics", "", nil)
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestRequiresUserID(t *testing.T) {
	router, _ := newTestRouter(t)

	w := doRequest(router, http.MethodGet, "/api/progress/attempts", "", nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Equal(t, "User not authenticated", decode[ErrorResponse](t, w).Message)
}

func TestProgressEndpoints(t *testing.T) {
	router, _ := newTestRouter(t)

	w := doRequest(router, http.MethodPost, "/api/progress/save-attempt", "user-1", map[string]interface{}{
		"type":         "technical",
		"mode":         "mcq",
		"scorePercent": 80,
		"answers":      map[string]interface{}{"q1": 1},
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	saved := decode[services.SaveAttemptResponse](t, w)
	assert.Equal(t, "Saved", saved.Message)
	assert.Equal(t, 80, saved.Progress.AverageScore)

	w = doRequest(router, http.MethodPost, "/api/progress/save-attempt", "user-1", map[string]interface{}{
		"type": "technical",
		"mode": "essay",
	})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = doRequest(router, http.MethodGet, "/api/progress/attempts?limit=10", "user-1", nil)
	require.Equal(t, http.StatusOK, w.Code)
	list := decode[services.AttemptListResponse](t, w)
	assert.EqualValues(t, 1, list.Total)
	assert.Equal(t, 10, list.Limit)
	require.Len(t, list.Attempts, 1)
	assert.Equal(t, "mcq", list.Attempts[0].Mode)

	w = doRequest(router, http.MethodGet, "/api/progress/attempts", "user-2", nil)
	assert.EqualValues(t, 0, decode[services.AttemptListResponse](t, w).Total)

	w = doRequest(router, http.MethodGet, "/api/progress/stats", "user-1", nil)
	require.Equal(t, http.StatusOK, w.Code)
	stats := decode[models.ProgressStats](t, w)
	assert.Equal(t, 1, stats.InterviewsCompleted)
	assert.Equal(t, map[string]int{"mcq": 1}, stats.AttemptsByMode)

	w = doRequest(router, http.MethodGet, "/api/progress/attempts/export", "user-1", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Header().Get("Content-Disposition"), "interview_attempts_")
	assert.NotEmpty(t, w.Body.Bytes())
}

func TestInterviewFeedbackEndpoint(t *testing.T) {
	router, _ := newTestRouter(t)

	w := doRequest(router, http.MethodPost, "/api/ai/interview-feedback", "user-1", map[string]interface{}{
		"type":      "behavioral",
		"mode":      "quiz",
		"questions": []interface{}{},
		"answers":   map[string]interface{}{},
	})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var body struct {
		Success  bool                     `json:"success"`
		Feedback models.InterviewFeedback `json:"feedback"`
		Fallback bool                     `json:"fallback"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.True(t, body.Success)
	assert.True(t, body.Fallback)
	assert.Equal(t, 75, body.Feedback.OverallScore)
}

func TestInterviewSessionFlow(t *testing.T) {
	router, manager := newTestRouter(t)

	w := doRequest(router, http.MethodGet, "/api/interview/report", "user-1", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = doRequest(router, http.MethodPost, "/api/interview/sessions", "user-1", map[string]string{"type": "behavioral"})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	session := decode[services.SessionView](t, w)
	assert.Equal(t, "selecting_mode", session.State)
	base := "/api/interview/sessions/" + session.ID

	w = doRequest(router, http.MethodPost, base+"/mode", "user-1", map[string]string{"mode": "essay"})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = doRequest(router, http.MethodPost, base+"/mode", "user-1", map[string]string{"mode": "quiz"})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	session = decode[services.SessionView](t, w)
	require.Len(t, session.Questions, interview.SessionLength)

	w = doRequest(router, http.MethodGet, base, "user-2", nil)
	assert.Equal(t, http.StatusForbidden, w.Code)

	w = doRequest(router, http.MethodPut, base+"/answers/b1", "user-1", map[string]interface{}{"value": 3})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = doRequest(router, http.MethodPut, base+"/answers/b1", "user-1", map[string]interface{}{})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = doRequest(router, http.MethodPut, base+"/answers/b1", "user-1", map[string]interface{}{
		"value": "In that situation I listened first. The result was a shared plan.",
	})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Equal(t, 1, decode[services.SessionView](t, w).AnsweredCount)

	w = doRequest(router, http.MethodPost, base+"/navigate", "user-1", map[string]int{"index": 99})
	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)

	for i := 0; i < interview.SessionLength; i++ {
		w = doRequest(router, http.MethodPost, base+"/next", "user-1", nil)
		require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	}
	session = decode[services.SessionView](t, w)
	assert.Equal(t, "all_submitted", session.State)
	require.NotNil(t, session.Report)

	w = doRequest(router, http.MethodPut, base+"/answers/b1", "user-1", map[string]interface{}{"value": "late"})
	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)

	manager.room.Wait()

	w = doRequest(router, http.MethodGet, "/api/interview/report", "user-1", nil)
	require.Equal(t, http.StatusOK, w.Code)
	report := decode[interview.Report](t, w)
	assert.Equal(t, interview.ModeQuiz, report.Mode)
	assert.NotZero(t, report.Timestamp)

	w = doRequest(router, http.MethodGet, "/api/interview/plan", "user-1", nil)
	assert.Equal(t, http.StatusOK, w.Code)

	w = doRequest(router, http.MethodGet, "/api/interview/feedback", "user-1", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, 75, decode[models.InterviewFeedback](t, w).OverallScore)

	w = doRequest(router, http.MethodGet, "/api/interview/local-attempts", "user-1", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Empty(t, decode[[]services.LocalAttempt](t, w))

	w = doRequest(router, http.MethodGet, "/api/progress/attempts", "user-1", nil)
	list := decode[services.AttemptListResponse](t, w)
	require.Len(t, list.Attempts, 1)
	assert.Nil(t, list.Attempts[0].ScorePercent)

	w = doRequest(router, http.MethodDelete, base, "user-1", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	w = doRequest(router, http.MethodGet, base, "user-1", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}
