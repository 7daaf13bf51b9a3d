package services

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/SAP-F-2025/interview-service/internal/cache"
	"github.com/SAP-F-2025/interview-service/internal/events"
	"github.com/SAP-F-2025/interview-service/internal/interview"
	"github.com/SAP-F-2025/interview-service/internal/models"
	"github.com/SAP-F-2025/interview-service/internal/repositories"
	"github.com/SAP-F-2025/interview-service/internal/validator"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

type progressFixture struct {
	attempts  *MockAttemptRepository
	progress  *memoryProgressRepository
	cache     *cache.MemoryCache
	publisher *events.MockEventPublisher
	service   ProgressService
}

func newProgressFixture() *progressFixture {
	f := &progressFixture{
		attempts:  &MockAttemptRepository{},
		progress:  newMemoryProgressRepository(),
		cache:     cache.NewMemoryCache(),
		publisher: events.NewMockEventPublisher(discardLogger()),
	}
	f.service = NewProgressService(f.attempts, f.progress, f.cache, f.publisher, validator.New(), discardLogger())
	return f
}

func TestProgressService_SaveAttempt(t *testing.T) {
	ctx := context.Background()
	f := newProgressFixture()
	f.attempts.On("Create", ctx, mock.AnythingOfType("*models.InterviewAttempt")).Return(nil)

	report := interview.Report{Type: interview.TypeTechnical, Mode: interview.ModeMCQ, Weaknesses: []interview.Dimension{interview.DimensionClarity}}
	resp, err := f.service.SaveAttempt(ctx, "user-1", &SaveAttemptRequest{
		Type:         interview.TypeTechnical,
		Mode:         interview.ModeMCQ,
		ScorePercent: intPtr(80),
		Answers:      interview.Answers{"q1": interview.ChoiceAnswer(2)},
		Report:       &report,
	})
	require.NoError(t, err)

	assert.Equal(t, "Saved", resp.Message)
	assert.Equal(t, 1, resp.Progress.InterviewsCompleted)
	assert.Equal(t, 80, resp.Progress.AverageScore)
	assert.Len(t, resp.Attempt.ID, 36)
	assert.JSONEq(t, `{"q1": 2}`, string(resp.Attempt.Answers))
	assert.Nil(t, resp.Attempt.Plan)

	saved := f.publisher.EventsOfType(events.EventAttemptSaved)
	require.Len(t, saved, 1)
	assert.Equal(t, "user-1", saved[0].UserID)
	data, ok := saved[0].Data.(events.AttemptSavedEvent)
	require.True(t, ok)
	assert.Equal(t, 80, data.AverageScore)

	f.attempts.AssertExpectations(t)
}

func TestProgressService_SaveAttemptValidation(t *testing.T) {
	ctx := context.Background()
	f := newProgressFixture()

	cases := map[string]*SaveAttemptRequest{
		"bad type":     {Type: "trivia", Mode: interview.ModeMCQ},
		"bad mode":     {Type: interview.TypeTechnical, Mode: "essay"},
		"missing mode": {Type: interview.TypeTechnical},
		"score > 100":  {Type: interview.TypeTechnical, Mode: interview.ModeMCQ, ScorePercent: intPtr(101)},
		"score < 0":    {Type: interview.TypeTechnical, Mode: interview.ModeMCQ, ScorePercent: intPtr(-1)},
	}
	for name, req := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := f.service.SaveAttempt(ctx, "user-1", req)
			assert.True(t, IsValidation(err), "got %v", err)
		})
	}

	_, err := f.service.SaveAttempt(ctx, "user-1", nil)
	assert.ErrorIs(t, err, ErrBadRequest)
	f.attempts.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
}

func TestProgressService_RunningAverage(t *testing.T) {
	ctx := context.Background()
	f := newProgressFixture()
	f.attempts.On("Create", ctx, mock.Anything).Return(nil)

	save := func(mode interview.Mode, score *int) *models.UserProgress {
		resp, err := f.service.SaveAttempt(ctx, "user-1", &SaveAttemptRequest{
			Type: interview.TypeTechnical, Mode: mode, ScorePercent: score,
		})
		require.NoError(t, err)
		return resp.Progress
	}

	p := save(interview.ModeMCQ, intPtr(80))
	assert.Equal(t, 1, p.InterviewsCompleted)
	assert.Equal(t, 80, p.AverageScore)

	// attempts without a score only bump the count
	p = save(interview.ModeCoding, nil)
	assert.Equal(t, 2, p.InterviewsCompleted)
	assert.Equal(t, 80, p.AverageScore)

	// round((80*2 + 60) / 3) = round(73.33)
	p = save(interview.ModeMCQ, intPtr(60))
	assert.Equal(t, 3, p.InterviewsCompleted)
	assert.Equal(t, 73, p.AverageScore)

	// round((73*3 + 76) / 4) = round(73.75)
	p = save(interview.ModeMCQ, intPtr(76))
	assert.Equal(t, 74, p.AverageScore)
}

func TestProgressService_SaveAttemptRepositoryError(t *testing.T) {
	ctx := context.Background()
	f := newProgressFixture()
	f.attempts.On("Create", ctx, mock.Anything).Return(errors.New("db down"))

	_, err := f.service.SaveAttempt(ctx, "user-1", &SaveAttemptRequest{Type: interview.TypeTechnical, Mode: interview.ModeQuiz})
	require.Error(t, err)
	assert.Empty(t, f.publisher.GetPublishedEvents())

	_, err = f.progress.Get(ctx, "user-1")
	assert.True(t, repositories.IsNotFoundError(err))
}

func attemptWithReport(t *testing.T, mode string, weaknesses ...interview.Dimension) *models.InterviewAttempt {
	t.Helper()
	raw, err := json.Marshal(interview.Report{Weaknesses: weaknesses})
	require.NoError(t, err)
	return &models.InterviewAttempt{
		ID:        "a-" + mode,
		UserID:    "user-1",
		Type:      "technical",
		Mode:      mode,
		Report:    raw,
		Timestamp: time.Date(2025, 1, 2, 3, 4, 5, 0, time.UTC),
	}
}

func TestProgressService_GetStats(t *testing.T) {
	ctx := context.Background()
	f := newProgressFixture()
	_, err := f.progress.RecordAttempt(ctx, "user-1", intPtr(70), time.Now())
	require.NoError(t, err)

	attempts := []*models.InterviewAttempt{
		attemptWithReport(t, "mcq", interview.DimensionClarity, interview.DimensionStructure),
		attemptWithReport(t, "coding", interview.DimensionClarity),
		{ID: "broken", Mode: "quiz", Type: "behavioral", Report: []byte(`{not json`)},
	}
	f.attempts.On("ListByUser", ctx, "user-1", mock.Anything).Return(attempts, int64(3), nil).Once()

	stats, err := f.service.GetStats(ctx, "user-1")
	require.NoError(t, err)
	assert.Equal(t, 1, stats.InterviewsCompleted)
	assert.Equal(t, 70, stats.AverageScore)
	assert.Equal(t, map[string]int{"mcq": 1, "coding": 1, "quiz": 1}, stats.AttemptsByMode)
	assert.Equal(t, map[string]int{"technical": 2, "behavioral": 1}, stats.AttemptsByType)
	assert.Equal(t, []string{"Clarity", "Structure"}, stats.TopWeaknesses)
	require.NotNil(t, stats.LastActivity)

	// second call is served from cache
	cached, err := f.service.GetStats(ctx, "user-1")
	require.NoError(t, err)
	assert.Equal(t, stats.TopWeaknesses, cached.TopWeaknesses)
	f.attempts.AssertNumberOfCalls(t, "ListByUser", 1)
}

func TestProgressService_SaveInvalidatesStats(t *testing.T) {
	ctx := context.Background()
	f := newProgressFixture()
	require.NoError(t, f.cache.Set(ctx, statsCachePrefix+"user-1", models.ProgressStats{AverageScore: 1}, time.Minute))
	f.attempts.On("Create", ctx, mock.Anything).Return(nil)

	_, err := f.service.SaveAttempt(ctx, "user-1", &SaveAttemptRequest{Type: interview.TypeTechnical, Mode: interview.ModeQuiz})
	require.NoError(t, err)

	var stats models.ProgressStats
	assert.ErrorIs(t, f.cache.Get(ctx, statsCachePrefix+"user-1", &stats), cache.ErrCacheMiss)
}

func TestProgressService_GetProgressDefaults(t *testing.T) {
	f := newProgressFixture()
	p, err := f.service.GetProgress(context.Background(), "nobody")
	require.NoError(t, err)
	assert.Equal(t, "nobody", p.UserID)
	assert.Zero(t, p.InterviewsCompleted)
}

func TestProgressService_ListAttemptsNormalizesPaging(t *testing.T) {
	ctx := context.Background()
	f := newProgressFixture()
	f.attempts.On("ListByUser", ctx, "user-1", repositories.AttemptFilters{Limit: repositories.DefaultAttemptLimit}).
		Return([]*models.InterviewAttempt(nil), int64(0), nil)

	list, err := f.service.ListAttempts(ctx, "user-1", repositories.AttemptFilters{Offset: -5})
	require.NoError(t, err)
	assert.NotNil(t, list.Attempts)
	assert.Equal(t, repositories.DefaultAttemptLimit, list.Limit)
	assert.Zero(t, list.Offset)
}

func TestProgressService_ExportAttempts(t *testing.T) {
	ctx := context.Background()
	f := newProgressFixture()

	attempt := attemptWithReport(t, "mcq", interview.DimensionStructure)
	attempt.ScorePercent = intPtr(60)
	attempt.Answers = []byte(`{"q1": 1, "q2": "text"}`)
	f.attempts.On("ListByUser", ctx, "user-1", mock.Anything).Return([]*models.InterviewAttempt{attempt}, int64(1), nil)

	data, err := f.service.ExportAttempts(ctx, "user-1", repositories.AttemptFilters{})
	require.NoError(t, err)

	book, err := excelize.OpenReader(bytes.NewReader(data))
	require.NoError(t, err)
	defer book.Close()

	rows, err := book.GetRows(attemptsSheet)
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, attemptExportHeaders, rows[0])
	assert.Equal(t, "2025-01-02T03:04:05Z", rows[1][0])
	assert.Equal(t, "mcq", rows[1][2])
	assert.Equal(t, "60", rows[1][3])
	assert.Equal(t, "Structure", rows[1][8])
	assert.Equal(t, "2", rows[1][9])
}

func TestTopKeys(t *testing.T) {
	counts := map[string]int{"b": 2, "a": 2, "c": 5, "d": 1}
	assert.Equal(t, []string{"c", "a", "b"}, topKeys(counts, 3))
	assert.Empty(t, topKeys(nil, 3))
}
