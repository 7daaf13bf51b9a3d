package services

import (
	"context"
	"io"
	"log/slog"
	"sync"
	"time"

	"github.com/SAP-F-2025/interview-service/internal/models"
	"github.com/SAP-F-2025/interview-service/internal/repositories"
	"github.com/SAP-F-2025/interview-service/internal/utils"
	"github.com/stretchr/testify/mock"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// MockAttemptRepository is a mock implementation of AttemptRepository
type MockAttemptRepository struct {
	mock.Mock
}

func (m *MockAttemptRepository) Create(ctx context.Context, attempt *models.InterviewAttempt) error {
	args := m.Called(ctx, attempt)
	return args.Error(0)
}

func (m *MockAttemptRepository) GetByID(ctx context.Context, id string) (*models.InterviewAttempt, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.InterviewAttempt), args.Error(1)
}

func (m *MockAttemptRepository) ListByUser(ctx context.Context, userID string, filters repositories.AttemptFilters) ([]*models.InterviewAttempt, int64, error) {
	args := m.Called(ctx, userID, filters)
	return args.Get(0).([]*models.InterviewAttempt), args.Get(1).(int64), args.Error(2)
}

// MockProgressRepository is a mock implementation of ProgressRepository
type MockProgressRepository struct {
	mock.Mock
}

func (m *MockProgressRepository) Get(ctx context.Context, userID string) (*models.UserProgress, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.UserProgress), args.Error(1)
}

func (m *MockProgressRepository) RecordAttempt(ctx context.Context, userID string, scorePercent *int, at time.Time) (*models.UserProgress, error) {
	args := m.Called(ctx, userID, scorePercent, at)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.UserProgress), args.Error(1)
}

// memoryProgressRepository keeps progress rows in a map
type memoryProgressRepository struct {
	mu   sync.Mutex
	rows map[string]*models.UserProgress
}

func newMemoryProgressRepository() *memoryProgressRepository {
	return &memoryProgressRepository{rows: map[string]*models.UserProgress{}}
}

func (r *memoryProgressRepository) Get(_ context.Context, userID string) (*models.UserProgress, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	p, ok := r.rows[userID]
	if !ok {
		return nil, repositories.ErrNotFound
	}
	cp := *p
	return &cp, nil
}

func (r *memoryProgressRepository) RecordAttempt(_ context.Context, userID string, scorePercent *int, at time.Time) (*models.UserProgress, error) {
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

// fakeGateway records saves and optionally fails them
type fakeGateway struct {
	mu         sync.Mutex
	saves      []*SaveAttemptRequest
	requestIDs []string
	err        error
}

func (g *fakeGateway) SaveAttempt(ctx context.Context, _ string, req *SaveAttemptRequest) error {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.saves = append(g.saves, req)
	g.requestIDs = append(g.requestIDs, utils.RequestIDFromContext(ctx))
	return g.err
}

func (g *fakeGateway) RequestIDs() []string {
	g.mu.Lock()
	defer g.mu.Unlock()
	return append([]string(nil), g.requestIDs...)
}

func (g *fakeGateway) Saves() []*SaveAttemptRequest {
	g.mu.Lock()
	defer g.mu.Unlock()
	return append([]*SaveAttemptRequest(nil), g.saves...)
}

// fakeFeedbackClient returns a fixed feedback or error
type fakeFeedbackClient struct {
	mu       sync.Mutex
	calls    int
	feedback models.InterviewFeedback
	err      error
}

func (c *fakeFeedbackClient) RequestFeedback(_ context.Context, _ string, _ *FeedbackRequest) (*models.InterviewFeedback, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.calls++
	if c.err != nil {
		return nil, c.err
	}
	fb := c.feedback
	return &fb, nil
}

func (c *fakeFeedbackClient) Calls() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.calls
}

func intPtr(v int) *int { return &v }
