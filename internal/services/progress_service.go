package services

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"sort"
	"sync"
	"time"

	"github.com/SAP-F-2025/interview-service/internal/cache"
	"github.com/SAP-F-2025/interview-service/internal/events"
	"github.com/SAP-F-2025/interview-service/internal/interview"
	"github.com/SAP-F-2025/interview-service/internal/models"
	"github.com/SAP-F-2025/interview-service/internal/monitoring"
	"github.com/SAP-F-2025/interview-service/internal/repositories"
	"github.com/SAP-F-2025/interview-service/internal/validator"
	"github.com/google/uuid"
)

const (
	statsCacheTTL    = 5 * time.Minute
	statsCachePrefix = "progress:stats:"
	topWeaknessLimit = 3
)

// ProgressService stores finished interviews and the running statistics
// derived from them.
type ProgressService interface {
	SaveAttempt(ctx context.Context, userID string, req *SaveAttemptRequest) (*SaveAttemptResponse, error)
	ListAttempts(ctx context.Context, userID string, filters repositories.AttemptFilters) (*AttemptListResponse, error)
	GetProgress(ctx context.Context, userID string) (*models.UserProgress, error)
	GetStats(ctx context.Context, userID string) (*models.ProgressStats, error)
	ExportAttempts(ctx context.Context, userID string, filters repositories.AttemptFilters) ([]byte, error)
}

// SaveAttemptRequest is the body of POST /api/progress/save-attempt
type SaveAttemptRequest struct {
	Type         interview.Type          `json:"type" validate:"required,interview_type"`
	Mode         interview.Mode          `json:"mode" validate:"required,interview_mode"`
	ScorePercent *int                    `json:"scorePercent" validate:"omitempty,min=0,max=100"`
	Answers      interview.Answers       `json:"answers"`
	Report       *interview.Report       `json:"report"`
	Plan         *interview.PracticePlan `json:"plan"`
	Timestamp    *time.Time              `json:"timestamp,omitempty"`
}

type SaveAttemptResponse struct {
	Message  string                   `json:"message"`
	Attempt  *models.InterviewAttempt `json:"attempt,omitempty"`
	Progress *models.UserProgress     `json:"progress,omitempty"`
}

type AttemptListResponse struct {
	Attempts []*models.InterviewAttempt `json:"attempts"`
	Total    int64                      `json:"total"`
	Limit    int                        `json:"limit"`
	Offset   int                        `json:"offset"`
}

type progressService struct {
	attempts  repositories.AttemptRepository
	progress  repositories.ProgressRepository
	cache     cache.CacheService
	publisher events.EventPublisher
	validator *validator.Validator
	logger    *ServiceLogger
	now       func() time.Time

	locks userLocks
}

func NewProgressService(
	attempts repositories.AttemptRepository,
	progress repositories.ProgressRepository,
	cacheService cache.CacheService,
	publisher events.EventPublisher,
	validator *validator.Validator,
	logger *slog.Logger,
) ProgressService {
	return &progressService{
		attempts:  attempts,
		progress:  progress,
		cache:     cacheService,
		publisher: publisher,
		validator: validator,
		logger:    NewServiceLogger(logger, LogConfig{Service: "interview-service", Component: "progress"}),
		now:       time.Now,
	}
}

// ===== SAVE =====

func (s *progressService) SaveAttempt(ctx context.Context, userID string, req *SaveAttemptRequest) (resp *SaveAttemptResponse, err error) {
	op := s.logger.WithOperation(ctx, "save_attempt", userID)
	attemptID := uuid.NewString()
	defer func() { op.LogResult(attemptID, "interview_attempt", err) }()

	if req == nil {
		return nil, ErrBadRequest
	}
	if err = s.validator.Validate(req); err != nil {
		return nil, err
	}

	at := s.now().UTC()
	if req.Timestamp != nil && !req.Timestamp.IsZero() {
		at = req.Timestamp.UTC()
	}

	attempt := &models.InterviewAttempt{
		ID:           attemptID,
		UserID:       userID,
		Type:         string(req.Type),
		Mode:         string(req.Mode),
		ScorePercent: req.ScorePercent,
		Timestamp:    at,
	}
	if attempt.Answers, err = marshalPayload(req.Answers); err != nil {
		return nil, err
	}
	if attempt.Report, err = marshalPayload(req.Report); err != nil {
		return nil, err
	}
	if attempt.Plan, err = marshalPayload(req.Plan); err != nil {
		return nil, err
	}

	unlock := s.locks.lock(userID)
	defer unlock()

	if err = s.attempts.Create(ctx, attempt); err != nil {
		return nil, fmt.Errorf("failed to create attempt: %w", err)
	}

	progress, err := s.progress.RecordAttempt(ctx, userID, req.ScorePercent, at)
	if err != nil {
		return nil, fmt.Errorf("failed to update progress: %w", err)
	}

	monitoring.AttemptsSaved.WithLabelValues(attempt.Type, attempt.Mode).Inc()
	s.invalidateStats(ctx, userID)
	s.publish(ctx, events.NewInterviewEvent(events.EventAttemptSaved, userID, events.AttemptSavedEvent{
		AttemptID:           attempt.ID,
		Type:                attempt.Type,
		Mode:                attempt.Mode,
		ScorePercent:        attempt.ScorePercent,
		InterviewsCompleted: progress.InterviewsCompleted,
		AverageScore:        progress.AverageScore,
	}))

	return &SaveAttemptResponse{
		Message:  "Saved",
		Attempt:  attempt,
		Progress: progress,
	}, nil
}

// ===== READ =====

func (s *progressService) ListAttempts(ctx context.Context, userID string, filters repositories.AttemptFilters) (*AttemptListResponse, error) {
	filters = filters.Normalize()

	attempts, total, err := s.attempts.ListByUser(ctx, userID, filters)
	if err != nil {
		return nil, fmt.Errorf("failed to list attempts: %w", err)
	}
	if attempts == nil {
		attempts = []*models.InterviewAttempt{}
	}

	return &AttemptListResponse{
		Attempts: attempts,
		Total:    total,
		Limit:    filters.Limit,
		Offset:   filters.Offset,
	}, nil
}

func (s *progressService) GetProgress(ctx context.Context, userID string) (*models.UserProgress, error) {
	progress, err := s.progress.Get(ctx, userID)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return &models.UserProgress{UserID: userID}, nil
		}
		return nil, fmt.Errorf("failed to get progress: %w", err)
	}
	return progress, nil
}

func (s *progressService) GetStats(ctx context.Context, userID string) (*models.ProgressStats, error) {
	key := statsCachePrefix + userID

	if s.cache != nil {
		var cached models.ProgressStats
		if err := s.cache.Get(ctx, key, &cached); err == nil {
			return &cached, nil
		}
	}

	progress, err := s.GetProgress(ctx, userID)
	if err != nil {
		return nil, err
	}

	attempts, _, err := s.attempts.ListByUser(ctx, userID, repositories.AttemptFilters{Limit: repositories.MaxAttemptLimit})
	if err != nil {
		return nil, fmt.Errorf("failed to list attempts: %w", err)
	}

	stats := &models.ProgressStats{
		InterviewsCompleted: progress.InterviewsCompleted,
		AverageScore:        progress.AverageScore,
		AttemptsByMode:      map[string]int{},
		AttemptsByType:      map[string]int{},
		TopWeaknesses:       []string{},
	}
	if !progress.LastActivity.IsZero() {
		last := progress.LastActivity
		stats.LastActivity = &last
	}

	weaknessCounts := map[string]int{}
	for _, a := range attempts {
		stats.AttemptsByMode[a.Mode]++
		stats.AttemptsByType[a.Type]++

		var report interview.Report
		if len(a.Report) == 0 || json.Unmarshal(a.Report, &report) != nil {
			continue
		}
		for _, w := range report.Weaknesses {
			weaknessCounts[string(w)]++
		}
	}
	stats.TopWeaknesses = topKeys(weaknessCounts, topWeaknessLimit)

	if s.cache != nil {
		if err := s.cache.Set(ctx, key, stats, statsCacheTTL); err != nil {
			s.logger.Logger().Warn("Failed to cache progress stats", "user_id", userID, "error", err)
		}
	}

	return stats, nil
}

// ===== HELPERS =====

func (s *progressService) invalidateStats(ctx context.Context, userID string) {
	if s.cache == nil {
		return
	}
	if err := s.cache.Delete(ctx, statsCachePrefix+userID); err != nil {
		s.logger.Logger().Warn("Failed to invalidate progress stats", "user_id", userID, "error", err)
	}
}

func (s *progressService) publish(ctx context.Context, event *events.InterviewEvent) {
	if s.publisher == nil {
		return
	}
	if err := s.publisher.Publish(ctx, event); err != nil {
		s.logger.Logger().Warn("Failed to publish event", "event_type", event.Type, "error", err)
	}
}

func marshalPayload(v interface{}) ([]byte, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return nil, NewValidationError("payload", "could not be encoded", err.Error())
	}
	if string(data) == "null" {
		return nil, nil
	}
	return data, nil
}

// topKeys returns up to n keys ordered by count, then name
func topKeys(counts map[string]int, n int) []string {
	keys := make([]string, 0, len(counts))
	for k := range counts {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool {
		if counts[keys[i]] != counts[keys[j]] {
			return counts[keys[i]] > counts[keys[j]]
		}
		return keys[i] < keys[j]
	})
	if len(keys) > n {
		keys = keys[:n]
	}
	return keys
}

// userLocks serializes progress updates per user so the read-modify-write
// on the running average never interleaves.
type userLocks struct {
	mu    sync.Mutex
	locks map[string]*userLock
}

type userLock struct {
	mu   sync.Mutex
	refs int
}

func (l *userLocks) lock(userID string) func() {
	l.mu.Lock()
	if l.locks == nil {
		l.locks = map[string]*userLock{}
	}
	ul, ok := l.locks[userID]
	if !ok {
		ul = &userLock{}
		l.locks[userID] = ul
	}
	ul.refs++
	l.mu.Unlock()

	ul.mu.Lock()
	return func() {
		ul.mu.Unlock()
		l.mu.Lock()
		ul.refs--
		if ul.refs == 0 {
			delete(l.locks, userID)
		}
		l.mu.Unlock()
	}
}
