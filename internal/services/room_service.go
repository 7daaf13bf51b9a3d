package services

import (
	"context"
	"fmt"
	"log/slog"
	"runtime/debug"
	"sync"
	"sync/atomic"
	"time"

	"github.com/SAP-F-2025/interview-service/internal/cache"
	"github.com/SAP-F-2025/interview-service/internal/events"
	"github.com/SAP-F-2025/interview-service/internal/interview"
	"github.com/SAP-F-2025/interview-service/internal/models"
	"github.com/SAP-F-2025/interview-service/internal/monitoring"
	"github.com/SAP-F-2025/interview-service/internal/utils"
	"github.com/google/uuid"
)

const (
	persistTimeout = 2 * time.Minute

	defaultIdleTimeout        = time.Hour
	defaultCompletedRetention = 10 * time.Minute
	defaultSweepInterval      = time.Minute
)

var errRoomClosed = fmt.Errorf("room service is closed: %w", ErrConflict)

// RoomService runs live interview sessions: it owns the state machines, the
// per-question timers and the persistence that follows completion.
type RoomService interface {
	Start(ctx context.Context, userID string, t interview.Type) (*SessionView, error)
	Get(ctx context.Context, userID, sessionID string) (*SessionView, error)
	SelectMode(ctx context.Context, userID, sessionID string, m interview.Mode) (*SessionView, error)
	Answer(ctx context.Context, userID, sessionID, questionID string, a interview.Answer) (*SessionView, error)
	Navigate(ctx context.Context, userID, sessionID string, index int) (*SessionView, error)
	Next(ctx context.Context, userID, sessionID string) (*SessionView, error)
	Prev(ctx context.Context, userID, sessionID string) (*SessionView, error)
	Submit(ctx context.Context, userID, sessionID string) (*SessionView, error)
	Restart(ctx context.Context, userID, sessionID string) (*SessionView, error)
	End(ctx context.Context, userID, sessionID string) error

	LastReport(ctx context.Context, userID string) (*interview.Report, error)
	PracticePlan(ctx context.Context, userID string) (*interview.PracticePlan, error)
	LastFeedback(ctx context.Context, userID string) (*models.InterviewFeedback, error)
	LocalAttempts(ctx context.Context, userID string) ([]LocalAttempt, error)

	// Wait blocks until every dispatched persistence job has finished.
	Wait()
	// Close stops all timers, drains persistence and rejects later calls.
	Close()
}

// RoomConfig tunes a RoomService. A QuestionTime of zero disables timers.
// Sessions untouched for IdleTimeout are evicted, and completed sessions are
// kept for CompletedRetention after their attempt was persisted. A negative
// SweepInterval disables the background sweep.
type RoomConfig struct {
	QuestionTime       time.Duration
	IdleTimeout        time.Duration
	CompletedRetention time.Duration
	SweepInterval      time.Duration
	Bank               interview.Bank
	Shuffler           interview.Shuffler
	Now                func() time.Time
}

// LocalAttempt is the summary kept in the session store when the remote
// save fails.
type LocalAttempt struct {
	Type         interview.Type `json:"type"`
	Mode         interview.Mode `json:"mode"`
	Timestamp    int64          `json:"timestamp"`
	ScorePercent *int           `json:"scorePercent"`
}

type liveSession struct {
	mu      sync.Mutex
	session *interview.Session

	timer    *time.Timer
	timerGen uint64

	lastActive  time.Time
	persisted   bool
	persistedAt time.Time
}

type roomService struct {
	config    RoomConfig
	progress  ProgressGateway
	feedback  FeedbackClient
	store     cache.SessionStore
	publisher events.EventPublisher
	logger    *ServiceLogger

	mu       sync.Mutex
	sessions map[string]*liveSession
	closed   atomic.Bool
	stop     chan struct{}

	jobs sync.WaitGroup
}

func NewRoomService(
	config RoomConfig,
	progress ProgressGateway,
	feedback FeedbackClient,
	store cache.SessionStore,
	publisher events.EventPublisher,
	logger *slog.Logger,
) RoomService {
	if config.Bank == nil {
		config.Bank = interview.DefaultBank
	}
	if config.Shuffler == nil {
		config.Shuffler = interview.NewClockShuffler()
	}
	if config.Now == nil {
		config.Now = time.Now
	}
	if config.IdleTimeout <= 0 {
		config.IdleTimeout = defaultIdleTimeout
	}
	if config.CompletedRetention <= 0 {
		config.CompletedRetention = defaultCompletedRetention
	}
	if config.SweepInterval == 0 {
		config.SweepInterval = defaultSweepInterval
	}

	r := &roomService{
		config:    config,
		progress:  progress,
		feedback:  feedback,
		store:     store,
		publisher: publisher,
		logger:    NewServiceLogger(logger, LogConfig{Service: "interview-service", Component: "room"}),
		sessions:  map[string]*liveSession{},
		stop:      make(chan struct{}),
	}
	if config.SweepInterval > 0 {
		go r.sweepLoop(config.SweepInterval)
	}
	return r
}

// ===== SESSION LIFECYCLE =====

func (r *roomService) Start(ctx context.Context, userID string, t interview.Type) (*SessionView, error) {
	if userID == "" {
		return nil, ErrUnauthorized
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if r.closed.Load() {
		return nil, errRoomClosed
	}

	now := r.config.Now()
	session := interview.NewSession(uuid.NewString(), userID, interview.ParseType(string(t)), now)
	live := &liveSession{session: session, lastActive: now}
	r.sessions[session.ID] = live

	r.logger.Logger().InfoContext(ctx, "Interview session created",
		"session_id", session.ID,
		"user_id", userID,
		"type", session.Type)

	return r.view(session), nil
}

func (r *roomService) Get(ctx context.Context, userID, sessionID string) (*SessionView, error) {
	return r.withSession(ctx, "get_session", userID, sessionID, func(live *liveSession) error {
		return nil
	})
}

func (r *roomService) SelectMode(ctx context.Context, userID, sessionID string, m interview.Mode) (*SessionView, error) {
	return r.withSession(ctx, "select_mode", userID, sessionID, func(live *liveSession) error {
		s := live.session
		if err := s.SelectMode(m, r.config.Bank, r.config.Shuffler); err != nil {
			return err
		}
		r.armTimer(live)
		r.publish(ctx, events.NewInterviewEvent(events.EventSessionStarted, s.UserID, events.SessionStartedEvent{
			SessionID: s.ID,
			Type:      string(s.Type),
			Mode:      string(s.Mode),
			Questions: len(s.Questions),
		}))
		return nil
	})
}

func (r *roomService) Answer(ctx context.Context, userID, sessionID, questionID string, a interview.Answer) (*SessionView, error) {
	return r.withSession(ctx, "answer", userID, sessionID, func(live *liveSession) error {
		return live.session.Answer(questionID, a)
	})
}

func (r *roomService) Navigate(ctx context.Context, userID, sessionID string, index int) (*SessionView, error) {
	return r.withSession(ctx, "navigate", userID, sessionID, func(live *liveSession) error {
		before := live.session.CurrentIndex()
		if err := live.session.Goto(index); err != nil {
			return err
		}
		if live.session.CurrentIndex() != before {
			r.armTimer(live)
		}
		return nil
	})
}

func (r *roomService) Next(ctx context.Context, userID, sessionID string) (*SessionView, error) {
	return r.withSession(ctx, "next", userID, sessionID, func(live *liveSession) error {
		completion, err := live.session.Next(r.config.Now())
		r.afterTransition(ctx, live, completion)
		return err
	})
}

func (r *roomService) Prev(ctx context.Context, userID, sessionID string) (*SessionView, error) {
	return r.withSession(ctx, "prev", userID, sessionID, func(live *liveSession) error {
		if err := live.session.Prev(); err != nil {
			return err
		}
		r.armTimer(live)
		return nil
	})
}

func (r *roomService) Submit(ctx context.Context, userID, sessionID string) (*SessionView, error) {
	return r.withSession(ctx, "submit", userID, sessionID, func(live *liveSession) error {
		if _, ok := live.session.State().(interview.Answering); !ok {
			return interview.ErrInvalidTransition
		}
		// the countdown keeps running for a submitted question; it only
		// moves the session on
		if completion := live.session.SubmitCurrent(r.config.Now()); completion != nil {
			r.stopTimer(live)
			r.complete(ctx, live, completion)
		}
		return nil
	})
}

func (r *roomService) Restart(ctx context.Context, userID, sessionID string) (*SessionView, error) {
	return r.withSession(ctx, "restart", userID, sessionID, func(live *liveSession) error {
		if err := live.session.Restart(); err != nil {
			return err
		}
		r.armTimer(live)
		return nil
	})
}

func (r *roomService) End(ctx context.Context, userID, sessionID string) error {
	live, err := r.lookup(userID, sessionID)
	if err != nil {
		return err
	}

	live.mu.Lock()
	r.stopTimer(live)
	live.mu.Unlock()

	r.mu.Lock()
	delete(r.sessions, sessionID)
	r.mu.Unlock()

	r.logger.Logger().InfoContext(ctx, "Interview session ended", "session_id", sessionID, "user_id", userID)
	return nil
}

func (r *roomService) Wait() {
	r.jobs.Wait()
}

func (r *roomService) Close() {
	if !r.closed.CompareAndSwap(false, true) {
		r.jobs.Wait()
		return
	}
	close(r.stop)

	r.mu.Lock()
	live := make([]*liveSession, 0, len(r.sessions))
	for _, l := range r.sessions {
		live = append(live, l)
	}
	r.mu.Unlock()

	for _, l := range live {
		l.mu.Lock()
		r.stopTimer(l)
		l.mu.Unlock()
	}
	r.jobs.Wait()
}

// ===== STORED ARTIFACTS =====

func (r *roomService) LastReport(ctx context.Context, userID string) (*interview.Report, error) {
	report, ok := cache.LoadJSON[interview.Report](ctx, r.store, userID, cache.KeyLastReport)
	if !ok {
		return nil, ErrNothingStored
	}
	return report, nil
}

func (r *roomService) PracticePlan(ctx context.Context, userID string) (*interview.PracticePlan, error) {
	plan, ok := cache.LoadJSON[interview.PracticePlan](ctx, r.store, userID, cache.KeyPracticePlan)
	if !ok {
		return nil, ErrNothingStored
	}
	return plan, nil
}

func (r *roomService) LastFeedback(ctx context.Context, userID string) (*models.InterviewFeedback, error) {
	feedback, ok := cache.LoadJSON[models.InterviewFeedback](ctx, r.store, userID, cache.KeyLastFeedback)
	if !ok {
		return nil, ErrNothingStored
	}
	return feedback, nil
}

func (r *roomService) LocalAttempts(ctx context.Context, userID string) ([]LocalAttempt, error) {
	attempts, ok := cache.LoadJSON[[]LocalAttempt](ctx, r.store, userID, cache.KeyLocalAttempts)
	if !ok {
		return []LocalAttempt{}, nil
	}
	return *attempts, nil
}

// ===== INTERNALS =====

func (r *roomService) lookup(userID, sessionID string) (*liveSession, error) {
	r.mu.Lock()
	live, ok := r.sessions[sessionID]
	r.mu.Unlock()
	if !ok {
		return nil, ErrSessionNotFound
	}
	if live.session.UserID != userID {
		return nil, ErrSessionAccessDenied
	}
	return live, nil
}

// withSession runs fn under the session lock and returns the resulting view.
// State machine errors become business rule errors.
func (r *roomService) withSession(ctx context.Context, operation, userID, sessionID string, fn func(*liveSession) error) (view *SessionView, err error) {
	op := r.logger.WithOperation(ctx, operation, userID)
	defer func() { op.LogResult(sessionID, "interview_session", err) }()

	live, err := r.lookup(userID, sessionID)
	if err != nil {
		return nil, err
	}

	live.mu.Lock()
	defer live.mu.Unlock()

	if r.closed.Load() {
		return nil, errRoomClosed
	}
	live.lastActive = r.config.Now()

	if err := fn(live); err != nil {
		return nil, classifySessionError(sessionID, err)
	}
	return r.view(live.session), nil
}

func classifySessionError(sessionID string, err error) error {
	if IsValidation(err) || IsConflict(err) || IsNotFound(err) {
		return err
	}
	return sessionRuleError(sessionID, err)
}

// afterTransition re-arms the timer after a move and hands a completion to
// persistence. Caller holds live.mu.
func (r *roomService) afterTransition(ctx context.Context, live *liveSession, completion *interview.Completion) {
	if completion != nil {
		r.stopTimer(live)
		r.complete(ctx, live, completion)
		return
	}
	if _, ok := live.session.State().(interview.Answering); ok {
		r.armTimer(live)
	}
}

// armTimer starts a fresh countdown for the displayed question. Caller holds
// live.mu.
func (r *roomService) armTimer(live *liveSession) {
	r.stopTimer(live)
	if r.config.QuestionTime <= 0 || r.closed.Load() {
		return
	}
	if _, ok := live.session.State().(interview.Answering); !ok {
		return
	}

	index := live.session.CurrentIndex()
	gen := live.timerGen
	live.timer = time.AfterFunc(r.config.QuestionTime, func() {
		r.expire(live, index, gen)
	})
}

// stopTimer cancels the countdown. Bumping the generation turns a callback
// that already fired into a no-op. Caller holds live.mu.
func (r *roomService) stopTimer(live *liveSession) {
	live.timerGen++
	if live.timer != nil {
		live.timer.Stop()
		live.timer = nil
	}
}

func (r *roomService) expire(live *liveSession, index int, gen uint64) {
	live.mu.Lock()
	defer live.mu.Unlock()

	if live.timerGen != gen || r.closed.Load() {
		return
	}
	live.timer = nil

	r.logger.Logger().Debug("Question timer expired",
		"session_id", live.session.ID,
		"index", index)

	completion := live.session.Expire(index, r.config.Now())
	r.afterTransition(context.Background(), live, completion)
}

// complete records the completion and dispatches persistence in the
// background. Called once per completion under live.mu. Only the request ID
// of ctx reaches the persistence job.
func (r *roomService) complete(ctx context.Context, live *liveSession, c *interview.Completion) {
	if r.closed.Load() {
		r.logger.Logger().Warn("Completion after close dropped", "session_id", c.SessionID, "user_id", c.UserID)
		return
	}
	live.persisted = false

	monitoring.SessionsCompleted.WithLabelValues(string(c.Type), string(c.Mode)).Inc()

	weaknesses := make([]string, len(c.Report.Weaknesses))
	for i, w := range c.Report.Weaknesses {
		weaknesses[i] = string(w)
	}
	requestID := utils.RequestIDFromContext(ctx)
	r.publish(ctx, events.NewInterviewEvent(events.EventSessionCompleted, c.UserID, events.SessionCompletedEvent{
		SessionID:    c.SessionID,
		Type:         string(c.Type),
		Mode:         string(c.Mode),
		ScorePercent: c.ScorePercent,
		Weaknesses:   weaknesses,
		CompletedAt:  c.CompletedAt,
	}))

	r.jobs.Add(1)
	go func() {
		defer r.jobs.Done()
		defer func() {
			if rec := recover(); rec != nil {
				r.logger.LogRecovery(context.Background(), "persist_completion", c.UserID, rec, debug.Stack())
			}
		}()

		ctx, cancel := context.WithTimeout(utils.WithRequestID(context.Background(), requestID), persistTimeout)
		defer cancel()
		r.persist(ctx, c)

		live.mu.Lock()
		live.persisted = true
		live.persistedAt = r.config.Now()
		live.mu.Unlock()
	}()
}

func (r *roomService) sweepLoop(interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-r.stop:
			return
		case <-ticker.C:
			r.sweep(r.config.Now())
		}
	}
}

// sweep evicts completed sessions once their attempt is persisted and they
// have been left alone for CompletedRetention, and any other session idle for
// IdleTimeout. A completed session still persisting is never evicted.
func (r *roomService) sweep(now time.Time) int {
	r.mu.Lock()
	defer r.mu.Unlock()

	evicted := 0
	for id, live := range r.sessions {
		live.mu.Lock()
		_, done := live.session.State().(interview.AllSubmitted)
		var expired bool
		if done {
			since := live.persistedAt
			if live.lastActive.After(since) {
				since = live.lastActive
			}
			expired = live.persisted && !now.Before(since.Add(r.config.CompletedRetention))
		} else {
			expired = !now.Before(live.lastActive.Add(r.config.IdleTimeout))
		}
		if expired {
			r.stopTimer(live)
		}
		live.mu.Unlock()

		if expired {
			delete(r.sessions, id)
			evicted++
		}
	}

	if evicted > 0 {
		r.logger.Logger().Info("Evicted interview sessions", "evicted", evicted, "live", len(r.sessions))
	}
	return evicted
}

// persist requests feedback, then saves the attempt, falling back to the
// session store when the save fails. Nothing is retried.
func (r *roomService) persist(ctx context.Context, c *interview.Completion) {
	log := r.logger.Logger().With("session_id", c.SessionID, "user_id", c.UserID)

	if r.feedback != nil {
		feedback, err := r.feedback.RequestFeedback(ctx, c.UserID, &FeedbackRequest{
			Type:      c.Type,
			Mode:      c.Mode,
			Questions: c.Questions,
			Answers:   c.Answers,
		})
		if err != nil {
			log.Warn("AI feedback request failed", "error", err)
		} else if err := cache.SaveJSON(ctx, r.store, c.UserID, cache.KeyLastFeedback, feedback); err != nil {
			log.Warn("Failed to store AI feedback", "error", err)
		}
	}

	completedAt := c.CompletedAt
	err := r.progress.SaveAttempt(ctx, c.UserID, &SaveAttemptRequest{
		Type:         c.Type,
		Mode:         c.Mode,
		ScorePercent: c.ScorePercent,
		Answers:      c.Answers,
		Report:       &c.Report,
		Plan:         &c.Plan,
		Timestamp:    &completedAt,
	})
	if err == nil {
		r.storeReportAndPlan(ctx, log, c.UserID, c.Report, c.Plan, completedAt)
		log.Info("Interview attempt saved")
		return
	}

	log.Warn("Saving attempt failed, keeping it locally", "error", err)
	monitoring.LocalFallbacks.Inc()

	attempts, _ := r.LocalAttempts(ctx, c.UserID)
	attempts = append(attempts, LocalAttempt{
		Type:         c.Type,
		Mode:         c.Mode,
		Timestamp:    completedAt.UnixMilli(),
		ScorePercent: c.ScorePercent,
	})
	if err := cache.SaveJSON(ctx, r.store, c.UserID, cache.KeyLocalAttempts, attempts); err != nil {
		log.Error("Failed to store local attempt", "error", err)
	}

	report := interview.BuildReport(interview.ReportInput{
		Type:       c.Type,
		Mode:       c.Mode,
		Questions:  c.Questions,
		Answers:    c.Answers,
		MCQPercent: c.ScorePercent,
	})
	plan := interview.BuildPracticePlan(report, completedAt)
	r.storeReportAndPlan(ctx, log, c.UserID, report, plan, completedAt)

	r.publish(ctx, events.NewInterviewEvent(events.EventAttemptSavedLocally, c.UserID, events.SessionCompletedEvent{
		SessionID:    c.SessionID,
		Type:         string(c.Type),
		Mode:         string(c.Mode),
		ScorePercent: c.ScorePercent,
		CompletedAt:  completedAt,
	}))
}

func (r *roomService) storeReportAndPlan(ctx context.Context, log *slog.Logger, userID string, report interview.Report, plan interview.PracticePlan, at time.Time) {
	report.Timestamp = at.UnixMilli()
	if err := cache.SaveJSON(ctx, r.store, userID, cache.KeyLastReport, report); err != nil {
		log.Error("Failed to store report", "error", err)
	}
	if err := cache.SaveJSON(ctx, r.store, userID, cache.KeyPracticePlan, plan); err != nil {
		log.Error("Failed to store practice plan", "error", err)
	}
}

func (r *roomService) publish(ctx context.Context, event *events.InterviewEvent) {
	if r.publisher == nil {
		return
	}
	if err := r.publisher.Publish(ctx, event); err != nil {
		r.logger.Logger().Warn("Failed to publish event", "event_type", event.Type, "error", err)
	}
}
