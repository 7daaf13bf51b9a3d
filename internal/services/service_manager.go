package services

import (
	"log/slog"
	"net/http"

	"github.com/SAP-F-2025/interview-service/internal/cache"
	"github.com/SAP-F-2025/interview-service/internal/events"
	"github.com/SAP-F-2025/interview-service/internal/llm"
	"github.com/SAP-F-2025/interview-service/internal/repositories"
	"github.com/SAP-F-2025/interview-service/internal/validator"
)

// ServiceManager exposes every service the handlers need
type ServiceManager interface {
	Progress() ProgressService
	Feedback() FeedbackService
	Room() RoomService
	Close()
}

// Dependencies collects what NewServiceManager wires together
type Dependencies struct {
	Attempts     repositories.AttemptRepository
	Progress     repositories.ProgressRepository
	Cache        cache.CacheService
	SessionStore cache.SessionStore
	Publisher    events.EventPublisher
	Provider     llm.Provider
	MaxTokens    int
	Validator    *validator.Validator
	Logger       *slog.Logger

	Room RoomConfig

	// BackendURL, when set, sends room persistence to a remote backend
	// instead of the in-process services.
	BackendURL string
	HTTPClient *http.Client
}

type serviceManager struct {
	progress ProgressService
	feedback FeedbackService
	room     RoomService
}

func NewServiceManager(deps Dependencies) ServiceManager {
	progress := NewProgressService(deps.Attempts, deps.Progress, deps.Cache, deps.Publisher, deps.Validator, deps.Logger)
	feedback := NewFeedbackService(deps.Provider, deps.MaxTokens, deps.Publisher, deps.Validator, deps.Logger)

	var gateway ProgressGateway
	var feedbackClient FeedbackClient
	if deps.BackendURL != "" {
		deps.Logger.Info("Room persistence uses remote backend", "backend_url", deps.BackendURL)
		gateway = NewHTTPProgressGateway(deps.BackendURL, deps.HTTPClient)
		feedbackClient = NewHTTPFeedbackClient(deps.BackendURL, deps.HTTPClient)
	} else {
		gateway = NewLocalProgressGateway(progress)
		feedbackClient = NewLocalFeedbackClient(feedback)
	}

	return &serviceManager{
		progress: progress,
		feedback: feedback,
		room:     NewRoomService(deps.Room, gateway, feedbackClient, deps.SessionStore, deps.Publisher, deps.Logger),
	}
}

func (m *serviceManager) Progress() ProgressService { return m.progress }
func (m *serviceManager) Feedback() FeedbackService { return m.feedback }
func (m *serviceManager) Room() RoomService         { return m.room }

// Close stops live sessions and waits for pending persistence
func (m *serviceManager) Close() {
	m.room.Close()
}
