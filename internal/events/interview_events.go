package events

import (
	"time"

	"github.com/google/uuid"
)

// EventType represents the kinds of interview events published to the bus
type EventType string

const (
	// Session events
	EventSessionStarted   EventType = "interview.session_started"
	EventSessionCompleted EventType = "interview.session_completed"

	// Progress events
	EventAttemptSaved        EventType = "interview.attempt_saved"
	EventAttemptSavedLocally EventType = "interview.attempt_saved_locally"

	// Feedback events
	EventFeedbackGenerated EventType = "interview.feedback_generated"
)

const (
	eventSource  = "interview-service"
	eventVersion = "1.0"
)

// InterviewEvent is the envelope for every event this service publishes
type InterviewEvent struct {
	ID        string         `json:"id"`
	Type      EventType      `json:"type"`
	Timestamp time.Time      `json:"timestamp"`
	Source    string         `json:"source"`
	Version   string         `json:"version"`
	UserID    string         `json:"user_id"`
	Data      interface{}    `json:"data"`
	Metadata  map[string]any `json:"metadata,omitempty"`
}

// NewInterviewEvent stamps an event with a fresh ID and the current time
func NewInterviewEvent(eventType EventType, userID string, data interface{}) *InterviewEvent {
	return &InterviewEvent{
		ID:        uuid.NewString(),
		Type:      eventType,
		Timestamp: time.Now().UTC(),
		Source:    eventSource,
		Version:   eventVersion,
		UserID:    userID,
		Data:      data,
	}
}

type SessionStartedEvent struct {
	SessionID string `json:"session_id"`
	Type      string `json:"type"`
	Mode      string `json:"mode"`
	Questions int    `json:"questions"`
}

type SessionCompletedEvent struct {
	SessionID    string    `json:"session_id"`
	Type         string    `json:"type"`
	Mode         string    `json:"mode"`
	ScorePercent *int      `json:"score_percent,omitempty"`
	Weaknesses   []string  `json:"weaknesses"`
	CompletedAt  time.Time `json:"completed_at"`
}

type AttemptSavedEvent struct {
	AttemptID           string `json:"attempt_id"`
	Type                string `json:"type"`
	Mode                string `json:"mode"`
	ScorePercent        *int   `json:"score_percent,omitempty"`
	InterviewsCompleted int    `json:"interviews_completed"`
	AverageScore        int    `json:"average_score"`
}

type FeedbackGeneratedEvent struct {
	Type         string `json:"type"`
	Mode         string `json:"mode"`
	OverallScore int    `json:"overall_score"`
	Provider     string `json:"provider"`
	Fallback     bool   `json:"fallback"`
}
