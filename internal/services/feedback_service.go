package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"unicode/utf8"

	"github.com/SAP-F-2025/interview-service/internal/events"
	"github.com/SAP-F-2025/interview-service/internal/interview"
	"github.com/SAP-F-2025/interview-service/internal/llm"
	"github.com/SAP-F-2025/interview-service/internal/models"
	"github.com/SAP-F-2025/interview-service/internal/monitoring"
	"github.com/SAP-F-2025/interview-service/internal/validator"
)

// maxTranscriptBytes bounds the Q&A JSON embedded in the prompt
const maxTranscriptBytes = 3000

const feedbackSystemPrompt = "You are an experienced technical interviewer. " +
	"Review the candidate's answers and respond with JSON only."

var feedbackSchema = &llm.Schema{
	Name:        "interview_feedback",
	Description: "Structured review of a mock interview",
	Definition: map[string]any{
		"type": "object",
		"properties": map[string]any{
			"overallScore":        map[string]any{"type": "integer", "minimum": 0, "maximum": 100},
			"overallSummary":      map[string]any{"type": "string"},
			"strengths":           map[string]any{"type": "array", "items": map[string]any{"type": "string"}},
			"areasForImprovement": map[string]any{"type": "array", "items": map[string]any{"type": "string"}},
			"recommendations":     map[string]any{"type": "array", "items": map[string]any{"type": "string"}},
		},
		"required": []string{
			"overallScore", "overallSummary", "strengths", "areasForImprovement", "recommendations",
		},
		"additionalProperties": false,
	},
}

// FeedbackService produces a review of a finished interview. It never fails
// because of the model: unusable output yields the fallback feedback.
type FeedbackService interface {
	Generate(ctx context.Context, userID string, req *FeedbackRequest) (*FeedbackResult, error)
}

// FeedbackRequest is the body of POST /api/ai/interview-feedback
type FeedbackRequest struct {
	Type      interview.Type       `json:"type"`
	Mode      interview.Mode       `json:"mode" validate:"omitempty,interview_mode"`
	Questions []interview.Question `json:"questions"`
	Answers   interview.Answers    `json:"answers"`
}

type FeedbackResult struct {
	Feedback models.InterviewFeedback `json:"feedback"`
	Provider string                   `json:"provider"`
	Fallback bool                     `json:"fallback"`
}

type feedbackService struct {
	provider  llm.Provider
	maxTokens int
	publisher events.EventPublisher
	validator *validator.Validator
	logger    *ServiceLogger
}

// NewFeedbackService builds the service. A nil provider means every request
// gets the fallback feedback.
func NewFeedbackService(provider llm.Provider, maxTokens int, publisher events.EventPublisher, validator *validator.Validator, logger *slog.Logger) FeedbackService {
	return &feedbackService{
		provider:  provider,
		maxTokens: maxTokens,
		publisher: publisher,
		validator: validator,
		logger:    NewServiceLogger(logger, LogConfig{Service: "interview-service", Component: "feedback"}),
	}
}

func (s *feedbackService) Generate(ctx context.Context, userID string, req *FeedbackRequest) (result *FeedbackResult, err error) {
	op := s.logger.WithOperation(ctx, "generate_feedback", userID)
	defer func() { op.LogResult("", "interview_feedback", err) }()

	if req == nil {
		return nil, ErrBadRequest
	}
	if err = s.validator.Validate(req); err != nil {
		return nil, err
	}

	result = s.generate(ctx, req)

	outcome := "ai"
	if result.Fallback {
		outcome = "fallback"
	}
	monitoring.FeedbackRequests.WithLabelValues(outcome).Inc()

	if s.publisher != nil {
		event := events.NewInterviewEvent(events.EventFeedbackGenerated, userID, events.FeedbackGeneratedEvent{
			Type:         string(req.Type),
			Mode:         string(req.Mode),
			OverallScore: result.Feedback.OverallScore,
			Provider:     result.Provider,
			Fallback:     result.Fallback,
		})
		if pubErr := s.publisher.Publish(ctx, event); pubErr != nil {
			s.logger.Logger().Warn("Failed to publish feedback event", "error", pubErr)
		}
	}

	return result, nil
}

func (s *feedbackService) generate(ctx context.Context, req *FeedbackRequest) *FeedbackResult {
	fallback := &FeedbackResult{Feedback: models.FallbackFeedback(), Provider: "fallback", Fallback: true}
	if s.provider == nil {
		return fallback
	}

	prompt, err := BuildFeedbackPrompt(req)
	if err != nil {
		s.logger.Logger().Warn("Failed to build feedback prompt", "error", err)
		return fallback
	}

	content, err := s.complete(ctx, prompt)
	if err != nil {
		s.logger.Logger().Warn("AI feedback unavailable, using fallback",
			"model", s.provider.ModelID(),
			"error", err)
		return fallback
	}

	var feedback models.InterviewFeedback
	if err := json.Unmarshal(content, &feedback); err != nil {
		s.logger.Logger().Warn("AI feedback did not decode, using fallback", "error", err)
		return fallback
	}

	return &FeedbackResult{Feedback: feedback, Provider: s.provider.ModelID()}
}

// complete asks the model for feedback JSON. Output that fails validation
// gets one more chance: the outermost {...} block is extracted and checked.
func (s *feedbackService) complete(ctx context.Context, prompt string) (json.RawMessage, error) {
	resp, err := s.provider.Generate(ctx, llm.Request{
		System:    feedbackSystemPrompt,
		Prompt:    prompt,
		Schema:    feedbackSchema,
		MaxTokens: s.maxTokens,
	})
	if err == nil {
		return resp.Content, nil
	}

	var invalid *llm.ErrInvalidResponse
	if !errors.As(err, &invalid) || len(invalid.Content) == 0 {
		return nil, err
	}

	raw, ok := llm.ExtractJSONObject(string(invalid.Content))
	if !ok {
		return nil, err
	}
	if verr := llm.ValidateJSON(feedbackSchema, raw); verr != nil {
		return nil, verr
	}
	return raw, nil
}

// BuildFeedbackPrompt renders the user prompt for a finished interview.
func BuildFeedbackPrompt(req *FeedbackRequest) (string, error) {
	transcript, err := json.Marshal(struct {
		Questions []interview.Question `json:"questions"`
		Answers   interview.Answers    `json:"answers"`
	}{req.Questions, req.Answers})
	if err != nil {
		return "", fmt.Errorf("failed to encode transcript: %w", err)
	}

	return fmt.Sprintf(
		"Analyze this %s interview (%s). Q&A: %s. Return JSON with overallScore, overallSummary, strengths, areasForImprovement, recommendations.",
		req.Type, req.Mode, truncateUTF8(string(transcript), maxTranscriptBytes),
	), nil
}

func truncateUTF8(s string, limit int) string {
	if len(s) <= limit {
		return s
	}
	cut := limit
	for cut > 0 && !utf8.RuneStart(s[cut]) {
		cut--
	}
	return s[:cut]
}
