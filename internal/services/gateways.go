package services

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/SAP-F-2025/interview-service/internal/models"
	"github.com/SAP-F-2025/interview-service/internal/utils"
)

const (
	saveAttemptPath       = "/api/progress/save-attempt"
	interviewFeedbackPath = "/api/ai/interview-feedback"
	gatewayTimeout        = 30 * time.Second
)

// ProgressGateway persists a completed attempt for the room service.
type ProgressGateway interface {
	SaveAttempt(ctx context.Context, userID string, req *SaveAttemptRequest) error
}

// FeedbackClient asks for AI feedback on a completed session.
type FeedbackClient interface {
	RequestFeedback(ctx context.Context, userID string, req *FeedbackRequest) (*models.InterviewFeedback, error)
}

// ===== IN-PROCESS =====

type localProgressGateway struct {
	progress ProgressService
}

func NewLocalProgressGateway(progress ProgressService) ProgressGateway {
	return &localProgressGateway{progress: progress}
}

func (g *localProgressGateway) SaveAttempt(ctx context.Context, userID string, req *SaveAttemptRequest) error {
	_, err := g.progress.SaveAttempt(ctx, userID, req)
	return err
}

type localFeedbackClient struct {
	feedback FeedbackService
}

func NewLocalFeedbackClient(feedback FeedbackService) FeedbackClient {
	return &localFeedbackClient{feedback: feedback}
}

func (c *localFeedbackClient) RequestFeedback(ctx context.Context, userID string, req *FeedbackRequest) (*models.InterviewFeedback, error) {
	result, err := c.feedback.Generate(ctx, userID, req)
	if err != nil {
		return nil, err
	}
	return &result.Feedback, nil
}

// ===== HTTP =====

// StatusError is returned when the backend answers outside 2xx
type StatusError struct {
	URL        string
	StatusCode int
	Body       string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("%s returned %d: %s", e.URL, e.StatusCode, e.Body)
}

type httpGateway struct {
	baseURL string
	client  *http.Client
}

func newHTTPGateway(baseURL string, client *http.Client) httpGateway {
	if client == nil {
		client = &http.Client{Timeout: gatewayTimeout}
	}
	return httpGateway{baseURL: strings.TrimRight(baseURL, "/"), client: client}
}

// postJSON sends body and decodes a 2xx response into out when out is set
func (g httpGateway) postJSON(ctx context.Context, path, userID string, body, out interface{}) error {
	payload, err := json.Marshal(body)
	if err != nil {
		return fmt.Errorf("failed to encode request: %w", err)
	}

	url := g.baseURL + path
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("failed to build request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set(utils.UserIDHeader, userID)
	if requestID := utils.RequestIDFromContext(ctx); requestID != "" {
		httpReq.Header.Set(utils.RequestIDHeader, requestID)
	}

	resp, err := g.client.Do(httpReq)
	if err != nil {
		return fmt.Errorf("request to %s failed: %w", url, err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return fmt.Errorf("failed to read response from %s: %w", url, err)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return &StatusError{URL: url, StatusCode: resp.StatusCode, Body: strings.TrimSpace(string(respBody))}
	}
	if out == nil {
		return nil
	}
	if err := json.Unmarshal(respBody, out); err != nil {
		return fmt.Errorf("failed to decode response from %s: %w", url, err)
	}
	return nil
}

type httpProgressGateway struct {
	httpGateway
}

// NewHTTPProgressGateway saves attempts through a remote progress backend
func NewHTTPProgressGateway(baseURL string, client *http.Client) ProgressGateway {
	return &httpProgressGateway{httpGateway: newHTTPGateway(baseURL, client)}
}

func (g *httpProgressGateway) SaveAttempt(ctx context.Context, userID string, req *SaveAttemptRequest) error {
	return g.postJSON(ctx, saveAttemptPath, userID, req, nil)
}

type httpFeedbackClient struct {
	httpGateway
}

// NewHTTPFeedbackClient requests feedback from a remote AI backend
func NewHTTPFeedbackClient(baseURL string, client *http.Client) FeedbackClient {
	return &httpFeedbackClient{httpGateway: newHTTPGateway(baseURL, client)}
}

func (c *httpFeedbackClient) RequestFeedback(ctx context.Context, userID string, req *FeedbackRequest) (*models.InterviewFeedback, error) {
	var out struct {
		Success  bool                      `json:"success"`
		Feedback *models.InterviewFeedback `json:"feedback"`
	}
	if err := c.postJSON(ctx, interviewFeedbackPath, userID, req, &out); err != nil {
		return nil, err
	}
	if !out.Success || out.Feedback == nil {
		return nil, ErrFeedbackUnavailable
	}
	return out.Feedback, nil
}
