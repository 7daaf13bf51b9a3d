package llm

import (
	"encoding/json"
	"fmt"
	"net/http"
)

// ErrRateLimit means the provider rejected the feedback request with 429.
type ErrRateLimit struct {
	Provider string
	Err      error
}

func (e *ErrRateLimit) Error() string {
	return fmt.Sprintf("%sfeedback model rate limited: %v", providerPrefix(e.Provider), e.Err)
}

func (e *ErrRateLimit) Unwrap() error { return e.Err }

// ErrInvalidResponse holds model output that is not the feedback document
// we asked for. Content is kept so callers can try to salvage it.
type ErrInvalidResponse struct {
	Provider string
	Content  json.RawMessage
	Err      error
}

func (e *ErrInvalidResponse) Error() string {
	return fmt.Sprintf("%sunusable feedback output: %v", providerPrefix(e.Provider), e.Err)
}

func (e *ErrInvalidResponse) Unwrap() error { return e.Err }

// ErrProviderUnavailable covers transport failures and non-429 API errors.
type ErrProviderUnavailable struct {
	Provider string
	Err      error
}

func (e *ErrProviderUnavailable) Error() string {
	if e.Err == nil {
		return providerPrefix(e.Provider) + "feedback model unavailable"
	}
	return fmt.Sprintf("%sfeedback model unavailable: %v", providerPrefix(e.Provider), e.Err)
}

func (e *ErrProviderUnavailable) Unwrap() error { return e.Err }

func providerPrefix(provider string) string {
	if provider == "" {
		return ""
	}
	return provider + ": "
}

// apiError maps an API failure with its HTTP status onto the typed errors.
func apiError(provider string, status int, err error) error {
	if status == http.StatusTooManyRequests {
		return &ErrRateLimit{Provider: provider, Err: err}
	}
	return &ErrProviderUnavailable{Provider: provider, Err: err}
}
