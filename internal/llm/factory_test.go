package llm

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"testing"

	"github.com/SAP-F-2025/interview-service/internal/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestNewProvider(t *testing.T) {
	p, err := NewProvider(config.AIConfig{}, discardLogger())
	require.NoError(t, err)
	assert.Nil(t, p)

	p, err = NewProvider(config.AIConfig{Provider: "openai"}, discardLogger())
	require.NoError(t, err)
	assert.Nil(t, p, "missing key falls back")

	p, err = NewProvider(config.AIConfig{Provider: "openai", OpenAIKey: "k", OpenAIModel: "gpt-4o-mini"}, discardLogger())
	require.NoError(t, err)
	assert.Equal(t, "gpt-4o-mini", p.ModelID())

	p, err = NewProvider(config.AIConfig{Provider: "anthropic", AnthropicKey: "k", AnthropicModel: "claude-haiku"}, discardLogger())
	require.NoError(t, err)
	assert.Equal(t, "claude-haiku", p.ModelID())

	_, err = NewProvider(config.AIConfig{Provider: "palm"}, discardLogger())
	assert.Error(t, err)
}

func TestMockProvider_FIFO(t *testing.T) {
	m := NewMockProvider(
		MockResponse{Content: json.RawMessage(`{"score": 1}`)},
		MockResponse{Content: json.RawMessage(`{"score": 2}`)},
	)
	p := WithLogging(m, discardLogger())

	first, err := p.Generate(context.Background(), Request{Schema: scoreSchema})
	require.NoError(t, err)
	assert.JSONEq(t, `{"score": 1}`, string(first.Content))

	second, err := p.Generate(context.Background(), Request{})
	require.NoError(t, err)
	assert.JSONEq(t, `{"score": 2}`, string(second.Content))

	_, err = p.Generate(context.Background(), Request{})
	var unavailable *ErrProviderUnavailable
	assert.ErrorAs(t, err, &unavailable)

	m.AddResponse(MockResponse{Content: json.RawMessage(`{"score": 3}`)})
	third, err := p.Generate(context.Background(), Request{})
	require.NoError(t, err)
	assert.JSONEq(t, `{"score": 3}`, string(third.Content))
	assert.Len(t, m.Calls(), 4)
}
