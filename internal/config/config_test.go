package config

import (
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/SAP-F-2025/interview-service/internal/events"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadConfig_Defaults(t *testing.T) {
	for _, key := range []string{"PORT", "DATABASE_DRIVER", "QUESTION_TIME_SECONDS", "AI_PROVIDER", "EVENTS_ENABLED", "BACKEND_URL", "SESSION_IDLE_MINUTES", "SESSION_RETENTION_MINUTES"} {
		t.Setenv(key, "")
	}

	cfg, err := LoadConfig()
	require.NoError(t, err)

	assert.Equal(t, "8080", cfg.Port)
	assert.Equal(t, "postgres", cfg.Database.Driver)
	assert.Equal(t, 60*time.Second, cfg.QuestionTime)
	assert.Equal(t, time.Hour, cfg.SessionIdleTimeout)
	assert.Equal(t, 10*time.Minute, cfg.SessionRetention)
	assert.Empty(t, cfg.AI.Provider)
	assert.False(t, cfg.Events.Enabled)
	assert.Empty(t, cfg.BackendURL)
	assert.False(t, cfg.IsProduction())
}

func TestLoadConfig_Overrides(t *testing.T) {
	t.Setenv("ENVIRONMENT", "production")
	t.Setenv("DATABASE_DRIVER", "Mongo")
	t.Setenv("QUESTION_TIME_SECONDS", "90")
	t.Setenv("SESSION_IDLE_MINUTES", "15")
	t.Setenv("AI_PROVIDER", "OpenAI")
	t.Setenv("AI_MAX_TOKENS", "not-a-number")
	t.Setenv("EVENTS_ENABLED", "true")

	cfg, err := LoadConfig()
	require.NoError(t, err)

	assert.True(t, cfg.IsProduction())
	assert.Equal(t, "mongo", cfg.Database.Driver)
	assert.Equal(t, 90*time.Second, cfg.QuestionTime)
	assert.Equal(t, 15*time.Minute, cfg.SessionIdleTimeout)
	assert.Equal(t, "openai", cfg.AI.Provider)
	assert.Equal(t, 1024, cfg.AI.MaxOutputTokens)
	assert.True(t, cfg.Events.Enabled)
}

func TestEventConfig_GetKafkaBrokers(t *testing.T) {
	c := EventConfig{KafkaBrokers: "kafka-1:9092, kafka-2:9092"}
	assert.Equal(t, []string{"kafka-1:9092", "kafka-2:9092"}, c.GetKafkaBrokers())
}

func TestEventConfig_CreateEventPublisherFallsBackToMock(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	cases := map[string]EventConfig{
		"disabled":          {Enabled: false, Publisher: "kafka"},
		"mock":              {Enabled: true, Publisher: "mock"},
		"unknown publisher": {Enabled: true, Publisher: "carrier-pigeon"},
	}
	for name, cfg := range cases {
		t.Run(name, func(t *testing.T) {
			publisher, err := cfg.CreateEventPublisher(logger)
			require.NoError(t, err)
			assert.IsType(t, &events.MockEventPublisher{}, publisher)
		})
	}
}
