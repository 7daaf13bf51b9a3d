package events

import (
	"context"
	"io"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewInterviewEvent(t *testing.T) {
	event := NewInterviewEvent(EventAttemptSaved, "user-1", AttemptSavedEvent{AttemptID: "a-1"})

	assert.Len(t, event.ID, 36)
	assert.Equal(t, EventAttemptSaved, event.Type)
	assert.Equal(t, "interview-service", event.Source)
	assert.Equal(t, "1.0", event.Version)
	assert.Equal(t, "user-1", event.UserID)
	assert.False(t, event.Timestamp.IsZero())
}

func TestMockEventPublisher(t *testing.T) {
	ctx := context.Background()
	publisher := NewMockEventPublisher(slog.New(slog.NewTextHandler(io.Discard, nil)))

	require.NoError(t, publisher.Publish(ctx, NewInterviewEvent(EventSessionStarted, "user-1", nil)))
	require.NoError(t, publisher.Publish(ctx, NewInterviewEvent(EventSessionCompleted, "user-1", nil)))
	require.NoError(t, publisher.Publish(ctx, NewInterviewEvent(EventSessionStarted, "user-2", nil)))

	assert.Len(t, publisher.GetPublishedEvents(), 3)
	started := publisher.EventsOfType(EventSessionStarted)
	require.Len(t, started, 2)
	assert.Equal(t, "user-2", started[1].UserID)

	publisher.ClearEvents()
	assert.Empty(t, publisher.GetPublishedEvents())
	assert.NoError(t, publisher.Close())
}
