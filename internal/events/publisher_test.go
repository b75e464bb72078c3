package events

import (
	"context"
	"encoding/json"
	"log/slog"
	"testing"
	"time"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWatermillPublisherSendsEnvelope(t *testing.T) {
	pubSub := gochannel.NewGoChannel(gochannel.Config{}, watermill.NopLogger{})
	defer pubSub.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	messages, err := pubSub.Subscribe(ctx, "sessions")
	require.NoError(t, err)

	publisher := NewWatermillEventPublisher(pubSub, "sessions", slog.Default())
	event := NewSessionEvent(EventSubmissionSucceeded, "sess-1", 7, SubmissionSucceededEvent{
		SubmissionID: 42,
		Mode:         "forced",
		AnswerCount:  3,
	})
	require.NoError(t, publisher.PublishSessionEvent(ctx, event))

	select {
	case msg := <-messages:
		msg.Ack()
		assert.Equal(t, event.ID, msg.UUID)
		assert.Equal(t, "submission.succeeded", msg.Metadata.Get("event_type"))
		assert.Equal(t, "sess-1", msg.Metadata.Get("session_id"))

		var decoded SessionEvent
		require.NoError(t, json.Unmarshal(msg.Payload, &decoded))
		assert.Equal(t, uint(7), decoded.PaperID)
		assert.Equal(t, EventSubmissionSucceeded, decoded.Type)
	case <-ctx.Done():
		t.Fatal("no message received")
	}
}

func TestMockEventPublisher(t *testing.T) {
	publisher := NewMockEventPublisher(nil)

	require.NoError(t, publisher.PublishSessionEvent(context.Background(), NewSessionEvent(EventSessionStarted, "s", 1, nil)))
	require.NoError(t, publisher.PublishSessionEvent(context.Background(), NewSessionEvent(EventSessionClosed, "s", 1, nil)))

	assert.Equal(t, []EventType{EventSessionStarted, EventSessionClosed}, publisher.Types())
	assert.Len(t, publisher.GetPublishedEvents(), 2)

	publisher.ClearEvents()
	assert.Empty(t, publisher.GetPublishedEvents())
}
