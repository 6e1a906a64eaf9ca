package kafka

import (
	"context"
	"testing"
	"time"

	"github.com/andreyxaxa/oral-screening/internal/entity"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestToMessages(t *testing.T) {
	t.Parallel()

	aggregateID := uuid.New()
	event := &entity.OutboxEvent{
		ID:          uuid.New(),
		AggregateID: aggregateID,
		Type:        entity.EventSubmissionReported,
		Payload:     []byte(`{"status":"reported"}`),
		CreatedAt:   time.Date(2024, 3, 5, 10, 0, 0, 0, time.UTC),
	}

	msgs := toMessages([]*entity.OutboxEvent{event})
	require.Len(t, msgs, 1)

	msg := msgs[0]
	assert.Equal(t, aggregateID.String(), string(msg.Key))
	assert.Equal(t, event.Payload, msg.Value)
	assert.Equal(t, event.CreatedAt, msg.Time)
	assert.Empty(t, msg.Topic)

	headers := make(map[string]string, len(msg.Headers))
	for _, h := range msg.Headers {
		headers[h.Key] = string(h.Value)
	}
	assert.Equal(t, event.ID.String(), headers[headerEventID])
	assert.Equal(t, "submission.reported", headers[headerEventType])
	assert.Equal(t, aggregateID.String(), headers[headerAggregateID])
}

func TestEventProducer_SendEvents_Empty(t *testing.T) {
	t.Parallel()

	ep := NewEventProducer(nil)
	assert.NoError(t, ep.SendEvents(context.Background(), nil))
}
