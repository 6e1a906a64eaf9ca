package kafka

import (
	"context"
	"fmt"

	"github.com/andreyxaxa/oral-screening/internal/entity"
	"github.com/andreyxaxa/oral-screening/pkg/kafka/producer"
	"github.com/segmentio/kafka-go"
)

const (
	headerEventID     = "event_id"
	headerEventType   = "event_type"
	headerAggregateID = "aggregate_id"
)

// EventProducer publishes outbox events of submissions. The topic is fixed on the writer.
type EventProducer struct {
	*producer.Producer
}

func NewEventProducer(producer *producer.Producer) *EventProducer {
	return &EventProducer{producer}
}

func (ep *EventProducer) SendEvents(ctx context.Context, events []*entity.OutboxEvent) error {
	msgs := toMessages(events)
	if len(msgs) == 0 {
		return nil
	}

	err := ep.Writer.WriteMessages(ctx, msgs...)
	if err != nil {
		return fmt.Errorf("EventProducer - SendEvents - ep.Writer.WriteMessages: %w", err)
	}

	return nil
}

func (ep *EventProducer) Close() error {
	err := ep.Producer.Close()
	if err != nil {
		return fmt.Errorf("EventProducer - Close: %w", err)
	}

	return nil
}

func toMessages(events []*entity.OutboxEvent) []kafka.Message {
	msgs := make([]kafka.Message, 0, len(events))

	for _, event := range events {
		msgs = append(msgs, kafka.Message{
			Key:   []byte(event.AggregateID.String()),
			Value: event.Payload,
			Time:  event.CreatedAt,
			Headers: []kafka.Header{
				{Key: headerEventID, Value: []byte(event.ID.String())},
				{Key: headerEventType, Value: []byte(event.Type)},
				{Key: headerAggregateID, Value: []byte(event.AggregateID.String())},
			},
		})
	}

	return msgs
}
