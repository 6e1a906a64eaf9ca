package entity

import (
	"time"

	"github.com/google/uuid"
)

type EventType string

const (
	EventSubmissionCreated   EventType = "submission.created"
	EventSubmissionAnnotated EventType = "submission.annotated"
	EventSubmissionReported  EventType = "submission.reported"
)

type OutboxEvent struct {
	ID          uuid.UUID   `json:"id"`
	AggregateID uuid.UUID   `json:"aggregate_id"`
	Type        EventType   `json:"type"`
	Payload     []byte      `json:"payload"`
	Status      EventStatus `json:"status"` // pending, processing, processed, failed
	CreatedAt   time.Time   `json:"created_at"`
	ProcessedAt *time.Time  `json:"processed_at,omitempty"`
	RetryCount  int         `json:"retry_count"`
}
