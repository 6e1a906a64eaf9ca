// Package eventlog is the events sender used when no broker is configured:
// every outbox event is written to the service log instead.
package eventlog

import (
	"context"

	"github.com/andreyxaxa/oral-screening/internal/entity"
	"github.com/andreyxaxa/oral-screening/pkg/logger"
)

type Sender struct {
	l logger.Interface
}

func New(l logger.Interface) *Sender {
	return &Sender{l}
}

func (s *Sender) SendEvents(ctx context.Context, events []*entity.OutboxEvent) error {
	for _, e := range events {
		s.l.Info("eventlog - SendEvents: %s aggregate=%s id=%s payload=%s", e.Type, e.AggregateID, e.ID, e.Payload)
	}

	return nil
}

func (s *Sender) Close() error {
	return nil
}
