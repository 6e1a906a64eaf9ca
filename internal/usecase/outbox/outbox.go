package outbox

import (
	"context"
	"fmt"
	"time"

	"github.com/andreyxaxa/oral-screening/internal/entity"
	"github.com/andreyxaxa/oral-screening/internal/repo"
	"github.com/andreyxaxa/oral-screening/pkg/logger"
	"github.com/google/uuid"
)

type OutboxUseCase struct {
	outboxRepo repo.OutboxRepo
	transactor repo.Transactor

	logger logger.Interface
	now    func() time.Time
}

func New(outboxRepo repo.OutboxRepo, transactor repo.Transactor, l logger.Interface) *OutboxUseCase {
	return &OutboxUseCase{
		outboxRepo: outboxRepo,
		transactor: transactor,
		logger:     l,
		now:        time.Now,
	}
}

// ClaimPendingEvents selects pending events and marks them processing in one transaction,
// so two relays never pick up the same event.
func (uc *OutboxUseCase) ClaimPendingEvents(ctx context.Context, maxRetries, limit int) ([]*entity.OutboxEvent, error) {
	var events []*entity.OutboxEvent

	err := uc.transactor.WithinTransaction(ctx, func(ctx context.Context) error {
		var err error

		events, err = uc.outboxRepo.GetPendingEvents(ctx, maxRetries, limit)
		if err != nil {
			return fmt.Errorf("OutboxUseCase - ClaimPendingEvents - uc.outboxRepo.GetPendingEvents: %w", err)
		}
		if len(events) == 0 {
			return nil
		}

		err = uc.outboxRepo.MarkAsProcessingBatch(ctx, eventIDs(events))
		if err != nil {
			return fmt.Errorf("OutboxUseCase - ClaimPendingEvents - uc.outboxRepo.MarkAsProcessingBatch: %w", err)
		}

		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("OutboxUseCase - ClaimPendingEvents - uc.transactor.WithinTransaction: %w", err)
	}

	for _, e := range events {
		e.Status = entity.Processing
	}

	return events, nil
}

func (uc *OutboxUseCase) MarkAsProcessedBatch(ctx context.Context, events []*entity.OutboxEvent) error {
	err := uc.outboxRepo.MarkAsProcessedBatch(ctx, eventIDs(events))
	if err != nil {
		return fmt.Errorf("OutboxUseCase - MarkAsProcessedBatch - uc.outboxRepo.MarkAsProcessedBatch: %w", err)
	}

	return nil
}

func (uc *OutboxUseCase) IncrementRetryCountBatch(ctx context.Context, events []*entity.OutboxEvent) error {
	err := uc.outboxRepo.IncrementRetryCountBatch(ctx, eventIDs(events))
	if err != nil {
		return fmt.Errorf("OutboxUseCase - IncrementRetryCountBatch - uc.outboxRepo.IncrementRetryCountBatch: %w", err)
	}

	return nil
}

func (uc *OutboxUseCase) MarkMaxRetriesAsFailed(ctx context.Context, maxRetries int) error {
	err := uc.outboxRepo.MarkMaxRetriesAsFailed(ctx, maxRetries)
	if err != nil {
		return fmt.Errorf("OutboxUseCase - MarkMaxRetriesAsFailed - uc.outboxRepo.MarkMaxRetriesAsFailed: %w", err)
	}

	return nil
}

// ReleaseStaleClaims returns events claimed more than olderThan ago to pending. Such a claim
// belongs to a relay that died or timed out before recording the send outcome.
func (uc *OutboxUseCase) ReleaseStaleClaims(ctx context.Context, olderThan time.Duration) error {
	count, err := uc.outboxRepo.ReleaseStaleClaims(ctx, uc.now().Add(-olderThan))
	if err != nil {
		return fmt.Errorf("OutboxUseCase - ReleaseStaleClaims - uc.outboxRepo.ReleaseStaleClaims: %w", err)
	}

	if count > 0 {
		uc.logger.Warn("released stale outbox claims, count = %d", count)
	}

	return nil
}

func (uc *OutboxUseCase) CleanupOutbox(ctx context.Context) error {
	count, err := uc.outboxRepo.DeleteOldProcessedAndFailed(ctx)
	if err != nil {
		return fmt.Errorf("OutboxUseCase - CleanupOutbox - uc.outboxRepo.DeleteOldProcessedAndFailed: %w", err)
	}

	if count > 0 {
		uc.logger.Info("deleted old outbox events, count = %d", count)
	}

	return nil
}

func eventIDs(events []*entity.OutboxEvent) uuid.UUIDs {
	IDs := make(uuid.UUIDs, 0, len(events))
	for _, event := range events {
		IDs = append(IDs, event.ID)
	}

	return IDs
}
