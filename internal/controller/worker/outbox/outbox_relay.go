package outbox

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/andreyxaxa/oral-screening/internal/infrastructure"
	"github.com/andreyxaxa/oral-screening/internal/usecase"
	"github.com/andreyxaxa/oral-screening/pkg/logger"
)

// BatchObserver receives the outcome of every relay tick that picked up events.
type BatchObserver interface {
	ObserveRelayBatch(picked, published, retried int)
}

type noopObserver struct{}

func (noopObserver) ObserveRelayBatch(int, int, int) {}

type Option func(*OutboxRelay)

func WithBatchObserver(o BatchObserver) Option {
	return func(r *OutboxRelay) {
		if o != nil {
			r.observer = o
		}
	}
}

// OutboxRelay publishes submission lifecycle events written by the use case to the broker.
type OutboxRelay struct {
	outbox   usecase.OutboxUseCase
	es       infrastructure.EventsSender
	observer BatchObserver
	logger   logger.Interface

	pollInterval        time.Duration
	cleanupInterval     time.Duration
	markFailedInterval  time.Duration
	processBatchTimeout time.Duration
	batchSize           int
	maxRetries          int

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup

	started atomic.Bool
}

func New(
	outbox usecase.OutboxUseCase,
	es infrastructure.EventsSender,
	l logger.Interface,
	pollInterval time.Duration,
	cleanupInterval time.Duration,
	markFailedInterval time.Duration,
	processBatchTimeout time.Duration,
	batchSize int,
	maxRetries int,
	opts ...Option,
) *OutboxRelay {
	r := &OutboxRelay{
		outbox:              outbox,
		es:                  es,
		observer:            noopObserver{},
		logger:              l,
		pollInterval:        pollInterval,
		cleanupInterval:     cleanupInterval,
		markFailedInterval:  markFailedInterval,
		processBatchTimeout: processBatchTimeout,
		batchSize:           batchSize,
		maxRetries:          maxRetries,
	}

	for _, opt := range opts {
		opt(r)
	}

	return r
}

func (r *OutboxRelay) Start(ctx context.Context) error {
	if !r.started.CompareAndSwap(false, true) {
		return fmt.Errorf("OutboxRelay - Start - worker already started")
	}

	r.ctx, r.cancel = context.WithCancel(ctx)

	// publish pending events
	r.worker(r.pollInterval, func() {
		batchCtx, batchCancel := context.WithTimeout(r.ctx, r.processBatchTimeout)
		r.processEventsBatch(batchCtx)
		batchCancel()
	})

	// recover abandoned claims, then give up on events that ran out of retries
	r.worker(r.markFailedInterval, func() {
		r.expireEvents(r.ctx)
	})

	// drop old processed and failed events
	r.worker(r.cleanupInterval, func() {
		err := r.outbox.CleanupOutbox(r.ctx)
		if err != nil {
			r.logger.Error(err, "OutboxRelay - Start - worker - r.outbox.CleanupOutbox")
		}
	})

	return nil
}

func (r *OutboxRelay) processEventsBatch(ctx context.Context) {
	// claimed events are already in processing, no other relay sees them
	events, err := r.outbox.ClaimPendingEvents(ctx, r.maxRetries, r.batchSize)
	if err != nil {
		r.logger.Error(err, "OutboxRelay - processEventsBatch - r.outbox.ClaimPendingEvents")

		return
	}
	if len(events) == 0 {
		return
	}

	err = r.es.SendEvents(ctx, events)
	if err != nil {
		r.logger.Error(err, "OutboxRelay - processEventsBatch - r.es.SendEvents")
		r.observer.ObserveRelayBatch(len(events), 0, len(events))

		// back to pending with one more retry
		incErr := r.outbox.IncrementRetryCountBatch(ctx, events)
		if incErr != nil {
			r.logger.Error(incErr, "OutboxRelay - processEventsBatch - r.outbox.IncrementRetryCountBatch")
		}
		return
	}

	r.observer.ObserveRelayBatch(len(events), len(events), 0)

	err = r.outbox.MarkAsProcessedBatch(ctx, events)
	if err != nil {
		r.logger.Error(err, "OutboxRelay - processEventsBatch - r.outbox.MarkAsProcessedBatch")

		return
	}

	r.logger.Debug("OutboxRelay - processEventsBatch - published %d events", len(events))
}

// expireEvents releases claims older than one batch timeout. The batch context that owned
// such a claim is already canceled, so its outcome was never recorded.
func (r *OutboxRelay) expireEvents(ctx context.Context) {
	err := r.outbox.ReleaseStaleClaims(ctx, r.processBatchTimeout)
	if err != nil {
		r.logger.Error(err, "OutboxRelay - expireEvents - r.outbox.ReleaseStaleClaims")
	}

	err = r.outbox.MarkMaxRetriesAsFailed(ctx, r.maxRetries)
	if err != nil {
		r.logger.Error(err, "OutboxRelay - expireEvents - r.outbox.MarkMaxRetriesAsFailed")
	}
}

func (r *OutboxRelay) worker(interval time.Duration, task func()) {
	r.wg.Add(1)
	go func() {
		defer r.wg.Done()

		ticker := time.NewTicker(interval)
		defer ticker.Stop()

		for {
			select {
			case <-r.ctx.Done():
				return
			case <-ticker.C:
				task()
			}
		}
	}()
}

func (r *OutboxRelay) Shutdown(ctx context.Context) error {
	if !r.started.Load() {
		return nil
	}

	if r.cancel != nil {
		r.cancel()
	}

	done := make(chan struct{})

	go func() {
		r.wg.Wait()
		if err := r.es.Close(); err != nil {
			r.logger.Error(err, "OutboxRelay - Shutdown - r.es.Close")
		}
		close(done)
	}()

	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return fmt.Errorf("OutboxRelay - Shutdown: %w", ctx.Err())
	}
}
