package outbox

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/andreyxaxa/oral-screening/internal/entity"
	"github.com/andreyxaxa/oral-screening/pkg/logger"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeOutbox struct {
	mu sync.Mutex

	pending    []*entity.OutboxEvent
	claimErr   error
	processed  []uuid.UUID
	retried    []uuid.UUID
	failedRuns int
	cleanups   int

	// expiry steps in call order
	expiry   []string
	released []time.Duration
}

func (f *fakeOutbox) ClaimPendingEvents(_ context.Context, _, limit int) ([]*entity.OutboxEvent, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.claimErr != nil {
		return nil, f.claimErr
	}
	if limit > len(f.pending) {
		limit = len(f.pending)
	}
	batch := f.pending[:limit]
	f.pending = f.pending[limit:]
	return batch, nil
}

func (f *fakeOutbox) MarkAsProcessedBatch(_ context.Context, events []*entity.OutboxEvent) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	for _, e := range events {
		f.processed = append(f.processed, e.ID)
	}
	return nil
}

func (f *fakeOutbox) IncrementRetryCountBatch(_ context.Context, events []*entity.OutboxEvent) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	for _, e := range events {
		f.retried = append(f.retried, e.ID)
	}
	return nil
}

func (f *fakeOutbox) MarkMaxRetriesAsFailed(context.Context, int) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.failedRuns++
	f.expiry = append(f.expiry, "fail")
	return nil
}

func (f *fakeOutbox) ReleaseStaleClaims(_ context.Context, olderThan time.Duration) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.released = append(f.released, olderThan)
	f.expiry = append(f.expiry, "release")
	return nil
}

func (f *fakeOutbox) CleanupOutbox(context.Context) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.cleanups++
	return nil
}

func (f *fakeOutbox) snapshot() (processed, retried []uuid.UUID, failedRuns, cleanups int) {
	f.mu.Lock()
	defer f.mu.Unlock()

	return append([]uuid.UUID(nil), f.processed...), append([]uuid.UUID(nil), f.retried...), f.failedRuns, f.cleanups
}

type fakeSender struct {
	mu     sync.Mutex
	err    error
	sent   []*entity.OutboxEvent
	closed bool
}

func (s *fakeSender) SendEvents(_ context.Context, events []*entity.OutboxEvent) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.err != nil {
		return s.err
	}
	s.sent = append(s.sent, events...)
	return nil
}

func (s *fakeSender) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.closed = true
	return nil
}

type recordingObserver struct {
	picked, published, retried int
}

func (o *recordingObserver) ObserveRelayBatch(picked, published, retried int) {
	o.picked += picked
	o.published += published
	o.retried += retried
}

func events(n int) []*entity.OutboxEvent {
	out := make([]*entity.OutboxEvent, n)
	for i := range out {
		out[i] = &entity.OutboxEvent{
			ID:          uuid.New(),
			AggregateID: uuid.New(),
			Type:        entity.EventSubmissionCreated,
			Status:      entity.Processing,
		}
	}
	return out
}

func newRelay(ob *fakeOutbox, es *fakeSender, obs BatchObserver) *OutboxRelay {
	return New(ob, es, logger.Nop(),
		10*time.Millisecond, 10*time.Millisecond, 10*time.Millisecond, time.Second,
		2, 3, WithBatchObserver(obs))
}

func TestProcessEventsBatchPublishes(t *testing.T) {
	t.Parallel()

	ob := &fakeOutbox{pending: events(3)}
	es := &fakeSender{}
	obs := &recordingObserver{}
	r := newRelay(ob, es, obs)

	r.processEventsBatch(context.Background())

	processed, retried, _, _ := ob.snapshot()
	assert.Len(t, processed, 2)
	assert.Empty(t, retried)
	assert.Len(t, es.sent, 2)
	assert.Equal(t, &recordingObserver{picked: 2, published: 2}, obs)
}

func TestProcessEventsBatchRetriesOnSendFailure(t *testing.T) {
	t.Parallel()

	ob := &fakeOutbox{pending: events(2)}
	es := &fakeSender{err: errors.New("broker unavailable")}
	obs := &recordingObserver{}
	r := newRelay(ob, es, obs)

	r.processEventsBatch(context.Background())

	processed, retried, _, _ := ob.snapshot()
	assert.Empty(t, processed)
	assert.Len(t, retried, 2)
	assert.Equal(t, &recordingObserver{picked: 2, retried: 2}, obs)
}

func TestProcessEventsBatchClaimFailure(t *testing.T) {
	t.Parallel()

	ob := &fakeOutbox{claimErr: errors.New("deadlock detected")}
	es := &fakeSender{}
	obs := &recordingObserver{}

	newRelay(ob, es, obs).processEventsBatch(context.Background())

	assert.Empty(t, es.sent)
	assert.Equal(t, &recordingObserver{}, obs)
}

func TestStartAndShutdown(t *testing.T) {
	t.Parallel()

	ob := &fakeOutbox{pending: events(5)}
	es := &fakeSender{}
	r := New(ob, es, logger.Nop(),
		5*time.Millisecond, 5*time.Millisecond, 5*time.Millisecond, time.Second, 2, 3)

	require.NoError(t, r.Start(context.Background()))
	require.Error(t, r.Start(context.Background()))

	assert.Eventually(t, func() bool {
		processed, _, failedRuns, cleanups := ob.snapshot()
		return len(processed) == 5 && failedRuns > 0 && cleanups > 0
	}, time.Second, 5*time.Millisecond)

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	require.NoError(t, r.Shutdown(ctx))

	es.mu.Lock()
	defer es.mu.Unlock()
	assert.True(t, es.closed)
}

func TestShutdownWithoutStart(t *testing.T) {
	t.Parallel()

	assert.NoError(t, newRelay(&fakeOutbox{}, &fakeSender{}, nil).Shutdown(context.Background()))
}

func TestExpireEventsReleasesStaleClaimsFirst(t *testing.T) {
	t.Parallel()

	ob := &fakeOutbox{}
	r := New(ob, &fakeSender{}, logger.Nop(),
		time.Second, time.Second, time.Second, 15*time.Second, 10, 3)

	r.expireEvents(context.Background())

	ob.mu.Lock()
	defer ob.mu.Unlock()
	assert.Equal(t, []time.Duration{15 * time.Second}, ob.released)
	assert.Equal(t, []string{"release", "fail"}, ob.expiry)
}
