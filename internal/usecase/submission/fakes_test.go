package submission

import (
	"context"
	"errors"
	"fmt"
	"io"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/andreyxaxa/oral-screening/internal/entity"
	"github.com/andreyxaxa/oral-screening/internal/repo"
	"github.com/andreyxaxa/oral-screening/pkg/types/errs"
	"github.com/google/uuid"
)

type memArtifacts struct {
	mu      sync.Mutex
	objects map[string][]byte
	types   map[string]string

	uploads      int
	failUploadAt int // 1-based upload number that fails, 0 = never
	downloadErr  map[string]error
	deletedKeys  []string
	checked      []string
}

func newMemArtifacts() *memArtifacts {
	return &memArtifacts{
		objects:     make(map[string][]byte),
		types:       make(map[string]string),
		downloadErr: make(map[string]error),
	}
}

func (m *memArtifacts) put(key string, data []byte, contentType string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.uploads++
	if m.failUploadAt > 0 && m.uploads == m.failUploadAt {
		return errs.Storage(errors.New("upload refused"))
	}

	m.objects[key] = data
	m.types[key] = contentType

	return nil
}

func (m *memArtifacts) Upload(_ context.Context, key string, data io.Reader, contentType string, _ int64) error {
	b, err := io.ReadAll(data)
	if err != nil {
		return err
	}
	return m.put(key, b, contentType)
}

func (m *memArtifacts) UploadBytes(_ context.Context, key string, data []byte, contentType string) error {
	return m.put(key, data, contentType)
}

func (m *memArtifacts) DownloadBytes(_ context.Context, key string) ([]byte, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if err, ok := m.downloadErr[key]; ok {
		return nil, err
	}

	b, ok := m.objects[key]
	if !ok {
		return nil, fmt.Errorf("%w: %s", errs.ErrNotFound, key)
	}

	return b, nil
}

func (m *memArtifacts) Exists(_ context.Context, key string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.checked = append(m.checked, key)

	_, ok := m.objects[key]
	return ok, nil
}

func (m *memArtifacts) Delete(_ context.Context, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	delete(m.objects, key)
	m.deletedKeys = append(m.deletedKeys, key)

	return nil
}

func (m *memArtifacts) PresignURL(_ context.Context, key string, ttl time.Duration) (string, error) {
	return fmt.Sprintf("https://blob.test/%s?ttl=%d", key, int(ttl.Seconds())), nil
}

func (m *memArtifacts) keys(prefix string) []string {
	m.mu.Lock()
	defer m.mu.Unlock()

	var out []string
	for k := range m.objects {
		if strings.HasPrefix(k, prefix) {
			out = append(out, k)
		}
	}
	sort.Strings(out)

	return out
}

func cloneSubmission(s *entity.Submission) *entity.Submission {
	c := *s
	c.OriginalImageKeys = append([]string(nil), s.OriginalImageKeys...)
	c.AnnotatedImageKeys = append([]string(nil), s.AnnotatedImageKeys...)
	c.AnnotationData = s.AnnotationData.Clone()
	if s.ReportKey != nil {
		k := *s.ReportKey
		c.ReportKey = &k
	}
	if s.ProcessedBy != nil {
		id := *s.ProcessedBy
		c.ProcessedBy = &id
	}
	return &c
}

type memSubmissions struct {
	mu        sync.Mutex
	rows      map[uuid.UUID]*entity.Submission
	updateErr error
}

func newMemSubmissions() *memSubmissions {
	return &memSubmissions{rows: make(map[uuid.UUID]*entity.Submission)}
}

func (m *memSubmissions) Create(_ context.Context, s *entity.Submission) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.rows[s.ID] = cloneSubmission(s)
	return nil
}

func (m *memSubmissions) GetByID(_ context.Context, id uuid.UUID) (*entity.Submission, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	s, ok := m.rows[id]
	if !ok {
		return nil, errs.NotFound("submission %s not found", id)
	}
	return cloneSubmission(s), nil
}

func (m *memSubmissions) Update(_ context.Context, s *entity.Submission) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.updateErr != nil {
		return m.updateErr
	}
	if _, ok := m.rows[s.ID]; !ok {
		return errs.NotFound("submission %s not found", s.ID)
	}
	m.rows[s.ID] = cloneSubmission(s)
	return nil
}

func (m *memSubmissions) List(_ context.Context, filter repo.SubmissionFilter) ([]*entity.Submission, int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	var matched []*entity.Submission
	for _, s := range m.rows {
		if filter.Status != nil && s.Status != *filter.Status {
			continue
		}
		if filter.PatientID != nil && s.PatientID != *filter.PatientID {
			continue
		}
		matched = append(matched, cloneSubmission(s))
	}

	sort.Slice(matched, func(i, j int) bool { return matched[i].CreatedAt.After(matched[j].CreatedAt) })

	total := len(matched)
	start := min(filter.Offset(), total)
	end := min(start+filter.Limit, total)

	return matched[start:end], total, nil
}

func (m *memSubmissions) snapshot() map[uuid.UUID]*entity.Submission {
	m.mu.Lock()
	defer m.mu.Unlock()

	out := make(map[uuid.UUID]*entity.Submission, len(m.rows))
	for id, s := range m.rows {
		out[id] = cloneSubmission(s)
	}
	return out
}

func (m *memSubmissions) restore(rows map[uuid.UUID]*entity.Submission) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.rows = rows
}

type memOutbox struct {
	mu        sync.Mutex
	events    []*entity.OutboxEvent
	createErr error
}

func (m *memOutbox) Create(_ context.Context, event *entity.OutboxEvent) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.createErr != nil {
		return m.createErr
	}
	m.events = append(m.events, event)
	return nil
}

func (m *memOutbox) GetPendingEvents(context.Context, int, int) ([]*entity.OutboxEvent, error) {
	return nil, nil
}

func (m *memOutbox) MarkAsProcessingBatch(context.Context, uuid.UUIDs) error { return nil }

func (m *memOutbox) MarkAsProcessedBatch(context.Context, uuid.UUIDs) error { return nil }

func (m *memOutbox) IncrementRetryCountBatch(context.Context, uuid.UUIDs) error { return nil }

func (m *memOutbox) MarkMaxRetriesAsFailed(context.Context, int) error { return nil }

func (m *memOutbox) ReleaseStaleClaims(context.Context, time.Time) (int64, error) { return 0, nil }

func (m *memOutbox) DeleteOldProcessedAndFailed(context.Context) (int64, error) { return 0, nil }

func (m *memOutbox) types() []entity.EventType {
	m.mu.Lock()
	defer m.mu.Unlock()

	out := make([]entity.EventType, 0, len(m.events))
	for _, e := range m.events {
		out = append(out, e.Type)
	}
	return out
}

// memTx rolls the submission store back when f fails.
type memTx struct {
	submissions *memSubmissions
	outbox      *memOutbox
}

func (t *memTx) WithinTransaction(ctx context.Context, f func(ctx context.Context) error) error {
	rows := t.submissions.snapshot()

	t.outbox.mu.Lock()
	events := len(t.outbox.events)
	t.outbox.mu.Unlock()

	if err := f(ctx); err != nil {
		t.submissions.restore(rows)

		t.outbox.mu.Lock()
		t.outbox.events = t.outbox.events[:events]
		t.outbox.mu.Unlock()

		return err
	}

	return nil
}

type failingCompositor struct{}

func (failingCompositor) Compose(context.Context, *entity.ReportDocument) ([]byte, error) {
	return nil, errors.New("layout exploded")
}

// stepClock advances by one second on every call.
type stepClock struct {
	mu sync.Mutex
	t  time.Time
}

func (c *stepClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.t = c.t.Add(time.Second)
	return c.t
}
