package repo

import (
	"context"
	"io"
	"time"

	"github.com/andreyxaxa/oral-screening/internal/entity"
	"github.com/google/uuid"
)

type (
	// ArtifactRepo is the blob store holding original images, overlay images and reports.
	ArtifactRepo interface {
		Upload(ctx context.Context, key string, data io.Reader, contentType string, size int64) error
		UploadBytes(ctx context.Context, key string, data []byte, contentType string) error
		DownloadBytes(ctx context.Context, key string) ([]byte, error)
		Exists(ctx context.Context, key string) (bool, error)
		Delete(ctx context.Context, key string) error
		PresignURL(ctx context.Context, key string, ttl time.Duration) (string, error)
	}

	SubmissionRepo interface {
		Create(ctx context.Context, s *entity.Submission) error
		GetByID(ctx context.Context, id uuid.UUID) (*entity.Submission, error)
		Update(ctx context.Context, s *entity.Submission) error
		List(ctx context.Context, filter SubmissionFilter) ([]*entity.Submission, int, error)
	}

	OutboxRepo interface {
		Create(ctx context.Context, event *entity.OutboxEvent) error
		GetPendingEvents(ctx context.Context, maxRetries, limit int) ([]*entity.OutboxEvent, error)
		MarkAsProcessingBatch(ctx context.Context, IDs uuid.UUIDs) error
		MarkAsProcessedBatch(ctx context.Context, IDs uuid.UUIDs) error
		IncrementRetryCountBatch(ctx context.Context, IDs uuid.UUIDs) error
		MarkMaxRetriesAsFailed(ctx context.Context, maxRetries int) error
		ReleaseStaleClaims(ctx context.Context, claimedBefore time.Time) (int64, error)
		DeleteOldProcessedAndFailed(ctx context.Context) (int64, error)
	}

	Transactor interface {
		WithinTransaction(ctx context.Context, f func(ctx context.Context) error) error
	}
)

// SubmissionFilter selects submissions for listing. Page is 1-based.
type SubmissionFilter struct {
	Status    *entity.Status
	PatientID *uuid.UUID
	Page      int
	Limit     int
}

const (
	DefaultPageLimit = 10
	MaxPageLimit     = 100
)

// Normalize clamps paging to sane bounds.
func (f SubmissionFilter) Normalize() SubmissionFilter {
	if f.Page < 1 {
		f.Page = 1
	}
	if f.Limit < 1 {
		f.Limit = DefaultPageLimit
	}
	if f.Limit > MaxPageLimit {
		f.Limit = MaxPageLimit
	}
	return f
}

func (f SubmissionFilter) Offset() int {
	return (f.Page - 1) * f.Limit
}
