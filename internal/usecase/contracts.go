package usecase

import (
	"context"
	"time"

	"github.com/andreyxaxa/oral-screening/internal/dto"
	"github.com/andreyxaxa/oral-screening/internal/entity"
	"github.com/andreyxaxa/oral-screening/internal/repo"
	"github.com/google/uuid"
)

type (
	SubmissionUseCase interface {
		Create(ctx context.Context, in dto.CreateSubmission) (*entity.Submission, error)
		Annotate(ctx context.Context, in dto.AnnotateSubmission) (*entity.Submission, error)
		GenerateReport(ctx context.Context, id uuid.UUID) (*entity.Submission, error)
		GetByID(ctx context.Context, id uuid.UUID) (*entity.Submission, error)
		List(ctx context.Context, filter repo.SubmissionFilter) ([]*entity.Submission, int, error)
		ListByPatient(ctx context.Context, patientID uuid.UUID, page, limit int) ([]*entity.Submission, int, error)
		GetReportURL(ctx context.Context, id uuid.UUID, principal entity.Principal) (string, error)
	}

	OverlayUseCase interface {
		Process(ctx context.Context, task dto.OverlayTask) ([]byte, error)
	}

	OutboxUseCase interface {
		ClaimPendingEvents(ctx context.Context, maxRetries, limit int) ([]*entity.OutboxEvent, error)
		MarkAsProcessedBatch(ctx context.Context, events []*entity.OutboxEvent) error
		IncrementRetryCountBatch(ctx context.Context, events []*entity.OutboxEvent) error
		MarkMaxRetriesAsFailed(ctx context.Context, maxRetries int) error
		ReleaseStaleClaims(ctx context.Context, olderThan time.Duration) error
		CleanupOutbox(ctx context.Context) error
	}
)
