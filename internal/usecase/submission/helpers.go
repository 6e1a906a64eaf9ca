package submission

import (
	"context"
	"encoding/json"
	"fmt"
	"path"
	"time"

	"github.com/andreyxaxa/oral-screening/internal/entity"
	"github.com/andreyxaxa/oral-screening/pkg/types/errs"
	"github.com/google/uuid"
)

func (uc *SubmissionUseCase) createOutboxEvent(s *entity.Submission, eventType entity.EventType) (*entity.OutboxEvent, error) {
	payload := map[string]interface{}{
		"id":                  s.ID,
		"patient_id":          s.PatientID,
		"external_patient_id": s.ExternalPatientID,
		"status":              s.Status,
		"image_count":         len(s.OriginalImageKeys),
		"occurred_at":         s.UpdatedAt,
	}
	if s.ProcessedBy != nil {
		payload["processed_by"] = *s.ProcessedBy
	}
	if s.ReportKey != nil {
		payload["report_key"] = *s.ReportKey
	}

	b, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("SubmissionUseCase - createOutboxEvent - json.Marshal: %w", err)
	}

	return &entity.OutboxEvent{
		ID:          uuid.New(),
		AggregateID: s.ID,
		Type:        eventType,
		Payload:     b,
		Status:      entity.Pending,
		CreatedAt:   uc.now(),
		RetryCount:  0,
	}, nil
}

// saveWithEvent writes the submission and its outbox event in one transaction.
// Rows that break the status invariants are refused before the transaction opens.
func (uc *SubmissionUseCase) saveWithEvent(ctx context.Context, s *entity.Submission, eventType entity.EventType, create bool) error {
	if err := s.CheckInvariants(); err != nil {
		return fmt.Errorf("SubmissionUseCase - saveWithEvent - s.CheckInvariants: %w", err)
	}

	return uc.transactor.WithinTransaction(ctx, func(ctx context.Context) error {
		if create {
			if err := uc.submissionRepo.Create(ctx, s); err != nil {
				return fmt.Errorf("SubmissionUseCase - saveWithEvent - uc.submissionRepo.Create: %w", err)
			}
		} else {
			if err := uc.submissionRepo.Update(ctx, s); err != nil {
				return fmt.Errorf("SubmissionUseCase - saveWithEvent - uc.submissionRepo.Update: %w", err)
			}
		}

		event, err := uc.createOutboxEvent(s, eventType)
		if err != nil {
			return fmt.Errorf("SubmissionUseCase - saveWithEvent - uc.createOutboxEvent: %w", err)
		}
		if err := uc.outboxRepo.Create(ctx, event); err != nil {
			return fmt.Errorf("SubmissionUseCase - saveWithEvent - uc.outboxRepo.Create: %w", err)
		}

		return nil
	})
}

// deleteArtifacts removes keys best-effort; failures are only logged.
func (uc *SubmissionUseCase) deleteArtifacts(ctx context.Context, where string, keys ...string) {
	for _, key := range keys {
		if key == "" {
			continue
		}
		if err := uc.artifactRepo.Delete(ctx, key); err != nil {
			uc.logger.Warn("%s: failed to delete key=%s, error=%v", where, key, err)
		}
	}
}

// observe records outcome and duration of op. Call it deferred with a pointer to the named error.
func (uc *SubmissionUseCase) observe(op string, start time.Time, err *error) {
	uc.metrics.RecordDuration(op, time.Since(start).Seconds())

	if *err != nil {
		uc.metrics.RecordOperation(op, "error")
		uc.metrics.RecordError(op, string(errs.KindOf(*err)))
		return
	}

	uc.metrics.RecordOperation(op, "success")
}

func (uc *SubmissionUseCase) reportKey(externalPatientID string, t time.Time) string {
	name := entity.ReportFileName(externalPatientID, t)
	if uc.reportPrefix == "" {
		return name
	}

	return path.Join(uc.reportPrefix, name)
}

func stale(old, current []string) []string {
	keep := make(map[string]bool, len(current))
	for _, k := range current {
		keep[k] = true
	}

	var out []string
	for _, k := range old {
		if !keep[k] {
			out = append(out, k)
		}
	}

	return out
}
