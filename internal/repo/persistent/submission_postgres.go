package persistent

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/Masterminds/squirrel"
	"github.com/andreyxaxa/oral-screening/internal/entity"
	"github.com/andreyxaxa/oral-screening/internal/repo"
	"github.com/andreyxaxa/oral-screening/pkg/postgres"
	"github.com/andreyxaxa/oral-screening/pkg/types/errs"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

const (
	// Table
	submissionsTable = "submissions"

	// Columns
	idColumn                 = "id"
	patientIDColumn          = "patient_id"
	patientNameColumn        = "patient_name"
	externalPatientIDColumn  = "external_patient_id"
	emailColumn              = "email"
	noteColumn               = "note"
	originalImageKeysColumn  = "original_image_keys"
	annotatedImageKeysColumn = "annotated_image_keys"
	annotationDataColumn     = "annotation_data"
	adminNotesColumn         = "admin_notes"
	reportKeyColumn          = "report_key"
	processedByColumn        = "processed_by"
	statusColumn             = "status"
	createdAtColumn          = "created_at"
	updatedAtColumn          = "updated_at"
	annotatedAtColumn        = "annotated_at"
	reportedAtColumn         = "reported_at"
)

var submissionColumns = []string{
	idColumn,
	patientIDColumn,
	patientNameColumn,
	externalPatientIDColumn,
	emailColumn,
	noteColumn,
	originalImageKeysColumn,
	annotatedImageKeysColumn,
	annotationDataColumn,
	adminNotesColumn,
	reportKeyColumn,
	processedByColumn,
	statusColumn,
	createdAtColumn,
	updatedAtColumn,
	annotatedAtColumn,
	reportedAtColumn,
}

type SubmissionRepo struct {
	*postgres.Postgres
}

func NewSubmissionRepo(pg *postgres.Postgres) *SubmissionRepo {
	return &SubmissionRepo{pg}
}

func (r *SubmissionRepo) Create(ctx context.Context, s *entity.Submission) error {
	annotationData, err := marshalAnnotations(s.AnnotationData)
	if err != nil {
		return fmt.Errorf("SubmissionRepo - Create - marshalAnnotations: %w", err)
	}

	sql, args, err := r.Builder.
		Insert(submissionsTable).
		Columns(submissionColumns...).
		Values(
			s.ID,
			s.PatientID,
			s.PatientName,
			s.ExternalPatientID,
			s.Email,
			s.Note,
			s.OriginalImageKeys,
			nonNilKeys(s.AnnotatedImageKeys),
			annotationData,
			s.AdminNotes,
			s.ReportKey,
			s.ProcessedBy,
			s.Status,
			s.CreatedAt,
			s.UpdatedAt,
			s.AnnotatedAt,
			s.ReportedAt,
		).ToSql()
	if err != nil {
		return fmt.Errorf("SubmissionRepo - Create - r.Builder.ToSql: %w", err)
	}

	// Pool / Tx
	executor := r.GetExecutor(ctx)

	_, err = executor.Exec(ctx, sql, args...)
	if err != nil {
		return fmt.Errorf("SubmissionRepo - Create - executor.Exec: %w", err)
	}

	return nil
}

func (r *SubmissionRepo) GetByID(ctx context.Context, id uuid.UUID) (*entity.Submission, error) {
	sql, args, err := r.Builder.
		Select(submissionColumns...).
		From(submissionsTable).
		Where(squirrel.Eq{idColumn: id}).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("SubmissionRepo - GetByID - r.Builder.ToSql: %w", err)
	}

	executor := r.GetExecutor(ctx)

	s, err := scanSubmission(executor.QueryRow(ctx, sql, args...))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("SubmissionRepo - GetByID: %w", errs.NotFound("submission %s not found", id))
		}
		return nil, fmt.Errorf("SubmissionRepo - GetByID - scanSubmission: %w", err)
	}

	return s, nil
}

// Update overwrites every mutable column of the submission.
func (r *SubmissionRepo) Update(ctx context.Context, s *entity.Submission) error {
	annotationData, err := marshalAnnotations(s.AnnotationData)
	if err != nil {
		return fmt.Errorf("SubmissionRepo - Update - marshalAnnotations: %w", err)
	}

	sql, args, err := r.Builder.
		Update(submissionsTable).
		Set(annotatedImageKeysColumn, nonNilKeys(s.AnnotatedImageKeys)).
		Set(annotationDataColumn, annotationData).
		Set(adminNotesColumn, s.AdminNotes).
		Set(reportKeyColumn, s.ReportKey).
		Set(processedByColumn, s.ProcessedBy).
		Set(statusColumn, s.Status).
		Set(updatedAtColumn, s.UpdatedAt).
		Set(annotatedAtColumn, s.AnnotatedAt).
		Set(reportedAtColumn, s.ReportedAt).
		Where(squirrel.Eq{idColumn: s.ID}).
		ToSql()
	if err != nil {
		return fmt.Errorf("SubmissionRepo - Update - r.Builder.ToSql: %w", err)
	}

	executor := r.GetExecutor(ctx)

	tag, err := executor.Exec(ctx, sql, args...)
	if err != nil {
		return fmt.Errorf("SubmissionRepo - Update - executor.Exec: %w", err)
	}

	if tag.RowsAffected() == 0 {
		return fmt.Errorf("SubmissionRepo - Update: %w", errs.NotFound("submission %s not found", s.ID))
	}

	return nil
}

// List returns one page of submissions, newest first, and the total number of matches.
func (r *SubmissionRepo) List(ctx context.Context, filter repo.SubmissionFilter) ([]*entity.Submission, int, error) {
	filter = filter.Normalize()

	where := squirrel.And{}
	if filter.Status != nil {
		where = append(where, squirrel.Eq{statusColumn: *filter.Status})
	}
	if filter.PatientID != nil {
		where = append(where, squirrel.Eq{patientIDColumn: *filter.PatientID})
	}

	countSQL, countArgs, err := r.Builder.
		Select("COUNT(*)").
		From(submissionsTable).
		Where(where).
		ToSql()
	if err != nil {
		return nil, 0, fmt.Errorf("SubmissionRepo - List - count r.Builder.ToSql: %w", err)
	}

	executor := r.GetExecutor(ctx)

	var total int
	err = executor.QueryRow(ctx, countSQL, countArgs...).Scan(&total)
	if err != nil {
		return nil, 0, fmt.Errorf("SubmissionRepo - List - executor.QueryRow: %w", err)
	}

	sql, args, err := r.Builder.
		Select(submissionColumns...).
		From(submissionsTable).
		Where(where).
		OrderBy(createdAtColumn + " DESC").
		Limit(uint64(filter.Limit)).
		Offset(uint64(filter.Offset())).
		ToSql()
	if err != nil {
		return nil, 0, fmt.Errorf("SubmissionRepo - List - r.Builder.ToSql: %w", err)
	}

	rows, err := executor.Query(ctx, sql, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("SubmissionRepo - List - executor.Query: %w", err)
	}
	defer rows.Close()

	submissions := make([]*entity.Submission, 0, filter.Limit)
	for rows.Next() {
		s, err := scanSubmission(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("SubmissionRepo - List - scanSubmission: %w", err)
		}
		submissions = append(submissions, s)
	}

	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("SubmissionRepo - List - rows.Err: %w", err)
	}

	return submissions, total, nil
}

func scanSubmission(row pgx.Row) (*entity.Submission, error) {
	var (
		s              entity.Submission
		annotationData []byte
	)

	err := row.Scan(
		&s.ID,
		&s.PatientID,
		&s.PatientName,
		&s.ExternalPatientID,
		&s.Email,
		&s.Note,
		&s.OriginalImageKeys,
		&s.AnnotatedImageKeys,
		&annotationData,
		&s.AdminNotes,
		&s.ReportKey,
		&s.ProcessedBy,
		&s.Status,
		&s.CreatedAt,
		&s.UpdatedAt,
		&s.AnnotatedAt,
		&s.ReportedAt,
	)
	if err != nil {
		return nil, err
	}

	if len(annotationData) > 0 {
		if err := json.Unmarshal(annotationData, &s.AnnotationData); err != nil {
			return nil, fmt.Errorf("json.Unmarshal annotation_data: %w", err)
		}
	}

	return &s, nil
}

// marshalAnnotations stores a nil set as SQL NULL so uploaded submissions carry no annotation data.
func marshalAnnotations(set entity.AnnotationSet) ([]byte, error) {
	if set == nil {
		return nil, nil
	}
	return json.Marshal(set)
}

func nonNilKeys(keys []string) []string {
	if keys == nil {
		return []string{}
	}
	return keys
}
