package submission

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/andreyxaxa/oral-screening/internal/dto"
	"github.com/andreyxaxa/oral-screening/internal/entity"
	"github.com/andreyxaxa/oral-screening/internal/infrastructure"
	"github.com/andreyxaxa/oral-screening/internal/repo"
	"github.com/andreyxaxa/oral-screening/internal/usecase"
	"github.com/andreyxaxa/oral-screening/pkg/logger"
	"github.com/andreyxaxa/oral-screening/pkg/metrics"
	"github.com/andreyxaxa/oral-screening/pkg/types/errs"
	"github.com/google/uuid"
)

const (
	opCreate   = "create"
	opAnnotate = "annotate"
	opReport   = "report"

	jpegContentType = "image/jpeg"
	pdfContentType  = "application/pdf"
)

// SubmissionUseCase drives a submission through uploaded -> annotated -> reported.
// Every transition stores its artifacts first, then writes the record and an outbox event
// in one transaction; artifacts of a failed write are removed again.
type SubmissionUseCase struct {
	artifactRepo   repo.ArtifactRepo
	submissionRepo repo.SubmissionRepo
	outboxRepo     repo.OutboxRepo
	transactor     repo.Transactor

	overlay    usecase.OverlayUseCase
	processor  infrastructure.ImageProcessor
	compositor infrastructure.ReportCompositor

	logger  logger.Interface
	metrics metrics.Recorder

	policy       entity.ReannotatePolicy
	reportPrefix string
	presignTTL   time.Duration
	now          func() time.Time
}

func New(
	artifactRepo repo.ArtifactRepo,
	submissionRepo repo.SubmissionRepo,
	outboxRepo repo.OutboxRepo,
	transactor repo.Transactor,
	overlay usecase.OverlayUseCase,
	processor infrastructure.ImageProcessor,
	compositor infrastructure.ReportCompositor,
	l logger.Interface,
	opts ...Option,
) *SubmissionUseCase {
	uc := &SubmissionUseCase{
		artifactRepo:   artifactRepo,
		submissionRepo: submissionRepo,
		outboxRepo:     outboxRepo,
		transactor:     transactor,
		overlay:        overlay,
		processor:      processor,
		compositor:     compositor,
		logger:         l,
		metrics:        metrics.NewNoOpRecorder(),
		policy:         entity.ReannotateRevert,
		reportPrefix:   _defaultReportPrefix,
		presignTTL:     _defaultPresignTTL,
		now:            time.Now,
	}

	for _, opt := range opts {
		opt(uc)
	}

	return uc
}

func (uc *SubmissionUseCase) Create(ctx context.Context, in dto.CreateSubmission) (_ *entity.Submission, err error) {
	defer uc.observe(opCreate, time.Now(), &err)

	err = entity.ValidateNewSubmission(in.PatientName, in.ExternalPatientID, in.Email, len(in.Images))
	if err != nil {
		return nil, fmt.Errorf("SubmissionUseCase - Create - entity.ValidateNewSubmission: %w", err)
	}

	// 1. originals go to the blob store first
	keys := make([]string, 0, len(in.Images))
	for _, img := range in.Images {
		key := entity.OriginalImageKey(img.Ext)

		err = uc.artifactRepo.Upload(ctx, key, img.Data, img.ContentType, img.Size)
		if err != nil {
			uc.deleteArtifacts(ctx, "SubmissionUseCase - Create", keys...)
			return nil, fmt.Errorf("SubmissionUseCase - Create - uc.artifactRepo.Upload: %w", err)
		}
		keys = append(keys, key)
	}

	s, err := entity.NewSubmission(in.PatientID, in.PatientName, in.ExternalPatientID, in.Email, in.Note, keys, uc.now())
	if err != nil {
		uc.deleteArtifacts(ctx, "SubmissionUseCase - Create", keys...)
		return nil, fmt.Errorf("SubmissionUseCase - Create - entity.NewSubmission: %w", err)
	}

	// 2. record + outbox in one transaction
	err = uc.saveWithEvent(ctx, s, entity.EventSubmissionCreated, true)
	if err != nil {
		uc.deleteArtifacts(ctx, "SubmissionUseCase - Create", keys...)
		return nil, fmt.Errorf("SubmissionUseCase - Create - uc.saveWithEvent: %w", err)
	}

	return s, nil
}

func (uc *SubmissionUseCase) Annotate(ctx context.Context, in dto.AnnotateSubmission) (_ *entity.Submission, err error) {
	defer uc.observe(opAnnotate, time.Now(), &err)

	s, err := uc.submissionRepo.GetByID(ctx, in.SubmissionID)
	if err != nil {
		return nil, fmt.Errorf("SubmissionUseCase - Annotate - uc.submissionRepo.GetByID: %w", err)
	}

	// 1. reject before any artifact is written
	if err = s.CanAnnotate(uc.policy); err != nil {
		return nil, fmt.Errorf("SubmissionUseCase - Annotate - s.CanAnnotate: %w", err)
	}
	if err = in.Annotations.Validate(len(s.OriginalImageKeys)); err != nil {
		return nil, fmt.Errorf("SubmissionUseCase - Annotate - in.Annotations.Validate: %w", err)
	}
	if len(in.RenderedImages) > len(s.OriginalImageKeys) {
		err = errs.Validation("got %d annotated images for %d originals", len(in.RenderedImages), len(s.OriginalImageKeys))
		return nil, fmt.Errorf("SubmissionUseCase - Annotate: %w", err)
	}

	now := uc.now()

	// 2. one overlay artifact per original
	keys := make([]string, 0, len(s.OriginalImageKeys))
	for i := range s.OriginalImageKeys {
		var data []byte

		data, err = uc.prepareOverlay(ctx, s, in, i)
		if err != nil {
			uc.deleteArtifacts(ctx, "SubmissionUseCase - Annotate", keys...)
			return nil, fmt.Errorf("SubmissionUseCase - Annotate - uc.prepareOverlay: %w", err)
		}

		key := entity.AnnotatedImageKey(s.ExternalPatientID, now, i)

		err = uc.artifactRepo.UploadBytes(ctx, key, data, jpegContentType)
		if err != nil {
			uc.deleteArtifacts(ctx, "SubmissionUseCase - Annotate", keys...)
			return nil, fmt.Errorf("SubmissionUseCase - Annotate - uc.artifactRepo.UploadBytes: %w", err)
		}
		keys = append(keys, key)
	}

	oldAnnotated := s.AnnotatedImageKeys
	var oldReport string
	if s.ReportKey != nil {
		oldReport = *s.ReportKey
	}

	// 3. transition
	err = s.Annotate(in.Annotations, in.AdminNotes, in.AdminID, keys, uc.policy, now)
	if err != nil {
		uc.deleteArtifacts(ctx, "SubmissionUseCase - Annotate", keys...)
		return nil, fmt.Errorf("SubmissionUseCase - Annotate - s.Annotate: %w", err)
	}

	err = uc.saveWithEvent(ctx, s, entity.EventSubmissionAnnotated, false)
	if err != nil {
		uc.deleteArtifacts(ctx, "SubmissionUseCase - Annotate", keys...)
		return nil, fmt.Errorf("SubmissionUseCase - Annotate - uc.saveWithEvent: %w", err)
	}

	// 4. replaced artifacts are no longer referenced
	uc.deleteArtifacts(ctx, "SubmissionUseCase - Annotate", stale(oldAnnotated, keys)...)
	if oldReport != "" {
		uc.deleteArtifacts(ctx, "SubmissionUseCase - Annotate", oldReport)
	}

	return s, nil
}

func (uc *SubmissionUseCase) prepareOverlay(ctx context.Context, s *entity.Submission, in dto.AnnotateSubmission, i int) ([]byte, error) {
	if i < len(in.RenderedImages) && in.RenderedImages[i] != "" {
		data, err := uc.overlay.Process(ctx, dto.OverlayTask{
			Source:   dto.OverlayRendered,
			Rendered: in.RenderedImages[i],
		})
		if err != nil {
			return nil, fmt.Errorf("image %d: %w", i, err)
		}

		return data, nil
	}

	original, err := uc.artifactRepo.DownloadBytes(ctx, s.OriginalImageKeys[i])
	if err != nil {
		return nil, fmt.Errorf("image %d - uc.artifactRepo.DownloadBytes: %w", i, errs.Storage(err))
	}

	data, err := uc.overlay.Process(ctx, dto.OverlayTask{
		Source:      dto.OverlayBurned,
		Original:    original,
		Annotations: in.Annotations.ForImage(i),
	})
	if err != nil {
		return nil, fmt.Errorf("image %d: %w", i, err)
	}

	return data, nil
}

func (uc *SubmissionUseCase) GenerateReport(ctx context.Context, id uuid.UUID) (_ *entity.Submission, err error) {
	defer uc.observe(opReport, time.Now(), &err)

	s, err := uc.submissionRepo.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("SubmissionUseCase - GenerateReport - uc.submissionRepo.GetByID: %w", err)
	}

	if err = s.CanReport(); err != nil {
		return nil, fmt.Errorf("SubmissionUseCase - GenerateReport - s.CanReport: %w", err)
	}

	now := uc.now()

	// 1. collect the images that can still be located
	images, err := uc.reportImages(ctx, s)
	if err != nil {
		return nil, fmt.Errorf("SubmissionUseCase - GenerateReport - uc.reportImages: %w", err)
	}

	// 2. compose
	pdf, err := uc.compositor.Compose(ctx, &entity.ReportDocument{
		PatientName:       s.PatientName,
		ExternalPatientID: s.ExternalPatientID,
		GeneratedAt:       now,
		Images:            images,
		Legend:            entity.ResolveLegend(s.AnnotationData),
		PatientNote:       s.Note,
		AdminNotes:        s.AdminNotes,
	})
	if err != nil {
		if !errors.Is(err, errs.ErrReportGeneration) {
			err = errs.ReportGeneration(err)
		}
		return nil, fmt.Errorf("SubmissionUseCase - GenerateReport - uc.compositor.Compose: %w", err)
	}

	// 3. store, then transition
	key := uc.reportKey(s.ExternalPatientID, now)

	err = uc.artifactRepo.UploadBytes(ctx, key, pdf, pdfContentType)
	if err != nil {
		return nil, fmt.Errorf("SubmissionUseCase - GenerateReport - uc.artifactRepo.UploadBytes: %w", errs.Storage(err))
	}

	err = s.MarkReported(key, now)
	if err != nil {
		uc.deleteArtifacts(ctx, "SubmissionUseCase - GenerateReport", key)
		return nil, fmt.Errorf("SubmissionUseCase - GenerateReport - s.MarkReported: %w", err)
	}

	err = uc.saveWithEvent(ctx, s, entity.EventSubmissionReported, false)
	if err != nil {
		uc.deleteArtifacts(ctx, "SubmissionUseCase - GenerateReport", key)
		return nil, fmt.Errorf("SubmissionUseCase - GenerateReport - uc.saveWithEvent: %w", err)
	}

	return s, nil
}

// reportImages loads originals for the report. A missing original is logged and skipped;
// any other read failure aborts.
func (uc *SubmissionUseCase) reportImages(ctx context.Context, s *entity.Submission) ([]entity.ReportImage, error) {
	images := make([]entity.ReportImage, 0, len(s.OriginalImageKeys))

	for i, key := range s.OriginalImageKeys {
		if i >= entity.MaxImages {
			break
		}

		ok, err := uc.artifactRepo.Exists(ctx, key)
		if err != nil {
			return nil, fmt.Errorf("uc.artifactRepo.Exists: %w", errs.Storage(err))
		}
		if !ok {
			uc.skipMissing(s, i, key)
			continue
		}

		data, err := uc.artifactRepo.DownloadBytes(ctx, key)
		if err != nil {
			// deleted between the check and the read
			if errors.Is(err, errs.ErrNotFound) {
				uc.skipMissing(s, i, key)
				continue
			}
			return nil, fmt.Errorf("uc.artifactRepo.DownloadBytes: %w", errs.Storage(err))
		}

		jpeg, w, h, err := uc.processor.PrepareForReport(ctx, data)
		if err != nil {
			return nil, fmt.Errorf("uc.processor.PrepareForReport image %d: %w", i, errs.ReportGeneration(err))
		}

		images = append(images, entity.ReportImage{
			Label:       entity.ImageLabel(i),
			Data:        jpeg,
			Width:       w,
			Height:      h,
			Annotations: s.AnnotationData.ForImage(i),
		})
	}

	return images, nil
}

func (uc *SubmissionUseCase) skipMissing(s *entity.Submission, i int, key string) {
	uc.logger.Warn("SubmissionUseCase - reportImages: submission=%s image %d key=%s not found, skipping", s.ID, i, key)
	uc.metrics.RecordError(opReport, "image_missing")
}

func (uc *SubmissionUseCase) GetByID(ctx context.Context, id uuid.UUID) (*entity.Submission, error) {
	s, err := uc.submissionRepo.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("SubmissionUseCase - GetByID - uc.submissionRepo.GetByID: %w", err)
	}

	return s, nil
}

func (uc *SubmissionUseCase) List(ctx context.Context, filter repo.SubmissionFilter) ([]*entity.Submission, int, error) {
	submissions, total, err := uc.submissionRepo.List(ctx, filter.Normalize())
	if err != nil {
		return nil, 0, fmt.Errorf("SubmissionUseCase - List - uc.submissionRepo.List: %w", err)
	}

	return submissions, total, nil
}

func (uc *SubmissionUseCase) ListByPatient(ctx context.Context, patientID uuid.UUID, page, limit int) ([]*entity.Submission, int, error) {
	filter := repo.SubmissionFilter{PatientID: &patientID, Page: page, Limit: limit}

	submissions, total, err := uc.submissionRepo.List(ctx, filter.Normalize())
	if err != nil {
		return nil, 0, fmt.Errorf("SubmissionUseCase - ListByPatient - uc.submissionRepo.List: %w", err)
	}

	return submissions, total, nil
}

// GetReportURL returns a time-limited download link to the report. Only the owning patient
// and admins may ask for it.
func (uc *SubmissionUseCase) GetReportURL(ctx context.Context, id uuid.UUID, principal entity.Principal) (string, error) {
	s, err := uc.submissionRepo.GetByID(ctx, id)
	if err != nil {
		return "", fmt.Errorf("SubmissionUseCase - GetReportURL - uc.submissionRepo.GetByID: %w", err)
	}

	if !principal.IsAdmin() && s.PatientID != principal.ID {
		return "", fmt.Errorf("SubmissionUseCase - GetReportURL: %w", errs.Forbidden("not authorized to view this report"))
	}

	if s.ReportKey == nil {
		return "", fmt.Errorf("SubmissionUseCase - GetReportURL: %w", errs.NotFound("report for submission %s is not generated yet", s.ID))
	}

	url, err := uc.artifactRepo.PresignURL(ctx, *s.ReportKey, uc.presignTTL)
	if err != nil {
		return "", fmt.Errorf("SubmissionUseCase - GetReportURL - uc.artifactRepo.PresignURL: %w", err)
	}

	return url, nil
}
