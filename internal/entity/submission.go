package entity

import (
	"strings"
	"time"

	"github.com/andreyxaxa/oral-screening/pkg/types/errs"
	"github.com/google/uuid"
)

const MaxImages = 3

// ImageLabels captions the images of a submission by position.
var ImageLabels = [MaxImages]string{"Upper Teeth", "Front Teeth", "Lower Teeth"}

// ReannotatePolicy decides what annotating an already reported submission does.
type ReannotatePolicy string

const (
	// ReannotateRevert returns the submission to annotated and drops the report reference.
	ReannotateRevert ReannotatePolicy = "revert"
	// ReannotateBlock rejects the annotation with an invalid state error.
	ReannotateBlock ReannotatePolicy = "block"
)

type Submission struct {
	ID uuid.UUID `json:"id"`

	PatientID         uuid.UUID `json:"patient_id"`
	PatientName       string    `json:"patient_name"`
	ExternalPatientID string    `json:"external_patient_id"`
	Email             string    `json:"email"`
	Note              string    `json:"note"`

	OriginalImageKeys  []string      `json:"original_image_keys"`
	AnnotatedImageKeys []string      `json:"annotated_image_keys,omitempty"`
	AnnotationData     AnnotationSet `json:"annotation_data,omitempty"`
	AdminNotes         string        `json:"admin_notes"`
	ReportKey          *string       `json:"report_key,omitempty"`
	ProcessedBy        *uuid.UUID    `json:"processed_by,omitempty"`

	Status Status `json:"status"` // uploaded, annotated, reported

	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
	AnnotatedAt *time.Time `json:"annotated_at,omitempty"`
	ReportedAt  *time.Time `json:"reported_at,omitempty"`
}

// NewSubmission validates patient input and returns a submission in the uploaded state.
func NewSubmission(
	patientID uuid.UUID,
	patientName string,
	externalPatientID string,
	email string,
	note string,
	originalImageKeys []string,
	now time.Time,
) (*Submission, error) {
	if err := ValidateNewSubmission(patientName, externalPatientID, email, len(originalImageKeys)); err != nil {
		return nil, err
	}

	return &Submission{
		ID:                uuid.New(),
		PatientID:         patientID,
		PatientName:       strings.TrimSpace(patientName),
		ExternalPatientID: strings.TrimSpace(externalPatientID),
		Email:             strings.TrimSpace(email),
		Note:              note,
		OriginalImageKeys: append([]string(nil), originalImageKeys...),
		Status:            Uploaded,
		CreatedAt:         now,
		UpdatedAt:         now,
	}, nil
}

// ValidateNewSubmission checks creation input before any artifact is stored.
func ValidateNewSubmission(patientName, externalPatientID, email string, imageCount int) error {
	switch {
	case imageCount == 0:
		return errs.Validation("at least one image is required")
	case imageCount > MaxImages:
		return errs.Validation("at most %d images are allowed, got %d", MaxImages, imageCount)
	case strings.TrimSpace(patientName) == "":
		return errs.Validation("patient name is required")
	case strings.TrimSpace(externalPatientID) == "":
		return errs.Validation("patient id is required")
	case strings.TrimSpace(email) == "":
		return errs.Validation("email is required")
	}
	return nil
}

// CanAnnotate reports whether Annotate would accept the current status under policy.
func (s *Submission) CanAnnotate(policy ReannotatePolicy) error {
	switch s.Status {
	case Uploaded, Annotated:
		return nil
	case Reported:
		if policy == ReannotateBlock {
			return errs.InvalidState("submission %s is already reported", s.ID)
		}
		return nil
	}
	return errs.InvalidState("submission %s has unknown status %q", s.ID, s.Status)
}

// Annotate replaces the whole annotation state of the submission. Re-annotation keeps no history.
func (s *Submission) Annotate(
	set AnnotationSet,
	adminNotes string,
	adminID uuid.UUID,
	annotatedImageKeys []string,
	policy ReannotatePolicy,
	now time.Time,
) error {
	if err := s.CanAnnotate(policy); err != nil {
		return err
	}
	if err := set.Validate(len(s.OriginalImageKeys)); err != nil {
		return err
	}
	if len(annotatedImageKeys) != len(s.OriginalImageKeys) {
		return errs.Validation("expected %d annotated images, got %d", len(s.OriginalImageKeys), len(annotatedImageKeys))
	}

	if set == nil {
		set = AnnotationSet{}
	}

	s.AnnotationData = set.Clone()
	s.AdminNotes = adminNotes
	s.ProcessedBy = &adminID
	s.AnnotatedImageKeys = append([]string(nil), annotatedImageKeys...)
	s.Status = Annotated
	s.ReportKey = nil
	s.ReportedAt = nil
	s.AnnotatedAt = &now
	s.UpdatedAt = now

	return nil
}

// MarkReported moves an annotated submission to reported.
func (s *Submission) MarkReported(reportKey string, now time.Time) error {
	if err := s.CanReport(); err != nil {
		return err
	}
	if reportKey == "" {
		return errs.Validation("report reference is required")
	}

	s.ReportKey = &reportKey
	s.Status = Reported
	s.ReportedAt = &now
	s.UpdatedAt = now

	return nil
}

// CanReport is the precondition of report generation.
func (s *Submission) CanReport() error {
	switch s.Status {
	case Annotated:
		return nil
	case Uploaded:
		return errs.InvalidState("submission %s must be annotated first", s.ID)
	case Reported:
		return errs.InvalidState("submission %s is already reported", s.ID)
	}
	return errs.InvalidState("submission %s has unknown status %q", s.ID, s.Status)
}

// CheckInvariants verifies the status-dependent presence of artifacts.
func (s *Submission) CheckInvariants() error {
	n := len(s.OriginalImageKeys)
	if n == 0 || n > MaxImages {
		return errs.InvalidState("submission %s has %d original images", s.ID, n)
	}

	switch s.Status {
	case Uploaded:
		if len(s.AnnotatedImageKeys) > 0 || s.ReportKey != nil {
			return errs.InvalidState("uploaded submission %s carries annotation artifacts", s.ID)
		}
	case Annotated:
		if len(s.AnnotatedImageKeys) == 0 || s.AnnotationData == nil {
			return errs.InvalidState("annotated submission %s is missing annotation data", s.ID)
		}
		if s.ReportKey != nil {
			return errs.InvalidState("annotated submission %s already has a report", s.ID)
		}
	case Reported:
		if s.ReportKey == nil {
			return errs.InvalidState("reported submission %s has no report", s.ID)
		}
	default:
		return errs.InvalidState("submission %s has unknown status %q", s.ID, s.Status)
	}

	return nil
}

// ImageLabel returns the positional caption of image i.
func ImageLabel(i int) string {
	if i < 0 || i >= MaxImages {
		return ""
	}
	return ImageLabels[i]
}
