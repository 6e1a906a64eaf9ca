package dto

import (
	"io"

	"github.com/andreyxaxa/oral-screening/internal/entity"
	"github.com/google/uuid"
)

// UploadedImage is one original image as received from the patient.
type UploadedImage struct {
	Data        io.Reader
	ContentType string
	Ext         string
	Size        int64
}

type CreateSubmission struct {
	PatientID         uuid.UUID
	PatientName       string
	ExternalPatientID string
	Email             string
	Note              string
	Images            []UploadedImage
}

// AnnotateSubmission carries the per-image annotations and, optionally, client-rendered
// overlay images aligned by index to the originals. A missing or empty rendering is drawn server-side.
type AnnotateSubmission struct {
	SubmissionID   uuid.UUID
	AdminID        uuid.UUID
	Annotations    entity.AnnotationSet
	RenderedImages []string
	AdminNotes     string
}
