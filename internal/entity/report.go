package entity

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

// ReportImage is one image placed on a report, with its pixel size and the
// annotations drawn on it in source-pixel coordinates.
type ReportImage struct {
	Label       string
	Data        []byte
	Width       int
	Height      int
	Annotations []Annotation
}

// ReportDocument is everything the compositor needs to lay out a report.
type ReportDocument struct {
	PatientName       string
	ExternalPatientID string
	GeneratedAt       time.Time
	Images            []ReportImage
	Legend            Legend
	PatientNote       string
	AdminNotes        string
}

// ReportFileName builds "report-{id}-{timestamp}.pdf" where the ISO-8601 UTC timestamp
// has colons and periods replaced, e.g. 2024-03-05T10-20-30-123Z.
func ReportFileName(externalPatientID string, t time.Time) string {
	ts := t.UTC().Format("2006-01-02T15:04:05.000Z")
	ts = strings.NewReplacer(":", "-", ".", "-").Replace(ts)

	return fmt.Sprintf("report-%s-%s.pdf", sanitizeKeyPart(externalPatientID), ts)
}

// sanitizeKeyPart keeps ids usable inside object keys and file names.
func sanitizeKeyPart(s string) string {
	return strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '-', r == '_':
			return r
		}
		return '_'
	}, s)
}

// AnnotatedImageKey is the object key of the overlay artifact for image index.
func AnnotatedImageKey(externalPatientID string, t time.Time, index int) string {
	return fmt.Sprintf("annotated/annotated-%s-%d-%d.jpg", sanitizeKeyPart(externalPatientID), t.UnixMilli(), index)
}

// OriginalImageKey is a fresh object key for an uploaded original.
func OriginalImageKey(ext string) string {
	return fmt.Sprintf("originals/%s%s", uuid.New(), strings.ToLower(ext))
}
