package entity

import (
	"errors"
	"testing"
	"time"

	"github.com/andreyxaxa/oral-screening/pkg/types/errs"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testNow = time.Date(2024, 3, 5, 10, 20, 30, 123_000_000, time.UTC)

func newTestSubmission(t *testing.T, images int) *Submission {
	t.Helper()

	keys := make([]string, images)
	for i := range keys {
		keys[i] = OriginalImageKey(".jpg")
	}

	s, err := NewSubmission(uuid.New(), "Jane Doe", "P-001", "jane@example.com", "sensitive tooth", keys, testNow)
	require.NoError(t, err)

	return s
}

func TestNewSubmissionImageCount(t *testing.T) {
	for n := 0; n <= 4; n++ {
		keys := make([]string, n)
		_, err := NewSubmission(uuid.New(), "Jane", "P-1", "j@example.com", "", keys, testNow)

		if n >= 1 && n <= MaxImages {
			assert.NoError(t, err, n)
			continue
		}
		require.Error(t, err, n)
		assert.True(t, errors.Is(err, errs.ErrValidation), n)
	}
}

func TestNewSubmissionRequiredFields(t *testing.T) {
	keys := []string{"k"}
	tests := []struct {
		name, patientName, externalID, email string
	}{
		{"name", " ", "P-1", "j@example.com"},
		{"external id", "Jane", "", "j@example.com"},
		{"email", "Jane", "P-1", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewSubmission(uuid.New(), tt.patientName, tt.externalID, tt.email, "", keys, testNow)
			assert.True(t, errors.Is(err, errs.ErrValidation))
		})
	}
}

func TestNewSubmissionStartsUploaded(t *testing.T) {
	s := newTestSubmission(t, 2)

	assert.Equal(t, Uploaded, s.Status)
	assert.Empty(t, s.AnnotatedImageKeys)
	assert.Nil(t, s.ReportKey)
	assert.Nil(t, s.ProcessedBy)
	assert.NoError(t, s.CheckInvariants())
}

func TestSubmissionLifecycle(t *testing.T) {
	s := newTestSubmission(t, 2)
	admin := uuid.New()

	err := s.MarkReported("reports/r.pdf", testNow)
	require.Error(t, err)
	assert.True(t, errors.Is(err, errs.ErrInvalidState))
	assert.Equal(t, Uploaded, s.Status)

	set := AnnotationSet{{{Type: Rectangle, Width: 4, Height: 4}}}
	require.NoError(t, s.Annotate(set, "looks fine", admin, []string{"a0", "a1"}, ReannotateRevert, testNow))
	assert.Equal(t, Annotated, s.Status)
	assert.Equal(t, admin, *s.ProcessedBy)
	assert.NoError(t, s.CheckInvariants())

	require.NoError(t, s.MarkReported("reports/r.pdf", testNow.Add(time.Minute)))
	assert.Equal(t, Reported, s.Status)
	assert.Equal(t, "reports/r.pdf", *s.ReportKey)
	assert.NoError(t, s.CheckInvariants())

	err = s.MarkReported("reports/r2.pdf", testNow)
	assert.True(t, errors.Is(err, errs.ErrInvalidState))
}

func TestSubmissionAnnotateIsIdempotent(t *testing.T) {
	s := newTestSubmission(t, 1)
	admin := uuid.New()
	set := AnnotationSet{{{Type: Circle, X: 1, Y: 1, Radius: 3}}}

	require.NoError(t, s.Annotate(set, "n", admin, []string{"a0"}, ReannotateRevert, testNow))
	first := *s

	require.NoError(t, s.Annotate(set, "n", admin, []string{"a0"}, ReannotateRevert, testNow))

	assert.Equal(t, first.AnnotationData, s.AnnotationData)
	assert.Equal(t, first.Status, s.Status)
	assert.Equal(t, first.AnnotatedImageKeys, s.AnnotatedImageKeys)
}

func TestSubmissionReannotateReported(t *testing.T) {
	admin := uuid.New()
	set := AnnotationSet{{{Type: Square, Width: 2, Height: 2}}}

	t.Run("revert", func(t *testing.T) {
		s := newTestSubmission(t, 1)
		require.NoError(t, s.Annotate(set, "", admin, []string{"a0"}, ReannotateRevert, testNow))
		require.NoError(t, s.MarkReported("reports/r.pdf", testNow))

		require.NoError(t, s.Annotate(set, "again", admin, []string{"a1"}, ReannotateRevert, testNow))
		assert.Equal(t, Annotated, s.Status)
		assert.Nil(t, s.ReportKey)
		assert.Nil(t, s.ReportedAt)
		assert.NoError(t, s.CheckInvariants())
	})

	t.Run("block", func(t *testing.T) {
		s := newTestSubmission(t, 1)
		require.NoError(t, s.Annotate(set, "", admin, []string{"a0"}, ReannotateBlock, testNow))
		require.NoError(t, s.MarkReported("reports/r.pdf", testNow))

		err := s.Annotate(set, "again", admin, []string{"a1"}, ReannotateBlock, testNow)
		assert.True(t, errors.Is(err, errs.ErrInvalidState))
		assert.Equal(t, Reported, s.Status)
		assert.Equal(t, []string{"a0"}, s.AnnotatedImageKeys)
	})
}

func TestSubmissionAnnotateValidation(t *testing.T) {
	s := newTestSubmission(t, 1)
	admin := uuid.New()

	err := s.Annotate(AnnotationSet{{}, {}}, "", admin, []string{"a0"}, ReannotateRevert, testNow)
	assert.True(t, errors.Is(err, errs.ErrValidation))

	err = s.Annotate(AnnotationSet{{{Type: "blob"}}}, "", admin, []string{"a0"}, ReannotateRevert, testNow)
	assert.True(t, errors.Is(err, errs.ErrValidation))

	err = s.Annotate(nil, "", admin, nil, ReannotateRevert, testNow)
	assert.True(t, errors.Is(err, errs.ErrValidation))

	assert.Equal(t, Uploaded, s.Status)
}

func TestSubmissionAnnotateWithoutShapes(t *testing.T) {
	s := newTestSubmission(t, 1)

	require.NoError(t, s.Annotate(nil, "", uuid.New(), []string{"a0"}, ReannotateRevert, testNow))
	assert.NotNil(t, s.AnnotationData)
	assert.NoError(t, s.CheckInvariants())
}

func TestReportFileName(t *testing.T) {
	assert.Equal(t, "report-P-001-2024-03-05T10-20-30-123Z.pdf", ReportFileName("P-001", testNow))
	assert.Equal(t, "report-a_b-2024-03-05T10-20-30-123Z.pdf", ReportFileName("a/b", testNow))
}

func TestImageLabel(t *testing.T) {
	assert.Equal(t, "Upper Teeth", ImageLabel(0))
	assert.Equal(t, "Front Teeth", ImageLabel(1))
	assert.Equal(t, "Lower Teeth", ImageLabel(2))
	assert.Empty(t, ImageLabel(3))
}

func TestParseStatus(t *testing.T) {
	st, err := ParseStatus("annotated")
	assert.NoError(t, err)
	assert.Equal(t, Annotated, st)

	_, err = ParseStatus("reviewed")
	assert.Equal(t, errs.KindValidation, errs.KindOf(err))
}
