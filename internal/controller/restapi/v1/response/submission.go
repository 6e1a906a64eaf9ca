package response

import (
	"time"

	"github.com/andreyxaxa/oral-screening/internal/entity"
)

// PatientSubmission is what a patient sees: no annotation data, no admin notes.
type PatientSubmission struct {
	ID                 string     `json:"id" example:"5d1c2a7e-8d0b-4c5e-9a1f-6d0e3c7b2a11"`
	PatientName        string     `json:"patientName" example:"Jane Doe"`
	PatientID          string     `json:"patientId" example:"P-1042"`
	Email              string     `json:"email" example:"jane@example.com"`
	Note               string     `json:"note"`
	Status             string     `json:"status" example:"uploaded"`
	OriginalImageKeys  []string   `json:"originalImageKeys"`
	AnnotatedImageKeys []string   `json:"annotatedImageKeys,omitempty"`
	ReportAvailable    bool       `json:"reportAvailable"`
	CreatedAt          time.Time  `json:"createdAt"`
	UpdatedAt          time.Time  `json:"updatedAt"`
	AnnotatedAt        *time.Time `json:"annotatedAt,omitempty"`
	ReportedAt         *time.Time `json:"reportedAt,omitempty"`
}

// AdminSummary is a listing row for admins. Annotation data is left out.
type AdminSummary struct {
	PatientSubmission
	AdminNotes  string `json:"adminNotes"`
	ProcessedBy string `json:"processedBy,omitempty"`
	ReportKey   string `json:"reportKey,omitempty"`
}

type AdminSubmission struct {
	AdminSummary
	AnnotationData entity.AnnotationSet `json:"annotationData"`
}

type Envelope struct {
	Message    string `json:"message,omitempty" example:"Submission uploaded successfully"`
	Submission any    `json:"submission"`
}

type Pagination struct {
	Page  int `json:"page" example:"1"`
	Pages int `json:"pages" example:"3"`
	Total int `json:"total" example:"27"`
}

type SubmissionList struct {
	Submissions any        `json:"submissions"`
	Pagination  Pagination `json:"pagination"`
}

type ReportURL struct {
	ReportURL string `json:"reportUrl"`
}

func NewPatientSubmission(s *entity.Submission) PatientSubmission {
	return PatientSubmission{
		ID:                 s.ID.String(),
		PatientName:        s.PatientName,
		PatientID:          s.ExternalPatientID,
		Email:              s.Email,
		Note:               s.Note,
		Status:             string(s.Status),
		OriginalImageKeys:  nonNil(s.OriginalImageKeys),
		AnnotatedImageKeys: s.AnnotatedImageKeys,
		ReportAvailable:    s.ReportKey != nil,
		CreatedAt:          s.CreatedAt,
		UpdatedAt:          s.UpdatedAt,
		AnnotatedAt:        s.AnnotatedAt,
		ReportedAt:         s.ReportedAt,
	}
}

func NewAdminSummary(s *entity.Submission) AdminSummary {
	out := AdminSummary{
		PatientSubmission: NewPatientSubmission(s),
		AdminNotes:        s.AdminNotes,
	}
	if s.ProcessedBy != nil {
		out.ProcessedBy = s.ProcessedBy.String()
	}
	if s.ReportKey != nil {
		out.ReportKey = *s.ReportKey
	}
	return out
}

func NewAdminSubmission(s *entity.Submission) AdminSubmission {
	data := s.AnnotationData
	if data == nil {
		data = entity.AnnotationSet{}
	}

	return AdminSubmission{
		AdminSummary:   NewAdminSummary(s),
		AnnotationData: data,
	}
}

func NewPatientList(items []*entity.Submission, page, limit, total int) SubmissionList {
	out := make([]PatientSubmission, 0, len(items))
	for _, s := range items {
		out = append(out, NewPatientSubmission(s))
	}
	return SubmissionList{Submissions: out, Pagination: NewPagination(page, limit, total)}
}

func NewAdminList(items []*entity.Submission, page, limit, total int) SubmissionList {
	out := make([]AdminSummary, 0, len(items))
	for _, s := range items {
		out = append(out, NewAdminSummary(s))
	}
	return SubmissionList{Submissions: out, Pagination: NewPagination(page, limit, total)}
}

func NewPagination(page, limit, total int) Pagination {
	pages := 0
	if limit > 0 {
		pages = (total + limit - 1) / limit
	}
	return Pagination{Page: page, Pages: pages, Total: total}
}

func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}

type GeneratedReport struct {
	Message    string          `json:"message" example:"PDF report generated successfully"`
	ReportURL  string          `json:"reportUrl,omitempty"`
	Submission AdminSubmission `json:"submission"`
}
