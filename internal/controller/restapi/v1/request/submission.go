package request

import (
	"bytes"
	"encoding/json"
	"errors"
)

// CreateSubmission holds the text fields of the multipart upload. Images travel as "images" files.
type CreateSubmission struct {
	PatientName string `form:"patientName" validate:"required,max=200"`
	PatientID   string `form:"patientId" validate:"required,max=100"`
	Email       string `form:"email" validate:"required,email,max=254"`
	Note        string `form:"note" validate:"max=2000"`
}

type AnnotateSubmission struct {
	// AnnotationData is validated against the annotation schema before decoding.
	AnnotationData     json.RawMessage `json:"annotationData" swaggertype:"array,object"`
	AnnotatedImageData ImageDataList   `json:"annotatedImageData" validate:"max=3" swaggertype:"array,string"`
	AdminNotes         string          `json:"adminNotes" validate:"max=5000"`
}

type ListSubmissions struct {
	Status string `query:"status"`
	Page   int    `query:"page" validate:"omitempty,min=1"`
	Limit  int    `query:"limit" validate:"omitempty,min=1,max=100"`
}

type Page struct {
	Page  int `query:"page" validate:"omitempty,min=1"`
	Limit int `query:"limit" validate:"omitempty,min=1,max=100"`
}

// ImageDataList accepts a single rendered image string or an array of them, aligned by index.
type ImageDataList []string

func (l *ImageDataList) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)

	switch {
	case bytes.Equal(b, []byte("null")):
		*l = nil
		return nil
	case len(b) > 0 && b[0] == '"':
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		if s == "" {
			*l = nil
			return nil
		}
		*l = ImageDataList{s}
		return nil
	case len(b) > 0 && b[0] == '[':
		var list []string
		if err := json.Unmarshal(b, &list); err != nil {
			return err
		}
		*l = list
		return nil
	}

	return errors.New("annotatedImageData must be a string or an array of strings")
}
