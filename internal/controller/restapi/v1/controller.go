package v1

import (
	"github.com/andreyxaxa/oral-screening/internal/usecase"
	"github.com/andreyxaxa/oral-screening/pkg/logger"
	"github.com/go-playground/validator/v10"
)

type V1 struct {
	sub         usecase.SubmissionUseCase
	logger      logger.Interface
	validate    *validator.Validate
	maxFileSize int64
}
