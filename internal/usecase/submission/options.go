package submission

import (
	"time"

	"github.com/andreyxaxa/oral-screening/internal/entity"
	"github.com/andreyxaxa/oral-screening/pkg/metrics"
)

const (
	_defaultReportPrefix = "reports"
	_defaultPresignTTL   = 15 * time.Minute
)

type Option func(uc *SubmissionUseCase)

func ReannotatePolicy(policy entity.ReannotatePolicy) Option {
	return func(uc *SubmissionUseCase) {
		uc.policy = policy
	}
}

// ReportPrefix is the key prefix under which report PDFs are stored.
func ReportPrefix(prefix string) Option {
	return func(uc *SubmissionUseCase) {
		uc.reportPrefix = prefix
	}
}

func PresignTTL(ttl time.Duration) Option {
	return func(uc *SubmissionUseCase) {
		uc.presignTTL = ttl
	}
}

func Metrics(m metrics.Recorder) Option {
	return func(uc *SubmissionUseCase) {
		uc.metrics = m
	}
}

func Clock(now func() time.Time) Option {
	return func(uc *SubmissionUseCase) {
		uc.now = now
	}
}
