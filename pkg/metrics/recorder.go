// Package metrics provides Prometheus metrics for the screening service.
package metrics

// Recorder is the narrow surface use cases and workers record through.
type Recorder interface {
	// RecordOperation counts one finished operation, e.g. ("annotate", "success").
	RecordOperation(operation, status string)
	// RecordDuration observes how long an operation took, in seconds.
	RecordDuration(operation string, seconds float64)
	// RecordError counts a failure by error kind, e.g. ("report", "storage_error").
	RecordError(operation, errorType string)
}

// NoOpRecorder discards everything.
type NoOpRecorder struct{}

func NewNoOpRecorder() *NoOpRecorder {
	return &NoOpRecorder{}
}

func (NoOpRecorder) RecordOperation(string, string) {}

func (NoOpRecorder) RecordDuration(string, float64) {}

func (NoOpRecorder) RecordError(string, string) {}
