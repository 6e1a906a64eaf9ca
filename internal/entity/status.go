package entity

import "github.com/andreyxaxa/oral-screening/pkg/types/errs"

// Status is the submission lifecycle state. It only moves forward:
// uploaded -> annotated -> reported.
type Status string

const (
	Uploaded  Status = "uploaded"
	Annotated Status = "annotated"
	Reported  Status = "reported"
)

func (s Status) Valid() bool {
	switch s {
	case Uploaded, Annotated, Reported:
		return true
	}
	return false
}

// ParseStatus accepts only the three lifecycle states.
func ParseStatus(s string) (Status, error) {
	st := Status(s)
	if !st.Valid() {
		return "", errs.Validation("unknown status %q", s)
	}
	return st, nil
}

// EventStatus is the delivery state of an outbox event.
type EventStatus string

const (
	Pending    EventStatus = "pending"
	Processing EventStatus = "processing"
	Processed  EventStatus = "processed"
	Failed     EventStatus = "failed"
)
