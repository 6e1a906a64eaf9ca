package repo

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSubmissionFilterNormalize(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name       string
		in         SubmissionFilter
		wantPage   int
		wantLimit  int
		wantOffset int
	}{
		{"defaults", SubmissionFilter{}, 1, DefaultPageLimit, 0},
		{"second page", SubmissionFilter{Page: 2, Limit: 10}, 2, 10, 10},
		{"negative page", SubmissionFilter{Page: -3, Limit: 5}, 1, 5, 0},
		{"limit capped", SubmissionFilter{Page: 3, Limit: 1000}, 3, MaxPageLimit, 2 * MaxPageLimit},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			f := tt.in.Normalize()
			assert.Equal(t, tt.wantPage, f.Page)
			assert.Equal(t, tt.wantLimit, f.Limit)
			assert.Equal(t, tt.wantOffset, f.Offset())
		})
	}
}
