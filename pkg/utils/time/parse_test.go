package time

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestParse(t *testing.T) {
	want := time.Date(2025, 3, 14, 9, 30, 0, 0, time.UTC)

	tests := []struct {
		in string
		ok bool
	}{
		{"2025-03-14T09:30:00Z", true},
		{"2025-03-14 09:30:00", true},
		{"2025-03-14T09:30:00", true},
		{" 14.03.2025 09:30 ", true},
		{"14.03.2025 09:30:00", true},
		{"", false},
		{"yesterday", false},
	}

	for _, tt := range tests {
		got, ok := Parse(tt.in)
		assert.Equal(t, tt.ok, ok, tt.in)
		if tt.ok {
			assert.True(t, want.Equal(got), tt.in)
		}
	}

	day, ok := Parse("14.03.2025")
	assert.True(t, ok)
	assert.Equal(t, time.Date(2025, 3, 14, 0, 0, 0, 0, time.UTC), day)
}
