package protocol

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"rrpe/internal/config"
)

func TestWithinWindow(t *testing.T) {
	loc, err := time.LoadLocation("America/New_York")
	require.NoError(t, err)
	start := config.TimeOfDay{Hour: 15, Minute: 54}
	end := config.TimeOfDay{Hour: 15, Minute: 56}

	tests := []struct {
		name string
		now  time.Time
		want bool
	}{
		{"inside", time.Date(2025, 3, 10, 15, 55, 0, 0, loc), true},
		{"start boundary inclusive", time.Date(2025, 3, 10, 15, 54, 0, 0, loc), true},
		{"end boundary inclusive", time.Date(2025, 3, 10, 15, 56, 0, 0, loc), true},
		{"just before", time.Date(2025, 3, 10, 15, 53, 59, 0, loc), false},
		{"just after", time.Date(2025, 3, 10, 15, 56, 1, 0, loc), false},
		{"same wall clock, next day", time.Date(2025, 3, 11, 15, 55, 0, 0, loc), false},
		{"utc instant converted", time.Date(2025, 3, 10, 19, 55, 0, 0, time.UTC), true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := withinWindow(tt.now, "2025-03-10", start, end, loc)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestWithinWindowBadDate(t *testing.T) {
	loc, err := time.LoadLocation("America/New_York")
	require.NoError(t, err)
	_, err = withinWindow(time.Now(), "03/10/2025", config.TimeOfDay{}, config.TimeOfDay{}, loc)
	require.Error(t, err)
}
