package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseTimeOfDay(t *testing.T) {
	tests := []struct {
		input string
		want  TimeOfDay
	}{
		{"15:55", TimeOfDay{Hour: 15, Minute: 55}},
		{"09:30:15", TimeOfDay{Hour: 9, Minute: 30, Second: 15}},
		{"00:00", TimeOfDay{}},
		{"23:59:59", TimeOfDay{Hour: 23, Minute: 59, Second: 59}},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, err := ParseTimeOfDay(tt.input)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestParseTimeOfDayRejects(t *testing.T) {
	for _, input := range []string{"", "15", "15:55:00:00", "24:00", "15:60", "15:55:61", "a:b"} {
		t.Run(input, func(t *testing.T) {
			_, err := ParseTimeOfDay(input)
			require.Error(t, err)
		})
	}
}

func TestTimeOfDayOn(t *testing.T) {
	loc, err := time.LoadLocation("America/New_York")
	require.NoError(t, err)

	tod := TimeOfDay{Hour: 15, Minute: 55}
	got := tod.On(2025, time.March, 10, loc)
	assert.Equal(t, "2025-03-10T15:55:00-04:00", got.Format(time.RFC3339))
}

func TestTimeOfDayString(t *testing.T) {
	assert.Equal(t, "15:55:00", TimeOfDay{Hour: 15, Minute: 55}.String())
	assert.Equal(t, "09:05:07", TimeOfDay{Hour: 9, Minute: 5, Second: 7}.String())
}
