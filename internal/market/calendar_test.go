package market

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNYSECalendarIsTradingDay(t *testing.T) {
	tests := []struct {
		name string
		date string
		want bool
	}{
		{"ordinary monday", "2025-03-10", true},
		{"ordinary friday", "2025-03-14", true},
		{"saturday", "2025-03-15", false},
		{"sunday", "2025-03-16", false},
		{"independence day", "2025-07-04", false},
		{"christmas", "2025-12-25", false},
		{"thanksgiving", "2025-11-27", false},
		{"day after thanksgiving half day trades", "2025-11-28", true},
		{"good friday 2026", "2026-04-03", false},
	}

	cal := NYSECalendar{}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := cal.IsTradingDay(tt.date)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestNYSECalendarIsTradingDayBadDate(t *testing.T) {
	_, err := NYSECalendar{}.IsTradingDay("10/03/2025")
	require.Error(t, err)
}

func TestNYSECalendarPreviousTradingDay(t *testing.T) {
	tests := []struct {
		name string
		date string
		want string
	}{
		{"midweek", "2025-03-12", "2025-03-11"},
		{"monday skips weekend", "2025-03-10", "2025-03-07"},
		{"skips holiday and weekend", "2025-07-07", "2025-07-03"},
		{"skips christmas", "2025-12-26", "2025-12-24"},
	}

	cal := NYSECalendar{}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := cal.PreviousTradingDay(tt.date)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}
