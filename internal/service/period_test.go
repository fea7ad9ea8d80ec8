package service

import (
	"testing"
	"time"
)

func TestAddCalendarMonth(t *testing.T) {
	tests := []struct {
		name string
		in   time.Time
		want time.Time
	}{
		{
			name: "mid month",
			in:   time.Date(2025, 3, 15, 10, 30, 0, 0, time.UTC),
			want: time.Date(2025, 4, 15, 10, 30, 0, 0, time.UTC),
		},
		{
			name: "jan 31 clamps to feb 28",
			in:   time.Date(2025, 1, 31, 0, 0, 0, 0, time.UTC),
			want: time.Date(2025, 2, 28, 0, 0, 0, 0, time.UTC),
		},
		{
			name: "jan 31 leap year clamps to feb 29",
			in:   time.Date(2024, 1, 31, 0, 0, 0, 0, time.UTC),
			want: time.Date(2024, 2, 29, 0, 0, 0, 0, time.UTC),
		},
		{
			name: "mar 31 clamps to apr 30",
			in:   time.Date(2025, 3, 31, 23, 59, 59, 0, time.UTC),
			want: time.Date(2025, 4, 30, 23, 59, 59, 0, time.UTC),
		},
		{
			name: "dec crosses year boundary",
			in:   time.Date(2025, 12, 15, 0, 0, 0, 0, time.UTC),
			want: time.Date(2026, 1, 15, 0, 0, 0, 0, time.UTC),
		},
		{
			name: "non-utc input normalized to utc",
			in:   time.Date(2025, 5, 10, 12, 0, 0, 0, time.FixedZone("UTC+7", 7*3600)),
			want: time.Date(2025, 6, 10, 5, 0, 0, 0, time.UTC),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := addCalendarMonth(tt.in)
			if !got.Equal(tt.want) {
				t.Errorf("addCalendarMonth(%v) = %v, want %v", tt.in, got, tt.want)
			}
		})
	}
}
