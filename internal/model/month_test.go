package model

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestMonthOf(t *testing.T) {
	ist := time.FixedZone("IST", 5*3600+1800)

	tests := []struct {
		name string
		in   time.Time
		want time.Time
	}{
		{
			name: "mid month",
			in:   time.Date(2024, 6, 15, 10, 0, 0, 0, time.UTC),
			want: time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC),
		},
		{
			name: "wall clock kept across zones",
			in:   time.Date(2024, 7, 1, 1, 0, 0, 0, ist),
			want: time.Date(2024, 7, 1, 0, 0, 0, 0, time.UTC),
		},
		{
			name: "year end",
			in:   time.Date(2023, 12, 31, 23, 59, 59, 0, time.UTC),
			want: time.Date(2023, 12, 1, 0, 0, 0, 0, time.UTC),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, MonthOf(tt.in))
		})
	}
}

func TestDaysInMonth(t *testing.T) {
	tests := []struct {
		month time.Time
		want  int
	}{
		{month: time.Date(2024, 2, 10, 0, 0, 0, 0, time.UTC), want: 29},
		{month: time.Date(2023, 2, 10, 0, 0, 0, 0, time.UTC), want: 28},
		{month: time.Date(2024, 6, 30, 0, 0, 0, 0, time.UTC), want: 30},
		{month: time.Date(2024, 12, 1, 0, 0, 0, 0, time.UTC), want: 31},
	}

	for _, tt := range tests {
		t.Run(tt.month.Format(MonthLayout), func(t *testing.T) {
			assert.Equal(t, tt.want, DaysInMonth(tt.month))
		})
	}
}

func TestSameMonth(t *testing.T) {
	a := time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC)
	assert.True(t, SameMonth(a, time.Date(2024, 5, 31, 23, 0, 0, 0, time.UTC)))
	assert.False(t, SameMonth(a, time.Date(2023, 5, 1, 0, 0, 0, 0, time.UTC)))
	assert.False(t, SameMonth(a, time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC)))
}
