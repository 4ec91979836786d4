package form

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"pgregory.net/rapid"
)

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func TestDeriveAge_BirthdayBoundaries(t *testing.T) {
	today := date(2025, 6, 15)

	tests := []struct {
		name string
		dob  time.Time
		want int
	}{
		{"birthday later this month", date(2010, 6, 20), 14},
		{"birthday earlier this month", date(2010, 6, 10), 15},
		{"birthday today", date(2010, 6, 15), 15},
		{"birthday next month", date(2010, 7, 1), 14},
		{"birthday last month", date(2010, 5, 31), 15},
		{"born today", date(2025, 6, 15), 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, DeriveAge(tt.dob, today))
		})
	}
}

func TestDeriveAge_LeapDay(t *testing.T) {
	dob := date(2012, 2, 29)
	assert.Equal(t, 12, DeriveAge(dob, date(2025, 2, 28)))
	assert.Equal(t, 13, DeriveAge(dob, date(2025, 3, 1)))
	assert.Equal(t, 12, DeriveAge(dob, date(2024, 2, 29)))
}

// Age is N-1 until the birth month/day is reached in the current year, N from
// then on.
func TestDeriveAge_Property(t *testing.T) {
	rapid.Check(t, func(r *rapid.T) {
		years := rapid.IntRange(0, 90).Draw(r, "years")
		today := date(rapid.IntRange(2000, 2100).Draw(r, "year"), time.Month(rapid.IntRange(1, 12).Draw(r, "month")), rapid.IntRange(1, 28).Draw(r, "day"))
		dob := date(today.Year()-years, time.Month(rapid.IntRange(1, 12).Draw(r, "dobMonth")), rapid.IntRange(1, 28).Draw(r, "dobDay"))

		got := DeriveAge(dob, today)

		reached := today.Month() > dob.Month() || (today.Month() == dob.Month() && today.Day() >= dob.Day())
		if reached && got != years {
			r.Fatalf("birthday reached: got %d want %d", got, years)
		}
		if !reached && got != years-1 {
			r.Fatalf("birthday pending: got %d want %d", got, years-1)
		}
	})
}
