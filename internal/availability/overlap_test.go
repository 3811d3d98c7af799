package availability

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func day(d int) time.Time {
	return time.Date(2026, 3, d, 0, 0, 0, 0, time.UTC)
}

func TestOverlaps(t *testing.T) {
	tests := []struct {
		name           string
		a1, a2, b1, b2 time.Time
		want           bool
	}{
		{"identical intervals", day(1), day(5), day(1), day(5), true},
		{"contained interval", day(1), day(10), day(3), day(5), true},
		{"partial overlap left", day(1), day(5), day(3), day(8), true},
		{"partial overlap right", day(3), day(8), day(1), day(5), true},
		{"disjoint", day(1), day(3), day(5), day(8), false},
		{"back to back, checkout equals checkin", day(1), day(5), day(5), day(8), false},
		{"back to back, reversed", day(5), day(8), day(1), day(5), false},
		{"one day apart", day(1), day(4), day(5), day(8), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Overlaps(tt.a1, tt.a2, tt.b1, tt.b2))
			// overlap is symmetric
			assert.Equal(t, tt.want, Overlaps(tt.b1, tt.b2, tt.a1, tt.a2))
		})
	}
}

func TestStayNights(t *testing.T) {
	assert.Equal(t, 1, StayNights(day(1), day(2)))
	assert.Equal(t, 4, StayNights(day(1), day(5)))
	assert.Equal(t, 0, StayNights(day(5), day(5)))
	assert.Equal(t, 0, StayNights(day(5), day(1)))

	// partial days round up
	in := time.Date(2026, 3, 1, 14, 0, 0, 0, time.UTC)
	out := time.Date(2026, 3, 2, 11, 0, 0, 0, time.UTC)
	assert.Equal(t, 1, StayNights(in, out))

	out = time.Date(2026, 3, 3, 11, 0, 0, 0, time.UTC)
	assert.Equal(t, 2, StayNights(in, out))
}
