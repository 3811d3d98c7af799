package availability

import "time"

// Overlaps reports whether the half-open intervals [a1,a2) and [b1,b2) intersect.
// Touching endpoints do not overlap: a checkout morning and a new check-in on the
// same day are allowed.
func Overlaps(a1, a2, b1, b2 time.Time) bool {
	return a1.Before(b2) && a2.After(b1)
}

// StayNights returns the number of nights between check-in and check-out,
// rounding partial days up. Non-positive intervals yield 0.
func StayNights(checkIn, checkOut time.Time) int {
	d := checkOut.Sub(checkIn)
	if d <= 0 {
		return 0
	}
	nights := int(d / (24 * time.Hour))
	if d%(24*time.Hour) != 0 {
		nights++
	}
	return nights
}
