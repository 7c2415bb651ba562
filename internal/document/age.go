package document

import (
	"strconv"
	"time"
)

// AgeYears whole years between birth and now; the year only counts once the
// birthday (month and day) has been reached.
func AgeYears(birth, now time.Time) int {
	by, bm, bd := birth.Date()
	ny, nm, nd := now.Date()
	age := ny - by
	if nm < bm || (nm == bm && nd < bd) {
		age--
	}
	if age < 0 {
		return 0
	}
	return age
}

// Age label for a student: computed from the birth date when known, else the
// stored age, else "N/A".
func Age(birth *time.Time, stored *int, now time.Time) string {
	switch {
	case birth != nil && !birth.IsZero():
		return strconv.Itoa(AgeYears(*birth, now))
	case stored != nil:
		return strconv.Itoa(*stored)
	default:
		return "N/A"
	}
}
