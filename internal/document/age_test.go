package document

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func TestAgeYears_BirthdayBoundary(t *testing.T) {
	birth := date(1990, time.May, 10)
	assert.Equal(t, 33, AgeYears(birth, date(2024, time.May, 9)))
	assert.Equal(t, 34, AgeYears(birth, date(2024, time.May, 10)))
	assert.Equal(t, 34, AgeYears(birth, date(2024, time.December, 31)))
}

func TestAgeYears_LeapDay(t *testing.T) {
	birth := date(2008, time.February, 29)
	assert.Equal(t, 14, AgeYears(birth, date(2023, time.February, 28)))
	assert.Equal(t, 15, AgeYears(birth, date(2023, time.March, 1)))
}

func TestAge_Fallbacks(t *testing.T) {
	now := date(2024, time.May, 10)
	birth := date(1990, time.May, 10)
	stored := 17

	assert.Equal(t, "34", Age(&birth, &stored, now), "birth date wins over stored age")
	assert.Equal(t, "17", Age(nil, &stored, now))
	assert.Equal(t, "N/A", Age(nil, nil, now))

	zero := time.Time{}
	assert.Equal(t, "17", Age(&zero, &stored, now))
}
