package form

import (
	"strings"
	"time"
)

// DateLayout is the wire format for dates of birth.
const DateLayout = "2006-01-02"

// DeriveAge returns completed years between dob and today: the year
// difference, minus one while this year's birthday has not happened yet.
func DeriveAge(dob, today time.Time) int {
	age := today.Year() - dob.Year()
	if today.Month() < dob.Month() || (today.Month() == dob.Month() && today.Day() < dob.Day()) {
		age--
	}
	return age
}

func ParseDate(s string) (time.Time, error) {
	return time.Parse(DateLayout, strings.TrimSpace(s))
}
