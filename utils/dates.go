package utils

import "time"

// Age returns the number of whole years between birthDate and now.
// It is a pure function: the same inputs always produce the same age, which is
// what lets the derived age column be recomputed on every write.
func Age(birthDate, now time.Time) int {
	years := now.Year() - birthDate.Year()
	if now.Month() < birthDate.Month() ||
		(now.Month() == birthDate.Month() && now.Day() < birthDate.Day()) {
		years--
	}
	return years
}

// BeginningOfDay truncates a time to midnight in its own location
func BeginningOfDay(t time.Time) time.Time {
	year, month, day := t.Date()
	return time.Date(year, month, day, 0, 0, 0, 0, t.Location())
}
