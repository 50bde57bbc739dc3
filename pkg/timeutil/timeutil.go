// Package timeutil provides timezone-pinned helpers for session schedules.
// All schedule labels shown on session cards are rendered in the platform
// timezone (UTC+5, no DST) regardless of the device timezone, so that a
// session scheduled for "15:00" reads the same for both participants.
// No external dependencies - uses only standard library.
package timeutil

import (
	"time"
)

// PlatformTZ is the platform timezone (UTC+5, no DST).
var PlatformTZ = time.FixedZone("Asia/Almaty", 5*60*60)

// Now returns the current time in the platform timezone.
func Now() time.Time {
	return time.Now().In(PlatformTZ)
}

// ToPlatform converts a time to the platform timezone.
func ToPlatform(t time.Time) time.Time {
	return t.In(PlatformTZ)
}

// StartOfDay returns the start of the day (00:00:00) in the platform timezone.
func StartOfDay(t time.Time) time.Time {
	p := ToPlatform(t)
	return time.Date(p.Year(), p.Month(), p.Day(), 0, 0, 0, 0, PlatformTZ)
}

// SameDay reports whether two instants fall on the same platform-timezone day.
func SameDay(a, b time.Time) bool {
	pa, pb := ToPlatform(a), ToPlatform(b)
	return pa.Year() == pb.Year() && pa.YearDay() == pb.YearDay()
}

// DateLabel renders the schedule date for a session card: "Today",
// "Tomorrow", or "Mon, 2 Jan 2006".
func DateLabel(t, now time.Time) string {
	if SameDay(t, now) {
		return "Today"
	}
	if SameDay(t, now.AddDate(0, 0, 1)) {
		return "Tomorrow"
	}
	return ToPlatform(t).Format("Mon, 2 Jan 2006")
}

// TimeLabel renders the schedule time for a session card: "15:00".
func TimeLabel(t time.Time) string {
	return ToPlatform(t).Format("15:04")
}

// CombineDateTime builds a scheduled instant from a date-only value and a
// "HH:MM" clock string, both interpreted in the platform timezone.
func CombineDateTime(date time.Time, clock string) (time.Time, error) {
	parsed, err := time.Parse("15:04", clock)
	if err != nil {
		return time.Time{}, err
	}
	p := ToPlatform(date)
	return time.Date(p.Year(), p.Month(), p.Day(), parsed.Hour(), parsed.Minute(), 0, 0, PlatformTZ), nil
}
