package domain

import (
	"strings"
	"time"
)

const DateLayout = "2006-01-02"

// DateOnly truncates t to midnight UTC of its calendar day.
func DateOnly(t time.Time) time.Time {
	y, m, d := t.UTC().Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func DatePtr(t *time.Time) *time.Time {
	if t == nil {
		return nil
	}
	d := DateOnly(*t)
	return &d
}

func ParseDate(s string) (time.Time, error) {
	t, err := time.Parse(DateLayout, strings.TrimSpace(s))
	if err != nil {
		return time.Time{}, InvalidInputf("invalid date %q", s)
	}
	return t, nil
}

func FormatDate(t *time.Time) string {
	if t == nil {
		return "open"
	}
	return t.Format(DateLayout)
}
