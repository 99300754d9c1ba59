package model

import (
	"errors"
	"time"
)

// DateLayout is the shape of Reminders.scheduled_at.
const DateLayout = "2006-01-02"

var ErrInvalidDate = errors.New("model: date must look like YYYY-MM-DD")

// ValidateDate checks the dddd-dd-dd shape only. Calendar validity is left
// to the store, so "2026-13-40" passes.
func ValidateDate(s string) error {
	const shape = "dddd-dd-dd"
	if len(s) != len(shape) {
		return &ValidationError{Field: "scheduled_at", Value: s, Err: ErrInvalidDate}
	}
	for i := 0; i < len(shape); i++ {
		c := s[i]
		switch shape[i] {
		case 'd':
			if c < '0' || c > '9' {
				return &ValidationError{Field: "scheduled_at", Value: s, Err: ErrInvalidDate}
			}
		case '-':
			if c != '-' {
				return &ValidationError{Field: "scheduled_at", Value: s, Err: ErrInvalidDate}
			}
		}
	}
	return nil
}

// FormatDate renders the calendar day of t in t's own location.
func FormatDate(t time.Time) string {
	return t.Format(DateLayout)
}
