package model

import (
	"errors"
	"strings"
	"time"
)

var ErrEmptyTitle = errors.New("model: title is required")

type Reminder struct {
	ID          int64
	Title       string
	CreatedAt   time.Time
	ScheduledAt string
	Period      *Period
	FinishedAt  *time.Time
}

func (r Reminder) IsFinished() bool {
	return r.FinishedAt != nil
}

func (r Reminder) IsPeriodic() bool {
	return r.Period != nil
}

// ValidateTitle rejects blank titles.
func ValidateTitle(title string) error {
	if strings.TrimSpace(title) == "" {
		return &ValidationError{Field: "title", Value: title, Err: ErrEmptyTitle}
	}
	return nil
}
