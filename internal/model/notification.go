package model

import "time"

type Notification struct {
	ID          int64
	Title       string
	CreatedAt   time.Time
	DismissedAt *time.Time
	ReminderID  *int64
	Group       GroupID
}

func (n Notification) IsDismissed() bool {
	return n.DismissedAt != nil
}

// GroupedNotification is one row of the active listing: a representative
// notification plus the number of undismissed notifications in its group.
type GroupedNotification struct {
	Notification
	Count int
}
