package model

import (
	"errors"
	"fmt"
)

var ErrInvalidIdentity = errors.New("model: row identifiers must be positive")

// GroupID identifies a set of undismissed notifications shown as one entry.
//
// Notifications fired by a reminder share the reminder's id; ad hoc
// notifications form a group of their own keyed by their negated id. The two
// encodings cannot collide only while both id sequences stay >= 1, which
// GroupOf enforces. This is the same value as ifnull(reminder_id, -id).
type GroupID int64

func ReminderGroup(reminderID int64) GroupID { return GroupID(reminderID) }

func AdHocGroup(notificationID int64) GroupID { return GroupID(-notificationID) }

// GroupOf derives the group of a notification row.
func GroupOf(notificationID int64, reminderID *int64) (GroupID, error) {
	if notificationID < 1 {
		return 0, fmt.Errorf("%w: notification id %d", ErrInvalidIdentity, notificationID)
	}
	if reminderID == nil {
		return AdHocGroup(notificationID), nil
	}
	if *reminderID < 1 {
		return 0, fmt.Errorf("%w: reminder id %d", ErrInvalidIdentity, *reminderID)
	}
	return ReminderGroup(*reminderID), nil
}

// ReminderID returns the reminder behind a reminder group.
func (g GroupID) ReminderID() (int64, bool) {
	if g > 0 {
		return int64(g), true
	}
	return 0, false
}

// NotificationID returns the single notification of an ad hoc group.
func (g GroupID) NotificationID() (int64, bool) {
	if g < 0 {
		return int64(-g), true
	}
	return 0, false
}

func (g GroupID) String() string {
	if id, ok := g.ReminderID(); ok {
		return fmt.Sprintf("reminder:%d", id)
	}
	if id, ok := g.NotificationID(); ok {
		return fmt.Sprintf("notification:%d", id)
	}
	return "invalid"
}
