package storage

import (
	"context"
	"time"

	"github.com/sandeepkv93/tore/internal/model"
)

// FireDue turns every active reminder scheduled on or before today into a
// notification, then finishes the one-shot reminders and advances the
// periodic ones by their period from the old scheduled_at.
//
// today is compared as a calendar day in its own location, so callers pass a
// local time. All three statements share the same due predicate and run in
// the caller's transaction, which makes each due reminder fire exactly once
// per call.
func (t *Tx) FireDue(ctx context.Context, today time.Time) (FireResult, error) {
	day := model.FormatDate(today)
	now := t.timestamp()

	due, err := t.dueReminders(ctx, day)
	if err != nil {
		return FireResult{}, err
	}
	result := FireResult{Fired: due}
	if len(due) == 0 {
		return result, nil
	}

	if _, err := t.tx.ExecContext(ctx, `
		INSERT INTO Notifications (title, created_at, reminder_id)
		SELECT title, ?, id FROM Reminders
		WHERE scheduled_at <= ? AND finished_at IS NULL
		ORDER BY id`, now, day); err != nil {
		return FireResult{}, storeErr("fire reminders", err)
	}

	res, err := t.tx.ExecContext(ctx, `
		UPDATE Reminders SET finished_at = ?
		WHERE scheduled_at <= ? AND finished_at IS NULL AND period IS NULL`, now, day)
	if err != nil {
		return FireResult{}, storeErr("finish reminders", err)
	}
	finished, err := res.RowsAffected()
	if err != nil {
		return FireResult{}, storeErr("finish reminders", err)
	}

	res, err = t.tx.ExecContext(ctx, `
		UPDATE Reminders SET scheduled_at = date(scheduled_at, period)
		WHERE scheduled_at <= ? AND finished_at IS NULL AND period IS NOT NULL`, day)
	if err != nil {
		return FireResult{}, storeErr("reschedule reminders", err)
	}
	rescheduled, err := res.RowsAffected()
	if err != nil {
		return FireResult{}, storeErr("reschedule reminders", err)
	}

	result.Finished = int(finished)
	result.Rescheduled = int(rescheduled)
	return result, nil
}

func (t *Tx) dueReminders(ctx context.Context, day string) ([]model.Reminder, error) {
	rows, err := t.tx.QueryContext(ctx, `
		SELECT id, title, CAST(created_at AS TEXT), CAST(scheduled_at AS TEXT), period, CAST(finished_at AS TEXT)
		FROM Reminders
		WHERE scheduled_at <= ? AND finished_at IS NULL
		ORDER BY id`, day)
	if err != nil {
		return nil, storeErr("load due reminders", err)
	}
	defer rows.Close()

	out := make([]model.Reminder, 0)
	for rows.Next() {
		r, scanErr := scanReminder(rows)
		if scanErr != nil {
			return nil, storeErr("scan reminder", scanErr)
		}
		out = append(out, r)
	}
	if err := rows.Err(); err != nil {
		return nil, storeErr("load due reminders", err)
	}
	return out, nil
}
