package storage

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/sandeepkv93/tore/internal/model"
)

// groupExpr is the sql form of model.GroupOf.
const groupExpr = `ifnull(reminder_id, -id)`

// ListActive returns one row per group of undismissed notifications. The
// representative is the group's lowest id; groups are ordered by its
// created_at, then by that id.
func (t *Tx) ListActive(ctx context.Context) ([]model.GroupedNotification, error) {
	rows, err := t.tx.QueryContext(ctx, `
		SELECT min(id) AS rep_id, title, CAST(created_at AS TEXT), reminder_id, `+groupExpr+` AS group_id, count(*)
		FROM Notifications
		WHERE dismissed_at IS NULL
		GROUP BY group_id
		ORDER BY created_at, rep_id`)
	if err != nil {
		return nil, storeErr("list active notifications", err)
	}
	defer rows.Close()

	out := make([]model.GroupedNotification, 0)
	for rows.Next() {
		var (
			g       model.GroupedNotification
			created string
			group   int64
		)
		var reminderID sql.NullInt64
		if err := rows.Scan(&g.ID, &g.Title, &created, &reminderID, &group, &g.Count); err != nil {
			return nil, storeErr("scan grouped notification", err)
		}
		createdAt, err := parseRequiredTime(created)
		if err != nil {
			return nil, storeErr("scan grouped notification", err)
		}
		g.CreatedAt = createdAt
		g.ReminderID = nullInt64(reminderID)
		derived, err := model.GroupOf(g.ID, g.ReminderID)
		if err != nil {
			return nil, storeErr("scan grouped notification", err)
		}
		if int64(derived) != group {
			return nil, storeErr("scan grouped notification", fmt.Errorf("group %d does not match derived %s", group, derived))
		}
		g.Group = derived
		out = append(out, g)
	}
	if err := rows.Err(); err != nil {
		return nil, storeErr("list active notifications", err)
	}
	return out, nil
}

// ExpandGroup returns every undismissed notification of group, oldest first.
func (t *Tx) ExpandGroup(ctx context.Context, group model.GroupID) ([]model.Notification, error) {
	rows, err := t.tx.QueryContext(ctx, `
		SELECT id, title, CAST(created_at AS TEXT), CAST(dismissed_at AS TEXT), reminder_id
		FROM Notifications
		WHERE dismissed_at IS NULL AND `+groupExpr+` = ?
		ORDER BY created_at, id`, int64(group))
	if err != nil {
		return nil, storeErr("expand group", err)
	}
	defer rows.Close()

	out := make([]model.Notification, 0)
	for rows.Next() {
		n, scanErr := scanNotification(rows)
		if scanErr != nil {
			return nil, storeErr("scan notification", scanErr)
		}
		out = append(out, n)
	}
	if err := rows.Err(); err != nil {
		return nil, storeErr("expand group", err)
	}
	return out, nil
}

// DismissGroup dismisses the whole group in one statement and returns how
// many rows changed. A group that is already gone yields zero, not an error.
func (t *Tx) DismissGroup(ctx context.Context, group model.GroupID) (int, error) {
	res, err := t.tx.ExecContext(ctx, `
		UPDATE Notifications SET dismissed_at = ?
		WHERE dismissed_at IS NULL AND `+groupExpr+` = ?`, t.timestamp(), int64(group))
	if err != nil {
		return 0, storeErr("dismiss group", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return 0, storeErr("dismiss group", err)
	}
	return int(affected), nil
}
