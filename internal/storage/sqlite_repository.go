package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"net/url"
	"strings"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"github.com/sandeepkv93/tore/internal/model"
)

// sqliteTimeLayout matches CURRENT_TIMESTAMP so rows written by older builds
// and by this one sort and compare the same way.
const sqliteTimeLayout = "2006-01-02 15:04:05"

type Store struct {
	db   *sql.DB
	path string
	now  func() time.Time
}

type Option func(*Store)

// WithClock replaces time.Now for created_at, dismissed_at and finished_at.
func WithClock(now func() time.Time) Option {
	return func(s *Store) { s.now = now }
}

func NewStore(db *sql.DB, path string, opts ...Option) (*Store, error) {
	if db == nil {
		return nil, errors.New("storage: nil db")
	}
	s := &Store{db: db, path: path, now: time.Now}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

// OpenSQLite opens the database file with foreign keys on and a busy
// timeout, leaving lock arbitration between processes to sqlite itself.
func OpenSQLite(path string, busyTimeoutMS int, opts ...Option) (*Store, error) {
	params := url.Values{}
	params.Set("_foreign_keys", "on")
	params.Set("_busy_timeout", fmt.Sprint(busyTimeoutMS))
	db, err := sql.Open("sqlite3", fileURI(path)+"?"+params.Encode())
	if err != nil {
		return nil, storeErr("open sqlite", err)
	}
	// One connection: every command is a single transaction anyway.
	db.SetMaxOpenConns(1)
	if err := db.Ping(); err != nil {
		_ = db.Close()
		return nil, storeErr(fmt.Sprintf("open %s", path), err)
	}
	store, err := NewStore(db, path, opts...)
	if err != nil {
		_ = db.Close()
		return nil, err
	}
	return store, nil
}

// uriPathEscaper escapes the characters that end or alter the path part of
// a sqlite file: URI.
var uriPathEscaper = strings.NewReplacer("%", "%25", "?", "%3F", "#", "%23")

func fileURI(path string) string {
	return "file:" + uriPathEscaper.Replace(path)
}

func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) Path() string {
	return s.path
}

// SQLiteVersion reports the linked sqlite library version.
func (s *Store) SQLiteVersion(ctx context.Context) (string, error) {
	var v string
	if err := s.db.QueryRowContext(ctx, `SELECT sqlite_version()`).Scan(&v); err != nil {
		return "", storeErr("sqlite version", err)
	}
	return v, nil
}

// WithTx runs fn in one transaction. It commits when fn returns nil and
// rolls back on an error or a panic.
func (s *Store) WithTx(ctx context.Context, fn func(tx *Tx) error) (err error) {
	sqlTx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return storeErr("begin transaction", err)
	}
	defer func() {
		if p := recover(); p != nil {
			_ = sqlTx.Rollback()
			panic(p)
		}
		if err != nil {
			_ = sqlTx.Rollback()
		}
	}()

	if err = fn(&Tx{tx: sqlTx, path: s.path, now: s.now}); err != nil {
		return err
	}
	if err = sqlTx.Commit(); err != nil {
		return storeErr("commit transaction", err)
	}
	return nil
}

// Migrate applies the ledger in its own transaction.
func (s *Store) Migrate(ctx context.Context, ledger *Ledger) (int, error) {
	applied := 0
	err := s.WithTx(ctx, func(tx *Tx) error {
		n, err := ledger.Apply(ctx, tx)
		applied = n
		return err
	})
	if err != nil {
		return 0, err
	}
	return applied, nil
}

// Tx is the Repository bound to one open transaction.
type Tx struct {
	tx   *sql.Tx
	path string
	now  func() time.Time
}

var _ Repository = (*Tx)(nil)

func (t *Tx) timestamp() string {
	return mustTime(t.now())
}

func (t *Tx) CreateNotification(ctx context.Context, title string) (int64, error) {
	res, err := t.tx.ExecContext(ctx, `INSERT INTO Notifications (title, created_at) VALUES (?, ?)`, title, t.timestamp())
	if err != nil {
		return 0, storeErr("create notification", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, storeErr("create notification", err)
	}
	return id, nil
}

// LoadNotification returns ErrNotFound when no row has the id, dismissed or not.
func (t *Tx) LoadNotification(ctx context.Context, id int64) (model.Notification, error) {
	row := t.tx.QueryRowContext(ctx, `
		SELECT id, title, CAST(created_at AS TEXT), CAST(dismissed_at AS TEXT), reminder_id
		FROM Notifications WHERE id = ?`, id)
	n, err := scanNotification(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return model.Notification{}, ErrNotFound
		}
		return model.Notification{}, storeErr("load notification", err)
	}
	return n, nil
}

func (t *Tx) CreateReminder(ctx context.Context, title, scheduledAt string, period *model.Period) (int64, error) {
	var modifier any
	if period != nil {
		modifier = period.Modifier()
	}
	res, err := t.tx.ExecContext(ctx, `
		INSERT INTO Reminders (title, created_at, scheduled_at, period)
		VALUES (?, ?, ?, ?)`,
		title, t.timestamp(), scheduledAt, modifier,
	)
	if err != nil {
		return 0, storeErr("create reminder", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, storeErr("create reminder", err)
	}
	return id, nil
}

func (t *Tx) LoadReminder(ctx context.Context, id int64) (model.Reminder, error) {
	row := t.tx.QueryRowContext(ctx, `
		SELECT id, title, CAST(created_at AS TEXT), CAST(scheduled_at AS TEXT), period, CAST(finished_at AS TEXT)
		FROM Reminders WHERE id = ?`, id)
	r, err := scanReminder(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return model.Reminder{}, ErrNotFound
		}
		return model.Reminder{}, storeErr("load reminder", err)
	}
	return r, nil
}

// RemoveReminder finishes the reminder; rows are never deleted.
func (t *Tx) RemoveReminder(ctx context.Context, id int64) error {
	res, err := t.tx.ExecContext(ctx, `UPDATE Reminders SET finished_at = ? WHERE id = ? AND finished_at IS NULL`, t.timestamp(), id)
	if err != nil {
		return storeErr("remove reminder", err)
	}
	return checkRowsAffected(res)
}

// ListActiveReminders returns unfinished reminders, latest schedule first.
func (t *Tx) ListActiveReminders(ctx context.Context) ([]model.Reminder, error) {
	rows, err := t.tx.QueryContext(ctx, `
		SELECT id, title, CAST(created_at AS TEXT), CAST(scheduled_at AS TEXT), period, CAST(finished_at AS TEXT)
		FROM Reminders WHERE finished_at IS NULL
		ORDER BY scheduled_at DESC, id DESC`)
	if err != nil {
		return nil, storeErr("list reminders", err)
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
		return nil, storeErr("list reminders", err)
	}
	return out, nil
}

func mustTime(v time.Time) string {
	return v.UTC().Format(sqliteTimeLayout)
}

// parseRequiredTime accepts the CURRENT_TIMESTAMP layout and RFC 3339.
func parseRequiredTime(v string) (time.Time, error) {
	v = strings.TrimSpace(v)
	if tm, err := time.ParseInLocation(sqliteTimeLayout, v, time.UTC); err == nil {
		return tm, nil
	}
	return time.Parse(time.RFC3339Nano, v)
}

func parseNullableTime(v sql.NullString) (*time.Time, error) {
	if !v.Valid || v.String == "" {
		return nil, nil
	}
	tm, err := parseRequiredTime(v.String)
	if err != nil {
		return nil, err
	}
	return &tm, nil
}

func nullInt64(v sql.NullInt64) *int64 {
	if !v.Valid {
		return nil
	}
	out := v.Int64
	return &out
}

type scanner interface {
	Scan(dest ...any) error
}

func scanNotification(s scanner) (model.Notification, error) {
	var out model.Notification
	var created string
	var dismissed sql.NullString
	var reminderID sql.NullInt64
	if err := s.Scan(&out.ID, &out.Title, &created, &dismissed, &reminderID); err != nil {
		return model.Notification{}, err
	}
	createdAt, err := parseRequiredTime(created)
	if err != nil {
		return model.Notification{}, err
	}
	dismissedAt, err := parseNullableTime(dismissed)
	if err != nil {
		return model.Notification{}, err
	}
	out.CreatedAt = createdAt
	out.DismissedAt = dismissedAt
	out.ReminderID = nullInt64(reminderID)
	group, err := model.GroupOf(out.ID, out.ReminderID)
	if err != nil {
		return model.Notification{}, err
	}
	out.Group = group
	return out, nil
}

func scanReminder(s scanner) (model.Reminder, error) {
	var out model.Reminder
	var created string
	var period sql.NullString
	var finished sql.NullString
	if err := s.Scan(&out.ID, &out.Title, &created, &out.ScheduledAt, &period, &finished); err != nil {
		return model.Reminder{}, err
	}
	createdAt, err := parseRequiredTime(created)
	if err != nil {
		return model.Reminder{}, err
	}
	finishedAt, err := parseNullableTime(finished)
	if err != nil {
		return model.Reminder{}, err
	}
	if period.Valid {
		p, err := model.ParseModifier(period.String)
		if err != nil {
			return model.Reminder{}, err
		}
		out.Period = &p
	}
	out.CreatedAt = createdAt
	out.FinishedAt = finishedAt
	return out, nil
}

func checkRowsAffected(res sql.Result) error {
	affected, err := res.RowsAffected()
	if err != nil {
		return storeErr("rows affected", err)
	}
	if affected == 0 {
		return ErrNotFound
	}
	return nil
}
