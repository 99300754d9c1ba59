package storage

import (
	"context"
	"errors"
	"fmt"
	"runtime"
	"time"

	"github.com/sandeepkv93/tore/internal/model"
)

var (
	ErrNotFound    = errors.New("storage: not found")
	ErrStore       = errors.New("storage: store failure")
	ErrSchemaDrift = errors.New("storage: unsupported database schema")
)

// Repository is the domain surface available inside one transaction.
type Repository interface {
	CreateNotification(ctx context.Context, title string) (int64, error)
	LoadNotification(ctx context.Context, id int64) (model.Notification, error)
	ListActive(ctx context.Context) ([]model.GroupedNotification, error)
	ExpandGroup(ctx context.Context, group model.GroupID) ([]model.Notification, error)
	DismissGroup(ctx context.Context, group model.GroupID) (int, error)

	CreateReminder(ctx context.Context, title, scheduledAt string, period *model.Period) (int64, error)
	LoadReminder(ctx context.Context, id int64) (model.Reminder, error)
	RemoveReminder(ctx context.Context, id int64) error
	ListActiveReminders(ctx context.Context) ([]model.Reminder, error)

	FireDue(ctx context.Context, today time.Time) (FireResult, error)
}

// FireResult describes one FireDue pass.
type FireResult struct {
	// Fired holds the reminders as they were before the pass.
	Fired       []model.Reminder
	Finished    int
	Rescheduled int
}

// StoreError wraps a failure reported by the sqlite engine together with the
// operation and source location that observed it.
type StoreError struct {
	Op   string
	File string
	Line int
	Err  error
}

func (e *StoreError) Error() string {
	return fmt.Sprintf("%s:%d: %s: %v", e.File, e.Line, e.Op, e.Err)
}

func (e *StoreError) Unwrap() []error {
	return []error{ErrStore, e.Err}
}

func storeErr(op string, err error) error {
	if err == nil {
		return nil
	}
	_, file, line, _ := runtime.Caller(1)
	return &StoreError{Op: op, File: file, Line: line, Err: err}
}

// SchemaDriftError means the Migrations table is not a prefix of the
// compiled-in migration list.
type SchemaDriftError struct {
	Path     string
	Index    int
	Expected string
	Found    string
	// TooNew is set when the database has more migrations than this binary knows.
	TooNew bool
}

func (e *SchemaDriftError) Error() string {
	if e.TooNew {
		return fmt.Sprintf("%s: database schema is too new: migration %d is unknown to this build, update the application", e.Path, e.Index)
	}
	return fmt.Sprintf("%s: invalid database schema: mismatch in migration %d:\nEXPECTED: %s\nFOUND: %s", e.Path, e.Index, e.Expected, e.Found)
}

func (e *SchemaDriftError) Unwrap() error {
	return ErrSchemaDrift
}
