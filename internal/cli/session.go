package cli

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/spf13/cobra"

	"github.com/sandeepkv93/tore/internal/logging"
	"github.com/sandeepkv93/tore/internal/storage"
	"github.com/sandeepkv93/tore/internal/tracker"
)

var errNoDatabase = errors.New("no database path configured; set TORE_DB or --db")

// session is one open, migrated database for the lifetime of a command.
type session struct {
	ctx     context.Context
	logger  *slog.Logger
	store   *storage.Store
	tracker *tracker.Tracker
	opts    *RootOptions
}

func openSession(cmd *cobra.Command, opts *RootOptions, op string) (*session, error) {
	ctx, logger := logging.NewRun(cmd.Context(), op)
	path := opts.Config.DBPath
	if path == "" {
		return nil, errNoDatabase
	}

	store, err := storage.OpenSQLite(path, opts.Config.BusyTimeoutMS, storage.WithClock(opts.deps.Now))
	if err != nil {
		return nil, err
	}
	migrations, err := storage.EmbeddedMigrations()
	if err != nil {
		_ = store.Close()
		return nil, err
	}
	ledger := storage.NewLedger(migrations,
		storage.WithTrace(opts.Config.TraceMigrations),
		storage.WithLedgerLogger(logger),
	)
	applied, err := store.Migrate(ctx, ledger)
	if err != nil {
		_ = store.Close()
		return nil, err
	}
	if applied > 0 {
		logger.DebugContext(ctx, "schema updated", logging.KeyCount, applied, logging.KeyPath, path)
	}

	return &session{
		ctx:     ctx,
		logger:  logger,
		store:   store,
		tracker: tracker.New(tracker.WithNotifier(opts.notifier()), tracker.WithLogger(logger)),
		opts:    opts,
	}, nil
}

func (s *session) Close() error {
	return s.store.Close()
}

// today is the caller's local calendar day.
func (s *session) today() time.Time {
	return s.opts.deps.Now().In(s.opts.deps.Location)
}

// inTx opens a session and runs fn in a single transaction.
func inTx(cmd *cobra.Command, opts *RootOptions, op string, fn func(s *session, tx *storage.Tx) error) error {
	s, err := openSession(cmd, opts, op)
	if err != nil {
		return err
	}
	defer s.Close()
	return s.run(fn)
}

func (s *session) run(fn func(s *session, tx *storage.Tx) error) error {
	err := s.store.WithTx(s.ctx, func(tx *storage.Tx) error { return fn(s, tx) })
	if err != nil {
		s.logger.DebugContext(s.ctx, "command failed", logging.KeyError, err)
	}
	return err
}
