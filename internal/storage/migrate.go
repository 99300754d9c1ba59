package storage

import (
	"context"
	"embed"
	"fmt"
	"io/fs"
	"log/slog"
	"path"
	"sort"

	"github.com/sandeepkv93/tore/internal/logging"
)

//go:embed migrations/*.sql
var migrationFiles embed.FS

const createLedgerSQL = `CREATE TABLE IF NOT EXISTS Migrations (
    applied_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
    query TEXT NOT NULL
);`

// Migration is one forward schema step. Query is compared byte for byte
// against the ledger, so its text must never change once released.
type Migration struct {
	Name  string
	Query string
}

// EmbeddedMigrations returns the migrations shipped with the binary in
// file-name order.
func EmbeddedMigrations() ([]Migration, error) {
	entries, err := fs.Glob(migrationFiles, "migrations/*.sql")
	if err != nil {
		return nil, fmt.Errorf("glob migrations: %w", err)
	}
	sort.Strings(entries)
	out := make([]Migration, 0, len(entries))
	for _, name := range entries {
		sqlBytes, readErr := migrationFiles.ReadFile(name)
		if readErr != nil {
			return nil, fmt.Errorf("read migration %s: %w", name, readErr)
		}
		out = append(out, Migration{Name: path.Base(name), Query: string(sqlBytes)})
	}
	return out, nil
}

// Ledger verifies and extends the Migrations table against a fixed list.
type Ledger struct {
	migrations []Migration
	trace      bool
	logger     *slog.Logger
}

type LedgerOption func(*Ledger)

// WithTrace logs the full text of each migration as it is applied.
func WithTrace(on bool) LedgerOption {
	return func(l *Ledger) { l.trace = on }
}

func WithLedgerLogger(logger *slog.Logger) LedgerOption {
	return func(l *Ledger) { l.logger = logger }
}

func NewLedger(migrations []Migration, opts ...LedgerOption) *Ledger {
	l := &Ledger{
		migrations: append([]Migration(nil), migrations...),
		logger:     logging.Logger(),
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// Apply brings the schema up to date inside tx and returns how many
// migrations ran. Any failure leaves the caller to roll back tx, so either
// every pending migration lands or none does.
func (l *Ledger) Apply(ctx context.Context, tx *Tx) (int, error) {
	if _, err := tx.tx.ExecContext(ctx, createLedgerSQL); err != nil {
		return 0, storeErr("create migrations table", err)
	}

	applied, err := l.appliedQueries(ctx, tx)
	if err != nil {
		return 0, err
	}
	for i, query := range applied {
		if i >= len(l.migrations) {
			return 0, &SchemaDriftError{Path: tx.path, Index: i, Found: query, TooNew: true}
		}
		if query != l.migrations[i].Query {
			return 0, &SchemaDriftError{Path: tx.path, Index: i, Expected: l.migrations[i].Query, Found: query}
		}
	}

	count := 0
	for i := len(applied); i < len(l.migrations); i++ {
		m := l.migrations[i]
		logger := l.logger.With(logging.KeyMigration, i, logging.KeyPath, tx.path)
		logger.InfoContext(ctx, "applying migration", "name", m.Name)
		if l.trace {
			logger.InfoContext(ctx, "migration query", "query", m.Query)
		}
		if _, err := tx.tx.ExecContext(ctx, m.Query); err != nil {
			return 0, storeErr(fmt.Sprintf("apply migration %d (%s)", i, m.Name), err)
		}
		if _, err := tx.tx.ExecContext(ctx, `INSERT INTO Migrations (query) VALUES (?)`, m.Query); err != nil {
			return 0, storeErr(fmt.Sprintf("record migration %d", i), err)
		}
		count++
	}
	return count, nil
}

func (l *Ledger) appliedQueries(ctx context.Context, tx *Tx) ([]string, error) {
	rows, err := tx.tx.QueryContext(ctx, `SELECT query FROM Migrations ORDER BY rowid`)
	if err != nil {
		return nil, storeErr("load migrations", err)
	}
	defer rows.Close()

	out := make([]string, 0)
	for rows.Next() {
		var query string
		if err := rows.Scan(&query); err != nil {
			return nil, storeErr("scan migration", err)
		}
		out = append(out, query)
	}
	if err := rows.Err(); err != nil {
		return nil, storeErr("load migrations", err)
	}
	return out, nil
}
