package cli

import (
	"bytes"
	"context"
	"database/sql"
	"io"
	"path/filepath"
	"strings"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	_ "github.com/mattn/go-sqlite3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sandeepkv93/tore/internal/model"
	"github.com/sandeepkv93/tore/internal/notify"
	"github.com/sandeepkv93/tore/internal/storage"
	"github.com/sandeepkv93/tore/internal/tracker"
	"github.com/sandeepkv93/tore/internal/update"
)

type recordingNotifier struct {
	sent []notify.Message
}

func (r *recordingNotifier) Send(_ context.Context, msg notify.Message) error {
	r.sent = append(r.sent, msg)
	return nil
}

type harness struct {
	t        *testing.T
	dir      string
	dbPath   string
	now      time.Time
	notifier *recordingNotifier
	viewer   func(ctx context.Context, m update.Model) error
}

func newHarness(t *testing.T) *harness {
	t.Helper()
	for _, name := range []string{"TORE_DB", "TORE_LOG_LEVEL", "TORE_LOG_JSON", "TORE_DESKTOP_NOTIFICATIONS", "TORE_BUSY_TIMEOUT_MS"} {
		t.Setenv(name, "")
	}
	dir := t.TempDir()
	return &harness{
		t:        t,
		dir:      dir,
		dbPath:   filepath.Join(dir, "tore.db"),
		now:      time.Date(2026, 10, 15, 9, 0, 0, 0, time.UTC),
		notifier: &recordingNotifier{},
	}
}

func (h *harness) deps() Deps {
	return Deps{
		Version: "test",
		Now: func() time.Time {
			h.now = h.now.Add(time.Minute)
			return h.now
		},
		Location:  time.UTC,
		Notifier:  h.notifier,
		RunViewer: h.viewer,
		LogOutput: io.Discard,
	}
}

func (h *harness) run(args ...string) (string, string, error) {
	h.t.Helper()
	cmd := NewRootCommand(h.deps())
	stdout := &bytes.Buffer{}
	stderr := &bytes.Buffer{}
	cmd.SetOut(stdout)
	cmd.SetErr(stderr)
	full := append([]string{}, args...)
	full = append(full, "--config", filepath.Join(h.dir, "missing.yaml"), "--db", h.dbPath)
	cmd.SetArgs(full)
	err := cmd.Execute()
	return stdout.String(), stderr.String(), err
}

func (h *harness) mustRun(args ...string) string {
	h.t.Helper()
	out, stderr, err := h.run(args...)
	require.NoError(h.t, err, "stderr: %s", stderr)
	return out
}

func lines(out string) []string {
	trimmed := strings.TrimSpace(out)
	if trimmed == "" {
		return nil
	}
	return strings.Split(trimmed, "\n")
}

func TestRootCommand(t *testing.T) {
	cmd := NewRootCommand(Deps{})
	require.NotNil(t, cmd)
	assert.Equal(t, "tore", cmd.Use)
	assert.Contains(t, cmd.Long, "checkout")
}

func TestCommandPresence(t *testing.T) {
	cmd := NewRootCommand(Deps{})
	names := []string{"checkout", "noti", "noti:new", "noti:dismiss", "noti:expand", "noti:show", "remi", "remi:new", "remi:dismiss", "view", "version"}

	for _, name := range names {
		t.Run(name, func(t *testing.T) {
			sub, _, err := cmd.Find([]string{name})
			require.NoError(t, err)
			require.NotNil(t, sub)
			assert.Equal(t, name, sub.Name())
		})
	}
}

func TestGlobalFlags(t *testing.T) {
	cmd := NewRootCommand(Deps{})
	for _, name := range []string{"config", "db", "log-level", "log-json", "trace-migrations"} {
		assert.NotNil(t, cmd.PersistentFlags().Lookup(name), name)
	}
}

func TestCheckoutIsDefaultAndFiresDueReminders(t *testing.T) {
	h := newHarness(t)

	h.mustRun("noti:new", "A")
	h.mustRun("noti:new", "B")
	h.mustRun("remi:new", "C", "2026-10-15")
	h.mustRun("remi:new", "later", "2026-12-01")

	got := lines(h.mustRun())
	require.Len(t, got, 3)
	assert.True(t, strings.HasPrefix(got[0], "0: A ("), got[0])
	assert.True(t, strings.HasPrefix(got[1], "1: B ("), got[1])
	assert.True(t, strings.HasPrefix(got[2], "2: C ("), got[2])

	require.Len(t, h.notifier.sent, 1)
	assert.Equal(t, "C", h.notifier.sent[0].Body)

	rem := lines(h.mustRun("remi"))
	require.Len(t, rem, 1)
	assert.Equal(t, "0: later (Scheduled at 2026-12-01)", rem[0])
}

func TestNotiListsWithoutFiring(t *testing.T) {
	h := newHarness(t)
	h.mustRun("remi:new", "due", "2026-10-01")

	assert.Empty(t, lines(h.mustRun("noti")))
	assert.Len(t, lines(h.mustRun("checkout")), 1)
}

func TestNotiNewJoinsTitleWords(t *testing.T) {
	h := newHarness(t)
	got := lines(h.mustRun("noti:new", "buy", "oat", "milk"))
	require.Len(t, got, 1)
	assert.True(t, strings.HasPrefix(got[0], "0: buy oat milk ("), got[0])
}

func TestNotiDismissWarnsAndReportsCount(t *testing.T) {
	h := newHarness(t)
	h.mustRun("noti:new", "A")
	h.mustRun("noti:new", "B")
	h.mustRun("noti:new", "C")

	out, stderr, err := h.run("noti:dismiss", "2", "9", "nope")
	require.NoError(t, err)
	assert.Contains(t, stderr, "WARNING: 9 is not a valid index of an active notification")
	assert.Contains(t, stderr, "WARNING: nope is not a valid index of an active notification")

	got := lines(out)
	require.Len(t, got, 3)
	assert.True(t, strings.HasPrefix(got[0], "0: A ("))
	assert.True(t, strings.HasPrefix(got[1], "1: B ("))
	assert.Equal(t, "Dismissed 1 notifications", got[2])
}

func TestNotiExpandShowsGroupMembers(t *testing.T) {
	h := newHarness(t)
	h.mustRun("remi:new", "stretch", "2026-10-13", "1d")
	h.mustRun("checkout")
	h.now = time.Date(2026, 10, 16, 9, 0, 0, 0, time.UTC)
	grouped := lines(h.mustRun("checkout"))
	require.Len(t, grouped, 1)
	assert.True(t, strings.HasPrefix(grouped[0], "0: [2] stretch ("), grouped[0])

	members := lines(h.mustRun("noti:expand", "0"))
	require.Len(t, members, 2)
	for _, line := range members {
		assert.True(t, strings.HasPrefix(line, "stretch ("), line)
	}

	_, _, err := h.run("noti:expand", "3")
	require.Error(t, err)
	assert.ErrorIs(t, err, tracker.ErrInvalidIndex)
}

func TestRemiNewValidatesInput(t *testing.T) {
	h := newHarness(t)

	_, _, err := h.run("remi:new", "x", "15/10/2026")
	assert.ErrorIs(t, err, model.ErrInvalidDate)

	_, stderr, err := h.run("remi:new", "x", "2026-10-20", "2q")
	assert.ErrorIs(t, err, model.ErrInvalidPeriodUnit)
	assert.Contains(t, stderr, "2w - means every 2 weeks")

	_, stderr, err = h.run("remi:new", "x", "2026-10-20", "weekly")
	assert.ErrorIs(t, err, model.ErrInvalidPeriod)
	assert.Contains(t, stderr, "Expected something like")

	_, _, err = h.run("remi:new", "x")
	assert.Error(t, err)

	assert.Empty(t, lines(h.mustRun("remi")))
}

func TestRemiNewShowsPeriod(t *testing.T) {
	h := newHarness(t)
	got := lines(h.mustRun("remi:new", "rent", "2026-11-01", "1m"))
	require.Len(t, got, 1)
	assert.Equal(t, "0: rent (Scheduled at 2026-11-01 every 1 month)", got[0])

	assert.Equal(t, got, lines(h.mustRun("remi:new")))
}

func TestRemiDismissByIndex(t *testing.T) {
	h := newHarness(t)
	h.mustRun("remi:new", "soon", "2026-10-20")
	h.mustRun("remi:new", "later", "2026-12-20")

	got := lines(h.mustRun("remi:dismiss", "0"))
	require.Len(t, got, 1)
	assert.Equal(t, "0: soon (Scheduled at 2026-10-20)", got[0])

	_, _, err := h.run("remi:dismiss", "4")
	assert.ErrorIs(t, err, tracker.ErrInvalidIndex)
}

func TestVersionPrintsSQLiteVersion(t *testing.T) {
	h := newHarness(t)
	out := h.mustRun("version")
	assert.Contains(t, out, "tore version:    test")
	assert.Contains(t, out, "sqlite version:  3.")
}

func TestSchemaDriftStopsCommands(t *testing.T) {
	h := newHarness(t)
	h.mustRun("noti")

	db, err := sql.Open("sqlite3", h.dbPath)
	require.NoError(t, err)
	_, err = db.Exec(`UPDATE Migrations SET query = 'CREATE TABLE Other (x);' WHERE rowid = 2`)
	require.NoError(t, err)
	require.NoError(t, db.Close())

	_, _, err = h.run("noti:new", "should not land")
	require.Error(t, err)
	assert.ErrorIs(t, err, storage.ErrSchemaDrift)
	assert.Contains(t, err.Error(), "mismatch in migration 1")
}

func TestDatabasePathFromEnvironment(t *testing.T) {
	h := newHarness(t)
	envPath := filepath.Join(h.dir, "from-env.db")
	t.Setenv("TORE_DB", envPath)

	cmd := NewRootCommand(h.deps())
	cmd.SetOut(io.Discard)
	cmd.SetArgs([]string{"noti:new", "env", "--config", filepath.Join(h.dir, "missing.yaml")})
	require.NoError(t, cmd.Execute())

	db, err := sql.Open("sqlite3", envPath)
	require.NoError(t, err)
	defer db.Close()
	var n int
	require.NoError(t, db.QueryRow(`SELECT count(*) FROM Notifications`).Scan(&n))
	assert.Equal(t, 1, n)
}

func TestViewRunsViewerAgainstStore(t *testing.T) {
	h := newHarness(t)
	h.mustRun("noti:new", "A")
	h.mustRun("remi:new", "due", "2026-10-15")

	var snap update.SnapshotMsg
	h.viewer = func(ctx context.Context, m update.Model) error {
		msg := m.Init()()
		var ok bool
		snap, ok = msg.(update.SnapshotMsg)
		require.True(t, ok)
		return nil
	}
	h.mustRun("view")

	require.NoError(t, snap.Err)
	require.Len(t, snap.Snapshot.Groups, 2)
	assert.Equal(t, "A", snap.Snapshot.Groups[0].Title)
	assert.Equal(t, "due", snap.Snapshot.Groups[1].Title)
	require.Len(t, snap.Snapshot.Fired, 1)
	require.Len(t, h.notifier.sent, 1)
}

func TestViewActsOnTheEntryOnScreen(t *testing.T) {
	h := newHarness(t)
	h.mustRun("noti:new", "A")
	h.mustRun("noti:new", "B")
	h.mustRun("noti:new", "C")

	var final update.Model
	h.viewer = func(ctx context.Context, m update.Model) error {
		next, _ := m.Update(m.Init()())
		m = next.(update.Model)
		require.Len(t, m.Groups, 3)

		// A second invocation dismisses A while the viewer still shows it
		// under the cursor.
		h.mustRun("noti:dismiss", "0")

		next, _ = m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'d'}})
		final = next.(update.Model)
		return nil
	}
	h.mustRun("view")

	assert.Contains(t, final.Status.Text, "dismissed 0 notification(s)")
	require.Len(t, final.Groups, 2)
	assert.Equal(t, "B", final.Groups[0].Title)
	assert.Equal(t, "C", final.Groups[1].Title)

	got := lines(h.mustRun("noti"))
	require.Len(t, got, 2)
	assert.True(t, strings.HasPrefix(got[0], "0: B ("), got[0])
	assert.True(t, strings.HasPrefix(got[1], "1: C ("), got[1])
}

func TestNotiShowDistinguishesMissingFromFailure(t *testing.T) {
	h := newHarness(t)
	h.mustRun("noti:new", "water", "plants")
	h.mustRun("noti:dismiss", "0")

	got := lines(h.mustRun("noti:show", "1"))
	require.Len(t, got, 4)
	assert.Equal(t, "1: water plants", got[0])
	assert.True(t, strings.HasPrefix(got[2], "  dismissed: 2026-10-15 "), got[2])
	assert.Equal(t, "  source:    added manually", got[3])

	_, _, err := h.run("noti:show", "42")
	require.Error(t, err)
	assert.ErrorIs(t, err, storage.ErrNotFound)
	assert.NotErrorIs(t, err, storage.ErrStore)
	assert.Contains(t, err.Error(), "no such notification 42")

	db, err := sql.Open("sqlite3", h.dbPath)
	require.NoError(t, err)
	_, err = db.Exec(`DROP TABLE Notifications`)
	require.NoError(t, err)
	require.NoError(t, db.Close())

	_, _, err = h.run("noti:show", "1")
	require.Error(t, err)
	assert.ErrorIs(t, err, storage.ErrStore)
	assert.NotErrorIs(t, err, storage.ErrNotFound)
}

func TestRemiNewRejectsPeriodsOutsideTheCalendar(t *testing.T) {
	h := newHarness(t)

	for _, period := range []string{"100000000y", "1317624576693539402w", "8000y"} {
		_, _, err := h.run("remi:new", "far", "2026-10-01", period)
		assert.ErrorIs(t, err, model.ErrInvalidPeriod, period)
	}
	assert.Empty(t, lines(h.mustRun("remi")))

	h.mustRun("remi:new", "due", "2026-10-01", "1y")
	h.mustRun("checkout")
	h.mustRun("checkout")
}
