package cli

import (
	"context"
	"time"

	"github.com/spf13/cobra"

	"github.com/sandeepkv93/tore/internal/model"
	"github.com/sandeepkv93/tore/internal/storage"
	"github.com/sandeepkv93/tore/internal/tracker"
	"github.com/sandeepkv93/tore/internal/update"
)

func NewViewCommand(opts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "view",
		Short: "Browse and dismiss Notifications interactively",
		Long: `Open the interactive viewer.

Due Reminders are fired when it starts. Every action runs in its own
transaction against the entry shown on screen, so a Notification dismissed
meanwhile by another tore invocation is reported instead of shifting the
selection onto its neighbour.`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := openSession(cmd, opts, "view")
			if err != nil {
				return err
			}
			defer s.Close()

			m := update.NewModel(&storeBackend{session: s, today: s.today},
				update.WithContext(s.ctx),
				update.WithLocation(opts.deps.Location),
			)
			return opts.deps.RunViewer(s.ctx, m)
		},
	}
}

// storeBackend serves the viewer from an open session.
type storeBackend struct {
	session *session
	today   func() time.Time
}

var _ update.Backend = (*storeBackend)(nil)

func (b *storeBackend) Snapshot(ctx context.Context, fire bool) (update.Snapshot, error) {
	var snap update.Snapshot
	err := b.session.store.WithTx(ctx, func(tx *storage.Tx) error {
		if fire {
			res, err := b.session.tracker.Checkout(ctx, tx, b.today())
			if err != nil {
				return err
			}
			snap.Fired = res.Fired.Fired
			snap.Groups = res.Active
		} else {
			groups, err := tx.ListActive(ctx)
			if err != nil {
				return err
			}
			snap.Groups = groups
		}
		reminders, err := tx.ListActiveReminders(ctx)
		if err != nil {
			return err
		}
		snap.Reminders = reminders
		return nil
	})
	if err != nil {
		return update.Snapshot{}, err
	}
	b.session.tracker.Announce(ctx, snap.Fired)
	return snap, nil
}

func (b *storeBackend) AddNotification(ctx context.Context, title string) error {
	return b.session.store.WithTx(ctx, func(tx *storage.Tx) error {
		_, err := b.session.tracker.AddNotification(ctx, tx, []string{title})
		return err
	})
}

func (b *storeBackend) Dismiss(ctx context.Context, groups []model.GroupID) (tracker.DismissReport, error) {
	var report tracker.DismissReport
	err := b.session.store.WithTx(ctx, func(tx *storage.Tx) error {
		var err error
		report, err = b.session.tracker.DismissGroups(ctx, tx, groups)
		return err
	})
	return report, err
}

func (b *storeBackend) Expand(ctx context.Context, group model.GroupID) ([]model.Notification, error) {
	var members []model.Notification
	err := b.session.store.WithTx(ctx, func(tx *storage.Tx) error {
		var err error
		members, err = b.session.tracker.ExpandGroup(ctx, tx, group)
		return err
	})
	return members, err
}

func (b *storeBackend) Schedule(ctx context.Context, req tracker.ReminderRequest) error {
	return b.session.store.WithTx(ctx, func(tx *storage.Tx) error {
		_, err := b.session.tracker.Schedule(ctx, tx, req)
		return err
	})
}

func (b *storeBackend) RemoveReminder(ctx context.Context, id int64) (model.Reminder, error) {
	var removed model.Reminder
	err := b.session.store.WithTx(ctx, func(tx *storage.Tx) error {
		var err error
		removed, err = b.session.tracker.ForgetReminder(ctx, tx, id)
		return err
	})
	return removed, err
}
