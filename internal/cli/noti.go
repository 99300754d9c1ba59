package cli

import (
	"fmt"
	"io"
	"time"

	"github.com/spf13/cobra"

	"github.com/sandeepkv93/tore/internal/model"
	"github.com/sandeepkv93/tore/internal/storage"
	"github.com/sandeepkv93/tore/internal/tracker"
	"github.com/sandeepkv93/tore/internal/views"
)

func NewCheckoutCommand(opts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "checkout",
		Short: "Fire off due Reminders and show the current Notifications",
		Long: `Fire off the Reminders if needed and show the current Notifications.

This is the default command that is executed when you just call tore by itself.`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runCheckout(cmd, opts)
		},
	}
}

func runCheckout(cmd *cobra.Command, opts *RootOptions) error {
	s, err := openSession(cmd, opts, "checkout")
	if err != nil {
		return err
	}
	defer s.Close()

	var result tracker.CheckoutResult
	err = s.run(func(s *session, tx *storage.Tx) error {
		var err error
		result, err = s.tracker.Checkout(s.ctx, tx, s.today())
		return err
	})
	if err != nil {
		return err
	}
	s.tracker.Announce(s.ctx, result.Fired.Fired)
	printGroups(cmd.OutOrStdout(), result.Active, opts.deps.Location)
	return nil
}

func NewNotiCommand(opts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:           "noti",
		Short:         "Show the current Notifications without firing Reminders",
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			var groups []model.GroupedNotification
			err := inTx(cmd, opts, "noti", func(s *session, tx *storage.Tx) error {
				var err error
				groups, err = tx.ListActive(s.ctx)
				return err
			})
			if err != nil {
				return err
			}
			printGroups(cmd.OutOrStdout(), groups, opts.deps.Location)
			return nil
		},
	}
}

func NewNotiNewCommand(opts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "noti:new <title...>",
		Short: "Add a new Notification manually",
		Long: `Add a new Notification manually.

This Notification is not associated with any Reminder. You just create it in
the moment to not forget something within the same day.`,
		Args:          cobra.MinimumNArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			var groups []model.GroupedNotification
			err := inTx(cmd, opts, "noti:new", func(s *session, tx *storage.Tx) error {
				if _, err := s.tracker.AddNotification(s.ctx, tx, args); err != nil {
					return err
				}
				var err error
				groups, err = tx.ListActive(s.ctx)
				return err
			})
			if err != nil {
				return err
			}
			printGroups(cmd.OutOrStdout(), groups, opts.deps.Location)
			return nil
		},
	}
}

func NewNotiDismissCommand(opts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:           "noti:dismiss <indices...>",
		Short:         "Dismiss Notifications by their listing indices",
		Args:          cobra.MinimumNArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			var report tracker.DismissReport
			err := inTx(cmd, opts, "noti:dismiss", func(s *session, tx *storage.Tx) error {
				var err error
				report, err = s.tracker.Dismiss(s.ctx, tx, args)
				return err
			})
			if err != nil {
				return err
			}
			for _, raw := range report.Skipped {
				fmt.Fprintf(cmd.ErrOrStderr(), "WARNING: %s is not a valid index of an active notification\n", raw)
			}
			out := cmd.OutOrStdout()
			printGroups(out, report.Active, opts.deps.Location)
			fmt.Fprintf(out, "Dismissed %d notifications\n", report.Dismissed)
			return nil
		},
	}
}

func NewNotiExpandCommand(opts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "noti:expand <index>",
		Short: "Expand a collapsed group of Notifications by its index",
		Long: `Expand a collapsed group of Notifications by its index.

When several undismissed Notifications come from the same recurring Reminder
they are collapsed into one entry in every listing. This command shows the
individual Notifications of that group.`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			var members []model.Notification
			err := inTx(cmd, opts, "noti:expand", func(s *session, tx *storage.Tx) error {
				var err error
				members, err = s.tracker.Expand(s.ctx, tx, args[0])
				return err
			})
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			for _, n := range members {
				fmt.Fprintln(out, views.NotificationLine(n, opts.deps.Location))
			}
			return nil
		},
	}
}

func NewNotiShowCommand(opts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "noti:show <id>",
		Short: "Show one Notification by its id, dismissed or not",
		Long: `Show one Notification by its id.

Unlike listing indices, ids never change, so this also finds Notifications
that were dismissed long ago.`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			var n model.Notification
			err := inTx(cmd, opts, "noti:show", func(s *session, tx *storage.Tx) error {
				var err error
				n, err = s.tracker.ShowNotification(s.ctx, tx, args[0])
				return err
			})
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			for _, line := range views.NotificationDetail(n, opts.deps.Location) {
				fmt.Fprintln(out, line)
			}
			return nil
		},
	}
}

func printGroups(w io.Writer, groups []model.GroupedNotification, loc *time.Location) {
	for i, g := range groups {
		fmt.Fprintln(w, views.GroupLine(i, g, loc))
	}
}
