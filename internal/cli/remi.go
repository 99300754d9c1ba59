package cli

import (
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/sandeepkv93/tore/internal/model"
	"github.com/sandeepkv93/tore/internal/storage"
	"github.com/sandeepkv93/tore/internal/tracker"
	"github.com/sandeepkv93/tore/internal/views"
)

func NewRemiCommand(opts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:           "remi",
		Short:         "Show the active Reminders",
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return listReminders(cmd, opts, "remi")
		},
	}
}

func NewRemiNewCommand(opts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "remi:new [<title> <scheduled_at> [period]]",
		Short: "Schedule a Reminder",
		Long: `Schedule a Reminder for a date given as YYYY-MM-DD.

The optional period makes the Reminder recurring, for example 1d, 2w, 3m or
1y. Without arguments the active Reminders are listed.`,
		Args:          cobra.MaximumNArgs(3),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) == 0 {
				return listReminders(cmd, opts, "remi:new")
			}
			if len(args) == 1 {
				return errors.New("expected scheduled_at")
			}
			req := tracker.ReminderRequest{Title: args[0], ScheduledAt: args[1]}
			if len(args) == 3 {
				req.Period = args[2]
			}

			var reminders []model.Reminder
			err := inTx(cmd, opts, "remi:new", func(s *session, tx *storage.Tx) error {
				if _, err := s.tracker.Schedule(s.ctx, tx, req); err != nil {
					return err
				}
				var err error
				reminders, err = tx.ListActiveReminders(s.ctx)
				return err
			})
			if err != nil {
				printPeriodHelp(cmd.ErrOrStderr(), req.Period, err)
				return err
			}
			printReminders(cmd.OutOrStdout(), reminders)
			return nil
		},
	}
}

func NewRemiDismissCommand(opts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:           "remi:dismiss <index>",
		Short:         "Remove a Reminder by its listing index",
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			var reminders []model.Reminder
			err := inTx(cmd, opts, "remi:dismiss", func(s *session, tx *storage.Tx) error {
				if _, err := s.tracker.RemoveReminder(s.ctx, tx, args[0]); err != nil {
					return err
				}
				var err error
				reminders, err = tx.ListActiveReminders(s.ctx)
				return err
			})
			if err != nil {
				return err
			}
			printReminders(cmd.OutOrStdout(), reminders)
			return nil
		},
	}
}

func listReminders(cmd *cobra.Command, opts *RootOptions, op string) error {
	var reminders []model.Reminder
	err := inTx(cmd, opts, op, func(s *session, tx *storage.Tx) error {
		var err error
		reminders, err = tx.ListActiveReminders(s.ctx)
		return err
	})
	if err != nil {
		return err
	}
	printReminders(cmd.OutOrStdout(), reminders)
	return nil
}

func printReminders(w io.Writer, reminders []model.Reminder) {
	for i, r := range reminders {
		fmt.Fprintln(w, views.ReminderLine(i, r))
	}
}

// printPeriodHelp lists valid period forms after a period parse failure.
func printPeriodHelp(w io.Writer, raw string, err error) {
	switch {
	case errors.Is(err, model.ErrInvalidPeriod):
		fmt.Fprintf(w, "Invalid period `%s`. Expected something like\n", raw)
		for _, ex := range tracker.PeriodExamples(0) {
			fmt.Fprintf(w, "    %s\n", ex)
		}
	case errors.Is(err, model.ErrInvalidPeriodUnit):
		length := 1
		if p, perr := leadingInt(raw); perr == nil {
			length = p
		}
		fmt.Fprintf(w, "Unknown period modifier in `%s`. Expected modifiers are\n", raw)
		for _, ex := range tracker.PeriodExamples(length) {
			fmt.Fprintf(w, "    %s\n", ex)
		}
	}
}

func leadingInt(raw string) (int, error) {
	end := 0
	for end < len(raw) && raw[end] >= '0' && raw[end] <= '9' {
		end++
	}
	var n int
	_, err := fmt.Sscanf(strings.TrimSpace(raw[:end]), "%d", &n)
	return n, err
}
