// Package tracker implements the user-facing operations of tore on top of a
// storage.Repository. Listing indices are never persisted: every operation
// that takes an index re-lists inside the caller's transaction first.
package tracker

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"strings"
	"time"

	"github.com/sandeepkv93/tore/internal/logging"
	"github.com/sandeepkv93/tore/internal/model"
	"github.com/sandeepkv93/tore/internal/notify"
	"github.com/sandeepkv93/tore/internal/storage"
)

var (
	ErrInvalidIndex = errors.New("tracker: invalid index")
	// ErrGone reports a selection that stopped being active after it was
	// listed.
	ErrGone = errors.New("tracker: no longer active")
)

type Tracker struct {
	notifier notify.Notifier
	logger   *slog.Logger
}

type Option func(*Tracker)

func WithNotifier(n notify.Notifier) Option {
	return func(t *Tracker) {
		if n != nil {
			t.notifier = n
		}
	}
}

func WithLogger(l *slog.Logger) Option {
	return func(t *Tracker) {
		if l != nil {
			t.logger = l
		}
	}
}

func New(opts ...Option) *Tracker {
	t := &Tracker{notifier: notify.Noop{}, logger: logging.Logger()}
	for _, opt := range opts {
		opt(t)
	}
	return t
}

// CheckoutResult is what the default command shows.
type CheckoutResult struct {
	Fired  storage.FireResult
	Active []model.GroupedNotification
}

// Checkout fires every reminder due on today's local date and lists the
// active notifications.
func (t *Tracker) Checkout(ctx context.Context, repo storage.Repository, today time.Time) (CheckoutResult, error) {
	fired, err := repo.FireDue(ctx, today)
	if err != nil {
		return CheckoutResult{}, err
	}
	if len(fired.Fired) > 0 {
		t.logger.InfoContext(ctx, "fired reminders",
			logging.KeyCount, len(fired.Fired),
			"finished", fired.Finished,
			"rescheduled", fired.Rescheduled,
		)
	}
	active, err := repo.ListActive(ctx)
	if err != nil {
		return CheckoutResult{}, err
	}
	return CheckoutResult{Fired: fired, Active: active}, nil
}

// Announce sends one desktop notification per fired reminder. Failures are
// logged and do not fail the command, which has already committed.
func (t *Tracker) Announce(ctx context.Context, fired []model.Reminder) {
	for _, r := range fired {
		msg := notify.Message{Title: "tore", Body: r.Title}
		if err := t.notifier.Send(ctx, msg); err != nil {
			t.logger.WarnContext(ctx, "desktop notification failed", logging.KeyError, err)
		}
	}
}

// AddNotification joins words into a title and records an ad hoc
// notification.
func (t *Tracker) AddNotification(ctx context.Context, repo storage.Repository, words []string) (int64, error) {
	title := strings.TrimSpace(strings.Join(words, " "))
	if err := model.ValidateTitle(title); err != nil {
		return 0, err
	}
	return repo.CreateNotification(ctx, title)
}

// ParseIndex reads a listing index as typed by the user.
func ParseIndex(raw string) (int, error) {
	i, err := strconv.Atoi(strings.TrimSpace(raw))
	if err != nil || i < 0 {
		return 0, &model.ValidationError{Field: "index", Value: raw, Err: ErrInvalidIndex}
	}
	return i, nil
}

// DismissReport describes a multi-index dismissal.
type DismissReport struct {
	// Dismissed counts notification rows, not groups.
	Dismissed int
	// Skipped holds the arguments that did not name an active group.
	Skipped []string
	Active  []model.GroupedNotification
}

// Dismiss resolves every index against one listing taken up front, so
// earlier dismissals in the same call do not shift later indices.
func (t *Tracker) Dismiss(ctx context.Context, repo storage.Repository, rawIndices []string) (DismissReport, error) {
	groups, err := repo.ListActive(ctx)
	if err != nil {
		return DismissReport{}, err
	}

	report := DismissReport{}
	for _, raw := range rawIndices {
		i, err := ParseIndex(raw)
		if err != nil || i >= len(groups) {
			report.Skipped = append(report.Skipped, raw)
			continue
		}
		n, err := repo.DismissGroup(ctx, groups[i].Group)
		if err != nil {
			return DismissReport{}, err
		}
		report.Dismissed += n
	}

	report.Active, err = repo.ListActive(ctx)
	if err != nil {
		return DismissReport{}, err
	}
	return report, nil
}

// DismissGroups dismisses groups captured by an earlier listing. A group
// with nothing left to dismiss is reported in Skipped.
func (t *Tracker) DismissGroups(ctx context.Context, repo storage.Repository, groups []model.GroupID) (DismissReport, error) {
	report := DismissReport{}
	for _, g := range groups {
		n, err := repo.DismissGroup(ctx, g)
		if err != nil {
			return DismissReport{}, err
		}
		if n == 0 {
			report.Skipped = append(report.Skipped, g.String())
			continue
		}
		report.Dismissed += n
	}

	var err error
	report.Active, err = repo.ListActive(ctx)
	if err != nil {
		return DismissReport{}, err
	}
	return report, nil
}

// ExpandGroup returns the undismissed members of group.
func (t *Tracker) ExpandGroup(ctx context.Context, repo storage.Repository, group model.GroupID) ([]model.Notification, error) {
	members, err := repo.ExpandGroup(ctx, group)
	if err != nil {
		return nil, err
	}
	if len(members) == 0 {
		return nil, fmt.Errorf("group %s: %w", group, ErrGone)
	}
	return members, nil
}

// ShowNotification loads one notification by its id, dismissed or not.
func (t *Tracker) ShowNotification(ctx context.Context, repo storage.Repository, rawID string) (model.Notification, error) {
	id, err := strconv.ParseInt(strings.TrimSpace(rawID), 10, 64)
	if err != nil || id <= 0 {
		return model.Notification{}, &model.ValidationError{Field: "id", Value: rawID, Err: model.ErrInvalidIdentity}
	}
	n, err := repo.LoadNotification(ctx, id)
	if errors.Is(err, storage.ErrNotFound) {
		return model.Notification{}, fmt.Errorf("no such notification %d: %w", id, err)
	}
	return n, err
}

// Expand returns the members of the group at index.
func (t *Tracker) Expand(ctx context.Context, repo storage.Repository, rawIndex string) ([]model.Notification, error) {
	i, err := ParseIndex(rawIndex)
	if err != nil {
		return nil, err
	}
	groups, err := repo.ListActive(ctx)
	if err != nil {
		return nil, err
	}
	if i >= len(groups) {
		return nil, &model.ValidationError{Field: "index", Value: rawIndex, Err: ErrInvalidIndex}
	}
	return repo.ExpandGroup(ctx, groups[i].Group)
}

// ReminderRequest is a reminder as entered by the user, before validation.
type ReminderRequest struct {
	Title       string
	ScheduledAt string
	Period      string
}

// Schedule validates the request and creates the reminder. Nothing touches
// the store when validation fails.
func (t *Tracker) Schedule(ctx context.Context, repo storage.Repository, req ReminderRequest) (int64, error) {
	title := strings.TrimSpace(req.Title)
	if err := model.ValidateTitle(title); err != nil {
		return 0, err
	}
	if err := model.ValidateDate(req.ScheduledAt); err != nil {
		return 0, err
	}
	var period *model.Period
	if strings.TrimSpace(req.Period) != "" {
		p, err := model.ParsePeriod(req.Period)
		if err != nil {
			return 0, err
		}
		if err := p.CheckFrom(req.ScheduledAt); err != nil {
			return 0, err
		}
		period = &p
	}
	return repo.CreateReminder(ctx, title, req.ScheduledAt, period)
}

// RemoveReminder finishes the reminder at index of the active reminder
// listing.
func (t *Tracker) RemoveReminder(ctx context.Context, repo storage.Repository, rawIndex string) (model.Reminder, error) {
	i, err := ParseIndex(rawIndex)
	if err != nil {
		return model.Reminder{}, err
	}
	reminders, err := repo.ListActiveReminders(ctx)
	if err != nil {
		return model.Reminder{}, err
	}
	if i >= len(reminders) {
		return model.Reminder{}, &model.ValidationError{
			Field: "index",
			Value: rawIndex,
			Err:   fmt.Errorf("%w: no reminder at %d", ErrInvalidIndex, i),
		}
	}
	target := reminders[i]
	if err := repo.RemoveReminder(ctx, target.ID); err != nil {
		return model.Reminder{}, err
	}
	return target, nil
}

// ForgetReminder finishes the reminder with id, provided it is still active.
func (t *Tracker) ForgetReminder(ctx context.Context, repo storage.Repository, id int64) (model.Reminder, error) {
	r, err := repo.LoadReminder(ctx, id)
	if errors.Is(err, storage.ErrNotFound) {
		return model.Reminder{}, fmt.Errorf("reminder %d: %w", id, ErrGone)
	}
	if err != nil {
		return model.Reminder{}, err
	}
	if r.IsFinished() {
		return model.Reminder{}, fmt.Errorf("reminder %d: %w", id, ErrGone)
	}
	if err := repo.RemoveReminder(ctx, id); err != nil {
		return model.Reminder{}, err
	}
	return r, nil
}

// PeriodExamples renders one example per unit for error output, for
// example "2w - means every 2 weeks".
func PeriodExamples(length int) []string {
	out := make([]string, 0, len(model.PeriodUnits()))
	for i, unit := range model.PeriodUnits() {
		n := length
		if n <= 0 {
			n = i + 1
		}
		out = append(out, fmt.Sprintf("%d%s - means every %d %s", n, unit, n, unit.Name()))
	}
	return out
}
