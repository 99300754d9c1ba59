package views

import (
	"fmt"
	"strings"
	"time"

	"github.com/sandeepkv93/tore/internal/model"
)

// TimeLayout is how stored UTC timestamps are shown, in local time.
const TimeLayout = "2006-01-02 15:04:05"

// GroupLine is one entry of the active listing: "0: title (time)" or
// "0: [3] title (time)" for a collapsed group.
func GroupLine(i int, g model.GroupedNotification, loc *time.Location) string {
	at := localTime(g.CreatedAt, loc)
	if g.Count <= 1 {
		return fmt.Sprintf("%d: %s (%s)", i, g.Title, at)
	}
	return fmt.Sprintf("%d: [%d] %s (%s)", i, g.Count, g.Title, at)
}

// NotificationLine is one member of an expanded group.
func NotificationLine(n model.Notification, loc *time.Location) string {
	return fmt.Sprintf("%s (%s)", n.Title, localTime(n.CreatedAt, loc))
}

// NotificationDetail describes a single notification by id, including the
// dismissal state that listings never show.
func NotificationDetail(n model.Notification, loc *time.Location) []string {
	dismissed := "no"
	if n.IsDismissed() {
		dismissed = localTime(*n.DismissedAt, loc)
	}
	source := "added manually"
	if n.ReminderID != nil {
		source = fmt.Sprintf("reminder %d", *n.ReminderID)
	}
	return []string{
		fmt.Sprintf("%d: %s", n.ID, n.Title),
		"  created:   " + localTime(n.CreatedAt, loc),
		"  dismissed: " + dismissed,
		"  source:    " + source,
	}
}

func ReminderLine(i int, r model.Reminder) string {
	if r.IsPeriodic() {
		return fmt.Sprintf("%d: %s (Scheduled at %s %s)", i, r.Title, r.ScheduledAt, r.Period)
	}
	return fmt.Sprintf("%d: %s (Scheduled at %s)", i, r.Title, r.ScheduledAt)
}

// ExpandedMarkdown renders a group's members for the viewer's detail pane.
func ExpandedMarkdown(members []model.Notification, loc *time.Location) string {
	if len(members) == 0 {
		return ""
	}
	var b strings.Builder
	fmt.Fprintf(&b, "## %s\n\n", members[0].Title)
	if id, ok := members[0].Group.ReminderID(); ok {
		fmt.Fprintf(&b, "_fired by reminder %d, %d undismissed_\n\n", id, len(members))
	}
	for _, n := range members {
		fmt.Fprintf(&b, "- %s\n", localTime(n.CreatedAt, loc))
	}
	return b.String()
}

type HelpPanelData struct {
	Bindings []string
	HelpView string
}

func RenderHelpPanel(data HelpPanelData) string {
	var b strings.Builder
	b.WriteString("help:\n")
	for _, line := range data.Bindings {
		b.WriteString(line + "\n")
	}
	if data.HelpView != "" {
		b.WriteString(data.HelpView)
	}
	return strings.TrimSpace(b.String())
}

type PalettePanelData struct {
	InputView string
	Examples  []string
}

func RenderPalettePanel(data PalettePanelData) string {
	var b strings.Builder
	b.WriteString("command:\n")
	b.WriteString(data.InputView + "\n")
	for _, ex := range data.Examples {
		b.WriteString("  " + ex + "\n")
	}
	return strings.TrimSpace(b.String())
}

func localTime(t time.Time, loc *time.Location) string {
	if loc == nil {
		loc = time.Local
	}
	return t.In(loc).Format(TimeLayout)
}
