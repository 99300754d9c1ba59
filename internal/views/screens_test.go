package views

import (
	"strings"
	"testing"
	"time"

	"github.com/sandeepkv93/tore/internal/model"
)

func TestGroupLineShowsCountOnlyForCollapsedGroups(t *testing.T) {
	at := time.Date(2026, 10, 15, 9, 0, 0, 0, time.UTC)
	single := model.GroupedNotification{Notification: model.Notification{Title: "buy milk", CreatedAt: at}, Count: 1}
	many := model.GroupedNotification{Notification: model.Notification{Title: "stretch", CreatedAt: at}, Count: 3}

	if got := GroupLine(0, single, time.UTC); got != "0: buy milk (2026-10-15 09:00:00)" {
		t.Fatalf("unexpected single line: %q", got)
	}
	if got := GroupLine(4, many, time.UTC); got != "4: [3] stretch (2026-10-15 09:00:00)" {
		t.Fatalf("unexpected group line: %q", got)
	}
}

func TestGroupLineUsesLocation(t *testing.T) {
	loc := time.FixedZone("UTC+2", 2*60*60)
	g := model.GroupedNotification{Notification: model.Notification{Title: "x", CreatedAt: time.Date(2026, 10, 15, 23, 30, 0, 0, time.UTC)}, Count: 1}
	if got := GroupLine(0, g, loc); got != "0: x (2026-10-16 01:30:00)" {
		t.Fatalf("unexpected local line: %q", got)
	}
}

func TestNotificationDetail(t *testing.T) {
	at := time.Date(2026, 10, 15, 9, 0, 0, 0, time.UTC)
	gone := at.Add(time.Hour)
	rid := int64(3)
	n := model.Notification{ID: 7, Title: "stretch", CreatedAt: at, DismissedAt: &gone, ReminderID: &rid}

	got := NotificationDetail(n, time.UTC)
	want := []string{
		"7: stretch",
		"  created:   2026-10-15 09:00:00",
		"  dismissed: 2026-10-15 10:00:00",
		"  source:    reminder 3",
	}
	if strings.Join(got, "\n") != strings.Join(want, "\n") {
		t.Fatalf("unexpected detail:\n%s", strings.Join(got, "\n"))
	}

	adHoc := NotificationDetail(model.Notification{ID: 1, Title: "x", CreatedAt: at}, time.UTC)
	if adHoc[2] != "  dismissed: no" || adHoc[3] != "  source:    added manually" {
		t.Fatalf("unexpected ad hoc detail: %#v", adHoc)
	}
}

func TestReminderLine(t *testing.T) {
	periodic := model.Reminder{Title: "rent", ScheduledAt: "2026-11-01", Period: &model.Period{Length: 1, Unit: model.PeriodMonth}}
	if got := ReminderLine(0, periodic); got != "0: rent (Scheduled at 2026-11-01 every 1 month)" {
		t.Fatalf("unexpected periodic line: %q", got)
	}
	once := model.Reminder{Title: "dentist", ScheduledAt: "2026-10-20"}
	if got := ReminderLine(1, once); got != "1: dentist (Scheduled at 2026-10-20)" {
		t.Fatalf("unexpected one-shot line: %q", got)
	}
}

func TestExpandedMarkdownListsMembers(t *testing.T) {
	rid := int64(7)
	members := []model.Notification{
		{ID: 1, Title: "water", CreatedAt: time.Date(2026, 10, 14, 9, 0, 0, 0, time.UTC), ReminderID: &rid, Group: model.ReminderGroup(rid)},
		{ID: 2, Title: "water", CreatedAt: time.Date(2026, 10, 15, 9, 0, 0, 0, time.UTC), ReminderID: &rid, Group: model.ReminderGroup(rid)},
	}
	md := ExpandedMarkdown(members, time.UTC)
	if !strings.HasPrefix(md, "## water") || !strings.Contains(md, "reminder 7, 2 undismissed") {
		t.Fatalf("unexpected markdown: %q", md)
	}
	if strings.Count(md, "\n- ") != 2 {
		t.Fatalf("expected two member bullets: %q", md)
	}
	if ExpandedMarkdown(nil, time.UTC) != "" {
		t.Fatal("expected empty markdown for no members")
	}
}

func TestRenderAppIncludesPanels(t *testing.T) {
	out := RenderApp(AppData{
		Header:     "tore",
		LeftPane:   "notifications",
		RightPane:  "details",
		StatusLine: "dismissed 1",
		Footer:     "q quit",
	})
	for _, want := range []string{"tore", "notifications", "details", "dismissed 1", "q quit"} {
		if !strings.Contains(out, want) {
			t.Fatalf("render output missing %q:\n%s", want, out)
		}
	}
}

func TestRenderMarkdownEmpty(t *testing.T) {
	if RenderMarkdown("  ") != "" {
		t.Fatal("expected empty output for blank markdown")
	}
}
