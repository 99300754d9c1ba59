package update

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/charmbracelet/bubbles/table"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/sandeepkv93/tore/internal/model"
	"github.com/sandeepkv93/tore/internal/tracker"
	"github.com/sandeepkv93/tore/internal/views"
)

// Init fires due reminders once, the same way the checkout command does.
func (m Model) Init() tea.Cmd {
	return m.loadCmd(true)
}

func (m Model) loadCmd(fire bool) tea.Cmd {
	if m.backend == nil {
		return nil
	}
	backend, ctx := m.backend, m.ctx
	return func() tea.Msg {
		snap, err := backend.Snapshot(ctx, fire)
		return SnapshotMsg{Snapshot: snap, Err: err}
	}
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	next, cmd := m.update(msg)
	next.syncBubbleData()
	return next, cmd
}

func (m Model) update(msg tea.Msg) (Model, tea.Cmd) {
	switch typed := msg.(type) {
	case tea.KeyMsg:
		if m.Palette.Active {
			return m.handlePaletteKey(typed), nil
		}

		switch typed.String() {
		case "/":
			m.Palette.Active = true
			m.Palette.Input = ""
			m.commandInput.Focus()
			m.commandInput.SetValue("")
			m.Status = StatusBar{Text: "command palette active"}
			return m, nil
		case m.Keys.Notifications:
			m.CurrentPane = PaneNotifications
			return m, nil
		case m.Keys.Reminders:
			m.CurrentPane = PaneReminders
			m.Expanded = nil
			return m, nil
		case m.Keys.Help:
			m.HelpVisible = !m.HelpVisible
			return m, nil
		case "ctrl+c", m.Keys.Quit:
			m.Quitting = true
			return m, tea.Quit
		case "esc":
			m.Expanded = nil
			return m, nil
		case "g":
			m.Status = StatusBar{Text: "refreshing"}
			return m, m.loadCmd(false)
		case "c":
			m.Status = StatusBar{Text: "checking out"}
			return m, m.loadCmd(true)
		case "enter":
			if m.CurrentPane == PaneNotifications {
				m = m.expandSelected()
			}
			return m, nil
		case "d":
			if m.CurrentPane == PaneNotifications {
				if len(m.Groups) == 0 {
					return m, nil
				}
				return m.dismissIndices([]string{strconv.Itoa(m.groupTable.Cursor())})
			}
			return m.forgetReminder(strconv.Itoa(m.reminderTable.Cursor()))
		}
		var cmd tea.Cmd
		if m.CurrentPane == PaneNotifications {
			m.groupTable, cmd = m.groupTable.Update(typed)
		} else {
			m.reminderTable, cmd = m.reminderTable.Update(typed)
		}
		return m, cmd
	case SnapshotMsg:
		if typed.Err != nil {
			m.LastError = typed.Err
			m.Status = StatusBar{Text: typed.Err.Error(), IsError: true}
			return m, nil
		}
		m.Groups = typed.Snapshot.Groups
		m.Reminders = typed.Snapshot.Reminders
		if m.Expanded != nil && len(m.Groups) == 0 {
			m.Expanded = nil
		}
		switch n := len(typed.Snapshot.Fired); {
		case n > 0:
			m.Status = StatusBar{Text: fmt.Sprintf("fired %d reminder(s)", n)}
		case strings.HasPrefix(m.Status.Text, "refreshing"), strings.HasPrefix(m.Status.Text, "checking out"):
			m.Status = StatusBar{Text: fmt.Sprintf("%d active group(s)", len(m.Groups))}
		}
		return m, nil
	case SetStatusMsg:
		m.Status = StatusBar{Text: typed.Text, IsError: typed.IsError}
		return m, nil
	case ClearStatusMsg:
		m.Status = StatusBar{}
		return m, nil
	case AppErrorMsg:
		m.LastError = typed.Err
		if typed.Err != nil {
			m.Status = StatusBar{Text: typed.Err.Error(), IsError: true}
		}
		return m, nil
	}

	return m, nil
}

// groupAt resolves an index of the listing on screen.
func (m Model) groupAt(raw string) (model.GroupedNotification, error) {
	i, err := tracker.ParseIndex(raw)
	if err != nil {
		return model.GroupedNotification{}, err
	}
	if i >= len(m.Groups) {
		return model.GroupedNotification{}, &model.ValidationError{Field: "index", Value: raw, Err: tracker.ErrInvalidIndex}
	}
	return m.Groups[i], nil
}

func (m Model) reminderAt(raw string) (model.Reminder, error) {
	i, err := tracker.ParseIndex(raw)
	if err != nil {
		return model.Reminder{}, err
	}
	if i >= len(m.Reminders) {
		return model.Reminder{}, &model.ValidationError{Field: "index", Value: raw, Err: tracker.ErrInvalidIndex}
	}
	return m.Reminders[i], nil
}

func (m Model) expandSelected() Model {
	if len(m.Groups) == 0 || m.backend == nil {
		return m
	}
	return m.expandIndex(strconv.Itoa(m.groupTable.Cursor()))
}

func (m Model) expandIndex(raw string) Model {
	g, err := m.groupAt(raw)
	if err != nil {
		return m.fail(err)
	}
	members, err := m.backend.Expand(m.ctx, g.Group)
	if err != nil {
		return m.fail(err)
	}
	m.CurrentPane = PaneNotifications
	m.Expanded = members
	m.Status = StatusBar{Text: fmt.Sprintf("expanded %d notification(s)", len(members))}
	return m
}

func (m Model) dismissIndices(indices []string) (Model, tea.Cmd) {
	if m.backend == nil {
		return m, nil
	}
	var (
		groups  []model.GroupID
		invalid []string
	)
	for _, raw := range indices {
		g, err := m.groupAt(raw)
		if err != nil {
			invalid = append(invalid, raw)
			continue
		}
		groups = append(groups, g.Group)
	}
	report, err := m.backend.Dismiss(m.ctx, groups)
	if err != nil {
		return m.fail(err), nil
	}
	m.Groups = report.Active
	m.Expanded = nil

	text := fmt.Sprintf("dismissed %d notification(s)", report.Dismissed)
	if len(invalid) > 0 {
		text += fmt.Sprintf("; skipped invalid index %s", strings.Join(invalid, ", "))
	}
	if len(report.Skipped) > 0 {
		text += fmt.Sprintf("; already dismissed %s", strings.Join(report.Skipped, ", "))
	}
	m.Status = StatusBar{Text: text, IsError: report.Dismissed == 0}
	return m, nil
}

func (m Model) forgetReminder(index string) (Model, tea.Cmd) {
	if len(m.Reminders) == 0 || m.backend == nil {
		return m, nil
	}
	r, err := m.reminderAt(index)
	if err != nil {
		return m.fail(err), nil
	}
	removed, err := m.backend.RemoveReminder(m.ctx, r.ID)
	if err != nil {
		return m.fail(err), m.loadCmd(false)
	}
	m.Status = StatusBar{Text: fmt.Sprintf("removed reminder: %s", removed.Title)}
	return m, m.loadCmd(false)
}

func (m Model) fail(err error) Model {
	m.LastError = err
	m.Status = StatusBar{Text: err.Error(), IsError: true}
	return m
}

func (m *Model) syncBubbleData() {
	rows := make([]table.Row, 0, len(m.Groups))
	for i, g := range m.Groups {
		count := ""
		if g.Count > 1 {
			count = strconv.Itoa(g.Count)
		}
		rows = append(rows, table.Row{
			strconv.Itoa(i),
			count,
			g.Title,
			g.CreatedAt.In(m.location).Format(views.TimeLayout),
		})
	}
	m.groupTable.SetRows(rows)
	clampCursor(&m.groupTable, len(rows))

	rrows := make([]table.Row, 0, len(m.Reminders))
	for i, r := range m.Reminders {
		period := ""
		if r.IsPeriodic() {
			period = r.Period.String()
		}
		rrows = append(rrows, table.Row{strconv.Itoa(i), r.Title, r.ScheduledAt, period})
	}
	m.reminderTable.SetRows(rrows)
	clampCursor(&m.reminderTable, len(rrows))

	m.detail.SetContent(views.RenderMarkdown(views.ExpandedMarkdown(m.Expanded, m.location)))
}

// clampCursor keeps the cursor on a row. An empty table leaves it at -1,
// which must not survive the next non-empty listing.
func clampCursor(t *table.Model, rows int) {
	if rows == 0 {
		return
	}
	switch c := t.Cursor(); {
	case c < 0:
		t.SetCursor(0)
	case c >= rows:
		t.SetCursor(rows - 1)
	}
}

func (m Model) View() string {
	status := ""
	if m.Status.Text != "" {
		status = "status: " + m.Status.Text
	}

	left := ""
	right := ""
	switch m.CurrentPane {
	case PaneNotifications:
		left = m.groupTable.View()
		if len(m.Groups) == 0 {
			left = "no active notifications"
		}
		if len(m.Expanded) > 0 {
			right = m.detail.View()
		}
	case PaneReminders:
		left = m.reminderTable.View()
		if len(m.Reminders) == 0 {
			left = "no active reminders"
		}
	}
	if m.HelpVisible {
		right = strings.TrimSpace(strings.Join([]string{right, m.renderHelpView()}, "\n"))
	}

	palette := ""
	if m.Palette.Active {
		palette = m.renderCommandPalette()
	}

	return views.RenderApp(views.AppData{
		Header:      fmt.Sprintf("tore | %s | %d group(s) | %d reminder(s)", m.CurrentPane, len(m.Groups), len(m.Reminders)),
		LeftPane:    left,
		RightPane:   right,
		StatusLine:  status,
		StatusError: m.Status.IsError,
		Palette:     palette,
		Footer: fmt.Sprintf("keys: %s notifications | %s reminders | enter expand | d dismiss | c checkout | g refresh | / cmd | %s help | %s quit",
			m.Keys.Notifications, m.Keys.Reminders, m.Keys.Help, m.Keys.Quit),
	})
}
