package update

import (
	"errors"
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/sandeepkv93/tore/internal/commands"
	"github.com/sandeepkv93/tore/internal/tracker"
	"github.com/sandeepkv93/tore/internal/views"
)

var paletteExamples = []string{
	"new <title...>",
	"dismiss <index...>",
	"expand <index>",
	"remind <title...> <YYYY-MM-DD> [period]",
	"forget <reminder index>",
}

func (m Model) handlePaletteKey(msg tea.KeyMsg) Model {
	switch msg.String() {
	case "esc":
		m.Palette.Active = false
		m.Palette.Input = ""
		m.commandInput.SetValue("")
		m.commandInput.Blur()
		m.Status = StatusBar{Text: "command palette closed"}
	case "enter":
		m.Palette.Input = m.commandInput.Value()
		m = m.executePaletteCommand()
	default:
		if msg.Type == tea.KeyRunes {
			m.commandInput.SetValue(m.commandInput.Value() + string(msg.Runes))
			m.Palette.Input = m.commandInput.Value()
			return m
		}
		var cmd tea.Cmd
		m.commandInput, cmd = m.commandInput.Update(msg)
		_ = cmd
		m.Palette.Input = m.commandInput.Value()
	}
	return m
}

func (m Model) executePaletteCommand() Model {
	raw := strings.TrimSpace(m.Palette.Input)
	m.Palette.Active = false
	m.Palette.Input = ""
	m.commandInput.SetValue("")
	m.commandInput.Blur()

	cmd, err := commands.Parse(raw)
	if err != nil {
		return m.fail(err)
	}
	if m.backend == nil {
		return m.fail(fmt.Errorf("no backend configured"))
	}

	refresh := true
	res, err := commands.Execute(cmd, commands.Handlers{
		New: func(a commands.NewArgs) (commands.Result, error) {
			if err := m.backend.AddNotification(m.ctx, a.Title); err != nil {
				return commands.Result{}, err
			}
			m.CurrentPane = PaneNotifications
			return commands.Result{Message: fmt.Sprintf("added notification: %s", a.Title)}, nil
		},
		Dismiss: func(a commands.DismissArgs) (commands.Result, error) {
			next, _ := m.dismissIndices(a.Indices)
			m = next
			refresh = false
			if m.Status.IsError {
				return commands.Result{}, errors.New(m.Status.Text)
			}
			return commands.Result{Message: m.Status.Text}, nil
		},
		Expand: func(a commands.ExpandArgs) (commands.Result, error) {
			next := m.expandIndex(a.Index)
			if next.Status.IsError {
				return commands.Result{}, next.LastError
			}
			m = next
			refresh = false
			return commands.Result{Message: m.Status.Text}, nil
		},
		Remind: func(a commands.RemindArgs) (commands.Result, error) {
			req := tracker.ReminderRequest{Title: a.Title, ScheduledAt: a.ScheduledAt, Period: a.Period}
			if err := m.backend.Schedule(m.ctx, req); err != nil {
				return commands.Result{}, err
			}
			m.CurrentPane = PaneReminders
			return commands.Result{Message: fmt.Sprintf("scheduled %s for %s", a.Title, a.ScheduledAt)}, nil
		},
		Forget: func(a commands.ForgetArgs) (commands.Result, error) {
			r, err := m.reminderAt(a.Index)
			if err != nil {
				return commands.Result{}, err
			}
			removed, err := m.backend.RemoveReminder(m.ctx, r.ID)
			if err != nil {
				return commands.Result{}, err
			}
			return commands.Result{Message: fmt.Sprintf("removed reminder: %s", removed.Title)}, nil
		},
	})
	if err != nil {
		return m.fail(err)
	}
	m.Status = StatusBar{Text: res.Message}

	if refresh {
		snap, err := m.backend.Snapshot(m.ctx, false)
		if err != nil {
			return m.fail(err)
		}
		m.Groups = snap.Groups
		m.Reminders = snap.Reminders
	}
	return m
}

func (m Model) renderCommandPalette() string {
	return views.RenderPalettePanel(views.PalettePanelData{
		InputView: m.commandInput.View(),
		Examples:  paletteExamples,
	})
}
