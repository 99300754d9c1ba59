package update

import (
	"context"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/table"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"

	"github.com/sandeepkv93/tore/internal/model"
	"github.com/sandeepkv93/tore/internal/tracker"
)

type Pane string

const (
	PaneNotifications Pane = "Notifications"
	PaneReminders     Pane = "Reminders"
)

// Snapshot is everything the viewer shows, read in one transaction.
type Snapshot struct {
	Groups    []model.GroupedNotification
	Reminders []model.Reminder
	// Fired is set when the snapshot was taken by a checkout.
	Fired []model.Reminder
}

// Backend is the viewer's access to the store. Every call is one
// transaction. The viewer resolves indices against the listing on screen and
// passes identities, since the store may have changed since that listing.
type Backend interface {
	Snapshot(ctx context.Context, fire bool) (Snapshot, error)
	AddNotification(ctx context.Context, title string) error
	Dismiss(ctx context.Context, groups []model.GroupID) (tracker.DismissReport, error)
	Expand(ctx context.Context, group model.GroupID) ([]model.Notification, error)
	Schedule(ctx context.Context, req tracker.ReminderRequest) error
	RemoveReminder(ctx context.Context, id int64) (model.Reminder, error)
}

type StatusBar struct {
	Text    string
	IsError bool
}

type GlobalKeyMap struct {
	Notifications string
	Reminders     string
	Help          string
	Quit          string
}

type CommandPaletteState struct {
	Active bool
	Input  string
}

type Model struct {
	CurrentPane Pane
	Groups      []model.GroupedNotification
	Reminders   []model.Reminder
	// Expanded holds the members of the group opened with enter.
	Expanded    []model.Notification
	Palette     CommandPaletteState
	HelpVisible bool
	Status      StatusBar
	Keys        GlobalKeyMap
	Quitting    bool
	LastError   error

	backend  Backend
	ctx      context.Context
	location *time.Location

	groupTable    table.Model
	reminderTable table.Model
	commandInput  textinput.Model
	helpModel     help.Model
	detail        viewport.Model
}

type SnapshotMsg struct {
	Snapshot Snapshot
	Err      error
}

type SetStatusMsg struct {
	Text    string
	IsError bool
}

type ClearStatusMsg struct{}

type AppErrorMsg struct {
	Err error
}

type Option func(*Model)

func WithLocation(loc *time.Location) Option {
	return func(m *Model) {
		if loc != nil {
			m.location = loc
		}
	}
}

func WithContext(ctx context.Context) Option {
	return func(m *Model) {
		if ctx != nil {
			m.ctx = ctx
		}
	}
}

func NewModel(backend Backend, opts ...Option) Model {
	m := Model{
		CurrentPane: PaneNotifications,
		Keys: GlobalKeyMap{
			Notifications: "1",
			Reminders:     "2",
			Help:          "?",
			Quit:          "q",
		},
		backend:  backend,
		ctx:      context.Background(),
		location: time.Local,
	}
	for _, opt := range opts {
		opt(&m)
	}
	m.initBubbleComponents()
	m.syncBubbleData()
	return m
}

func (m *Model) initBubbleComponents() {
	m.groupTable = table.New(
		table.WithColumns([]table.Column{
			{Title: "#", Width: 3},
			{Title: "Count", Width: 5},
			{Title: "Title", Width: 28},
			{Title: "Created", Width: 19},
		}),
		table.WithRows([]table.Row{}),
		table.WithFocused(true),
		table.WithHeight(12),
	)
	m.reminderTable = table.New(
		table.WithColumns([]table.Column{
			{Title: "#", Width: 3},
			{Title: "Title", Width: 24},
			{Title: "Scheduled", Width: 10},
			{Title: "Period", Width: 16},
		}),
		table.WithRows([]table.Row{}),
		table.WithFocused(true),
		table.WithHeight(12),
	)

	m.commandInput = textinput.New()
	m.commandInput.Prompt = "/"
	m.commandInput.CharLimit = 256
	m.commandInput.Width = 48

	m.helpModel = help.New()
	m.detail = viewport.New(56, 12)
}
