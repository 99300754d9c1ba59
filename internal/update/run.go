package update

import (
	"context"

	tea "github.com/charmbracelet/bubbletea"
)

// Run drives the viewer until the user quits or ctx is cancelled.
func Run(ctx context.Context, m Model) error {
	m.ctx = ctx
	_, err := tea.NewProgram(m, tea.WithContext(ctx), tea.WithAltScreen()).Run()
	return err
}
