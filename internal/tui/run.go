package tui

import (
	"context"
	"errors"
	"fmt"

	"github.com/Veraticus/ledgerflow/internal/report"
	tea "github.com/charmbracelet/bubbletea"
)

// Run shows the dashboard full screen until the user quits or ctx is done.
func Run(ctx context.Context, d *report.Dashboard, opts ...Option) error {
	p := tea.NewProgram(
		NewModel(d, opts...),
		tea.WithContext(ctx),
		tea.WithAltScreen(),
	)

	if _, err := p.Run(); err != nil {
		if errors.Is(err, tea.ErrProgramKilled) && ctx.Err() != nil {
			return ctx.Err()
		}
		return fmt.Errorf("failed to run dashboard viewer: %w", err)
	}
	return nil
}
