package cli

import (
	"fmt"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/sandeepkv93/daycal/internal/update"
)

var (
	_ update.Saver = storeBook{}
	_ update.Book  = storeBook{}
)

func addCalendar(topLevel *cobra.Command, a *app) {
	cmd := &cobra.Command{
		Use:     "cal",
		Aliases: []string{"calendar"},
		Short:   "Browse and edit the calendar interactively.",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			state, err := a.load(ctx)
			if err != nil {
				return err
			}
			now := func() time.Time { return a.today() }
			m := update.NewCalendarModel(ctx, state, storeBook{a.store}, now)
			if _, err := tea.NewProgram(m, tea.WithAltScreen()).Run(); err != nil {
				return fmt.Errorf("calendar: %w", err)
			}
			return nil
		},
	}
	topLevel.AddCommand(cmd)
}
