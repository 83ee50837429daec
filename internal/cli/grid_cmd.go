package cli

import (
	"fmt"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"
)

func newGridCmd(app *App, opts *globalOpts) *cobra.Command {
	return &cobra.Command{
		Use:   "grid",
		Short: "Open the interactive grid",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if app.IsInteractive != nil && !app.IsInteractive() {
				return fmt.Errorf("the interactive grid needs a terminal")
			}
			schema, err := schemaFor(opts.gridName)
			if err != nil {
				return err
			}
			week, err := app.resolveWeek(cmd.Context(), opts.week)
			if err != nil {
				return err
			}

			model := newGridModel(app, schema, week)
			program := tea.NewProgram(model, tea.WithAltScreen())
			_, err = program.Run()
			return err
		},
	}
}
