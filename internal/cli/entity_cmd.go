package cli

import (
	"fmt"

	"github.com/charmbracelet/huh"
	"github.com/hourdeck/hourdeck/internal/grid"
	"github.com/spf13/cobra"
)

func newAddCmd(app *App, opts *globalOpts) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "add",
		Short: "Add a row or column to the grid",
	}
	cmd.AddCommand(
		newAddRowCmd(app, opts),
		newAddColCmd(app, opts),
	)
	return cmd
}

func newAddRowCmd(app *App, opts *globalOpts) *cobra.Command {
	return &cobra.Command{
		Use:   "row LABELS",
		Short: "Add a row (comma-separated labels for multi-entity rows)",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			schema, err := schemaFor(opts.gridName)
			if err != nil {
				return err
			}
			week, err := app.resolveWeek(ctx, opts.week)
			if err != nil {
				return err
			}
			rec, _, err := app.loadReconciler(ctx, schema, week)
			if err != nil {
				return err
			}
			s := rec.Session()

			labels := splitLabels(args[0])
			if len(labels) != len(schema.RowKinds) {
				return fmt.Errorf("row %q: want %d comma-separated labels", args[0], len(schema.RowKinds))
			}

			row := s.NextRow()
			for i, label := range labels {
				out := rec.Apply(ctx, grid.Edit{Row: row, Col: i, After: label})
				if out.Err != nil {
					return out.Err
				}
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Added row %s\n", args[0])
			return nil
		},
	}
}

func newAddColCmd(app *App, opts *globalOpts) *cobra.Command {
	return &cobra.Command{
		Use:   "col LABEL",
		Short: "Add a column",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			schema, err := schemaFor(opts.gridName)
			if err != nil {
				return err
			}
			week, err := app.resolveWeek(ctx, opts.week)
			if err != nil {
				return err
			}
			rec, _, err := app.loadReconciler(ctx, schema, week)
			if err != nil {
				return err
			}

			out := rec.Apply(ctx, grid.Edit{Row: 0, Col: rec.Session().NextCol(), After: args[0]})
			if out.Err != nil {
				return out.Err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Added column %s\n", out.Display)
			return nil
		},
	}
}

func newRemoveCmd(app *App, opts *globalOpts) *cobra.Command {
	var yes bool
	cmd := &cobra.Command{
		Use:   "remove",
		Short: "Remove a row or column, deleting its saved hours",
	}
	cmd.PersistentFlags().BoolVar(&yes, "yes", false, "Skip the confirmation prompt")
	cmd.AddCommand(
		newRemoveRowCmd(app, opts, &yes),
		newRemoveColCmd(app, opts, &yes),
	)
	return cmd
}

func newRemoveRowCmd(app *App, opts *globalOpts, yes *bool) *cobra.Command {
	return &cobra.Command{
		Use:   "row LABELS",
		Short: "Remove a row and every saved entry on it",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			schema, err := schemaFor(opts.gridName)
			if err != nil {
				return err
			}
			week, err := app.resolveWeek(ctx, opts.week)
			if err != nil {
				return err
			}
			rec, _, err := app.loadReconciler(ctx, schema, week)
			if err != nil {
				return err
			}
			s := rec.Session()

			row, err := findRow(s, args[0])
			if err != nil {
				return err
			}
			if err := confirmCascade(app, *yes, args[0], cellsOnRow(s, row)); err != nil {
				return err
			}

			// Clearing the first label removes the row on every grid variant.
			out := rec.Apply(ctx, grid.Edit{Row: row, Col: 0, Before: s.RowLabel(row, 0), After: ""})
			if out.Err != nil {
				return out.Err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Removed row %s\n", args[0])
			return nil
		},
	}
}

func newRemoveColCmd(app *App, opts *globalOpts, yes *bool) *cobra.Command {
	return &cobra.Command{
		Use:   "col LABEL",
		Short: "Remove a column and every saved entry on it",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			schema, err := schemaFor(opts.gridName)
			if err != nil {
				return err
			}
			week, err := app.resolveWeek(ctx, opts.week)
			if err != nil {
				return err
			}
			rec, _, err := app.loadReconciler(ctx, schema, week)
			if err != nil {
				return err
			}
			s := rec.Session()

			col, err := findCol(s, args[0])
			if err != nil {
				return err
			}
			if err := confirmCascade(app, *yes, args[0], cellsOnCol(s, col)); err != nil {
				return err
			}

			out := rec.Apply(ctx, grid.Edit{Row: 0, Col: col, Before: args[0], After: ""})
			if out.Err != nil {
				return out.Err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Removed column %s\n", args[0])
			return nil
		},
	}
}

// confirmCascade asks before a removal that would delete saved entries. The
// prompt is skipped with --yes, in non-interactive runs, and when the axis
// has nothing to delete.
func confirmCascade(app *App, yes bool, label string, cells int) error {
	if yes || cells == 0 {
		return nil
	}
	if app.IsInteractive == nil || !app.IsInteractive() {
		return fmt.Errorf("removing %q deletes %d saved entries; re-run with --yes to confirm", label, cells)
	}

	confirmed := false
	form := huh.NewForm(
		huh.NewGroup(
			huh.NewConfirm().
				Title(fmt.Sprintf("Remove %q?", label)).
				Description(fmt.Sprintf("This deletes %d saved entries from the hours service.", cells)).
				Value(&confirmed),
		),
	)
	if err := form.Run(); err != nil {
		return err
	}
	if !confirmed {
		return fmt.Errorf("removal of %q cancelled", label)
	}
	return nil
}

func newRenameCmd(app *App, opts *globalOpts) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "rename",
		Short: "Replace a row or column identity, moving its saved hours",
	}
	cmd.AddCommand(
		newRenameRowCmd(app, opts),
		newRenameColCmd(app, opts),
	)
	return cmd
}

func newRenameRowCmd(app *App, opts *globalOpts) *cobra.Command {
	return &cobra.Command{
		Use:   "row OLD NEW",
		Short: "Replace a row's entity with another from the catalog",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			schema, err := schemaFor(opts.gridName)
			if err != nil {
				return err
			}
			week, err := app.resolveWeek(ctx, opts.week)
			if err != nil {
				return err
			}
			rec, _, err := app.loadReconciler(ctx, schema, week)
			if err != nil {
				return err
			}
			s := rec.Session()

			row, err := findRow(s, args[0])
			if err != nil {
				return err
			}
			out := rec.Apply(ctx, grid.Edit{Row: row, Col: 0, Before: args[0], After: args[1]})
			if out.Err != nil {
				return out.Err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Renamed row %s to %s\n", args[0], out.Display)
			return nil
		},
	}
}

func newRenameColCmd(app *App, opts *globalOpts) *cobra.Command {
	return &cobra.Command{
		Use:   "col OLD NEW",
		Short: "Replace a column's entity with another from the catalog",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			schema, err := schemaFor(opts.gridName)
			if err != nil {
				return err
			}
			week, err := app.resolveWeek(ctx, opts.week)
			if err != nil {
				return err
			}
			rec, _, err := app.loadReconciler(ctx, schema, week)
			if err != nil {
				return err
			}

			col, err := findCol(rec.Session(), args[0])
			if err != nil {
				return err
			}
			out := rec.Apply(ctx, grid.Edit{Row: 0, Col: col, Before: args[0], After: args[1]})
			if out.Err != nil {
				return out.Err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Renamed column %s to %s\n", args[0], out.Display)
			return nil
		},
	}
}
