package cli

import (
	"fmt"

	"github.com/hourdeck/hourdeck/internal/domain"
	"github.com/hourdeck/hourdeck/internal/grid"
	"github.com/spf13/cobra"
)

func newSetCmd(app *App, opts *globalOpts) *cobra.Command {
	return &cobra.Command{
		Use:   "set ROW COL HOURS",
		Short: "Set the hours at a row/column intersection",
		Long: `Set the hours at a row/column intersection.

ROW is the row's label; grids whose rows are identified by several entities
take a comma-separated list ("Alpha,Development,Remote"). COL is the column's
label. HOURS of 0 clears the cell.`,
		Args: cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			return applyCellValue(cmd, app, opts, args[0], args[1], args[2])
		},
	}
}

func newClearCmd(app *App, opts *globalOpts) *cobra.Command {
	return &cobra.Command{
		Use:   "clear ROW COL",
		Short: "Clear the hours at a row/column intersection",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return applyCellValue(cmd, app, opts, args[0], args[1], "")
		},
	}
}

func applyCellValue(cmd *cobra.Command, app *App, opts *globalOpts, rowArg, colArg, value string) error {
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

	row, err := findRow(s, rowArg)
	if err != nil {
		return err
	}
	col, err := findCol(s, colArg)
	if err != nil {
		return err
	}

	out := rec.Apply(ctx, grid.Edit{
		Row:    row,
		Col:    col,
		Before: s.CellValue(row, col),
		After:  value,
	})
	if out.Err != nil {
		return out.Err
	}

	switch out.Action {
	case grid.ActionDeleteCell:
		fmt.Fprintf(cmd.OutOrStdout(), "Cleared %s / %s\n", rowArg, colArg)
	case grid.ActionNone:
		fmt.Fprintf(cmd.OutOrStdout(), "No change for %s / %s\n", rowArg, colArg)
	default:
		fmt.Fprintf(cmd.OutOrStdout(), "Set %s / %s to %s (week total %s)\n",
			rowArg, colArg, out.Display, domain.FormatHours(s.Totals().Grand))
	}
	return nil
}
