package cli

import (
	"fmt"

	"github.com/hourdeck/hourdeck/internal/cli/formatter"
	"github.com/spf13/cobra"
)

func newShowCmd(app *App, opts *globalOpts) *cobra.Command {
	return &cobra.Command{
		Use:   "show",
		Short: "Show the week's grid",
		Args:  cobra.NoArgs,
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
			fmt.Fprint(cmd.OutOrStdout(), formatter.FormatGrid(rec.Session()))
			return nil
		},
	}
}

func newTotalsCmd(app *App, opts *globalOpts) *cobra.Command {
	return &cobra.Command{
		Use:   "totals",
		Short: "Show the week's totals per column",
		Args:  cobra.NoArgs,
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
			fmt.Fprint(cmd.OutOrStdout(), formatter.FormatTotals(rec.Session()))
			return nil
		},
	}
}
