package cli

import (
	"fmt"

	"github.com/hourdeck/hourdeck/internal/cli/formatter"
	"github.com/hourdeck/hourdeck/internal/domain"
	"github.com/spf13/cobra"
)

func newCatalogCmd(app *App, opts *globalOpts) *cobra.Command {
	var refresh bool
	cmd := &cobra.Command{
		Use:   "catalog KIND",
		Short: "List the known entities of one kind (project|person|activity|location)",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			kind := domain.EntityKind(args[0])
			if !domain.ValidEntityKinds[kind] || kind == domain.KindPeriodDate {
				return fmt.Errorf("unknown entity kind %q", args[0])
			}
			if app.Cache == nil {
				return fmt.Errorf("no catalog cache configured")
			}

			if refresh {
				schema, err := schemaFor(opts.gridName)
				if err != nil {
					return err
				}
				week, err := app.resolveWeek(ctx, opts.week)
				if err != nil {
					return err
				}
				if _, _, err := app.loadReconciler(ctx, schema, week); err != nil {
					return err
				}
			}

			entities, err := app.Cache.Entities(ctx, kind)
			if err != nil {
				return err
			}
			if len(entities) == 0 {
				fmt.Fprintf(cmd.OutOrStdout(), "No %ss cached yet; run with --refresh.\n", kind)
				return nil
			}

			rows := make([][]string, 0, len(entities))
			for _, e := range entities {
				rows = append(rows, []string{e.ID, e.Name, e.Display})
			}
			table := formatter.Table{Headers: []string{"ID", "Name", "Display"}, Rows: rows}
			fmt.Fprint(cmd.OutOrStdout(), table.Render())
			return nil
		},
	}
	cmd.Flags().BoolVar(&refresh, "refresh", false, "Fetch the current week first to refresh the catalog")
	return cmd
}
