// Package cli wires the grid engine to a cobra command tree and a bubbletea
// terminal grid.
package cli

import (
	"github.com/hourdeck/hourdeck/internal/cache"
	"github.com/hourdeck/hourdeck/internal/grid"
	"github.com/hourdeck/hourdeck/internal/hours"
	"github.com/spf13/cobra"
)

// App holds the shared dependencies used by CLI commands.
type App struct {
	Client    hours.Client
	Cache     *cache.Store
	Observers []grid.EditObserver

	// IsInteractive reports whether stdin is a terminal. Confirmation forms
	// are skipped when it is not.
	IsInteractive func() bool
}

// globalOpts are the persistent flags shared by every subcommand.
type globalOpts struct {
	gridName string
	week     string
}

// NewRootCmd creates the top-level "hourdeck" command and registers all
// subcommands against the provided App.
func NewRootCmd(app *App) *cobra.Command {
	opts := &globalOpts{}

	root := &cobra.Command{
		Use:   "hourdeck",
		Short: "Weekly hours grid against the hours service",
	}

	root.PersistentFlags().StringVar(&opts.gridName, "grid", "project_hours",
		"Grid variant (project_hours|schedule|charged_hours)")
	root.PersistentFlags().StringVar(&opts.week, "week", "",
		"Week to load (YYYY-MM-DD, any day of the week; defaults to the last viewed week)")

	root.AddCommand(
		newShowCmd(app, opts),
		newSetCmd(app, opts),
		newClearCmd(app, opts),
		newAddCmd(app, opts),
		newRemoveCmd(app, opts),
		newRenameCmd(app, opts),
		newTotalsCmd(app, opts),
		newCatalogCmd(app, opts),
		newGridCmd(app, opts),
	)

	return root
}
