package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"github.com/hourdeck/hourdeck/internal/cache"
	"github.com/hourdeck/hourdeck/internal/cli"
	"github.com/hourdeck/hourdeck/internal/grid"
	"github.com/hourdeck/hourdeck/internal/hours"
	"github.com/mattn/go-isatty"
	"github.com/prometheus/client_golang/prometheus"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	// Determine cache path: env var or default ~/.hourdeck/hourdeck.db
	cachePath := os.Getenv("HOURDECK_CACHE")
	if cachePath == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return fmt.Errorf("finding home directory: %w", err)
		}
		cachePath = filepath.Join(home, ".hourdeck", "hourdeck.db")
	}

	cacheDB, err := cache.Open(cachePath)
	if err != nil {
		return fmt.Errorf("opening cache: %w", err)
	}
	defer cacheDB.Close()

	cfg := hours.LoadConfig()

	var observer hours.Observer = hours.NoopObserver{}
	var editObservers []grid.EditObserver
	if cfg.LogCalls {
		observer = hours.NewLogObserver(os.Stderr)
		editObservers = append(editObservers, grid.NewLogEditObserver(os.Stderr))
	}
	if metricsEnabled() {
		observer = hours.MultiObserver{observer, hours.NewMetricsObserver(prometheus.DefaultRegisterer)}
	}

	app := &cli.App{
		Client:    hours.NewClient(cfg, observer),
		Cache:     cache.NewStore(cacheDB),
		Observers: editObservers,
	}

	app.IsInteractive = func() bool {
		return isatty.IsTerminal(os.Stdin.Fd()) || isatty.IsCygwinTerminal(os.Stdin.Fd())
	}

	rootCmd := cli.NewRootCmd(app)
	return rootCmd.Execute()
}

func metricsEnabled() bool {
	v, err := strconv.ParseBool(os.Getenv("HOURDECK_METRICS"))
	return err == nil && v
}
