package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/nside/pbf2graph/internal/config"
	"github.com/nside/pbf2graph/internal/platform/logging"
	"github.com/nside/pbf2graph/internal/platform/obs"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

// errNoPath marks a query that completed without finding a route.
var errNoPath = errors.New("no path found")

// main is the composition root: it loads configuration, builds the logger
// and dispatches to the export and route commands.
func main() {
	envLoaded := config.Load()

	logger, err := logging.New(config.Get("LOG_LEVEL", "info"))
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	defer logger.Sync()

	if !envLoaded {
		logger.Debug("no .env file found (using environment variables)")
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	ctx, runID := obs.WithRunID(ctx)

	root := newRootCmd(logger)
	if err := root.ExecuteContext(ctx); err != nil {
		if errors.Is(err, errNoPath) {
			fmt.Fprintln(os.Stderr, err)
			logger.Sync()
			os.Exit(2)
		}
		logger.Error("command failed", zap.String("run_id", runID), zap.Error(err))
		fmt.Fprintf(os.Stderr, "pbf2graph: %v\n", err)
		logger.Sync()
		os.Exit(1)
	}
}

func newRootCmd(logger *zap.Logger) *cobra.Command {
	root := &cobra.Command{
		Use:           "pbf2graph",
		Short:         "Extract a road graph from an OSM PBF extract and query shortest paths",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	root.AddCommand(newExportCmd(logger))
	root.AddCommand(newRouteCmd(logger))
	return root
}
