package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/nside/pbf2graph/internal/adapters/export"
	"github.com/nside/pbf2graph/internal/adapters/osmpbf"
	"github.com/nside/pbf2graph/internal/adapters/repositories"
	"github.com/nside/pbf2graph/internal/config"
	"github.com/nside/pbf2graph/internal/domain"
	"github.com/nside/pbf2graph/internal/platform/db"
	"github.com/nside/pbf2graph/internal/services"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

type routeOptions struct {
	graphDir      string
	pbfFile       string
	databaseURL   string
	sqlitePath    string
	bidirectional bool
	from          int64
	to            int64
	geojsonPath   string
	timeout       time.Duration
}

func newRouteCmd(logger *zap.Logger) *cobra.Command {
	var opts routeOptions

	cmd := &cobra.Command{
		Use:   "route",
		Short: "Compute the shortest path between two node ids",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runRoute(cmd, opts, logger)
		},
	}

	timeout, err := config.GetDuration("QUERY_TIMEOUT", 30*time.Second)
	if err != nil {
		logger.Warn("ignoring invalid QUERY_TIMEOUT", zap.Error(err))
	}

	bidirectional, err := config.GetBool("BIDIRECTIONAL", false)
	if err != nil {
		logger.Warn("ignoring invalid BIDIRECTIONAL", zap.Error(err))
	}

	f := cmd.Flags()
	f.StringVarP(&opts.graphDir, "graph-dir", "g", config.Get("GRAPH_DIR", ""), "directory holding nodes.csv and edges.csv")
	f.StringVarP(&opts.pbfFile, "pbf-file", "p", "", "build the graph from this PBF extract instead")
	f.StringVar(&opts.databaseURL, "database-url", "", "load the graph from this Postgres database instead")
	f.StringVar(&opts.sqlitePath, "sqlite-path", "", "load the graph from this SQLite database instead")
	f.BoolVar(&opts.bidirectional, "bidirectional", bidirectional, "with --pbf-file, add reverse edges for ways not tagged oneway")
	f.Int64Var(&opts.from, "from", 0, "start node id")
	f.Int64Var(&opts.to, "to", 0, "destination node id")
	f.StringVar(&opts.geojsonPath, "geojson", "", "also write the route as GeoJSON to this file")
	f.DurationVar(&opts.timeout, "timeout", timeout, "abort the query after this long")
	_ = cmd.MarkFlagRequired("from")
	_ = cmd.MarkFlagRequired("to")
	cmd.MarkFlagsMutuallyExclusive("graph-dir", "pbf-file", "database-url", "sqlite-path")

	return cmd
}

func runRoute(cmd *cobra.Command, opts routeOptions, logger *zap.Logger) error {
	ctx := cmd.Context()

	g, err := loadGraph(ctx, opts, logger)
	if err != nil {
		return fmt.Errorf("route: %w", err)
	}

	if opts.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, opts.timeout)
		defer cancel()
	}

	route, err := services.ShortestPath(ctx, g, opts.from, opts.to)
	if err != nil {
		return fmt.Errorf("route: %w", err)
	}
	if route == nil {
		return fmt.Errorf("route: %d -> %d: %w", opts.from, opts.to, errNoPath)
	}

	ids := make([]string, 0, len(route.NodeIDs))
	for _, id := range route.NodeIDs {
		ids = append(ids, fmt.Sprint(id))
	}
	fmt.Fprintln(cmd.OutOrStdout(), strings.Join(ids, ","))

	logger.Info("route found",
		zap.Int64("from", opts.from),
		zap.Int64("to", opts.to),
		zap.Int("nodes", len(route.NodeIDs)),
		zap.Float64("distance_deg", route.Distance),
	)

	if opts.geojsonPath != "" {
		if err := writeGeoJSON(opts.geojsonPath, g, route); err != nil {
			return fmt.Errorf("route: %w", err)
		}
	}

	return nil
}

func loadGraph(ctx context.Context, opts routeOptions, logger *zap.Logger) (*domain.Graph, error) {
	switch {
	case opts.pbfFile != "":
		g, _, err := services.BuildGraph(ctx, osmpbf.NewFileSource(opts.pbfFile, logger), services.BuildOptions{
			Bidirectional: opts.bidirectional,
			Logger:        logger,
		})
		return g, err
	case opts.databaseURL != "":
		conn, err := db.Open(opts.databaseURL)
		if err != nil {
			return nil, err
		}
		defer conn.Close()
		return repositories.NewPostgresGraphRepository(conn, logger).LoadGraph(ctx)
	case opts.sqlitePath != "":
		conn, err := db.OpenSQLite(opts.sqlitePath)
		if err != nil {
			return nil, err
		}
		defer conn.Close()
		return repositories.NewSqliteGraphRepository(conn, logger).LoadGraph(ctx)
	case opts.graphDir != "":
		return export.LoadCSV(opts.graphDir)
	default:
		return nil, errors.New("one of --graph-dir, --pbf-file, --database-url or --sqlite-path is required")
	}
}

func writeGeoJSON(path string, g *domain.Graph, route *domain.Route) (err error) {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %q: %w", path, err)
	}
	defer func() {
		if cerr := f.Close(); cerr != nil && err == nil {
			err = fmt.Errorf("close %q: %w", path, cerr)
		}
	}()

	return export.WriteRouteGeoJSON(f, g, route)
}
