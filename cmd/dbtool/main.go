package main

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/nside/pbf2graph/internal/adapters/export"
	"github.com/nside/pbf2graph/internal/adapters/repositories"
	"github.com/nside/pbf2graph/internal/config"
	"github.com/nside/pbf2graph/internal/platform/db"
	"github.com/nside/pbf2graph/internal/platform/logging"
	"github.com/nside/pbf2graph/internal/platform/obs"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

// dbtool initializes the graph schema and imports an exported CSV graph
// into Postgres (DATABASE_URL) or SQLite (SQLITE_PATH).
func main() {
	envLoaded := config.Load()

	logger, err := logging.New(config.Get("LOG_LEVEL", "info"))
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	defer logger.Sync()

	if !envLoaded {
		logger.Info("No .env file found (using environment variables)")
	}

	var graphDir string
	cmd := &cobra.Command{
		Use:           "dbtool",
		Short:         "Initialize the graph schema and import an exported CSV graph",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(cmd.Context(), graphDir, logger)
		},
	}
	cmd.Flags().StringVarP(&graphDir, "graph-dir", "g", config.Get("GRAPH_DIR", ""), "directory holding nodes.csv and edges.csv")

	ctx, _ := obs.WithRunID(context.Background())
	if err := cmd.ExecuteContext(ctx); err != nil {
		logger.Error("dbtool failed", zap.String("run_id", obs.RunID(ctx)), zap.Error(err))
		fmt.Fprintln(os.Stderr, err)
		logger.Sync()
		os.Exit(1)
	}
}

func run(ctx context.Context, graphDir string, logger *zap.Logger) error {
	if strings.TrimSpace(graphDir) == "" {
		return errors.New("GRAPH_DIR or --graph-dir is required")
	}

	databaseURL := config.Get("DATABASE_URL", "")
	sqlitePath := config.Get("SQLITE_PATH", "")

	var (
		conn    *sql.DB
		dialect repositories.Dialect
		err     error
	)
	switch {
	case databaseURL != "":
		conn, err = db.Open(databaseURL)
		dialect = repositories.Postgres
	case sqlitePath != "":
		conn, err = db.OpenSQLite(sqlitePath)
		dialect = repositories.SQLite
	default:
		return errors.New("DATABASE_URL or SQLITE_PATH is required")
	}
	if err != nil {
		return err
	}
	defer conn.Close()

	return initAndImport(ctx, conn, dialect, graphDir, logger)
}

func initAndImport(ctx context.Context, conn *sql.DB, dialect repositories.Dialect, graphDir string, logger *zap.Logger) error {
	logger.Info("Initializing database schema...", zap.Stringer("dialect", dialect))
	if err := repositories.InitSchema(ctx, conn, dialect); err != nil {
		return fmt.Errorf("dbtool: %w", err)
	}
	logger.Info("Schema ready.")

	g, err := export.LoadCSV(graphDir)
	if err != nil {
		return fmt.Errorf("dbtool: %w", err)
	}

	logger.Info("Importing graph...", zap.Int("nodes", g.NodeCount()), zap.Int("edges", g.EdgeCount()))
	repo := &repositories.SQLGraphRepository{DB: conn, Dialect: dialect, Logger: logger}
	if err := repo.SaveGraph(ctx, g); err != nil {
		return fmt.Errorf("dbtool: %w", err)
	}
	logger.Info("Import complete.")

	return nil
}
