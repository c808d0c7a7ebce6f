package main

import (
	"errors"
	"fmt"
	"strings"

	"github.com/nside/pbf2graph/internal/adapters/export"
	"github.com/nside/pbf2graph/internal/adapters/osmpbf"
	"github.com/nside/pbf2graph/internal/config"
	"github.com/nside/pbf2graph/internal/services"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

type exportOptions struct {
	pbfFile       string
	outputDir     string
	bidirectional bool
}

func newExportCmd(logger *zap.Logger) *cobra.Command {
	var opts exportOptions

	cmd := &cobra.Command{
		Use:   "export",
		Short: "Build the highway graph from a PBF file and write nodes.csv and edges.csv",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runExport(cmd, opts, logger)
		},
	}

	bidirectional, err := config.GetBool("BIDIRECTIONAL", false)
	if err != nil {
		logger.Warn("ignoring invalid BIDIRECTIONAL", zap.Error(err))
	}

	f := cmd.Flags()
	f.StringVarP(&opts.pbfFile, "pbf-file", "p", config.Get("PBF_FILE", ""), "input OSM PBF extract")
	f.StringVarP(&opts.outputDir, "output-dir", "o", config.Get("OUTPUT_DIR", ""), "directory for nodes.csv and edges.csv")
	f.BoolVar(&opts.bidirectional, "bidirectional", bidirectional, "add reverse edges for ways not tagged oneway")

	return cmd
}

func runExport(cmd *cobra.Command, opts exportOptions, logger *zap.Logger) error {
	if strings.TrimSpace(opts.pbfFile) == "" {
		return errors.New("export: --pbf-file is required")
	}
	if strings.TrimSpace(opts.outputDir) == "" {
		return errors.New("export: --output-dir is required")
	}

	ctx := cmd.Context()
	src := osmpbf.NewFileSource(opts.pbfFile, logger)
	g, _, err := services.BuildGraph(ctx, src, services.BuildOptions{
		Bidirectional: opts.bidirectional,
		Logger:        logger,
	})
	if err != nil {
		return fmt.Errorf("export: %w", err)
	}

	if err := export.WriteCSV(g, opts.outputDir); err != nil {
		return fmt.Errorf("export: %w", err)
	}

	logger.Info("graph exported",
		zap.String("dir", opts.outputDir),
		zap.Int("nodes", g.NodeCount()),
		zap.Int("edges", g.EdgeCount()),
	)
	return nil
}
