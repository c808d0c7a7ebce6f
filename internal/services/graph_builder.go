package services

import (
	"context"
	"fmt"

	"github.com/nside/pbf2graph/internal/domain"
	"github.com/nside/pbf2graph/internal/platform/obs"
	"github.com/nside/pbf2graph/internal/ports"
	"go.uber.org/zap"
)

const progressEvery = 100000

type BuildOptions struct {
	// Add reverse edges for ways that are not tagged one-way.
	// When false, edges follow way reference order only.
	Bidirectional bool

	Logger *zap.Logger
}

// Counts of entities consumed while building a graph.
type BuildStats struct {
	Nodes       int
	DenseNodes  int
	Ways        int
	SkippedWays int
	Relations   int
	Edges       int
}

// IsHighway accepts a way only if one of its tag keys is exactly "highway".
func IsHighway(tags []domain.Tag) bool {
	for _, t := range tags {
		if t.Key == "highway" {
			return true
		}
	}
	return false
}

// BuildGraph consumes the highway-filtered entity stream of src and returns
// the populated graph.
func BuildGraph(ctx context.Context, src ports.EntitySource, opts BuildOptions) (_ *domain.Graph, _ BuildStats, err error) {
	defer obs.Time(ctx, opts.Logger, "graph.build")(&err)

	if src == nil {
		return nil, BuildStats{}, fmt.Errorf("build graph: source must be non-nil")
	}

	b := &graphBuilder{
		graph: domain.NewGraph(),
		opts:  opts,
	}

	if err := src.Entities(ctx, IsHighway, func(e domain.Entity) error {
		if err := ctx.Err(); err != nil {
			return err
		}
		b.add(e)
		return nil
	}); err != nil {
		return nil, b.stats, fmt.Errorf("build graph: read entities: %w", err)
	}

	b.stats.Edges = b.graph.EdgeCount()
	if opts.Logger != nil {
		opts.Logger.Info("graph built",
			zap.String("run_id", obs.RunID(ctx)),
			zap.Int("nodes", b.graph.NodeCount()),
			zap.Int("edges", b.stats.Edges),
			zap.Int("ways", b.stats.Ways),
			zap.Int("skipped_ways", b.stats.SkippedWays),
		)
	}

	return b.graph, b.stats, nil
}

type graphBuilder struct {
	graph *domain.Graph
	opts  BuildOptions
	stats BuildStats
}

// Dispatch a single entity by kind. Relations and unknown kinds are ignored.
func (b *graphBuilder) add(e domain.Entity) {
	switch e.Kind {
	case domain.EntityNode:
		b.stats.Nodes++
		b.graph.AddNode(e.ID, e.Lat, e.Lon)
	case domain.EntityDenseNode:
		b.stats.DenseNodes++
		b.graph.AddNode(e.ID, e.Lat, e.Lon)
	case domain.EntityWay:
		b.addWay(e)
	case domain.EntityRelation:
		b.stats.Relations++
	}
}

func (b *graphBuilder) addWay(e domain.Entity) {
	// Sources are expected to filter already; this keeps the builder correct
	// for sources that cannot.
	if !IsHighway(e.Tags) {
		b.stats.SkippedWays++
		return
	}

	b.stats.Ways++
	if b.opts.Logger != nil && b.stats.Ways%progressEvery == 0 {
		b.opts.Logger.Sugar().Infof("processing openstreetmap ways: %d...", b.stats.Ways)
	}

	forward, backward := true, false
	if b.opts.Bidirectional {
		forward, backward = wayDirections(e)
	}

	for i := 0; i+1 < len(e.Refs); i++ {
		from, to := e.Refs[i], e.Refs[i+1]
		if forward {
			b.graph.AddEdge(from, to)
		}
		if backward {
			b.graph.AddEdge(to, from)
		}
	}
}

// Return which directions of a way are traversable according to its oneway tag.
func wayDirections(e domain.Entity) (forward, backward bool) {
	v, _ := e.Tag("oneway")
	switch v {
	case "yes", "true", "1":
		return true, false
	case "-1", "reverse":
		return false, true
	default:
		return true, true
	}
}
