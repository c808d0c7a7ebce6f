package ports

import (
	"context"

	"github.com/nside/pbf2graph/internal/domain"
)

// Port: persistent storage for a built road graph.
type GraphRepository interface {
	// Replace any stored graph with g.
	SaveGraph(ctx context.Context, g *domain.Graph) error
	// Load the stored graph, preserving edge insertion order.
	LoadGraph(ctx context.Context) (*domain.Graph, error)
}
