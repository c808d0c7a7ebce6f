package ports

import (
	"context"

	"github.com/nside/pbf2graph/internal/domain"
)

// Predicate applied to way entities before they are fully materialized.
type WayFilter func(tags []domain.Tag) bool

// Port: a stream of OSM entities.
//
// Implementations must call fn for every node referenced by an accepted way
// before calling fn for that way. Ways rejected by filter are never delivered.
type EntitySource interface {
	Entities(ctx context.Context, filter WayFilter, fn func(domain.Entity) error) error
}
