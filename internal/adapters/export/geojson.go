package export

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"

	"github.com/nside/pbf2graph/internal/domain"
	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geojson"
)

// RouteFeatureCollection converts a route into a GeoJSON feature collection
// holding one LineString (or a Point for a single-node route).
func RouteFeatureCollection(g *domain.Graph, route *domain.Route) (*geojson.FeatureCollection, error) {
	if route == nil || len(route.NodeIDs) == 0 {
		return nil, errors.New("route geojson: route must be non-empty")
	}

	line := make(orb.LineString, 0, len(route.NodeIDs))
	for _, id := range route.NodeIDs {
		c, ok := g.Coordinates(id)
		if !ok {
			return nil, fmt.Errorf("route geojson: node %d has no coordinates", id)
		}
		line = append(line, c.Point())
	}

	var geom orb.Geometry = line
	if len(line) == 1 {
		geom = line[0]
	}

	f := geojson.NewFeature(geom)
	f.Properties["node_ids"] = route.NodeIDs
	f.Properties["distance"] = route.Distance

	fc := geojson.NewFeatureCollection()
	fc.Append(f)
	return fc, nil
}

func WriteRouteGeoJSON(w io.Writer, g *domain.Graph, route *domain.Route) error {
	fc, err := RouteFeatureCollection(g, route)
	if err != nil {
		return err
	}

	b, err := json.Marshal(fc)
	if err != nil {
		return fmt.Errorf("route geojson: marshal: %w", err)
	}
	if _, err := w.Write(b); err != nil {
		return fmt.Errorf("route geojson: write: %w", err)
	}
	return nil
}
