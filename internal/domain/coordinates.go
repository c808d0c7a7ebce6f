package domain

import (
	"math"

	"github.com/paulmach/orb"
)

// Raw OSM coordinates in degrees (latitude, longitude).
type Coordinates struct {
	Lat float64
	Lon float64
}

// Finite reports whether both components are usable for distance computation.
// NaN and infinite coordinates are not supported by the routing engine.
func (c Coordinates) Finite() bool {
	return !math.IsNaN(c.Lat) && !math.IsNaN(c.Lon) && !math.IsInf(c.Lat, 0) && !math.IsInf(c.Lon, 0)
}

// Return the coordinates as an orb.Point in (lon, lat) order for GeoJSON output.
func (c Coordinates) Point() orb.Point { return orb.Point{c.Lon, c.Lat} }

// Return the coordinates as a planar point in (lat, lon) order.
// The flat-plane edge weight treats raw degrees as cartesian axes.
func (c Coordinates) PlanarPoint() orb.Point { return orb.Point{c.Lat, c.Lon} }
