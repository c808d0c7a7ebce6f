package osmpbf

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/nside/pbf2graph/internal/domain"
	"github.com/nside/pbf2graph/internal/services"
	"github.com/paulmach/osm"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWayEntity(t *testing.T) {
	w := &osm.Way{
		ID: 101,
		Nodes: osm.WayNodes{
			{ID: 10}, {ID: 11}, {ID: 12},
		},
		Tags: osm.Tags{
			{Key: "highway", Value: "residential"},
			{Key: "name", Value: "Main St"},
		},
	}

	e := wayEntity(w)
	assert.Equal(t, domain.EntityWay, e.Kind)
	assert.Equal(t, int64(101), e.ID)
	assert.Equal(t, []int64{10, 11, 12}, e.Refs)
	assert.Equal(t, []domain.Tag{{Key: "highway", Value: "residential"}, {Key: "name", Value: "Main St"}}, e.Tags)
}

func TestWayEntityWithoutNodes(t *testing.T) {
	e := wayEntity(&osm.Way{ID: 1})
	assert.Empty(t, e.Refs)
	assert.Empty(t, e.Tags)
}

func TestNodeEntity(t *testing.T) {
	e := nodeEntity(&osm.Node{ID: -5, Lat: 48.1, Lon: 11.5})
	assert.Equal(t, domain.Entity{Kind: domain.EntityNode, ID: -5, Lat: 48.1, Lon: 11.5}, e)
}

func TestFileSourceMissingFile(t *testing.T) {
	src := NewFileSource(filepath.Join(t.TempDir(), "missing.osm.pbf"), nil)

	err := src.Entities(context.Background(), nil, func(domain.Entity) error { return nil })
	require.Error(t, err)
	assert.Contains(t, err.Error(), "read pbf: open")
}

// roads.osm.pbf is written by testdata/gen_roads.py: dense nodes 10, 11, 12,
// 13, 20 and 21, a highway way 10-11-12, a name-only way 12-13 and a building
// way 20-21.
const roadsFixture = "roads.osm.pbf"

func collectEntities(t *testing.T, src *Source) []domain.Entity {
	t.Helper()

	var got []domain.Entity
	err := src.Entities(context.Background(), services.IsHighway, func(e domain.Entity) error {
		got = append(got, e)
		return nil
	})
	require.NoError(t, err)
	return got
}

func TestFileSourceDeliversHighwayWaysAfterTheirNodes(t *testing.T) {
	got := collectEntities(t, NewFileSource(filepath.Join("testdata", roadsFixture), nil))

	seen := make(map[int64]bool)
	var nodeIDs, wayIDs []int64
	for _, e := range got {
		switch e.Kind {
		case domain.EntityNode, domain.EntityDenseNode:
			seen[e.ID] = true
			nodeIDs = append(nodeIDs, e.ID)
		case domain.EntityWay:
			assert.True(t, services.IsHighway(e.Tags), "way %d is not a highway", e.ID)
			for _, ref := range e.Refs {
				assert.True(t, seen[ref], "way %d delivered before node %d", e.ID, ref)
			}
			wayIDs = append(wayIDs, e.ID)
		default:
			t.Fatalf("unexpected entity kind %v", e.Kind)
		}
	}

	assert.Equal(t, []int64{100}, wayIDs)
	assert.ElementsMatch(t, []int64{10, 11, 12}, nodeIDs)
}

func TestFileSourceBuildGraph(t *testing.T) {
	src := NewFileSource(filepath.Join("testdata", roadsFixture), nil)

	g, stats, err := services.BuildGraph(context.Background(), src, services.BuildOptions{})
	require.NoError(t, err)

	assert.Equal(t, []domain.Edge{{From: 10, To: 11}, {From: 11, To: 12}}, g.Edges())
	assert.Equal(t, []int64{10, 11, 12}, g.NodeIDs())
	assert.Equal(t, 1, stats.Ways)
	assert.Zero(t, stats.SkippedWays)

	want := map[int64]domain.Coordinates{
		10: {Lat: 39.0, Lon: -75.0},
		11: {Lat: 39.001, Lon: -75.0},
		12: {Lat: 39.002, Lon: -75.001},
	}
	for id, w := range want {
		c, ok := g.Coordinates(id)
		require.True(t, ok, "node %d", id)
		assert.InDelta(t, w.Lat, c.Lat, 1e-9, "lat of node %d", id)
		assert.InDelta(t, w.Lon, c.Lon, 1e-9, "lon of node %d", id)
	}

	route, err := services.ShortestPath(context.Background(), g, 10, 12)
	require.NoError(t, err)
	require.NotNil(t, route)
	assert.Equal(t, []int64{10, 11, 12}, route.NodeIDs)
}

func TestSourceRewindsOpenedStream(t *testing.T) {
	f, err := os.Open(filepath.Join("testdata", roadsFixture))
	require.NoError(t, err)
	defer f.Close()

	got := collectEntities(t, NewSource(f, nil))
	require.Len(t, got, 4)
	assert.Equal(t, domain.EntityWay, got[3].Kind)
	assert.Equal(t, []int64{10, 11, 12}, got[3].Refs)
}
