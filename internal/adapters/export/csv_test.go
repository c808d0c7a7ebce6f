package export

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/nside/pbf2graph/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleGraph() *domain.Graph {
	g := domain.NewGraph()
	g.AddNode(12, 48.1371, 11.5754)
	g.AddNode(10, -33.5, 151)
	g.AddNode(11, 0, -0.25)
	g.AddEdge(10, 11)
	g.AddEdge(11, 12)
	g.AddEdge(10, 11)
	return g
}

func TestWriteCSV(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "nested", "out")

	require.NoError(t, WriteCSV(sampleGraph(), dir))

	nodes, err := os.ReadFile(filepath.Join(dir, NodesFile))
	require.NoError(t, err)
	assert.Equal(t, "10,-33.5,151\n11,0,-0.25\n12,48.1371,11.5754\n", string(nodes))

	edges, err := os.ReadFile(filepath.Join(dir, EdgesFile))
	require.NoError(t, err)
	assert.Equal(t, "10,11\n11,12\n10,11\n", string(edges))
}

func TestWriteCSVEmptyGraph(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, WriteCSV(domain.NewGraph(), dir))

	for _, name := range []string{NodesFile, EdgesFile} {
		b, err := os.ReadFile(filepath.Join(dir, name))
		require.NoError(t, err)
		assert.Empty(t, b, name)
	}
}

func TestWriteCSVNilGraph(t *testing.T) {
	assert.Error(t, WriteCSV(nil, t.TempDir()))
}

func TestWriteCSVDirIsFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "file")
	require.NoError(t, os.WriteFile(path, []byte("x"), 0o644))

	err := WriteCSV(sampleGraph(), path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "write csv: create dir")
}

func TestLoadCSVRoundTrip(t *testing.T) {
	dir := t.TempDir()
	g := sampleGraph()
	require.NoError(t, WriteCSV(g, dir))

	loaded, err := LoadCSV(dir)
	require.NoError(t, err)

	assert.Equal(t, g.NodeIDs(), loaded.NodeIDs())
	assert.Equal(t, g.Edges(), loaded.Edges())
	for _, id := range g.NodeIDs() {
		want, _ := g.Coordinates(id)
		got, ok := loaded.Coordinates(id)
		require.True(t, ok)
		assert.Equal(t, want, got)
	}
}

func TestLoadCSVErrors(t *testing.T) {
	t.Run("missing files", func(t *testing.T) {
		_, err := LoadCSV(t.TempDir())
		assert.Error(t, err)
	})

	t.Run("bad latitude", func(t *testing.T) {
		dir := t.TempDir()
		require.NoError(t, os.WriteFile(filepath.Join(dir, NodesFile), []byte("1,north,2\n"), 0o644))
		require.NoError(t, os.WriteFile(filepath.Join(dir, EdgesFile), nil, 0o644))

		_, err := LoadCSV(dir)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "line 1: parse lat")
	})

	t.Run("wrong field count", func(t *testing.T) {
		dir := t.TempDir()
		require.NoError(t, os.WriteFile(filepath.Join(dir, NodesFile), []byte("1,2,3\n"), 0o644))
		require.NoError(t, os.WriteFile(filepath.Join(dir, EdgesFile), []byte("1,2,3\n"), 0o644))

		_, err := LoadCSV(dir)
		assert.Error(t, err)
	})
}
