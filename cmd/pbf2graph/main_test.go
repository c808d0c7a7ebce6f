package main

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func writeGraphDir(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	nodes := "1,0,0\n2,1,1\n3,2,2\n4,0,2\n5,2,0\n"
	edges := "1,2\n2,3\n3,4\n4,1\n1,5\n5,3\n"
	require.NoError(t, os.WriteFile(filepath.Join(dir, "nodes.csv"), []byte(nodes), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "edges.csv"), []byte(edges), 0o644))
	return dir
}

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	root := newRootCmd(zap.NewNop())
	var out bytes.Buffer
	root.SetOut(&out)
	root.SetErr(&out)
	root.SetArgs(args)
	err := root.ExecuteContext(context.Background())
	return out.String(), err
}

func TestRouteCommand(t *testing.T) {
	dir := writeGraphDir(t)
	geo := filepath.Join(t.TempDir(), "route.geojson")

	out, err := execute(t, "route", "--graph-dir", dir, "--from", "2", "--to", "5", "--geojson", geo)
	require.NoError(t, err)
	assert.Equal(t, "2,3,4,1,5\n", out)

	b, err := os.ReadFile(geo)
	require.NoError(t, err)
	assert.Contains(t, string(b), `"LineString"`)
}

func TestRouteCommandNoPath(t *testing.T) {
	dir := writeGraphDir(t)

	_, err := execute(t, "route", "--graph-dir", dir, "--from", "1", "--to", "6")
	require.Error(t, err)
	assert.True(t, errors.Is(err, errNoPath))
}

func TestRouteCommandRequiresGraph(t *testing.T) {
	_, err := execute(t, "route", "--graph-dir", "", "--from", "1", "--to", "2")
	assert.Error(t, err)
}

func TestExportCommandRequiresFlags(t *testing.T) {
	_, err := execute(t, "export", "--pbf-file", "", "--output-dir", "")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "--pbf-file is required")
}

// roads.osm.pbf holds a single highway way 10 -> 11 -> 12.
var roadsPBF = filepath.Join("..", "..", "internal", "adapters", "osmpbf", "testdata", "roads.osm.pbf")

func TestRouteCommandBidirectionalFromEnv(t *testing.T) {
	_, err := execute(t, "route", "--pbf-file", roadsPBF, "--from", "12", "--to", "10")
	require.ErrorIs(t, err, errNoPath)

	t.Setenv("BIDIRECTIONAL", "true")

	out, err := execute(t, "route", "--pbf-file", roadsPBF, "--from", "12", "--to", "10")
	require.NoError(t, err)
	assert.Equal(t, "12,11,10\n", out)

	out, err = execute(t, "route", "--pbf-file", roadsPBF, "--bidirectional=false", "--from", "12", "--to", "10")
	require.ErrorIs(t, err, errNoPath)
	assert.Empty(t, out)
}

func TestBidirectionalFlagDefaults(t *testing.T) {
	logger := zap.NewNop()
	for _, cmd := range []*cobra.Command{newRouteCmd(logger), newExportCmd(logger)} {
		assert.Equal(t, "false", cmd.Flags().Lookup("bidirectional").DefValue, cmd.Name())
	}

	t.Setenv("BIDIRECTIONAL", "true")
	for _, cmd := range []*cobra.Command{newRouteCmd(logger), newExportCmd(logger)} {
		assert.Equal(t, "true", cmd.Flags().Lookup("bidirectional").DefValue, cmd.Name())
	}
}
