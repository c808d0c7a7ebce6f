// Package export writes and reads the flat-file forms of a road graph.
package export

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"

	"github.com/nside/pbf2graph/internal/domain"
)

const (
	NodesFile = "nodes.csv"
	EdgesFile = "edges.csv"
)

// WriteCSV writes nodes.csv (id,lat,lon) and edges.csv (id1,id2) into dir,
// creating it if needed. Files have no header row. Nodes are written in
// ascending id order, edges in insertion order.
func WriteCSV(g *domain.Graph, dir string) error {
	if g == nil {
		return errors.New("write csv: graph must be non-nil")
	}

	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("write csv: create dir %q: %w", dir, err)
	}

	if err := writeFile(filepath.Join(dir, NodesFile), func(w *csv.Writer) error {
		return WriteNodes(w, g)
	}); err != nil {
		return fmt.Errorf("write csv: %w", err)
	}

	if err := writeFile(filepath.Join(dir, EdgesFile), func(w *csv.Writer) error {
		return WriteEdges(w, g)
	}); err != nil {
		return fmt.Errorf("write csv: %w", err)
	}

	return nil
}

func WriteNodes(w *csv.Writer, g *domain.Graph) error {
	for _, id := range g.NodeIDs() {
		c, _ := g.Coordinates(id)
		rec := []string{
			strconv.FormatInt(id, 10),
			formatFloat(c.Lat),
			formatFloat(c.Lon),
		}
		if err := w.Write(rec); err != nil {
			return fmt.Errorf("write node %d: %w", id, err)
		}
	}
	return nil
}

func WriteEdges(w *csv.Writer, g *domain.Graph) error {
	for i, e := range g.Edges() {
		rec := []string{strconv.FormatInt(e.From, 10), strconv.FormatInt(e.To, 10)}
		if err := w.Write(rec); err != nil {
			return fmt.Errorf("write edge #%d: %w", i+1, err)
		}
	}
	return nil
}

func writeFile(path string, fill func(*csv.Writer) error) (err error) {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %q: %w", path, err)
	}
	defer func() {
		if cerr := f.Close(); cerr != nil && err == nil {
			err = fmt.Errorf("close %q: %w", path, cerr)
		}
	}()

	w := csv.NewWriter(f)
	if err := fill(w); err != nil {
		return fmt.Errorf("%s: %w", filepath.Base(path), err)
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return fmt.Errorf("flush %q: %w", path, err)
	}
	return nil
}

// LoadCSV rebuilds a graph from the nodes.csv and edges.csv files in dir.
func LoadCSV(dir string) (*domain.Graph, error) {
	g := domain.NewGraph()

	if err := readFile(filepath.Join(dir, NodesFile), 3, func(line int, rec []string) error {
		id, err := strconv.ParseInt(rec[0], 10, 64)
		if err != nil {
			return fmt.Errorf("line %d: parse id: %w", line, err)
		}
		lat, err := strconv.ParseFloat(rec[1], 64)
		if err != nil {
			return fmt.Errorf("line %d: parse lat: %w", line, err)
		}
		lon, err := strconv.ParseFloat(rec[2], 64)
		if err != nil {
			return fmt.Errorf("line %d: parse lon: %w", line, err)
		}
		g.AddNode(id, lat, lon)
		return nil
	}); err != nil {
		return nil, fmt.Errorf("load csv: %w", err)
	}

	if err := readFile(filepath.Join(dir, EdgesFile), 2, func(line int, rec []string) error {
		from, err := strconv.ParseInt(rec[0], 10, 64)
		if err != nil {
			return fmt.Errorf("line %d: parse id1: %w", line, err)
		}
		to, err := strconv.ParseInt(rec[1], 10, 64)
		if err != nil {
			return fmt.Errorf("line %d: parse id2: %w", line, err)
		}
		g.AddEdge(from, to)
		return nil
	}); err != nil {
		return nil, fmt.Errorf("load csv: %w", err)
	}

	return g, nil
}

func readFile(path string, fields int, row func(line int, rec []string) error) error {
	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("open %q: %w", path, err)
	}
	defer f.Close()

	r := csv.NewReader(f)
	r.FieldsPerRecord = fields
	r.ReuseRecord = true

	for line := 1; ; line++ {
		rec, err := r.Read()
		if errors.Is(err, io.EOF) {
			return nil
		}
		if err != nil {
			return fmt.Errorf("read %q: %w", path, err)
		}
		if err := row(line, rec); err != nil {
			return fmt.Errorf("%s: %w", filepath.Base(path), err)
		}
	}
}

func formatFloat(f float64) string {
	return strconv.FormatFloat(f, 'f', -1, 64)
}
