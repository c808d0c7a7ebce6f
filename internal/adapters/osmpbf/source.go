// Package osmpbf reads road network entities from OpenStreetMap PBF extracts.
package osmpbf

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"runtime"

	"github.com/nside/pbf2graph/internal/domain"
	"github.com/nside/pbf2graph/internal/ports"
	"github.com/paulmach/osm"
	"github.com/paulmach/osm/osmpbf"
	"go.uber.org/zap"
)

const progressEvery = 500000

// Source implements ports.EntitySource over a PBF file.
//
// The file is scanned twice. The first pass decodes ways only and keeps the
// ones accepted by the filter; the second pass decodes only the nodes those
// ways reference. Nodes are delivered first, then the retained ways, so every
// way arrives after its referenced nodes.
type Source struct {
	path   string
	rs     io.ReadSeeker
	procs  int
	logger *zap.Logger
}

var _ ports.EntitySource = (*Source)(nil)

// Read entities from the PBF file at path. The file is opened per call.
func NewFileSource(path string, logger *zap.Logger) *Source {
	return &Source{path: path, procs: runtime.GOMAXPROCS(0), logger: nopIfNil(logger)}
}

// Read entities from an already opened PBF stream.
func NewSource(rs io.ReadSeeker, logger *zap.Logger) *Source {
	return &Source{rs: rs, procs: runtime.GOMAXPROCS(0), logger: nopIfNil(logger)}
}

func (s *Source) Entities(ctx context.Context, filter ports.WayFilter, fn func(domain.Entity) error) error {
	rs := s.rs
	if rs == nil {
		f, err := os.Open(s.path)
		if err != nil {
			return fmt.Errorf("read pbf: open %q: %w", s.path, err)
		}
		defer f.Close()
		rs = f
	}

	ways, refs, err := s.scanWays(ctx, rs, filter)
	if err != nil {
		return fmt.Errorf("read pbf: %w", err)
	}
	s.logger.Info("highway ways selected", zap.Int("ways", len(ways)), zap.Int("referenced_nodes", len(refs)))

	if _, err := rs.Seek(0, io.SeekStart); err != nil {
		return fmt.Errorf("read pbf: rewind: %w", err)
	}

	if err := s.scanNodes(ctx, rs, refs, fn); err != nil {
		return fmt.Errorf("read pbf: %w", err)
	}

	for _, w := range ways {
		if err := fn(w); err != nil {
			return err
		}
	}
	return nil
}

func (s *Source) scanWays(ctx context.Context, r io.Reader, filter ports.WayFilter) ([]domain.Entity, map[int64]struct{}, error) {
	scanner := osmpbf.New(ctx, r, s.procs)
	defer scanner.Close()

	scanner.SkipNodes = true
	scanner.SkipRelations = true
	if filter != nil {
		scanner.FilterWay = func(w *osm.Way) bool {
			return filter(toDomainTags(w.Tags))
		}
	}

	ways := make([]domain.Entity, 0)
	refs := make(map[int64]struct{})
	for scanner.Scan() {
		w, ok := scanner.Object().(*osm.Way)
		if !ok {
			continue
		}

		e := wayEntity(w)
		for _, id := range e.Refs {
			refs[id] = struct{}{}
		}
		ways = append(ways, e)

		if len(ways)%progressEvery == 0 {
			s.logger.Sugar().Infof("scanning openstreetmap ways: %d...", len(ways))
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, nil, fmt.Errorf("scan ways: %w", err)
	}

	return ways, refs, nil
}

func (s *Source) scanNodes(ctx context.Context, r io.Reader, refs map[int64]struct{}, fn func(domain.Entity) error) error {
	scanner := osmpbf.New(ctx, r, s.procs)
	defer scanner.Close()

	scanner.SkipWays = true
	scanner.SkipRelations = true
	scanner.FilterNode = func(n *osm.Node) bool {
		_, ok := refs[int64(n.ID)]
		return ok
	}

	count := 0
	for scanner.Scan() {
		n, ok := scanner.Object().(*osm.Node)
		if !ok {
			continue
		}

		// The decoder expands dense node groups into plain nodes, so the two
		// encodings cannot be told apart here.
		if err := fn(nodeEntity(n)); err != nil {
			return err
		}

		count++
		if count%progressEvery == 0 {
			s.logger.Sugar().Infof("scanning openstreetmap nodes: %d...", count)
		}
	}
	if err := scanner.Err(); err != nil {
		if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
			return err
		}
		return fmt.Errorf("scan nodes: %w", err)
	}

	return nil
}

func toDomainTags(tags osm.Tags) []domain.Tag {
	out := make([]domain.Tag, 0, len(tags))
	for _, t := range tags {
		out = append(out, domain.Tag{Key: t.Key, Value: t.Value})
	}
	return out
}

func wayEntity(w *osm.Way) domain.Entity {
	refs := make([]int64, 0, len(w.Nodes))
	for _, wn := range w.Nodes {
		refs = append(refs, int64(wn.ID))
	}
	return domain.Entity{
		Kind: domain.EntityWay,
		ID:   int64(w.ID),
		Tags: toDomainTags(w.Tags),
		Refs: refs,
	}
}

func nodeEntity(n *osm.Node) domain.Entity {
	return domain.Entity{
		Kind: domain.EntityNode,
		ID:   int64(n.ID),
		Lat:  n.Lat,
		Lon:  n.Lon,
	}
}

func nopIfNil(logger *zap.Logger) *zap.Logger {
	if logger == nil {
		return zap.NewNop()
	}
	return logger
}
