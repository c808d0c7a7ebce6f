package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/nside/pbf2graph/internal/domain"
	"github.com/nside/pbf2graph/internal/platform/obs"
	"github.com/nside/pbf2graph/internal/ports"
	"go.uber.org/zap"
)

// SQL-backed implementation of the GraphRepository port.
// Works against Postgres (pgx driver) and SQLite (modernc driver).
type SQLGraphRepository struct {
	DB      *sql.DB
	Dialect Dialect
	Logger  *zap.Logger
}

var _ ports.GraphRepository = (*SQLGraphRepository)(nil)

func NewPostgresGraphRepository(db *sql.DB, logger *zap.Logger) *SQLGraphRepository {
	return &SQLGraphRepository{DB: db, Dialect: Postgres, Logger: logger}
}

func NewSqliteGraphRepository(db *sql.DB, logger *zap.Logger) *SQLGraphRepository {
	return &SQLGraphRepository{DB: db, Dialect: SQLite, Logger: logger}
}

// Replace the stored graph with g in a single transaction.
func (s *SQLGraphRepository) SaveGraph(ctx context.Context, g *domain.Graph) (err error) {
	defer obs.Time(ctx, s.Logger, "graph.repository.SaveGraph")(&err)

	if s.DB == nil {
		return errors.New("save graph: db is nil")
	}
	if g == nil {
		return errors.New("save graph: graph must be non-nil")
	}

	tx, err := s.DB.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("save graph: db begin: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	for _, q := range []string{`DELETE FROM graph_edges;`, `DELETE FROM graph_nodes;`} {
		if _, err := tx.ExecContext(ctx, q); err != nil {
			return fmt.Errorf("save graph: clear tables: %w", err)
		}
	}

	p := s.Dialect.placeholder
	nodeStmt, err := tx.PrepareContext(ctx, fmt.Sprintf(`
	INSERT INTO graph_nodes (id, lat, lon)
	VALUES (%s, %s, %s);
	`, p(1), p(2), p(3)))
	if err != nil {
		return fmt.Errorf("save graph: prepare node insert: %w", err)
	}
	defer nodeStmt.Close()

	for _, id := range g.NodeIDs() {
		c, _ := g.Coordinates(id)
		if _, err := nodeStmt.ExecContext(ctx, id, c.Lat, c.Lon); err != nil {
			return fmt.Errorf("save graph: insert node id=%d: %w", id, err)
		}
	}

	edgeStmt, err := tx.PrepareContext(ctx, fmt.Sprintf(`
	INSERT INTO graph_edges (seq, from_id, to_id)
	VALUES (%s, %s, %s);
	`, p(1), p(2), p(3)))
	if err != nil {
		return fmt.Errorf("save graph: prepare edge insert: %w", err)
	}
	defer edgeStmt.Close()

	for i, e := range g.Edges() {
		if _, err := edgeStmt.ExecContext(ctx, int64(i+1), e.From, e.To); err != nil {
			return fmt.Errorf("save graph: insert edge #%d %d -> %d: %w", i+1, e.From, e.To, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("save graph: commit: %w", err)
	}

	return nil
}

// Load the stored graph. Edges keep the order they were saved in.
func (s *SQLGraphRepository) LoadGraph(ctx context.Context) (_ *domain.Graph, err error) {
	defer obs.Time(ctx, s.Logger, "graph.repository.LoadGraph")(&err)

	if s.DB == nil {
		return nil, errors.New("load graph: db is nil")
	}

	g := domain.NewGraph()

	nodeRows, err := s.DB.QueryContext(ctx, `
	SELECT id, lat, lon
	FROM graph_nodes;
	`)
	if err != nil {
		return nil, fmt.Errorf("load graph: query graph_nodes table: %w", err)
	}
	defer nodeRows.Close()

	for nodeRows.Next() {
		var id int64
		var lat, lon float64
		if err := nodeRows.Scan(&id, &lat, &lon); err != nil {
			return nil, fmt.Errorf("load graph: scan node row: %w", err)
		}
		g.AddNode(id, lat, lon)
	}
	if err := nodeRows.Err(); err != nil {
		return nil, fmt.Errorf("load graph: node row iteration: %w", err)
	}

	edgeRows, err := s.DB.QueryContext(ctx, `
	SELECT from_id, to_id
	FROM graph_edges
	ORDER BY seq;
	`)
	if err != nil {
		return nil, fmt.Errorf("load graph: query graph_edges table: %w", err)
	}
	defer edgeRows.Close()

	for edgeRows.Next() {
		var from, to int64
		if err := edgeRows.Scan(&from, &to); err != nil {
			return nil, fmt.Errorf("load graph: scan edge row: %w", err)
		}
		g.AddEdge(from, to)
	}
	if err := edgeRows.Err(); err != nil {
		return nil, fmt.Errorf("load graph: edge row iteration: %w", err)
	}

	return g, nil
}
