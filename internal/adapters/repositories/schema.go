package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
)

// SQL dialect of the database behind a repository.
type Dialect int

const (
	Postgres Dialect = iota
	SQLite
)

func (d Dialect) String() string {
	switch d {
	case Postgres:
		return "postgres"
	case SQLite:
		return "sqlite"
	default:
		return "unknown"
	}
}

// Return the positional parameter marker for the n-th (1-based) argument.
func (d Dialect) placeholder(n int) string {
	if d == Postgres {
		return fmt.Sprintf("$%d", n)
	}
	return "?"
}

func (d Dialect) schema() []string {
	if d == Postgres {
		return []string{
			`
	CREATE TABLE IF NOT EXISTS graph_nodes (
		id BIGINT PRIMARY KEY,
		lat DOUBLE PRECISION NOT NULL,
		lon DOUBLE PRECISION NOT NULL
	);
	`,
			`
	CREATE TABLE IF NOT EXISTS graph_edges (
		seq BIGINT PRIMARY KEY,
		from_id BIGINT NOT NULL,
		to_id BIGINT NOT NULL
	);
	`,
			`
	CREATE INDEX IF NOT EXISTS idx_graph_edges_from_id
	ON graph_edges(from_id);
	`,
		}
	}

	return []string{
		`
	CREATE TABLE IF NOT EXISTS graph_nodes (
		id INTEGER PRIMARY KEY,
		lat REAL NOT NULL,
		lon REAL NOT NULL
	);
	`,
		`
	CREATE TABLE IF NOT EXISTS graph_edges (
		seq INTEGER PRIMARY KEY,
		from_id INTEGER NOT NULL,
		to_id INTEGER NOT NULL
	);
	`,
		`
	CREATE INDEX IF NOT EXISTS idx_graph_edges_from_id
	ON graph_edges(from_id);
	`,
	}
}

// Initialize the graph tables for the given dialect.
func InitSchema(ctx context.Context, db *sql.DB, d Dialect) error {
	if db == nil {
		return errors.New("init schema: DB is nil")
	}

	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("init schema: begin tx: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	for i, stmt := range d.schema() {
		if _, err := tx.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("init schema: exec %s statement #%d: %w", d, i+1, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("init schema: commit tx: %w", err)
	}

	return nil
}
