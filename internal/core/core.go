// Package core wires one export run together: execute the query against
// the source database, then hand the materialized result to one or more
// format writers.
package core

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"time"

	"github.com/knadh/goyesql/v2"
	"github.com/zerodha/tableport/internal/exporters"
	"github.com/zerodha/tableport/internal/resultset"
	"github.com/zerodha/tableport/models"
)

// Opt represents core options.
type Opt struct {
	// QueryTimeout bounds the database round-trip. Zero means no limit.
	QueryTimeout time.Duration
}

// Core executes queries and exports their results.
type Core struct {
	db      *sql.DB
	backend models.Backend
	opt     Opt

	lo *slog.Logger
}

// New returns a new instance of Core.
func New(db *sql.DB, backend models.Backend, opt Opt, lo *slog.Logger) *Core {
	return &Core{
		db:      db,
		backend: backend,
		opt:     opt,
		lo:      lo,
	}
}

// Query executes the SQL and materializes the full result set. This is
// the only suspension point of a run; everything after it is synchronous
// CPU work.
func (co *Core) Query(ctx context.Context, query string) (*models.ResultSet, error) {
	if co.opt.QueryTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, co.opt.QueryTimeout)
		defer cancel()
	}

	start := time.Now()
	rs, err := resultset.Fetch(ctx, co.db, co.backend, query)
	if err != nil {
		return nil, err
	}

	co.lo.Info("query executed", "rows", len(rs.Rows), "columns", len(rs.Fields), "took", time.Since(start))

	return rs, nil
}

// Export writes a result set to dest in the given format. The result set
// is read-only and may be exported again in another format afterwards.
func (co *Core) Export(rs *models.ResultSet, format, dest string) error {
	exp, err := exporters.New(format, co.lo)
	if err != nil {
		return err
	}

	if err := exp.Write(rs, dest); err != nil {
		return fmt.Errorf("error writing %s output: %w", format, err)
	}

	co.lo.Info("wrote output", "format", format, "dest", dest, "rows", len(rs.Rows))

	return nil
}

// LoadQuery reads one named query from a goyesql .sql file
// (blocks tagged with `-- name: <tag>`).
func LoadQuery(path, name string) (string, error) {
	queries, err := goyesql.ParseFile(path)
	if err != nil {
		return "", fmt.Errorf("error loading SQL file %s: %v", path, err)
	}

	q, ok := queries[name]
	if !ok {
		return "", fmt.Errorf("query '%s' not found in %s", name, path)
	}

	return q.Query, nil
}
