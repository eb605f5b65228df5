package resultset

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/zerodha/tableport/models"
)

// Fetch executes a query and materializes the entire result set before
// returning. Memory use is proportional to the result size; rendering never
// begins until the fetch has completed.
func Fetch(ctx context.Context, db *sql.DB, backend models.Backend, query string) (*models.ResultSet, error) {
	rows, err := db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("query execution failed: %w", err)
	}
	defer rows.Close()

	colTypes, err := rows.ColumnTypes()
	if err != nil {
		return nil, err
	}

	rs := &models.ResultSet{
		Fields: Fields(colTypes, backend),
	}
	numCols := len(rs.Fields)

	// Gymnastics to read arbitrary types from the row.
	var (
		resCols     = make([]any, numCols)
		resPointers = make([]any, numCols)
	)
	for i := 0; i < numCols; i++ {
		resPointers[i] = &resCols[i]
	}

	for rows.Next() {
		if err := rows.Scan(resPointers...); err != nil {
			return nil, err
		}

		row := make(models.Row, numCols)
		for i, f := range rs.Fields {
			v, err := decode(f, resCols[i])
			if err != nil {
				return nil, fmt.Errorf("error decoding column '%s': %w", f.Name, err)
			}

			row[i] = v
		}

		rs.Rows = append(rs.Rows, row)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return rs, nil
}
