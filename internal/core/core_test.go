package core

import (
	"context"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/zerodha/tableport/models"
)

var testLog = slog.New(slog.NewTextHandler(io.Discard, nil))

func TestQueryAndExport(t *testing.T) {
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherEqual))
	require.NoError(t, err)
	defer db.Close()

	rows := mock.NewRowsWithColumnDefinition(
		sqlmock.NewColumn("id").OfType("INT4", int64(0)),
		sqlmock.NewColumn("name").OfType("VARCHAR", ""),
	).AddRow(int64(1), "Ann")
	mock.ExpectQuery("SELECT id, name FROM users").WillReturnRows(rows)

	co := New(db, models.Postgres, Opt{}, testLog)

	rs, err := co.Query(context.Background(), "SELECT id, name FROM users")
	require.NoError(t, err)
	require.Len(t, rs.Rows, 1)

	// The same result set can be exported to multiple formats
	// sequentially.
	dir := t.TempDir()
	for _, name := range []string{"out.json", "out.md", "out.xlsx"} {
		require.NoError(t, co.Export(rs, filepath.Ext(name)[1:], filepath.Join(dir, name)))
	}

	b, err := os.ReadFile(filepath.Join(dir, "out.json"))
	require.NoError(t, err)
	assert.Equal(t, "[\n{\"id\":1,\"name\":\"Ann\"},\n]\n", string(b))
}

func TestExportUnknownFormat(t *testing.T) {
	co := New(nil, models.Postgres, Opt{}, testLog)

	err := co.Export(&models.ResultSet{}, "csv", "out.csv")
	assert.Error(t, err)
}

func TestLoadQuery(t *testing.T) {
	path := filepath.Join(t.TempDir(), "queries.sql")
	sql := "-- name: users\nSELECT * FROM users;\n\n-- name: count\nSELECT COUNT(*) FROM users;\n"
	require.NoError(t, os.WriteFile(path, []byte(sql), 0644))

	q, err := LoadQuery(path, "users")
	require.NoError(t, err)
	assert.Equal(t, "SELECT * FROM users;", q)

	_, err = LoadQuery(path, "missing")
	assert.Error(t, err)

	_, err = LoadQuery(filepath.Join(t.TempDir(), "nope.sql"), "users")
	assert.Error(t, err)
}
