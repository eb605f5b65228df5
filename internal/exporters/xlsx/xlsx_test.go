package xlsx

import (
	"io"
	"log/slog"
	"path/filepath"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
	"github.com/zerodha/tableport/models"
)

var testLog = slog.New(slog.NewTextHandler(io.Discard, nil))

func write(t *testing.T, rs *models.ResultSet) *excelize.File {
	t.Helper()

	dest := filepath.Join(t.TempDir(), "out.xlsx")
	require.NoError(t, New(testLog).Write(rs, dest))

	f, err := excelize.OpenFile(dest)
	require.NoError(t, err)
	t.Cleanup(func() { f.Close() })

	return f
}

func TestWriteWorkbook(t *testing.T) {
	rs := &models.ResultSet{
		Fields: []models.Field{
			{Name: "id", Kind: models.Int32, DBType: "int4"},
			{Name: "name", Kind: models.String, DBType: "varchar"},
			{Name: "joined", Kind: models.Date, DBType: "date"},
			{Name: "active", Kind: models.Bool, DBType: "bool"},
		},
		Rows: []models.Row{
			{int32(42), "Ann", time.Date(2024, 1, 15, 0, 0, 0, 0, time.UTC), true},
			{int32(2), "Bob", nil, false},
		},
	}

	f := write(t, rs)
	sheet := f.GetSheetName(0)

	// Header row.
	for i, want := range []string{"id", "name", "joined", "active"} {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		v, err := f.GetCellValue(sheet, cell)
		require.NoError(t, err)
		assert.Equal(t, want, v)
	}

	v, _ := f.GetCellValue(sheet, "A2")
	assert.Equal(t, "42", v)

	v, _ = f.GetCellValue(sheet, "B2")
	assert.Equal(t, "Ann", v)

	// Dates carry the date display format, not a raw serial.
	v, _ = f.GetCellValue(sheet, "C2")
	assert.Equal(t, "15/01/2024", v)

	v, _ = f.GetCellValue(sheet, "D2")
	assert.Equal(t, "TRUE", v)

	// NULL temporal cells are omitted entirely.
	v, _ = f.GetCellValue(sheet, "C3")
	assert.Equal(t, "", v)
}

func TestHeaderIsBold(t *testing.T) {
	rs := &models.ResultSet{
		Fields: []models.Field{{Name: "id", Kind: models.Int32, DBType: "int4"}},
		Rows:   []models.Row{{int32(1)}},
	}

	f := write(t, rs)
	sheet := f.GetSheetName(0)

	styleID, err := f.GetCellStyle(sheet, "A1")
	require.NoError(t, err)

	style, err := f.GetStyle(styleID)
	require.NoError(t, err)
	require.NotNil(t, style.Font)
	assert.True(t, style.Font.Bold)
}

func TestNumericFormats(t *testing.T) {
	rs := &models.ResultSet{
		Fields: []models.Field{
			{Name: "n", Kind: models.Int64, DBType: "bigint"},
			{Name: "f", Kind: models.Float64, DBType: "float8"},
		},
		Rows: []models.Row{{int64(42), 1.5}},
	}

	f := write(t, rs)
	sheet := f.GetSheetName(0)

	v, _ := f.GetCellValue(sheet, "A2")
	assert.Equal(t, "42", v)

	// Two-decimal display format.
	v, _ = f.GetCellValue(sheet, "B2")
	assert.Equal(t, "1.50", v)
}

// Offset-aware timestamps are written as the local wall-clock time with
// the offset stripped.
func TestDateTimeTZLocalWallClock(t *testing.T) {
	in := time.Date(2024, 1, 15, 10, 30, 0, 0, time.FixedZone("IST", 5*3600+1800))

	rs := &models.ResultSet{
		Fields: []models.Field{{Name: "at", Kind: models.DateTimeTZ, DBType: "timestamptz"}},
		Rows:   []models.Row{{in}},
	}

	f := write(t, rs)
	sheet := f.GetSheetName(0)

	v, _ := f.GetCellValue(sheet, "A2")
	assert.Equal(t, in.Local().Format("02/01/2006 15:04:05"), v)
}

// A decimal outside float64 range cannot be written as a number; the
// export aborts instead of emitting a wrong value. The diagnostic stays
// short no matter how many digits the value spans.
func TestDecimalOutOfRangeAborts(t *testing.T) {
	rs := &models.ResultSet{
		Fields: []models.Field{{Name: "d", Kind: models.Decimal, DBType: "numeric"}},
		Rows:   []models.Row{{decimal.RequireFromString("1e100000")}},
	}

	dest := filepath.Join(t.TempDir(), "out.xlsx")
	err := New(testLog).Write(rs, dest)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "not representable")
	assert.Less(t, len(err.Error()), 200)
}

// Unknown columns leave their cells empty; the export still completes
// with the header intact.
func TestUnsupportedColumnDegrades(t *testing.T) {
	rs := &models.ResultSet{
		Fields: []models.Field{
			{Name: "id", Kind: models.Int32, DBType: "int4"},
			{Name: "span", Kind: models.Unknown, DBType: "interval"},
		},
		Rows: []models.Row{{int32(7), "1 day"}},
	}

	f := write(t, rs)
	sheet := f.GetSheetName(0)

	v, _ := f.GetCellValue(sheet, "B1")
	assert.Equal(t, "span", v)

	v, _ = f.GetCellValue(sheet, "B2")
	assert.Equal(t, "", v)
}

func TestEmptyResultSet(t *testing.T) {
	rs := &models.ResultSet{
		Fields: []models.Field{{Name: "id", Kind: models.Int32, DBType: "int4"}},
	}

	f := write(t, rs)
	sheet := f.GetSheetName(0)

	v, _ := f.GetCellValue(sheet, "A1")
	assert.Equal(t, "id", v)

	rows, err := f.GetRows(sheet)
	require.NoError(t, err)
	assert.Len(t, rows, 1)
}
