// Package xlsx renders a result set as a styled spreadsheet: bold frozen
// header, per-kind number formats, an autofilter over the data extent and
// columns sized to their content.
package xlsx

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"math"
	"time"

	"github.com/shopspring/decimal"
	"github.com/xuri/excelize/v2"
	"github.com/zerodha/tableport/models"
)

// palette holds the style IDs shared read-only by all cell writes of one
// export.
type palette struct {
	bold  int
	num   int
	eur   int
	date  int
	clock int
	stamp int
}

// convFn writes one non-NULL cell directly into the sheet. NULLs are
// handled before dispatch and leave the cell absent.
type convFn func(f *excelize.File, sheet, cell string, c int, row models.Row, st *palette) error

// Writer renders result sets as xlsx workbooks.
type Writer struct {
	lo *slog.Logger
}

// New returns a new spreadsheet writer.
func New(lo *slog.Logger) *Writer {
	return &Writer{lo: lo}
}

// Write builds the workbook in memory and persists it to dest.
func (w *Writer) Write(rs *models.ResultSet, dest string) error {
	f := excelize.NewFile()
	defer f.Close()

	sheet := f.GetSheetName(0)

	st, err := newPalette(f)
	if err != nil {
		return err
	}

	convs := make([]convFn, len(rs.Fields))
	widths := make([]int, len(rs.Fields))
	for i, fld := range rs.Fields {
		fn, err := conv(fld)
		if err != nil {
			w.lo.Warn("cannot render column as spreadsheet cell", "column", fld.Name, "type", fld.DBType, "error", err)
			fn = nil
		}
		convs[i] = fn

		// Bold header cells at row 1.
		cell, err := excelize.CoordinatesToCellName(i+1, 1)
		if err != nil {
			return err
		}
		if err := f.SetCellValue(sheet, cell, fld.Name); err != nil {
			return err
		}
		if err := f.SetCellStyle(sheet, cell, cell, st.bold); err != nil {
			return err
		}

		widths[i] = len(fld.Name)
	}

	for r, row := range rs.Rows {
		for c, fn := range convs {
			if fn == nil || row[c] == nil {
				continue
			}

			// Data rows are offset by one to account for the header.
			cell, err := excelize.CoordinatesToCellName(c+1, r+2)
			if err != nil {
				return err
			}
			if err := fn(f, sheet, cell, c, row, st); err != nil {
				return fmt.Errorf("error rendering column '%s': %w", rs.Fields[c].Name, err)
			}

			if l := displayLen(row[c]); l > widths[c] {
				widths[c] = l
			}
		}
	}

	if len(rs.Rows) > 0 {
		end, err := excelize.CoordinatesToCellName(len(rs.Fields), len(rs.Rows)+1)
		if err != nil {
			return err
		}
		if err := f.AutoFilter(sheet, "A1:"+end, nil); err != nil {
			return err
		}
	}

	// Size columns to their content. excelize rejects widths over 255.
	for i, width := range widths {
		col, err := excelize.ColumnNumberToName(i + 1)
		if err != nil {
			return err
		}

		if width > 120 {
			width = 120
		}
		if err := f.SetColWidth(sheet, col, col, float64(width)+2); err != nil {
			return err
		}
	}

	// Freeze the header row.
	if err := f.SetPanes(sheet, &excelize.Panes{
		Freeze:      true,
		YSplit:      1,
		TopLeftCell: "A2",
		ActivePane:  "bottomLeft",
	}); err != nil {
		return err
	}

	return f.SaveAs(dest)
}

func newPalette(f *excelize.File) (*palette, error) {
	var (
		st  palette
		err error
	)

	numFmt := func(expr string) *excelize.Style {
		return &excelize.Style{CustomNumFmt: &expr}
	}

	if st.bold, err = f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}}); err != nil {
		return nil, err
	}
	if st.num, err = f.NewStyle(numFmt("#,##0")); err != nil {
		return nil, err
	}
	if st.eur, err = f.NewStyle(numFmt("#,##0.00")); err != nil {
		return nil, err
	}
	if st.date, err = f.NewStyle(numFmt("dd/mm/yyyy")); err != nil {
		return nil, err
	}
	if st.clock, err = f.NewStyle(numFmt("hh:mm")); err != nil {
		return nil, err
	}
	if st.stamp, err = f.NewStyle(numFmt("dd/mm/yyyy hh:mm:ss")); err != nil {
		return nil, err
	}

	return &st, nil
}

// conv selects the cell writer for a column. Unknown and unsigned kinds
// have none and report distinct conditions.
func conv(fld models.Field) (convFn, error) {
	switch fld.Kind {
	case models.Int8, models.Int16, models.Int32:
		return styled(func(row models.Row, c int) any { return row[c] },
			func(st *palette) int { return st.num }), nil
	case models.Int64:
		// Written as a floating value; precision loss above 2^53 is
		// accepted.
		return styled(func(row models.Row, c int) any { return float64(row[c].(int64)) },
			func(st *palette) int { return st.num }), nil
	case models.Float32, models.Float64:
		return styled(func(row models.Row, c int) any { return row[c] },
			func(st *palette) int { return st.eur }), nil
	case models.String, models.Bool:
		return plain(func(row models.Row, c int) any { return row[c] }), nil
	case models.Decimal:
		return decimalConv, nil
	case models.Date:
		return styled(func(row models.Row, c int) any { return row[c] },
			func(st *palette) int { return st.date }), nil
	case models.Time:
		return styled(func(row models.Row, c int) any { return row[c] },
			func(st *palette) int { return st.clock }), nil
	case models.DateTime:
		return styled(func(row models.Row, c int) any { return row[c] },
			func(st *palette) int { return st.stamp }), nil
	case models.DateTimeTZ:
		// The local wall-clock time is written without its offset.
		return styled(func(row models.Row, c int) any {
			t := row[c].(time.Time).Local()
			return time.Date(t.Year(), t.Month(), t.Day(), t.Hour(), t.Minute(), t.Second(), t.Nanosecond(), time.UTC)
		}, func(st *palette) int { return st.stamp }), nil
	case models.JSON:
		return plain(func(row models.Row, c int) any { return string(row[c].(json.RawMessage)) }), nil
	case models.Unknown:
		return nil, fmt.Errorf("%w: %s", models.ErrUnknownType, fld.DBType)
	}

	return nil, fmt.Errorf("%w: %s", models.ErrUnimplementedKind, fld.Kind)
}

// decimalConv converts to float64 before the positioned write. A value
// that cannot be represented fails the export outright.
func decimalConv(f *excelize.File, sheet, cell string, c int, row models.Row, st *palette) error {
	d := row[c].(decimal.Decimal)

	v, _ := d.Float64()
	if math.IsInf(v, 0) || math.IsNaN(v) {
		return fmt.Errorf("decimal %s is not representable as a number", shortDecimal(d))
	}

	if err := f.SetCellValue(sheet, cell, v); err != nil {
		return err
	}

	return f.SetCellStyle(sheet, cell, cell, st.eur)
}

// shortDecimal caps the decimal's rendering for diagnostics. Out-of-range
// values can span thousands of digits.
func shortDecimal(d decimal.Decimal) string {
	s := d.String()
	if len(s) > 32 {
		s = s[:32] + "..."
	}

	return s
}

func plain(val func(row models.Row, c int) any) convFn {
	return func(f *excelize.File, sheet, cell string, c int, row models.Row, _ *palette) error {
		return f.SetCellValue(sheet, cell, val(row, c))
	}
}

func styled(val func(row models.Row, c int) any, style func(st *palette) int) convFn {
	return func(f *excelize.File, sheet, cell string, c int, row models.Row, st *palette) error {
		if err := f.SetCellValue(sheet, cell, val(row, c)); err != nil {
			return err
		}

		return f.SetCellStyle(sheet, cell, cell, style(st))
	}
}

// displayLen estimates the rendered width of a value for column sizing.
func displayLen(v any) int {
	switch v := v.(type) {
	case time.Time:
		return len("dd/mm/yyyy hh:mm:ss")
	case time.Duration:
		return len("hh:mm")
	case json.RawMessage:
		return len(v)
	case string:
		return len(v)
	default:
		return len(fmt.Sprintf("%v", v))
	}
}
